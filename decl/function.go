package decl

import (
	"strconv"

	"github.com/midbel/xslt3c/ixml"
)

// FunctionParameter is one xsl:param of a user function: a name plus an
// optional declared type (spec.md §3).
type FunctionParameter struct {
	Name    string
	Type    ixml.ExpandedName
	HasType bool
}

// UserFunction is a compiled xsl:function (spec.md §3). URI must be
// non-empty -- XSLT requires every user function to live in a
// non-default namespace -- enforced by the compiler package when it
// reads an xsl:function, not by this struct or by stylesheet.Builder.
type UserFunction struct {
	URI        string
	Local      string
	Params     []FunctionParameter
	Body       Body
	ReturnType ixml.ExpandedName
	HasReturn  bool
	Import     int
	Cached     bool
}

// LookupKey is the `{uri}local/arity` key spec.md §3 prescribes for
// looking up a UserFunction.
func (f UserFunction) LookupKey() string {
	return ixml.Qualified(f.URI, f.Local).Clark() + "/" + strconv.Itoa(len(f.Params))
}
