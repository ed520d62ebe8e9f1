// Package ixml defines the node model the compiler core depends on as an
// external collaborator: an abstract tree interface together with the
// expanded-name/Clark-notation machinery used for every name comparison in
// the compiler (element/attribute tests, function keys, variable
// identifiers, key names).
package ixml

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// AnyURI is the sentinel namespace URI used by ExpandedName to mean
// "any namespace" (a wildcard), distinct from the empty string which
// means "no namespace". The two must never compare equal.
const AnyURI = "\x00*"

// AnyLocal is the sentinel local-name used to mean "any local name".
const AnyLocal = "*"

// ExpandedName is a (namespace-uri, local-name) pair. It is immutable and
// comparable with ==, so it can be used directly as a map key (e.g. for
// the `{uri}local/arity` lookup key of UserFunction, or the Clark-notation
// keyed maps on CompiledStylesheet).
type ExpandedName struct {
	URI   string
	Local string
}

// Name builds an ExpandedName with no namespace.
func Name(local string) ExpandedName {
	return ExpandedName{Local: normalize(local)}
}

// Qualified builds an ExpandedName in the given namespace.
func Qualified(uri, local string) ExpandedName {
	return ExpandedName{URI: normalize(uri), Local: normalize(local)}
}

// AnyName is the name wildcard `*`.
func AnyName() ExpandedName {
	return ExpandedName{URI: AnyURI, Local: AnyLocal}
}

// AnyIn is the `{uri}*` wildcard: any local name in a fixed namespace.
func AnyIn(uri string) ExpandedName {
	return ExpandedName{URI: normalize(uri), Local: AnyLocal}
}

// normalize applies NFC normalization so that visually-identical names
// built from differently-composed Unicode sequences compare equal; XML
// itself does not mandate this, but every name comparison in the compiler
// (pattern NameTest, UserFunction lookup key, mode/component identifiers)
// is brittle without it.
func normalize(s string) string {
	if norm.NFC.IsNormalString(s) {
		return s
	}
	return norm.NFC.String(s)
}

// IsWildcardURI reports whether uri stands for "any namespace".
func IsWildcardURI(uri string) bool {
	return uri == AnyURI
}

// IsWildcardLocal reports whether local stands for "any local name".
func IsWildcardLocal(local string) bool {
	return local == AnyLocal
}

// Matches reports whether a concrete name (as found on a node) is matched
// by this ExpandedName, treated as a test pattern: wildcards on either
// component match anything, an absent URI on the node is treated as the
// empty string.
func (n ExpandedName) Matches(uri, local string) bool {
	if !IsWildcardLocal(n.Local) && n.Local != normalize(local) {
		return false
	}
	if IsWildcardURI(n.URI) {
		return true
	}
	return n.URI == normalize(uri)
}

// Equal reports whether two expanded names denote the same concrete name.
// Wildcards only compare equal to themselves here; use Matches to test a
// wildcard name-test against a concrete node name.
func (n ExpandedName) Equal(other ExpandedName) bool {
	return n.URI == other.URI && n.Local == other.Local
}

// Clark renders the name in Clark notation: "{uri}local", with "*"/"{uri}*"
// wildcard forms.
func (n ExpandedName) Clark() string {
	switch {
	case IsWildcardURI(n.URI) && IsWildcardLocal(n.Local):
		return "*"
	case IsWildcardURI(n.URI):
		return n.Local
	case n.URI == "":
		return n.Local
	default:
		return fmt.Sprintf("{%s}%s", n.URI, n.Local)
	}
}

func (n ExpandedName) String() string {
	return n.Clark()
}

// ParseClark parses Clark notation back into an ExpandedName, accepting
// the "*" and "{uri}*" wildcard forms.
func ParseClark(s string) (ExpandedName, error) {
	if s == "*" {
		return AnyName(), nil
	}
	if !strings.HasPrefix(s, "{") {
		return Name(s), nil
	}
	end := strings.IndexByte(s, '}')
	if end < 0 {
		return ExpandedName{}, fmt.Errorf("ixml: malformed Clark name %q", s)
	}
	uri := s[1:end]
	local := s[end+1:]
	if local == "" {
		return ExpandedName{}, fmt.Errorf("ixml: malformed Clark name %q", s)
	}
	if local == AnyLocal {
		return AnyIn(uri), nil
	}
	return Qualified(uri, local), nil
}
