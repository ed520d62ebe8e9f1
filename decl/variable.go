package decl

import "github.com/midbel/xslt3c/ixml"

// GlobalVariable is a compiled xsl:variable/xsl:param at stylesheet
// scope (spec.md §3): exactly one of Select/Default holds the bound
// expression or literal-content body, never both.
type GlobalVariable struct {
	Name       ixml.ExpandedName
	IsParam    bool
	Select     string
	HasSelect  bool
	Default    Body
	Visibility Visibility
}

// NewGlobalVariable builds a GlobalVariable bound by a select expression.
func NewGlobalVariable(name ixml.ExpandedName, isParam bool, selectExpr string, vis Visibility) GlobalVariable {
	return GlobalVariable{Name: name, IsParam: isParam, Select: selectExpr, HasSelect: true, Visibility: vis}
}

// NewGlobalVariableWithBody builds a GlobalVariable bound by literal
// sequence-constructor content instead of a select expression.
func NewGlobalVariableWithBody(name ixml.ExpandedName, isParam bool, body Body, vis Visibility) GlobalVariable {
	return GlobalVariable{Name: name, IsParam: isParam, Default: body, Visibility: vis}
}
