package xslpkg

import (
	"regexp"
	"strings"

	"github.com/midbel/xslt3c/decl"
)

// ComponentSelector is the component-type an xsl:accept filters,
// spec.md §4.10's "component-type selector".
type ComponentSelector int

const (
	SelectTemplate ComponentSelector = iota
	SelectFunction
	SelectVariable
	SelectAttributeSet
	SelectMode
	SelectAny
)

// ParseComponentSelector parses one of xsl:accept's component-type
// values.
func ParseComponentSelector(s string) (ComponentSelector, bool) {
	switch s {
	case "template":
		return SelectTemplate, true
	case "function":
		return SelectFunction, true
	case "variable":
		return SelectVariable, true
	case "attribute-set":
		return SelectAttributeSet, true
	case "mode":
		return SelectMode, true
	case "*":
		return SelectAny, true
	default:
		return 0, false
	}
}

// AcceptDeclaration is a compiled xsl:accept (spec.md §4.10): a
// component-type selector, the whitespace-separated EQName-wildcard
// name patterns it applies to, and the visibility it forces components
// down to.
type AcceptDeclaration struct {
	Component  ComponentSelector
	Names      []string
	Visibility decl.Visibility
}

// Matches reports whether stableKey is selected by this accept
// declaration's name patterns, translating each pattern to an anchored
// regular expression exactly as spec.md §4.10 prescribes: escape `.`,
// `{` and `}`, turn `*` into `.*`, anchor at both ends.
func (a AcceptDeclaration) Matches(stableKey string) bool {
	for _, pattern := range a.Names {
		if nameWildcardMatch(pattern, stableKey) {
			return true
		}
	}
	return false
}

// nameWildcardMatch translates pattern into the anchored regular
// expression spec.md §4.10 describes and tests it against key. The
// regexp is not cached across calls: accept/override processing runs
// once per package composition, not in a hot loop, so the extra
// compilation cost is immaterial next to resolving and compiling the
// package itself.
func nameWildcardMatch(pattern, key string) bool {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '.', '{', '}':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '*':
			b.WriteString(".*")
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(key)
}

// Apply sets pkg's effective visibility for every component matching
// this accept declaration's selector and name patterns to its target
// Visibility (spec.md §4.10: "Applying an accept to a component sets
// its effective visibility to the target").
func (a AcceptDeclaration) Apply(pkg *Package) {
	for _, key := range candidateKeys(pkg, a.Component) {
		if a.Matches(key) {
			pkg.SetOverride(key, a.Visibility)
		}
	}
}

// candidateKeys enumerates the stable keys of every component of the
// given selector in pkg (SelectAny enumerates all of them).
func candidateKeys(pkg *Package, sel ComponentSelector) []string {
	var out []string
	if sel == SelectTemplate || sel == SelectAny {
		for _, t := range pkg.Sheet.Templates() {
			out = append(out, TemplateKey(t))
		}
	}
	if sel == SelectFunction || sel == SelectAny {
		for _, f := range pkg.Sheet.Functions() {
			out = append(out, FunctionKey(f.URI, f.Local, len(f.Params)))
		}
	}
	if sel == SelectVariable || sel == SelectAny {
		for _, v := range pkg.Sheet.Variables() {
			out = append(out, VariableKey(v.Name))
		}
	}
	if sel == SelectAttributeSet || sel == SelectAny {
		for _, a := range pkg.Sheet.AttributeSets() {
			out = append(out, AttributeSetKey(a.Name))
		}
	}
	if sel == SelectMode || sel == SelectAny {
		for _, m := range pkg.Sheet.Modes() {
			out = append(out, ModeKey(m.Name))
		}
	}
	return out
}
