// Package xslpkg implements XSLT 3.0 package composition (spec.md
// §4.8-§4.10): CompiledPackage's visibility overlay over a
// CompiledStylesheet, PackageResolver's on-demand compilation and
// version matching, and the xsl:accept/xsl:override mechanics used
// when one package declares xsl:use-package against another. None of
// this exists in the teacher, which has no package/visibility concept
// at all; the organization is grounded on the rest of the retrieval
// pack's dependency-resolver shapes (a name+version -> cached-result
// map guarded by a singleflight-style compute-if-absent, the general
// shape every workspace-style dependency resolver in the pack uses) and
// on the teacher's own cache-building style (environ.Env's nested
// fallback lookup, reused here for EffectiveVisibility's "check the
// override map, else defer to the declaration's own visibility" rule).
package xslpkg

import (
	"fmt"

	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
)

// ComponentKind identifies which stable-key shape applies (spec.md
// §4.8's table).
type ComponentKind int

const (
	KindNamedTemplate ComponentKind = iota
	KindMatchTemplate
	KindFunction
	KindVariable
	KindAttributeSet
	KindMode
)

// NamedTemplateKey returns the stable key for a named template:
// "name:NAME".
func NamedTemplateKey(name ixml.ExpandedName) string {
	return "name:" + name.Clark()
}

// MatchTemplateKey returns the stable key for a match template:
// "match:PATTERN:mode:MODE" (MODE defaults to decl.DefaultModeName when
// absent, per spec.md §4.8).
func MatchTemplateKey(patternSource, mode string) string {
	if mode == "" {
		mode = decl.DefaultModeName
	}
	return fmt.Sprintf("match:%s:mode:%s", patternSource, mode)
}

// FunctionKey returns the stable key for a user function: "{URI}LOCAL#ARITY".
func FunctionKey(uri, local string, arity int) string {
	return fmt.Sprintf("%s#%d", ixml.Qualified(uri, local).Clark(), arity)
}

// VariableKey returns the stable key for a global variable: its
// Clark-notation expanded name.
func VariableKey(name ixml.ExpandedName) string {
	return name.Clark()
}

// AttributeSetKey returns the stable key for an attribute set: its name.
func AttributeSetKey(name ixml.ExpandedName) string {
	return name.Clark()
}

// ModeKey returns the stable key for a mode: its name, or
// decl.DefaultModeName for the unnamed default.
func ModeKey(name string) string {
	return decl.ModeKey(name)
}

// TemplateKey returns the stable key for a compiled TemplateRule: a
// named-template key if it has a name, otherwise a match-template key
// built from its match pattern's source and mode.
func TemplateKey(t decl.TemplateRule) string {
	if t.HasName {
		return NamedTemplateKey(t.Name)
	}
	src := ""
	if t.Match != nil {
		src = t.Match.Source()
	}
	return MatchTemplateKey(src, t.Mode)
}
