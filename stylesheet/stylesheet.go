// Package stylesheet implements CompiledStylesheet and its Builder
// (spec.md §3, §4.6): the immutable aggregate of every declaration kind
// a compiled stylesheet carries, built incrementally while an external
// event-stream producer walks the XSLT source, and merged across
// import/include boundaries with the precedence rules spec.md §4.6's
// table prescribes. The split between a mutable Builder and an
// immutable result is the one structural departure from the teacher's
// own Stylesheet type (xslt/stylesheet.go), which is its own builder:
// fields are set directly while xsl:* elements are read, and the same
// value is later executed against source documents. spec.md §5's
// concurrency contract -- "deeply immutable after build(), safe to read
// from any number of threads" -- requires separating the two phases.
package stylesheet

import (
	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
)

// CompiledStylesheet is the immutable aggregate spec.md §3 describes.
// Every accessor returns either a value type or a defensive copy/clone
// of internal state; nothing here exposes a pointer a caller could use
// to mutate the aggregate after Builder.Build returns.
type CompiledStylesheet struct {
	templates      []decl.TemplateRule
	namedTemplates map[ixml.ExpandedName]decl.TemplateRule
	variables      []decl.GlobalVariable
	attributeSets  map[ixml.ExpandedName]decl.AttributeSet
	output         decl.OutputProperties
	keys           map[string][]decl.KeyDefinition
	namespaceAlias map[string]decl.NamespaceAlias
	stripSpace     decl.WhitespaceRules
	decimalFormats map[string]decl.DecimalFormat
	accumulators   map[string]decl.AccumulatorDefinition
	modes          map[string]decl.ModeDeclaration
	namespaces     map[string]string
	excludedNS     map[string]bool
	functions      map[string]decl.UserFunction
	schemas        map[string]bool
	validation     decl.ValidationMode
	baseURI        string
	version        string
}

// Templates returns the template rules in declaration order across the
// whole import graph (spec.md §3).
func (s *CompiledStylesheet) Templates() []decl.TemplateRule {
	return append([]decl.TemplateRule(nil), s.templates...)
}

// NamedTemplate looks up a named template by expanded name.
func (s *CompiledStylesheet) NamedTemplate(name ixml.ExpandedName) (decl.TemplateRule, bool) {
	t, ok := s.namedTemplates[name]
	return t, ok
}

// Variables returns the compiled global variables/parameters,
// de-duplicated by expanded name (spec.md §3).
func (s *CompiledStylesheet) Variables() []decl.GlobalVariable {
	return append([]decl.GlobalVariable(nil), s.variables...)
}

// AttributeSet looks up a compiled attribute set by name.
func (s *CompiledStylesheet) AttributeSet(name ixml.ExpandedName) (decl.AttributeSet, bool) {
	a, ok := s.attributeSets[name]
	return a, ok
}

// AttributeSets returns every compiled attribute set.
func (s *CompiledStylesheet) AttributeSets() []decl.AttributeSet {
	out := make([]decl.AttributeSet, 0, len(s.attributeSets))
	for _, a := range s.attributeSets {
		out = append(out, a)
	}
	return out
}

// Output returns the stylesheet's accumulated output properties.
func (s *CompiledStylesheet) Output() decl.OutputProperties {
	return s.output
}

// Keys returns every xsl:key rule declared under name.
func (s *CompiledStylesheet) Keys(name string) []decl.KeyDefinition {
	return append([]decl.KeyDefinition(nil), s.keys[name]...)
}

// NamespaceAlias looks up a namespace-alias declaration by the
// stylesheet-document namespace URI it rewrites.
func (s *CompiledStylesheet) NamespaceAlias(stylesheetURI string) (decl.NamespaceAlias, bool) {
	a, ok := s.namespaceAlias[stylesheetURI]
	return a, ok
}

// StripSpace returns the compiled whitespace-stripping rule set.
func (s *CompiledStylesheet) StripSpace() *decl.WhitespaceRules {
	return &s.stripSpace
}

// DecimalFormat looks up a decimal-format by name ("" is the default).
func (s *CompiledStylesheet) DecimalFormat(name string) (decl.DecimalFormat, bool) {
	f, ok := s.decimalFormats[name]
	return f, ok
}

// Accumulator looks up an xsl:accumulator by name.
func (s *CompiledStylesheet) Accumulator(name string) (decl.AccumulatorDefinition, bool) {
	a, ok := s.accumulators[name]
	return a, ok
}

// Mode looks up an xsl:mode declaration; "" resolves to the default mode.
func (s *CompiledStylesheet) Mode(name string) (decl.ModeDeclaration, bool) {
	m, ok := s.modes[decl.ModeKey(name)]
	return m, ok
}

// Modes returns every compiled xsl:mode declaration.
func (s *CompiledStylesheet) Modes() []decl.ModeDeclaration {
	out := make([]decl.ModeDeclaration, 0, len(s.modes))
	for _, m := range s.modes {
		out = append(out, m)
	}
	return out
}

// NamespaceBindings returns the prefix -> URI map captured from the
// stylesheet document element.
func (s *CompiledStylesheet) NamespaceBindings() map[string]string {
	out := make(map[string]string, len(s.namespaces))
	for k, v := range s.namespaces {
		out[k] = v
	}
	return out
}

// ExcludesResultNamespace reports whether uri is listed in
// exclude-result-prefixes.
func (s *CompiledStylesheet) ExcludesResultNamespace(uri string) bool {
	return s.excludedNS[uri]
}

// Function looks up a compiled xsl:function by its `{uri}local/arity`
// lookup key.
func (s *CompiledStylesheet) Function(key string) (decl.UserFunction, bool) {
	f, ok := s.functions[key]
	return f, ok
}

// Functions returns every compiled user function.
func (s *CompiledStylesheet) Functions() []decl.UserFunction {
	out := make([]decl.UserFunction, 0, len(s.functions))
	for _, f := range s.functions {
		out = append(out, f)
	}
	return out
}

// HasSchema reports whether targetNamespace was imported via
// xsl:import-schema.
func (s *CompiledStylesheet) HasSchema(targetNamespace string) bool {
	return s.schemas[targetNamespace]
}

// Validation returns the stylesheet's default validation mode.
func (s *CompiledStylesheet) Validation() decl.ValidationMode { return s.validation }

// BaseURI returns the stylesheet's base URI.
func (s *CompiledStylesheet) BaseURI() string { return s.baseURI }

// Version returns the stylesheet's declared XSLT version ("1.0", "2.0"
// or "3.0").
func (s *CompiledStylesheet) Version() string { return s.version }
