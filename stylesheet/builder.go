package stylesheet

import (
	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/xerr"
)

// EventSink is the input surface spec.md §6 describes: an external
// SAX-style parser drives element/attribute/text events into a
// StylesheetCompiler (out of scope per spec.md §1), which in turn calls
// Builder's per-declaration Add* methods once it has parsed one xsl:*
// element's attributes/children into the matching decl type. This
// interface documents that seam without attempting to specify the
// out-of-scope compiler that implements it.
type EventSink interface {
	StartElement(name ixml.ExpandedName, attrs map[ixml.ExpandedName]string) error
	EndElement(name ixml.ExpandedName) error
	Text(value string) error
	Comment(value string) error
	ProcessingInstruction(target, value string) error
}

// Builder accumulates declarations for one stylesheet module (one
// xsl:stylesheet/xsl:transform/xsl:package document, or one simplified
// stylesheet), matching the teacher's per-kind load*(node) methods on
// *Stylesheet (loadTemplate, loadAttributeSet, loadMode, loadVariable,
// loadParam, loadOutput in xslt/stylesheet.go) but returning an
// immutable value from Build() instead of mutating shared state
// directly (spec.md §5's concurrency contract).
type Builder struct {
	templates      []decl.TemplateRule
	namedTemplates map[ixml.ExpandedName]decl.TemplateRule
	variableOrder  []ixml.ExpandedName
	variables      map[ixml.ExpandedName]decl.GlobalVariable
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

// NewBuilder returns an empty Builder with the default xsl:output in
// effect, ready to accumulate declarations.
func NewBuilder(baseURI, version string) *Builder {
	return &Builder{
		namedTemplates: make(map[ixml.ExpandedName]decl.TemplateRule),
		variables:      make(map[ixml.ExpandedName]decl.GlobalVariable),
		attributeSets:  make(map[ixml.ExpandedName]decl.AttributeSet),
		output:         decl.DefaultOutput(),
		keys:           make(map[string][]decl.KeyDefinition),
		namespaceAlias: make(map[string]decl.NamespaceAlias),
		decimalFormats: map[string]decl.DecimalFormat{"": decl.DefaultDecimalFormat()},
		accumulators:   make(map[string]decl.AccumulatorDefinition),
		modes:          make(map[string]decl.ModeDeclaration),
		namespaces:     make(map[string]string),
		excludedNS:     make(map[string]bool),
		functions:      make(map[string]decl.UserFunction),
		schemas:        make(map[string]bool),
		baseURI:        baseURI,
		version:        version,
	}
}

// AddTemplate appends a template rule and, if t names one, stores it in
// the named-template slot, replacing any earlier template of that name
// (first-wins within a merge, per spec.md §4.6; within
// a single builder, later xsl:template name="x" shadows an earlier one,
// matching ordinary declarative-language "last write wins" for a single
// source file -- the first-wins rule is strictly a cross-sheet merge
// rule, applied in Merge below).
func (b *Builder) AddTemplate(t decl.TemplateRule) {
	b.templates = append(b.templates, t)
	if t.HasName {
		b.namedTemplates[t.Name] = t
	}
}

// AddVariable adds or replaces a global variable/param, de-duplicated by
// expanded name with last-wins inside a single sheet (spec.md §3).
func (b *Builder) AddVariable(v decl.GlobalVariable) {
	if _, exists := b.variables[v.Name]; !exists {
		b.variableOrder = append(b.variableOrder, v.Name)
	}
	b.variables[v.Name] = v
}

// AddAttributeSet adds an attribute set, applying the same-name merge
// rule (decl.MergeAttributeSet) when a set by that name already exists
// in this builder.
func (b *Builder) AddAttributeSet(a decl.AttributeSet) {
	if existing, ok := b.attributeSets[a.Name]; ok {
		a = decl.MergeAttributeSet(existing, a)
	}
	b.attributeSets[a.Name] = a
}

// AddOutput merges props into the builder's accumulated output
// properties, props taking precedence over whatever is already set
// (spec.md §4.6: "Output properties | imported merged under current |
// imported merged over current" -- within one builder's own sequence of
// xsl:output declarations, later wins, so props is merged as the
// "current" side).
func (b *Builder) AddOutput(props decl.OutputProperties) {
	b.output = props.Merge(b.output)
}

// AddKey appends a key rule to the named key's rule group.
func (b *Builder) AddKey(k decl.KeyDefinition) {
	clark := k.Name.Clark()
	b.keys[clark] = append(b.keys[clark], k)
}

// AddNamespaceAlias adds a namespace-alias declaration, first-wins
// within a builder (spec.md §4.6).
func (b *Builder) AddNamespaceAlias(a decl.NamespaceAlias) {
	if _, exists := b.namespaceAlias[a.Key()]; !exists {
		b.namespaceAlias[a.Key()] = a
	}
}

// AddStripSpace / AddPreserveSpace append one whitespace rule each,
// preserving declaration order (spec.md §3's "ordered lists of
// strip-space and preserve-space element-name patterns", unified here
// per Design Notes §9's resolved whitespace semantics into one ordered
// rule set distinguishing the two by the Preserve flag).
func (b *Builder) AddStripSpace(name ixml.ExpandedName, priority int) {
	b.stripSpace.Add(decl.WhitespaceRule{Name: name, Priority: priority, Preserve: false})
}

func (b *Builder) AddPreserveSpace(name ixml.ExpandedName, priority int) {
	b.stripSpace.Add(decl.WhitespaceRule{Name: name, Priority: priority, Preserve: true})
}

// AddDecimalFormat adds a decimal format, first-wins within a builder
// for named formats (spec.md §4.6); the unnamed format ("") that
// NewBuilder pre-populates is replaced by each unnamed declaration. Any
// unset character slots are filled in with spec.md §6's defaults.
func (b *Builder) AddDecimalFormat(f decl.DecimalFormat) {
	if _, exists := b.decimalFormats[f.Name]; exists && f.Name != "" {
		return
	}
	b.decimalFormats[f.Name] = f.FillDefaults()
}

// AddAccumulator adds an accumulator definition, first-wins within a
// builder.
func (b *Builder) AddAccumulator(a decl.AccumulatorDefinition) {
	if _, exists := b.accumulators[a.Name]; !exists {
		b.accumulators[a.Name] = a
	}
}

// AddMode adds a mode declaration, first-wins within a builder.
func (b *Builder) AddMode(m decl.ModeDeclaration) {
	key := decl.ModeKey(m.Name)
	if _, exists := b.modes[key]; !exists {
		b.modes[key] = m
	}
}

// BindNamespace records a prefix -> URI binding from the stylesheet
// document element.
func (b *Builder) BindNamespace(prefix, uri string) {
	b.namespaces[prefix] = uri
}

// ExcludeResultNamespace records a namespace URI excluded from result
// output via exclude-result-prefixes.
func (b *Builder) ExcludeResultNamespace(uri string) {
	b.excludedNS[uri] = true
}

// AddFunction adds a compiled user function, keyed by its
// `{uri}local/arity` lookup key. Per spec.md §3, URI must be non-empty;
// AddFunction trusts the caller already rejected an empty-namespace
// xsl:function (a static error the out-of-scope StylesheetCompiler is
// responsible for raising before it ever builds a UserFunction value).
func (b *Builder) AddFunction(f decl.UserFunction) {
	b.functions[f.LookupKey()] = f
}

// AddSchema records that targetNamespace was imported via
// xsl:import-schema.
func (b *Builder) AddSchema(targetNamespace string) {
	b.schemas[targetNamespace] = true
}

// SetValidation sets the stylesheet's default validation mode.
func (b *Builder) SetValidation(v decl.ValidationMode) { b.validation = v }

// Merge folds an imported or included sub-builder's declarations into b,
// applying the precedence table in spec.md §4.6. isImport distinguishes
// an xsl:import (lower precedence, table column 1) from an xsl:include
// (same precedence as b, column 2). Every row except Output properties
// behaves identically under both columns (append, or first-wins, or
// last-wins-overall); the precedence *integer* each template rule
// carries, assigned by the resolver package before Merge is ever called,
// is what encodes the import/include distinction for template conflict
// resolution downstream. Output properties is the one row the table
// gives an explicit direction flip: "imported merged under current" for
// import (b's own properties win) versus "imported merged over current"
// for include (other's properties win) -- handled below.
func (b *Builder) Merge(other *Builder, isImport bool) {
	b.templates = append(b.templates, other.templates...)
	for name, t := range other.namedTemplates {
		if _, exists := b.namedTemplates[name]; !exists {
			b.namedTemplates[name] = t
		}
	}
	for _, name := range other.variableOrder {
		if _, exists := b.variables[name]; !exists {
			b.variables[name] = other.variables[name]
			b.variableOrder = append(b.variableOrder, name)
		}
	}
	for name, a := range other.attributeSets {
		if existing, ok := b.attributeSets[name]; ok {
			b.attributeSets[name] = decl.MergeAttributeSet(existing, a)
		} else {
			b.attributeSets[name] = a
		}
	}
	if isImport {
		b.output = b.output.Merge(other.output)
	} else {
		b.output = other.output.Merge(b.output)
	}
	for name, rules := range other.keys {
		if _, exists := b.keys[name]; !exists {
			b.keys[name] = append([]decl.KeyDefinition(nil), rules...)
		}
	}
	for key, a := range other.namespaceAlias {
		if _, exists := b.namespaceAlias[key]; !exists {
			b.namespaceAlias[key] = a
		}
	}
	for _, r := range other.stripSpace.Rules() {
		b.stripSpace.Add(r)
	}
	for name, f := range other.decimalFormats {
		if _, exists := b.decimalFormats[name]; !exists {
			b.decimalFormats[name] = f
		}
	}
	for name, a := range other.accumulators {
		if _, exists := b.accumulators[name]; !exists {
			b.accumulators[name] = a
		}
	}
	for name, m := range other.modes {
		if _, exists := b.modes[name]; !exists {
			b.modes[name] = m
		}
	}
	for name, uri := range other.namespaces {
		if _, exists := b.namespaces[name]; !exists {
			b.namespaces[name] = uri
		}
	}
	for uri := range other.excludedNS {
		b.excludedNS[uri] = true
	}
	for key, f := range other.functions {
		if _, exists := b.functions[key]; !exists {
			b.functions[key] = f
		}
	}
	for ns := range other.schemas {
		b.schemas[ns] = true
	}
}

// Build finalizes the aggregate, checking the whole-sheet invariants
// spec.md §3 lists: every use-attribute-sets reference resolves
// (XTSE0710). The two other invariants spec.md §3 lists under
// CompiledStylesheet -- PI name tests with no colon, and match patterns
// rejecting bare arithmetic/numeric-literal/namespace::-axis shapes --
// are enforced earlier, at pattern-parse time (pattern package's parser,
// spec.md §4.4 steps 2 and 6), since by the time a compiled
// pattern.Pattern or nodetest.Test value reaches this Builder it can no
// longer carry an invalid shape to re-check; re-deriving the check here
// would mean re-parsing source text the pattern/nodetest packages
// already rejected.
func (b *Builder) Build() (*CompiledStylesheet, error) {
	for _, a := range b.attributeSets {
		for _, ref := range a.Uses {
			if _, ok := b.attributeSets[ref]; !ok {
				return nil, xerr.New(xerr.XTSE0710, "attribute-set %s: use-attribute-sets references undeclared set %s", a.Name.Clark(), ref.Clark())
			}
		}
	}
	if err := b.output.ValidateEncoding(); err != nil {
		return nil, err
	}

	variables := make([]decl.GlobalVariable, 0, len(b.variableOrder))
	for _, name := range b.variableOrder {
		variables = append(variables, b.variables[name])
	}

	out := &CompiledStylesheet{
		templates:      append([]decl.TemplateRule(nil), b.templates...),
		namedTemplates: cloneTemplateMap(b.namedTemplates),
		variables:      variables,
		attributeSets:  cloneAttrSetMap(b.attributeSets),
		output:         b.output,
		keys:           cloneKeyMap(b.keys),
		namespaceAlias: cloneAliasMap(b.namespaceAlias),
		stripSpace:     b.stripSpace,
		decimalFormats: cloneFormatMap(b.decimalFormats),
		accumulators:   cloneAccumulatorMap(b.accumulators),
		modes:          cloneModeMap(b.modes),
		namespaces:     cloneStringMap(b.namespaces),
		excludedNS:     cloneBoolMap(b.excludedNS),
		functions:      cloneFunctionMap(b.functions),
		schemas:        cloneBoolMap(b.schemas),
		validation:     b.validation,
		baseURI:        b.baseURI,
		version:        b.version,
	}
	return out, nil
}

func cloneTemplateMap(m map[ixml.ExpandedName]decl.TemplateRule) map[ixml.ExpandedName]decl.TemplateRule {
	out := make(map[ixml.ExpandedName]decl.TemplateRule, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAttrSetMap(m map[ixml.ExpandedName]decl.AttributeSet) map[ixml.ExpandedName]decl.AttributeSet {
	out := make(map[ixml.ExpandedName]decl.AttributeSet, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneKeyMap(m map[string][]decl.KeyDefinition) map[string][]decl.KeyDefinition {
	out := make(map[string][]decl.KeyDefinition, len(m))
	for k, v := range m {
		out[k] = append([]decl.KeyDefinition(nil), v...)
	}
	return out
}

func cloneAliasMap(m map[string]decl.NamespaceAlias) map[string]decl.NamespaceAlias {
	out := make(map[string]decl.NamespaceAlias, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFormatMap(m map[string]decl.DecimalFormat) map[string]decl.DecimalFormat {
	out := make(map[string]decl.DecimalFormat, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAccumulatorMap(m map[string]decl.AccumulatorDefinition) map[string]decl.AccumulatorDefinition {
	out := make(map[string]decl.AccumulatorDefinition, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneModeMap(m map[string]decl.ModeDeclaration) map[string]decl.ModeDeclaration {
	out := make(map[string]decl.ModeDeclaration, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneBoolMap(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
