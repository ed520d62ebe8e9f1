package pattern

import (
	"math"

	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/nodetest"
	"github.com/midbel/xslt3c/xerr"
)

// RootPattern is the `/` pattern: matches only the document root.
type RootPattern struct {
	header
	Predicate string
}

func NewRoot(source string) *RootPattern { return &RootPattern{header: header{source: source}} }

func (p *RootPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	if !isRoot(node) {
		return false, nil
	}
	return evalPredicate(ctx, p.Predicate, node, nodetest.DocumentNode)
}

func (p *RootPattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *RootPattern) CanMatchAtomicValues() bool                    { return false }
func (p *RootPattern) DefaultPriority() float64                     { return 0.5 }

// DocumentNodePattern is `document-node(...)`: matches the document
// root, optionally constrained by the nested node-test.
type DocumentNodePattern struct {
	header
	Predicate string
}

func NewDocumentNode(source string) *DocumentNodePattern {
	return &DocumentNodePattern{header: header{source: source}}
}

func (p *DocumentNodePattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	if !nodetest.DocumentNode.Matches(node) {
		return false, nil
	}
	return evalPredicate(ctx, p.Predicate, node, nodetest.DocumentNode)
}

func (p *DocumentNodePattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *DocumentNodePattern) CanMatchAtomicValues() bool                    { return false }
func (p *DocumentNodePattern) DefaultPriority() float64                     { return 0.5 }

// NameTestPattern is a single-step pattern built directly from a
// NodeTest: `foo`, `@foo`, `*`, `text()`, `comment()`,
// `processing-instruction()`, `element(ns:name, type)`, and so on.
type NameTestPattern struct {
	header
	Test      nodetest.Test
	Predicate string
}

func NewNameTest(source string, test nodetest.Test, predicate string) *NameTestPattern {
	return &NameTestPattern{header: header{source: source}, Test: test, Predicate: predicate}
}

func (p *NameTestPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	if !p.Test.Matches(node) {
		return false, nil
	}
	return evalPredicate(ctx, p.Predicate, node, p.Test)
}

func (p *NameTestPattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *NameTestPattern) CanMatchAtomicValues() bool                    { return false }

// DefaultPriority is 0.5 whenever the pattern carries its own predicate
// (spec.md §4.3's universal priority rule), otherwise the NodeTest's own
// classification.
func (p *NameTestPattern) DefaultPriority() float64 {
	if p.Predicate != "" {
		return 0.5
	}
	return nodetest.DefaultPriority(p.Test)
}

// PathPattern is a multi-step pattern like `a/b`, `a//b`, or `/a/b`. Each
// step carries its own predicate (evaluated inside walkAxisSteps); the
// path as a whole adds only the absolute/root requirement.
type PathPattern struct {
	header
	Steps    []PatternStep
	Absolute bool
}

func NewPath(source string, steps []PatternStep, absolute bool) *PathPattern {
	return &PathPattern{header: header{source: source}, Steps: steps, Absolute: absolute}
}

func (p *PathPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	curr, ok, err := walkAxisSteps(node, p.Steps, ctx)
	if err != nil || !ok {
		return false, err
	}
	if p.Absolute && !isRoot(curr.Parent()) {
		return false, nil
	}
	return true, nil
}

func (p *PathPattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *PathPattern) CanMatchAtomicValues() bool                    { return false }

// DefaultPriority is 0.5 whenever the last step carries its own
// predicate (spec.md §4.3's universal priority rule applied to the
// path's effective top-level predicate), otherwise the last step's
// NodeTest classification.
func (p *PathPattern) DefaultPriority() float64 {
	if len(p.Steps) == 0 {
		return -0.5
	}
	last := p.Steps[len(p.Steps)-1]
	if last.Predicate != "" {
		return 0.5
	}
	return nodetest.DefaultPriority(last.Test)
}

// UnionPattern is `a | b`: matches whatever either branch matches.
type UnionPattern struct {
	header
	Left, Right Pattern
}

func NewUnion(source string, left, right Pattern) *UnionPattern {
	return &UnionPattern{header: header{source: source}, Left: left, Right: right}
}

func (p *UnionPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	ok, err := p.Left.Matches(node, ctx)
	if err != nil || ok {
		return ok, err
	}
	return p.Right.Matches(node, ctx)
}

func (p *UnionPattern) MatchesAtomicValue(v any, ctx Context) (bool, error) {
	ok, err := p.Left.MatchesAtomicValue(v, ctx)
	if err != nil || ok {
		return ok, err
	}
	return p.Right.MatchesAtomicValue(v, ctx)
}

func (p *UnionPattern) CanMatchAtomicValues() bool {
	return p.Left.CanMatchAtomicValues() || p.Right.CanMatchAtomicValues()
}

func (p *UnionPattern) DefaultPriority() float64 {
	return maxFloat(p.Left.DefaultPriority(), p.Right.DefaultPriority())
}

// IntersectPattern is `a intersect b`: matches nodes both branches match.
type IntersectPattern struct {
	header
	Left, Right Pattern
}

func NewIntersect(source string, left, right Pattern) *IntersectPattern {
	return &IntersectPattern{header: header{source: source}, Left: left, Right: right}
}

func (p *IntersectPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	ok, err := p.Left.Matches(node, ctx)
	if err != nil || !ok {
		return false, err
	}
	return p.Right.Matches(node, ctx)
}

func (p *IntersectPattern) MatchesAtomicValue(v any, ctx Context) (bool, error) {
	ok, err := p.Left.MatchesAtomicValue(v, ctx)
	if err != nil || !ok {
		return false, err
	}
	return p.Right.MatchesAtomicValue(v, ctx)
}

func (p *IntersectPattern) CanMatchAtomicValues() bool {
	return p.Left.CanMatchAtomicValues() && p.Right.CanMatchAtomicValues()
}

func (p *IntersectPattern) DefaultPriority() float64 {
	return maxFloat(p.Left.DefaultPriority(), p.Right.DefaultPriority())
}

// ExceptPattern is `a except b`: matches nodes the left branch matches
// and the right branch does not.
type ExceptPattern struct {
	header
	Left, Right Pattern
}

func NewExcept(source string, left, right Pattern) *ExceptPattern {
	return &ExceptPattern{header: header{source: source}, Left: left, Right: right}
}

func (p *ExceptPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	ok, err := p.Left.Matches(node, ctx)
	if err != nil || !ok {
		return false, err
	}
	excluded, err := p.Right.Matches(node, ctx)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

func (p *ExceptPattern) MatchesAtomicValue(v any, ctx Context) (bool, error) {
	ok, err := p.Left.MatchesAtomicValue(v, ctx)
	if err != nil || !ok {
		return false, err
	}
	excluded, err := p.Right.MatchesAtomicValue(v, ctx)
	if err != nil {
		return false, err
	}
	return !excluded, nil
}

func (p *ExceptPattern) CanMatchAtomicValues() bool { return p.Left.CanMatchAtomicValues() }
func (p *ExceptPattern) DefaultPriority() float64   { return p.Left.DefaultPriority() }

// AtomicPattern matches atomic values rather than nodes. Matches always
// fails; only MatchesAtomicValue is meaningful, and it evaluates
// Predicate alone: Type is stored but not consulted.
type AtomicPattern struct {
	header
	Type      ixml.ExpandedName
	Predicate string
}

func NewAtomic(source string, typ ixml.ExpandedName, predicate string) *AtomicPattern {
	return &AtomicPattern{header: header{source: source}, Type: typ, Predicate: predicate}
}

func (p *AtomicPattern) Matches(ixml.Node, Context) (bool, error) { return false, nil }

func (p *AtomicPattern) MatchesAtomicValue(value any, ctx Context) (bool, error) {
	if p.Predicate == "" {
		return true, nil
	}
	expr, err := ctx.compile(p.Predicate)
	if err != nil {
		return false, nil
	}
	xctx := predicateContext{pos: 1, size: 1, resolver: ctx.Variable}
	seq, err := expr.Find(xctx)
	if err != nil {
		if xerr.IsXTDE0640(err) {
			return false, err
		}
		return false, nil
	}
	// Atomic-value matching has no sibling pool, so the context position
	// is always 1 (spec.md §4.3.1's numeric-predicate-equals-position
	// rule still applies -- it's defined in terms of "the context
	// position", not node siblings specifically).
	if n, ok := seq.NumericValue(); ok {
		return math.Abs(n-1) < numericPredicateTolerance, nil
	}
	return seq.True(), nil
}

func (p *AtomicPattern) CanMatchAtomicValues() bool { return true }
func (p *AtomicPattern) DefaultPriority() float64   { return 0.5 }

// IdPattern is `id('a', 'b')[/steps]`: matches the element(s) with the
// given xml:id value(s), optionally followed by trailing axis steps
// walked from that element outward (spec.md §4.3's trailing-axis
// variants).
type IdPattern struct {
	header
	Values []string
	Steps  []PatternStep
}

func NewID(source string, values []string, steps []PatternStep) *IdPattern {
	return &IdPattern{header: header{source: source}, Values: values, Steps: steps}
}

func (p *IdPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	curr, ok, err := walkAxisSteps(node, p.Steps, ctx)
	if err != nil || !ok {
		return false, err
	}
	return hasMatchingID(curr, p.Values), nil
}

func (p *IdPattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *IdPattern) CanMatchAtomicValues() bool                    { return false }
func (p *IdPattern) DefaultPriority() float64                      { return 0.5 }

// ElementWithIdPattern is the `element-with-id(...)` counterpart to
// IdPattern, matching against any attribute whose schema type derives
// from xs:ID rather than a hard-coded "id" attribute name.
type ElementWithIdPattern struct {
	header
	Values []string
	Steps  []PatternStep
}

func NewElementWithID(source string, values []string, steps []PatternStep) *ElementWithIdPattern {
	return &ElementWithIdPattern{header: header{source: source}, Values: values, Steps: steps}
}

func (p *ElementWithIdPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	curr, ok, err := walkAxisSteps(node, p.Steps, ctx)
	if err != nil || !ok {
		return false, err
	}
	return hasTypedID(curr, p.Values), nil
}

func (p *ElementWithIdPattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *ElementWithIdPattern) CanMatchAtomicValues() bool                    { return false }
func (p *ElementWithIdPattern) DefaultPriority() float64                     { return 0.5 }

// KeyPattern is `key('name', 'value')[/steps]`: matches nodes reachable
// via a declared xsl:key lookup. Per Design Notes §9's resolved Open
// Question, an unresolved key-name prefix is a static XTSE0340 error
// raised at parse time, not here; by the time a KeyPattern exists, Name
// is fully resolved.
type KeyPattern struct {
	header
	Name   ixml.ExpandedName
	Value  string
	Steps  []PatternStep
}

func NewKey(source string, name ixml.ExpandedName, value string, steps []PatternStep) *KeyPattern {
	return &KeyPattern{header: header{source: source}, Name: name, Value: value, Steps: steps}
}

func (p *KeyPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	curr, ok, err := walkAxisSteps(node, p.Steps, ctx)
	if err != nil || !ok {
		return false, err
	}
	nodes, found := ctx.resolveKey(p.Name, p.Value)
	if !found {
		return false, nil
	}
	return containsNode(nodes, curr), nil
}

func (p *KeyPattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *KeyPattern) CanMatchAtomicValues() bool                    { return false }
func (p *KeyPattern) DefaultPriority() float64                      { return 0.5 }

// DocPattern is `doc('uri')[/steps]`: matches nodes reachable from a
// statically-named document.
type DocPattern struct {
	header
	URIs  []string
	Steps []PatternStep
}

func NewDoc(source string, uris []string, steps []PatternStep) *DocPattern {
	return &DocPattern{header: header{source: source}, URIs: uris, Steps: steps}
}

func (p *DocPattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	curr, ok, err := walkAxisSteps(node, p.Steps, ctx)
	if err != nil || !ok {
		return false, err
	}
	nodes, err := ctx.resolveDoc(p.URIs)
	if err != nil {
		return false, nil
	}
	return containsNode(nodes, curr), nil
}

func (p *DocPattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *DocPattern) CanMatchAtomicValues() bool                    { return false }
func (p *DocPattern) DefaultPriority() float64                      { return 0.5 }

// VariablePattern is `$var[/steps]`: matches a node reachable in the
// node-set bound to a global variable.
type VariablePattern struct {
	header
	Name  string
	Steps []PatternStep
}

func NewVariable(source string, name string, steps []PatternStep) *VariablePattern {
	return &VariablePattern{header: header{source: source}, Name: name, Steps: steps}
}

func (p *VariablePattern) Matches(node ixml.Node, ctx Context) (bool, error) {
	curr, ok, err := walkAxisSteps(node, p.Steps, ctx)
	if err != nil || !ok {
		return false, err
	}
	seq, err := ctx.resolveVariable(p.Name)
	if err != nil {
		if xerr.IsXTDE0640(err) {
			return false, err
		}
		return false, nil
	}
	for _, item := range seq {
		if item.Node() == curr {
			return true, nil
		}
	}
	return false, nil
}

func (p *VariablePattern) MatchesAtomicValue(any, Context) (bool, error) { return false, nil }
func (p *VariablePattern) CanMatchAtomicValues() bool                    { return false }
func (p *VariablePattern) DefaultPriority() float64                     { return 0.5 }

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func containsNode(nodes []ixml.Node, target ixml.Node) bool {
	for _, n := range nodes {
		if n == target {
			return true
		}
	}
	return false
}

// xmlNamespace is the fixed XML namespace URI every xml:* attribute
// (xml:id, xml:lang, xml:space, xml:base) lives in, regardless of
// document prefix bindings.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// hasMatchingID reports whether node carries an "xml:id" or an
// unprefixed "id" attribute whose value is one of values (spec.md
// §4.3's Id variant: "node is an element whose xml:id or id attribute
// equals one of the id values").
func hasMatchingID(node ixml.Node, values []string) bool {
	if node == nil || node.Kind() != ixml.KindElement {
		return false
	}
	for _, attr := range node.Attributes() {
		name, ok := attr.Name()
		if !ok || name.Local != "id" {
			continue
		}
		if name.URI != "" && name.URI != xmlNamespace {
			continue
		}
		if stringInSlice(attr.StringValue(), values) {
			return true
		}
	}
	return false
}

// hasTypedID reports whether node carries an attribute whose schema
// type derives from xs:ID and whose value is one of values.
func hasTypedID(node ixml.Node, values []string) bool {
	if node == nil || node.Kind() != ixml.KindElement {
		return false
	}
	idType := ixml.Qualified("http://www.w3.org/2001/XMLSchema", "ID")
	for _, attr := range node.Attributes() {
		typ, ok := attr.Type()
		if !ok || !typ.DerivesFrom(idType) {
			continue
		}
		if stringInSlice(attr.StringValue(), values) {
			return true
		}
	}
	return false
}

func stringInSlice(s string, values []string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
