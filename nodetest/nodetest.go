// Package nodetest implements the NodeTest catalog (spec.md §4.1):
// structured predicates over a single node, tested by kind, name and
// schema type. NodeTests are immutable and many are singletons, grounded
// on the teacher's own zero-value matcher singletons (textMatcher{},
// nodeMatcher{}, wildcardMatcher{}) in xslt/pattern.go, reworked into a
// closed sum type per Design Notes §9 instead of an interface with one
// implementation struct per matcher kind scattered across the file.
package nodetest

import "github.com/midbel/xslt3c/ixml"

// Test is the NodeTest contract: a single-node predicate plus a
// diagnostic rendering.
type Test interface {
	Matches(ixml.Node) bool
	String() string
}

// anyNodeTest matches every node reachable on the child axis: elements,
// text, comments and processing instructions -- never root, never
// attribute (spec.md §4.1).
type anyNodeTest struct{}

// AnyNode is the `node()` test on the child axis.
var AnyNode Test = anyNodeTest{}

func (anyNodeTest) Matches(n ixml.Node) bool {
	return n != nil && n.Kind()&ixml.KindChildAxis != 0
}

func (anyNodeTest) String() string { return "node()" }

type textTest struct{}

// TextTest is the `text()` test.
var TextTest Test = textTest{}

func (textTest) Matches(n ixml.Node) bool { return n != nil && n.Kind() == ixml.KindText }
func (textTest) String() string           { return "text()" }

type commentTest struct{}

// CommentTest is the `comment()` test.
var CommentTest Test = commentTest{}

func (commentTest) Matches(n ixml.Node) bool { return n != nil && n.Kind() == ixml.KindComment }
func (commentTest) String() string           { return "comment()" }

// neverMatchTest is the singleton used when the parser detects an
// impossible axis+kind combination (e.g. `@element(...)`, spec.md §4.1).
type neverMatchTest struct{}

// NeverMatch never matches any node.
var NeverMatch Test = neverMatchTest{}

func (neverMatchTest) Matches(ixml.Node) bool { return false }
func (neverMatchTest) String() string         { return "<never-match>" }

// piTest is the `processing-instruction()` / `processing-instruction(target)`
// test; target == "" means any target.
type piTest struct{ target string }

// PI builds a processing-instruction test, optionally constrained to a
// target name.
func PI(target string) Test { return piTest{target: target} }

func (t piTest) Matches(n ixml.Node) bool {
	if n == nil || n.Kind() != ixml.KindInstruction {
		return false
	}
	if t.target == "" {
		return true
	}
	name, ok := n.Name()
	return ok && name.Local == t.target
}

func (t piTest) String() string {
	if t.target == "" {
		return "processing-instruction()"
	}
	return "processing-instruction(" + t.target + ")"
}

// TypeConstraint checks a schema-type annotation against a named type,
// per spec.md §4.1.1.
type TypeConstraint struct {
	Type ixml.ExpandedName
}

const xsdNamespace = "http://www.w3.org/2001/XMLSchema"

func (c TypeConstraint) Satisfied(n ixml.Node) bool {
	if c.Type.URI == xsdNamespace && (c.Type.Local == "untyped" || c.Type.Local == "untypedAtomic") {
		_, ok := n.Type()
		return !ok
	}
	typ, ok := n.Type()
	if !ok {
		return false
	}
	if isBuiltinSimpleType(typ.Name()) {
		return typ.DerivesFrom(c.Type)
	}
	return typ.Name().Local == c.Type.Local
}

// isBuiltinSimpleType reports whether name is one of the XSD built-in
// simple types, for which derivation is checked via DerivesFrom rather
// than exact-name equality (spec.md §4.1.1).
func isBuiltinSimpleType(name ixml.ExpandedName) bool {
	return name.URI == xsdNamespace
}

// elementTest matches element nodes, optionally constrained by
// namespace, local name and/or a schema-type constraint.
type elementTest struct {
	name     ixml.ExpandedName
	hasName  bool
	typeC    *TypeConstraint
}

// Element builds an element NodeTest. An ixml.ExpandedName with a
// wildcard component matches that component unconditionally.
func Element(name ixml.ExpandedName, typeC *TypeConstraint) Test {
	return elementTest{name: name, hasName: true, typeC: typeC}
}

// AnyElement matches any element, regardless of name.
func AnyElement() Test { return elementTest{name: ixml.AnyName(), hasName: true} }

func (t elementTest) Matches(n ixml.Node) bool {
	if n == nil || n.Kind() != ixml.KindElement {
		return false
	}
	if t.hasName {
		name, _ := n.Name()
		if !t.name.Matches(name.URI, name.Local) {
			return false
		}
	}
	if t.typeC != nil {
		return t.typeC.Satisfied(n)
	}
	return true
}

func (t elementTest) String() string {
	if t.typeC != nil {
		return "element(" + t.name.Clark() + ", " + t.typeC.Type.Clark() + ")"
	}
	return "element(" + t.name.Clark() + ")"
}

// attributeTest is the attribute-axis symmetric counterpart of
// elementTest.
type attributeTest struct {
	name    ixml.ExpandedName
	hasName bool
	typeC   *TypeConstraint
}

// Attribute builds an attribute NodeTest.
func Attribute(name ixml.ExpandedName, typeC *TypeConstraint) Test {
	return attributeTest{name: name, hasName: true, typeC: typeC}
}

// AnyAttribute matches any attribute, regardless of name.
func AnyAttribute() Test { return attributeTest{} }

func (t attributeTest) Matches(n ixml.Node) bool {
	if n == nil || n.Kind() != ixml.KindAttribute {
		return false
	}
	if t.hasName {
		name, _ := n.Name()
		if !t.name.Matches(name.URI, name.Local) {
			return false
		}
	}
	if t.typeC != nil {
		return t.typeC.Satisfied(n)
	}
	return true
}

func (t attributeTest) String() string {
	if !t.hasName {
		return "attribute()"
	}
	return "attribute(" + t.name.Clark() + ")"
}

// DocumentNode matches the root of a tree (spec.md §3's Document-node
// pattern variant reuses this test).
type documentNodeTest struct{}

var DocumentNode Test = documentNodeTest{}

func (documentNodeTest) Matches(n ixml.Node) bool { return n != nil && n.Kind() == ixml.KindRoot }
func (documentNodeTest) String() string           { return "document-node()" }

// DefaultPriority computes the pattern default-priority contribution of a
// single NodeTest, per the table in spec.md §4.3: -0.5 for a wildcard or
// kind-only test, -0.25 for a half-wildcard name, 0 for an exact name, and
// 0.25 when a schema-type constraint narrows an exact name further. Only
// this package's own concrete test types carry enough information to
// classify themselves, so the pattern compiler calls this instead of
// re-deriving the rule from the Test interface.
func DefaultPriority(t Test) float64 {
	switch v := t.(type) {
	case elementTest:
		return namePriority(v.name, v.hasName, v.typeC)
	case attributeTest:
		return namePriority(v.name, v.hasName, v.typeC)
	case piTest:
		if v.target == "" {
			return -0.5
		}
		return 0
	default:
		return -0.5
	}
}

func namePriority(name ixml.ExpandedName, hasName bool, typeC *TypeConstraint) float64 {
	if !hasName {
		return -0.5
	}
	wildURI, wildLocal := ixml.IsWildcardURI(name.URI), ixml.IsWildcardLocal(name.Local)
	switch {
	case wildURI && wildLocal:
		return -0.5
	case wildURI || wildLocal:
		return -0.25
	case typeC != nil:
		return 0.25
	default:
		return 0
	}
}
