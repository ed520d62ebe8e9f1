package nodetest_test

import (
	"testing"

	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/nodetest"
)

type fakeType struct {
	name  ixml.ExpandedName
	bases []ixml.ExpandedName
}

func (t fakeType) Name() ixml.ExpandedName { return t.name }

func (t fakeType) DerivesFrom(target ixml.ExpandedName) bool {
	if t.name.Equal(target) {
		return true
	}
	for _, b := range t.bases {
		if b.Equal(target) {
			return true
		}
	}
	return false
}

func TestAnyNodeExcludesRootAndAttribute(t *testing.T) {
	root := ixml.NewRoot()
	elem := ixml.NewElement(ixml.Name("a"))
	root.Append(elem)
	attr := ixml.NewAttribute(ixml.Name("id"), "x")
	elem.AppendAttr(attr)

	if nodetest.AnyNode.Matches(root) {
		t.Fatalf("node() must not match the document root")
	}
	if nodetest.AnyNode.Matches(attr) {
		t.Fatalf("node() must not match an attribute")
	}
	if !nodetest.AnyNode.Matches(elem) {
		t.Fatalf("node() must match an element")
	}
}

func TestElementNameAndNamespace(t *testing.T) {
	elem := ixml.NewElement(ixml.Qualified("urn:a", "foo"))
	test := nodetest.Element(ixml.Qualified("urn:a", "foo"), nil)
	if !test.Matches(elem) {
		t.Fatalf("expected exact name match")
	}
	other := nodetest.Element(ixml.Qualified("urn:b", "foo"), nil)
	if other.Matches(elem) {
		t.Fatalf("expected namespace mismatch to fail")
	}
	wildNS := nodetest.Element(ixml.AnyIn("urn:a"), nil)
	if !wildNS.Matches(elem) {
		t.Fatalf("{urn:a}* should match any local name in urn:a")
	}
}

func TestPITargetMatch(t *testing.T) {
	pi := ixml.NewInstruction("xml-stylesheet", "href=\"x\"")
	test := nodetest.PI("xml-stylesheet")
	if !test.Matches(pi) {
		t.Fatalf("expected PI target match")
	}
	if nodetest.PI("other").Matches(pi) {
		t.Fatalf("expected PI target mismatch")
	}
}

func TestTypeConstraintUntyped(t *testing.T) {
	elem := ixml.NewElement(ixml.Name("a"))
	c := nodetest.TypeConstraint{Type: ixml.Qualified("http://www.w3.org/2001/XMLSchema", "untyped")}
	if !c.Satisfied(elem) {
		t.Fatalf("expected untyped node to satisfy xs:untyped")
	}
}

func TestTypeConstraintDerivation(t *testing.T) {
	base := ixml.Qualified("http://www.w3.org/2001/XMLSchema", "integer")
	elem := ixml.NewElement(ixml.Name("a")).WithType(fakeType{
		name:  ixml.Qualified("http://www.w3.org/2001/XMLSchema", "int"),
		bases: []ixml.ExpandedName{base},
	})
	c := nodetest.TypeConstraint{Type: base}
	if !c.Satisfied(elem) {
		t.Fatalf("expected xs:int to derive from xs:integer")
	}
}

func TestTypeConstraintNonBuiltinExactName(t *testing.T) {
	custom := ixml.Qualified("urn:app", "Money")
	elem := ixml.NewElement(ixml.Name("a")).WithType(fakeType{name: custom})
	c := nodetest.TypeConstraint{Type: custom}
	if !c.Satisfied(elem) {
		t.Fatalf("expected exact local-name match for non builtin types")
	}
}
