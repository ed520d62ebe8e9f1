package pattern_test

import (
	"testing"

	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/pattern"
	"github.com/midbel/xslt3c/xerr"
	"github.com/midbel/xslt3c/xpath"
)

func buildCatalog() (root, catalog, book1, title1, book2, title2 *ixml.Tree) {
	root = ixml.NewRoot()
	catalog = ixml.NewElement(ixml.Name("catalog"))
	root.Append(catalog)

	book1 = ixml.NewElement(ixml.Name("book"))
	book1.AppendAttr(ixml.NewAttribute(ixml.Name("id"), "b1"))
	title1 = ixml.NewElement(ixml.Name("title"))
	title1.Append(ixml.NewText("Foo"))
	book1.Append(title1)

	book2 = ixml.NewElement(ixml.Name("book"))
	book2.AppendAttr(ixml.NewAttribute(ixml.Name("id"), "b2"))
	title2 = ixml.NewElement(ixml.Name("title"))
	title2.Append(ixml.NewText("Bar"))
	book2.Append(title2)

	catalog.Append(book1)
	catalog.Append(book2)
	return
}

func mustParse(t *testing.T, src string) pattern.Pattern {
	t.Helper()
	pat, err := pattern.Parse(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return pat
}

func mustMatch(t *testing.T, pat pattern.Pattern, node ixml.Node, want bool) {
	t.Helper()
	ok, err := pat.Matches(node, pattern.Context{})
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if ok != want {
		t.Fatalf("Matches = %v, want %v", ok, want)
	}
}

func TestRootPattern(t *testing.T) {
	root, catalog, _, _, _, _ := buildCatalog()
	pat := mustParse(t, "/")
	mustMatch(t, pat, root, true)
	mustMatch(t, pat, catalog, false)
	if pat.DefaultPriority() != 0.5 {
		t.Fatalf("default priority = %v, want 0.5", pat.DefaultPriority())
	}
}

func TestNameTestPriorities(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"book", 0},
		{"*", -0.5},
		{"book:*", -0.25},
	}
	for _, c := range cases {
		pat, err := pattern.ParseWithResolver(c.src, func(prefix string) (string, bool) {
			return "urn:" + prefix, true
		})
		if err != nil {
			t.Fatalf("parse %q: %v", c.src, err)
		}
		if got := pat.DefaultPriority(); got != c.want {
			t.Fatalf("%q priority = %v, want %v", c.src, got, c.want)
		}
	}
}

func TestPathPattern(t *testing.T) {
	_, catalog, book1, title1, _, _ := buildCatalog()
	pat := mustParse(t, "catalog/book")
	mustMatch(t, pat, book1, true)
	mustMatch(t, pat, catalog, false)
	mustMatch(t, pat, title1, false)

	deep := mustParse(t, "catalog/book/title")
	mustMatch(t, deep, title1, true)
	mustMatch(t, deep, book1, false)
}

func TestAbsolutePathPattern(t *testing.T) {
	_, _, book1, _, _, _ := buildCatalog()
	pat := mustParse(t, "/catalog/book")
	mustMatch(t, pat, book1, true)
}

func TestDescendantPathPattern(t *testing.T) {
	_, catalog, _, title1, _, _ := buildCatalog()
	pat := mustParse(t, "catalog//title")
	mustMatch(t, pat, title1, true)
	mustMatch(t, pat, catalog, false)
}

func TestUnionIntersectExcept(t *testing.T) {
	_, _, book1, title1, book2, _ := buildCatalog()

	union := mustParse(t, "book | title")
	mustMatch(t, union, book1, true)
	mustMatch(t, union, title1, true)

	intersect := mustParse(t, "book intersect book")
	mustMatch(t, intersect, book1, true)

	except := mustParse(t, "book except title")
	mustMatch(t, except, book1, true)
	mustMatch(t, except, title1, false)
	_ = book2
}

func TestVariablePredicate(t *testing.T) {
	_, _, book1, _, book2, _ := buildCatalog()
	ctx := pattern.Context{
		Variable: func(name string) (xpath.Sequence, error) {
			return xpath.Sequence{xpath.ValueItem("b2")}, nil
		},
	}
	pat := mustParse(t, `book[$wanted = 'b2']`)
	ok, err := pat.Matches(book1, ctx)
	if err != nil || !ok {
		t.Fatalf("expected predicate to hold for book1, ok=%v err=%v", ok, err)
	}
	ok, err = pat.Matches(book2, ctx)
	if err != nil || !ok {
		t.Fatalf("expected predicate to hold for book2, ok=%v err=%v", ok, err)
	}
}

func TestPositionalPredicate(t *testing.T) {
	_, _, book1, _, book2, _ := buildCatalog()
	first := mustParse(t, "book[1]")
	mustMatch(t, first, book1, true)
	mustMatch(t, first, book2, false)

	second := mustParse(t, "book[2]")
	mustMatch(t, second, book1, false)
	mustMatch(t, second, book2, true)
}

func TestAttributeAxis(t *testing.T) {
	_, _, book1, _, _, _ := buildCatalog()
	attrs := book1.Attributes()
	if len(attrs) != 1 {
		t.Fatalf("expected one attribute")
	}
	pat := mustParse(t, "book/@id")
	mustMatch(t, pat, attrs[0], true)
}

func TestIDPattern(t *testing.T) {
	_, _, book1, _, book2, _ := buildCatalog()
	pat := mustParse(t, `id('b1')`)
	mustMatch(t, pat, book1, true)
	mustMatch(t, pat, book2, false)
}

func TestKeyPatternWithResolver(t *testing.T) {
	_, _, book1, _, book2, _ := buildCatalog()
	ctx := pattern.Context{
		Key: func(name ixml.ExpandedName, value string) ([]ixml.Node, bool) {
			if name.Local != "book-by-id" {
				return nil, false
			}
			if value == "b2" {
				return []ixml.Node{book2}, true
			}
			return nil, false
		},
	}
	pat := mustParse(t, `key('book-by-id', 'b2')`)
	ok, err := pat.Matches(book2, ctx)
	if err != nil || !ok {
		t.Fatalf("expected key pattern to match book2, ok=%v err=%v", ok, err)
	}
	ok, err = pat.Matches(book1, ctx)
	if err != nil || ok {
		t.Fatalf("expected key pattern not to match book1, ok=%v err=%v", ok, err)
	}
}

func TestVariablePattern(t *testing.T) {
	_, _, book1, _, book2, _ := buildCatalog()
	ctx := pattern.Context{
		Variable: func(name string) (xpath.Sequence, error) {
			if name != "selected" {
				return nil, nil
			}
			return xpath.Sequence{xpath.NodeItem(book2)}, nil
		},
	}
	pat := mustParse(t, "$selected")
	ok, err := pat.Matches(book2, ctx)
	if err != nil || !ok {
		t.Fatalf("expected $selected to match book2, ok=%v err=%v", ok, err)
	}
	ok, err = pat.Matches(book1, ctx)
	if err != nil || ok {
		t.Fatalf("expected $selected not to match book1, ok=%v err=%v", ok, err)
	}
}

func TestXTDE0640Propagates(t *testing.T) {
	_, _, book1, _, _, _ := buildCatalog()
	pat := mustParse(t, "book[$missing]")
	ctx := pattern.Context{
		Variable: func(name string) (xpath.Sequence, error) {
			return nil, xerr.New(xerr.XTDE0640, "undeclared variable $%s", name)
		},
	}
	_, err := pat.Matches(book1, ctx)
	if !xerr.IsXTDE0640(err) {
		t.Fatalf("expected XTDE0640 to propagate, got %v", err)
	}
}

func TestNonXTDE0640PredicateErrorSwallowed(t *testing.T) {
	_, _, book1, _, _, _ := buildCatalog()
	pat := mustParse(t, "book[1 div 0]")
	ok, err := pat.Matches(book1, pattern.Context{})
	if err != nil {
		t.Fatalf("expected non-XTDE0640 predicate error to be swallowed, got %v", err)
	}
	if ok {
		t.Fatalf("expected swallowed predicate error to report no-match")
	}
}
