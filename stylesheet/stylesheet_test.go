package stylesheet_test

import (
	"testing"

	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/stylesheet"
	"github.com/stretchr/testify/require"
)

func TestBuildRejectsUndeclaredAttributeSetReference(t *testing.T) {
	b := stylesheet.NewBuilder("file:///main.xsl", "3.0")
	b.AddAttributeSet(decl.AttributeSet{
		Name: ixml.Name("a"),
		Uses: []ixml.ExpandedName{ixml.Name("missing")},
	})
	_, err := b.Build()
	require.Error(t, err)
}

func TestBuildAcceptsResolvedAttributeSetReference(t *testing.T) {
	b := stylesheet.NewBuilder("file:///main.xsl", "3.0")
	b.AddAttributeSet(decl.AttributeSet{Name: ixml.Name("base")})
	b.AddAttributeSet(decl.AttributeSet{
		Name: ixml.Name("a"),
		Uses: []ixml.ExpandedName{ixml.Name("base")},
	})
	sheet, err := b.Build()
	require.NoError(t, err)
	_, ok := sheet.AttributeSet(ixml.Name("a"))
	require.True(t, ok)
}

func TestNamedTemplateFirstWinsOnMerge(t *testing.T) {
	main := stylesheet.NewBuilder("file:///main.xsl", "3.0")
	imported := stylesheet.NewBuilder("file:///a.xsl", "3.0")

	mainTpl := decl.NewTemplateBuilder().SetName(ixml.Name("t")).SetBody("main").Build()
	importedTpl := decl.NewTemplateBuilder().SetName(ixml.Name("t")).SetBody("imported").Build()
	main.AddTemplate(mainTpl)
	imported.AddTemplate(importedTpl)

	main.Merge(imported, true)
	sheet, err := main.Build()
	require.NoError(t, err)

	got, ok := sheet.NamedTemplate(ixml.Name("t"))
	require.True(t, ok)
	require.Equal(t, "main", got.Body)
}

func TestAttributeSetMergeOnImportOverridesLater(t *testing.T) {
	main := stylesheet.NewBuilder("file:///main.xsl", "3.0")
	imported := stylesheet.NewBuilder("file:///a.xsl", "3.0")

	imported.AddAttributeSet(decl.AttributeSet{Name: ixml.Name("a"), Body: "base", Uses: []ixml.ExpandedName{ixml.Name("other")}})
	imported.AddAttributeSet(decl.AttributeSet{Name: ixml.Name("other")})
	main.AddAttributeSet(decl.AttributeSet{Name: ixml.Name("a"), Body: "override"})

	main.Merge(imported, true)
	sheet, err := main.Build()
	require.NoError(t, err)

	a, ok := sheet.AttributeSet(ixml.Name("a"))
	require.True(t, ok)
	require.Equal(t, "override", a.Body)
	require.Contains(t, a.Uses, ixml.Name("other"))
}

func TestGlobalVariableDeduplicationLastWinsWithinBuilder(t *testing.T) {
	b := stylesheet.NewBuilder("file:///main.xsl", "3.0")
	b.AddVariable(decl.NewGlobalVariable(ixml.Name("n"), false, "1", decl.VisibilityPrivate))
	b.AddVariable(decl.NewGlobalVariable(ixml.Name("n"), false, "2", decl.VisibilityPrivate))

	sheet, err := b.Build()
	require.NoError(t, err)
	vars := sheet.Variables()
	require.Len(t, vars, 1)
	require.Equal(t, "2", vars[0].Select)
}

func TestDecimalFormatDefaultIsPresent(t *testing.T) {
	b := stylesheet.NewBuilder("file:///main.xsl", "3.0")
	sheet, err := b.Build()
	require.NoError(t, err)

	def, ok := sheet.DecimalFormat("")
	require.True(t, ok)
	require.Equal(t, '.', def.DecimalSeparator)
}
