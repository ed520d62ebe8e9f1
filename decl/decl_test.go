package decl_test

import (
	"testing"

	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
	"github.com/stretchr/testify/require"
)

func TestMergeAttributeSetOverridesAndConcatenates(t *testing.T) {
	earlier := decl.AttributeSet{
		Name: ixml.Name("a"),
		Uses: []ixml.ExpandedName{ixml.Name("base"), ixml.Name("shared")},
		Body: "earlier-body",
	}
	later := decl.AttributeSet{
		Name: ixml.Name("a"),
		Uses: []ixml.ExpandedName{ixml.Name("shared"), ixml.Name("extra")},
		Body: "later-body",
	}
	merged := decl.MergeAttributeSet(earlier, later)
	require.Equal(t, "later-body", merged.Body)
	require.Equal(t, []ixml.ExpandedName{
		ixml.Name("base"), ixml.Name("shared"), ixml.Name("extra"),
	}, merged.Uses)
}

func TestDecimalFormatFillDefaults(t *testing.T) {
	custom := decl.DecimalFormat{Name: "eu", DecimalSeparator: ','}
	filled := custom.FillDefaults()
	require.Equal(t, ',', rune(filled.DecimalSeparator))
	require.Equal(t, "Infinity", filled.Infinity)
	require.Equal(t, '#', rune(filled.Digit))
}

func TestOutputPropertiesMergeFillsUnsetOnly(t *testing.T) {
	current := decl.OutputProperties{Encoding: "UTF-8"}
	imported := decl.DefaultOutput()
	imported.Indent = true
	imported.HasIndent = true

	merged := current.Merge(imported)
	require.Equal(t, "UTF-8", merged.Encoding)
	require.True(t, merged.HasMethod)
	require.Equal(t, decl.MethodXML, merged.Method)
	require.True(t, merged.Indent)
}

func TestOutputPropertiesValidateEncoding(t *testing.T) {
	require.NoError(t, decl.OutputProperties{}.ValidateEncoding())
	require.NoError(t, decl.OutputProperties{Encoding: "UTF-8"}.ValidateEncoding())
	require.NoError(t, decl.OutputProperties{Encoding: "ISO-8859-1"}.ValidateEncoding())

	err := decl.OutputProperties{Encoding: "not-a-real-charset"}.ValidateEncoding()
	require.Error(t, err)
}

func TestWhitespaceRulesSpecificity(t *testing.T) {
	var rules decl.WhitespaceRules
	rules.Add(decl.WhitespaceRule{Name: ixml.AnyName(), Priority: 0, Preserve: false})
	rules.Add(decl.WhitespaceRule{Name: ixml.AnyIn("urn:x"), Priority: 0, Preserve: true})
	rules.Add(decl.WhitespaceRule{Name: ixml.Qualified("urn:x", "foo"), Priority: 0, Preserve: false})

	require.True(t, rules.ShouldStrip(ixml.Qualified("urn:x", "foo")))
	require.False(t, rules.ShouldStrip(ixml.Qualified("urn:x", "bar")))
	require.True(t, rules.ShouldStrip(ixml.Qualified("urn:y", "anything")))
}

func TestTemplateRuleHasMatchOrName(t *testing.T) {
	named := decl.NewTemplateBuilder().SetName(ixml.Name("foo")).Build()
	require.True(t, named.HasMatchOrName())

	var bare decl.TemplateRule
	require.False(t, bare.HasMatchOrName())
}

func TestUserFunctionLookupKey(t *testing.T) {
	fn := decl.UserFunction{
		URI:   "urn:my",
		Local: "double",
		Params: []decl.FunctionParameter{
			{Name: "x"},
		},
	}
	require.Equal(t, "{urn:my}double/1", fn.LookupKey())
}
