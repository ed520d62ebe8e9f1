package avt_test

import (
	"testing"

	"github.com/midbel/xslt3c/avt"
	"github.com/midbel/xslt3c/exprcache"
	"github.com/midbel/xslt3c/xpath"
	"github.com/stretchr/testify/require"
)

func newCache() *exprcache.Cache {
	return exprcache.New(xpath.NewCompiler())
}

func TestParseLiteralEscapes(t *testing.T) {
	tpl, err := avt.ParseWithCache("{{literal}}", newCache())
	require.NoError(t, err)
	require.True(t, tpl.IsStatic())

	got, err := tpl.Evaluate(xpath.NewContext(nil, 1, 1, nil))
	require.NoError(t, err)
	require.Equal(t, "{literal}", got)
}

func TestParseEmbeddedExpression(t *testing.T) {
	cache := newCache()
	tpl, err := avt.ParseWithCache("x-{$n}-y", cache)
	require.NoError(t, err)
	require.False(t, tpl.IsStatic())

	ctx := xpath.NewContext(nil, 1, 1, map[string]xpath.Sequence{
		"n": xpath.Singleton("7"),
	})
	got, err := tpl.Evaluate(ctx)
	require.NoError(t, err)
	require.Equal(t, "x-7-y", got)
}

func TestUnmatchedBraceIsError(t *testing.T) {
	_, err := avt.ParseWithCache("}", newCache())
	require.Error(t, err)
}

func TestLiteralRoundTrip(t *testing.T) {
	tpl := avt.Literal("plain text")
	got, err := tpl.Evaluate(xpath.NewContext(nil, 1, 1, nil))
	require.NoError(t, err)
	require.Equal(t, "plain text", got)
}

func TestRoundTripNoBraces(t *testing.T) {
	cache := newCache()
	source := "no braces here"
	tpl, err := avt.ParseWithCache(source, cache)
	require.NoError(t, err)
	require.True(t, tpl.IsStatic())
	require.Equal(t, source, tpl.OriginalValue())

	reparsed, err := avt.ParseWithCache(tpl.OriginalValue(), cache)
	require.NoError(t, err)

	ctx := xpath.NewContext(nil, 1, 1, nil)
	got1, err := tpl.Evaluate(ctx)
	require.NoError(t, err)
	got2, err := reparsed.Evaluate(ctx)
	require.NoError(t, err)
	require.Equal(t, got1, got2)
}

func TestNestedBracesInStringLiteral(t *testing.T) {
	cache := newCache()
	tpl, err := avt.ParseWithCache(`before-{"a}b"}-after`, cache)
	require.NoError(t, err)
	require.False(t, tpl.IsStatic())
}
