// Package avt implements AttributeValueTemplates (spec.md §4.5): string
// values mixing literal text with embedded XPath expressions, where
// `{{`/`}}` escape to literal braces and the whole thing evaluates to a
// single string. The brace-balancing scan is the teacher's own iterAVT
// (xslt/avt.go) generalized from a single-use iterator into a reusable,
// cacheable *Template: the teacher rescans an attribute's raw string
// value on every element construction (processAVT calls iterAVT fresh
// each time); this package front-loads that scan once at compile time
// and stores the result as an ordered []Part, matching the
// AttributeValueTemplate invariant in spec.md §3 ("pre-parsed mixed
// literal+embedded-XPath values").
package avt

import (
	"strings"

	"github.com/midbel/xslt3c/exprcache"
	"github.com/midbel/xslt3c/xerr"
	"github.com/midbel/xslt3c/xpath"
)

// Part is one piece of a Template: either a literal string or a compiled
// XPath expression.
type Part struct {
	Literal string
	Expr    xpath.Expr
}

func (p Part) isExpr() bool { return p.Expr != nil }

// Template is a parsed AttributeValueTemplate: an ordered sequence of
// literal and expression parts, ready to Evaluate against any context
// without re-parsing the source (spec.md §4.5).
type Template struct {
	source string
	parts  []Part
}

// OriginalValue returns the source string the Template was parsed from,
// satisfying the round-trip testable property in spec.md §8
// (parse(A.originalValue()).evaluate(ctx) == A.evaluate(ctx)).
func (t *Template) OriginalValue() string { return t.source }

// IsStatic reports whether the template has exactly one literal part
// (spec.md §3's AVT invariant), enabling Evaluate's fast path.
func (t *Template) IsStatic() bool {
	return len(t.parts) == 1 && !t.parts[0].isExpr()
}

// Literal builds a Template that is already fully static, for use sites
// that never had braces to parse (e.g. synthesizing an AVT for a
// non-AVT-bearing attribute). Literal(s).Evaluate(_) always returns s,
// the second round-trip property in spec.md §8.
func Literal(s string) *Template {
	return &Template{source: s, parts: []Part{{Literal: s}}}
}

// Parse compiles source into a Template using the shared process-wide
// expression cache (exprcache.Shared). Use ParseWithCache to inject a
// different XPath collaborator/cache.
func Parse(source string) (*Template, error) {
	return ParseWithCache(source, exprcache.Shared)
}

// ParseWithCache compiles source, scanning left to right and balancing
// braces at arbitrary nesting depth so that expressions containing
// string literals with stray braces are handled correctly (spec.md
// §4.5): `{{` and `}}` escape to literal braces, an unmatched `}`
// without a preceding `{` is a static error, and each `{expr}` span is
// compiled once via cache and stored as an Expr part.
func ParseWithCache(source string, cache *exprcache.Cache) (*Template, error) {
	t := &Template{source: source}
	var lit strings.Builder
	runes := []rune(source)
	i := 0
	flush := func() {
		if lit.Len() > 0 {
			t.parts = append(t.parts, Part{Literal: lit.String()})
			lit.Reset()
		}
	}
	for i < len(runes) {
		c := runes[i]
		switch c {
		case '{':
			if i+1 < len(runes) && runes[i+1] == '{' {
				lit.WriteByte('{')
				i += 2
				continue
			}
			flush()
			expr, next, err := scanExpr(runes, i+1)
			if err != nil {
				return nil, xerr.Wrap(xerr.XTSE0340, err, "invalid attribute value template %q", source)
			}
			compiled, err := cache.Compile(expr)
			if err != nil {
				return nil, xerr.Wrap(xerr.XTSE0340, err, "invalid attribute value template %q", source)
			}
			t.parts = append(t.parts, Part{Expr: compiled})
			i = next
		case '}':
			if i+1 < len(runes) && runes[i+1] == '}' {
				lit.WriteByte('}')
				i += 2
				continue
			}
			return nil, xerr.New(xerr.XTSE0340, "attribute value template %q: unmatched '}'", source)
		default:
			lit.WriteRune(c)
			i++
		}
	}
	flush()
	if len(t.parts) == 0 {
		t.parts = []Part{{Literal: ""}}
	}
	return t, nil
}

// scanExpr reads an embedded expression starting at runes[start] (just
// past the opening '{') up to its matching unescaped '}', tracking
// nested '[]'/'()'/'{}' depth and skipping over quoted string literals
// so braces inside XPath string constants don't terminate the scan
// early (spec.md §4.5).
func scanExpr(runes []rune, start int) (string, int, error) {
	depth := 0
	var quote rune
	var out strings.Builder
	i := start
	for i < len(runes) {
		c := runes[i]
		if quote != 0 {
			out.WriteRune(c)
			if c == quote {
				quote = 0
			}
			i++
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
			out.WriteRune(c)
		case '[', '(':
			depth++
			out.WriteRune(c)
		case ']', ')':
			depth--
			out.WriteRune(c)
		case '{':
			depth++
			out.WriteRune(c)
		case '}':
			if depth == 0 {
				return out.String(), i + 1, nil
			}
			depth--
			out.WriteRune(c)
		default:
			out.WriteRune(c)
		}
		i++
	}
	return "", 0, xerr.New(xerr.XTSE0340, "unterminated expression")
}

// Evaluate concatenates the string value of every part against ctx: a
// literal part contributes its text verbatim, an expression part
// contributes its evaluated string value (an empty sequence contributes
// the empty string, spec.md §4.5). IsStatic Templates take a fast path
// returning the single literal without touching ctx.
func (t *Template) Evaluate(ctx xpath.Context) (string, error) {
	if t.IsStatic() {
		return t.parts[0].Literal, nil
	}
	var out strings.Builder
	for _, p := range t.parts {
		if !p.isExpr() {
			out.WriteString(p.Literal)
			continue
		}
		seq, err := p.Expr.Find(ctx)
		if err != nil {
			return "", err
		}
		out.WriteString(seq.String())
	}
	return out.String(), nil
}
