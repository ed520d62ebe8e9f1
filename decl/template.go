package decl

import (
	"fmt"

	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/pattern"
)

// TemplateParameter is one xsl:param of a template rule or named
// template: an expanded name, a default (select expression xor literal
// content body), and the tunnel/required flags spec.md §3 lists.
type TemplateParameter struct {
	Name     ixml.ExpandedName
	Select   string
	Default  Body
	Tunnel   bool
	Required bool
}

// TemplateRule is a compiled xsl:template (spec.md §3). At least one of
// {Match, Name} must be set. Neither this struct, TemplateBuilder.Build
// nor stylesheet.Builder.Build checks it; HasMatchOrName reports whether
// a rule satisfies it.
type TemplateRule struct {
	Match       pattern.Pattern
	Name        ixml.ExpandedName
	HasName     bool
	Mode        string
	Priority    float64
	HasPriority bool
	Import      int
	DeclIndex   int
	Params      []TemplateParameter
	Body        Body
	Visibility  Visibility
}

// EffectivePriority is the rule's explicit priority if one was given,
// otherwise its match pattern's default priority (spec.md §3).
func (t TemplateRule) EffectivePriority() float64 {
	if t.HasPriority {
		return t.Priority
	}
	if t.Match != nil {
		return t.Match.DefaultPriority()
	}
	return 0
}

// TemplateBuilder accumulates TemplateRule fields while a stylesheet compiler
// reads one xsl:template element, mirroring the teacher's own
// field-by-field NewTemplate in xslt/template.go but finishing with an
// explicit Build() that returns an immutable value instead of handing
// out the builder itself.
type TemplateBuilder struct {
	rule TemplateRule
}

func NewTemplateBuilder() *TemplateBuilder {
	return &TemplateBuilder{}
}

func (b *TemplateBuilder) SetMatch(p pattern.Pattern) *TemplateBuilder {
	b.rule.Match = p
	return b
}

func (b *TemplateBuilder) SetName(name ixml.ExpandedName) *TemplateBuilder {
	b.rule.Name = name
	b.rule.HasName = true
	return b
}

func (b *TemplateBuilder) SetMode(mode string) *TemplateBuilder {
	b.rule.Mode = mode
	return b
}

func (b *TemplateBuilder) SetPriority(p float64) *TemplateBuilder {
	b.rule.Priority = p
	b.rule.HasPriority = true
	return b
}

func (b *TemplateBuilder) SetPrecedence(importPrec, declIndex int) *TemplateBuilder {
	b.rule.Import = importPrec
	b.rule.DeclIndex = declIndex
	return b
}

func (b *TemplateBuilder) AddParam(p TemplateParameter) *TemplateBuilder {
	b.rule.Params = append(b.rule.Params, p)
	return b
}

func (b *TemplateBuilder) SetBody(body Body) *TemplateBuilder {
	b.rule.Body = body
	return b
}

func (b *TemplateBuilder) SetVisibility(v Visibility) *TemplateBuilder {
	b.rule.Visibility = v
	return b
}

// Build returns the finished TemplateRule. It does not enforce the "at
// least one of {match, name}" invariant, and stylesheet.Builder.Build
// does not either; callers can check it with HasMatchOrName.
func (b *TemplateBuilder) Build() TemplateRule {
	return b.rule
}

// HasMatchOrName reports whether t satisfies the "at least one of
// {match, name}" invariant spec.md §3 requires of every TemplateRule.
func (t TemplateRule) HasMatchOrName() bool {
	return t.Match != nil || t.HasName
}

func (t TemplateRule) String() string {
	if t.HasName {
		return fmt.Sprintf("template name=%s", t.Name.Clark())
	}
	src := ""
	if t.Match != nil {
		src = t.Match.Source()
	}
	return fmt.Sprintf("template match=%q mode=%q", src, t.Mode)
}
