// Package stream implements the StreamabilityAnalyzer spec.md §4.11
// describes: a four-point capability lattice, a monotonic combinator,
// and a small visitor that classifies templates and whole stylesheets
// while accumulating a diagnostic trail. The visitor shape -- a struct
// that accumulates a running result plus a human-readable trail
// alongside it -- is grounded on the teacher's Tracer interface
// (xslt/tracer.go): Tracer.Enter/Leave/Error thread a *Context through
// execution and log as they go; Analyzer threads a Capability through
// static analysis and appends reasons as it goes, the same "diagnostic
// trail beside a primary computation" shape applied at compile time
// instead of run time.
package stream

import (
	"strings"

	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/pattern"
	"github.com/midbel/xslt3c/stylesheet"
)

// Capability is a point on spec.md §4.11's streamability lattice, in
// increasing order of how much of the input tree an expression or
// template needs to hold onto.
type Capability int

const (
	Motionless Capability = iota
	Consuming
	Grounded
	FreeRanging
)

func (c Capability) String() string {
	switch c {
	case Motionless:
		return "motionless"
	case Consuming:
		return "consuming"
	case Grounded:
		return "grounded"
	default:
		return "free-ranging"
	}
}

// Combine returns the larger-ordinal of a and b, the monotonic join
// spec.md §4.11 requires: combine(a,b).ordinal() >= max(a.ordinal(),
// b.ordinal()) always holds, with equality since the lattice is a
// simple total order.
func Combine(a, b Capability) Capability {
	if b > a {
		return b
	}
	return a
}

// BufferingStrategy is the runtime buffering approach a stylesheet's
// aggregate Capability implies (spec.md §4.11's derived output).
type BufferingStrategy int

const (
	BufferNone BufferingStrategy = iota
	BufferGrounded
	BufferFullDocument
)

func (b BufferingStrategy) String() string {
	switch b {
	case BufferGrounded:
		return "grounded"
	case BufferFullDocument:
		return "full-document"
	default:
		return "none"
	}
}

// strategyFor derives the buffering strategy spec.md §4.11 implies from
// an aggregate capability: motionless/consuming need no buffering,
// grounded needs the matched subtree held, free-ranging needs the whole
// document.
func strategyFor(c Capability) BufferingStrategy {
	switch c {
	case FreeRanging:
		return BufferFullDocument
	case Grounded:
		return BufferGrounded
	default:
		return BufferNone
	}
}

// Analyzer accumulates a Capability and the reasons that drove it, the
// way the teacher's stdioTracer accumulates instrCount/errCount/
// queryCount alongside the run it observes.
type Analyzer struct {
	Capability Capability
	Reasons    []string
}

// note records reason and raises a.Capability to at least c.
func (a *Analyzer) note(c Capability, reason string) {
	a.Capability = Combine(a.Capability, c)
	a.Reasons = append(a.Reasons, reason)
}

// ClassifyExpression applies spec.md §4.11's string heuristic to an
// XPath expression's source text: presence of a reverse axis or `..`
// or `last()` makes it grounded; presence of `preceding::`, `key(`,
// `id(`, `document(` or `//` together with a predicate makes it
// free-ranging; otherwise it is consuming. The heuristic is used in
// place of an AST-level classification because the xpath collaborator
// (spec.md §1's "Explicitly out of scope" XPath expression evaluator)
// exposes no such classification of its own.
func ClassifyExpression(expr string) (Capability, string) {
	for _, axis := range groundingAxes {
		if strings.Contains(expr, axis) {
			return Grounded, "reverse axis " + axis + " in " + expr
		}
	}
	if strings.Contains(expr, "..") {
		return Grounded, "'..' step in " + expr
	}
	if strings.Contains(expr, "last()") {
		return Grounded, "last() in " + expr
	}
	if hasPredicate(expr) {
		for _, marker := range freeRangingMarkers {
			if strings.Contains(expr, marker) {
				return FreeRanging, marker + " combined with a predicate in " + expr
			}
		}
	}
	return Consuming, "single forward pass over " + expr
}

var groundingAxes = []string{
	"parent::",
	"ancestor::",
	"ancestor-or-self::",
	"preceding-sibling::",
}

var freeRangingMarkers = []string{
	"preceding::",
	"key(",
	"id(",
	"document(",
	"//",
}

func hasPredicate(expr string) bool {
	return strings.ContainsRune(expr, '[')
}

// AnalyzeExpression runs ClassifyExpression against expr and folds the
// result into a, returning the raised Analyzer for chaining.
func (a *Analyzer) AnalyzeExpression(expr string) *Analyzer {
	if expr == "" {
		return a
	}
	c, reason := ClassifyExpression(expr)
	a.note(c, reason)
	return a
}

// AnalyzeTemplate classifies one template rule: start from motionless,
// combine with the match pattern's own source text (reverse axes used
// inside a pattern step's predicate, spec.md §4.11's "match pattern's
// axis usage"), and combine with bodyCapability -- the instruction
// body's own declared streaming capability, supplied by the
// out-of-scope instruction compiler since this core never inspects
// Body's concrete shape (spec.md §1).
func (a *Analyzer) AnalyzeTemplate(t decl.TemplateRule, bodyCapability Capability) *Analyzer {
	a.note(Motionless, "template "+stableLabel(t))
	if t.Match != nil {
		a.AnalyzeExpression(t.Match.Source())
	}
	if bodyCapability != Motionless {
		a.note(bodyCapability, "declared body capability for "+stableLabel(t))
	}
	return a
}

func stableLabel(t decl.TemplateRule) string {
	if t.HasName {
		return t.Name.Clark()
	}
	src := ""
	if t.Match != nil {
		src = t.Match.Source()
	}
	return "match=" + src
}

// Result is the stylesheet-level output spec.md §4.11 describes: the
// maximum capability over every template, the combined reasons trail,
// and the derived buffering strategy.
type Result struct {
	Capability Capability
	Reasons    []string
	Buffering  BufferingStrategy
}

// AnalyzeStylesheet classifies every template rule in sheet, combining
// each with the matching entry of bodyCapabilities (keyed by
// stableLabel, defaulting to Motionless when a template's body
// capability was not supplied), and rolls the per-template results up
// into a stylesheet-level Result (spec.md §4.11: "max over all
// templates" plus a derived buffering strategy).
func AnalyzeStylesheet(sheet *stylesheet.CompiledStylesheet, bodyCapabilities map[string]Capability) Result {
	overall := &Analyzer{}
	for _, t := range sheet.Templates() {
		body := bodyCapabilities[stableLabel(t)]
		per := &Analyzer{}
		per.AnalyzeTemplate(t, body)
		overall.Capability = Combine(overall.Capability, per.Capability)
		overall.Reasons = append(overall.Reasons, per.Reasons...)
	}
	return Result{
		Capability: overall.Capability,
		Reasons:    overall.Reasons,
		Buffering:  strategyFor(overall.Capability),
	}
}

// onlyForwardAxes reports whether every step of a Path-shaped pattern
// walks a forward axis (child, attribute, descendant,
// descendant-or-self, self); pattern.Axis has no reverse-axis variant
// at all, since the grammar the pattern package parses never produces
// one (match patterns restrict themselves to forward axes by
// construction) -- reverse-axis usage can only appear inside a pattern
// step's predicate expression, which AnalyzeTemplate already classifies
// through ClassifyExpression against the pattern's full source text.
// This helper exists so a caller holding a decoded []pattern.PatternStep
// (rather than only the pattern's source string) can confirm the same
// invariant without re-parsing.
func onlyForwardAxes(steps []pattern.PatternStep) bool {
	for _, s := range steps {
		switch s.Axis {
		case pattern.AxisChild, pattern.AxisAttribute, pattern.AxisDescendant, pattern.AxisDescendantOrSelf, pattern.AxisSelf:
			continue
		default:
			return false
		}
	}
	return true
}
