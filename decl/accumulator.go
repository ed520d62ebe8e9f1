package decl

import "github.com/midbel/xslt3c/pattern"

// AccumulatorPhase is the point during tree traversal an accumulator
// rule fires at (spec.md §3).
type AccumulatorPhase int

const (
	PhasePreDescent AccumulatorPhase = iota
	PhasePostDescent
)

// AccumulatorRule is one xsl:accumulator-rule: a match pattern, the
// phase it fires in, and the expression computing the new accumulator
// value.
type AccumulatorRule struct {
	Match    pattern.Pattern
	Phase    AccumulatorPhase
	NewValue string
}

// AccumulatorDefinition is a compiled xsl:accumulator (spec.md §3).
type AccumulatorDefinition struct {
	Name         string
	InitialValue string
	Rules        []AccumulatorRule
	Streamable   bool
	Type         string
	HasType      bool
}
