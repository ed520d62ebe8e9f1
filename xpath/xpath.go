// Package xpath defines the contract spec.md treats as an external
// collaborator -- "the compiler core depends on an injected XPath
// parser/evaluator behind a compile(source string) -> opaque-handle
// interface; this module does not implement XPath itself" (spec.md §5,
// Non-goals) -- plus a compact reference implementation of that contract
// so the pattern compiler, AVT evaluator and this package's own tests
// have something concrete to compile and run against. The reference
// implementation deliberately does not implement path-step axes: node
// navigation in this codebase is the job of the pattern/nodetest
// machinery, not the XPath collaborator, so only literals, arithmetic,
// comparisons, booleans, variables and a small function table are
// supported here.
package xpath

import (
	"fmt"
	"strconv"

	"github.com/midbel/xslt3c/ixml"
)

// Item is a single XDM item: either an atomic value or a node.
type Item struct {
	val  any
	node ixml.Node
}

// ValueItem wraps an atomic value (string, float64 or bool).
func ValueItem(v any) Item { return Item{val: v} }

// NodeItem wraps a node.
func NodeItem(n ixml.Node) Item { return Item{node: n} }

// Node returns the item's node, or nil if it is an atomic value.
func (it Item) Node() ixml.Node { return it.node }

// Value returns the item's atomic value, or the node's string value if
// it wraps a node.
func (it Item) Value() any {
	if it.node != nil {
		return it.node.StringValue()
	}
	return it.val
}

// Sequence is an ordered list of items, the XDM result of every
// expression evaluation.
type Sequence []Item

// Singleton builds a one-item atomic Sequence.
func Singleton(v any) Sequence { return Sequence{ValueItem(v)} }

// NodeSingleton builds a one-item node Sequence.
func NodeSingleton(n ixml.Node) Sequence { return Sequence{NodeItem(n)} }

// Empty is the zero-length Sequence.
func Empty() Sequence { return Sequence{} }

// Empty reports whether the sequence has no items.
func (s Sequence) Empty() bool { return len(s) == 0 }

// True computes the XPath effective boolean value of the sequence: an
// empty sequence is false; a single boolean/number/string item coerces
// via its own truthiness; anything else (non-empty node sequences) is
// true.
func (s Sequence) True() bool {
	if len(s) == 0 {
		return false
	}
	if len(s) > 1 {
		return true
	}
	switch v := s[0].val.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return s[0].node != nil
	}
}

// Number coerces the sequence's first item to a float64.
func (s Sequence) Number() (float64, error) {
	if len(s) == 0 {
		return 0, fmt.Errorf("xpath: cannot convert empty sequence to number")
	}
	switch v := s[0].Value().(type) {
	case float64:
		return v, nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("xpath: %q is not numeric", v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("xpath: cannot convert item to number")
	}
}

// NumericValue reports the sequence's first item as a float64 only if it
// is a genuinely numeric atomic value (not a numeric-looking string): the
// distinction the XSLT pattern predicate rule "a predicate that evaluates
// to a number is a positional test, otherwise effective-boolean-value is
// used" depends on (spec.md §4.3.1).
func (s Sequence) NumericValue() (float64, bool) {
	if len(s) != 1 {
		return 0, false
	}
	f, ok := s[0].val.(float64)
	return f, ok
}

// String coerces the sequence's first item to its string value.
func (s Sequence) String() string {
	if len(s) == 0 {
		return ""
	}
	switch v := s[0].Value().(type) {
	case string:
		return v
	case float64:
		return formatFloat(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

func formatFloat(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Context is the dynamic evaluation context an expression runs under:
// the context node, its position and size within the current focus, and
// variable bindings reachable from the enclosing scope (spec.md §4.3.1
// predicate-evaluation rules, §4.5 AVT evaluation rules).
type Context interface {
	Node() ixml.Node
	Position() int
	Size() int
	Variable(name string) (Sequence, error)
}

// Expr is a compiled expression: opaque to every caller except via
// Find, matching the "compile once, evaluate many times" contract
// spec.md's external-interfaces section asks for.
type Expr interface {
	Find(ctx Context) (Sequence, error)
	Source() string
}

// Compiler turns expression source text into an Expr.
type Compiler interface {
	Compile(source string) (Expr, error)
}

type simpleContext struct {
	node ixml.Node
	pos  int
	size int
	vars map[string]Sequence
}

func (c simpleContext) Node() ixml.Node { return c.node }
func (c simpleContext) Position() int   { return c.pos }
func (c simpleContext) Size() int       { return c.size }

func (c simpleContext) Variable(name string) (Sequence, error) {
	v, ok := c.vars[name]
	if !ok {
		return nil, fmt.Errorf("xpath: $%s: undefined variable", name)
	}
	return v, nil
}

// NewContext builds a Context over a fixed node/position/size and a
// flat variable-name -> Sequence binding map.
func NewContext(node ixml.Node, pos, size int, vars map[string]Sequence) Context {
	return simpleContext{node: node, pos: pos, size: size, vars: vars}
}
