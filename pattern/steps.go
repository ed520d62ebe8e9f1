package pattern

import (
	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/nodetest"
)

// Axis is the step relationship a PatternStep walks by, restricted to
// the handful of axes match patterns can use (spec.md §4.2): child and
// attribute (the common case), descendant/descendant-or-self (the `//`
// join), and self (the rarely-used `.` step).
type Axis int

const (
	AxisChild Axis = iota
	AxisAttribute
	AxisDescendant
	AxisDescendantOrSelf
	AxisSelf
)

func (a Axis) String() string {
	switch a {
	case AxisChild:
		return "child"
	case AxisAttribute:
		return "attribute"
	case AxisDescendant:
		return "descendant"
	case AxisDescendantOrSelf:
		return "descendant-or-self"
	case AxisSelf:
		return "self"
	default:
		return "unknown-axis"
	}
}

// PatternStep is one step of a Path (or of the trailing axis steps on
// the Id/ElementWithId/Key/Doc/Variable variants): a NodeTest, the axis
// that reaches it from the following step, and an optional per-step
// predicate.
type PatternStep struct {
	Test      nodetest.Test
	Axis      Axis
	Predicate string
}

func (s PatternStep) checkPredicate(node ixml.Node, ctx Context) (bool, error) {
	return evalPredicate(ctx, s.Predicate, node, s.Test)
}

// walkAxisSteps matches node against the last step and walks the
// remaining steps right-to-left, returning the outermost node reached.
// ok is false if any step's test or predicate fails to hold; err is
// non-nil only for a propagated XTDE0640 (spec.md §4.3's Path/Id/Key/
// Doc/Variable matching algorithm).
func walkAxisSteps(node ixml.Node, steps []PatternStep, ctx Context) (curr ixml.Node, ok bool, err error) {
	if len(steps) == 0 {
		return node, true, nil
	}
	last := steps[len(steps)-1]
	if !last.Test.Matches(node) {
		return nil, false, nil
	}
	if ok, err := last.checkPredicate(node, ctx); err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, nil
	}
	curr = node
	for i := len(steps) - 2; i >= 0; i-- {
		next, matched, err := stepUp(curr, steps[i], ctx)
		if err != nil {
			return nil, false, err
		}
		if !matched {
			return nil, false, nil
		}
		curr = next
	}
	return curr, true, nil
}

// stepUp applies one preceding step to curr, returning the ancestor it
// reaches.
func stepUp(curr ixml.Node, step PatternStep, ctx Context) (ixml.Node, bool, error) {
	switch step.Axis {
	case AxisChild, AxisAttribute:
		parent := curr.Parent()
		if parent == nil || !step.Test.Matches(parent) {
			return nil, false, nil
		}
		ok, err := step.checkPredicate(parent, ctx)
		return parent, ok, err
	case AxisDescendant:
		for p := curr.Parent(); p != nil; p = p.Parent() {
			if !step.Test.Matches(p) {
				continue
			}
			ok, err := step.checkPredicate(p, ctx)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return p, true, nil
			}
		}
		return nil, false, nil
	case AxisDescendantOrSelf:
		for p := curr; p != nil; p = p.Parent() {
			if !step.Test.Matches(p) {
				continue
			}
			ok, err := step.checkPredicate(p, ctx)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return p, true, nil
			}
		}
		return nil, false, nil
	case AxisSelf:
		if !step.Test.Matches(curr) {
			return nil, false, nil
		}
		ok, err := step.checkPredicate(curr, ctx)
		return curr, ok, err
	default:
		return nil, false, nil
	}
}

// isRoot reports whether n is the document root (spec.md §4.3's Root
// pattern match condition, reused by absolute Path matching).
func isRoot(n ixml.Node) bool {
	return n != nil && n.Kind() == ixml.KindRoot
}
