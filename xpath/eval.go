package xpath

import "fmt"

// node is the internal expression-tree interface; eval returns a
// Sequence given a Context, the same shape as the teacher's expr/
// evalExpr split in xslt/pattern.go.
type node interface {
	eval(ctx Context) (Sequence, error)
}

type compiledExpr struct {
	source string
	root   node
}

func (e *compiledExpr) Find(ctx Context) (Sequence, error) {
	return e.root.eval(ctx)
}

func (e *compiledExpr) Source() string { return e.source }

type literalNode struct{ value string }

func (n literalNode) eval(Context) (Sequence, error) { return Singleton(n.value), nil }

type numberNode struct{ value float64 }

func (n numberNode) eval(Context) (Sequence, error) { return Singleton(n.value), nil }

type variableNode struct{ name string }

func (n variableNode) eval(ctx Context) (Sequence, error) {
	return ctx.Variable(n.name)
}

// nameRefNode covers the handful of zero-argument keyword-like
// references ("." by itself is not supported by this reference subset;
// use current()) and otherwise reports an undefined-name error: the
// reference compiler does not implement path-step axes, since the
// compiler core never asks the XPath collaborator to evaluate path
// expressions -- only predicates, AVT expressions and select
// expressions. Nodes are navigated by the compiler's own pattern
// machinery instead.
type nameRefNode struct{ name string }

func (n nameRefNode) eval(ctx Context) (Sequence, error) {
	switch n.name {
	case "current":
		return NodeSingleton(ctx.Node()), nil
	default:
		return nil, fmt.Errorf("xpath: %s: undefined name", n.name)
	}
}

type negateNode struct{ operand node }

func (n negateNode) eval(ctx Context) (Sequence, error) {
	v, err := n.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	f, err := v.Number()
	if err != nil {
		return nil, err
	}
	return Singleton(-f), nil
}

type notNode struct{ operand node }

func (n notNode) eval(ctx Context) (Sequence, error) {
	v, err := n.operand.eval(ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(!v.True()), nil
}

type andNode struct{ left, right node }

func (n andNode) eval(ctx Context) (Sequence, error) {
	l, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	if !l.True() {
		return Singleton(false), nil
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(r.True()), nil
}

type orNode struct{ left, right node }

func (n orNode) eval(ctx Context) (Sequence, error) {
	l, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	if l.True() {
		return Singleton(true), nil
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	return Singleton(r.True()), nil
}

type compareNode struct {
	op          tokKind
	left, right node
}

func (n compareNode) eval(ctx Context) (Sequence, error) {
	l, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	ok, err := compareSequences(n.op, l, r)
	if err != nil {
		return nil, err
	}
	return Singleton(ok), nil
}

func compareSequences(op tokKind, l, r Sequence) (bool, error) {
	// Numeric comparison whenever both sides look numeric; otherwise
	// fall back to string comparison, matching the teacher's
	// compareExpr.equal type-switch-on-left-operand shape generalized to
	// every relational operator.
	lf, lerr := l.Number()
	rf, rerr := r.Number()
	if lerr == nil && rerr == nil && (!l.Empty() && !r.Empty()) {
		switch op {
		case tokEq:
			return lf == rf, nil
		case tokNe:
			return lf != rf, nil
		case tokLt:
			return lf < rf, nil
		case tokLe:
			return lf <= rf, nil
		case tokGt:
			return lf > rf, nil
		case tokGe:
			return lf >= rf, nil
		}
	}
	ls, rs := l.String(), r.String()
	switch op {
	case tokEq:
		return ls == rs, nil
	case tokNe:
		return ls != rs, nil
	case tokLt:
		return ls < rs, nil
	case tokLe:
		return ls <= rs, nil
	case tokGt:
		return ls > rs, nil
	case tokGe:
		return ls >= rs, nil
	default:
		return false, fmt.Errorf("xpath: unsupported comparison operator")
	}
}

type arithNode struct {
	op          tokKind
	left, right node
}

func (n arithNode) eval(ctx Context) (Sequence, error) {
	l, err := n.left.eval(ctx)
	if err != nil {
		return nil, err
	}
	r, err := n.right.eval(ctx)
	if err != nil {
		return nil, err
	}
	lf, err := l.Number()
	if err != nil {
		return nil, err
	}
	rf, err := r.Number()
	if err != nil {
		return nil, err
	}
	var out float64
	switch n.op {
	case tokPlus:
		out = lf + rf
	case tokMinus:
		out = lf - rf
	case tokStar:
		out = lf * rf
	case tokDiv:
		if rf == 0 {
			return nil, fmt.Errorf("xpath: division by zero")
		}
		out = lf / rf
	case tokMod:
		if rf == 0 {
			return nil, fmt.Errorf("xpath: division by zero")
		}
		out = float64(int64(lf) % int64(rf))
	}
	return Singleton(out), nil
}

type callNode struct {
	name string
	args []node
}

func (n callNode) eval(ctx Context) (Sequence, error) {
	fn, ok := builtins[n.name]
	if !ok {
		return nil, fmt.Errorf("xpath: %s: unknown function", n.name)
	}
	return fn(ctx, n.args)
}
