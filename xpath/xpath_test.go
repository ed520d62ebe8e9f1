package xpath_test

import (
	"testing"

	"github.com/midbel/xslt3c/xpath"
)

func eval(t *testing.T, src string, pos, size int, vars map[string]xpath.Sequence) xpath.Sequence {
	t.Helper()
	cp := xpath.NewCompiler()
	expr, err := cp.Compile(src)
	if err != nil {
		t.Fatalf("compile %q: %v", src, err)
	}
	ctx := xpath.NewContext(nil, pos, size, vars)
	seq, err := expr.Find(ctx)
	if err != nil {
		t.Fatalf("eval %q: %v", src, err)
	}
	return seq
}

func TestLiteralsAndArithmetic(t *testing.T) {
	seq := eval(t, "1 + 2 * 3", 1, 1, nil)
	if f, _ := seq.Number(); f != 7 {
		t.Fatalf("want 7, got %v", f)
	}
}

func TestPositionAndLast(t *testing.T) {
	seq := eval(t, "position() = last()", 3, 3, nil)
	if !seq.True() {
		t.Fatalf("expected position()=last() to hold")
	}
	seq = eval(t, "position() = 1", 3, 3, nil)
	if seq.True() {
		t.Fatalf("expected position()=1 to fail at position 3")
	}
}

func TestVariableAndConcat(t *testing.T) {
	vars := map[string]xpath.Sequence{"n": xpath.Singleton("7")}
	seq := eval(t, `concat('x-', $n, '-y')`, 1, 1, vars)
	if seq.String() != "x-7-y" {
		t.Fatalf("got %q", seq.String())
	}
}

func TestBooleanConnectives(t *testing.T) {
	seq := eval(t, "true() and not(false())", 1, 1, nil)
	if !seq.True() {
		t.Fatalf("expected true")
	}
	seq = eval(t, "false() or 1 = 2", 1, 1, nil)
	if seq.True() {
		t.Fatalf("expected false")
	}
}

func TestComparisonPrecedence(t *testing.T) {
	seq := eval(t, "1 + 1 = 2 and 'a' != 'b'", 1, 1, nil)
	if !seq.True() {
		t.Fatalf("expected true")
	}
}

func TestUndefinedVariable(t *testing.T) {
	cp := xpath.NewCompiler()
	expr, err := cp.Compile("$missing")
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	ctx := xpath.NewContext(nil, 1, 1, nil)
	if _, err := expr.Find(ctx); err == nil {
		t.Fatalf("expected error for undefined variable")
	}
}
