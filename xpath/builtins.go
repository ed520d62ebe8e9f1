package xpath

import "fmt"

// builtinFunc is a reference-compiler function implementation; args are
// the unevaluated argument expression trees so functions like count()
// decide for themselves whether/how often to evaluate them.
type builtinFunc func(ctx Context, args []node) (Sequence, error)

// builtins is the reference compiler's function table -- a small,
// explicitly-scoped subset of the XPath 3.1 function library, enough to
// exercise pattern predicates (position()/last()) and attribute value
// templates (concat(), string(), boolean tests) in this module's own
// tests. A production deployment swaps in the real collaborator; the
// compiler core never calls into this table directly, only through the
// Compiler/Expr interfaces.
var builtins = map[string]builtinFunc{
	"true":    func(Context, []node) (Sequence, error) { return Singleton(true), nil },
	"false":   func(Context, []node) (Sequence, error) { return Singleton(false), nil },
	"position": func(ctx Context, _ []node) (Sequence, error) {
		return Singleton(float64(ctx.Position())), nil
	},
	"last": func(ctx Context, _ []node) (Sequence, error) {
		return Singleton(float64(ctx.Size())), nil
	},
	"current": func(ctx Context, _ []node) (Sequence, error) {
		return NodeSingleton(ctx.Node()), nil
	},
	"not": func(ctx Context, args []node) (Sequence, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("not(): expects one argument")
		}
		v, err := args[0].eval(ctx)
		if err != nil {
			return nil, err
		}
		return Singleton(!v.True()), nil
	},
	"boolean": func(ctx Context, args []node) (Sequence, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("boolean(): expects one argument")
		}
		v, err := args[0].eval(ctx)
		if err != nil {
			return nil, err
		}
		return Singleton(v.True()), nil
	},
	"string": func(ctx Context, args []node) (Sequence, error) {
		if len(args) == 0 {
			return Singleton(ctx.Node().StringValue()), nil
		}
		v, err := args[0].eval(ctx)
		if err != nil {
			return nil, err
		}
		return Singleton(v.String()), nil
	},
	"number": func(ctx Context, args []node) (Sequence, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("number(): expects one argument")
		}
		v, err := args[0].eval(ctx)
		if err != nil {
			return nil, err
		}
		f, err := v.Number()
		if err != nil {
			return nil, err
		}
		return Singleton(f), nil
	},
	"concat": func(ctx Context, args []node) (Sequence, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("concat(): expects at least two arguments")
		}
		var out string
		for _, a := range args {
			v, err := a.eval(ctx)
			if err != nil {
				return nil, err
			}
			out += v.String()
		}
		return Singleton(out), nil
	},
}
