// Package exprcache implements the process-wide string -> compiled-XPath
// cache described in spec.md §4.3.1/§4.5/§9: predicate sources and AVT
// expression fragments are parsed once no matter how many threads
// compile stylesheets that repeat them. Because compiled expressions are
// themselves immutable, duplicate compilation under a race is acceptable
// -- the cache favors a lock-free compute-if-absent (sync.Map) over a
// mutex, exactly as Design Notes §9 recommends.
package exprcache

import (
	"sync"

	"github.com/midbel/xslt3c/xpath"
)

// Cache is a concurrency-safe string -> xpath.Expr cache backed by a
// single Compiler.
type Cache struct {
	compiler xpath.Compiler
	entries  sync.Map // string -> xpath.Expr
}

// New builds a Cache that compiles misses with compiler.
func New(compiler xpath.Compiler) *Cache {
	return &Cache{compiler: compiler}
}

// Compile returns the cached Expr for source, compiling and storing it
// if this is the first time source has been seen. Two goroutines racing
// on the same novel source may each compile it once; both compiled
// copies are equivalent and either may end up cached.
func (c *Cache) Compile(source string) (xpath.Expr, error) {
	if v, ok := c.entries.Load(source); ok {
		return v.(xpath.Expr), nil
	}
	expr, err := c.compiler.Compile(source)
	if err != nil {
		return nil, err
	}
	actual, _ := c.entries.LoadOrStore(source, expr)
	return actual.(xpath.Expr), nil
}

// Len reports how many distinct source strings are currently cached,
// for diagnostics and tests.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Shared is the default process-wide cache instance, built over the
// reference xpath.Compiler. Callers that inject a different XPath
// collaborator should build their own exprcache.Cache wrapping it
// instead of using Shared.
var Shared = New(xpath.NewCompiler())
