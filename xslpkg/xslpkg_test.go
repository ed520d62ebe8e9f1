package xslpkg_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/resolve"
	"github.com/midbel/xslt3c/stylesheet"
	"github.com/midbel/xslt3c/xslpkg"
	"github.com/stretchr/testify/require"
)

func emptyPackage(t *testing.T, name, version string) *xslpkg.Package {
	t.Helper()
	b := stylesheet.NewBuilder("urn:"+name, "3.0")
	sheet, err := b.Build()
	require.NoError(t, err)
	return xslpkg.NewPackage(name, version, sheet, nil)
}

func TestEffectiveVisibilityFallsBackToDeclared(t *testing.T) {
	pkg := emptyPackage(t, "p", "1.0")
	require.Equal(t, decl.VisibilityPrivate, pkg.EffectiveVisibility("name:foo", decl.VisibilityPrivate))

	pkg.SetOverride("name:foo", decl.VisibilityHidden)
	require.Equal(t, decl.VisibilityHidden, pkg.EffectiveVisibility("name:foo", decl.VisibilityPrivate))
}

func TestHasAbstractComponents(t *testing.T) {
	b := stylesheet.NewBuilder("urn:p", "3.0")
	b.AddTemplate(decl.NewTemplateBuilder().
		SetName(ixml.Name("t")).
		SetVisibility(decl.VisibilityAbstract).
		Build())
	sheet, err := b.Build()
	require.NoError(t, err)
	pkg := xslpkg.NewPackage("p", "1.0", sheet, nil)

	require.True(t, pkg.HasAbstractComponents())
	require.False(t, pkg.IsComplete())
	require.Len(t, pkg.AbstractTemplates(), 1)
}

func TestOverrideOfFinalFails(t *testing.T) {
	pkg := emptyPackage(t, "p", "1.0")
	ov := xslpkg.OverrideDeclaration{Key: "name:foo", Visibility: decl.VisibilityPublic}
	err := ov.Apply(pkg, decl.VisibilityFinal)
	require.Error(t, err)
}

func TestAcceptDeclarationWildcardMatch(t *testing.T) {
	accept := xslpkg.AcceptDeclaration{
		Component:  xslpkg.SelectFunction,
		Names:      []string{"{urn:my}*"},
		Visibility: decl.VisibilityHidden,
	}
	require.True(t, accept.Matches("{urn:my}double#1"))
	require.False(t, accept.Matches("{urn:other}double#1"))
}

func TestCheckAbstractComponentsOverridden(t *testing.T) {
	b := stylesheet.NewBuilder("urn:p", "3.0")
	b.AddTemplate(decl.NewTemplateBuilder().
		SetName(ixml.Name("t")).
		SetVisibility(decl.VisibilityAbstract).
		Build())
	sheet, err := b.Build()
	require.NoError(t, err)
	pkg := xslpkg.NewPackage("p", "1.0", sheet, nil)

	require.Error(t, xslpkg.CheckAbstractComponentsOverridden(pkg))

	key := xslpkg.NamedTemplateKey(ixml.Name("t"))
	pkg.SetOverride(key, decl.VisibilityPublic)
	require.NoError(t, xslpkg.CheckAbstractComponentsOverridden(pkg))
}

type stubCompiler struct {
	mu    sync.Mutex
	calls int
}

func (c *stubCompiler) CompilePackage(source, baseURI string) (*xslpkg.Package, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	b := stylesheet.NewBuilder(baseURI, "3.0")
	sheet, err := b.Build()
	if err != nil {
		return nil, err
	}
	return xslpkg.NewPackage(source, "1.0", sheet, nil), nil
}

func TestPackageResolverCollapsesConcurrentResolution(t *testing.T) {
	compiler := &stubCompiler{}
	locations := xslpkg.LocationMap{"p": "urn:p"}
	resolver := xslpkg.NewPackageResolver(compiler, locations)

	const n = 8
	results := make([]*xslpkg.Package, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pkg, err := resolver.Resolve("p", "1.0", "", resolve.NewLoadSet())
			require.NoError(t, err)
			results[i] = pkg
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.Same(t, results[0], results[i])
	}
}

func TestVersionMatching(t *testing.T) {
	compiler := &stubCompiler{}
	resolver := xslpkg.NewPackageResolver(compiler, xslpkg.LocationMap{"p": "urn:p"})

	pkg, err := resolver.Resolve("p", "1.*", "", resolve.NewLoadSet())
	require.NoError(t, err)
	require.Equal(t, "1.0", pkg.Version)
	require.Equal(t, 1, compiler.calls)

	_, err = resolver.Resolve("p", "1.0-2.0", "", resolve.NewLoadSet())
	require.NoError(t, err)
	require.Equal(t, 1, compiler.calls, "cache hit must not recompile")
}

func TestPackageResolverCircularDetection(t *testing.T) {
	resolver := xslpkg.NewPackageResolver(&stubCompiler{}, xslpkg.LocationMap{"p": "urn:p"})
	loadSet := resolve.NewLoadSet()
	leave, err := loadSet.Enter(fmt.Sprintf("urn:xslpkg:%s#%s", "p", "1.0"))
	require.NoError(t, err)
	defer leave()

	_, err = resolver.Resolve("p", "1.0", "", loadSet)
	require.Error(t, err)
}
