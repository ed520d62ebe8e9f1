package xslpkg

import (
	"strconv"

	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/stylesheet"
)

// Dependency is one xsl:use-package declaration: the package name,
// version constraint, and the accept/override lists applied to the
// package it resolves to (spec.md §3's PackageDependency,
// AcceptDeclaration, OverrideDeclaration).
type Dependency struct {
	Name      string
	Version   string
	Accepts   []AcceptDeclaration
	Overrides []OverrideDeclaration
	resolved  *Package
}

// Resolved returns the dependency's target package, if it has already
// been resolved via SetResolved.
func (d Dependency) Resolved() (*Package, bool) {
	return d.resolved, d.resolved != nil
}

// SetResolved records the package a use-package dependency resolved to,
// called by PackageResolver.Resolve's caller once resolution succeeds.
func (d *Dependency) SetResolved(pkg *Package) {
	d.resolved = pkg
}

// Package wraps a CompiledStylesheet with the package-level metadata
// and per-component visibility overlay spec.md §3/§4.8 describe.
type Package struct {
	Name         string
	Version      string
	Sheet        *stylesheet.CompiledStylesheet
	Dependencies []*Dependency
	overrides    map[string]decl.Visibility
}

// NewPackage wraps sheet as a package named name/version with no
// visibility overrides yet applied.
func NewPackage(name, version string, sheet *stylesheet.CompiledStylesheet, deps []*Dependency) *Package {
	return &Package{
		Name:         name,
		Version:      version,
		Sheet:        sheet,
		Dependencies: deps,
		overrides:    make(map[string]decl.Visibility),
	}
}

// SetOverride records an effective-visibility override for the
// component identified by key, applied by an xsl:accept or
// xsl:override declaration processed against this package from a
// dependent's use-package (spec.md §4.8/§4.10).
func (p *Package) SetOverride(key string, v decl.Visibility) {
	p.overrides[key] = v
}

// EffectiveVisibility is the override if present, otherwise
// declaredVisibility (spec.md §4.8's "effective visibility" rule),
// mirroring environ.Env.Resolve's "check the local map, else defer"
// fallback shape.
func (p *Package) EffectiveVisibility(key string, declaredVisibility decl.Visibility) decl.Visibility {
	if v, ok := p.overrides[key]; ok {
		return v
	}
	return declaredVisibility
}

// IsAccessible reports whether a component's effective visibility makes
// it visible from outside the package: public, final, or abstract
// (spec.md §4.8).
func IsAccessible(v decl.Visibility) bool {
	return v == decl.VisibilityPublic || v == decl.VisibilityFinal || v == decl.VisibilityAbstract
}

// IsOverridable reports whether a component's effective visibility
// permits xsl:override to replace it: public or abstract (spec.md
// §4.8).
func IsOverridable(v decl.Visibility) bool {
	return v == decl.VisibilityPublic || v == decl.VisibilityAbstract
}

// AbstractTemplates returns every template rule whose effective
// visibility is abstract.
func (p *Package) AbstractTemplates() []decl.TemplateRule {
	var out []decl.TemplateRule
	for _, t := range p.Sheet.Templates() {
		if p.EffectiveVisibility(TemplateKey(t), t.Visibility) == decl.VisibilityAbstract {
			out = append(out, t)
		}
	}
	return out
}

// AbstractFunctions returns every user function whose effective
// visibility is abstract.
func (p *Package) AbstractFunctions() []decl.UserFunction {
	var out []decl.UserFunction
	for _, f := range p.Sheet.Functions() {
		key := FunctionKey(f.URI, f.Local, len(f.Params))
		if p.EffectiveVisibility(key, decl.VisibilityPrivate) == decl.VisibilityAbstract {
			out = append(out, f)
		}
	}
	return out
}

// AbstractVariables returns every global variable whose effective
// visibility is abstract.
func (p *Package) AbstractVariables() []decl.GlobalVariable {
	var out []decl.GlobalVariable
	for _, v := range p.Sheet.Variables() {
		key := VariableKey(v.Name)
		if p.EffectiveVisibility(key, v.Visibility) == decl.VisibilityAbstract {
			out = append(out, v)
		}
	}
	return out
}

// HasAbstractComponents reports whether any template, function, or
// variable in the package has an effective abstract visibility -- a
// package in that state cannot be used as a stand-alone stylesheet
// (spec.md §3, §4.8).
func (p *Package) HasAbstractComponents() bool {
	return len(p.AbstractTemplates()) > 0 ||
		len(p.AbstractFunctions()) > 0 ||
		len(p.AbstractVariables()) > 0
}

// IsComplete reports the inverse of HasAbstractComponents (spec.md
// §3's "A package is complete iff it has no components whose effective
// visibility is abstract").
func (p *Package) IsComplete() bool {
	return !p.HasAbstractComponents()
}

// LookupFunction resolves {uri}local/arity against this package's own
// functions. It does not consult the visibility overlay set by
// accept/override processing, and it does not search dependencies --
// composed lookup across
// xsl:use-package boundaries is the caller's responsibility, since
// spec.md leaves cross-package name resolution to the (out of scope)
// runtime.
func (p *Package) LookupFunction(uri, local string, arity int) (decl.UserFunction, bool) {
	f, ok := p.Sheet.Function(ixml.Qualified(uri, local).Clark() + "/" + strconv.Itoa(arity))
	return f, ok
}
