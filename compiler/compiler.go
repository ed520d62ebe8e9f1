// Package compiler is the one concrete stand-in in this module for a
// spec.md §1 "explicitly out of scope" collaborator: the SAX-layer
// parser that drives element/attribute events into the core. spec.md
// specifies that collaborator only by its outputs (stylesheet.Builder's
// Add* calls); this package implements a minimal, real one over
// encoding/xml so cmd/xslcc can compile an actual stylesheet file
// end to end, in the same spirit as the teacher's own cmd/angle
// (parseDocument/openFile in cmd/angle/commons.go) turning a bare file
// path into a compiled, in-memory structure.
//
// It understands only the subset of XSLT element syntax this module's
// declaration objects model -- match/name/mode/priority/visibility
// attributes and the handful of child elements (xsl:param,
// xsl:accumulator-rule) that shape a declaration's own fields.
// Sequence-constructor content stays the opaque decl.Body handle
// spec.md §3 describes; this package never looks inside it.
package compiler

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/resolve"
	"github.com/midbel/xslt3c/stylesheet"
	"github.com/midbel/xslt3c/xerr"
)

// XSLNamespace is the XSLT 3.0 namespace URI every xsl:* element lives
// in.
const XSLNamespace = "http://www.w3.org/1999/XSL/Transform"

// Compiler drives one top-level compilation, including its whole
// import/include graph, sharing one resolve.LoadSet for circular
// detection and precedence/declaration-index allocation (spec.md §4.7).
type Compiler struct {
	Resolver *resolve.Resolver
	LoadSet  *resolve.LoadSet
}

// New returns a Compiler over the default file-based resolver.
func New() *Compiler {
	return &Compiler{Resolver: resolve.NewResolver(), LoadSet: resolve.NewLoadSet()}
}

// CompileFile compiles the stylesheet at path, recursively resolving
// xsl:import/xsl:include, and returns the finished immutable aggregate.
func (c *Compiler) CompileFile(path string) (*stylesheet.CompiledStylesheet, error) {
	mod, err := c.compileModuleFile(path, "", false)
	if err != nil {
		return nil, err
	}
	return mod.builder.Build()
}

// CompilePackageFile compiles the source at path and reports whether its
// root element was xsl:package (name/version attributes returned
// alongside), so a caller can decide whether to wrap the result in an
// xslpkg.Package.
func (c *Compiler) CompilePackageFile(path string) (sheet *stylesheet.CompiledStylesheet, isPackage bool, name, version string, err error) {
	mod, err := c.compileModuleFile(path, "", false)
	if err != nil {
		return nil, false, "", "", err
	}
	sheet, err = mod.builder.Build()
	if err != nil {
		return nil, false, "", "", err
	}
	return sheet, mod.isPackage, mod.pkgName, mod.pkgVersion, nil
}

// module is the result of compiling one stylesheet/package source file:
// its contributed Builder plus whatever the root element told us about
// package identity (spec.md §5's CompiledPackage name/version fields).
type module struct {
	builder    *stylesheet.Builder
	isPackage  bool
	pkgName    string
	pkgVersion string
}

// compileModule loads href against base, compiles it into its own
// Builder (assigning one precedence value to every declaration it
// directly contributes, per spec.md §4.6's "Precedence and declaration
// index" paragraph), and returns that Builder plus its resolved system
// id. isImport is accepted for symmetry with Builder.Merge and is not
// consulted here; the caller passes the same flag to Merge, which uses
// it only to pick the direction of the output-property merge.
func (c *Compiler) compileModule(href, base string, isImport bool) (*stylesheet.Builder, string, error) {
	mod, systemID, err := c.compileModuleWithInfo(href, base)
	if err != nil {
		return nil, "", err
	}
	return mod.builder, systemID, nil
}

// compileModuleFile is the CompileFile/CompilePackageFile entry point:
// href is a plain file path with no base to resolve against.
func (c *Compiler) compileModuleFile(href, base string, isImport bool) (*module, error) {
	mod, _, err := c.compileModuleWithInfo(href, base)
	return mod, err
}

func (c *Compiler) compileModuleWithInfo(href, base string) (*module, string, error) {
	stream, systemID, leave, err := c.Resolver.Load(href, base, c.LoadSet)
	if err != nil {
		return nil, "", err
	}
	defer leave()
	defer stream.Close()

	precedence := c.LoadSet.NextPrecedence()
	mod, err := c.compileBuilder(stream, systemID, precedence)
	if err != nil {
		return nil, "", xerr.AtSource(systemID, 0, 0, err)
	}
	return mod, systemID, nil
}

// compileBuilder parses one stylesheet module's event stream into a
// fresh Builder, recursing into xsl:import/xsl:include as they're
// encountered and merging each child's Builder in per spec.md §4.6.
func (c *Compiler) compileBuilder(r io.Reader, systemID string, precedence int) (*module, error) {
	dec := xml.NewDecoder(r)

	root, err := nextStartElement(dec)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", systemID, err)
	}
	if root.Name.Space != XSLNamespace || (root.Name.Local != "stylesheet" && root.Name.Local != "transform" && root.Name.Local != "package") {
		return nil, xerr.New(xerr.XTSE0090, "%s: unrecognized stylesheet root element %s", systemID, root.Name.Local)
	}

	mod := &module{isPackage: root.Name.Local == "package"}
	if mod.isPackage {
		mod.pkgName, _ = attr(root, "name")
		mod.pkgVersion, _ = attr(root, "package-version")
	}

	version, _ := attr(root, "version")
	builder := stylesheet.NewBuilder(systemID, version)

	ns := map[string]string{}
	for _, a := range root.Attr {
		switch {
		case a.Name.Space == "xmlns":
			builder.BindNamespace(a.Name.Local, a.Value)
			ns[a.Name.Local] = a.Value
		case a.Name.Space == "" && a.Name.Local == "xmlns":
			builder.BindNamespace("", a.Value)
			ns[""] = a.Value
		}
	}
	if v, ok := attr(root, "exclude-result-prefixes"); ok {
		for _, p := range strings.Fields(v) {
			if uri, ok := ns[p]; ok {
				builder.ExcludeResultNamespace(uri)
			}
		}
	}
	resolveName := func(prefix string) (string, bool) { uri, ok := ns[prefix]; return uri, ok }

	err = forEachChild(dec, func(t xml.StartElement) error {
		if t.Name.Space != XSLNamespace {
			return dec.Skip()
		}
		switch t.Name.Local {
		case "import", "include":
			href, _ := attr(t, "href")
			if err := dec.Skip(); err != nil {
				return err
			}
			child, _, err := c.compileModule(href, systemID, t.Name.Local == "import")
			if err != nil {
				return err
			}
			builder.Merge(child, t.Name.Local == "import")
			return nil
		case "template":
			rule, err := compileTemplate(dec, t, resolveName, precedence, c.LoadSet)
			if err != nil {
				return err
			}
			builder.AddTemplate(rule)
			return nil
		case "variable", "param":
			gv, err := compileVariable(dec, t, resolveName)
			if err != nil {
				return err
			}
			builder.AddVariable(gv)
			return nil
		case "attribute-set":
			as, err := compileAttributeSet(dec, t, resolveName)
			if err != nil {
				return err
			}
			builder.AddAttributeSet(as)
			return nil
		case "output":
			if err := dec.Skip(); err != nil {
				return err
			}
			builder.AddOutput(compileOutput(t))
			return nil
		case "key":
			k, err := compileKey(dec, t, resolveName)
			if err != nil {
				return err
			}
			builder.AddKey(k)
			return nil
		case "decimal-format":
			if err := dec.Skip(); err != nil {
				return err
			}
			builder.AddDecimalFormat(compileDecimalFormat(t))
			return nil
		case "namespace-alias":
			if err := dec.Skip(); err != nil {
				return err
			}
			builder.AddNamespaceAlias(compileNamespaceAlias(t, ns))
			return nil
		case "strip-space":
			if err := dec.Skip(); err != nil {
				return err
			}
			addWhitespace(builder, t, false, ns, precedence)
			return nil
		case "preserve-space":
			if err := dec.Skip(); err != nil {
				return err
			}
			addWhitespace(builder, t, true, ns, precedence)
			return nil
		case "mode":
			if err := dec.Skip(); err != nil {
				return err
			}
			builder.AddMode(compileMode(t))
			return nil
		case "function":
			fn, err := compileFunction(dec, t, resolveName, precedence)
			if err != nil {
				return err
			}
			builder.AddFunction(fn)
			return nil
		case "accumulator":
			acc, err := compileAccumulator(dec, t, resolveName)
			if err != nil {
				return err
			}
			builder.AddAccumulator(acc)
			return nil
		case "import-schema":
			targetNS, _ := attr(t, "namespace")
			if err := dec.Skip(); err != nil {
				return err
			}
			builder.AddSchema(targetNS)
			return nil
		default:
			return dec.Skip()
		}
	})
	if err != nil {
		return nil, err
	}
	mod.builder = builder
	return mod, nil
}

// nextStartElement advances past any leading ProcInst/Directive/CharData
// tokens to the document's first element.
func nextStartElement(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err != nil {
			return xml.StartElement{}, err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se, nil
		}
	}
}

// forEachChild reads tokens until the EndElement closing the element
// whose StartElement was most recently consumed by the caller, invoking
// onChild for every direct child StartElement. onChild is responsible
// for fully consuming that child's own subtree (via dec.Skip() or a
// recursive forEachChild/compile* call) before returning, so the next
// EndElement this loop sees is guaranteed to be the parent's own close.
func forEachChild(dec *xml.Decoder, onChild func(xml.StartElement) error) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if err := onChild(t); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func attr(t xml.StartElement, local string) (string, bool) {
	for _, a := range t.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// resolveQName splits a QName attribute value (as opposed to an
// already-namespace-resolved element/attribute name, which the Go
// decoder resolves for us) into an ixml.ExpandedName using the in-scope
// prefix bindings. An unresolvable prefix falls back to treating the
// whole value as an unprefixed local name -- callers that must reject
// that case (per Design Notes §9's resolved KeyPattern question) do so
// explicitly.
func resolveQName(value string, resolveName func(string) (string, bool)) ixml.ExpandedName {
	if i := strings.IndexByte(value, ':'); i >= 0 {
		prefix, local := value[:i], value[i+1:]
		if uri, ok := resolveName(prefix); ok {
			return ixml.Qualified(uri, local)
		}
	}
	return ixml.Name(value)
}

func parseFloatAttr(t xml.StartElement, local string) (float64, bool, error) {
	v, ok := attr(t, local)
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false, xerr.Wrap(xerr.XTSE0020, err, "invalid %s %q", local, v)
	}
	return f, true, nil
}
