package compiler

import (
	"encoding/xml"
	"strings"

	"github.com/midbel/xslt3c/decl"
	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/pattern"
	"github.com/midbel/xslt3c/resolve"
	"github.com/midbel/xslt3c/stylesheet"
	"github.com/midbel/xslt3c/xerr"
)

type nameResolver = func(string) (string, bool)

func compileTemplate(dec *xml.Decoder, t xml.StartElement, resolveName nameResolver, precedence int, loadSet *resolve.LoadSet) (decl.TemplateRule, error) {
	b := decl.NewTemplateBuilder()
	if v, ok := attr(t, "match"); ok {
		pat, err := pattern.ParseWithResolver(v, pattern.PrefixResolver(resolveName))
		if err != nil {
			return decl.TemplateRule{}, err
		}
		b.SetMatch(pat)
	}
	if v, ok := attr(t, "name"); ok {
		b.SetName(resolveQName(v, resolveName))
	}
	if v, ok := attr(t, "mode"); ok {
		b.SetMode(v)
	}
	if p, ok, err := parseFloatAttr(t, "priority"); err != nil {
		return decl.TemplateRule{}, err
	} else if ok {
		b.SetPriority(p)
	}
	if v, ok := attr(t, "visibility"); ok {
		vis, ok2 := decl.ParseVisibility(v)
		if !ok2 {
			return decl.TemplateRule{}, xerr.New(xerr.XTSE0020, "invalid visibility %q", v)
		}
		b.SetVisibility(vis)
	}
	b.SetPrecedence(precedence, loadSet.NextDeclIndex())

	err := forEachChild(dec, func(child xml.StartElement) error {
		if child.Name.Space == XSLNamespace && child.Name.Local == "param" {
			param, err := compileParam(dec, child, resolveName)
			if err != nil {
				return err
			}
			b.AddParam(param)
			return nil
		}
		return dec.Skip()
	})
	if err != nil {
		return decl.TemplateRule{}, err
	}
	b.SetBody(t.Name.Local)
	return b.Build(), nil
}

func compileParam(dec *xml.Decoder, t xml.StartElement, resolveName nameResolver) (decl.TemplateParameter, error) {
	p := decl.TemplateParameter{Name: resolveQName(mustAttr(t, "name"), resolveName)}
	if v, ok := attr(t, "select"); ok {
		p.Select = v
	}
	if v, ok := attr(t, "tunnel"); ok {
		p.Tunnel = v == "yes"
	}
	if v, ok := attr(t, "required"); ok {
		p.Required = v == "yes"
	}
	if err := dec.Skip(); err != nil {
		return decl.TemplateParameter{}, err
	}
	return p, nil
}

func compileVariable(dec *xml.Decoder, t xml.StartElement, resolveName nameResolver) (decl.GlobalVariable, error) {
	name := resolveQName(mustAttr(t, "name"), resolveName)
	isParam := t.Name.Local == "param"
	vis := decl.VisibilityPrivate
	if v, ok := attr(t, "visibility"); ok {
		if parsed, ok2 := decl.ParseVisibility(v); ok2 {
			vis = parsed
		}
	}
	var gv decl.GlobalVariable
	if v, ok := attr(t, "select"); ok {
		gv = decl.NewGlobalVariable(name, isParam, v, vis)
	} else {
		gv = decl.NewGlobalVariableWithBody(name, isParam, t.Name.Local, vis)
	}
	if err := dec.Skip(); err != nil {
		return decl.GlobalVariable{}, err
	}
	return gv, nil
}

func compileAttributeSet(dec *xml.Decoder, t xml.StartElement, resolveName nameResolver) (decl.AttributeSet, error) {
	as := decl.AttributeSet{Name: resolveQName(mustAttr(t, "name"), resolveName), Body: t.Name.Local}
	if v, ok := attr(t, "use-attribute-sets"); ok {
		for _, tok := range strings.Fields(v) {
			as.Uses = append(as.Uses, resolveQName(tok, resolveName))
		}
	}
	if v, ok := attr(t, "visibility"); ok {
		if vis, ok2 := decl.ParseVisibility(v); ok2 {
			as.Visibility = vis
		}
	}
	if err := dec.Skip(); err != nil {
		return decl.AttributeSet{}, err
	}
	return as, nil
}

func compileOutput(t xml.StartElement) decl.OutputProperties {
	var out decl.OutputProperties
	if v, ok := attr(t, "method"); ok {
		switch v {
		case "html":
			out.Method, out.HasMethod = decl.MethodHTML, true
		case "text":
			out.Method, out.HasMethod = decl.MethodText, true
		default:
			out.Method, out.HasMethod = decl.MethodXML, true
		}
	}
	if v, ok := attr(t, "version"); ok {
		out.Version = v
	}
	if v, ok := attr(t, "encoding"); ok {
		out.Encoding = v
	}
	if v, ok := attr(t, "omit-xml-declaration"); ok {
		out.OmitXMLDecl, out.HasOmitXMLDecl = v == "yes", true
	}
	if v, ok := attr(t, "standalone"); ok {
		out.Standalone, out.HasStandalone = v == "yes", true
	}
	if v, ok := attr(t, "doctype-public"); ok {
		out.DoctypePublic = v
	}
	if v, ok := attr(t, "doctype-system"); ok {
		out.DoctypeSystem = v
	}
	if v, ok := attr(t, "indent"); ok {
		out.Indent, out.HasIndent = v == "yes", true
	}
	if v, ok := attr(t, "media-type"); ok {
		out.MediaType = v
	}
	if v, ok := attr(t, "cdata-section-elements"); ok {
		out.CDATAElements = make(map[ixml.ExpandedName]bool)
		for _, tok := range strings.Fields(v) {
			out.CDATAElements[ixml.Name(tok)] = true
		}
	}
	return out
}

func compileKey(dec *xml.Decoder, t xml.StartElement, resolveName nameResolver) (decl.KeyDefinition, error) {
	k := decl.KeyDefinition{Name: resolveQName(mustAttr(t, "name"), resolveName)}
	if v, ok := attr(t, "match"); ok {
		pat, err := pattern.ParseWithResolver(v, pattern.PrefixResolver(resolveName))
		if err != nil {
			return decl.KeyDefinition{}, err
		}
		k.Match = pat
	}
	if v, ok := attr(t, "use"); ok {
		k.Use = v
	}
	if err := dec.Skip(); err != nil {
		return decl.KeyDefinition{}, err
	}
	return k, nil
}

func compileDecimalFormat(t xml.StartElement) decl.DecimalFormat {
	name, _ := attr(t, "name")
	f := decl.DecimalFormat{Name: name}
	setRune := func(dst *rune, attrName string) {
		if v, ok := attr(t, attrName); ok && len(v) > 0 {
			*dst = []rune(v)[0]
		}
	}
	setRune(&f.DecimalSeparator, "decimal-separator")
	setRune(&f.GroupingSeparator, "grouping-separator")
	setRune(&f.MinusSign, "minus-sign")
	setRune(&f.Percent, "percent")
	setRune(&f.PerMille, "per-mille")
	setRune(&f.ZeroDigit, "zero-digit")
	setRune(&f.Digit, "digit")
	setRune(&f.PatternSeparator, "pattern-separator")
	if v, ok := attr(t, "infinity"); ok {
		f.Infinity = v
	}
	if v, ok := attr(t, "NaN"); ok {
		f.NaN = v
	}
	return f.FillDefaults()
}

func compileNamespaceAlias(t xml.StartElement, ns map[string]string) decl.NamespaceAlias {
	stylesheetPrefix, _ := attr(t, "stylesheet-prefix")
	resultPrefix, _ := attr(t, "result-prefix")
	a := decl.NamespaceAlias{ResultPrefix: resultPrefix}
	if stylesheetPrefix == "#default" {
		a.StylesheetURI = ns[""]
	} else {
		a.StylesheetURI = ns[stylesheetPrefix]
	}
	if resultPrefix == "#default" {
		a.ResultURI = ns[""]
	} else {
		a.ResultURI = ns[resultPrefix]
	}
	return a
}

func addWhitespace(b *stylesheet.Builder, t xml.StartElement, preserve bool, ns map[string]string, precedence int) {
	v, _ := attr(t, "elements")
	for _, tok := range strings.Fields(v) {
		name := elementNameTest(tok, ns)
		if preserve {
			b.AddPreserveSpace(name, precedence)
		} else {
			b.AddStripSpace(name, precedence)
		}
	}
}

func elementNameTest(tok string, ns map[string]string) ixml.ExpandedName {
	if tok == "*" {
		return ixml.AnyName()
	}
	if i := strings.IndexByte(tok, ':'); i >= 0 {
		prefix, local := tok[:i], tok[i+1:]
		uri := ns[prefix]
		if local == "*" {
			return ixml.AnyIn(uri)
		}
		return ixml.Qualified(uri, local)
	}
	return ixml.Name(tok)
}

func compileMode(t xml.StartElement) decl.ModeDeclaration {
	name, _ := attr(t, "name")
	m := decl.ModeDeclaration{Name: name}
	if v, ok := attr(t, "streamable"); ok {
		m.Streamable = v == "yes"
	}
	if v, ok := attr(t, "on-no-match"); ok {
		if policy, ok2 := decl.ParseOnNoMatch(v); ok2 {
			m.OnNoMatch = policy
		}
	}
	if v, ok := attr(t, "visibility"); ok {
		if vis, ok2 := decl.ParseVisibility(v); ok2 {
			m.Visibility = vis
		}
	}
	if v, ok := attr(t, "use-accumulators"); ok {
		m.Accumulator = strings.Fields(v)
	}
	if v, ok := attr(t, "typed"); ok {
		m.Typed = v == "yes" || v == "strict" || v == "lax"
	}
	if v, ok := attr(t, "warning-on-no-match"); ok {
		m.Warning = v == "yes"
	}
	return m
}

func compileFunction(dec *xml.Decoder, t xml.StartElement, resolveName nameResolver, precedence int) (decl.UserFunction, error) {
	name := resolveQName(mustAttr(t, "name"), resolveName)
	if name.URI == "" {
		return decl.UserFunction{}, xerr.New(xerr.XTSE0020, "xsl:function name %q must be namespace-qualified", mustAttr(t, "name"))
	}
	fn := decl.UserFunction{URI: name.URI, Local: name.Local, Import: precedence}
	if v, ok := attr(t, "cache"); ok {
		fn.Cached = v == "yes"
	}
	if v, ok := attr(t, "as"); ok {
		fn.ReturnType = resolveQName(v, resolveName)
		fn.HasReturn = true
	}
	err := forEachChild(dec, func(child xml.StartElement) error {
		if child.Name.Space == XSLNamespace && child.Name.Local == "param" {
			pname := mustAttr(child, "name")
			param := decl.FunctionParameter{Name: pname}
			if v, ok := attr(child, "as"); ok {
				param.Type = resolveQName(v, resolveName)
				param.HasType = true
			}
			fn.Params = append(fn.Params, param)
			return dec.Skip()
		}
		return dec.Skip()
	})
	if err != nil {
		return decl.UserFunction{}, err
	}
	fn.Body = t.Name.Local
	return fn, nil
}

func compileAccumulator(dec *xml.Decoder, t xml.StartElement, resolveName nameResolver) (decl.AccumulatorDefinition, error) {
	name, _ := attr(t, "name")
	a := decl.AccumulatorDefinition{Name: name}
	if v, ok := attr(t, "initial-value"); ok {
		a.InitialValue = v
	}
	if v, ok := attr(t, "streamable"); ok {
		a.Streamable = v == "yes"
	}
	if v, ok := attr(t, "as"); ok {
		a.Type, a.HasType = v, true
	}
	err := forEachChild(dec, func(child xml.StartElement) error {
		if child.Name.Space != XSLNamespace || child.Name.Local != "accumulator-rule" {
			return dec.Skip()
		}
		rule := decl.AccumulatorRule{Phase: decl.PhasePostDescent}
		if v, ok := attr(child, "match"); ok {
			pat, err := pattern.ParseWithResolver(v, pattern.PrefixResolver(resolveName))
			if err != nil {
				return err
			}
			rule.Match = pat
		}
		if v, ok := attr(child, "phase"); ok && v == "start" {
			rule.Phase = decl.PhasePreDescent
		}
		if v, ok := attr(child, "select"); ok {
			rule.NewValue = v
		}
		a.Rules = append(a.Rules, rule)
		return dec.Skip()
	})
	if err != nil {
		return decl.AccumulatorDefinition{}, err
	}
	return a, nil
}

func mustAttr(t xml.StartElement, local string) string {
	v, _ := attr(t, local)
	return v
}
