package decl

import (
	"strings"

	"golang.org/x/text/encoding/ianaindex"

	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/xerr"
)

// OutputProperties is a compiled xsl:output, accumulated left to right
// across however many xsl:output declarations a stylesheet and its
// imports/includes contribute (spec.md §3). The method and boolean
// fields are paired with a "has" flag so Merge can implement "leave an
// already-set field alone, fill in only what the other side specifies"
// without confusing false with unset; the string fields (Version,
// Encoding, DoctypePublic, DoctypeSystem, MediaType) carry no flag, and
// Merge treats an empty string as unset.
type OutputProperties struct {
	Method         OutputMethod
	HasMethod      bool
	Version        string
	Encoding       string
	OmitXMLDecl    bool
	HasOmitXMLDecl bool
	Standalone     bool
	HasStandalone  bool
	DoctypePublic  string
	DoctypeSystem  string
	CDATAElements  map[ixml.ExpandedName]bool
	Indent         bool
	HasIndent      bool
	MediaType      string
}

// DefaultOutput is the baseline xsl:output in effect before any
// declaration is merged in: method xml, no indent, no prolog omission.
func DefaultOutput() OutputProperties {
	return OutputProperties{Method: MethodXML, HasMethod: true}
}

// Merge combines self (the "current" side, taking precedence per
// spec.md §4.6's table) with other, filling in only fields self leaves
// unset. The CDATA-section element set is a union of both sides
// regardless of precedence -- spec.md's "accumulated with precedence
// rules" phrasing applies to scalar properties; the element set is
// inherently additive.
func (o OutputProperties) Merge(other OutputProperties) OutputProperties {
	out := o
	if !out.HasMethod {
		out.Method, out.HasMethod = other.Method, other.HasMethod
	}
	if out.Version == "" {
		out.Version = other.Version
	}
	if out.Encoding == "" {
		out.Encoding = other.Encoding
	}
	if !out.HasOmitXMLDecl {
		out.OmitXMLDecl, out.HasOmitXMLDecl = other.OmitXMLDecl, other.HasOmitXMLDecl
	}
	if !out.HasStandalone {
		out.Standalone, out.HasStandalone = other.Standalone, other.HasStandalone
	}
	if out.DoctypePublic == "" {
		out.DoctypePublic = other.DoctypePublic
	}
	if out.DoctypeSystem == "" {
		out.DoctypeSystem = other.DoctypeSystem
	}
	if !out.HasIndent {
		out.Indent, out.HasIndent = other.Indent, other.HasIndent
	}
	if out.MediaType == "" {
		out.MediaType = other.MediaType
	}
	if len(other.CDATAElements) > 0 {
		merged := make(map[ixml.ExpandedName]bool, len(out.CDATAElements)+len(other.CDATAElements))
		for k := range out.CDATAElements {
			merged[k] = true
		}
		for k := range other.CDATAElements {
			merged[k] = true
		}
		out.CDATAElements = merged
	}
	return out
}

// ValidateEncoding checks the xsl:output encoding attribute against the
// IANA charset registry via golang.org/x/text/encoding/ianaindex, from
// the same x/text module that ixml.ExpandedName normalization uses
// (resolve's IDNA host handling comes from golang.org/x/net instead).
// An empty encoding is left unvalidated:
// spec.md §3 only names "encoding" as a field, not a default.
func (o OutputProperties) ValidateEncoding() error {
	if o.Encoding == "" {
		return nil
	}
	if strings.EqualFold(o.Encoding, "utf-8") || strings.EqualFold(o.Encoding, "utf-16") {
		return nil
	}
	if _, err := ianaindex.IANA.Encoding(o.Encoding); err != nil {
		return xerr.New(xerr.XTSE0020, "xsl:output encoding %q is not a registered IANA charset", o.Encoding)
	}
	return nil
}
