package decl

import (
	"github.com/midbel/xslt3c/ixml"
	"github.com/midbel/xslt3c/pattern"
)

// KeyDefinition is a compiled xsl:key (spec.md §3): an expanded name
// (the lookup key, stored in Clark notation by callers that need a map
// key), the match pattern selecting candidate nodes, and the use
// expression computing the value(s) each candidate is indexed under.
// A stylesheet may declare several xsl:key elements with the same name;
// spec.md §4.6's merge table says key definitions are first-wins across
// an import/include merge, but multiple declarations *within the same
// sheet* all contribute to the same named key at runtime, so this type
// is intentionally a single rule -- the map on CompiledStylesheet groups
// same-name KeyDefinitions (see stylesheet.CompiledStylesheet.Keys).
type KeyDefinition struct {
	Name  ixml.ExpandedName
	Match pattern.Pattern
	Use   string
}
