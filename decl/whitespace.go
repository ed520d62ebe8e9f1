package decl

import "github.com/midbel/xslt3c/ixml"

// WhitespaceRule is one entry of an xsl:strip-space/xsl:preserve-space
// element-name pattern list (spec.md §3). Per Design Notes §9's
// resolved Open Question ("whitespace-strip pattern semantics"), rules
// are stored as (name, priority, preserve) triples and resolved by
// specificity rather than the teacher's literal-name-or-"*" check
// (xslt/stylesheet.go's shouldStripWhitespace): a rule naming an exact
// element is more specific than a namespace wildcard `ns:*`, which is
// more specific than the bare `*` rule.
type WhitespaceRule struct {
	Name     ixml.ExpandedName
	Priority int
	Preserve bool
}

// Specificity ranks a whitespace rule's name shape: 2 for an exact
// element name, 1 for a namespace wildcard (`ns:*`), 0 for the
// unqualified wildcard `*`.
func (r WhitespaceRule) Specificity() int {
	switch {
	case !ixml.IsWildcardURI(r.Name.URI) && !ixml.IsWildcardLocal(r.Name.Local):
		return 2
	case !ixml.IsWildcardURI(r.Name.URI) || !ixml.IsWildcardLocal(r.Name.Local):
		return 1
	default:
		return 0
	}
}

// WhitespaceRules is an ordered, append-only list of WhitespaceRule,
// queried by ShouldStrip to resolve whitespace-only text node handling
// for a given element name.
type WhitespaceRules struct {
	rules []WhitespaceRule
}

// Add appends a rule in declaration order; later calls within the same
// sheet represent later xsl:strip-space/xsl:preserve-space elements.
func (w *WhitespaceRules) Add(r WhitespaceRule) {
	w.rules = append(w.rules, r)
}

// Rules returns the accumulated rule list, most-recently-added last.
func (w *WhitespaceRules) Rules() []WhitespaceRule {
	return append([]WhitespaceRule(nil), w.rules...)
}

// ShouldStrip resolves whether whitespace-only text inside an element
// named name should be stripped: among rules whose name matches,
// picks the highest Specificity, breaking ties by the higher Priority
// (import precedence), then the most recently declared.
func (w *WhitespaceRules) ShouldStrip(name ixml.ExpandedName) bool {
	var (
		best    WhitespaceRule
		bestIdx = -1
	)
	for i, r := range w.rules {
		if !r.Name.Matches(name.URI, name.Local) {
			continue
		}
		if bestIdx < 0 ||
			r.Specificity() > best.Specificity() ||
			(r.Specificity() == best.Specificity() && r.Priority > best.Priority) ||
			(r.Specificity() == best.Specificity() && r.Priority == best.Priority) {
			best, bestIdx = r, i
		}
	}
	if bestIdx < 0 {
		return false
	}
	return !best.Preserve
}
