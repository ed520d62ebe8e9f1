package decl

import "github.com/midbel/xslt3c/ixml"

// AttributeSet is a compiled xsl:attribute-set (spec.md §3): a name, the
// other named attribute sets it references (xsl:use-attribute-sets, in
// declaration order), and its own body. The merge rule for two
// same-name sets (spec.md §3: "later-declared attributes override
// earlier ones and the referenced-set lists are concatenated without
// duplicates") lives in MergeAttributeSet below rather than on the
// stylesheet Builder, so it can be unit tested in isolation.
type AttributeSet struct {
	Name       ixml.ExpandedName
	Uses       []ixml.ExpandedName
	Body       Body
	Visibility Visibility
}

// MergeAttributeSet combines two declarations of the same attribute-set
// name: later's attributes (its Body) override earlier's, and the
// Uses lists are concatenated without duplicates, preserving earlier's
// order followed by any new names from later.
func MergeAttributeSet(earlier, later AttributeSet) AttributeSet {
	merged := later
	merged.Uses = concatUnique(earlier.Uses, later.Uses)
	return merged
}

func concatUnique(first, second []ixml.ExpandedName) []ixml.ExpandedName {
	out := make([]ixml.ExpandedName, 0, len(first)+len(second))
	seen := make(map[ixml.ExpandedName]bool, len(first)+len(second))
	for _, n := range first {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	for _, n := range second {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
