package decl

// DefaultModeName is the map key CompiledStylesheet uses for the
// unnamed default mode (spec.md §4.8's stable-key table reuses the
// same literal).
const DefaultModeName = "#default"

// ModeDeclaration is a compiled xsl:mode (spec.md §3).
type ModeDeclaration struct {
	Name        string
	Streamable  bool
	OnNoMatch   OnNoMatch
	Visibility  Visibility
	Accumulator []string
	Typed       bool
	Warning     bool
}

// ModeKey returns the stable map key for name, substituting
// DefaultModeName for the empty/unnamed mode (spec.md §3, §4.8).
func ModeKey(name string) string {
	if name == "" {
		return DefaultModeName
	}
	return name
}
