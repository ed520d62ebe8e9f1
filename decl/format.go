package decl

// DecimalFormat is a compiled xsl:decimal-format, keyed by Name ("" is
// the unnamed default format). Fields left unset by the declaration are
// filled in by DefaultDecimalFormat's values before storage, per the
// table in spec.md §6.
type DecimalFormat struct {
	Name              string
	DecimalSeparator  rune
	GroupingSeparator rune
	Infinity          string
	MinusSign         rune
	NaN               string
	Percent           rune
	PerMille          rune
	ZeroDigit         rune
	Digit             rune
	PatternSeparator  rune
}

// DefaultDecimalFormat returns the unnamed decimal-format with every
// field set to its spec.md §6 default.
func DefaultDecimalFormat() DecimalFormat {
	return DecimalFormat{
		DecimalSeparator:  '.',
		GroupingSeparator: ',',
		Infinity:          "Infinity",
		MinusSign:         '-',
		NaN:               "NaN",
		Percent:           '%',
		PerMille:          '‰',
		ZeroDigit:         '0',
		Digit:             '#',
		PatternSeparator:  ';',
	}
}

// FillDefaults returns a copy of d with every zero-value field replaced
// by DefaultDecimalFormat's value, applied when a partially-specified
// xsl:decimal-format is compiled (spec.md §6's table covers exactly the
// character-slot fields below; Name is never defaulted).
func (d DecimalFormat) FillDefaults() DecimalFormat {
	def := DefaultDecimalFormat()
	if d.DecimalSeparator == 0 {
		d.DecimalSeparator = def.DecimalSeparator
	}
	if d.GroupingSeparator == 0 {
		d.GroupingSeparator = def.GroupingSeparator
	}
	if d.Infinity == "" {
		d.Infinity = def.Infinity
	}
	if d.MinusSign == 0 {
		d.MinusSign = def.MinusSign
	}
	if d.NaN == "" {
		d.NaN = def.NaN
	}
	if d.Percent == 0 {
		d.Percent = def.Percent
	}
	if d.PerMille == 0 {
		d.PerMille = def.PerMille
	}
	if d.ZeroDigit == 0 {
		d.ZeroDigit = def.ZeroDigit
	}
	if d.Digit == 0 {
		d.Digit = def.Digit
	}
	if d.PatternSeparator == 0 {
		d.PatternSeparator = def.PatternSeparator
	}
	return d
}
