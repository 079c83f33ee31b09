package features

import (
	"strconv"
	"strings"
)

// Kind describes how a feature value is rendered in a dataset.
type Kind int

const (
	// Count is a non-negative integer.
	Count Kind = iota
	// Flag is a boolean held as 0 or 1.
	Flag
	// Real is a real-valued measure.
	Real
)

const (
	flagTrue  = "True"
	flagFalse = "False"
)

// Feature is a named pure function of a password.
type Feature struct {
	Name    string
	Kind    Kind
	Compute func(password string) float64
}

// All is the ordered feature table.
var All = []Feature{
	{"length", Count, count(Length)},
	{"num_uppercase", Count, count(NumUppercase)},
	{"num_lowercase", Count, count(NumLowercase)},
	{"num_digits", Count, count(NumDigits)},
	{"num_special", Count, count(NumSpecial)},
	{"starts_with_digit", Flag, flag(StartsWithDigit)},
	{"ends_with_digit", Flag, flag(EndsWithDigit)},
	{"starts_with_special", Flag, flag(StartsWithSpecial)},
	{"ends_with_special", Flag, flag(EndsWithSpecial)},
	{"has_sequential_chars", Flag, flag(HasSequentialChars)},
	{"has_repeated_patterns", Flag, flag(HasRepeatedPatterns)},
	{"char_diversity", Real, CharDiversity},
	{"contains_leetspeak", Flag, flag(ContainsLeetspeak)},
	{"calculate_entropy", Real, Entropy},
	{"contains_keyboard_patterns", Flag, flag(ContainsKeyboardPatterns)},
	{"starts_with_capital", Flag, flag(StartsWithCapital)},
	{"is_camel_case", Flag, flag(IsCamelCase)},
	{"has_uppercase_lowercase_alternation", Flag, flag(HasUpperLowerAlternation)},
	{"has_lowercase_uppercase_alternation", Flag, flag(HasLowerUpperAlternation)},
}

// Size is the number of features in a vector.
var Size = len(All)

// Vector holds one value per entry of All, in the same order.
type Vector []float64

// Names returns the feature names in vector order.
func Names() []string {
	names := make([]string, len(All))
	for i, f := range All {
		names[i] = f.Name
	}
	return names
}

// Extract computes every feature of the password.
func Extract(password string) Vector {
	v := make(Vector, len(All))
	for i, f := range All {
		v[i] = f.Compute(password)
	}
	return v
}

// Map returns the vector keyed by feature name.
func (v Vector) Map() map[string]float64 {
	m := make(map[string]float64, len(v))
	for i, val := range v {
		if i >= len(All) {
			break
		}
		m[All[i].Name] = val
	}
	return m
}

// Strings renders the vector as dataset cells.
func (v Vector) Strings() []string {
	cells := make([]string, len(v))
	for i, val := range v {
		kind := Real
		if i < len(All) {
			kind = All[i].Kind
		}
		cells[i] = FormatValue(kind, val)
	}
	return cells
}

// FormatValue renders a single value of the given kind.
func FormatValue(k Kind, val float64) string {
	switch k {
	case Count:
		return strconv.FormatInt(int64(val), 10)
	case Flag:
		return FormatFlag(val != 0)
	default:
		return strconv.FormatFloat(val, 'g', -1, 64)
	}
}

// FormatFlag renders a boolean the way the dataset files spell it.
func FormatFlag(b bool) string {
	if b {
		return flagTrue
	}
	return flagFalse
}

// ParseValue parses a dataset cell: a number or a boolean word.
func ParseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return 0, err
	}
	return boolToFloat(b), nil
}

func count(fn func(string) int) func(string) float64 {
	return func(p string) float64 { return float64(fn(p)) }
}

func flag(fn func(string) bool) func(string) float64 {
	return func(p string) float64 { return boolToFloat(fn(p)) }
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
