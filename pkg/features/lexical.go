package features

import (
	"math"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"
	alphabet    = "abcdefghijklmnopqrstuvwxyz"
	digits      = "0123456789"
	seqWindow   = 3
)

var (
	camelCaseRegex = regexp.MustCompile(`^[a-z]+(?:[A-Z][a-z]+)*$`)

	leetReplacer = strings.NewReplacer("4", "a", "3", "e", "0", "o", "$", "s", "7", "t")

	keyboardRows = []string{
		"1234567890",
		"qwertyuiop",
		"asdfghjkl",
		"zxcvbnm",
	}

	// every run of two or more keys contains an adjacent pair,
	// so matching on pairs is enough
	keyboardPairs = buildKeyboardPairs(keyboardRows)
)

// Length returns the number of characters.
func Length(p string) int {
	return utf8.RuneCountInString(p)
}

func NumUppercase(p string) int {
	return countRunes(p, unicode.IsUpper)
}

func NumLowercase(p string) int {
	return countRunes(p, unicode.IsLower)
}

func NumDigits(p string) int {
	return countRunes(p, unicode.IsDigit)
}

// NumSpecial counts ASCII punctuation characters.
func NumSpecial(p string) int {
	return countRunes(p, isSpecial)
}

func StartsWithDigit(p string) bool {
	r, ok := first(p)
	return ok && unicode.IsDigit(r)
}

func EndsWithDigit(p string) bool {
	r, ok := last(p)
	return ok && unicode.IsDigit(r)
}

func StartsWithSpecial(p string) bool {
	r, ok := first(p)
	return ok && isSpecial(r)
}

func EndsWithSpecial(p string) bool {
	r, ok := last(p)
	return ok && isSpecial(r)
}

func StartsWithCapital(p string) bool {
	r, ok := first(p)
	return ok && unicode.IsUpper(r)
}

// HasSequentialChars reports whether the password contains three ascending
// consecutive letters (case-insensitive) or digits, e.g. "abc" or "123".
func HasSequentialChars(p string) bool {
	lower := strings.ToLower(p)
	for _, seq := range []string{alphabet, digits} {
		for i := 0; i+seqWindow <= len(seq); i++ {
			if strings.Contains(lower, seq[i:i+seqWindow]) {
				return true
			}
		}
	}
	return false
}

// HasRepeatedPatterns reports whether some substring occurs twice back to
// back, e.g. "aa" or "abab".
func HasRepeatedPatterns(p string) bool {
	runes := []rune(p)
	n := len(runes)
	for k := 1; k <= n/2; k++ {
		for i := 0; i+2*k <= n; i++ {
			if slices.Equal(runes[i:i+k], runes[i+k:i+2*k]) {
				return true
			}
		}
	}
	return false
}

// CharDiversity is the ratio of distinct characters to length.
func CharDiversity(p string) float64 {
	n := Length(p)
	if n == 0 {
		return 0
	}
	return float64(len(frequencies(p))) / float64(n)
}

// ContainsLeetspeak reports whether undoing the common digit and symbol
// substitutions changes the lowercased password.
func ContainsLeetspeak(p string) bool {
	lower := strings.ToLower(p)
	return leetReplacer.Replace(lower) != lower
}

// Entropy is the Shannon entropy in bits of the character distribution.
func Entropy(p string) float64 {
	n := Length(p)
	if n == 0 {
		return 0
	}
	var h float64
	for _, c := range frequencies(p) {
		prob := float64(c) / float64(n)
		h -= prob * math.Log2(prob)
	}
	return h
}

// ContainsKeyboardPatterns reports whether the lowercased password contains
// a horizontal or vertical run of QWERTY keys in either direction.
func ContainsKeyboardPatterns(p string) bool {
	runes := []rune(strings.ToLower(p))
	for i := 0; i+1 < len(runes); i++ {
		if _, ok := keyboardPairs[[2]rune{runes[i], runes[i+1]}]; ok {
			return true
		}
	}
	return false
}

// IsCamelCase matches lowercase words joined by single capitals, e.g. "fooBar".
func IsCamelCase(p string) bool {
	return camelCaseRegex.MatchString(p)
}

// HasUpperLowerAlternation reports whether even positions are upper case and
// odd positions lower case.
func HasUpperLowerAlternation(p string) bool {
	return alternates(p, unicode.IsUpper, unicode.IsLower)
}

// HasLowerUpperAlternation reports whether even positions are lower case and
// odd positions upper case.
func HasLowerUpperAlternation(p string) bool {
	return alternates(p, unicode.IsLower, unicode.IsUpper)
}

func alternates(p string, even, odd func(rune) bool) bool {
	if p == "" {
		return false
	}
	i := 0
	for _, r := range p {
		check := even
		if i%2 == 1 {
			check = odd
		}
		if !check(r) {
			return false
		}
		i++
	}
	return true
}

func buildKeyboardPairs(rows []string) map[[2]rune]struct{} {
	lines := make([]string, 0, len(rows)*2)
	lines = append(lines, rows...)

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for col := 0; col < width; col++ {
		var sb strings.Builder
		for _, row := range rows {
			if col < len(row) {
				sb.WriteByte(row[col])
			}
		}
		lines = append(lines, sb.String())
	}

	pairs := make(map[[2]rune]struct{})
	for _, line := range lines {
		for i := 0; i+1 < len(line); i++ {
			a, b := rune(line[i]), rune(line[i+1])
			pairs[[2]rune{a, b}] = struct{}{}
			pairs[[2]rune{b, a}] = struct{}{}
		}
	}
	return pairs
}

func isSpecial(r rune) bool {
	return r < utf8.RuneSelf && strings.ContainsRune(punctuation, r)
}

func countRunes(p string, pred func(rune) bool) int {
	n := 0
	for _, r := range p {
		if pred(r) {
			n++
		}
	}
	return n
}

// frequencies returns the count of each distinct rune in order of first
// occurrence, so sums over it are reproducible.
func frequencies(p string) []int {
	pos := make(map[rune]int)
	counts := make([]int, 0, len(p))
	for _, r := range p {
		i, ok := pos[r]
		if !ok {
			i = len(counts)
			pos[r] = i
			counts = append(counts, 0)
		}
		counts[i]++
	}
	return counts
}

func first(p string) (rune, bool) {
	if p == "" {
		return 0, false
	}
	r, _ := utf8.DecodeRuneInString(p)
	return r, true
}

func last(p string) (rune, bool) {
	if p == "" {
		return 0, false
	}
	r, _ := utf8.DecodeLastRuneInString(p)
	return r, true
}
