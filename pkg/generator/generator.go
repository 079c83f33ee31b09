// Package generator produces random machine-style passwords used as the
// negative class when building training data.
package generator

import (
	"bufio"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	Lowercase   = "abcdefghijklmnopqrstuvwxyz"
	Uppercase   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Digits      = "0123456789"
	Punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

	// MinLength and MaxLength bound generated password length, inclusive.
	MinLength = 8
	MaxLength = 16

	fileMode = 0644
)

var (
	classes = []string{Lowercase, Uppercase, Digits, Punctuation}

	// used when the coin flips exclude every class
	fallbackClasses = []string{Lowercase, Uppercase, Digits}
)

// Generator draws passwords from a random source. It is not safe for
// concurrent use.
type Generator struct {
	rng *rand.Rand
}

// New returns a generator backed by src.
func New(src rand.Source) *Generator {
	return &Generator{rng: rand.New(src)}
}

// NewSeeded returns a generator with a deterministic PCG source.
func NewSeeded(seed uint64) *Generator {
	return New(rand.NewPCG(seed, seed))
}

// Password returns one random password.
func (g *Generator) Password() string {
	pool := g.pool()
	n := MinLength + g.rng.IntN(MaxLength-MinLength+1)

	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		sb.WriteByte(pool[g.rng.IntN(len(pool))])
	}
	return sb.String()
}

// Generate returns n random passwords.
func (g *Generator) Generate(n int) []string {
	list := make([]string, n)
	for i := range list {
		list[i] = g.Password()
	}
	return list
}

// RandomLowercase returns a lowercase string with length uniform in
// [minLen, maxLen].
func (g *Generator) RandomLowercase(minLen, maxLen int) string {
	n := minLen + g.rng.IntN(maxLen-minLen+1)
	b := make([]byte, n)
	for i := range b {
		b[i] = Lowercase[g.rng.IntN(len(Lowercase))]
	}
	return string(b)
}

// pool concatenates a random non-empty subset of the character classes.
// Each class is included with probability 1/2.
func (g *Generator) pool() string {
	var sb strings.Builder
	for _, c := range g.pickClasses() {
		sb.WriteString(c)
	}
	return sb.String()
}

func (g *Generator) pickClasses() []string {
	picked := make([]string, 0, len(classes))
	for _, c := range classes {
		if g.rng.IntN(2) == 1 {
			picked = append(picked, c)
		}
	}
	if len(picked) == 0 {
		return fallbackClasses
	}
	return picked
}

// WriteFile writes one password per line to path, replacing any existing
// file.
func WriteFile(path string, passwords []string) (retErr error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return errors.Wrapf(err, "error creating password file: %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && retErr == nil {
			retErr = errors.Wrap(cerr, "error closing password file")
		}
	}()

	w := bufio.NewWriter(f)
	for _, p := range passwords {
		if _, err := w.WriteString(p + "\n"); err != nil {
			return errors.Wrap(err, "error writing password")
		}
	}
	return errors.Wrap(w.Flush(), "error flushing password file")
}
