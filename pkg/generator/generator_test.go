package generator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword_Length(t *testing.T) {
	g := NewSeeded(1)
	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		p := g.Password()
		require.GreaterOrEqual(t, len(p), MinLength)
		require.LessOrEqual(t, len(p), MaxLength)
		seen[len(p)] = true
	}
	assert.Len(t, seen, MaxLength-MinLength+1)
}

func TestPassword_Alphabet(t *testing.T) {
	all := Lowercase + Uppercase + Digits + Punctuation
	g := NewSeeded(2)
	for i := 0; i < 500; i++ {
		for _, r := range g.Password() {
			require.True(t, strings.ContainsRune(all, r), "unexpected rune %q", r)
		}
	}
}

func TestPickClasses_Distribution(t *testing.T) {
	const n = 20000
	g := NewSeeded(3)
	counts := make(map[string]int)
	for i := 0; i < n; i++ {
		picked := g.pickClasses()
		require.NotEmpty(t, picked)
		for _, c := range picked {
			counts[c]++
		}
	}

	// 1/2 from the coin plus 1/16 from the fallback for the first three
	assert.InDelta(t, 0.5625, float64(counts[Lowercase])/n, 0.03)
	assert.InDelta(t, 0.5625, float64(counts[Uppercase])/n, 0.03)
	assert.InDelta(t, 0.5625, float64(counts[Digits])/n, 0.03)
	assert.InDelta(t, 0.5, float64(counts[Punctuation])/n, 0.03)
}

func TestGenerate_Deterministic(t *testing.T) {
	a := NewSeeded(4).Generate(10)
	b := NewSeeded(4).Generate(10)
	assert.Len(t, a, 10)
	assert.Equal(t, a, b)
}

func TestRandomLowercase(t *testing.T) {
	g := NewSeeded(5)
	for i := 0; i < 200; i++ {
		s := g.RandomLowercase(5, 16)
		require.GreaterOrEqual(t, len(s), 5)
		require.LessOrEqual(t, len(s), 16)
		require.Equal(t, strings.ToLower(s), s)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen.txt")
	list := NewSeeded(6).Generate(25)
	require.NoError(t, WriteFile(path, list))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
	assert.Equal(t, list, lines)
}
