// Package eval holds the train/test split and the binary classification
// metrics reported after training.
package eval

import (
	"math"
	"math/rand/v2"

	"github.com/pkg/errors"
)

const seedMixer = 0x9e3779b97f4a7c15

// Split is a row partition of a dataset.
type Split struct {
	Train []int
	Test  []int
}

// TrainTestSplit shuffles n row indices with seed and holds out
// ceil(n*testSize) of them for testing.
func TrainTestSplit(n int, testSize float64, seed uint64) (*Split, error) {
	if testSize <= 0 || testSize >= 1 {
		return nil, errors.Errorf("test size must be in (0, 1), got %v", testSize)
	}
	nTest := int(math.Ceil(float64(n) * testSize))
	if n < 2 || nTest >= n {
		return nil, errors.Errorf("need at least one train and one test row, have %d rows", n)
	}

	perm := rand.New(rand.NewPCG(seed, seed^seedMixer)).Perm(n)
	return &Split{
		Test:  perm[:nTest],
		Train: perm[nTest:],
	}, nil
}

// Rows selects rows of X and y by index.
func Rows(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for i, j := range idx {
		xs[i] = X[j]
		ys[i] = y[j]
	}
	return xs, ys
}
