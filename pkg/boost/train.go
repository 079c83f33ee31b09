package boost

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
)

const (
	kEpsilon  = 1e-15
	seedMixer = 0x9e3779b97f4a7c15
)

// Train fits a binary classifier on rows X with 0/1 labels y. names labels
// the columns of X and is stored with the model.
func Train(X [][]float64, y []float64, names []string, p Params) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if len(X) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("%w: %d rows, %d labels", ErrDimensionMismatch, len(X), len(y))
	}
	nf := len(names)
	if nf == 0 {
		return nil, fmt.Errorf("%w: no feature names", ErrDimensionMismatch)
	}
	for i, row := range X {
		if len(row) != nf {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrDimensionMismatch, i, len(row), nf)
		}
		if y[i] != 0 && y[i] != 1 {
			return nil, fmt.Errorf("%w: row %d label %v", ErrInvalidLabel, i, y[i])
		}
	}

	m := &Model{
		Objective:    objectiveBinary,
		FeatureNames: slices.Clone(names),
		InitScore:    initScore(y),
		Params:       p,
		Trees:        make([]*Tree, 0, p.NumRounds),
	}

	g := &grower{
		params: p,
		data:   newBinnedData(X, nf, p.MaxBin),
		grad:   make([]float64, len(X)),
		hess:   make([]float64, len(X)),
	}

	score := make([]float64, len(X))
	for i := range score {
		score[i] = m.InitScore
	}

	rng := rand.New(rand.NewPCG(p.Seed, p.Seed^seedMixer))
	for round := 0; round < p.NumRounds; round++ {
		for i := range score {
			prob := sigmoid(score[i])
			g.grad[i] = prob - y[i]
			g.hess[i] = prob * (1 - prob)
		}

		tree, leafOf := g.grow(sampleFeatures(rng, nf, p.FeatureFraction))
		for i := range score {
			score[i] += tree.LeafValue[leafOf[i]]
		}
		m.Trees = append(m.Trees, tree)

		slog.Debug("boosting round", "round", round+1, "leaves", tree.NumLeaves(), "logloss", logLoss(score, y))
	}

	return m, nil
}

// initScore is the log-odds of the positive rate.
func initScore(y []float64) float64 {
	var pos float64
	for _, v := range y {
		pos += v
	}
	p := pos / float64(len(y))
	p = min(max(p, kEpsilon), 1-kEpsilon)
	return math.Log(p / (1 - p))
}

func sampleFeatures(rng *rand.Rand, nf int, fraction float64) []int {
	k := int(math.Round(float64(nf) * fraction))
	k = min(max(k, 1), nf)
	if k == nf {
		all := make([]int, nf)
		for i := range all {
			all[i] = i
		}
		return all
	}
	picked := rng.Perm(nf)[:k]
	slices.Sort(picked)
	return picked
}

func logLoss(score, y []float64) float64 {
	var s float64
	for i, v := range score {
		p := min(max(sigmoid(v), kEpsilon), 1-kEpsilon)
		s -= y[i]*math.Log(p) + (1-y[i])*math.Log(1-p)
	}
	return s / float64(len(score))
}
