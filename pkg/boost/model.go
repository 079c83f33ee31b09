package boost

import (
	"fmt"
	"math"
)

const objectiveBinary = "binary"

// Model is a fitted boosted-tree ensemble.
type Model struct {
	Objective    string   `yaml:"objective"`
	FeatureNames []string `yaml:"feature_names"`
	InitScore    float64  `yaml:"init_score"`
	Params       Params   `yaml:"params"`
	Trees        []*Tree  `yaml:"trees"`
}

// NumFeatures returns the input width the model expects.
func (m *Model) NumFeatures() int {
	return len(m.FeatureNames)
}

// Raw returns the summed tree output in log-odds.
func (m *Model) Raw(x []float64) float64 {
	s := m.InitScore
	for _, t := range m.Trees {
		s += t.Predict(x)
	}
	return s
}

// Predict returns the probability that x belongs to the positive class.
func (m *Model) Predict(x []float64) float64 {
	return sigmoid(m.Raw(x))
}

// PredictAll returns the probability of every row.
func (m *Model) PredictAll(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, x := range X {
		out[i] = m.Predict(x)
	}
	return out
}

// FeatureImportance returns, per feature, how many splits use it.
func (m *Model) FeatureImportance() []int {
	imp := make([]int, m.NumFeatures())
	for _, t := range m.Trees {
		for _, f := range t.SplitFeature {
			imp[f]++
		}
	}
	return imp
}

// GainImportance returns, per feature, the total gain of its splits.
func (m *Model) GainImportance() []float64 {
	imp := make([]float64, m.NumFeatures())
	for _, t := range m.Trees {
		for i, f := range t.SplitFeature {
			if i < len(t.SplitGain) {
				imp[f] += t.SplitGain[i]
			}
		}
	}
	return imp
}

// Validate checks the model structure.
func (m *Model) Validate() error {
	if m.Objective != objectiveBinary {
		return fmt.Errorf("%w: unsupported objective %q", ErrInvalidModel, m.Objective)
	}
	if m.NumFeatures() == 0 {
		return fmt.Errorf("%w: no feature names", ErrInvalidModel)
	}
	if math.IsNaN(m.InitScore) || math.IsInf(m.InitScore, 0) {
		return fmt.Errorf("%w: init score %v", ErrInvalidModel, m.InitScore)
	}
	for i, t := range m.Trees {
		if t == nil {
			return fmt.Errorf("%w: tree %d is empty", ErrInvalidModel, i)
		}
		if err := t.validate(m.NumFeatures()); err != nil {
			return fmt.Errorf("%w: tree %d", err, i)
		}
	}
	return nil
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
