package boost

import "fmt"

// Params configures training.
type Params struct {
	NumLeaves       int     `yaml:"num_leaves" json:"num_leaves"`
	LearningRate    float64 `yaml:"learning_rate" json:"learning_rate"`
	FeatureFraction float64 `yaml:"feature_fraction" json:"feature_fraction"`
	NumRounds       int     `yaml:"num_rounds" json:"num_rounds"`
	MinDataInLeaf   int     `yaml:"min_data_in_leaf" json:"min_data_in_leaf"`
	MinSumHessian   float64 `yaml:"min_sum_hessian_in_leaf" json:"min_sum_hessian_in_leaf"`
	LambdaL2        float64 `yaml:"lambda_l2" json:"lambda_l2"`
	MaxBin          int     `yaml:"max_bin" json:"max_bin"`
	Seed            uint64  `yaml:"seed" json:"seed"`
}

// DefaultParams mirrors the LightGBM configuration: gbdt, binary log-loss,
// 31 leaves, learning rate 0.05, feature fraction 0.9, 100 rounds.
func DefaultParams() Params {
	return Params{
		NumLeaves:       31,
		LearningRate:    0.05,
		FeatureFraction: 0.9,
		NumRounds:       100,
		MinDataInLeaf:   20,
		MinSumHessian:   1e-3,
		LambdaL2:        0,
		MaxBin:          255,
		Seed:            42,
	}
}

// Validate checks that every parameter is in range.
func (p Params) Validate() error {
	switch {
	case p.NumLeaves < 2:
		return fmt.Errorf("%w: num_leaves must be at least 2, got %d", ErrInvalidParams, p.NumLeaves)
	case p.LearningRate <= 0:
		return fmt.Errorf("%w: learning_rate must be positive, got %v", ErrInvalidParams, p.LearningRate)
	case p.FeatureFraction <= 0 || p.FeatureFraction > 1:
		return fmt.Errorf("%w: feature_fraction must be in (0, 1], got %v", ErrInvalidParams, p.FeatureFraction)
	case p.NumRounds < 1:
		return fmt.Errorf("%w: num_rounds must be at least 1, got %d", ErrInvalidParams, p.NumRounds)
	case p.MinDataInLeaf < 1:
		return fmt.Errorf("%w: min_data_in_leaf must be at least 1, got %d", ErrInvalidParams, p.MinDataInLeaf)
	case p.MinSumHessian < 0:
		return fmt.Errorf("%w: min_sum_hessian_in_leaf must not be negative, got %v", ErrInvalidParams, p.MinSumHessian)
	case p.LambdaL2 < 0:
		return fmt.Errorf("%w: lambda_l2 must not be negative, got %v", ErrInvalidParams, p.LambdaL2)
	case p.MaxBin < 2 || p.MaxBin > maxBinLimit:
		return fmt.Errorf("%w: max_bin must be in [2, %d], got %d", ErrInvalidParams, maxBinLimit, p.MaxBin)
	}
	return nil
}
