package boost

// Tree is a binary decision tree in flat form. Internal node i sends a row
// left when x[SplitFeature[i]] <= Threshold[i]. Child references >= 0 are
// internal nodes; a negative reference c is leaf ^c.
type Tree struct {
	SplitFeature []int     `yaml:"split_feature,flow"`
	Threshold    []float64 `yaml:"threshold,flow"`
	SplitGain    []float64 `yaml:"split_gain,flow"`
	LeftChild    []int     `yaml:"left_child,flow"`
	RightChild   []int     `yaml:"right_child,flow"`
	LeafValue    []float64 `yaml:"leaf_value,flow"`
	LeafCount    []int     `yaml:"leaf_count,flow"`
}

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int {
	return len(t.LeafValue)
}

// Predict returns the output of the leaf x falls into.
func (t *Tree) Predict(x []float64) float64 {
	return t.LeafValue[t.leafIndex(x)]
}

func (t *Tree) leafIndex(x []float64) int {
	if len(t.SplitFeature) == 0 {
		return 0
	}
	node := 0
	for {
		next := t.RightChild[node]
		if x[t.SplitFeature[node]] <= t.Threshold[node] {
			next = t.LeftChild[node]
		}
		if next < 0 {
			return ^next
		}
		node = next
	}
}

func (t *Tree) validate(numFeatures int) error {
	nodes := len(t.SplitFeature)
	if len(t.LeafValue) != nodes+1 {
		return ErrInvalidModel
	}
	if len(t.Threshold) != nodes || len(t.LeftChild) != nodes || len(t.RightChild) != nodes {
		return ErrInvalidModel
	}
	for i := 0; i < nodes; i++ {
		if t.SplitFeature[i] < 0 || t.SplitFeature[i] >= numFeatures {
			return ErrInvalidModel
		}
		for _, c := range []int{t.LeftChild[i], t.RightChild[i]} {
			// children always come after their parent
			if c >= nodes || (c >= 0 && c <= i) || (c < 0 && ^c > nodes) {
				return ErrInvalidModel
			}
		}
	}
	return nil
}
