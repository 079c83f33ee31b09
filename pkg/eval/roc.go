package eval

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
)

// ErrSingleClass is returned when the ROC curve is undefined because the
// labels hold only one class.
var ErrSingleClass = errors.New("eval: ROC curve needs both classes")

// Curve is a ROC curve; TPR[i] and FPR[i] are the rates at cutoff
// Thresholds[i].
type Curve struct {
	TPR        []float64 `json:"tpr" yaml:"tpr"`
	FPR        []float64 `json:"fpr" yaml:"fpr"`
	Thresholds []float64 `json:"thresholds" yaml:"thresholds"`
}

// ROC computes the curve of scores against 0/1 labels.
func ROC(yTrue, scores []float64) (*Curve, error) {
	if len(yTrue) != len(scores) {
		return nil, errors.Errorf("eval: %d labels, %d scores", len(yTrue), len(scores))
	}

	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, len(scores))
	var pos, neg int
	for i, s := range scores {
		pairs[i] = pair{score: s, pos: yTrue[i] == 1}
		if pairs[i].pos {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, ErrSingleClass
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })

	y := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		y[i] = p.score
		classes[i] = p.pos
	}

	tpr, fpr, thresh := stat.ROC(nil, y, classes, nil)
	return &Curve{TPR: tpr, FPR: fpr, Thresholds: thresh}, nil
}

// Youden returns the threshold maximising TPR - FPR and that maximum.
// Ties keep the first point on the curve.
func (c *Curve) Youden() (threshold, j float64) {
	best := -1
	j = math.Inf(-1)
	for i := range c.TPR {
		d := c.TPR[i] - c.FPR[i]
		if d > j {
			best, j = i, d
		}
	}
	if best < 0 {
		return math.NaN(), math.NaN()
	}
	return c.Thresholds[best], j
}

// OptimalThreshold computes the ROC curve and returns its Youden threshold.
func OptimalThreshold(yTrue, scores []float64) (float64, error) {
	c, err := ROC(yTrue, scores)
	if err != nil {
		return math.NaN(), err
	}
	t, _ := c.Youden()
	return t, nil
}
