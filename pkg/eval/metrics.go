package eval

import (
	"fmt"
	"strings"
)

// Binarize maps probabilities to 0/1 with p > threshold as positive.
func Binarize(probs []float64, threshold float64) []float64 {
	out := make([]float64, len(probs))
	for i, p := range probs {
		if p > threshold {
			out[i] = 1
		}
	}
	return out
}

// Accuracy returns the share of matching labels.
func Accuracy(yTrue, yPred []float64) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	hit := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			hit++
		}
	}
	return float64(hit) / float64(len(yTrue))
}

// ClassMetrics are the precision, recall and F1 of one class.
type ClassMetrics struct {
	Label     string  `json:"label" yaml:"label"`
	Precision float64 `json:"precision" yaml:"precision"`
	Recall    float64 `json:"recall" yaml:"recall"`
	F1        float64 `json:"f1" yaml:"f1"`
	Support   int     `json:"support" yaml:"support"`
}

// Report is a per-class classification report for labels 0 and 1.
type Report struct {
	Classes     []ClassMetrics `json:"classes" yaml:"classes"`
	Accuracy    float64        `json:"accuracy" yaml:"accuracy"`
	MacroAvg    ClassMetrics   `json:"macro_avg" yaml:"macro_avg"`
	WeightedAvg ClassMetrics   `json:"weighted_avg" yaml:"weighted_avg"`
}

// NewReport computes the report. Ratios with a zero denominator are 0.
func NewReport(yTrue, yPred []float64) *Report {
	r := &Report{Accuracy: Accuracy(yTrue, yPred)}

	total := 0
	for _, label := range []float64{0, 1} {
		var tp, fp, fn int
		for i := range yTrue {
			switch {
			case yTrue[i] == label && yPred[i] == label:
				tp++
			case yTrue[i] != label && yPred[i] == label:
				fp++
			case yTrue[i] == label && yPred[i] != label:
				fn++
			}
		}
		c := ClassMetrics{
			Label:     fmt.Sprintf("%g", label),
			Precision: ratio(tp, tp+fp),
			Recall:    ratio(tp, tp+fn),
			Support:   tp + fn,
		}
		if c.Precision+c.Recall > 0 {
			c.F1 = 2 * c.Precision * c.Recall / (c.Precision + c.Recall)
		}
		r.Classes = append(r.Classes, c)
		total += c.Support
	}

	r.MacroAvg = ClassMetrics{Label: "macro avg", Support: total}
	r.WeightedAvg = ClassMetrics{Label: "weighted avg", Support: total}
	for _, c := range r.Classes {
		n := float64(len(r.Classes))
		r.MacroAvg.Precision += c.Precision / n
		r.MacroAvg.Recall += c.Recall / n
		r.MacroAvg.F1 += c.F1 / n
		if total > 0 {
			w := float64(c.Support) / float64(total)
			r.WeightedAvg.Precision += c.Precision * w
			r.WeightedAvg.Recall += c.Recall * w
			r.WeightedAvg.F1 += c.F1 * w
		}
	}
	return r
}

// String renders the report as an aligned text table.
func (r *Report) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%12s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")
	for _, c := range r.Classes {
		writeRow(&sb, c)
	}
	sb.WriteString("\n")
	total := r.MacroAvg.Support
	fmt.Fprintf(&sb, "%12s %10s %10s %10.2f %10d\n", "accuracy", "", "", r.Accuracy, total)
	writeRow(&sb, r.MacroAvg)
	writeRow(&sb, r.WeightedAvg)
	return sb.String()
}

func writeRow(sb *strings.Builder, c ClassMetrics) {
	fmt.Fprintf(sb, "%12s %10.2f %10.2f %10.2f %10d\n", c.Label, c.Precision, c.Recall, c.F1, c.Support)
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}
