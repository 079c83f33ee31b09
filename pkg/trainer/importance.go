package trainer

import (
	"fmt"
	"image/color"
	"sort"
	"strings"

	"github.com/mchmarny/pwdetect/pkg/boost"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var barColor = color.RGBA{R: 76, G: 114, B: 176, A: 255}

const (
	// ImportanceSplit counts the splits that use a feature.
	ImportanceSplit = "split"
	// ImportanceGain totals the loss reduction of those splits.
	ImportanceGain = "gain"
)

// Importance is the weight of one feature in a trained model.
type Importance struct {
	Feature string  `json:"feature" yaml:"feature"`
	Value   float64 `json:"importance" yaml:"importance"`
}

// RankImportance lists features by importance of the given type, most
// important first. Ties keep feature order.
func RankImportance(m *boost.Model, importanceType string) ([]Importance, error) {
	var vals []float64
	switch importanceType {
	case "", ImportanceSplit:
		counts := m.FeatureImportance()
		vals = make([]float64, len(counts))
		for i, c := range counts {
			vals[i] = float64(c)
		}
	case ImportanceGain:
		vals = m.GainImportance()
	default:
		return nil, errors.Errorf("unsupported importance type: %s", importanceType)
	}

	list := make([]Importance, len(vals))
	for i, v := range vals {
		list[i] = Importance{Feature: m.FeatureNames[i], Value: v}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Value > list[j].Value })
	return list, nil
}

// FormatImportance renders the ranking as a two-column table.
func FormatImportance(list []Importance) string {
	w := len("Feature Name")
	for _, i := range list {
		w = max(w, len(i.Feature))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-*s %12s\n", w, "Feature Name", "Importance")
	for _, i := range list {
		fmt.Fprintf(&sb, "%-*s %12.6g\n", w, i.Feature, i.Value)
	}
	return sb.String()
}

// PlotImportance saves a horizontal bar chart of the ranking to path. The
// image format follows the file extension.
func PlotImportance(list []Importance, path string) error {
	if len(list) == 0 {
		return errors.New("nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Feature Importance"
	p.X.Label.Text = "Feature Importance"
	p.Y.Label.Text = "Feature Names"

	// bars are drawn bottom up, so reverse to put the top feature first
	n := len(list)
	vals := make(plotter.Values, n)
	names := make([]string, n)
	for i, imp := range list {
		vals[n-1-i] = imp.Value
		names[n-1-i] = imp.Feature
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(12))
	if err != nil {
		return errors.Wrap(err, "error creating bar chart")
	}
	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)

	p.Add(bars)
	p.NominalY(names...)

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "error saving plot: %s", path)
	}
	return nil
}
