// Package trainer runs the train, evaluate and score pipeline of the
// password classifier.
package trainer

import (
	"context"
	"database/sql"
	"log/slog"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/mchmarny/pwdetect/pkg/boost"
	"github.com/mchmarny/pwdetect/pkg/config"
	"github.com/mchmarny/pwdetect/pkg/dataset"
	"github.com/mchmarny/pwdetect/pkg/eval"
	"github.com/mchmarny/pwdetect/pkg/generator"
	"github.com/mchmarny/pwdetect/pkg/store"
	"github.com/pkg/errors"
)

const (
	// EvalThreshold binarizes test predictions for the accuracy report.
	EvalThreshold = 0.5

	SourceText     = "text"
	SourceWordlist = "wordlist"
	SourceRandom   = "random"
)

// Options configure a training run.
type Options struct {
	Datasets  []string
	Text      string
	Threshold float64
	TestSize  float64
	SplitSeed uint64
	ModelPath string
	// PlotPath is skipped when empty.
	PlotPath string
	// ImportanceType is ImportanceSplit or ImportanceGain.
	ImportanceType string
	Params   boost.Params

	// Wordlist is a path or URL scored after training when set.
	Wordlist      string
	RandomSamples int
	// RandomSeed seeds the random samples; 0 picks one.
	RandomSeed uint64

	// DB records the run when not nil.
	DB *sql.DB
}

// NewOptions returns options populated from c.
func NewOptions(c *config.Config) *Options {
	if c == nil {
		c = config.Default()
	}
	return &Options{
		Threshold: c.Threshold,
		TestSize:  c.TestSize,
		SplitSeed: c.SplitSeed,
		ModelPath: c.ModelFile,
		PlotPath:  c.PlotFile,
		Params:    c.Training,

		ImportanceType: c.ImportanceType,
	}
}

// Validate checks the options.
func (o *Options) Validate() error {
	if len(o.Datasets) == 0 {
		return errors.New("at least one dataset required")
	}
	if o.ModelPath == "" {
		return errors.New("model path required")
	}
	if o.Threshold < 0 || o.Threshold > 1 {
		return errors.Errorf("threshold must be in [0, 1], got %v", o.Threshold)
	}
	if o.ImportanceType != "" && o.ImportanceType != ImportanceSplit && o.ImportanceType != ImportanceGain {
		return errors.Errorf("unsupported importance type: %s", o.ImportanceType)
	}
	if o.RandomSamples < 0 {
		return errors.Errorf("invalid random sample count: %d", o.RandomSamples)
	}
	return errors.Wrap(o.Params.Validate(), "invalid training parameters")
}

// Result is the outcome of Run.
type Result struct {
	RunID     int64  `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	RunKey    string `json:"run_key,omitempty" yaml:"run_key,omitempty"`
	TrainRows int    `json:"train_rows" yaml:"train_rows"`
	TestRows  int    `json:"test_rows" yaml:"test_rows"`
	// OptimalThreshold is nil when the test rows hold a single class.
	OptimalThreshold *float64     `json:"optimal_threshold" yaml:"optimal_threshold"`
	Threshold        float64      `json:"threshold" yaml:"threshold"`
	Accuracy         float64      `json:"accuracy" yaml:"accuracy"`
	Report           *eval.Report `json:"report" yaml:"report"`
	Prediction       *Prediction  `json:"prediction,omitempty" yaml:"prediction,omitempty"`
	Wordlist         *Tally       `json:"wordlist,omitempty" yaml:"wordlist,omitempty"`
	Random           *Tally       `json:"random,omitempty" yaml:"random,omitempty"`
	Importance       []Importance `json:"importance" yaml:"importance"`
	ModelPath        string       `json:"model_path" yaml:"model_path"`
	PlotPath         string       `json:"plot_path,omitempty" yaml:"plot_path,omitempty"`
}

// Human returns the combined human count of the bulk tallies.
func (r *Result) Human() int {
	n := 0
	for _, t := range []*Tally{r.Wordlist, r.Random} {
		if t != nil {
			n += t.Human
		}
	}
	return n
}

// Machine returns the combined machine count of the bulk tallies.
func (r *Result) Machine() int {
	n := 0
	for _, t := range []*Tally{r.Wordlist, r.Random} {
		if t != nil {
			n += t.Machine
		}
	}
	return n
}

// Run loads the datasets, trains and saves the model, evaluates it on the
// held out rows, then scores the requested texts.
func Run(ctx context.Context, opt *Options) (*Result, error) {
	if opt == nil {
		return nil, errors.New("options required")
	}
	if err := opt.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid options")
	}

	t, err := dataset.LoadFiles(opt.Datasets...)
	if err != nil {
		return nil, errors.Wrap(err, "error loading datasets")
	}
	slog.Info("dataset loaded", "rows", t.Len(), "human", t.Positives())

	split, err := eval.TrainTestSplit(t.Len(), opt.TestSize, opt.SplitSeed)
	if err != nil {
		return nil, errors.Wrap(err, "error splitting dataset")
	}
	xTrain, yTrain := eval.Rows(t.X, t.Y, split.Train)
	xTest, yTest := eval.Rows(t.X, t.Y, split.Test)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := boost.Train(xTrain, yTrain, t.Names, opt.Params)
	if err != nil {
		return nil, errors.Wrap(err, "error training model")
	}
	slog.Info("model trained", "trees", len(m.Trees), "train_rows", len(yTrain))

	if err := m.SaveFile(opt.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "error saving model: %s", opt.ModelPath)
	}
	slog.Debug("model saved", "path", opt.ModelPath)

	res := &Result{
		TrainRows: len(yTrain),
		TestRows:  len(yTest),
		Threshold: opt.Threshold,
		ModelPath: opt.ModelPath,
	}

	probs := m.PredictAll(xTest)
	yPred := eval.Binarize(probs, EvalThreshold)
	res.Report = eval.NewReport(yTest, yPred)
	res.Accuracy = res.Report.Accuracy

	optimal, err := eval.OptimalThreshold(yTest, probs)
	switch {
	case errors.Is(err, eval.ErrSingleClass):
		slog.Warn("optimal threshold undefined", "reason", err.Error(), "test_rows", len(yTest))
	case err != nil:
		return nil, errors.Wrap(err, "error computing ROC curve")
	default:
		res.OptimalThreshold = &optimal
	}

	scorer, err := NewScorer(m, opt.Threshold)
	if err != nil {
		return nil, err
	}

	// the empty string is a valid password and is scored like any other
	p := scorer.Score(opt.Text)
	res.Prediction = &p

	if opt.Wordlist != "" {
		r, err := OpenWordlist(ctx, opt.Wordlist)
		if err != nil {
			return nil, err
		}
		res.Wordlist, err = scorer.ScoreWordlist(ctx, r)
		r.Close()
		if err != nil {
			return nil, errors.Wrapf(err, "error scoring wordlist: %s", opt.Wordlist)
		}
	}

	if opt.RandomSamples > 0 {
		seed := opt.RandomSeed
		if seed == 0 {
			seed = rand.Uint64()
		}
		res.Random, err = scorer.ScoreRandom(ctx, opt.RandomSamples, generator.NewSeeded(seed))
		if err != nil {
			return nil, errors.Wrap(err, "error scoring random samples")
		}
	}

	if res.Importance, err = RankImportance(m, opt.ImportanceType); err != nil {
		return nil, err
	}
	if opt.PlotPath != "" {
		if err := PlotImportance(res.Importance, opt.PlotPath); err != nil {
			return nil, err
		}
		res.PlotPath = opt.PlotPath
	}

	if opt.DB != nil {
		run, err := record(opt, res)
		if err != nil {
			return nil, err
		}
		res.RunID, res.RunKey = run.ID, run.Key
	}

	return res, nil
}

func record(opt *Options, res *Result) (*store.Run, error) {
	optimal := math.NaN()
	if res.OptimalThreshold != nil {
		optimal = *res.OptimalThreshold
	}
	run := &store.Run{
		Dataset:          strings.Join(opt.Datasets, ","),
		TrainRows:        res.TrainRows,
		TestRows:         res.TestRows,
		Accuracy:         res.Accuracy,
		OptimalThreshold: optimal,
		Threshold:        res.Threshold,
		ModelPath:        res.ModelPath,
	}
	id, err := store.SaveRun(opt.DB, run)
	if err != nil {
		return nil, errors.Wrap(err, "error recording run")
	}

	list := make([]*store.PredictionRecord, 0)
	if res.Prediction != nil {
		list = append(list, toRecord(SourceText, *res.Prediction))
	}
	for _, b := range []struct {
		src   string
		tally *Tally
	}{{SourceWordlist, res.Wordlist}, {SourceRandom, res.Random}} {
		if b.tally == nil {
			continue
		}
		for _, p := range b.tally.Predictions {
			list = append(list, toRecord(b.src, p))
		}
	}

	if err := store.SavePredictions(opt.DB, id, list); err != nil {
		return nil, errors.Wrap(err, "error recording predictions")
	}
	slog.Debug("run recorded", "id", id, "key", run.Key, "predictions", len(list))

	return run, nil
}

func toRecord(src string, p Prediction) *store.PredictionRecord {
	return &store.PredictionRecord{
		Source:      src,
		Text:        p.Text,
		Probability: p.Probability,
		Human:       p.Human,
	}
}
