package trainer

import (
	"context"
	"io"
	"os"
	"slices"

	"github.com/mchmarny/pwdetect/pkg/boost"
	"github.com/mchmarny/pwdetect/pkg/dataset"
	"github.com/mchmarny/pwdetect/pkg/features"
	"github.com/mchmarny/pwdetect/pkg/generator"
	"github.com/mchmarny/pwdetect/pkg/net"
	"github.com/pkg/errors"
)

const (
	VerdictHuman   = "human"
	VerdictMachine = "machine"

	// RandomMinLength and RandomMaxLength bound the lowercase strings used
	// by ScoreRandom.
	RandomMinLength = 5
	RandomMaxLength = 16
)

// ErrSchemaMismatch is returned when a model was trained on features other
// than the ones this build extracts.
var ErrSchemaMismatch = errors.New("model feature names do not match extractor")

// Prediction is the scored outcome for one text.
type Prediction struct {
	Text        string  `json:"text" yaml:"text"`
	Probability float64 `json:"probability" yaml:"probability"`
	Human       bool    `json:"human" yaml:"human"`
}

// Verdict returns the label of the prediction.
func (p Prediction) Verdict() string {
	if p.Human {
		return VerdictHuman
	}
	return VerdictMachine
}

// Tally counts verdicts over a batch of texts.
type Tally struct {
	Human       int          `json:"human" yaml:"human"`
	Machine     int          `json:"machine" yaml:"machine"`
	Predictions []Prediction `json:"-" yaml:"-"`
}

// Total returns the number of scored texts.
func (t *Tally) Total() int {
	return t.Human + t.Machine
}

func newTally(list []Prediction) *Tally {
	t := &Tally{Predictions: list}
	for _, p := range list {
		if p.Human {
			t.Human++
		} else {
			t.Machine++
		}
	}
	return t
}

// Scorer applies a trained model with a fixed decision threshold.
// It is safe for concurrent use.
type Scorer struct {
	model     *boost.Model
	threshold float64
}

// NewScorer wraps m. The model must use the extractor's feature names in
// the same order.
func NewScorer(m *boost.Model, threshold float64) (*Scorer, error) {
	if m == nil {
		return nil, errors.New("model required")
	}
	if threshold < 0 || threshold > 1 {
		return nil, errors.Errorf("threshold must be in [0, 1], got %v", threshold)
	}
	if !slices.Equal(m.FeatureNames, features.Names()) {
		return nil, errors.Wrapf(ErrSchemaMismatch, "model has %d features %v", len(m.FeatureNames), m.FeatureNames)
	}
	return &Scorer{model: m, threshold: threshold}, nil
}

// LoadScorer reads a persisted model from path.
func LoadScorer(modelPath string, threshold float64) (*Scorer, error) {
	m, err := boost.LoadFile(modelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading model: %s", modelPath)
	}
	return NewScorer(m, threshold)
}

// Threshold returns the decision threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Model returns the underlying model.
func (s *Scorer) Model() *boost.Model {
	return s.model
}

// Score classifies one text: human when the probability exceeds the
// threshold.
func (s *Scorer) Score(text string) Prediction {
	return s.predict(text, features.Extract(text))
}

func (s *Scorer) predict(text string, v features.Vector) Prediction {
	p := s.model.Predict(v)
	return Prediction{
		Text:        text,
		Probability: p,
		Human:       p > s.threshold,
	}
}

// ScoreAll classifies texts in order.
func (s *Scorer) ScoreAll(ctx context.Context, texts []string) ([]Prediction, error) {
	vecs, err := features.ExtractAll(ctx, texts)
	if err != nil {
		return nil, errors.Wrap(err, "error extracting features")
	}
	list := make([]Prediction, len(texts))
	for i, v := range vecs {
		list[i] = s.predict(texts[i], v)
	}
	return list, nil
}

// ScoreWordlist classifies every line of r.
func (s *Scorer) ScoreWordlist(ctx context.Context, r io.Reader) (*Tally, error) {
	words, err := dataset.ReadPasswords(r)
	if err != nil {
		return nil, errors.Wrap(err, "error reading wordlist")
	}
	list, err := s.ScoreAll(ctx, words)
	if err != nil {
		return nil, err
	}
	return newTally(list), nil
}

// ScoreRandom classifies n random lowercase strings drawn from gen.
func (s *Scorer) ScoreRandom(ctx context.Context, n int, gen *generator.Generator) (*Tally, error) {
	if n < 0 {
		return nil, errors.Errorf("invalid sample count: %d", n)
	}
	if gen == nil {
		return nil, errors.New("generator required")
	}
	texts := make([]string, n)
	for i := range texts {
		texts[i] = gen.RandomLowercase(RandomMinLength, RandomMaxLength)
	}
	list, err := s.ScoreAll(ctx, texts)
	if err != nil {
		return nil, err
	}
	return newTally(list), nil
}

// OpenWordlist opens a local path, or downloads src to a temporary file
// when it is a URL. Closing the reader removes the temporary file.
func OpenWordlist(ctx context.Context, src string) (io.ReadCloser, error) {
	if !net.IsURL(src) {
		f, err := os.Open(src)
		if err != nil {
			return nil, errors.Wrapf(err, "error opening wordlist: %s", src)
		}
		return f, nil
	}

	tmp, err := os.CreateTemp("", "pwdetect-wordlist-*.txt")
	if err != nil {
		return nil, errors.Wrap(err, "error creating temp file")
	}
	path := tmp.Name()
	tmp.Close()

	if err := net.Download(ctx, src, path); err != nil {
		os.Remove(path)
		return nil, errors.Wrapf(err, "error downloading wordlist: %s", src)
	}

	f, err := os.Open(path)
	if err != nil {
		os.Remove(path)
		return nil, errors.Wrapf(err, "error opening downloaded wordlist: %s", path)
	}
	return &tempFile{File: f}, nil
}

type tempFile struct {
	*os.File
}

func (t *tempFile) Close() error {
	err := t.File.Close()
	if rErr := os.Remove(t.Name()); rErr != nil && err == nil {
		err = rErr
	}
	return err
}
