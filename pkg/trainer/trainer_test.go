package trainer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mchmarny/pwdetect/pkg/boost"
	"github.com/mchmarny/pwdetect/pkg/dataset"
	"github.com/mchmarny/pwdetect/pkg/eval"
	"github.com/mchmarny/pwdetect/pkg/features"
	"github.com/mchmarny/pwdetect/pkg/generator"
	"github.com/mchmarny/pwdetect/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var humanWords = []string{
	"password", "sunshine", "princess", "football", "monkey", "dragon",
	"baseball", "iloveyou", "trustno", "superman", "michael", "jennifer",
	"shadow", "master", "jordan", "hunter", "buster", "soccer", "harley",
	"ranger", "thomas", "tigger", "robert", "summer", "ginger", "charlie",
	"pepper", "cookie", "maggie", "cheese",
}

func humanPasswords() []string {
	suffixes := []string{"", "1", "12", "123", "2024", "99", "7"}
	list := make([]string, 0, len(humanWords)*len(suffixes))
	for _, w := range humanWords {
		for _, s := range suffixes {
			list = append(list, w+s)
		}
	}
	return list
}

func writeDataset(t *testing.T, dir, name string, passwords []string, human bool) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, dataset.Write(context.Background(), f, passwords, human))
	return path
}

func testOptions(t *testing.T) *Options {
	t.Helper()
	dir := t.TempDir()
	opt := NewOptions(nil)
	opt.Datasets = []string{
		writeDataset(t, dir, "human.csv", humanPasswords(), true),
		writeDataset(t, dir, "machine.csv", generator.NewSeeded(7).Generate(210), false),
	}
	opt.ModelPath = filepath.Join(dir, "model.txt")
	opt.PlotPath = ""
	opt.Params.NumRounds = 30
	return opt
}

func TestRun(t *testing.T) {
	opt := testOptions(t)
	opt.Text = "sunshine123"
	opt.RandomSamples = 50
	opt.RandomSeed = 3

	res, err := Run(context.Background(), opt)
	require.NoError(t, err)

	assert.Equal(t, 84, res.TestRows)
	assert.Equal(t, 336, res.TrainRows)
	assert.Greater(t, res.Accuracy, 0.8)
	require.NotNil(t, res.Report)
	assert.Len(t, res.Report.Classes, 2)
	require.NotNil(t, res.OptimalThreshold)
	assert.GreaterOrEqual(t, *res.OptimalThreshold, 0.0)
	assert.InDelta(t, 0.9, res.Threshold, 1e-12)

	require.NotNil(t, res.Prediction)
	assert.Equal(t, "sunshine123", res.Prediction.Text)
	assert.Equal(t, res.Prediction.Probability > 0.9, res.Prediction.Human)

	require.NotNil(t, res.Random)
	assert.Equal(t, 50, res.Random.Total())
	assert.Nil(t, res.Wordlist)
	assert.Equal(t, 50, res.Human()+res.Machine())

	assert.Len(t, res.Importance, features.Size)
	for i := 1; i < len(res.Importance); i++ {
		assert.GreaterOrEqual(t, res.Importance[i-1].Value, res.Importance[i].Value)
	}

	_, err = os.Stat(opt.ModelPath)
	assert.NoError(t, err)
	assert.Empty(t, res.PlotPath)
}

func TestRun_SavedModelMatches(t *testing.T) {
	opt := testOptions(t)
	opt.Text = "Xk#9qL!2vZ"
	res, err := Run(context.Background(), opt)
	require.NoError(t, err)

	s, err := LoadScorer(opt.ModelPath, opt.Threshold)
	require.NoError(t, err)
	p := s.Score(opt.Text)
	assert.InDelta(t, res.Prediction.Probability, p.Probability, 1e-12)
	assert.Equal(t, res.Prediction.Human, p.Human)
}

func TestRun_EmptyText(t *testing.T) {
	opt := testOptions(t)
	opt.Text = ""

	res, err := Run(context.Background(), opt)
	require.NoError(t, err)
	require.NotNil(t, res.Prediction)
	assert.Equal(t, "", res.Prediction.Text)

	s, err := LoadScorer(opt.ModelPath, opt.Threshold)
	require.NoError(t, err)
	assert.Equal(t, s.Score(""), *res.Prediction)
}

func TestRun_Plot(t *testing.T) {
	opt := testOptions(t)
	opt.PlotPath = filepath.Join(t.TempDir(), "importance.png")

	res, err := Run(context.Background(), opt)
	require.NoError(t, err)
	assert.Equal(t, opt.PlotPath, res.PlotPath)

	info, err := os.Stat(opt.PlotPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestRun_SingleClass(t *testing.T) {
	dir := t.TempDir()
	opt := NewOptions(nil)
	opt.Datasets = []string{writeDataset(t, dir, "human.csv", humanPasswords(), true)}
	opt.ModelPath = filepath.Join(dir, "model.txt")
	opt.PlotPath = ""
	opt.Params.NumRounds = 5

	res, err := Run(context.Background(), opt)
	require.NoError(t, err)
	assert.Nil(t, res.OptimalThreshold)
	assert.InDelta(t, 1.0, res.Accuracy, 1e-12)
}

func TestRun_Degenerate(t *testing.T) {
	dir := t.TempDir()
	same := make([]string, 40)
	for i := range same {
		same[i] = "aaaa"
	}
	opt := NewOptions(nil)
	opt.Datasets = []string{
		writeDataset(t, dir, "human.csv", same, true),
		writeDataset(t, dir, "machine.csv", same, false),
	}
	opt.ModelPath = filepath.Join(dir, "model.txt")
	opt.PlotPath = ""
	opt.Params.NumRounds = 5
	opt.Text = "aaaa"

	res, err := Run(context.Background(), opt)
	require.NoError(t, err)
	require.NotNil(t, res.Prediction)

	// identical rows cannot be split, so every score is the training prior
	split, err := eval.TrainTestSplit(80, opt.TestSize, opt.SplitSeed)
	require.NoError(t, err)
	pos := 0
	for _, i := range split.Train {
		if i < 40 {
			pos++
		}
	}
	prior := float64(pos) / float64(len(split.Train))
	assert.InDelta(t, prior, res.Prediction.Probability, 1e-9)
	assert.False(t, res.Prediction.Human)
}

func TestRun_Record(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "data.db")
	require.NoError(t, store.Init(dbPath))
	db, err := store.GetDB(dbPath)
	require.NoError(t, err)
	defer db.Close()

	opt := testOptions(t)
	opt.Text = "dragon99"
	opt.RandomSamples = 10
	opt.RandomSeed = 1
	opt.DB = db

	res, err := Run(context.Background(), opt)
	require.NoError(t, err)
	assert.Greater(t, res.RunID, int64(0))
	assert.NotEmpty(t, res.RunKey)

	runs, err := store.ListRuns(db, 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, res.RunKey, runs[0].Key)
	assert.Equal(t, strings.Join(opt.Datasets, ","), runs[0].Dataset)

	state, err := store.GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(11), state["prediction"])
}

func TestRun_InvalidOptions(t *testing.T) {
	_, err := Run(context.Background(), nil)
	assert.Error(t, err)

	opt := NewOptions(nil)
	_, err = Run(context.Background(), opt)
	assert.Error(t, err)

	opt = testOptions(t)
	opt.Threshold = 2
	_, err = Run(context.Background(), opt)
	assert.Error(t, err)

	opt = testOptions(t)
	opt.Datasets = []string{filepath.Join(t.TempDir(), "missing.csv")}
	_, err = Run(context.Background(), opt)
	assert.Error(t, err)
}

func trainedScorer(t *testing.T, threshold float64) *Scorer {
	t.Helper()
	opt := testOptions(t)
	_, err := Run(context.Background(), opt)
	require.NoError(t, err)
	s, err := LoadScorer(opt.ModelPath, threshold)
	require.NoError(t, err)
	return s
}

func TestScorer_Threshold(t *testing.T) {
	s := trainedScorer(t, 0)
	assert.True(t, s.Score("password1").Human)
	assert.Equal(t, VerdictHuman, s.Score("password1").Verdict())

	s2, err := NewScorer(s.Model(), 1)
	require.NoError(t, err)
	assert.False(t, s2.Score("password1").Human)
	assert.Equal(t, VerdictMachine, s2.Score("password1").Verdict())
}

func TestScorer_SchemaMismatch(t *testing.T) {
	m := &boost.Model{FeatureNames: []string{"length"}}
	_, err := NewScorer(m, 0.9)
	assert.ErrorIs(t, err, ErrSchemaMismatch)

	_, err = NewScorer(nil, 0.9)
	assert.Error(t, err)

	names := features.Names()
	names[0], names[1] = names[1], names[0]
	_, err = NewScorer(&boost.Model{FeatureNames: names}, 0.9)
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoadScorer_Missing(t *testing.T) {
	_, err := LoadScorer(filepath.Join(t.TempDir(), "nope.txt"), 0.9)
	assert.Error(t, err)
}

func TestScorer_ScoreWordlist(t *testing.T) {
	s := trainedScorer(t, 0.9)
	tally, err := s.ScoreWordlist(context.Background(), strings.NewReader("password\nletmein\n\nqwerty\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, tally.Total())
	require.Len(t, tally.Predictions, 4)
	assert.Equal(t, "letmein", tally.Predictions[1].Text)
	assert.Equal(t, "", tally.Predictions[2].Text)
}

func TestScorer_ScoreRandom(t *testing.T) {
	s := trainedScorer(t, 0.9)
	tally, err := s.ScoreRandom(context.Background(), 25, generator.NewSeeded(11))
	require.NoError(t, err)
	assert.Equal(t, 25, tally.Total())
	for _, p := range tally.Predictions {
		assert.GreaterOrEqual(t, len(p.Text), RandomMinLength)
		assert.LessOrEqual(t, len(p.Text), RandomMaxLength)
		assert.Equal(t, strings.ToLower(p.Text), p.Text)
	}

	again, err := s.ScoreRandom(context.Background(), 25, generator.NewSeeded(11))
	require.NoError(t, err)
	assert.Equal(t, tally.Predictions, again.Predictions)

	_, err = s.ScoreRandom(context.Background(), -1, generator.NewSeeded(1))
	assert.Error(t, err)
	_, err = s.ScoreRandom(context.Background(), 1, nil)
	assert.Error(t, err)
}

func TestOpenWordlist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/words.txt" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "alpha\nbeta\n")
	}))
	defer srv.Close()

	ctx := context.Background()
	r, err := OpenWordlist(ctx, srv.URL+"/words.txt")
	require.NoError(t, err)
	words, err := dataset.ReadPasswords(r)
	require.NoError(t, err)
	tmp := r.(*tempFile).Name()
	require.NoError(t, r.Close())
	assert.Equal(t, []string{"alpha", "beta"}, words)
	_, err = os.Stat(tmp)
	assert.True(t, os.IsNotExist(err))

	_, err = OpenWordlist(ctx, srv.URL+"/missing.txt")
	assert.Error(t, err)

	local := filepath.Join(t.TempDir(), "words.txt")
	require.NoError(t, os.WriteFile(local, []byte("gamma\n"), 0600))
	r, err = OpenWordlist(ctx, local)
	require.NoError(t, err)
	defer r.Close()
	words, err = dataset.ReadPasswords(r)
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, words)

	_, err = OpenWordlist(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestRankImportance(t *testing.T) {
	m := &boost.Model{
		FeatureNames: []string{"a", "b", "c"},
		Trees: []*boost.Tree{
			{SplitFeature: []int{1, 2, 1}, SplitGain: []float64{1, 10, 1}},
			{SplitFeature: []int{2}, SplitGain: []float64{5}},
			{SplitFeature: []int{1}, SplitGain: []float64{1}},
		},
	}

	list, err := RankImportance(m, ImportanceSplit)
	require.NoError(t, err)
	assert.Equal(t, []Importance{{"b", 3}, {"c", 2}, {"a", 0}}, list)

	list, err = RankImportance(m, "")
	require.NoError(t, err)
	assert.Equal(t, "b", list[0].Feature)

	list, err = RankImportance(m, ImportanceGain)
	require.NoError(t, err)
	assert.Equal(t, []Importance{{"c", 15}, {"b", 3}, {"a", 0}}, list)

	_, err = RankImportance(m, "weight")
	assert.Error(t, err)

	out := FormatImportance(list)
	assert.Contains(t, out, "Feature Name")
	assert.Contains(t, out, "Importance")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "c"))
	assert.True(t, strings.HasSuffix(lines[1], " 15"))
}

func TestRun_GainImportance(t *testing.T) {
	opt := testOptions(t)
	opt.ImportanceType = ImportanceGain

	res, err := Run(context.Background(), opt)
	require.NoError(t, err)
	require.Len(t, res.Importance, features.Size)
	assert.Greater(t, res.Importance[0].Value, 0.0)

	opt.ImportanceType = "weight"
	_, err = Run(context.Background(), opt)
	assert.Error(t, err)
}

func TestPlotImportance_Empty(t *testing.T) {
	assert.Error(t, PlotImportance(nil, filepath.Join(t.TempDir(), "x.png")))
}
