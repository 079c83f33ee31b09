package store

import (
	"database/sql"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	db, err := GetDB(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInit_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	err := Init(dbPath)
	require.NoError(t, err)
	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func TestInit_EmptyPath(t *testing.T) {
	err := Init("")
	assert.Error(t, err)
}

func TestInit_Idempotent(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	require.NoError(t, Init(dbPath))
	assert.NoError(t, Init(dbPath))
}

func TestNilDB(t *testing.T) {
	_, err := SaveRun(nil, &Run{})
	assert.ErrorIs(t, err, errDBNotInitialized)
	assert.ErrorIs(t, SavePredictions(nil, 1, nil), errDBNotInitialized)
	_, err = ListRuns(nil, 1)
	assert.ErrorIs(t, err, errDBNotInitialized)
	_, err = GetDataState(nil)
	assert.ErrorIs(t, err, errDBNotInitialized)
}

func TestSaveAndListRuns(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	first := &Run{
		CreatedAt:        base,
		Dataset:          "a.csv",
		TrainRows:        80,
		TestRows:         20,
		Accuracy:         0.95,
		OptimalThreshold: 0.42,
		Threshold:        0.9,
		ModelPath:        "model.txt",
	}
	id1, err := SaveRun(db, first)
	require.NoError(t, err)
	assert.Equal(t, id1, first.ID)

	second := &Run{
		CreatedAt:        base.Add(time.Hour),
		Dataset:          "b.csv",
		TrainRows:        8,
		TestRows:         2,
		Accuracy:         1,
		OptimalThreshold: math.NaN(),
		Threshold:        0.5,
		ModelPath:        "other.txt",
	}
	id2, err := SaveRun(db, second)
	require.NoError(t, err)
	assert.Greater(t, id2, id1)

	list, err := ListRuns(db, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, id2, list[0].ID)
	assert.Equal(t, "b.csv", list[0].Dataset)
	assert.True(t, math.IsNaN(list[0].OptimalThreshold))
	assert.True(t, second.CreatedAt.Equal(list[0].CreatedAt))

	assert.Equal(t, id1, list[1].ID)
	assert.Equal(t, 80, list[1].TrainRows)
	assert.Equal(t, 20, list[1].TestRows)
	assert.InDelta(t, 0.95, list[1].Accuracy, 1e-12)
	assert.InDelta(t, 0.42, list[1].OptimalThreshold, 1e-12)
	assert.InDelta(t, 0.9, list[1].Threshold, 1e-12)
	assert.Equal(t, "model.txt", list[1].ModelPath)

	assert.Equal(t, second.Key, list[0].Key)
	assert.NotEqual(t, list[0].Key, list[1].Key)
	_, err = uuid.Parse(list[1].Key)
	assert.NoError(t, err)

	list, err = ListRuns(db, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id2, list[0].ID)
}

func TestSaveRun_DefaultsTime(t *testing.T) {
	db := setupTestDB(t)
	r := &Run{Dataset: "x.csv"}
	_, err := SaveRun(db, r)
	require.NoError(t, err)
	assert.False(t, r.CreatedAt.IsZero())
}

func TestSaveRun_DuplicateKey(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveRun(db, &Run{Key: "same", Dataset: "a.csv"})
	require.NoError(t, err)
	_, err = SaveRun(db, &Run{Key: "same", Dataset: "b.csv"})
	assert.Error(t, err)
}

func TestSaveRun_Nil(t *testing.T) {
	db := setupTestDB(t)
	_, err := SaveRun(db, nil)
	assert.Error(t, err)
}

func TestListRuns_InvalidLimit(t *testing.T) {
	db := setupTestDB(t)
	_, err := ListRuns(db, 0)
	assert.Error(t, err)
}

func TestSavePredictionsAndState(t *testing.T) {
	db := setupTestDB(t)

	id, err := SaveRun(db, &Run{Dataset: "a.csv", Threshold: 0.9})
	require.NoError(t, err)

	err = SavePredictions(db, id, []*PredictionRecord{
		{Source: "text", Text: "password123", Probability: 0.97, Human: true},
		{Source: "random", Text: "qzkxvbw", Probability: 0.1, Human: false},
		nil,
		{Source: "random", Text: "plmoknij", Probability: 0.2, Human: false},
	})
	require.NoError(t, err)

	require.NoError(t, SavePredictions(db, id, nil))

	state, err := GetDataState(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), state["run"])
	assert.Equal(t, int64(3), state["prediction"])
	assert.Equal(t, int64(1), state["human"])
	assert.Equal(t, int64(2), state["machine"])
}
