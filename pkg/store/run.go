package store

import (
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Run is a single recorded training run.
type Run struct {
	ID               int64     `json:"id" yaml:"id"`
	Key              string    `json:"key" yaml:"key"`
	CreatedAt        time.Time `json:"created_at" yaml:"created_at"`
	Dataset          string    `json:"dataset" yaml:"dataset"`
	TrainRows        int       `json:"train_rows" yaml:"train_rows"`
	TestRows         int       `json:"test_rows" yaml:"test_rows"`
	Accuracy         float64   `json:"accuracy" yaml:"accuracy"`
	OptimalThreshold float64   `json:"optimal_threshold" yaml:"optimal_threshold"`
	Threshold        float64   `json:"threshold" yaml:"threshold"`
	ModelPath        string    `json:"model_path" yaml:"model_path"`
}

// PredictionRecord is a scored text attached to a run.
type PredictionRecord struct {
	Source      string  `json:"source" yaml:"source"`
	Text        string  `json:"text" yaml:"text"`
	Probability float64 `json:"probability" yaml:"probability"`
	Human       bool    `json:"human" yaml:"human"`
}

var (
	insertRun = `INSERT INTO run (
			run_key, created_at, dataset, train_rows, test_rows, accuracy,
			optimal_threshold, threshold, model_path
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertPrediction = `INSERT INTO prediction (run_id, source, text, probability, human)
		VALUES (?, ?, ?, ?, ?)`

	selectRuns = `SELECT id, run_key, created_at, dataset, train_rows, test_rows, accuracy,
			optimal_threshold, threshold, model_path
		FROM run
		ORDER BY created_at DESC, id DESC
		LIMIT ?`
)

// SaveRun inserts r and returns its ID. An empty Key gets a new UUID and a
// zero CreatedAt is set to now. A NaN optimal threshold is stored as NULL.
func SaveRun(db *sql.DB, r *Run) (int64, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}
	if r == nil {
		return 0, errors.New("run is required")
	}

	if r.Key == "" {
		r.Key = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	var opt sql.NullFloat64
	if !math.IsNaN(r.OptimalThreshold) && !math.IsInf(r.OptimalThreshold, 0) {
		opt = sql.NullFloat64{Float64: r.OptimalThreshold, Valid: true}
	}

	res, err := db.Exec(insertRun, r.Key, r.CreatedAt.UnixNano(), r.Dataset, r.TrainRows,
		r.TestRows, r.Accuracy, opt, r.Threshold, r.ModelPath)
	if err != nil {
		return 0, errors.Wrap(err, "failed to insert run")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get run id")
	}
	r.ID = id

	return id, nil
}

// SavePredictions inserts all records for runID in a single transaction.
func SavePredictions(db *sql.DB, runID int64, list []*PredictionRecord) error {
	if db == nil {
		return errDBNotInitialized
	}
	if len(list) == 0 {
		return nil
	}

	stmt, err := db.Prepare(insertPrediction)
	if err != nil {
		return errors.Wrapf(err, "failed to prepare batch statement")
	}
	defer stmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return errors.Wrapf(err, "failed to begin transaction")
	}

	for _, p := range list {
		if p == nil {
			continue
		}
		if _, err = tx.Stmt(stmt).Exec(runID, p.Source, p.Text, p.Probability, p.Human); err != nil {
			if rErr := tx.Rollback(); rErr != nil {
				return errors.Wrapf(rErr, "failed to rollback transaction")
			}
			return errors.Wrapf(err, "failed to execute batch statement")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit transaction")
	}

	return nil
}

// ListRuns returns up to limit runs, newest first.
func ListRuns(db *sql.DB, limit int) ([]*Run, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if limit <= 0 {
		return nil, errors.Errorf("invalid limit: %d", limit)
	}

	rows, err := db.Query(selectRuns, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to execute run select statement")
	}
	defer rows.Close()

	list := make([]*Run, 0)
	for rows.Next() {
		r := &Run{}
		var created int64
		var opt sql.NullFloat64
		if err := rows.Scan(&r.ID, &r.Key, &created, &r.Dataset, &r.TrainRows, &r.TestRows,
			&r.Accuracy, &opt, &r.Threshold, &r.ModelPath); err != nil {
			return nil, errors.Wrap(err, "failed to scan run row")
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		r.OptimalThreshold = math.NaN()
		if opt.Valid {
			r.OptimalThreshold = opt.Float64
		}
		list = append(list, r)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate run rows")
	}

	return list, nil
}
