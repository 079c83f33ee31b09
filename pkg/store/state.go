package store

import (
	"database/sql"

	"github.com/pkg/errors"
)

var (
	stateQueries = map[string]string{
		"run":        "SELECT COUNT(*) FROM run",
		"prediction": "SELECT COUNT(*) FROM prediction",
		"human":      "SELECT COUNT(*) FROM prediction WHERE human = 1",
		"machine":    "SELECT COUNT(*) FROM prediction WHERE human = 0",
	}
)

// GetDataState returns the row counts of the database.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, v := range stateQueries {
		var count int64
		if err := db.QueryRow(v).Scan(&count); err != nil {
			return nil, errors.Wrapf(err, "error scanning %s count", k)
		}
		state[k] = count
	}

	return state, nil
}
