package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"slices"

	"github.com/mchmarny/pwdetect/pkg/features"
	"github.com/pkg/errors"
)

// Table is a loaded dataset with columns in feature order.
type Table struct {
	Names []string
	X     [][]float64
	Y     []float64
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Y)
}

// Positives returns the number of rows labeled human-created.
func (t *Table) Positives() int {
	n := 0
	for _, y := range t.Y {
		if y > 0 {
			n++
		}
	}
	return n
}

// Append adds the rows of o. Both tables must share the same columns.
func (t *Table) Append(o *Table) error {
	if !slices.Equal(t.Names, o.Names) {
		return errors.Wrap(ErrMissingColumn, "tables have different columns")
	}
	t.X = append(t.X, o.X...)
	t.Y = append(t.Y, o.Y...)
	return nil
}

// Load parses a labeled CSV. Columns are matched by header name, so their
// order in the file does not matter; extra columns are ignored.
func Load(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "error reading header")
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[h] = i
	}

	names := features.Names()
	cols := make([]int, len(names))
	for i, n := range names {
		p, ok := pos[n]
		if !ok {
			return nil, errors.Wrapf(ErrMissingColumn, "feature column: %s", n)
		}
		cols[i] = p
	}
	labelCol, ok := pos[LabelColumn]
	if !ok {
		return nil, errors.Wrapf(ErrMissingColumn, "label column: %s", LabelColumn)
	}

	t := &Table{Names: names}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "error reading line %d", line)
		}
		if len(rec) != len(header) {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: %d fields, want %d", line, len(rec), len(header))
		}

		row := make([]float64, len(cols))
		for i, c := range cols {
			v, err := features.ParseValue(rec[c])
			if err != nil {
				return nil, errors.Wrapf(ErrMalformedRow, "line %d, column %s: %q", line, names[i], rec[c])
			}
			row[i] = v
		}

		y, err := features.ParseValue(rec[labelCol])
		if err != nil || (y != 0 && y != 1) {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d, label: %q", line, rec[labelCol])
		}

		t.X = append(t.X, row)
		t.Y = append(t.Y, y)
	}
	return t, nil
}

// LoadFile loads a labeled CSV from path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening dataset: %s", path)
	}
	defer f.Close()

	t, err := Load(f)
	if err != nil {
		return nil, errors.Wrapf(err, "error loading dataset: %s", path)
	}
	return t, nil
}

// LoadFiles loads and concatenates several labeled CSVs.
func LoadFiles(paths ...string) (*Table, error) {
	if len(paths) == 0 {
		return nil, errors.New("at least one dataset path required")
	}

	var all *Table
	for _, p := range paths {
		t, err := LoadFile(p)
		if err != nil {
			return nil, err
		}
		if all == nil {
			all = t
			continue
		}
		if err := all.Append(t); err != nil {
			return nil, errors.Wrapf(err, "error merging dataset: %s", p)
		}
	}
	return all, nil
}
