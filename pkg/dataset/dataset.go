// Package dataset builds and loads the labeled CSV tables the classifier is
// trained on.
package dataset

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/pwdetect/pkg/features"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

const (
	// LabelColumn is the name of the label column.
	LabelColumn = "human_created"

	fileMode     = 0644
	maxLineBytes = 1024 * 1024
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("dataset: required column missing")
	// ErrMalformedRow is returned for rows that cannot be parsed.
	ErrMalformedRow = errors.New("dataset: malformed row")
)

// Header returns the dataset header: feature names followed by the label.
func Header() []string {
	return append(features.Names(), LabelColumn)
}

// ReadPasswords reads one password per line. Input is decoded as Latin-1 so
// no byte sequence is rejected. Surrounding whitespace is stripped.
func ReadPasswords(r io.Reader) ([]string, error) {
	s := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	s.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineBytes)
	s.Split(scanLines)

	var list []string
	for s.Scan() {
		list = append(list, strings.TrimSpace(s.Text()))
	}
	if err := s.Err(); err != nil {
		return nil, errors.Wrap(err, "error scanning passwords")
	}
	return list, nil
}

// scanLines is bufio.ScanLines that also ends a line at a lone "\r", so
// "\n", "\r\n" and "\r" line endings all split.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// a "\r" at the end of the buffer may be followed by "\n"
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ReadPasswordsFile reads passwords from the file at path.
func ReadPasswordsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error opening password file: %s", path)
	}
	defer f.Close()
	return ReadPasswords(f)
}

// Write extracts features for every password and writes a labeled CSV with
// a header row. Rows keep input order and all share the given label.
func Write(ctx context.Context, w io.Writer, passwords []string, humanCreated bool) error {
	vectors, err := features.ExtractAll(ctx, passwords)
	if err != nil {
		return errors.Wrap(err, "error extracting features")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return errors.Wrap(err, "error writing header")
	}

	label := features.FormatFlag(humanCreated)
	for _, v := range vectors {
		if err := cw.Write(append(v.Strings(), label)); err != nil {
			return errors.Wrap(err, "error writing row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, "error flushing csv")
	}
	return nil
}

// BuildFile reads passwords from inPath and writes the labeled dataset to
// outPath, replacing any existing file. Returns the number of rows written.
func BuildFile(ctx context.Context, inPath, outPath string, humanCreated bool) (n int, retErr error) {
	list, err := ReadPasswordsFile(inPath)
	if err != nil {
		return 0, err
	}
	slog.Debug("passwords read", "path", inPath, "count", len(list))

	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, fileMode)
	if err != nil {
		return 0, errors.Wrapf(err, "error creating dataset file: %s", outPath)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && retErr == nil {
			retErr = errors.Wrap(cerr, "error closing dataset file")
		}
	}()

	if err := Write(ctx, out, list, humanCreated); err != nil {
		return 0, err
	}
	return len(list), nil
}
