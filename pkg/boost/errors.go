package boost

import "errors"

var (
	// ErrEmptyTrainingSet indicates no rows were supplied.
	ErrEmptyTrainingSet = errors.New("boost: training set is empty")
	// ErrDimensionMismatch indicates rows, labels and names disagree in size.
	ErrDimensionMismatch = errors.New("boost: dimension mismatch")
	// ErrInvalidLabel indicates a label other than 0 or 1.
	ErrInvalidLabel = errors.New("boost: labels must be 0 or 1")
	// ErrInvalidParams indicates out-of-range training parameters.
	ErrInvalidParams = errors.New("boost: invalid parameters")
	// ErrInvalidModel indicates a structurally broken model.
	ErrInvalidModel = errors.New("boost: invalid model")
)
