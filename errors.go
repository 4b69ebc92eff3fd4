package rwanda

import "errors"

var (
	// ErrInvalidDataset is returned when a dataset file cannot be parsed
	// into a well-formed hierarchy.
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrUnknownLevel is returned when a level name is not recognised.
	ErrUnknownLevel = errors.New("unknown administrative level")
)
