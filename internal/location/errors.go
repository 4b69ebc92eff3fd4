package location

import "errors"

var (
	// ErrLocationNotFound is returned when a code has no row.
	ErrLocationNotFound = errors.New("location not found")

	// ErrInvalidCode is returned when a code is not of the form RW-SEGMENT[-SEGMENT...].
	ErrInvalidCode = errors.New("invalid location code")

	// ErrInvalidIdentifier is returned for a table name that is not a bare SQL identifier.
	ErrInvalidIdentifier = errors.New("invalid sql identifier")

	// ErrInvalidListOptions is returned for an unknown sort key or a negative
	// offset or limit.
	ErrInvalidListOptions = errors.New("invalid list options")
)
