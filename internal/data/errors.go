package data

import (
	"errors"
	"fmt"
)

var (
	// ErrReadOptions is returned when a path has no extension the pipeline can read.
	ErrReadOptions = errors.New("could not set read options. Does this file have a valid extension?")

	// ErrNoQuery is returned by LoadWithQuery when the filters carry no query.
	ErrNoQuery = errors.New("no query provided")

	// ErrNoBatches is returned when a scan or query produced no record batches.
	ErrNoBatches = errors.New("no batches to concatenate")

	// ErrSchemaMismatch is returned when record batches disagree on their schema.
	ErrSchemaMismatch = errors.New("record batches have different schemas")

	// ErrColumnNotFound is matched by ColumnNotFoundError.
	ErrColumnNotFound = errors.New("column not found")
)

// ColumnNotFoundError is returned when a sort names a column the dataset doesn't have.
type ColumnNotFoundError struct {
	Column string
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("unable to sort column '%s': %v", e.Column, ErrColumnNotFound)
}

// Is makes errors.Is(err, ErrColumnNotFound) match.
func (e *ColumnNotFoundError) Is(target error) bool {
	return target == ErrColumnNotFound
}
