package records

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no record exists at the requested position.
var ErrNotFound = errors.New("record not found")

// PersistError wraps a failed store write. Batch processing treats it as
// fatal: once a write fails, further progress would be silently lost.
type PersistError struct {
	Op  string
	Err error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

// Store is the contract the pipeline needs from a record backend: ordered,
// indexable, field-named rows. The durable representation is the backend's
// concern; callers run the duplicate gate before Append.
type Store interface {
	// List returns every record in position order.
	List(ctx context.Context) ([]*Record, error)
	// Get fetches the record at a 1-based position.
	Get(ctx context.Context, position int64) (*Record, error)
	// Set overwrites the record at rec.Position.
	Set(ctx context.Context, rec *Record) error
	// Append adds a record at the next position and returns that position.
	Append(ctx context.Context, rec *Record) (int64, error)
	// Delete removes the record at a position; later records shift down one,
	// matching tabular semantics.
	Delete(ctx context.Context, position int64) error
	// Persist flushes any buffered state to durable storage.
	Persist(ctx context.Context) error
	Close() error
}
