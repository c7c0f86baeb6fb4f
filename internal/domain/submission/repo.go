package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an operation targets an id the store does
// not hold. It is distinct from *PersistenceError so callers can tell
// "already deleted" apart from "store unavailable".
var ErrNotFound = errors.New("submission not found")

// PersistenceError wraps a store-level failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s submission: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Repository is the persistence gateway for submissions. Create assigns
// id and created_at; client-supplied values for either are ignored.
// Update never changes the stored id regardless of the patch. List
// returns submissions ordered by created_at descending, newest first.
type Repository interface {
	Create(ctx context.Context, sub *Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Submission, error)
	List(ctx context.Context) ([]*Submission, error)
	Update(ctx context.Context, sub *Submission) error
	Delete(ctx context.Context, id uuid.UUID) error
}
