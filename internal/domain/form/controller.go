package form

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/epaos/epaos/internal/domain/signature"
	"github.com/epaos/epaos/internal/domain/submission"
)

// Mode distinguishes a fresh admission form from an edit of an
// existing record.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// ErrSubmitPending is returned when Submit is called while a previous
// create/update attempt is still in flight. One attempt per form
// instance at a time; the user resubmits explicitly, there is no queue
// and no automatic retry.
var ErrSubmitPending = errors.New("a submission is already in flight")

// ErrClosed is returned when the form was closed before an in-flight
// save resolved. The save's effect on the form is discarded.
var ErrClosed = errors.New("form closed")

// Controller aggregates field edits and the signature capture into one
// candidate submission, validates it, and hands it to the persistence
// gateway. It owns the draft; the signature surface stays independent
// and only its encoded output ever enters the draft.
type Controller struct {
	mu       sync.Mutex
	mode     Mode
	svc      *submission.Service
	surface  *signature.Surface
	draft    submission.Submission
	editID   uuid.UUID
	inFlight bool
	epoch    int
}

// NewCreateController builds a fresh admission form.
func NewCreateController(svc *submission.Service) *Controller {
	return &Controller{
		mode:    ModeCreate,
		svc:     svc,
		surface: signature.NewSurface(signature.DefaultWidth, signature.DefaultHeight),
	}
}

// NewEditController builds a form pre-populated from an existing
// record. The record's id is carried through unchanged; it is not an
// editable field.
func NewEditController(svc *submission.Service, existing *submission.Submission) *Controller {
	return &Controller{
		mode:    ModeEdit,
		svc:     svc,
		surface: signature.NewSurface(signature.DefaultWidth, signature.DefaultHeight),
		draft:   *existing.Clone(),
		editID:  existing.ID,
	}
}

// Mode reports whether the form creates or edits.
func (f *Controller) Mode() Mode { return f.mode }

// Surface exposes the signature surface for drawing input.
func (f *Controller) Surface() *signature.Surface { return f.surface }

// Draft returns a copy of the in-progress candidate.
func (f *Controller) Draft() *submission.Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft.Clone()
}

// EditDraft applies a field edit to the draft. The id is restored
// afterwards: edits cannot retarget the record.
func (f *Controller) EditDraft(edit func(*submission.Submission)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	edit(&f.draft)
	f.draft.ID = f.editID
}

// AttachSignature captures the surface and attaches the encoding to
// the draft. Saving an empty surface fails with SignatureRequiredError
// and leaves the draft untouched.
func (f *Controller) AttachSignature() error {
	encoded, err := f.surface.Save()
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.PreparedBySignature = &encoded
	return nil
}

// ClearSignature empties the surface and discards the attached
// encoding.
func (f *Controller) ClearSignature() {
	f.surface.Clear()
	f.mu.Lock()
	defer f.mu.Unlock()
	f.draft.PreparedBySignature = nil
}

// Submit validates the candidate and, if it passes, performs the
// create or update. Validation failure never reaches the gateway and
// reports every offending field at once. On persistence failure the
// draft is preserved unchanged for an explicit user retry. On success
// a create-mode form resets to its initial state; an edit-mode form
// returns the updated record for the dashboard to apply.
func (f *Controller) Submit(ctx context.Context) (*submission.Submission, error) {
	f.mu.Lock()
	if f.inFlight {
		f.mu.Unlock()
		return nil, ErrSubmitPending
	}
	f.inFlight = true
	epoch := f.epoch
	candidate := f.draft.Clone()
	mode := f.mode
	f.mu.Unlock()

	var saved *submission.Submission
	var err error
	if mode == ModeCreate {
		saved, err = f.svc.Create(ctx, candidate)
	} else {
		saved, err = f.svc.Update(ctx, candidate)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight = false

	if f.epoch != epoch {
		// The form was closed while the save was in flight. Whatever
		// happened at the store is not applied and not surfaced.
		return nil, ErrClosed
	}
	if err != nil {
		return nil, err
	}
	if mode == ModeCreate {
		f.draft = submission.Submission{}
		f.surface.Clear()
	}
	return saved, nil
}

// Close abandons the form. An in-flight save, if any, resolves into
// the void.
func (f *Controller) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.epoch++
}
