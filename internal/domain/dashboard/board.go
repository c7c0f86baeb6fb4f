package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/epaos/epaos/internal/domain/submission"
)

// LoadState distinguishes "not yet known" and "failed" from a
// successfully loaded (possibly empty) collection.
type LoadState int

const (
	StateLoading LoadState = iota
	StateFailed
	StateReady
)

// Modal identifies which record modal is open. The three modals share
// one slot: opening any of them closes the others.
type Modal int

const (
	ModalNone Modal = iota
	ModalView
	ModalEdit
	ModalDelete
)

// Board is the dashboard state container. The collection is fetched
// once from the gateway; the filtered view is derived state, recomputed
// whenever the collection or the filter changes.
type Board struct {
	mu         sync.Mutex
	repo       submission.Repository
	log        zerolog.Logger
	state      LoadState
	loadErr    error
	collection []*submission.Submission
	filter     Filter
	view       []*submission.Submission
	modal      Modal
	activeID   uuid.UUID
}

func NewBoard(repo submission.Repository, log zerolog.Logger) *Board {
	return &Board{repo: repo, log: log, state: StateLoading}
}

// Load fetches the full collection. The store returns it ordered by
// created_at descending; that ordering is trusted, not re-sorted.
func (b *Board) Load(ctx context.Context) error {
	subs, err := b.repo.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.state = StateFailed
		b.loadErr = err
		b.log.Error().Err(err).Msg("failed to load submissions")
		return err
	}
	b.state = StateReady
	b.loadErr = nil
	b.collection = subs
	b.recompute()
	return nil
}

// State reports the load state; Err returns the load failure, if any.
func (b *Board) State() LoadState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Board) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loadErr
}

// SetNameFilter updates the name predicate and recomputes the view.
func (b *Board) SetNameFilter(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Name = name
	b.recompute()
}

// SetDateRange updates the date predicate and recomputes the view. A
// nil bound leaves that side unconstrained.
func (b *Board) SetDateRange(start, end *time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.filter.Start = start
	b.filter.End = end
	b.recompute()
}

// ActiveFilter returns a copy of the current filter.
func (b *Board) ActiveFilter() Filter {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filter
}

// View returns the current filtered view.
func (b *Board) View() []*submission.Submission {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*submission.Submission, len(b.view))
	copy(out, b.view)
	return out
}

func (b *Board) recompute() {
	b.view = b.filter.Apply(b.collection)
}

// OpenView, OpenEdit and OpenDelete claim the single modal slot for one
// record. Whatever modal was open before is implicitly closed.
func (b *Board) OpenView(id uuid.UUID) { b.openModal(ModalView, id) }

func (b *Board) OpenEdit(id uuid.UUID) { b.openModal(ModalEdit, id) }

func (b *Board) OpenDelete(id uuid.UUID) { b.openModal(ModalDelete, id) }

func (b *Board) openModal(m Modal, id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modal = m
	b.activeID = id
}

// CloseModal releases the modal slot.
func (b *Board) CloseModal() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modal = ModalNone
	b.activeID = uuid.Nil
}

// ActiveModal reports which modal is open and for which record.
func (b *Board) ActiveModal() (Modal, uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.modal, b.activeID
}

// ApplyUpdate replaces the edited record in the collection after a
// successful edit-mode save and closes the edit modal.
func (b *Board) ApplyUpdate(updated *submission.Submission) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.collection {
		if sub.ID == updated.ID {
			b.collection[i] = updated
			break
		}
	}
	b.recompute()
	b.modal = ModalNone
	b.activeID = uuid.Nil
}

// DeleteActive deletes the record the delete modal is confirming.
// ErrNotFound propagates so the caller can report "already deleted"
// instead of a store failure; the record is dropped from the collection
// either way it is gone from the store.
func (b *Board) DeleteActive(ctx context.Context) error {
	b.mu.Lock()
	if b.modal != ModalDelete || b.activeID == uuid.Nil {
		b.mu.Unlock()
		return errors.New("no record is confirmed for deletion")
	}
	id := b.activeID
	b.mu.Unlock()

	if err := b.repo.Delete(ctx, id); err != nil {
		if !errors.Is(err, submission.ErrNotFound) {
			return err
		}
		b.removeAndClose(id)
		return err
	}
	b.removeAndClose(id)
	return nil
}

func (b *Board) removeAndClose(id uuid.UUID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, sub := range b.collection {
		if sub.ID == id {
			b.collection = append(b.collection[:i], b.collection[i+1:]...)
			break
		}
	}
	b.recompute()
	b.modal = ModalNone
	b.activeID = uuid.Nil
}
