package form

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/epaos/epaos/internal/domain/signature"
	"github.com/epaos/epaos/internal/domain/submission"
)

// gateRepo wraps the memory repository and blocks Create until released,
// to hold a submit in flight.
type gateRepo struct {
	*submission.MemoryRepository
	gate chan struct{}
	fail error
}

func (r *gateRepo) Create(ctx context.Context, sub *submission.Submission) error {
	if r.gate != nil {
		<-r.gate
	}
	if r.fail != nil {
		return r.fail
	}
	return r.MemoryRepository.Create(ctx, sub)
}

func fillRequired(f *Controller) {
	f.EditDraft(func(s *submission.Submission) {
		age := 34
		s.PatientName = "Jane Doe"
		s.DOB = submission.NewDate(1990, time.January, 1)
		s.Age = &age
		s.Sex = submission.SexFemale
		s.AttendingPhysician = "Dr. Smith"
	})
}

func newCreateForm(repo submission.Repository) *Controller {
	return NewCreateController(submission.NewService(repo, zerolog.Nop()))
}

func TestController_CreateSubmitResetsForm(t *testing.T) {
	f := newCreateForm(submission.NewMemoryRepository())
	fillRequired(f)

	f.Surface().StrokeStart(10, 10)
	f.Surface().StrokeTo(80, 40)
	f.Surface().StrokeEnd()
	if err := f.AttachSignature(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID == uuid.Nil {
		t.Error("expected store-assigned id")
	}
	if !created.Signed() {
		t.Error("expected attached signature on created record")
	}

	// Create mode clears everything back to the initial state.
	draft := f.Draft()
	if draft.PatientName != "" || draft.PreparedBySignature != nil {
		t.Errorf("draft not reset after create: %+v", draft)
	}
	if f.Surface().State() != signature.StateEmpty {
		t.Errorf("surface not cleared after create: %v", f.Surface().State())
	}
}

func TestController_ValidationFailureSkipsGatewayAndKeepsDraft(t *testing.T) {
	repo := submission.NewMemoryRepository()
	f := newCreateForm(repo)
	f.EditDraft(func(s *submission.Submission) {
		s.PatientName = "Only Name"
	})

	_, err := f.Submit(context.Background())
	var vErr *submission.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.Fields) < 4 {
		t.Errorf("expected all missing fields reported at once, got %v", vErr.Fields)
	}

	subs, _ := repo.List(context.Background())
	if len(subs) != 0 {
		t.Error("gateway called despite validation failure")
	}
	if f.Draft().PatientName != "Only Name" {
		t.Error("draft lost on validation failure")
	}
}

func TestController_PersistenceFailurePreservesDraft(t *testing.T) {
	repo := &gateRepo{
		MemoryRepository: submission.NewMemoryRepository(),
		fail:             &submission.PersistenceError{Op: "create", Err: errors.New("store down")},
	}
	f := newCreateForm(repo)
	fillRequired(f)
	before := f.Draft()

	_, err := f.Submit(context.Background())
	var pErr *submission.PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}

	after := f.Draft()
	if after.PatientName != before.PatientName || after.AttendingPhysician != before.AttendingPhysician {
		t.Error("in-progress form state lost on persistence failure")
	}
}

func TestController_SingleFlightSubmit(t *testing.T) {
	repo := &gateRepo{
		MemoryRepository: submission.NewMemoryRepository(),
		gate:             make(chan struct{}),
	}
	f := newCreateForm(repo)
	fillRequired(f)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := f.Submit(context.Background()); err != nil {
			t.Errorf("first submit failed: %v", err)
		}
	}()

	// Wait for the first submit to reach the gateway.
	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		pending := f.inFlight
		f.mu.Unlock()
		if pending {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first submit never became pending")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrSubmitPending) {
		t.Errorf("re-entrant submit: expected ErrSubmitPending, got %v", err)
	}

	close(repo.gate)
	wg.Wait()

	subs, _ := repo.List(context.Background())
	if len(subs) != 1 {
		t.Errorf("expected exactly one insert, got %d", len(subs))
	}
}

func TestController_CloseDiscardsInFlightResult(t *testing.T) {
	repo := &gateRepo{
		MemoryRepository: submission.NewMemoryRepository(),
		gate:             make(chan struct{}),
	}
	f := newCreateForm(repo)
	fillRequired(f)

	results := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		results <- err
	}()

	deadline := time.After(2 * time.Second)
	for {
		f.mu.Lock()
		pending := f.inFlight
		f.mu.Unlock()
		if pending {
			break
		}
		select {
		case <-deadline:
			t.Fatal("submit never became pending")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	f.Close()
	close(repo.gate)

	if err := <-results; !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after closing mid-flight, got %v", err)
	}
	// The draft was not reset: the closed form's state is simply left
	// behind, never mutated by the late result.
	if f.Draft().PatientName != "Jane Doe" {
		t.Error("late result mutated closed form state")
	}
}

func TestController_EditModeCarriesIDThrough(t *testing.T) {
	repo := submission.NewMemoryRepository()
	svc := submission.NewService(repo, zerolog.Nop())

	age := 34
	created, err := svc.Create(context.Background(), &submission.Submission{
		PatientName:        "Jane Doe",
		DOB:                submission.NewDate(1990, time.January, 1),
		Age:                &age,
		Sex:                submission.SexFemale,
		AttendingPhysician: "Dr. Smith",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f := NewEditController(svc, created)
	f.EditDraft(func(s *submission.Submission) {
		s.PatientName = "Jane Q. Doe"
		s.ID = uuid.New() // an edit must not be able to retarget the record
	})

	updated, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("edit changed the record id: %s -> %s", created.ID, updated.ID)
	}
	if updated.PatientName != "Jane Q. Doe" {
		t.Errorf("patient_name = %q", updated.PatientName)
	}

	// Edit mode reports the result and does not reset the draft.
	if f.Draft().PatientName != "Jane Q. Doe" {
		t.Error("edit draft unexpectedly reset")
	}
}

func TestController_AttachSignatureRequiresStrokes(t *testing.T) {
	f := newCreateForm(submission.NewMemoryRepository())

	err := f.AttachSignature()
	var sigErr *signature.SignatureRequiredError
	if !errors.As(err, &sigErr) {
		t.Fatalf("expected SignatureRequiredError, got %v", err)
	}
	if f.Draft().PreparedBySignature != nil {
		t.Error("empty save attached a signature to the draft")
	}
}

func TestController_ClearSignatureDetaches(t *testing.T) {
	f := newCreateForm(submission.NewMemoryRepository())
	f.Surface().StrokeStart(5, 5)
	f.Surface().StrokeTo(50, 20)
	f.Surface().StrokeEnd()
	if err := f.AttachSignature(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Draft().PreparedBySignature == nil {
		t.Fatal("signature not attached")
	}

	f.ClearSignature()
	if f.Draft().PreparedBySignature != nil {
		t.Error("signature still attached after clear")
	}
	if !f.Surface().Empty() {
		t.Error("surface not emptied by clear")
	}
}
