package submission

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service orchestrates validation and persistence of submissions.
type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository, log zerolog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create validates the candidate and, only if it passes, asks the store
// to persist it. On success the returned record carries the
// store-assigned id and created_at.
func (s *Service) Create(ctx context.Context, sub *Submission) (*Submission, error) {
	if res := Validate(sub); !res.Valid {
		return nil, &ValidationError{Fields: res.FieldErrors}
	}

	created := sub.Clone()
	created.ID = uuid.Nil
	created.ClinicalPathways = NormalizePathways(created.ClinicalPathways)
	if err := s.repo.Create(ctx, created); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("id", created.ID.String()).
		Str("patient_name", created.PatientName).
		Bool("signed", created.Signed()).
		Msg("submission created")
	return created, nil
}

// Get returns one submission by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Submission, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns all submissions, newest first.
func (s *Service) List(ctx context.Context) ([]*Submission, error) {
	return s.repo.List(ctx)
}

// Update validates and replaces every field of the stored record except
// id and created_at, which remain store-assigned.
func (s *Service) Update(ctx context.Context, sub *Submission) (*Submission, error) {
	if sub.ID == uuid.Nil {
		return nil, fmt.Errorf("submission id is required")
	}
	if res := Validate(sub); !res.Valid {
		return nil, &ValidationError{Fields: res.FieldErrors}
	}

	updated := sub.Clone()
	updated.ClinicalPathways = NormalizePathways(updated.ClinicalPathways)
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}

	s.log.Info().Str("id", updated.ID.String()).Msg("submission updated")
	return updated, nil
}

// Delete permanently removes a submission. Deleting an unknown id
// returns ErrNotFound.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("id", id.String()).Msg("submission deleted")
	return nil
}
