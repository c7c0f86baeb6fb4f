package submission

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGRepository implements Repository against PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository creates a PostgreSQL-backed repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const submissionColumns = `id, created_at, patient_name, dob, age, sex,
attending_physician, healthcare_notes, length_of_stay, medication_review,
monitoring_hours, patient_diet, clinical_pathways, prepared_by_signature`

func (r *PGRepository) Create(ctx context.Context, sub *Submission) error {
	// id and created_at come back from the store; anything the client
	// put in those fields is ignored.
	err := r.pool.QueryRow(ctx, `
		INSERT INTO submissions (
			patient_name, dob, age, sex, attending_physician,
			healthcare_notes, length_of_stay, medication_review,
			monitoring_hours, patient_diet, clinical_pathways,
			prepared_by_signature
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`,
		sub.PatientName, sub.DOB.Time, sub.Age, string(sub.Sex),
		sub.AttendingPhysician, sub.HealthcareNotes, sub.LengthOfStay,
		sub.MedicationReview, sub.MonitoringHours, sub.PatientDiet,
		sub.ClinicalPathways, sub.PreparedBySignature,
	).Scan(&sub.ID, &sub.CreatedAt)
	if err != nil {
		return &PersistenceError{Op: "create", Err: err}
	}
	return nil
}

func (r *PGRepository) GetByID(ctx context.Context, id uuid.UUID) (*Submission, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &PersistenceError{Op: "get", Err: err}
	}
	return sub, nil
}

func (r *PGRepository) List(ctx context.Context) ([]*Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	defer rows.Close()

	var subs []*Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, &PersistenceError{Op: "list", Err: err}
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list", Err: err}
	}
	return subs, nil
}

func (r *PGRepository) Update(ctx context.Context, sub *Submission) error {
	// The WHERE clause is the only place the id appears: the stored id
	// cannot be overwritten by the patch.
	err := r.pool.QueryRow(ctx, `
		UPDATE submissions SET
			patient_name = $2, dob = $3, age = $4, sex = $5,
			attending_physician = $6, healthcare_notes = $7,
			length_of_stay = $8, medication_review = $9,
			monitoring_hours = $10, patient_diet = $11,
			clinical_pathways = $12, prepared_by_signature = $13
		WHERE id = $1
		RETURNING created_at`,
		sub.ID, sub.PatientName, sub.DOB.Time, sub.Age, string(sub.Sex),
		sub.AttendingPhysician, sub.HealthcareNotes, sub.LengthOfStay,
		sub.MedicationReview, sub.MonitoringHours, sub.PatientDiet,
		sub.ClinicalPathways, sub.PreparedBySignature,
	).Scan(&sub.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return &PersistenceError{Op: "update", Err: err}
	}
	return nil
}

func (r *PGRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return &PersistenceError{Op: "delete", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSubmission(row pgx.Row) (*Submission, error) {
	var sub Submission
	var dob time.Time
	var sex string
	err := row.Scan(
		&sub.ID, &sub.CreatedAt, &sub.PatientName, &dob, &sub.Age, &sex,
		&sub.AttendingPhysician, &sub.HealthcareNotes, &sub.LengthOfStay,
		&sub.MedicationReview, &sub.MonitoringHours, &sub.PatientDiet,
		&sub.ClinicalPathways, &sub.PreparedBySignature,
	)
	if err != nil {
		return nil, err
	}
	sub.DOB = Date{dob}
	sub.Sex = Sex(sex)
	return &sub, nil
}
