package submission

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sex is the patient sex enumeration.
type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
	SexOther  Sex = "Other"
)

// ValidSex reports whether s is one of the enumerated values.
func ValidSex(s Sex) bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

// ClinicalPathwayCatalog is the fixed catalog of care-protocol tags a
// submission may activate. Rendering and export order follow this
// catalog regardless of the order pathways were selected in.
var ClinicalPathwayCatalog = []string{
	"Sepsis Bundle",
	"Acute Stroke Protocol",
	"Chest Pain Evaluation",
	"Community-Acquired Pneumonia",
	"Heart Failure Management",
	"COPD Exacerbation",
	"Hip Fracture Care",
	"Diabetic Ketoacidosis",
	"Post-Operative Recovery",
	"Palliative Care Referral",
	"Fall Prevention",
}

var pathwayIndex = func() map[string]int {
	m := make(map[string]int, len(ClinicalPathwayCatalog))
	for i, p := range ClinicalPathwayCatalog {
		m[p] = i
	}
	return m
}()

// ValidPathway reports whether p is in the catalog.
func ValidPathway(p string) bool {
	_, ok := pathwayIndex[p]
	return ok
}

// NormalizePathways deduplicates the selection and orders it by catalog
// position. Values outside the catalog are dropped; validation reports
// them before normalization ever runs.
func NormalizePathways(selected []string) []string {
	if len(selected) == 0 {
		return nil
	}
	chosen := make(map[string]bool, len(selected))
	for _, p := range selected {
		if ValidPathway(p) {
			chosen[p] = true
		}
	}
	var out []string
	for _, p := range ClinicalPathwayCatalog {
		if chosen[p] {
			out = append(out, p)
		}
	}
	return out
}

// Date is a calendar date marshalled as YYYY-MM-DD. Incoming values may
// also carry a full RFC 3339 timestamp, which is truncated to its date.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD or RFC 3339 value.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = parsed.Time
	return nil
}

// Submission maps to the submissions table. id and created_at are
// store-assigned and immutable; everything else is client-supplied.
type Submission struct {
	ID                  uuid.UUID `db:"id" json:"id"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
	PatientName         string    `db:"patient_name" json:"patient_name"`
	DOB                 Date      `db:"dob" json:"dob"`
	Age                 *int      `db:"age" json:"age,omitempty"`
	Sex                 Sex       `db:"sex" json:"sex"`
	AttendingPhysician  string    `db:"attending_physician" json:"attending_physician"`
	HealthcareNotes     *string   `db:"healthcare_notes" json:"healthcare_notes,omitempty"`
	LengthOfStay        *int      `db:"length_of_stay" json:"length_of_stay,omitempty"`
	MedicationReview    *string   `db:"medication_review" json:"medication_review,omitempty"`
	MonitoringHours     *int      `db:"monitoring_hours" json:"monitoring_hours,omitempty"`
	PatientDiet         *string   `db:"patient_diet" json:"patient_diet,omitempty"`
	ClinicalPathways    []string  `db:"clinical_pathways" json:"clinical_pathways,omitempty"`
	PreparedBySignature *string   `db:"prepared_by_signature" json:"prepared_by_signature,omitempty"`
}

// Signed reports whether a signature was captured for this submission.
func (s *Submission) Signed() bool {
	return s.PreparedBySignature != nil && *s.PreparedBySignature != ""
}

// Clone returns a deep copy. Repositories hand out clones so callers can
// never mutate stored state through a returned pointer.
func (s *Submission) Clone() *Submission {
	out := *s
	out.Age = cloneIntPtr(s.Age)
	out.HealthcareNotes = cloneStrPtr(s.HealthcareNotes)
	out.LengthOfStay = cloneIntPtr(s.LengthOfStay)
	out.MedicationReview = cloneStrPtr(s.MedicationReview)
	out.MonitoringHours = cloneIntPtr(s.MonitoringHours)
	out.PatientDiet = cloneStrPtr(s.PatientDiet)
	out.PreparedBySignature = cloneStrPtr(s.PreparedBySignature)
	if s.ClinicalPathways != nil {
		out.ClinicalPathways = append([]string(nil), s.ClinicalPathways...)
	}
	return &out
}

func cloneStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
