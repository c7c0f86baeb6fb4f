package submission

import (
	"fmt"
	"sort"
	"strings"

	"github.com/epaos/epaos/internal/domain/signature"
)

// ValidationResult classifies a candidate submission. FieldErrors holds
// one message per offending field so the caller can surface all
// problems at once.
type ValidationResult struct {
	Valid       bool              `json:"valid"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// ValidationError carries a failed ValidationResult across the service
// boundary. It is always resolved before any store call is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		names = append(names, f)
	}
	sort.Strings(names)
	return "validation failed: " + strings.Join(names, ", ")
}

const (
	MinAge = 0
	MaxAge = 120
)

// fieldRule binds a field name to its validator. A rule returns "" when
// the field passes. The table is fixed at compile time; there is no
// runtime field registration.
type fieldRule struct {
	field string
	check func(*Submission) string
}

var fieldRules = []fieldRule{
	{"patient_name", func(s *Submission) string {
		if strings.TrimSpace(s.PatientName) == "" {
			return "Patient name is required"
		}
		return ""
	}},
	{"dob", func(s *Submission) string {
		if s.DOB.IsZero() {
			return "Date of birth is required"
		}
		return ""
	}},
	{"age", func(s *Submission) string {
		if s.Age == nil {
			return "Age is required"
		}
		if *s.Age < MinAge || *s.Age > MaxAge {
			return fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge)
		}
		return ""
	}},
	{"sex", func(s *Submission) string {
		if s.Sex == "" {
			return "Sex is required"
		}
		if !ValidSex(s.Sex) {
			return "Sex must be Male, Female or Other"
		}
		return ""
	}},
	{"attending_physician", func(s *Submission) string {
		if strings.TrimSpace(s.AttendingPhysician) == "" {
			return "Attending physician is required"
		}
		return ""
	}},
	{"length_of_stay", func(s *Submission) string {
		if s.LengthOfStay != nil && *s.LengthOfStay < 0 {
			return "Length of stay must not be negative"
		}
		return ""
	}},
	{"monitoring_hours", func(s *Submission) string {
		if s.MonitoringHours != nil && *s.MonitoringHours < 0 {
			return "Monitoring hours must not be negative"
		}
		return ""
	}},
	{"clinical_pathways", func(s *Submission) string {
		for _, p := range s.ClinicalPathways {
			if !ValidPathway(p) {
				return fmt.Sprintf("Unknown clinical pathway %q", p)
			}
		}
		return ""
	}},
	{"prepared_by_signature", func(s *Submission) string {
		if s.PreparedBySignature == nil || *s.PreparedBySignature == "" {
			return ""
		}
		if err := signature.ValidateDataURI(*s.PreparedBySignature); err != nil {
			return "Signature must be a non-empty PNG image"
		}
		return ""
	}},
}

// Validate classifies the candidate against the field table. It never
// mutates the candidate and never stops at the first failure.
func Validate(s *Submission) ValidationResult {
	errs := make(map[string]string)
	for _, rule := range fieldRules {
		if msg := rule.check(s); msg != "" {
			errs[rule.field] = msg
		}
	}
	if len(errs) == 0 {
		return ValidationResult{Valid: true}
	}
	return ValidationResult{Valid: false, FieldErrors: errs}
}
