package dashboard

import (
	"strings"
	"time"

	"github.com/epaos/epaos/internal/domain/submission"
)

// Filter is the dashboard's active query: a case-insensitive substring
// match on patient_name and an inclusive calendar-date range on
// created_at. Zero values are unconstrained.
type Filter struct {
	Name  string
	Start *time.Time // calendar date; matches from 00:00:00 of that day
	End   *time.Time // calendar date; matches through 23:59:59.999… of that day
}

// Matches reports whether the record satisfies every active predicate.
// The predicates are independent and AND-combined.
func (f Filter) Matches(sub *submission.Submission) bool {
	if f.Name != "" &&
		!strings.Contains(strings.ToLower(sub.PatientName), strings.ToLower(f.Name)) {
		return false
	}
	if f.Start != nil {
		start := startOfDay(*f.Start)
		if sub.CreatedAt.Before(start) {
			return false
		}
	}
	if f.End != nil {
		// Inclusive through the last instant of the end day: anything
		// from the following midnight on is out.
		next := startOfDay(*f.End).Add(24 * time.Hour)
		if !sub.CreatedAt.Before(next) {
			return false
		}
	}
	return true
}

// Apply produces the filtered view. The source collection is never
// mutated or reordered; the view is a fresh slice.
func (f Filter) Apply(collection []*submission.Submission) []*submission.Submission {
	view := make([]*submission.Submission, 0, len(collection))
	for _, sub := range collection {
		if f.Matches(sub) {
			view = append(view, sub)
		}
	}
	return view
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
