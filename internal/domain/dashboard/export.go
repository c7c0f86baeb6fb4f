package dashboard

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/epaos/epaos/internal/domain/submission"
)

// ErrNoData is returned when an export is requested against an empty
// filtered view. No file is produced in that case.
var ErrNoData = errors.New("no data to export")

// ExportHeader is the fixed column set, in its fixed order.
var ExportHeader = []string{
	"Patient Name",
	"Date of Birth",
	"Age",
	"Sex",
	"Attending Physician",
	"Submitted At",
	"Length of Stay",
	"Monitoring Hours",
	"Diet",
	"Healthcare Notes",
	"Medication Review",
	"Clinical Pathways",
	"Signed",
}

const exportTimeLayout = "2006-01-02 15:04:05"

// exportRow projects one submission onto the export columns. The
// signature is flattened to Yes/No, never the image payload; pathways
// are joined in catalog order.
func exportRow(sub *submission.Submission) []string {
	signed := "No"
	if sub.Signed() {
		signed = "Yes"
	}
	return []string{
		sub.PatientName,
		sub.DOB.Format("2006-01-02"),
		intValue(sub.Age),
		string(sub.Sex),
		sub.AttendingPhysician,
		sub.CreatedAt.Format(exportTimeLayout),
		intValue(sub.LengthOfStay),
		intValue(sub.MonitoringHours),
		strValue(sub.PatientDiet),
		strValue(sub.HealthcareNotes),
		strValue(sub.MedicationReview),
		strings.Join(submission.NormalizePathways(sub.ClinicalPathways), ", "),
		signed,
	}
}

// WriteCSV writes the filtered view as CSV. Quoting and escaping are
// the csv package's concern; the output round-trips through any RFC
// 4180 reader.
func WriteCSV(w io.Writer, view []*submission.Submission) error {
	if len(view) == 0 {
		return ErrNoData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, sub := range view {
		if err := cw.Write(exportRow(sub)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func intValue(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
