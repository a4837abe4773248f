package entities

import "time"

// ReviewStatus is the human-review state of an audit record. Review fields are
// mutated only out-of-band, never by the validation path.
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewConfirmed ReviewStatus = "confirmed"
	ReviewRejected  ReviewStatus = "rejected"
)

// AuditRecord captures one validation attempt for later human review.
// Unique on (diagnosis_code, procedure_code); repeat validations never
// overwrite an existing record.
type AuditRecord struct {
	ID                string       `json:"id" db:"id"`
	DiagnosisCode     string       `json:"diagnosis_code" db:"diagnosis_code"`
	ProcedureCode     string       `json:"procedure_code" db:"procedure_code"`
	Decision          string       `json:"decision" db:"decision"`
	ConfidencePercent float64      `json:"confidence_percent" db:"confidence_percent"`
	Reasoning         string       `json:"reasoning" db:"reasoning"`
	Source            Source       `json:"source" db:"source"`
	CreatedAt         time.Time    `json:"created_at" db:"created_at"`
	ReviewStatus      ReviewStatus `json:"review_status" db:"review_status"`
	ReviewNotes       string       `json:"review_notes" db:"review_notes"`
}

// DecisionLabel renders the boolean verdict the way reviewers see it.
func DecisionLabel(isValid bool) string {
	if isValid {
		return "Valid"
	}
	return "Invalid"
}
