package entities

import "time"

// Pair origin values stored in confirmed_pairs.source.
const (
	PairSourceSeed          = "seed"
	PairSourceUserConfirmed = "user_confirmed"
)

// ConfirmedPair is a diagnosis/procedure combination previously established as
// clinically valid. Append-only ground truth, unique on the code pair.
type ConfirmedPair struct {
	ID                   string    `json:"id" db:"id"`
	DiagnosisCode        string    `json:"diagnosis_code" db:"diagnosis_code"`
	DiagnosisDescription string    `json:"diagnosis_description" db:"diagnosis_description"`
	DiagnosisCategory    Category  `json:"diagnosis_category" db:"diagnosis_category"`
	ProcedureCode        string    `json:"procedure_code" db:"procedure_code"`
	ProcedureDescription string    `json:"procedure_description" db:"procedure_description"`
	ProcedureCategory    Category  `json:"procedure_category" db:"procedure_category"`
	Relationship         string    `json:"relationship" db:"relationship"`
	Confidence           float64   `json:"confidence" db:"confidence"`
	Source               string    `json:"source" db:"source"`
	ConfirmedAt          time.Time `json:"confirmed_at" db:"confirmed_at"`
}

// SimilarExample is a read projection of a ConfirmedPair used only as model
// context. Never persisted separately.
type SimilarExample struct {
	DiagnosisCode        string
	DiagnosisDescription string
	DiagnosisCategory    Category
	ProcedureCode        string
	ProcedureDescription string
	ProcedureCategory    Category
	Relationship         string
	Confidence           float64
}

// ExampleFromPair projects a confirmed pair into model context.
func ExampleFromPair(p *ConfirmedPair) SimilarExample {
	return SimilarExample{
		DiagnosisCode:        p.DiagnosisCode,
		DiagnosisDescription: p.DiagnosisDescription,
		DiagnosisCategory:    p.DiagnosisCategory,
		ProcedureCode:        p.ProcedureCode,
		ProcedureDescription: p.ProcedureDescription,
		ProcedureCategory:    p.ProcedureCategory,
		Relationship:         p.Relationship,
		Confidence:           p.Confidence,
	}
}
