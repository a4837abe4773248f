package entities

// DiagnosisCode is an immutable reference row for an ICD-10-AM code.
type DiagnosisCode struct {
	Code        string   `json:"code" db:"code"`
	Description string   `json:"description" db:"description"`
	Category    Category `json:"category"`
}

// ProcedureCode is an immutable reference row for an ACHI code.
type ProcedureCode struct {
	Code             string   `json:"code" db:"code"`
	Description      string   `json:"description" db:"description"`
	ShortDescription string   `json:"short_description" db:"short_description"`
	Category         Category `json:"category"`
}
