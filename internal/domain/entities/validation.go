package entities

// ValidationQuery is the transient unit of work: one code pair to judge.
type ValidationQuery struct {
	DiagnosisCode string `json:"diagnosis_code"`
	ProcedureCode string `json:"procedure_code"`
}

// Normalized returns the query with both codes canonicalized.
func (q ValidationQuery) Normalized() ValidationQuery {
	return ValidationQuery{
		DiagnosisCode: NormalizeCode(q.DiagnosisCode),
		ProcedureCode: NormalizeCode(q.ProcedureCode),
	}
}

// ValidationResult is the verdict returned to the caller.
type ValidationResult struct {
	DiagnosisCode        string         `json:"diagnosis_code"`
	DiagnosisDescription string         `json:"diagnosis_description"`
	ProcedureCode        string         `json:"procedure_code"`
	ProcedureDescription string         `json:"procedure_description"`
	IsValid              bool           `json:"is_valid"`
	Confidence           float64        `json:"confidence"`
	Reasoning            string         `json:"reasoning"`
	CertaintyExplanation string         `json:"certainty_explanation"`
	Source               Source         `json:"source"`
	Band                 ConfidenceBand `json:"confidence_band"`
	SimilarExamplesCount int            `json:"similar_examples_count"`
}
