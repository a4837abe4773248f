package entities

import "fmt"

// Source identifies which tier produced a validation result. Closed set; every
// consumer is expected to handle all values.
type Source string

const (
	SourceExactMatch        Source = "exact_match"
	SourceModelWithExamples Source = "model_with_examples"
	SourceModelInference    Source = "model_inference"
	SourceError             Source = "error"
)

// ModelVerdict is the structured output contract of a model call.
type ModelVerdict struct {
	IsValid              bool    `json:"is_valid"`
	Confidence           float64 `json:"confidence"`
	Reasoning            string  `json:"reasoning"`
	CertaintyExplanation string  `json:"certainty_explanation"`
}

// Validate enforces the output contract: confidence stays in [0,1].
func (v *ModelVerdict) Validate() error {
	if v.Confidence < 0 || v.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range [0,1]", v.Confidence)
	}
	if v.Reasoning == "" {
		return fmt.Errorf("reasoning is empty")
	}
	return nil
}

// ConfidenceBand is the discrete display classification of a verdict.
type ConfidenceBand string

const (
	BandValidHigh       ConfidenceBand = "valid_high"
	BandValidModerate   ConfidenceBand = "valid_moderate"
	BandUncertain       ConfidenceBand = "uncertain"
	BandInvalidModerate ConfidenceBand = "invalid_moderate"
	BandInvalidHigh     ConfidenceBand = "invalid_high"
)

// ClassifyVerdict maps a verdict into its display band. Pure and total; the
// 0.90 boundary is inclusive on the high side.
func ClassifyVerdict(v *ModelVerdict) ConfidenceBand {
	switch {
	case v.Confidence < 0.75:
		return BandUncertain
	case v.IsValid && v.Confidence >= 0.90:
		return BandValidHigh
	case v.IsValid:
		return BandValidModerate
	case v.Confidence >= 0.90:
		return BandInvalidHigh
	default:
		return BandInvalidModerate
	}
}
