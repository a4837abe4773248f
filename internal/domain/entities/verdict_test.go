package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/medcoda/codepair/internal/domain/entities"
)

func TestModelVerdictValidate(t *testing.T) {
	valid := &entities.ModelVerdict{IsValid: true, Confidence: 0.9, Reasoning: "direct indication"}
	assert.NoError(t, valid.Validate())

	tooHigh := &entities.ModelVerdict{IsValid: true, Confidence: 1.2, Reasoning: "x"}
	assert.Error(t, tooHigh.Validate())

	negative := &entities.ModelVerdict{IsValid: false, Confidence: -0.1, Reasoning: "x"}
	assert.Error(t, negative.Validate())

	emptyReasoning := &entities.ModelVerdict{IsValid: true, Confidence: 0.8}
	assert.Error(t, emptyReasoning.Validate())
}

func TestClassifyVerdict(t *testing.T) {
	tests := []struct {
		name       string
		isValid    bool
		confidence float64
		want       entities.ConfidenceBand
	}{
		{"valid high", true, 0.95, entities.BandValidHigh},
		{"valid at 0.90 boundary is high", true, 0.90, entities.BandValidHigh},
		{"valid just below 0.90", true, 0.89, entities.BandValidModerate},
		{"valid moderate", true, 0.80, entities.BandValidModerate},
		{"valid at 0.75 boundary is moderate", true, 0.75, entities.BandValidModerate},
		{"uncertain below 0.75 regardless of decision", true, 0.74, entities.BandUncertain},
		{"uncertain invalid", false, 0.60, entities.BandUncertain},
		{"invalid at 0.90 boundary is high", false, 0.90, entities.BandInvalidHigh},
		{"invalid high", false, 0.98, entities.BandInvalidHigh},
		{"invalid moderate", false, 0.85, entities.BandInvalidModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &entities.ModelVerdict{IsValid: tt.isValid, Confidence: tt.confidence, Reasoning: "r"}
			assert.Equal(t, tt.want, entities.ClassifyVerdict(v))
		})
	}
}

func TestDecisionLabel(t *testing.T) {
	assert.Equal(t, "Valid", entities.DecisionLabel(true))
	assert.Equal(t, "Invalid", entities.DecisionLabel(false))
}
