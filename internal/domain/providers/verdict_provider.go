package providers

import (
	"context"

	"github.com/medcoda/codepair/internal/domain/entities"
)

// VerdictRequest carries everything a provider needs to judge one code pair.
type VerdictRequest struct {
	Diagnosis *entities.DiagnosisCode
	Procedure *entities.ProcedureCode
	Examples  []entities.SimilarExample
}

// VerdictProvider judges whether a diagnosis/procedure pair is clinically
// plausible. Implementations must be deterministic for identical requests.
type VerdictProvider interface {
	Judge(ctx context.Context, req VerdictRequest) (*entities.ModelVerdict, error)

	// PromptVersion identifies the prompt policy in effect. Cache keys
	// incorporate it so a policy change cannot reuse stale verdicts.
	PromptVersion() string
}
