package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/providers"
	"github.com/medcoda/codepair/internal/domain/repositories"
	"github.com/medcoda/codepair/internal/infrastructure/observability"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

// Retriever supplies similar confirmed pairs as model context.
type Retriever interface {
	Retrieve(ctx context.Context, diagnosis *entities.DiagnosisCode, procedure *entities.ProcedureCode, maxExamples int) ([]entities.SimilarExample, error)
}

// ValidationService is the single entry point of the decision pipeline:
// exact match -> retrieval -> model -> classification -> audit.
type ValidationService struct {
	reference   repositories.ReferenceRepository
	audit       repositories.AuditRepository
	retriever   Retriever
	verdicts    providers.VerdictProvider
	metrics     *observability.Metrics
	maxExamples int
}

// NewValidationService creates the decision orchestrator. All collaborators
// are injected; the service holds no ambient state.
func NewValidationService(
	reference repositories.ReferenceRepository,
	audit repositories.AuditRepository,
	retriever Retriever,
	verdicts providers.VerdictProvider,
	metrics *observability.Metrics,
) *ValidationService {
	return &ValidationService{
		reference:   reference,
		audit:       audit,
		retriever:   retriever,
		verdicts:    verdicts,
		metrics:     metrics,
		maxExamples: DefaultMaxExamples,
	}
}

// Validate judges one code pair. It returns either a verdict or a classified
// error; it never substitutes a low-confidence verdict for a genuine failure.
func (s *ValidationService) Validate(ctx context.Context, query entities.ValidationQuery) (*entities.ValidationResult, error) {
	q := query.Normalized()
	logger := observability.LoggerFromContext(ctx)

	// Both codes must exist in the reference tables before any other work.
	diagnosis, err := s.reference.GetDiagnosisCode(ctx, q.DiagnosisCode)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewInputError(fmt.Sprintf("diagnosis code %s not found in reference tables", q.DiagnosisCode))
		}
		return nil, err
	}

	procedure, err := s.reference.GetProcedureCode(ctx, q.ProcedureCode)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.NewInputError(fmt.Sprintf("procedure code %s not found in reference tables", q.ProcedureCode))
		}
		return nil, err
	}

	// Tier 1: exact match is an authority override. Confidence is pinned to
	// 1.0 and no model call is made.
	exact, err := s.reference.GetExactMatch(ctx, q.DiagnosisCode, q.ProcedureCode)
	if err != nil {
		return nil, err
	}
	if exact != nil {
		verdict := &entities.ModelVerdict{
			IsValid:              true,
			Confidence:           1.0,
			Reasoning:            exact.Relationship,
			CertaintyExplanation: "Exact match found in confirmed pairs",
		}
		result := s.buildResult(diagnosis, procedure, verdict, entities.SourceExactMatch, 0)
		s.recordAttempt(ctx, result)
		observability.RecordValidation(ctx, s.metrics, string(result.Source))
		return result, nil
	}

	// Tier 2: similar confirmed pairs as few-shot context. Retrieval is an
	// optimization, not a dependency; on failure the calibration bank alone
	// anchors the model.
	examples, err := s.retriever.Retrieve(ctx, diagnosis, procedure, s.maxExamples)
	if err != nil {
		logger.Warn().Err(err).
			Str("diagnosis_code", q.DiagnosisCode).
			Str("procedure_code", q.ProcedureCode).
			Msg("similar example retrieval failed, continuing without examples")
		examples = nil
	}

	verdict, err := s.verdicts.Judge(ctx, providers.VerdictRequest{
		Diagnosis: diagnosis,
		Procedure: procedure,
		Examples:  examples,
	})
	if err != nil {
		return nil, err
	}

	source := entities.SourceModelInference
	if len(examples) > 0 {
		source = entities.SourceModelWithExamples
	}

	result := s.buildResult(diagnosis, procedure, verdict, source, len(examples))
	s.recordAttempt(ctx, result)
	observability.RecordValidation(ctx, s.metrics, string(result.Source))
	return result, nil
}

func (s *ValidationService) buildResult(
	diagnosis *entities.DiagnosisCode,
	procedure *entities.ProcedureCode,
	verdict *entities.ModelVerdict,
	source entities.Source,
	exampleCount int,
) *entities.ValidationResult {
	return &entities.ValidationResult{
		DiagnosisCode:        diagnosis.Code,
		DiagnosisDescription: diagnosis.Description,
		ProcedureCode:        procedure.Code,
		ProcedureDescription: procedure.ShortDescription,
		IsValid:              verdict.IsValid,
		Confidence:           verdict.Confidence,
		Reasoning:            verdict.Reasoning,
		CertaintyExplanation: verdict.CertaintyExplanation,
		Source:               source,
		Band:                 entities.ClassifyVerdict(verdict),
		SimilarExamplesCount: exampleCount,
	}
}

// recordAttempt persists the attempt for human review. Best-effort: a
// persistence failure is logged and never alters the returned verdict.
func (s *ValidationService) recordAttempt(ctx context.Context, result *entities.ValidationResult) {
	record := &entities.AuditRecord{
		ID:                uuid.New().String(),
		DiagnosisCode:     result.DiagnosisCode,
		ProcedureCode:     result.ProcedureCode,
		Decision:          entities.DecisionLabel(result.IsValid),
		ConfidencePercent: result.Confidence * 100,
		Reasoning:         result.Reasoning,
		Source:            result.Source,
		CreatedAt:         time.Now().UTC(),
		ReviewStatus:      entities.ReviewPending,
	}

	if err := s.audit.RecordAttempt(ctx, record); err != nil {
		logger := observability.LoggerFromContext(ctx)
		logger.Warn().Err(err).
			Str("diagnosis_code", result.DiagnosisCode).
			Str("procedure_code", result.ProcedureCode).
			Msg("failed to record validation attempt")
	}
}
