package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/repositories"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

// ReviewService handles the out-of-band human review of audit records. It is
// the only writer of review fields; the validation path never touches them.
type ReviewService struct {
	audit     repositories.AuditRepository
	reference repositories.ReferenceRepository
}

// NewReviewService creates a new review service.
func NewReviewService(audit repositories.AuditRepository, reference repositories.ReferenceRepository) *ReviewService {
	return &ReviewService{
		audit:     audit,
		reference: reference,
	}
}

// SubmitReview records a reviewer's decision on a validated pair. Confirming
// a pair the model judged valid promotes it into the confirmed-pairs ground
// truth, where future validations resolve it as an exact match.
func (s *ReviewService) SubmitReview(ctx context.Context, diagnosisCode, procedureCode string, status entities.ReviewStatus, notes string) error {
	if status != entities.ReviewConfirmed && status != entities.ReviewRejected {
		return apperrors.NewInputError(fmt.Sprintf("review status must be %q or %q", entities.ReviewConfirmed, entities.ReviewRejected))
	}

	record, err := s.audit.GetByPair(ctx, diagnosisCode, procedureCode)
	if err != nil {
		return err
	}

	if err := s.audit.UpdateReview(ctx, diagnosisCode, procedureCode, status, notes); err != nil {
		return err
	}

	if status != entities.ReviewConfirmed || record.Decision != entities.DecisionLabel(true) {
		return nil
	}

	return s.promote(ctx, record)
}

func (s *ReviewService) promote(ctx context.Context, record *entities.AuditRecord) error {
	diagnosis, err := s.reference.GetDiagnosisCode(ctx, record.DiagnosisCode)
	if err != nil {
		return err
	}
	procedure, err := s.reference.GetProcedureCode(ctx, record.ProcedureCode)
	if err != nil {
		return err
	}

	pair := &entities.ConfirmedPair{
		ID:                   uuid.New().String(),
		DiagnosisCode:        diagnosis.Code,
		DiagnosisDescription: diagnosis.Description,
		DiagnosisCategory:    diagnosis.Category,
		ProcedureCode:        procedure.Code,
		ProcedureDescription: procedure.ShortDescription,
		ProcedureCategory:    procedure.Category,
		Relationship:         record.Reasoning,
		Confidence:           record.ConfidencePercent / 100,
		Source:               entities.PairSourceUserConfirmed,
		ConfirmedAt:          time.Now().UTC(),
	}

	return s.reference.CreateConfirmedPair(ctx, pair)
}
