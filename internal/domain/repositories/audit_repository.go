package repositories

import (
	"context"

	"github.com/medcoda/codepair/internal/domain/entities"
)

// AuditRepository persists validation attempts for human review.
type AuditRepository interface {
	// RecordAttempt inserts an audit record unless one already exists for the
	// code pair. A repeat validation is a no-op and never touches review fields.
	RecordAttempt(ctx context.Context, record *entities.AuditRecord) error

	// GetByPair returns the audit record for a code pair, or a NOT_FOUND error.
	GetByPair(ctx context.Context, diagnosisCode, procedureCode string) (*entities.AuditRecord, error)

	// UpdateReview sets the review status and notes on an existing record.
	// Used only by the out-of-band review flow.
	UpdateReview(ctx context.Context, diagnosisCode, procedureCode string, status entities.ReviewStatus, notes string) error
}
