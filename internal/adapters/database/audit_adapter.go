package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/repositories"
	"github.com/medcoda/codepair/internal/infrastructure/clients/postgres"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

// AuditAdapter implements AuditRepository on PostgreSQL. Idempotency is
// enforced by the unique (diagnosis_code, procedure_code) constraint.
type AuditAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAuditAdapter creates a new audit adapter
func NewAuditAdapter(client *postgres.Client) repositories.AuditRepository {
	return &AuditAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// RecordAttempt inserts an audit record, ignoring the insert when a record
// for the code pair already exists. Existing review fields are never touched.
func (a *AuditAdapter) RecordAttempt(ctx context.Context, record *entities.AuditRecord) error {
	row := goqu.Record{
		"id":                 record.ID,
		"diagnosis_code":     record.DiagnosisCode,
		"procedure_code":     record.ProcedureCode,
		"decision":           record.Decision,
		"confidence_percent": record.ConfidencePercent,
		"reasoning":          record.Reasoning,
		"source":             string(record.Source),
		"created_at":         record.CreatedAt,
		"review_status":      string(record.ReviewStatus),
		"review_notes":       record.ReviewNotes,
	}

	query, args, err := a.db.Insert("audit_records").
		Rows(row).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to record validation attempt", err)
	}
	return nil
}

// GetByPair returns the audit record for a code pair.
func (a *AuditAdapter) GetByPair(ctx context.Context, diagnosisCode, procedureCode string) (*entities.AuditRecord, error) {
	query, args, err := a.db.Select(
		"id", "diagnosis_code", "procedure_code", "decision", "confidence_percent",
		"reasoning", "source", "created_at", "review_status", "review_notes",
	).From("audit_records").
		Where(goqu.Ex{
			"diagnosis_code": entities.NormalizeCode(diagnosisCode),
			"procedure_code": entities.NormalizeCode(procedureCode),
		}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	record := &entities.AuditRecord{}
	var source, reviewStatus string
	var reviewNotes sql.NullString

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&record.ID,
		&record.DiagnosisCode,
		&record.ProcedureCode,
		&record.Decision,
		&record.ConfidencePercent,
		&record.Reasoning,
		&source,
		&record.CreatedAt,
		&reviewStatus,
		&reviewNotes,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no audit record for pair %s/%s", diagnosisCode, procedureCode))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get audit record", err)
	}

	record.Source = entities.Source(source)
	record.ReviewStatus = entities.ReviewStatus(reviewStatus)
	record.ReviewNotes = reviewNotes.String
	return record, nil
}

// UpdateReview sets the review status and notes on an existing record.
func (a *AuditAdapter) UpdateReview(ctx context.Context, diagnosisCode, procedureCode string, status entities.ReviewStatus, notes string) error {
	query, args, err := a.db.Update("audit_records").
		Set(goqu.Record{
			"review_status": string(status),
			"review_notes":  notes,
		}).
		Where(goqu.Ex{
			"diagnosis_code": entities.NormalizeCode(diagnosisCode),
			"procedure_code": entities.NormalizeCode(procedureCode),
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewPersistenceError("failed to update review", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("no audit record for pair %s/%s", diagnosisCode, procedureCode))
	}
	return nil
}
