package database_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcoda/codepair/internal/adapters/database"
	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/repositories"
	"github.com/medcoda/codepair/internal/infrastructure/clients/postgres"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

func setupAuditAdapter(t *testing.T) (repositories.AuditRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return database.NewAuditAdapter(postgres.NewClientFromDB(db)), mock
}

func sampleRecord() *entities.AuditRecord {
	return &entities.AuditRecord{
		ID:                "rec-1",
		DiagnosisCode:     "J45.0",
		ProcedureCode:     "92209-00",
		Decision:          "Valid",
		ConfidencePercent: 95,
		Reasoning:         "direct indication",
		Source:            entities.SourceModelWithExamples,
		CreatedAt:         time.Now().UTC(),
		ReviewStatus:      entities.ReviewPending,
	}
}

func TestRecordAttemptInsertsIfAbsent(t *testing.T) {
	adapter, mock := setupAuditAdapter(t)

	mock.ExpectExec(`INSERT INTO "audit_records" .+ ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, adapter.RecordAttempt(context.Background(), sampleRecord()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordAttemptExecFailureIsPersistenceError(t *testing.T) {
	adapter, mock := setupAuditAdapter(t)

	mock.ExpectExec(`INSERT INTO "audit_records"`).WillReturnError(errors.New("connection reset"))

	err := adapter.RecordAttempt(context.Background(), sampleRecord())
	assert.True(t, apperrors.IsKind(err, apperrors.KindPersistence))
}

func TestGetByPair(t *testing.T) {
	adapter, mock := setupAuditAdapter(t)

	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM "audit_records"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "diagnosis_code", "procedure_code", "decision", "confidence_percent",
			"reasoning", "source", "created_at", "review_status", "review_notes",
		}).AddRow("rec-1", "J45.0", "92209-00", "Valid", 95.0,
			"direct indication", "model_with_examples", createdAt, "pending", nil))

	record, err := adapter.GetByPair(context.Background(), "J45.0", "92209-00")
	require.NoError(t, err)
	assert.Equal(t, entities.SourceModelWithExamples, record.Source)
	assert.Equal(t, entities.ReviewPending, record.ReviewStatus)
	assert.Empty(t, record.ReviewNotes)
}

func TestGetByPairNotFound(t *testing.T) {
	adapter, mock := setupAuditAdapter(t)

	mock.ExpectQuery(`FROM "audit_records"`).WillReturnError(sql.ErrNoRows)

	record, err := adapter.GetByPair(context.Background(), "J45.0", "92209-00")
	assert.Nil(t, record)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestUpdateReview(t *testing.T) {
	adapter, mock := setupAuditAdapter(t)

	mock.ExpectExec(`UPDATE "audit_records" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.UpdateReview(context.Background(), "J45.0", "92209-00", entities.ReviewConfirmed, "checked")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReviewNoRecordIsNotFound(t *testing.T) {
	adapter, mock := setupAuditAdapter(t)

	mock.ExpectExec(`UPDATE "audit_records" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := adapter.UpdateReview(context.Background(), "K02.9", "92209-00", entities.ReviewRejected, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}
