package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcoda/codepair/internal/application/services"
	"github.com/medcoda/codepair/internal/domain/entities"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

func setupReview(t *testing.T, decision string) (*fakeReference, *fakeAudit, *services.ReviewService) {
	t.Helper()
	reference := newFakeReference()
	reference.addDiagnosis("J45.0", "Predominantly allergic asthma")
	reference.addProcedure("92209-00", "Management of noninvasive ventilatory support")

	audit := newFakeAudit()
	audit.records[auditKey("J45.0", "92209-00")] = &entities.AuditRecord{
		ID:                "rec-1",
		DiagnosisCode:     "J45.0",
		ProcedureCode:     "92209-00",
		Decision:          decision,
		ConfidencePercent: 95,
		Reasoning:         "direct indication for respiratory support",
		Source:            entities.SourceModelWithExamples,
		CreatedAt:         time.Now(),
		ReviewStatus:      entities.ReviewPending,
	}

	return reference, audit, services.NewReviewService(audit, reference)
}

func TestSubmitReviewRejectsUnknownStatus(t *testing.T) {
	_, _, service := setupReview(t, "Valid")

	err := service.SubmitReview(context.Background(), "J45.0", "92209-00", "maybe", "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInput))

	err = service.SubmitReview(context.Background(), "J45.0", "92209-00", entities.ReviewPending, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindInput))
}

func TestSubmitReviewUnknownPairIsNotFound(t *testing.T) {
	_, _, service := setupReview(t, "Valid")

	err := service.SubmitReview(context.Background(), "K02.9", "92209-00", entities.ReviewConfirmed, "")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestSubmitReviewConfirmingValidPairPromotesIt(t *testing.T) {
	reference, audit, service := setupReview(t, "Valid")

	err := service.SubmitReview(context.Background(), "J45.0", "92209-00", entities.ReviewConfirmed, "checked against guidelines")
	require.NoError(t, err)

	record, err := audit.GetByPair(context.Background(), "J45.0", "92209-00")
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewConfirmed, record.ReviewStatus)
	assert.Equal(t, "checked against guidelines", record.ReviewNotes)

	require.Len(t, reference.created, 1)
	pair := reference.created[0]
	assert.Equal(t, "J45.0", pair.DiagnosisCode)
	assert.Equal(t, "92209-00", pair.ProcedureCode)
	assert.Equal(t, entities.PairSourceUserConfirmed, pair.Source)
	assert.Equal(t, 0.95, pair.Confidence)
	assert.Equal(t, "direct indication for respiratory support", pair.Relationship)
}

func TestSubmitReviewRejectingDoesNotPromote(t *testing.T) {
	reference, audit, service := setupReview(t, "Valid")

	err := service.SubmitReview(context.Background(), "J45.0", "92209-00", entities.ReviewRejected, "wrong procedure")
	require.NoError(t, err)

	record, err := audit.GetByPair(context.Background(), "J45.0", "92209-00")
	require.NoError(t, err)
	assert.Equal(t, entities.ReviewRejected, record.ReviewStatus)
	assert.Empty(t, reference.created)
}

func TestSubmitReviewConfirmingInvalidDecisionDoesNotPromote(t *testing.T) {
	reference, _, service := setupReview(t, "Invalid")

	err := service.SubmitReview(context.Background(), "J45.0", "92209-00", entities.ReviewConfirmed, "agreed, these do not pair")
	require.NoError(t, err)
	assert.Empty(t, reference.created, "confirming an invalid decision must not create a confirmed pair")
}
