package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medcoda/codepair/internal/api/handlers"
	"github.com/medcoda/codepair/internal/domain/entities"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

type stubValidator struct {
	result *entities.ValidationResult
	err    error
}

func (s *stubValidator) Validate(ctx context.Context, query entities.ValidationQuery) (*entities.ValidationResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubReviewer struct {
	err    error
	called bool
	status entities.ReviewStatus
}

func (s *stubReviewer) SubmitReview(ctx context.Context, diagnosisCode, procedureCode string, status entities.ReviewStatus, notes string) error {
	s.called = true
	s.status = status
	return s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestValidateReturnsResult(t *testing.T) {
	validator := &stubValidator{
		result: &entities.ValidationResult{
			DiagnosisCode: "J45.0",
			ProcedureCode: "92209-00",
			IsValid:       true,
			Confidence:    0.95,
			Reasoning:     "direct indication",
			Source:        entities.SourceModelWithExamples,
			Band:          entities.BandValidHigh,
		},
	}
	handler := handlers.NewValidationHandler(validator, &stubReviewer{})

	w := postJSON(t, handler.Validate, `{"diagnosis_code": "J45.0", "procedure_code": "92209-00"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response entities.ValidationResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "J45.0", response.DiagnosisCode)
	assert.True(t, response.IsValid)
	assert.Equal(t, entities.BandValidHigh, response.Band)
}

func TestValidateRejectsMissingCodes(t *testing.T) {
	handler := handlers.NewValidationHandler(&stubValidator{}, &stubReviewer{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", `{}`},
		{"missing procedure", `{"diagnosis_code": "J45.0"}`},
		{"missing diagnosis", `{"procedure_code": "92209-00"}`},
		{"malformed json", `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, handler.Validate, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var response map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, string(apperrors.KindInput), response["kind"])
		})
	}
}

func TestValidateErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   apperrors.Kind
	}{
		{"input error", apperrors.NewInputError("diagnosis code Z99.9 not found in reference tables"), http.StatusBadRequest, apperrors.KindInput},
		{"not found", apperrors.NewNotFoundError("missing"), http.StatusNotFound, apperrors.KindNotFound},
		{"model error", apperrors.NewModelError("model request failed", nil), http.StatusBadGateway, apperrors.KindModel},
		{"internal error", apperrors.NewInternalError("query failed", nil), http.StatusInternalServerError, apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewValidationHandler(&stubValidator{err: tt.err}, &stubReviewer{})

			w := postJSON(t, handler.Validate, `{"diagnosis_code": "J45.0", "procedure_code": "92209-00"}`)
			assert.Equal(t, tt.wantStatus, w.Code)

			var response map[string]string
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, string(tt.wantKind), response["kind"])
			assert.Equal(t, string(entities.SourceError), response["source"])
		})
	}
}

func TestSubmitReviewRecordsDecision(t *testing.T) {
	reviewer := &stubReviewer{}
	handler := handlers.NewValidationHandler(&stubValidator{}, reviewer)

	w := postJSON(t, handler.SubmitReview, `{"diagnosis_code": "J45.0", "procedure_code": "92209-00", "status": "confirmed", "notes": "checked"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, reviewer.called)
	assert.Equal(t, entities.ReviewConfirmed, reviewer.status)
}

func TestSubmitReviewRequiresCodes(t *testing.T) {
	reviewer := &stubReviewer{}
	handler := handlers.NewValidationHandler(&stubValidator{}, reviewer)

	w := postJSON(t, handler.SubmitReview, `{"status": "confirmed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, reviewer.called)
}

func TestSubmitReviewMapsServiceErrors(t *testing.T) {
	reviewer := &stubReviewer{err: apperrors.NewNotFoundError("no audit record for pair J45.0/92209-00")}
	handler := handlers.NewValidationHandler(&stubValidator{}, reviewer)

	w := postJSON(t, handler.SubmitReview, `{"diagnosis_code": "J45.0", "procedure_code": "92209-00", "status": "confirmed"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
