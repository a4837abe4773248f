package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/infrastructure/observability"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

// Validator judges one code pair.
type Validator interface {
	Validate(ctx context.Context, query entities.ValidationQuery) (*entities.ValidationResult, error)
}

// Reviewer records human review decisions on audit records.
type Reviewer interface {
	SubmitReview(ctx context.Context, diagnosisCode, procedureCode string, status entities.ReviewStatus, notes string) error
}

// ValidationHandler handles code pair validation requests
type ValidationHandler struct {
	validator Validator
	reviewer  Reviewer
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(validator Validator, reviewer Reviewer) *ValidationHandler {
	return &ValidationHandler{
		validator: validator,
		reviewer:  reviewer,
	}
}

type reviewRequest struct {
	DiagnosisCode string `json:"diagnosis_code"`
	ProcedureCode string `json:"procedure_code"`
	Status        string `json:"status"`
	Notes         string `json:"notes"`
}

// Validate handles POST /api/validate
func (h *ValidationHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var query entities.ValidationQuery
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		respondWithError(w, http.StatusBadRequest, apperrors.KindInput, "invalid request body")
		return
	}
	if query.DiagnosisCode == "" || query.ProcedureCode == "" {
		respondWithError(w, http.StatusBadRequest, apperrors.KindInput, "diagnosis_code and procedure_code are required")
		return
	}

	result, err := h.validator.Validate(r.Context(), query)
	if err != nil {
		logger := observability.LoggerFromContext(r.Context())
		logger.Error().Err(err).
			Str("diagnosis_code", query.DiagnosisCode).
			Str("procedure_code", query.ProcedureCode).
			Msg("validation failed")
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// SubmitReview handles POST /api/reviews
func (h *ValidationHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, apperrors.KindInput, "invalid request body")
		return
	}
	if req.DiagnosisCode == "" || req.ProcedureCode == "" {
		respondWithError(w, http.StatusBadRequest, apperrors.KindInput, "diagnosis_code and procedure_code are required")
		return
	}

	err := h.reviewer.SubmitReview(r.Context(), req.DiagnosisCode, req.ProcedureCode, entities.ReviewStatus(req.Status), req.Notes)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"status": "recorded"})
}

// respondWithAppError renders a failed pipeline run. The payload carries
// source=error so callers consuming the source enum see the terminal error
// case alongside the HTTP status.
func respondWithAppError(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	message := "validation failed"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	if kind == apperrors.KindInternal {
		message = "internal error"
	}

	respondWithJSON(w, statusForKind(kind), map[string]string{
		"kind":   string(kind),
		"error":  message,
		"source": string(entities.SourceError),
	})
}

func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindInput:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindModel:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, kind apperrors.Kind, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"kind":  string(kind),
		"error": message,
	})
}
