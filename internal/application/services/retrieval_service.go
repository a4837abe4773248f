package services

import (
	"context"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/repositories"
)

// DefaultMaxExamples caps how many similar pairs are handed to the model.
const DefaultMaxExamples = 5

// RetrievalService finds prior confirmed pairs to use as model context.
// Read-only; no side effects.
type RetrievalService struct {
	reference repositories.ReferenceRepository
}

// NewRetrievalService creates a new retrieval service.
func NewRetrievalService(reference repositories.ReferenceRepository) *RetrievalService {
	return &RetrievalService{reference: reference}
}

// Retrieve returns confirmed pairs sharing the diagnosis category or the
// procedure category. The repository orders both-category matches before
// single-category matches and by confidence within each grade, so the top
// rows are the most relevant examples no matter how many pairs a category
// holds. An empty result is a normal outcome and signals the caller to rely
// on the static calibration bank alone.
func (s *RetrievalService) Retrieve(ctx context.Context, diagnosis *entities.DiagnosisCode, procedure *entities.ProcedureCode, maxExamples int) ([]entities.SimilarExample, error) {
	if maxExamples <= 0 {
		maxExamples = DefaultMaxExamples
	}

	pairs, err := s.reference.FindByEitherCategory(ctx, diagnosis.Category, procedure.Category, maxExamples)
	if err != nil {
		return nil, err
	}

	examples := make([]entities.SimilarExample, 0, len(pairs))
	for _, pair := range pairs {
		examples = append(examples, entities.ExampleFromPair(pair))
	}
	return examples, nil
}
