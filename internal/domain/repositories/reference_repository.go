package repositories

import (
	"context"

	"github.com/medcoda/codepair/internal/domain/entities"
)

// ReferenceRepository reads the canonical code tables and confirmed pairs.
// Reference data is read-only at request time; CreateConfirmedPair exists only
// for seeding and for out-of-band promotion of reviewed pairs.
type ReferenceRepository interface {
	// GetDiagnosisCode returns a diagnosis code row, or a NOT_FOUND error when
	// the code is absent from the reference table.
	GetDiagnosisCode(ctx context.Context, code string) (*entities.DiagnosisCode, error)

	// GetProcedureCode returns a procedure code row, or a NOT_FOUND error.
	GetProcedureCode(ctx context.Context, code string) (*entities.ProcedureCode, error)

	// GetExactMatch returns the confirmed pair for (diagnosis, procedure), or
	// (nil, nil) when no pair exists. Absence is a normal miss, not a failure.
	GetExactMatch(ctx context.Context, diagnosisCode, procedureCode string) (*entities.ConfirmedPair, error)

	// FindByEitherCategory returns confirmed pairs whose diagnosis category or
	// procedure category matches. Pairs matching both categories are ordered
	// before single-category matches regardless of confidence; within each
	// grade the order is confidence descending with most-recently-confirmed
	// breaking ties.
	FindByEitherCategory(ctx context.Context, diagnosisCategory, procedureCategory entities.Category, limit int) ([]*entities.ConfirmedPair, error)

	// CreateConfirmedPair inserts a pair, ignoring duplicates on the code pair.
	CreateConfirmedPair(ctx context.Context, pair *entities.ConfirmedPair) error
}
