package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/repositories"
	"github.com/medcoda/codepair/internal/infrastructure/clients/postgres"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

var confirmedPairColumns = []interface{}{
	"id", "diagnosis_code", "diagnosis_description", "diagnosis_category",
	"procedure_code", "procedure_description", "procedure_category",
	"relationship", "confidence", "source", "confirmed_at",
}

// ReferenceAdapter implements ReferenceRepository on PostgreSQL.
type ReferenceAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReferenceAdapter creates a new reference adapter
func NewReferenceAdapter(client *postgres.Client) repositories.ReferenceRepository {
	return &ReferenceAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetDiagnosisCode retrieves a diagnosis code row. The category is resolved
// from the fixed prefix rule, not stored.
func (a *ReferenceAdapter) GetDiagnosisCode(ctx context.Context, code string) (*entities.DiagnosisCode, error) {
	code = entities.NormalizeCode(code)

	query, args, err := a.db.Select("code", "description").
		From("diagnosis_codes").
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	diagnosis := &entities.DiagnosisCode{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&diagnosis.Code,
		&diagnosis.Description,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("diagnosis code %s not found", code))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get diagnosis code", err)
	}

	diagnosis.Category = entities.CategoryOfDiagnosis(diagnosis.Code)
	return diagnosis, nil
}

// GetProcedureCode retrieves a procedure code row.
func (a *ReferenceAdapter) GetProcedureCode(ctx context.Context, code string) (*entities.ProcedureCode, error) {
	code = entities.NormalizeCode(code)

	query, args, err := a.db.Select("code", "description", "short_description").
		From("procedure_codes").
		Where(goqu.Ex{"code": code}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	procedure := &entities.ProcedureCode{}
	var shortDescription sql.NullString
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&procedure.Code,
		&procedure.Description,
		&shortDescription,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("procedure code %s not found", code))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get procedure code", err)
	}

	procedure.ShortDescription = shortDescription.String
	if procedure.ShortDescription == "" {
		procedure.ShortDescription = procedure.Description
	}
	procedure.Category = entities.CategoryOfProcedure(procedure.Code)
	return procedure, nil
}

// GetExactMatch returns the confirmed pair for the exact code pair, or
// (nil, nil) when none exists.
func (a *ReferenceAdapter) GetExactMatch(ctx context.Context, diagnosisCode, procedureCode string) (*entities.ConfirmedPair, error) {
	query, args, err := a.db.Select(confirmedPairColumns...).
		From("confirmed_pairs").
		Where(goqu.Ex{
			"diagnosis_code": entities.NormalizeCode(diagnosisCode),
			"procedure_code": entities.NormalizeCode(procedureCode),
		}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	pair, err := a.scanPair(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get exact match", err)
	}
	return pair, nil
}

// FindByEitherCategory returns confirmed pairs matching either category.
// Pairs matching both categories come first no matter how many single-category
// pairs exist; within each grade the order is confidence descending,
// most-recently-confirmed breaking ties, code pair ascending as the final
// stable tie-break.
func (a *ReferenceAdapter) FindByEitherCategory(ctx context.Context, diagnosisCategory, procedureCategory entities.Category, limit int) ([]*entities.ConfirmedPair, error) {
	matchGrade := goqu.Case().
		When(goqu.And(
			goqu.C("diagnosis_category").Eq(string(diagnosisCategory)),
			goqu.C("procedure_category").Eq(string(procedureCategory)),
		), 0).
		Else(1)

	query, args, err := a.db.Select(confirmedPairColumns...).
		From("confirmed_pairs").
		Where(goqu.Or(
			goqu.Ex{"diagnosis_category": string(diagnosisCategory)},
			goqu.Ex{"procedure_category": string(procedureCategory)},
		)).
		Order(
			matchGrade.Asc(),
			goqu.I("confidence").Desc(),
			goqu.I("confirmed_at").Desc(),
			goqu.I("diagnosis_code").Asc(),
			goqu.I("procedure_code").Asc(),
		).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to find pairs by category", err)
	}
	defer rows.Close()

	var pairs []*entities.ConfirmedPair
	for rows.Next() {
		pair, err := a.scanPair(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan confirmed pair", err)
		}
		pairs = append(pairs, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating confirmed pairs", err)
	}

	return pairs, nil
}

// CreateConfirmedPair inserts a pair, silently ignoring a duplicate code pair.
func (a *ReferenceAdapter) CreateConfirmedPair(ctx context.Context, pair *entities.ConfirmedPair) error {
	record := goqu.Record{
		"id":                    pair.ID,
		"diagnosis_code":        pair.DiagnosisCode,
		"diagnosis_description": pair.DiagnosisDescription,
		"diagnosis_category":    string(pair.DiagnosisCategory),
		"procedure_code":        pair.ProcedureCode,
		"procedure_description": pair.ProcedureDescription,
		"procedure_category":    string(pair.ProcedureCategory),
		"relationship":          pair.Relationship,
		"confidence":            pair.Confidence,
		"source":                pair.Source,
		"confirmed_at":          pair.ConfirmedAt,
	}

	query, args, err := a.db.Insert("confirmed_pairs").
		Rows(record).
		OnConflict(goqu.DoNothing()).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewPersistenceError("failed to create confirmed pair", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (a *ReferenceAdapter) scanPair(row rowScanner) (*entities.ConfirmedPair, error) {
	pair := &entities.ConfirmedPair{}
	var diagCategory, procCategory string

	err := row.Scan(
		&pair.ID,
		&pair.DiagnosisCode,
		&pair.DiagnosisDescription,
		&diagCategory,
		&pair.ProcedureCode,
		&pair.ProcedureDescription,
		&procCategory,
		&pair.Relationship,
		&pair.Confidence,
		&pair.Source,
		&pair.ConfirmedAt,
	)
	if err != nil {
		return nil, err
	}

	pair.DiagnosisCategory = entities.Category(diagCategory)
	pair.ProcedureCategory = entities.Category(procCategory)
	return pair, nil
}
