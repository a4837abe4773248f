package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/medcoda/codepair/internal/domain/entities"
	"github.com/medcoda/codepair/internal/domain/providers"
	apperrors "github.com/medcoda/codepair/pkg/errors"
)

// fakeReference serves reference lookups from in-memory maps, mirroring the
// repository contract: NOT_FOUND for missing codes, (nil, nil) for a pair miss.
type fakeReference struct {
	diagnoses  map[string]*entities.DiagnosisCode
	procedures map[string]*entities.ProcedureCode
	pairs      []*entities.ConfirmedPair
	created    []*entities.ConfirmedPair

	exactMatchErr error
	findErr       error
}

func newFakeReference() *fakeReference {
	return &fakeReference{
		diagnoses:  map[string]*entities.DiagnosisCode{},
		procedures: map[string]*entities.ProcedureCode{},
	}
}

func (f *fakeReference) addDiagnosis(code, description string) *entities.DiagnosisCode {
	d := &entities.DiagnosisCode{
		Code:        code,
		Description: description,
		Category:    entities.CategoryOfDiagnosis(code),
	}
	f.diagnoses[code] = d
	return d
}

func (f *fakeReference) addProcedure(code, description string) *entities.ProcedureCode {
	p := &entities.ProcedureCode{
		Code:             code,
		Description:      description,
		ShortDescription: description,
		Category:         entities.CategoryOfProcedure(code),
	}
	f.procedures[code] = p
	return p
}

func (f *fakeReference) addPair(diagnosisCode, procedureCode, relationship string, confidence float64, confirmedAt time.Time) *entities.ConfirmedPair {
	pair := &entities.ConfirmedPair{
		ID:                fmt.Sprintf("pair-%d", len(f.pairs)+1),
		DiagnosisCode:     diagnosisCode,
		DiagnosisCategory: entities.CategoryOfDiagnosis(diagnosisCode),
		ProcedureCode:     procedureCode,
		ProcedureCategory: entities.CategoryOfProcedure(procedureCode),
		Relationship:      relationship,
		Confidence:        confidence,
		Source:            entities.PairSourceSeed,
		ConfirmedAt:       confirmedAt,
	}
	f.pairs = append(f.pairs, pair)
	return pair
}

func (f *fakeReference) GetDiagnosisCode(ctx context.Context, code string) (*entities.DiagnosisCode, error) {
	if d, ok := f.diagnoses[entities.NormalizeCode(code)]; ok {
		return d, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("diagnosis code %s not found", code))
}

func (f *fakeReference) GetProcedureCode(ctx context.Context, code string) (*entities.ProcedureCode, error) {
	if p, ok := f.procedures[entities.NormalizeCode(code)]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("procedure code %s not found", code))
}

func (f *fakeReference) GetExactMatch(ctx context.Context, diagnosisCode, procedureCode string) (*entities.ConfirmedPair, error) {
	if f.exactMatchErr != nil {
		return nil, f.exactMatchErr
	}
	for _, pair := range f.pairs {
		if pair.DiagnosisCode == entities.NormalizeCode(diagnosisCode) && pair.ProcedureCode == entities.NormalizeCode(procedureCode) {
			return pair, nil
		}
	}
	return nil, nil
}

// FindByEitherCategory mirrors the repository contract: both-category matches
// first, then confidence descending, most-recently-confirmed breaking ties.
func (f *fakeReference) FindByEitherCategory(ctx context.Context, diagnosisCategory, procedureCategory entities.Category, limit int) ([]*entities.ConfirmedPair, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	grade := func(pair *entities.ConfirmedPair) int {
		if pair.DiagnosisCategory == diagnosisCategory && pair.ProcedureCategory == procedureCategory {
			return 0
		}
		return 1
	}
	var out []*entities.ConfirmedPair
	for _, pair := range f.pairs {
		if pair.DiagnosisCategory == diagnosisCategory || pair.ProcedureCategory == procedureCategory {
			out = append(out, pair)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if grade(out[i]) != grade(out[j]) {
			return grade(out[i]) < grade(out[j])
		}
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].ConfirmedAt.After(out[j].ConfirmedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeReference) CreateConfirmedPair(ctx context.Context, pair *entities.ConfirmedPair) error {
	f.created = append(f.created, pair)
	return nil
}

// fakeAudit records attempts in memory with the same insert-if-absent
// semantics as the real adapter.
type fakeAudit struct {
	records   map[string]*entities.AuditRecord
	recordErr error
}

func newFakeAudit() *fakeAudit {
	return &fakeAudit{records: map[string]*entities.AuditRecord{}}
}

func auditKey(diagnosisCode, procedureCode string) string {
	return entities.NormalizeCode(diagnosisCode) + "|" + entities.NormalizeCode(procedureCode)
}

func (f *fakeAudit) RecordAttempt(ctx context.Context, record *entities.AuditRecord) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	key := auditKey(record.DiagnosisCode, record.ProcedureCode)
	if _, exists := f.records[key]; exists {
		return nil
	}
	f.records[key] = record
	return nil
}

func (f *fakeAudit) GetByPair(ctx context.Context, diagnosisCode, procedureCode string) (*entities.AuditRecord, error) {
	if record, ok := f.records[auditKey(diagnosisCode, procedureCode)]; ok {
		return record, nil
	}
	return nil, apperrors.NewNotFoundError(fmt.Sprintf("no audit record for pair %s/%s", diagnosisCode, procedureCode))
}

func (f *fakeAudit) UpdateReview(ctx context.Context, diagnosisCode, procedureCode string, status entities.ReviewStatus, notes string) error {
	record, ok := f.records[auditKey(diagnosisCode, procedureCode)]
	if !ok {
		return apperrors.NewNotFoundError(fmt.Sprintf("no audit record for pair %s/%s", diagnosisCode, procedureCode))
	}
	record.ReviewStatus = status
	record.ReviewNotes = notes
	return nil
}

// fakeVerdicts returns a canned verdict and counts invocations.
type fakeVerdicts struct {
	verdict *entities.ModelVerdict
	err     error
	calls   int
	lastReq providers.VerdictRequest
}

func (f *fakeVerdicts) Judge(ctx context.Context, req providers.VerdictRequest) (*entities.ModelVerdict, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	v := *f.verdict
	return &v, nil
}

func (f *fakeVerdicts) PromptVersion() string { return "v-test" }

// fakeRetriever returns canned examples.
type fakeRetriever struct {
	examples []entities.SimilarExample
	err      error
}

func (f *fakeRetriever) Retrieve(ctx context.Context, diagnosis *entities.DiagnosisCode, procedure *entities.ProcedureCode, maxExamples int) ([]entities.SimilarExample, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.examples, nil
}

var errBoom = errors.New("boom")
