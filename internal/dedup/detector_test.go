package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invaudit/internal/config"
	"invaudit/internal/dedup"
	"invaudit/internal/domain"
	"invaudit/mocks"
)

func engineConfig() config.EngineConfig {
	return config.EngineConfig{
		Tolerance:          0.05,
		RetentionThreshold: 0.5,
		DuplicateThreshold: 0.7,
		AmountVariance:     0.01,
		CandidateLimit:     10,
		DateWindowDays:     7,
	}
}

func floatPtr(v float64) *float64 { return &v }

func datePtr(day int) *time.Time {
	d := time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func newFixture() (*mocks.MockInvoiceRepo, *mocks.MockCandidateFinder, *dedup.Detector) {
	repo := new(mocks.MockInvoiceRepo)
	finder := new(mocks.MockCandidateFinder)
	det := dedup.NewDetector(repo, finder, engineConfig(), zap.NewNop())
	return repo, finder, det
}

func TestAnalyze_SameSupplierAmountDate(t *testing.T) {
	repo, finder, det := newFixture()
	supplier := uuid.New()

	subject := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		InvoiceDate:   datePtr(10),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1180),
	}
	candidate := domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-009",
		InvoiceDate:   datePtr(12),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1180),
		SupplierName:  "Acme Steel",
	}
	subjectItems := []domain.LineItem{{
		ID: uuid.New(), Quantity: floatPtr(2), UnitPrice: floatPtr(500), TaxableValue: floatPtr(1000),
	}}

	repo.On("GetByID", mock.Anything, subject.ID).Return(subject, nil)
	repo.On("ListLineItems", mock.Anything, subject.ID).Return(subjectItems, nil)
	repo.On("ListLineItems", mock.Anything, candidate.ID).Return([]domain.LineItem{}, nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-001", subject.ID).Return([]domain.Invoice{}, nil)
	finder.On("FindBySupplier", mock.Anything, supplier, subject.ID).Return([]domain.Invoice{candidate}, nil)
	finder.On("FindByAmountRange", mock.Anything, mock.AnythingOfType("float64"), mock.AnythingOfType("float64"), subject.ID, 10).Return([]domain.Invoice{candidate}, nil)

	result, err := det.Analyze(context.Background(), subject.ID)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	match := result.Matches[0]
	assert.Equal(t, candidate.ID, match.InvoiceID)
	assert.Equal(t, domain.MatchSameSupplierAmountDate, match.MatchType)
	assert.InDelta(t, 0.79, match.ConfidenceScore, 1e-9)
	assert.Equal(t, domain.RecommendLikelyDuplicateReview, match.Recommendation)

	assert.True(t, result.IsDuplicate)
	assert.InDelta(t, 0.79, result.ConfidenceScore, 1e-9)
	assert.Equal(t, domain.ActionMarkAsDuplicate, result.RecommendedAction)
	assert.NotEmpty(t, result.AnalysisSummary)

	repo.AssertExpectations(t)
	finder.AssertExpectations(t)
}

func TestAnalyze_ExactNumberMarksDuplicate(t *testing.T) {
	repo, finder, det := newFixture()
	supplier := uuid.New()

	subject := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		SupplierID:    &supplier,
	}
	candidate := domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "inv-001",
		SupplierID:    &supplier,
	}

	repo.On("GetByID", mock.Anything, subject.ID).Return(subject, nil)
	repo.On("ListLineItems", mock.Anything, subject.ID).Return([]domain.LineItem{}, nil)
	repo.On("ListLineItems", mock.Anything, candidate.ID).Return([]domain.LineItem{}, nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-001", subject.ID).Return([]domain.Invoice{candidate}, nil)
	finder.On("FindBySupplier", mock.Anything, supplier, subject.ID).Return([]domain.Invoice{candidate}, nil)

	result, err := det.Analyze(context.Background(), subject.ID)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1, "the same candidate from two queries scores once")
	assert.Equal(t, domain.MatchExactNumberSameCompany, result.Matches[0].MatchType)
	assert.InDelta(t, 0.95, result.ConfidenceScore, 1e-9)
	assert.Equal(t, domain.RecommendHighConfidenceDuplicate, result.Matches[0].Recommendation)
	assert.True(t, result.IsDuplicate)
	assert.Equal(t, domain.ActionMarkAsDuplicate, result.RecommendedAction)
}

func TestAnalyze_AtDuplicateThresholdStaysUnique(t *testing.T) {
	repo, finder, det := newFixture()
	supplier := uuid.New()

	// Five days apart: 0.85 - 0.03*5 lands exactly on the 0.70 threshold,
	// which must not be crossed.
	subject := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		InvoiceDate:   datePtr(10),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1000),
	}
	candidate := domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-009",
		InvoiceDate:   datePtr(15),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1000),
	}

	repo.On("GetByID", mock.Anything, subject.ID).Return(subject, nil)
	repo.On("ListLineItems", mock.Anything, subject.ID).Return([]domain.LineItem{}, nil)
	repo.On("ListLineItems", mock.Anything, candidate.ID).Return([]domain.LineItem{}, nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-001", subject.ID).Return([]domain.Invoice{}, nil)
	finder.On("FindBySupplier", mock.Anything, supplier, subject.ID).Return([]domain.Invoice{candidate}, nil)
	finder.On("FindByAmountRange", mock.Anything, mock.AnythingOfType("float64"), mock.AnythingOfType("float64"), subject.ID, 10).Return([]domain.Invoice{}, nil)

	result, err := det.Analyze(context.Background(), subject.ID)
	require.NoError(t, err)

	require.Len(t, result.Matches, 1)
	assert.InDelta(t, 0.70, result.ConfidenceScore, 1e-9)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, domain.ActionManualReviewRequired, result.RecommendedAction)
}

// analyzeAmountDatePair scores the two-days-apart same-supplier pair, which
// lands on exactly 0.85 - 0.03*2 = 0.79, under a given retention threshold.
func analyzeAmountDatePair(t *testing.T, retention float64) *dedup.AnalysisResult {
	t.Helper()
	repo := new(mocks.MockInvoiceRepo)
	finder := new(mocks.MockCandidateFinder)
	cfg := engineConfig()
	cfg.RetentionThreshold = retention
	det := dedup.NewDetector(repo, finder, cfg, zap.NewNop())

	supplier := uuid.New()
	subject := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		InvoiceDate:   datePtr(10),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1180),
	}
	candidate := domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-009",
		InvoiceDate:   datePtr(12),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1180),
	}

	repo.On("GetByID", mock.Anything, subject.ID).Return(subject, nil)
	repo.On("ListLineItems", mock.Anything, subject.ID).Return([]domain.LineItem{}, nil)
	repo.On("ListLineItems", mock.Anything, candidate.ID).Return([]domain.LineItem{}, nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-001", subject.ID).Return([]domain.Invoice{}, nil)
	finder.On("FindBySupplier", mock.Anything, supplier, subject.ID).Return([]domain.Invoice{candidate}, nil)
	finder.On("FindByAmountRange", mock.Anything, mock.AnythingOfType("float64"), mock.AnythingOfType("float64"), subject.ID, 10).Return([]domain.Invoice{}, nil)

	result, err := det.Analyze(context.Background(), subject.ID)
	require.NoError(t, err)
	return result
}

func TestAnalyze_RetentionCutoffIsStrict(t *testing.T) {
	atCutoff := analyzeAmountDatePair(t, 0.85-0.03*2)
	assert.Empty(t, atCutoff.Matches, "a score at the threshold is excluded")
	assert.False(t, atCutoff.IsDuplicate)
	assert.Equal(t, domain.ActionApproveAsUnique, atCutoff.RecommendedAction)

	below := analyzeAmountDatePair(t, 0.78)
	require.Len(t, below.Matches, 1)
	assert.InDelta(t, 0.79, below.Matches[0].ConfidenceScore, 1e-9)
}

func TestAnalyze_Idempotent(t *testing.T) {
	repo, finder, det := newFixture()
	supplier := uuid.New()

	subject := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-001",
		InvoiceDate:   datePtr(10),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1180),
	}
	candidate := domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-009",
		InvoiceDate:   datePtr(12),
		SupplierID:    &supplier,
		TotalValue:    floatPtr(1180),
	}

	repo.On("GetByID", mock.Anything, subject.ID).Return(subject, nil)
	repo.On("ListLineItems", mock.Anything, subject.ID).Return([]domain.LineItem{}, nil)
	repo.On("ListLineItems", mock.Anything, candidate.ID).Return([]domain.LineItem{}, nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-001", subject.ID).Return([]domain.Invoice{}, nil)
	finder.On("FindBySupplier", mock.Anything, supplier, subject.ID).Return([]domain.Invoice{candidate}, nil)
	finder.On("FindByAmountRange", mock.Anything, mock.AnythingOfType("float64"), mock.AnythingOfType("float64"), subject.ID, 10).Return([]domain.Invoice{}, nil)

	first, err := det.Analyze(context.Background(), subject.ID)
	require.NoError(t, err)
	second, err := det.Analyze(context.Background(), subject.ID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAnalyze_BelowRetentionDropped(t *testing.T) {
	repo, finder, det := newFixture()

	subject := &domain.Invoice{ID: uuid.New(), InvoiceNumber: "INV-001"}
	candidate := domain.Invoice{ID: uuid.New(), InvoiceNumber: "OTH-900"}

	repo.On("GetByID", mock.Anything, subject.ID).Return(subject, nil)
	repo.On("ListLineItems", mock.Anything, subject.ID).Return([]domain.LineItem{}, nil)
	repo.On("ListLineItems", mock.Anything, candidate.ID).Return([]domain.LineItem{}, nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-001", subject.ID).Return([]domain.Invoice{candidate}, nil)

	result, err := det.Analyze(context.Background(), subject.ID)
	require.NoError(t, err)

	assert.Empty(t, result.Matches)
	assert.False(t, result.IsDuplicate)
	assert.Equal(t, domain.ActionApproveAsUnique, result.RecommendedAction)
	assert.Contains(t, result.AnalysisSummary, "No duplicates")
}

func TestAnalyze_InvoiceNotFound(t *testing.T) {
	repo, finder, det := newFixture()
	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	result, err := det.Analyze(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, domain.ActionVerifyInvoiceExists, result.RecommendedAction)
	assert.Equal(t, "invoice not found", result.Error)
	assert.False(t, result.IsDuplicate)
	finder.AssertNotCalled(t, "FindBySupplier", mock.Anything, mock.Anything, mock.Anything)
}
