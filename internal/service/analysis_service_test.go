package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"invaudit/internal/arithmetic"
	"invaudit/internal/config"
	"invaudit/internal/dedup"
	"invaudit/internal/domain"
	"invaudit/internal/service"
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

func newService(repo *mocks.MockInvoiceRepo, finder *mocks.MockCandidateFinder) service.AnalysisService {
	cfg := engineConfig()
	validator := arithmetic.NewValidator(cfg)
	detector := dedup.NewDetector(repo, finder, cfg, zap.NewNop())
	return service.NewAnalysisService(repo, validator, detector, zap.NewNop())
}

func TestAnalyze_WritesBothFlags(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	finder := new(mocks.MockCandidateFinder)
	svc := newService(repo, finder)

	supplier := uuid.New()
	inv := &domain.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "INV-42",
		SupplierID:    &supplier,
		TaxableValue:  floatPtr(1000),
		TotalTax:      floatPtr(180),
		TotalValue:    floatPtr(1180),
	}
	items := []domain.LineItem{{
		ID:           uuid.New(),
		InvoiceID:    inv.ID,
		Quantity:     floatPtr(2),
		UnitPrice:    floatPtr(500),
		TaxableValue: floatPtr(1000),
		GSTRate:      floatPtr(18),
		GSTAmount:    floatPtr(180),
	}}

	repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	repo.On("ListLineItems", mock.Anything, inv.ID).Return(items, nil)
	repo.On("SetValidated", mock.Anything, inv.ID, true).Return(nil)
	repo.On("SetDuplicate", mock.Anything, inv.ID, false).Return(nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-42", inv.ID).Return([]domain.Invoice{}, nil)
	finder.On("FindBySupplier", mock.Anything, supplier, inv.ID).Return([]domain.Invoice{}, nil)
	finder.On("FindByAmountRange", mock.Anything, mock.AnythingOfType("float64"), mock.AnythingOfType("float64"), inv.ID, 10).Return([]domain.Invoice{}, nil)

	rep, err := svc.Analyze(context.Background(), inv.ID)
	require.NoError(t, err)

	require.NotNil(t, rep.Arithmetic)
	assert.True(t, rep.Arithmetic.OverallPassed)
	require.NotNil(t, rep.Duplication)
	assert.False(t, rep.Duplication.IsDuplicate)
	assert.Equal(t, domain.ActionApproveAsUnique, rep.Duplication.RecommendedAction)

	repo.AssertExpectations(t)
	finder.AssertExpectations(t)
}

func TestAnalyze_FailedValidationWritesFalse(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	finder := new(mocks.MockCandidateFinder)
	svc := newService(repo, finder)

	inv := &domain.Invoice{ID: uuid.New(), InvoiceNumber: "INV-7"}
	items := []domain.LineItem{{
		ID:           uuid.New(),
		InvoiceID:    inv.ID,
		Quantity:     floatPtr(2),
		UnitPrice:    floatPtr(500),
		TaxableValue: floatPtr(900), // 2 x 500 is 1000
	}}

	repo.On("GetByID", mock.Anything, inv.ID).Return(inv, nil)
	repo.On("ListLineItems", mock.Anything, inv.ID).Return(items, nil)
	repo.On("SetValidated", mock.Anything, inv.ID, false).Return(nil)
	repo.On("SetDuplicate", mock.Anything, inv.ID, false).Return(nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-7", inv.ID).Return([]domain.Invoice{}, nil)

	rep, err := svc.Analyze(context.Background(), inv.ID)
	require.NoError(t, err)

	assert.False(t, rep.Arithmetic.OverallPassed)
	repo.AssertExpectations(t)
}

func TestAnalyze_NotFoundSkipsFlagWrites(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	finder := new(mocks.MockCandidateFinder)
	svc := newService(repo, finder)

	id := uuid.New()
	repo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrInvoiceNotFound)

	rep, err := svc.Analyze(context.Background(), id)
	require.NoError(t, err)

	assert.Equal(t, "invoice not found", rep.Arithmetic.Error)
	assert.Equal(t, domain.ActionVerifyInvoiceExists, rep.Duplication.RecommendedAction)
	repo.AssertNotCalled(t, "SetValidated", mock.Anything, mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "SetDuplicate", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyzeAll_SkipsFailedInvoices(t *testing.T) {
	repo := new(mocks.MockInvoiceRepo)
	finder := new(mocks.MockCandidateFinder)
	svc := newService(repo, finder)

	good := uuid.New()
	bad := uuid.New()
	inv := &domain.Invoice{ID: good, InvoiceNumber: "INV-1"}

	repo.On("ListInvoiceIDs", mock.Anything).Return([]uuid.UUID{good, bad}, nil)
	repo.On("GetByID", mock.Anything, good).Return(inv, nil)
	repo.On("ListLineItems", mock.Anything, good).Return([]domain.LineItem{}, nil)
	repo.On("SetValidated", mock.Anything, good, false).Return(nil)
	repo.On("SetDuplicate", mock.Anything, good, false).Return(nil)
	finder.On("FindByInvoiceNumber", mock.Anything, "INV-1", good).Return([]domain.Invoice{}, nil)
	repo.On("GetByID", mock.Anything, bad).Return(nil, assert.AnError)

	reports, err := svc.AnalyzeAll(context.Background())
	require.NoError(t, err)

	require.Len(t, reports, 1)
	assert.Equal(t, good, reports[0].InvoiceID)
}
