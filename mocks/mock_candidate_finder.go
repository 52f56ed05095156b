package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"invaudit/internal/domain"
)

// MockCandidateFinder is a mock implementation of port.CandidateFinder.
type MockCandidateFinder struct {
	mock.Mock
}

func (m *MockCandidateFinder) FindBySupplier(ctx context.Context, supplierID, excludeInvoiceID uuid.UUID) ([]domain.Invoice, error) {
	args := m.Called(ctx, supplierID, excludeInvoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockCandidateFinder) FindByInvoiceNumber(ctx context.Context, invoiceNumber string, excludeInvoiceID uuid.UUID) ([]domain.Invoice, error) {
	args := m.Called(ctx, invoiceNumber, excludeInvoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockCandidateFinder) FindByAmountRange(ctx context.Context, min, max float64, excludeInvoiceID uuid.UUID, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, min, max, excludeInvoiceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}

func (m *MockCandidateFinder) FindBySharedHSNCodes(ctx context.Context, hsnCodes []string, excludeInvoiceID uuid.UUID, limit int) ([]domain.Invoice, error) {
	args := m.Called(ctx, hsnCodes, excludeInvoiceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Invoice), args.Error(1)
}
