package port

import (
	"context"

	"github.com/google/uuid"

	"invaudit/internal/domain"
)

// CandidateFinder supplies the four structural candidate queries the
// duplication detector unions before scoring. Every query excludes the
// subject invoice itself.
type CandidateFinder interface {
	// FindBySupplier returns all other invoices from the same supplier.
	FindBySupplier(ctx context.Context, supplierID, excludeInvoiceID uuid.UUID) ([]domain.Invoice, error)

	// FindByInvoiceNumber returns invoices with an exactly matching number,
	// across any supplier.
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string, excludeInvoiceID uuid.UUID) ([]domain.Invoice, error)

	// FindByAmountRange returns up to limit invoices whose total value falls
	// in [min, max], closest totals first.
	FindByAmountRange(ctx context.Context, min, max float64, excludeInvoiceID uuid.UUID, limit int) ([]domain.Invoice, error)

	// FindBySharedHSNCodes returns up to limit invoices sharing at least one
	// line-item HSN code with the given set, most shared codes first.
	FindBySharedHSNCodes(ctx context.Context, hsnCodes []string, excludeInvoiceID uuid.UUID, limit int) ([]domain.Invoice, error)
}
