package port

import (
	"context"

	"github.com/google/uuid"

	"invaudit/internal/domain"
)

// InvoiceRepository defines the persistence contract the engine reads
// invoices through, plus the two scalar flag write-backs it owns.
type InvoiceRepository interface {
	GetByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error)
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.LineItem, error)
	ListInvoiceIDs(ctx context.Context) ([]uuid.UUID, error)
	SetValidated(ctx context.Context, invoiceID uuid.UUID, validated bool) error
	SetDuplicate(ctx context.Context, invoiceID uuid.UUID, isDuplicate bool) error
}
