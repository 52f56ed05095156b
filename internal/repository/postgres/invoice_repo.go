package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invaudit/internal/domain"
	"invaudit/internal/port"
)

const invoiceColumns = `
	i.id, i.invoice_number, i.invoice_date, i.supplier_id,
	i.taxable_value, i.total_tax, i.total_value,
	i.validated, i.is_duplicate, i.created_at,
	COALESCE(c.legal_name, '') AS supplier_name,
	COALESCE(c.gstin, '') AS supplier_gstin`

type invoiceRepo struct {
	db *sqlx.DB
}

// NewInvoiceRepo creates a new PostgreSQL-backed InvoiceRepository.
func NewInvoiceRepo(db *sqlx.DB) port.InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) GetByID(ctx context.Context, invoiceID uuid.UUID) (*domain.Invoice, error) {
	var inv domain.Invoice
	err := r.db.GetContext(ctx, &inv, `
		SELECT `+invoiceColumns+`
		FROM invoices i
		LEFT JOIN companies c ON c.id = i.supplier_id
		WHERE i.id = $1`,
		invoiceID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrInvoiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.GetByID: %w", err)
	}
	return &inv, nil
}

func (r *invoiceRepo) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT id, invoice_id, COALESCE(description, '') AS description,
		       COALESCE(hsn_code, '') AS hsn_code,
		       quantity, unit_price, taxable_value,
		       gst_rate, gst_amount, sgst_rate, sgst_amount,
		       cgst_rate, cgst_amount, igst_rate, igst_amount,
		       total_amount, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at`,
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListLineItems: %w", err)
	}
	return items, nil
}

func (r *invoiceRepo) ListInvoiceIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.SelectContext(ctx, &ids, `
		SELECT id FROM invoices ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("invoiceRepo.ListInvoiceIDs: %w", err)
	}
	return ids, nil
}

func (r *invoiceRepo) SetValidated(ctx context.Context, invoiceID uuid.UUID, validated bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET validated = $2 WHERE id = $1`,
		invoiceID, validated,
	)
	if err != nil {
		return fmt.Errorf("invoiceRepo.SetValidated: %w", err)
	}
	return nil
}

func (r *invoiceRepo) SetDuplicate(ctx context.Context, invoiceID uuid.UUID, isDuplicate bool) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE invoices SET is_duplicate = $2 WHERE id = $1`,
		invoiceID, isDuplicate,
	)
	if err != nil {
		return fmt.Errorf("invoiceRepo.SetDuplicate: %w", err)
	}
	return nil
}
