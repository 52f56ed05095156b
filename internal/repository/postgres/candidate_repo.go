package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"invaudit/internal/domain"
	"invaudit/internal/port"
)

type candidateRepo struct {
	db *sqlx.DB
}

// NewCandidateRepo creates a new PostgreSQL-backed CandidateFinder.
func NewCandidateRepo(db *sqlx.DB) port.CandidateFinder {
	return &candidateRepo{db: db}
}

func (r *candidateRepo) FindBySupplier(ctx context.Context, supplierID, excludeInvoiceID uuid.UUID) ([]domain.Invoice, error) {
	var invs []domain.Invoice
	err := r.db.SelectContext(ctx, &invs, `
		SELECT `+invoiceColumns+`
		FROM invoices i
		LEFT JOIN companies c ON c.id = i.supplier_id
		WHERE i.supplier_id = $1
		  AND i.id != $2
		ORDER BY i.invoice_date DESC NULLS LAST`,
		supplierID, excludeInvoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("candidateRepo.FindBySupplier: %w", err)
	}
	return invs, nil
}

func (r *candidateRepo) FindByInvoiceNumber(ctx context.Context, invoiceNumber string, excludeInvoiceID uuid.UUID) ([]domain.Invoice, error) {
	var invs []domain.Invoice
	err := r.db.SelectContext(ctx, &invs, `
		SELECT `+invoiceColumns+`
		FROM invoices i
		LEFT JOIN companies c ON c.id = i.supplier_id
		WHERE LOWER(TRIM(i.invoice_number)) = LOWER(TRIM($1))
		  AND i.id != $2
		ORDER BY i.created_at DESC`,
		invoiceNumber, excludeInvoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("candidateRepo.FindByInvoiceNumber: %w", err)
	}
	return invs, nil
}

func (r *candidateRepo) FindByAmountRange(ctx context.Context, min, max float64, excludeInvoiceID uuid.UUID, limit int) ([]domain.Invoice, error) {
	var invs []domain.Invoice
	err := r.db.SelectContext(ctx, &invs, `
		SELECT `+invoiceColumns+`
		FROM invoices i
		LEFT JOIN companies c ON c.id = i.supplier_id
		WHERE i.total_value BETWEEN $1 AND $2
		  AND i.id != $3
		ORDER BY ABS(i.total_value - ($1 + $2) / 2)
		LIMIT $4`,
		min, max, excludeInvoiceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("candidateRepo.FindByAmountRange: %w", err)
	}
	return invs, nil
}

func (r *candidateRepo) FindBySharedHSNCodes(ctx context.Context, hsnCodes []string, excludeInvoiceID uuid.UUID, limit int) ([]domain.Invoice, error) {
	if len(hsnCodes) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`
		SELECT `+invoiceColumns+`
		FROM invoices i
		LEFT JOIN companies c ON c.id = i.supplier_id
		JOIN invoice_items ii ON ii.invoice_id = i.id
		WHERE ii.hsn_code IN (?)
		  AND i.id != ?
		GROUP BY i.id, c.legal_name, c.gstin
		ORDER BY COUNT(DISTINCT ii.hsn_code) DESC
		LIMIT ?`,
		hsnCodes, excludeInvoiceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("candidateRepo.FindBySharedHSNCodes: %w", err)
	}

	var invs []domain.Invoice
	if err := r.db.SelectContext(ctx, &invs, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("candidateRepo.FindBySharedHSNCodes: %w", err)
	}
	return invs, nil
}
