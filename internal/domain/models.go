package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a counterparty (supplier or buyer) on an invoice.
type Company struct {
	ID        uuid.UUID `db:"id" json:"id"`
	LegalName string    `db:"legal_name" json:"legal_name"`
	GSTIN     string    `db:"gstin" json:"gstin"`
	City      string    `db:"city" json:"city"`
	State     string    `db:"state" json:"state"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Invoice is an invoice header as persisted by the ingestion pipeline.
// Monetary aggregates and the two outcome flags are nullable: a nil pointer
// means the field was never populated, which is distinct from zero.
type Invoice struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	InvoiceNumber string     `db:"invoice_number" json:"invoice_number"`
	InvoiceDate   *time.Time `db:"invoice_date" json:"invoice_date"`
	SupplierID    *uuid.UUID `db:"supplier_id" json:"supplier_id"`
	TaxableValue  *float64   `db:"taxable_value" json:"taxable_value"`
	TotalTax      *float64   `db:"total_tax" json:"total_tax"`
	TotalValue    *float64   `db:"total_value" json:"total_value"`
	Validated     *bool      `db:"validated" json:"validated"`
	IsDuplicate   *bool      `db:"is_duplicate" json:"is_duplicate"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`

	// Joined from companies; empty when the supplier reference is unset.
	SupplierName  string `db:"supplier_name" json:"supplier_name"`
	SupplierGSTIN string `db:"supplier_gstin" json:"supplier_gstin"`
}

// LineItem is a single invoice line. It belongs to exactly one invoice and
// is removed with it. Every numeric field is nullable because upstream
// extraction routinely leaves gaps.
type LineItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	InvoiceID    uuid.UUID `db:"invoice_id" json:"invoice_id"`
	Description  string    `db:"description" json:"description"`
	HSNCode      string    `db:"hsn_code" json:"hsn_code"`
	Quantity     *float64  `db:"quantity" json:"quantity"`
	UnitPrice    *float64  `db:"unit_price" json:"unit_price"`
	TaxableValue *float64  `db:"taxable_value" json:"taxable_value"`
	GSTRate      *float64  `db:"gst_rate" json:"gst_rate"`
	GSTAmount    *float64  `db:"gst_amount" json:"gst_amount"`
	SGSTRate     *float64  `db:"sgst_rate" json:"sgst_rate"`
	SGSTAmount   *float64  `db:"sgst_amount" json:"sgst_amount"`
	CGSTRate     *float64  `db:"cgst_rate" json:"cgst_rate"`
	CGSTAmount   *float64  `db:"cgst_amount" json:"cgst_amount"`
	IGSTRate     *float64  `db:"igst_rate" json:"igst_rate"`
	IGSTAmount   *float64  `db:"igst_amount" json:"igst_amount"`
	TotalAmount  *float64  `db:"total_amount" json:"total_amount"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
