package arithmetic

import (
	"fmt"
	"strings"

	"invaudit/internal/domain"
)

type testLevel int

const (
	levelLineItem testLevel = iota
	levelInvoice
)

// Test is one entry of the static arithmetic test catalogue. The catalogue
// is built once per Validator and never mutated.
type Test struct {
	ID             string
	Name           string
	Description    string
	RequiredFields []string
	Tolerance      float64
	TaxRelated     bool

	level testLevel
	run   func(t *Test, inv *domain.Invoice, items []domain.LineItem) []Result
}

// catalog returns all arithmetic tests in presentation order. Order does
// not affect outcomes.
func catalog(tolerance float64) []Test {
	tests := []Test{
		{
			ID:             "line_item_total",
			Name:           "Line Item Total Calculation",
			Description:    "quantity x unit_price should equal taxable_value for each line item",
			RequiredFields: []string{"quantity", "unit_price", "taxable_value"},
			Tolerance:      tolerance,
			level:          levelLineItem,
			run:            runLineItemTotal,
		},
	}

	for _, tt := range []TaxType{TaxGST, TaxSGST, TaxCGST, TaxIGST} {
		tt := tt
		tests = append(tests, Test{
			ID:             fmt.Sprintf("%s_calculation", strings.ToLower(tt.String())),
			Name:           fmt.Sprintf("%s Amount Calculation", tt),
			Description:    fmt.Sprintf("taxable_value x %s/100 should equal %s", tt.RateField(), tt.AmountField()),
			RequiredFields: []string{"taxable_value", tt.RateField(), tt.AmountField()},
			Tolerance:      tolerance,
			TaxRelated:     true,
			level:          levelLineItem,
			run: func(t *Test, inv *domain.Invoice, items []domain.LineItem) []Result {
				return runTaxCalculation(t, tt, items)
			},
		})
	}

	tests = append(tests,
		Test{
			ID:             "total_tax_components",
			Name:           "Total Tax Components",
			Description:    "sgst_amount + cgst_amount + igst_amount should equal gst_amount",
			RequiredFields: []string{"sgst_amount", "cgst_amount", "igst_amount"},
			Tolerance:      tolerance,
			TaxRelated:     true,
			level:          levelLineItem,
			run:            runTotalTaxComponents,
		},
		Test{
			ID:             "item_total_with_tax",
			Name:           "Item Total with Tax",
			Description:    "taxable_value + applicable tax should equal total_amount",
			RequiredFields: []string{"taxable_value", "gst_amount", "sgst_amount", "cgst_amount", "igst_amount", "total_amount"},
			Tolerance:      tolerance,
			TaxRelated:     true,
			level:          levelLineItem,
			run:            runItemTotalWithTax,
		},
		Test{
			ID:             "invoice_taxable_sum",
			Name:           "Invoice Taxable Value Sum",
			Description:    "sum of line item taxable_values should equal invoice taxable_value",
			RequiredFields: []string{"invoice_taxable_value"},
			Tolerance:      tolerance,
			level:          levelInvoice,
			run:            runInvoiceTaxableSum,
		},
		Test{
			ID:             "invoice_tax_sum",
			Name:           "Invoice Tax Sum",
			Description:    "sum of line item taxes should equal invoice total_tax",
			RequiredFields: []string{"invoice_total_tax"},
			Tolerance:      tolerance,
			TaxRelated:     true,
			level:          levelInvoice,
			run:            runInvoiceTaxSum,
		},
		Test{
			ID:             "invoice_grand_total",
			Name:           "Invoice Grand Total",
			Description:    "invoice taxable_value + total_tax should equal total_value",
			RequiredFields: []string{"invoice_taxable_value", "invoice_total_tax", "invoice_total_value"},
			Tolerance:      tolerance,
			TaxRelated:     true,
			level:          levelInvoice,
			run:            runInvoiceGrandTotal,
		},
	)

	return tests
}
