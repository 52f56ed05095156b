package arithmetic

import (
	"fmt"
	"strings"

	"invaudit/internal/config"
	"invaudit/internal/domain"
)

// Validator runs the arithmetic test catalogue against a single invoice.
// It is stateless apart from configuration and safe for concurrent use.
type Validator struct {
	tolerance float64
	tests     []Test
}

func NewValidator(cfg config.EngineConfig) *Validator {
	return &Validator{
		tolerance: cfg.Tolerance,
		tests:     catalog(cfg.Tolerance),
	}
}

// Catalog exposes the test catalogue for inspection.
func (v *Validator) Catalog() []Test {
	return v.tests
}

// Validate runs every applicable test and returns the aggregate report.
// Tests whose required fields are absent are downgraded to suggestions
// rather than failures. Failures of tax tests never affect the overall
// verdict; only non-tax failures do.
func (v *Validator) Validate(inv *domain.Invoice, items []domain.LineItem) *Report {
	if inv == nil {
		return &Report{Error: "invoice not found"}
	}

	rep := &Report{InvoiceID: inv.ID}
	var taxFailed int

	for i := range v.tests {
		t := &v.tests[i]
		if v.canApply(t, inv, items) {
			for _, r := range t.run(t, inv, items) {
				rep.Results = append(rep.Results, r)
				if r.IsSuggestion {
					rep.SuggestionsCount++
					continue
				}
				rep.TestsRun++
				if r.Passed {
					rep.TestsPassed++
				} else {
					rep.TestsFailed++
					if t.TaxRelated {
						taxFailed++
					}
				}
			}
			continue
		}

		if missing := v.missingFields(t, inv, items); len(missing) > 0 {
			rep.Results = append(rep.Results, suggestion(t, t.Name,
				fmt.Sprintf("Cannot perform %s - Missing required fields: %s", t.Name, strings.Join(missing, ", "))))
			rep.SuggestionsCount++
		}
	}

	if len(rep.Results) == 0 {
		rep.Error = "no applicable tests found"
		return rep
	}

	rep.TaxTestsFailed = taxFailed
	rep.NonTaxTestsFailed = rep.TestsFailed - taxFailed
	rep.OverallPassed = rep.NonTaxTestsFailed == 0
	return rep
}

// canApply reports whether a test has enough data to run. Item-level tests
// need at least one line item carrying all required fields; invoice-level
// tests need line items to sum over.
func (v *Validator) canApply(t *Test, inv *domain.Invoice, items []domain.LineItem) bool {
	if t.level == levelInvoice {
		return len(items) > 0
	}
	for i := range items {
		if itemHasFields(&items[i], t.RequiredFields) {
			return true
		}
	}
	return false
}

// missingFields names the fields that kept a test from running, for the
// downgraded suggestion message. An empty result means the test is simply
// not relevant to this invoice and is skipped without comment.
func (v *Validator) missingFields(t *Test, inv *domain.Invoice, items []domain.LineItem) []string {
	var missing []string
	if t.level == levelInvoice {
		for _, name := range t.RequiredFields {
			if !hasValue(invoiceField(inv, name)) {
				missing = append(missing, name)
			}
		}
		return missing
	}
	if len(items) == 0 {
		return nil
	}
	for _, name := range t.RequiredFields {
		if !hasValue(itemField(&items[0], name)) {
			missing = append(missing, name)
		}
	}
	return missing
}

func itemHasFields(item *domain.LineItem, fields []string) bool {
	for _, name := range fields {
		if !hasValue(itemField(item, name)) {
			return false
		}
	}
	return true
}

func itemField(item *domain.LineItem, name string) *float64 {
	switch name {
	case "quantity":
		return item.Quantity
	case "unit_price":
		return item.UnitPrice
	case "taxable_value":
		return item.TaxableValue
	case "gst_rate":
		return item.GSTRate
	case "gst_amount":
		return item.GSTAmount
	case "sgst_rate":
		return item.SGSTRate
	case "sgst_amount":
		return item.SGSTAmount
	case "cgst_rate":
		return item.CGSTRate
	case "cgst_amount":
		return item.CGSTAmount
	case "igst_rate":
		return item.IGSTRate
	case "igst_amount":
		return item.IGSTAmount
	case "total_amount":
		return item.TotalAmount
	default:
		return nil
	}
}

func invoiceField(inv *domain.Invoice, name string) *float64 {
	switch strings.TrimPrefix(name, "invoice_") {
	case "taxable_value":
		return inv.TaxableValue
	case "total_tax":
		return inv.TotalTax
	case "total_value":
		return inv.TotalValue
	default:
		return nil
	}
}
