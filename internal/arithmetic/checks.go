package arithmetic

import (
	"fmt"
	"math"
	"strings"

	"invaudit/internal/domain"
)

// hasValue reports whether a nullable numeric field is usable: present and
// non-zero. Zero is treated as unextracted, matching upstream behavior.
func hasValue(p *float64) bool {
	return p != nil && *p != 0
}

func fval(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func fmtf(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

// fieldState reports whether a field can be used in a calculation and, when
// it cannot, a human-readable reason for the suggestion message.
func fieldState(p *float64, name string) (bool, string) {
	if p == nil {
		return false, fmt.Sprintf("Field '%s' is missing from the data", name)
	}
	if *p == 0 {
		return false, fmt.Sprintf("Field '%s' has zero value - may not be extracted correctly", name)
	}
	return true, ""
}

// applicableTax returns the tax borne by one line item, tolerating either
// taxation scheme being populated: the larger of the split-component sum,
// the cross-jurisdiction amount, and the single general amount.
func applicableTax(item *domain.LineItem) float64 {
	return math.Max(math.Max(fval(item.SGSTAmount)+fval(item.CGSTAmount), fval(item.IGSTAmount)), fval(item.GSTAmount))
}

func suggestion(t *Test, name, message string) Result {
	return Result{
		TestName:          name,
		Description:       t.Description,
		Passed:            true,
		Tolerance:         t.Tolerance,
		IsSuggestion:      true,
		SuggestionMessage: message,
	}
}

func runLineItemTotal(t *Test, _ *domain.Invoice, items []domain.LineItem) []Result {
	results := make([]Result, 0, len(items))
	for i := range items {
		item := &items[i]
		name := fmt.Sprintf("Line Item %d Total", i+1)

		var reasons []string
		for _, f := range []struct {
			p    *float64
			name string
		}{
			{item.Quantity, "quantity"},
			{item.UnitPrice, "unit_price"},
			{item.TaxableValue, "taxable_value"},
		} {
			if ok, msg := fieldState(f.p, f.name); !ok {
				reasons = append(reasons, msg)
			}
		}
		if len(reasons) > 0 {
			results = append(results, suggestion(t, name,
				"Cannot validate calculation - "+strings.Join(reasons, "; ")))
			continue
		}

		expected := *item.Quantity * *item.UnitPrice
		actual := *item.TaxableValue
		passed := approxEqual(expected, actual, t.Tolerance)
		r := Result{
			TestName:    name,
			Description: t.Description,
			Expected:    expected,
			Actual:      actual,
			Passed:      passed,
			Tolerance:   t.Tolerance,
			Evidence: &Evidence{
				Table:    "invoice_items",
				RecordID: item.ID.String(),
				StoredValues: map[string]string{
					"quantity":      fmtf(*item.Quantity),
					"unit_price":    fmtf(*item.UnitPrice),
					"taxable_value": fmtf(*item.TaxableValue),
				},
				Calculation: fmt.Sprintf("%s x %s = %s", fmtf(*item.Quantity), fmtf(*item.UnitPrice), fmtf(expected)),
			},
		}
		if !passed {
			r.ErrorMessage = fmt.Sprintf("Quantity(%s) x Unit Price(%s) != Taxable Value(%s)",
				fmtf(*item.Quantity), fmtf(*item.UnitPrice), fmtf(actual))
		}
		results = append(results, r)
	}
	return results
}

func runTaxCalculation(t *Test, tt TaxType, items []domain.LineItem) []Result {
	results := make([]Result, 0, len(items))
	for i := range items {
		item := &items[i]
		name := fmt.Sprintf("Line Item %d %s Calculation", i+1, tt)

		rate, taxable, amount := tt.Rate(item), item.TaxableValue, tt.Amount(item)
		var reasons []string
		if ok, msg := fieldState(rate, tt.RateField()); !ok {
			reasons = append(reasons, msg)
		}
		if ok, msg := fieldState(taxable, "taxable_value"); !ok {
			reasons = append(reasons, msg)
		}
		if ok, msg := fieldState(amount, tt.AmountField()); !ok {
			reasons = append(reasons, msg)
		}
		if len(reasons) > 0 {
			results = append(results, suggestion(t, name,
				fmt.Sprintf("Cannot validate %s calculation - %s", tt, strings.Join(reasons, "; "))))
			continue
		}

		expected := *taxable * *rate / 100
		actual := *amount
		passed := approxEqual(expected, actual, t.Tolerance)
		r := Result{
			TestName:    name,
			Description: t.Description,
			Expected:    expected,
			Actual:      actual,
			Passed:      passed,
			Tolerance:   t.Tolerance,
			Evidence: &Evidence{
				Table:    "invoice_items",
				RecordID: item.ID.String(),
				StoredValues: map[string]string{
					"taxable_value":  fmtf(*taxable),
					tt.RateField():   fmtf(*rate),
					tt.AmountField(): fmtf(*amount),
				},
				Calculation: fmt.Sprintf("%s x %s%% = %s", fmtf(*taxable), fmtf(*rate), fmtf(expected)),
			},
		}
		if !passed {
			r.ErrorMessage = fmt.Sprintf("Taxable(%s) x Rate(%s%%) != Amount(%s)",
				fmtf(*taxable), fmtf(*rate), fmtf(actual))
		}
		results = append(results, r)
	}
	return results
}

func runTotalTaxComponents(t *Test, _ *domain.Invoice, items []domain.LineItem) []Result {
	results := make([]Result, 0, len(items))
	for i := range items {
		item := &items[i]
		name := fmt.Sprintf("Line Item %d Tax Components", i+1)

		var missing []string
		if !hasValue(item.SGSTAmount) {
			missing = append(missing, "SGST amount")
		}
		if !hasValue(item.CGSTAmount) {
			missing = append(missing, "CGST amount")
		}
		if !hasValue(item.IGSTAmount) {
			missing = append(missing, "IGST amount")
		}
		if !hasValue(item.GSTAmount) {
			missing = append(missing, "Total GST amount")
		}
		// With most components absent there is nothing meaningful to compare.
		if len(missing) >= 3 {
			results = append(results, suggestion(t, name,
				"Cannot validate tax components - Missing: "+strings.Join(missing, ", ")))
			continue
		}

		sgst, cgst, igst := fval(item.SGSTAmount), fval(item.CGSTAmount), fval(item.IGSTAmount)
		expected := sgst + cgst + igst
		actual := fval(item.GSTAmount)
		passed := approxEqual(expected, actual, t.Tolerance)
		r := Result{
			TestName:    name,
			Description: t.Description,
			Expected:    expected,
			Actual:      actual,
			Passed:      passed,
			Tolerance:   t.Tolerance,
			Evidence: &Evidence{
				Table:    "invoice_items",
				RecordID: item.ID.String(),
				StoredValues: map[string]string{
					"sgst_amount": fmtf(sgst),
					"cgst_amount": fmtf(cgst),
					"igst_amount": fmtf(igst),
					"gst_amount":  fmtf(actual),
				},
			},
		}
		if !passed {
			r.ErrorMessage = fmt.Sprintf("SGST(%s) + CGST(%s) + IGST(%s) != Total GST(%s)",
				fmtf(sgst), fmtf(cgst), fmtf(igst), fmtf(actual))
		}
		results = append(results, r)
	}
	return results
}

func runItemTotalWithTax(t *Test, _ *domain.Invoice, items []domain.LineItem) []Result {
	results := make([]Result, 0, len(items))
	for i := range items {
		item := &items[i]
		name := fmt.Sprintf("Line Item %d Total with Tax", i+1)

		var reasons []string
		if ok, msg := fieldState(item.TaxableValue, "taxable_value"); !ok {
			reasons = append(reasons, msg)
		}
		if ok, msg := fieldState(item.TotalAmount, "total_amount"); !ok {
			reasons = append(reasons, msg)
		}
		if len(reasons) > 0 {
			results = append(results, suggestion(t, name,
				"Cannot validate total with tax - "+strings.Join(reasons, "; ")))
			continue
		}

		expected := *item.TaxableValue + applicableTax(item)
		actual := *item.TotalAmount
		passed := approxEqual(expected, actual, t.Tolerance)
		r := Result{
			TestName:    name,
			Description: t.Description,
			Expected:    expected,
			Actual:      actual,
			Passed:      passed,
			Tolerance:   t.Tolerance,
			Evidence: &Evidence{
				Table:    "invoice_items",
				RecordID: item.ID.String(),
				StoredValues: map[string]string{
					"taxable_value": fmtf(*item.TaxableValue),
					"total_amount":  fmtf(actual),
				},
				Calculation: fmt.Sprintf("%s + %s = %s", fmtf(*item.TaxableValue), fmtf(applicableTax(item)), fmtf(expected)),
			},
		}
		if !passed {
			r.ErrorMessage = fmt.Sprintf("Taxable(%s) + Tax != Total(%s)", fmtf(*item.TaxableValue), fmtf(actual))
		}
		results = append(results, r)
	}
	return results
}

func runInvoiceTaxableSum(t *Test, inv *domain.Invoice, items []domain.LineItem) []Result {
	var sum float64
	for i := range items {
		sum += fval(items[i].TaxableValue)
	}

	if ok, msg := fieldState(inv.TaxableValue, "taxable_value"); !ok {
		r := suggestion(t, "Invoice Taxable Value Sum", "Cannot validate invoice taxable sum - "+msg)
		r.Expected = sum
		return []Result{r}
	}

	actual := *inv.TaxableValue
	passed := approxEqual(sum, actual, t.Tolerance)
	r := Result{
		TestName:    "Invoice Taxable Value Sum",
		Description: t.Description,
		Expected:    sum,
		Actual:      actual,
		Passed:      passed,
		Tolerance:   t.Tolerance,
		Evidence: &Evidence{
			Table:    "invoices",
			RecordID: inv.ID.String(),
			StoredValues: map[string]string{
				"invoice_taxable_value":     fmtf(actual),
				"calculated_line_items_sum": fmtf(sum),
			},
		},
	}
	if !passed {
		r.ErrorMessage = fmt.Sprintf("Sum of line items(%s) != Invoice taxable(%s)", fmtf(sum), fmtf(actual))
	}
	return []Result{r}
}

func runInvoiceTaxSum(t *Test, inv *domain.Invoice, items []domain.LineItem) []Result {
	var sum float64
	for i := range items {
		sum += applicableTax(&items[i])
	}

	if ok, msg := fieldState(inv.TotalTax, "total_tax"); !ok {
		r := suggestion(t, "Invoice Tax Sum", "Cannot validate invoice tax sum - "+msg)
		r.Expected = sum
		return []Result{r}
	}

	actual := *inv.TotalTax
	passed := approxEqual(sum, actual, t.Tolerance)
	r := Result{
		TestName:    "Invoice Tax Sum",
		Description: t.Description,
		Expected:    sum,
		Actual:      actual,
		Passed:      passed,
		Tolerance:   t.Tolerance,
		Evidence: &Evidence{
			Table:    "invoices",
			RecordID: inv.ID.String(),
			StoredValues: map[string]string{
				"invoice_total_tax":  fmtf(actual),
				"calculated_tax_sum": fmtf(sum),
			},
		},
	}
	if !passed {
		r.ErrorMessage = fmt.Sprintf("Sum of line item taxes(%s) != Invoice tax(%s)", fmtf(sum), fmtf(actual))
	}
	return []Result{r}
}

func runInvoiceGrandTotal(t *Test, inv *domain.Invoice, _ []domain.LineItem) []Result {
	var reasons []string
	for _, f := range []struct {
		p    *float64
		name string
	}{
		{inv.TaxableValue, "taxable_value"},
		{inv.TotalTax, "total_tax"},
		{inv.TotalValue, "total_value"},
	} {
		if ok, msg := fieldState(f.p, f.name); !ok {
			reasons = append(reasons, msg)
		}
	}
	if len(reasons) > 0 {
		return []Result{suggestion(t, "Invoice Grand Total",
			"Cannot validate grand total - "+strings.Join(reasons, "; "))}
	}

	taxable, tax := *inv.TaxableValue, *inv.TotalTax
	expected := round2(taxable + tax)
	actual := round2(*inv.TotalValue)
	passed := approxEqual(expected, actual, t.Tolerance)
	r := Result{
		TestName:    "Invoice Grand Total",
		Description: t.Description,
		Expected:    expected,
		Actual:      actual,
		Passed:      passed,
		Tolerance:   t.Tolerance,
		Evidence: &Evidence{
			Table:    "invoices",
			RecordID: inv.ID.String(),
			StoredValues: map[string]string{
				"taxable_value":    fmtf(taxable),
				"total_tax":        fmtf(tax),
				"total_value":      fmtf(actual),
				"calculated_total": fmtf(expected),
			},
			Calculation: fmt.Sprintf("%s + %s = %s", fmtf(taxable), fmtf(tax), fmtf(expected)),
		},
	}
	if !passed {
		r.ErrorMessage = fmt.Sprintf("Taxable(%s) + Tax(%s) = %s != Total(%s)",
			fmtf(taxable), fmtf(tax), fmtf(expected), fmtf(actual))
	}
	return []Result{r}
}
