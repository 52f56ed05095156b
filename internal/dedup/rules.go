package dedup

import (
	"fmt"
	"math"
	"strings"

	"invaudit/internal/config"
	"invaudit/internal/domain"
)

// ruleOutcome is the score a single scoring rule assigned to a candidate,
// with the fields and evidence backing it.
type ruleOutcome struct {
	matchType domain.MatchType
	score     float64
	fields    []string
	evidence  map[string]string
}

// scoreCandidate runs the rule cascade for one candidate. An exact invoice
// number reuse by the same supplier is conclusive on its own and short
// circuits; otherwise every remaining rule is evaluated and the best
// firing rule wins. Ties go to the earlier, more specific rule.
func scoreCandidate(
	subject *domain.Invoice, subjectItems []domain.LineItem,
	cand *domain.Invoice, candItems []domain.LineItem,
	cfg config.EngineConfig,
) (ruleOutcome, bool) {
	if out, ok := ruleExactNumber(subject, cand); ok {
		return out, true
	}

	evals := []func() (ruleOutcome, bool){
		func() (ruleOutcome, bool) { return ruleSameCompanyProduct(subject, cand, subjectItems, candItems) },
		func() (ruleOutcome, bool) { return ruleAmountDate(subject, cand, cfg) },
		func() (ruleOutcome, bool) { return ruleProductLine(subjectItems, candItems) },
		func() (ruleOutcome, bool) { return ruleHSNPattern(subjectItems, candItems) },
		func() (ruleOutcome, bool) { return ruleRatePattern(subjectItems, candItems) },
	}

	best := ruleOutcome{matchType: domain.MatchNone}
	var fired bool
	for _, eval := range evals {
		out, ok := eval()
		if !ok {
			continue
		}
		fired = true
		if out.score > best.score {
			best = out
		}
	}
	return best, fired
}

func sameSupplier(a, b *domain.Invoice) bool {
	return a.SupplierID != nil && b.SupplierID != nil && *a.SupplierID == *b.SupplierID
}

// ruleExactNumber: the same supplier reusing the same invoice number.
func ruleExactNumber(subject, cand *domain.Invoice) (ruleOutcome, bool) {
	if !sameSupplier(subject, cand) {
		return ruleOutcome{}, false
	}
	a := strings.ToLower(strings.TrimSpace(subject.InvoiceNumber))
	b := strings.ToLower(strings.TrimSpace(cand.InvoiceNumber))
	if a == "" || a != b {
		return ruleOutcome{}, false
	}
	return ruleOutcome{
		matchType: domain.MatchExactNumberSameCompany,
		score:     0.95,
		fields:    []string{"invoice_number", "supplier_id"},
		evidence: map[string]string{
			"invoice_number": cand.InvoiceNumber,
			"supplier_name":  cand.SupplierName,
		},
	}, true
}

// ruleSameCompanyProduct: the same supplier billing near-identical products.
func ruleSameCompanyProduct(subject, cand *domain.Invoice, subjectItems, candItems []domain.LineItem) (ruleOutcome, bool) {
	if !sameSupplier(subject, cand) || len(subjectItems) == 0 || len(candItems) == 0 {
		return ruleOutcome{}, false
	}
	sim := productOverlap(subjectItems, candItems)
	if sim < 0.85 {
		return ruleOutcome{}, false
	}
	return ruleOutcome{
		matchType: domain.MatchSameCompanyProduct,
		score:     0.90 * sim,
		fields:    []string{"supplier_id", "line_items"},
		evidence: map[string]string{
			"product_similarity": fmt.Sprintf("%.2f", sim),
			"supplier_name":      cand.SupplierName,
		},
	}, true
}

// ruleAmountDate: the same supplier, the same money, days apart.
func ruleAmountDate(subject, cand *domain.Invoice, cfg config.EngineConfig) (ruleOutcome, bool) {
	if !sameSupplier(subject, cand) {
		return ruleOutcome{}, false
	}
	if subject.TotalValue == nil || cand.TotalValue == nil ||
		subject.InvoiceDate == nil || cand.InvoiceDate == nil {
		return ruleOutcome{}, false
	}
	a, b := *subject.TotalValue, *cand.TotalValue
	if a == 0 || b == 0 {
		return ruleOutcome{}, false
	}
	if math.Abs(a-b)/math.Max(math.Abs(a), math.Abs(b)) > cfg.AmountVariance {
		return ruleOutcome{}, false
	}
	days := int(math.Abs(subject.InvoiceDate.Sub(*cand.InvoiceDate).Hours()) / 24)
	if days > cfg.DateWindowDays {
		return ruleOutcome{}, false
	}
	return ruleOutcome{
		matchType: domain.MatchSameSupplierAmountDate,
		score:     0.85 - 0.03*float64(days),
		fields:    []string{"supplier_id", "total_value", "invoice_date"},
		evidence: map[string]string{
			"total_value":   fmt.Sprintf("%.2f", b),
			"days_apart":    fmt.Sprintf("%d", days),
			"supplier_name": cand.SupplierName,
		},
	}, true
}

// ruleProductLine: line items line up across unrelated suppliers.
func ruleProductLine(subjectItems, candItems []domain.LineItem) (ruleOutcome, bool) {
	sim := lineItemOverlap(subjectItems, candItems)
	if sim <= 0.80 {
		return ruleOutcome{}, false
	}
	return ruleOutcome{
		matchType: domain.MatchProductLineDuplication,
		score:     0.80 + 0.05*sim,
		fields:    []string{"line_items"},
		evidence: map[string]string{
			"line_item_similarity": fmt.Sprintf("%.2f", sim),
		},
	}, true
}

// ruleHSNPattern: near-identical sets of HSN codes.
func ruleHSNPattern(subjectItems, candItems []domain.LineItem) (ruleOutcome, bool) {
	ratio := jaccard(hsnCodes(subjectItems), hsnCodes(candItems))
	if ratio <= 0.80 {
		return ruleOutcome{}, false
	}
	return ruleOutcome{
		matchType: domain.MatchHSNPattern,
		score:     0.70 + 0.05*ratio,
		fields:    []string{"hsn_codes"},
		evidence: map[string]string{
			"hsn_overlap": fmt.Sprintf("%.2f", ratio),
		},
	}, true
}

// ruleRatePattern: tax rates and quantities repeat across the line items.
func ruleRatePattern(subjectItems, candItems []domain.LineItem) (ruleOutcome, bool) {
	sim := rateQtyOverlap(subjectItems, candItems)
	if sim <= 0.85 {
		return ruleOutcome{}, false
	}
	return ruleOutcome{
		matchType: domain.MatchRatePattern,
		score:     0.65 + 0.05*sim,
		fields:    []string{"gst_rates", "quantities"},
		evidence: map[string]string{
			"rate_quantity_similarity": fmt.Sprintf("%.2f", sim),
		},
	}, true
}

// productOverlap scores how much of the subject's product list the candidate
// repeats: the average of each confident best match, scaled by coverage.
func productOverlap(subject, cand []domain.LineItem) float64 {
	var sum float64
	var matched int
	for i := range subject {
		var best float64
		for j := range cand {
			if s := itemSimilarity(&subject[i], &cand[j]); s > best {
				best = s
			}
		}
		if best > 0.80 {
			matched++
			sum += best
		}
	}
	if matched == 0 {
		return 0
	}
	avg := sum / float64(matched)
	coverage := float64(matched) / float64(len(subject))
	return avg * coverage
}

func lineItemOverlap(a, b []domain.LineItem) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		var best float64
		for j := range b {
			if s := lineItemPairSimilarity(&a[i], &b[j]); s > best {
				best = s
			}
		}
		if best > 0.7 {
			sum += best
		}
	}
	return sum / float64(max(len(a), len(b)))
}

func rateQtyOverlap(a, b []domain.LineItem) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	var sum float64
	for i := range a {
		var best float64
		for j := range b {
			rate := numericSimilarity(effectiveRate(&a[i]), effectiveRate(&b[j]))
			qty := numericSimilarity(fval(a[i].Quantity), fval(b[j].Quantity))
			if s := (rate + qty) / 2; s > best {
				best = s
			}
		}
		if best > 0.8 {
			sum += best
		}
	}
	return sum / float64(max(len(a), len(b)))
}
