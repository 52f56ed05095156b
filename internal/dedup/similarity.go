package dedup

import (
	"math"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"invaudit/internal/domain"
)

// numericTolerance is the relative band inside which two amounts still earn
// partial similarity credit.
const numericTolerance = 0.05

// textSimilarity scores two free-text values in [0, 1] using a character
// level sequence match, case- and whitespace-insensitive.
func textSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	m := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, ""))
	return m.Ratio()
}

// numericSimilarity scores two amounts in [0, 1]. Credit decays linearly
// across the tolerance band and drops to zero outside it. A zero on either
// side scores zero because zero usually means "not extracted", not "free".
func numericSimilarity(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 1
	}
	if a == 0 || b == 0 {
		return 0
	}
	diff := math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
	if diff > numericTolerance {
		return 0
	}
	return 1 - diff/numericTolerance
}

// jaccard computes set overlap of two HSN code slices.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(a))
	for _, v := range a {
		set[v] = struct{}{}
	}
	var inter int
	union := len(set)
	seen := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if _, ok := set[v]; ok {
			inter++
		} else {
			union++
		}
	}
	return float64(inter) / float64(union)
}

func fval(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// effectiveRate is the tax rate a line item actually carries, whichever
// taxation scheme populated it.
func effectiveRate(item *domain.LineItem) float64 {
	return math.Max(math.Max(fval(item.SGSTRate)+fval(item.CGSTRate), fval(item.IGSTRate)), fval(item.GSTRate))
}

// hsnCodes collects the distinct non-empty HSN codes on a set of line items.
func hsnCodes(items []domain.LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	var codes []string
	for i := range items {
		code := strings.TrimSpace(items[i].HSNCode)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// itemSimilarity scores a line-item pair for the same-supplier product rule.
// Weights are renormalized over the facets both items actually carry, so a
// sparsely extracted pair is judged on what it has rather than punished for
// the gaps.
func itemSimilarity(a, b *domain.LineItem) float64 {
	type facet struct {
		weight float64
		score  float64
		usable bool
	}
	facets := []facet{
		{0.40, textSimilarity(a.Description, b.Description), a.Description != "" && b.Description != ""},
		{0.25, boolScore(strings.EqualFold(strings.TrimSpace(a.HSNCode), strings.TrimSpace(b.HSNCode))), a.HSNCode != "" && b.HSNCode != ""},
		{0.20, numericSimilarity(fval(a.UnitPrice), fval(b.UnitPrice)), fval(a.UnitPrice) != 0 && fval(b.UnitPrice) != 0},
		{0.15, numericSimilarity(fval(a.TaxableValue), fval(b.TaxableValue)), fval(a.TaxableValue) != 0 && fval(b.TaxableValue) != 0},
	}

	var total, weight float64
	for _, f := range facets {
		if !f.usable {
			continue
		}
		total += f.weight * f.score
		weight += f.weight
	}
	if weight == 0 {
		return 0
	}
	return total / weight
}

func boolScore(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// lineItemPairSimilarity scores a pair for the product-line rule: a fixed
// blend of description, HSN equality, quantity and rate.
func lineItemPairSimilarity(a, b *domain.LineItem) float64 {
	desc := textSimilarity(a.Description, b.Description)
	hsn := boolScore(a.HSNCode != "" && strings.EqualFold(strings.TrimSpace(a.HSNCode), strings.TrimSpace(b.HSNCode)))
	qty := numericSimilarity(fval(a.Quantity), fval(b.Quantity))
	rate := numericSimilarity(effectiveRate(a), effectiveRate(b))
	return desc*0.3 + hsn*0.3 + qty*0.2 + rate*0.2
}
