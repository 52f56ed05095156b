package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"invaudit/internal/domain"
)

func fp(v float64) *float64 { return &v }

func TestTextSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, textSimilarity("Steel Rods 12mm", "steel rods 12mm"))
	assert.Equal(t, 1.0, textSimilarity("  Widget  ", "widget"))
	assert.Equal(t, 0.0, textSimilarity("", "widget"))
	assert.Equal(t, 0.0, textSimilarity("widget", ""))

	sim := textSimilarity("Steel Rods 12mm", "Steel Rod 12mm")
	assert.Greater(t, sim, 0.9)
	assert.Less(t, sim, 1.0)
}

func TestNumericSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, numericSimilarity(100, 100))
	assert.Equal(t, 1.0, numericSimilarity(0, 0))
	assert.Equal(t, 0.0, numericSimilarity(0, 100))
	assert.Equal(t, 0.0, numericSimilarity(100, 0))

	// 2% apart: inside the 5% band, credit decays linearly.
	assert.InDelta(t, 0.6, numericSimilarity(100, 98), 1e-9)

	// 10% apart: outside the band entirely.
	assert.Equal(t, 0.0, numericSimilarity(100, 90))
}

func TestJaccard(t *testing.T) {
	assert.Equal(t, 1.0, jaccard([]string{"7214", "7215"}, []string{"7215", "7214"}))
	assert.Equal(t, 0.0, jaccard([]string{"7214"}, []string{"9999"}))
	assert.Equal(t, 0.0, jaccard(nil, []string{"7214"}))
	assert.InDelta(t, 1.0/3.0, jaccard([]string{"7214", "7215"}, []string{"7214", "9999"}), 1e-9)
}

func TestHSNCodes(t *testing.T) {
	items := []domain.LineItem{
		{HSNCode: "7214"},
		{HSNCode: " 7214 "},
		{HSNCode: ""},
		{HSNCode: "7215"},
	}
	assert.Equal(t, []string{"7214", "7215"}, hsnCodes(items))
}

func TestEffectiveRate(t *testing.T) {
	split := domain.LineItem{SGSTRate: fp(9), CGSTRate: fp(9)}
	assert.InDelta(t, 18, effectiveRate(&split), 1e-9)

	igst := domain.LineItem{IGSTRate: fp(18)}
	assert.InDelta(t, 18, effectiveRate(&igst), 1e-9)

	general := domain.LineItem{GSTRate: fp(18)}
	assert.InDelta(t, 18, effectiveRate(&general), 1e-9)
}

func TestItemSimilarity_RenormalizesOverAvailableFacets(t *testing.T) {
	a := domain.LineItem{Description: "Steel Rods 12mm", HSNCode: "7214"}
	b := domain.LineItem{Description: "Steel Rods 12mm", HSNCode: "7214"}
	assert.InDelta(t, 1.0, itemSimilarity(&a, &b), 1e-9)

	// No usable facets at all.
	empty := domain.LineItem{}
	assert.Equal(t, 0.0, itemSimilarity(&empty, &empty))
}
