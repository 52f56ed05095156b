package dedup

import (
	"time"

	"github.com/google/uuid"

	"invaudit/internal/domain"
)

// Match is one retained candidate with the rule that best explained it.
type Match struct {
	InvoiceID       uuid.UUID             `json:"invoice_id"`
	InvoiceNumber   string                `json:"invoice_number"`
	SupplierName    string                `json:"supplier_name"`
	InvoiceDate     *time.Time            `json:"invoice_date"`
	TotalValue      *float64              `json:"total_value"`
	MatchType       domain.MatchType      `json:"match_type"`
	ConfidenceScore float64               `json:"confidence_score"`
	MatchingFields  []string              `json:"matching_fields"`
	Evidence        map[string]string     `json:"evidence"`
	Recommendation  domain.Recommendation `json:"recommendation"`
}

// AnalysisResult is the invoice-level outcome of a duplication analysis.
type AnalysisResult struct {
	InvoiceID         uuid.UUID                `json:"invoice_id"`
	IsDuplicate       bool                     `json:"is_duplicate"`
	ConfidenceScore   float64                  `json:"confidence_score"`
	RecommendedAction domain.RecommendedAction `json:"recommended_action"`
	Matches           []Match                  `json:"matches"`
	AnalysisSummary   string                   `json:"analysis_summary"`
	Error             string                   `json:"error,omitempty"`
}

func recommendationFor(score float64) domain.Recommendation {
	switch {
	case score >= 0.85:
		return domain.RecommendHighConfidenceDuplicate
	case score >= 0.70:
		return domain.RecommendLikelyDuplicateReview
	case score >= 0.50:
		return domain.RecommendPossibleDuplicate
	default:
		return domain.RecommendNotADuplicate
	}
}
