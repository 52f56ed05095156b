package domain

// MatchType tags the rule that best explained a duplicate candidate.
type MatchType string

const (
	MatchExactNumberSameCompany MatchType = "EXACT_INVOICE_NUMBER_SAME_COMPANY"
	MatchSameCompanyProduct     MatchType = "SAME_COMPANY_PRODUCT_DUPLICATION"
	MatchSameSupplierAmountDate MatchType = "SAME_SUPPLIER_AMOUNT_DATE"
	MatchProductLineDuplication MatchType = "PRODUCT_LINE_DUPLICATION"
	MatchHSNPattern             MatchType = "HSN_PATTERN_MATCH"
	MatchRatePattern            MatchType = "RATE_PATTERN_MATCH"
	MatchNone                   MatchType = "NO_MATCH"
)

// Recommendation is the confidence-tier label attached to a single match.
type Recommendation string

const (
	RecommendHighConfidenceDuplicate Recommendation = "HIGH_CONFIDENCE_DUPLICATE"
	RecommendLikelyDuplicateReview   Recommendation = "LIKELY_DUPLICATE_REVIEW_REQUIRED"
	RecommendPossibleDuplicate       Recommendation = "POSSIBLE_DUPLICATE_INVESTIGATE"
	RecommendNotADuplicate           Recommendation = "NOT_A_DUPLICATE"
)

// RecommendedAction is the invoice-level outcome of a duplication analysis.
type RecommendedAction string

const (
	ActionMarkAsDuplicate      RecommendedAction = "MARK_AS_DUPLICATE"
	ActionManualReviewRequired RecommendedAction = "MANUAL_REVIEW_REQUIRED"
	ActionApproveAsUnique      RecommendedAction = "APPROVE_AS_UNIQUE"
	ActionVerifyInvoiceExists  RecommendedAction = "VERIFY_INVOICE_EXISTS"
)
