package arithmetic

import "github.com/google/uuid"

// Result is the outcome of a single arithmetic test against one record.
// A suggestion result means the test could not run for lack of data; it is
// reported as informational and always carries Passed=true so downstream
// summaries never count missing data as a failure.
type Result struct {
	TestName          string    `json:"test_name"`
	Description       string    `json:"description"`
	Expected          float64   `json:"expected"`
	Actual            float64   `json:"actual"`
	Passed            bool      `json:"passed"`
	Tolerance         float64   `json:"tolerance"`
	ErrorMessage      string    `json:"error_message"`
	IsSuggestion      bool      `json:"is_suggestion"`
	SuggestionMessage string    `json:"suggestion_message"`
	Evidence          *Evidence `json:"evidence,omitempty"`
}

// Evidence points a result back at the stored record it was computed from,
// for audit and UI drill-down.
type Evidence struct {
	Table        string            `json:"table"`
	RecordID     string            `json:"record_id"`
	StoredValues map[string]string `json:"stored_values,omitempty"`
	Calculation  string            `json:"calculation,omitempty"`
}

// Report aggregates every result of one validation run. TestsRun counts
// evaluated (non-suggestion) results only. OverallPassed holds iff no
// non-tax test failed; tax failures are reported but isolated from the
// verdict because tax-rate extraction is the least reliable upstream signal.
type Report struct {
	InvoiceID         uuid.UUID `json:"invoice_id"`
	TestsRun          int       `json:"tests_run"`
	TestsPassed       int       `json:"tests_passed"`
	TestsFailed       int       `json:"tests_failed"`
	TaxTestsFailed    int       `json:"tax_tests_failed"`
	NonTaxTestsFailed int       `json:"non_tax_tests_failed"`
	SuggestionsCount  int       `json:"suggestions_count"`
	OverallPassed     bool      `json:"overall_passed"`
	Results           []Result  `json:"results"`
	Error             string    `json:"error,omitempty"`
}
