package dedup

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invaudit/internal/config"
	"invaudit/internal/domain"
	"invaudit/internal/port"
)

// Detector scores an invoice against structurally similar invoices and
// decides whether it duplicates one of them.
type Detector struct {
	repo   port.InvoiceRepository
	finder port.CandidateFinder
	cfg    config.EngineConfig
	log    *zap.Logger
}

func NewDetector(repo port.InvoiceRepository, finder port.CandidateFinder, cfg config.EngineConfig, log *zap.Logger) *Detector {
	return &Detector{repo: repo, finder: finder, cfg: cfg, log: log}
}

// Analyze loads the subject invoice, gathers candidates through the four
// structural queries, scores each one, and aggregates the verdict. A missing
// invoice is an analysis outcome, not an error: the caller gets a result
// asking for the invoice to be verified.
func (d *Detector) Analyze(ctx context.Context, invoiceID uuid.UUID) (*AnalysisResult, error) {
	subject, err := d.repo.GetByID(ctx, invoiceID)
	if errors.Is(err, domain.ErrInvoiceNotFound) {
		return &AnalysisResult{
			InvoiceID:         invoiceID,
			RecommendedAction: domain.ActionVerifyInvoiceExists,
			AnalysisSummary:   "Invoice not found - verify it exists before analysis",
			Error:             "invoice not found",
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dedup.Analyze: %w", err)
	}

	subjectItems, err := d.repo.ListLineItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("dedup.Analyze: %w", err)
	}

	candidates, err := d.gatherCandidates(ctx, subject, subjectItems)
	if err != nil {
		return nil, fmt.Errorf("dedup.Analyze: %w", err)
	}
	d.log.Debug("gathered duplication candidates",
		zap.String("invoice_id", invoiceID.String()),
		zap.Int("candidates", len(candidates)))

	result := &AnalysisResult{InvoiceID: invoiceID}
	for i := range candidates {
		cand := &candidates[i]
		candItems, err := d.repo.ListLineItems(ctx, cand.ID)
		if err != nil {
			return nil, fmt.Errorf("dedup.Analyze: %w", err)
		}
		out, fired := scoreCandidate(subject, subjectItems, cand, candItems, d.cfg)
		if !fired || out.score <= d.cfg.RetentionThreshold {
			continue
		}
		result.Matches = append(result.Matches, Match{
			InvoiceID:       cand.ID,
			InvoiceNumber:   cand.InvoiceNumber,
			SupplierName:    cand.SupplierName,
			InvoiceDate:     cand.InvoiceDate,
			TotalValue:      cand.TotalValue,
			MatchType:       out.matchType,
			ConfidenceScore: out.score,
			MatchingFields:  out.fields,
			Evidence:        out.evidence,
			Recommendation:  recommendationFor(out.score),
		})
	}

	sort.SliceStable(result.Matches, func(i, j int) bool {
		return result.Matches[i].ConfidenceScore > result.Matches[j].ConfidenceScore
	})

	for _, m := range result.Matches {
		if m.ConfidenceScore > result.ConfidenceScore {
			result.ConfidenceScore = m.ConfidenceScore
		}
		if m.ConfidenceScore > d.cfg.DuplicateThreshold {
			result.IsDuplicate = true
		}
	}

	switch {
	case result.IsDuplicate:
		result.RecommendedAction = domain.ActionMarkAsDuplicate
	case len(result.Matches) > 0:
		result.RecommendedAction = domain.ActionManualReviewRequired
	default:
		result.RecommendedAction = domain.ActionApproveAsUnique
	}
	result.AnalysisSummary = summarize(result, len(candidates))
	return result, nil
}

// gatherCandidates unions the four structural queries, deduplicated by
// invoice id in query order. Queries whose inputs are absent on the subject
// are skipped rather than run degenerate.
func (d *Detector) gatherCandidates(ctx context.Context, subject *domain.Invoice, items []domain.LineItem) ([]domain.Invoice, error) {
	var out []domain.Invoice
	seen := map[uuid.UUID]struct{}{subject.ID: {}}
	add := func(invs []domain.Invoice) {
		for _, inv := range invs {
			if _, ok := seen[inv.ID]; ok {
				continue
			}
			seen[inv.ID] = struct{}{}
			out = append(out, inv)
		}
	}

	if subject.InvoiceNumber != "" {
		invs, err := d.finder.FindByInvoiceNumber(ctx, subject.InvoiceNumber, subject.ID)
		if err != nil {
			return nil, err
		}
		add(invs)
	}
	if subject.SupplierID != nil {
		invs, err := d.finder.FindBySupplier(ctx, *subject.SupplierID, subject.ID)
		if err != nil {
			return nil, err
		}
		add(invs)
	}
	if subject.TotalValue != nil && *subject.TotalValue != 0 {
		total := *subject.TotalValue
		window := total * d.cfg.AmountVariance
		invs, err := d.finder.FindByAmountRange(ctx, total-window, total+window, subject.ID, d.cfg.CandidateLimit)
		if err != nil {
			return nil, err
		}
		add(invs)
	}
	if codes := hsnCodes(items); len(codes) > 0 {
		invs, err := d.finder.FindBySharedHSNCodes(ctx, codes, subject.ID, d.cfg.CandidateLimit)
		if err != nil {
			return nil, err
		}
		add(invs)
	}
	return out, nil
}

func summarize(r *AnalysisResult, candidates int) string {
	if len(r.Matches) == 0 {
		return fmt.Sprintf("No duplicates found among %d candidates", candidates)
	}
	top := r.Matches[0]
	if r.IsDuplicate {
		return fmt.Sprintf("Found %d potential duplicates; highest confidence %.2f via %s",
			len(r.Matches), top.ConfidenceScore, top.MatchType)
	}
	return fmt.Sprintf("Found %d low-confidence matches; highest %.2f via %s, below the duplicate threshold",
		len(r.Matches), top.ConfidenceScore, top.MatchType)
}
