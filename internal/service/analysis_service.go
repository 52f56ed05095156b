package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invaudit/internal/arithmetic"
	"invaudit/internal/dedup"
	"invaudit/internal/domain"
	"invaudit/internal/port"
)

// AnalysisReport bundles the two analyses run for one invoice.
type AnalysisReport struct {
	InvoiceID   uuid.UUID             `json:"invoice_id"`
	Arithmetic  *arithmetic.Report    `json:"arithmetic"`
	Duplication *dedup.AnalysisResult `json:"duplication"`
}

// AnalysisService orchestrates arithmetic validation and duplication
// detection and writes the two outcome flags back to the invoice.
type AnalysisService interface {
	Analyze(ctx context.Context, invoiceID uuid.UUID) (*AnalysisReport, error)
	AnalyzeAll(ctx context.Context) ([]AnalysisReport, error)
}

type analysisService struct {
	repo      port.InvoiceRepository
	validator *arithmetic.Validator
	detector  *dedup.Detector
	log       *zap.Logger
}

// NewAnalysisService creates a new AnalysisService implementation.
func NewAnalysisService(repo port.InvoiceRepository, validator *arithmetic.Validator, detector *dedup.Detector, log *zap.Logger) AnalysisService {
	return &analysisService{repo: repo, validator: validator, detector: detector, log: log}
}

func (s *analysisService) Analyze(ctx context.Context, invoiceID uuid.UUID) (*AnalysisReport, error) {
	inv, err := s.repo.GetByID(ctx, invoiceID)
	if errors.Is(err, domain.ErrInvoiceNotFound) {
		dup, derr := s.detector.Analyze(ctx, invoiceID)
		if derr != nil {
			return nil, fmt.Errorf("service.Analyze: %w", derr)
		}
		return &AnalysisReport{
			InvoiceID:   invoiceID,
			Arithmetic:  &arithmetic.Report{InvoiceID: invoiceID, Error: "invoice not found"},
			Duplication: dup,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service.Analyze: %w", err)
	}

	items, err := s.repo.ListLineItems(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("service.Analyze: %w", err)
	}

	arith := s.validator.Validate(inv, items)
	if err := s.repo.SetValidated(ctx, invoiceID, arith.OverallPassed); err != nil {
		return nil, fmt.Errorf("service.Analyze: %w", err)
	}

	dup, err := s.detector.Analyze(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("service.Analyze: %w", err)
	}
	if err := s.repo.SetDuplicate(ctx, invoiceID, dup.IsDuplicate); err != nil {
		return nil, fmt.Errorf("service.Analyze: %w", err)
	}

	s.log.Info("invoice analyzed",
		zap.String("invoice_id", invoiceID.String()),
		zap.Bool("validated", arith.OverallPassed),
		zap.Int("tests_failed", arith.TestsFailed),
		zap.Int("suggestions", arith.SuggestionsCount),
		zap.Bool("is_duplicate", dup.IsDuplicate),
		zap.Float64("duplicate_confidence", dup.ConfidenceScore))

	return &AnalysisReport{InvoiceID: invoiceID, Arithmetic: arith, Duplication: dup}, nil
}

// AnalyzeAll runs the analysis for every stored invoice. A failure on one
// invoice is logged and skipped so the rest of the batch still completes.
func (s *analysisService) AnalyzeAll(ctx context.Context) ([]AnalysisReport, error) {
	ids, err := s.repo.ListInvoiceIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.AnalyzeAll: %w", err)
	}

	reports := make([]AnalysisReport, 0, len(ids))
	for _, id := range ids {
		rep, err := s.Analyze(ctx, id)
		if err != nil {
			s.log.Error("analysis failed", zap.String("invoice_id", id.String()), zap.Error(err))
			continue
		}
		reports = append(reports, *rep)
	}
	return reports, nil
}
