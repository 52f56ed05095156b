// Command engine runs the invoice consistency and duplication analyses.
// With -invoice it analyzes a single invoice; without it, every stored
// invoice. Reports are printed to stdout as JSON.
// Usage: go run ./cmd/engine [-invoice <uuid>]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"invaudit/internal/arithmetic"
	"invaudit/internal/config"
	"invaudit/internal/dedup"
	"invaudit/internal/repository/postgres"
	"invaudit/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var invoiceFlag string
	flag.StringVar(&invoiceFlag, "invoice", "", "analyze a single invoice by id")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	invoiceRepo := postgres.NewInvoiceRepo(db)
	candidateRepo := postgres.NewCandidateRepo(db)

	validator := arithmetic.NewValidator(cfg.Engine)
	detector := dedup.NewDetector(invoiceRepo, candidateRepo, cfg.Engine, logger)
	svc := service.NewAnalysisService(invoiceRepo, validator, detector, logger)

	ctx := context.Background()
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	if invoiceFlag != "" {
		id, err := uuid.Parse(invoiceFlag)
		if err != nil {
			return fmt.Errorf("invalid invoice id %q: %w", invoiceFlag, err)
		}
		rep, err := svc.Analyze(ctx, id)
		if err != nil {
			return err
		}
		return enc.Encode(rep)
	}

	reports, err := svc.AnalyzeAll(ctx)
	if err != nil {
		return err
	}
	logger.Info("batch analysis complete", zap.Int("invoices", len(reports)))
	return enc.Encode(reports)
}

func newLogger(cfg config.LogConfig) (*zap.Logger, error) {
	if cfg.Environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
