package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"egxcli/internal/config"
	"egxcli/internal/exporter"
	"egxcli/internal/infrastructure"
	"egxcli/internal/services"
	"egxcli/internal/validation"
)

type options struct {
	configPath    string
	dir           string
	out           string
	top           int
	symbols       string
	relationships bool
	verbose       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "path to config.yaml (searched for when empty)")
	flag.StringVar(&opts.dir, "dir", "", "base data directory (overrides paths.base_dir)")
	flag.StringVar(&opts.out, "out", "", "output directory for the CSV reports (defaults to the reports directory)")
	flag.IntVar(&opts.top, "top", 0, "number of T+0/T+1 candidates (defaults to analytics.candidate_count)")
	flag.StringVar(&opts.symbols, "symbols", "", "comma separated group pick symbols")
	flag.BoolVar(&opts.relationships, "relationships", false, "also scan the CASE histories for correlated pairs")
	flag.BoolVar(&opts.verbose, "verbose", false, "debug logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.Logging.Output = "console"
	if opts.verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := infrastructure.NewLogger(cfg.Logging, os.Stderr)
	if err != nil {
		slog.Error("Failed to initialize logger", slog.String("error", err.Error()))
		os.Exit(1)
	}

	written, err := run(ctx, cfg, opts, logger)
	if err != nil {
		infrastructure.WithError(logger, err).Error("Report generation failed")
		os.Exit(1)
	}
	for _, path := range written {
		fmt.Println(path)
	}
}

// run computes the session analytics once and writes one CSV per report.
// Signal based reports are skipped when no transaction file exists.
func run(ctx context.Context, cfg *config.Config, opts options, logger *slog.Logger) ([]string, error) {
	if opts.dir != "" {
		cfg.Paths.BaseDir = opts.dir
	}
	paths, err := cfg.Paths.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	if opts.out == "" {
		opts.out = paths.ReportsDir
	}
	ctx = infrastructure.EnsureTraceID(ctx)
	logger = infrastructure.WithComponent(logger, "signals_report")

	validator := validation.NewFileValidator(logger)
	if _, err := validator.ValidateSession(paths, cfg.Paths.IntradayPattern, cfg.Paths.TransactionPattern); err != nil {
		return nil, fmt.Errorf("validate inputs: %w", err)
	}
	if err := validator.ValidateOutputDirectory(opts.out); err != nil {
		return nil, err
	}

	svc := services.NewDefaultSignalService(cfg, paths, services.NewMemoryCache(0), nil, logger)
	writer := exporter.NewCSVWriter(opts.out)

	var written []string
	write := func(name string, t exporter.Table) error {
		path, err := writer.WriteCSV(name, exporter.WriteOptions{Table: t, BOMPrefix: true})
		if err != nil {
			return err
		}
		written = append(written, path)
		return nil
	}

	breakouts, err := svc.Breakouts(ctx)
	if err != nil {
		return nil, err
	}
	if err := write(exporter.BreakoutsFile, exporter.BreakoutsTable(breakouts)); err != nil {
		return nil, err
	}

	rows, err := svc.Signals(ctx)
	switch {
	case errors.Is(err, services.ErrNoSignals):
		logger.WarnContext(ctx, "No transaction file; skipping signal reports",
			slog.String("transaction_dir", paths.TransactionDir))
	case err != nil:
		return nil, err
	default:
		if err := write(exporter.SignalsFile, exporter.SignalsTable(rows)); err != nil {
			return nil, err
		}
		cands, err := svc.Candidates(ctx, opts.top)
		if err != nil {
			return nil, err
		}
		if err := write(exporter.CandidatesFile, exporter.CandidatesTable(cands)); err != nil {
			return nil, err
		}
		if opts.symbols != "" {
			picks, err := svc.GroupPicks(ctx, opts.symbols)
			if err != nil {
				return nil, err
			}
			if err := write(exporter.GroupPicksFile, exporter.GroupPicksTable(picks)); err != nil {
				return nil, err
			}
		}
	}

	if opts.relationships {
		pairs, err := svc.Relationships(ctx, svc.CorrelationParams())
		if err != nil {
			return nil, err
		}
		if err := write(exporter.RelationshipsFile, exporter.RelationshipsTable(pairs)); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "Reports written", slog.Int("files", len(written)), slog.String("dir", opts.out))
	return written, nil
}
