package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/draft-league-stats/internal/app"
	"github.com/riskibarqy/draft-league-stats/internal/config"
	"github.com/riskibarqy/draft-league-stats/internal/observability"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Parse(os.Args[1:], os.Stderr)
	if errors.Is(err, config.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		return 2
	}

	logger := logging.New(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return 1
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("shutdown uptrace", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(cfg, logger, os.Stdout)
	if err != nil {
		logger.Error("build app", "error", err)
		return 1
	}

	report, err := runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Warn("report interrupted")
		} else {
			logger.Error("generate report", "league_id", cfg.LeagueID, "error", err)
		}
		return 1
	}

	logger.Info("report written",
		"run_id", report.RunID,
		"output_dir", cfg.OutputDir,
		"files", len(report.Files),
		"failures", len(report.Failures),
	)
	return 0
}
