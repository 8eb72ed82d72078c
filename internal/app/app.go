package app

import (
	"context"
	"fmt"
	"io"

	"github.com/riskibarqy/draft-league-stats/external/draftapi"
	"github.com/riskibarqy/draft-league-stats/internal/config"
	"github.com/riskibarqy/draft-league-stats/internal/interfaces/cli"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
	"github.com/riskibarqy/draft-league-stats/internal/render/chart"
	"github.com/riskibarqy/draft-league-stats/internal/render/sink"
	"github.com/riskibarqy/draft-league-stats/internal/render/summary"
	"github.com/riskibarqy/draft-league-stats/internal/usecase"
)

// Runner generates one report and prints it.
type Runner struct {
	report  *usecase.ReportService
	printer *cli.Printer
}

func NewRunner(cfg config.Config, logger *logging.Logger, stdout io.Writer) (*Runner, error) {
	client := draftapi.NewClient(draftapi.ClientConfig{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.APITimeout,
		UserAgent: config.ServiceName + "/" + cfg.ServiceVersion,
		Logger:    logger,
	})

	out := sink.NewDirSink(cfg.OutputDir)
	renderer, err := chart.NewRenderer(out, chart.Options{
		Format: chart.Format(cfg.ChartFormat),
		Width:  cfg.ChartWidth,
		Height: cfg.ChartHeight,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("build chart renderer: %w", err)
	}

	directory := usecase.NewDirectoryService(client, cfg.LeagueID, logger)
	history := usecase.NewHistoryService(client, directory, logger)
	headToHead := usecase.NewHeadToHeadService(history, directory, cfg.HeadToHeadStrict, logger)
	stats := usecase.NewLeagueStatsService(history, logger)

	printer := cli.NewPrinter(stdout)
	report := usecase.NewReportService(
		directory,
		headToHead,
		stats,
		renderer,
		summary.NewWriter(out),
		usecase.ReportConfig{
			RenderWorkers: cfg.RenderWorkers,
			OnMatchup:     printer.Matchup,
		},
		logger,
	)

	return &Runner{report: report, printer: printer}, nil
}

func (r *Runner) Run(ctx context.Context) (usecase.Report, error) {
	report, err := r.report.Generate(ctx)
	if err != nil {
		return usecase.Report{}, err
	}
	r.printer.Report(report)
	return report, nil
}
