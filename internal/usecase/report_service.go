package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel/attribute"

	idgen "github.com/riskibarqy/draft-league-stats/internal/platform/id"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
)

const defaultRenderWorkers = 4

// Renderer turns aggregated data into chart files and returns what it wrote.
type Renderer interface {
	RenderLineChart(ctx context.Context, matchup Matchup) (string, error)
	RenderBarChart(ctx context.Context, matchup Matchup) (string, error)
	RenderLeagueStats(ctx context.Context, summary LeagueSummary) ([]string, error)
}

// SummaryWriter persists the report document.
type SummaryWriter interface {
	WriteSummary(ctx context.Context, report Report) (string, error)
}

type FailureStage string

const (
	FailureStageHeadToHead FailureStage = "head_to_head"
	FailureStageRender     FailureStage = "render"
)

type ReportFailure struct {
	Stage   FailureStage
	Subject string
	Err     error
}

type Report struct {
	RunID       string
	LeagueID    int64
	GeneratedAt time.Time
	Players     []string
	Matchups    []Matchup
	Summary     LeagueSummary
	Files       []string
	Failures    []ReportFailure
}

type ReportConfig struct {
	RenderWorkers int
	// OnMatchup is called after each successful pairing, in pairing order.
	OnMatchup func(Matchup)
}

// ReportService generates head to head charts for every pairing and the
// league statistic charts. API calls happen sequentially; rendering is
// spread over a worker pool once all data is in.
type ReportService struct {
	directory  *DirectoryService
	headToHead *HeadToHeadService
	stats      *LeagueStatsService
	renderer   Renderer
	summary    SummaryWriter
	cfg        ReportConfig
	logger     *logging.Logger
	ids        idgen.Generator
	now        func() time.Time
}

func NewReportService(
	directory *DirectoryService,
	headToHead *HeadToHeadService,
	stats *LeagueStatsService,
	renderer Renderer,
	summary SummaryWriter,
	cfg ReportConfig,
	logger *logging.Logger,
) *ReportService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RenderWorkers <= 0 {
		cfg.RenderWorkers = defaultRenderWorkers
	}
	return &ReportService{
		directory:  directory,
		headToHead: headToHead,
		stats:      stats,
		renderer:   renderer,
		summary:    summary,
		cfg:        cfg,
		logger:     logger,
		ids:        idgen.NewUUIDGenerator(),
		now:        time.Now,
	}
}

func (s *ReportService) Generate(ctx context.Context) (_ Report, err error) {
	runID, err := s.ids.NewID()
	if err != nil {
		return Report{}, fmt.Errorf("generate run id: %w", err)
	}
	report := Report{
		RunID:       runID,
		LeagueID:    s.directory.LeagueID(),
		GeneratedAt: s.now().UTC(),
	}

	ctx, span := startUsecaseSpan(ctx, "usecase.ReportService.Generate",
		attribute.Int64("league_id", report.LeagueID),
		attribute.String("run_id", report.RunID),
	)
	defer func() { endUsecaseSpan(span, err) }()

	logger := s.logger.With("run_id", report.RunID, "league_id", report.LeagueID)

	report.Players, err = s.directory.Names(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("resolve players: %w", err)
	}
	logger.InfoContext(ctx, "report started", "players", len(report.Players), "pairings", len(Pairings(report.Players)))

	matchups, pairFailures, err := s.headToHead.AllMatchups(ctx, s.cfg.OnMatchup)
	if err != nil {
		return Report{}, fmt.Errorf("head to head: %w", err)
	}
	report.Matchups = matchups
	for _, failure := range pairFailures {
		report.Failures = append(report.Failures, ReportFailure{
			Stage:   FailureStageHeadToHead,
			Subject: failure.PlayerA + " vs " + failure.PlayerB,
			Err:     failure.Err,
		})
	}

	report.Summary, err = s.stats.Compute(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("league stats: %w", err)
	}

	files, renderFailures, err := s.render(ctx, report)
	if err != nil {
		return Report{}, err
	}
	report.Files = files
	report.Failures = append(report.Failures, renderFailures...)

	if s.summary != nil {
		path, err := s.summary.WriteSummary(ctx, report)
		if err != nil {
			return Report{}, fmt.Errorf("write summary: %w", err)
		}
		report.Files = append(report.Files, path)
	}

	logger.InfoContext(ctx, "report finished",
		"matchups", len(report.Matchups),
		"files", len(report.Files),
		"failures", len(report.Failures),
	)
	return report, nil
}

type renderTask struct {
	subject string
	run     func(context.Context) ([]string, error)
}

func (s *ReportService) render(ctx context.Context, report Report) ([]string, []ReportFailure, error) {
	if s.renderer == nil {
		return nil, nil, nil
	}

	tasks := make([]renderTask, 0, len(report.Matchups)*2+1)
	for _, matchup := range report.Matchups {
		matchup := matchup
		subject := matchup.PlayerA + " vs " + matchup.PlayerB
		tasks = append(tasks,
			renderTask{subject: subject + " line", run: func(ctx context.Context) ([]string, error) {
				path, err := s.renderer.RenderLineChart(ctx, matchup)
				return []string{path}, err
			}},
			renderTask{subject: subject + " bar", run: func(ctx context.Context) ([]string, error) {
				path, err := s.renderer.RenderBarChart(ctx, matchup)
				return []string{path}, err
			}},
		)
	}
	tasks = append(tasks, renderTask{subject: "league stats", run: func(ctx context.Context) ([]string, error) {
		return s.renderer.RenderLeagueStats(ctx, report.Summary)
	}})

	pool, err := ants.NewPool(s.cfg.RenderWorkers)
	if err != nil {
		return nil, nil, fmt.Errorf("create render pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		files    []string
		failures []ReportFailure
		workers  sync.WaitGroup
	)
	for _, task := range tasks {
		task := task
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			paths, err := task.run(ctx)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.WarnContext(ctx, "render failed", "subject", task.subject, "error", err)
				failures = append(failures, ReportFailure{Stage: FailureStageRender, Subject: task.subject, Err: err})
				return
			}
			files = append(files, paths...)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, nil, fmt.Errorf("submit render task: %w", err)
		}
	}
	workers.Wait()

	sort.Strings(files)
	sort.SliceStable(failures, func(i, j int) bool { return failures[i].Subject < failures[j].Subject })
	return files, failures, nil
}
