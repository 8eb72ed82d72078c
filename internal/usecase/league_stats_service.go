package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
)

// LeagueSummary is everything the boxplot and statistic charts need.
type LeagueSummary struct {
	Points  map[string][]int
	Min     draft.LeagueStatistic
	Max     draft.LeagueStatistic
	Average draft.LeagueStatistic
}

// Statistic returns the summary value for reducer.
func (s LeagueSummary) Statistic(reducer draft.Reducer) draft.LeagueStatistic {
	switch reducer {
	case draft.ReducerMin:
		return s.Min
	case draft.ReducerMax:
		return s.Max
	case draft.ReducerAverage:
		return s.Average
	default:
		return nil
	}
}

type LeagueStatsService struct {
	history *HistoryService
	logger  *logging.Logger
}

func NewLeagueStatsService(history *HistoryService, logger *logging.Logger) *LeagueStatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueStatsService{history: history, logger: logger}
}

// Statistic fetches every player's points and applies reducer.
func (s *LeagueStatsService) Statistic(ctx context.Context, reducer draft.Reducer) (draft.LeagueStatistic, error) {
	points, err := s.leaguePoints(ctx)
	if err != nil {
		return nil, err
	}
	return draft.Statistic(points, reducer)
}

// Compute fetches every player's points once and derives min, max and
// average. Any player without a recorded gameweek fails the whole summary.
func (s *LeagueStatsService) Compute(ctx context.Context) (_ LeagueSummary, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueStatsService.Compute")
	defer func() { endUsecaseSpan(span, err) }()

	points, err := s.leaguePoints(ctx)
	if err != nil {
		return LeagueSummary{}, err
	}
	span.SetAttributes(attribute.Int("players", len(points)))

	summary := LeagueSummary{Points: points}
	// average first so an empty history surfaces as draft.ErrDivisionByZero
	for _, reducer := range []draft.Reducer{draft.ReducerAverage, draft.ReducerMax, draft.ReducerMin} {
		stat, err := draft.Statistic(points, reducer)
		if err != nil {
			return LeagueSummary{}, fmt.Errorf("league statistic: %w", err)
		}
		switch reducer {
		case draft.ReducerMin:
			summary.Min = stat
		case draft.ReducerMax:
			summary.Max = stat
		case draft.ReducerAverage:
			summary.Average = stat
		}
	}
	return summary, nil
}

func (s *LeagueStatsService) leaguePoints(ctx context.Context) (map[string][]int, error) {
	byName, err := s.history.FetchLeaguePoints(ctx, draft.FormatSequence)
	if err != nil {
		return nil, fmt.Errorf("fetch league points: %w", err)
	}

	out := make(map[string][]int, len(byName))
	for name, points := range byName {
		out[name] = points.Sequence
	}
	return out, nil
}
