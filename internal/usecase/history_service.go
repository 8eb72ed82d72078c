package usecase

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
)

// HistoryService fetches gameweek histories. Histories are never cached;
// every call hits the provider.
type HistoryService struct {
	provider  draft.Provider
	directory *DirectoryService
	logger    *logging.Logger
}

func NewHistoryService(provider draft.Provider, directory *DirectoryService, logger *logging.Logger) *HistoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HistoryService{
		provider:  provider,
		directory: directory,
		logger:    logger,
	}
}

func (s *HistoryService) FetchHistory(ctx context.Context, entryID int64) (_ draft.GameweekHistory, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.FetchHistory", attribute.Int64("entry_id", entryID))
	defer func() { endUsecaseSpan(span, err) }()

	history, err := s.provider.EntryHistory(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("fetch history entry_id=%d: %w", entryID, err)
	}
	return history, nil
}

// FetchPlayerPoints resolves name and reduces its history to format.
func (s *HistoryService) FetchPlayerPoints(ctx context.Context, name string, format draft.PointsFormat) (draft.PlayerPoints, error) {
	entryID, err := s.directory.EntryID(ctx, name)
	if err != nil {
		return draft.PlayerPoints{}, err
	}

	history, err := s.FetchHistory(ctx, entryID)
	if err != nil {
		return draft.PlayerPoints{}, fmt.Errorf("player %q: %w", name, err)
	}

	points, err := draft.ReducePoints(history, format)
	if err != nil {
		return draft.PlayerPoints{}, fmt.Errorf("player %q: %w", name, err)
	}
	return points, nil
}

// FetchPlayersPoints loads every name in order. The first failure aborts
// the batch and no partial result is returned.
func (s *HistoryService) FetchPlayersPoints(ctx context.Context, names []string, format draft.PointsFormat) (_ map[string]draft.PlayerPoints, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HistoryService.FetchPlayersPoints",
		attribute.Int("players", len(names)),
		attribute.String("format", string(format)),
	)
	defer func() { endUsecaseSpan(span, err) }()

	if _, err := draft.ReducePoints(nil, format); err != nil {
		return nil, err
	}

	out := make(map[string]draft.PlayerPoints, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		points, err := s.FetchPlayerPoints(ctx, name, format)
		if err != nil {
			return nil, err
		}
		out[name] = points
		s.logger.DebugContext(ctx, "player points fetched", "player", name, "gameweeks", points.Len())
	}
	return out, nil
}

// FetchLeaguePoints loads every player in the session's league.
func (s *HistoryService) FetchLeaguePoints(ctx context.Context, format draft.PointsFormat) (map[string]draft.PlayerPoints, error) {
	names, err := s.directory.Names(ctx)
	if err != nil {
		return nil, err
	}
	return s.FetchPlayersPoints(ctx, names, format)
}
