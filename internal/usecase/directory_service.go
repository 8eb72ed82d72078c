package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/platform/cache"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
)

// DirectoryService resolves player names to entry ids. Directories are
// fetched once per league and kept for the life of the service.
type DirectoryService struct {
	provider draft.Provider
	leagueID int64
	cache    *cache.Store[draft.Directory]
	logger   *logging.Logger
}

func NewDirectoryService(provider draft.Provider, leagueID int64, logger *logging.Logger) *DirectoryService {
	if logger == nil {
		logger = logging.Default()
	}
	return &DirectoryService{
		provider: provider,
		leagueID: leagueID,
		cache:    cache.NewSessionStore[draft.Directory](),
		logger:   logger,
	}
}

func (s *DirectoryService) LeagueID() int64 {
	return s.leagueID
}

// Resolve returns the directory of the session's league.
func (s *DirectoryService) Resolve(ctx context.Context) (draft.Directory, error) {
	return s.ResolveLeague(ctx, s.leagueID)
}

func (s *DirectoryService) ResolveLeague(ctx context.Context, leagueID int64) (draft.Directory, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be greater than zero", ErrInvalidInput)
	}

	key := "league:" + strconv.FormatInt(leagueID, 10)
	return s.cache.GetOrLoad(ctx, key, func(ctx context.Context) (_ draft.Directory, err error) {
		ctx, span := startUsecaseSpan(ctx, "usecase.DirectoryService.ResolveLeague", attribute.Int64("league_id", leagueID))
		defer func() { endUsecaseSpan(span, err) }()

		entries, err := s.provider.LeagueDetails(ctx, leagueID)
		if err != nil {
			return nil, fmt.Errorf("resolve directory: %w", err)
		}

		directory := draft.BuildDirectory(entries)
		if len(directory) < len(entries) {
			s.logger.WarnContext(ctx, "duplicate player first names in league, keeping last entry",
				"league_id", leagueID,
				"entries", len(entries),
				"names", len(directory),
			)
		}
		s.logger.DebugContext(ctx, "player directory resolved", "league_id", leagueID, "players", len(directory))
		return directory, nil
	})
}

// EntryID looks up one player in the session's league.
func (s *DirectoryService) EntryID(ctx context.Context, name string) (int64, error) {
	directory, err := s.Resolve(ctx)
	if err != nil {
		return 0, err
	}

	entryID, ok := directory[name]
	if !ok {
		entryID, ok = directory[strings.TrimSpace(name)]
	}
	if !ok {
		return 0, fmt.Errorf("%w: %q in league %d", ErrUnknownPlayer, name, s.leagueID)
	}
	return entryID, nil
}

// Names lists the session league's players in ascending order.
func (s *DirectoryService) Names(ctx context.Context) ([]string, error) {
	directory, err := s.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	return directory.Names(), nil
}
