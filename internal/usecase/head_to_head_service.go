package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
)

// Matchup is a head-to-head comparison ready for rendering.
type Matchup struct {
	PlayerA string
	PlayerB string
	PointsA map[int]int
	PointsB map[int]int
	Tally   draft.HeadToHeadTally
}

// PairFailure records a pairing that could not be compared.
type PairFailure struct {
	PlayerA string
	PlayerB string
	Err     error
}

type HeadToHeadService struct {
	history   *HistoryService
	directory *DirectoryService
	strict    bool
	logger    *logging.Logger
}

// NewHeadToHeadService builds the comparator. With strict set, pairings whose
// histories differ in length fail with draft.ErrLengthMismatch instead of
// being truncated to the shorter one.
func NewHeadToHeadService(history *HistoryService, directory *DirectoryService, strict bool, logger *logging.Logger) *HeadToHeadService {
	if logger == nil {
		logger = logging.Default()
	}
	return &HeadToHeadService{
		history:   history,
		directory: directory,
		strict:    strict,
		logger:    logger,
	}
}

func (s *HeadToHeadService) Compare(ctx context.Context, playerA, playerB string) (_ Matchup, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.HeadToHeadService.Compare",
		attribute.String("player_a", playerA),
		attribute.String("player_b", playerB),
	)
	defer func() { endUsecaseSpan(span, err) }()

	playerA = strings.TrimSpace(playerA)
	playerB = strings.TrimSpace(playerB)
	if playerA == "" || playerB == "" {
		return Matchup{}, fmt.Errorf("%w: two player names are required", ErrInvalidInput)
	}
	if playerA == playerB {
		return Matchup{}, fmt.Errorf("%w: cannot compare %q with itself", ErrInvalidInput, playerA)
	}

	points, err := s.history.FetchPlayersPoints(ctx, []string{playerA, playerB}, draft.FormatIndexed)
	if err != nil {
		return Matchup{}, fmt.Errorf("head to head %s vs %s: %w", playerA, playerB, err)
	}

	pointsA := points[playerA].Indexed
	pointsB := points[playerB].Indexed

	var tally draft.HeadToHeadTally
	if s.strict {
		tally, err = draft.CompareStrict(playerA, pointsA, playerB, pointsB)
		if err != nil {
			return Matchup{}, err
		}
	} else {
		if len(pointsA) != len(pointsB) {
			s.logger.WarnContext(ctx, "gameweek histories differ in length, comparing shared gameweeks only",
				"player_a", playerA, "gameweeks_a", len(pointsA),
				"player_b", playerB, "gameweeks_b", len(pointsB),
			)
		}
		tally = draft.Compare(playerA, pointsA, playerB, pointsB)
	}

	return Matchup{
		PlayerA: playerA,
		PlayerB: playerB,
		PointsA: pointsA,
		PointsB: pointsB,
		Tally:   tally,
	}, nil
}

// AllMatchups compares every pairing of the league's players, one pairing at
// a time. A failed pairing is reported and the loop moves on; only directory
// and context failures stop it. onMatchup may be nil.
func (s *HeadToHeadService) AllMatchups(ctx context.Context, onMatchup func(Matchup)) ([]Matchup, []PairFailure, error) {
	names, err := s.directory.Names(ctx)
	if err != nil {
		return nil, nil, err
	}

	pairs := Pairings(names)
	matchups := make([]Matchup, 0, len(pairs))
	var failures []PairFailure
	for _, pair := range pairs {
		if err := ctx.Err(); err != nil {
			return matchups, failures, err
		}

		matchup, err := s.Compare(ctx, pair[0], pair[1])
		if err != nil {
			if ctx.Err() != nil {
				return matchups, failures, ctx.Err()
			}
			s.logger.WarnContext(ctx, "head to head failed, continuing with next pairing",
				"player_a", pair[0],
				"player_b", pair[1],
				"error", err,
			)
			failures = append(failures, PairFailure{PlayerA: pair[0], PlayerB: pair[1], Err: err})
			continue
		}

		if onMatchup != nil {
			onMatchup(matchup)
		}
		matchups = append(matchups, matchup)
	}
	return matchups, failures, nil
}

// Pairings returns every 2-combination of names preserving input order.
func Pairings(names []string) [][2]string {
	if len(names) < 2 {
		return nil
	}
	out := make([][2]string, 0, len(names)*(len(names)-1)/2)
	for i := 0; i < len(names); i++ {
		for j := i + 1; j < len(names); j++ {
			out = append(out, [2]string{names[i], names[j]})
		}
	}
	return out
}
