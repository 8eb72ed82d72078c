package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	draftmock "github.com/riskibarqy/draft-league-stats/internal/mocks/domain/draft"
)

func newLeagueStatsFixture(t *testing.T, entries []draft.LeagueEntry) (*draftmock.Provider, *LeagueStatsService) {
	t.Helper()

	provider := draftmock.NewProvider(t)
	provider.On("LeagueDetails", mock.Anything, testLeagueID).Return(entries, nil).Maybe()

	directory := NewDirectoryService(provider, testLeagueID, nil)
	history := NewHistoryService(provider, directory, nil)
	return provider, NewLeagueStatsService(history, nil)
}

func TestLeagueStatsService_Compute(t *testing.T) {
	t.Parallel()

	provider, service := newLeagueStatsFixture(t, testEntries()[:2])
	provider.On("EntryHistory", mock.Anything, int64(11111)).Return(historyOf(22, 12, 51), nil).Once()
	provider.On("EntryHistory", mock.Anything, int64(22221)).Return(historyOf(33, 58, 11), nil).Once()

	summary, err := service.Compute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, map[string][]int{"Alan": {22, 12, 51}, "Bob": {33, 58, 11}}, summary.Points)
	assert.Equal(t, draft.LeagueStatistic{"Alan": 12, "Bob": 11}, summary.Min)
	assert.Equal(t, draft.LeagueStatistic{"Alan": 51, "Bob": 58}, summary.Max)
	assert.Equal(t, draft.LeagueStatistic{"Alan": 28, "Bob": 34}, summary.Average)
	assert.Equal(t, summary.Max, summary.Statistic(draft.ReducerMax))
	assert.Nil(t, summary.Statistic(draft.Reducer("median")))
}

func TestLeagueStatsService_Statistic(t *testing.T) {
	t.Parallel()

	provider, service := newLeagueStatsFixture(t, testEntries()[:1])
	provider.On("EntryHistory", mock.Anything, int64(11111)).Return(historyOf(22, 12, 51), nil).Once()

	stat, err := service.Statistic(context.Background(), draft.ReducerMin)
	require.NoError(t, err)
	assert.Equal(t, draft.LeagueStatistic{"Alan": 12}, stat)
}

func TestLeagueStatsService_Compute_EmptyHistoryFails(t *testing.T) {
	t.Parallel()

	provider, service := newLeagueStatsFixture(t, testEntries()[:2])
	provider.On("EntryHistory", mock.Anything, int64(11111)).Return(historyOf(22), nil).Once()
	provider.On("EntryHistory", mock.Anything, int64(22221)).Return(draft.GameweekHistory{}, nil).Once()

	_, err := service.Compute(context.Background())
	require.ErrorIs(t, err, draft.ErrDivisionByZero)
}
