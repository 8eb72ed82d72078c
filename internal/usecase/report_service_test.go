package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	draftmock "github.com/riskibarqy/draft-league-stats/internal/mocks/domain/draft"
	idgen "github.com/riskibarqy/draft-league-stats/internal/platform/id"
)

type stubRenderer struct {
	mu        sync.Mutex
	failPair  string
	summaries []LeagueSummary
}

func (r *stubRenderer) RenderLineChart(_ context.Context, m Matchup) (string, error) {
	if m.PlayerA+"_"+m.PlayerB == r.failPair {
		return "", errors.New("disk full")
	}
	return m.PlayerA + "_vs_" + m.PlayerB + "_line.png", nil
}

func (r *stubRenderer) RenderBarChart(_ context.Context, m Matchup) (string, error) {
	return m.PlayerA + "_vs_" + m.PlayerB + "_bar.png", nil
}

func (r *stubRenderer) RenderLeagueStats(_ context.Context, s LeagueSummary) ([]string, error) {
	r.mu.Lock()
	r.summaries = append(r.summaries, s)
	r.mu.Unlock()
	return []string{"boxplot.png", "average_scores.png"}, nil
}

type stubSummaryWriter struct {
	reports []Report
}

func (w *stubSummaryWriter) WriteSummary(_ context.Context, report Report) (string, error) {
	w.reports = append(w.reports, report)
	return "summary.yaml", nil
}

func newReportFixture(t *testing.T, renderer Renderer, summary SummaryWriter) (*draftmock.Provider, *ReportService, *[]string) {
	t.Helper()

	provider := draftmock.NewProvider(t)
	provider.On("LeagueDetails", mock.Anything, testLeagueID).Return(testEntries(), nil).Once()

	directory := NewDirectoryService(provider, testLeagueID, nil)
	history := NewHistoryService(provider, directory, nil)
	headToHead := NewHeadToHeadService(history, directory, false, nil)
	stats := NewLeagueStatsService(history, nil)

	var matchupsSeen []string
	service := NewReportService(directory, headToHead, stats, renderer, summary, ReportConfig{
		RenderWorkers: 2,
		OnMatchup: func(m Matchup) {
			matchupsSeen = append(matchupsSeen, m.PlayerA+" vs "+m.PlayerB)
		},
	}, nil)
	service.ids = idgen.Static("run-1")
	service.now = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.FixedZone("BST", 3600)) }
	return provider, service, &matchupsSeen
}

func TestReportService_Generate(t *testing.T) {
	t.Parallel()

	renderer := &stubRenderer{failPair: "Alan_Colin"}
	summary := &stubSummaryWriter{}
	provider, service, seen := newReportFixture(t, renderer, summary)
	provider.On("EntryHistory", mock.Anything, int64(11111)).Return(historyOf(58, 61, 46), nil)
	provider.On("EntryHistory", mock.Anything, int64(22221)).Return(historyOf(10, 70, 46), nil)
	provider.On("EntryHistory", mock.Anything, int64(33331)).Return(historyOf(40, 40, 40), nil)

	report, err := service.Generate(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "run-1", report.RunID)
	assert.Equal(t, testLeagueID, report.LeagueID)
	assert.True(t, report.GeneratedAt.Equal(time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, report.GeneratedAt.Location())
	assert.Equal(t, []string{"Alan", "Bob", "Colin"}, report.Players)
	require.Len(t, report.Matchups, 3)
	assert.Equal(t, map[string]int{"Alan": 1, "Bob": 1, "draw": 1}, report.Matchups[0].Tally.Map())
	assert.Equal(t, []string{"Alan vs Bob", "Alan vs Colin", "Bob vs Colin"}, *seen)

	assert.Equal(t, 40, report.Summary.Average["Colin"])
	assert.Equal(t, 70, report.Summary.Max["Bob"])
	assert.Equal(t, 46, report.Summary.Min["Alan"])
	require.Len(t, renderer.summaries, 1)

	assert.Contains(t, report.Files, "Alan_vs_Bob_line.png")
	assert.Contains(t, report.Files, "Bob_vs_Colin_bar.png")
	assert.Contains(t, report.Files, "boxplot.png")
	assert.NotContains(t, report.Files, "Alan_vs_Colin_line.png")
	assert.Equal(t, "summary.yaml", report.Files[len(report.Files)-1])

	require.Len(t, report.Failures, 1)
	assert.Equal(t, FailureStageRender, report.Failures[0].Stage)
	assert.Equal(t, "Alan vs Colin line", report.Failures[0].Subject)

	require.Len(t, summary.reports, 1)
	assert.Equal(t, report.RunID, summary.reports[0].RunID)
}

func TestReportService_Generate_StatsFailureAborts(t *testing.T) {
	t.Parallel()

	provider, service, _ := newReportFixture(t, &stubRenderer{}, nil)
	calls := 0
	provider.On("EntryHistory", mock.Anything, int64(11111)).Return(historyOf(1, 2), nil)
	provider.On("EntryHistory", mock.Anything, int64(33331)).Return(historyOf(2, 1), nil)
	provider.On("EntryHistory", mock.Anything, int64(22221)).
		Run(func(mock.Arguments) { calls++ }).
		Return(nil, &HTTPError{StatusCode: 500})

	_, err := service.Generate(context.Background())
	// Bob's history is also needed by the league statistics, which abort.
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, 3, calls)
}
