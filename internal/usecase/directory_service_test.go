package usecase

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	draftmock "github.com/riskibarqy/draft-league-stats/internal/mocks/domain/draft"
)

const testLeagueID int64 = 4242

func testEntries() []draft.LeagueEntry {
	return []draft.LeagueEntry{
		{FirstName: "Alan", EntryID: 11111},
		{FirstName: "Bob", EntryID: 22221},
		{FirstName: "Colin", EntryID: 33331},
	}
}

func TestDirectoryService_Resolve_FetchesOncePerSession(t *testing.T) {
	t.Parallel()

	provider := draftmock.NewProvider(t)
	provider.
		On("LeagueDetails", mock.Anything, testLeagueID).
		Return(testEntries(), nil).
		Once()

	service := NewDirectoryService(provider, testLeagueID, nil)

	for i := 0; i < 3; i++ {
		directory, err := service.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, draft.Directory{"Alan": 11111, "Bob": 22221, "Colin": 33331}, directory)
	}

	names, err := service.Names(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Alan", "Bob", "Colin"}, names)
}

func TestDirectoryService_Resolve_DuplicateNameKeepsLast(t *testing.T) {
	t.Parallel()

	provider := draftmock.NewProvider(t)
	provider.
		On("LeagueDetails", mock.Anything, testLeagueID).
		Return([]draft.LeagueEntry{
			{FirstName: "Alan", EntryID: 1},
			{FirstName: "Alan", EntryID: 2},
		}, nil).
		Once()

	service := NewDirectoryService(provider, testLeagueID, nil)
	entryID, err := service.EntryID(context.Background(), "Alan")
	require.NoError(t, err)
	assert.Equal(t, int64(2), entryID)
}

func TestDirectoryService_EntryID_UnknownPlayer(t *testing.T) {
	t.Parallel()

	provider := draftmock.NewProvider(t)
	provider.On("LeagueDetails", mock.Anything, testLeagueID).Return(testEntries(), nil).Once()

	service := NewDirectoryService(provider, testLeagueID, nil)
	_, err := service.EntryID(context.Background(), "Zed")
	require.ErrorIs(t, err, ErrUnknownPlayer)
}

func TestDirectoryService_Resolve_ErrorIsNotMemoised(t *testing.T) {
	t.Parallel()

	httpErr := &HTTPError{StatusCode: http.StatusBadGateway, URL: "league/4242/details"}
	provider := draftmock.NewProvider(t)
	provider.On("LeagueDetails", mock.Anything, testLeagueID).Return(nil, httpErr).Once()
	provider.On("LeagueDetails", mock.Anything, testLeagueID).Return(testEntries(), nil).Once()

	service := NewDirectoryService(provider, testLeagueID, nil)

	_, err := service.Resolve(context.Background())
	var gotHTTP *HTTPError
	require.True(t, errors.As(err, &gotHTTP))
	assert.Equal(t, http.StatusBadGateway, gotHTTP.StatusCode)

	directory, err := service.Resolve(context.Background())
	require.NoError(t, err)
	assert.Len(t, directory, 3)
}

func TestDirectoryService_ResolveLeague_InvalidID(t *testing.T) {
	t.Parallel()

	service := NewDirectoryService(draftmock.NewProvider(t), 0, nil)
	_, err := service.Resolve(context.Background())
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestHTTPError_Message(t *testing.T) {
	t.Parallel()

	err := &HTTPError{StatusCode: 404, Message: "Not found", URL: "https://example.test/api/entry/1/history"}
	assert.Equal(t, "GET https://example.test/api/entry/1/history: status=404: Not found", err.Error())
}
