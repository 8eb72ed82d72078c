package draftapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL + "/api",
	})
}

func TestClientLeagueDetails_ParsesEntries(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/api/league/1234/details" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"league": {"id": 1234, "name": "Sunday League"},
			"league_entries": [
				{"id": 1, "entry_id": 11111, "player_first_name": "Alan", "entry_name": "A FC"},
				{"id": 2, "entry_id": 22221, "player_first_name": "Bob"},
				{"id": 3, "entry_id": 33331, "player_first_name": "Colin"}
			]
		}`))
	})

	entries, err := client.LeagueDetails(context.Background(), 1234)
	require.NoError(t, err)
	assert.Equal(t, []draft.LeagueEntry{
		{FirstName: "Alan", EntryID: 11111},
		{FirstName: "Bob", EntryID: 22221},
		{FirstName: "Colin", EntryID: 33331},
	}, entries)
	assert.Equal(t, draft.Directory{"Alan": 11111, "Bob": 22221, "Colin": 33331}, draft.BuildDirectory(entries))
}

func TestClientEntryHistory_ParsesPoints(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/entry/11111/history" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"history":[{"event":1,"points":58},{"event":2,"points":61},{"event":3,"points":0}]}`))
	})

	history, err := client.EntryHistory(context.Background(), 11111)
	require.NoError(t, err)
	assert.Equal(t, draft.GameweekHistory{
		{Event: 1, Points: 58},
		{Event: 2, Points: 61},
		{Event: 3, Points: 0},
	}, history)
}

func TestClientFetch_NonSuccessStatusReturnsHTTPError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.EntryHistory(context.Background(), 99)
	require.Error(t, err)

	var httpErr *usecase.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected HTTPError, got %v", err)
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	assert.Equal(t, "not found", httpErr.Message)
	assert.Equal(t, int32(1), calls.Load(), "failed calls must not be retried")
}

func TestClientFetch_ServerErrorIsNotRetried(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.LeagueDetails(context.Background(), 1)
	var httpErr *usecase.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClientFetch_MissingFieldsAreMalformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		call func(*Client) error
	}{
		{
			name: "league entries absent",
			body: `{"league":{"id":1}}`,
			call: func(c *Client) error {
				_, err := c.LeagueDetails(context.Background(), 1)
				return err
			},
		},
		{
			name: "first name absent",
			body: `{"league_entries":[{"entry_id":11111}]}`,
			call: func(c *Client) error {
				_, err := c.LeagueDetails(context.Background(), 1)
				return err
			},
		},
		{
			name: "entry id absent",
			body: `{"league_entries":[{"player_first_name":"Alan"}]}`,
			call: func(c *Client) error {
				_, err := c.LeagueDetails(context.Background(), 1)
				return err
			},
		},
		{
			name: "history absent",
			body: `{"entry":{}}`,
			call: func(c *Client) error {
				_, err := c.EntryHistory(context.Background(), 1)
				return err
			},
		},
		{
			name: "points absent",
			body: `{"history":[{"event":1}]}`,
			call: func(c *Client) error {
				_, err := c.EntryHistory(context.Background(), 1)
				return err
			},
		},
		{
			name: "not json",
			body: `<html>maintenance</html>`,
			call: func(c *Client) error {
				_, err := c.EntryHistory(context.Background(), 1)
				return err
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tc.body))
			})

			err := tc.call(client)
			require.ErrorIs(t, err, usecase.ErrMalformedResponse)
		})
	}
}

func TestClientFetch_EmptyHistoryIsValid(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"history":[]}`))
	})

	history, err := client.EntryHistory(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestClientFetch_GenericJSONValue(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/game", r.URL.Path)
		_, _ = w.Write([]byte(`{"current_event": 12}`))
	})

	var out map[string]any
	require.NoError(t, client.Fetch(context.Background(), "/game", &out))
	assert.EqualValues(t, 12, out["current_event"])
}

func TestClientRejectsInvalidIDs(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{})
	_, err := client.LeagueDetails(context.Background(), 0)
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	_, err = client.EntryHistory(context.Background(), -1)
	assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	assert.Equal(t, DefaultBaseURL, client.BaseURL())
}

func TestAbbreviateBody(t *testing.T) {
	t.Parallel()

	long := make([]byte, 400)
	for i := range long {
		long[i] = 'x'
	}
	got := abbreviateBody(long)
	assert.Len(t, got, 259)
	assert.Equal(t, "", abbreviateBody([]byte("   ")))
}
