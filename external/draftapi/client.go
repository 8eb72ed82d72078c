package draftapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
	"github.com/riskibarqy/draft-league-stats/internal/usecase"
)

const (
	DefaultBaseURL = "https://draft.premierleague.com/api/"
	defaultTimeout = 20 * time.Second
	maxBodyBytes   = 6 << 20
)

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Logger     *logging.Logger
}

// Client issues one GET per call against the draft API. Failures are never
// retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logging.Logger
	validate   *validator.Validate
}

var _ draft.Provider = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = "draft-league-stats/1.0"
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		userAgent:  userAgent,
		logger:     logger,
		validate:   validator.New(),
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) LeagueDetails(ctx context.Context, leagueID int64) ([]draft.LeagueEntry, error) {
	if leagueID <= 0 {
		return nil, fmt.Errorf("%w: league id must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("league/%d/details", leagueID)
	var payload leagueDetailsEnvelope
	if err := c.Fetch(ctx, path, &payload); err != nil {
		return nil, crerr.Wrapf(err, "fetch league details league_id=%d", leagueID)
	}

	out := make([]draft.LeagueEntry, 0, len(payload.LeagueEntries))
	for _, item := range payload.LeagueEntries {
		out = append(out, draft.LeagueEntry{
			FirstName: *item.PlayerFirstName,
			EntryID:   *item.EntryID,
		})
	}
	return out, nil
}

func (c *Client) EntryHistory(ctx context.Context, entryID int64) (draft.GameweekHistory, error) {
	if entryID <= 0 {
		return nil, fmt.Errorf("%w: entry id must be greater than zero", usecase.ErrInvalidInput)
	}

	path := fmt.Sprintf("entry/%d/history", entryID)
	var payload entryHistoryEnvelope
	if err := c.Fetch(ctx, path, &payload); err != nil {
		return nil, crerr.Wrapf(err, "fetch entry history entry_id=%d", entryID)
	}

	out := make(draft.GameweekHistory, 0, len(payload.History))
	for _, item := range payload.History {
		out = append(out, draft.GameweekRecord{
			Event:  item.Event,
			Points: *item.Points,
		})
	}
	return out, nil
}

// Fetch GETs baseURL+path and decodes the body into target. Any non-2xx
// status is a *usecase.HTTPError; undecodable bodies or bodies missing
// required fields are usecase.ErrMalformedResponse.
func (c *Client) Fetch(ctx context.Context, path string, target any) error {
	fullURL, err := c.resolve(path)
	if err != nil {
		return err
	}

	raw, err := c.get(ctx, fullURL)
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("%w: decode %s: %w", usecase.ErrMalformedResponse, path, err)
	}
	if err := c.validate.StructCtx(ctx, target); err != nil {
		var invalid *validator.InvalidValidationError
		if crerr.As(err, &invalid) {
			// target is not a struct, nothing to validate
			return nil
		}
		return fmt.Errorf("%w: validate %s: %w", usecase.ErrMalformedResponse, path, err)
	}
	return nil
}

func (c *Client) resolve(path string) (string, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("%w: path is required", usecase.ErrInvalidInput)
	}
	fullURL := c.baseURL + path
	if _, err := url.Parse(fullURL); err != nil {
		return "", crerr.Wrapf(err, "parse url %q", fullURL)
	}
	return fullURL, nil
}

func (c *Client) get(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, crerr.Wrap(err, "build request")
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", c.userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "draft api request failed", "url", fullURL, "error", err)
		return nil, crerr.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, crerr.Wrap(err, "read response body")
	}

	c.logger.DebugContext(ctx, "draft api response",
		"url", fullURL,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &usecase.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    abbreviateBody(raw),
			URL:        fullURL,
		}
	}
	return raw, nil
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	value := strings.TrimSpace(string(raw))
	if value == "" {
		return ""
	}
	if len(value) <= limit {
		return value
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return value[:cut] + "..."
}
