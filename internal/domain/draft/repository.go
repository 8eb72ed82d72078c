package draft

import "context"

// Provider is the read-only source of league and entry data.
type Provider interface {
	LeagueDetails(ctx context.Context, leagueID int64) ([]LeagueEntry, error)
	EntryHistory(ctx context.Context, entryID int64) (GameweekHistory, error)
}
