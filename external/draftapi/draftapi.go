package draftapi

// leagueDetailsEnvelope is GET league/{league_id}/details. Only the fields
// the directory needs are decoded.
type leagueDetailsEnvelope struct {
	League        leagueMeta          `json:"league"`
	LeagueEntries []leagueEntryRecord `json:"league_entries" validate:"required,dive"`
}

type leagueMeta struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type leagueEntryRecord struct {
	ID              int64   `json:"id"`
	EntryID         *int64  `json:"entry_id" validate:"required"`
	EntryName       string  `json:"entry_name"`
	PlayerFirstName *string `json:"player_first_name" validate:"required"`
	PlayerLastName  string  `json:"player_last_name"`
	ShortName       string  `json:"short_name"`
}

// entryHistoryEnvelope is GET entry/{entry_id}/history.
type entryHistoryEnvelope struct {
	History []historyRecord `json:"history" validate:"required,dive"`
}

type historyRecord struct {
	Event  int  `json:"event"`
	Points *int `json:"points" validate:"required"`
	Rank   int  `json:"rank"`
	Total  int  `json:"total_points"`
}
