package draft

import (
	"fmt"
	"sort"
	"strings"
)

// DrawKey is the tally key used for drawn gameweeks.
const DrawKey = "draw"

// LeagueEntry is one participant row from the league details endpoint.
type LeagueEntry struct {
	FirstName string
	EntryID   int64
}

// Directory maps a player's display name to their entry id.
type Directory map[string]int64

// Names returns directory names in ascending order.
func (d Directory) Names() []string {
	out := make([]string, 0, len(d))
	for name := range d {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// GameweekRecord is one scoring round of an entry's history.
type GameweekRecord struct {
	Event  int
	Points int
}

// GameweekHistory is ordered by gameweek; index i holds gameweek i+1.
type GameweekHistory []GameweekRecord

type PointsFormat string

const (
	FormatIndexed  PointsFormat = "indexed"
	FormatSequence PointsFormat = "sequence"
)

func ParsePointsFormat(v string) (PointsFormat, error) {
	switch PointsFormat(strings.ToLower(strings.TrimSpace(v))) {
	case FormatIndexed:
		return FormatIndexed, nil
	case FormatSequence:
		return FormatSequence, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, v)
	}
}

// PlayerPoints holds one projection of a history: Indexed for FormatIndexed,
// Sequence for FormatSequence.
type PlayerPoints struct {
	Format   PointsFormat
	Indexed  map[int]int
	Sequence []int
}

func (p PlayerPoints) Len() int {
	if p.Format == FormatIndexed {
		return len(p.Indexed)
	}
	return len(p.Sequence)
}

// Values returns points in gameweek order whatever the projection.
func (p PlayerPoints) Values() []int {
	if p.Format != FormatIndexed {
		out := make([]int, len(p.Sequence))
		copy(out, p.Sequence)
		return out
	}

	gameweeks := make([]int, 0, len(p.Indexed))
	for gw := range p.Indexed {
		gameweeks = append(gameweeks, gw)
	}
	sort.Ints(gameweeks)

	out := make([]int, 0, len(gameweeks))
	for _, gw := range gameweeks {
		out = append(out, p.Indexed[gw])
	}
	return out
}

// HeadToHeadTally counts gameweek wins for two players plus draws.
type HeadToHeadTally struct {
	Players [2]string
	Wins    map[string]int
	Draws   int
}

// Compared is the number of gameweeks that contributed to the tally.
func (t HeadToHeadTally) Compared() int {
	return t.Wins[t.Players[0]] + t.Wins[t.Players[1]] + t.Draws
}

// Map flattens the tally into {playerA: n, playerB: m, "draw": d}.
func (t HeadToHeadTally) Map() map[string]int {
	return map[string]int{
		t.Players[0]: t.Wins[t.Players[0]],
		t.Players[1]: t.Wins[t.Players[1]],
		DrawKey:      t.Draws,
	}
}

// LeagueStatistic is a single derived value per player.
type LeagueStatistic map[string]int

type Reducer string

const (
	ReducerMin     Reducer = "min"
	ReducerMax     Reducer = "max"
	ReducerAverage Reducer = "average"
)

var AllReducers = []Reducer{ReducerMax, ReducerMin, ReducerAverage}

func ParseReducer(v string) (Reducer, error) {
	switch Reducer(strings.ToLower(strings.TrimSpace(v))) {
	case ReducerMin:
		return ReducerMin, nil
	case ReducerMax:
		return ReducerMax, nil
	case ReducerAverage, "avg", "mean":
		return ReducerAverage, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownReducer, v)
	}
}
