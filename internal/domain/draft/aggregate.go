package draft

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrEmptySequence  = errors.New("empty point sequence")
	ErrLengthMismatch = errors.New("gameweek history length mismatch")
	ErrUnknownFormat  = errors.New("unknown points format")
	ErrUnknownReducer = errors.New("unknown statistic reducer")
)

// BuildDirectory folds entries into a name lookup. A repeated first name
// keeps the entry id of its last occurrence.
func BuildDirectory(entries []LeagueEntry) Directory {
	out := make(Directory, len(entries))
	for _, entry := range entries {
		out[entry.FirstName] = entry.EntryID
	}
	return out
}

// ReducePoints projects a history into the requested format. Gameweeks are
// numbered from 1 in history order.
func ReducePoints(history GameweekHistory, format PointsFormat) (PlayerPoints, error) {
	switch format {
	case FormatIndexed:
		indexed := make(map[int]int, len(history))
		for i, record := range history {
			indexed[i+1] = record.Points
		}
		return PlayerPoints{Format: FormatIndexed, Indexed: indexed}, nil
	case FormatSequence:
		sequence := make([]int, 0, len(history))
		for _, record := range history {
			sequence = append(sequence, record.Points)
		}
		return PlayerPoints{Format: FormatSequence, Sequence: sequence}, nil
	default:
		return PlayerPoints{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Compare pairs two indexed mappings gameweek by gameweek in ascending order
// and tallies wins and draws. Only the first min(len(a), len(b)) gameweeks
// are compared.
func Compare(nameA string, a map[int]int, nameB string, b map[int]int) HeadToHeadTally {
	tally := HeadToHeadTally{
		Players: [2]string{nameA, nameB},
		Wins:    map[string]int{nameA: 0, nameB: 0},
	}

	scoresA := orderedValues(a)
	scoresB := orderedValues(b)
	n := min(len(scoresA), len(scoresB))
	for i := 0; i < n; i++ {
		switch {
		case scoresA[i] > scoresB[i]:
			tally.Wins[nameA]++
		case scoresB[i] > scoresA[i]:
			tally.Wins[nameB]++
		default:
			tally.Draws++
		}
	}

	return tally
}

// CompareStrict is Compare but rejects histories of different length.
func CompareStrict(nameA string, a map[int]int, nameB string, b map[int]int) (HeadToHeadTally, error) {
	if len(a) != len(b) {
		return HeadToHeadTally{}, fmt.Errorf("%w: %s has %d gameweeks, %s has %d", ErrLengthMismatch, nameA, len(a), nameB, len(b))
	}
	return Compare(nameA, a, nameB, b), nil
}

func orderedValues(points map[int]int) []int {
	gameweeks := make([]int, 0, len(points))
	for gw := range points {
		gameweeks = append(gameweeks, gw)
	}
	sort.Ints(gameweeks)

	out := make([]int, 0, len(gameweeks))
	for _, gw := range gameweeks {
		out = append(out, points[gw])
	}
	return out
}

// Statistic applies reducer to every player's full sequence.
func Statistic(all map[string][]int, reducer Reducer) (LeagueStatistic, error) {
	fn, err := reducerFunc(reducer)
	if err != nil {
		return nil, err
	}

	out := make(LeagueStatistic, len(all))
	for name, points := range all {
		value, err := fn(points)
		if err != nil {
			return nil, fmt.Errorf("%s for %s: %w", reducer, name, err)
		}
		out[name] = value
	}
	return out, nil
}

func reducerFunc(reducer Reducer) (func([]int) (int, error), error) {
	switch reducer {
	case ReducerMin:
		return Min, nil
	case ReducerMax:
		return Max, nil
	case ReducerAverage:
		return Average, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownReducer, reducer)
	}
}

func Min(points []int) (int, error) {
	if len(points) == 0 {
		return 0, ErrEmptySequence
	}
	out := points[0]
	for _, v := range points[1:] {
		out = min(out, v)
	}
	return out, nil
}

func Max(points []int) (int, error) {
	if len(points) == 0 {
		return 0, ErrEmptySequence
	}
	out := points[0]
	for _, v := range points[1:] {
		out = max(out, v)
	}
	return out, nil
}

// Average is the mean rounded down to an integer; the fractional part is
// discarded, never rounded.
func Average(points []int) (int, error) {
	if len(points) == 0 {
		return 0, ErrDivisionByZero
	}
	sum := 0
	for _, v := range points {
		sum += v
	}
	n := len(points)
	avg := sum / n
	if sum%n != 0 && sum < 0 {
		avg--
	}
	return avg, nil
}
