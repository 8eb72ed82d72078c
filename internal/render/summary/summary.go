package summary

import (
	"bytes"
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/riskibarqy/draft-league-stats/internal/render/sink"
	"github.com/riskibarqy/draft-league-stats/internal/usecase"
)

const FileName = "summary.yaml"

type Document struct {
	RunID       string          `yaml:"run_id"`
	LeagueID    int64           `yaml:"league_id"`
	GeneratedAt time.Time       `yaml:"generated_at"`
	Players     []string        `yaml:"players"`
	HeadToHead  []HeadToHead    `yaml:"head_to_head"`
	Statistics  Statistics      `yaml:"statistics"`
	Files       []string        `yaml:"files,omitempty"`
	Failures    []FailureRecord `yaml:"failures,omitempty"`
}

type HeadToHead struct {
	Players []string       `yaml:"players,flow"`
	Tally   map[string]int `yaml:"tally"`
}

type Statistics struct {
	Highest map[string]int `yaml:"highest"`
	Lowest  map[string]int `yaml:"lowest"`
	Average map[string]int `yaml:"average"`
}

type FailureRecord struct {
	Stage   string `yaml:"stage"`
	Subject string `yaml:"subject"`
	Error   string `yaml:"error"`
}

// NewDocument flattens a report into its YAML shape.
func NewDocument(report usecase.Report) Document {
	doc := Document{
		RunID:       report.RunID,
		LeagueID:    report.LeagueID,
		GeneratedAt: report.GeneratedAt,
		Players:     report.Players,
		HeadToHead:  make([]HeadToHead, 0, len(report.Matchups)),
		Statistics: Statistics{
			Highest: report.Summary.Max,
			Lowest:  report.Summary.Min,
			Average: report.Summary.Average,
		},
		Files: report.Files,
	}
	for _, m := range report.Matchups {
		doc.HeadToHead = append(doc.HeadToHead, HeadToHead{
			Players: []string{m.PlayerA, m.PlayerB},
			Tally:   m.Tally.Map(),
		})
	}
	for _, f := range report.Failures {
		record := FailureRecord{Stage: string(f.Stage), Subject: f.Subject}
		if f.Err != nil {
			record.Error = f.Err.Error()
		}
		doc.Failures = append(doc.Failures, record)
	}
	return doc
}

// Writer encodes the report summary to a sink.
type Writer struct {
	sink sink.Sink
}

func NewWriter(out sink.Sink) *Writer {
	return &Writer{sink: out}
}

func (w *Writer) WriteSummary(ctx context.Context, report usecase.Report) (string, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(NewDocument(report)); err != nil {
		return "", crerr.Wrap(err, "encode summary")
	}
	if err := enc.Close(); err != nil {
		return "", crerr.Wrap(err, "encode summary")
	}
	return w.sink.Write(ctx, FileName, &buf)
}

var _ usecase.SummaryWriter = (*Writer)(nil)
