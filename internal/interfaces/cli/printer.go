package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/usecase"
)

// Printer writes progress and the final report tables to a terminal.
type Printer struct {
	mu  sync.Mutex
	out io.Writer

	title  lipgloss.Style
	muted  lipgloss.Style
	failed lipgloss.Style
	header lipgloss.Style
	border lipgloss.Style
}

func NewPrinter(out io.Writer) *Printer {
	renderer := lipgloss.NewRenderer(out)
	return &Printer{
		out:    out,
		title:  renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:  renderer.NewStyle().Foreground(lipgloss.Color("8")),
		failed: renderer.NewStyle().Foreground(lipgloss.Color("9")),
		header: renderer.NewStyle().Bold(true).Padding(0, 1),
		border: renderer.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Matchup announces a finished pairing as "<A> vs <B>".
func (p *Printer) Matchup(m usecase.Matchup) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, "%s vs %s\n", m.PlayerA, m.PlayerB)
}

func (p *Printer) Report(report usecase.Report) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(p.title.Render(fmt.Sprintf("League %d", report.LeagueID)))
	sb.WriteString(" ")
	sb.WriteString(p.muted.Render("run " + report.RunID))
	sb.WriteString("\n")

	if len(report.Matchups) > 0 {
		rows := make([][]string, 0, len(report.Matchups))
		for _, m := range report.Matchups {
			rows = append(rows, []string{
				m.PlayerA,
				strconv.Itoa(m.Tally.Wins[m.PlayerA]),
				strconv.Itoa(m.Tally.Draws),
				strconv.Itoa(m.Tally.Wins[m.PlayerB]),
				m.PlayerB,
			})
		}
		sb.WriteString(p.table([]string{"Player", "Won", "Drawn", "Won", "Opponent"}, rows))
		sb.WriteString("\n")
	}

	if len(report.Players) > 0 && report.Summary.Average != nil {
		rows := make([][]string, 0, len(report.Players))
		for _, name := range report.Players {
			rows = append(rows, []string{
				name,
				statCell(report.Summary.Max, name),
				statCell(report.Summary.Min, name),
				statCell(report.Summary.Average, name),
			})
		}
		sb.WriteString(p.table([]string{"Player", "Highest", "Lowest", "Average"}, rows))
		sb.WriteString("\n")
	}

	for _, f := range report.Failures {
		sb.WriteString(p.failed.Render(fmt.Sprintf("failed %s %s: %v", f.Stage, f.Subject, f.Err)))
		sb.WriteString("\n")
	}
	sb.WriteString(p.muted.Render(fmt.Sprintf("%d files written", len(report.Files))))
	sb.WriteString("\n")

	_, _ = io.WriteString(p.out, sb.String())
}

func (p *Printer) table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func statCell(stat draft.LeagueStatistic, name string) string {
	v, ok := stat[name]
	if !ok {
		return "-"
	}
	return strconv.Itoa(v)
}
