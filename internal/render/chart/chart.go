package chart

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/valyala/bytebufferpool"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/riskibarqy/draft-league-stats/internal/domain/draft"
	"github.com/riskibarqy/draft-league-stats/internal/platform/logging"
	"github.com/riskibarqy/draft-league-stats/internal/render/sink"
	"github.com/riskibarqy/draft-league-stats/internal/usecase"
)

var ErrNoData = crerr.New("nothing to plot")

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
)

func ParseFormat(raw string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(raw))); f {
	case FormatPNG, FormatSVG, FormatPDF:
		return f, nil
	case "":
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported chart format %q (want png, svg or pdf)", raw)
	}
}

type Options struct {
	Format Format
	// Width and Height are in inches.
	Width  float64
	Height float64
}

// Renderer draws charts with gonum/plot and hands the encoded bytes to a sink.
type Renderer struct {
	sink   sink.Sink
	format Format
	width  vg.Length
	height vg.Length
	logger *logging.Logger
}

func NewRenderer(out sink.Sink, opts Options, logger *logging.Logger) (*Renderer, error) {
	if out == nil {
		return nil, crerr.New("chart renderer requires a sink")
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	if opts.Width <= 0 {
		opts.Width = 8
	}
	if opts.Height <= 0 {
		opts.Height = 5
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Renderer{
		sink:   out,
		format: format,
		width:  vg.Length(opts.Width) * vg.Inch,
		height: vg.Length(opts.Height) * vg.Inch,
		logger: logger,
	}, nil
}

// RenderLineChart plots both players' points per gameweek.
func (r *Renderer) RenderLineChart(ctx context.Context, m usecase.Matchup) (string, error) {
	if len(m.PointsA) == 0 && len(m.PointsB) == 0 {
		return "", fmt.Errorf("%w: %s vs %s line chart", ErrNoData, m.PlayerA, m.PlayerB)
	}

	p := plot.New()
	p.Title.Text = m.PlayerA + " vs " + m.PlayerB
	p.X.Label.Text = "gameweeks"
	p.Y.Label.Text = "points"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	for i, series := range []struct {
		name   string
		points map[int]int
	}{
		{name: m.PlayerA, points: m.PointsA},
		{name: m.PlayerB, points: m.PointsB},
	} {
		line, err := plotter.NewLine(gameweekXYs(series.points))
		if err != nil {
			return "", crerr.Wrapf(err, "line for %s", series.name)
		}
		line.LineStyle.Color = plotutil.Color(i)
		line.LineStyle.Width = vg.Points(1.5)
		p.Add(line)
		p.Legend.Add(series.name, line)
	}

	return r.save(ctx, p, m.PlayerA, "vs", m.PlayerB, "line")
}

// RenderBarChart draws grouped bars per gameweek with the tally in the title.
// Only the gameweeks that were compared are drawn.
func (r *Renderer) RenderBarChart(ctx context.Context, m usecase.Matchup) (string, error) {
	gameweeks, valuesA := orderedValues(m.PointsA)
	_, valuesB := orderedValues(m.PointsB)
	n := min(len(valuesA), len(valuesB))
	if n == 0 {
		return "", fmt.Errorf("%w: %s vs %s bar chart", ErrNoData, m.PlayerA, m.PlayerB)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Head to Head By Gameweek\n%s: %d  %s: %d  draw: %d",
		m.PlayerA, m.Tally.Wins[m.PlayerA],
		m.PlayerB, m.Tally.Wins[m.PlayerB],
		m.Tally.Draws,
	)
	p.Y.Label.Text = "Points"
	p.Legend.Top = true

	width := r.barWidth(n, 2)
	for i, series := range []struct {
		name   string
		values plotter.Values
	}{
		{name: m.PlayerA, values: valuesA[:n]},
		{name: m.PlayerB, values: valuesB[:n]},
	} {
		bars, err := plotter.NewBarChart(series.values, width)
		if err != nil {
			return "", crerr.Wrapf(err, "bars for %s", series.name)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		bars.Offset = width * vg.Length(2*i-1) / 2
		p.Add(bars)
		p.Legend.Add(series.name, bars)
	}

	labels := make([]string, n)
	for i, gw := range gameweeks[:n] {
		labels[i] = fmt.Sprint(gw)
	}
	p.NominalX(labels...)

	return r.save(ctx, p, m.PlayerA, "vs", m.PlayerB, "bar")
}

// RenderLeagueStats writes the highest, lowest and average score bar charts
// and the boxplot of every gameweek score. The four charts are drawn
// concurrently; the returned names are sorted.
func (r *Renderer) RenderLeagueStats(ctx context.Context, summary usecase.LeagueSummary) ([]string, error) {
	if len(summary.Points) == 0 {
		return nil, fmt.Errorf("%w: league statistics", ErrNoData)
	}

	var (
		mu    sync.Mutex
		files []string
	)
	collect := func(path string) {
		mu.Lock()
		files = append(files, path)
		mu.Unlock()
	}

	jobs := []struct {
		name  string
		title string
		stat  draft.LeagueStatistic
	}{
		{name: "highest_scores", title: "Highest Gameweek Score", stat: summary.Max},
		{name: "lowest_scores", title: "Lowest Gameweek Score", stat: summary.Min},
		{name: "average_scores", title: "Average Gameweek Score", stat: summary.Average},
	}

	workers := pool.New().WithMaxGoroutines(len(jobs) + 1).WithContext(ctx)
	for _, job := range jobs {
		job := job
		workers.Go(func(ctx context.Context) error {
			path, err := r.statisticChart(ctx, job.name, job.title, job.stat)
			if err != nil {
				return err
			}
			collect(path)
			return nil
		})
	}
	workers.Go(func(ctx context.Context) error {
		path, err := r.boxplot(ctx, summary.Points)
		if err != nil {
			return err
		}
		collect(path)
		return nil
	})

	if err := workers.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (r *Renderer) statisticChart(ctx context.Context, name, title string, stat draft.LeagueStatistic) (string, error) {
	if len(stat) == 0 {
		return "", fmt.Errorf("%w: %s", ErrNoData, name)
	}
	players := sortedKeys(stat)
	values := make(plotter.Values, len(players))
	for i, player := range players {
		values[i] = float64(stat[player])
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = "points"

	bars, err := plotter.NewBarChart(values, r.barWidth(len(players), 1))
	if err != nil {
		return "", crerr.Wrapf(err, "bars for %s", name)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(players...)

	return r.save(ctx, p, name)
}

func (r *Renderer) boxplot(ctx context.Context, points map[string][]int) (string, error) {
	players := sortedKeys(points)

	p := plot.New()
	p.Title.Text = "Gameweek Scores"
	p.Y.Label.Text = "points"

	width := r.barWidth(len(players), 1)
	for i, player := range players {
		values := make(plotter.Values, len(points[player]))
		for j, v := range points[player] {
			values[j] = float64(v)
		}
		if len(values) == 0 {
			return "", fmt.Errorf("%w: boxplot for %s", ErrNoData, player)
		}
		box, err := plotter.NewBoxPlot(width, float64(i), values)
		if err != nil {
			return "", crerr.Wrapf(err, "boxplot for %s", player)
		}
		box.FillColor = plotutil.Color(i)
		p.Add(box)
	}
	p.NominalX(players...)

	return r.save(ctx, p, "boxplot")
}

// barWidth spreads groups of perGroup bars over most of the canvas width.
func (r *Renderer) barWidth(groups, perGroup int) vg.Length {
	slots := groups*perGroup + groups
	if slots <= 0 {
		slots = 1
	}
	width := r.width * 0.7 / vg.Length(slots)
	return min(width, vg.Points(40))
}

func (r *Renderer) save(ctx context.Context, p *plot.Plot, parts ...string) (string, error) {
	name := sink.FileName(parts...) + "." + string(r.format)

	writer, err := p.WriterTo(r.width, r.height, string(r.format))
	if err != nil {
		return "", crerr.Wrapf(err, "encode %s", name)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if _, err := writer.WriteTo(buf); err != nil {
		return "", crerr.Wrapf(err, "encode %s", name)
	}

	path, err := r.sink.Write(ctx, name, bytes.NewReader(buf.B))
	if err != nil {
		return "", err
	}
	r.logger.DebugContext(ctx, "chart written", "path", path, "bytes", buf.Len())
	return path, nil
}

func gameweekXYs(points map[int]int) plotter.XYs {
	gameweeks, values := orderedValues(points)
	xys := make(plotter.XYs, len(gameweeks))
	for i := range gameweeks {
		xys[i].X = float64(gameweeks[i])
		xys[i].Y = values[i]
	}
	return xys
}

func orderedValues(points map[int]int) ([]int, plotter.Values) {
	gameweeks := make([]int, 0, len(points))
	for gw := range points {
		gameweeks = append(gameweeks, gw)
	}
	sort.Ints(gameweeks)

	values := make(plotter.Values, len(gameweeks))
	for i, gw := range gameweeks {
		values[i] = float64(points[gw])
	}
	return gameweeks, values
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ usecase.Renderer = (*Renderer)(nil)
