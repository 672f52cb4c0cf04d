package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
)

var (
	// ErrUnknownAxis is returned for an axis id the payload does not have.
	ErrUnknownAxis = errors.New("unknown axis")
	// ErrNothingToRender is returned when no series or line uses the axis.
	ErrNothingToRender = errors.New("nothing to render")
)

// Format is an output image format.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

const (
	defaultWidth  = 1024
	defaultHeight = 400
)

// ParseFormat accepts "svg", "png" or an empty string (svg).
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case "", FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("unsupported format %q", s)
	}
}

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Options selects the axis to draw and the image size.
type Options struct {
	Axis   string
	Width  int
	Height int
	Format Format
}

// Render draws every series and drawable reference line bound to one axis of
// p. Line series are broken at absent samples, so a run of absent samples
// shows as a gap. Bar series are drawn as vertical strokes from the axis
// baseline.
func Render(w io.Writer, p chart.Payload, opts Options) error {
	axis, ok := p.Axis(opts.Axis)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAxis, opts.Axis)
	}
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = defaultHeight
	}

	lastX := math.Max(float64(len(p.Labels)-1), 1)
	ticks := make([]gochart.Tick, len(p.Labels))
	for i, l := range p.Labels {
		ticks[i] = gochart.Tick{Value: float64(i), Label: strconv.Itoa(l)}
	}

	bounds := newBounds()
	for _, s := range p.Series {
		if s.Axis != axis.ID {
			continue
		}
		for _, y := range s.Data {
			if present(y) {
				bounds.add(y)
			}
		}
	}
	for _, l := range p.Lines {
		if l.Axis == axis.ID && l.Drawable() {
			bounds.add(l.Y)
		}
	}
	yr := yRange(axis, bounds)
	base := math.Min(math.Max(0, yr.Min), yr.Max)

	// legend gets one entry per dataset, however many pieces it is drawn in.
	var series, legend []gochart.Series
	for i, s := range p.Series {
		if s.Axis != axis.ID {
			continue
		}
		c := color(s.Color, i)
		var pieces []gochart.ContinuousSeries
		if s.Kind == chart.KindBar {
			if bar, ok := barSeries(s, c, base); ok {
				pieces = append(pieces, bar)
			}
		} else {
			pieces = lineSeries(s, c)
		}
		if len(pieces) == 0 {
			continue
		}
		legend = append(legend, pieces[0])
		for _, piece := range pieces {
			series = append(series, piece)
		}
	}

	for _, l := range p.Lines {
		if l.Axis != axis.ID || !l.Drawable() {
			continue
		}
		name := l.Text
		if name == "" {
			name = strconv.FormatFloat(l.Y, 'f', -1, 64)
		}
		line := gochart.ContinuousSeries{
			Name:    name,
			XValues: []float64{0, lastX},
			YValues: []float64{l.Y, l.Y},
			Style: gochart.Style{
				StrokeColor:     color(l.Style, 0),
				StrokeWidth:     1,
				StrokeDashArray: []float64{5, 5},
			},
		}
		series = append(series, line)
		legend = append(legend, line)
	}

	if len(series) == 0 {
		return fmt.Errorf("%w: axis %s of page %s", ErrNothingToRender, axis.ID, p.Page)
	}

	graph := gochart.Chart{
		Title:  p.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: gochart.Style{
			Padding: gochart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: gochart.XAxis{
			Range: &gochart.ContinuousRange{Min: 0, Max: lastX},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Name:  axis.ID,
			Range: yr,
		},
		Series: series,
	}
	legendChart := gochart.Chart{Series: legend}
	graph.Elements = []gochart.Renderable{gochart.Legend(&legendChart)}

	renderer := gochart.SVG
	if opts.Format == FormatPNG {
		renderer = gochart.PNG
	}
	if err := graph.Render(renderer, w); err != nil {
		return fmt.Errorf("render %s/%s: %w", p.Page, axis.ID, err)
	}
	return nil
}

func present(y float64) bool {
	return !math.IsNaN(y) && !math.IsInf(y, 0)
}

// lineSeries splits s into one piece per run of present samples. A run of a
// single sample is padded to two points and drawn with a dot.
func lineSeries(s chart.SeriesData, c drawing.Color) []gochart.ContinuousSeries {
	var pieces []gochart.ContinuousSeries
	for i := 0; i < len(s.Data); {
		if !present(s.Data[i]) {
			i++
			continue
		}
		var xs, ys []float64
		for ; i < len(s.Data) && present(s.Data[i]); i++ {
			xs = append(xs, float64(i))
			ys = append(ys, s.Data[i])
		}
		style := gochart.Style{StrokeColor: c, StrokeWidth: 2}
		if len(xs) == 1 {
			xs = append(xs, xs[0]+0.001)
			ys = append(ys, ys[0])
			style.DotColor = c
			style.DotWidth = 3
		}
		pieces = append(pieces, gochart.ContinuousSeries{Name: s.Label, XValues: xs, YValues: ys, Style: style})
	}
	return pieces
}

// barSeries draws every present sample as a vertical stroke from base by
// walking base, value, base at each x. The walk along the baseline between
// samples coincides with the bottom of the bars.
func barSeries(s chart.SeriesData, c drawing.Color, base float64) (gochart.ContinuousSeries, bool) {
	xs, ys := barPoints(s.Data, base)
	if len(xs) == 0 {
		return gochart.ContinuousSeries{}, false
	}
	return gochart.ContinuousSeries{
		Name:    s.Label,
		XValues: xs,
		YValues: ys,
		Style:   gochart.Style{StrokeColor: c, StrokeWidth: 6},
	}, true
}

func barPoints(data chart.Values, base float64) (xs, ys []float64) {
	for i, y := range data {
		if !present(y) {
			continue
		}
		x := float64(i)
		xs = append(xs, x, x, x)
		ys = append(ys, base, y, base)
	}
	return xs, ys
}

func color(hex string, i int) drawing.Color {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if hex == "" {
		return gochart.GetDefaultColor(i)
	}
	return drawing.ColorFromHex(hex)
}

type bounds struct {
	min, max float64
}

func newBounds() *bounds {
	return &bounds{min: math.Inf(1), max: math.Inf(-1)}
}

func (b *bounds) add(v float64) {
	b.min = math.Min(b.min, v)
	b.max = math.Max(b.max, v)
}

// yRange applies forced bounds as is and widens suggested bounds to the data.
func yRange(a chart.Axis, data *bounds) *gochart.ContinuousRange {
	lo, hi := data.min, data.max
	if a.SuggestedMin != nil {
		lo = math.Min(lo, *a.SuggestedMin)
	}
	if a.SuggestedMax != nil {
		hi = math.Max(hi, *a.SuggestedMax)
	}
	if a.Min != nil {
		lo = *a.Min
	}
	if a.Max != nil {
		hi = *a.Max
	}
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}
