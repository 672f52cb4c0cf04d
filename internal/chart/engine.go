package chart

import (
	"fmt"
	"math"
	"strconv"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

// Values is a chart-ready sample sequence. NaN marks an absent sample and is
// encoded as JSON null.
type Values []float64

// MarshalJSON encodes absent samples as null.
func (v Values) MarshalJSON() ([]byte, error) {
	b := make([]byte, 0, len(v)*6+2)
	b = append(b, '[')
	for i, f := range v {
		if i > 0 {
			b = append(b, ',')
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			b = append(b, "null"...)
			continue
		}
		b = strconv.AppendFloat(b, f, 'g', -1, 64)
	}
	return append(b, ']'), nil
}

// Axis is the resolved range of one y axis. Min/Max are forced bounds,
// SuggestedMin/SuggestedMax may be exceeded by the data.
type Axis struct {
	ID           string   `json:"id"`
	Position     string   `json:"position,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	SuggestedMin *float64 `json:"suggestedMin,omitempty"`
	SuggestedMax *float64 `json:"suggestedMax,omitempty"`
}

// SeriesData is one dataset of a Payload, aligned to Payload.Labels.
type SeriesData struct {
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Axis  string     `json:"axis"`
	Kind  SeriesKind `json:"kind"`
	Color string     `json:"color,omitempty"`
	Data  Values     `json:"data"`
}

// Payload is everything a renderer needs to draw one page. It is built fresh
// for every snapshot and never modified afterwards.
type Payload struct {
	Page       string          `json:"page"`
	Title      string          `json:"title,omitempty"`
	Resolution Resolution      `json:"resolution"`
	Labels     []int           `json:"labels"`
	Series     []SeriesData    `json:"series"`
	Axes       []Axis          `json:"axes"`
	Lines      []ReferenceLine `json:"lines"`
}

// Axis returns the resolved axis with the given id.
func (p Payload) Axis(id string) (Axis, bool) {
	for _, a := range p.Axes {
		if a.ID == id {
			return a, true
		}
	}
	return Axis{}, false
}

// Engine turns snapshots into payloads. It holds no per-build state and is
// safe for concurrent use.
type Engine struct {
	palette []LineColors
}

// Option configures an Engine.
type Option func(*Engine)

// WithPalette replaces the reference line colour sets.
func WithPalette(palette ...LineColors) Option {
	return func(e *Engine) {
		if len(palette) > 0 {
			e.palette = palette
		}
	}
}

// NewEngine returns an Engine using DefaultPalette unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{palette: DefaultPalette}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// scale converts stored integers back to chart units: temperature and
// humidity are stored ×100, watering volumes ×1000.
func scale(f models.Field) float64 {
	switch f {
	case models.FieldTemperature, models.FieldHumidity:
		return 100
	case models.FieldWater:
		return 1000
	default:
		return 1
	}
}

func window(snap models.Snapshot, res Resolution) (*models.Window, string) {
	if res == ResolutionMinute {
		return snap.MinData, "mindata"
	}
	return snap.Data, "data"
}

func channel(w *models.Window, name string, f models.Field, ch int) ([]float64, error) {
	channels, ok := w.Field(f)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is missing", ErrMalformedInput, name, f)
	}
	// null on the wire: nothing sampled yet on any probe.
	if len(channels) == 0 {
		return nil, nil
	}
	if ch < 0 || ch >= len(channels) {
		return nil, fmt.Errorf("%w: %s.%s has no channel %d", ErrMalformedInput, name, f, ch)
	}
	return channels[ch], nil
}

type source struct {
	values []float64
	pulses []float64
}

// Build computes the payload of page from snap. The series length is the
// longest array any series draws on; shorter arrays are aligned to the newest
// sample and padded with absent values at the start.
func (e *Engine) Build(snap models.Snapshot, page PageSpec) (Payload, error) {
	modulus, err := page.Resolution.Modulus()
	if err != nil {
		return Payload{}, err
	}
	w, name := window(snap, page.Resolution)
	if w == nil {
		return Payload{}, fmt.Errorf("%w: snapshot has no %s window", ErrMalformedInput, name)
	}
	if w.Time == nil {
		return Payload{}, fmt.Errorf("%w: %s.time is missing", ErrMalformedInput, name)
	}

	sources := make([]source, len(page.Series))
	length := 0
	for i, s := range page.Series {
		values, err := channel(w, name, s.Field, s.Channel)
		if err != nil {
			return Payload{}, fmt.Errorf("series %s: %w", s.ID, err)
		}
		sources[i].values = values
		length = max(length, len(values))
		if s.Average {
			pulses, err := channel(w, name, models.FieldWater, s.pulseChannel())
			if err != nil {
				return Payload{}, fmt.Errorf("series %s: %w", s.ID, err)
			}
			sources[i].pulses = pulses
			length = max(length, len(pulses))
		}
	}

	labels, err := Align(*w.Time, length, modulus)
	if err != nil {
		return Payload{}, err
	}

	var avgValues, avgPulses [][]float64
	for i, s := range page.Series {
		if s.Average {
			avgValues = append(avgValues, sources[i].values)
			avgPulses = append(avgPulses, sources[i].pulses)
		}
	}
	averaged := AverageChannels(avgValues, avgPulses, length)

	series := make([]SeriesData, 0, len(page.Series))
	for i, s := range page.Series {
		var data Values
		if s.Average {
			data = Values(averaged[0])
			averaged = averaged[1:]
			scaleInPlace(data, scale(s.Field))
		} else {
			data = aligned(sources[i].values, length, scale(s.Field))
		}
		kind := s.Kind
		if kind == "" {
			kind = KindLine
		}
		series = append(series, SeriesData{
			ID:    s.ID,
			Label: s.Label,
			Axis:  s.Axis,
			Kind:  kind,
			Color: s.Color,
			Data:  data,
		})
	}

	axes, lines, err := e.thresholds(snap.Config, page)
	if err != nil {
		return Payload{}, err
	}

	return Payload{
		Page:       page.Name,
		Title:      page.Title,
		Resolution: page.Resolution,
		Labels:     labels,
		Series:     series,
		Axes:       axes,
		Lines:      lines,
	}, nil
}

func aligned(src []float64, length int, div float64) Values {
	out := make(Values, length)
	for i := range out {
		out[i] = sampleAt(src, length, i) / div
	}
	return out
}

func scaleInPlace(v Values, div float64) {
	if div == 1 {
		return
	}
	for i := range v {
		v[i] /= div
	}
}

// thresholds resolves page axes and accumulates reference lines channel by
// channel. Derived ranges replace static hints; ranges of several configs on
// one axis are widened to cover all of them.
func (e *Engine) thresholds(configs models.Configs, page PageSpec) ([]Axis, []ReferenceLine, error) {
	axes := make([]Axis, len(page.Axes))
	index := make(map[string]int, len(page.Axes))
	for i, a := range page.Axes {
		axes[i] = Axis{ID: a.ID, Position: a.Position}
		if a.SuggestedMin != nil {
			axes[i].SuggestedMin = floatPtr(*a.SuggestedMin)
		}
		if a.SuggestedMax != nil {
			axes[i].SuggestedMax = floatPtr(*a.SuggestedMax)
		}
		index[a.ID] = i
	}

	derived := make(map[string]bool)
	lines := make([]ReferenceLine, 0, 4*len(page.Thresholds))
	for _, t := range page.Thresholds {
		if t.Config >= len(configs) {
			return nil, nil, fmt.Errorf("%w: page %s needs config %d, snapshot has %d", ErrConfigIncomplete, page.Name, t.Config, len(configs))
		}
		d, err := derive(configs[t.Config], e.palette[t.palette()%len(e.palette)])
		if err != nil {
			return nil, nil, fmt.Errorf("config %d: %w", t.Config, err)
		}

		if i, ok := index[t.ValueAxis]; ok {
			a := &axes[i]
			if !derived[a.ID] {
				a.SuggestedMin, a.SuggestedMax = floatPtr(d.SuggestedMin), floatPtr(d.SuggestedMax)
			} else {
				a.SuggestedMin = floatPtr(math.Min(*a.SuggestedMin, d.SuggestedMin))
				a.SuggestedMax = floatPtr(math.Max(*a.SuggestedMax, d.SuggestedMax))
			}
			derived[a.ID] = true
		}
		if i, ok := index[t.VolumeAxis]; ok {
			a := &axes[i]
			if a.Min == nil {
				a.Min, a.Max = floatPtr(d.VolumeMin), floatPtr(d.VolumeMax)
			} else {
				a.Min = floatPtr(math.Min(*a.Min, d.VolumeMin))
				a.Max = floatPtr(math.Max(*a.Max, d.VolumeMax))
			}
		}

		for _, l := range d.Lines {
			l.Axis = t.ValueAxis
			lines = append(lines, l)
		}
	}
	return axes, lines, nil
}
