package chart

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

// SeriesKind tells the renderer how to draw a series.
type SeriesKind string

const (
	KindLine SeriesKind = "line"
	KindBar  SeriesKind = "bar"
)

// AxisSpec declares a y axis of a page. SuggestedMin and SuggestedMax are
// static hints, replaced by ranges derived from threshold configs.
type AxisSpec struct {
	ID           string   `yaml:"id" json:"id"`
	Position     string   `yaml:"position" json:"position"`
	SuggestedMin *float64 `yaml:"suggested_min,omitempty" json:"suggestedMin,omitempty"`
	SuggestedMax *float64 `yaml:"suggested_max,omitempty" json:"suggestedMax,omitempty"`
}

// SeriesSpec declares one dataset of a page. With Average set the series is
// the segment average of Field/Channel, split at the pulses of the water
// field's PulseChannel (defaults to Channel).
type SeriesSpec struct {
	ID           string       `yaml:"id" json:"id"`
	Label        string       `yaml:"label" json:"label"`
	Field        models.Field `yaml:"field" json:"field"`
	Channel      int          `yaml:"channel" json:"channel"`
	Axis         string       `yaml:"axis" json:"axis"`
	Average      bool         `yaml:"average,omitempty" json:"average,omitempty"`
	PulseChannel *int         `yaml:"pulse_channel,omitempty" json:"pulseChannel,omitempty"`
	Kind         SeriesKind   `yaml:"kind,omitempty" json:"kind,omitempty"`
	Color        string       `yaml:"color,omitempty" json:"color,omitempty"`
}

func (s SeriesSpec) pulseChannel() int {
	if s.PulseChannel != nil {
		return *s.PulseChannel
	}
	return s.Channel
}

// ThresholdSpec binds a snapshot config entry to the axes it describes.
// Palette selects the line colour set and defaults to Config.
type ThresholdSpec struct {
	Config     int    `yaml:"config" json:"config"`
	Palette    *int   `yaml:"palette,omitempty" json:"palette,omitempty"`
	ValueAxis  string `yaml:"value_axis" json:"valueAxis"`
	VolumeAxis string `yaml:"volume_axis,omitempty" json:"volumeAxis,omitempty"`
}

func (t ThresholdSpec) palette() int {
	if t.Palette != nil {
		return *t.Palette
	}
	return t.Config
}

// PageSpec describes one dashboard page.
type PageSpec struct {
	Name       string          `yaml:"name" json:"name"`
	Title      string          `yaml:"title" json:"title"`
	Resolution Resolution      `yaml:"resolution" json:"resolution"`
	Axes       []AxisSpec      `yaml:"axes" json:"axes"`
	Series     []SeriesSpec    `yaml:"series" json:"series"`
	Thresholds []ThresholdSpec `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
}

// Validate checks the page for dangling axis references, duplicate ids and
// unknown fields.
func (p PageSpec) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: page without name", ErrMalformedInput)
	}
	if _, err := p.Resolution.Modulus(); err != nil {
		return fmt.Errorf("page %s: %w", p.Name, err)
	}
	if len(p.Series) == 0 {
		return fmt.Errorf("%w: page %s declares no series", ErrMalformedInput, p.Name)
	}

	axes := make(map[string]bool, len(p.Axes))
	for _, a := range p.Axes {
		if a.ID == "" || axes[a.ID] {
			return fmt.Errorf("%w: page %s: empty or duplicate axis %q", ErrMalformedInput, p.Name, a.ID)
		}
		axes[a.ID] = true
	}

	ids := make(map[string]bool, len(p.Series))
	for _, s := range p.Series {
		switch {
		case s.ID == "" || ids[s.ID]:
			return fmt.Errorf("%w: page %s: empty or duplicate series %q", ErrMalformedInput, p.Name, s.ID)
		case !s.Field.Known():
			return fmt.Errorf("%w: page %s: series %s has unknown field %q", ErrMalformedInput, p.Name, s.ID, s.Field)
		case !axes[s.Axis]:
			return fmt.Errorf("%w: page %s: series %s uses undeclared axis %q", ErrMalformedInput, p.Name, s.ID, s.Axis)
		case s.Channel < 0 || s.pulseChannel() < 0:
			return fmt.Errorf("%w: page %s: series %s has a negative channel", ErrMalformedInput, p.Name, s.ID)
		case s.Kind != "" && s.Kind != KindLine && s.Kind != KindBar:
			return fmt.Errorf("%w: page %s: series %s has unknown kind %q", ErrMalformedInput, p.Name, s.ID, s.Kind)
		}
		ids[s.ID] = true
	}

	for i, t := range p.Thresholds {
		if t.Config < 0 || t.palette() < 0 {
			return fmt.Errorf("%w: page %s: threshold %d has a negative index", ErrMalformedInput, p.Name, i)
		}
		if !axes[t.ValueAxis] || (t.VolumeAxis != "" && !axes[t.VolumeAxis]) {
			return fmt.Errorf("%w: page %s: threshold %d uses undeclared axis", ErrMalformedInput, p.Name, i)
		}
	}
	return nil
}

// Catalog is an immutable, ordered set of validated pages.
type Catalog struct {
	pages  []PageSpec
	byName map[string]int
}

// NewCatalog validates pages and indexes them by name.
func NewCatalog(pages []PageSpec) (*Catalog, error) {
	c := &Catalog{
		pages:  make([]PageSpec, 0, len(pages)),
		byName: make(map[string]int, len(pages)),
	}
	for _, p := range pages {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byName[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate page %q", ErrMalformedInput, p.Name)
		}
		c.byName[p.Name] = len(c.pages)
		c.pages = append(c.pages, p)
	}
	return c, nil
}

// Lookup returns the page called name.
func (c *Catalog) Lookup(name string) (PageSpec, bool) {
	i, ok := c.byName[name]
	if !ok {
		return PageSpec{}, false
	}
	return c.pages[i], true
}

// Pages returns the pages in declaration order.
func (c *Catalog) Pages() []PageSpec {
	out := make([]PageSpec, len(c.pages))
	copy(out, c.pages)
	return out
}

type pagesFile struct {
	Pages []PageSpec `yaml:"pages"`
}

// LoadPages reads a YAML page file of the form `pages: [...]`.
func LoadPages(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pages file: %w", err)
	}
	var f pagesFile
	if err := yaml.UnmarshalStrict(b, &f); err != nil {
		return nil, fmt.Errorf("%w: parse pages file %s: %v", ErrMalformedInput, path, err)
	}
	return NewCatalog(f.Pages)
}

// OpenCatalog loads the pages in path, or the built-in pages when path is
// empty.
func OpenCatalog(path string) (*Catalog, error) {
	if path == "" {
		return NewCatalog(DefaultPages())
	}
	return LoadPages(path)
}

func floatPtr(v float64) *float64 { return &v }

// DefaultPages returns the built-in pages: a single-plant hourly page, a
// two-probe hourly page and a two-probe minute page.
func DefaultPages() []PageSpec {
	tempAxis := AxisSpec{ID: "temp-y-axis", Position: "left", SuggestedMin: floatPtr(10), SuggestedMax: floatPtr(30)}
	humAxis := AxisSpec{ID: "hum-y-axis", Position: "left", SuggestedMin: floatPtr(0), SuggestedMax: floatPtr(100)}
	temperature := SeriesSpec{ID: "temperature", Label: "Temperature", Field: models.FieldTemperature, Axis: tempAxis.ID, Color: "#ff8000"}
	humidity := SeriesSpec{ID: "humidity", Label: "Humidity", Field: models.FieldHumidity, Axis: humAxis.ID, Color: "#2080ff"}

	return []PageSpec{
		{
			Name:       "single",
			Title:      "Plant station",
			Resolution: ResolutionHour,
			Axes: []AxisSpec{
				{ID: "moist-y-axis", Position: "left"},
				{ID: "water-y-axis", Position: "right"},
				{ID: "level-y-axis", Position: "right"},
				{ID: "weight-y-axis", Position: "left"},
				tempAxis,
				humAxis,
			},
			Series: []SeriesSpec{
				{ID: "moisture", Label: "Moisture", Field: models.FieldMoisture, Axis: "moist-y-axis", Color: "#30a000"},
				temperature,
				humidity,
				{ID: "moisture-avg", Label: "Average Moisture", Field: models.FieldMoisture, Axis: "moist-y-axis", Average: true, Color: "#ffa000"},
				{ID: "level", Label: "Water Level", Field: models.FieldLevel, Axis: "level-y-axis", Color: "#001080"},
				{ID: "weight", Label: "Plant Weight", Field: models.FieldWeight, Axis: "weight-y-axis", Color: "#205020"},
				{ID: "water", Label: "Watering", Field: models.FieldWater, Axis: "water-y-axis", Kind: KindBar, Color: "#0030a0"},
			},
			Thresholds: []ThresholdSpec{
				{Config: 0, ValueAxis: "moist-y-axis", VolumeAxis: "water-y-axis"},
			},
		},
		{
			Name:       "dual",
			Title:      "Plant station, two plants",
			Resolution: ResolutionHour,
			Axes: []AxisSpec{
				{ID: "weight-y-axis", Position: "left"},
				{ID: "water-y-axis", Position: "right"},
				tempAxis,
				humAxis,
			},
			Series: []SeriesSpec{
				{ID: "weight1", Label: "Plant Weight 1", Field: models.FieldWeight, Channel: 0, Axis: "weight-y-axis", Color: "#205020"},
				{ID: "weight2", Label: "Plant Weight 2", Field: models.FieldWeight, Channel: 1, Axis: "weight-y-axis", Color: "#502020"},
				{ID: "weight1-avg", Label: "Average Weight 1", Field: models.FieldWeight, Channel: 0, Axis: "weight-y-axis", Average: true, Color: "#ffa000"},
				{ID: "weight2-avg", Label: "Average Weight 2", Field: models.FieldWeight, Channel: 1, Axis: "weight-y-axis", Average: true, Color: "#a0a0ff"},
				temperature,
				humidity,
				{ID: "water1", Label: "Watering 1", Field: models.FieldWater, Channel: 0, Axis: "water-y-axis", Kind: KindBar, Color: "#0030a0"},
				{ID: "water2", Label: "Watering 2", Field: models.FieldWater, Channel: 1, Axis: "water-y-axis", Kind: KindBar, Color: "#a03000"},
			},
			Thresholds: []ThresholdSpec{
				{Config: 0, ValueAxis: "weight-y-axis", VolumeAxis: "water-y-axis"},
				{Config: 1, ValueAxis: "weight-y-axis", VolumeAxis: "water-y-axis"},
			},
		},
		{
			Name:       "minute",
			Title:      "Plant station, last hours",
			Resolution: ResolutionMinute,
			Axes: []AxisSpec{
				{ID: "weight-y-axis", Position: "left"},
				tempAxis,
				humAxis,
			},
			Series: []SeriesSpec{
				{ID: "weight1", Label: "Plant Weight 1", Field: models.FieldWeight, Channel: 0, Axis: "weight-y-axis", Color: "#205020"},
				{ID: "weight2", Label: "Plant Weight 2", Field: models.FieldWeight, Channel: 1, Axis: "weight-y-axis", Color: "#502020"},
				temperature,
				humidity,
			},
			Thresholds: []ThresholdSpec{
				{Config: 0, ValueAxis: "weight-y-axis"},
				{Config: 1, ValueAxis: "weight-y-axis"},
			},
		},
	}
}
