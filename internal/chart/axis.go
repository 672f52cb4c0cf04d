package chart

import (
	"fmt"
	"math"
	"strings"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

// ReferenceLine is a horizontal guide drawn across a chart.
type ReferenceLine struct {
	Y     float64 `json:"y"`
	Style string  `json:"style"`
	Text  string  `json:"text,omitempty"`
	Axis  string  `json:"axis,omitempty"`
}

// Drawable reports whether a renderer should draw the line. Lines at zero or
// without a style are skipped, so a threshold of exactly zero never shows.
func (l ReferenceLine) Drawable() bool {
	return l.Style != "" && l.Y != 0 && !math.IsNaN(l.Y) && !math.IsInf(l.Y, 0)
}

// LineColors is the colour set of one channel's threshold lines.
type LineColors struct {
	Band   string `yaml:"band" json:"band"`
	Low    string `yaml:"low" json:"low"`
	Target string `yaml:"target" json:"target"`
}

// DefaultPalette gives each channel its own colour set; it is cycled when a
// page has more channels than entries.
var DefaultPalette = []LineColors{
	{Band: "#d0d0d0", Low: "#ff0000", Target: "#40b000"},
	{Band: "#c0c8e8", Low: "#ff8000", Target: "#2080ff"},
	{Band: "#e0d0b0", Low: "#c00060", Target: "#008080"},
}

// Derived is the axis and line set computed from one ChannelConfig.
type Derived struct {
	// VolumeMin and VolumeMax are forced bounds of the watering volume axis
	// in whole units.
	VolumeMin float64 `json:"volumeMin"`
	VolumeMax float64 `json:"volumeMax"`

	// SuggestedMin and SuggestedMax bound the value axis, rounded outward to
	// multiples of ten.
	SuggestedMin float64 `json:"suggestedMin"`
	SuggestedMax float64 `json:"suggestedMax"`

	Lines []ReferenceLine `json:"lines"`
}

// Derive computes ranges and reference lines for cfg, colouring the lines
// with the DefaultPalette entry of channel.
func Derive(cfg models.ChannelConfig, channel int) (Derived, error) {
	if channel < 0 {
		return Derived{}, fmt.Errorf("%w: negative channel %d", ErrMalformedInput, channel)
	}
	return derive(cfg, DefaultPalette[channel%len(DefaultPalette)])
}

func derive(cfg models.ChannelConfig, colors LineColors) (Derived, error) {
	var missing []string
	check := func(name string, v *float64) float64 {
		if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	low := check("low", cfg.Low)
	dst := check("dst", cfg.Dst)
	rng := check("range", cfg.Range)
	volume := check("max", cfg.Max)
	if len(missing) > 0 {
		return Derived{}, fmt.Errorf("%w: missing %s", ErrConfigIncomplete, strings.Join(missing, ", "))
	}

	return Derived{
		VolumeMin:    0,
		VolumeMax:    math.Ceil(volume / 1000),
		SuggestedMin: math.Floor((low-rng*2)/10) * 10,
		SuggestedMax: math.Ceil((dst+rng*2)/10) * 10,
		Lines: []ReferenceLine{
			{Y: dst - rng, Style: colors.Band},
			{Y: dst + rng, Style: colors.Band},
			{Y: low, Style: colors.Low},
			{Y: dst, Style: colors.Target},
		},
	}, nil
}
