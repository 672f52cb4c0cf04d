package chart_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

func TestDefaultPagesAreValid(t *testing.T) {
	catalog, err := chart.NewCatalog(chart.DefaultPages())
	require.NoError(t, err)

	names := []string{}
	for _, p := range catalog.Pages() {
		names = append(names, p.Name)
	}
	require.Equal(t, []string{"single", "dual", "minute"}, names)

	_, ok := catalog.Lookup("weekly")
	require.False(t, ok)

	builtin, err := chart.OpenCatalog("")
	require.NoError(t, err)
	require.Len(t, builtin.Pages(), 3)
}

func TestCatalogRejectsInvalidPages(t *testing.T) {
	valid := func() chart.PageSpec {
		return chart.PageSpec{
			Name:       "p",
			Resolution: chart.ResolutionHour,
			Axes:       []chart.AxisSpec{{ID: "y"}},
			Series:     []chart.SeriesSpec{{ID: "s", Field: models.FieldWeight, Axis: "y"}},
			Thresholds: []chart.ThresholdSpec{{Config: 0, ValueAxis: "y"}},
		}
	}

	cases := map[string]func(p *chart.PageSpec){
		"no name":            func(p *chart.PageSpec) { p.Name = "" },
		"bad resolution":     func(p *chart.PageSpec) { p.Resolution = "day" },
		"no series":          func(p *chart.PageSpec) { p.Series = nil },
		"duplicate axis":     func(p *chart.PageSpec) { p.Axes = append(p.Axes, chart.AxisSpec{ID: "y"}) },
		"duplicate series":   func(p *chart.PageSpec) { p.Series = append(p.Series, p.Series[0]) },
		"unknown field":      func(p *chart.PageSpec) { p.Series[0].Field = "pressure" },
		"undeclared axis":    func(p *chart.PageSpec) { p.Series[0].Axis = "x" },
		"negative channel":   func(p *chart.PageSpec) { p.Series[0].Channel = -1 },
		"unknown kind":       func(p *chart.PageSpec) { p.Series[0].Kind = "pie" },
		"threshold axis":     func(p *chart.PageSpec) { p.Thresholds[0].VolumeAxis = "v" },
		"threshold negative": func(p *chart.PageSpec) { p.Thresholds[0].Config = -1 },
	}

	_, err := chart.NewCatalog([]chart.PageSpec{valid()})
	require.NoError(t, err)

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			p := valid()
			mutate(&p)
			_, err := chart.NewCatalog([]chart.PageSpec{p})
			require.ErrorIs(t, err, chart.ErrMalformedInput)
		})
	}

	_, err = chart.NewCatalog([]chart.PageSpec{valid(), valid()})
	require.ErrorIs(t, err, chart.ErrMalformedInput)
}

func TestLoadPages(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pages.yaml")
	doc := `
pages:
  - name: balcony
    title: Balcony tomatoes
    resolution: hour
    axes:
      - id: weight-y-axis
        position: left
      - id: water-y-axis
        position: right
      - id: temp-y-axis
        position: left
        suggested_min: 5
        suggested_max: 35
    series:
      - id: weight
        label: Weight
        field: weight
        channel: 1
        axis: weight-y-axis
      - id: weight-avg
        label: Average Weight
        field: weight
        channel: 1
        pulse_channel: 1
        average: true
        axis: weight-y-axis
      - id: water
        label: Watering
        field: water
        channel: 1
        kind: bar
        axis: water-y-axis
      - id: temperature
        label: Temperature
        field: temperature
        axis: temp-y-axis
    thresholds:
      - config: 1
        palette: 0
        value_axis: weight-y-axis
        volume_axis: water-y-axis
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	catalog, err := chart.LoadPages(path)
	require.NoError(t, err)
	p, ok := catalog.Lookup("balcony")
	require.True(t, ok)
	require.Equal(t, chart.ResolutionHour, p.Resolution)
	require.Len(t, p.Series, 4)
	require.True(t, p.Series[1].Average)
	require.Equal(t, 1, *p.Series[1].PulseChannel)
	require.Equal(t, 35.0, *p.Axes[2].SuggestedMax)

	payload, err := chart.NewEngine().Build(parse(t, dualStation), p)
	require.NoError(t, err)
	require.Len(t, payload.Lines, 4)
	require.Equal(t, chart.DefaultPalette[0].Target, payload.Lines[3].Style)
	require.Equal(t, 1450.0, payload.Lines[3].Y)
}

func TestLoadPagesErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := chart.LoadPages(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("pages:\n  - name: x\n    colour: red\n"), 0o600))
	_, err = chart.LoadPages(path)
	require.ErrorIs(t, err, chart.ErrMalformedInput)
}
