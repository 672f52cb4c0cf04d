package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/plantstation-viewer/internal/render"
	"github.com/02loveslollipop/plantstation-viewer/services/renderer/internal/config"
)

func setEnv(t *testing.T, env map[string]string) {
	for _, k := range []string{
		"STATION_URL", "DATABASE_URL", "STATION_USER", "STATION_PASS", "PAGES_FILE", "OUTPUT_DIR",
		"REQUEST_TIMEOUT", "CHART_WIDTH", "CHART_HEIGHT", "RENDER_FORMAT", "LOG_LEVEL", "DRY_RUN",
	} {
		t.Setenv(k, env[k])
	}
}

func TestLoad(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/plants", "DRY_RUN": "TRUE", "CHART_WIDTH": "640"})

	cfg, err := config.Load()
	require.NoError(t, err)
	require.True(t, cfg.DryRun)
	require.Equal(t, "out", cfg.OutputDir)
	require.Equal(t, 640, cfg.ChartWidth)
	require.Equal(t, 400, cfg.ChartHeight)
	require.Equal(t, render.FormatSVG, cfg.Format)
	require.Equal(t, 30*time.Second, cfg.Station().Timeout)
	require.Equal(t, "postgres://localhost/plants", cfg.Station().DatabaseURL)
}

func TestLoadPNG(t *testing.T) {
	setEnv(t, map[string]string{"STATION_URL": "http://x", "RENDER_FORMAT": "png"})

	cfg, err := config.Load()
	require.NoError(t, err)
	require.Equal(t, render.FormatPNG, cfg.Format)
}

func TestLoadErrors(t *testing.T) {
	for name, env := range map[string]map[string]string{
		"no source":    {},
		"bad timeout":  {"STATION_URL": "http://x", "REQUEST_TIMEOUT": "soon"},
		"bad height":   {"STATION_URL": "http://x", "CHART_HEIGHT": "-3"},
		"bad loglevel": {"STATION_URL": "http://x", "LOG_LEVEL": "chatty"},
		"bad format":   {"STATION_URL": "http://x", "RENDER_FORMAT": "gif"},
	} {
		t.Run(name, func(t *testing.T) {
			setEnv(t, env)
			_, err := config.Load()
			require.Error(t, err)
		})
	}
}
