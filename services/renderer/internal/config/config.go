package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/02loveslollipop/plantstation-viewer/internal/render"
	"github.com/02loveslollipop/plantstation-viewer/internal/station"
)

const (
	defaultOutputDir      = "out"
	defaultRequestTimeout = 30 * time.Second
	defaultChartWidth     = 1024
	defaultChartHeight    = 400
)

// Config holds runtime configuration for the renderer.
type Config struct {
	StationURL     string
	StationUser    string
	StationPass    string
	DatabaseURL    string
	PagesFile      string
	OutputDir      string
	RequestTimeout time.Duration
	ChartWidth     int
	ChartHeight    int
	Format         render.Format
	LogLevel       logrus.Level
	DryRun         bool
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{LogLevel: logrus.InfoLevel}

	cfg.StationURL = strings.TrimSpace(os.Getenv("STATION_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.StationURL == "" && cfg.DatabaseURL == "" {
		return cfg, errors.New("STATION_URL or DATABASE_URL is required")
	}
	cfg.StationUser = os.Getenv("STATION_USER")
	cfg.StationPass = os.Getenv("STATION_PASS")
	cfg.PagesFile = strings.TrimSpace(os.Getenv("PAGES_FILE"))

	cfg.OutputDir = strings.TrimSpace(os.Getenv("OUTPUT_DIR"))
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	var err error
	if cfg.ChartWidth, err = positiveInt("CHART_WIDTH", defaultChartWidth); err != nil {
		return cfg, err
	}
	if cfg.ChartHeight, err = positiveInt("CHART_HEIGHT", defaultChartHeight); err != nil {
		return cfg, err
	}

	if cfg.Format, err = render.ParseFormat(strings.TrimSpace(os.Getenv("RENDER_FORMAT"))); err != nil {
		return cfg, fmt.Errorf("invalid RENDER_FORMAT: %w", err)
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = level
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	return cfg, nil
}

func positiveInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: %s", key, v)
	}
	return n, nil
}

// Station returns the options used to open the snapshot source.
func (c Config) Station() station.Options {
	return station.Options{
		URL:         c.StationURL,
		DatabaseURL: c.DatabaseURL,
		User:        c.StationUser,
		Password:    c.StationPass,
		Timeout:     c.RequestTimeout,
	}
}
