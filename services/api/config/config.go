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

	"github.com/02loveslollipop/plantstation-viewer/internal/station"
)

// Config holds environment-driven settings for the dashboard API.
type Config struct {
	StationURL      string
	StationUser     string
	StationPass     string
	DatabaseURL     string
	Port            int
	BearerToken     string
	RequestTimeout  time.Duration
	RefreshSchedule string
	PagesFile       string
	LogLevel        logrus.Level
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:           8080,
		RequestTimeout: 10 * time.Second,
		LogLevel:       logrus.InfoLevel,
	}

	cfg.StationURL = strings.TrimSpace(os.Getenv("STATION_URL"))
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.StationURL == "" && cfg.DatabaseURL == "" {
		return cfg, errors.New("STATION_URL or DATABASE_URL is required")
	}
	cfg.StationUser = os.Getenv("STATION_USER")
	cfg.StationPass = os.Getenv("STATION_PASS")

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if v := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT: %s", v)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		level, err := logrus.ParseLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid LOG_LEVEL: %s", v)
		}
		cfg.LogLevel = level
	}

	cfg.RefreshSchedule = strings.TrimSpace(os.Getenv("REFRESH_SCHEDULE"))
	cfg.PagesFile = strings.TrimSpace(os.Getenv("PAGES_FILE"))
	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
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
