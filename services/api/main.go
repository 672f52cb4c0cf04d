package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
	"github.com/02loveslollipop/plantstation-viewer/internal/metrics"
	"github.com/02loveslollipop/plantstation-viewer/internal/poller"
	"github.com/02loveslollipop/plantstation-viewer/internal/station"
	"github.com/02loveslollipop/plantstation-viewer/services/api/config"
	httpserver "github.com/02loveslollipop/plantstation-viewer/services/api/http"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	catalog, err := chart.OpenCatalog(cfg.PagesFile)
	if err != nil {
		logger.Fatalf("pages error: %v", err)
	}

	rec := metrics.New()
	src, name, release, err := station.Open(ctx, cfg.Station())
	if err != nil {
		logger.Fatalf("station source error: %v", err)
	}
	defer release()
	src = station.Instrument(src, name, rec)

	if cfg.RefreshSchedule != "" {
		cache := station.NewCache(src)
		p, err := poller.New(cfg.RefreshSchedule, cache, cfg.RequestTimeout, logger.WithField("component", "poller"))
		if err != nil {
			logger.Fatalf("poller error: %v", err)
		}
		go p.Run(ctx)
		src = cache
	}

	srv := httpserver.New(cfg, src, catalog, rec, logger)
	logger.WithFields(logrus.Fields{
		"source": name,
		"pages":  len(catalog.Pages()),
	}).Infof("dashboard API listening on %s", cfg.ListenAddr())

	if err := srv.Run(ctx); err != nil {
		logger.Fatalf("server error: %v", err)
	}
}
