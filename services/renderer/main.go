package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
	"github.com/02loveslollipop/plantstation-viewer/internal/station"
	"github.com/02loveslollipop/plantstation-viewer/services/renderer/internal/config"
	"github.com/02loveslollipop/plantstation-viewer/services/renderer/internal/output"
)

func main() {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := run(logger); err != nil {
		logger.Fatalf("renderer failed: %v", err)
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.SetLevel(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+10*time.Second)
	defer cancel()

	catalog, err := chart.OpenCatalog(cfg.PagesFile)
	if err != nil {
		return err
	}

	src, name, release, err := station.Open(ctx, cfg.Station())
	if err != nil {
		return err
	}
	defer release()

	fetchCtx, fetchCancel := context.WithTimeout(ctx, cfg.RequestTimeout)
	snap, err := src.Snapshot(fetchCtx)
	fetchCancel()
	if err != nil {
		return err
	}
	logger.WithField("source", name).Info("fetched station snapshot")

	engine := chart.NewEngine()
	writer := output.Writer{
		Dir:    cfg.OutputDir,
		Width:  cfg.ChartWidth,
		Height: cfg.ChartHeight,
		Format: cfg.Format,
		DryRun: cfg.DryRun,
		Log:    logger,
	}

	pages := catalog.Pages()
	var failed []error
	for _, page := range pages {
		log := logger.WithField("page", page.Name)
		payload, err := engine.Build(snap, page)
		if err != nil {
			log.WithError(err).Warn("page build failed")
			failed = append(failed, fmt.Errorf("page %s: %w", page.Name, err))
			continue
		}
		paths, err := writer.WritePage(payload)
		if err != nil {
			log.WithError(err).Warn("page write failed")
			failed = append(failed, fmt.Errorf("page %s: %w", page.Name, err))
			continue
		}
		log.WithField("dry_run", cfg.DryRun).Infof("rendered %d files", len(paths))
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d pages failed: %w", len(failed), len(pages), errors.Join(failed...))
	}
	return nil
}
