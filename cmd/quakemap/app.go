package main

import (
	"log/slog"

	"github.com/couchcryptid/quake-map-service/internal/adapter/feed"
	kafkaadapter "github.com/couchcryptid/quake-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map-service/internal/config"
	"github.com/couchcryptid/quake-map-service/internal/domain"
	"github.com/couchcryptid/quake-map-service/internal/observability"
	"github.com/couchcryptid/quake-map-service/internal/pipeline"
)

// app is the map model and the loader that fills it, shared by serve and
// snapshot.
type app struct {
	view   *domain.MapViewModel
	loader *pipeline.Loader
	writer *kafkaadapter.Writer // nil when publishing is disabled
	logger *slog.Logger
}

func newApp(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*app, error) {
	view, err := domain.NewMapViewModel(cfg.Layout)
	if err != nil {
		return nil, err
	}

	fetcher := feed.NewClient(cfg.FeedTimeout, logger)
	assembler := pipeline.NewAssembler(fetcher, logger, metrics)

	a := &app{view: view, logger: logger}

	var publisher pipeline.Publisher
	if cfg.PublishEnabled {
		a.writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = a.writer
		logger.Info("overlay events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	stages := pipeline.OverlayStages(view, cfg.QuakesURL, cfg.FaultsURL)
	a.loader, err = pipeline.NewLoader(assembler, stages, publisher, logger, metrics)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) close() {
	if a.writer == nil {
		return
	}
	if err := a.writer.Close(); err != nil {
		a.logger.Error("kafka writer close error", "error", err)
	}
}
