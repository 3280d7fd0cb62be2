// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/stockcast/internal/api"
	"github.com/tomtom215/stockcast/internal/config"
	"github.com/tomtom215/stockcast/internal/engine"
	"github.com/tomtom215/stockcast/internal/events"
	"github.com/tomtom215/stockcast/internal/feed"
	"github.com/tomtom215/stockcast/internal/forecast"
	"github.com/tomtom215/stockcast/internal/logging"
	"github.com/tomtom215/stockcast/internal/store"
	"github.com/tomtom215/stockcast/internal/supervisor"
	"github.com/tomtom215/stockcast/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.LoggingSettings())
	logging.Info().Str("version", version).Msg("Starting Stockcast with supervisor tree")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	calendar, err := forecast.LoadHolidayCalendar(cfg.Forecast.HolidayFile, cfg.Forecast.Holidays)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load holiday calendar")
	}

	st, err := store.Open(store.Config{
		Path:     cfg.Store.Path,
		InMemory: cfg.Store.InMemory,
	}, logging.WithComponent("store"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close store")
		}
	}()

	feedClient := feed.New(feed.Config{
		Enabled:            cfg.Feed.Enabled,
		BaseURL:            cfg.Feed.BaseURL,
		Timeout:            cfg.Feed.Timeout,
		RequestsPerSecond:  cfg.Feed.RequestsPerSecond,
		Burst:              cfg.Feed.Burst,
		BreakerMaxFailures: cfg.Feed.BreakerMaxFailures,
		BreakerOpenTimeout: cfg.Feed.BreakerOpenTimeout,
	}, logging.WithComponent("feed"))
	if feedClient.Enabled() {
		logging.Info().Str("url", cfg.Feed.BaseURL).Msg("External factor feed enabled")
	}

	eng, err := engine.New(cfg.EngineSettings(), engine.Dependencies{
		Calendar: calendar,
		Data:     st,
		Factors:  feedClient,
	}, logging.WithComponent("engine"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create engine")
	}
	defer eng.Close()

	evCfg := events.Config{
		BufferSize:           cfg.Events.BufferSize,
		RetryCount:           cfg.Events.RetryCount,
		RetryInitialInterval: cfg.Events.RetryInitialInterval,
		CloseTimeout:         cfg.Events.CloseTimeout,
	}
	eventLogger := logging.WithComponent("events")
	bus := events.NewBus(evCfg, eventLogger)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Failed to close event bus")
		}
	}()
	publisher := events.NewPublisher(bus, eventLogger)
	ingestor := events.NewIngestor(evCfg, bus, bus, st, eng, eventLogger)

	handler := api.NewHandler(eng, publisher, api.HandlerConfig{
		Version: version,
		Checks: map[string]api.HealthCheck{
			"store": st.Healthy,
			"feed":  func() bool { return feedClient.State() != "open" },
		},
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, cfg.Server),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * cfg.Server.ReadTimeout,
	}

	// Bridges zerolog to slog for sutureslog.
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + cfg.Events.CloseTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(ingestor)
	if cfg.Training.Enabled {
		tree.AddTrainingService(services.NewTrainingService(eng, services.TrainingServiceConfig{
			TrainOnStartup: cfg.Training.OnStartup,
			TrainInterval:  cfg.Training.Interval,
		}, logging.WithComponent("training")))
		logging.Info().Dur("interval", cfg.Training.Interval).Msg("Background training enabled")
	} else {
		logging.Warn().Msg("Background training disabled; models train on demand only")
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
