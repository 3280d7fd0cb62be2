// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

/*
Package supervisor provides process supervision for Stockcast using suture v4.

The tree organizes long-running services into three layers:

	RootSupervisor ("stockcast")
	├── DataSupervisor ("data-layer")
	│   └── Ingestor (event ingestion into the store)
	├── TrainingSupervisor ("training-layer")
	│   └── TrainingService (if TRAINING_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Each layer restarts its services independently with suture's exponential
backoff. Supervisor events (starts, failures, backoff) are logged through
sutureslog into the zerolog stream via logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddDataService(ingestor)
	tree.AddTrainingService(services.NewTrainingService(eng, trainingCfg, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor stopped with error")
	}
*/
package supervisor
