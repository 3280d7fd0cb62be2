// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/stockcast/internal/engine"
)

// defaultTrainInterval applies when the configured interval is not positive.
const defaultTrainInterval = 6 * time.Hour

// Trainer retrains every model from stored data.
// Satisfied by *engine.Engine.
type Trainer interface {
	Train(ctx context.Context) error
}

// TrainingServiceConfig holds configuration for the training service.
type TrainingServiceConfig struct {
	// TrainOnStartup triggers training when the service starts.
	TrainOnStartup bool

	// TrainInterval is how often to retrain.
	TrainInterval time.Duration
}

// TrainingService runs periodic background training under supervision.
type TrainingService struct {
	trainer Trainer
	config  TrainingServiceConfig
	logger  zerolog.Logger
}

// NewTrainingService creates a new training service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(trainer Trainer, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	if cfg.TrainInterval <= 0 {
		cfg.TrainInterval = defaultTrainInterval
	}
	return &TrainingService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "training").Logger(),
	}
}

// Serve implements suture.Service.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("training service starting")

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("training service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.train(ctx, "schedule")
		}
	}
}

// train runs one cycle. Errors never stop the service; the next tick retries.
func (s *TrainingService) train(ctx context.Context, trigger string) {
	start := time.Now()
	logger := s.logger.With().Str("trigger", trigger).Logger()
	logger.Debug().Msg("training triggered")

	err := s.trainer.Train(ctx)
	switch {
	case err == nil:
		logger.Info().Dur("duration", time.Since(start)).Msg("model training complete")
	case errors.Is(err, engine.ErrTrainingInProgress):
		logger.Info().Msg("training already running, skipping this cycle")
	case ctx.Err() != nil:
		logger.Info().Err(err).Msg("training interrupted by shutdown")
	default:
		logger.Warn().Err(err).Dur("duration", time.Since(start)).Msg("model training failed (will retry on schedule)")
	}
}

// String returns the service name for logging.
func (s *TrainingService) String() string {
	return "training-service"
}
