// Stockcast - Retail Sales Forecasting and Product Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/stockcast

// Package logging provides centralized zerolog-based structured logging for Stockcast.
//
// # Overview
//
// The package provides:
//   - A global zerolog logger configured once at startup with Init
//   - JSON output for production and console output for development
//   - Context-aware logging with correlation and request ID propagation
//   - A slog adapter so the suture supervisor logs through zerolog
//   - A watermill adapter so the event router logs through zerolog
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", addr).Msg("HTTP server listening")
//	logging.Ctx(ctx).Warn().Err(err).Msg("External factors unavailable")
//
// Components receive a zerolog.Logger by value, usually built with
// WithComponent, and never reach for the global logger themselves:
//
//	engine.New(cfg, deps, logging.WithComponent("engine"))
//
// # Configuration
//
// The logging section of the service configuration maps to Config:
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json, console (default: json)
//	LOG_CALLER  include caller file:line (default: false)
//
// Always terminate event chains with Msg or Send, otherwise nothing is written.
package logging
