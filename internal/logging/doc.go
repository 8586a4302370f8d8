// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

// Package logging provides centralized zerolog-based structured logging for Platewise.
//
// JSON output is the default and is what production deployments should use.
// Console output is for development and for the platewisectl CLI, which
// writes human-readable logs to stderr and keeps stdout for command output.
//
// # Quick Start
//
//	import "github.com/tomtom215/platewise/internal/logging"
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Str("user_id", "alice").Int("orders", 3).Msg("order recorded")
//	logging.Error().Err(err).Msg("training failed")
//
//	// Request-scoped logging picks up request_id and correlation_id.
//	logging.Ctx(ctx).Info().Msg("serving recommendations")
//
// # Configuration
//
// Environment Variables (read by the config package):
//
//	LOG_LEVEL   - trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - json, console (default: json)
//	LOG_CALLER  - include caller file:line (default: false)
//
// # Components
//
// Long-lived components take a child logger:
//
//	logger := logging.WithComponent("recommend")
//	logger.Info().Int("users", n).Msg("model trained")
//
// # Suture Integration
//
// The supervisor tree logs through log/slog. NewSlogLogger bridges slog
// records into the global zerolog logger so that supervisor events share
// the same output and format:
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg)
//
// # Testing
//
// NewTestLogger returns a logger writing JSON to a buffer. Tests that assert
// on log output swap it in with SetLogger and restore the previous logger in
// t.Cleanup.
//
// Always terminate event chains with Msg or Send; an unterminated chain
// emits nothing.
package logging
