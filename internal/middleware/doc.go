// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

/*
Package middleware provides Chi-compatible HTTP middleware.

  - RequestID: X-Request-ID propagation into the request and logging contexts
  - PrometheusMetrics: request counts, latency and in-flight gauge labelled
    by the matched Chi route pattern
  - AccessLog: one structured zerolog line per request

All constructors return func(http.Handler) http.Handler so they can be passed
straight to chi.Router.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.AccessLog)
*/
package middleware
