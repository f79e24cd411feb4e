// Package http implements the HTTP handlers of the signals service. It is
// a thin layer between the chi router and the services package: handlers
// parse and validate input, call one service method and render the result.
//
// # Routes
//
// SignalsHandler is mounted at /api/v1/signals:
//
//	GET  /                          signal table by AI_Prob (?format=csv)
//	GET  /snapshot                  source files of the current analytics
//	GET  /overview?limit=           market overview
//	GET  /breakouts                 R1/R2/S1/S2 breakout sets (?format=csv)
//	GET  /candidates?top=           T+0/T+1 candidates (?format=csv)
//	GET  /relationships             correlated pairs; min_days, min_abs_corr, top_n
//	POST /group-picks               {"symbols": "COMI, HRHO"}
//	GET  /search?q=                 symbol search
//	GET  /stocks/{symbol}           technical view of one stock
//	GET  /stocks/{symbol}/technicals
//
// HealthHandler serves /health, /health/ready and /health/live, and
// MetricsHandler the Prometheus scrape endpoint.
//
// # Responses
//
// Success bodies use the envelope
//
//	{"status": "success", "data": ..., "count": n}
//
// except single-resource routes, which return the resource. Failures are
// RFC 7807 problem documents written by errors.ErrorHandler, which maps the
// typed application errors from the service layer to status codes.
package http
