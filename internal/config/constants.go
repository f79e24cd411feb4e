package config

import "time"

// Application constants
const (
	AppName    = "egx-signals"
	AppVersion = "1.0.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	DefaultRequestTimeout = 2 * time.Minute

	// Directories (relative to the base directory)
	DefaultIntradayDir    = "intraday"
	DefaultTransactionDir = "transaction"
	DefaultCaseDir        = "CASE"
	DefaultReportsDir     = "reports"
	DefaultLogsDir        = "logs"

	// Source file globs
	IntradayPattern    = "*.xlsx"
	TransactionPattern = "*.csv"

	DefaultLogLevel = "info"

	// SnapshotCacheTTL bounds how long a computed session snapshot is kept.
	// File changes invalidate it sooner.
	SnapshotCacheTTL = 12 * time.Hour

	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/health"
	MetricsEndpoint = "/metrics"
)
