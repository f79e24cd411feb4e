// Package services implements the business logic layer between the HTTP
// handlers and the signal pipeline.
//
// SignalService discovers the newest intraday workbook and transaction log,
// computes the session snapshot once per file identity (path, mtime, size)
// and serves every analytic from it:
//
//	svc := services.NewDefaultSignalService(cfg, paths, cache, metrics, logger)
//	overview, err := svc.Overview(ctx, 10)
//
// Snapshots are kept in a SnapshotCache. MemoryCache holds the latest one
// in process; RedisCache shares them between instances as JSON with a TTL.
// Concurrent loads of the same identity are collapsed.
//
// # Error Handling
//
// Services return *errors.AppError values wrapping the sentinels in
// errors.go, so handlers can both map the type to a status code and test
// the cause with errors.Is:
//
//	if errors.Is(err, services.ErrNoData) { ... }
//
// HealthService reports liveness and readiness, including whether data
// directories exist and the cache answers.
package services
