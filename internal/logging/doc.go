// Package logging provides structured logging for the CamHome server and CLIs.
//
// This package wraps the zap logger with convenience functions for the logging
// patterns used throughout the project: HTTP access lines, scan summaries and
// WebSocket stream events.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (probe arguments, raw output sizes, ARP reads)
//   - Info: Normal operations (requests, scan summaries, config reloads)
//   - Warn: Degraded results (probe failures, subnet fallback)
//   - Error: Startup failures and 5xx responses
//
// # Configuration
//
// Logging is silent unless a level is passed to Initialize or set in the
// CAMHOME_LOG_LEVEL environment variable:
//
//	if err := logging.Initialize("debug"); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// Components that do real work receive a *zap.Logger explicitly:
//
//	scanner := discovery.NewScanner(cfg, logging.Named("discovery"))
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has run.
package logging
