// Package logging provides structured logging for FacilityMap Core.
//
// It wraps Go's standard log/slog package to give consistent, structured
// logging across the application:
//
//   - JSON output for production, text output for development
//   - Default fields (service, version) on every entry
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("socket connected", "url", cfg.Socket.URL)
//	logger.Error("sitemap fetch failed", "error", err)
//
// Never log secrets: the map subscription key must not appear in log output.
package logging
