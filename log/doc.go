// Package log provides a simple, leveled logging interface for flowdiff.
//
// The package supports five log levels, in order of increasing severity:
//
//   - LogLevelDebug: Detailed debugging information for development
//   - LogLevelInfo: General informational messages about normal operation
//   - LogLevelWarn: Warning messages for potentially problematic situations
//   - LogLevelError: Error messages for failures that need attention
//   - LogLevelNone: Disables all logging output
//
// # Example Usage
//
//	// Create a logger with INFO level
//	logger := log.NewDefaultLogger(log.LogLevelInfo)
//
//	logger.Info("applying workflow diff: %s", workflowID)
//	logger.Debug("operation %d: %s", i, op.Kind())
//	logger.Warn("backup failed, continuing: %v", err)
//
// # golog Integration
//
// For users who prefer the github.com/kataras/golog library, a minimal
// wrapper is provided:
//
//	glogger := golog.New()
//	logger := log.NewGologLogger(glogger)
//	logger.SetLevel(log.LogLevelDebug)
//
// The service layer accepts any implementation of the Logger interface, so
// custom logging backends can be plugged in the same way.
//
// # Thread Safety
//
// The DefaultLogger implementation is thread-safe and can be used
// concurrently from multiple goroutines; the underlying log.Logger from the
// standard library handles synchronization internally.
package log
