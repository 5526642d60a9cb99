// Package logging provides structured logging for the smartplug client.
//
// This package wraps a global zap logger. It is silent by default so library
// callers and CLI output are not interleaved with log lines; set
// SMARTPLUG_LOG_LEVEL (or pass --log-level to the CLI) to enable it.
//
// # Log Levels
//
//   - Debug: frame contents, hex dumps, dial and deadline details
//   - Info: commands sent and their outcome
//   - Warn: failed exchanges (connection, read, decode errors)
//   - Error: CLI failures
//
// # Usage
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
//	logging.Info("Relay switched",
//	    zap.String("address", "192.168.1.50:9999"),
//	    zap.Bool("on", true),
//	)
//
// Frame dumps are skipped entirely unless debug logging is enabled, so
// callers may pass payloads without checking the level themselves.
package logging
