// Package logging provides structured logging with per-module log levels.
//
// Initialize once at startup, then ask for a logger per module:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",
//		Format: "text",
//		Modules: map[string]string{
//			"api":  "debug",
//			"http": "warn",
//		},
//	})
//
//	logger := logging.GetLogger("api")
//	logger.Info("Serving", "addr", addr)
//
// Module loggers are cached and backed by a [slog.LevelVar], so levels can be
// changed later with [SetLevels] without handing out new loggers. The config
// watcher uses this to apply edits to the [logging] table of config.toml.
//
// Records go to stdout as text or JSON. When the systemd journal is
// reachable they also go to the journal, tagged with SYSLOG_IDENTIFIER=dsrnode:
//
//	journalctl -t dsrnode -f
//	journalctl -t dsrnode MODULE=http
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	api = "debug"
//	http = "warn"
package logging
