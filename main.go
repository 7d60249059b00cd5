package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/dsrnode/cmd"
	"github.com/smazurov/dsrnode/internal/api"
	"github.com/smazurov/dsrnode/internal/config"
	"github.com/smazurov/dsrnode/internal/logging"
	"github.com/smazurov/dsrnode/internal/metrics"
	"github.com/smazurov/dsrnode/internal/processtypes"
	"github.com/smazurov/dsrnode/internal/systemd"
	"github.com/smazurov/dsrnode/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Metrics settings
	MetricsEnabled bool `help:"Expose Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Config watcher settings
	ConfigWatch bool `help:"Reload log levels when the config file changes" default:"true" toml:"config.watch" env:"CONFIG_WATCH"`

	// Logging settings
	LoggingLevel  string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingAPI    string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
	LoggingHTTP   string `help:"HTTP request logging level" default:"info" toml:"logging.http" env:"LOGGING_HTTP"`
	LoggingConfig string `help:"Config watcher logging level" default:"info" toml:"logging.config" env:"LOGGING_CONFIG"`
}

// loggingConfig maps the logging options onto per-module levels.
func (o *Options) loggingConfig() logging.Config {
	return logging.Config{
		Level:  o.LoggingLevel,
		Format: o.LoggingFormat,
		Modules: map[string]string{
			"api":    o.LoggingAPI,
			"http":   o.LoggingHTTP,
			"config": o.LoggingConfig,
		},
	}
}

func main() {
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *Options) {
		// Flag defaults plus CLI values, before the file and env are applied
		base := *opts

		loadErr := config.LoadConfig(opts, cli.Root())

		logging.Initialize(opts.loggingConfig())
		if loadErr != nil {
			logging.GetLogger("main").Warn("Failed to load config", "error", loadErr)
		}

		logger := logging.GetLogger("main")
		notifier := systemd.NewNotifier(logging.GetLogger("systemd"))
		provider := processtypes.NewProvider()

		apiOpts := &api.Options{
			ProcessTypes: provider,
			OnListening: func(addr net.Addr) {
				notifier.Status("serving on " + addr.String())
				notifier.Ready()
			},
		}

		if opts.MetricsEnabled {
			httpMetrics := metrics.NewHTTPMetrics()
			httpMetrics.SetProcessTypes(provider.Len())
			apiOpts.Metrics = httpMetrics
		}

		server := api.NewServer(apiOpts)

		var watcher *config.Watcher[Options]
		if opts.ConfigWatch {
			if _, statErr := os.Stat(opts.Config); statErr == nil {
				watcher = config.NewWatcher(opts.Config, config.ReloadLoader(base, cli.Root()), logging.GetLogger("config"))
				watcher.OnReload(func(reloaded Options) {
					cfg := reloaded.loggingConfig()
					logging.SetLevels(cfg)
					logger.Info("Log levels reloaded", "level", cfg.Level, "modules", cfg.Modules)
				})
			}
		}

		hooks.OnStart(func() {
			logger.Info("Starting dsrnode", "version", version.String(), "process_types", provider.Codes())

			if watcher != nil {
				if startErr := watcher.Start(); startErr != nil {
					logger.Warn("Failed to start config watcher", "error", startErr)
					watcher = nil
				}
			}

			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			notifier.Stopping()

			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if stopErr := server.Stop(ctx); stopErr != nil {
				logger.Error("Error stopping HTTP server", "error", stopErr)
			}

			if watcher != nil {
				if stopErr := watcher.Stop(); stopErr != nil {
					logger.Warn("Error stopping config watcher", "error", stopErr)
				}
			}
		})
	})

	cli.Root().Use = "dsrnode"
	cli.Root().Short = "Reference data service for DSR process types"
	cli.Root().Version = version.String()

	cli.Root().AddCommand(cmd.CreateProcessTypesCmd())

	cli.Run()
}
