package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/smazurov/dsrnode/internal/api/models"
	"github.com/smazurov/dsrnode/internal/logging"
	"github.com/smazurov/dsrnode/internal/metrics"
	"github.com/smazurov/dsrnode/internal/processtypes"
	"github.com/smazurov/dsrnode/internal/version"
)

// Server is the Huma v2 API server.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	options    *Options
	logger     *slog.Logger
	mu         sync.Mutex
	httpServer *http.Server

	processTypes ProcessTypeLister
}

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	ProcessTypes ProcessTypeLister    // defaults to the built-in table
	Metrics      *metrics.HTTPMetrics // nil disables /metrics
	CORS         *CORSConfig          // nil uses DefaultCORSConfig
	OnListening  func(addr net.Addr)  // called once the listener is bound
}

// NewServer creates the API server with Go 1.22+ native routing.
func NewServer(opts *Options) *Server {
	if opts == nil {
		opts = &Options{}
	}
	if opts.ProcessTypes == nil {
		opts.ProcessTypes = processtypes.NewProvider()
	}
	corsConfig := DefaultCORSConfig()
	if opts.CORS != nil {
		corsConfig = *opts.CORS
	}

	mux := http.NewServeMux()
	AddCORSHandler(mux, corsConfig)

	config := huma.DefaultConfig("DSR API", version.String())
	config.Info.Description = "Reference data lookups for DSR processing"
	// Empty servers list makes OpenAPI use relative paths
	config.Servers = []*huma.Server{}
	// No $schema links: response bodies must match the published shape exactly
	config.CreateHooks = nil

	api := humago.New(mux, config)

	server := &Server{
		api:          api,
		mux:          mux,
		options:      opts,
		logger:       logging.GetLogger("api"),
		processTypes: opts.ProcessTypes,
	}

	api.UseMiddleware(NewCORSMiddleware(corsConfig))
	api.UseMiddleware(HTTPLoggingMiddleware)
	if opts.Metrics != nil {
		api.UseMiddleware(NewMetricsMiddleware(opts.Metrics))
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}

	server.registerRoutes()

	// Catch-all for GET/HEAD. Registered routes are more specific and win;
	// other methods on unknown paths still get 405 from the mux.
	mux.HandleFunc("GET /", notFound)

	return server
}

// notFound answers unmatched paths with an RFC 7807 body like Huma's own errors.
func notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(http.StatusNotFound)
	if r.Method == http.MethodHead {
		return
	}
	_ = json.NewEncoder(w).Encode(&huma.ErrorModel{
		Title:    http.StatusText(http.StatusNotFound),
		Status:   http.StatusNotFound,
		Detail:   "no route for " + r.URL.Path,
		Instance: r.URL.Path,
	})
}

// GetMux returns the underlying HTTP ServeMux.
func (s *Server) GetMux() *http.ServeMux {
	return s.mux
}

// GetAPI returns the Huma API instance.
func (s *Server) GetAPI() huma.API {
	return s.api
}

// Start listens on addr and serves until Stop. It returns
// http.ErrServerClosed after a clean shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener.
func (s *Server) Serve(ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.mu.Lock()
	if s.httpServer != nil {
		s.mu.Unlock()
		ln.Close()
		return errors.New("api server already running")
	}
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info("Starting DSR API server", "addr", ln.Addr().String())
	s.logger.Info("OpenAPI documentation available", "url", "http://"+ln.Addr().String()+"/docs")

	if s.options.OnListening != nil {
		s.options.OnListening(ln.Addr())
	}

	return srv.Serve(ln)
}

// Stop gracefully shuts the server down, waiting for in-flight requests
// until ctx expires.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	s.logger.Info("Stopping API server")
	return srv.Shutdown(ctx)
}

// registerRoutes sets up all API endpoints
func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check API health status",
		Tags:        []string{"health"},
	}, func(_ context.Context, _ *struct{}) (*models.HealthResponse, error) {
		return &models.HealthResponse{
			Body: models.HealthData{
				Status:  "ok",
				Message: "API is healthy",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get application version information",
		Tags:        []string{"system"},
	}, func(_ context.Context, _ *struct{}) (*models.VersionResponse, error) {
		info := version.Get()
		return &models.VersionResponse{
			Body: models.VersionData{
				Version:   info.Version,
				GitCommit: info.GitCommit,
				BuildDate: info.BuildDate,
				BuildID:   info.BuildID,
				GoVersion: info.GoVersion,
				Compiler:  info.Compiler,
				Platform:  info.Platform,
			},
		}, nil
	})

	s.registerProcessTypeRoutes()
}
