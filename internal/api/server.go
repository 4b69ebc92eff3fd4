package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/nerrad567/rwanda"
	"github.com/nerrad567/rwanda/internal/infrastructure/config"
	"github.com/nerrad567/rwanda/internal/infrastructure/logging"
	"github.com/nerrad567/rwanda/internal/location"
	"github.com/nerrad567/rwanda/internal/metrics"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.APIConfig
	Logger *logging.Logger
	Table  *rwanda.Table

	// LocationRepo serves code lookups when set.
	LocationRepo location.Repository

	// Metrics may be nil. Gatherer defaults to the global Prometheus registry.
	Metrics  *metrics.Recorder
	Gatherer prometheus.Gatherer

	// DatasetSource names where the table was loaded from, for /stats.
	DatasetSource string
	Version       string
}

// Server is the HTTP API server.
type Server struct {
	cfg           config.APIConfig
	logger        *logging.Logger
	table         *rwanda.Table
	locationRepo  location.Repository
	metrics       *metrics.Recorder
	gatherer      prometheus.Gatherer
	searchCache   *cache.Cache // nil when caching is disabled
	datasetSource string
	version       string
	startTime     time.Time
	server        *http.Server
	listener      net.Listener
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Table == nil {
		return nil, fmt.Errorf("lookup table is required")
	}

	s := &Server{
		cfg:           deps.Config,
		logger:        deps.Logger,
		table:         deps.Table,
		locationRepo:  deps.LocationRepo,
		metrics:       deps.Metrics,
		gatherer:      deps.Gatherer,
		datasetSource: deps.DatasetSource,
		version:       deps.Version,
		startTime:     time.Now(),
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}
	if ttl := deps.Config.GetSearchCacheTTL(); ttl > 0 {
		s.searchCache = cache.New(ttl, 2*ttl)
	}

	return s, nil
}

// Start binds the listen address and serves HTTP in a background goroutine.
// A bind failure (port in use, bad host) is returned to the caller.
// The server can be stopped with Close().
func (s *Server) Start(_ context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = ln
	s.server = &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	s.logger.Info("API server listening", "address", s.server.Addr)
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server, waiting up to 10 seconds for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
