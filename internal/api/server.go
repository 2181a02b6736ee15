package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-bridge/internal/audit"
	"github.com/nerrad567/gray-bridge/internal/device"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/config"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-bridge/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-bridge/internal/objectstore"
	"github.com/nerrad567/gray-bridge/internal/variable"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    *config.Config
	Logger    *logging.Logger
	Store     objectstore.Store
	Registry  *device.Registry
	Repo      device.Repository
	AuditRepo audit.Repository
	MQTT      *mqtt.Client     // optional: state announcements
	Influx    *influxdb.Client // optional: write history
	Version   string
}

// Server is the HTTP server for Gray Bridge.
//
// It manages the HTTP listener, the action dispatcher, the registry
// REST routes, and middleware. The server is created with New() and
// started with Start().
type Server struct {
	cfg       *config.Config
	logger    *logging.Logger
	store     objectstore.Store
	walker    *variable.Walker
	writer    *variable.Writer
	registry  *device.Registry
	repo      device.Repository
	auditRepo audit.Repository
	mqtt      *mqtt.Client
	influx    *influxdb.Client
	version   string

	server  *http.Server
	auditCh chan *audit.AuditLog
	cancel  context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, store, registry)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("object store is required")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("device registry is required")
	}
	// MQTT and InfluxDB are optional side channels

	s := &Server{
		cfg:       deps.Config,
		logger:    deps.Logger,
		store:     deps.Store,
		walker:    variable.NewWalker(deps.Store),
		writer:    variable.NewWriter(deps.Store),
		registry:  deps.Registry,
		repo:      deps.Repo,
		auditRepo: deps.AuditRepo,
		mqtt:      deps.MQTT,
		influx:    deps.Influx,
		version:   deps.Version,
	}

	if s.auditRepo != nil {
		s.auditCh = make(chan *audit.AuditLog, auditChanSize)
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router, starts the audit drain goroutine, and launches
// the HTTP listener in a background goroutine. The server is stopped
// with Close().
//
// Parameters:
//   - ctx: Context for cancellation of background goroutines
//
// Returns:
//   - error: If the server fails to start (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.auditCh != nil {
		go s.drainAuditLog(srvCtx)
	}

	// Broker-side write requests: graybridge/variable/+/set.
	if s.mqtt != nil {
		if err := s.startMQTTWriteChannel(); err != nil {
			s.logger.Warn("MQTT write channel unavailable", "error", err)
		}
	}

	// Periodic device sampling onto the side channels.
	if s.cfg.Bridge.SampleInterval > 0 && (s.mqtt != nil || s.influx != nil) {
		go s.runSampler(srvCtx)
	}

	router := s.buildRouter()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.API.Host, s.cfg.API.Port),
		Handler:           router,
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		var err error
		if s.cfg.API.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.API.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.API.TLS.CertFile, s.cfg.API.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting",
				"address", s.server.Addr,
				"hook", s.cfg.HookRoute(),
			)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
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
