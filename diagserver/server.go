package diagserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/framegraph/component"
	"github.com/kbukum/framegraph/config"
	"github.com/kbukum/framegraph/logger"
)

const (
	pathHealth     = "/healthz"
	pathGraph      = "/graph"
	pathTiming     = "/timing"
	pathTimingDart = "/timing/dart"
	pathStatus     = "/status"
	pathVersion    = "/version"
	pathEvents     = "/events"

	defaultShutdownTimeout = 5 * time.Second
	keepAliveInterval      = 30 * time.Second
)

// HealthFunc reports the health of the process's components.
// component.Registry.HealthAll satisfies it.
type HealthFunc func(ctx context.Context) []component.Health

// Server serves diagnostics from a Store.
type Server struct {
	cfg     config.ServerConfig
	store   *Store
	health  HealthFunc
	log     *logger.Logger
	engine  *gin.Engine
	handler http.Handler

	mu         sync.Mutex
	httpServer *http.Server
	addr       string
}

// New builds a Server with its routes registered. A nil health func reports
// healthy; a nil logger uses the global one.
func New(cfg config.ServerConfig, store *Store, health HealthFunc, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.WithComponent("diagserver")
	} else {
		log = log.WithComponent("diagserver")
	}
	if store == nil {
		store = NewStore()
	}

	engine := gin.New()
	engine.Use(recovery(log), requestID(), requestLogger(log))

	h2s := &http2.Server{
		MaxConcurrentStreams: 64,
		IdleTimeout:          120 * time.Second,
	}
	s := &Server{
		cfg:     cfg,
		store:   store,
		health:  health,
		log:     log,
		engine:  engine,
		handler: h2c.NewHandler(engine, h2s),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET(pathHealth, s.handleHealth)
	s.engine.GET(pathGraph, s.handleGraph)
	s.engine.GET(pathTiming, s.handleTiming)
	s.engine.GET(pathTimingDart, s.handleTimingDart)
	s.engine.GET(pathStatus, s.handleStatus)
	s.engine.GET(pathVersion, s.handleVersion)
	s.engine.GET(pathEvents, s.handleEvents)
}

// Handler returns the h2c-wrapped handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Store returns the store the server reads from.
func (s *Server) Store() *Store {
	return s.store
}

// Start binds the listener and serves in the background. It returns once the
// port is bound.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.httpServer != nil {
		return fmt.Errorf("diagserver: already started on %s", s.addr)
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("diagserver: bind %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.httpServer = srv
	s.addr = ln.Addr().String()

	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", logger.ErrorFields("serve", err))
		}
	}()

	s.log.Info("Diagnostics server started", map[string]interface{}{"addr": s.addr})
	return nil
}

// Stop shuts the server down, waiting at most the configured shutdown
// timeout for in-flight requests.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.httpServer = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}

	// Event streams never go idle on their own.
	s.store.events.disconnectAll()

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("diagserver: shutdown: %w", err)
	}
	s.log.Info("Diagnostics server stopped")
	return nil
}

// Running reports whether Start succeeded and Stop has not been called.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.httpServer != nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.addr != "" {
		return s.addr
	}
	return net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
}
