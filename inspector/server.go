package inspector

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

	"github.com/kbukum/scenedi/component"
	"github.com/kbukum/scenedi/di"
	"github.com/kbukum/scenedi/logger"
	"github.com/kbukum/scenedi/scene"
)

// HealthChecker returns health status for the application's components.
type HealthChecker func(ctx context.Context) []component.Health

// Source is what the inspector exposes.
type Source struct {
	// Service names the application in /health and /info.
	Service string
	// Registry is the binding registry to introspect.
	Registry *di.Registry
	// Root is the scene root dumped by /tree. Nil disables the route's data.
	Root *scene.Node
	// Health reports additional component health for /health.
	Health HealthChecker
}

// Server is a read-only HTTP view of a registry and its scene tree,
// served by Gin behind an h2c handler.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	src        Source
	log        *logger.Logger
	started    time.Time

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server and registers its routes. cfg should already have
// defaults applied.
func New(cfg Config, src Source, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.Get("inspector")
	}

	engine := gin.New()
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	h2s := &http2.Server{
		MaxConcurrentStreams: 64,
		IdleTimeout:          60 * time.Second,
	}

	s := &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      h2c.NewHandler(mux, h2s),
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
		},
		engine:  engine,
		config:  cfg,
		src:     src,
		log:     log,
		started: time.Now(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(recovery(s.log), requestID(), requestLogger(s.log))

	s.engine.GET("/health", s.health)
	s.engine.GET("/info", s.info)
	s.engine.GET("/bindings", s.bindings)
	s.engine.GET("/bindings/:var", s.binding)
	s.engine.GET("/tree", s.tree)
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("inspector failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("inspector server error", logger.Fields("error", err.Error()))
		}
	}()

	s.log.Info("inspector listening", logger.Fields("addr", listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("inspector shutdown error: %w", err)
	}

	s.mu.Lock()
	s.listener = nil
	s.mu.Unlock()
	return nil
}

// Addr returns the bound address while serving, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

func (s *Server) listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}
