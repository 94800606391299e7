package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vortex-oo/clouddrop/pkg/dropzone"
	"github.com/vortex-oo/clouddrop/pkg/uploader"
)

// Server serves the CloudDrop page, its live sessions and the drop intake.
type Server struct {
	config   *Config
	router   chi.Router
	upgrader websocket.Upgrader
	sessions *SessionManager
	store    dropzone.Store
	uploader uploader.Uploader
	registry *prometheus.Registry
	metrics  *metrics
	logger   *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

// New creates a Server that stages dropped files in store.
func New(config *Config, store dropzone.Store) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()
	if config.Address == "" {
		config.Address = defaults.Address
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if config.Intake == nil {
		config.Intake = defaults.Intake
	}
	config.Session = config.Session.withDefaults()

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	registry := config.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	up := config.Uploader
	if up == nil {
		up = uploader.NewClient(uploader.DefaultBaseURL, uploader.WithMetrics(uploader.NewMetrics(registry)))
	}

	checkOrigin := config.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = sameHost
	}

	m := newMetrics(registry)
	s := &Server{
		config:   config,
		sessions: newSessionManager(m, logger),
		store:    store,
		uploader: up,
		registry: registry,
		metrics:  m,
		logger:   logger,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || checkOrigin(origin, r.Host)
		},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/", s.servePage)
	r.Get("/assets/client.js", serveClientScript)
	r.Get("/live", s.HandleWebSocket)
	r.With(s.countDrops).Post("/sessions/{id}/files",
		dropzone.Handler(s.store, s.resolve, s.intakeConfig()).ServeHTTP)
	r.Get("/healthz", s.serveHealth)
	if s.config.MetricsPath != "" {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) intakeConfig() *dropzone.HandlerConfig {
	cfg := *s.config.Intake
	if cfg.Logger == nil {
		cfg.Logger = s.logger
	}
	return &cfg
}

// resolve finds the session a drop is addressed to.
func (s *Server) resolve(r *http.Request) (dropzone.Target, error) {
	return s.sessions.Get(chi.URLParam(r, "id"))
}

// HandleWebSocket upgrades the request and runs a new session on it.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	session := newSession(conn, sessionOptions{
		config:   s.config.Session,
		uploader: s.uploader,
		accept:   s.config.Intake.Accept,
		metrics:  s.metrics,
		logger:   s.logger,
		onClose:  s.sessions.Remove,
	})
	s.sessions.Add(session)
	session.logger.Info("session started", "remote", r.RemoteAddr)

	if err := session.Start(); err != nil {
		session.logger.Warn("session greeting failed", "error", err)
		session.Close()
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":   "ok",
		"sessions": s.sessions.Count(),
	})
}

// countDrops records the intake status code.
func (s *Server) countDrops(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.metrics.drop(strconv.Itoa(ww.Status()))
	})
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes all sessions and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.sessions.Shutdown()

	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()
	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Registry returns the metrics registry.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// sameHost accepts origins whose host matches the request host.
func sameHost(origin, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, host)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
