package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultTimeout = 5 * time.Second

// ReadinessSource reports whether the bot is connected and serving commands.
type ReadinessSource interface {
	Ready() bool
}

// Config captures all inputs required to construct the ops server.
type Config struct {
	ListenAddr           string
	AllowedOrigins       []string
	Readiness            ReadinessSource
	Gatherer             prometheus.Gatherer
	Logger               *slog.Logger
	ReadHeaderTimeout    time.Duration
	ShutdownGraceTimeout time.Duration
}

// Server hosts liveness, readiness and metrics endpoints.
type Server struct {
	config     Config
	httpServer *http.Server
	logger     *slog.Logger
}

// NewServer wires Gin, middleware, and handlers for the ops endpoints.
func NewServer(cfg Config) (*Server, error) {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return nil, errors.New("httpapi: listen address is required")
	}
	if cfg.Readiness == nil {
		return nil, errors.New("httpapi: readiness source is required")
	}
	if cfg.Gatherer == nil {
		return nil, errors.New("httpapi: metrics gatherer is required")
	}
	if cfg.Logger == nil {
		return nil, errors.New("httpapi: logger is required")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(cfg.Logger))
	if len(cfg.AllowedOrigins) > 0 {
		engine.Use(buildCORS(cfg.AllowedOrigins))
	}

	engine.GET("/healthz", func(contextGin *gin.Context) {
		contextGin.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/readyz", func(contextGin *gin.Context) {
		if !cfg.Readiness.Ready() {
			contextGin.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
			return
		}
		contextGin.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           engine,
		ReadHeaderTimeout: pickDuration(cfg.ReadHeaderTimeout, defaultTimeout),
	}

	return &Server{
		config:     cfg,
		httpServer: httpServer,
		logger:     cfg.Logger,
	}, nil
}

// Start begins serving HTTP traffic on the configured address.
func (server *Server) Start() error {
	listener, err := net.Listen("tcp", server.config.ListenAddr)
	if err != nil {
		return err
	}
	return server.Serve(listener)
}

// Serve accepts connections on listener until Shutdown.
func (server *Server) Serve(listener net.Listener) error {
	server.logger.Info("ops server listening", "address", listener.Addr().String())
	err := server.httpServer.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully terminates the HTTP server.
func (server *Server) Shutdown(ctx context.Context) error {
	timeout := pickDuration(server.config.ShutdownGraceTimeout, defaultTimeout)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return server.httpServer.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(contextGin *gin.Context) {
		started := time.Now()
		contextGin.Next()
		logger.Debug(
			"http_request_completed",
			"method", contextGin.Request.Method,
			"path", contextGin.Request.URL.Path,
			"status", contextGin.Writer.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}

// Ops endpoints are read-only, so only GET is allowed and credentials are never shared.
func buildCORS(allowedOrigins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Accept"},
		MaxAge:       time.Hour,
	})
}

func pickDuration(candidate time.Duration, fallback time.Duration) time.Duration {
	if candidate <= 0 {
		return fallback
	}
	return candidate
}
