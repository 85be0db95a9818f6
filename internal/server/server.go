// Package server assembles the gin engine and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/skillconnect/jobcore/internal/config"
	"github.com/skillconnect/jobcore/internal/jobs/handler"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/net/resp"
	"github.com/skillconnect/jobcore/internal/server/middleware"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Drainer finishes background work before shutdown.
type Drainer interface {
	Wait(ctx context.Context) error
}

// Options wires the server.
type Options struct {
	Config  *config.Config
	Logger  *logging.Logger
	Handler *handler.Handler
	Tokens  middleware.TokenDecoder
	// Limiter enables per-IP rate limiting when set.
	Limiter middleware.Limiter
	Health  map[string]HealthCheck
	Drain   []Drainer
}

// Server is the HTTP server.
type Server struct {
	opts   Options
	engine *gin.Engine
	http   *http.Server
}

// New creates the server and its routes.
func New(o Options) *Server {
	s := &Server{opts: o}
	s.engine = s.setupRouter()
	s.http = &http.Server{
		Addr:         o.Config.Server.Addr(),
		Handler:      s.engine,
		ReadTimeout:  o.Config.Server.ReadTimeout,
		WriteTimeout: o.Config.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Engine returns the gin engine.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) setupRouter() *gin.Engine {
	cfg := s.opts.Config
	if cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	var proxies []string
	if len(cfg.Server.TrustedProxies) > 0 {
		proxies = cfg.Server.TrustedProxies
	}
	if err := r.SetTrustedProxies(proxies); err != nil {
		s.opts.Logger.Error(context.Background(), "invalid trusted proxies, trusting none", "proxies", proxies, "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(
		middleware.Recovery(s.opts.Logger),
		middleware.Trace(),
		middleware.Logger(s.opts.Logger),
		middleware.CORS(cfg.CORS),
	)

	api := r.Group("/api")
	api.GET("/health", s.health)

	if s.opts.Limiter != nil && cfg.RateLimit.Enabled {
		api.Use(middleware.RateLimit(s.opts.Limiter, cfg.RateLimit.Max, s.opts.Logger))
	}
	s.opts.Handler.RegisterRoutes(api, s.opts.Tokens)

	r.NoRoute(func(c *gin.Context) {
		resp.Fail(c.Writer, resp.NotFound("route not found"))
	})
	return r
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(s.opts.Health))
	healthy := true
	for name, check := range s.opts.Health {
		if err := check(ctx); err != nil {
			healthy = false
			checks[name] = "down"
			s.opts.Logger.Warn(ctx, "health check failed", "check", name, "error", err)
			continue
		}
		checks[name] = "up"
	}

	body := map[string]any{"status": "healthy", "checks": checks}
	if !healthy {
		body["status"] = "degraded"
		resp.WithStatusCode(c.Writer, http.StatusServiceUnavailable, body)
		return
	}
	resp.Success(c.Writer, body)
}

// Run serves until ctx is cancelled, then shuts down gracefully and drains
// background work.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.opts.Logger.Info(ctx, "Starting server", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.opts.Logger.Info(context.Background(), "Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.Config.Server.ShutdownTimeout)
	defer cancel()

	err := s.http.Shutdown(shutdownCtx)
	if err != nil {
		s.opts.Logger.Error(shutdownCtx, "Server forced to shutdown", "error", err)
	}
	for _, d := range s.opts.Drain {
		if derr := d.Wait(shutdownCtx); derr != nil {
			s.opts.Logger.Warn(shutdownCtx, "background work not drained", "error", derr)
		}
	}
	s.opts.Logger.Info(context.Background(), "Server exited")
	return err
}
