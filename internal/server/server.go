// Package server exposes the generation pipeline over HTTP for the web
// editing frontend.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tessavero/fabula/internal/intelligence"
	"github.com/tessavero/fabula/internal/llm"
)

// Config holds the HTTP listener settings.
type Config struct {
	Addr   string // listen address
	Origin string // single allowed CORS origin
}

// LoadConfig reads server configuration from environment variables,
// falling back to defaults.
func LoadConfig() Config {
	cfg := Config{
		Addr:   ":8080",
		Origin: "http://localhost:3000",
	}
	if v := os.Getenv("FABULA_HTTP_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("FABULA_HTTP_ORIGIN"); v != "" {
		cfg.Origin = v
	}
	return cfg
}

// Server wires the gin router to the LLM layer. Generation goes through the
// single-flight gateway; the raw client is kept for the health probe.
type Server struct {
	cfg    Config
	client llm.Client
	gen    intelligence.Generator
	log    *logrus.Logger
}

func New(cfg Config, client llm.Client, gen intelligence.Generator, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{cfg: cfg, client: client, gen: gen, log: log}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())
	router.Use(corsMiddleware(s.cfg.Origin))

	router.POST("/outline", s.handleOutline())
	router.POST("/dialogs", s.handleDialogs())
	router.GET("/healthz", s.handleHealthz())
	return router
}

// Run serves until the context is canceled or SIGINT/SIGTERM arrives, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	case <-ctx.Done():
	}

	s.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).Milliseconds(),
		}).Info("http request")
	}
}
