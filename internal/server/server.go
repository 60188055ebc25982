// Package server exposes the dashboard views, chart images and chat
// sessions over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/KaramelBytes/tdfdash/internal/chat"
	"github.com/KaramelBytes/tdfdash/internal/report"
	"github.com/KaramelBytes/tdfdash/internal/source"
	"github.com/KaramelBytes/tdfdash/internal/stages"
)

// Server serves one dataset and its chat sessions.
type Server struct {
	reg     *chat.Registry
	density stages.DensityOptions
	engine  *gin.Engine

	mu    sync.RWMutex
	name  string
	views *report.Views
}

// New builds the HTTP API over reg, whose base dataset is named name.
func New(reg *chat.Registry, name string, density stages.DensityOptions) *Server {
	s := &Server{reg: reg, density: density, name: name}
	s.views = report.Build(name, reg.Base(), density)
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(ginLogger(logrus.StandardLogger()))

	router.GET("/healthz", s.health)
	router.GET("/api/views", s.allViews)
	router.GET("/api/views/:name", s.view)
	router.GET("/charts/:file", s.chartPNG)
	router.GET("/api/greeting", s.greeting)
	router.POST("/api/sessions", s.createSession)
	router.POST("/api/sessions/:id/chat", s.ask)
	router.POST("/api/sessions/:id/reset", s.reset)
	router.DELETE("/api/sessions/:id", s.deleteSession)
	return router
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler { return s.engine }

// Reload opens opt again, swaps the dataset into every session and
// refreshes the cached views. The registry closes the previous source once
// in-flight questions finish.
func (s *Server) Reload(ctx context.Context, opt source.Options) error {
	src, err := source.Open(ctx, opt)
	if err != nil {
		return err
	}
	rows, err := src.Load(ctx)
	if err != nil {
		_ = src.Close()
		return err
	}
	views := report.Build(src.Name(), rows, s.density)
	s.reg.Swap(ctx, src, rows, views.Markdown())
	s.mu.Lock()
	s.name, s.views = src.Name(), views
	s.mu.Unlock()
	logrus.WithFields(logrus.Fields{"source": src.Name(), "rows": len(rows)}).Info("dataset reloaded")
	return nil
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("http server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logrus.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) baseViews() *report.Views {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.views
}
