// Package server is the reference sync service the remote client talks to.
// Each user id owns one task list in a TaskRepository.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/sandeepkv93/daybook/internal/logging"
	"github.com/sandeepkv93/daybook/internal/storage"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	repo     storage.TaskRepository
	router   *gin.Engine
	log      logrus.FieldLogger
	registry *prometheus.Registry
	metrics  *metrics
	now      func() time.Time
}

type Options struct {
	Logger logrus.FieldLogger
	// Registry defaults to a fresh one so tests never share collectors.
	Registry *prometheus.Registry
	Now      func() time.Time
}

func New(repo storage.TaskRepository, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		repo:     repo,
		router:   gin.New(),
		log:      logger.WithField("component", "server"),
		registry: reg,
		metrics:  newMetrics(reg),
		now:      now,
	}

	s.router.Use(gin.Recovery(), requestID(), s.logRequests(), s.metrics.middleware())

	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	api := s.router.Group("/api")
	{
		api.GET("/tasks", s.handleListTasks)
		api.POST("/tasks", s.handleUpsertTask)
		api.DELETE("/tasks/:id", s.handleDeleteTask)
	}
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("sync service starting")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info("sync service stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
