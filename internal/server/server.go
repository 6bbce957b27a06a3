// Package server exposes the planner over HTTP. It is a thin
// collaborator: requests are translated into Assemble calls and the
// resulting Plan into JSON, charts, or downloadable files. No state
// survives a request.
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

	"github.com/coilworks/slitplan/internal/config"
	"github.com/coilworks/slitplan/internal/logger"
	"github.com/coilworks/slitplan/internal/metrics"
	"github.com/coilworks/slitplan/internal/planner"
	"github.com/coilworks/slitplan/internal/solver"
)

type Server struct {
	cfg     *config.Config
	log     logger.Logger
	asm     *planner.Assembler
	metrics *metrics.PlanMetrics
	engine  *gin.Engine
}

// New wires the service: planner, metrics registry, and routes.
func New(cfg *config.Config, log logger.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	pm := metrics.New(reg)

	sv := solver.New()
	if cfg.Solver.MaxCells > 0 {
		sv.MaxCells = cfg.Solver.MaxCells
	}
	asm := &planner.Assembler{
		Solver:   sv,
		Workers:  cfg.Planner.Workers,
		Recorder: pm,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{cfg: cfg, log: log, asm: asm, metrics: pm, engine: engine}

	engine.POST("/api/optimize", s.handleOptimize)
	engine.POST("/api/report", s.handleReport)
	engine.GET("/download/inventory.xlsx", s.handleDownloadCoils)
	engine.GET("/download/order.xlsx", s.handleDownloadOrders)
	engine.GET("/healthz", s.handleHealth)
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Server.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
