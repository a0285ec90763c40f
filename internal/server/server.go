// Package server exposes the resolution pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Khootz/FYP2026/internal/config"
	"github.com/Khootz/FYP2026/internal/openrice"
	"github.com/Khootz/FYP2026/internal/pipeline"
)

// Service is the pipeline surface the handlers need. *pipeline.Pool
// implements it; tests substitute a stub.
type Service interface {
	Resolve(ctx context.Context, query string, withDetail bool) (*openrice.Restaurant, pipeline.Meta, error)
	ResolveBatch(ctx context.Context, queries []string, withDetail bool) ([]pipeline.BatchItem, error)
}

// response is the envelope every endpoint answers with.
type response struct {
	Success        bool    `json:"success"`
	Data           any     `json:"data,omitempty"`
	Error          string  `json:"error,omitempty"`
	CacheHit       bool    `json:"cache_hit,omitempty"`
	ElapsedSeconds float64 `json:"elapsed_seconds,omitempty"`
}

type batchRequest struct {
	Queries []string `json:"queries"`
	Details bool     `json:"details"`
}

// Server routes HTTP requests into the pipeline.
type Server struct {
	echo    *echo.Echo
	service Service
	cfg     config.Config
	logger  *slog.Logger
}

// New builds the server and registers its routes.
func New(service Service, cfg config.Config, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())

	s := &Server{echo: e, service: service, cfg: cfg, logger: logger}

	e.GET("/health", s.handleHealth)
	e.GET("/api/restaurants/search/:name", s.handleSearch)
	e.POST("/api/restaurants/batch", s.handleBatch)
	if cfg.MetricsOn {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	return s
}

// Start blocks serving on the configured address until Shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.cfg.ListenAddr)
	err := s.echo.Start(s.cfg.ListenAddr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Handler exposes the routing tree, for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSearch(c echo.Context) error {
	name := c.Param("name")
	if name == "" {
		return c.JSON(http.StatusBadRequest, response{Error: "empty restaurant name"})
	}

	withDetail := true
	if raw := c.QueryParam("details"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, response{Error: "details must be a boolean"})
		}
		withDetail = parsed
	}

	start := time.Now()
	result, meta, err := s.service.Resolve(c.Request().Context(), name, withDetail)
	if err != nil {
		s.logger.Warn("search request failed", "query", name, "err", err)
		return c.JSON(http.StatusInternalServerError, response{Error: "resolution failed"})
	}

	return c.JSON(http.StatusOK, response{
		Success:        true,
		Data:           result,
		CacheHit:       meta.CacheHit,
		ElapsedSeconds: time.Since(start).Seconds(),
	})
}

func (s *Server) handleBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response{Error: "malformed request body"})
	}
	if len(req.Queries) == 0 {
		return c.JSON(http.StatusBadRequest, response{Error: "queries must not be empty"})
	}
	if limit := s.cfg.BatchLimit; limit > 0 && len(req.Queries) > limit {
		return c.JSON(http.StatusBadRequest, response{
			Error: "batch limited to " + strconv.Itoa(limit) + " queries",
		})
	}

	start := time.Now()
	items, err := s.service.ResolveBatch(c.Request().Context(), req.Queries, req.Details)
	if err != nil {
		s.logger.Warn("batch request failed", "queries", len(req.Queries), "err", err)
		return c.JSON(http.StatusInternalServerError, response{Error: "batch resolution failed"})
	}

	return c.JSON(http.StatusOK, response{
		Success:        true,
		Data:           items,
		ElapsedSeconds: time.Since(start).Seconds(),
	})
}
