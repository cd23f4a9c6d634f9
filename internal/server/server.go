// Package server exposes the ingestion trigger and the article read path
// over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"logiscan/internal/model"
	"logiscan/internal/pipeline"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const maxArticlesLimit = 200

// Runner runs one ingestion pass.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Reader is the read side of the article store.
type Reader interface {
	Recent(ctx context.Context, limit int) ([]model.Article, error)
	Ping(ctx context.Context) error
}

type Options struct {
	Addr            string
	CronSecret      string
	RecentLimit     int
	ShutdownTimeout time.Duration
}

// Server is an HTTP worker serving the trigger, read and ops endpoints.
type Server struct {
	e       *echo.Echo
	runner  Runner
	reader  Reader
	addr    string
	recent  int
	timeout time.Duration
}

func New(opts Options, runner Runner, reader Reader) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		e:       e,
		runner:  runner,
		reader:  reader,
		addr:    opts.Addr,
		recent:  opts.RecentLimit,
		timeout: opts.ShutdownTimeout,
	}
	if s.recent <= 0 {
		s.recent = 50
	}
	if s.timeout <= 0 {
		s.timeout = 10 * time.Second
	}

	e.GET("/api/cron", s.handleCron, RequireBearer(opts.CronSecret))
	e.GET("/api/articles", s.handleArticles)
	e.GET("/api/tags", s.handleTags)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	return s
}

// Handler returns the underlying http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		slog.Info("server: listening", "addr", s.addr)
		errc <- s.e.Start(s.addr)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	slog.Info("server: shutting down")
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}

type CronStats struct {
	Processed   int `json:"processed"`
	NewArticles int `json:"newArticles"`
	Errors      int `json:"errors"`
}

// CronResponse is the trigger success body. Errors is omitted when empty.
type CronResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Stats   CronStats `json:"stats"`
	Errors  []string  `json:"errors,omitempty"`
}

type cronFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// NewCronResponse builds the success body for a run result.
func NewCronResponse(res pipeline.Result) CronResponse {
	return CronResponse{
		Success: true,
		Message: "Cron job completed",
		Stats: CronStats{
			Processed:   res.Processed,
			NewArticles: res.NewArticles,
			Errors:      len(res.Errors),
		},
		Errors: res.Errors,
	}
}

func (s *Server) handleCron(c echo.Context) error {
	// A dropped caller must not cut the run short.
	res, err := s.runner.Run(context.WithoutCancel(c.Request().Context()))
	if errors.Is(err, pipeline.ErrAlreadyRunning) {
		return c.JSON(http.StatusConflict, cronFailure{Error: "Cron job already running"})
	}
	if err != nil {
		slog.Error("server: cron job failed", "error", err)
		return c.JSON(http.StatusInternalServerError, cronFailure{
			Error:   "Cron job failed",
			Details: err.Error(),
		})
	}
	return c.JSON(http.StatusOK, NewCronResponse(res))
}

func (s *Server) handleArticles(c echo.Context) error {
	limit := s.recent
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid limit"})
		}
		limit = min(n, maxArticlesLimit)
	}
	articles, err := s.reader.Recent(c.Request().Context(), limit)
	if err != nil {
		slog.Error("server: list articles failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load articles"})
	}
	if tag := c.QueryParam("tag"); tag != "" {
		articles = FilterByTag(articles, tag)
	}
	return c.JSON(http.StatusOK, articles)
}

func (s *Server) handleTags(c echo.Context) error {
	articles, err := s.reader.Recent(c.Request().Context(), s.recent)
	if err != nil {
		slog.Error("server: list tags failed", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to load tags"})
	}
	return c.JSON(http.StatusOK, UniqueTags(articles))
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := s.reader.Ping(ctx); err != nil {
		slog.Warn("server: health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// FilterByTag keeps articles carrying tag, preserving order.
func FilterByTag(articles []model.Article, tag string) []model.Article {
	out := make([]model.Article, 0, len(articles))
	for _, a := range articles {
		if a.HasTag(tag) {
			out = append(out, a)
		}
	}
	return out
}

// UniqueTags returns the sorted set of tags across articles.
func UniqueTags(articles []model.Article) []string {
	seen := map[string]struct{}{}
	for _, a := range articles {
		for _, t := range a.Tags {
			seen[t] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
