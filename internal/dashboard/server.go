// Package dashboard serves the interactive utilization dashboard.
package dashboard

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jwulff/abyss-go/internal/domain"
	"github.com/jwulff/abyss-go/internal/logging"
	"github.com/jwulff/abyss-go/internal/metrics"
	"github.com/jwulff/abyss-go/internal/render"
)

// Dashboard defaults.
const (
	PageTitle       = "Abyss Data"
	PageSize        = 15
	DefaultFloor    = domain.Floor9
	shutdownTimeout = 10 * time.Second
)

// ErrNotLoaded is returned while no table has been loaded yet.
var ErrNotLoaded = errors.New("dashboard: no data loaded")

// Options configures a Server.
type Options struct {
	CDN    string
	Logger *zap.Logger
}

// Server holds the latest utilization table and serves it over HTTP.
type Server struct {
	loader TableLoader
	cdn    string
	logger *zap.Logger
	engine *gin.Engine

	mu       sync.RWMutex
	table    domain.UtilizationTable
	loaded   bool
	loadedAt time.Time
	lastErr  error
}

// NewServer creates a server that loads data with loader.
func NewServer(loader TableLoader, opts Options) *Server {
	opts.Logger = logging.OrNop(opts.Logger)
	if opts.CDN == "" {
		opts.CDN = render.DefaultCDN
	}
	s := &Server{
		loader: loader,
		cdn:    opts.CDN,
		logger: opts.Logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.logger))
	r.SetHTMLTemplate(indexTemplate)

	r.GET("/", s.handleIndex)
	r.GET("/healthz", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))
	api.GET("/utilization", s.handleUtilization)
	api.GET("/figure", s.handleFigure)

	return r
}

// requestLogger logs each request through zap.
func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// Refresh reloads the table. On failure the previous table keeps being served.
func (s *Server) Refresh(ctx context.Context) error {
	table, err := s.loader.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.lastErr = err
		s.logger.Warn("dashboard refresh failed", zap.Error(err), zap.Bool("serving_previous", s.loaded))
		return err
	}

	s.table = table
	s.loaded = true
	s.loadedAt = time.Now()
	s.lastErr = nil
	metrics.SetDashboardRows(table.Len())
	return nil
}

// Run refreshes every interval until ctx is done. A non-positive interval
// only waits for ctx.
func (s *Server) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = s.Refresh(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", addr))
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
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

// Snapshot returns the table being served.
func (s *Server) Snapshot() (domain.UtilizationTable, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loaded {
		if s.lastErr != nil {
			return domain.UtilizationTable{}, time.Time{}, s.lastErr
		}
		return domain.UtilizationTable{}, time.Time{}, ErrNotLoaded
	}
	return s.table, s.loadedAt, nil
}

type viewQuery struct {
	floor domain.Floor
	top   int
	page  int
}

func parseQuery(c *gin.Context) (viewQuery, error) {
	q := viewQuery{floor: DefaultFloor, page: 1}

	if raw := c.Query("floor"); raw != "" {
		floor, err := domain.ParseFloor(raw)
		if err != nil {
			return q, err
		}
		q.floor = floor
	}
	if raw := c.Query("top"); raw != "" {
		top, err := strconv.Atoi(raw)
		if err != nil || top < 0 {
			return q, errors.New("top must be a non-negative integer")
		}
		q.top = top
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return q, errors.New("page must be a positive integer")
		}
		q.page = page
	}
	return q, nil
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body := gin.H{
		"status":   "ok",
		"rows":     s.table.Len(),
		"schedule": s.table.Schedule,
	}
	if s.loaded {
		body["loaded_at"] = s.loadedAt.UTC().Format(time.RFC3339)
	}
	if s.lastErr != nil {
		body["last_error"] = s.lastErr.Error()
	}

	status := http.StatusOK
	if !s.loaded {
		body["status"] = "unavailable"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, body)
}

func (s *Server) handleUtilization(c *gin.Context) {
	table, loadedAt, err := s.Snapshot()
	if err != nil {
		errorJSON(c, http.StatusServiceUnavailable, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"schedule":  table.Schedule,
		"columns":   table.Columns(),
		"records":   table.Records(),
		"loaded_at": loadedAt.UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleFigure(c *gin.Context) {
	q, err := parseQuery(c)
	if err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	table, _, err := s.Snapshot()
	if err != nil {
		errorJSON(c, http.StatusServiceUnavailable, err)
		return
	}

	c.JSON(http.StatusOK, render.UtilizationBar(table, q.floor, q.top))
}
