package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/agenthands/orgchart/internal/config"
	"github.com/agenthands/orgchart/internal/core/model"
)

// Service is the set of organisation queries the HTTP layer exposes.
type Service interface {
	ActivePortfolios(ctx context.Context, presidentID, date string) (*model.PortfolioSnapshot, error)
	DepartmentsByPortfolio(ctx context.Context, portfolioID, date string) (*model.DepartmentSnapshot, error)
	PrimeMinister(ctx context.Context, date string) (*model.PrimeMinister, error)
	DepartmentHistory(ctx context.Context, departmentID string) ([]model.TimelineView, error)
}

type Options struct {
	Mode          string
	MaxConcurrent int
	WaitTimeout   time.Duration
	RateLimit     config.RateLimitConfig
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Mode:          cfg.Server.Mode,
		MaxConcurrent: cfg.Throttle.MaxConcurrent,
		WaitTimeout:   cfg.Throttle.Wait(),
		RateLimit:     cfg.RateLimit,
	}
}

type Server struct {
	Orgchart Service
	Log      logrus.FieldLogger
	opts     Options
	slots    *semaphore.Weighted
}

func NewServer(svc Service, opts Options, log logrus.FieldLogger) *Server {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 200
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 30 * time.Second
	}
	return &Server{
		Orgchart: svc,
		Log:      log,
		opts:     opts,
		slots:    semaphore.NewWeighted(int64(opts.MaxConcurrent)),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	if s.opts.Mode != "" {
		gin.SetMode(s.opts.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.RequestLogger(), s.Metrics())

	r.GET("/health", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1/organisation")
	if s.opts.RateLimit.Enabled && s.opts.RateLimit.GlobalRPS > 0 {
		v1.Use(s.RateLimit())
	}
	v1.Use(s.Throttle())
	{
		v1.POST("/active-portfolio-list", s.ActivePortfolioList)
		v1.POST("/departments-by-portfolio/:portfolioId", s.DepartmentsByPortfolio)
		v1.POST("/prime-minister", s.PrimeMinister)
		v1.GET("/department-history/:departmentId", s.DepartmentHistory)
	}

	return r
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
