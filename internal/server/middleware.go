package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const (
	RequestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
	busyMessage     = "Server is busy. Please try again shortly."
)

// RequestLogger tags each request with an id and logs its outcome.
func (s *Server) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Header(RequestIDHeader, id)

		entry := s.Log.WithField("request_id", id)
		c.Set(loggerKey, entry)

		start := time.Now()
		c.Next()

		entry.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		}).Info("request handled")
	}
}

func requestLogger(c *gin.Context, fallback logrus.FieldLogger) logrus.FieldLogger {
	if v, ok := c.Get(loggerKey); ok {
		if l, ok := v.(logrus.FieldLogger); ok {
			return l
		}
	}
	return fallback
}

// Throttle queues requests beyond the concurrency limit. A request that waits longer
// than the configured timeout is rejected with 429.
func (s *Server) Throttle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.opts.WaitTimeout)
		err := s.slots.Acquire(ctx, 1)
		cancel()
		if err != nil {
			throttledTotal.Inc()
			requestLogger(c, s.Log).WithFields(logrus.Fields{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
				"wait":   s.opts.WaitTimeout.String(),
			}).Warn("request throttled")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": busyMessage})
			return
		}
		defer s.slots.Release(1)
		c.Next()
	}
}

// RateLimit applies the global requests-per-second limit.
func (s *Server) RateLimit() gin.HandlerFunc {
	rate := limiter.Rate{Period: time.Second, Limit: int64(s.opts.RateLimit.GlobalRPS)}
	return mgin.NewMiddleware(limiter.New(s.rateLimitStore(), rate))
}

func (s *Server) rateLimitStore() limiter.Store {
	if s.opts.RateLimit.Storage == "redis" {
		store, err := newRedisStore(s.opts.RateLimit.RedisURL)
		if err == nil {
			return store
		}
		s.Log.WithError(err).Warn("Failed to create Redis store for rate limiting, falling back to memory")
	}
	return memory.NewStore()
}

func newRedisStore(url string) (limiter.Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return sredis.NewStoreWithOptions(redis.NewClient(opts), limiter.StoreOptions{
		Prefix:   "orgchart_rate_limit",
		MaxRetry: 3,
	})
}
