package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type Config struct {
	Store          Store
	Rate           int
	Period         time.Duration
	KeyPrefix      string
	KeyGenerator   func(c echo.Context) string
	OnLimitReached func(c echo.Context) error
}

// Middleware throttles a route with a fixed-window counter keyed by client
// IP. It runs before requests reach the auth core.
func Middleware(cfg *Config) echo.MiddlewareFunc {
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}

	if cfg.Rate <= 0 {
		cfg.Rate = 10
	}

	if cfg.Period <= 0 {
		cfg.Period = time.Minute
	}

	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = func(c echo.Context) string {
			return DefaultKeyGenerator(cfg.KeyPrefix, c)
		}
	}

	if cfg.OnLimitReached == nil {
		cfg.OnLimitReached = DefaultOnLimitReached
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := cfg.KeyGenerator(c)
			now := time.Now()
			resetTime := now.Add(cfg.Period)

			count, existingResetTime, exists := cfg.Store.Get(key)
			if exists {
				resetTime = existingResetTime
			}

			if count >= cfg.Rate {
				c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
				c.Response().Header().Set("X-RateLimit-Remaining", "0")
				c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

				return cfg.OnLimitReached(c)
			}

			newCount := cfg.Store.Increment(key, resetTime)
			remaining := max(cfg.Rate-newCount, 0)

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Rate))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Response().Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			return next(c)
		}
	}
}

func DefaultKeyGenerator(prefix string, c echo.Context) string {
	realIP := c.RealIP()

	if realIP == "" || realIP == "unknown" {
		realIP = "fallback"
	}

	if prefix == "" {
		prefix = "rate_limit"
	}

	return prefix + ":" + realIP
}

func DefaultOnLimitReached(c echo.Context) error {
	return echo.NewHTTPError(http.StatusTooManyRequests, "Too Many Requests")
}
