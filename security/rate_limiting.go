package security

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// BookingRateLimit limits mutating booking calls per client so a single
// misbehaving buyer cannot saturate a showtime's queue.
func (r *RateLimiter) BookingRateLimit() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: &redisStore{redis: r.redis, limit: 20, window: time.Minute},
		IdentifierExtractor: func(c echo.Context) (string, error) {
			// Rate limit by payer when the request carries one.
			payerID := c.Get("payer_id")
			if payerID != nil {
				return fmt.Sprintf("payer:%s", payerID), nil
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(429, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(429, map[string]string{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// redisStore implements echo's RateLimiterStore with a fixed-window
// counter in Redis, so the limit holds across replicas.
type redisStore struct {
	redis  *redis.Client
	limit  int64
	window time.Duration
}

func (s *redisStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := fmt.Sprintf("ratelimit:%s", identifier)
	count, err := s.redis.Incr(ctx, key).Result()
	if err != nil {
		// Redis trouble must not block bookings.
		return true, nil
	}
	if count == 1 {
		s.redis.Expire(ctx, key, s.window)
	}
	return count <= s.limit, nil
}
