package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/skillconnect/jobcore/internal/logging"
	"github.com/skillconnect/jobcore/internal/net/resp"
)

// Limiter counts hits per key within a window.
type Limiter interface {
	// Hit records one request for key and returns the count in the current
	// window and the time until the window resets.
	Hit(ctx context.Context, key string) (count int64, reset time.Duration, err error)
}

// RedisLimiter is a fixed-window counter shared by every server instance.
type RedisLimiter struct {
	rc     *redis.Client
	window time.Duration
	prefix string
}

// NewRedisLimiter creates a limiter with the given window, rounded up to a
// whole second.
func NewRedisLimiter(rc *redis.Client, window time.Duration) *RedisLimiter {
	if window < time.Second {
		window = time.Second
	}
	return &RedisLimiter{rc: rc, window: window, prefix: "jobcore:ratelimit:"}
}

func (l *RedisLimiter) Hit(ctx context.Context, key string) (int64, time.Duration, error) {
	now := time.Now()
	slot := now.UnixMilli() / l.window.Milliseconds()
	k := fmt.Sprintf("%s%s:%d", l.prefix, key, slot)

	var incr *redis.IntCmd
	_, err := l.rc.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		p.PExpire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	end := time.UnixMilli((slot + 1) * l.window.Milliseconds())
	return incr.Val(), end.Sub(now), nil
}

// RateLimit allows max requests per client IP per window. When the limiter
// itself fails the request is let through.
func RateLimit(limiter Limiter, max int, l *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		count, reset, err := limiter.Hit(c.Request.Context(), c.ClientIP())
		if err != nil {
			l.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		remaining := int64(max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(max) {
			c.Header("Retry-After", strconv.Itoa(int(reset.Round(time.Second)/time.Second)))
			resp.Fail(c.Writer, resp.TooManyRequests("too many requests from this IP, please try again later"))
			c.Abort()
			return
		}
		c.Next()
	}
}
