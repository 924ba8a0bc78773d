package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"boarddash/internal/logging"
	"boarddash/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimit is a fixed-window limiter: at most limit requests per window per
// user (or client IP for anonymous requests) and route. A nil client disables it.
func RateLimit(client *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || limit <= 0 {
			c.Next()
			return
		}

		subject := c.ClientIP()
		if u := CurrentUser(c); u != nil {
			subject = "u" + strconv.FormatUint(uint64(u.ID), 10)
		}
		route := c.FullPath()
		key := fmt.Sprintf("rate_limit:%s:%s", route, subject)

		ctx := c.Request.Context()
		count, err := client.Incr(ctx, key).Result()
		if err != nil {
			// Redis 不可用时放行，只记录日志
			logging.L().Warn("Rate limit check failed", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			client.Expire(ctx, key, window)
		}

		if count > int64(limit) {
			metrics.RateLimited.WithLabelValues(route).Inc()
			if ttl, err := client.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}

		c.Next()
	}
}
