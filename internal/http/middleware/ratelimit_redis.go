package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter wires the shared Redis client. With an empty addr or
// an unreachable server the client stays nil and every limiter below
// fails open, keeping the tap loop available.
func InitRedisRateLimiter(addr, password string, db int) {
	if addr == "" {
		return
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return
	}
	redisClient = client
}

// RedisRateLimit is a fixed-window per-IP limiter over Redis INCR/EXPIRE.
func RedisRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !allow("rl:"+windowedKey(window, c.ClientIP()), maxRequests, window, c) {
			return
		}
		c.Next()
	}
}

// TapRateLimit limits tap submissions per player, not per IP. It is an abuse
// backstop only; within it, energy availability stays the sole gate on taps.
// Requires the JWT middleware to have run.
func TapRateLimit(maxRequests int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		if !allow("tap_rl:"+windowedKey(window, strconv.FormatInt(userID, 10)), maxRequests, window, c) {
			return
		}
		c.Next()
	}
}

func windowedKey(window time.Duration, ident string) string {
	return strconv.FormatInt(int64(window.Seconds()), 10) + ":" + ident
}

// allow runs one fixed-window check, aborting the request when over limit.
// Redis errors fail open.
func allow(key string, maxRequests int, window time.Duration, c *gin.Context) bool {
	if redisClient == nil {
		return true
	}

	ctx := c.Request.Context()
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		c.Header("X-RateLimit-Error", "redis-error")
		return true
	}
	if val == 1 {
		redisClient.Expire(ctx, key, window)
	}

	if val > int64(maxRequests) {
		rlBlocked.WithLabelValues(c.FullPath()).Inc()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return false
	}

	rlRequests.WithLabelValues(c.FullPath()).Inc()
	return true
}
