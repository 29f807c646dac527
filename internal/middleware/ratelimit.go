package middleware

import (
  "fmt"
  "net/http"
  "time"

  "github.com/gin-gonic/gin"
  "github.com/redis/go-redis/v9"

  "github.com/xecuteapp/becoming-backend/internal/logger"
)

// RateLimiter is a fixed-window per-IP limiter over redis, used on the public
// auth endpoints. When redis is unreachable requests pass through: the
// limiter protects against abuse, it must never take the API down with it.
type RateLimiter struct {
  log         *logger.Logger
  redisClient *redis.Client
}

func NewRateLimiter(log *logger.Logger, client *redis.Client) *RateLimiter {
  return &RateLimiter{log: log.With("middleware", "RateLimiter"), redisClient: client}
}

func (rl *RateLimiter) Limit(keySuffix string, limit int, window time.Duration) gin.HandlerFunc {
  return func(c *gin.Context) {
    if rl.redisClient == nil {
      c.Next()
      return
    }
    ip := c.ClientIP()
    key := fmt.Sprintf("rate_limit:%s:%s", keySuffix, ip)

    count, err := rl.redisClient.Incr(c, key).Result()
    if err != nil {
      rl.log.Warn("Rate limit check failed, allowing request", "error", err)
      c.Next()
      return
    }
    if count == 1 {
      rl.redisClient.Expire(c, key, window)
    }

    if count > int64(limit) {
      ttl, _ := rl.redisClient.TTL(c, key).Result()
      c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
        "error":       "too many requests",
        "retry_after": fmt.Sprintf("%.0f seconds", ttl.Seconds()),
      })
      return
    }
    c.Next()
  }
}
