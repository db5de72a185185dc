package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ChatApp/logger"
	redisstore "ChatApp/service/storage/redis"
	errs "ChatApp/tools/errs"
)

// RateLimit 固定窗口限流（INCR + EXPIRE），按 客户端IP+路径 计数。
// Redis 未配置时直接放行；Redis 故障也放行（限流是保护，不是单点）。
func RateLimit(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || !redisstore.Enabled() {
			c.Next()
			return
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.ClientIP(), c.FullPath())
		ctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()

		rdb := redisstore.GetRedis()
		n, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warnf("[RateLimit] redis incr failed, pass through: %v", err)
			c.Next()
			return
		}
		if n == 1 {
			_ = rdb.Expire(ctx, key, window).Err()
		}
		if n > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errs.ErrRateLimited)
			return
		}
		c.Next()
	}
}
