package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
)

// Timeout 為請求上下文設置超時；下游的外部呼叫會依此取消
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
