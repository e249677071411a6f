package middleware

import (
	"fmt"
	"runtime/debug"

	"devplan-ai-api/pkg/errors"
	"devplan-ai-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Recovery Panic 恢复中间件
// 响应体与统一错误格式一致，并带上 request_id 便于排查。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()
			logger.Error(ctx, "panic recovered", fmt.Errorf("%v", rec),
				"stack", string(debug.Stack()),
				"route", c.FullPath(),
				"group", RouteGroup(c.FullPath()),
				"method", c.Request.Method,
			)

			appErr := errors.ErrInternalError
			c.AbortWithStatusJSON(appErr.HTTPStatus, gin.H{
				"code":       appErr.Code,
				"message":    appErr.Message,
				"trace_id":   c.GetString(string(logger.TraceIDKey)),
				"request_id": c.GetString(string(logger.RequestIDKey)),
			})
		}()

		c.Next()
	}
}
