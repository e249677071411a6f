// Package middleware 提供 HTTP 中间件
package middleware

import (
	"strconv"
	"strings"
	"time"

	"devplan-ai-api/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// 路由分组，用作 HTTP 指标的 group 标签
const (
	GroupWizard    = "wizard"
	GroupExport    = "export"
	GroupProjects  = "projects"
	GroupSystem    = "system"
	GroupUnmatched = "unmatched"
)

// RouteGroup 按路由模板归类请求
func RouteGroup(route string) string {
	switch {
	case route == "":
		return GroupUnmatched
	case route == "/v1/wizard/export":
		return GroupExport
	case route == "/v1/wizard" || strings.HasPrefix(route, "/v1/wizard/"):
		return GroupWizard
	case strings.HasPrefix(route, "/v1/projects"):
		return GroupProjects
	default:
		return GroupSystem
	}
}

// Metrics Prometheus 指标采集中间件，skipPaths 中的路由（如 /metrics 自身）不计入
func Metrics(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		route := c.FullPath()
		if _, ok := skip[route]; ok {
			c.Next()
			return
		}

		start := time.Now()
		group := RouteGroup(route)
		if route == "" {
			// 未匹配的路径不作为标签，避免基数膨胀
			route = GroupUnmatched
		}
		method := c.Request.Method

		if size := c.Request.ContentLength; size > 0 {
			metrics.HTTPRequestSize.WithLabelValues(group, method).Observe(float64(size))
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		metrics.HTTPRequestsTotal.WithLabelValues(group, method, route, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(group, method, route).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size > 0 {
			metrics.HTTPResponseSize.WithLabelValues(group, method).Observe(float64(size))
		}
	}
}
