// Package router 提供 HTTP 路由配置
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"devplan-ai-api/internal/config"
	"devplan-ai-api/internal/interfaces/http/handler"
	"devplan-ai-api/internal/interfaces/http/middleware"
)

// RouterHandlers 路由依赖的处理器
type RouterHandlers struct {
	Health  *handler.HealthHandler
	Wizard  *handler.WizardHandler
	Project *handler.ProjectHandler
}

// Router HTTP 路由器
type Router struct {
	engine   *gin.Engine
	cfg      *config.Config
	handlers *RouterHandlers
	limiter  middleware.RateLimiter
}

// NewWithDeps 创建路由器
func NewWithDeps(cfg *config.Config, handlers *RouterHandlers, limiter middleware.RateLimiter) *Router {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := &Router{
		engine:   gin.New(),
		cfg:      cfg,
		handlers: handlers,
		limiter:  limiter,
	}
	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// Engine 返回 Gin Engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// setupMiddleware 配置中间件
func (r *Router) setupMiddleware() {
	r.engine.Use(middleware.Recovery())
	r.engine.Use(middleware.RequestID())

	r.engine.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: r.cfg.Security.CORS.AllowedOrigins,
		AllowedMethods: r.cfg.Security.CORS.AllowedMethods,
		AllowedHeaders: r.cfg.Security.CORS.AllowedHeaders,
	}))

	if r.cfg.Observability.Tracing.Enabled {
		r.engine.Use(middleware.Trace(r.cfg.App.Name, r.probePaths()...))
		r.engine.Use(middleware.TraceContext())
	}

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.Use(middleware.Metrics(r.cfg.Observability.Metrics.Path))
	}
}

// probePaths 探活与指标路由
func (r *Router) probePaths() []string {
	return []string{"/health", "/ready", "/live", r.cfg.Observability.Metrics.Path}
}

// setupRoutes 配置路由
func (r *Router) setupRoutes() {
	r.engine.GET("/health", r.handlers.Health.Health)
	r.engine.GET("/ready", r.handlers.Health.Ready)
	r.engine.GET("/live", r.handlers.Health.Live)

	if r.cfg.Observability.Metrics.Enabled {
		r.engine.GET(r.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	v1 := r.engine.Group("/v1")
	v1.Use(middleware.Auth(middleware.AuthConfig{
		Secret:        r.cfg.Security.JWT.Secret,
		Issuer:        r.cfg.Security.JWT.Issuer,
		SkipPaths:     middleware.DefaultSkipPaths,
		Enabled:       r.cfg.Security.Auth.Enabled,
		DefaultUserID: r.cfg.Security.Auth.DefaultUserID,
	}))

	// 触发 AI 生成的接口
	generative := middleware.RateLimit(middleware.RateLimitConfig{
		Enabled: r.cfg.Security.RateLimit.Enabled,
		Limit:   r.cfg.Security.RateLimit.Limit,
		Window:  r.cfg.Security.RateLimit.Window,
	}, r.limiter)

	w := r.handlers.Wizard
	wiz := v1.Group("/wizard")
	{
		wiz.GET("", w.GetWizard)
		wiz.GET("/status", w.GetStatus)
		wiz.PATCH("/draft", w.UpdateDraft)
		wiz.POST("/reset", w.Reset)

		wiz.POST("/advance", generative, w.Advance)
		wiz.POST("/back", w.Back)
		wiz.POST("/force", w.ForceStep)

		wiz.POST("/clarification/regenerate", generative, w.RegenerateClarification)
		wiz.POST("/tech-stack/regenerate", generative, w.RegenerateTechStack)
		wiz.POST("/features/regenerate", generative, w.RegenerateFeatures)
		wiz.POST("/documents/:doc_type/retry", generative, w.RetryDocument)

		wiz.GET("/recommendations", w.GetRecommendations)
		wiz.POST("/recommendations/apply", w.ApplyRecommendations)

		wiz.GET("/export", w.Export)
		wiz.POST("/submit", w.Submit)
	}

	v1.GET("/projects", r.handlers.Project.ListProjects)
}
