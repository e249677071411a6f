//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"context"

	"github.com/google/wire"

	"devplan-ai-api/internal/application/document"
	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/application/wizard"
	"devplan-ai-api/internal/config"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/internal/infrastructure/llm"
	"devplan-ai-api/internal/infrastructure/persistence/postgres"
	"devplan-ai-api/internal/infrastructure/persistence/redis"
	"devplan-ai-api/internal/interfaces/http/handler"
	"devplan-ai-api/internal/interfaces/http/middleware"
	"devplan-ai-api/internal/interfaces/http/router"
	"devplan-ai-api/internal/workflow/prompt"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		LLMSet,
		WizardSet,
		RouterSet,
	)
	return nil, nil, nil
}

// RepoSet PostgreSQL 提供者集合
var RepoSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewProjectRepository,
	wire.Bind(new(repository.ProjectRepository), new(*postgres.ProjectRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	ProvideDraftStorage,
	ProvideRateLimiter,
	wire.Bind(new(repository.DraftStorage), new(*redis.DraftStorage)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// LLMSet 模型工厂与网关
var LLMSet = wire.NewSet(
	llm.NewEinoFactory,
	ProvideGateway,
	wire.Bind(new(llm.ModelSource), new(*llm.EinoFactory)),
	wire.Bind(new(wizard.Completer), new(*llm.Gateway)),
)

// WizardSet 向导应用服务
var WizardSet = wire.NewSet(
	ProvideDraftManager,
	prompt.NewRegistry,
	wizard.SettingsFromConfig,
	ProvideWizardController,
	document.NewAssembler,
	wire.Bind(new(wizard.DraftProvider), new(*draft.Manager)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewWizardHandler,
	handler.NewProjectHandler,
	wire.Struct(new(router.RouterHandlers), "*"),
	router.NewWithDeps,
)
