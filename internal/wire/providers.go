package wire

import (
	"context"

	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/application/wizard"
	"devplan-ai-api/internal/config"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/internal/infrastructure/llm"
	"devplan-ai-api/internal/infrastructure/persistence/postgres"
	"devplan-ai-api/internal/infrastructure/persistence/redis"
	"devplan-ai-api/internal/workflow/prompt"
	"devplan-ai-api/pkg/logger"
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = client.Close()
	}
	return client, cleanup, nil
}

// ProvideDraftStorage 草稿存储，过期时间取自 wizard.draft_ttl
func ProvideDraftStorage(client *redis.Client, cfg *config.Config) *redis.DraftStorage {
	return redis.NewDraftStorage(client, cfg.Wizard.DraftTTL)
}

// ProvideRateLimiter 生成类接口限流器
func ProvideRateLimiter(client *redis.Client, cfg *config.Config) *redis.RateLimiter {
	return redis.NewRateLimiter(client, cfg.Cache.Redis.KeyPrefix)
}

// ProvideGateway AI 网关
func ProvideGateway(cfg *config.Config, source llm.ModelSource) *llm.Gateway {
	return llm.NewGateway(&cfg.LLM, source)
}

// ProvideDraftManager 按用户管理草稿
func ProvideDraftManager(storage repository.DraftStorage, cfg *config.Config) *draft.Manager {
	return draft.NewManager(storage, cfg.Cache.Redis.KeyPrefix)
}

// ProvideWizardController 向导控制器，关闭时等待后台文档生成结束
func ProvideWizardController(
	ctx context.Context,
	drafts wizard.DraftProvider,
	completer wizard.Completer,
	prompts *prompt.Registry,
	projects repository.ProjectRepository,
	settings wizard.Settings,
) (*wizard.Controller, func()) {
	c := wizard.NewController(drafts, completer, prompts, projects, settings)
	cleanup := func() {
		logger.Info(ctx, "waiting for background document generation")
		c.Wait()
	}
	return c, cleanup
}
