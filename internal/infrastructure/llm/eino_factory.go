// Package llm 封装大模型调用：按提供商懒加载 eino ChatModel，并按操作执行模型级联
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"devplan-ai-api/internal/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// ErrNotConfigured 提供商缺失或未配置 API Key
var ErrNotConfigured = errors.New("llm provider not configured")

// EinoFactory 管理多个 Eino ChatModel 客户端实例
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Configured 检查提供商配置是否可用（不发起网络请求）
func (f *EinoFactory) Configured(name string) error {
	if name == "" {
		name = f.config.DefaultProvider
	}
	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return fmt.Errorf("%w: provider %q not found", ErrNotConfigured, name)
	}
	if strings.TrimSpace(providerCfg.APIKey) == "" {
		return fmt.Errorf("%w: provider %q has no api key", ErrNotConfigured, name)
	}
	return nil
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	if err := f.Configured(name); err != nil {
		return nil, err
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg := f.config.Providers[name]
	modelCfg := &openai.ChatModelConfig{
		APIKey:  providerCfg.APIKey,
		BaseURL: providerCfg.BaseURL,
		Model:   providerCfg.Model,
		Timeout: providerCfg.Timeout,
	}
	if providerCfg.MaxTokens > 0 {
		modelCfg.MaxTokens = ptrInt(providerCfg.MaxTokens)
	}
	if providerCfg.Temperature > 0 {
		modelCfg.Temperature = ptrFloat32(float32(providerCfg.Temperature))
	}

	chatModel, err := openai.NewChatModel(ctx, modelCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

// DefaultModel 提供商配置的默认模型名
func (f *EinoFactory) DefaultModel(name string) string {
	if name == "" {
		name = f.config.DefaultProvider
	}
	return f.config.Providers[name].Model
}

func ptrFloat32(f float32) *float32 {
	return &f
}

func ptrInt(i int) *int {
	return &i
}
