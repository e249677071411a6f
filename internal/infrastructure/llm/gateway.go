package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"devplan-ai-api/internal/config"
	"devplan-ai-api/pkg/logger"
	"devplan-ai-api/pkg/metrics"
)

var gatewayTracer = otel.Tracer("llm.gateway")

// Operation 生成操作，每个操作有独立的候选模型列表
type Operation string

const (
	OpClarification Operation = "clarification"
	OpFeatures      Operation = "features"
	OpTechStack     Operation = "tech_stack"
	OpDocument      Operation = "document"
)

var (
	// ErrCascadeExhausted 所有候选模型均失败
	ErrCascadeExhausted = errors.New("llm cascade exhausted")
	// ErrEmptyContent 响应内容为空
	ErrEmptyContent = errors.New("llm returned empty content")
)

// Failure 级联耗尽后的错误，携带最后一次失败
type Failure struct {
	Operation Operation
	Attempts  int
	LastModel string
	Err       error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("llm %s failed after %d attempt(s), last model %s: %v", f.Operation, f.Attempts, f.LastModel, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Is 使 errors.Is(err, ErrCascadeExhausted) 成立
func (f *Failure) Is(target error) bool {
	return target == ErrCascadeExhausted
}

// Candidate 级联中的一个候选
type Candidate struct {
	Provider string
	Model    string
}

func (c Candidate) String() string {
	return c.Provider + ":" + c.Model
}

// ParseCandidate 解析 "provider:model"，省略 provider 时使用默认提供商
func ParseCandidate(s, defaultProvider string) Candidate {
	s = strings.TrimSpace(s)
	if provider, m, ok := strings.Cut(s, ":"); ok && provider != "" {
		return Candidate{Provider: provider, Model: m}
	}
	return Candidate{Provider: defaultProvider, Model: strings.TrimPrefix(s, ":")}
}

// Options 单次调用参数，零值表示使用提供商默认值
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Completion 成功的调用结果
type Completion struct {
	Content  string
	Provider string
	Model    string
	Attempts int
}

// ModelSource 按提供商获取 ChatModel
type ModelSource interface {
	Configured(provider string) error
	Get(ctx context.Context, provider string) (model.BaseChatModel, error)
	DefaultModel(provider string) string
}

// Gateway 按操作执行固定顺序的模型级联，不重试同一模型、不退避
type Gateway struct {
	source          ModelSource
	defaultProvider string
	cascades        map[Operation][]Candidate
}

// NewGateway 创建网关
func NewGateway(cfg *config.LLMConfig, source ModelSource) *Gateway {
	g := &Gateway{
		source:          source,
		defaultProvider: cfg.DefaultProvider,
		cascades:        make(map[Operation][]Candidate, len(cfg.Cascades)),
	}
	for op, list := range cfg.Cascades {
		for _, item := range list {
			if strings.TrimSpace(item) == "" {
				continue
			}
			g.cascades[Operation(op)] = append(g.cascades[Operation(op)], ParseCandidate(item, cfg.DefaultProvider))
		}
	}
	return g
}

// Candidates 操作的候选列表；未配置时使用默认提供商的默认模型
func (g *Gateway) Candidates(op Operation) []Candidate {
	if list := g.cascades[op]; len(list) > 0 {
		out := make([]Candidate, len(list))
		copy(out, list)
		return out
	}
	if g.defaultProvider == "" {
		return nil
	}
	return []Candidate{{Provider: g.defaultProvider, Model: g.source.DefaultModel(g.defaultProvider)}}
}

// CheckConfigured 检查操作的所有候选是否可用，不发起网络请求
func (g *Gateway) CheckConfigured(op Operation) error {
	cands := g.Candidates(op)
	if len(cands) == 0 {
		return fmt.Errorf("%w: no candidates for %s", ErrNotConfigured, op)
	}
	for _, c := range cands {
		if err := g.source.Configured(c.Provider); err != nil {
			return err
		}
	}
	return nil
}

// Complete 按候选顺序调用，直到获得非空内容
// N 个候选全部失败时恰好尝试 N 次并返回 *Failure。
func (g *Gateway) Complete(ctx context.Context, op Operation, messages []*schema.Message, opts Options) (*Completion, error) {
	if err := g.CheckConfigured(op); err != nil {
		return nil, err
	}

	var (
		lastErr   error
		lastModel string
		attempts  int
	)
	for _, cand := range g.Candidates(op) {
		if err := ctx.Err(); err != nil {
			lastErr = err
			break
		}
		attempts++
		lastModel = cand.String()

		content, err := g.attempt(ctx, op, cand, attempts, messages, opts)
		if err == nil {
			return &Completion{Content: content, Provider: cand.Provider, Model: cand.Model, Attempts: attempts}, nil
		}
		lastErr = err
		logger.Warn(ctx, "llm attempt failed",
			"operation", string(op),
			"model", lastModel,
			"attempt", attempts,
			"error", err.Error(),
		)
	}

	metrics.LLMCascadeExhausted.WithLabelValues(string(op)).Inc()
	return nil, &Failure{Operation: op, Attempts: attempts, LastModel: lastModel, Err: lastErr}
}

func (g *Gateway) attempt(ctx context.Context, op Operation, cand Candidate, n int, messages []*schema.Message, opts Options) (string, error) {
	ctx, span := gatewayTracer.Start(ctx, "llm.attempt",
		trace.WithAttributes(
			attribute.String("llm.operation", string(op)),
			attribute.String("llm.provider", cand.Provider),
			attribute.String("llm.model", cand.Model),
			attribute.Int("llm.attempt", n),
		))
	defer span.End()

	start := time.Now()
	content, usage, err := g.generate(ctx, cand, messages, opts)
	metrics.LLMCallDuration.WithLabelValues(string(op), cand.Model).Observe(time.Since(start).Seconds())

	status := "success"
	switch {
	case errors.Is(err, ErrEmptyContent):
		status = "empty"
	case err != nil:
		status = "error"
	}
	metrics.LLMCallTotal.WithLabelValues(string(op), cand.Model, status).Inc()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	span.SetAttributes(attribute.Int("llm.response_chars", len(content)))
	if usage != nil {
		metrics.LLMTokensUsed.WithLabelValues(string(op), cand.Model, "prompt").Add(float64(usage.PromptTokens))
		metrics.LLMTokensUsed.WithLabelValues(string(op), cand.Model, "completion").Add(float64(usage.CompletionTokens))
		span.SetAttributes(
			attribute.Int("llm.prompt_tokens", usage.PromptTokens),
			attribute.Int("llm.completion_tokens", usage.CompletionTokens),
		)
	}
	return content, nil
}

func (g *Gateway) generate(ctx context.Context, cand Candidate, messages []*schema.Message, opts Options) (string, *schema.TokenUsage, error) {
	chatModel, err := g.source.Get(ctx, cand.Provider)
	if err != nil {
		return "", nil, err
	}

	callOpts := make([]model.Option, 0, 3)
	if cand.Model != "" {
		callOpts = append(callOpts, model.WithModel(cand.Model))
	}
	if opts.MaxTokens > 0 {
		callOpts = append(callOpts, model.WithMaxTokens(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		callOpts = append(callOpts, model.WithTemperature(float32(opts.Temperature)))
	}

	resp, err := chatModel.Generate(ctx, messages, callOpts...)
	if err != nil {
		return "", nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", nil, ErrEmptyContent
	}
	var usage *schema.TokenUsage
	if resp.ResponseMeta != nil {
		usage = resp.ResponseMeta.Usage
	}
	return resp.Content, usage, nil
}
