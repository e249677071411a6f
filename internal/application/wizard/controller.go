// Package wizard 实现项目定义向导的状态机：步骤转换、前进条件、各步骤的 AI 生成与文档生成
package wizard

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/schema"

	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/application/recommend"
	"devplan-ai-api/internal/config"
	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/internal/infrastructure/llm"
	"devplan-ai-api/internal/workflow/prompt"
	"devplan-ai-api/pkg/logger"
)

// Completer AI 网关
type Completer interface {
	Complete(ctx context.Context, op llm.Operation, messages []*schema.Message, opts llm.Options) (*llm.Completion, error)
	CheckConfigured(op llm.Operation) error
}

// DraftProvider 按用户提供草稿存储
type DraftProvider interface {
	Get(ctx context.Context, userID string) (*draft.Store, error)
}

// Settings 向导运行参数
type Settings struct {
	AllowForcedTransition bool
	GenerationConcurrency int
	GenerationTimeout     time.Duration
	MaxTokens             int
	DocumentMaxTokens     int
	Temperature           float64
}

// SettingsFromConfig 从配置构造运行参数
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		AllowForcedTransition: cfg.Features.Wizard.AllowForcedTransition,
		GenerationConcurrency: cfg.Wizard.GenerationConcurrency,
		GenerationTimeout:     cfg.Wizard.GenerationTimeout,
		MaxTokens:             cfg.Wizard.MaxTokens,
		DocumentMaxTokens:     cfg.Wizard.DocumentMaxTokens,
		Temperature:           cfg.Wizard.Temperature,
	}
}

// View 草稿及其完成度
type View struct {
	Draft    *entity.ProjectDraft `json:"draft"`
	Status   draft.Status         `json:"status"`
	InFlight []string             `json:"inFlight"`
}

// Controller 向导控制器
type Controller struct {
	drafts   DraftProvider
	llm      Completer
	prompts  *prompt.Registry
	projects repository.ProjectRepository
	settings Settings

	inflight *inflightSet
	slots    *slotLocks
	wg       sync.WaitGroup
}

// NewController 创建向导控制器
func NewController(drafts DraftProvider, completer Completer, prompts *prompt.Registry, projects repository.ProjectRepository, settings Settings) *Controller {
	if settings.GenerationConcurrency <= 0 {
		settings.GenerationConcurrency = 3
	}
	if settings.GenerationTimeout <= 0 {
		settings.GenerationTimeout = 5 * time.Minute
	}
	if prompts == nil {
		prompts = prompt.NewRegistry()
	}
	return &Controller{
		drafts:   drafts,
		llm:      completer,
		prompts:  prompts,
		projects: projects,
		settings: settings,
		inflight: newInflightSet(),
		slots:    newSlotLocks(),
	}
}

// Wait 等待所有后台文档生成结束
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) view(userID string, d *entity.ProjectDraft) *View {
	return &View{Draft: d, Status: draft.Evaluate(d), InFlight: c.inflight.list(userID)}
}

// State 返回当前草稿与完成度
func (c *Controller) State(ctx context.Context, userID string) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.view(userID, store.Read()), nil
}

// Edit 用户对草稿的编辑
type Edit struct {
	Name                  *string
	Description           *string
	Type                  *entity.ProjectType
	SelectedModels        *[]string
	SelectedTools         *[]string
	SelectedTechStack     *[]string
	SelectedDocumentTypes *[]string
	Features              *[]entity.FeatureItem
	// Answers 按问题 ID 更新回答
	Answers map[string]string
}

// Edit 合并用户编辑
// 名称、描述或类型变化时清空已生成的 AI 内容；取消选择的文档类型同时移除其生成结果。
func (c *Controller) Edit(ctx context.Context, userID string, e Edit) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	d, err := store.Update(ctx, func(cur *entity.ProjectDraft) (draft.Patch, error) {
		return buildEditPatch(cur, e)
	})
	if err != nil {
		return nil, err
	}
	return c.view(userID, d), nil
}

func buildEditPatch(cur *entity.ProjectDraft, e Edit) (draft.Patch, error) {
	var p draft.Patch
	basicsChanged := false

	if e.Name != nil {
		name := strings.TrimSpace(*e.Name)
		basicsChanged = basicsChanged || name != cur.Name
		p.Name = &name
	}
	if e.Description != nil {
		desc := strings.TrimSpace(*e.Description)
		basicsChanged = basicsChanged || desc != cur.Description
		p.Description = &desc
	}
	if e.Type != nil {
		t := entity.ProjectType(strings.TrimSpace(string(*e.Type)))
		basicsChanged = basicsChanged || t != cur.Type
		p.Type = &t
	}
	if e.SelectedModels != nil {
		p.SelectedModels = draft.Set(entity.AppendUnique(nil, *e.SelectedModels...))
	}
	if e.SelectedTools != nil {
		p.SelectedTools = draft.Set(entity.AppendUnique(nil, *e.SelectedTools...))
	}
	if e.SelectedTechStack != nil {
		p.SelectedTechStack = draft.Set(entity.AppendUnique(nil, *e.SelectedTechStack...))
	}
	if e.Features != nil {
		p.Features = draft.Set(*e.Features)
	}

	docs := cur.GeneratedDocuments
	if e.SelectedDocumentTypes != nil {
		selected := entity.AppendUnique(nil, *e.SelectedDocumentTypes...)
		for _, id := range selected {
			if _, ok := entity.LookupDocumentType(id); !ok {
				return draft.Patch{}, ErrUnknownDocumentType
			}
		}
		p.SelectedDocumentTypes = &selected

		kept := make([]entity.GeneratedDocument, 0, len(docs))
		for _, doc := range docs {
			if slices.Contains(selected, doc.ID) {
				kept = append(kept, doc)
			}
		}
		docs = kept
		p.GeneratedDocuments = &docs
	}

	if len(e.Answers) > 0 {
		qs := make([]entity.ClarificationQuestion, len(cur.Clarification))
		copy(qs, cur.Clarification)
		for id, answer := range e.Answers {
			idx := -1
			for i := range qs {
				if qs[i].ID == id {
					idx = i
					break
				}
			}
			if idx < 0 {
				return draft.Patch{}, ErrUnknownQuestion
			}
			qs[idx].Answer = answer
		}
		p.Clarification = &qs
	}

	if basicsChanged {
		if e.Features == nil {
			p.Features = draft.Set([]entity.FeatureItem{})
		}
		p.TechStackSuggestions = draft.Set([]entity.TechStackItem{})
		p.Clarification = draft.Set([]entity.ClarificationQuestion{})
		p.GeneratedDocuments = draft.Set([]entity.GeneratedDocument{})
		p.Notices = draft.Set([]string{})
	}
	return p, nil
}

// Reset 清空草稿
func (c *Controller) Reset(ctx context.Context, userID string) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := store.Reset(ctx)
	logger.Info(ctx, "draft reset", "user_id", userID)
	return c.view(userID, d), nil
}

// Recommend 基于草稿描述与类型计算推荐
func (c *Controller) Recommend(ctx context.Context, userID string, category recommend.Category) ([]entity.Recommendation, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := store.Read()
	return recommend.Scored(d.Description, d.Type, category), nil
}

// ApplyRecommendations 将推荐项追加到对应的已选集合（去重、保持顺序）
// items 为空时应用全部推荐结果。
func (c *Controller) ApplyRecommendations(ctx context.Context, userID string, category recommend.Category, items []string) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	d, err := store.Update(ctx, func(cur *entity.ProjectDraft) (draft.Patch, error) {
		chosen := items
		if len(chosen) == 0 {
			chosen = recommend.Recommend(cur.Description, cur.Type, category)
		}
		switch category {
		case recommend.CategoryModels:
			return draft.Patch{SelectedModels: draft.Set(entity.AppendUnique(cur.SelectedModels, chosen...))}, nil
		case recommend.CategoryTools:
			return draft.Patch{SelectedTools: draft.Set(entity.AppendUnique(cur.SelectedTools, chosen...))}, nil
		case recommend.CategoryTechStack:
			return draft.Patch{SelectedTechStack: draft.Set(entity.AppendUnique(cur.SelectedTechStack, chosen...))}, nil
		default:
			return draft.Patch{}, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return c.view(userID, d), nil
}

// Submit 在终态提交草稿：保存项目快照后清空草稿
func (c *Controller) Submit(ctx context.Context, userID string) (string, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	d := store.Read()
	if d.Step != entity.StepTerminal {
		return "", &StepError{Action: "submit", Current: d.Step}
	}

	projectID, err := c.projects.Save(ctx, userID, d)
	if err != nil {
		return "", err
	}
	store.Reset(ctx)
	logger.Info(ctx, "project submitted", "user_id", userID, "project_id", projectID)
	return projectID, nil
}

// Projects 用户已提交的项目
func (c *Controller) Projects(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectSummary], error) {
	return c.projects.List(ctx, userID, pagination)
}
