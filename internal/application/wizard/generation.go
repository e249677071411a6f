package wizard

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/application/extract"
	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/infrastructure/llm"
	"devplan-ai-api/internal/workflow/prompt"
	"devplan-ai-api/pkg/logger"
	"devplan-ai-api/pkg/metrics"
)

// 提示前缀，同类提示只保留最新一条
const (
	noticeClarification = "澄清问题"
	noticeFeatures      = "功能列表"
	noticeTechStack     = "技术栈建议"

	noticeUnavailable = "AI 服务暂时不可用，已使用默认内容"
	noticeUnparsed    = "AI 返回内容无法解析，已使用默认内容"
)

// setNotice 替换某类提示，msg 为空时仅移除
func setNotice(notices []string, kind, msg string) []string {
	prefix := kind + "："
	out := make([]string, 0, len(notices)+1)
	for _, n := range notices {
		if !strings.HasPrefix(n, prefix) {
			out = append(out, n)
		}
	}
	if msg != "" {
		out = append(out, prefix+msg)
	}
	return out
}

// runSchema 调用 AI 并抽取结构化记录
// 级联耗尽时使用默认记录并返回提示；只有配置错误会作为错误返回。
func runSchema[T any](ctx context.Context, c *Controller, op llm.Operation, id prompt.PromptID, sch extract.Schema[T], d *entity.ProjectDraft) ([]T, string, error) {
	msgs, err := c.prompts.Render(ctx, id, promptVars(d))
	if err != nil {
		return nil, "", err
	}

	comp, err := c.llm.Complete(ctx, op, msgs, llm.Options{MaxTokens: c.settings.MaxTokens, Temperature: c.settings.Temperature})
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, "", err
		}
		logger.Warn(ctx, "ai unavailable, using default records", "operation", string(op), "error", err.Error())
		return sch.Defaults(), noticeUnavailable, nil
	}

	res := extract.Extract(comp.Content, sch)
	if res.UsedFallback {
		logger.Warn(ctx, "ai output not usable, using default records",
			"operation", string(op), "model", comp.Model, "reason", res.Reason)
		return res.Records, noticeUnparsed, nil
	}
	return res.Records, "", nil
}

func (c *Controller) generateClarification(ctx context.Context, d *entity.ProjectDraft) ([]entity.ClarificationQuestion, string, error) {
	return runSchema(ctx, c, llm.OpClarification, prompt.PromptClarificationV1, extract.ClarificationSchema, d)
}

func (c *Controller) generateFeatures(ctx context.Context, d *entity.ProjectDraft) ([]entity.FeatureItem, string, error) {
	return runSchema(ctx, c, llm.OpFeatures, prompt.PromptFeaturesV1, extract.FeatureSchema, d)
}

func (c *Controller) generateTechStack(ctx context.Context, d *entity.ProjectDraft) ([]entity.TechStackItem, string, error) {
	return runSchema(ctx, c, llm.OpTechStack, prompt.PromptTechStackV1, extract.TechStackSchema, d)
}

// RegenerateClarification 重新生成全部澄清问题（已有回答一并丢弃）
func (c *Controller) RegenerateClarification(ctx context.Context, userID string) (*View, error) {
	return c.regenerate(ctx, userID, actionClarification, llm.OpClarification,
		func(ctx context.Context, cur *entity.ProjectDraft) (func(*entity.ProjectDraft) draft.Patch, error) {
			qs, notice, err := c.generateClarification(ctx, cur)
			if err != nil {
				return nil, err
			}
			return func(latest *entity.ProjectDraft) draft.Patch {
				return draft.Patch{
					Clarification: &qs,
					Notices:       draft.Set(setNotice(latest.Notices, noticeClarification, notice)),
				}
			}, nil
		})
}

// RegenerateFeatures 重新生成功能列表
func (c *Controller) RegenerateFeatures(ctx context.Context, userID string) (*View, error) {
	return c.regenerate(ctx, userID, actionFeatures, llm.OpFeatures,
		func(ctx context.Context, cur *entity.ProjectDraft) (func(*entity.ProjectDraft) draft.Patch, error) {
			items, notice, err := c.generateFeatures(ctx, cur)
			if err != nil {
				return nil, err
			}
			return func(latest *entity.ProjectDraft) draft.Patch {
				return draft.Patch{
					Features: &items,
					Notices:  draft.Set(setNotice(latest.Notices, noticeFeatures, notice)),
				}
			}, nil
		})
}

// RegenerateTechStack 重新生成技术栈建议
func (c *Controller) RegenerateTechStack(ctx context.Context, userID string) (*View, error) {
	return c.regenerate(ctx, userID, actionTechStack, llm.OpTechStack,
		func(ctx context.Context, cur *entity.ProjectDraft) (func(*entity.ProjectDraft) draft.Patch, error) {
			items, notice, err := c.generateTechStack(ctx, cur)
			if err != nil {
				return nil, err
			}
			return func(latest *entity.ProjectDraft) draft.Patch {
				return draft.Patch{
					TechStackSuggestions: &items,
					Notices:              draft.Set(setNotice(latest.Notices, noticeTechStack, notice)),
				}
			}, nil
		})
}

// regenerateUntil 重新生成允许的最后一个步骤
// 澄清问题构成前进条件，之后的步骤不再允许重新生成。
var regenerateUntil = map[string]entity.Step{
	actionClarification: entity.StepClarification,
}

// checkRegenerate 当前步骤是否允许重新生成 action
func checkRegenerate(action string, current entity.Step) error {
	if last, ok := regenerateUntil[action]; ok && current.Index() > last.Index() {
		return &StepError{Action: "regenerate " + action, Current: current}
	}
	return nil
}

type regenerateFunc func(ctx context.Context, cur *entity.ProjectDraft) (func(*entity.ProjectDraft) draft.Patch, error)

// regenerate 显式重新生成：忽略缓存，结果整体替换旧内容
func (c *Controller) regenerate(ctx context.Context, userID, action string, op llm.Operation, run regenerateFunc) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cur := store.Read()
	ctx = logger.WithContext(ctx, logger.StepKey, string(cur.Step))
	if err := checkRegenerate(action, cur.Step); err != nil {
		return nil, err
	}
	if !draft.Evaluate(cur).BasicsComplete {
		return nil, &GuardError{From: cur.Step, To: cur.Step, Reason: guardReasons[entity.StepBasics]}
	}
	if err := c.llm.CheckConfigured(op); err != nil {
		return nil, err
	}

	release, ok := c.inflight.acquire(userID, action)
	if !ok {
		return nil, ErrOperationInFlight
	}
	defer release()

	build, err := run(ctx, cur)
	if err != nil {
		return nil, err
	}
	d, err := store.Update(ctx, func(latest *entity.ProjectDraft) (draft.Patch, error) {
		if err := checkRegenerate(action, latest.Step); err != nil {
			return draft.Patch{}, err
		}
		return build(latest), nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "wizard content regenerated", "user_id", userID, "action", action)
	return c.view(userID, d), nil
}

// docJob 一次文档生成请求
type docJob struct {
	docType string
	seq     uint64
}

// scheduleDocuments 为目标文档分配新的请求序号并置为 Pending
// 非 force 时跳过已成功的文档；未选择的文档类型被移除。
func scheduleDocuments(d *entity.ProjectDraft, targets []string, force bool) ([]entity.GeneratedDocument, []docJob) {
	now := time.Now()
	docs := make([]entity.GeneratedDocument, 0, len(d.SelectedDocumentTypes))
	var jobs []docJob

	for _, id := range d.SelectedDocumentTypes {
		existing, found := d.Document(id)
		wanted := slices.Contains(targets, id) && (force || !found || existing.Status != entity.DocumentStatusCompleted)
		if !wanted {
			if found {
				docs = append(docs, existing)
			}
			continue
		}
		seq := existing.RequestSeq + 1
		docs = append(docs, entity.GeneratedDocument{
			ID:         id,
			Status:     entity.DocumentStatusPending,
			RequestSeq: seq,
			UpdatedAt:  now,
		})
		jobs = append(jobs, docJob{docType: id, seq: seq})
	}
	return docs, jobs
}

// runDocuments 在后台以有限并发执行文档生成
func (c *Controller) runDocuments(ctx context.Context, userID string, store *draft.Store, jobs []docJob, release func()) {
	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if release != nil {
			defer release()
		}

		runCtx, cancel := context.WithTimeout(bg, c.settings.GenerationTimeout)
		defer cancel()

		var g errgroup.Group
		g.SetLimit(c.settings.GenerationConcurrency)
		for _, job := range jobs {
			g.Go(func() error {
				c.generateDocument(runCtx, userID, store, job)
				return nil
			})
		}
		_ = g.Wait()
	}()
}

// generateDocument 生成单个文档并只更新自己的槽位
// 同一文档的生成串行执行；序号已过期的请求不调用 AI，已过期的结果被丢弃。
func (c *Controller) generateDocument(ctx context.Context, userID string, store *draft.Store, job docJob) {
	slot := c.slots.get(userID, job.docType)
	slot.Lock()
	defer slot.Unlock()

	snapshot := store.Read()
	if doc, ok := snapshot.Document(job.docType); !ok || doc.RequestSeq != job.seq {
		metrics.DocumentGenerationTotal.WithLabelValues(job.docType, "superseded").Inc()
		return
	}

	result := entity.GeneratedDocument{ID: job.docType, RequestSeq: job.seq}
	content, err := c.completeDocument(ctx, snapshot, job.docType)
	if err != nil {
		result.Status = entity.DocumentStatusFailed
		result.ErrorMessage = documentErrorMessage(err)
		logger.Warn(ctx, "document generation failed", "user_id", userID, "doc_type", job.docType, "error", err.Error())
	} else {
		result.Status = entity.DocumentStatusCompleted
		result.Content = content
	}
	result.UpdatedAt = time.Now()

	applied := false
	_, _ = store.Update(ctx, func(latest *entity.ProjectDraft) (draft.Patch, error) {
		docs := slices.Clone(latest.GeneratedDocuments)
		for i := range docs {
			if docs[i].ID == job.docType && docs[i].RequestSeq == job.seq {
				docs[i] = result
				applied = true
				return draft.Patch{GeneratedDocuments: &docs}, nil
			}
		}
		return draft.Patch{}, nil
	})

	status := string(result.Status)
	if !applied {
		status = "stale"
	}
	metrics.DocumentGenerationTotal.WithLabelValues(job.docType, status).Inc()
}

func (c *Controller) completeDocument(ctx context.Context, d *entity.ProjectDraft, docType string) (string, error) {
	msgs, err := c.prompts.Render(ctx, prompt.PromptDocumentV1, documentVars(d, docType))
	if err != nil {
		return "", err
	}
	maxTokens := c.settings.DocumentMaxTokens
	if maxTokens <= 0 {
		maxTokens = c.settings.MaxTokens
	}
	comp, err := c.llm.Complete(ctx, llm.OpDocument, msgs, llm.Options{MaxTokens: maxTokens, Temperature: c.settings.Temperature})
	if err != nil {
		return "", err
	}
	return extract.ExtractText(comp.Content)
}

func documentErrorMessage(err error) string {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return "AI 服务未配置，请联系管理员"
	case errors.Is(err, llm.ErrCascadeExhausted):
		return "AI 服务暂时不可用，请稍后重试"
	case errors.Is(err, extract.ErrEmptyInput):
		return "AI 返回内容为空，请重试"
	case errors.Is(err, context.DeadlineExceeded):
		return "文档生成超时，请重试"
	default:
		return "文档生成失败，请重试"
	}
}

// RetryDocument 重新生成单个文档，不影响其它文档
// 该文档若仍在生成，新请求等待其结束，旧结果被丢弃。
func (c *Controller) RetryDocument(ctx context.Context, userID, docType string) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	cur := store.Read()
	if cur.Step != entity.StepGeneration {
		return nil, &StepError{Action: "retry document", Current: cur.Step}
	}
	if !slices.Contains(cur.SelectedDocumentTypes, docType) {
		return nil, ErrUnknownDocumentType
	}
	if err := c.llm.CheckConfigured(llm.OpDocument); err != nil {
		return nil, err
	}

	var jobs []docJob
	d, err := store.Update(ctx, func(latest *entity.ProjectDraft) (draft.Patch, error) {
		if latest.Step != entity.StepGeneration {
			return draft.Patch{}, &StepError{Action: "retry document", Current: latest.Step}
		}
		var docs []entity.GeneratedDocument
		docs, jobs = scheduleDocuments(latest, []string{docType}, true)
		return draft.Patch{GeneratedDocuments: &docs}, nil
	})
	if err != nil {
		return nil, err
	}

	c.runDocuments(ctx, userID, store, jobs, nil)
	logger.Info(ctx, "document retry scheduled", "user_id", userID, "doc_type", docType)
	return c.view(userID, d), nil
}
