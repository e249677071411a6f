package wizard

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"devplan-ai-api/internal/application/draft"
	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/infrastructure/llm"
	"devplan-ai-api/pkg/logger"
	"devplan-ai-api/pkg/metrics"
)

// guardReasons 各步骤前进条件不满足时的提示
var guardReasons = map[entity.Step]string{
	entity.StepBasics:                "请填写项目名称、描述并选择项目类型",
	entity.StepToolSelection:         "请至少选择一个 AI 模型",
	entity.StepClarification:         "请回答所有必答的澄清问题",
	entity.StepDocumentTypeSelection: "请至少选择一种文档类型",
	entity.StepGeneration:            "文档仍在生成中，或没有任何文档生成成功",
}

// Advance 前进一步
// 前进条件不满足返回 *GuardError；进入生成类步骤时执行入口动作，已有结果时不重复调用 AI。
func (c *Controller) Advance(ctx context.Context, userID string) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	release, ok := c.inflight.acquire(userID, actionTransition)
	if !ok {
		return nil, ErrOperationInFlight
	}
	defer release()

	cur := store.Read()
	from := cur.Step
	ctx = logger.WithContext(ctx, logger.StepKey, string(from))
	to, ok := from.Next()
	if !ok {
		return nil, fmt.Errorf("%w: no step after %s", ErrIllegalTransition, from)
	}
	if !draft.Evaluate(cur).ForStep(from) {
		metrics.WizardTransitionsTotal.WithLabelValues(string(from), string(to), "refused").Inc()
		return nil, &GuardError{From: from, To: to, Reason: guardReasons[from]}
	}

	var d *entity.ProjectDraft
	switch to {
	case entity.StepToolSelection:
		d, err = c.enterToolSelection(ctx, userID, store, cur)
	case entity.StepClarification:
		d, err = c.enterClarification(ctx, userID, store, cur)
	case entity.StepGeneration:
		d, err = c.enterGeneration(ctx, userID, store, cur)
	default:
		d, err = commitAdvance(ctx, store, from, to)
	}
	if err != nil {
		result := "failed"
		var guard *GuardError
		if errors.As(err, &guard) {
			result = "refused"
		}
		metrics.WizardTransitionsTotal.WithLabelValues(string(from), string(to), result).Inc()
		return nil, err
	}

	metrics.WizardTransitionsTotal.WithLabelValues(string(from), string(to), "ok").Inc()
	logger.Info(ctx, "wizard advanced", "user_id", userID, "from", string(from), "to", string(to))
	return c.view(userID, d), nil
}

// Back 后退一步，无前进条件
func (c *Controller) Back(ctx context.Context, userID string) (*View, error) {
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	release, ok := c.inflight.acquire(userID, actionTransition)
	if !ok {
		return nil, ErrOperationInFlight
	}
	defer release()

	from := store.Read().Step
	to, ok := from.Prev()
	if !ok {
		return nil, fmt.Errorf("%w: no step before %s", ErrIllegalTransition, from)
	}
	d, err := commitStep(ctx, store, from, to, draft.Patch{})
	if err != nil {
		return nil, err
	}
	metrics.WizardTransitionsTotal.WithLabelValues(string(from), string(to), "ok").Inc()
	return c.view(userID, d), nil
}

// ForceStep 非生产环境的跳步入口，跳过前进条件与入口动作
func (c *Controller) ForceStep(ctx context.Context, userID string, target entity.Step) (*View, error) {
	if !c.settings.AllowForcedTransition {
		return nil, ErrForcedTransitionDisabled
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%w: unknown step %q", ErrIllegalTransition, target)
	}
	store, err := c.drafts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	release, ok := c.inflight.acquire(userID, actionTransition)
	if !ok {
		return nil, ErrOperationInFlight
	}
	defer release()

	from := store.Read().Step
	d := store.Patch(ctx, draft.Patch{Step: &target})
	metrics.WizardTransitionsTotal.WithLabelValues(string(from), string(target), "forced").Inc()
	logger.Warn(ctx, "forced wizard transition (non-production escape hatch)",
		"user_id", userID, "from", string(from), "to", string(target))
	return c.view(userID, d), nil
}

// checkAdvance 在提交前基于最新草稿复核步骤与前进条件
func checkAdvance(latest *entity.ProjectDraft, from, to entity.Step) error {
	if latest.Step != from {
		return fmt.Errorf("%w: step changed to %s", ErrIllegalTransition, latest.Step)
	}
	if !draft.Evaluate(latest).ForStep(from) {
		return &GuardError{From: from, To: to, Reason: guardReasons[from]}
	}
	return nil
}

// commitAdvance 复核前进条件后切换步骤
func commitAdvance(ctx context.Context, store *draft.Store, from, to entity.Step) (*entity.ProjectDraft, error) {
	return store.Update(ctx, func(cur *entity.ProjectDraft) (draft.Patch, error) {
		if err := checkAdvance(cur, from, to); err != nil {
			return draft.Patch{}, err
		}
		return draft.Patch{Step: &to}, nil
	})
}

// commitStep 在步骤未被并发修改的前提下切换步骤并合并 extra
func commitStep(ctx context.Context, store *draft.Store, from, to entity.Step, extra draft.Patch) (*entity.ProjectDraft, error) {
	return store.Update(ctx, func(cur *entity.ProjectDraft) (draft.Patch, error) {
		if cur.Step != from {
			return draft.Patch{}, fmt.Errorf("%w: step changed to %s", ErrIllegalTransition, cur.Step)
		}
		extra.Step = &to
		return extra, nil
	})
}

// enterToolSelection 缺少功能列表或技术栈建议时并行生成
func (c *Controller) enterToolSelection(ctx context.Context, userID string, store *draft.Store, cur *entity.ProjectDraft) (*entity.ProjectDraft, error) {
	needFeatures := len(cur.Features) == 0
	needTech := len(cur.TechStackSuggestions) == 0

	var actions []string
	if needFeatures {
		if err := c.llm.CheckConfigured(llm.OpFeatures); err != nil {
			return nil, err
		}
		actions = append(actions, actionFeatures)
	}
	if needTech {
		if err := c.llm.CheckConfigured(llm.OpTechStack); err != nil {
			return nil, err
		}
		actions = append(actions, actionTechStack)
	}
	if len(actions) == 0 {
		return commitAdvance(ctx, store, cur.Step, entity.StepToolSelection)
	}

	release, ok := c.inflight.acquire(userID, actions...)
	if !ok {
		return nil, ErrOperationInFlight
	}
	defer release()

	var (
		features      []entity.FeatureItem
		tech          []entity.TechStackItem
		featureNotice string
		techNotice    string
	)
	g, gctx := errgroup.WithContext(ctx)
	if needFeatures {
		g.Go(func() error {
			var err error
			features, featureNotice, err = c.generateFeatures(gctx, cur)
			return err
		})
	}
	if needTech {
		g.Go(func() error {
			var err error
			tech, techNotice, err = c.generateTechStack(gctx, cur)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return store.Update(ctx, func(latest *entity.ProjectDraft) (draft.Patch, error) {
		if err := checkAdvance(latest, cur.Step, entity.StepToolSelection); err != nil {
			return draft.Patch{}, err
		}
		p := draft.Patch{Step: draft.Set(entity.StepToolSelection)}
		notices := latest.Notices
		if needFeatures && len(latest.Features) == 0 {
			p.Features = &features
			notices = setNotice(notices, noticeFeatures, featureNotice)
		}
		if needTech && len(latest.TechStackSuggestions) == 0 {
			p.TechStackSuggestions = &tech
			notices = setNotice(notices, noticeTechStack, techNotice)
		}
		p.Notices = &notices
		return p, nil
	})
}

// enterClarification 没有澄清问题时生成
func (c *Controller) enterClarification(ctx context.Context, userID string, store *draft.Store, cur *entity.ProjectDraft) (*entity.ProjectDraft, error) {
	if len(cur.Clarification) > 0 {
		return commitAdvance(ctx, store, cur.Step, entity.StepClarification)
	}
	if err := c.llm.CheckConfigured(llm.OpClarification); err != nil {
		return nil, err
	}
	release, ok := c.inflight.acquire(userID, actionClarification)
	if !ok {
		return nil, ErrOperationInFlight
	}
	defer release()

	questions, notice, err := c.generateClarification(ctx, cur)
	if err != nil {
		return nil, err
	}
	return store.Update(ctx, func(latest *entity.ProjectDraft) (draft.Patch, error) {
		if err := checkAdvance(latest, cur.Step, entity.StepClarification); err != nil {
			return draft.Patch{}, err
		}
		p := draft.Patch{Step: draft.Set(entity.StepClarification)}
		if len(latest.Clarification) == 0 {
			p.Clarification = &questions
			p.Notices = draft.Set(setNotice(latest.Notices, noticeClarification, notice))
		}
		return p, nil
	})
}

// enterGeneration 为每个尚未成功的已选文档启动后台生成
func (c *Controller) enterGeneration(ctx context.Context, userID string, store *draft.Store, cur *entity.ProjectDraft) (*entity.ProjectDraft, error) {
	pending := 0
	for _, id := range cur.SelectedDocumentTypes {
		if doc, ok := cur.Document(id); !ok || doc.Status != entity.DocumentStatusCompleted {
			pending++
		}
	}
	if pending == 0 {
		return commitAdvance(ctx, store, cur.Step, entity.StepGeneration)
	}
	if err := c.llm.CheckConfigured(llm.OpDocument); err != nil {
		return nil, err
	}

	release, ok := c.inflight.acquire(userID, actionGeneration)
	if !ok {
		return nil, ErrOperationInFlight
	}

	var jobs []docJob
	d, err := store.Update(ctx, func(latest *entity.ProjectDraft) (draft.Patch, error) {
		if err := checkAdvance(latest, cur.Step, entity.StepGeneration); err != nil {
			return draft.Patch{}, err
		}
		var docs []entity.GeneratedDocument
		docs, jobs = scheduleDocuments(latest, latest.SelectedDocumentTypes, false)
		return draft.Patch{Step: draft.Set(entity.StepGeneration), GeneratedDocuments: &docs}, nil
	})
	if err != nil {
		release()
		return nil, err
	}

	c.runDocuments(ctx, userID, store, jobs, release)
	return d, nil
}
