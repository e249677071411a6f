// Package draft 管理用户的项目草稿：单写者读改存、持久化与完成度判断
package draft

import (
	"context"
	"encoding/json"
	"sync"

	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/pkg/logger"
	"devplan-ai-api/pkg/metrics"
)

// Store 单个草稿的持有者，所有修改都经由 Patch/Update 串行执行
type Store struct {
	mu      sync.Mutex
	key     string
	draft   *entity.ProjectDraft
	storage repository.DraftStorage
}

// NewStore 创建草稿存储
func NewStore(key string, initial *entity.ProjectDraft, storage repository.DraftStorage) *Store {
	if initial == nil {
		initial = entity.NewProjectDraft()
	}
	d := initial.Clone()
	return &Store{key: key, draft: d, storage: storage}
}

// Key 持久化键
func (s *Store) Key() string {
	return s.key
}

// Read 返回草稿的深拷贝
func (s *Store) Read() *entity.ProjectDraft {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draft.Clone()
}

// Patch 浅合并并同步持久化，返回合并后的草稿
func (s *Store) Patch(ctx context.Context, p Patch) *entity.ProjectDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.draft.Clone()
	p.apply(next)
	s.draft = next
	s.persist(ctx)
	return next.Clone()
}

// Update 在锁内基于当前草稿计算补丁
// fn 返回错误时不做任何修改；返回空补丁时不持久化。
func (s *Store) Update(ctx context.Context, fn func(current *entity.ProjectDraft) (Patch, error)) (*entity.ProjectDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := fn(s.draft.Clone())
	if err != nil {
		return nil, err
	}
	if p.IsEmpty() {
		return s.draft.Clone(), nil
	}
	next := s.draft.Clone()
	p.apply(next)
	s.draft = next
	s.persist(ctx)
	return next.Clone(), nil
}

// Reset 恢复为空草稿并持久化
func (s *Store) Reset(ctx context.Context) *entity.ProjectDraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.draft = entity.NewProjectDraft()
	s.persist(ctx)
	return s.draft.Clone()
}

// CompletionStatus 计算当前草稿的完成度
func (s *Store) CompletionStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Evaluate(s.draft)
}

// persist 写入持久层，失败只记录日志与指标，内存状态仍为准
func (s *Store) persist(ctx context.Context) {
	if s.storage == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)

	data, err := json.Marshal(s.draft)
	if err != nil {
		metrics.DraftPersistFailures.Inc()
		logger.Error(ctx, "failed to encode draft", err, "key", s.key)
		return
	}
	if err := s.storage.Save(ctx, s.key, data); err != nil {
		metrics.DraftPersistFailures.Inc()
		logger.Warn(ctx, "failed to persist draft, keeping in-memory state", "key", s.key, "error", err.Error())
	}
}
