package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/domain/repository"
	"devplan-ai-api/pkg/logger"
	"devplan-ai-api/pkg/metrics"
)

var (
	// ErrMissingUser 缺少用户标识
	ErrMissingUser = errors.New("draft: user id is required")
	// ErrStorageUnavailable 持久层暂时不可读，草稿未加载
	ErrStorageUnavailable = errors.New("draft: storage unavailable")
)

// Manager 按用户维护草稿，首次访问时从持久层懒加载
type Manager struct {
	storage   repository.DraftStorage
	keyPrefix string

	mu     sync.RWMutex
	stores map[string]*Store
	group  singleflight.Group
}

// NewManager 创建草稿管理器
func NewManager(storage repository.DraftStorage, keyPrefix string) *Manager {
	if keyPrefix == "" {
		keyPrefix = "devplan"
	}
	return &Manager{
		storage:   storage,
		keyPrefix: keyPrefix,
		stores:    make(map[string]*Store),
	}
}

// Key 用户草稿的持久化键
func (m *Manager) Key(userID string) string {
	return fmt.Sprintf("%s:draft:%s", m.keyPrefix, userID)
}

// Get 获取用户草稿，并发的首次请求共享同一次加载
func (m *Manager) Get(ctx context.Context, userID string) (*Store, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUser
	}

	m.mu.RLock()
	s, ok := m.stores[userID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	v, err, _ := m.group.Do(userID, func() (interface{}, error) {
		m.mu.RLock()
		s, ok := m.stores[userID]
		m.mu.RUnlock()
		if ok {
			return s, nil
		}

		key := m.Key(userID)
		d, err := m.load(ctx, key)
		if err != nil {
			// 读取失败时不缓存，下次请求重新加载
			return nil, err
		}
		s = NewStore(key, d, m.storage)

		m.mu.Lock()
		m.stores[userID] = s
		metrics.ActiveDrafts.Set(float64(len(m.stores)))
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

// load 读取并解码草稿
// 记录缺失或损坏时返回空草稿；其他读取错误原样上抛，避免空草稿覆盖持久记录。
func (m *Manager) load(ctx context.Context, key string) (*entity.ProjectDraft, error) {
	if m.storage == nil {
		return entity.NewProjectDraft(), nil
	}

	data, err := m.storage.Load(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return entity.NewProjectDraft(), nil
	}
	if err != nil {
		logger.Warn(ctx, "failed to load draft", "key", key, "error", err.Error())
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	d := entity.NewProjectDraft()
	if err := json.Unmarshal(data, d); err != nil {
		logger.Warn(ctx, "corrupt draft record, starting empty", "key", key, "error", err.Error())
		return entity.NewProjectDraft(), nil
	}
	d.ApplyDefaults()
	return d, nil
}
