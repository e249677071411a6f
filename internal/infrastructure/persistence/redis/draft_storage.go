package redis

import (
	"context"
	"fmt"
	"time"

	"devplan-ai-api/internal/domain/repository"
)

// kv 草稿存储依赖的最小键值操作
type kv interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, expiration time.Duration) error
}

// DraftStorage 以 Redis 字符串保存序列化后的草稿，每次写入刷新过期时间
type DraftStorage struct {
	store kv
	ttl   time.Duration
}

// NewDraftStorage 创建草稿存储，ttl <= 0 表示不过期
func NewDraftStorage(client *Client, ttl time.Duration) *DraftStorage {
	return &DraftStorage{store: client, ttl: ttl}
}

// Load 读取草稿，不存在时返回 repository.ErrNotFound
func (s *DraftStorage) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := s.store.GetBytes(ctx, key)
	if err != nil {
		if IsNil(err) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load draft %s: %w", key, err)
	}
	return data, nil
}

// Save 写入草稿
func (s *DraftStorage) Save(ctx context.Context, key string, data []byte) error {
	ttl := s.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := s.store.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", key, err)
	}
	return nil
}
