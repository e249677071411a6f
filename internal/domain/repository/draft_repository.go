package repository

import (
	"context"
)

// DraftStorage 草稿持久化接口，存储完整草稿的序列化记录
type DraftStorage interface {
	// Load 读取记录，不存在时返回 ErrNotFound
	Load(ctx context.Context, key string) ([]byte, error)

	// Save 覆盖写入记录
	Save(ctx context.Context, key string, data []byte) error
}
