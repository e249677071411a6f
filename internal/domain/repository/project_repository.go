// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"devplan-ai-api/internal/domain/entity"
)

// ProjectRepository 项目仓储接口
type ProjectRepository interface {
	// Save 保存草稿快照为项目，返回项目 ID
	Save(ctx context.Context, userID string, draft *entity.ProjectDraft) (string, error)

	// List 获取用户项目列表
	List(ctx context.Context, userID string, pagination Pagination) (*PagedResult[*entity.ProjectSummary], error)
}
