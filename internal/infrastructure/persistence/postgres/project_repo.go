package postgres

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"devplan-ai-api/internal/domain/entity"
	"devplan-ai-api/internal/domain/repository"
)

// ProjectRepository 项目仓储实现
type ProjectRepository struct {
	client *Client
}

// NewProjectRepository 创建项目仓储
func NewProjectRepository(client *Client) *ProjectRepository {
	return &ProjectRepository{client: client}
}

// Save 保存草稿快照为新项目，返回项目 ID
func (r *ProjectRepository) Save(ctx context.Context, userID string, draft *entity.ProjectDraft) (string, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.Save")
	defer span.End()
	span.SetAttributes(attribute.String("project.owner_id", userID))

	project := entity.NewProjectFromDraft(userID, draft)
	if err := r.client.db.WithContext(ctx).Create(project).Error; err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create project: %w", err)
	}
	return project.ID, nil
}

// List 按创建时间倒序列出用户的项目
func (r *ProjectRepository) List(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.ProjectSummary], error) {
	ctx, span := tracer.Start(ctx, "postgres.ProjectRepository.List")
	defer span.End()

	query := r.client.db.WithContext(ctx).Model(&entity.Project{}).
		Where("owner_id = ?", userID).
		Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []*entity.Project
	if err := query.Select("id", "name", "type", "created_at").
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&projects).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	items := make([]*entity.ProjectSummary, 0, len(projects))
	for _, p := range projects {
		items = append(items, p.Summary())
	}
	return repository.NewPagedResult(items, total, pagination), nil
}
