package dto

import (
	"strings"

	"devplan-ai-api/internal/application/wizard"
	"devplan-ai-api/internal/domain/entity"
)

// UpdateDraftRequest 草稿部分更新，未出现的字段保持不变
type UpdateDraftRequest struct {
	Name                  *string               `json:"name,omitempty" binding:"omitempty,max=255"`
	Description           *string               `json:"description,omitempty" binding:"omitempty,max=5000"`
	Type                  *string               `json:"type,omitempty" binding:"omitempty,max=50"`
	SelectedModels        *[]string             `json:"selectedModels,omitempty"`
	SelectedTools         *[]string             `json:"selectedTools,omitempty"`
	SelectedTechStack     *[]string             `json:"selectedTechStack,omitempty"`
	SelectedDocumentTypes *[]string             `json:"selectedDocumentTypes,omitempty"`
	Features              *[]entity.FeatureItem `json:"features,omitempty"`
	Answers               map[string]string     `json:"answers,omitempty"`
}

// ToEdit 转换为向导编辑
func (r *UpdateDraftRequest) ToEdit() wizard.Edit {
	e := wizard.Edit{
		Name:                  r.Name,
		Description:           r.Description,
		SelectedModels:        r.SelectedModels,
		SelectedTools:         r.SelectedTools,
		SelectedTechStack:     r.SelectedTechStack,
		SelectedDocumentTypes: r.SelectedDocumentTypes,
		Features:              r.Features,
		Answers:               r.Answers,
	}
	if r.Type != nil {
		t := entity.ProjectType(strings.TrimSpace(*r.Type))
		e.Type = &t
	}
	return e
}

// ForceStepRequest 强制跳转请求
type ForceStepRequest struct {
	Step string `json:"step" binding:"required"`
}

// ApplyRecommendationsRequest 采纳推荐请求，items 为空时采纳全部推荐
type ApplyRecommendationsRequest struct {
	Category string   `json:"category" binding:"required"`
	Items    []string `json:"items,omitempty"`
}

// RecommendationsResponse 推荐结果
type RecommendationsResponse struct {
	Category string                  `json:"category"`
	Items    []entity.Recommendation `json:"items"`
}

// SubmitResponse 提交结果
type SubmitResponse struct {
	ProjectID string `json:"projectId"`
}

// ProjectListResponse 项目列表
type ProjectListResponse struct {
	Projects []*entity.ProjectSummary `json:"projects"`
}
