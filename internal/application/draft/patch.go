package draft

import (
	"slices"
	"time"

	"devplan-ai-api/internal/domain/entity"
)

// Patch 草稿的部分更新
// nil 字段表示不变；集合字段为整体替换，不做按键合并。
type Patch struct {
	Step        *entity.Step
	Name        *string
	Description *string
	Type        *entity.ProjectType

	SelectedModels    *[]string
	SelectedTools     *[]string
	SelectedTechStack *[]string

	Clarification        *[]entity.ClarificationQuestion
	Features             *[]entity.FeatureItem
	TechStackSuggestions *[]entity.TechStackItem

	SelectedDocumentTypes *[]string
	GeneratedDocuments    *[]entity.GeneratedDocument
	Notices               *[]string
}

// Set 返回值的指针，便于构造 Patch
func Set[T any](v T) *T {
	return &v
}

// IsEmpty 是否没有任何字段
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// apply 浅合并到草稿
func (p Patch) apply(d *entity.ProjectDraft) {
	if p.Step != nil {
		d.Step = *p.Step
	}
	if p.Name != nil {
		d.Name = *p.Name
	}
	if p.Description != nil {
		d.Description = *p.Description
	}
	if p.Type != nil {
		d.Type = *p.Type
	}
	if p.SelectedModels != nil {
		d.SelectedModels = slices.Clone(*p.SelectedModels)
	}
	if p.SelectedTools != nil {
		d.SelectedTools = slices.Clone(*p.SelectedTools)
	}
	if p.SelectedTechStack != nil {
		d.SelectedTechStack = slices.Clone(*p.SelectedTechStack)
	}
	if p.Clarification != nil {
		d.Clarification = slices.Clone(*p.Clarification)
	}
	if p.Features != nil {
		d.Features = slices.Clone(*p.Features)
	}
	if p.TechStackSuggestions != nil {
		d.TechStackSuggestions = slices.Clone(*p.TechStackSuggestions)
	}
	if p.SelectedDocumentTypes != nil {
		d.SelectedDocumentTypes = slices.Clone(*p.SelectedDocumentTypes)
	}
	if p.GeneratedDocuments != nil {
		d.GeneratedDocuments = slices.Clone(*p.GeneratedDocuments)
	}
	if p.Notices != nil {
		d.Notices = slices.Clone(*p.Notices)
	}
	d.ApplyDefaults()
	d.UpdatedAt = time.Now()
}
