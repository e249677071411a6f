package entity

import (
	"time"

	"github.com/lib/pq"
)

// Project 已提交的项目快照
type Project struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID     string         `json:"owner_id" gorm:"type:varchar(64);index;not null"`
	Name        string         `json:"name" gorm:"type:varchar(255);not null"`
	Description string         `json:"description,omitempty" gorm:"type:text"`
	Type        ProjectType    `json:"type" gorm:"type:varchar(50)"`
	Models      pq.StringArray `json:"models" gorm:"type:text[]"`
	Tools       pq.StringArray `json:"tools" gorm:"type:text[]"`
	TechStack   pq.StringArray `json:"tech_stack" gorm:"type:text[]"`
	Snapshot    *ProjectDraft  `json:"snapshot,omitempty" gorm:"type:jsonb;serializer:json"`
	CreatedAt   time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Project) TableName() string {
	return "projects"
}

// NewProjectFromDraft 由草稿快照创建项目
func NewProjectFromDraft(ownerID string, draft *ProjectDraft) *Project {
	snapshot := draft.Clone()
	return &Project{
		OwnerID:     ownerID,
		Name:        snapshot.Name,
		Description: snapshot.Description,
		Type:        snapshot.Type,
		Models:      pq.StringArray(snapshot.SelectedModels),
		Tools:       pq.StringArray(snapshot.SelectedTools),
		TechStack:   pq.StringArray(snapshot.SelectedTechStack),
		Snapshot:    snapshot,
		CreatedAt:   time.Now(),
	}
}

// Summary 转换为项目摘要
func (p *Project) Summary() *ProjectSummary {
	return &ProjectSummary{
		ID:        p.ID,
		Name:      p.Name,
		Type:      p.Type,
		CreatedAt: p.CreatedAt,
	}
}

// ProjectSummary 项目列表摘要
type ProjectSummary struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Type      ProjectType `json:"type"`
	CreatedAt time.Time   `json:"createdAt"`
}
