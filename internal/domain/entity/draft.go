// Package entity 定义领域实体
package entity

import (
	"slices"
	"time"
)

// ProjectType 项目类型
type ProjectType string

const (
	ProjectTypeWeb     ProjectType = "web应用"
	ProjectTypeMobile  ProjectType = "移动应用"
	ProjectTypeDesktop ProjectType = "桌面应用"
	ProjectTypeMiniApp ProjectType = "小程序"
	ProjectTypeAPI     ProjectType = "API服务"
	ProjectTypeData    ProjectType = "数据分析"
	ProjectTypeAI      ProjectType = "AI应用"
	ProjectTypeGame    ProjectType = "游戏"
)

// KnownProjectTypes 已知项目类型（有独立推荐基线）
func KnownProjectTypes() []ProjectType {
	return []ProjectType{
		ProjectTypeWeb, ProjectTypeMobile, ProjectTypeDesktop, ProjectTypeMiniApp,
		ProjectTypeAPI, ProjectTypeData, ProjectTypeAI, ProjectTypeGame,
	}
}

// IsKnown 是否为已知类型
func (t ProjectType) IsKnown() bool {
	return slices.Contains(KnownProjectTypes(), t)
}

// DocumentStatus 文档生成状态
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusCompleted DocumentStatus = "completed"
	DocumentStatusFailed    DocumentStatus = "failed"
)

// ClarificationQuestion 需求澄清问题
type ClarificationQuestion struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
	Answer      string `json:"answer"`
}

// FeatureItem 功能项
type FeatureItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// TechStackItem 技术栈建议项
type TechStackItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// GeneratedDocument 生成的文档，以文档类型 ID 为键
type GeneratedDocument struct {
	ID           string         `json:"id"`
	Status       DocumentStatus `json:"status"`
	Content      string         `json:"content,omitempty"`
	ErrorMessage string         `json:"errorMessage,omitempty"`
	// RequestSeq 该文档最近一次生成请求的序号，较旧请求的结果被丢弃
	RequestSeq uint64    `json:"requestSeq"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// ProjectDraft 进行中的项目定义草稿
type ProjectDraft struct {
	Step        Step        `json:"step"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        ProjectType `json:"type"`

	// SelectedModels 有序集合，插入顺序即偏好顺序
	SelectedModels    []string `json:"selectedModels"`
	SelectedTools     []string `json:"selectedTools"`
	SelectedTechStack []string `json:"selectedTechStack"`

	Clarification        []ClarificationQuestion `json:"clarification"`
	Features             []FeatureItem           `json:"features"`
	TechStackSuggestions []TechStackItem         `json:"techStackSuggestions"`

	SelectedDocumentTypes []string            `json:"selectedDocumentTypes"`
	GeneratedDocuments    []GeneratedDocument `json:"generatedDocuments"`

	// Notices 非阻塞提示（例如 AI 不可用时使用了默认内容）
	Notices   []string  `json:"notices"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProjectDraft 创建空草稿
func NewProjectDraft() *ProjectDraft {
	d := &ProjectDraft{}
	d.ApplyDefaults()
	return d
}

// ApplyDefaults 补齐缺省字段，兼容旧版本写入的草稿
func (d *ProjectDraft) ApplyDefaults() {
	if !d.Step.Valid() {
		d.Step = StepBasics
	}
	if d.SelectedModels == nil {
		d.SelectedModels = []string{}
	}
	if d.SelectedTools == nil {
		d.SelectedTools = []string{}
	}
	if d.SelectedTechStack == nil {
		d.SelectedTechStack = []string{}
	}
	if d.Clarification == nil {
		d.Clarification = []ClarificationQuestion{}
	}
	if d.Features == nil {
		d.Features = []FeatureItem{}
	}
	if d.TechStackSuggestions == nil {
		d.TechStackSuggestions = []TechStackItem{}
	}
	if d.SelectedDocumentTypes == nil {
		d.SelectedDocumentTypes = []string{}
	}
	if d.GeneratedDocuments == nil {
		d.GeneratedDocuments = []GeneratedDocument{}
	}
	if d.Notices == nil {
		d.Notices = []string{}
	}
}

// Clone 深拷贝草稿
func (d *ProjectDraft) Clone() *ProjectDraft {
	c := *d
	c.SelectedModels = slices.Clone(d.SelectedModels)
	c.SelectedTools = slices.Clone(d.SelectedTools)
	c.SelectedTechStack = slices.Clone(d.SelectedTechStack)
	c.Clarification = slices.Clone(d.Clarification)
	c.Features = slices.Clone(d.Features)
	c.TechStackSuggestions = slices.Clone(d.TechStackSuggestions)
	c.SelectedDocumentTypes = slices.Clone(d.SelectedDocumentTypes)
	c.GeneratedDocuments = slices.Clone(d.GeneratedDocuments)
	c.Notices = slices.Clone(d.Notices)
	c.ApplyDefaults()
	return &c
}

// Document 按文档类型查找已生成文档
func (d *ProjectDraft) Document(docType string) (GeneratedDocument, bool) {
	for _, doc := range d.GeneratedDocuments {
		if doc.ID == docType {
			return doc, true
		}
	}
	return GeneratedDocument{}, false
}

// Recommendation 推荐项，派生值，不持久化
type Recommendation struct {
	Category string  `json:"category"`
	ItemID   string  `json:"itemId"`
	Score    float64 `json:"score"`
}

// AppendUnique 追加并去重，保持原有顺序
func AppendUnique(dst []string, items ...string) []string {
	out := slices.Clone(dst)
	for _, item := range items {
		if item == "" || slices.Contains(out, item) {
			continue
		}
		out = append(out, item)
	}
	return out
}
