package draft

import (
	"strings"

	"devplan-ai-api/internal/domain/entity"
)

// Status 草稿完成度，每次调用重新计算
type Status struct {
	BasicsComplete        bool `json:"basicsComplete"`
	ToolsComplete         bool `json:"toolsComplete"`
	ClarificationComplete bool `json:"clarificationComplete"`
	DocumentTypesComplete bool `json:"documentTypesComplete"`
	GenerationComplete    bool `json:"generationComplete"`
	// CanProceed 当前步骤的前进条件是否满足
	CanProceed bool `json:"canProceed"`
}

// Evaluate 计算草稿的完成度
func Evaluate(d *entity.ProjectDraft) Status {
	s := Status{
		BasicsComplete:        basicsComplete(d),
		ToolsComplete:         len(d.SelectedModels) > 0,
		ClarificationComplete: clarificationComplete(d.Clarification),
		DocumentTypesComplete: len(d.SelectedDocumentTypes) > 0,
		GenerationComplete:    generationComplete(d),
	}
	s.CanProceed = s.ForStep(d.Step)
	return s
}

// ForStep 离开指定步骤所需的条件
func (s Status) ForStep(step entity.Step) bool {
	switch step {
	case entity.StepBasics:
		return s.BasicsComplete
	case entity.StepToolSelection:
		return s.ToolsComplete
	case entity.StepClarification:
		return s.ClarificationComplete
	case entity.StepDocumentTypeSelection:
		return s.DocumentTypesComplete
	case entity.StepGeneration:
		return s.GenerationComplete
	default:
		return false
	}
}

func basicsComplete(d *entity.ProjectDraft) bool {
	return strings.TrimSpace(d.Name) != "" &&
		strings.TrimSpace(d.Description) != "" &&
		strings.TrimSpace(string(d.Type)) != ""
}

// clarificationComplete 问题列表非空，且所有必答问题都有非空回答
func clarificationComplete(qs []entity.ClarificationQuestion) bool {
	if len(qs) == 0 {
		return false
	}
	for _, q := range qs {
		if q.Required && q.Answer == "" {
			return false
		}
	}
	return true
}

// generationComplete 每个已选文档都已结束生成，且至少一份成功
func generationComplete(d *entity.ProjectDraft) bool {
	if len(d.SelectedDocumentTypes) == 0 {
		return false
	}
	completed := 0
	for _, id := range d.SelectedDocumentTypes {
		doc, ok := d.Document(id)
		if !ok || doc.Status == entity.DocumentStatusPending {
			return false
		}
		if doc.Status == entity.DocumentStatusCompleted {
			completed++
		}
	}
	return completed > 0
}
