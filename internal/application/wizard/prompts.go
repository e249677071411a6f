package wizard

import (
	"fmt"
	"strings"

	"devplan-ai-api/internal/domain/entity"
)

const unspecified = "未指定"

// promptVars 从草稿构造模板变量
func promptVars(d *entity.ProjectDraft) map[string]any {
	return map[string]any{
		"name":          d.Name,
		"type":          string(d.Type),
		"description":   d.Description,
		"models":        joinOr(d.SelectedModels),
		"tools":         joinOr(d.SelectedTools),
		"tech_stack":    joinOr(d.SelectedTechStack),
		"features":      featureLines(d.Features),
		"clarification": clarificationLines(d.Clarification),
	}
}

// documentVars 文档模板变量
func documentVars(d *entity.ProjectDraft, docType string) map[string]any {
	vars := promptVars(d)
	dt, ok := entity.LookupDocumentType(docType)
	if !ok {
		dt = entity.DocumentType{ID: docType, Name: docType, Description: docType}
	}
	vars["doc_name"] = dt.Name
	vars["doc_description"] = dt.Description
	return vars
}

func joinOr(items []string) string {
	if len(items) == 0 {
		return unspecified
	}
	return strings.Join(items, "、")
}

func featureLines(items []entity.FeatureItem) string {
	if len(items) == 0 {
		return unspecified
	}
	var b strings.Builder
	for _, f := range items {
		fmt.Fprintf(&b, "- [%s] %s：%s\n", f.Priority, f.Name, f.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func clarificationLines(qs []entity.ClarificationQuestion) string {
	var b strings.Builder
	for _, q := range qs {
		if strings.TrimSpace(q.Answer) == "" {
			continue
		}
		fmt.Fprintf(&b, "问：%s\n答：%s\n", q.Question, q.Answer)
	}
	if b.Len() == 0 {
		return unspecified
	}
	return strings.TrimRight(b.String(), "\n")
}
