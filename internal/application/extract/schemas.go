package extract

import (
	"fmt"

	"devplan-ai-api/internal/domain/entity"
)

// ClarificationSchema 需求澄清问题
var ClarificationSchema = Schema[entity.ClarificationQuestion]{
	Name:       "clarification",
	MinRecords: 1,
	Decode: func(f map[string]any) (entity.ClarificationQuestion, bool) {
		q, ok := mandatoryString(f, "question")
		if !ok {
			return entity.ClarificationQuestion{}, false
		}
		return entity.ClarificationQuestion{
			Question:    q,
			Placeholder: optionalString(f, "placeholder"),
			Required:    coerceBool(f["required"]),
		}, true
	},
	Normalize: func(i int, q entity.ClarificationQuestion) entity.ClarificationQuestion {
		q.ID = fmt.Sprintf("q%d", i+1)
		if q.Placeholder == "" {
			q.Placeholder = "请输入您的回答"
		}
		q.Answer = ""
		return q
	},
	Defaults: DefaultClarification,
}

// FeatureSchema 功能列表
var FeatureSchema = Schema[entity.FeatureItem]{
	Name:       "features",
	MinRecords: 1,
	Decode: func(f map[string]any) (entity.FeatureItem, bool) {
		name, ok := mandatoryString(f, "name")
		if !ok {
			return entity.FeatureItem{}, false
		}
		return entity.FeatureItem{
			Name:        name,
			Description: optionalString(f, "description"),
			Priority:    optionalString(f, "priority"),
			Category:    optionalString(f, "category"),
		}, true
	},
	Normalize: func(i int, item entity.FeatureItem) entity.FeatureItem {
		item.ID = fmt.Sprintf("feature-%d", i+1)
		item.Priority = normalizePriority(item.Priority)
		if item.Category == "" {
			item.Category = "核心功能"
		}
		return item
	},
	Defaults: DefaultFeatures,
}

// TechStackSchema 技术栈建议
var TechStackSchema = Schema[entity.TechStackItem]{
	Name:       "techstack",
	MinRecords: 1,
	Decode: func(f map[string]any) (entity.TechStackItem, bool) {
		name, ok := mandatoryString(f, "name")
		if !ok {
			return entity.TechStackItem{}, false
		}
		return entity.TechStackItem{
			Name:        name,
			Category:    optionalString(f, "category"),
			Description: optionalString(f, "description"),
			Reason:      optionalString(f, "reason"),
		}, true
	},
	Normalize: func(i int, item entity.TechStackItem) entity.TechStackItem {
		item.ID = fmt.Sprintf("tech-%d", i+1)
		if item.Category == "" {
			item.Category = "其他"
		}
		return item
	},
	Defaults: DefaultTechStack,
}
