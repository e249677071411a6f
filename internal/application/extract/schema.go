package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Schema 描述一种记录的校验、规范化与默认值
type Schema[T any] struct {
	// Name 用于指标与日志
	Name string
	// MinRecords 有效记录数下限
	MinRecords int
	// Decode 将单个元素转换为记录，缺少必填字段时返回 false
	Decode func(fields map[string]any) (T, bool)
	// Normalize 按位置重建 ID 并补齐可选字段
	Normalize func(index int, record T) T
	// Defaults 返回固定的默认记录列表（每次调用返回新副本）
	Defaults func() []T
}

// Validate 校验解析结果：必须为数组，丢弃缺少必填字段的元素，数量不足下限视为失败
func (s Schema[T]) Validate(value any) ([]T, error) {
	items, ok := value.([]any)
	if !ok {
		return nil, ErrNotArray
	}

	records := make([]T, 0, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if rec, ok := s.Decode(fields); ok {
			records = append(records, rec)
		}
	}

	if len(records) < max(s.MinRecords, 1) {
		return nil, fmt.Errorf("%w: %d of %d elements valid, need %d", ErrTooFewRecords, len(records), len(items), max(s.MinRecords, 1))
	}
	return records, nil
}

// stringField 读取字符串字段，数字按原文转换，其它类型视为缺失
func stringField(fields map[string]any, key string) (string, bool) {
	switch v := fields[key].(type) {
	case string:
		return strings.TrimSpace(v), true
	case json.Number:
		return v.String(), true
	default:
		return "", false
	}
}

// mandatoryString 必填字符串字段，空白视为缺失
func mandatoryString(fields map[string]any, key string) (string, bool) {
	s, ok := stringField(fields, key)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// optionalString 可选字符串字段
func optionalString(fields map[string]any, key string) string {
	s, _ := stringField(fields, key)
	return s
}

// coerceBool 仅接受布尔值或精确的 "true"/"false" 字符串，其它一律为 false
func coerceBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}

// normalizePriority 归一化优先级，无法识别时为 medium
func normalizePriority(p string) string {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case "high", "高", "p0":
		return "high"
	case "low", "低", "p2":
		return "low"
	default:
		return "medium"
	}
}
