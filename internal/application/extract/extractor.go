package extract

import (
	"fmt"

	"devplan-ai-api/pkg/metrics"
)

// Result 抽取结果
type Result[T any] struct {
	Records []T
	// UsedFallback 为 true 时 Records 为默认记录
	UsedFallback bool
	// Reason 回退原因，成功时为空
	Reason string
}

// Extract 依次执行去代码块、定位数组、解析、校验、规范化；任一步失败返回默认记录
// 该函数不会 panic。
func Extract[T any](raw string, schema Schema[T]) (res Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			res = fallback(schema, fmt.Errorf("panic during extraction: %v", r))
		}
	}()

	records, err := run(raw, schema)
	if err != nil {
		return fallback(schema, err)
	}
	metrics.ExtractionTotal.WithLabelValues(schema.Name, "parsed").Inc()
	return Result[T]{Records: records}
}

func run[T any](raw string, schema Schema[T]) ([]T, error) {
	candidate, err := StripFence(raw)
	if err != nil {
		return nil, err
	}
	candidate, err = LocateArray(candidate)
	if err != nil {
		return nil, err
	}
	value, err := ParseValue(candidate)
	if err != nil {
		return nil, err
	}
	records, err := schema.Validate(value)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i] = schema.Normalize(i, records[i])
	}
	return records, nil
}

func fallback[T any](schema Schema[T], err error) Result[T] {
	metrics.ExtractionTotal.WithLabelValues(schema.Name, "fallback").Inc()
	return Result[T]{
		Records:      schema.Defaults(),
		UsedFallback: true,
		Reason:       err.Error(),
	}
}
