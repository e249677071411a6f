// Package extract 从模型的自由文本输出中抽取结构化记录
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const fence = "```"

var (
	// ErrEmptyInput 模型输出为空
	ErrEmptyInput = errors.New("empty model output")
	// ErrNoArray 未找到 JSON 数组
	ErrNoArray = errors.New("no json array found")
	// ErrNotArray 解析结果不是数组
	ErrNotArray = errors.New("parsed value is not an array")
	// ErrTooFewRecords 有效记录数低于下限
	ErrTooFewRecords = errors.New("too few valid records")
)

// StripFence 若文本含完整的代码块，返回第一个代码块的内容；否则返回整段文本
func StripFence(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyInput
	}

	open := strings.Index(text, fence)
	if open < 0 {
		return text, nil
	}
	body := text[open+len(fence):]
	// 跳过语言标记（```json）
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(body[:nl]); !strings.ContainsAny(tag, "[{") {
			body = body[nl+1:]
		}
	}
	end := strings.Index(body, fence)
	if end < 0 {
		// 代码块未闭合，按无代码块处理
		return text, nil
	}
	content := strings.TrimSpace(body[:end])
	if content == "" {
		return "", ErrEmptyInput
	}
	return content, nil
}

// LocateArray 定位 JSON 数组
// 文本以 '[' 开头时原样返回，交由解析阶段判断是否完整；
// 否则定位第一个括号平衡的顶层数组，扫描时跟踪字符串与转义，字符串内的括号不计入深度。
func LocateArray(candidate string) (string, error) {
	text := strings.TrimSpace(candidate)
	if strings.HasPrefix(text, "[") {
		return text, nil
	}
	for start := strings.IndexByte(text, '['); start >= 0; {
		if end, ok := balancedEnd(text, start); ok {
			return text[start : end+1], nil
		}
		next := strings.IndexByte(text[start+1:], '[')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", ErrNoArray
}

// balancedEnd 从 start 处的 '[' 开始查找与之匹配的 ']'
func balancedEnd(text string, start int) (int, bool) {
	stack := make([]byte, 0, 8)
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[', '{':
			stack = append(stack, ch)
		case ']', '}':
			if len(stack) == 0 {
				return 0, false
			}
			top := stack[len(stack)-1]
			if (ch == ']' && top != '[') || (ch == '}' && top != '{') {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// ParseValue 将候选文本解析为通用 JSON 值，数字保留为 json.Number
func ParseValue(candidate string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse json: trailing data after value")
	}
	return v, nil
}

// ExtractText 文档类输出的抽取：去掉外层空白后必须非空
func ExtractText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", ErrEmptyInput
	}
	return text, nil
}
