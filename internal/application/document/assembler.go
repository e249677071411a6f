// Package document 将草稿与生成的文档导出为 Markdown、HTML、JSON 或 YAML
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gopkg.in/yaml.v3"

	"devplan-ai-api/internal/domain/entity"
)

// ErrUnsupportedFormat 未知导出格式
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format 导出格式
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ParseFormat 解析格式，支持常见别名
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Extension 文件扩展名
func (f Format) Extension() string {
	switch f {
	case FormatHTML:
		return "html"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "md"
	}
}

// Assembler 文档导出器
type Assembler struct {
	md  goldmark.Markdown
	now func() time.Time
}

// NewAssembler 创建导出器
func NewAssembler() *Assembler {
	return &Assembler{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		now: time.Now,
	}
}

// Render 渲染草稿，返回内容与 Content-Type
func (a *Assembler) Render(d *entity.ProjectDraft, format Format) ([]byte, string, error) {
	switch format {
	case FormatMarkdown:
		return []byte(a.markdown(d)), "text/markdown; charset=utf-8", nil
	case FormatHTML:
		out, err := a.html(d)
		if err != nil {
			return nil, "", err
		}
		return out, "text/html; charset=utf-8", nil
	case FormatJSON:
		out, err := json.MarshalIndent(a.export(d), "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("encode json export: %w", err)
		}
		return out, "application/json; charset=utf-8", nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(a.export(d)); err != nil {
			return nil, "", fmt.Errorf("encode yaml export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, "", fmt.Errorf("encode yaml export: %w", err)
		}
		return buf.Bytes(), "application/yaml; charset=utf-8", nil
	default:
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func (a *Assembler) html(d *entity.ProjectDraft) ([]byte, error) {
	var body bytes.Buffer
	if err := a.md.Convert([]byte(a.markdown(d)), &body); err != nil {
		return nil, fmt.Errorf("render html export: %w", err)
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "<!DOCTYPE html>\n<html lang=\"zh-CN\">\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n",
		htmlEscape(titleOf(d)))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}

func (a *Assembler) markdown(d *entity.ProjectDraft) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", titleOf(d))
	if d.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", d.Description)
	}

	b.WriteString("## 项目概览\n\n")
	b.WriteString("| 项目 | 内容 |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| 项目类型 | %s |\n", cell(string(d.Type)))
	fmt.Fprintf(&b, "| AI 模型 | %s |\n", cell(strings.Join(d.SelectedModels, "、")))
	fmt.Fprintf(&b, "| 开发工具 | %s |\n", cell(strings.Join(d.SelectedTools, "、")))
	fmt.Fprintf(&b, "| 技术栈 | %s |\n\n", cell(strings.Join(d.SelectedTechStack, "、")))

	if len(d.Features) > 0 {
		b.WriteString("## 功能清单\n\n| 功能 | 优先级 | 分类 | 说明 |\n| --- | --- | --- | --- |\n")
		for _, f := range d.Features {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cell(f.Name), cell(f.Priority), cell(f.Category), cell(f.Description))
		}
		b.WriteString("\n")
	}

	if len(d.TechStackSuggestions) > 0 {
		b.WriteString("## 技术栈建议\n\n")
		for _, t := range d.TechStackSuggestions {
			fmt.Fprintf(&b, "- **%s**（%s）：%s", t.Name, t.Category, t.Description)
			if t.Reason != "" {
				fmt.Fprintf(&b, " 理由：%s", t.Reason)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(d.Clarification) > 0 {
		b.WriteString("## 需求澄清\n\n")
		for _, q := range d.Clarification {
			answer := strings.TrimSpace(q.Answer)
			if answer == "" {
				answer = "（未回答）"
			}
			fmt.Fprintf(&b, "**%s**\n\n%s\n\n", q.Question, answer)
		}
	}

	for _, doc := range d.GeneratedDocuments {
		if doc.Status != entity.DocumentStatusCompleted {
			continue
		}
		fmt.Fprintf(&b, "---\n\n<!-- document: %s -->\n\n%s\n\n", doc.ID, strings.TrimSpace(doc.Content))
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// exportDocument 结构化导出格式
type exportDocument struct {
	Name          string                         `json:"name" yaml:"name"`
	Description   string                         `json:"description" yaml:"description"`
	Type          string                         `json:"type" yaml:"type"`
	Models        []string                       `json:"models" yaml:"models"`
	Tools         []string                       `json:"tools" yaml:"tools"`
	TechStack     []string                       `json:"techStack" yaml:"techStack"`
	Features      []entity.FeatureItem           `json:"features" yaml:"features"`
	Suggestions   []entity.TechStackItem         `json:"techStackSuggestions" yaml:"techStackSuggestions"`
	Clarification []entity.ClarificationQuestion `json:"clarification" yaml:"clarification"`
	Documents     []exportedDoc                  `json:"documents" yaml:"documents"`
	ExportedAt    time.Time                      `json:"exportedAt" yaml:"exportedAt"`
}

type exportedDoc struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Status  string `json:"status" yaml:"status"`
	Content string `json:"content,omitempty" yaml:"content,omitempty"`
}

func (a *Assembler) export(d *entity.ProjectDraft) exportDocument {
	docs := make([]exportedDoc, 0, len(d.GeneratedDocuments))
	for _, doc := range d.GeneratedDocuments {
		name := doc.ID
		if dt, ok := entity.LookupDocumentType(doc.ID); ok {
			name = dt.Name
		}
		docs = append(docs, exportedDoc{ID: doc.ID, Name: name, Status: string(doc.Status), Content: doc.Content})
	}
	return exportDocument{
		Name:          d.Name,
		Description:   d.Description,
		Type:          string(d.Type),
		Models:        d.SelectedModels,
		Tools:         d.SelectedTools,
		TechStack:     d.SelectedTechStack,
		Features:      d.Features,
		Suggestions:   d.TechStackSuggestions,
		Clarification: d.Clarification,
		Documents:     docs,
		ExportedAt:    a.now().UTC(),
	}
}

func titleOf(d *entity.ProjectDraft) string {
	if strings.TrimSpace(d.Name) == "" {
		return "未命名项目"
	}
	return d.Name
}

// cell 转义表格单元格中的竖线与换行
func cell(s string) string {
	if s == "" {
		return "-"
	}
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
