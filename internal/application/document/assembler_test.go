package document

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"devplan-ai-api/internal/domain/entity"
)

func sampleDraft() *entity.ProjectDraft {
	d := entity.NewProjectDraft()
	d.Step = entity.StepTerminal
	d.Name = "家庭记账本"
	d.Description = "帮助家庭记录收支"
	d.Type = entity.ProjectTypeMiniApp
	d.SelectedModels = []string{"deepseek-chat"}
	d.Features = []entity.FeatureItem{{ID: "feature-1", Name: "记账", Priority: "high", Category: "核心|功能"}}
	d.Clarification = []entity.ClarificationQuestion{{ID: "q1", Question: "目标用户？", Required: true, Answer: "家庭"}}
	d.GeneratedDocuments = []entity.GeneratedDocument{
		{ID: "prd", Status: entity.DocumentStatusCompleted, Content: "# 产品需求\n\n内容"},
		{ID: "api-spec", Status: entity.DocumentStatusFailed, ErrorMessage: "AI 服务暂时不可用"},
	}
	return d
}

func newTestAssembler() *Assembler {
	a := NewAssembler()
	a.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return a
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatMarkdown, "MD": FormatMarkdown, "html": FormatHTML, "yml": FormatYAML, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestRender_Markdown(t *testing.T) {
	out, ct, err := newTestAssembler().Render(sampleDraft(), FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, "text/markdown; charset=utf-8", ct)

	md := string(out)
	assert.Contains(t, md, "# 家庭记账本")
	assert.Contains(t, md, "| 项目类型 | 小程序 |")
	assert.Contains(t, md, `核心\|功能`)
	assert.Contains(t, md, "**目标用户？**\n\n家庭")
	assert.Contains(t, md, "# 产品需求")
	assert.NotContains(t, md, "AI 服务暂时不可用", "failed documents are not exported")
}

func TestRender_HTMLUsesTables(t *testing.T) {
	out, ct, err := newTestAssembler().Render(sampleDraft(), FormatHTML)
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", ct)

	html := string(out)
	assert.Contains(t, html, "<title>家庭记账本</title>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<h1>家庭记账本</h1>")
}

func TestRender_JSONAndYAML(t *testing.T) {
	a := newTestAssembler()

	out, _, err := a.Render(sampleDraft(), FormatJSON)
	require.NoError(t, err)
	var j map[string]any
	require.NoError(t, json.Unmarshal(out, &j))
	assert.Equal(t, "家庭记账本", j["name"])
	assert.Len(t, j["documents"], 2)

	out, ct, err := a.Render(sampleDraft(), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, "application/yaml; charset=utf-8", ct)
	var y map[string]any
	require.NoError(t, yaml.Unmarshal(out, &y))
	assert.Equal(t, "小程序", y["type"])
	assert.Equal(t, []any{"deepseek-chat"}, y["models"])
}

func TestRender_UnsupportedFormat(t *testing.T) {
	_, _, err := newTestAssembler().Render(sampleDraft(), Format("docx"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
