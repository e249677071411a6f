package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepNavigation(t *testing.T) {
	next, ok := StepBasics.Next()
	require.True(t, ok)
	assert.Equal(t, StepToolSelection, next)

	_, ok = StepTerminal.Next()
	assert.False(t, ok)

	_, ok = StepBasics.Prev()
	assert.False(t, ok)

	prev, ok := StepGeneration.Prev()
	require.True(t, ok)
	assert.Equal(t, StepDocumentTypeSelection, prev)

	assert.False(t, Step("bogus").Valid())
}

func TestProjectDraft_OlderRecordGetsDefaults(t *testing.T) {
	var d ProjectDraft
	require.NoError(t, json.Unmarshal([]byte(`{"name":"旧草稿","type":"web应用"}`), &d))
	d.ApplyDefaults()

	assert.Equal(t, StepBasics, d.Step)
	assert.Equal(t, "旧草稿", d.Name)
	assert.NotNil(t, d.SelectedModels)
	assert.NotNil(t, d.GeneratedDocuments)
	assert.Empty(t, d.Clarification)
}

func TestProjectDraft_CloneIsDeep(t *testing.T) {
	d := NewProjectDraft()
	d.SelectedModels = []string{"gpt-4o"}
	d.Clarification = []ClarificationQuestion{{ID: "q1", Question: "目标用户？"}}

	c := d.Clone()
	c.SelectedModels[0] = "claude"
	c.Clarification[0].Answer = "学生"

	assert.Equal(t, "gpt-4o", d.SelectedModels[0])
	assert.Empty(t, d.Clarification[0].Answer)
}

func TestAppendUnique(t *testing.T) {
	got := AppendUnique([]string{"a", "b"}, "b", "c", "", "a", "d")
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}
