package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devplan-ai-api/internal/domain/entity"
)

func TestExtract_FencedSingleQuestion(t *testing.T) {
	res := Extract("Sure! ```json\n[{\"question\":\"Q1\"}]\n```", ClarificationSchema)

	require.False(t, res.UsedFallback)
	require.Len(t, res.Records, 1)
	q := res.Records[0]
	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, "Q1", q.Question)
	assert.NotEmpty(t, q.Placeholder)
	assert.False(t, q.Required)
	assert.Empty(t, res.Reason)
}

func TestExtract_NoArrayFallsBack(t *testing.T) {
	res := Extract("I cannot answer that.", ClarificationSchema)

	assert.True(t, res.UsedFallback)
	assert.Len(t, res.Records, 5)
	assert.Equal(t, DefaultClarification(), res.Records)
	assert.NotEmpty(t, res.Reason)
}

func TestExtract_RequiredCoercion(t *testing.T) {
	raw := `[
		{"id":"x","question":"A","required":true},
		{"id":"x","question":"B","required":"true"},
		{"question":"C","required":"false"},
		{"question":"D","required":"yes"},
		{"question":"E","required":1},
		{"question":"F"}
	]`
	res := Extract(raw, ClarificationSchema)
	require.False(t, res.UsedFallback)
	require.Len(t, res.Records, 6)

	want := []bool{true, true, false, false, false, false}
	for i, q := range res.Records {
		assert.Equal(t, want[i], q.Required, q.Question)
	}
	assert.Equal(t, "q1", res.Records[0].ID)
	assert.Equal(t, "q2", res.Records[1].ID)
}

func TestExtract_DropsElementsMissingMandatoryField(t *testing.T) {
	raw := `[{"placeholder":"no question"},{"question":"  "},"str",{"question":"保留"}]`
	res := Extract(raw, ClarificationSchema)

	require.False(t, res.UsedFallback)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "保留", res.Records[0].Question)
	assert.Equal(t, "q1", res.Records[0].ID)
}

func TestExtract_AllDroppedFallsBack(t *testing.T) {
	res := Extract(`[{"title":"no question"}]`, ClarificationSchema)
	assert.True(t, res.UsedFallback)
	assert.Contains(t, res.Reason, "too few valid records")
}

func TestExtract_Features(t *testing.T) {
	raw := "以下是功能列表：\n```json\n" + `[
		{"name":"登录","description":"手机号登录","priority":"HIGH","category":"用户"},
		{"name":"支付","priority":"urgent"},
		{"description":"缺少名称"}
	]` + "\n```"
	res := Extract(raw, FeatureSchema)

	require.False(t, res.UsedFallback)
	require.Len(t, res.Records, 2)
	assert.Equal(t, entity.FeatureItem{ID: "feature-1", Name: "登录", Description: "手机号登录", Priority: "high", Category: "用户"}, res.Records[0])
	assert.Equal(t, "feature-2", res.Records[1].ID)
	assert.Equal(t, "medium", res.Records[1].Priority)
	assert.NotEmpty(t, res.Records[1].Category)
}

func TestExtract_TechStack(t *testing.T) {
	raw := `推荐如下 [{"name":"Go","category":"后端","reason":"高并发"},{"name":"Redis"}] 供参考`
	res := Extract(raw, TechStackSchema)

	require.False(t, res.UsedFallback)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "tech-1", res.Records[0].ID)
	assert.Equal(t, "高并发", res.Records[0].Reason)
	assert.Equal(t, "tech-2", res.Records[1].ID)
}

func TestExtract_NeverPanics(t *testing.T) {
	inputs := []string{
		"",
		"null",
		"[",
		"]",
		"[[[[[[",
		`[{"question":`,
		`{"question":"object not array"}`,
		`[1, 2, 3]`,
		`[null]`,
		`["a","b"]`,
		"```",
		"``````",
		"```json\n```",
		`[{"question": ["nested"]}]`,
		`[{"question": {"deep": true}}]`,
		"\x00\xff\xfe[",
		`[{"question":"ok"}] trailing [junk`,
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() {
			res := Extract(in, ClarificationSchema)
			assert.NotEmpty(t, res.Records)
			if res.UsedFallback {
				assert.Equal(t, DefaultClarification(), res.Records)
			}
		}, in)
		assert.NotPanics(t, func() { Extract(in, FeatureSchema) }, in)
		assert.NotPanics(t, func() { Extract(in, TechStackSchema) }, in)
	}
}

func TestExtract_RecoversFromSchemaPanic(t *testing.T) {
	bad := ClarificationSchema
	bad.Decode = func(map[string]any) (entity.ClarificationQuestion, bool) { panic("boom") }

	var res Result[entity.ClarificationQuestion]
	require.NotPanics(t, func() { res = Extract(`[{"question":"x"}]`, bad) })
	assert.True(t, res.UsedFallback)
	assert.Contains(t, res.Reason, "boom")
}

func TestDefaults_ReturnFreshCopies(t *testing.T) {
	a := DefaultClarification()
	a[0].Answer = "changed"
	assert.Empty(t, DefaultClarification()[0].Answer)
}

func FuzzExtractClarification(f *testing.F) {
	f.Add("Sure! ```json\n[{\"question\":\"Q1\"}]\n```")
	f.Add("I cannot answer that.")
	f.Add(`[{"question":"a","required":"true"}]`)
	f.Fuzz(func(t *testing.T, raw string) {
		res := Extract(raw, ClarificationSchema)
		if len(res.Records) == 0 {
			t.Fatalf("no records for %q", raw)
		}
	})
}

func TestExtract_TruncatedLeadingArrayFallsBack(t *testing.T) {
	res := Extract(`[[{"question":"A"}], [{"question":"B"}`, ClarificationSchema)
	assert.True(t, res.UsedFallback)
	assert.Contains(t, res.Reason, "parse json")
	assert.Equal(t, DefaultClarification(), res.Records)
}
