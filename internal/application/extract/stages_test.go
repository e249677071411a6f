package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"no fence", `  [{"a":1}]  `, `[{"a":1}]`},
		{"json fence", "Sure!\n```json\n[1,2]\n```\nbye", "[1,2]"},
		{"bare fence", "```\n[3]\n```", "[3]"},
		{"first of two fences", "```\n[1]\n```\ntext\n```\n[2]\n```", "[1]"},
		{"unclosed fence", "```json\n[1,2", "```json\n[1,2"},
		{"inline fence", "```[1]```", "[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := StripFence(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := StripFence("   \n ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestLocateArray(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"starts with array", `[{"q":"a"}]`, `[{"q":"a"}]`},
		{"prose around", `Here you go: [{"q":"a"}] hope it helps`, `[{"q":"a"}]`},
		{"brackets inside strings", `x [{"q":"use ] and [ carefully"}] y`, `[{"q":"use ] and [ carefully"}]`},
		{"escaped quote", `[{"q":"say \"hi]\""}]`, `[{"q":"say \"hi]\""}]`},
		{"nested", `ok [[1,[2]],{"a":[3]}] end`, `[[1,[2]],{"a":[3]}]`},
		{"first balanced bracket pair wins", `see [note: below] and [1]`, `[note: below]`},
		{"mismatched closer then valid", `x [} then [1]`, `[1]`},
		{"leading array kept as is", `[{"q":"a"}] hope it helps`, `[{"q":"a"}] hope it helps`},
		{"truncated leading array kept as is", `[[{"question":"A"}], [{"question":"B"}`, `[[{"question":"A"}], [{"question":"B"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocateArray(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, in := range []string{"I cannot answer that.", `{"q":"a"}`, `note: [{"q":"a"}`, ""} {
		_, err := LocateArray(in)
		assert.ErrorIs(t, err, ErrNoArray, in)
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(`[{"n": 12345678901234567890}]`)
	require.NoError(t, err)
	arr := v.([]any)
	assert.Equal(t, json.Number("12345678901234567890"), arr[0].(map[string]any)["n"])

	_, err = ParseValue(`[1,]`)
	assert.Error(t, err)

	_, err = ParseValue(`[1] [2]`)
	assert.Error(t, err)
}

func TestExtractText(t *testing.T) {
	got, err := ExtractText("\n  # PRD\n内容  \n")
	require.NoError(t, err)
	assert.Equal(t, "# PRD\n内容", got)

	_, err = ExtractText(" \t\n")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestCoerceBool(t *testing.T) {
	assert.True(t, coerceBool(true))
	assert.True(t, coerceBool("true"))
	assert.False(t, coerceBool(false))
	assert.False(t, coerceBool("false"))
	assert.False(t, coerceBool("TRUE"))
	assert.False(t, coerceBool("yes"))
	assert.False(t, coerceBool(json.Number("1")))
	assert.False(t, coerceBool(nil))
}
