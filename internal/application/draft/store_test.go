package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devplan-ai-api/internal/domain/entity"
)

func TestStore_PatchMergesAndPersists(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	s := NewStore("devplan:draft:u1", nil, st)

	s.Patch(ctx, Patch{Name: Set("记账本"), Type: Set(entity.ProjectTypeMiniApp)})
	got := s.Patch(ctx, Patch{Description: Set("家庭记账小程序")})

	assert.Equal(t, "记账本", got.Name)
	assert.Equal(t, "家庭记账小程序", got.Description)
	assert.Equal(t, entity.ProjectTypeMiniApp, got.Type)

	var persisted entity.ProjectDraft
	require.NoError(t, json.Unmarshal(st.raw("devplan:draft:u1"), &persisted))
	assert.Equal(t, "家庭记账小程序", persisted.Description)
	assert.Equal(t, int32(2), st.saves.Load())
}

func TestStore_CollectionsAreReplaced(t *testing.T) {
	ctx := context.Background()
	s := NewStore("k", nil, nil)

	s.Patch(ctx, Patch{SelectedModels: Set([]string{"gpt-4o", "claude-3.5-sonnet"})})
	got := s.Patch(ctx, Patch{SelectedModels: Set([]string{"deepseek-chat"})})

	assert.Equal(t, []string{"deepseek-chat"}, got.SelectedModels)
}

func TestStore_ReadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore("k", nil, nil)
	s.Patch(ctx, Patch{SelectedModels: Set([]string{"gpt-4o"})})

	d := s.Read()
	d.SelectedModels[0] = "mutated"
	d.Name = "mutated"

	assert.Equal(t, "gpt-4o", s.Read().SelectedModels[0])
	assert.Empty(t, s.Read().Name)
}

func TestStore_PersistFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	st.saveErr = errQuota
	s := NewStore("k", nil, st)

	got := s.Patch(ctx, Patch{Name: Set("still here")})
	assert.Equal(t, "still here", got.Name)
	assert.Equal(t, "still here", s.Read().Name)

	s.Reset(ctx)
	assert.Empty(t, s.Read().Name)
}

func TestStore_ResetPersistsEmptyDraft(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	s := NewStore("k", nil, st)
	s.Patch(ctx, Patch{Name: Set("x"), Step: Set(entity.StepClarification)})

	d := s.Reset(ctx)
	assert.Equal(t, entity.StepBasics, d.Step)
	assert.Empty(t, d.Name)

	var persisted entity.ProjectDraft
	require.NoError(t, json.Unmarshal(st.raw("k"), &persisted))
	assert.Empty(t, persisted.Name)
	assert.Equal(t, entity.StepBasics, persisted.Step)
}

func TestStore_UpdateErrorLeavesDraftUntouched(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	s := NewStore("k", nil, st)

	_, err := s.Update(ctx, func(*entity.ProjectDraft) (Patch, error) {
		return Patch{Name: Set("nope")}, fmt.Errorf("refused")
	})
	require.Error(t, err)
	assert.Empty(t, s.Read().Name)
	assert.Equal(t, int32(0), st.saves.Load())

	d, err := s.Update(ctx, func(*entity.ProjectDraft) (Patch, error) { return Patch{}, nil })
	require.NoError(t, err)
	assert.NotNil(t, d)
	assert.Equal(t, int32(0), st.saves.Load())
}

func TestStore_ConcurrentPatchesAreSerialized(t *testing.T) {
	ctx := context.Background()
	s := NewStore("k", nil, newMemStorage())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.Update(ctx, func(cur *entity.ProjectDraft) (Patch, error) {
				return Patch{Notices: Set(append(cur.Notices, fmt.Sprintf("n%d", i)))}, nil
			})
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Read().Notices, 50)
}

func TestStore_RequiredAnswerGating(t *testing.T) {
	ctx := context.Background()
	s := NewStore("k", nil, nil)
	qs := []entity.ClarificationQuestion{
		{ID: "q1", Question: "目标用户？", Required: true},
		{ID: "q2", Question: "预算？", Required: false},
	}
	s.Patch(ctx, Patch{Clarification: Set(qs)})
	assert.False(t, s.CompletionStatus().ClarificationComplete)

	qs[0].Answer = "学生"
	s.Patch(ctx, Patch{Clarification: Set(qs)})
	assert.True(t, s.CompletionStatus().ClarificationComplete)

	qs[0].Answer = "   "
	s.Patch(ctx, Patch{Clarification: Set(qs)})
	assert.True(t, s.CompletionStatus().ClarificationComplete, "any non-empty answer counts")

	qs[0].Answer = ""
	s.Patch(ctx, Patch{Clarification: Set(qs)})
	assert.False(t, s.CompletionStatus().ClarificationComplete)
}
