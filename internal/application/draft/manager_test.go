package draft

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devplan-ai-api/internal/domain/entity"
)

func TestManager_EmptyUser(t *testing.T) {
	_, err := NewManager(newMemStorage(), "devplan").Get(context.Background(), " ")
	assert.ErrorIs(t, err, ErrMissingUser)
}

func TestManager_KeyLayout(t *testing.T) {
	assert.Equal(t, "devplan:draft:u-42", NewManager(nil, "").Key("u-42"))
}

func TestManager_SameStorePerUser(t *testing.T) {
	ctx := context.Background()
	m := NewManager(newMemStorage(), "devplan")

	a, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	b, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	c, err := m.Get(ctx, "u2")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}

func TestManager_LoadsOlderRecordWithDefaults(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	st.data["devplan:draft:u1"] = []byte(`{"name":"旧版草稿","description":"d","type":"游戏","selectedModels":["gpt-4o"]}`)
	m := NewManager(st, "devplan")

	s, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	d := s.Read()

	assert.Equal(t, "旧版草稿", d.Name)
	assert.Equal(t, entity.StepBasics, d.Step)
	assert.Equal(t, []string{"gpt-4o"}, d.SelectedModels)
	assert.NotNil(t, d.GeneratedDocuments)
	assert.NotNil(t, d.Notices)
}

func TestManager_CorruptRecordLoadsEmpty(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	st.data["devplan:draft:u1"] = []byte(`{"name":`)

	s, err := NewManager(st, "devplan").Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, s.Read().Name)
}

func TestManager_LoadErrorKeepsDurableRecord(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	m := NewManager(st, "devplan")

	seed := entity.NewProjectDraft()
	seed.Name = "real project"
	raw, err := json.Marshal(seed)
	require.NoError(t, err)
	require.NoError(t, st.Save(ctx, m.Key("u1"), raw))

	st.setLoadErr(errors.New("i/o timeout"))
	_, err = m.Get(ctx, "u1")
	require.ErrorIs(t, err, ErrStorageUnavailable)
	assert.JSONEq(t, string(raw), string(st.raw(m.Key("u1"))), "failed load must not touch the record")

	st.setLoadErr(nil)
	s, err := m.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "real project", s.Read().Name)

	s.Patch(ctx, Patch{SelectedModels: Set([]string{"gpt-4o"})})
	var saved entity.ProjectDraft
	require.NoError(t, json.Unmarshal(st.raw(m.Key("u1")), &saved))
	assert.Equal(t, "real project", saved.Name)
	assert.Equal(t, []string{"gpt-4o"}, saved.SelectedModels)
}

func TestManager_ConcurrentFirstAccessSharesLoad(t *testing.T) {
	ctx := context.Background()
	st := newMemStorage()
	st.gate = make(chan struct{})
	m := NewManager(st, "devplan")

	const n = 20
	stores := make([]*Store, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(ctx, "u1")
			assert.NoError(t, err)
			stores[i] = s
		}(i)
	}
	close(st.gate)
	wg.Wait()

	for _, s := range stores {
		assert.Same(t, stores[0], s)
	}
	assert.Equal(t, int32(1), st.loads.Load())
}
