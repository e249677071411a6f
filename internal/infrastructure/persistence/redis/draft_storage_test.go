package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devplan-ai-api/internal/domain/repository"
)

type memKV struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) GetBytes(_ context.Context, key string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	v, ok := m.data[key]
	if !ok {
		return nil, redis.Nil
	}
	return v, nil
}

func (m *memKV) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestDraftStorage_LoadMissing(t *testing.T) {
	s := &DraftStorage{store: newMemKV(), ttl: time.Hour}
	_, err := s.Load(context.Background(), "devplan:draft:u1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDraftStorage_SaveRefreshesTTL(t *testing.T) {
	m := newMemKV()
	s := &DraftStorage{store: m, ttl: 2 * time.Hour}
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "k", []byte(`{"step":"basics"}`)))
	got, err := s.Load(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"step":"basics"}`, string(got))
	assert.Equal(t, 2*time.Hour, m.ttls["k"])
}

func TestDraftStorage_BackendError(t *testing.T) {
	m := newMemKV()
	m.err = errors.New("connection refused")
	s := &DraftStorage{store: m}

	_, err := s.Load(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
	assert.ErrorIs(t, s.Save(context.Background(), "k", nil), m.err)
}

func TestIsNil(t *testing.T) {
	assert.True(t, IsNil(redis.Nil))
	assert.True(t, IsNil(errors.Join(errors.New("wrap"), redis.Nil)))
	assert.False(t, IsNil(errors.New("other")))
}
