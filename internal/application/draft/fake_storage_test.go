package draft

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"devplan-ai-api/internal/domain/repository"
)

type memStorage struct {
	mu      sync.Mutex
	data    map[string][]byte
	saveErr error
	loadErr error
	loads   atomic.Int32
	saves   atomic.Int32
	gate    chan struct{}
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[string][]byte)}
}

func (m *memStorage) Load(_ context.Context, key string) ([]byte, error) {
	m.loads.Add(1)
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	b, ok := m.data[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return b, nil
}

func (m *memStorage) Save(_ context.Context, key string, data []byte) error {
	m.saves.Add(1)
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memStorage) setLoadErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *memStorage) raw(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

var errQuota = errors.New("storage quota exceeded")
