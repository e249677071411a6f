package wizard

import (
	"sort"
	"strings"
	"sync"
)

// 生成类操作的键，与用户 ID 组合后唯一
const (
	actionTransition    = "transition"
	actionClarification = "clarification"
	actionFeatures      = "features"
	actionTechStack     = "tech_stack"
	actionGeneration    = "generation"
)

// inflightSet 记录进行中的操作，acquire 为全有或全无
type inflightSet struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newInflightSet() *inflightSet {
	return &inflightSet{active: make(map[string]struct{})}
}

func inflightKey(userID, action string) string {
	return userID + "/" + action
}

// acquire 同时占用多个操作，任一已被占用时返回 false
func (s *inflightSet) acquire(userID string, actions ...string) (func(), bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range actions {
		if _, busy := s.active[inflightKey(userID, a)]; busy {
			return nil, false
		}
	}
	for _, a := range actions {
		s.active[inflightKey(userID, a)] = struct{}{}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, a := range actions {
				delete(s.active, inflightKey(userID, a))
			}
		})
	}, true
}

// list 返回用户进行中的操作（不含步骤切换）
func (s *inflightSet) list(userID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := userID + "/"
	out := []string{}
	for k := range s.active {
		if a, ok := strings.CutPrefix(k, prefix); ok && a != actionTransition {
			out = append(out, a)
		}
	}
	sort.Strings(out)
	return out
}

// slotLocks 每个 (用户, 文档) 一把锁，串行化同一文档的生成
type slotLocks struct {
	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

func newSlotLocks() *slotLocks {
	return &slotLocks{slots: make(map[string]*sync.Mutex)}
}

func (l *slotLocks) get(userID, docType string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := userID + "/" + docType
	m, ok := l.slots[key]
	if !ok {
		m = &sync.Mutex{}
		l.slots[key] = m
	}
	return m
}
