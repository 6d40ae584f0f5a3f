package conversation

import (
	"context"
	"sync"
)

// SessionStore keeps the conversation state of each chat. A chat that was
// never saved is IDLE.
type SessionStore interface {
	Load(ctx context.Context, chatID int64) (State, error)
	Save(ctx context.Context, chatID int64, s State) error
}

// MemorySessions is an in-process SessionStore.
type MemorySessions struct {
	mu     sync.Mutex
	states map[int64]State
}

// NewMemorySessions returns an empty MemorySessions.
func NewMemorySessions() *MemorySessions {
	return &MemorySessions{states: make(map[int64]State)}
}

// Load implements SessionStore.
func (m *MemorySessions) Load(_ context.Context, chatID int64) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[chatID]; ok {
		return s, nil
	}
	return StateIdle, nil
}

// Save implements SessionStore.
func (m *MemorySessions) Save(_ context.Context, chatID int64, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[chatID] = s
	return nil
}
