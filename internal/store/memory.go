package store

import (
	"context"
	"sync"

	"jobmate/vacancy-bot/internal/model"
)

// Memory is an in-process Store. The identity-key check and the append
// happen under one lock, which gives the same single-winner guarantee as
// the PostgreSQL unique index.
type Memory struct {
	mu    sync.RWMutex
	rows  []model.Vacancy
	index map[model.IdentityKey]struct{}
}

// NewMemory returns an empty in-memory Store.
func NewMemory() *Memory {
	return &Memory{index: make(map[model.IdentityKey]struct{})}
}

// FindByKeyword implements Store.
func (m *Memory) FindByKeyword(ctx context.Context, keyword string) ([]model.Vacancy, error) {
	if err := ctx.Err(); err != nil {
		return nil, &StorageError{Op: "find", Keyword: keyword, Err: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Vacancy, 0)
	for _, v := range m.rows {
		if v.MatchesKeyword(keyword) {
			out = append(out, v)
		}
	}
	return out, nil
}

// InsertIfAbsent implements Store.
func (m *Memory) InsertIfAbsent(ctx context.Context, v model.Vacancy) (bool, error) {
	if err := ctx.Err(); err != nil {
		key := v.Key()
		return false, &StorageError{Op: "insert", Key: &key, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.index[v.Key()]; ok {
		return false, nil
	}
	if v.Salary != nil {
		salary := *v.Salary
		v.Salary = &salary
	}
	m.index[v.Key()] = struct{}{}
	m.rows = append(m.rows, v)
	return true, nil
}

// Count implements Store.
func (m *Memory) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.rows)), nil
}
