package ledger

import (
	"context"
	"sync"
)

var _ Ledger = (*Memory)(nil)

// Memory is an in-process ledger. Wins are lost on restart.
type Memory struct {
	mu   sync.RWMutex
	wins map[string][]Win
}

func NewMemory() *Memory {
	return &Memory{wins: make(map[string][]Win)}
}

func (m *Memory) RecordWin(_ context.Context, win Win) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wins[win.VisitorID] = append(m.wins[win.VisitorID], win)
	return nil
}

func (m *Memory) HasPlayed(_ context.Context, visitorID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.wins[visitorID]) > 0, nil
}

func (m *Memory) LastWin(_ context.Context, visitorID string) (Win, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	wins := m.wins[visitorID]
	if len(wins) == 0 {
		return Win{}, ErrNotFound
	}
	return wins[len(wins)-1], nil
}

// Count returns the number of wins recorded for a visitor.
func (m *Memory) Count(visitorID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.wins[visitorID])
}
