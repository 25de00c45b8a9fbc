package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/Pranay13257/minibacarat/internal/game"
)

// MemoryStore keeps rounds in process memory. It has the same ordering and
// aggregation rules as RoundRepository and is used for database.driver
// memory and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []game.RoundRecord
}

var _ game.RoundStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) AppendRound(ctx context.Context, rec game.RoundRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, cloneRecord(rec))
	return nil
}

func (m *MemoryStore) RemoveRound(ctx context.Context, round int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.records)
	if n == 0 || m.records[n-1].Round != round {
		return false, nil
	}
	m.records = m.records[:n-1]
	return true, nil
}

func (m *MemoryStore) DeleteLatest(ctx context.Context) (game.RoundRecord, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.records)
	if n == 0 {
		return game.RoundRecord{}, false, nil
	}
	rec := m.records[n-1]
	m.records = m.records[:n-1]
	return rec, true, nil
}

// Recent returns up to limit records, newest first.
func (m *MemoryStore) Recent(ctx context.Context, limit int) ([]game.RoundRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n := min(limit, len(m.records))
	out := make([]game.RoundRecord, 0, n)
	for i := len(m.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, cloneRecord(m.records[i]))
	}
	return out, nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = nil
	return nil
}

func (m *MemoryStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (m *MemoryStore) Stats(ctx context.Context) (game.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var st game.Stats
	for _, rec := range m.records {
		st.Tally(rec)
	}
	return st, nil
}

func cloneRecord(rec game.RoundRecord) game.RoundRecord {
	rec.PlayerCards = slices.Clone(rec.PlayerCards)
	rec.BankerCards = slices.Clone(rec.BankerCards)
	return rec
}
