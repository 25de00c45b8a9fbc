package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Pranay13257/minibacarat/internal/game/shoe"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeStore is an in-memory RoundStore with switchable failures.
type fakeStore struct {
	mu        sync.Mutex
	records   []RoundRecord
	appendErr error
}

func (s *fakeStore) AppendRound(ctx context.Context, rec RoundRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return s.appendErr
	}
	s.records = append(s.records, rec)
	return nil
}

func (s *fakeStore) RemoveRound(ctx context.Context, round int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 || s.records[len(s.records)-1].Round != round {
		return false, nil
	}
	s.records = s.records[:len(s.records)-1]
	return true, nil
}

func (s *fakeStore) DeleteLatest(ctx context.Context) (RoundRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return RoundRecord{}, false, nil
	}
	rec := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]
	return rec, true, nil
}

func (s *fakeStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

func (s *fakeStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records), nil
}

func (s *fakeStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st Stats
	for _, rec := range s.records {
		st.Tally(rec)
	}
	return st, nil
}

func (s *fakeStore) all() []RoundRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RoundRecord(nil), s.records...)
}

// recorder captures published events in order.
type recorder struct {
	mu      sync.Mutex
	events  []string
	states  []GameState
	results []RoundResult
}

func (r *recorder) PublishState(s GameState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "game_state")
	r.states = append(r.states, s)
}

func (r *recorder) PublishResult(res RoundResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "game_result")
	r.results = append(r.results, res)
}

func (r *recorder) PublishRefreshStats() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "refresh_stats")
}

func (r *recorder) lastState() GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[len(r.states)-1]
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.states = nil
	r.results = nil
}

func (r *recorder) eventLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fixture struct {
	table *Table
	store *fakeStore
	pub   *recorder
	auto  *AutoDealer
}

func newFixture(t *testing.T, mutate ...func(*TableConfig)) *fixture {
	t.Helper()

	cfg := DefaultTableConfig()
	cfg.DealInterval = 0
	cfg.ShuffleDelay = 0
	for _, m := range mutate {
		m(&cfg)
	}

	sh, err := shoe.NewSeededShuffler(shoe.SeedFromInt(2024))
	require.NoError(t, err)

	logger := zaptest.NewLogger(t)
	store := &fakeStore{}
	pub := &recorder{}
	table := NewTable(cfg, shoe.New(sh), store, pub, logger)
	auto := NewAutoDealer(table, logger)
	auto.sleep = func(context.Context, time.Duration) error { return nil }

	return &fixture{table: table, store: store, pub: pub, auto: auto}
}

func (f *fixture) activate(t *testing.T, ids ...PlayerID) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, f.table.UpdatePlayer(context.Background(), id, true))
	}
}

func (f *fixture) deal(t *testing.T, raw ...string) {
	t.Helper()
	for _, c := range raw {
		_, err := f.table.AddCard(context.Background(), c)
		require.NoError(t, err, c)
	}
}

// drainShoe deals out every remaining card.
func drainShoe(t *testing.T, s *shoe.Shoe) {
	t.Helper()
	for s.Remaining() > 0 {
		_, err := s.Draw()
		require.NoError(t, err)
	}
}

var errStoreDown = errors.New("store down")
