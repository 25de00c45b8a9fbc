package server

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/game/shoe"
	"github.com/Pranay13257/minibacarat/internal/repository"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestTable(t *testing.T, pub game.Publisher) (*game.Table, *repository.MemoryStore) {
	t.Helper()

	cfg := game.DefaultTableConfig()
	cfg.DealInterval = 0
	cfg.ShuffleDelay = 0

	sh, err := shoe.NewSeededShuffler(shoe.SeedFromInt(7))
	require.NoError(t, err)

	store := repository.NewMemoryStore()
	return game.NewTable(cfg, shoe.New(sh), store, pub, zaptest.NewLogger(t)), store
}

// replies collects what the dispatcher sends back, decoded as JSON objects.
type replies struct {
	mu   sync.Mutex
	msgs []map[string]any
}

func (r *replies) reply(v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		panic(err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
}

func (r *replies) last() map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return nil
	}
	return r.msgs[len(r.msgs)-1]
}

func (r *replies) all() []map[string]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]map[string]any(nil), r.msgs...)
}
