package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/Pranay13257/minibacarat/internal/game/shoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumIgnoresVersionAndPlayerOrder(t *testing.T) {
	a := newFixture(t)
	b := newFixture(t)
	a.activate(t, "1", "2")
	b.activate(t, "2", "1")
	b.activate(t, "3")
	b.activate(t, "1")
	require.NoError(t, b.table.UpdatePlayer(t.Context(), "3", false))

	sa, sb := a.table.Snapshot(), b.table.Snapshot()
	assert.NotEqual(t, sa.Version, sb.Version)
	assert.Equal(t, sa.Checksum, sb.Checksum)

	a.deal(t, "AH")
	assert.NotEqual(t, sa.Checksum, a.table.Snapshot().Checksum)
}

func TestChecksumDetectsCounterChange(t *testing.T) {
	f := newFixture(t)
	s := f.table.Snapshot()
	before := s.ComputeChecksum()

	s.Ties++
	assert.NotEqual(t, before, s.ComputeChecksum())

	s.Ties--
	s.Version += 10
	assert.Equal(t, before, s.ComputeChecksum())
}

func TestGameStateJSONNames(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "7")
	f.deal(t, "AH")

	raw, err := json.Marshal(f.table.Snapshot())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	assert.Equal(t, []any{"AH"}, m["playerCards"])
	assert.Equal(t, []any{}, m["bankerCards"])
	assert.Equal(t, "dealing", m["gamePhase"])
	assert.Equal(t, "banker", m["nextCardGoesTo"])
	assert.Equal(t, "completed", m["burnMode"])
	assert.Equal(t, "manual", m["game_mode"])
	assert.Equal(t, "idle", m["autoDealState"])
	assert.Equal(t, "none", m["winner"])
	assert.Equal(t, "", m["naturalType"])
	assert.Equal(t, []any{"7"}, m["activePlayers"])
	assert.Equal(t, float64(shoe.Size-1), m["remainingCards"])
	assert.Contains(t, m, "SuperSixCount")
	assert.Contains(t, m, "is_super_six")
	assert.NotContains(t, m, "burnCard")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindUnknown},
		{errors.New("boom"), KindUnknown},
		{ErrInvalidCard, KindValidation},
		{fmt.Errorf("wrapped: %w", ErrDuplicateExceeded), KindValidation},
		{ErrInvalidMode, KindValidation},
		{ErrAutoDealRunning, KindPolicy},
		{ErrRoundComplete, KindPolicy},
		{ErrNoEntries, KindPolicy},
		{ErrEmptyShoe, KindResource},
		{fmt.Errorf("%w: %w", ErrStore, errStoreDown), KindResource},
		{shoe.ErrNotDealt, KindResource},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.err), func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
			assert.NotEmpty(t, tt.want.String())
		})
	}
}
