package game

import (
	"context"
	"testing"

	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vipFixture(t *testing.T, mutate ...func(*TableConfig)) *fixture {
	t.Helper()
	mutate = append([]func(*TableConfig){func(c *TableConfig) { c.Mode = ModeVIP }}, mutate...)
	f := newFixture(t, mutate...)
	f.activate(t, "1", "2")
	return f
}

func TestSetRevealerOrder(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	role, err := f.table.SetRevealer(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, rules.RecipientPlayer, role)

	_, err = f.table.SetRevealer(ctx, "1")
	assert.ErrorIs(t, err, ErrSameRevealer)

	_, err = f.table.SetRevealer(ctx, "3")
	assert.ErrorIs(t, err, ErrPlayerInactive)

	role, err = f.table.SetRevealer(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, rules.RecipientBanker, role)

	_, err = f.table.SetRevealer(ctx, "2")
	assert.ErrorIs(t, err, ErrRevealersAssigned)

	s := f.table.Snapshot()
	assert.Equal(t, PlayerID("1"), s.VIPPlayerRevealer)
	assert.Equal(t, PlayerID("2"), s.VIPBankerRevealer)
}

func TestSetRevealerOutsideVIP(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	_, err := f.table.SetRevealer(context.Background(), "1")
	assert.ErrorIs(t, err, ErrWrongMode)
}

func TestDeactivatingRevealerClearsRole(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	_, err := f.table.SetRevealer(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, f.table.UpdatePlayer(ctx, "1", false))
	assert.Empty(t, f.table.Snapshot().VIPPlayerRevealer)

	role, err := f.table.SetRevealer(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, rules.RecipientPlayer, role)
}

func TestVIPHoldsAtFourCards(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	f.deal(t, "6H", "7D", "KC", "KS")

	s := f.table.Snapshot()
	assert.Equal(t, PhaseWaitingForReveal, s.GamePhase)
	assert.Equal(t, rules.RecipientComplete, s.NextCardGoesTo)
	assert.False(t, s.CanCalculate)
	assert.False(t, s.CardsRevealed)

	_, err := f.table.AddCard(ctx, "2H")
	assert.ErrorIs(t, err, ErrRoundComplete)
	_, err = f.table.Calculate(ctx)
	assert.ErrorIs(t, err, ErrCannotCalculate)

	require.NoError(t, f.table.FinalReveal(ctx))
	s = f.table.Snapshot()
	assert.Equal(t, PhaseWaiting, s.GamePhase)
	assert.True(t, s.CardsRevealed)
	assert.True(t, s.CanCalculate)
	assert.Equal(t, rules.RecipientComplete, s.NextCardGoesTo)

	res, err := f.table.Calculate(ctx)
	require.NoError(t, err)
	assert.Equal(t, WinnerBanker, res.Winner)
	assert.Equal(t, 6, res.PlayerTotal)
	assert.Equal(t, 7, res.BankerTotal)
	assert.Equal(t, PhaseFinished, f.table.Snapshot().GamePhase)
}

func TestVIPRevealResumesDrawing(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	f.deal(t, "2H", "7D", "KC", "KS")
	require.NoError(t, f.table.FinalReveal(ctx))
	assert.Equal(t, rules.RecipientPlayer, f.table.Snapshot().NextCardGoesTo)

	// player 2 + 9 = 1, banker 7 stands on a 9
	f.deal(t, "9C")
	s := f.table.Snapshot()
	assert.Equal(t, PhaseFinished, s.GamePhase)
	assert.Equal(t, WinnerBanker, s.Winner)
}

func TestVIPRevealScoresNatural(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	f.deal(t, "9H", "2D", "KC", "3S")
	f.pub.reset()
	require.NoError(t, f.table.FinalReveal(ctx))

	s := f.table.Snapshot()
	assert.Equal(t, PhaseFinished, s.GamePhase)
	assert.Equal(t, rules.Natural9, s.NaturalType)
	assert.Equal(t, WinnerPlayer, s.Winner)
	assert.Equal(t, []string{"game_result", "game_state", "refresh_stats"}, f.pub.eventLog())
}

func TestFinalRevealGuards(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.table.FinalReveal(ctx), ErrNotWaitingForReveal)

	m := newFixture(t)
	assert.ErrorIs(t, m.table.FinalReveal(ctx), ErrWrongMode)
}

func TestFinalRevealRequiresRevealers(t *testing.T) {
	f := vipFixture(t, func(c *TableConfig) { c.RequireRevealers = true })
	ctx := context.Background()

	f.deal(t, "6H", "7D", "KC", "KS")
	assert.ErrorIs(t, f.table.FinalReveal(ctx), ErrRevealersMissing)

	_, err := f.table.SetRevealer(ctx, "1")
	require.NoError(t, err)
	assert.ErrorIs(t, f.table.FinalReveal(ctx), ErrRevealersMissing)

	_, err = f.table.SetRevealer(ctx, "2")
	require.NoError(t, err)
	require.NoError(t, f.table.FinalReveal(ctx))
	assert.True(t, f.table.Snapshot().CardsRevealed)
}

func TestNewRoundHidesVIPCards(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	f.deal(t, "9H", "2D", "KC", "3S")
	_, err := f.table.SetRevealer(ctx, "1")
	require.NoError(t, err)
	require.NoError(t, f.table.FinalReveal(ctx))
	require.NoError(t, f.table.NewRound(ctx))

	s := f.table.Snapshot()
	assert.False(t, s.CardsRevealed)
	assert.Empty(t, s.VIPPlayerRevealer)
	assert.Equal(t, PhaseWaiting, s.GamePhase)
}

func TestUndoDuringVIPHold(t *testing.T) {
	f := vipFixture(t)
	ctx := context.Background()

	f.deal(t, "6H", "7D", "KC", "KS")
	_, err := f.table.Undo(ctx)
	require.NoError(t, err)
	assert.Equal(t, PhaseWaiting, f.table.Snapshot().GamePhase)

	f.deal(t, "QS")
	assert.Equal(t, PhaseWaitingForReveal, f.table.Snapshot().GamePhase)
}
