package game

import (
	"context"
	"testing"
	"time"

	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"github.com/Pranay13257/minibacarat/internal/game/shoe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoDealCompletesRound(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	f.pub.reset()

	require.NoError(t, f.auto.Deal(context.Background()))

	s := f.table.Snapshot()
	assert.Equal(t, PhaseFinished, s.GamePhase)
	assert.Equal(t, AutoDealFinished, s.AutoDealState)
	assert.False(t, s.AutoDealingInProgress)
	assert.Equal(t, 1, s.Round)
	assert.NotEqual(t, WinnerNone, s.Winner)

	dealt := len(s.PlayerCards) + len(s.BankerCards)
	assert.GreaterOrEqual(t, dealt, 4)
	assert.LessOrEqual(t, dealt, 6)
	assert.Equal(t, shoe.Size-dealt, s.RemainingCards)

	records := f.store.all()
	require.Len(t, records, 1)
	assert.True(t, records[0].AutoDealt)

	events := f.pub.eventLog()
	require.GreaterOrEqual(t, len(events), 3)
	assert.Equal(t, []string{"game_result", "game_state", "refresh_stats"}, events[len(events)-3:])

	first := f.pub.states[0]
	assert.Equal(t, PhaseAutoDealing, first.GamePhase)
	assert.True(t, first.AutoDealingInProgress)
	assert.False(t, first.CanUndo)
}

func TestAutoDealIsDeterministicForSeed(t *testing.T) {
	a := newFixture(t)
	b := newFixture(t)
	a.activate(t, "1")
	b.activate(t, "1")

	require.NoError(t, a.auto.Deal(context.Background()))
	require.NoError(t, b.auto.Deal(context.Background()))

	sa, sb := a.table.Snapshot(), b.table.Snapshot()
	assert.Equal(t, sa.PlayerCards, sb.PlayerCards)
	assert.Equal(t, sa.BankerCards, sb.BankerCards)
	assert.Equal(t, sa.Checksum, sb.Checksum)
}

func TestAutoDealRequiresPlayers(t *testing.T) {
	f := newFixture(t)
	err := f.auto.Deal(context.Background())
	assert.ErrorIs(t, err, ErrNoPlayers)
	assert.Equal(t, AutoDealIdle, f.auto.State())
}

func TestAutoDealRequiresEmptyHands(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	f.deal(t, "AH")

	assert.ErrorIs(t, f.auto.Begin(context.Background()), ErrHandsNotEmpty)
	assert.False(t, f.auto.Running())
}

func TestMutationsRejectedWhileAutoDealing(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	ctx := context.Background()

	require.NoError(t, f.auto.Begin(ctx))
	require.True(t, f.auto.Running())

	_, err := f.table.AddCard(ctx, "AH")
	assert.ErrorIs(t, err, ErrAutoDealRunning)
	_, err = f.table.Undo(ctx)
	assert.ErrorIs(t, err, ErrAutoDealRunning)
	_, err = f.table.Calculate(ctx)
	assert.ErrorIs(t, err, ErrAutoDealRunning)
	_, err = f.table.BurnCard(ctx, "")
	assert.ErrorIs(t, err, ErrAutoDealRunning)
	_, err = f.table.DeleteLastEntry(ctx)
	assert.ErrorIs(t, err, ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.NewRound(ctx), ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.Reset(ctx), ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.Shuffle(ctx), ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.UpdatePlayer(ctx, "2", true), ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.SetMode(ctx, ModeLive), ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.StartBurn(ctx), ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.EndBurn(ctx), ErrAutoDealRunning)
	_, err = f.table.SetRevealer(ctx, "1")
	assert.ErrorIs(t, err, ErrAutoDealRunning)
	assert.ErrorIs(t, f.table.FinalReveal(ctx), ErrAutoDealRunning)
	assert.ErrorIs(t, f.auto.Begin(ctx), ErrAutoDealRunning)

	s := f.table.Snapshot()
	assert.Empty(t, s.PlayerCards)
	assert.False(t, s.CanUndo)
	assert.False(t, s.CanShuffle)

	require.NoError(t, f.auto.Run(ctx))
	assert.Equal(t, PhaseFinished, f.table.Snapshot().GamePhase)
}

func TestStepDealsOneCard(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	ctx := context.Background()

	_, err := f.auto.Step(ctx)
	assert.ErrorIs(t, err, ErrAutoDealNotRunning)

	require.NoError(t, f.auto.Begin(ctx))
	recipient, err := f.auto.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, rules.RecipientPlayer, recipient)

	s := f.table.Snapshot()
	assert.Len(t, s.PlayerCards, 1)
	assert.Equal(t, PhaseAutoDealing, s.GamePhase)
}

func TestUndoAfterAutoDealForbidden(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	require.NoError(t, f.auto.Deal(context.Background()))

	assert.False(t, f.table.Snapshot().CanUndo)
	_, err := f.table.Undo(context.Background())
	assert.ErrorIs(t, err, ErrUndoForbidden)
	assert.Len(t, f.store.all(), 1)
}

func TestUndoAfterAutoDealAllowed(t *testing.T) {
	f := newFixture(t, func(c *TableConfig) { c.AllowUndoAfterAutoDeal = true })
	f.activate(t, "1")
	require.NoError(t, f.auto.Deal(context.Background()))
	require.True(t, f.table.Snapshot().CanUndo)

	res, err := f.table.Undo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.ReversedRound)

	s := f.table.Snapshot()
	assert.Equal(t, 0, s.Round)
	assert.Equal(t, PhaseWaiting, s.GamePhase)
	assert.Empty(t, f.store.all())
}

func TestAutoDealEmptyShoeFails(t *testing.T) {
	f := newFixture(t, func(c *TableConfig) { c.AutoReshuffle = false })
	f.activate(t, "1")
	drainShoe(t, f.table.shoe)
	ctx := context.Background()

	require.NoError(t, f.auto.Begin(ctx))
	err := f.auto.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyShoe)
	assert.Equal(t, KindResource, KindOf(err))

	s := f.table.Snapshot()
	assert.Equal(t, PhaseWaiting, s.GamePhase)
	assert.Equal(t, AutoDealFailed, s.AutoDealState)
	assert.False(t, s.AutoDealingInProgress)
	assert.Equal(t, 0, s.Round)

	last := f.pub.lastState()
	assert.Equal(t, AutoDealFailed, last.AutoDealState)
	assert.Equal(t, PhaseWaiting, last.GamePhase)
}

func TestAutoDealReshufflesLowShoe(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	drainShoe(t, f.table.shoe)

	var delays []time.Duration
	f.auto.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	require.NoError(t, f.auto.Deal(context.Background()))

	s := f.table.Snapshot()
	assert.Equal(t, PhaseFinished, s.GamePhase)
	dealt := len(s.PlayerCards) + len(s.BankerCards)
	assert.Equal(t, shoe.Size-dealt, s.RemainingCards)
	assert.Equal(t, dealt, s.UsedCards)
	// one shuffle pause, then one pause per card
	assert.Len(t, delays, dealt+1)
}

func TestAutoDealCancelled(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	ctx, cancel := context.WithCancel(context.Background())

	f.auto.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	err := f.auto.Deal(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, AutoDealFailed, f.auto.State())
	assert.Equal(t, PhaseWaiting, f.table.Snapshot().GamePhase)
}

func TestAutoDealCompletesActiveBurn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.table.SetMode(ctx, ModeLive))
	f.activate(t, "1")
	require.NoError(t, f.table.StartBurn(ctx))

	require.NoError(t, f.auto.Begin(ctx))
	assert.Equal(t, BurnCompleted, f.table.Snapshot().BurnMode)
	require.NoError(t, f.auto.Run(ctx))
}

func TestAutoDealVIPWaitsForReveal(t *testing.T) {
	f := newFixture(t, func(c *TableConfig) { c.Mode = ModeVIP })
	f.activate(t, "1")
	ctx := context.Background()

	require.NoError(t, f.auto.Deal(ctx))

	s := f.table.Snapshot()
	assert.Equal(t, PhaseWaitingForReveal, s.GamePhase)
	assert.Equal(t, AutoDealFinished, s.AutoDealState)
	assert.Len(t, s.PlayerCards, 2)
	assert.Len(t, s.BankerCards, 2)
	assert.False(t, s.CardsRevealed)
	assert.Empty(t, f.store.all())

	require.NoError(t, f.table.FinalReveal(ctx))
	s = f.table.Snapshot()
	assert.True(t, s.CardsRevealed)
	if s.NaturalWin {
		assert.Equal(t, PhaseFinished, s.GamePhase)
		assert.Len(t, f.store.all(), 1)
	} else {
		assert.Equal(t, PhaseWaiting, s.GamePhase)
		assert.True(t, s.CanCalculate)
	}
}

func TestRevealRejectedDuringPacedVIPRun(t *testing.T) {
	f := newFixture(t, func(c *TableConfig) { c.Mode = ModeVIP })
	f.activate(t, "1", "2")
	ctx := context.Background()

	var revealErrs []error
	f.auto.sleep = func(context.Context, time.Duration) error {
		if f.table.Snapshot().GamePhase == PhaseWaitingForReveal {
			_, err := f.table.SetRevealer(ctx, "1")
			revealErrs = append(revealErrs, err)
			revealErrs = append(revealErrs, f.table.FinalReveal(ctx))
		}
		return nil
	}

	require.NoError(t, f.auto.Deal(ctx))
	require.NotEmpty(t, revealErrs)
	for _, err := range revealErrs {
		assert.ErrorIs(t, err, ErrAutoDealRunning)
	}

	s := f.table.Snapshot()
	assert.Equal(t, PhaseWaitingForReveal, s.GamePhase)
	assert.False(t, s.CardsRevealed)
	assert.Equal(t, 0, s.Round)
	assert.Empty(t, f.store.all())

	require.NoError(t, f.table.FinalReveal(ctx))
	s = f.table.Snapshot()
	if s.GamePhase == PhaseFinished {
		assert.Len(t, f.store.all(), 1)
		assert.Equal(t, 1, s.Round)
	} else {
		assert.Empty(t, f.store.all())
		assert.Equal(t, 0, s.Round)
	}
}

func TestAutoDealDoesNotRescoreFinishedRound(t *testing.T) {
	f := newFixture(t)
	f.activate(t, "1")
	ctx := context.Background()

	f.auto.sleep = func(context.Context, time.Duration) error {
		tb := f.table
		tb.mu.Lock()
		defer tb.mu.Unlock()
		if tb.phase != PhaseFinished && tb.nextRecipientLocked() == rules.RecipientComplete {
			tb.finalizeLocked(ctx)
		}
		return nil
	}

	require.NoError(t, f.auto.Deal(ctx))

	s := f.table.Snapshot()
	assert.Equal(t, PhaseFinished, s.GamePhase)
	assert.Equal(t, AutoDealFinished, s.AutoDealState)
	assert.Equal(t, 1, s.Round)
	assert.Len(t, f.store.all(), 1)
	assert.Len(t, f.pub.results, 1)
}
