package game

import (
	"context"
	"fmt"
	"time"

	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"go.uber.org/zap"
)

// AutoDealer drives a table through a whole round one card per tick. It
// holds the table lock only inside a step; the pacing delay runs unlocked,
// and every manual mutation is rejected while it runs. There is no
// mid-round abort: a run always ends finished, waiting for reveal, or
// failed.
type AutoDealer struct {
	table  *Table
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewAutoDealer creates a scheduler for t using its configured pacing.
func NewAutoDealer(t *Table, logger *zap.Logger) *AutoDealer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AutoDealer{table: t, logger: logger, sleep: sleepContext}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Running reports whether a run is in progress.
func (a *AutoDealer) Running() bool {
	t := a.table
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.autoDeal == AutoDealRunning
}

// State returns the scheduler state.
func (a *AutoDealer) State() AutoDealState {
	t := a.table
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.autoDeal
}

// Begin claims the table for a run. Both hands must be empty and at least
// one player active.
func (a *AutoDealer) Begin(ctx context.Context) error {
	t := a.table
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	if len(t.active) == 0 {
		return ErrNoPlayers
	}
	if t.dealtLocked() > 0 {
		return ErrHandsNotEmpty
	}

	t.clearOutcomeLocked()
	t.undo = nil
	t.autoDeal = AutoDealRunning
	t.autoDealt = true
	t.phase = PhaseAutoDealing
	t.canManagePlayers = false
	if t.burn == BurnActive {
		t.burn = BurnCompleted
	}

	a.logger.Info("auto-deal started", zap.Int("remaining_cards", t.shoe.Remaining()))
	t.publishStateLocked()
	return nil
}

// Step deals one card if the rules call for one and publishes the new
// state. It returns the hand that received the card, or the decision that
// stopped dealing.
func (a *AutoDealer) Step(ctx context.Context) (rules.Recipient, error) {
	t := a.table
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal != AutoDealRunning {
		return rules.RecipientComplete, ErrAutoDealNotRunning
	}

	recipient := t.nextRecipientLocked()
	if !recipient.Dealing() {
		return recipient, nil
	}

	c, err := t.shoe.Draw()
	if err != nil {
		return recipient, err
	}
	t.applyCardLocked(c, recipient)
	t.publishStateLocked()
	return recipient, nil
}

// Run drives a claimed table to the end of the round. Faults leave the
// table waiting with the scheduler failed, publish a final snapshot and are
// returned to the caller.
func (a *AutoDealer) Run(ctx context.Context) error {
	if err := a.run(ctx); err != nil {
		t := a.table
		t.mu.Lock()
		t.autoDeal = AutoDealFailed
		t.phase = PhaseWaiting
		t.publishStateLocked()
		t.mu.Unlock()

		a.logger.Error("auto-deal failed", zap.Error(err))
		return fmt.Errorf("auto-deal failed: %w", err)
	}
	return nil
}

func (a *AutoDealer) run(ctx context.Context) error {
	t := a.table

	t.mu.Lock()
	if t.autoDeal != AutoDealRunning {
		t.mu.Unlock()
		return ErrAutoDealNotRunning
	}
	reshuffled := false
	if t.shoe.NeedsReshuffle() && t.cfg.AutoReshuffle {
		t.reshuffleLocked()
		t.publishStateLocked()
		reshuffled = true
	}
	interval, shuffleDelay := t.cfg.DealInterval, t.cfg.ShuffleDelay
	t.mu.Unlock()

	if reshuffled {
		if err := a.sleep(ctx, shuffleDelay); err != nil {
			return err
		}
	}

	dealt := 0
	for {
		recipient, err := a.Step(ctx)
		if err != nil {
			return err
		}
		if !recipient.Dealing() {
			break
		}
		dealt++
		if err := a.sleep(ctx, interval); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.autoDeal = AutoDealFinished
	if t.phase == PhaseFinished {
		a.logger.Warn("auto-deal round already scored", zap.Int("round", t.counters.Round))
		t.publishStateLocked()
		return nil
	}
	if t.holdForRevealLocked() {
		// VIP: the round waits for the final reveal
		t.phase = PhaseWaitingForReveal
		a.logger.Info("auto-deal paused for reveal", zap.Int("cards", dealt))
		t.publishStateLocked()
		return nil
	}
	t.finalizeLocked(ctx)
	a.logger.Info("auto-deal completed",
		zap.Int("cards", dealt),
		zap.Int("round", t.counters.Round),
	)
	return nil
}

// Deal runs a complete auto-deal: Begin followed by Run.
func (a *AutoDealer) Deal(ctx context.Context) error {
	if err := a.Begin(ctx); err != nil {
		return err
	}
	return a.Run(ctx)
}
