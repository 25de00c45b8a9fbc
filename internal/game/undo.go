package game

import (
	"context"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"go.uber.org/zap"
)

// UndoResult describes what a single Undo reversed.
type UndoResult struct {
	Card cards.Card
	From rules.Recipient
	// ReversedRound is the scored round that was taken back, or zero for a
	// plain card undo.
	ReversedRound int
}

// Undo reverses exactly one step. On a finished round it takes back the
// result (stored record and counters) and then the round's last card; mid
// round it takes back the last card only.
func (t *Table) Undo(ctx context.Context) (UndoResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return UndoResult{}, ErrAutoDealRunning
	}

	var res UndoResult
	if t.phase == PhaseFinished {
		if t.undo == nil {
			return UndoResult{}, ErrNothingToUndo
		}
		if t.undo.AutoDealt && !t.cfg.AllowUndoAfterAutoDeal {
			return UndoResult{}, ErrUndoForbidden
		}
		res.ReversedRound = t.undo.Round
		t.reverseResultLocked(ctx)
	}

	if t.dealtLocked() == 0 {
		return UndoResult{}, ErrNothingToUndo
	}

	from, _ := rules.LastRecipient(len(t.player), len(t.banker))
	var c cards.Card
	if from == rules.RecipientPlayer {
		c = t.player[len(t.player)-1]
		t.player = t.player[:len(t.player)-1]
	} else {
		c = t.banker[len(t.banker)-1]
		t.banker = t.banker[:len(t.banker)-1]
	}
	if err := t.shoe.Return(c); err != nil {
		// hands and shoe disagree; keep the hand change and report it
		t.logger.Error("failed to return card to shoe",
			zap.String("card", c.String()),
			zap.Error(err),
		)
	}
	res.Card = c
	res.From = from

	t.recomputeAfterUndoLocked()

	t.logger.Info("undid card",
		zap.String("card", c.String()),
		zap.Stringer("from", from),
		zap.Int("reversed_round", res.ReversedRound),
	)

	t.publisher.PublishRefreshStats()
	t.publishStateLocked()
	return res, nil
}

// reverseResultLocked takes back the last scored round. A store that no
// longer holds that round as its newest record is logged, not fatal.
func (t *Table) reverseResultLocked(ctx context.Context) {
	snap := t.undo
	removed, err := t.store.RemoveRound(ctx, snap.Round)
	switch {
	case err != nil:
		t.logger.Warn("failed to remove stored round",
			zap.Int("round", snap.Round),
			zap.Error(err),
		)
	case !removed:
		t.logger.Warn("newest stored round does not match, record left in place",
			zap.Int("round", snap.Round),
		)
	default:
		if t.storedRounds > 0 {
			t.storedRounds--
		}
	}

	t.counters = snap.Counters
	t.undo = nil
	t.clearOutcomeLocked()
	t.phase = PhaseWaiting
}

// recomputeAfterUndoLocked re-derives the round flags from the hands.
// Pair flags only change for hands that now hold two cards or fewer; a
// three-card hand keeps the flag captured at two.
func (t *Table) recomputeAfterUndoLocked() {
	if len(t.player) <= 2 {
		t.playerPair = cards.IsPair(t.player)
	}
	if len(t.banker) <= 2 {
		t.bankerPair = cards.IsPair(t.banker)
	}

	n := t.dealtLocked()
	switch {
	case n < 4:
		t.natural = rules.NaturalNone
		t.canCalculate = false
		t.phase = PhaseWaiting
	case n == 4 && t.holdForRevealLocked():
		t.natural = rules.NaturalNone
		t.canCalculate = false
		t.phase = PhaseWaitingForReveal
	case n == 4:
		t.evaluateNaturalLocked()
		t.canCalculate = true
		t.phase = PhaseWaiting
	default:
		t.canCalculate = true
		t.phase = PhaseWaiting
	}

	if n == 0 {
		t.canManagePlayers = true
	}
}
