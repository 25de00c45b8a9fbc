package game

import (
	"context"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"go.uber.org/zap"
)

// SetRevealer assigns a VIP revealer. The first assignment of a round takes
// the player hand, the second the banker hand. It returns the hand claimed.
func (t *Table) SetRevealer(ctx context.Context, id PlayerID) (rules.Recipient, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return rules.RecipientComplete, ErrAutoDealRunning
	}
	if t.mode != ModeVIP {
		return rules.RecipientComplete, ErrWrongMode
	}
	if id == "" {
		return rules.RecipientComplete, ErrInvalidPlayer
	}

	var role rules.Recipient
	switch {
	case t.playerRevealer == "":
		role = rules.RecipientPlayer
	case t.bankerRevealer == "":
		if id == t.playerRevealer {
			return rules.RecipientComplete, ErrSameRevealer
		}
		role = rules.RecipientBanker
	default:
		return rules.RecipientComplete, ErrRevealersAssigned
	}
	if _, ok := t.active[id]; !ok {
		return rules.RecipientComplete, ErrPlayerInactive
	}

	if role == rules.RecipientPlayer {
		t.playerRevealer = id
	} else {
		t.bankerRevealer = id
	}

	t.logger.Info("vip revealer assigned",
		zap.String("player_id", string(id)),
		zap.Stringer("hand", role),
	)
	t.publishStateLocked()
	return role, nil
}

// FinalReveal is the dealer's reveal of the four held cards. A natural is
// scored at once; otherwise the round returns to waiting and the drawing
// rules resume on the next AddCard. Unless revealers are required, this is
// also the dealer's override for a round whose revealers never showed up.
func (t *Table) FinalReveal(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	if t.mode != ModeVIP {
		return ErrWrongMode
	}
	if t.phase != PhaseWaitingForReveal {
		return ErrNotWaitingForReveal
	}
	if t.cfg.RequireRevealers && (t.playerRevealer == "" || t.bankerRevealer == "") {
		return ErrRevealersMissing
	}

	t.revealed = true
	t.logger.Info("cards revealed",
		zap.Int("player_score", cards.Score(t.player)),
		zap.Int("banker_score", cards.Score(t.banker)),
	)

	if t.evaluateNaturalLocked() {
		t.finalizeLocked(ctx)
		return nil
	}

	t.phase = PhaseWaiting
	t.canCalculate = true
	t.publishStateLocked()
	return nil
}
