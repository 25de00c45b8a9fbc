package game

import (
	"context"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"go.uber.org/zap"
)

// AddCard is the manual dealing path: the operator names the card that came
// out of the shoe. While a burn is active the card is burned instead. It
// returns the hand that received the card.
func (t *Table) AddCard(ctx context.Context, raw string) (rules.Recipient, error) {
	c, err := cards.Parse(raw)
	if err != nil {
		return rules.RecipientComplete, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return rules.RecipientComplete, ErrAutoDealRunning
	}
	if t.burn == BurnActive {
		if err := t.shoe.Take(c); err != nil {
			return rules.RecipientComplete, err
		}
		t.recordBurnLocked(c)
		t.publishStateLocked()
		return rules.RecipientComplete, nil
	}
	if t.phase == PhaseFinished {
		return rules.RecipientComplete, ErrRoundFinished
	}

	recipient := t.nextRecipientLocked()
	switch recipient {
	case rules.RecipientNoPlayers:
		return recipient, ErrNoPlayers
	case rules.RecipientComplete:
		return recipient, ErrRoundComplete
	}

	if err := t.shoe.Take(c); err != nil {
		return rules.RecipientComplete, err
	}

	if t.applyCardLocked(c, recipient) {
		t.finalizeLocked(ctx)
		return recipient, nil
	}
	t.publishStateLocked()
	return recipient, nil
}

// applyCardLocked puts a card that has already left the shoe into a hand and
// updates the round flags. It reports whether the round is ready to be
// scored.
func (t *Table) applyCardLocked(c cards.Card, recipient rules.Recipient) bool {
	if recipient == rules.RecipientPlayer {
		t.player = append(t.player, c)
		if len(t.player) == 2 {
			t.playerPair = cards.IsPair(t.player)
		}
	} else {
		t.banker = append(t.banker, c)
		if len(t.banker) == 2 {
			t.bankerPair = cards.IsPair(t.banker)
		}
	}

	n := t.dealtLocked()
	if n == 1 {
		t.canManagePlayers = false
		t.burn = BurnCompleted
	}
	if t.phase == PhaseWaiting {
		t.phase = PhaseDealing
	}

	t.logger.Debug("card dealt",
		zap.String("card", c.String()),
		zap.Stringer("recipient", recipient),
		zap.Int("dealt", n),
	)

	if n == 4 {
		if t.holdForRevealLocked() {
			t.phase = PhaseWaitingForReveal
			t.canCalculate = false
			return false
		}
		t.canCalculate = true
		if t.evaluateNaturalLocked() {
			return true
		}
	}

	return t.nextRecipientLocked() == rules.RecipientComplete
}

// evaluateNaturalLocked sets the natural marker from the first four cards.
func (t *Table) evaluateNaturalLocked() bool {
	t.natural = rules.Natural(cards.Score(t.player), cards.Score(t.banker))
	return t.natural != rules.NaturalNone
}
