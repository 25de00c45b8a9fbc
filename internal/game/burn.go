package game

import (
	"context"
	"strings"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"go.uber.org/zap"
)

// BurnCard burns a single card at the start of a shoe. An empty raw value
// burns the first card of the shoe; otherwise the named card is taken.
// Manual and automatic tables only; live and VIP tables use StartBurn.
func (t *Table) BurnCard(ctx context.Context, raw string) (cards.Card, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return cards.Card{}, ErrAutoDealRunning
	}
	if t.mode != ModeManual && t.mode != ModeAutomatic {
		return cards.Card{}, ErrWrongMode
	}
	if t.burn != BurnReady || t.dealtLocked() > 0 {
		return cards.Card{}, ErrBurnUnavailable
	}

	var c cards.Card
	if strings.TrimSpace(raw) == "" {
		burned, err := t.shoe.Burn()
		if err != nil {
			return cards.Card{}, err
		}
		c = burned
	} else {
		parsed, err := cards.Parse(raw)
		if err != nil {
			return cards.Card{}, err
		}
		if err := t.shoe.Take(parsed); err != nil {
			return cards.Card{}, err
		}
		c = parsed
	}

	t.recordBurnLocked(c)
	t.burn = BurnCompleted
	t.publishStateLocked()
	return c, nil
}

// StartBurn opens a multi-card burn: until EndBurn every AddCard is burned.
func (t *Table) StartBurn(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	if t.mode != ModeLive && t.mode != ModeVIP {
		return ErrWrongMode
	}
	if t.burn != BurnReady || t.dealtLocked() > 0 {
		return ErrBurnUnavailable
	}

	t.burn = BurnActive
	t.logger.Info("burn mode activated")
	t.publishStateLocked()
	return nil
}

// EndBurn closes a burn opened by StartBurn.
func (t *Table) EndBurn(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	if t.burn != BurnActive {
		return ErrBurnUnavailable
	}

	t.burn = BurnCompleted
	t.logger.Info("burn mode ended", zap.Int("burned", len(t.burnedCards)))
	t.publishStateLocked()
	return nil
}

func (t *Table) recordBurnLocked(c cards.Card) {
	t.burnCard = c
	t.burnedCards = append(t.burnedCards, c)
	t.logger.Info("card burned", zap.String("card", c.String()))
}
