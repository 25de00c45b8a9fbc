package game

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// UpdatePlayer activates or deactivates a seat. Locked from the first card
// of a round until the next round starts.
func (t *Table) UpdatePlayer(ctx context.Context, id PlayerID, active bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	if !t.canManagePlayers {
		return ErrManagementLocked
	}
	id = PlayerID(strings.TrimSpace(string(id)))
	if id == "" {
		return ErrInvalidPlayer
	}

	if active {
		t.active[id] = struct{}{}
	} else {
		delete(t.active, id)
		if t.playerRevealer == id {
			t.playerRevealer = ""
		}
		if t.bankerRevealer == id {
			t.bankerRevealer = ""
		}
	}

	t.logger.Info("player updated",
		zap.String("player_id", string(id)),
		zap.Bool("active", active),
		zap.Int("active_players", len(t.active)),
	)
	t.publishStateLocked()
	return nil
}

// SetMode switches the table mode between rounds. Revealers are cleared and
// VIP tables start each round unrevealed.
func (t *Table) SetMode(ctx context.Context, mode Mode) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := modeNames[mode]; !ok {
		return fmt.Errorf("%w: %d", ErrInvalidMode, int(mode))
	}
	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	if t.roundInProgressLocked() {
		return ErrRoundInProgress
	}

	old := t.mode
	t.mode = mode
	t.playerRevealer = ""
	t.bankerRevealer = ""
	t.revealed = mode != ModeVIP

	t.logger.Info("game mode changed",
		zap.Stringer("from", old),
		zap.Stringer("to", mode),
	)
	t.publishStateLocked()
	return nil
}

// SetTableNumber changes the displayed table number.
func (t *Table) SetTableNumber(ctx context.Context, number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return fmt.Errorf("%w: empty table number", ErrInvalidSetting)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.tableNumber = number
	t.publishStateLocked()
	return nil
}

func (t *Table) SetMinBet(ctx context.Context, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount <= 0 || amount > t.maxBet {
		return fmt.Errorf("%w: min bet %d", ErrInvalidSetting, amount)
	}
	t.minBet = amount
	t.publishStateLocked()
	return nil
}

func (t *Table) SetMaxBet(ctx context.Context, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if amount <= 0 || amount < t.minBet {
		return fmt.Errorf("%w: max bet %d", ErrInvalidSetting, amount)
	}
	t.maxBet = amount
	t.publishStateLocked()
	return nil
}
