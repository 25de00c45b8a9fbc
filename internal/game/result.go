package game

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Calculate scores the current round on operator request. Needed when the
// hands are complete but no card triggered scoring, e.g. after a VIP reveal
// on two standing hands.
func (t *Table) Calculate(ctx context.Context) (RoundResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return RoundResult{}, ErrAutoDealRunning
	}
	if t.phase == PhaseFinished {
		return RoundResult{}, ErrRoundFinished
	}
	if !t.canCalculate {
		return RoundResult{}, ErrCannotCalculate
	}
	if t.nextRecipientLocked() != rules.RecipientComplete {
		return RoundResult{}, ErrRoundIncomplete
	}
	return t.finalizeLocked(ctx), nil
}

// finalizeLocked scores the round, records it and publishes the result,
// the state and a stats refresh, in that order.
func (t *Table) finalizeLocked(ctx context.Context) RoundResult {
	o := rules.Score(t.player, t.banker)
	previous := t.counters

	rec := RoundRecord{
		ID:            uuid.New(),
		RecordedAt:    time.Now().UTC(),
		Round:         t.counters.Round + 1,
		Winner:        o.Winner,
		PlayerCards:   slices.Clone(t.player),
		BankerCards:   slices.Clone(t.banker),
		PlayerScore:   o.PlayerScore,
		BankerScore:   o.BankerScore,
		SuperSix:      o.SuperSix,
		PlayerPair:    t.playerPair,
		BankerPair:    t.bankerPair,
		Natural:       o.Natural,
		PlayerNatural: o.PlayerNatural,
		BankerNatural: o.BankerNatural,
		AutoDealt:     t.autoDealt,
	}

	t.counters.Round = rec.Round
	t.counters.apply(rec, 1)

	if err := t.store.AppendRound(ctx, rec); err != nil {
		t.logger.Error("failed to save round result",
			zap.Int("round", rec.Round),
			zap.Error(err),
		)
	} else {
		t.storedRounds++
	}

	t.winner = o.Winner
	t.superSix = o.SuperSix
	t.natural = o.Natural
	t.phase = PhaseFinished
	t.canCalculate = false
	t.undo = &UndoSnapshot{
		Version:   undoSnapshotVersion,
		Counters:  previous,
		Round:     rec.Round,
		Winner:    o.Winner,
		AutoDealt: t.autoDealt,
	}

	t.logger.Info("round finished",
		zap.Int("round", rec.Round),
		zap.Stringer("winner", o.Winner),
		zap.Int("player_score", o.PlayerScore),
		zap.Int("banker_score", o.BankerScore),
		zap.Bool("super_six", o.SuperSix),
		zap.Stringer("natural", o.Natural),
	)

	result := RoundResult{
		Winner:         o.Winner,
		PlayerCards:    slices.Clone(t.player),
		BankerCards:    slices.Clone(t.banker),
		PlayerTotal:    o.PlayerScore,
		BankerTotal:    o.BankerScore,
		PlayerPair:     t.playerPair,
		BankerPair:     t.bankerPair,
		IsSuperSix:     o.SuperSix,
		IsNatural:      o.Natural != rules.NaturalNone,
		NaturalType:    o.Natural,
		PlayerNatural:  o.PlayerNatural,
		BankerNatural:  o.BankerNatural,
		Round:          rec.Round,
		CanUndoLastWin: t.storedRounds > 0,
		AutoDealt:      t.autoDealt,
	}
	t.publisher.PublishResult(result)
	t.publishStateLocked()
	t.publisher.PublishRefreshStats()
	return result
}

// ManualResult records an outcome keyed in by the operator without dealing.
type ManualResult struct {
	Winner        Winner
	SuperSix      bool
	PlayerPair    bool
	BankerPair    bool
	PlayerNatural bool
	BankerNatural bool
}

// RecordManualResult stores an operator-entered outcome. Manual tables
// only; it starts a fresh round and leaves it finished. Manual results
// cannot be undone, only deleted with DeleteLastEntry.
func (t *Table) RecordManualResult(ctx context.Context, m ManualResult) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return 0, ErrAutoDealRunning
	}
	if t.mode != ModeManual {
		return 0, ErrWrongMode
	}
	switch m.Winner {
	case WinnerPlayer, WinnerBanker, WinnerTie:
	default:
		return 0, fmt.Errorf("%w: %s", ErrInvalidWinner, m.Winner)
	}
	if t.roundInProgressLocked() {
		return 0, ErrRoundInProgress
	}

	t.resetRoundLocked()

	rec := RoundRecord{
		ID:            uuid.New(),
		RecordedAt:    time.Now().UTC(),
		Round:         t.counters.Round + 1,
		Winner:        m.Winner,
		SuperSix:      m.SuperSix,
		PlayerPair:    m.PlayerPair,
		BankerPair:    m.BankerPair,
		PlayerNatural: m.PlayerNatural,
		BankerNatural: m.BankerNatural,
		Manual:        true,
	}
	t.counters.Round = rec.Round
	t.counters.apply(rec, 1)

	if err := t.store.AppendRound(ctx, rec); err != nil {
		t.logger.Error("failed to save manual result",
			zap.Int("round", rec.Round),
			zap.Error(err),
		)
	} else {
		t.storedRounds++
	}

	t.winner = m.Winner
	t.superSix = m.SuperSix
	t.phase = PhaseFinished

	t.logger.Info("manual result saved",
		zap.Int("round", rec.Round),
		zap.Stringer("winner", m.Winner),
	)

	t.publisher.PublishRefreshStats()
	t.publishStateLocked()
	return rec.Round, nil
}

// DeleteLastEntry removes the newest stored record. When it belongs to the
// current round its contribution is taken off the counters and the round
// number steps back.
func (t *Table) DeleteLastEntry(ctx context.Context) (RoundRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return RoundRecord{}, ErrAutoDealRunning
	}

	rec, ok, err := t.store.DeleteLatest(ctx)
	if err != nil {
		return RoundRecord{}, fmt.Errorf("%w: %w", ErrStore, err)
	}
	if !ok {
		return RoundRecord{}, ErrNoEntries
	}
	if t.storedRounds > 0 {
		t.storedRounds--
	}

	if rec.Round == t.counters.Round {
		t.counters.apply(rec, -1)
		t.counters.Round = max(0, t.counters.Round-1)
	}
	if t.undo != nil && t.undo.Round == rec.Round {
		t.undo = nil
	}

	t.logger.Info("deleted last round entry", zap.Int("round", rec.Round))

	t.publisher.PublishRefreshStats()
	t.publishStateLocked()
	return rec, nil
}
