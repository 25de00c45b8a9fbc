package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"go.uber.org/zap"
)

// ReplyFunc delivers a message to the client that sent the request.
type ReplyFunc func(v any)

// Dispatcher turns inbound action frames into table commands. Broadcasts
// come from the table's publisher; the dispatcher only answers the sender.
type Dispatcher struct {
	table  *game.Table
	dealer *game.AutoDealer
	logger *zap.Logger

	// runs is the lifetime of background auto-deal runs.
	runs context.Context
	wg   sync.WaitGroup
}

func NewDispatcher(runs context.Context, table *game.Table, dealer *game.AutoDealer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{table: table, dealer: dealer, logger: logger, runs: runs}
}

// Wait blocks until background auto-deal runs have returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Dispatch handles one raw frame.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte, reply ReplyFunc) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		reply(errorMessage("Invalid JSON"))
		return
	}

	d.logger.Debug("action received", zap.String("action", req.Action))

	msg, err := d.handle(ctx, req, reply)
	if err != nil {
		d.logFailure(req.Action, err)
		reply(errorMessage("%s", errorText(err)))
		return
	}
	if msg != nil {
		reply(msg)
	}
}

func (d *Dispatcher) handle(ctx context.Context, req Request, reply ReplyFunc) (any, error) {
	t := d.table

	switch req.Action {
	case ActionAddCard:
		card := strings.ToUpper(strings.TrimSpace(req.Card))
		recipient, err := t.AddCard(ctx, card)
		if err != nil {
			return nil, err
		}
		if !recipient.Dealing() {
			return successMessage("Card %s burned", card), nil
		}
		return successMessage("Card %s added to %s", card, recipient), nil

	case ActionCalculateResult:
		res, err := t.Calculate(ctx)
		if err != nil {
			return nil, err
		}
		return successMessage("Round %d: %s", res.Round, describeWinner(res.Winner)), nil

	case ActionStartNewGame:
		if err := t.NewRound(ctx); err != nil {
			return nil, err
		}
		return successMessage("New game started!"), nil

	case ActionResetGame:
		if err := t.Reset(ctx); err != nil {
			return nil, err
		}
		return successMessage("Game reset! %d cards available. Burn card enabled.", t.Snapshot().RemainingCards), nil

	case ActionUndo:
		res, err := t.Undo(ctx)
		if err != nil {
			return nil, err
		}
		if res.ReversedRound > 0 {
			return successMessage("Round %d result undone, removed %s from %s", res.ReversedRound, res.Card, res.From), nil
		}
		return successMessage("Removed %s from %s", res.Card, res.From), nil

	case ActionShuffleCards:
		if err := t.Shuffle(ctx); err != nil {
			return nil, err
		}
		return successMessage("Cards shuffled! %d cards available.", t.Snapshot().RemainingCards), nil

	case ActionBurnCard:
		c, err := t.BurnCard(ctx, req.Card)
		if err != nil {
			return nil, err
		}
		return successMessage("Card %s burned", c), nil

	case ActionStartBurnCard:
		if err := t.StartBurn(ctx); err != nil {
			return nil, err
		}
		return successMessage("Burn mode activated. Cards added now will be burned."), nil

	case ActionEndBurnCard:
		if err := t.EndBurn(ctx); err != nil {
			return nil, err
		}
		return successMessage("Burn mode ended."), nil

	case ActionAutoDeal:
		return d.autoDeal(ctx, reply)

	case ActionUpdatePlayers:
		id := game.PlayerID(req.PlayerID)
		if err := t.UpdatePlayer(ctx, id, req.IsActive); err != nil {
			return nil, err
		}
		if req.IsActive {
			return successMessage("Player %s added", id), nil
		}
		return successMessage("Player %s removed", id), nil

	case ActionSetGameMode:
		mode, err := game.ParseMode(req.Mode)
		if err != nil {
			return nil, err
		}
		if err := t.SetMode(ctx, mode); err != nil {
			return nil, err
		}
		return successMessage("Game mode set to %s", mode), nil

	case ActionManualResult:
		winner, err := rules.ParseWinner(req.Winner)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", game.ErrInvalidWinner, req.Winner)
		}
		round, err := t.RecordManualResult(ctx, game.ManualResult{
			Winner:        winner,
			SuperSix:      req.IsSuperSix,
			PlayerPair:    req.PlayerPair,
			BankerPair:    req.BankerPair,
			PlayerNatural: req.PlayerNatural,
			BankerNatural: req.BankerNatural,
		})
		if err != nil {
			return nil, err
		}
		return successMessage("Manual result saved for round %d: %s", round, describeWinner(winner)), nil

	case ActionSetVIPRevealer:
		id := game.PlayerID(req.PlayerID)
		hand, err := t.SetRevealer(ctx, id)
		if err != nil {
			return nil, err
		}
		return successMessage("Player %s will reveal the %s cards", id, hand), nil

	case ActionDealerReveal:
		if err := t.FinalReveal(ctx); err != nil {
			return nil, err
		}
		return successMessage("Dealer triggered final reveal. All cards are now visible."), nil

	case ActionDeleteLastEntry:
		rec, err := t.DeleteLastEntry(ctx)
		if err != nil {
			return nil, err
		}
		return successMessage("Deleted round %d (%s)", rec.Round, describeWinner(rec.Winner)), nil

	case ActionSetTableNumber:
		if err := t.SetTableNumber(ctx, string(req.TableNumber)); err != nil {
			return nil, err
		}
		return successMessage("Table number set to %s", req.TableNumber), nil

	case ActionSetMaxBet:
		if req.MaxBet == nil {
			return nil, fmt.Errorf("%w: max_bet is required", game.ErrInvalidSetting)
		}
		if err := t.SetMaxBet(ctx, int(*req.MaxBet)); err != nil {
			return nil, err
		}
		return successMessage("Max bet set to %d", *req.MaxBet), nil

	case ActionSetMinBet:
		if req.MinBet == nil {
			return nil, fmt.Errorf("%w: min_bet is required", game.ErrInvalidSetting)
		}
		if err := t.SetMinBet(ctx, int(*req.MinBet)); err != nil {
			return nil, err
		}
		return successMessage("Min bet set to %d", *req.MinBet), nil

	case ActionGetStats:
		st, err := t.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", game.ErrStore, err)
		}
		return statsMessage{Action: ActionStats, Stats: st}, nil

	default:
		return errorMessage("Unknown action: %s", req.Action), nil
	}
}

// autoDeal claims the table synchronously so conflicting commands are
// rejected at once, then runs the round in the background and reports the
// outcome to the requester.
func (d *Dispatcher) autoDeal(ctx context.Context, reply ReplyFunc) (any, error) {
	if err := d.dealer.Begin(ctx); err != nil {
		return nil, err
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.dealer.Run(d.runs); err != nil {
			d.logFailure(ActionAutoDeal, err)
			reply(errorMessage("%s", errorText(err)))
			return
		}
		s := d.table.Snapshot()
		if s.GamePhase == game.PhaseWaitingForReveal {
			reply(successMessage("Auto-deal complete. Waiting for reveal."))
			return
		}
		reply(successMessage("Auto-deal complete. Round %d: %s", s.Round, describeWinner(s.Winner)))
	}()

	return successMessage("Auto-deal started"), nil
}

func (d *Dispatcher) logFailure(action string, err error) {
	switch game.KindOf(err) {
	case game.KindValidation, game.KindPolicy:
		d.logger.Debug("action rejected", zap.String("action", action), zap.Error(err))
	default:
		d.logger.Error("action failed", zap.String("action", action), zap.Error(err))
	}
}

func errorText(err error) string {
	msg := err.Error()
	if msg == "" {
		return "internal error"
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}

func describeWinner(w game.Winner) string {
	switch w {
	case game.WinnerPlayer:
		return "player wins"
	case game.WinnerBanker:
		return "banker wins"
	case game.WinnerTie:
		return "tie"
	default:
		return "no winner"
	}
}
