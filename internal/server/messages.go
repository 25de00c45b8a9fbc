package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Pranay13257/minibacarat/internal/game"
)

// Inbound actions.
const (
	ActionAddCard         = "add_card"
	ActionCalculateResult = "calculate_result"
	ActionStartNewGame    = "start_new_game"
	ActionResetGame       = "reset_game"
	ActionUndo            = "undo"
	ActionShuffleCards    = "shuffle_cards"
	ActionBurnCard        = "burn_card"
	ActionStartBurnCard   = "start_burn_card"
	ActionEndBurnCard     = "end_burn_card"
	ActionAutoDeal        = "auto_deal"
	ActionUpdatePlayers   = "update_players"
	ActionSetGameMode     = "set_game_mode"
	ActionManualResult    = "manual_result"
	ActionSetVIPRevealer  = "set_vip_revealer"
	ActionDealerReveal    = "dealer_final_reveal"
	ActionDeleteLastEntry = "delete_last_entry"
	ActionSetTableNumber  = "set_table_number"
	ActionSetMaxBet       = "set_max_bet"
	ActionSetMinBet       = "set_min_bet"
	ActionGetStats        = "get_stats"
)

// Outbound actions.
const (
	ActionGameState    = "game_state"
	ActionGameResult   = "game_result"
	ActionRefreshStats = "refresh_stats"
	ActionStats        = "stats"
	ActionSuccess      = "success"
	ActionError        = "error"
)

// Request is the union of every inbound action's fields.
type Request struct {
	Action        string   `json:"action"`
	Card          string   `json:"card,omitempty"`
	PlayerID      flexID   `json:"player_id,omitempty"`
	IsActive      bool     `json:"is_active,omitempty"`
	Mode          string   `json:"mode,omitempty"`
	Winner        string   `json:"winner,omitempty"`
	IsSuperSix    bool     `json:"is_super_six,omitempty"`
	PlayerPair    bool     `json:"player_pair,omitempty"`
	BankerPair    bool     `json:"banker_pair,omitempty"`
	PlayerNatural bool     `json:"player_natural,omitempty"`
	BankerNatural bool     `json:"banker_natural,omitempty"`
	TableNumber   flexID   `json:"table_number,omitempty"`
	MaxBet        *flexInt `json:"max_bet,omitempty"`
	MinBet        *flexInt `json:"min_bet,omitempty"`
}

// flexID accepts a JSON string or number. Dealer consoles send seat numbers
// as either.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = flexID(n.String())
	return nil
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(b []byte) error {
	var id flexID
	if err := id.UnmarshalJSON(b); err != nil {
		return err
	}
	n, err := strconv.Atoi(string(id))
	if err != nil {
		return fmt.Errorf("expected integer, got %s", b)
	}
	*f = flexInt(n)
	return nil
}

type actionMessage struct {
	Action string `json:"action"`
}

type textMessage struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

type stateMessage struct {
	Action string `json:"action"`
	game.GameState
}

type resultMessage struct {
	Action string `json:"action"`
	game.RoundResult
}

type statsMessage struct {
	Action string `json:"action"`
	game.Stats
}

func newStateMessage(s game.GameState) stateMessage {
	return stateMessage{Action: ActionGameState, GameState: s}
}

func successMessage(format string, args ...any) textMessage {
	return textMessage{Action: ActionSuccess, Message: fmt.Sprintf(format, args...)}
}

func errorMessage(format string, args ...any) textMessage {
	return textMessage{Action: ActionError, Message: fmt.Sprintf(format, args...)}
}
