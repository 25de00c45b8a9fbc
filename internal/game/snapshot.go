package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
)

// GameState is the full table snapshot sent to observers after every
// mutation. JSON names match the existing dealer and display clients.
type GameState struct {
	PlayerCards           []cards.Card    `json:"playerCards"`
	BankerCards           []cards.Card    `json:"bankerCards"`
	PlayerTotal           int             `json:"playerTotal"`
	BankerTotal           int             `json:"bankerTotal"`
	NextCardGoesTo        rules.Recipient `json:"nextCardGoesTo"`
	GamePhase             Phase           `json:"gamePhase"`
	PlayerPair            bool            `json:"playerPair"`
	BankerPair            bool            `json:"bankerPair"`
	RemainingCards        int             `json:"remainingCards"`
	UsedCards             int             `json:"usedCards"`
	CanUndo               bool            `json:"canUndo"`
	CanUndoLastWin        bool            `json:"canUndoLastWin"`
	CanCalculate          bool            `json:"canCalculate"`
	CanShuffle            bool            `json:"canShuffle"`
	BurnMode              BurnState       `json:"burnMode"`
	BurnAvailable         bool            `json:"burnAvailable"`
	BurnCard              string          `json:"burnCard,omitempty"`
	BurnedCards           int             `json:"burnedCards"`
	NaturalWin            bool            `json:"naturalWin"`
	NaturalType           NaturalType     `json:"naturalType"`
	Round                 int             `json:"round"`
	PlayerWins            int             `json:"playerWins"`
	BankerWins            int             `json:"bankerWins"`
	Ties                  int             `json:"ties"`
	PlayerPairCount       int             `json:"playerPairCount"`
	BankerPairCount       int             `json:"bankerPairCount"`
	SuperSixCount         int             `json:"SuperSixCount"`
	NaturalCount          int             `json:"naturalCount"`
	ActivePlayers         []PlayerID      `json:"activePlayers"`
	AutoDealingInProgress bool            `json:"autoDealingInProgress"`
	AutoDealState         AutoDealState   `json:"autoDealState"`
	NoPlayersActive       bool            `json:"noPlayersActive"`
	CanManagePlayers      bool            `json:"canManagePlayers"`
	IsSuperSix            bool            `json:"is_super_six"`
	TableNumber           string          `json:"table_number"`
	MaxBet                int             `json:"max_bet"`
	MinBet                int             `json:"min_bet"`
	GameMode              Mode            `json:"game_mode"`
	VIPPlayerRevealer     PlayerID        `json:"vip_player_revealer"`
	VIPBankerRevealer     PlayerID        `json:"vip_banker_revealer"`
	CardsRevealed         bool            `json:"cards_revealed"`
	Winner                Winner          `json:"winner"`
	Version               uint64          `json:"version"`
	Checksum              string          `json:"checksum"`
}

// RoundResult is broadcast once when a round is scored, before the state
// snapshot that shows it.
type RoundResult struct {
	Winner         Winner       `json:"winner"`
	PlayerCards    []cards.Card `json:"playerCards"`
	BankerCards    []cards.Card `json:"bankerCards"`
	PlayerTotal    int          `json:"playerTotal"`
	BankerTotal    int          `json:"bankerTotal"`
	PlayerPair     bool         `json:"playerPair"`
	BankerPair     bool         `json:"bankerPair"`
	IsSuperSix     bool         `json:"is_super_six"`
	IsNatural      bool         `json:"isNatural"`
	NaturalType    NaturalType  `json:"naturalType"`
	PlayerNatural  bool         `json:"playerNatural"`
	BankerNatural  bool         `json:"bankerNatural"`
	Round          int          `json:"round"`
	CanUndoLastWin bool         `json:"canUndoLastWin"`
	AutoDealt      bool         `json:"autoDealt"`
}

// ComputeChecksum hashes every field except Version and Checksum. Two
// snapshots of the same table state hash identically regardless of the
// order players were activated in.
func (s GameState) ComputeChecksum() string {
	hash := sha256.Sum256([]byte(s.canonical()))
	return hex.EncodeToString(hash[:])
}

func (s GameState) canonical() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "HANDS:%s|%s|%d|%d|%s\n",
		strings.Join(cards.Strings(s.PlayerCards), ","),
		strings.Join(cards.Strings(s.BankerCards), ","),
		s.PlayerTotal, s.BankerTotal, s.NextCardGoesTo,
	)
	fmt.Fprintf(&buf, "ROUND:%s|%t|%t|%t|%s|%s|%t\n",
		s.GamePhase, s.PlayerPair, s.BankerPair, s.NaturalWin, s.NaturalType, s.Winner, s.IsSuperSix,
	)
	fmt.Fprintf(&buf, "SHOE:%d|%d|%s|%t|%s|%d\n",
		s.RemainingCards, s.UsedCards, s.BurnMode, s.BurnAvailable, s.BurnCard, s.BurnedCards,
	)
	fmt.Fprintf(&buf, "FLAGS:%t|%t|%t|%t|%t|%s|%t|%t\n",
		s.CanUndo, s.CanUndoLastWin, s.CanCalculate, s.CanShuffle,
		s.AutoDealingInProgress, s.AutoDealState, s.NoPlayersActive, s.CanManagePlayers,
	)
	fmt.Fprintf(&buf, "COUNTERS:%d|%d|%d|%d|%d|%d|%d|%d\n",
		s.Round, s.PlayerWins, s.BankerWins, s.Ties,
		s.PlayerPairCount, s.BankerPairCount, s.SuperSixCount, s.NaturalCount,
	)
	fmt.Fprintf(&buf, "TABLE:%s|%d|%d|%s|%s|%s|%t\n",
		s.TableNumber, s.MinBet, s.MaxBet, s.GameMode,
		s.VIPPlayerRevealer, s.VIPBankerRevealer, s.CardsRevealed,
	)

	players := make([]string, len(s.ActivePlayers))
	for i, p := range s.ActivePlayers {
		players[i] = string(p)
	}
	sort.Strings(players)
	for _, p := range players {
		fmt.Fprintf(&buf, "PLAYER:%s\n", p)
	}

	return buf.String()
}
