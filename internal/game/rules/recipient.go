// Package rules implements the baccarat drawing rules: who receives the next
// card, when a round is complete, and how a complete round is scored.
package rules

import (
	"fmt"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
)

// Recipient is the outcome of the recipient decision.
type Recipient int

const (
	RecipientPlayer Recipient = iota
	RecipientBanker
	RecipientComplete
	RecipientNoPlayers
)

var recipientNames = map[Recipient]string{
	RecipientPlayer:    "player",
	RecipientBanker:    "banker",
	RecipientComplete:  "complete",
	RecipientNoPlayers: "no_players",
}

func (r Recipient) String() string {
	if name, ok := recipientNames[r]; ok {
		return name
	}
	return fmt.Sprintf("recipient_%d", int(r))
}

func (r Recipient) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Recipient) UnmarshalText(b []byte) error {
	for v, name := range recipientNames {
		if name == string(b) {
			*r = v
			return nil
		}
	}
	return fmt.Errorf("unknown recipient %q", string(b))
}

// Dealing reports whether r names a hand.
func (r Recipient) Dealing() bool {
	return r == RecipientPlayer || r == RecipientBanker
}

// Guard carries the table conditions that override the card-count table.
type Guard struct {
	// NoPlayers short-circuits to RecipientNoPlayers. Set only for manual
	// dealing with an empty active-player set.
	NoPlayers bool
	// HoldForReveal stops dealing at four cards until the hands are revealed.
	HoldForReveal bool
}

// NextRecipient decides who receives the next card, or whether the round is
// complete.
func NextRecipient(player, banker []cards.Card, g Guard) Recipient {
	if g.NoPlayers {
		return RecipientNoPlayers
	}

	n := len(player) + len(banker)
	switch n {
	case 0, 2:
		return RecipientPlayer
	case 1, 3:
		return RecipientBanker
	}

	if g.HoldForReveal {
		return RecipientComplete
	}

	switch {
	case n == 4:
		ps, bs := cards.Score(player), cards.Score(banker)
		if ps >= 8 || bs >= 8 {
			return RecipientComplete
		}
		if ps <= 5 {
			return RecipientPlayer
		}
		if bs <= 5 {
			return RecipientBanker
		}
		return RecipientComplete
	case n == 5 && len(player) == 3:
		if BankerDraws(cards.Score(banker), player[2].Value()) {
			return RecipientBanker
		}
		return RecipientComplete
	default:
		return RecipientComplete
	}
}

// BankerDraws applies the banker third-card table to the banker's two-card
// score and the value of the player's third card.
func BankerDraws(bankerScore, playerThird int) bool {
	switch bankerScore {
	case 0, 1, 2:
		return true
	case 3:
		return playerThird != 8
	case 4:
		return playerThird >= 2 && playerThird <= 7
	case 5:
		return playerThird >= 4 && playerThird <= 7
	case 6:
		return playerThird == 6 || playerThird == 7
	default:
		return false
	}
}

// LastRecipient names the hand that received the most recent card given the
// current hand sizes. Cards one to four alternate player first; the fifth
// card belongs to whichever hand holds three cards, and the sixth is always
// the banker's. It returns false when nothing has been dealt.
func LastRecipient(playerCount, bankerCount int) (Recipient, bool) {
	switch playerCount + bankerCount {
	case 0:
		return RecipientComplete, false
	case 1, 3:
		return RecipientPlayer, true
	case 2, 4, 6:
		return RecipientBanker, true
	case 5:
		if bankerCount == 3 {
			return RecipientBanker, true
		}
		return RecipientPlayer, true
	default:
		return RecipientBanker, true
	}
}
