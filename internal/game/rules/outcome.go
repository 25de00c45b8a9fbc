package rules

import (
	"fmt"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
)

// Winner is the outcome of a scored round.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerPlayer
	WinnerBanker
	WinnerTie
)

var winnerNames = map[Winner]string{
	WinnerNone:   "none",
	WinnerPlayer: "player",
	WinnerBanker: "banker",
	WinnerTie:    "tie",
}

func (w Winner) String() string {
	if name, ok := winnerNames[w]; ok {
		return name
	}
	return fmt.Sprintf("winner_%d", int(w))
}

func (w Winner) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

func (w *Winner) UnmarshalText(b []byte) error {
	parsed, err := ParseWinner(string(b))
	if err != nil {
		return err
	}
	*w = parsed
	return nil
}

// ParseWinner accepts the lower-case winner names.
func ParseWinner(s string) (Winner, error) {
	for w, name := range winnerNames {
		if name == s {
			return w, nil
		}
	}
	return WinnerNone, fmt.Errorf("unknown winner %q", s)
}

// NaturalType marks a four-card natural.
type NaturalType int

const (
	NaturalNone NaturalType = iota
	Natural8
	Natural9
)

var naturalNames = map[NaturalType]string{
	NaturalNone: "",
	Natural8:    "natural_8",
	Natural9:    "natural_9",
}

func (n NaturalType) String() string {
	if name, ok := naturalNames[n]; ok {
		return name
	}
	return fmt.Sprintf("natural_%d", int(n))
}

func (n NaturalType) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *NaturalType) UnmarshalText(b []byte) error {
	for v, name := range naturalNames {
		if name == string(b) {
			*n = v
			return nil
		}
	}
	return fmt.Errorf("unknown natural type %q", string(b))
}

// Natural classifies two-card scores. A 9 on either side wins the name.
func Natural(playerScore, bankerScore int) NaturalType {
	switch {
	case playerScore == 9 || bankerScore == 9:
		return Natural9
	case playerScore == 8 || bankerScore == 8:
		return Natural8
	default:
		return NaturalNone
	}
}

// DecideWinner compares final scores.
func DecideWinner(playerScore, bankerScore int) Winner {
	switch {
	case playerScore > bankerScore:
		return WinnerPlayer
	case bankerScore > playerScore:
		return WinnerBanker
	default:
		return WinnerTie
	}
}

// IsSuperSix reports a banker win on exactly six points with three cards.
func IsSuperSix(banker []cards.Card, w Winner) bool {
	return w == WinnerBanker && len(banker) == 3 && cards.Score(banker) == 6
}

// Outcome is the scored view of a complete round.
type Outcome struct {
	PlayerScore   int
	BankerScore   int
	Winner        Winner
	Natural       NaturalType
	SuperSix      bool
	PlayerNatural bool
	BankerNatural bool
}

// Score evaluates a complete round. Naturals are only credited to two-card
// hands, and per-hand naturals go to the side that won on them.
func Score(player, banker []cards.Card) Outcome {
	ps, bs := cards.Score(player), cards.Score(banker)
	o := Outcome{
		PlayerScore: ps,
		BankerScore: bs,
		Winner:      DecideWinner(ps, bs),
	}
	if len(player) == 2 && len(banker) == 2 {
		o.Natural = Natural(ps, bs)
	}
	if o.Natural != NaturalNone {
		o.PlayerNatural = ps >= 8 && ps > bs
		o.BankerNatural = bs >= 8 && bs > ps
	}
	o.SuperSix = IsSuperSix(banker, o.Winner)
	return o
}
