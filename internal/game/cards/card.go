// Package cards holds the playing-card value type and the baccarat scoring
// primitives built on it.
package cards

import (
	"errors"
	"fmt"
	"strings"
)

// Ranks lists every rank symbol in shoe order.
const Ranks = "A23456789TJQK"

// Suits lists every suit symbol in shoe order.
const Suits = "HDCS"

// ErrInvalidCard is returned when a card string is not a rank followed by a suit.
var ErrInvalidCard = errors.New("invalid card")

// Card is an immutable rank/suit pair such as "8H" or "KS".
type Card struct {
	Rank byte
	Suit byte
}

// Parse normalizes s (trimmed, upper-cased) and validates it.
func Parse(s string) (Card, error) {
	norm := strings.ToUpper(strings.TrimSpace(s))
	if !IsValid(norm) {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}
	return Card{Rank: norm[0], Suit: norm[1]}, nil
}

// MustParse is Parse for fixtures; it panics on malformed input.
func MustParse(s string) Card {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseAll parses a list of card strings, failing on the first bad entry.
func ParseAll(ss ...string) ([]Card, error) {
	out := make([]Card, 0, len(ss))
	for _, s := range ss {
		c, err := Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// IsValid reports whether s is exactly an upper-case rank followed by an
// upper-case suit.
func IsValid(s string) bool {
	if len(s) != 2 {
		return false
	}
	return strings.IndexByte(Ranks, s[0]) >= 0 && strings.IndexByte(Suits, s[1]) >= 0
}

func (c Card) String() string {
	return string([]byte{c.Rank, c.Suit})
}

// IsZero reports whether c is the zero Card.
func (c Card) IsZero() bool {
	return c.Rank == 0 && c.Suit == 0
}

// Value is the baccarat point value: A=1, T/J/Q/K=0, 2-9 face value.
func (c Card) Value() int {
	switch c.Rank {
	case 'A':
		return 1
	case 'T', 'J', 'Q', 'K':
		return 0
	}
	if c.Rank >= '2' && c.Rank <= '9' {
		return int(c.Rank - '0')
	}
	return 0
}

func (c Card) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return []byte{}, nil
	}
	return []byte(c.String()), nil
}

func (c *Card) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*c = Card{}
		return nil
	}
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Score is the hand total modulo 10.
func Score(hand []Card) int {
	total := 0
	for _, c := range hand {
		total += c.Value()
	}
	return total % 10
}

// IsPair reports whether a hand holds exactly two cards of the same rank.
func IsPair(hand []Card) bool {
	return len(hand) == 2 && hand[0].Rank == hand[1].Rank
}

// Strings renders a hand as card strings; a nil hand yields an empty slice.
func Strings(hand []Card) []string {
	out := make([]string, len(hand))
	for i, c := range hand {
		out[i] = c.String()
	}
	return out
}

// All returns every rank/suit combination of a single deck.
func All() []Card {
	out := make([]Card, 0, len(Ranks)*len(Suits))
	for i := 0; i < len(Ranks); i++ {
		for j := 0; j < len(Suits); j++ {
			out = append(out, Card{Rank: Ranks[i], Suit: Suits[j]})
		}
	}
	return out
}
