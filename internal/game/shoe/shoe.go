// Package shoe manages the multi-deck shoe: ordering, per-card usage
// accounting, burning and reshuffling.
package shoe

import (
	"errors"
	"fmt"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
)

const (
	// Decks is the number of 52-card decks in a shoe.
	Decks = 8
	// Size is the number of cards in a fresh shoe.
	Size = Decks * 52
	// ReshuffleThreshold is the remaining-card count below which the shoe
	// may (manual) or must (automatic) be reshuffled.
	ReshuffleThreshold = 52
)

var (
	ErrEmptyShoe         = errors.New("no cards remaining in shoe")
	ErrDuplicateExceeded = errors.New("card already used the maximum number of times")
	ErrNotDealt          = errors.New("card was not dealt from this shoe")
	ErrNotInShoe         = errors.New("card not found in shoe")
)

// Shoe is not safe for concurrent use; the owning table serializes access.
type Shoe struct {
	shuffler Shuffler
	cards    []cards.Card
	usage    map[cards.Card]int
}

// New builds a freshly shuffled shoe.
func New(shuffler Shuffler) *Shoe {
	s := &Shoe{shuffler: shuffler}
	s.Reshuffle()
	return s
}

// Reshuffle discards the current shoe and builds a new random permutation
// of all Size cards with zero usage.
func (s *Shoe) Reshuffle() {
	deck := cards.All()
	s.cards = make([]cards.Card, 0, Size)
	for i := 0; i < Decks; i++ {
		s.cards = append(s.cards, deck...)
	}
	if s.shuffler != nil {
		s.shuffler.Shuffle(len(s.cards), func(i, j int) {
			s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
		})
	}
	s.usage = make(map[cards.Card]int)
}

// Draw removes and returns the first card.
func (s *Shoe) Draw() (cards.Card, error) {
	if len(s.cards) == 0 {
		return cards.Card{}, ErrEmptyShoe
	}
	c := s.cards[0]
	s.cards = s.cards[1:]
	s.usage[c]++
	return c, nil
}

// Burn discards the first card and returns it.
func (s *Shoe) Burn() (cards.Card, error) {
	c, err := s.Draw()
	if err != nil {
		return cards.Card{}, fmt.Errorf("burn: %w", err)
	}
	return c, nil
}

// Take removes a caller-chosen card from the shoe.
func (s *Shoe) Take(c cards.Card) error {
	if s.usage[c] >= Decks {
		return fmt.Errorf("%w: %s", ErrDuplicateExceeded, c)
	}
	for i, candidate := range s.cards {
		if candidate == c {
			s.cards = append(s.cards[:i], s.cards[i+1:]...)
			s.usage[c]++
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotInShoe, c)
}

// Return reverses a Take or Draw, putting the card back at the tail.
func (s *Shoe) Return(c cards.Card) error {
	if s.usage[c] == 0 {
		return fmt.Errorf("%w: %s", ErrNotDealt, c)
	}
	s.usage[c]--
	if s.usage[c] == 0 {
		delete(s.usage, c)
	}
	s.cards = append(s.cards, c)
	return nil
}

// CanTake reports whether c is still within its duplicate budget.
func (s *Shoe) CanTake(c cards.Card) bool {
	return s.usage[c] < Decks
}

func (s *Shoe) Remaining() int {
	return len(s.cards)
}

// Used is the total of all usage counters.
func (s *Shoe) Used() int {
	total := 0
	for _, n := range s.usage {
		total += n
	}
	return total
}

// Usage returns how many copies of c have left the shoe.
func (s *Shoe) Usage(c cards.Card) int {
	return s.usage[c]
}

// NeedsReshuffle reports whether fewer than ReshuffleThreshold cards remain.
func (s *Shoe) NeedsReshuffle() bool {
	return len(s.cards) < ReshuffleThreshold
}

// Peek returns a copy of the remaining cards in order.
func (s *Shoe) Peek() []cards.Card {
	out := make([]cards.Card, len(s.cards))
	copy(out, s.cards)
	return out
}
