package game

import (
	"context"
	"time"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/google/uuid"
)

// RoundRecord is the persisted outcome of one scored round.
type RoundRecord struct {
	ID            uuid.UUID
	RecordedAt    time.Time
	Round         int
	Winner        Winner
	PlayerCards   []cards.Card
	BankerCards   []cards.Card
	PlayerScore   int
	BankerScore   int
	SuperSix      bool
	PlayerPair    bool
	BankerPair    bool
	Natural       NaturalType
	PlayerNatural bool
	BankerNatural bool
	AutoDealt     bool
	Manual        bool
}

// Stats are the aggregates reported by get_stats.
type Stats struct {
	BankerWins     int `json:"banker_wins"`
	PlayerWins     int `json:"player_wins"`
	Ties           int `json:"ties"`
	PlayerPairs    int `json:"player_pairs"`
	BankerPairs    int `json:"banker_pairs"`
	PlayerNaturals int `json:"player_naturals"`
	BankerNaturals int `json:"banker_naturals"`
	SuperSixes     int `json:"super_sixes"`
	Rounds         int `json:"rounds"`
}

// RoundStore persists scored rounds. Calls block; implementations do not
// retry.
type RoundStore interface {
	AppendRound(ctx context.Context, rec RoundRecord) error
	// RemoveRound deletes the newest record only if it belongs to round.
	RemoveRound(ctx context.Context, round int) (bool, error)
	// DeleteLatest deletes and returns the newest record.
	DeleteLatest(ctx context.Context) (RoundRecord, bool, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Tally folds a record into s the way a store aggregates it.
func (s *Stats) Tally(rec RoundRecord) {
	s.Rounds++
	switch rec.Winner {
	case WinnerBanker:
		s.BankerWins++
		if rec.BankerNatural {
			s.BankerNaturals++
		}
	case WinnerPlayer:
		s.PlayerWins++
		if rec.PlayerNatural {
			s.PlayerNaturals++
		}
	case WinnerTie:
		s.Ties++
	}
	if rec.PlayerPair {
		s.PlayerPairs++
	}
	if rec.BankerPair {
		s.BankerPairs++
	}
	if rec.SuperSix {
		s.SuperSixes++
	}
}
