package game

import (
	"fmt"

	"github.com/Pranay13257/minibacarat/internal/game/rules"
)

// Winner and NaturalType are defined with the drawing rules.
type (
	Winner      = rules.Winner
	NaturalType = rules.NaturalType
)

const (
	WinnerNone   = rules.WinnerNone
	WinnerPlayer = rules.WinnerPlayer
	WinnerBanker = rules.WinnerBanker
	WinnerTie    = rules.WinnerTie
)

// PlayerID identifies a seat at the table.
type PlayerID string

// Phase is the round phase.
type Phase int

const (
	PhaseWaiting Phase = iota
	PhaseDealing
	PhaseWaitingForReveal
	PhaseAutoDealing
	PhaseFinished
)

var phaseNames = map[Phase]string{
	PhaseWaiting:          "waiting",
	PhaseDealing:          "dealing",
	PhaseWaitingForReveal: "waiting_for_reveal",
	PhaseAutoDealing:      "auto_dealing",
	PhaseFinished:         "finished",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("phase_%d", int(p))
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(b []byte) error {
	return unmarshalName(phaseNames, b, p, "phase")
}

// Mode selects how cards reach the table.
type Mode int

const (
	ModeManual Mode = iota
	ModeLive
	ModeAutomatic
	ModeVIP
)

var modeNames = map[Mode]string{
	ModeManual:    "manual",
	ModeLive:      "live",
	ModeAutomatic: "automatic",
	ModeVIP:       "vip",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode_%d", int(m))
}

func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *Mode) UnmarshalText(b []byte) error {
	return unmarshalName(modeNames, b, m, "mode")
}

// ParseMode accepts manual, live, automatic or vip.
func ParseMode(s string) (Mode, error) {
	var m Mode
	if err := m.UnmarshalText([]byte(s)); err != nil {
		return ModeManual, fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// BurnState tracks the burn window of the current shoe.
//
//	ready     -> active     StartBurn (live, vip)
//	ready     -> completed  BurnCard (manual, automatic) or the first dealt card
//	active    -> completed  EndBurn or the first auto-dealt card
//	completed -> ready      Shuffle, Reset
type BurnState int

const (
	BurnReady BurnState = iota
	BurnActive
	BurnCompleted
)

var burnNames = map[BurnState]string{
	BurnReady:     "ready",
	BurnActive:    "active",
	BurnCompleted: "completed",
}

func (b BurnState) String() string {
	if name, ok := burnNames[b]; ok {
		return name
	}
	return fmt.Sprintf("burn_%d", int(b))
}

func (b BurnState) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BurnState) UnmarshalText(data []byte) error {
	return unmarshalName(burnNames, data, b, "burn state")
}

// AutoDealState is the auto-deal scheduler state.
type AutoDealState int

const (
	AutoDealIdle AutoDealState = iota
	AutoDealRunning
	AutoDealFinished
	AutoDealFailed
)

var autoDealNames = map[AutoDealState]string{
	AutoDealIdle:     "idle",
	AutoDealRunning:  "running",
	AutoDealFinished: "finished",
	AutoDealFailed:   "failed",
}

func (a AutoDealState) String() string {
	if name, ok := autoDealNames[a]; ok {
		return name
	}
	return fmt.Sprintf("auto_deal_%d", int(a))
}

func (a AutoDealState) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *AutoDealState) UnmarshalText(b []byte) error {
	return unmarshalName(autoDealNames, b, a, "auto-deal state")
}

func unmarshalName[T comparable](names map[T]string, b []byte, dst *T, what string) error {
	for v, name := range names {
		if name == string(b) {
			*dst = v
			return nil
		}
	}
	return fmt.Errorf("unknown %s %q", what, string(b))
}

// Counters are the cumulative table statistics. They survive new rounds and
// are cleared only by Reset.
type Counters struct {
	Round       int
	PlayerWins  int
	BankerWins  int
	Ties        int
	PlayerPairs int
	BankerPairs int
	Naturals    int
	SuperSixes  int
}

// apply adds (sign 1) or removes (sign -1) one round's contribution.
func (c *Counters) apply(rec RoundRecord, sign int) {
	switch rec.Winner {
	case WinnerPlayer:
		c.PlayerWins += sign
	case WinnerBanker:
		c.BankerWins += sign
	case WinnerTie:
		c.Ties += sign
	}
	if rec.PlayerPair {
		c.PlayerPairs += sign
	}
	if rec.BankerPair {
		c.BankerPairs += sign
	}
	if rec.PlayerNatural || rec.BankerNatural || rec.Natural != rules.NaturalNone {
		c.Naturals += sign
	}
	if rec.SuperSix {
		c.SuperSixes += sign
	}
}

const undoSnapshotVersion = 1

// UndoSnapshot holds what is needed to reverse the most recently scored
// round. At most one exists at a time.
type UndoSnapshot struct {
	Version   int
	Counters  Counters
	Round     int
	Winner    Winner
	AutoDealt bool
}
