package game

import (
	"errors"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/shoe"
)

// Validation errors: the request itself is malformed.
var (
	ErrInvalidCard       = cards.ErrInvalidCard
	ErrDuplicateExceeded = shoe.ErrDuplicateExceeded
	ErrInvalidMode       = errors.New("invalid game mode")
	ErrInvalidWinner     = errors.New("invalid winner")
	ErrInvalidPlayer     = errors.New("invalid player id")
	ErrInvalidSetting    = errors.New("invalid table setting")
)

// Policy errors: the request is well formed but not allowed right now.
var (
	ErrAutoDealRunning     = errors.New("auto-deal in progress")
	ErrAutoDealNotRunning  = errors.New("auto-deal not running")
	ErrHandsNotEmpty       = errors.New("start a new game before auto-dealing")
	ErrRoundFinished       = errors.New("round already finished")
	ErrRoundComplete       = errors.New("cannot add more cards")
	ErrRoundIncomplete     = errors.New("round is not complete")
	ErrRoundInProgress     = errors.New("round in progress")
	ErrNoPlayers           = errors.New("no active players")
	ErrManagementLocked    = errors.New("cannot add or remove players while a round is in progress")
	ErrNothingToUndo       = errors.New("no cards to undo")
	ErrUndoForbidden       = errors.New("undo is not allowed after auto-deal")
	ErrCannotCalculate     = errors.New("result cannot be calculated yet")
	ErrShuffleNotNeeded    = errors.New("too many cards remaining to shuffle")
	ErrBurnUnavailable     = errors.New("burn card not available")
	ErrWrongMode           = errors.New("not available in the current game mode")
	ErrNotWaitingForReveal = errors.New("final reveal is only possible while waiting for reveal")
	ErrRevealersAssigned   = errors.New("both revealers already assigned for this round")
	ErrSameRevealer        = errors.New("player is already the player revealer")
	ErrRevealersMissing    = errors.New("both revealers must be assigned before the final reveal")
	ErrPlayerInactive      = errors.New("player must be active")
	ErrNoEntries           = errors.New("no entries found to delete")
)

// Resource errors: a collaborator failed.
var (
	ErrEmptyShoe = shoe.ErrEmptyShoe
	ErrStore     = errors.New("round store unavailable")
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindPolicy
	KindResource
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindPolicy:
		return "policy"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

var kinds = map[Kind][]error{
	KindValidation: {
		ErrInvalidCard, ErrDuplicateExceeded, ErrInvalidMode, ErrInvalidWinner,
		ErrInvalidPlayer, ErrInvalidSetting,
	},
	KindPolicy: {
		ErrAutoDealRunning, ErrAutoDealNotRunning, ErrHandsNotEmpty, ErrRoundFinished,
		ErrRoundComplete, ErrRoundIncomplete, ErrRoundInProgress, ErrNoPlayers,
		ErrManagementLocked, ErrNothingToUndo, ErrUndoForbidden, ErrCannotCalculate,
		ErrShuffleNotNeeded, ErrBurnUnavailable, ErrWrongMode, ErrNotWaitingForReveal,
		ErrRevealersAssigned, ErrSameRevealer, ErrRevealersMissing, ErrPlayerInactive,
		ErrNoEntries,
	},
	KindResource: {
		ErrEmptyShoe, ErrStore, shoe.ErrNotDealt, shoe.ErrNotInShoe,
	},
}

// KindOf reports the class of err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, k := range []Kind{KindValidation, KindPolicy, KindResource} {
		for _, target := range kinds[k] {
			if errors.Is(err, target) {
				return k
			}
		}
	}
	return KindUnknown
}
