package game

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"github.com/Pranay13257/minibacarat/internal/game/shoe"
	"go.uber.org/zap"
)

// TableConfig holds the table settings and policy switches.
type TableConfig struct {
	Number string
	MinBet int
	MaxBet int
	Mode   Mode

	// DealInterval paces auto-deal between cards; ShuffleDelay follows an
	// automatic reshuffle.
	DealInterval time.Duration
	ShuffleDelay time.Duration
	// AutoReshuffle lets auto-deal rebuild a shoe that is below the
	// reshuffle threshold.
	AutoReshuffle bool
	// AllowUndoAfterAutoDeal lets an auto-dealt result be undone.
	AllowUndoAfterAutoDeal bool
	// RequireRevealers makes the VIP final reveal wait for both revealers.
	RequireRevealers bool
}

// DefaultTableConfig returns the stock table settings.
func DefaultTableConfig() TableConfig {
	return TableConfig{
		Number:        "13257",
		MinBet:        10000,
		MaxBet:        100000,
		Mode:          ModeManual,
		DealInterval:  2500 * time.Millisecond,
		ShuffleDelay:  2500 * time.Millisecond,
		AutoReshuffle: true,
	}
}

// Table is the single authoritative round. Every exported method holds the
// table lock for its whole duration, including publishing.
type Table struct {
	mu        sync.Mutex
	logger    *zap.Logger
	cfg       TableConfig
	shoe      *shoe.Shoe
	store     RoundStore
	publisher Publisher

	player       []cards.Card
	banker       []cards.Card
	phase        Phase
	playerPair   bool
	bankerPair   bool
	natural      NaturalType
	winner       Winner
	superSix     bool
	canCalculate bool
	revealed     bool
	autoDealt    bool

	counters     Counters
	undo         *UndoSnapshot
	storedRounds int

	active           map[PlayerID]struct{}
	canManagePlayers bool
	playerRevealer   PlayerID
	bankerRevealer   PlayerID

	burn        BurnState
	burnCard    cards.Card
	burnedCards []cards.Card

	autoDeal AutoDealState
	mode     Mode

	tableNumber string
	minBet      int
	maxBet      int

	version uint64
}

// NewTable creates a table in the waiting phase. A nil publisher discards
// events.
func NewTable(cfg TableConfig, sh *shoe.Shoe, store RoundStore, publisher Publisher, logger *zap.Logger) *Table {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Table{
		logger:           logger,
		cfg:              cfg,
		shoe:             sh,
		store:            store,
		publisher:        publisher,
		active:           make(map[PlayerID]struct{}),
		canManagePlayers: true,
		burn:             BurnReady,
		mode:             cfg.Mode,
		tableNumber:      cfg.Number,
		minBet:           cfg.MinBet,
		maxBet:           cfg.MaxBet,
	}
	t.resetRoundLocked()
	return t
}

// Load restores the round counter from the store so numbering continues
// across restarts.
func (t *Table) Load(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats, err := t.store.Stats(ctx)
	if err != nil {
		return err
	}
	t.storedRounds = stats.Rounds
	t.counters = Counters{
		Round:       stats.Rounds,
		PlayerWins:  stats.PlayerWins,
		BankerWins:  stats.BankerWins,
		Ties:        stats.Ties,
		PlayerPairs: stats.PlayerPairs,
		BankerPairs: stats.BankerPairs,
		Naturals:    stats.PlayerNaturals + stats.BankerNaturals,
		SuperSixes:  stats.SuperSixes,
	}

	t.logger.Info("table state restored from store",
		zap.Int("rounds", stats.Rounds),
	)
	return nil
}

// SetPublisher replaces the publisher. Used during wiring, before traffic.
func (t *Table) SetPublisher(p Publisher) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if p == nil {
		p = nopPublisher{}
	}
	t.publisher = p
}

// Snapshot returns the current state without publishing it.
func (t *Table) Snapshot() GameState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

// Stats returns the stored aggregates.
func (t *Table) Stats(ctx context.Context) (Stats, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Stats(ctx)
}

// NewRound clears the hands and round flags. Counters and the shoe carry
// over.
func (t *Table) NewRound(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	t.resetRoundLocked()
	t.logger.Info("new round started", zap.Int("round", t.counters.Round+1))
	t.publishStateLocked()
	return nil
}

// Reset starts over with a fresh shoe, zero counters, no active players and
// an empty store.
func (t *Table) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}

	t.shoe.Reshuffle()
	t.resetRoundLocked()
	t.counters = Counters{}
	t.active = make(map[PlayerID]struct{})
	t.burn = BurnReady
	t.burnCard = cards.Card{}
	t.autoDeal = AutoDealIdle

	if err := t.store.Clear(ctx); err != nil {
		t.logger.Error("failed to clear round store", zap.Error(err))
	} else {
		t.storedRounds = 0
	}

	t.logger.Info("table reset", zap.Int("remaining_cards", t.shoe.Remaining()))
	t.publishStateLocked()
	t.publisher.PublishRefreshStats()
	return nil
}

// Shuffle rebuilds the shoe. Only allowed between rounds and once the shoe
// is below the reshuffle threshold.
func (t *Table) Shuffle(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.autoDeal == AutoDealRunning {
		return ErrAutoDealRunning
	}
	if t.roundInProgressLocked() {
		return ErrRoundInProgress
	}
	if !t.shoe.NeedsReshuffle() {
		return ErrShuffleNotNeeded
	}

	t.reshuffleLocked()
	t.publishStateLocked()
	return nil
}

func (t *Table) reshuffleLocked() {
	t.shoe.Reshuffle()
	t.burn = BurnReady
	t.burnCard = cards.Card{}
	// cards of the last round no longer belong to this shoe
	t.undo = nil
	t.logger.Info("shoe shuffled", zap.Int("remaining_cards", t.shoe.Remaining()))
}

// resetRoundLocked clears everything that belongs to a single round.
func (t *Table) resetRoundLocked() {
	t.player = nil
	t.banker = nil
	t.phase = PhaseWaiting
	t.playerPair = false
	t.bankerPair = false
	t.canManagePlayers = true
	t.burnedCards = nil
	t.undo = nil
	t.autoDealt = false
	if t.autoDeal != AutoDealRunning {
		t.autoDeal = AutoDealIdle
	}
	t.clearOutcomeLocked()
	t.playerRevealer = ""
	t.bankerRevealer = ""
	t.revealed = t.mode != ModeVIP
}

func (t *Table) clearOutcomeLocked() {
	t.natural = rules.NaturalNone
	t.winner = WinnerNone
	t.superSix = false
	t.canCalculate = false
}

func (t *Table) dealtLocked() int {
	return len(t.player) + len(t.banker)
}

func (t *Table) roundInProgressLocked() bool {
	return t.dealtLocked() > 0 && t.phase != PhaseFinished
}

func (t *Table) holdForRevealLocked() bool {
	return t.mode == ModeVIP && !t.revealed
}

func (t *Table) nextRecipientLocked() rules.Recipient {
	return rules.NextRecipient(t.player, t.banker, rules.Guard{
		NoPlayers:     t.autoDeal != AutoDealRunning && len(t.active) == 0,
		HoldForReveal: t.holdForRevealLocked(),
	})
}

func (t *Table) activePlayersLocked() []PlayerID {
	ids := make([]PlayerID, 0, len(t.active))
	for id := range t.active {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (t *Table) snapshotLocked() GameState {
	next := t.nextRecipientLocked()
	s := GameState{
		PlayerCards:           append([]cards.Card{}, t.player...),
		BankerCards:           append([]cards.Card{}, t.banker...),
		PlayerTotal:           cards.Score(t.player),
		BankerTotal:           cards.Score(t.banker),
		NextCardGoesTo:        next,
		GamePhase:             t.phase,
		PlayerPair:            t.playerPair,
		BankerPair:            t.bankerPair,
		RemainingCards:        t.shoe.Remaining(),
		UsedCards:             t.shoe.Used(),
		CanUndo:               t.canUndoLocked(),
		CanUndoLastWin:        t.storedRounds > 0,
		CanCalculate:          t.canCalculate,
		CanShuffle:            t.autoDeal != AutoDealRunning && !t.roundInProgressLocked() && t.shoe.NeedsReshuffle(),
		BurnMode:              t.burn,
		BurnAvailable:         t.burn == BurnReady && t.dealtLocked() == 0,
		NaturalWin:            t.natural != rules.NaturalNone,
		NaturalType:           t.natural,
		Round:                 t.counters.Round,
		PlayerWins:            t.counters.PlayerWins,
		BankerWins:            t.counters.BankerWins,
		Ties:                  t.counters.Ties,
		PlayerPairCount:       t.counters.PlayerPairs,
		BankerPairCount:       t.counters.BankerPairs,
		SuperSixCount:         t.counters.SuperSixes,
		NaturalCount:          t.counters.Naturals,
		ActivePlayers:         t.activePlayersLocked(),
		AutoDealingInProgress: t.autoDeal == AutoDealRunning,
		AutoDealState:         t.autoDeal,
		NoPlayersActive:       next == rules.RecipientNoPlayers,
		CanManagePlayers:      t.canManagePlayers,
		IsSuperSix:            t.superSix,
		TableNumber:           t.tableNumber,
		MaxBet:                t.maxBet,
		MinBet:                t.minBet,
		GameMode:              t.mode,
		VIPPlayerRevealer:     t.playerRevealer,
		VIPBankerRevealer:     t.bankerRevealer,
		CardsRevealed:         t.revealed,
		Winner:                t.winner,
		Version:               t.version,
	}
	if !t.burnCard.IsZero() {
		s.BurnCard = t.burnCard.String()
	}
	s.BurnedCards = len(t.burnedCards)
	s.Checksum = s.ComputeChecksum()
	return s
}

func (t *Table) canUndoLocked() bool {
	if t.autoDeal == AutoDealRunning {
		return false
	}
	if t.phase == PhaseFinished {
		return t.undo != nil && (!t.undo.AutoDealt || t.cfg.AllowUndoAfterAutoDeal)
	}
	return t.dealtLocked() > 0
}

// publishStateLocked bumps the version and publishes a snapshot.
func (t *Table) publishStateLocked() {
	t.version++
	t.publisher.PublishState(t.snapshotLocked())
}
