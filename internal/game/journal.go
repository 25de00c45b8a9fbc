package game

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	journalVersion = 1
	// maxJournalStates bounds a journal whose round never gets scored.
	maxJournalStates = 512
)

// RoundJournal is the ordered list of snapshots published during one round,
// ending with the scored result.
type RoundJournal struct {
	Round  int
	States []GameState
	Result *RoundResult
}

type journalMetadata struct {
	Round      int
	Timestamp  time.Time
	Version    int
	StateCount int
	HasResult  bool
}

// JournalFileName is the file a round's journal is saved under.
func JournalFileName(round int) string {
	return fmt.Sprintf("round-%06d.journal", round)
}

// SaveToFile writes the journal as a gzipped gob stream.
func (j *RoundJournal) SaveToFile(directory string) error {
	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(filepath.Join(directory, JournalFileName(j.Round)))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	zw := gzip.NewWriter(file)
	encoder := gob.NewEncoder(zw)

	metadata := journalMetadata{
		Round:      j.Round,
		Timestamp:  time.Now(),
		Version:    journalVersion,
		StateCount: len(j.States),
		HasResult:  j.Result != nil,
	}
	if err := encoder.Encode(&metadata); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	for i := range j.States {
		if err := encoder.Encode(&j.States[i]); err != nil {
			return fmt.Errorf("failed to encode state %d: %w", i, err)
		}
	}
	if j.Result != nil {
		if err := encoder.Encode(j.Result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return nil
}

// LoadJournal reads the journal saved for round.
func LoadJournal(directory string, round int) (*RoundJournal, error) {
	return LoadJournalFile(filepath.Join(directory, JournalFileName(round)))
}

// LoadJournalFile reads a journal from an explicit path.
func LoadJournalFile(path string) (*RoundJournal, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	zr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer zr.Close()

	decoder := gob.NewDecoder(zr)

	var metadata journalMetadata
	if err := decoder.Decode(&metadata); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	if metadata.Version != journalVersion {
		return nil, fmt.Errorf("unsupported journal version: %d", metadata.Version)
	}

	j := &RoundJournal{Round: metadata.Round, States: make([]GameState, 0, metadata.StateCount)}
	for i := 0; i < metadata.StateCount; i++ {
		var state GameState
		if err := decoder.Decode(&state); err != nil {
			return nil, fmt.Errorf("failed to decode state %d: %w", i, err)
		}
		j.States = append(j.States, state)
	}
	if metadata.HasResult {
		var result RoundResult
		if err := decoder.Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode result: %w", err)
		}
		j.Result = &result
	}
	return j, nil
}

// JournalRecorder is a Publisher that keeps every snapshot of the current
// round and writes the journal to disk once the round is scored.
type JournalRecorder struct {
	logger  *zap.Logger
	saveDir string

	mu      sync.Mutex
	current *RoundJournal
	pending bool
	wg      sync.WaitGroup
}

func NewJournalRecorder(logger *zap.Logger, saveDir string) *JournalRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JournalRecorder{
		logger:  logger,
		saveDir: saveDir,
		current: &RoundJournal{},
	}
}

func (jr *JournalRecorder) PublishState(state GameState) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	jr.current.States = append(jr.current.States, state)
	if len(jr.current.States) > maxJournalStates {
		jr.current.States = jr.current.States[len(jr.current.States)-maxJournalStates:]
	}

	// the snapshot that follows a result closes the round
	if jr.pending {
		done := jr.current
		jr.current = &RoundJournal{}
		jr.pending = false
		jr.save(done)
	}
}

func (jr *JournalRecorder) PublishResult(result RoundResult) {
	jr.mu.Lock()
	defer jr.mu.Unlock()

	jr.current.Round = result.Round
	jr.current.Result = &result
	jr.pending = true
}

func (jr *JournalRecorder) PublishRefreshStats() {}

func (jr *JournalRecorder) save(j *RoundJournal) {
	jr.wg.Add(1)
	go func() {
		defer jr.wg.Done()
		if err := j.SaveToFile(jr.saveDir); err != nil {
			jr.logger.Error("failed to save round journal",
				zap.Int("round", j.Round),
				zap.Error(err),
			)
			return
		}
		jr.logger.Debug("saved round journal",
			zap.Int("round", j.Round),
			zap.Int("state_count", len(j.States)),
			zap.String("directory", jr.saveDir),
		)
	}()
}

// Flush waits for pending journal writes.
func (jr *JournalRecorder) Flush() {
	jr.wg.Wait()
}
