package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Pranay13257/minibacarat/internal/game"
	"github.com/Pranay13257/minibacarat/internal/game/cards"
	"github.com/Pranay13257/minibacarat/internal/game/rules"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const roundsSchema = `
CREATE TABLE IF NOT EXISTS round_results (
	id             UUID PRIMARY KEY,
	seq            BIGSERIAL UNIQUE,
	recorded_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	round          INTEGER NOT NULL,
	winner         TEXT NOT NULL,
	player_cards   TEXT[] NOT NULL DEFAULT '{}',
	banker_cards   TEXT[] NOT NULL DEFAULT '{}',
	player_score   INTEGER NOT NULL DEFAULT 0,
	banker_score   INTEGER NOT NULL DEFAULT 0,
	is_super_six   BOOLEAN NOT NULL DEFAULT false,
	player_pair    BOOLEAN NOT NULL DEFAULT false,
	banker_pair    BOOLEAN NOT NULL DEFAULT false,
	is_natural     BOOLEAN NOT NULL DEFAULT false,
	natural_type   TEXT NOT NULL DEFAULT '',
	player_natural BOOLEAN NOT NULL DEFAULT false,
	banker_natural BOOLEAN NOT NULL DEFAULT false,
	auto_dealt     BOOLEAN NOT NULL DEFAULT false,
	manual         BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS round_results_round_idx ON round_results (round);
`

const roundColumns = `id, recorded_at, round, winner, player_cards, banker_cards,
	player_score, banker_score, is_super_six, player_pair, banker_pair,
	is_natural, natural_type, player_natural, banker_natural, auto_dealt, manual`

// RoundRepository is the PostgreSQL round store. Records are ordered by
// insertion, so "newest" is the highest seq.
type RoundRepository struct {
	db     *DB
	logger *zap.Logger
}

var _ game.RoundStore = (*RoundRepository)(nil)

func NewRoundRepository(db *DB) *RoundRepository {
	return &RoundRepository{db: db, logger: db.logger}
}

// EnsureSchema creates the round_results table if it does not exist.
func (r *RoundRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.pool.Exec(ctx, roundsSchema); err != nil {
		return fmt.Errorf("failed to create round_results: %w", err)
	}
	return nil
}

func (r *RoundRepository) AppendRound(ctx context.Context, rec game.RoundRecord) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO round_results (`+roundColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		rec.ID, rec.RecordedAt, rec.Round, rec.Winner.String(),
		cards.Strings(rec.PlayerCards), cards.Strings(rec.BankerCards),
		rec.PlayerScore, rec.BankerScore, rec.SuperSix, rec.PlayerPair, rec.BankerPair,
		rec.Natural != rules.NaturalNone, rec.Natural.String(),
		rec.PlayerNatural, rec.BankerNatural, rec.AutoDealt, rec.Manual,
	)
	if err != nil {
		return fmt.Errorf("failed to insert round %d: %w", rec.Round, err)
	}
	return nil
}

// RemoveRound deletes the newest record if it belongs to round. The check
// and the delete run in one transaction.
func (r *RoundRepository) RemoveRound(ctx context.Context, round int) (bool, error) {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		seq    int64
		newest int
	)
	err = tx.QueryRow(ctx,
		`SELECT seq, round FROM round_results ORDER BY seq DESC LIMIT 1 FOR UPDATE`,
	).Scan(&seq, &newest)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read newest round: %w", err)
	}
	if newest != round {
		return false, nil
	}

	if _, err := tx.Exec(ctx, `DELETE FROM round_results WHERE seq = $1`, seq); err != nil {
		return false, fmt.Errorf("failed to delete round %d: %w", round, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

func (r *RoundRepository) DeleteLatest(ctx context.Context) (game.RoundRecord, bool, error) {
	row := r.db.pool.QueryRow(ctx, `
		DELETE FROM round_results
		WHERE seq = (SELECT max(seq) FROM round_results)
		RETURNING `+roundColumns)

	rec, err := scanRound(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return game.RoundRecord{}, false, nil
	}
	if err != nil {
		return game.RoundRecord{}, false, fmt.Errorf("failed to delete latest round: %w", err)
	}
	return rec, true, nil
}

// Recent returns up to limit records, newest first.
func (r *RoundRepository) Recent(ctx context.Context, limit int) ([]game.RoundRecord, error) {
	rows, err := r.db.pool.Query(ctx,
		`SELECT `+roundColumns+` FROM round_results ORDER BY seq DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds: %w", err)
	}
	defer rows.Close()

	var out []game.RoundRecord
	for rows.Next() {
		rec, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *RoundRepository) Clear(ctx context.Context) error {
	if _, err := r.db.pool.Exec(ctx, `TRUNCATE round_results RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to clear rounds: %w", err)
	}
	r.logger.Info("round history cleared")
	return nil
}

func (r *RoundRepository) Count(ctx context.Context) (int, error) {
	var n int64
	if err := r.db.pool.QueryRow(ctx, `SELECT count(*) FROM round_results`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rounds: %w", err)
	}
	return int(n), nil
}

// Stats aggregates the stored rounds. Naturals count only for the side that
// won with them.
func (r *RoundRepository) Stats(ctx context.Context) (game.Stats, error) {
	var st game.Stats
	err := r.db.pool.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE winner = 'banker'),
			count(*) FILTER (WHERE winner = 'player'),
			count(*) FILTER (WHERE winner = 'tie'),
			count(*) FILTER (WHERE player_pair),
			count(*) FILTER (WHERE banker_pair),
			count(*) FILTER (WHERE winner = 'player' AND player_natural),
			count(*) FILTER (WHERE winner = 'banker' AND banker_natural),
			count(*) FILTER (WHERE is_super_six),
			count(*)
		FROM round_results`,
	).Scan(
		&st.BankerWins, &st.PlayerWins, &st.Ties,
		&st.PlayerPairs, &st.BankerPairs,
		&st.PlayerNaturals, &st.BankerNaturals,
		&st.SuperSixes, &st.Rounds,
	)
	if err != nil {
		return game.Stats{}, fmt.Errorf("failed to aggregate rounds: %w", err)
	}
	return st, nil
}

func scanRound(row pgx.Row) (game.RoundRecord, error) {
	var (
		rec                  game.RoundRecord
		winner, natural      string
		playerRaw, bankerRaw []string
		isNatural            bool
	)
	err := row.Scan(
		&rec.ID, &rec.RecordedAt, &rec.Round, &winner, &playerRaw, &bankerRaw,
		&rec.PlayerScore, &rec.BankerScore, &rec.SuperSix, &rec.PlayerPair, &rec.BankerPair,
		&isNatural, &natural, &rec.PlayerNatural, &rec.BankerNatural, &rec.AutoDealt, &rec.Manual,
	)
	if err != nil {
		return game.RoundRecord{}, err
	}

	if rec.Winner, err = rules.ParseWinner(winner); err != nil {
		return game.RoundRecord{}, fmt.Errorf("round %d: %w", rec.Round, err)
	}
	if err := rec.Natural.UnmarshalText([]byte(natural)); err != nil {
		return game.RoundRecord{}, fmt.Errorf("round %d: %w", rec.Round, err)
	}
	if rec.PlayerCards, err = cards.ParseAll(playerRaw...); err != nil {
		return game.RoundRecord{}, fmt.Errorf("round %d: %w", rec.Round, err)
	}
	if rec.BankerCards, err = cards.ParseAll(bankerRaw...); err != nil {
		return game.RoundRecord{}, fmt.Errorf("round %d: %w", rec.Round, err)
	}
	return rec, nil
}
