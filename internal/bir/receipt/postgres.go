package receipt

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RowQuerier is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type RowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// nextORSequenceSQL bumps the series row under the row lock taken by the
// upsert, wrapping back to 1 past MaxORNumber.
const nextORSequenceSQL = `
	INSERT INTO or_sequences (series, last_value, updated_at)
	VALUES ($1, 1, now())
	ON CONFLICT (series)
	DO UPDATE SET
		last_value = CASE WHEN or_sequences.last_value >= $2 THEN 1 ELSE or_sequences.last_value + 1 END,
		updated_at = now()
	RETURNING last_value`

// PostgresSequence issues OR numbers from the or_sequences table, one row
// per series (usually one per registered POS terminal).
type PostgresSequence struct {
	db     RowQuerier
	series string
}

// NewPostgresSequence constructs a database-backed provider.
func NewPostgresSequence(db RowQuerier, series string) *PostgresSequence {
	return &PostgresSequence{db: db, series: series}
}

// NextSequence implements SequenceProvider.
func (s *PostgresSequence) NextSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := s.db.QueryRow(ctx, nextORSequenceSQL, s.series, MaxORNumber).Scan(&seq); err != nil {
		return 0, fmt.Errorf("receipt: postgres sequence %s: %w", s.series, err)
	}
	return seq, nil
}
