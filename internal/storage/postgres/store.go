package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"eventScope/internal/model"
)

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS collected_events (
		tx_hash                TEXT        NOT NULL,
		tx_order               BIGINT      NOT NULL,
		block_number           BIGINT      NOT NULL,
		block_timestamp        BIGINT      NOT NULL,
		tx_from                TEXT        NOT NULL,
		tx_to                  TEXT,
		event_contract_address TEXT        NOT NULL,
		event_name             TEXT        NOT NULL,
		event_args             TEXT        NOT NULL,
		created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (tx_hash, event_name, event_args)
	)
`

// Store mirrors collected events into Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the collected_events table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, createEventsTable); err != nil {
		return fmt.Errorf("create collected_events: %w", err)
	}
	return nil
}

// PutEntries inserts entries, ignoring rows already present for the same transaction and event.
func (s *Store) PutEntries(ctx context.Context, entries []model.EventEntry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO collected_events (
				tx_hash, tx_order, block_number, block_timestamp, tx_from, tx_to,
				event_contract_address, event_name, event_args
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, lower($9))
			ON CONFLICT (tx_hash, event_name, event_args) DO NOTHING
		`,
			e.TxHash,
			int64(e.TxOrder),
			int64(e.BlockNumber),
			int64(e.Timestamp),
			e.TxFrom,
			e.TxTo,
			e.EventContractAddress,
			e.EventName,
			e.EventArgs,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range entries {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}
