package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sugarWatch/internal/model"
	"sugarWatch/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS protocol_snapshots (
	id           UUID PRIMARY KEY,
	protocol     TEXT NOT NULL,
	taken_at     TIMESTAMPTZ NOT NULL,
	pool_count   INTEGER NOT NULL,
	tvl          DOUBLE PRECISION NOT NULL,
	fees         DOUBLE PRECISION NOT NULL,
	volume       DOUBLE PRECISION NOT NULL,
	epoch_fees   DOUBLE PRECISION NOT NULL,
	epoch_bribes DOUBLE PRECISION NOT NULL,
	token_symbol TEXT NOT NULL DEFAULT '',
	token_price  DOUBLE PRECISION NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS protocol_snapshots_taken_at
	ON protocol_snapshots (protocol, taken_at DESC);
CREATE TABLE IF NOT EXISTS pool_snapshots (
	snapshot_id  UUID NOT NULL REFERENCES protocol_snapshots (id) ON DELETE CASCADE,
	pool_address TEXT NOT NULL,
	symbol       TEXT NOT NULL,
	tvl          DOUBLE PRECISION NOT NULL,
	volume       DOUBLE PRECISION NOT NULL,
	fees         DOUBLE PRECISION NOT NULL,
	apr          DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (snapshot_id, pool_address)
);
`

var (
	_ storage.Storage = (*Store)(nil)
	_ storage.Reader  = (*Store)(nil)
)

// Store provides Postgres persistence for snapshots.
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

// EnsureSchema creates the snapshot tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// PutSnapshot inserts a protocol snapshot and its pool rows in one transaction.
func (s *Store) PutSnapshot(ctx context.Context, snap model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO protocol_snapshots (
			id, protocol, taken_at, pool_count, tvl, fees, volume,
			epoch_fees, epoch_bribes, token_symbol, token_price
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (id) DO NOTHING
	`,
		snap.ID,
		snap.Protocol,
		snap.TakenAt,
		snap.PoolCount,
		snap.TVL,
		snap.Fees,
		snap.Volume,
		snap.EpochFees,
		snap.EpochBribes,
		snap.TokenSymbol,
		snap.TokenPrice,
	)
	for _, p := range snap.Pools {
		batch.Queue(`
			INSERT INTO pool_snapshots (
				snapshot_id, pool_address, symbol, tvl, volume, fees, apr
			) VALUES ($1,$2,$3,$4,$5,$6,$7)
			ON CONFLICT (snapshot_id, pool_address) DO NOTHING
		`,
			snap.ID,
			p.Address,
			p.Symbol,
			p.TVL,
			p.Volume,
			p.Fees,
			p.APR,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const snapshotColumns = `id, protocol, taken_at, pool_count, tvl, fees, volume,
	epoch_fees, epoch_bribes, token_symbol, token_price`

// Latest returns the most recent protocol snapshot without pool rows.
func (s *Store) Latest(ctx context.Context, protocol string) (model.Snapshot, bool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+snapshotColumns+`
		FROM protocol_snapshots
		WHERE protocol = $1
		ORDER BY taken_at DESC
		LIMIT 1
	`, protocol)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Snapshot{}, false, nil
		}
		return model.Snapshot{}, false, err
	}
	return snap, true, nil
}

// History returns the protocol snapshots taken at or after since, oldest first,
// without pool rows.
func (s *Store) History(ctx context.Context, protocol string, since time.Time) ([]model.Snapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+snapshotColumns+`
		FROM protocol_snapshots
		WHERE protocol = $1 AND taken_at >= $2
		ORDER BY taken_at ASC
	`, protocol, since)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []model.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func scanSnapshot(row pgx.Row) (model.Snapshot, error) {
	var snap model.Snapshot
	err := row.Scan(
		&snap.ID,
		&snap.Protocol,
		&snap.TakenAt,
		&snap.PoolCount,
		&snap.TVL,
		&snap.Fees,
		&snap.Volume,
		&snap.EpochFees,
		&snap.EpochBribes,
		&snap.TokenSymbol,
		&snap.TokenPrice,
	)
	return snap, err
}
