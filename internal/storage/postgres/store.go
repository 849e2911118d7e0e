package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"aaveLens/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS rate_snapshots (
	chain_id BIGINT NOT NULL,
	underlying_asset TEXT NOT NULL,
	symbol TEXT NOT NULL,
	supply_apy DOUBLE PRECISION NOT NULL,
	variable_borrow_apy DOUBLE PRECISION NOT NULL,
	stable_borrow_apy DOUBLE PRECISION NOT NULL,
	price_usd DOUBLE PRECISION NOT NULL,
	total_liquidity_usd DOUBLE PRECISION NOT NULL,
	captured_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, underlying_asset, captured_at)
);
CREATE INDEX IF NOT EXISTS rate_snapshots_symbol_idx ON rate_snapshots (chain_id, symbol, captured_at);
CREATE TABLE IF NOT EXISTS snapshot_state (
	name TEXT PRIMARY KEY,
	last_captured_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// Store provides Postgres persistence for rate snapshots.
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
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PutRateSnapshots lets the store act as a snapshot sink.
func (s *Store) PutRateSnapshots(ctx context.Context, snapshots []model.RateSnapshot) error {
	return s.UpsertRateSnapshots(ctx, snapshots)
}

// UpsertRateSnapshots inserts or updates rate snapshots in one batch.
func (s *Store) UpsertRateSnapshots(ctx context.Context, snapshots []model.RateSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		args, err := snapshotArgs(snap)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO rate_snapshots (
				chain_id, underlying_asset, symbol, supply_apy, variable_borrow_apy, stable_borrow_apy,
				price_usd, total_liquidity_usd, captured_at, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())
			ON CONFLICT (chain_id, underlying_asset, captured_at)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				supply_apy = EXCLUDED.supply_apy,
				variable_borrow_apy = EXCLUDED.variable_borrow_apy,
				stable_borrow_apy = EXCLUDED.stable_borrow_apy,
				price_usd = EXCLUDED.price_usd,
				total_liquidity_usd = EXCLUDED.total_liquidity_usd,
				updated_at = now()
		`, args...)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range snapshots {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// DailyRates averages recorded APYs per UTC day over the last days days.
// APYs are returned as percentages, oldest day first.
func (s *Store) DailyRates(ctx context.Context, chainID uint64, symbol string, days int) ([]model.RatePoint, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT
			EXTRACT(EPOCH FROM date_trunc('day', captured_at AT TIME ZONE 'UTC'))::BIGINT AS day,
			AVG(supply_apy) * 100,
			AVG(variable_borrow_apy) * 100
		FROM rate_snapshots
		WHERE chain_id = $1 AND upper(symbol) = upper($2) AND captured_at >= now() - make_interval(days => $3)
		GROUP BY day
		ORDER BY day ASC
	`, int64(chainID), symbol, days)
	if err != nil {
		return nil, fmt.Errorf("query daily rates: %w", err)
	}
	defer rows.Close()

	var points []model.RatePoint
	for rows.Next() {
		var point model.RatePoint
		if err := rows.Scan(&point.Timestamp, &point.SupplyAPY, &point.VariableBorrowAPY); err != nil {
			return nil, fmt.Errorf("scan daily rate: %w", err)
		}
		points = append(points, point)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read daily rates: %w", err)
	}
	return points, nil
}

// LoadState returns last_captured_at for a name.
func (s *Store) LoadState(ctx context.Context, name string) (time.Time, bool, error) {
	if name == "" {
		return time.Time{}, false, fmt.Errorf("state name required")
	}
	var ts time.Time
	row := s.pool.QueryRow(ctx, `SELECT last_captured_at FROM snapshot_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_captured_at for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts time.Time) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO snapshot_state (name, last_captured_at, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_captured_at = EXCLUDED.last_captured_at, updated_at = now()
	`, name, ts)
	return err
}

// snapshotArgs renders the insert parameters for one snapshot.
// A rate or price that does not parse fails the whole batch.
func snapshotArgs(snap model.RateSnapshot) ([]any, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"supply apy", snap.SupplyAPY},
		{"variable borrow apy", snap.VariableBorrowAPY},
		{"stable borrow apy", snap.StableBorrowAPY},
		{"price usd", snap.PriceInUSD},
		{"total liquidity usd", snap.TotalLiquidityUSD},
	}
	args := []any{int64(snap.ChainID), snap.UnderlyingAsset, snap.Symbol}
	for _, field := range fields {
		f, err := toFloat(field.value)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s on chain %d: %s: %w", snap.Symbol, snap.ChainID, field.name, err)
		}
		args = append(args, f)
	}
	return append(args, snap.CapturedAt), nil
}

func toFloat(value string) (float64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
