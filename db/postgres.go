package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/banachtech/hedger/portfolio"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          UUID PRIMARY KEY,
	params_file TEXT NOT NULL,
	pricer_mode TEXT NOT NULL,
	asset_ids   TEXT[] NOT NULL,
	expired     BOOLEAN NOT NULL,
	expired_on  TIMESTAMPTZ,
	created_at  TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS run_states (
	run_id        UUID NOT NULL REFERENCES runs (id) ON DELETE CASCADE,
	seq           INTEGER NOT NULL,
	date          TIMESTAMPTZ NOT NULL,
	kind          TEXT NOT NULL,
	holdings      JSONB NOT NULL,
	cash          DOUBLE PRECISION NOT NULL,
	value         DOUBLE PRECISION NOT NULL,
	price         DOUBLE PRECISION NOT NULL,
	price_std_dev DOUBLE PRECISION NOT NULL,
	delta_std_dev JSONB,
	PRIMARY KEY (run_id, seq)
);`

// PostgresStore archives runs in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect opens a pool on url and creates the schema.
func Connect(ctx context.Context, url string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	s := NewPostgresStore(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() { s.pool.Close() }

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// execTx runs fn inside a transaction.
func (s *PostgresStore) execTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, fn)
}

func (s *PostgresStore) SaveRun(ctx context.Context, run *Run) error {
	return s.execTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO runs (id, params_file, pricer_mode, asset_ids, expired, expired_on, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			run.ID, run.ParamsFile, run.PricerMode, run.AssetIDs, run.Expired, run.ExpiredOn, run.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert run %s: %w", run.ID, err)
		}

		rows := make([][]interface{}, len(run.States))
		for i, st := range run.States {
			rows[i] = stateRow(run.ID, i, st)
		}
		_, err = tx.CopyFrom(ctx, pgx.Identifier{"run_states"},
			[]string{"run_id", "seq", "date", "kind", "holdings", "cash", "value", "price", "price_std_dev", "delta_std_dev"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy states of run %s: %w", run.ID, err)
		}
		return nil
	})
}

// stateRow is the run_states row of st. Non-finite numbers are stored as 0.
func stateRow(id uuid.UUID, seq int, st portfolio.State) []interface{} {
	return []interface{}{
		id, seq, st.Date, st.Kind.String(), finiteMap(st.Holdings),
		finite(st.Cash), finite(st.Value), finite(st.Price), finite(st.PriceStdDev), finiteMap(st.DeltaStdDev),
	}
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var r Run
	err := s.pool.QueryRow(ctx,
		`SELECT id, params_file, pricer_mode, asset_ids, expired, expired_on, created_at
		 FROM runs WHERE id = $1`, id).
		Scan(&r.ID, &r.ParamsFile, &r.PricerMode, &r.AssetIDs, &r.Expired, &r.ExpiredOn, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT date, kind, holdings, cash, value, price, price_std_dev, delta_std_dev
		 FROM run_states WHERE run_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var st portfolio.State
		var kind string
		if err := rows.Scan(&st.Date, &kind, &st.Holdings, &st.Cash, &st.Value, &st.Price, &st.PriceStdDev, &st.DeltaStdDev); err != nil {
			return nil, err
		}
		if st.Kind, err = portfolio.ParseKind(kind); err != nil {
			return nil, err
		}
		r.States = append(r.States, st)
	}
	return &r, rows.Err()
}
