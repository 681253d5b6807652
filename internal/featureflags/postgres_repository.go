package featureflags

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const upsertFlagQuery = `
	INSERT INTO feature_flags (key, value, updated_at)
	VALUES ($1, $2, $3)
	ON CONFLICT (key) DO UPDATE SET
		value = EXCLUDED.value,
		updated_at = EXCLUDED.updated_at
`

// PostgresRepository stores flags in the feature_flags table. Values are
// kept as JSON so a flag can hold a bool today and richer config later.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a flag repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// GetFlag returns the flag stored under key, or ErrFlagNotFound.
func (r *PostgresRepository) GetFlag(ctx context.Context, key string) (*Flag, error) {
	query := `
		SELECT key, value, updated_at
		FROM feature_flags
		WHERE key = $1
	`

	flag, err := scanFlag(r.pool.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFlagNotFound
		}
		return nil, err
	}
	return flag, nil
}

// GetAllFlags returns every stored flag keyed by flag key.
func (r *PostgresRepository) GetAllFlags(ctx context.Context) (map[string]*Flag, error) {
	query := `
		SELECT key, value, updated_at
		FROM feature_flags
		ORDER BY key
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flags := make(map[string]*Flag)
	for rows.Next() {
		flag, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		flags[flag.Key] = flag
	}
	return flags, rows.Err()
}

// SetFlag creates or replaces one flag.
func (r *PostgresRepository) SetFlag(ctx context.Context, flag *Flag) error {
	valueJSON, err := json.Marshal(flag.Value)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, upsertFlagQuery, flag.Key, valueJSON, time.Now())
	return err
}

// SetFlags creates or replaces several flags atomically. The upserts go
// out as one batch inside a transaction so a mixed rollout either lands
// completely or not at all.
func (r *PostgresRepository) SetFlags(ctx context.Context, flags []*Flag) error {
	if len(flags) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	now := time.Now()
	for _, flag := range flags {
		valueJSON, err := json.Marshal(flag.Value)
		if err != nil {
			return err
		}
		batch.Queue(upsertFlagQuery, flag.Key, valueJSON, now)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// DeleteFlag removes a flag. Unknown keys are not an error.
func (r *PostgresRepository) DeleteFlag(ctx context.Context, key string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM feature_flags WHERE key = $1`, key)
	return err
}

func scanFlag(row pgx.Row) (*Flag, error) {
	var (
		flag      Flag
		valueJSON []byte
	)
	if err := row.Scan(&flag.Key, &valueJSON, &flag.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(valueJSON, &flag.Value); err != nil {
		return nil, err
	}
	return &flag, nil
}

var _ Repository = (*PostgresRepository)(nil)
