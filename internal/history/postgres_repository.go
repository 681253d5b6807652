package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ridecast/ridecast/internal/passage"
	"github.com/ridecast/ridecast/internal/scoring"
)

// PostgresRepository is a PostgreSQL implementation of Repository. Passages
// and the score are stored as JSONB documents alongside scalar route facts.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL saved-route repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// List returns saved routes, newest first, capped at MaxEntries.
func (r *PostgresRepository) List(ctx context.Context) ([]SavedRoute, error) {
	query := `
		SELECT id, name, saved_at, display_date, total_distance_km,
		       avg_speed_kmh, departure, duration_seconds, passages, score
		FROM saved_routes
		ORDER BY saved_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, MaxEntries)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []SavedRoute
	for rows.Next() {
		route, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, *route)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return routes, nil
}

// Get returns a single saved route by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*SavedRoute, error) {
	query := `
		SELECT id, name, saved_at, display_date, total_distance_km,
		       avg_speed_kmh, departure, duration_seconds, passages, score
		FROM saved_routes
		WHERE id = $1
	`

	route, err := scanRoute(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRouteNotFound
		}
		return nil, err
	}

	return route, nil
}

// Save creates or updates a route, then evicts entries beyond MaxEntries.
func (r *PostgresRepository) Save(ctx context.Context, route *SavedRoute) error {
	passagesJSON, err := json.Marshal(route.Passages)
	if err != nil {
		return err
	}
	scoreJSON, err := json.Marshal(route.Score)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback error is not critical

	query := `
		INSERT INTO saved_routes (
			id, name, saved_at, display_date, total_distance_km,
			avg_speed_kmh, departure, duration_seconds, passages, score
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			saved_at = EXCLUDED.saved_at,
			display_date = EXCLUDED.display_date,
			total_distance_km = EXCLUDED.total_distance_km,
			avg_speed_kmh = EXCLUDED.avg_speed_kmh,
			departure = EXCLUDED.departure,
			duration_seconds = EXCLUDED.duration_seconds,
			passages = EXCLUDED.passages,
			score = EXCLUDED.score
	`

	_, err = tx.Exec(ctx, query,
		route.ID,
		route.Name,
		route.SavedAt,
		route.DisplayDate,
		route.TotalDistanceKm,
		route.AvgSpeedKmh,
		route.Departure,
		int64(route.Duration/time.Second),
		passagesJSON,
		scoreJSON,
	)
	if err != nil {
		return err
	}

	evict := `
		DELETE FROM saved_routes
		WHERE id NOT IN (
			SELECT id FROM saved_routes ORDER BY saved_at DESC LIMIT $1
		)
	`
	if _, err := tx.Exec(ctx, evict, MaxEntries); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Delete removes a route by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM saved_routes WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRouteNotFound
	}
	return nil
}

// Clear removes all saved routes.
func (r *PostgresRepository) Clear(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM saved_routes`)
	return err
}

func scanRoute(row pgx.Row) (*SavedRoute, error) {
	var (
		route           SavedRoute
		durationSeconds int64
		passagesJSON    []byte
		scoreJSON       []byte
	)

	err := row.Scan(
		&route.ID,
		&route.Name,
		&route.SavedAt,
		&route.DisplayDate,
		&route.TotalDistanceKm,
		&route.AvgSpeedKmh,
		&route.Departure,
		&durationSeconds,
		&passagesJSON,
		&scoreJSON,
	)
	if err != nil {
		return nil, err
	}

	route.Duration = time.Duration(durationSeconds) * time.Second

	route.Passages = []passage.Passage{}
	if err := json.Unmarshal(passagesJSON, &route.Passages); err != nil {
		return nil, err
	}

	route.Score = scoring.ConditionScore{}
	if err := json.Unmarshal(scoreJSON, &route.Score); err != nil {
		return nil, err
	}

	return &route, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
