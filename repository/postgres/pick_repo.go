package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/repository"
)

type pickRepository struct {
	pool *pgxpool.Pool
}

// NewPickRepository instantiates a Postgres-backed pick repository.
func NewPickRepository(pool *pgxpool.Pool) repository.PickRepository {
	return &pickRepository{pool: pool}
}

const pickSelect = `
	SELECT pk.id, pk.plot_id, pk.picker_id, pk.picked_at,
		COALESCE(array_agg(DISTINCT pkc.crop_id) FILTER (WHERE pkc.crop_id IS NOT NULL), '{}')
	FROM picks pk
	LEFT JOIN pick_crops pkc ON pkc.pick_id = pk.id
`

const pickGroupBy = ` GROUP BY pk.id, pk.plot_id, pk.picker_id, pk.picked_at`

func (r *pickRepository) Create(ctx context.Context, pick *domain.Pick) (*domain.Pick, error) {
	if pick == nil {
		return nil, domain.ErrInvalidPayload
	}
	if pick.ID == "" {
		pick.ID = uuid.NewString()
	}
	if pick.Timestamp.IsZero() {
		pick.Timestamp = time.Now().UTC()
	}

	const query = `
	INSERT INTO picks (id, plot_id, picker_id, picked_at)
	VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, pick.ID, pick.PlotID, pick.PickerID, pick.Timestamp)
	if err != nil {
		return nil, err
	}

	for _, cropID := range pick.CropIDs {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO pick_crops (pick_id, crop_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			pick.ID, cropID)
		if err != nil {
			return nil, err
		}
	}
	return pick, nil
}

func (r *pickRepository) ListByPlot(ctx context.Context, plotID string) ([]domain.Pick, error) {
	query := pickSelect + ` WHERE pk.plot_id = $1` + pickGroupBy + ` ORDER BY pk.picked_at DESC`

	rows, err := r.pool.Query(ctx, query, plotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	picks := []domain.Pick{}
	for rows.Next() {
		pick, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, *pick)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return picks, nil
}

func (r *pickRepository) ExistsOnPlotSince(ctx context.Context, plotID string, since time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM picks WHERE plot_id = $1 AND picked_at >= $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, plotID, since).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *pickRepository) Inquirers(ctx context.Context, plotID string) ([]domain.User, error) {
	// Plot gardeners plus requesters of the plot's orders, deduplicated
	// by the UNION itself.
	query := `
	SELECT ` + userColumns + ` FROM users WHERE id IN (
		SELECT user_id FROM plot_gardeners WHERE plot_id = $1
		UNION
		SELECT requester_id FROM orders WHERE plot_id = $1
	)
	ORDER BY email
	`

	rows, err := r.pool.Query(ctx, query, plotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func scanPick(row rowScanner) (*domain.Pick, error) {
	var pick domain.Pick
	err := row.Scan(
		&pick.ID,
		&pick.PlotID,
		&pick.PickerID,
		&pick.Timestamp,
		&pick.CropIDs,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPickNotFound
		}
		return nil, err
	}
	return &pick, nil
}
