package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/repository"
)

type plotRepository struct {
	pool *pgxpool.Pool
}

// NewPlotRepository instantiates a Postgres-backed plot repository.
func NewPlotRepository(pool *pgxpool.Pool) repository.PlotRepository {
	return &plotRepository{pool: pool}
}

const plotSelect = `
	SELECT p.id, p.garden_id, p.title,
		COALESCE(array_agg(DISTINCT pg.user_id) FILTER (WHERE pg.user_id IS NOT NULL), '{}'),
		COALESCE(array_agg(DISTINCT pc.crop_id) FILTER (WHERE pc.crop_id IS NOT NULL), '{}'),
		p.created_at, p.updated_at
	FROM plots p
	LEFT JOIN plot_gardeners pg ON pg.plot_id = p.id
	LEFT JOIN plot_crops pc ON pc.plot_id = p.id
`

const plotGroupBy = ` GROUP BY p.id, p.garden_id, p.title, p.created_at, p.updated_at`

func (r *plotRepository) GetByID(ctx context.Context, id string) (*domain.Plot, error) {
	query := plotSelect + ` WHERE p.id = $1` + plotGroupBy
	return scanPlot(r.pool.QueryRow(ctx, query, id))
}

func (r *plotRepository) ListByGarden(ctx context.Context, gardenID string) ([]domain.Plot, error) {
	query := plotSelect + ` WHERE p.garden_id = $1` + plotGroupBy + ` ORDER BY p.title`
	return r.queryPlots(ctx, query, gardenID)
}

func (r *plotRepository) ListByGardens(ctx context.Context, gardenIDs []string) ([]domain.Plot, error) {
	if len(gardenIDs) == 0 {
		return []domain.Plot{}, nil
	}
	query := plotSelect + ` WHERE p.garden_id = ANY($1)` + plotGroupBy + ` ORDER BY p.title`
	return r.queryPlots(ctx, query, gardenIDs)
}

func (r *plotRepository) ListByGardener(ctx context.Context, userID string) ([]domain.Plot, error) {
	query := plotSelect + `
	WHERE p.id IN (SELECT plot_id FROM plot_gardeners WHERE user_id = $1)` +
		plotGroupBy + ` ORDER BY p.title`
	return r.queryPlots(ctx, query, userID)
}

func (r *plotRepository) Create(ctx context.Context, plot *domain.Plot) (*domain.Plot, error) {
	if plot == nil {
		return nil, domain.ErrInvalidPayload
	}
	if plot.ID == "" {
		plot.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO plots (id, garden_id, title)
	VALUES ($1, $2, $3)
	RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, plot.ID, plot.GardenID, plot.Title).
		Scan(&plot.CreatedAt, &plot.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, gardenerID := range plot.GardenerIDs {
		if err := r.AddGardener(ctx, plot.ID, gardenerID); err != nil {
			return nil, err
		}
	}
	if len(plot.CropIDs) > 0 {
		if err := r.SetCrops(ctx, plot.ID, plot.CropIDs); err != nil {
			return nil, err
		}
	}
	return plot, nil
}

func (r *plotRepository) Update(ctx context.Context, plot *domain.Plot) error {
	if plot == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE plots
	SET garden_id = $2, title = $3, updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, plot.ID, plot.GardenID, plot.Title).
		Scan(&plot.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrPlotNotFound
		}
		return err
	}
	return nil
}

func (r *plotRepository) AddGardener(ctx context.Context, plotID, userID string) error {
	const query = `
	INSERT INTO plot_gardeners (plot_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, plotID, userID)
	return err
}

func (r *plotRepository) RemoveGardener(ctx context.Context, plotID, userID string) error {
	const query = `DELETE FROM plot_gardeners WHERE plot_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, plotID, userID)
	return err
}

func (r *plotRepository) SetCrops(ctx context.Context, plotID string, cropIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM plot_crops WHERE plot_id = $1`, plotID); err != nil {
		return err
	}
	for _, cropID := range cropIDs {
		_, err := tx.Exec(ctx,
			`INSERT INTO plot_crops (plot_id, crop_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			plotID, cropID)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *plotRepository) queryPlots(ctx context.Context, query string, args ...interface{}) ([]domain.Plot, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plots := []domain.Plot{}
	for rows.Next() {
		plot, err := scanPlot(rows)
		if err != nil {
			return nil, err
		}
		plots = append(plots, *plot)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return plots, nil
}

func scanPlot(row rowScanner) (*domain.Plot, error) {
	var plot domain.Plot
	err := row.Scan(
		&plot.ID,
		&plot.GardenID,
		&plot.Title,
		&plot.GardenerIDs,
		&plot.CropIDs,
		&plot.CreatedAt,
		&plot.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlotNotFound
		}
		return nil, err
	}
	return &plot, nil
}
