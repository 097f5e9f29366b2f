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

type gardenRepository struct {
	pool *pgxpool.Pool
}

// NewGardenRepository instantiates a Postgres-backed garden repository.
func NewGardenRepository(pool *pgxpool.Pool) repository.GardenRepository {
	return &gardenRepository{pool: pool}
}

// Gardens are always loaded with their manager and picker id sets so the
// domain membership checks work without extra round trips.
const gardenSelect = `
	SELECT g.id, g.title, g.address,
		COALESCE(array_agg(DISTINCT gm.user_id) FILTER (WHERE gm.user_id IS NOT NULL), '{}'),
		COALESCE(array_agg(DISTINCT gp.user_id) FILTER (WHERE gp.user_id IS NOT NULL), '{}'),
		g.created_at, g.updated_at
	FROM gardens g
	LEFT JOIN garden_managers gm ON gm.garden_id = g.id
	LEFT JOIN garden_pickers gp ON gp.garden_id = g.id
`

const gardenGroupBy = ` GROUP BY g.id, g.title, g.address, g.created_at, g.updated_at`

func (r *gardenRepository) GetByID(ctx context.Context, id string) (*domain.Garden, error) {
	query := gardenSelect + ` WHERE g.id = $1` + gardenGroupBy
	return scanGarden(r.pool.QueryRow(ctx, query, id))
}

func (r *gardenRepository) List(ctx context.Context) ([]domain.Garden, error) {
	query := gardenSelect + gardenGroupBy + ` ORDER BY g.title`
	return r.queryGardens(ctx, query)
}

func (r *gardenRepository) ListManagedBy(ctx context.Context, userID string) ([]domain.Garden, error) {
	query := gardenSelect + `
	WHERE g.id IN (SELECT garden_id FROM garden_managers WHERE user_id = $1)` +
		gardenGroupBy + ` ORDER BY g.title`
	return r.queryGardens(ctx, query, userID)
}

func (r *gardenRepository) ListPickedBy(ctx context.Context, userID string) ([]domain.Garden, error) {
	query := gardenSelect + `
	WHERE g.id IN (SELECT garden_id FROM garden_pickers WHERE user_id = $1)` +
		gardenGroupBy + ` ORDER BY g.title`
	return r.queryGardens(ctx, query, userID)
}

func (r *gardenRepository) Create(ctx context.Context, garden *domain.Garden) (*domain.Garden, error) {
	if garden == nil {
		return nil, domain.ErrInvalidPayload
	}
	if garden.ID == "" {
		garden.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO gardens (id, title, address)
	VALUES ($1, $2, $3)
	RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query, garden.ID, garden.Title, garden.Address).
		Scan(&garden.CreatedAt, &garden.UpdatedAt)
	if err != nil {
		return nil, err
	}

	for _, managerID := range garden.ManagerIDs {
		if err := r.AddManager(ctx, garden.ID, managerID); err != nil {
			return nil, err
		}
	}
	for _, pickerID := range garden.PickerIDs {
		if err := r.AddPicker(ctx, garden.ID, pickerID); err != nil {
			return nil, err
		}
	}
	return garden, nil
}

func (r *gardenRepository) Update(ctx context.Context, garden *domain.Garden) error {
	if garden == nil {
		return domain.ErrInvalidPayload
	}

	const query = `
	UPDATE gardens
	SET title = $2, address = $3, updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query, garden.ID, garden.Title, garden.Address).
		Scan(&garden.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrGardenNotFound
		}
		return err
	}
	return nil
}

func (r *gardenRepository) Delete(ctx context.Context, id string) error {
	// Plots, memberships and dependent rows go with the garden via
	// ON DELETE CASCADE in the schema.
	const query = `DELETE FROM gardens WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrGardenNotFound
	}
	return nil
}

func (r *gardenRepository) AddManager(ctx context.Context, gardenID, userID string) error {
	const query = `
	INSERT INTO garden_managers (garden_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, gardenID, userID)
	return err
}

func (r *gardenRepository) RemoveManager(ctx context.Context, gardenID, userID string) error {
	const query = `DELETE FROM garden_managers WHERE garden_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, gardenID, userID)
	return err
}

func (r *gardenRepository) AddPicker(ctx context.Context, gardenID, userID string) error {
	const query = `
	INSERT INTO garden_pickers (garden_id, user_id)
	VALUES ($1, $2)
	ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, gardenID, userID)
	return err
}

func (r *gardenRepository) RemovePicker(ctx context.Context, gardenID, userID string) error {
	const query = `DELETE FROM garden_pickers WHERE garden_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, gardenID, userID)
	return err
}

func (r *gardenRepository) queryGardens(ctx context.Context, query string, args ...interface{}) ([]domain.Garden, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	gardens := []domain.Garden{}
	for rows.Next() {
		garden, err := scanGarden(rows)
		if err != nil {
			return nil, err
		}
		gardens = append(gardens, *garden)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return gardens, nil
}

func scanGarden(row rowScanner) (*domain.Garden, error) {
	var garden domain.Garden
	err := row.Scan(
		&garden.ID,
		&garden.Title,
		&garden.Address,
		&garden.ManagerIDs,
		&garden.PickerIDs,
		&garden.CreatedAt,
		&garden.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGardenNotFound
		}
		return nil, err
	}
	return &garden, nil
}
