package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/repository"
)

type cropRepository struct {
	pool *pgxpool.Pool
}

// NewCropRepository instantiates a Postgres-backed crop repository.
func NewCropRepository(pool *pgxpool.Pool) repository.CropRepository {
	return &cropRepository{pool: pool}
}

func (r *cropRepository) GetByID(ctx context.Context, id string) (*domain.Crop, error) {
	const query = `SELECT id, title FROM crops WHERE id = $1`

	var crop domain.Crop
	err := r.pool.QueryRow(ctx, query, id).Scan(&crop.ID, &crop.Title)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCropNotFound
		}
		return nil, err
	}
	return &crop, nil
}

func (r *cropRepository) List(ctx context.Context) ([]domain.Crop, error) {
	const query = `SELECT id, title FROM crops ORDER BY title`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	crops := []domain.Crop{}
	for rows.Next() {
		var crop domain.Crop
		if err := rows.Scan(&crop.ID, &crop.Title); err != nil {
			return nil, err
		}
		crops = append(crops, crop)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return crops, nil
}
