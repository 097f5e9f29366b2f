package repository

import (
	"context"

	"github.com/gardenhub/backend/domain"
)

type CropRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Crop, error)
	List(ctx context.Context) ([]domain.Crop, error)
}
