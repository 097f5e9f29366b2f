package repository

import (
	"context"

	"github.com/gardenhub/backend/domain"
)

type PlotRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Plot, error)
	ListByGarden(ctx context.Context, gardenID string) ([]domain.Plot, error)
	ListByGardens(ctx context.Context, gardenIDs []string) ([]domain.Plot, error)
	ListByGardener(ctx context.Context, userID string) ([]domain.Plot, error)
	Create(ctx context.Context, plot *domain.Plot) (*domain.Plot, error)
	Update(ctx context.Context, plot *domain.Plot) error
	AddGardener(ctx context.Context, plotID, userID string) error
	RemoveGardener(ctx context.Context, plotID, userID string) error
	SetCrops(ctx context.Context, plotID string, cropIDs []string) error
}
