package repository

import (
	"context"

	"github.com/gardenhub/backend/domain"
)

// GardenRepository loads gardens with their manager and picker
// membership sets attached. Membership mutations are single-row writes
// against the join tables, so each call is atomic on its own.
type GardenRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Garden, error)
	List(ctx context.Context) ([]domain.Garden, error)
	ListManagedBy(ctx context.Context, userID string) ([]domain.Garden, error)
	ListPickedBy(ctx context.Context, userID string) ([]domain.Garden, error)
	Create(ctx context.Context, garden *domain.Garden) (*domain.Garden, error)
	Update(ctx context.Context, garden *domain.Garden) error
	// Delete removes the garden; contained plots go with it (FK cascade).
	Delete(ctx context.Context, id string) error
	AddManager(ctx context.Context, gardenID, userID string) error
	RemoveManager(ctx context.Context, gardenID, userID string) error
	AddPicker(ctx context.Context, gardenID, userID string) error
	RemovePicker(ctx context.Context, gardenID, userID string) error
}
