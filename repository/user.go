package repository

import (
	"context"

	"github.com/gardenhub/backend/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// GetByIDs returns the users that exist among ids, in the order given.
	// Unknown ids are skipped, not errors.
	GetByIDs(ctx context.Context, ids []string) ([]domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	// ConsumeActivationToken atomically activates the matching user and
	// clears the token so it cannot be replayed.
	ConsumeActivationToken(ctx context.Context, token string) (*domain.User, error)
}
