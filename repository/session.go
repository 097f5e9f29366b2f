package repository

import (
	"context"

	"github.com/gardenhub/backend/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	// Save upserts the session; the backing store's expiry follows the
	// session's ExpiresAt.
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
