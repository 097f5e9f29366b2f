package repository

import (
	"context"
	"time"

	"github.com/gardenhub/backend/domain"
)

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByPlot(ctx context.Context, plotID string) ([]domain.Order, error)
	ListByPlots(ctx context.Context, plotIDs []string) ([]domain.Order, error)
	// ListByGardens returns every order placed against any plot of the
	// given gardens. Pickers see all of them, regardless of plot.
	ListByGardens(ctx context.Context, gardenIDs []string) ([]domain.Order, error)
	// ExistsOpenByPlots reports whether any of the plots carries an order
	// still open as of today (end date after today, not canceled).
	ExistsOpenByPlots(ctx context.Context, plotIDs []string, today time.Time) (bool, error)
	Create(ctx context.Context, order *domain.Order) (*domain.Order, error)
	// Cancel flips the canceled flag. Orders are never deleted.
	Cancel(ctx context.Context, id string) error
}

type PickRepository interface {
	Create(ctx context.Context, pick *domain.Pick) (*domain.Pick, error)
	ListByPlot(ctx context.Context, plotID string) ([]domain.Pick, error)
	// ExistsOnPlotSince reports whether the plot has at least one pick
	// recorded at or after the given instant (start of today, usually).
	ExistsOnPlotSince(ctx context.Context, plotID string, since time.Time) (bool, error)
	// Inquirers returns the users who care about picks on the plot: its
	// gardeners plus the requesters of its orders, deduplicated.
	Inquirers(ctx context.Context, plotID string) ([]domain.User, error)
}
