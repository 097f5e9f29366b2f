// Package access derives which gardens, plots and orders a user may
// reach, and answers the edit/visibility predicates the handlers gate
// on. Role state is never stored: everything here is recomputed from
// the membership relations on each call.
package access

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/pkg/dates"
	"github.com/gardenhub/backend/repository"
)

type Engine struct {
	users   repository.UserRepository
	gardens repository.GardenRepository
	plots   repository.PlotRepository
	orders  repository.OrderRepository
	logger  *zap.Logger
}

func New(
	users repository.UserRepository,
	gardens repository.GardenRepository,
	plots repository.PlotRepository,
	orders repository.OrderRepository,
	logger *zap.Logger,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		users:   users,
		gardens: gardens,
		plots:   plots,
		orders:  orders,
		logger:  logger,
	}
}

// User loads a user record.
func (e *Engine) User(ctx context.Context, userID string) (*domain.User, error) {
	return e.users.GetByID(ctx, userID)
}

// GardensManaged returns the gardens the user administers. Unknown
// users get an empty slice, never an error.
func (e *Engine) GardensManaged(ctx context.Context, userID string) ([]domain.Garden, error) {
	return e.gardens.ListManagedBy(ctx, userID)
}

// PlotsReachable returns every plot the user can edit: plots they
// garden directly, plus all plots of gardens they manage. The union is
// deduplicated by plot id; a manager who also gardens one of their own
// plots sees it exactly once.
func (e *Engine) PlotsReachable(ctx context.Context, userID string) ([]domain.Plot, error) {
	direct, err := e.plots.ListByGardener(ctx, userID)
	if err != nil {
		return nil, err
	}

	managed, err := e.gardens.ListManagedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	viaGardens, err := e.plots.ListByGardens(ctx, gardenIDs(managed))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(direct)+len(viaGardens))
	result := make([]domain.Plot, 0, len(direct)+len(viaGardens))
	for _, plot := range append(direct, viaGardens...) {
		if _, ok := seen[plot.ID]; ok {
			continue
		}
		seen[plot.ID] = struct{}{}
		result = append(result, plot)
	}
	return result, nil
}

// OrdersReachable returns every order placed against a plot the user
// can reach.
func (e *Engine) OrdersReachable(ctx context.Context, userID string) ([]domain.Order, error) {
	plots, err := e.PlotsReachable(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.orders.ListByPlots(ctx, plotIDs(plots))
}

// PickerGardens returns the gardens the user picks for.
func (e *Engine) PickerGardens(ctx context.Context, userID string) ([]domain.Garden, error) {
	return e.gardens.ListPickedBy(ctx, userID)
}

// PickerOrders returns every order on gardens the user services as a
// picker, regardless of plot.
func (e *Engine) PickerOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	gardens, err := e.PickerGardens(ctx, userID)
	if err != nil {
		return nil, err
	}
	return e.orders.ListByGardens(ctx, gardenIDs(gardens))
}

// Peers returns every other user sharing a management or gardening
// relation with this one: co-managers of gardens they manage,
// co-gardeners of plots they garden, and (for managers) the gardeners
// of plots inside their gardens. The user is excluded and the result
// is deduplicated, preserving discovery order.
func (e *Engine) Peers(ctx context.Context, userID string) ([]domain.User, error) {
	seen := map[string]struct{}{userID: {}}
	var peerIDs []string
	collect := func(ids []string) {
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			peerIDs = append(peerIDs, id)
		}
	}

	managed, err := e.gardens.ListManagedBy(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range managed {
		collect(managed[i].ManagerIDs)
	}

	managedPlots, err := e.plots.ListByGardens(ctx, gardenIDs(managed))
	if err != nil {
		return nil, err
	}
	for i := range managedPlots {
		collect(managedPlots[i].GardenerIDs)
	}

	gardened, err := e.plots.ListByGardener(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range gardened {
		collect(gardened[i].GardenerIDs)
	}

	if len(peerIDs) == 0 {
		return []domain.User{}, nil
	}
	return e.users.GetByIDs(ctx, peerIDs)
}

// CanEditGarden reports whether the user administers the garden.
// A missing garden simply answers false.
func (e *Engine) CanEditGarden(ctx context.Context, userID, gardenID string) (bool, error) {
	garden, err := e.gardens.GetByID(ctx, gardenID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return garden.HasManager(userID), nil
}

// CanEditPlot reports whether the user gardens the plot directly or
// manages the garden that contains it.
func (e *Engine) CanEditPlot(ctx context.Context, userID, plotID string) (bool, error) {
	plot, err := e.plots.GetByID(ctx, plotID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	if plot.HasGardener(userID) {
		return true, nil
	}
	return e.CanEditGarden(ctx, userID, plot.GardenID)
}

// CanEditOrder follows plot editability: whoever can edit the plot can
// edit every order against it.
func (e *Engine) CanEditOrder(ctx context.Context, userID, orderID string) (bool, error) {
	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return e.CanEditPlot(ctx, userID, order.PlotID)
}

// IsOrderPicker reports whether the user picks for the garden the
// order's plot belongs to.
func (e *Engine) IsOrderPicker(ctx context.Context, userID, orderID string) (bool, error) {
	order, err := e.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	plot, err := e.plots.GetByID(ctx, order.PlotID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	garden, err := e.gardens.GetByID(ctx, plot.GardenID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return garden.HasPicker(userID), nil
}

// CanPickPlot reports whether the user may record a harvest on the
// plot: its gardeners, the garden's managers and the garden's pickers
// all qualify.
func (e *Engine) CanPickPlot(ctx context.Context, userID, plotID string) (bool, error) {
	plot, err := e.plots.GetByID(ctx, plotID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	if plot.HasGardener(userID) {
		return true, nil
	}
	garden, err := e.gardens.GetByID(ctx, plot.GardenID)
	if err != nil {
		return false, ignoreNotFound(err)
	}
	return garden.HasManager(userID) || garden.HasPicker(userID), nil
}

// IsGardener reports whether the user tends at least one plot. Managing
// a garden counts: managers are always considered gardeners, though not
// the other way around.
func (e *Engine) IsGardener(ctx context.Context, userID string) (bool, error) {
	plots, err := e.PlotsReachable(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(plots) > 0, nil
}

// IsGardenManager reports whether the user administers at least one garden.
func (e *Engine) IsGardenManager(ctx context.Context, userID string) (bool, error) {
	gardens, err := e.GardensManaged(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(gardens) > 0, nil
}

// IsPicker reports whether the user picks for at least one garden.
func (e *Engine) IsPicker(ctx context.Context, userID string) (bool, error) {
	gardens, err := e.PickerGardens(ctx, userID)
	if err != nil {
		return false, err
	}
	return len(gardens) > 0, nil
}

// IsAnything reports whether the user holds any gardening or management
// relation at all. The app has nothing to show users without one.
func (e *Engine) IsAnything(ctx context.Context, userID string) (bool, error) {
	gardener, err := e.IsGardener(ctx, userID)
	if err != nil || gardener {
		return gardener, err
	}
	return e.IsGardenManager(ctx, userID)
}

// HasOpenOrders reports whether any plot the user gardens directly has
// an order that is still open as of today. Presentation gating only,
// not an authorization check.
func (e *Engine) HasOpenOrders(ctx context.Context, userID string, today dates.Date) (bool, error) {
	plots, err := e.plots.ListByGardener(ctx, userID)
	if err != nil {
		return false, err
	}
	return e.orders.ExistsOpenByPlots(ctx, plotIDs(plots), today.Time())
}

func gardenIDs(gardens []domain.Garden) []string {
	ids := make([]string, 0, len(gardens))
	for i := range gardens {
		ids = append(ids, gardens[i].ID)
	}
	return ids
}

func plotIDs(plots []domain.Plot) []string {
	ids := make([]string, 0, len(plots))
	for i := range plots {
		ids = append(ids, plots[i].ID)
	}
	return ids
}

func ignoreNotFound(err error) error {
	var dErr *domain.Error
	if errors.As(err, &dErr) && dErr.Code == domain.ErrCodeNotFound {
		return nil
	}
	return err
}
