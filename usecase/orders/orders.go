// Package orders owns the order lifecycle: placing and canceling
// orders, recording picks, and classifying order collections relative
// to an injected "today".
package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/pkg/dates"
	"github.com/gardenhub/backend/repository"
	"github.com/gardenhub/backend/usecase"
	"github.com/gardenhub/backend/usecase/access"
)

// Status names a lifecycle classification requested by the caller.
type Status string

const (
	StatusAll           Status = ""
	StatusOpen          Status = "open"
	StatusClosed        Status = "closed"
	StatusUpcoming      Status = "upcoming"
	StatusActive        Status = "active"
	StatusInactive      Status = "inactive"
	StatusPickedToday   Status = "picked_today"
	StatusUnpickedToday Status = "unpicked_today"
)

// ParseStatus validates a caller-supplied status string.
func ParseStatus(value string) (Status, error) {
	switch s := Status(value); s {
	case StatusAll, StatusOpen, StatusClosed, StatusUpcoming,
		StatusActive, StatusInactive, StatusPickedToday, StatusUnpickedToday:
		return s, nil
	default:
		return StatusAll, domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("unknown order status %q", value))
	}
}

type UseCase struct {
	orders repository.OrderRepository
	plots  repository.PlotRepository
	picks  repository.PickRepository
	access *access.Engine
	mailer usecase.Mailer
	logger *zap.Logger
}

func New(
	orders repository.OrderRepository,
	plots repository.PlotRepository,
	picks repository.PickRepository,
	accessEngine *access.Engine,
	mailer usecase.Mailer,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		orders: orders,
		plots:  plots,
		picks:  picks,
		access: accessEngine,
		mailer: mailer,
		logger: logger,
	}
}

// ListForUser returns the user's reachable orders narrowed to the
// requested classification as of today.
func (uc *UseCase) ListForUser(ctx context.Context, userID string, status Status, today dates.Date) ([]domain.Order, error) {
	reachable, err := uc.access.OrdersReachable(ctx, userID)
	if err != nil {
		return nil, err
	}
	return uc.classify(ctx, reachable, status, today)
}

// ListForPicker returns the active orders on gardens the user services,
// the working set for a picker's day.
func (uc *UseCase) ListForPicker(ctx context.Context, userID string, today dates.Date) ([]domain.Order, error) {
	orders, err := uc.access.PickerOrders(ctx, userID)
	if err != nil {
		return nil, err
	}
	return domain.ActiveOrders(orders, today), nil
}

// Get loads a single order.
func (uc *UseCase) Get(ctx context.Context, id string) (*domain.Order, error) {
	return uc.orders.GetByID(ctx, id)
}

// Place validates and stores a new order against a plot.
func (uc *UseCase) Place(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, domain.ErrInvalidPayload
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	if _, err := uc.plots.GetByID(ctx, order.PlotID); err != nil {
		return nil, err
	}
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	return uc.orders.Create(ctx, order)
}

// PlaceForUser stores a new order on behalf of userID, who becomes its
// requester and must be able to edit the target plot. A missing plot
// reports not-found before the permission check runs.
func (uc *UseCase) PlaceForUser(ctx context.Context, userID string, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, domain.ErrInvalidPayload
	}
	if _, err := uc.plots.GetByID(ctx, order.PlotID); err != nil {
		return nil, err
	}
	canEdit, err := uc.access.CanEditPlot(ctx, userID, order.PlotID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, domain.ErrForbidden
	}
	order.RequesterID = userID
	return uc.Place(ctx, order)
}

// GetForUser loads an order the user can see: plot gardeners, garden
// managers and the garden's pickers qualify.
func (uc *UseCase) GetForUser(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	canEdit, err := uc.access.CanEditOrder(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		isPicker, err := uc.access.IsOrderPicker(ctx, userID, orderID)
		if err != nil {
			return nil, err
		}
		if !isPicker {
			return nil, domain.ErrForbidden
		}
	}
	return order, nil
}

// Cancel retires an order. Orders are never deleted; canceling is the
// only way to take one out of circulation before its end date.
func (uc *UseCase) Cancel(ctx context.Context, id string) error {
	return uc.orders.Cancel(ctx, id)
}

// CancelForUser retires an order on behalf of a user who can edit it.
func (uc *UseCase) CancelForUser(ctx context.Context, userID, orderID string) error {
	canEdit, err := uc.access.CanEditOrder(ctx, userID, orderID)
	if err != nil {
		return err
	}
	if !canEdit {
		return domain.ErrForbidden
	}
	return uc.orders.Cancel(ctx, orderID)
}

// WasPickedToday reports whether the order's plot has at least one pick
// recorded since the start of today.
func (uc *UseCase) WasPickedToday(ctx context.Context, order *domain.Order, today dates.Date) (bool, error) {
	if order == nil {
		return false, nil
	}
	return uc.picks.ExistsOnPlotSince(ctx, order.PlotID, today.Time())
}

// RecordPick stores a harvest record and notifies the plot's inquirers
// (its gardeners and order requesters). Notification failures are
// logged, never surfaced: the pick itself is already recorded.
func (uc *UseCase) RecordPick(ctx context.Context, pick *domain.Pick) (*domain.Pick, error) {
	if pick == nil || pick.PlotID == "" || pick.PickerID == "" {
		return nil, domain.ErrInvalidPayload
	}
	plot, err := uc.plots.GetByID(ctx, pick.PlotID)
	if err != nil {
		return nil, err
	}
	allowed, err := uc.access.CanPickPlot(ctx, pick.PickerID, pick.PlotID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, domain.ErrForbidden
	}
	if pick.ID == "" {
		pick.ID = uuid.NewString()
	}
	created, err := uc.picks.Create(ctx, pick)
	if err != nil {
		return nil, err
	}

	uc.notifyInquirers(ctx, plot)
	return created, nil
}

func (uc *UseCase) notifyInquirers(ctx context.Context, plot *domain.Plot) {
	if uc.mailer == nil {
		return
	}
	inquirers, err := uc.picks.Inquirers(ctx, plot.ID)
	if err != nil {
		uc.logger.Warn("failed to resolve pick inquirers",
			zap.String("plot_id", plot.ID), zap.Error(err))
		return
	}
	for i := range inquirers {
		mail := usecase.Mail{
			To:      inquirers[i].Email,
			Subject: fmt.Sprintf("A harvest was recorded on plot %s", plot.Title),
			Body: fmt.Sprintf(
				"Hello!\n\nA picker just recorded a harvest on plot %s. "+
					"Log in to GardenHub to see the details.\n", plot.Title),
		}
		if err := uc.mailer.Send(ctx, mail); err != nil {
			uc.logger.Warn("pick notification dispatch failed",
				zap.String("to", inquirers[i].Email), zap.Error(err))
		}
	}
}

func (uc *UseCase) classify(ctx context.Context, orders []domain.Order, status Status, today dates.Date) ([]domain.Order, error) {
	switch status {
	case StatusAll:
		return orders, nil
	case StatusOpen:
		return domain.OpenOrders(orders, today), nil
	case StatusClosed:
		return domain.ClosedOrders(orders, today), nil
	case StatusUpcoming:
		return domain.UpcomingOrders(orders, today), nil
	case StatusActive:
		return domain.ActiveOrders(orders, today), nil
	case StatusInactive:
		return domain.InactiveOrders(orders, today), nil
	case StatusPickedToday, StatusUnpickedToday:
		return uc.partitionByPicks(ctx, orders, status, today)
	default:
		return nil, domain.NewError(domain.ErrCodeInvalid,
			fmt.Sprintf("unknown order status %q", status))
	}
}

// partitionByPicks keeps orders whose plot does (or does not) have a
// pick from today. Plot lookups are memoized per call; picks on one
// plot settle every order against it.
func (uc *UseCase) partitionByPicks(ctx context.Context, orders []domain.Order, status Status, today dates.Date) ([]domain.Order, error) {
	wantPicked := status == StatusPickedToday
	picked := make(map[string]bool)

	result := make([]domain.Order, 0, len(orders))
	for i := range orders {
		plotID := orders[i].PlotID
		was, ok := picked[plotID]
		if !ok {
			var err error
			was, err = uc.picks.ExistsOnPlotSince(ctx, plotID, today.Time())
			if err != nil {
				return nil, err
			}
			picked[plotID] = was
		}
		if was == wantPicked {
			result = append(result, orders[i])
		}
	}
	return result, nil
}
