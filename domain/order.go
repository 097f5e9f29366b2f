package domain

import (
	"time"

	"github.com/gardenhub/backend/pkg/dates"
)

// Order is a date-ranged request for crops to be picked from a plot.
// Orders are never deleted; they retire when canceled or when their end
// date elapses. Lifecycle state is a pure function of the date range,
// the canceled flag and an externally supplied "today" - there is no
// stored status column and classification must not be cached across
// date boundaries.
type Order struct {
	ID          string     `json:"id"`
	PlotID      string     `json:"plot_id"`
	RequesterID string     `json:"requester_id"`
	StartDate   dates.Date `json:"start_date"`
	EndDate     dates.Date `json:"end_date"`
	Canceled    bool       `json:"canceled"`
	CropIDs     []string   `json:"crop_ids,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsOpen reports whether the order has not finished, though it may not
// have begun. Canceled orders are never open.
func (o *Order) IsOpen(today dates.Date) bool {
	return o != nil && !o.Canceled && o.EndDate.After(today)
}

// IsUpcoming reports whether the order is scheduled but has not begun.
func (o *Order) IsUpcoming(today dates.Date) bool {
	return o != nil && !o.Canceled && o.StartDate.After(today)
}

// IsActive reports whether the order is happening right now. Both ends
// of the range are inclusive.
func (o *Order) IsActive(today dates.Date) bool {
	return o != nil && !o.Canceled &&
		!o.StartDate.After(today) && !o.EndDate.Before(today)
}

// IsInactive reports whether the order isn't happening right now, for
// any reason: finished, not yet started, or canceled.
func (o *Order) IsInactive(today dates.Date) bool {
	return o != nil && (o.Canceled || o.EndDate.Before(today) || o.StartDate.After(today))
}

// IsClosed reports whether the order's end date has passed. Canceled is
// a separate axis: the set-level closed filter unions canceled orders
// in, but this per-order check stays strictly date based.
func (o *Order) IsClosed(today dates.Date) bool {
	return o != nil && o.EndDate.Before(today)
}

// Progress returns the elapsed share of the order's date range as of
// today, clamped to [0, 100]. A one-day range jumps straight from 0 to
// 100 once its day arrives.
func (o *Order) Progress(today dates.Date) int {
	if o == nil {
		return 0
	}
	span := o.StartDate.DaysUntil(o.EndDate)
	if span <= 0 {
		if o.StartDate.After(today) {
			return 0
		}
		return 100
	}
	elapsed := o.StartDate.DaysUntil(today)
	pct := 100 * elapsed / span
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Validate enforces the structural invariant on the date range.
func (o *Order) Validate() error {
	if o == nil {
		return ErrInvalidPayload
	}
	if o.StartDate.IsZero() || o.EndDate.IsZero() {
		return NewError(ErrCodeInvalid, "order requires both start and end dates")
	}
	if o.EndDate.Before(o.StartDate) {
		return NewError(ErrCodeInvalid, "order end date precedes start date")
	}
	return nil
}

// Pick records a harvest action performed on a plot at a point in time,
// usually on behalf of an absent gardener.
type Pick struct {
	ID        string    `json:"id"`
	PlotID    string    `json:"plot_id"`
	PickerID  string    `json:"picker_id"`
	CropIDs   []string  `json:"crop_ids,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// OpenOrders filters orders that have not finished and are not canceled.
func OpenOrders(orders []Order, today dates.Date) []Order {
	return filterOrders(orders, func(o *Order) bool { return o.IsOpen(today) })
}

// ClosedOrders filters orders that have finished or were canceled.
// The union is implicit: either condition closes the order.
func ClosedOrders(orders []Order, today dates.Date) []Order {
	return filterOrders(orders, func(o *Order) bool { return o.Canceled || o.IsClosed(today) })
}

// UpcomingOrders filters orders that are scheduled but have not begun.
func UpcomingOrders(orders []Order, today dates.Date) []Order {
	return filterOrders(orders, func(o *Order) bool { return o.IsUpcoming(today) })
}

// ActiveOrders filters orders happening right now.
func ActiveOrders(orders []Order, today dates.Date) []Order {
	return filterOrders(orders, func(o *Order) bool { return o.IsActive(today) })
}

// InactiveOrders filters orders that aren't happening right now.
func InactiveOrders(orders []Order, today dates.Date) []Order {
	return filterOrders(orders, func(o *Order) bool { return o.IsInactive(today) })
}

func filterOrders(orders []Order, keep func(*Order) bool) []Order {
	result := make([]Order, 0, len(orders))
	for i := range orders {
		if keep(&orders[i]) {
			result = append(result, orders[i])
		}
	}
	return result
}
