package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/pkg/dates"
)

var today = dates.New(2018, time.June, 15)

func rangedOrder(startOffset, endOffset int) Order {
	return Order{
		ID:        "order",
		PlotID:    "plot",
		StartDate: today.AddDays(startOffset),
		EndDate:   today.AddDays(endOffset),
	}
}

func TestOrderClassification(t *testing.T) {
	tests := []struct {
		name     string
		order    Order
		open     bool
		upcoming bool
		active   bool
		inactive bool
		closed   bool
	}{
		{
			name:     "finished five days ago",
			order:    rangedOrder(-10, -5),
			inactive: true,
			closed:   true,
		},
		{
			name:   "running, half way through",
			order:  rangedOrder(-5, 5),
			open:   true,
			active: true,
		},
		{
			name:     "not yet started",
			order:    rangedOrder(5, 10),
			open:     true,
			upcoming: true,
			inactive: true,
		},
		{
			name:   "ends today",
			order:  rangedOrder(-5, 0),
			active: true,
		},
		{
			name:   "starts today",
			order:  rangedOrder(0, 5),
			open:   true,
			active: true,
		},
		{
			name: "canceled mid-run",
			order: func() Order {
				o := rangedOrder(-5, 5)
				o.Canceled = true
				return o
			}(),
			inactive: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.open, tc.order.IsOpen(today), "open")
			assert.Equal(t, tc.upcoming, tc.order.IsUpcoming(today), "upcoming")
			assert.Equal(t, tc.active, tc.order.IsActive(today), "active")
			assert.Equal(t, tc.inactive, tc.order.IsInactive(today), "inactive")
			assert.Equal(t, tc.closed, tc.order.IsClosed(today), "closed")
		})
	}
}

func TestClosedNeverActiveOrOpen(t *testing.T) {
	orders := []Order{
		rangedOrder(-10, -5),
		rangedOrder(-5, 5),
		rangedOrder(5, 10),
	}
	for i := range orders {
		if orders[i].IsClosed(today) {
			assert.False(t, orders[i].IsActive(today))
			assert.False(t, orders[i].IsOpen(today))
		}
	}
}

func TestCanceledAlwaysInClosedSet(t *testing.T) {
	canceled := []Order{
		rangedOrder(-10, -5),
		rangedOrder(-5, 5),
		rangedOrder(5, 10),
	}
	for i := range canceled {
		canceled[i].Canceled = true
	}

	closed := ClosedOrders(canceled, today)
	assert.Len(t, closed, len(canceled))
	assert.Empty(t, OpenOrders(canceled, today))
	assert.Empty(t, UpcomingOrders(canceled, today))
	assert.Empty(t, ActiveOrders(canceled, today))
	assert.Len(t, InactiveOrders(canceled, today), len(canceled))
}

func TestOrderSetFilters(t *testing.T) {
	finished := rangedOrder(-10, -5)
	running := rangedOrder(-5, 5)
	scheduled := rangedOrder(5, 10)
	canceled := rangedOrder(-5, 5)
	canceled.Canceled = true

	orders := []Order{finished, running, scheduled, canceled}

	assert.ElementsMatch(t, []Order{running, scheduled}, OpenOrders(orders, today))
	assert.ElementsMatch(t, []Order{finished, canceled}, ClosedOrders(orders, today))
	assert.ElementsMatch(t, []Order{scheduled}, UpcomingOrders(orders, today))
	assert.ElementsMatch(t, []Order{running}, ActiveOrders(orders, today))
	assert.ElementsMatch(t, []Order{finished, scheduled, canceled}, InactiveOrders(orders, today))
}

func TestProgress(t *testing.T) {
	ended := rangedOrder(-10, -5)
	running := rangedOrder(-5, 5)
	scheduled := rangedOrder(5, 10)

	assert.Equal(t, 100, ended.Progress(today))
	assert.InDelta(t, 50, running.Progress(today), 10)
	assert.Equal(t, 0, scheduled.Progress(today))
}

func TestProgressBoundsAndMonotonicity(t *testing.T) {
	order := rangedOrder(-3, 7)

	previous := -1
	for offset := -10; offset <= 20; offset++ {
		day := today.AddDays(offset)
		pct := order.Progress(day)

		assert.GreaterOrEqual(t, pct, 0)
		assert.LessOrEqual(t, pct, 100)
		assert.GreaterOrEqual(t, pct, previous, "progress must not decrease as today advances")
		previous = pct

		if !day.Before(order.EndDate) {
			assert.Equal(t, 100, pct)
		}
	}
}

func TestProgressSingleDayRange(t *testing.T) {
	order := rangedOrder(0, 0)

	assert.Equal(t, 0, order.Progress(today.AddDays(-1)))
	assert.Equal(t, 100, order.Progress(today))
	assert.Equal(t, 100, order.Progress(today.AddDays(1)))
}

func TestOrderValidate(t *testing.T) {
	valid := rangedOrder(0, 5)
	require.NoError(t, valid.Validate())

	sameDay := rangedOrder(2, 2)
	require.NoError(t, sameDay.Validate())

	inverted := rangedOrder(5, 0)
	err := inverted.Validate()
	require.Error(t, err)
	assert.True(t, IsDomainError(err, ErrCodeInvalid))

	var missing Order
	assert.Error(t, missing.Validate())
}
