package orders_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/internal/testkit"
	"github.com/gardenhub/backend/pkg/dates"
	"github.com/gardenhub/backend/usecase"
	"github.com/gardenhub/backend/usecase/access"
	"github.com/gardenhub/backend/usecase/orders"
)

var today = dates.New(2018, time.June, 15)

type recordingMailer struct {
	sent []usecase.Mail
}

func (m *recordingMailer) Send(_ context.Context, mail usecase.Mail) error {
	m.sent = append(m.sent, mail)
	return nil
}

type fixture struct {
	store    *testkit.Store
	uc       *orders.UseCase
	mailer   *recordingMailer
	gardener *domain.User
	plot     *domain.Plot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testkit.NewStore()
	mailer := &recordingMailer{}
	engine := access.New(store.Users(), store.Gardens(), store.Plots(), store.Orders(), nil)
	uc := orders.New(store.Orders(), store.Plots(), store.Picks(), engine, mailer, nil)

	gardener := store.SeedUser("gardener@example.com")
	plot := store.SeedPlot(store.SeedGarden("Garden"), "1")
	store.AddGardener(plot, gardener)

	return &fixture{store: store, uc: uc, mailer: mailer, gardener: gardener, plot: plot}
}

func (f *fixture) seedOrder(startOffset, endOffset int, canceled bool) *domain.Order {
	return f.store.SeedOrder(domain.Order{
		PlotID:      f.plot.ID,
		RequesterID: f.gardener.ID,
		StartDate:   today.AddDays(startOffset),
		EndDate:     today.AddDays(endOffset),
		Canceled:    canceled,
	})
}

func TestParseStatus(t *testing.T) {
	for _, valid := range []string{"", "open", "closed", "upcoming", "active", "inactive", "picked_today", "unpicked_today"} {
		_, err := orders.ParseStatus(valid)
		assert.NoError(t, err, valid)
	}
	_, err := orders.ParseStatus("finished")
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
}

func TestListForUserClassifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	finished := f.seedOrder(-10, -5, false)
	running := f.seedOrder(-5, 5, false)
	scheduled := f.seedOrder(5, 10, false)
	canceled := f.seedOrder(-5, 5, true)

	cases := map[orders.Status][]string{
		orders.StatusAll:      {finished.ID, running.ID, scheduled.ID, canceled.ID},
		orders.StatusOpen:     {running.ID, scheduled.ID},
		orders.StatusClosed:   {finished.ID, canceled.ID},
		orders.StatusUpcoming: {scheduled.ID},
		orders.StatusActive:   {running.ID},
		orders.StatusInactive: {finished.ID, scheduled.ID, canceled.ID},
	}

	for status, expected := range cases {
		got, err := f.uc.ListForUser(ctx, f.gardener.ID, status, today)
		require.NoError(t, err, status)
		assert.ElementsMatch(t, expected, orderIDs(got), "status %q", status)
	}
}

func TestListForUserPickPartition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	onPicked := f.seedOrder(-5, 5, false)

	// Second plot with no picks today.
	otherPlot := f.store.SeedPlot(f.store.SeedGarden("Other"), "2")
	f.store.AddGardener(otherPlot, f.gardener)
	unpicked := f.store.SeedOrder(domain.Order{
		PlotID:      otherPlot.ID,
		RequesterID: f.gardener.ID,
		StartDate:   today.AddDays(-5),
		EndDate:     today.AddDays(5),
	})

	picker := f.store.SeedUser("picker@example.com")
	f.store.SeedPick(domain.Pick{
		PlotID:    f.plot.ID,
		PickerID:  picker.ID,
		Timestamp: today.Time().Add(9 * time.Hour),
	})
	// A pick from yesterday does not count for the other plot.
	f.store.SeedPick(domain.Pick{
		PlotID:    otherPlot.ID,
		PickerID:  picker.ID,
		Timestamp: today.Time().Add(-2 * time.Hour),
	})

	got, err := f.uc.ListForUser(ctx, f.gardener.ID, orders.StatusPickedToday, today)
	require.NoError(t, err)
	assert.Equal(t, []string{onPicked.ID}, orderIDs(got))

	got, err = f.uc.ListForUser(ctx, f.gardener.ID, orders.StatusUnpickedToday, today)
	require.NoError(t, err)
	assert.Equal(t, []string{unpicked.ID}, orderIDs(got))
}

func TestWasPickedToday(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.seedOrder(-5, 5, false)

	was, err := f.uc.WasPickedToday(ctx, order, today)
	require.NoError(t, err)
	assert.False(t, was)

	picker := f.store.SeedUser("picker@example.com")
	f.store.SeedPick(domain.Pick{
		PlotID:    f.plot.ID,
		PickerID:  picker.ID,
		Timestamp: today.Time().Add(time.Hour),
	})

	was, err = f.uc.WasPickedToday(ctx, order, today)
	require.NoError(t, err)
	assert.True(t, was)
}

func TestListForPickerShowsOnlyActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	picker := f.store.SeedUser("picker@example.com")
	garden, err := f.store.Gardens().GetByID(ctx, f.plot.GardenID)
	require.NoError(t, err)
	f.store.AddPicker(garden, picker)

	running := f.seedOrder(-5, 5, false)
	f.seedOrder(-10, -5, false)
	f.seedOrder(5, 10, false)
	f.seedOrder(-5, 5, true)

	got, err := f.uc.ListForPicker(ctx, picker.ID, today)
	require.NoError(t, err)
	assert.Equal(t, []string{running.ID}, orderIDs(got))
}

func TestPlaceValidatesDateRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.uc.Place(ctx, &domain.Order{
		PlotID:      f.plot.ID,
		RequesterID: f.gardener.ID,
		StartDate:   today,
		EndDate:     today.AddDays(5),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, placed.ID)

	_, err = f.uc.Place(ctx, &domain.Order{
		PlotID:      f.plot.ID,
		RequesterID: f.gardener.ID,
		StartDate:   today.AddDays(5),
		EndDate:     today,
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = f.uc.Place(ctx, &domain.Order{
		PlotID:      "missing-plot",
		RequesterID: f.gardener.ID,
		StartDate:   today,
		EndDate:     today.AddDays(5),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestPlaceForUserRequiresPlotRelation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	placed, err := f.uc.PlaceForUser(ctx, f.gardener.ID, &domain.Order{
		PlotID:    f.plot.ID,
		StartDate: today,
		EndDate:   today.AddDays(5),
	})
	require.NoError(t, err)
	assert.Equal(t, f.gardener.ID, placed.RequesterID)

	garden, err := f.store.Gardens().GetByID(ctx, f.plot.GardenID)
	require.NoError(t, err)
	manager := f.store.SeedUser("manager@example.com")
	f.store.AddManager(garden, manager)
	_, err = f.uc.PlaceForUser(ctx, manager.ID, &domain.Order{
		PlotID:    f.plot.ID,
		StartDate: today,
		EndDate:   today.AddDays(5),
	})
	require.NoError(t, err)

	outsider := f.store.SeedUser("outsider@example.com")
	_, err = f.uc.PlaceForUser(ctx, outsider.ID, &domain.Order{
		PlotID:    f.plot.ID,
		StartDate: today,
		EndDate:   today.AddDays(5),
	})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))

	_, err = f.uc.PlaceForUser(ctx, outsider.ID, &domain.Order{
		PlotID:    "missing-plot",
		StartDate: today,
		EndDate:   today.AddDays(5),
	})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestCancelRetiresOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order := f.seedOrder(-5, 5, false)
	require.NoError(t, f.uc.Cancel(ctx, order.ID))

	got, err := f.uc.ListForUser(ctx, f.gardener.ID, orders.StatusClosed, today)
	require.NoError(t, err)
	assert.Equal(t, []string{order.ID}, orderIDs(got))

	err = f.uc.Cancel(ctx, "missing")
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestRecordPickNotifiesInquirers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	requester := f.store.SeedUser("requester@example.com")
	f.store.SeedOrder(domain.Order{
		PlotID:      f.plot.ID,
		RequesterID: requester.ID,
		StartDate:   today.AddDays(-5),
		EndDate:     today.AddDays(5),
	})
	picker := f.store.SeedUser("picker@example.com")
	garden, err := f.store.Gardens().GetByID(ctx, f.plot.GardenID)
	require.NoError(t, err)
	f.store.AddPicker(garden, picker)

	pick, err := f.uc.RecordPick(ctx, &domain.Pick{
		PlotID:   f.plot.ID,
		PickerID: picker.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, pick.ID)

	var recipients []string
	for _, mail := range f.mailer.sent {
		recipients = append(recipients, mail.To)
	}
	assert.ElementsMatch(t, []string{"gardener@example.com", "requester@example.com"}, recipients)

	_, err = f.uc.RecordPick(ctx, &domain.Pick{PlotID: "missing", PickerID: picker.ID})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	_, err = f.uc.RecordPick(ctx, &domain.Pick{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	stranger := f.store.SeedUser("stranger@example.com")
	_, err = f.uc.RecordPick(ctx, &domain.Pick{PlotID: f.plot.ID, PickerID: stranger.ID})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeForbidden))
}

func orderIDs(list []domain.Order) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		out = append(out, o.ID)
	}
	return out
}
