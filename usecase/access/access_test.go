package access_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/internal/testkit"
	"github.com/gardenhub/backend/pkg/dates"
	"github.com/gardenhub/backend/usecase/access"
)

func newEngine(store *testkit.Store) *access.Engine {
	return access.New(store.Users(), store.Gardens(), store.Plots(), store.Orders(), nil)
}

func TestUserWithNoRelationships(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	nobody := store.SeedUser("nobody@example.com")
	engine := newEngine(store)

	gardens, err := engine.GardensManaged(ctx, nobody.ID)
	require.NoError(t, err)
	assert.Empty(t, gardens)

	plots, err := engine.PlotsReachable(ctx, nobody.ID)
	require.NoError(t, err)
	assert.Empty(t, plots)

	orders, err := engine.OrdersReachable(ctx, nobody.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)

	peers, err := engine.Peers(ctx, nobody.ID)
	require.NoError(t, err)
	assert.Empty(t, peers)

	for name, check := range map[string]func(context.Context, string) (bool, error){
		"gardener": engine.IsGardener,
		"manager":  engine.IsGardenManager,
		"picker":   engine.IsPicker,
		"anything": engine.IsAnything,
	} {
		ok, err := check(ctx, nobody.ID)
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}
}

func TestUnknownUserYieldsEmptyNotError(t *testing.T) {
	ctx := context.Background()
	engine := newEngine(testkit.NewStore())

	plots, err := engine.PlotsReachable(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Empty(t, plots)

	ok, err := engine.CanEditPlot(ctx, "does-not-exist", "also-missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = engine.CanEditGarden(ctx, "does-not-exist", "also-missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = engine.CanEditOrder(ctx, "does-not-exist", "also-missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGardensManaged(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	manager := store.SeedUser("manager@example.com")

	var expected []string
	for i := 0; i < 4; i++ {
		garden := store.SeedGarden("Garden")
		store.AddManager(garden, manager)
		expected = append(expected, garden.ID)
	}
	store.SeedGarden("Unmanaged")

	gardens, err := newEngine(store).GardensManaged(ctx, manager.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, expected, ids(gardens))
}

func TestPlotsReachable(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	engine := newEngine(store)

	// Exclusively a gardener on one plot.
	gardener := store.SeedUser("gardener@example.com")
	garden := store.SeedGarden("Garden A")
	plot := store.SeedPlot(garden, "1")
	store.AddGardener(plot, gardener)

	reachable, err := engine.PlotsReachable(ctx, gardener.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{plot.ID}, plotIDs(reachable))

	// Exclusively a manager: reaches every plot of the garden.
	manager := store.SeedUser("manager@example.com")
	managed := store.SeedGarden("Garden B")
	store.AddManager(managed, manager)
	var expected []string
	for i := 0; i < 5; i++ {
		p := store.SeedPlot(managed, "plot")
		expected = append(expected, p.ID)
	}

	reachable, err = engine.PlotsReachable(ctx, manager.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, expected, plotIDs(reachable))
}

func TestPlotsReachableDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()

	// A manager who also gardens a plot inside their own garden must
	// see that plot exactly once.
	godlike := store.SeedUser("godlike@example.com")
	garden := store.SeedGarden("Garden")
	store.AddManager(garden, godlike)
	inside := store.SeedPlot(garden, "inside")
	store.AddGardener(inside, godlike)
	other := store.SeedPlot(garden, "other")
	outside := store.SeedPlot(store.SeedGarden("Elsewhere"), "outside")
	store.AddGardener(outside, godlike)

	reachable, err := newEngine(store).PlotsReachable(ctx, godlike.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{inside.ID, other.ID, outside.ID}, plotIDs(reachable))

	counts := map[string]int{}
	for _, p := range reachable {
		counts[p.ID]++
	}
	assert.Equal(t, 1, counts[inside.ID], "managed+gardened plot must appear exactly once")
}

func TestOrdersReachable(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	gardener := store.SeedUser("gardener@example.com")
	requester := store.SeedUser("requester@example.com")
	plot := store.SeedPlot(store.SeedGarden("Garden"), "1")
	store.AddGardener(plot, gardener)

	var expected []string
	for i := 0; i < 5; i++ {
		o := store.SeedOrder(domain.Order{
			PlotID:      plot.ID,
			RequesterID: requester.ID,
			StartDate:   dates.New(2017, time.January, 1),
			EndDate:     dates.New(2017, time.January, 5),
		})
		expected = append(expected, o.ID)
	}

	// Noise on an unrelated plot.
	store.SeedOrder(domain.Order{
		PlotID:      store.SeedPlot(store.SeedGarden("Other"), "x").ID,
		RequesterID: requester.ID,
		StartDate:   dates.New(2017, time.January, 1),
		EndDate:     dates.New(2017, time.January, 5),
	})

	orders, err := newEngine(store).OrdersReachable(ctx, gardener.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, expected, orderIDs(orders))
}

func TestPickerGardensAndOrders(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	picker := store.SeedUser("picker@example.com")
	requester := store.SeedUser("requester@example.com")

	garden := store.SeedGarden("Garden A")
	store.AddPicker(garden, picker)
	plotA := store.SeedPlot(garden, "1")
	plotB := store.SeedPlot(garden, "2")
	store.SeedGarden("Not serviced")

	var expected []string
	for _, plot := range []*domain.Plot{plotA, plotB} {
		o := store.SeedOrder(domain.Order{
			PlotID:      plot.ID,
			RequesterID: requester.ID,
			StartDate:   dates.New(2017, time.January, 1),
			EndDate:     dates.New(2017, time.January, 5),
		})
		expected = append(expected, o.ID)
	}

	engine := newEngine(store)

	gardens, err := engine.PickerGardens(ctx, picker.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{garden.ID}, ids(gardens))

	// Pickers see every order on gardens they service, whatever the plot.
	orders, err := engine.PickerOrders(ctx, picker.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, expected, orderIDs(orders))

	isPicker, err := engine.IsPicker(ctx, picker.ID)
	require.NoError(t, err)
	assert.True(t, isPicker)
}

func TestPeers(t *testing.T) {
	store := testkit.NewStore()
	engine := newEngine(store)

	users := make([]*domain.User, 10)
	for i := range users {
		users[i] = store.SeedUser("peer@example.com")
	}

	// Garden with 2 managers and 1 plot with 1 gardener.
	g0 := store.SeedGarden("G0")
	store.AddManager(g0, users[0], users[1])
	p0 := store.SeedPlot(g0, "1")
	store.AddGardener(p0, users[2])
	assertPeers(t, engine, users[0], users[1], users[2])
	assertPeers(t, engine, users[1], users[0], users[2])
	assertPeers(t, engine, users[2])

	// Garden with 2 managers and no plots.
	g1 := store.SeedGarden("G1")
	store.AddManager(g1, users[3], users[4])
	assertPeers(t, engine, users[3], users[4])
	assertPeers(t, engine, users[4], users[3])

	// Plot with 2 direct co-gardeners.
	g2 := store.SeedGarden("G2")
	p1 := store.SeedPlot(g2, "2")
	store.AddGardener(p1, users[5], users[6])
	assertPeers(t, engine, users[5], users[6])
	assertPeers(t, engine, users[6], users[5])

	// Garden with 1 manager and 2 plots, each with 1 gardener. The
	// manager sees both gardeners; the gardeners see nobody (their
	// plots have no co-gardeners and they manage nothing).
	g3 := store.SeedGarden("G3")
	store.AddManager(g3, users[7])
	p2 := store.SeedPlot(g3, "3")
	p3 := store.SeedPlot(g3, "4")
	store.AddGardener(p2, users[8])
	store.AddGardener(p3, users[9])
	assertPeers(t, engine, users[7], users[8], users[9])
	assertPeers(t, engine, users[8])
	assertPeers(t, engine, users[9])
}

func assertPeers(t *testing.T, engine *access.Engine, user *domain.User, expected ...*domain.User) {
	t.Helper()
	peers, err := engine.Peers(context.Background(), user.ID)
	require.NoError(t, err)

	var expectedIDs []string
	for _, u := range expected {
		expectedIDs = append(expectedIDs, u.ID)
	}
	var got []string
	for _, u := range peers {
		got = append(got, u.ID)
	}
	assert.ElementsMatch(t, expectedIDs, got)
}

func TestCanEditPlotBranches(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	engine := newEngine(store)

	garden := store.SeedGarden("Garden")
	plot := store.SeedPlot(garden, "1")

	gardener := store.SeedUser("gardener@example.com")
	store.AddGardener(plot, gardener)
	manager := store.SeedUser("manager@example.com")
	store.AddManager(garden, manager)
	outsider := store.SeedUser("outsider@example.com")

	// Direct gardener.
	ok, err := engine.CanEditPlot(ctx, gardener.ID, plot.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Manager of the containing garden.
	ok, err = engine.CanEditPlot(ctx, manager.ID, plot.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	// Neither.
	ok, err = engine.CanEditPlot(ctx, outsider.ID, plot.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCanEditGardenAndOrder(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	engine := newEngine(store)

	garden := store.SeedGarden("Garden")
	plot := store.SeedPlot(garden, "1")
	manager := store.SeedUser("manager@example.com")
	store.AddManager(garden, manager)
	gardener := store.SeedUser("gardener@example.com")
	store.AddGardener(plot, gardener)
	outsider := store.SeedUser("outsider@example.com")

	order := store.SeedOrder(domain.Order{
		PlotID:      plot.ID,
		RequesterID: gardener.ID,
		StartDate:   dates.New(2018, time.May, 1),
		EndDate:     dates.New(2018, time.May, 10),
	})

	ok, err := engine.CanEditGarden(ctx, manager.ID, garden.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.CanEditGarden(ctx, gardener.ID, garden.ID)
	require.NoError(t, err)
	assert.False(t, ok, "gardeners do not edit the garden itself")

	// Order editability follows plot editability for both roles.
	for _, user := range []*domain.User{manager, gardener} {
		ok, err = engine.CanEditOrder(ctx, user.ID, order.ID)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err = engine.CanEditOrder(ctx, outsider.ID, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsOrderPicker(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	engine := newEngine(store)

	garden := store.SeedGarden("Garden")
	plot := store.SeedPlot(garden, "1")
	picker := store.SeedUser("picker@example.com")
	store.AddPicker(garden, picker)
	requester := store.SeedUser("requester@example.com")

	order := store.SeedOrder(domain.Order{
		PlotID:      plot.ID,
		RequesterID: requester.ID,
		StartDate:   dates.New(2018, time.May, 1),
		EndDate:     dates.New(2018, time.May, 10),
	})

	ok, err := engine.IsOrderPicker(ctx, picker.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = engine.IsOrderPicker(ctx, requester.ID, order.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManagerCountsAsGardener(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	engine := newEngine(store)

	garden := store.SeedGarden("Garden")
	store.SeedPlot(garden, "1")
	manager := store.SeedUser("manager@example.com")
	store.AddManager(garden, manager)

	gardener, err := engine.IsGardener(ctx, manager.ID)
	require.NoError(t, err)
	assert.True(t, gardener, "managing implies gardener status")

	// The reverse does not hold.
	plot := store.SeedPlot(store.SeedGarden("Other"), "2")
	direct := store.SeedUser("direct@example.com")
	store.AddGardener(plot, direct)

	isManager, err := engine.IsGardenManager(ctx, direct.ID)
	require.NoError(t, err)
	assert.False(t, isManager)

	anything, err := engine.IsAnything(ctx, direct.ID)
	require.NoError(t, err)
	assert.True(t, anything)
}

func TestHasOpenOrders(t *testing.T) {
	ctx := context.Background()
	store := testkit.NewStore()
	engine := newEngine(store)
	today := dates.New(2018, time.June, 15)

	gardener := store.SeedUser("gardener@example.com")
	plot := store.SeedPlot(store.SeedGarden("Garden"), "1")
	store.AddGardener(plot, gardener)

	ok, err := engine.HasOpenOrders(ctx, gardener.ID, today)
	require.NoError(t, err)
	assert.False(t, ok)

	// A finished order does not count.
	store.SeedOrder(domain.Order{
		PlotID:      plot.ID,
		RequesterID: gardener.ID,
		StartDate:   today.AddDays(-10),
		EndDate:     today.AddDays(-5),
	})
	ok, err = engine.HasOpenOrders(ctx, gardener.ID, today)
	require.NoError(t, err)
	assert.False(t, ok)

	// An open one does.
	store.SeedOrder(domain.Order{
		PlotID:      plot.ID,
		RequesterID: gardener.ID,
		StartDate:   today.AddDays(-1),
		EndDate:     today.AddDays(5),
	})
	ok, err = engine.HasOpenOrders(ctx, gardener.ID, today)
	require.NoError(t, err)
	assert.True(t, ok)
}

func ids(gardens []domain.Garden) []string {
	out := make([]string, 0, len(gardens))
	for _, g := range gardens {
		out = append(out, g.ID)
	}
	return out
}

func plotIDs(plots []domain.Plot) []string {
	out := make([]string, 0, len(plots))
	for _, p := range plots {
		out = append(out, p.ID)
	}
	return out
}

func orderIDs(orders []domain.Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}
