// Package testkit provides in-memory repository implementations for
// exercising the use cases without a database.
package testkit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/pkg/dates"
	"github.com/gardenhub/backend/repository"
)

// Store keeps every entity in memory. Per-entity views satisfy the
// repository interfaces while sharing one dataset, so relation walks
// (orders via plots via gardens) behave like the real schema.
type Store struct {
	mu sync.Mutex

	users   []*domain.User
	gardens []*domain.Garden
	plots   []*domain.Plot
	orders  []*domain.Order
	picks   []*domain.Pick
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Users() repository.UserRepository     { return userView{s} }
func (s *Store) Gardens() repository.GardenRepository { return gardenView{s} }
func (s *Store) Plots() repository.PlotRepository     { return plotView{s} }
func (s *Store) Orders() repository.OrderRepository   { return orderView{s} }
func (s *Store) Picks() repository.PickRepository     { return pickView{s} }

// Fixture helpers ----------------------------------------------------

func (s *Store) SeedUser(email string) *domain.User {
	user := &domain.User{
		ID:       uuid.NewString(),
		Email:    email,
		IsActive: true,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, user)
	return user
}

func (s *Store) SeedGarden(title string) *domain.Garden {
	garden := &domain.Garden{
		ID:    uuid.NewString(),
		Title: title,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gardens = append(s.gardens, garden)
	return garden
}

func (s *Store) SeedPlot(garden *domain.Garden, title string) *domain.Plot {
	plot := &domain.Plot{
		ID:       uuid.NewString(),
		GardenID: garden.ID,
		Title:    title,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plots = append(s.plots, plot)
	return plot
}

func (s *Store) SeedOrder(order domain.Order) *domain.Order {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := order
	s.orders = append(s.orders, &copied)
	return &copied
}

func (s *Store) SeedPick(pick domain.Pick) *domain.Pick {
	if pick.ID == "" {
		pick.ID = uuid.NewString()
	}
	if pick.Timestamp.IsZero() {
		pick.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := pick
	s.picks = append(s.picks, &copied)
	return &copied
}

func (s *Store) AddManager(garden *domain.Garden, users ...*domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.garden(garden.ID)
	for _, u := range users {
		if !g.HasManager(u.ID) {
			g.ManagerIDs = append(g.ManagerIDs, u.ID)
		}
	}
	garden.ManagerIDs = g.ManagerIDs
}

func (s *Store) AddPicker(garden *domain.Garden, users ...*domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.garden(garden.ID)
	for _, u := range users {
		if !g.HasPicker(u.ID) {
			g.PickerIDs = append(g.PickerIDs, u.ID)
		}
	}
	garden.PickerIDs = g.PickerIDs
}

func (s *Store) AddGardener(plot *domain.Plot, users ...*domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.plot(plot.ID)
	for _, u := range users {
		if !p.HasGardener(u.ID) {
			p.GardenerIDs = append(p.GardenerIDs, u.ID)
		}
	}
	plot.GardenerIDs = p.GardenerIDs
}

func (s *Store) garden(id string) *domain.Garden {
	for _, g := range s.gardens {
		if g.ID == id {
			return g
		}
	}
	return nil
}

func (s *Store) plot(id string) *domain.Plot {
	for _, p := range s.plots {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// UserRepository -----------------------------------------------------

type userView struct{ s *Store }

func (v userView) GetByID(_ context.Context, id string) (*domain.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (v userView) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (v userView) GetByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		for _, u := range v.s.users {
			if u.ID == id {
				result = append(result, *u)
				break
			}
		}
	}
	return result, nil
}

func (v userView) Create(_ context.Context, user *domain.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, existing := range v.s.users {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	v.s.users = append(v.s.users, &copied)
	return nil
}

func (v userView) Update(_ context.Context, user *domain.User) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i, existing := range v.s.users {
		if existing.ID == user.ID {
			copied := *user
			copied.UpdatedAt = time.Now()
			v.s.users[i] = &copied
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (v userView) ConsumeActivationToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrTokenNotFound
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, u := range v.s.users {
		if u.ActivationToken == token {
			u.IsActive = true
			u.ActivationToken = ""
			copied := *u
			return &copied, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

// GardenRepository ---------------------------------------------------

type gardenView struct{ s *Store }

func (v gardenView) GetByID(_ context.Context, id string) (*domain.Garden, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if g := v.s.garden(id); g != nil {
		copied := *g
		return &copied, nil
	}
	return nil, domain.ErrGardenNotFound
}

func (v gardenView) List(_ context.Context) ([]domain.Garden, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := make([]domain.Garden, 0, len(v.s.gardens))
	for _, g := range v.s.gardens {
		result = append(result, *g)
	}
	return result, nil
}

func (v gardenView) ListManagedBy(_ context.Context, userID string) ([]domain.Garden, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Garden{}
	for _, g := range v.s.gardens {
		if g.HasManager(userID) {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (v gardenView) ListPickedBy(_ context.Context, userID string) ([]domain.Garden, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Garden{}
	for _, g := range v.s.gardens {
		if g.HasPicker(userID) {
			result = append(result, *g)
		}
	}
	return result, nil
}

func (v gardenView) Create(_ context.Context, garden *domain.Garden) (*domain.Garden, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if garden.ID == "" {
		garden.ID = uuid.NewString()
	}
	copied := *garden
	v.s.gardens = append(v.s.gardens, &copied)
	return garden, nil
}

func (v gardenView) Update(_ context.Context, garden *domain.Garden) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if existing := v.s.garden(garden.ID); existing != nil {
		*existing = *garden
		return nil
	}
	return domain.ErrGardenNotFound
}

func (v gardenView) Delete(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for i, g := range v.s.gardens {
		if g.ID == id {
			v.s.gardens = append(v.s.gardens[:i], v.s.gardens[i+1:]...)
			// cascade, like the FK does
			kept := v.s.plots[:0]
			for _, p := range v.s.plots {
				if p.GardenID != id {
					kept = append(kept, p)
				}
			}
			v.s.plots = kept
			return nil
		}
	}
	return domain.ErrGardenNotFound
}

func (v gardenView) AddManager(_ context.Context, gardenID, userID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	g := v.s.garden(gardenID)
	if g == nil {
		return domain.ErrGardenNotFound
	}
	if !g.HasManager(userID) {
		g.ManagerIDs = append(g.ManagerIDs, userID)
	}
	return nil
}

func (v gardenView) RemoveManager(_ context.Context, gardenID, userID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	g := v.s.garden(gardenID)
	if g == nil {
		return domain.ErrGardenNotFound
	}
	g.ManagerIDs = removeID(g.ManagerIDs, userID)
	return nil
}

func (v gardenView) AddPicker(_ context.Context, gardenID, userID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	g := v.s.garden(gardenID)
	if g == nil {
		return domain.ErrGardenNotFound
	}
	if !g.HasPicker(userID) {
		g.PickerIDs = append(g.PickerIDs, userID)
	}
	return nil
}

func (v gardenView) RemovePicker(_ context.Context, gardenID, userID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	g := v.s.garden(gardenID)
	if g == nil {
		return domain.ErrGardenNotFound
	}
	g.PickerIDs = removeID(g.PickerIDs, userID)
	return nil
}

// PlotRepository -----------------------------------------------------

type plotView struct{ s *Store }

func (v plotView) GetByID(_ context.Context, id string) (*domain.Plot, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if p := v.s.plot(id); p != nil {
		copied := *p
		return &copied, nil
	}
	return nil, domain.ErrPlotNotFound
}

func (v plotView) ListByGarden(_ context.Context, gardenID string) ([]domain.Plot, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Plot{}
	for _, p := range v.s.plots {
		if p.GardenID == gardenID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (v plotView) ListByGardens(_ context.Context, gardenIDs []string) ([]domain.Plot, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Plot{}
	for _, id := range gardenIDs {
		for _, p := range v.s.plots {
			if p.GardenID == id {
				result = append(result, *p)
			}
		}
	}
	return result, nil
}

func (v plotView) ListByGardener(_ context.Context, userID string) ([]domain.Plot, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Plot{}
	for _, p := range v.s.plots {
		if p.HasGardener(userID) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (v plotView) Create(_ context.Context, plot *domain.Plot) (*domain.Plot, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if plot.ID == "" {
		plot.ID = uuid.NewString()
	}
	copied := *plot
	v.s.plots = append(v.s.plots, &copied)
	return plot, nil
}

func (v plotView) Update(_ context.Context, plot *domain.Plot) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if existing := v.s.plot(plot.ID); existing != nil {
		*existing = *plot
		return nil
	}
	return domain.ErrPlotNotFound
}

func (v plotView) AddGardener(_ context.Context, plotID, userID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p := v.s.plot(plotID)
	if p == nil {
		return domain.ErrPlotNotFound
	}
	if !p.HasGardener(userID) {
		p.GardenerIDs = append(p.GardenerIDs, userID)
	}
	return nil
}

func (v plotView) RemoveGardener(_ context.Context, plotID, userID string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p := v.s.plot(plotID)
	if p == nil {
		return domain.ErrPlotNotFound
	}
	p.GardenerIDs = removeID(p.GardenerIDs, userID)
	return nil
}

func (v plotView) SetCrops(_ context.Context, plotID string, cropIDs []string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	p := v.s.plot(plotID)
	if p == nil {
		return domain.ErrPlotNotFound
	}
	p.CropIDs = append([]string(nil), cropIDs...)
	return nil
}

// OrderRepository ----------------------------------------------------

type orderView struct{ s *Store }

func (v orderView) GetByID(_ context.Context, id string) (*domain.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, o := range v.s.orders {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (v orderView) ListByPlot(_ context.Context, plotID string) ([]domain.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Order{}
	for _, o := range v.s.orders {
		if o.PlotID == plotID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (v orderView) ListByPlots(_ context.Context, plotIDs []string) ([]domain.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Order{}
	for _, id := range plotIDs {
		for _, o := range v.s.orders {
			if o.PlotID == id {
				result = append(result, *o)
			}
		}
	}
	return result, nil
}

func (v orderView) ExistsOpenByPlots(_ context.Context, plotIDs []string, today time.Time) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	day := dates.FromTime(today)
	for _, id := range plotIDs {
		for _, o := range v.s.orders {
			if o.PlotID == id && o.IsOpen(day) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (v orderView) ListByGardens(_ context.Context, gardenIDs []string) ([]domain.Order, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Order{}
	for _, gid := range gardenIDs {
		for _, p := range v.s.plots {
			if p.GardenID != gid {
				continue
			}
			for _, o := range v.s.orders {
				if o.PlotID == p.ID {
					result = append(result, *o)
				}
			}
		}
	}
	return result, nil
}

func (v orderView) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	copied := *order
	v.s.orders = append(v.s.orders, &copied)
	return order, nil
}

func (v orderView) Cancel(_ context.Context, id string) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, o := range v.s.orders {
		if o.ID == id {
			o.Canceled = true
			o.UpdatedAt = time.Now()
			return nil
		}
	}
	return domain.ErrOrderNotFound
}

// PickRepository -----------------------------------------------------

type pickView struct{ s *Store }

func (v pickView) Create(_ context.Context, pick *domain.Pick) (*domain.Pick, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if pick.ID == "" {
		pick.ID = uuid.NewString()
	}
	if pick.Timestamp.IsZero() {
		pick.Timestamp = time.Now()
	}
	copied := *pick
	v.s.picks = append(v.s.picks, &copied)
	return pick, nil
}

func (v pickView) ListByPlot(_ context.Context, plotID string) ([]domain.Pick, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	result := []domain.Pick{}
	for _, p := range v.s.picks {
		if p.PlotID == plotID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (v pickView) ExistsOnPlotSince(_ context.Context, plotID string, since time.Time) (bool, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, p := range v.s.picks {
		if p.PlotID == plotID && !p.Timestamp.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (v pickView) Inquirers(ctx context.Context, plotID string) ([]domain.User, error) {
	v.s.mu.Lock()
	plot := v.s.plot(plotID)
	if plot == nil {
		v.s.mu.Unlock()
		return []domain.User{}, nil
	}
	seen := map[string]struct{}{}
	var ids []string
	collect := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for _, id := range plot.GardenerIDs {
		collect(id)
	}
	for _, o := range v.s.orders {
		if o.PlotID == plotID {
			collect(o.RequesterID)
		}
	}
	v.s.mu.Unlock()
	return userView{v.s}.GetByIDs(ctx, ids)
}

func removeID(ids []string, id string) []string {
	kept := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			kept = append(kept, candidate)
		}
	}
	return kept
}
