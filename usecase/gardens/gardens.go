// Package gardens manages gardens and their plots: CRUD guarded by the
// edit rules, plus membership assignment by email through the invite
// workflow.
package gardens

import (
	"context"

	"go.uber.org/zap"

	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/repository"
	"github.com/gardenhub/backend/usecase/access"
	"github.com/gardenhub/backend/usecase/invite"
)

type UseCase struct {
	gardens repository.GardenRepository
	plots   repository.PlotRepository
	crops   repository.CropRepository
	access  *access.Engine
	invites *invite.UseCase
	logger  *zap.Logger
}

func New(
	gardens repository.GardenRepository,
	plots repository.PlotRepository,
	crops repository.CropRepository,
	accessEngine *access.Engine,
	invites *invite.UseCase,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		gardens: gardens,
		plots:   plots,
		crops:   crops,
		access:  accessEngine,
		invites: invites,
		logger:  logger,
	}
}

// ListManaged returns the gardens the user manages.
func (uc *UseCase) ListManaged(ctx context.Context, userID string) ([]domain.Garden, error) {
	return uc.access.GardensManaged(ctx, userID)
}

// ListPicked returns the gardens the user services as a picker.
func (uc *UseCase) ListPicked(ctx context.Context, userID string) ([]domain.Garden, error) {
	return uc.access.PickerGardens(ctx, userID)
}

// Get loads a garden the user is allowed to see. Managers and pickers
// see the garden itself; gardeners of its plots see it too, since they
// reach plots within it.
func (uc *UseCase) Get(ctx context.Context, userID, gardenID string) (*domain.Garden, error) {
	garden, err := uc.gardens.GetByID(ctx, gardenID)
	if err != nil {
		return nil, err
	}
	if garden.HasManager(userID) || garden.HasPicker(userID) {
		return garden, nil
	}

	plots, err := uc.access.PlotsReachable(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, plot := range plots {
		if plot.GardenID == gardenID {
			return garden, nil
		}
	}
	return nil, domain.ErrForbidden
}

// Create stores a garden. The creator always ends up a manager, so a
// fresh garden is never orphaned.
func (uc *UseCase) Create(ctx context.Context, creatorID string, garden *domain.Garden) (*domain.Garden, error) {
	if garden == nil || garden.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	if !garden.HasManager(creatorID) {
		garden.ManagerIDs = append(garden.ManagerIDs, creatorID)
	}
	return uc.gardens.Create(ctx, garden)
}

// Update rewrites the garden's own fields. Membership changes go
// through the assignment operations instead.
func (uc *UseCase) Update(ctx context.Context, userID string, garden *domain.Garden) error {
	if garden == nil {
		return domain.ErrInvalidPayload
	}
	if err := uc.requireGardenEdit(ctx, userID, garden.ID); err != nil {
		return err
	}
	return uc.gardens.Update(ctx, garden)
}

// Delete removes the garden and everything in it.
func (uc *UseCase) Delete(ctx context.Context, userID, gardenID string) error {
	if err := uc.requireGardenEdit(ctx, userID, gardenID); err != nil {
		return err
	}
	return uc.gardens.Delete(ctx, gardenID)
}

// AssignManagers resolves the emails through the invite workflow and
// adds every resolved user as a manager. Unknown addresses become
// invited inactive accounts that gain access once activated.
func (uc *UseCase) AssignManagers(ctx context.Context, actorID, gardenID string, emails []string) (invite.Result, error) {
	return uc.assignToGarden(ctx, actorID, gardenID, emails, uc.gardens.AddManager)
}

// AssignPickers does the same for the picker role.
func (uc *UseCase) AssignPickers(ctx context.Context, actorID, gardenID string, emails []string) (invite.Result, error) {
	return uc.assignToGarden(ctx, actorID, gardenID, emails, uc.gardens.AddPicker)
}

// RemoveManager drops a manager from the garden.
func (uc *UseCase) RemoveManager(ctx context.Context, actorID, gardenID, userID string) error {
	if err := uc.requireGardenEdit(ctx, actorID, gardenID); err != nil {
		return err
	}
	return uc.gardens.RemoveManager(ctx, gardenID, userID)
}

// RemovePicker drops a picker from the garden.
func (uc *UseCase) RemovePicker(ctx context.Context, actorID, gardenID, userID string) error {
	if err := uc.requireGardenEdit(ctx, actorID, gardenID); err != nil {
		return err
	}
	return uc.gardens.RemovePicker(ctx, gardenID, userID)
}

// ListPlots returns the plots the user can reach across all gardens.
func (uc *UseCase) ListPlots(ctx context.Context, userID string) ([]domain.Plot, error) {
	return uc.access.PlotsReachable(ctx, userID)
}

// GetPlot loads a plot the user can edit.
func (uc *UseCase) GetPlot(ctx context.Context, userID, plotID string) (*domain.Plot, error) {
	ok, err := uc.access.CanEditPlot(ctx, userID, plotID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrForbidden
	}
	return uc.plots.GetByID(ctx, plotID)
}

// CreatePlot adds a plot to a garden the actor manages.
func (uc *UseCase) CreatePlot(ctx context.Context, actorID string, plot *domain.Plot) (*domain.Plot, error) {
	if plot == nil || plot.Title == "" || plot.GardenID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := uc.requireGardenEdit(ctx, actorID, plot.GardenID); err != nil {
		return nil, err
	}
	return uc.plots.Create(ctx, plot)
}

// UpdatePlot rewrites a plot's own fields.
func (uc *UseCase) UpdatePlot(ctx context.Context, actorID string, plot *domain.Plot) error {
	if plot == nil {
		return domain.ErrInvalidPayload
	}
	if err := uc.requirePlotEdit(ctx, actorID, plot.ID); err != nil {
		return err
	}
	return uc.plots.Update(ctx, plot)
}

// AssignGardeners resolves emails through the invite workflow and adds
// every resolved user as a gardener of the plot.
func (uc *UseCase) AssignGardeners(ctx context.Context, actorID, plotID string, emails []string) (invite.Result, error) {
	if err := uc.requirePlotEdit(ctx, actorID, plotID); err != nil {
		return invite.Result{}, err
	}
	actor, err := uc.access.User(ctx, actorID)
	if err != nil {
		return invite.Result{}, err
	}

	result, err := uc.invites.GetOrInvite(ctx, emails, actor)
	if err != nil {
		return result, err
	}
	for _, user := range result.Users {
		if err := uc.plots.AddGardener(ctx, plotID, user.ID); err != nil {
			return result, err
		}
	}
	return result, nil
}

// RemoveGardener drops a gardener from the plot.
func (uc *UseCase) RemoveGardener(ctx context.Context, actorID, plotID, userID string) error {
	if err := uc.requirePlotEdit(ctx, actorID, plotID); err != nil {
		return err
	}
	return uc.plots.RemoveGardener(ctx, plotID, userID)
}

// SetPlotCrops replaces the crops planted on the plot, validating each
// crop id first.
func (uc *UseCase) SetPlotCrops(ctx context.Context, actorID, plotID string, cropIDs []string) error {
	if err := uc.requirePlotEdit(ctx, actorID, plotID); err != nil {
		return err
	}
	for _, cropID := range cropIDs {
		if _, err := uc.crops.GetByID(ctx, cropID); err != nil {
			return err
		}
	}
	return uc.plots.SetCrops(ctx, plotID, cropIDs)
}

// ListCrops returns the crop catalog.
func (uc *UseCase) ListCrops(ctx context.Context) ([]domain.Crop, error) {
	return uc.crops.List(ctx)
}

func (uc *UseCase) assignToGarden(
	ctx context.Context,
	actorID, gardenID string,
	emails []string,
	add func(ctx context.Context, gardenID, userID string) error,
) (invite.Result, error) {
	if err := uc.requireGardenEdit(ctx, actorID, gardenID); err != nil {
		return invite.Result{}, err
	}
	actor, err := uc.access.User(ctx, actorID)
	if err != nil {
		return invite.Result{}, err
	}

	result, err := uc.invites.GetOrInvite(ctx, emails, actor)
	if err != nil {
		return result, err
	}
	for _, user := range result.Users {
		if err := add(ctx, gardenID, user.ID); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (uc *UseCase) requireGardenEdit(ctx context.Context, userID, gardenID string) error {
	ok, err := uc.access.CanEditGarden(ctx, userID, gardenID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}

func (uc *UseCase) requirePlotEdit(ctx context.Context, userID, plotID string) error {
	ok, err := uc.access.CanEditPlot(ctx, userID, plotID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrForbidden
	}
	return nil
}
