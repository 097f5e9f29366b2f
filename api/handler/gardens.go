package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/api/transport"
	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/pkg/httpcontext"
	gardensUC "github.com/gardenhub/backend/usecase/gardens"
	inviteUC "github.com/gardenhub/backend/usecase/invite"
)

type GardenHandler struct {
	baseHandler
	uc *gardensUC.UseCase
}

func NewGardenHandler(uc *gardensUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *GardenHandler {
	return &GardenHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List gardens the user manages
// @Tags gardens
// @Router /api/v1/gardens [get]
func (h *GardenHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	var (
		gardens []domain.Garden
		err     error
	)
	if string(ctx.QueryArgs().Peek("role")) == "picker" {
		gardens, err = h.uc.ListPicked(stdCtx, userID)
	} else {
		gardens, err = h.uc.ListManaged(stdCtx, userID)
	}
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, gardens)
}

// @Summary Get a garden
// @Tags gardens
// @Router /api/v1/gardens/{id} [get]
func (h *GardenHandler) Get(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	gardenID, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	garden, err := h.uc.Get(stdCtx, userID, gardenID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, garden)
}

// @Summary Create a garden
// @Tags gardens
// @Router /api/v1/gardens [post]
func (h *GardenHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.GardenRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Title == "" {
		h.respondInvalid(ctx, "title is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	garden, err := h.uc.Create(stdCtx, userID, &domain.Garden{
		Title:   req.Title,
		Address: req.Address,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, garden)
}

// @Summary Update a garden
// @Tags gardens
// @Router /api/v1/gardens/{id} [put]
func (h *GardenHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	gardenID, _ := ctx.UserValue("id").(string)

	var req transport.GardenRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Title == "" {
		h.respondInvalid(ctx, "title is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	garden := &domain.Garden{ID: gardenID, Title: req.Title, Address: req.Address}
	if err := h.uc.Update(stdCtx, userID, garden); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, garden)
}

// @Summary Delete a garden and its plots
// @Tags gardens
// @Router /api/v1/gardens/{id} [delete]
func (h *GardenHandler) Delete(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	gardenID, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, userID, gardenID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Assign managers by email, inviting unknown addresses
// @Tags gardens
// @Router /api/v1/gardens/{id}/managers [post]
func (h *GardenHandler) AssignManagers(ctx *fasthttp.RequestCtx) {
	h.assign(ctx, h.uc.AssignManagers)
}

// @Summary Assign pickers by email, inviting unknown addresses
// @Tags gardens
// @Router /api/v1/gardens/{id}/pickers [post]
func (h *GardenHandler) AssignPickers(ctx *fasthttp.RequestCtx) {
	h.assign(ctx, h.uc.AssignPickers)
}

// @Summary Remove a manager
// @Tags gardens
// @Router /api/v1/gardens/{id}/managers/{userID} [delete]
func (h *GardenHandler) RemoveManager(ctx *fasthttp.RequestCtx) {
	h.removeMember(ctx, h.uc.RemoveManager)
}

// @Summary Remove a picker
// @Tags gardens
// @Router /api/v1/gardens/{id}/pickers/{userID} [delete]
func (h *GardenHandler) RemovePicker(ctx *fasthttp.RequestCtx) {
	h.removeMember(ctx, h.uc.RemovePicker)
}

type assignFunc func(ctx context.Context, actorID, gardenID string, emails []string) (inviteUC.Result, error)

func (h *GardenHandler) assign(ctx *fasthttp.RequestCtx, fn assignFunc) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	gardenID, _ := ctx.UserValue("id").(string)

	var req transport.AssignRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.Emails) == 0 {
		h.respondInvalid(ctx, "emails are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := fn(stdCtx, userID, gardenID, req.Emails)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, assignResponse(result))
}

func (h *GardenHandler) removeMember(ctx *fasthttp.RequestCtx, fn func(ctx context.Context, actorID, gardenID, userID string) error) {
	actorID := h.userID(ctx)
	if actorID == "" {
		return
	}
	gardenID, _ := ctx.UserValue("id").(string)
	memberID, _ := ctx.UserValue("userID").(string)
	if memberID == "" {
		h.respondInvalid(ctx, "missing user id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := fn(stdCtx, actorID, gardenID, memberID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

func assignResponse(result inviteUC.Result) map[string]interface{} {
	payload := map[string]interface{}{
		"users":            result.Users,
		"invitations_sent": result.InvitationsSent,
	}
	if result.Warnings != nil {
		payload["warnings"] = result.Warnings.Error()
	}
	return payload
}
