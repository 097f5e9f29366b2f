package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/api/transport"
	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/pkg/httpcontext"
	gardensUC "github.com/gardenhub/backend/usecase/gardens"
)

type PlotHandler struct {
	baseHandler
	uc *gardensUC.UseCase
}

func NewPlotHandler(uc *gardensUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *PlotHandler {
	return &PlotHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List plots reachable by the user
// @Tags plots
// @Router /api/v1/plots [get]
func (h *PlotHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	plots, err := h.uc.ListPlots(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, plots)
}

// @Summary Get a plot
// @Tags plots
// @Router /api/v1/plots/{id} [get]
func (h *PlotHandler) Get(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	plotID, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	plot, err := h.uc.GetPlot(stdCtx, userID, plotID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, plot)
}

// @Summary Create a plot in a managed garden
// @Tags plots
// @Router /api/v1/plots [post]
func (h *PlotHandler) Create(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.PlotRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Title == "" || req.GardenID == "" {
		h.respondInvalid(ctx, "garden_id and title are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	plot, err := h.uc.CreatePlot(stdCtx, userID, &domain.Plot{
		GardenID: req.GardenID,
		Title:    req.Title,
		CropIDs:  req.CropIDs,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, plot)
}

// @Summary Update a plot
// @Tags plots
// @Router /api/v1/plots/{id} [put]
func (h *PlotHandler) Update(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	plotID, _ := ctx.UserValue("id").(string)

	var req transport.PlotRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.Title == "" {
		h.respondInvalid(ctx, "title is required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	plot := &domain.Plot{ID: plotID, GardenID: req.GardenID, Title: req.Title}
	if err := h.uc.UpdatePlot(stdCtx, userID, plot); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, plot)
}

// @Summary Assign gardeners by email, inviting unknown addresses
// @Tags plots
// @Router /api/v1/plots/{id}/gardeners [post]
func (h *PlotHandler) AssignGardeners(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	plotID, _ := ctx.UserValue("id").(string)

	var req transport.AssignRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || len(req.Emails) == 0 {
		h.respondInvalid(ctx, "emails are required")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.uc.AssignGardeners(stdCtx, userID, plotID, req.Emails)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, assignResponse(result))
}

// @Summary Remove a gardener from a plot
// @Tags plots
// @Router /api/v1/plots/{id}/gardeners/{userID} [delete]
func (h *PlotHandler) RemoveGardener(ctx *fasthttp.RequestCtx) {
	actorID := h.userID(ctx)
	if actorID == "" {
		return
	}
	plotID, _ := ctx.UserValue("id").(string)
	memberID, _ := ctx.UserValue("userID").(string)
	if memberID == "" {
		h.respondInvalid(ctx, "missing user id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.RemoveGardener(stdCtx, actorID, plotID, memberID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Replace the crops planted on a plot
// @Tags plots
// @Router /api/v1/plots/{id}/crops [put]
func (h *PlotHandler) SetCrops(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	plotID, _ := ctx.UserValue("id").(string)

	var req transport.CropsRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetPlotCrops(stdCtx, userID, plotID, req.CropIDs); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary List the crop catalog
// @Tags crops
// @Router /api/v1/crops [get]
func (h *PlotHandler) ListCrops(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	crops, err := h.uc.ListCrops(stdCtx)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, crops)
}
