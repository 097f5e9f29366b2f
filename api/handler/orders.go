package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/api/transport"
	"github.com/gardenhub/backend/domain"
	"github.com/gardenhub/backend/pkg/dates"
	"github.com/gardenhub/backend/pkg/httpcontext"
	ordersUC "github.com/gardenhub/backend/usecase/orders"
)

type OrderHandler struct {
	baseHandler
	uc *ordersUC.UseCase
}

func NewOrderHandler(uc *ordersUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List reachable orders, optionally narrowed by status
// @Tags orders
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	status, err := ordersUC.ParseStatus(string(ctx.QueryArgs().Peek("status")))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	today, ok := h.today(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.uc.ListForUser(stdCtx, userID, status, today)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, orders)
}

// @Summary List the picker's working set (active orders)
// @Tags orders
// @Router /api/v1/orders/picking [get]
func (h *OrderHandler) ListForPicker(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	today, ok := h.today(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	orders, err := h.uc.ListForPicker(stdCtx, userID, today)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, orders)
}

// @Summary Get an order with its current classification
// @Tags orders
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orderID, _ := ctx.UserValue("id").(string)
	today, ok := h.today(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.GetForUser(stdCtx, userID, orderID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	picked, err := h.uc.WasPickedToday(stdCtx, order, today)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"order":        order,
		"is_open":      order.IsOpen(today),
		"is_active":    order.IsActive(today),
		"is_closed":    order.IsClosed(today),
		"progress":     order.Progress(today),
		"picked_today": picked,
	})
}

// @Summary Place an order on a plot
// @Tags orders
// @Router /api/v1/orders [post]
func (h *OrderHandler) Place(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	var req transport.OrderRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil || req.PlotID == "" {
		h.respondInvalid(ctx, "plot_id is required")
		return
	}

	start, err := dates.Parse(req.StartDate)
	if err != nil {
		h.respondInvalid(ctx, "start_date must be formatted YYYY-MM-DD")
		return
	}
	end, err := dates.Parse(req.EndDate)
	if err != nil {
		h.respondInvalid(ctx, "end_date must be formatted YYYY-MM-DD")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	order, err := h.uc.PlaceForUser(stdCtx, userID, &domain.Order{
		PlotID:    req.PlotID,
		StartDate: start,
		EndDate:   end,
		CropIDs:   req.CropIDs,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, order)
}

// @Summary Cancel an order
// @Tags orders
// @Router /api/v1/orders/{id} [delete]
func (h *OrderHandler) Cancel(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	orderID, _ := ctx.UserValue("id").(string)

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.CancelForUser(stdCtx, userID, orderID); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Record a harvest on a plot
// @Tags picks
// @Router /api/v1/plots/{id}/picks [post]
func (h *OrderHandler) RecordPick(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}
	plotID, _ := ctx.UserValue("id").(string)

	var req transport.PickRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			h.respondInvalid(ctx, "invalid payload")
			return
		}
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	pick, err := h.uc.RecordPick(stdCtx, &domain.Pick{
		PlotID:   plotID,
		PickerID: userID,
		CropIDs:  req.CropIDs,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, pick)
}
