package handler

import (
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/gardenhub/backend/pkg/httpcontext"
	"github.com/gardenhub/backend/usecase/access"
)

type AccountHandler struct {
	baseHandler
	access *access.Engine
}

func NewAccountHandler(engine *access.Engine, adapter *httpcontext.Adapter, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		baseHandler: newBaseHandler(adapter, logger),
		access:      engine,
	}
}

// @Summary Get the authenticated user
// @Tags account
// @Router /api/v1/me [get]
func (h *AccountHandler) Me(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	user, err := h.access.User(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, user)
}

// @Summary Report the user's derived roles
// @Tags account
// @Router /api/v1/me/roles [get]
func (h *AccountHandler) Roles(ctx *fasthttp.RequestCtx) {
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

	gardener, err := h.access.IsGardener(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	manager, err := h.access.IsGardenManager(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	picker, err := h.access.IsPicker(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	anything, err := h.access.IsAnything(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	hasOpen, err := h.access.HasOpenOrders(stdCtx, userID, today)
	if err != nil {
		h.respondError(ctx, err)
		return
	}

	h.respondSuccess(ctx, http.StatusOK, map[string]interface{}{
		"is_gardener":       gardener,
		"is_garden_manager": manager,
		"is_picker":         picker,
		"is_anything":       anything,
		"has_open_orders":   hasOpen,
	})
}

// @Summary List the user's peers across gardens and plots
// @Tags account
// @Router /api/v1/me/peers [get]
func (h *AccountHandler) Peers(ctx *fasthttp.RequestCtx) {
	userID := h.userID(ctx)
	if userID == "" {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	peers, err := h.access.Peers(stdCtx, userID)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, peers)
}
