package handlers

import (
	"net/http"

	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	domainservices "github.com/alfhazis/infinite-canvas-creator-sub001/domain/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/common"
	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/utils"

	"go.uber.org/zap"
)

// AssemblyHandler exposes the pick order and document composition
type AssemblyHandler struct {
	canvas   *aggregates.Canvas
	order    *domainservices.PickOrder
	assembly *domainservices.AssemblyService
	logger   *zap.Logger
}

// NewAssemblyHandler creates a new assembly handler
func NewAssemblyHandler(
	canvas *aggregates.Canvas,
	order *domainservices.PickOrder,
	assembly *domainservices.AssemblyService,
	logger *zap.Logger,
) *AssemblyHandler {
	return &AssemblyHandler{canvas: canvas, order: order, assembly: assembly, logger: logger}
}

// ReorderRequest represents the request body for moving a picked node
type ReorderRequest struct {
	Index     int    `json:"index" validate:"gte=0"`
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

// AssemblyView is the JSON shape of the composed document plus its inputs
type AssemblyView struct {
	Nodes []NodeView `json:"nodes"`
	HTML  string     `json:"html"`
}

// GetOrder handles GET /assembly/order
func (h *AssemblyHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ordered := h.order.Resolve(h.canvas.Nodes())
	common.RespondJSON(w, http.StatusOK, nodeViews(ordered))
}

// Reorder handles POST /assembly/order. Boundary moves are silent no-ops.
func (h *AssemblyHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req ReorderRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	nodes := h.canvas.Nodes()
	if req.Direction == "up" {
		h.order.MoveUp(nodes, req.Index)
	} else {
		h.order.MoveDown(nodes, req.Index)
	}

	ordered := h.order.Resolve(nodes)
	common.RespondJSON(w, http.StatusOK, nodeViews(ordered))
}

// Compose handles GET /assembly. Zero picked nodes yield an empty document.
func (h *AssemblyHandler) Compose(w http.ResponseWriter, r *http.Request) {
	ordered := h.order.Resolve(h.canvas.Nodes())
	html := h.assembly.Compose(ordered)

	common.RespondJSON(w, http.StatusOK, AssemblyView{
		Nodes: nodeViews(ordered),
		HTML:  html,
	})
}

// Preview handles GET /assembly/preview, serving the document itself
func (h *AssemblyHandler) Preview(w http.ResponseWriter, r *http.Request) {
	ordered := h.order.Resolve(h.canvas.Nodes())
	html := h.assembly.Compose(ordered)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		h.logger.Error("Failed to write assembly preview", zap.Error(err))
	}
}
