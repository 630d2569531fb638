package handlers

import (
	"net/http"

	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
	domainservices "github.com/alfhazis/infinite-canvas-creator-sub001/domain/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/common"
	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Reference footprint used when a create request carries no explicit size.
const (
	defaultNodeWidth  = 360.0
	defaultNodeHeight = 300.0
)

// CanvasHandler handles graph mutations on the in-memory canvas
type CanvasHandler struct {
	canvas *aggregates.Canvas
	layout *domainservices.LayoutService
	logger *zap.Logger
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(canvas *aggregates.Canvas, layout *domainservices.LayoutService, logger *zap.Logger) *CanvasHandler {
	return &CanvasHandler{canvas: canvas, layout: layout, logger: logger}
}

// CanvasView is the JSON shape of the full canvas state
type CanvasView struct {
	Nodes          []NodeView   `json:"nodes"`
	Viewport       ViewportView `json:"viewport"`
	AIModel        string       `json:"aiModel"`
	SelectedNodeID string       `json:"selectedNodeId,omitempty"`
	Dirty          bool         `json:"dirty"`
}

// CreateNodeRequest represents the request body for creating a node
type CreateNodeRequest struct {
	Type        string `json:"type" validate:"required,oneof=idea design code import api cli database payment env"`
	Title       string `json:"title" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`

	// Optional; placement runs when either coordinate is absent.
	X      *float64 `json:"x,omitempty"`
	Y      *float64 `json:"y,omitempty"`
	Width  *float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height *float64 `json:"height,omitempty" validate:"omitempty,gt=0"`

	Content       string                 `json:"content,omitempty"`
	FileName      string                 `json:"fileName,omitempty"`
	GeneratedCode string                 `json:"generatedCode,omitempty"`
	Language      string                 `json:"language,omitempty"`
	AIModel       string                 `json:"aiModel,omitempty"`
	ParentID      string                 `json:"parentId,omitempty"`
	PageRole      string                 `json:"pageRole,omitempty"`
	Tag           string                 `json:"tag,omitempty"`
	Platform      string                 `json:"platform,omitempty" validate:"omitempty,oneof=web mobile api desktop cli database env"`
	ElementLinks  []entities.ElementLink `json:"elementLinks,omitempty"`
	EnvVars       map[string]string      `json:"envVars,omitempty"`
}

// UpdateNodeRequest represents the request body for updating a node
type UpdateNodeRequest struct {
	Title         *string                 `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string                 `json:"description,omitempty" validate:"omitempty,max=2000"`
	X             *float64                `json:"x,omitempty"`
	Y             *float64                `json:"y,omitempty"`
	Width         *float64                `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height        *float64                `json:"height,omitempty" validate:"omitempty,gt=0"`
	Status        *string                 `json:"status,omitempty" validate:"omitempty,oneof=idle generating ready running"`
	Content       *string                 `json:"content,omitempty"`
	FileName      *string                 `json:"fileName,omitempty"`
	GeneratedCode *string                 `json:"generatedCode,omitempty"`
	Language      *string                 `json:"language,omitempty"`
	AIModel       *string                 `json:"aiModel,omitempty"`
	Picked        *bool                   `json:"picked,omitempty"`
	PageRole      *string                 `json:"pageRole,omitempty"`
	Tag           *string                 `json:"tag,omitempty"`
	Platform      *string                 `json:"platform,omitempty" validate:"omitempty,oneof=web mobile api desktop cli database env"`
	ElementLinks  *[]entities.ElementLink `json:"elementLinks,omitempty"`
	EnvVars       *map[string]string      `json:"envVars,omitempty"`
}

// ConnectionRequest represents a from/to pair for connect and disconnect
type ConnectionRequest struct {
	From string `json:"from" validate:"required"`
	To   string `json:"to" validate:"required"`
}

// ViewportRequest represents the request body for viewport updates
type ViewportRequest struct {
	Zoom *float64 `json:"zoom,omitempty" validate:"omitempty,gt=0"`
	PanX *float64 `json:"panX,omitempty"`
	PanY *float64 `json:"panY,omitempty"`
}

// ModelRequest represents the request body for selecting the AI model
type ModelRequest struct {
	AIModel string `json:"aiModel" validate:"required,min=1,max=100"`
}

// DragStartRequest represents the request body for starting a drag gesture
type DragStartRequest struct {
	OffsetX float64 `json:"offsetX"`
	OffsetY float64 `json:"offsetY"`
}

// DragRequest represents a pointer sample during a drag gesture
type DragRequest struct {
	PointerX float64 `json:"pointerX"`
	PointerY float64 `json:"pointerY"`
}

// GetCanvas handles GET /canvas
func (h *CanvasHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	snapshot := h.canvas.TakeSnapshot()

	view := CanvasView{
		Nodes:    nodeViews(snapshot.Nodes),
		Viewport: viewportView(snapshot.Viewport),
		AIModel:  snapshot.AIModel,
		Dirty:    h.canvas.Dirty(),
	}
	if id, ok := h.canvas.SelectedNode(); ok {
		view.SelectedNodeID = id.String()
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// CreateNode handles POST /canvas/nodes. Requests without coordinates go
// through placement so the new node never overlaps an existing one.
func (h *CanvasHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var req CreateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	width, height := defaultNodeWidth, defaultNodeHeight
	if req.Width != nil {
		width = *req.Width
	}
	if req.Height != nil {
		height = *req.Height
	}

	var x, y float64
	if req.X != nil && req.Y != nil {
		x, y = *req.X, *req.Y
	} else {
		existing := make([]domainservices.Rect, 0, h.canvas.NodeCount())
		for _, n := range h.canvas.Nodes() {
			existing = append(existing, domainservices.NodeBounds(n))
		}

		// Anchor the search near the visible center of the viewport.
		vp := h.canvas.Viewport()
		startX := (-vp.PanX + 640) / vp.Zoom
		startY := (-vp.PanY + 360) / vp.Zoom

		pos, err := h.layout.FindFreePosition(existing, width, height, startX, startY)
		if err != nil {
			common.RespondAppError(w, err)
			return
		}
		x, y = pos.X(), pos.Y()
	}

	spec := entities.NodeSpec{
		Type:          entities.NodeType(req.Type),
		Title:         req.Title,
		Description:   req.Description,
		X:             x,
		Y:             y,
		Width:         width,
		Height:        height,
		Content:       req.Content,
		FileName:      req.FileName,
		GeneratedCode: req.GeneratedCode,
		Language:      req.Language,
		AIModel:       req.AIModel,
		ParentID:      req.ParentID,
		PageRole:      req.PageRole,
		Tag:           req.Tag,
		Platform:      entities.Platform(req.Platform),
		ElementLinks:  req.ElementLinks,
		EnvVars:       req.EnvVars,
	}

	id, err := h.canvas.AddNode(spec)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	node, _ := h.canvas.FindNode(id)
	common.RespondJSON(w, http.StatusCreated, nodeView(node))
}

// UpdateNode handles PATCH /canvas/nodes/{nodeID}. An unknown id is a
// silent no-op, matching in-memory graph semantics.
func (h *CanvasHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	var req UpdateNodeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	update := entities.NodeUpdate{
		Title:         req.Title,
		Description:   req.Description,
		X:             req.X,
		Y:             req.Y,
		Width:         req.Width,
		Height:        req.Height,
		Content:       req.Content,
		FileName:      req.FileName,
		GeneratedCode: req.GeneratedCode,
		Language:      req.Language,
		AIModel:       req.AIModel,
		Picked:        req.Picked,
		PageRole:      req.PageRole,
		Tag:           req.Tag,
		ElementLinks:  req.ElementLinks,
		EnvVars:       req.EnvVars,
	}
	if req.Status != nil {
		status := entities.NodeStatus(*req.Status)
		update.Status = &status
	}
	if req.Platform != nil {
		platform := entities.Platform(*req.Platform)
		update.Platform = &platform
	}

	if err := h.canvas.UpdateNode(id, update); err != nil {
		common.RespondAppError(w, err)
		return
	}

	if node, ok := h.canvas.FindNode(id); ok {
		common.RespondJSON(w, http.StatusOK, nodeView(node))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteNode handles DELETE /canvas/nodes/{nodeID}
func (h *CanvasHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	h.canvas.RemoveNode(id)
	w.WriteHeader(http.StatusNoContent)
}

// DuplicateNode handles POST /canvas/nodes/{nodeID}/duplicate
func (h *CanvasHandler) DuplicateNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	copyID, ok := h.canvas.DuplicateNode(id)
	if !ok {
		common.RespondError(w, http.StatusNotFound, "NOT_FOUND", "Node not found")
		return
	}

	node, _ := h.canvas.FindNode(copyID)
	common.RespondJSON(w, http.StatusCreated, nodeView(node))
}

// TogglePick handles POST /canvas/nodes/{nodeID}/pick
func (h *CanvasHandler) TogglePick(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	h.canvas.TogglePick(id)
	if node, ok := h.canvas.FindNode(id); ok {
		common.RespondJSON(w, http.StatusOK, nodeView(node))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectNode handles POST /canvas/nodes/{nodeID}/select
func (h *CanvasHandler) SelectNode(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	h.canvas.SelectNode(id)
	w.WriteHeader(http.StatusNoContent)
}

// Connect handles POST /canvas/connections
func (h *CanvasHandler) Connect(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseConnection(w, r)
	if !ok {
		return
	}
	h.canvas.ConnectNodes(from, to)
	w.WriteHeader(http.StatusNoContent)
}

// Disconnect handles DELETE /canvas/connections
func (h *CanvasHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.parseConnection(w, r)
	if !ok {
		return
	}
	h.canvas.DisconnectNodes(from, to)
	w.WriteHeader(http.StatusNoContent)
}

// StartConnecting handles POST /canvas/connect/start
func (h *CanvasHandler) StartConnecting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		From string `json:"from" validate:"required"`
	}
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	from, err := valueobjects.NewNodeIDFromString(req.From)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	h.canvas.StartConnecting(from)
	w.WriteHeader(http.StatusNoContent)
}

// FinishConnecting handles POST /canvas/connect/finish
func (h *CanvasHandler) FinishConnecting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		To string `json:"to" validate:"required"`
	}
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	to, err := valueobjects.NewNodeIDFromString(req.To)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	h.canvas.FinishConnecting(to)
	w.WriteHeader(http.StatusNoContent)
}

// CancelConnecting handles POST /canvas/connect/cancel
func (h *CanvasHandler) CancelConnecting(w http.ResponseWriter, r *http.Request) {
	h.canvas.CancelConnecting()
	w.WriteHeader(http.StatusNoContent)
}

// StartDrag handles POST /canvas/nodes/{nodeID}/drag/start
func (h *CanvasHandler) StartDrag(w http.ResponseWriter, r *http.Request) {
	id, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	var req DragStartRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	h.canvas.StartDrag(id, req.OffsetX, req.OffsetY)
	w.WriteHeader(http.StatusNoContent)
}

// Drag handles POST /canvas/drag
func (h *CanvasHandler) Drag(w http.ResponseWriter, r *http.Request) {
	var req DragRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	h.canvas.Drag(req.PointerX, req.PointerY)
	w.WriteHeader(http.StatusNoContent)
}

// EndDrag handles POST /canvas/drag/end
func (h *CanvasHandler) EndDrag(w http.ResponseWriter, r *http.Request) {
	h.canvas.EndDrag()
	w.WriteHeader(http.StatusNoContent)
}

// UpdateViewport handles PUT /canvas/viewport. Zoom clamps to its bounds
// rather than erroring.
func (h *CanvasHandler) UpdateViewport(w http.ResponseWriter, r *http.Request) {
	var req ViewportRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	if req.Zoom != nil {
		h.canvas.SetZoom(*req.Zoom)
	}
	if req.PanX != nil || req.PanY != nil {
		vp := h.canvas.Viewport()
		x, y := vp.PanX, vp.PanY
		if req.PanX != nil {
			x = *req.PanX
		}
		if req.PanY != nil {
			y = *req.PanY
		}
		h.canvas.SetPan(x, y)
	}

	common.RespondJSON(w, http.StatusOK, viewportView(h.canvas.Viewport()))
}

// SetModel handles PUT /canvas/model
func (h *CanvasHandler) SetModel(w http.ResponseWriter, r *http.Request) {
	var req ModelRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	h.canvas.SetAIModel(req.AIModel)
	w.WriteHeader(http.StatusNoContent)
}

// ClearCanvas handles POST /canvas/clear
func (h *CanvasHandler) ClearCanvas(w http.ResponseWriter, r *http.Request) {
	h.canvas.ClearAll()
	w.WriteHeader(http.StatusNoContent)
}

func (h *CanvasHandler) parseConnection(w http.ResponseWriter, r *http.Request) (valueobjects.NodeID, valueobjects.NodeID, bool) {
	var req ConnectionRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}

	from, err := valueobjects.NewNodeIDFromString(req.From)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	to, err := valueobjects.NewNodeIDFromString(req.To)
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return valueobjects.NodeID{}, valueobjects.NodeID{}, false
	}
	return from, to, true
}
