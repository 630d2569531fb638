package handlers

import (
	"net/http"
	"time"

	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	"github.com/alfhazis/infinite-canvas-creator-sub001/application/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/common"
	"github.com/alfhazis/infinite-canvas-creator-sub001/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ProjectHandler handles project lifecycle HTTP requests
type ProjectHandler struct {
	projects *services.ProjectService
	logger   *zap.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *services.ProjectService, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

// CreateProjectRequest represents the request body for creating a project
type CreateProjectRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
}

// UpdateProjectRequest represents the request body for updating project metadata
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	AIModel     *string `json:"aiModel,omitempty" validate:"omitempty,min=1,max=100"`
}

// SessionView describes the active project and save state
type SessionView struct {
	ActiveProjectID string     `json:"activeProjectId,omitempty"`
	LastSavedAt     *time.Time `json:"lastSavedAt,omitempty"`
}

// ListProjects handles GET /projects
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	records, err := h.projects.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list projects", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	views := make([]ProjectView, len(records))
	for i, rec := range records {
		views[i] = projectView(rec)
	}
	common.RespondJSON(w, http.StatusOK, views)
}

// CreateProject handles POST /projects. The new project becomes active and
// the canvas resets to an empty graph.
func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req CreateProjectRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	record, err := h.projects.CreateAndActivate(r.Context(), req.Name, req.Description)
	if err != nil {
		h.logger.Error("Failed to create project", zap.String("name", req.Name), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, projectView(*record))
}

// UpdateProject handles PATCH /projects/{projectID}
func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Project ID is required")
		return
	}

	var req UpdateProjectRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	update := ports.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		AIModel:     req.AIModel,
	}
	if err := h.projects.UpdateMetadata(r.Context(), valueobjects.ProjectID(projectID), update); err != nil {
		h.logger.Error("Failed to update project", zap.String("projectID", projectID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteProject handles DELETE /projects/{projectID}. Deleting the active
// project clears the canvas.
func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Project ID is required")
		return
	}

	if err := h.projects.Remove(r.Context(), valueobjects.ProjectID(projectID)); err != nil {
		h.logger.Error("Failed to delete project", zap.String("projectID", projectID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ActivateProject handles POST /projects/{projectID}/activate. The stored
// graph replaces the in-memory canvas.
func (h *ProjectHandler) ActivateProject(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")
	if projectID == "" {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Project ID is required")
		return
	}

	if err := h.projects.Activate(r.Context(), valueobjects.ProjectID(projectID)); err != nil {
		h.logger.Error("Failed to activate project", zap.String("projectID", projectID), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SaveProject handles POST /projects/save. Persists the active project's
// canvas; a no-op when no project is active.
func (h *ProjectHandler) SaveProject(w http.ResponseWriter, r *http.Request) {
	if err := h.projects.SaveActive(r.Context()); err != nil {
		h.logger.Error("Failed to save active project", zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	h.Session(w, r)
}

// Session handles GET /session
func (h *ProjectHandler) Session(w http.ResponseWriter, r *http.Request) {
	var view SessionView
	if id, ok := h.projects.ActiveProjectID(); ok {
		view.ActiveProjectID = id.String()
	}
	if savedAt, ok := h.projects.LastSavedAt(); ok {
		view.LastSavedAt = &savedAt
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// VariationRequest represents one generated variation in a save request
type VariationRequest struct {
	Label       string `json:"label" validate:"required,min=1,max=200"`
	Description string `json:"description,omitempty" validate:"omitempty,max=2000"`
	PreviewHTML string `json:"previewHtml,omitempty"`
	Code        string `json:"code,omitempty"`
	Category    string `json:"category" validate:"required,oneof=header hero features pricing footer dashboard mobile"`
}

// SaveVariationsRequest represents the request body for saving variations
type SaveVariationsRequest struct {
	Variations []VariationRequest `json:"variations" validate:"required,min=1,dive"`
}

// SaveVariations handles POST /nodes/{nodeID}/variations
func (h *ProjectHandler) SaveVariations(w http.ResponseWriter, r *http.Request) {
	nodeID, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	var req SaveVariationsRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	variations := make([]entities.Variation, len(req.Variations))
	for i, v := range req.Variations {
		variations[i] = entities.Variation{
			Label:       v.Label,
			Description: v.Description,
			PreviewHTML: v.PreviewHTML,
			Code:        v.Code,
			Category:    entities.VariationCategory(v.Category),
		}
	}

	if err := h.projects.SaveVariations(r.Context(), nodeID, variations); err != nil {
		h.logger.Error("Failed to save variations",
			zap.String("nodeID", nodeID.String()),
			zap.Int("count", len(variations)),
			zap.Error(err),
		)
		common.RespondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// ListVariations handles GET /nodes/{nodeID}/variations
func (h *ProjectHandler) ListVariations(w http.ResponseWriter, r *http.Request) {
	nodeID, err := valueobjects.NewNodeIDFromString(chi.URLParam(r, "nodeID"))
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Node ID is required")
		return
	}

	variations, err := h.projects.LoadVariations(r.Context(), nodeID)
	if err != nil {
		h.logger.Error("Failed to load variations", zap.String("nodeID", nodeID.String()), zap.Error(err))
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, variations)
}
