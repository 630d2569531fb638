package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
)

// ProjectService ties the active project identity to the canvas lifecycle:
// load on activate, clear on switch, save on demand. It owns the
// single-pending-save policy: saves for the active project are serialized
// so two full-replace writes never interleave.
type ProjectService struct {
	store  ports.ProjectStore
	canvas *aggregates.Canvas
	logger *zap.Logger

	mu          sync.RWMutex
	activeID    valueobjects.ProjectID
	lastSavedAt time.Time

	saveMu sync.Mutex
}

// NewProjectService creates a project service
func NewProjectService(store ports.ProjectStore, canvas *aggregates.Canvas, logger *zap.Logger) *ProjectService {
	return &ProjectService{
		store:  store,
		canvas: canvas,
		logger: logger,
	}
}

// List returns all projects, most-recently-updated first
func (s *ProjectService) List(ctx context.Context) ([]ports.ProjectRecord, error) {
	return s.store.ListProjects(ctx)
}

// CreateAndActivate creates a project, makes it active and resets the
// canvas to an empty graph with the default viewport.
func (s *ProjectService) CreateAndActivate(ctx context.Context, name, description string) (*ports.ProjectRecord, error) {
	record, err := s.store.CreateProject(ctx, name, description)
	if err != nil {
		return nil, err
	}

	s.canvas.Restore(aggregates.Snapshot{
		Viewport: valueobjects.DefaultViewport(),
		AIModel:  aggregates.DefaultAIModel,
	})

	s.mu.Lock()
	s.activeID = record.ID
	s.mu.Unlock()

	s.logger.Info("project created and activated",
		zap.String("projectID", record.ID.String()),
		zap.String("name", record.Name),
	)
	return record, nil
}

// Activate loads a project's graph from the store and fully replaces the
// canvas with it. On load failure the canvas and the active project are
// left as they were.
func (s *ProjectService) Activate(ctx context.Context, id valueobjects.ProjectID) error {
	snapshot, err := s.store.LoadProjectGraph(ctx, id)
	if err != nil {
		return err
	}

	s.canvas.Restore(snapshot)

	s.mu.Lock()
	s.activeID = id
	s.mu.Unlock()

	s.logger.Info("project activated",
		zap.String("projectID", id.String()),
		zap.Int("nodes", len(snapshot.Nodes)),
	)
	return nil
}

// SaveActive performs a full-replace save of the active project's graph.
// No active project is a no-op. The snapshot is captured at save start;
// mutations made while the save is in flight land in the next save. A
// storage failure never rolls back in-memory state.
func (s *ProjectService) SaveActive(ctx context.Context) error {
	s.mu.RLock()
	id := s.activeID
	s.mu.RUnlock()
	if id.IsZero() {
		return nil
	}

	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	snapshot := s.canvas.TakeSnapshot()
	if err := s.store.ReplaceProjectGraph(ctx, id, snapshot); err != nil {
		s.logger.Error("canvas save failed",
			zap.String("projectID", id.String()),
			zap.Error(err),
		)
		return err
	}

	s.canvas.MarkClean()

	s.mu.Lock()
	s.lastSavedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("canvas saved",
		zap.String("projectID", id.String()),
		zap.Int("nodes", len(snapshot.Nodes)),
	)
	return nil
}

// Remove deletes a project. If it was the active one the canvas is cleared
// and the session has no active project afterwards.
func (s *ProjectService) Remove(ctx context.Context, id valueobjects.ProjectID) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	wasActive := s.activeID == id
	if wasActive {
		s.activeID = ""
	}
	s.mu.Unlock()

	if wasActive {
		s.canvas.ClearAll()
	}

	s.logger.Info("project removed", zap.String("projectID", id.String()))
	return nil
}

// UpdateMetadata applies partial scalar updates to a project record
func (s *ProjectService) UpdateMetadata(ctx context.Context, id valueobjects.ProjectID, update ports.ProjectUpdate) error {
	return s.store.UpdateProject(ctx, id, update)
}

// ClearActive deactivates the current project and empties the canvas
func (s *ProjectService) ClearActive() {
	s.mu.Lock()
	s.activeID = ""
	s.mu.Unlock()
	s.canvas.ClearAll()
}

// ActiveProjectID returns the active project, if any
func (s *ProjectService) ActiveProjectID() (valueobjects.ProjectID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID, !s.activeID.IsZero()
}

// LastSavedAt returns when the active session last saved successfully
func (s *ProjectService) LastSavedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSavedAt, !s.lastSavedAt.IsZero()
}

// SaveVariations stores generated variations for a node of the active project
func (s *ProjectService) SaveVariations(ctx context.Context, sourceNodeID valueobjects.NodeID, variations []entities.Variation) error {
	id, ok := s.ActiveProjectID()
	if !ok {
		return nil
	}
	for _, v := range variations {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return s.store.SaveVariations(ctx, id, sourceNodeID, variations)
}

// LoadVariations returns stored variations for a node of the active
// project, most recent first
func (s *ProjectService) LoadVariations(ctx context.Context, sourceNodeID valueobjects.NodeID) ([]entities.Variation, error) {
	id, ok := s.ActiveProjectID()
	if !ok {
		return nil, nil
	}
	return s.store.LoadVariations(ctx, id, sourceNodeID)
}
