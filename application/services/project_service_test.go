package services

import (
	"context"
	"testing"
	"time"

	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
	pkgerrors "github.com/alfhazis/infinite-canvas-creator-sub001/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore is an in-memory ProjectStore
type fakeStore struct {
	projects   map[valueobjects.ProjectID]*ports.ProjectRecord
	graphs     map[valueobjects.ProjectID]aggregates.Snapshot
	variations map[string][]entities.Variation

	failNextSave bool
	saveCount    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		projects:   make(map[valueobjects.ProjectID]*ports.ProjectRecord),
		graphs:     make(map[valueobjects.ProjectID]aggregates.Snapshot),
		variations: make(map[string][]entities.Variation),
	}
}

func (f *fakeStore) ListProjects(ctx context.Context) ([]ports.ProjectRecord, error) {
	out := make([]ports.ProjectRecord, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) CreateProject(ctx context.Context, name, description string) (*ports.ProjectRecord, error) {
	record := &ports.ProjectRecord{
		ID:          valueobjects.NewProjectID(),
		Name:        name,
		Description: description,
		Viewport:    valueobjects.DefaultViewport(),
		AIModel:     aggregates.DefaultAIModel,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.projects[record.ID] = record
	f.graphs[record.ID] = aggregates.Snapshot{
		Viewport: record.Viewport,
		AIModel:  record.AIModel,
	}
	return record, nil
}

func (f *fakeStore) UpdateProject(ctx context.Context, id valueobjects.ProjectID, update ports.ProjectUpdate) error {
	p, ok := f.projects[id]
	if !ok {
		return pkgerrors.NewNotFoundError("project")
	}
	if update.Name != nil {
		p.Name = *update.Name
	}
	if update.Description != nil {
		p.Description = *update.Description
	}
	return nil
}

func (f *fakeStore) DeleteProject(ctx context.Context, id valueobjects.ProjectID) error {
	delete(f.projects, id)
	delete(f.graphs, id)
	return nil
}

func (f *fakeStore) LoadProjectGraph(ctx context.Context, id valueobjects.ProjectID) (aggregates.Snapshot, error) {
	snapshot, ok := f.graphs[id]
	if !ok {
		return aggregates.Snapshot{}, pkgerrors.NewNotFoundError("project")
	}
	return snapshot, nil
}

func (f *fakeStore) ReplaceProjectGraph(ctx context.Context, id valueobjects.ProjectID, snapshot aggregates.Snapshot) error {
	if f.failNextSave {
		f.failNextSave = false
		return pkgerrors.NewStorageError("replace project graph", assert.AnError)
	}
	if _, ok := f.projects[id]; !ok {
		return pkgerrors.NewNotFoundError("project")
	}
	f.graphs[id] = snapshot
	f.saveCount++
	return nil
}

func (f *fakeStore) SaveVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID, variations []entities.Variation) error {
	key := projectID.String() + "/" + sourceNodeID.String()
	f.variations[key] = append(f.variations[key], variations...)
	return nil
}

func (f *fakeStore) LoadVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID) ([]entities.Variation, error) {
	return f.variations[projectID.String()+"/"+sourceNodeID.String()], nil
}

var _ ports.ProjectStore = (*fakeStore)(nil)

func newTestService(t *testing.T) (*ProjectService, *fakeStore, *aggregates.Canvas) {
	t.Helper()
	store := newFakeStore()
	canvas := aggregates.NewCanvas()
	return NewProjectService(store, canvas, zap.NewNop()), store, canvas
}

func addCanvasNode(t *testing.T, canvas *aggregates.Canvas, title string) valueobjects.NodeID {
	t.Helper()
	id, err := canvas.AddNode(entities.NodeSpec{
		Type:   entities.NodeTypeIdea,
		Title:  title,
		X:      50,
		Y:      60,
		Width:  360,
		Height: 300,
	})
	require.NoError(t, err)
	return id
}

func TestProjectService_CreateAndActivate(t *testing.T) {
	svc, _, canvas := newTestService(t)
	addCanvasNode(t, canvas, "Leftover")

	record, err := svc.CreateAndActivate(context.Background(), "Landing Page", "marketing site")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Landing Page", record.Name)

	// New project starts from an empty canvas
	assert.Equal(t, 0, canvas.NodeCount())
	active, ok := svc.ActiveProjectID()
	assert.True(t, ok)
	assert.Equal(t, record.ID, active)
}

func TestProjectService_SaveAndReloadRoundTrip(t *testing.T) {
	svc, _, canvas := newTestService(t)
	record, err := svc.CreateAndActivate(context.Background(), "Round Trip", "")
	require.NoError(t, err)

	a := addCanvasNode(t, canvas, "A")
	b := addCanvasNode(t, canvas, "B")
	canvas.ConnectNodes(a, b)
	canvas.TogglePick(b)
	canvas.SetZoom(1.7)
	canvas.SetPan(12, -8)

	require.NoError(t, svc.SaveActive(context.Background()))
	assert.False(t, canvas.Dirty())

	// Replace the canvas content, then re-activate: state comes back
	canvas.ClearAll()
	require.NoError(t, svc.Activate(context.Background(), record.ID))

	require.Equal(t, 2, canvas.NodeCount())
	nodeA, ok := canvas.FindNode(a)
	require.True(t, ok)
	assert.True(t, nodeA.IsConnectedTo(b))
	nodeB, _ := canvas.FindNode(b)
	assert.True(t, nodeB.Picked())
	assert.Equal(t, 1.7, canvas.Viewport().Zoom)
	assert.Equal(t, 12.0, canvas.Viewport().PanX)
}

func TestProjectService_SaveWithoutActiveProjectIsNoOp(t *testing.T) {
	svc, store, canvas := newTestService(t)
	addCanvasNode(t, canvas, "Unsaved")

	require.NoError(t, svc.SaveActive(context.Background()))
	assert.Equal(t, 0, store.saveCount)
	_, ok := svc.LastSavedAt()
	assert.False(t, ok)
}

func TestProjectService_SaveFailureKeepsMemoryState(t *testing.T) {
	svc, store, canvas := newTestService(t)
	_, err := svc.CreateAndActivate(context.Background(), "Fragile", "")
	require.NoError(t, err)

	addCanvasNode(t, canvas, "Kept")
	store.failNextSave = true

	err = svc.SaveActive(context.Background())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsStorage(err))

	// In-memory state survives; the canvas stays dirty for the next save
	assert.Equal(t, 1, canvas.NodeCount())
	assert.True(t, canvas.Dirty())
	_, ok := svc.LastSavedAt()
	assert.False(t, ok)

	require.NoError(t, svc.SaveActive(context.Background()))
	assert.False(t, canvas.Dirty())
}

func TestProjectService_ActivateUnknownProject(t *testing.T) {
	svc, _, canvas := newTestService(t)
	addCanvasNode(t, canvas, "Untouched")

	err := svc.Activate(context.Background(), valueobjects.NewProjectID())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	// Failed activation leaves the canvas and session alone
	assert.Equal(t, 1, canvas.NodeCount())
	_, ok := svc.ActiveProjectID()
	assert.False(t, ok)
}

func TestProjectService_RemoveActiveProjectClearsCanvas(t *testing.T) {
	svc, _, canvas := newTestService(t)
	record, err := svc.CreateAndActivate(context.Background(), "Doomed", "")
	require.NoError(t, err)
	addCanvasNode(t, canvas, "Gone")

	require.NoError(t, svc.Remove(context.Background(), record.ID))

	assert.Equal(t, 0, canvas.NodeCount())
	_, ok := svc.ActiveProjectID()
	assert.False(t, ok)
}

func TestProjectService_RemoveInactiveProjectKeepsCanvas(t *testing.T) {
	svc, store, canvas := newTestService(t)
	other, err := store.CreateProject(context.Background(), "Other", "")
	require.NoError(t, err)

	_, err = svc.CreateAndActivate(context.Background(), "Current", "")
	require.NoError(t, err)
	addCanvasNode(t, canvas, "Stays")

	require.NoError(t, svc.Remove(context.Background(), other.ID))

	assert.Equal(t, 1, canvas.NodeCount())
	_, ok := svc.ActiveProjectID()
	assert.True(t, ok)
}

func TestProjectService_Variations(t *testing.T) {
	svc, _, canvas := newTestService(t)
	_, err := svc.CreateAndActivate(context.Background(), "With Variations", "")
	require.NoError(t, err)
	nodeID := addCanvasNode(t, canvas, "Source")

	err = svc.SaveVariations(context.Background(), nodeID, []entities.Variation{
		{Label: "Dark hero", Category: entities.CategoryHero},
		{Label: "Light hero", Category: entities.CategoryHero},
	})
	require.NoError(t, err)

	loaded, err := svc.LoadVariations(context.Background(), nodeID)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestProjectService_SaveVariations_InvalidCategory(t *testing.T) {
	svc, store, canvas := newTestService(t)
	_, err := svc.CreateAndActivate(context.Background(), "Strict", "")
	require.NoError(t, err)
	nodeID := addCanvasNode(t, canvas, "Source")

	err = svc.SaveVariations(context.Background(), nodeID, []entities.Variation{
		{Label: "Mystery", Category: "sidebar"},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, store.variations)
}

func TestProjectService_SaveVariations_NoActiveProject(t *testing.T) {
	svc, store, _ := newTestService(t)

	err := svc.SaveVariations(context.Background(), valueobjects.NewNodeID(), []entities.Variation{
		{Label: "Orphan", Category: entities.CategoryFooter},
	})
	assert.NoError(t, err)
	assert.Empty(t, store.variations)
}

func TestProjectService_ClearActive(t *testing.T) {
	svc, _, canvas := newTestService(t)
	_, err := svc.CreateAndActivate(context.Background(), "Session", "")
	require.NoError(t, err)
	addCanvasNode(t, canvas, "Node")

	svc.ClearActive()

	assert.Equal(t, 0, canvas.NodeCount())
	_, ok := svc.ActiveProjectID()
	assert.False(t, ok)
}
