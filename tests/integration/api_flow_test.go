package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	appservices "github.com/alfhazis/infinite-canvas-creator-sub001/application/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
	domainservices "github.com/alfhazis/infinite-canvas-creator-sub001/domain/services"
	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/config"
	"github.com/alfhazis/infinite-canvas-creator-sub001/infrastructure/di"
	"github.com/alfhazis/infinite-canvas-creator-sub001/interfaces/http/rest"
	pkgerrors "github.com/alfhazis/infinite-canvas-creator-sub001/pkg/errors"
)

// memoryStore is an in-memory ProjectStore used to exercise the full HTTP
// stack without a Supabase backend.
type memoryStore struct {
	mu         sync.Mutex
	projects   map[valueobjects.ProjectID]*ports.ProjectRecord
	graphs     map[valueobjects.ProjectID]aggregates.Snapshot
	variations map[string][]entities.Variation
}

var _ ports.ProjectStore = (*memoryStore)(nil)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		projects:   make(map[valueobjects.ProjectID]*ports.ProjectRecord),
		graphs:     make(map[valueobjects.ProjectID]aggregates.Snapshot),
		variations: make(map[string][]entities.Variation),
	}
}

func (s *memoryStore) ListProjects(ctx context.Context) ([]ports.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ports.ProjectRecord, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memoryStore) CreateProject(ctx context.Context, name, description string) (*ports.ProjectRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	record := &ports.ProjectRecord{
		ID:          valueobjects.NewProjectID(),
		Name:        name,
		Description: description,
		Viewport:    valueobjects.DefaultViewport(),
		AIModel:     "auto",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.projects[record.ID] = record
	return record, nil
}

func (s *memoryStore) UpdateProject(ctx context.Context, id valueobjects.ProjectID, update ports.ProjectUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.projects[id]
	if !ok {
		return pkgerrors.NewNotFoundError("project")
	}
	if update.Name != nil {
		record.Name = *update.Name
	}
	if update.Description != nil {
		record.Description = *update.Description
	}
	if update.Zoom != nil {
		record.Viewport.Zoom = *update.Zoom
	}
	if update.PanX != nil {
		record.Viewport.PanX = *update.PanX
	}
	if update.PanY != nil {
		record.Viewport.PanY = *update.PanY
	}
	if update.AIModel != nil {
		record.AIModel = *update.AIModel
	}
	record.UpdatedAt = time.Now()
	return nil
}

func (s *memoryStore) DeleteProject(ctx context.Context, id valueobjects.ProjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	delete(s.graphs, id)
	return nil
}

func (s *memoryStore) LoadProjectGraph(ctx context.Context, id valueobjects.ProjectID) (aggregates.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.projects[id]
	if !ok {
		return aggregates.Snapshot{}, pkgerrors.NewNotFoundError("project")
	}
	if snapshot, ok := s.graphs[id]; ok {
		return copySnapshot(snapshot), nil
	}
	return aggregates.Snapshot{Viewport: record.Viewport, AIModel: record.AIModel}, nil
}

func (s *memoryStore) ReplaceProjectGraph(ctx context.Context, id valueobjects.ProjectID, snapshot aggregates.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return pkgerrors.NewNotFoundError("project")
	}
	s.graphs[id] = copySnapshot(snapshot)
	return nil
}

func (s *memoryStore) SaveVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID, variations []entities.Variation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := projectID.String() + "/" + sourceNodeID.String()
	s.variations[key] = append(s.variations[key], variations...)
	return nil
}

func (s *memoryStore) LoadVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID) ([]entities.Variation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.variations[projectID.String()+"/"+sourceNodeID.String()], nil
}

func copySnapshot(snapshot aggregates.Snapshot) aggregates.Snapshot {
	nodes := make([]*entities.Node, len(snapshot.Nodes))
	for i, n := range snapshot.Nodes {
		nodes[i] = n.Copy()
	}
	return aggregates.Snapshot{Nodes: nodes, Viewport: snapshot.Viewport, AIModel: snapshot.AIModel}
}

// newTestServer wires a full container around the in-memory store. An empty
// JWT secret selects the local development auth bypass.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		ServerAddress: ":0",
		Environment:   "development",
		LayoutPadding: 40,
		LayoutStep:    40,
		LogLevel:      "error",
	}
	canvas := aggregates.NewCanvas()
	logger := zap.NewNop()
	store := newMemoryStore()

	container := &di.Container{
		Config:          cfg,
		Logger:          logger,
		Canvas:          canvas,
		LayoutService:   domainservices.NewLayoutService(),
		AssemblyService: domainservices.NewAssemblyService(),
		PickOrder:       domainservices.NewPickOrder(),
		ProjectStore:    store,
		ProjectService:  appservices.NewProjectService(store, canvas, logger),
	}

	srv := httptest.NewServer(rest.NewRouter(container).Setup())
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.NotNil(t, env.Data)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

type nodePayload struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	X           float64  `json:"x"`
	Y           float64  `json:"y"`
	Picked      bool     `json:"picked"`
	ConnectedTo []string `json:"connectedTo"`
}

type canvasPayload struct {
	Nodes    []nodePayload `json:"nodes"`
	Viewport struct {
		Zoom float64 `json:"zoom"`
		PanX float64 `json:"panX"`
		PanY float64 `json:"panY"`
	} `json:"viewport"`
	AIModel string `json:"aiModel"`
	Dirty   bool   `json:"dirty"`
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/health", "/ready"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestProjectLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()
	base := srv.URL + "/api/v1"

	// Create and activate a project.
	resp, env := doJSON(t, client, http.MethodPost, base+"/projects", map[string]string{
		"name":        "Landing Page",
		"description": "Marketing site",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var project struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	decodeData(t, env, &project)
	require.NotEmpty(t, project.ID)
	assert.Equal(t, "Landing Page", project.Name)

	resp, _ = doJSON(t, client, http.MethodPost, base+"/projects/"+project.ID+"/activate", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Place two nodes, the second auto-placed.
	resp, env = doJSON(t, client, http.MethodPost, base+"/canvas/nodes", map[string]interface{}{
		"type": "design", "title": "Hero", "x": 100, "y": 100,
		"content": "<section>Hero</section>",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var hero nodePayload
	decodeData(t, env, &hero)
	assert.Equal(t, 100.0, hero.X)

	resp, env = doJSON(t, client, http.MethodPost, base+"/canvas/nodes", map[string]interface{}{
		"type": "design", "title": "Footer",
		"content": "<footer>Footer</footer>",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var footer nodePayload
	decodeData(t, env, &footer)
	assert.NotEqual(t, hero.ID, footer.ID)

	// Connect, pick both, adjust the viewport.
	resp, _ = doJSON(t, client, http.MethodPost, base+"/canvas/connections", map[string]string{
		"from": hero.ID, "to": footer.ID,
	})
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	for _, id := range []string{hero.ID, footer.ID} {
		resp, _ = doJSON(t, client, http.MethodPost, base+"/canvas/nodes/"+id+"/pick", nil)
		require.Less(t, resp.StatusCode, 300)
	}

	zoom := 1.5
	resp, _ = doJSON(t, client, http.MethodPut, base+"/canvas/viewport", map[string]interface{}{
		"zoom": zoom, "panX": 120.0, "panY": -60.0,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Canvas reflects everything and is dirty before the save.
	resp, env = doJSON(t, client, http.MethodGet, base+"/canvas", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var canvas canvasPayload
	decodeData(t, env, &canvas)
	require.Len(t, canvas.Nodes, 2)
	assert.Equal(t, 1.5, canvas.Viewport.Zoom)
	assert.True(t, canvas.Dirty)
	assert.Contains(t, canvas.Nodes[0].ConnectedTo, footer.ID)

	// Save, then verify the session reports the active project.
	resp, env = doJSON(t, client, http.MethodPost, base+"/projects/save", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session struct {
		ActiveProjectID string     `json:"activeProjectId"`
		LastSavedAt     *time.Time `json:"lastSavedAt"`
	}
	decodeData(t, env, &session)
	assert.Equal(t, project.ID, session.ActiveProjectID)
	require.NotNil(t, session.LastSavedAt)

	// Clear the canvas, reactivate, and get the saved state back.
	resp, _ = doJSON(t, client, http.MethodPost, base+"/canvas/clear", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, client, http.MethodPost, base+"/projects/"+project.ID+"/activate", nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, env = doJSON(t, client, http.MethodGet, base+"/canvas", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, env, &canvas)
	require.Len(t, canvas.Nodes, 2)
	assert.Equal(t, 1.5, canvas.Viewport.Zoom)
	assert.Equal(t, 120.0, canvas.Viewport.PanX)
	assert.False(t, canvas.Dirty, "a freshly loaded project is clean")
}

func TestAssemblyOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()
	base := srv.URL + "/api/v1"

	titles := []string{"Header", "Hero", "Footer"}
	ids := make([]string, 0, len(titles))
	for _, title := range titles {
		resp, env := doJSON(t, client, http.MethodPost, base+"/canvas/nodes", map[string]interface{}{
			"type": "design", "title": title, "x": 0, "y": 0,
			"content": fmt.Sprintf("<section>%s</section>", title),
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var node nodePayload
		decodeData(t, env, &node)
		ids = append(ids, node.ID)
	}

	for _, id := range ids {
		resp, _ := doJSON(t, client, http.MethodPost, base+"/canvas/nodes/"+id+"/pick", nil)
		require.Less(t, resp.StatusCode, 300)
	}

	// Insertion order by default.
	resp, env := doJSON(t, client, http.MethodGet, base+"/assembly/order", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ordered []nodePayload
	decodeData(t, env, &ordered)
	require.Len(t, ordered, 3)
	assert.Equal(t, "Header", ordered[0].Title)

	// Move Hero above Header.
	resp, env = doJSON(t, client, http.MethodPost, base+"/assembly/order", map[string]interface{}{
		"index": 1, "direction": "up",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeData(t, env, &ordered)
	assert.Equal(t, "Hero", ordered[0].Title)
	assert.Equal(t, "Header", ordered[1].Title)

	// Composed document carries every picked section in order.
	resp, env = doJSON(t, client, http.MethodGet, base+"/assembly", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var assembly struct {
		HTML string `json:"html"`
	}
	decodeData(t, env, &assembly)
	assert.Contains(t, assembly.HTML, "<!DOCTYPE html>")
	assert.Contains(t, assembly.HTML, "<section>Hero</section>")

	// Preview serves the raw document.
	previewResp, err := client.Get(base + "/assembly/preview")
	require.NoError(t, err)
	defer previewResp.Body.Close()
	assert.Equal(t, http.StatusOK, previewResp.StatusCode)
	assert.Contains(t, previewResp.Header.Get("Content-Type"), "text/html")
}

func TestValidationErrorsOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()
	base := srv.URL + "/api/v1"

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
	}{
		{
			name:   "node with unknown type",
			method: http.MethodPost,
			path:   "/canvas/nodes",
			body:   map[string]interface{}{"type": "banner", "title": "Nope"},
		},
		{
			name:   "node without title",
			method: http.MethodPost,
			path:   "/canvas/nodes",
			body:   map[string]interface{}{"type": "idea"},
		},
		{
			name:   "project without name",
			method: http.MethodPost,
			path:   "/projects",
			body:   map[string]string{"description": "unnamed"},
		},
		{
			name:   "reorder with bad direction",
			method: http.MethodPost,
			path:   "/assembly/order",
			body:   map[string]interface{}{"index": 0, "direction": "sideways"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, env := doJSON(t, client, tt.method, base+tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
		})
	}
}

func TestUnknownNodeReturnsNotFound(t *testing.T) {
	srv := newTestServer(t)
	client := srv.Client()

	resp, env := doJSON(t, client, http.MethodPost,
		srv.URL+"/api/v1/canvas/nodes/node-999-0/duplicate", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, env.Error)
}

func TestAuthRequiredWhenSecretConfigured(t *testing.T) {
	cfg := &config.Config{
		Environment:   "production",
		JWTSecret:     "super-secret-signing-key",
		LayoutPadding: 40,
		LayoutStep:    40,
	}
	canvas := aggregates.NewCanvas()
	store := newMemoryStore()
	container := &di.Container{
		Config:          cfg,
		Logger:          zap.NewNop(),
		Canvas:          canvas,
		LayoutService:   domainservices.NewLayoutService(),
		AssemblyService: domainservices.NewAssemblyService(),
		PickOrder:       domainservices.NewPickOrder(),
		ProjectStore:    store,
		ProjectService:  appservices.NewProjectService(store, canvas, zap.NewNop()),
	}
	srv := httptest.NewServer(rest.NewRouter(container).Setup())
	defer srv.Close()

	resp, env := doJSON(t, srv.Client(), http.MethodGet, srv.URL+"/api/v1/canvas", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.NotNil(t, env.Error)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
}
