package supabase

import (
	"context"
	"time"

	"github.com/supabase-community/postgrest-go"
	supa "github.com/supabase-community/supabase-go"
	"go.uber.org/zap"

	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
	pkgerrors "github.com/alfhazis/infinite-canvas-creator-sub001/pkg/errors"
)

// ProjectStore persists the canvas graph in the remote relational store
// through PostgREST. Saves are full replacements: project scalars first,
// then delete-and-insert of all node rows, then of all connection rows.
// There is no incremental diffing; every row is rewritten on save.
//
// Any failed step fails the whole operation; the store never retries.
type ProjectStore struct {
	client *supa.Client
	logger *zap.Logger
}

// NewProjectStore creates a store backed by a Supabase client
func NewProjectStore(client *supa.Client, logger *zap.Logger) *ProjectStore {
	return &ProjectStore{client: client, logger: logger}
}

var _ ports.ProjectStore = (*ProjectStore)(nil)

// ListProjects returns project records, most-recently-updated first
func (s *ProjectStore) ListProjects(ctx context.Context) ([]ports.ProjectRecord, error) {
	var rows []projectRow
	_, err := s.client.From(projectsTable).
		Select("*", "", false).
		Order("updated_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, pkgerrors.NewStorageError("list projects", err)
	}

	records := make([]ports.ProjectRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, rowToRecord(row))
	}
	return records, nil
}

// CreateProject inserts a project row and returns the stored record
func (s *ProjectStore) CreateProject(ctx context.Context, name, description string) (*ports.ProjectRecord, error) {
	payload := map[string]interface{}{
		"name":        name,
		"description": description,
	}

	var rows []projectRow
	_, err := s.client.From(projectsTable).
		Insert(payload, false, "", "representation", "").
		ExecuteTo(&rows)
	if err != nil {
		return nil, pkgerrors.NewStorageError("create project", err)
	}
	if len(rows) == 0 {
		return nil, pkgerrors.NewStorageError("create project", nil).
			WithDetails(map[string]interface{}{"reason": "insert returned no row"})
	}

	record := rowToRecord(rows[0])
	s.logger.Info("project created", zap.String("projectID", record.ID.String()))
	return &record, nil
}

// UpdateProject applies partial scalar updates. An empty update is a no-op.
func (s *ProjectStore) UpdateProject(ctx context.Context, id valueobjects.ProjectID, update ports.ProjectUpdate) error {
	fields := map[string]interface{}{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Zoom != nil {
		fields["zoom"] = *update.Zoom
	}
	if update.PanX != nil {
		fields["pan_x"] = *update.PanX
	}
	if update.PanY != nil {
		fields["pan_y"] = *update.PanY
	}
	if update.AIModel != nil {
		fields["ai_model"] = *update.AIModel
	}
	if len(fields) == 0 {
		return nil
	}

	_, _, err := s.client.From(projectsTable).
		Update(fields, "", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return pkgerrors.NewStorageError("update project", err)
	}
	return nil
}

// DeleteProject removes the project row. Node, connection and variation
// rows cascade in the store schema.
func (s *ProjectStore) DeleteProject(ctx context.Context, id valueobjects.ProjectID) error {
	_, _, err := s.client.From(projectsTable).
		Delete("", "").
		Eq("id", id.String()).
		Execute()
	if err != nil {
		return pkgerrors.NewStorageError("delete project", err)
	}
	return nil
}

// LoadProjectGraph fetches project scalars, node rows and connection rows,
// groups connections by their from id and reconstructs each node with its
// resolved adjacency. Node order follows row creation order.
func (s *ProjectStore) LoadProjectGraph(ctx context.Context, id valueobjects.ProjectID) (aggregates.Snapshot, error) {
	var projects []projectRow
	_, err := s.client.From(projectsTable).
		Select("zoom,pan_x,pan_y,ai_model", "", false).
		Eq("id", id.String()).
		ExecuteTo(&projects)
	if err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewStorageError("load project", err)
	}
	if len(projects) == 0 {
		return aggregates.Snapshot{}, pkgerrors.NewNotFoundError("project")
	}
	project := projects[0]

	var nodeRows []nodeRow
	_, err = s.client.From(nodesTable).
		Select("*", "", false).
		Eq("project_id", id.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: true}).
		ExecuteTo(&nodeRows)
	if err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewStorageError("load nodes", err)
	}

	var connRows []connectionRow
	_, err = s.client.From(connectionsTable).
		Select("project_id,from_client_id,to_client_id", "", false).
		Eq("project_id", id.String()).
		ExecuteTo(&connRows)
	if err != nil {
		return aggregates.Snapshot{}, pkgerrors.NewStorageError("load connections", err)
	}

	grouped := groupConnections(connRows)
	nodes := make([]*entities.Node, 0, len(nodeRows))
	for _, row := range nodeRows {
		node, err := rowToNode(row, grouped[row.ClientID])
		if err != nil {
			return aggregates.Snapshot{}, pkgerrors.Wrap(err, "reconstruct node "+row.ClientID)
		}
		nodes = append(nodes, node)
	}

	return aggregates.Snapshot{
		Nodes: nodes,
		Viewport: valueobjects.Viewport{
			Zoom: project.Zoom,
			PanX: project.PanX,
			PanY: project.PanY,
		},
		AIModel: project.AIModel,
	}, nil
}

// ReplaceProjectGraph performs the full-replace save
func (s *ProjectStore) ReplaceProjectGraph(ctx context.Context, id valueobjects.ProjectID, snapshot aggregates.Snapshot) error {
	started := time.Now()

	viewport := snapshot.Viewport
	aiModel := snapshot.AIModel
	if err := s.UpdateProject(ctx, id, ports.ProjectUpdate{
		Zoom:    &viewport.Zoom,
		PanX:    &viewport.PanX,
		PanY:    &viewport.PanY,
		AIModel: &aiModel,
	}); err != nil {
		return err
	}

	_, _, err := s.client.From(nodesTable).
		Delete("", "").
		Eq("project_id", id.String()).
		Execute()
	if err != nil {
		return pkgerrors.NewStorageError("delete nodes", err)
	}

	if len(snapshot.Nodes) > 0 {
		rows := make([]nodeRow, 0, len(snapshot.Nodes))
		for _, n := range snapshot.Nodes {
			rows = append(rows, nodeToRow(id, n))
		}
		_, _, err = s.client.From(nodesTable).
			Insert(rows, false, "", "", "").
			Execute()
		if err != nil {
			return pkgerrors.NewStorageError("insert nodes", err)
		}
	}

	_, _, err = s.client.From(connectionsTable).
		Delete("", "").
		Eq("project_id", id.String()).
		Execute()
	if err != nil {
		return pkgerrors.NewStorageError("delete connections", err)
	}

	if connRows := flattenConnections(id, snapshot.Nodes); len(connRows) > 0 {
		_, _, err = s.client.From(connectionsTable).
			Insert(connRows, false, "", "", "").
			Execute()
		if err != nil {
			return pkgerrors.NewStorageError("insert connections", err)
		}
	}

	s.logger.Debug("graph replaced",
		zap.String("projectID", id.String()),
		zap.Int("nodes", len(snapshot.Nodes)),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// SaveVariations bulk-inserts variation rows for a source node
func (s *ProjectStore) SaveVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID, variations []entities.Variation) error {
	if len(variations) == 0 {
		return nil
	}

	rows := make([]variationRow, 0, len(variations))
	for _, v := range variations {
		rows = append(rows, variationToRow(projectID, sourceNodeID, v))
	}

	_, _, err := s.client.From(variationsTable).
		Insert(rows, false, "", "", "").
		Execute()
	if err != nil {
		return pkgerrors.NewStorageError("save variations", err)
	}
	return nil
}

// LoadVariations returns a source node's variations, most recent first
func (s *ProjectStore) LoadVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID) ([]entities.Variation, error) {
	var rows []variationRow
	_, err := s.client.From(variationsTable).
		Select("*", "", false).
		Eq("project_id", projectID.String()).
		Eq("source_node_client_id", sourceNodeID.String()).
		Order("created_at", &postgrest.OrderOpts{Ascending: false}).
		ExecuteTo(&rows)
	if err != nil {
		return nil, pkgerrors.NewStorageError("load variations", err)
	}

	variations := make([]entities.Variation, 0, len(rows))
	for _, row := range rows {
		variations = append(variations, rowToVariation(row))
	}
	return variations, nil
}

func rowToRecord(row projectRow) ports.ProjectRecord {
	record := ports.ProjectRecord{
		ID:          valueobjects.ProjectID(row.ID),
		Name:        row.Name,
		Description: row.Description,
		Viewport: valueobjects.Viewport{
			Zoom: row.Zoom,
			PanX: row.PanX,
			PanY: row.PanY,
		},
		AIModel: row.AIModel,
	}
	if record.Viewport.Zoom == 0 {
		record.Viewport = valueobjects.DefaultViewport()
	}
	if row.CreatedAt != nil {
		record.CreatedAt = *row.CreatedAt
	}
	if row.UpdatedAt != nil {
		record.UpdatedAt = *row.UpdatedAt
	}
	return record
}
