package ports

import (
	"context"
	"time"

	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/aggregates"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
)

// ProjectRecord is a project as known to the remote store
type ProjectRecord struct {
	ID          valueobjects.ProjectID
	Name        string
	Description string
	Viewport    valueobjects.Viewport
	AIModel     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectUpdate carries partial scalar updates to a project record
type ProjectUpdate struct {
	Name        *string
	Description *string
	Zoom        *float64
	PanX        *float64
	PanY        *float64
	AIModel     *string
}

// ProjectStore is the CRUD-capable collaborator backing project persistence.
// This is a port in hexagonal architecture: the domain knows nothing about
// the transport.
//
// Failure semantics: every method surfaces the first error it hits and does
// not retry; retry and backoff belong to the caller. Load fails with a
// NotFound error when the project does not exist and a Storage error on any
// transport or backend failure.
type ProjectStore interface {
	// ListProjects returns project summaries, most-recently-updated first
	ListProjects(ctx context.Context) ([]ProjectRecord, error)

	// CreateProject creates a project and returns its record
	CreateProject(ctx context.Context, name, description string) (*ProjectRecord, error)

	// UpdateProject applies partial scalar updates to a project
	UpdateProject(ctx context.Context, id valueobjects.ProjectID, update ProjectUpdate) error

	// DeleteProject removes a project and all of its rows
	DeleteProject(ctx context.Context, id valueobjects.ProjectID) error

	// LoadProjectGraph reconstructs the full graph snapshot for a project
	LoadProjectGraph(ctx context.Context, id valueobjects.ProjectID) (aggregates.Snapshot, error)

	// ReplaceProjectGraph performs a full-replace write of the graph:
	// project scalars, then all node rows, then all connection rows.
	ReplaceProjectGraph(ctx context.Context, id valueobjects.ProjectID, snapshot aggregates.Snapshot) error

	// SaveVariations stores generated variations for a source node
	SaveVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID, variations []entities.Variation) error

	// LoadVariations returns variations for a source node, most recent first
	LoadVariations(ctx context.Context, projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID) ([]entities.Variation, error)
}
