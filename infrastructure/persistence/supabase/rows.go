package supabase

import (
	"time"

	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
)

// Table names in the remote store
const (
	projectsTable    = "projects"
	nodesTable       = "canvas_nodes"
	connectionsTable = "node_connections"
	variationsTable  = "ui_variations"
)

// projectRow mirrors the projects table
type projectRow struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Zoom        float64    `json:"zoom"`
	PanX        float64    `json:"pan_x"`
	PanY        float64    `json:"pan_y"`
	AIModel     string     `json:"ai_model"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}

// nodeRow mirrors the canvas_nodes table. The adjacency is not a column;
// it lives in node_connections and is resolved separately.
type nodeRow struct {
	ProjectID     string                 `json:"project_id"`
	ClientID      string                 `json:"client_id"`
	NodeType      string                 `json:"node_type"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description"`
	X             float64                `json:"x"`
	Y             float64                `json:"y"`
	Width         float64                `json:"width"`
	Height        float64                `json:"height"`
	Status        string                 `json:"status"`
	Content       *string                `json:"content"`
	FileName      *string                `json:"file_name"`
	GeneratedCode *string                `json:"generated_code"`
	Picked        bool                   `json:"picked"`
	ParentID      *string                `json:"parent_id"`
	PageRole      *string                `json:"page_role"`
	Tag           *string                `json:"tag"`
	Platform      *string                `json:"platform"`
	Language      *string                `json:"language"`
	AIModel       *string                `json:"ai_model"`
	ElementLinks  []entities.ElementLink `json:"element_links"`
	EnvVars       map[string]string      `json:"env_vars"`
	CreatedAt     *time.Time             `json:"created_at,omitempty"`
}

// connectionRow mirrors the node_connections table: one row per directed
// edge, keyed by the nodes' client ids.
type connectionRow struct {
	ProjectID    string `json:"project_id"`
	FromClientID string `json:"from_client_id"`
	ToClientID   string `json:"to_client_id"`
}

// variationRow mirrors the ui_variations table
type variationRow struct {
	ID                 string     `json:"id,omitempty"`
	ProjectID          string     `json:"project_id"`
	SourceNodeClientID string     `json:"source_node_client_id"`
	Label              string     `json:"label"`
	Description        string     `json:"description"`
	PreviewHTML        string     `json:"preview_html"`
	Code               string     `json:"code"`
	Category           string     `json:"category"`
	CreatedAt          *time.Time `json:"created_at,omitempty"`
}

// nodeToRow serializes a node for the bulk insert. Every node field is
// carried verbatim, maps included.
func nodeToRow(projectID valueobjects.ProjectID, n *entities.Node) nodeRow {
	elementLinks := n.ElementLinks()
	if elementLinks == nil {
		elementLinks = []entities.ElementLink{}
	}
	envVars := n.EnvVars()
	if envVars == nil {
		envVars = map[string]string{}
	}

	return nodeRow{
		ProjectID:     projectID.String(),
		ClientID:      n.ID().String(),
		NodeType:      string(n.Type()),
		Title:         n.Title(),
		Description:   n.Description(),
		X:             n.Position().X(),
		Y:             n.Position().Y(),
		Width:         n.Size().Width(),
		Height:        n.Size().Height(),
		Status:        string(n.Status()),
		Content:       nullable(n.Content()),
		FileName:      nullable(n.FileName()),
		GeneratedCode: nullable(n.GeneratedCode()),
		Picked:        n.Picked(),
		ParentID:      nullable(n.ParentID()),
		PageRole:      nullable(n.PageRole()),
		Tag:           nullable(n.Tag()),
		Platform:      nullable(string(n.Platform())),
		Language:      nullable(n.Language()),
		AIModel:       nullable(n.AIModel()),
		ElementLinks:  elementLinks,
		EnvVars:       envVars,
	}
}

// rowToNode reconstructs a node from its row and resolved adjacency
func rowToNode(row nodeRow, connectedTo []string) (*entities.Node, error) {
	id, err := valueobjects.NewNodeIDFromString(row.ClientID)
	if err != nil {
		return nil, err
	}

	adjacency := make([]valueobjects.NodeID, 0, len(connectedTo))
	for _, target := range connectedTo {
		targetID, err := valueobjects.NewNodeIDFromString(target)
		if err != nil {
			return nil, err
		}
		adjacency = append(adjacency, targetID)
	}

	createdAt := time.Now()
	if row.CreatedAt != nil {
		createdAt = *row.CreatedAt
	}

	return entities.ReconstructNode(id, entities.NodeSpec{
		Type:          entities.NodeType(row.NodeType),
		Title:         row.Title,
		Description:   row.Description,
		X:             row.X,
		Y:             row.Y,
		Width:         row.Width,
		Height:        row.Height,
		Status:        entities.NodeStatus(row.Status),
		Content:       deref(row.Content),
		FileName:      deref(row.FileName),
		GeneratedCode: deref(row.GeneratedCode),
		Language:      deref(row.Language),
		AIModel:       deref(row.AIModel),
		Picked:        row.Picked,
		ParentID:      deref(row.ParentID),
		PageRole:      deref(row.PageRole),
		Tag:           deref(row.Tag),
		Platform:      entities.Platform(deref(row.Platform)),
		ElementLinks:  row.ElementLinks,
		EnvVars:       row.EnvVars,
	}, adjacency, createdAt)
}

// flattenConnections derives one row per (from, to) pair from every node's
// outgoing adjacency.
func flattenConnections(projectID valueobjects.ProjectID, nodes []*entities.Node) []connectionRow {
	var rows []connectionRow
	for _, n := range nodes {
		for _, target := range n.ConnectedTo() {
			rows = append(rows, connectionRow{
				ProjectID:    projectID.String(),
				FromClientID: n.ID().String(),
				ToClientID:   target.String(),
			})
		}
	}
	return rows
}

// groupConnections builds the from-id to outgoing-ids mapping used when
// reconstructing adjacency on load.
func groupConnections(rows []connectionRow) map[string][]string {
	grouped := make(map[string][]string)
	for _, row := range rows {
		grouped[row.FromClientID] = append(grouped[row.FromClientID], row.ToClientID)
	}
	return grouped
}

func variationToRow(projectID valueobjects.ProjectID, sourceNodeID valueobjects.NodeID, v entities.Variation) variationRow {
	return variationRow{
		ProjectID:          projectID.String(),
		SourceNodeClientID: sourceNodeID.String(),
		Label:              v.Label,
		Description:        v.Description,
		PreviewHTML:        v.PreviewHTML,
		Code:               v.Code,
		Category:           string(v.Category),
	}
}

func rowToVariation(row variationRow) entities.Variation {
	return entities.Variation{
		ID:          row.ID,
		Label:       row.Label,
		Description: row.Description,
		PreviewHTML: row.PreviewHTML,
		Code:        row.Code,
		Category:    entities.VariationCategory(row.Category),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
