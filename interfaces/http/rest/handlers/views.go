package handlers

import (
	"time"

	"github.com/alfhazis/infinite-canvas-creator-sub001/application/ports"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
)

// NodeView is the JSON shape of a canvas node
type NodeView struct {
	ID            string                 `json:"id"`
	Type          string                 `json:"type"`
	Title         string                 `json:"title"`
	Description   string                 `json:"description,omitempty"`
	X             float64                `json:"x"`
	Y             float64                `json:"y"`
	Width         float64                `json:"width"`
	Height        float64                `json:"height"`
	Status        string                 `json:"status"`
	Content       string                 `json:"content,omitempty"`
	FileName      string                 `json:"fileName,omitempty"`
	GeneratedCode string                 `json:"generatedCode,omitempty"`
	Language      string                 `json:"language,omitempty"`
	AIModel       string                 `json:"aiModel,omitempty"`
	Picked        bool                   `json:"picked"`
	ParentID      string                 `json:"parentId,omitempty"`
	PageRole      string                 `json:"pageRole,omitempty"`
	Tag           string                 `json:"tag,omitempty"`
	Platform      string                 `json:"platform,omitempty"`
	ElementLinks  []entities.ElementLink `json:"elementLinks,omitempty"`
	EnvVars       map[string]string      `json:"envVars,omitempty"`
	ConnectedTo   []string               `json:"connectedTo"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// ViewportView is the JSON shape of the viewport
type ViewportView struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}

// ProjectView is the JSON shape of a project record
type ProjectView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Viewport    ViewportView `json:"viewport"`
	AIModel     string       `json:"aiModel"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func nodeView(n *entities.Node) NodeView {
	connected := n.ConnectedTo()
	ids := make([]string, len(connected))
	for i, id := range connected {
		ids[i] = id.String()
	}

	return NodeView{
		ID:            n.ID().String(),
		Type:          string(n.Type()),
		Title:         n.Title(),
		Description:   n.Description(),
		X:             n.Position().X(),
		Y:             n.Position().Y(),
		Width:         n.Size().Width(),
		Height:        n.Size().Height(),
		Status:        string(n.Status()),
		Content:       n.Content(),
		FileName:      n.FileName(),
		GeneratedCode: n.GeneratedCode(),
		Language:      n.Language(),
		AIModel:       n.AIModel(),
		Picked:        n.Picked(),
		ParentID:      n.ParentID(),
		PageRole:      n.PageRole(),
		Tag:           n.Tag(),
		Platform:      string(n.Platform()),
		ElementLinks:  n.ElementLinks(),
		EnvVars:       n.EnvVars(),
		ConnectedTo:   ids,
		CreatedAt:     n.CreatedAt(),
		UpdatedAt:     n.UpdatedAt(),
	}
}

func nodeViews(nodes []*entities.Node) []NodeView {
	views := make([]NodeView, len(nodes))
	for i, n := range nodes {
		views[i] = nodeView(n)
	}
	return views
}

func viewportView(v valueobjects.Viewport) ViewportView {
	return ViewportView{Zoom: v.Zoom, PanX: v.PanX, PanY: v.PanY}
}

func projectView(p ports.ProjectRecord) ProjectView {
	return ProjectView{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Viewport:    viewportView(p.Viewport),
		AIModel:     p.AIModel,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
