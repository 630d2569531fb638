package entities

import (
	"time"

	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
	pkgerrors "github.com/alfhazis/infinite-canvas-creator-sub001/pkg/errors"
)

// NodeType is the closed set of canvas node kinds. Behavior-neutral to the
// canvas itself except where assembly notes otherwise.
type NodeType string

const (
	NodeTypeIdea     NodeType = "idea"
	NodeTypeDesign   NodeType = "design"
	NodeTypeCode     NodeType = "code"
	NodeTypeImport   NodeType = "import"
	NodeTypeAPI      NodeType = "api"
	NodeTypeCLI      NodeType = "cli"
	NodeTypeDatabase NodeType = "database"
	NodeTypePayment  NodeType = "payment"
	NodeTypeEnv      NodeType = "env"
)

// IsValid reports whether t is a known node type
func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeIdea, NodeTypeDesign, NodeTypeCode, NodeTypeImport,
		NodeTypeAPI, NodeTypeCLI, NodeTypeDatabase, NodeTypePayment, NodeTypeEnv:
		return true
	}
	return false
}

// NodeStatus is the lifecycle status of a node
type NodeStatus string

const (
	StatusIdle       NodeStatus = "idle"
	StatusGenerating NodeStatus = "generating"
	StatusReady      NodeStatus = "ready"
	StatusRunning    NodeStatus = "running"
)

// IsValid reports whether s is a known status
func (s NodeStatus) IsValid() bool {
	switch s {
	case StatusIdle, StatusGenerating, StatusReady, StatusRunning:
		return true
	}
	return false
}

// Platform is the target platform hint for generated output. Empty means unset.
type Platform string

const (
	PlatformWeb      Platform = "web"
	PlatformMobile   Platform = "mobile"
	PlatformAPI      Platform = "api"
	PlatformDesktop  Platform = "desktop"
	PlatformCLI      Platform = "cli"
	PlatformDatabase Platform = "database"
	PlatformEnv      Platform = "env"
)

// IsValid reports whether p is a known platform or unset
func (p Platform) IsValid() bool {
	switch p {
	case "", PlatformWeb, PlatformMobile, PlatformAPI, PlatformDesktop,
		PlatformCLI, PlatformDatabase, PlatformEnv:
		return true
	}
	return false
}

// ElementLink ties an HTML element inside a design node's content to
// another canvas node.
type ElementLink struct {
	Selector     string `json:"selector"`
	Label        string `json:"label"`
	TargetNodeID string `json:"targetNodeId"`
	ElementType  string `json:"elementType,omitempty"`
}

// duplicateOffset is the fixed position delta applied when cloning a node
const duplicateOffset = 40.0

// Node is a positioned, typed unit of content on the canvas.
// The canvas aggregate holds exclusive mutation rights over nodes.
type Node struct {
	id          valueobjects.NodeID
	nodeType    NodeType
	title       string
	description string
	position    valueobjects.Position
	size        valueobjects.Size
	status      NodeStatus

	content       string
	fileName      string
	generatedCode string
	language      string
	aiModel       string

	picked   bool
	parentID string // lineage back-reference only, never an ownership link
	pageRole string
	tag      string
	platform Platform

	elementLinks []ElementLink
	envVars      map[string]string
	connectedTo  []valueobjects.NodeID

	createdAt time.Time
	updatedAt time.Time
}

// NodeSpec carries the creation-time fields of a node. Id and adjacency are
// never part of a spec: the id is generated, adjacency starts empty.
type NodeSpec struct {
	Type        NodeType
	Title       string
	Description string
	X           float64
	Y           float64
	Width       float64
	Height      float64

	Status        NodeStatus
	Content       string
	FileName      string
	GeneratedCode string
	Language      string
	AIModel       string

	Picked   bool
	ParentID string
	PageRole string
	Tag      string
	Platform Platform

	ElementLinks []ElementLink
	EnvVars      map[string]string
}

// NewNode creates a node from a spec with full validation. A fresh id is
// assigned; connections start empty.
func NewNode(spec NodeSpec) (*Node, error) {
	return newNode(valueobjects.NewNodeID(), spec, nil, time.Now())
}

// ReconstructNode rebuilds a node from persisted state, keeping its id and
// resolved adjacency.
func ReconstructNode(id valueobjects.NodeID, spec NodeSpec, connectedTo []valueobjects.NodeID, createdAt time.Time) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	return newNode(id, spec, connectedTo, createdAt)
}

func newNode(id valueobjects.NodeID, spec NodeSpec, connectedTo []valueobjects.NodeID, createdAt time.Time) (*Node, error) {
	if !spec.Type.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown node type: " + string(spec.Type))
	}
	if spec.Title == "" {
		return nil, pkgerrors.NewValidationError("node title cannot be empty")
	}

	position, err := valueobjects.NewPosition(spec.X, spec.Y)
	if err != nil {
		return nil, err
	}
	size, err := valueobjects.NewSize(spec.Width, spec.Height)
	if err != nil {
		return nil, err
	}

	status := spec.Status
	if status == "" {
		status = StatusIdle
	}
	if !status.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown node status: " + string(status))
	}
	if !spec.Platform.IsValid() {
		return nil, pkgerrors.NewValidationError("unknown platform: " + string(spec.Platform))
	}

	node := &Node{
		id:            id,
		nodeType:      spec.Type,
		title:         spec.Title,
		description:   spec.Description,
		position:      position,
		size:          size,
		status:        status,
		content:       spec.Content,
		fileName:      spec.FileName,
		generatedCode: spec.GeneratedCode,
		language:      spec.Language,
		aiModel:       spec.AIModel,
		picked:        spec.Picked,
		parentID:      spec.ParentID,
		pageRole:      spec.PageRole,
		tag:           spec.Tag,
		platform:      spec.Platform,
		elementLinks:  copyElementLinks(spec.ElementLinks),
		envVars:       copyEnvVars(spec.EnvVars),
		connectedTo:   copyNodeIDs(connectedTo),
		createdAt:     createdAt,
		updatedAt:     createdAt,
	}

	return node, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Type returns the node's kind
func (n *Node) Type() NodeType {
	return n.nodeType
}

// Title returns the node's title
func (n *Node) Title() string {
	return n.title
}

// Description returns the node's description
func (n *Node) Description() string {
	return n.description
}

// Position returns the node's top-left position
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Size returns the node's footprint
func (n *Node) Size() valueobjects.Size {
	return n.size
}

// Status returns the node's lifecycle status
func (n *Node) Status() NodeStatus {
	return n.status
}

// Content returns the rendered HTML/artifact string, empty if absent.
// Content takes precedence over GeneratedCode when assembling.
func (n *Node) Content() string {
	return n.content
}

// FileName returns the associated file name, empty if absent
func (n *Node) FileName() string {
	return n.fileName
}

// GeneratedCode returns the source representation, empty if absent
func (n *Node) GeneratedCode() string {
	return n.generatedCode
}

// Language returns the language hint of the generated code
func (n *Node) Language() string {
	return n.language
}

// AIModel returns the model selection recorded on this node
func (n *Node) AIModel() string {
	return n.aiModel
}

// Picked reports whether the node is flagged for assembly
func (n *Node) Picked() bool {
	return n.picked
}

// ParentID returns the lineage back-reference, empty if the node has none.
// Deleting the referenced node never cascades here.
func (n *Node) ParentID() string {
	return n.parentID
}

// PageRole returns the assembly grouping label
func (n *Node) PageRole() string {
	return n.pageRole
}

// Tag returns the color tag
func (n *Node) Tag() string {
	return n.tag
}

// Platform returns the target platform hint
func (n *Node) Platform() Platform {
	return n.platform
}

// ElementLinks returns a copy of the element links
func (n *Node) ElementLinks() []ElementLink {
	return copyElementLinks(n.elementLinks)
}

// EnvVars returns a copy of the environment variable map
func (n *Node) EnvVars() map[string]string {
	return copyEnvVars(n.envVars)
}

// ConnectedTo returns a copy of the outgoing adjacency, in connect order
func (n *Node) ConnectedTo() []valueobjects.NodeID {
	return copyNodeIDs(n.connectedTo)
}

// CreatedAt returns when the node was created
func (n *Node) CreatedAt() time.Time {
	return n.createdAt
}

// UpdatedAt returns when the node was last updated
func (n *Node) UpdatedAt() time.Time {
	return n.updatedAt
}

// NodeUpdate carries a field-level partial update. Nil pointers leave the
// corresponding field untouched.
type NodeUpdate struct {
	Title         *string
	Description   *string
	X             *float64
	Y             *float64
	Width         *float64
	Height        *float64
	Status        *NodeStatus
	Content       *string
	FileName      *string
	GeneratedCode *string
	Language      *string
	AIModel       *string
	Picked        *bool
	PageRole      *string
	Tag           *string
	Platform      *Platform
	ElementLinks  *[]ElementLink
	EnvVars       *map[string]string
}

// Apply merges the update into the node. Validation happens before any
// field changes, so a rejected update leaves the node untouched.
func (n *Node) Apply(u NodeUpdate) error {
	newPos := n.position
	if u.X != nil || u.Y != nil {
		x, y := n.position.X(), n.position.Y()
		if u.X != nil {
			x = *u.X
		}
		if u.Y != nil {
			y = *u.Y
		}
		pos, err := valueobjects.NewPosition(x, y)
		if err != nil {
			return err
		}
		newPos = pos
	}

	newSize := n.size
	if u.Width != nil || u.Height != nil {
		w, h := n.size.Width(), n.size.Height()
		if u.Width != nil {
			w = *u.Width
		}
		if u.Height != nil {
			h = *u.Height
		}
		size, err := valueobjects.NewSize(w, h)
		if err != nil {
			return err
		}
		newSize = size
	}

	if u.Title != nil && *u.Title == "" {
		return pkgerrors.NewValidationError("node title cannot be empty")
	}
	if u.Status != nil && !u.Status.IsValid() {
		return pkgerrors.NewValidationError("unknown node status: " + string(*u.Status))
	}
	if u.Platform != nil && !u.Platform.IsValid() {
		return pkgerrors.NewValidationError("unknown platform: " + string(*u.Platform))
	}

	n.position = newPos
	n.size = newSize
	if u.Title != nil {
		n.title = *u.Title
	}
	if u.Description != nil {
		n.description = *u.Description
	}
	if u.Status != nil {
		n.status = *u.Status
	}
	if u.Content != nil {
		n.content = *u.Content
	}
	if u.FileName != nil {
		n.fileName = *u.FileName
	}
	if u.GeneratedCode != nil {
		n.generatedCode = *u.GeneratedCode
	}
	if u.Language != nil {
		n.language = *u.Language
	}
	if u.AIModel != nil {
		n.aiModel = *u.AIModel
	}
	if u.Picked != nil {
		n.picked = *u.Picked
	}
	if u.PageRole != nil {
		n.pageRole = *u.PageRole
	}
	if u.Tag != nil {
		n.tag = *u.Tag
	}
	if u.Platform != nil {
		n.platform = *u.Platform
	}
	if u.ElementLinks != nil {
		n.elementLinks = copyElementLinks(*u.ElementLinks)
	}
	if u.EnvVars != nil {
		n.envVars = copyEnvVars(*u.EnvVars)
	}

	n.updatedAt = time.Now()
	return nil
}

// MoveTo moves the node to a new position
func (n *Node) MoveTo(position valueobjects.Position) {
	n.position = position
	n.updatedAt = time.Now()
}

// ConnectTo adds an outgoing connection. Connecting an already-connected
// pair is a no-op; it reports whether the adjacency changed.
func (n *Node) ConnectTo(target valueobjects.NodeID) bool {
	if n.IsConnectedTo(target) {
		return false
	}
	n.connectedTo = append(n.connectedTo, target)
	n.updatedAt = time.Now()
	return true
}

// Disconnect removes an outgoing connection; it reports whether the
// adjacency changed.
func (n *Node) Disconnect(target valueobjects.NodeID) bool {
	for i, id := range n.connectedTo {
		if id.Equals(target) {
			n.connectedTo = append(n.connectedTo[:i], n.connectedTo[i+1:]...)
			n.updatedAt = time.Now()
			return true
		}
	}
	return false
}

// IsConnectedTo reports whether target is in the outgoing adjacency
func (n *Node) IsConnectedTo(target valueobjects.NodeID) bool {
	for _, id := range n.connectedTo {
		if id.Equals(target) {
			return true
		}
	}
	return false
}

// TogglePick flips the picked flag
func (n *Node) TogglePick() {
	n.picked = !n.picked
	n.updatedAt = time.Now()
}

// Duplicate clones the node: fresh id, position offset by a fixed delta,
// adjacency reset to empty and picked reset to false. All other fields copy.
func (n *Node) Duplicate() *Node {
	clone := n.Copy()
	clone.id = valueobjects.NewNodeID()
	clone.position, _ = n.position.Translate(duplicateOffset, duplicateOffset)
	clone.connectedTo = nil
	clone.picked = false
	now := time.Now()
	clone.createdAt = now
	clone.updatedAt = now
	return clone
}

// Copy returns a deep copy of the node, id included. Snapshots use this so
// an in-flight save never observes later mutations.
func (n *Node) Copy() *Node {
	clone := *n
	clone.elementLinks = copyElementLinks(n.elementLinks)
	clone.envVars = copyEnvVars(n.envVars)
	clone.connectedTo = copyNodeIDs(n.connectedTo)
	return &clone
}

func copyElementLinks(links []ElementLink) []ElementLink {
	if links == nil {
		return nil
	}
	out := make([]ElementLink, len(links))
	copy(out, links)
	return out
}

func copyEnvVars(vars map[string]string) map[string]string {
	if vars == nil {
		return nil
	}
	out := make(map[string]string, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	return out
}

func copyNodeIDs(ids []valueobjects.NodeID) []valueobjects.NodeID {
	if ids == nil {
		return nil
	}
	out := make([]valueobjects.NodeID, len(ids))
	copy(out, ids)
	return out
}
