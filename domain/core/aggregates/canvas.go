package aggregates

import (
	"sync"

	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
)

// DefaultAIModel is the model selection of a project that never chose one
const DefaultAIModel = "auto"

// connectState is the connecting-mode state machine: Idle or Connecting(from)
type connectState struct {
	active bool
	fromID valueobjects.NodeID
}

// dragState records the per-drag pointer offset captured at drag start
type dragState struct {
	active  bool
	nodeID  valueobjects.NodeID
	offsetX float64
	offsetY float64
}

// Canvas is the aggregate root for the node/connection graph of the active
// project: the single source of truth for nodes, selection state and the
// viewport. Graph mutations are single-threaded by calling convention; the
// mutex only guards against concurrent readers from the HTTP surface and is
// never held across I/O.
//
// Operations referencing an absent node id degrade to silent no-ops so UI
// interactions stay forgiving; structurally invalid input is rejected before
// any state changes.
type Canvas struct {
	mu sync.RWMutex

	nodes      []*entities.Node
	viewport   valueobjects.Viewport
	aiModel    string
	selectedID valueobjects.NodeID

	connecting connectState
	drag       dragState

	dirty bool
}

// NewCanvas creates an empty canvas with the default viewport
func NewCanvas() *Canvas {
	return &Canvas{
		viewport: valueobjects.DefaultViewport(),
		aiModel:  DefaultAIModel,
	}
}

// AddNode creates a node from the spec, assigns a fresh id, initializes its
// adjacency to empty and appends it preserving insertion order.
func (c *Canvas) AddNode(spec entities.NodeSpec) (valueobjects.NodeID, error) {
	node, err := entities.NewNode(spec)
	if err != nil {
		return valueobjects.NodeID{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = append(c.nodes, node)
	c.dirty = true
	return node.ID(), nil
}

// UpdateNode merges partial fields into the node. Absent id is a no-op;
// invalid fields are rejected before any mutation.
func (c *Canvas) UpdateNode(id valueobjects.NodeID, update entities.NodeUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.findLocked(id)
	if !ok {
		return nil
	}
	if err := node.Apply(update); err != nil {
		return err
	}
	c.dirty = true
	return nil
}

// RemoveNode deletes the node and purges its id from every remaining node's
// adjacency. Selection is cleared if the removed node held it. Idempotent.
func (c *Canvas) RemoveNode(id valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := false
	kept := c.nodes[:0]
	for _, n := range c.nodes {
		if n.ID().Equals(id) {
			removed = true
			continue
		}
		kept = append(kept, n)
	}
	if !removed {
		return
	}
	c.nodes = kept

	for _, n := range c.nodes {
		n.Disconnect(id)
	}
	if c.selectedID.Equals(id) {
		c.selectedID = valueobjects.NodeID{}
	}
	c.dirty = true
}

// DuplicateNode clones an existing node with a fresh id, a fixed position
// offset, empty adjacency and picked reset. No-op if the source is absent;
// it returns the new id and whether a clone was made.
func (c *Canvas) DuplicateNode(id valueobjects.NodeID) (valueobjects.NodeID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	source, ok := c.findLocked(id)
	if !ok {
		return valueobjects.NodeID{}, false
	}
	clone := source.Duplicate()
	c.nodes = append(c.nodes, clone)
	c.dirty = true
	return clone.ID(), true
}

// ConnectNodes appends toID to fromID's adjacency unless already present.
// No-op if fromID is absent. Self-loops are permitted; assembly ignores them.
func (c *Canvas) ConnectNodes(fromID, toID valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectLocked(fromID, toID)
}

func (c *Canvas) connectLocked(fromID, toID valueobjects.NodeID) {
	node, ok := c.findLocked(fromID)
	if !ok {
		return
	}
	if node.ConnectTo(toID) {
		c.dirty = true
	}
}

// DisconnectNodes removes toID from fromID's adjacency if present
func (c *Canvas) DisconnectNodes(fromID, toID valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.findLocked(fromID)
	if !ok {
		return
	}
	if node.Disconnect(toID) {
		c.dirty = true
	}
}

// TogglePick flips the picked flag; no-op if the id is absent
func (c *Canvas) TogglePick(id valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	node, ok := c.findLocked(id)
	if !ok {
		return
	}
	node.TogglePick()
	c.dirty = true
}

// SelectNode marks a node as selected; a zero id clears the selection
func (c *Canvas) SelectNode(id valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedID = id
}

// SelectedNode returns the current selection, if any
func (c *Canvas) SelectedNode() (valueobjects.NodeID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selectedID, !c.selectedID.IsZero()
}

// SetZoom clamps z into [0.1, 3.0] and applies it
func (c *Canvas) SetZoom(z float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport.Zoom = valueobjects.ClampZoom(z)
	c.dirty = true
}

// SetPan sets the pan offset unconditionally
func (c *Canvas) SetPan(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport.PanX = x
	c.viewport.PanY = y
	c.dirty = true
}

// Viewport returns the current viewport
func (c *Canvas) Viewport() valueobjects.Viewport {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewport
}

// SetAIModel records the project-level model selection
func (c *Canvas) SetAIModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aiModel = model
	c.dirty = true
}

// AIModel returns the project-level model selection
func (c *Canvas) AIModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.aiModel
}

// StartDrag records the node and pointer offset for a drag gesture.
// No-op if the node is absent.
func (c *Canvas) StartDrag(id valueobjects.NodeID, offsetX, offsetY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.findLocked(id); !ok {
		return
	}
	c.drag = dragState{active: true, nodeID: id, offsetX: offsetX, offsetY: offsetY}
}

// Drag moves the dragged node to the canvas-space position of the pointer:
// (pointer − dragOffset − pan) / zoom, identically in both axes.
func (c *Canvas) Drag(pointerX, pointerY float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.drag.active {
		return
	}
	node, ok := c.findLocked(c.drag.nodeID)
	if !ok {
		return
	}

	x := (pointerX - c.drag.offsetX - c.viewport.PanX) / c.viewport.Zoom
	y := (pointerY - c.drag.offsetY - c.viewport.PanY) / c.viewport.Zoom
	position, err := valueobjects.NewPosition(x, y)
	if err != nil {
		return
	}
	node.MoveTo(position)
	c.dirty = true
}

// EndDrag finishes the drag gesture
func (c *Canvas) EndDrag() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drag = dragState{}
}

// StartConnecting moves the state machine from Idle to Connecting(fromID)
func (c *Canvas) StartConnecting(fromID valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.findLocked(fromID); !ok {
		return
	}
	c.connecting = connectState{active: true, fromID: fromID}
}

// FinishConnecting connects the pending source node to toID (when distinct) and
// returns to Idle. Calling it while Idle is a no-op.
func (c *Canvas) FinishConnecting(toID valueobjects.NodeID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connecting.active {
		return
	}
	fromID := c.connecting.fromID
	c.connecting = connectState{}
	if !fromID.Equals(toID) {
		c.connectLocked(fromID, toID)
	}
}

// CancelConnecting returns to Idle without side effects
func (c *Canvas) CancelConnecting() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connecting = connectState{}
}

// Connecting returns the pending source node while in connecting mode
func (c *Canvas) Connecting() (valueobjects.NodeID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connecting.fromID, c.connecting.active
}

// ClearAll empties the node list and clears selection and transient gesture
// state. The viewport is untouched; callers reset it separately when
// switching projects.
func (c *Canvas) ClearAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nodes = nil
	c.selectedID = valueobjects.NodeID{}
	c.connecting = connectState{}
	c.drag = dragState{}
	c.dirty = true
}

// Nodes returns the nodes in insertion order
func (c *Canvas) Nodes() []*entities.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*entities.Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// FindNode returns the node with the given id
func (c *Canvas) FindNode(id valueobjects.NodeID) (*entities.Node, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findLocked(id)
}

// PickedNodes returns the picked nodes in insertion order
func (c *Canvas) PickedNodes() []*entities.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var picked []*entities.Node
	for _, n := range c.nodes {
		if n.Picked() {
			picked = append(picked, n)
		}
	}
	return picked
}

// NodeCount returns the number of nodes
func (c *Canvas) NodeCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.nodes)
}

// Snapshot is a deep copy of the full graph state at a point in time, used
// as input to placement, assembly and persistence. A save operating on a
// snapshot never observes mutations made after it was taken.
type Snapshot struct {
	Nodes    []*entities.Node
	Viewport valueobjects.Viewport
	AIModel  string
}

// TakeSnapshot captures the current graph state
func (c *Canvas) TakeSnapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	nodes := make([]*entities.Node, len(c.nodes))
	for i, n := range c.nodes {
		nodes[i] = n.Copy()
	}
	return Snapshot{Nodes: nodes, Viewport: c.viewport, AIModel: c.aiModel}
}

// Restore fully replaces the canvas with a loaded snapshot: nodes, viewport
// and model selection. Selection and gesture state reset; the canvas comes
// back clean.
func (c *Canvas) Restore(snapshot Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	nodes := make([]*entities.Node, len(snapshot.Nodes))
	for i, n := range snapshot.Nodes {
		nodes[i] = n.Copy()
	}
	c.nodes = nodes
	c.viewport = snapshot.Viewport
	c.aiModel = snapshot.AIModel
	if c.aiModel == "" {
		c.aiModel = DefaultAIModel
	}
	c.selectedID = valueobjects.NodeID{}
	c.connecting = connectState{}
	c.drag = dragState{}
	c.dirty = false
}

// Dirty reports whether the canvas changed since the last save or restore
func (c *Canvas) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dirty
}

// MarkClean resets the dirty flag after a successful save
func (c *Canvas) MarkClean() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = false
}

func (c *Canvas) findLocked(id valueobjects.NodeID) (*entities.Node, bool) {
	for _, n := range c.nodes {
		if n.ID().Equals(id) {
			return n, true
		}
	}
	return nil, false
}
