package valueobjects

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// nodeCounter provides the monotonic component of node ids. Combined with
// the millisecond timestamp it guarantees uniqueness within a process
// lifetime even when two nodes are created in the same millisecond.
var nodeCounter atomic.Int64

// NodeID is a value object identifying a canvas node. It is assigned once at
// creation, never reused and never changes for the node's lifetime.
type NodeID struct {
	value string
}

// NewNodeID creates a fresh NodeID in the node-<counter>-<unixmillis> format.
func NewNodeID() NodeID {
	return NodeID{value: fmt.Sprintf("node-%d-%d", nodeCounter.Add(1), time.Now().UnixMilli())}
}

// NewNodeIDFromString creates a NodeID from an existing string.
// Ids are opaque; any non-empty string is accepted.
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return errors.New("NodeID must be a string")
	}
	id.value = string(data[1 : len(data)-1])
	return nil
}

// ProjectID identifies a project in the remote store.
type ProjectID string

// NewProjectID creates a new random ProjectID
func NewProjectID() ProjectID {
	return ProjectID(uuid.New().String())
}

// String returns the string representation
func (id ProjectID) String() string {
	return string(id)
}

// IsZero checks if the ProjectID is empty
func (id ProjectID) IsZero() bool {
	return id == ""
}
