package valueobjects

import (
	"math"

	pkgerrors "github.com/alfhazis/infinite-canvas-creator-sub001/pkg/errors"
)

// Position is a value object representing node coordinates in the canvas
// coordinate space (top-left origin).
type Position struct {
	x float64
	y float64
}

// NewPosition creates a position with validation
func NewPosition(x, y float64) (Position, error) {
	if !isFinite(x) || !isFinite(y) {
		return Position{}, pkgerrors.NewValidationError("invalid coordinates: must be finite numbers")
	}
	return Position{x: x, y: y}, nil
}

// X returns the X coordinate
func (p Position) X() float64 {
	return p.x
}

// Y returns the Y coordinate
func (p Position) Y() float64 {
	return p.y
}

// Translate moves the position by the given offsets
func (p Position) Translate(dx, dy float64) (Position, error) {
	return NewPosition(p.x+dx, p.y+dy)
}

// Equals checks if two positions are equal
func (p Position) Equals(other Position) bool {
	const epsilon = 1e-9
	return math.Abs(p.x-other.x) < epsilon && math.Abs(p.y-other.y) < epsilon
}

// Size is a value object for a node's footprint. Width and height are
// always strictly positive.
type Size struct {
	width  float64
	height float64
}

// NewSize creates a size with validation
func NewSize(width, height float64) (Size, error) {
	if !isFinite(width) || !isFinite(height) {
		return Size{}, pkgerrors.NewValidationError("invalid size: must be finite numbers")
	}
	if width <= 0 || height <= 0 {
		return Size{}, pkgerrors.NewValidationError("invalid size: width and height must be positive")
	}
	return Size{width: width, height: height}, nil
}

// Width returns the width
func (s Size) Width() float64 {
	return s.width
}

// Height returns the height
func (s Size) Height() float64 {
	return s.height
}

// Viewport holds the zoom and pan state of the canvas, persisted per project.
type Viewport struct {
	Zoom float64
	PanX float64
	PanY float64
}

// Zoom bounds enforced by the canvas
const (
	MinZoom = 0.1
	MaxZoom = 3.0
)

// DefaultViewport returns the viewport of a freshly activated project
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1, PanX: 0, PanY: 0}
}

// ClampZoom clamps a zoom factor to the allowed range
func ClampZoom(z float64) float64 {
	return math.Max(MinZoom, math.Min(MaxZoom, z))
}

// isFinite checks if a coordinate is a valid finite number
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
