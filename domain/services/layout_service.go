package services

import (
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/entities"
	"github.com/alfhazis/infinite-canvas-creator-sub001/domain/core/valueobjects"
	pkgerrors "github.com/alfhazis/infinite-canvas-creator-sub001/pkg/errors"
)

// Rect is an axis-aligned bounding box in canvas coordinates
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// NodeBounds extracts the bounding box of a node
func NodeBounds(n *entities.Node) Rect {
	return Rect{
		X:      n.Position().X(),
		Y:      n.Position().Y(),
		Width:  n.Size().Width(),
		Height: n.Size().Height(),
	}
}

// Layout defaults. Existing rects with zero footprint fall back to the
// standard node card size.
const (
	DefaultPadding = 40.0
	DefaultStep    = 40.0
	GridPadding    = 60.0

	fallbackWidth  = 360.0
	fallbackHeight = 300.0

	maxAttempts       = 500
	maxVerticalOffset = 1500.0
)

// LayoutService finds non-overlapping positions for new nodes. All methods
// are pure functions of their inputs: identical snapshots and anchors yield
// identical placements.
type LayoutService struct {
	padding float64
	step    float64
}

// NewLayoutService creates a layout service with the default padding and step
func NewLayoutService() *LayoutService {
	return &LayoutService{padding: DefaultPadding, step: DefaultStep}
}

// NewTunedLayoutService creates a layout service with custom spacing. Values
// at or below zero fall back to the defaults.
func NewTunedLayoutService(padding, step float64) *LayoutService {
	if padding <= 0 {
		padding = DefaultPadding
	}
	if step <= 0 {
		step = DefaultStep
	}
	return &LayoutService{padding: padding, step: step}
}

// FindFreePosition returns a placement for a width×height footprint near the
// (startX, startY) anchor such that the padded bounding box overlaps no
// existing rect. The search walks down the anchor column in fixed steps;
// once it has descended past the vertical budget it shifts one column right
// and resets. After the attempt budget the current candidate is returned,
// which by then lies beyond every scanned region, so the search never fails.
func (s *LayoutService) FindFreePosition(existing []Rect, width, height, startX, startY float64) (valueobjects.Position, error) {
	return s.findFreePosition(existing, width, height, startX, startY, s.padding)
}

func (s *LayoutService) findFreePosition(existing []Rect, width, height, startX, startY, padding float64) (valueobjects.Position, error) {
	if width <= 0 || height <= 0 {
		return valueobjects.Position{}, pkgerrors.NewValidationError("placement footprint must be positive")
	}

	x := startX
	y := startY

	for attempts := 0; attempts < maxAttempts; attempts++ {
		if !overlapsAny(existing, x, y, width, height, padding) {
			break
		}
		y += s.step

		// Descended too far: shift one column right, restart from the anchor row.
		if y-startY > maxVerticalOffset {
			x += width + padding
			y = startY
		}
	}

	return valueobjects.NewPosition(x, y)
}

// PlaceBatch places a sequence of footprints starting from a shared anchor.
// Each placement's snapshot includes all prior placements from the same
// batch, so the results never overlap each other.
func (s *LayoutService) PlaceBatch(existing []Rect, footprints []Rect, startX, startY float64) ([]valueobjects.Position, error) {
	current := make([]Rect, len(existing))
	copy(current, existing)

	positions := make([]valueobjects.Position, 0, len(footprints))
	for _, fp := range footprints {
		pos, err := s.findFreePosition(current, fp.Width, fp.Height, startX, startY, GridPadding)
		if err != nil {
			return nil, err
		}
		positions = append(positions, pos)
		current = append(current, Rect{X: pos.X(), Y: pos.Y(), Width: fp.Width, Height: fp.Height})
	}
	return positions, nil
}

// overlapsAny tests the padded AABB against every existing rect
func overlapsAny(existing []Rect, x, y, width, height, padding float64) bool {
	for _, r := range existing {
		rw := r.Width
		rh := r.Height
		if rw <= 0 {
			rw = fallbackWidth
		}
		if rh <= 0 {
			rh = fallbackHeight
		}

		if x < r.X+rw+padding &&
			x+width+padding > r.X &&
			y < r.Y+rh+padding &&
			y+height+padding > r.Y {
			return true
		}
	}
	return false
}
