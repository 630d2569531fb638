package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rectsOverlap(a, b Rect, padding float64) bool {
	return a.X < b.X+b.Width+padding &&
		a.X+a.Width+padding > b.X &&
		a.Y < b.Y+b.Height+padding &&
		a.Y+a.Height+padding > b.Y
}

func TestLayoutService_FindFreePosition_EmptyCanvas(t *testing.T) {
	svc := NewLayoutService()

	pos, err := svc.FindFreePosition(nil, 360, 300, 100, 100)
	require.NoError(t, err)

	// Nothing to avoid: the anchor itself is free
	assert.Equal(t, 100.0, pos.X())
	assert.Equal(t, 100.0, pos.Y())
}

func TestLayoutService_FindFreePosition_AvoidsExisting(t *testing.T) {
	svc := NewLayoutService()
	existing := []Rect{
		{X: 100, Y: 100, Width: 360, Height: 300},
	}

	pos, err := svc.FindFreePosition(existing, 360, 300, 100, 100)
	require.NoError(t, err)

	placed := Rect{X: pos.X(), Y: pos.Y(), Width: 360, Height: 300}
	assert.False(t, rectsOverlap(placed, existing[0], DefaultPadding))
}

func TestLayoutService_FindFreePosition_StepsDownward(t *testing.T) {
	svc := NewLayoutService()
	existing := []Rect{
		{X: 100, Y: 100, Width: 360, Height: 300},
	}

	pos, err := svc.FindFreePosition(existing, 360, 300, 100, 100)
	require.NoError(t, err)

	// Same column, descended past the padded obstacle
	assert.Equal(t, 100.0, pos.X())
	assert.Greater(t, pos.Y(), 100.0)
}

func TestLayoutService_FindFreePosition_ShiftsRightWhenColumnFull(t *testing.T) {
	svc := NewLayoutService()

	// Fill the anchor column beyond the vertical search budget
	var existing []Rect
	for y := 0.0; y <= 2200; y += 100 {
		existing = append(existing, Rect{X: 100, Y: y, Width: 360, Height: 300})
	}

	pos, err := svc.FindFreePosition(existing, 360, 300, 100, 0)
	require.NoError(t, err)

	assert.Greater(t, pos.X(), 100.0)
	placed := Rect{X: pos.X(), Y: pos.Y(), Width: 360, Height: 300}
	for _, r := range existing {
		assert.False(t, rectsOverlap(placed, r, DefaultPadding))
	}
}

func TestLayoutService_FindFreePosition_Deterministic(t *testing.T) {
	svc := NewLayoutService()
	existing := []Rect{
		{X: 0, Y: 0, Width: 200, Height: 200},
		{X: 0, Y: 300, Width: 200, Height: 200},
	}

	first, err := svc.FindFreePosition(existing, 150, 150, 0, 0)
	require.NoError(t, err)
	second, err := svc.FindFreePosition(existing, 150, 150, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, first.X(), second.X())
	assert.Equal(t, first.Y(), second.Y())
}

func TestLayoutService_FindFreePosition_ZeroSizedExistingUsesFallback(t *testing.T) {
	svc := NewLayoutService()
	existing := []Rect{
		{X: 100, Y: 100, Width: 0, Height: 0},
	}

	pos, err := svc.FindFreePosition(existing, 100, 100, 100, 100)
	require.NoError(t, err)

	// The zero-sized entry still occupies the fallback card footprint
	placed := Rect{X: pos.X(), Y: pos.Y(), Width: 100, Height: 100}
	occupied := Rect{X: 100, Y: 100, Width: 360, Height: 300}
	assert.False(t, rectsOverlap(placed, occupied, DefaultPadding))
}

func TestLayoutService_FindFreePosition_InvalidFootprint(t *testing.T) {
	svc := NewLayoutService()

	tests := []struct {
		name          string
		width, height float64
	}{
		{name: "zero width", width: 0, height: 100},
		{name: "zero height", width: 100, height: 0},
		{name: "negative width", width: -10, height: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FindFreePosition(nil, tt.width, tt.height, 0, 0)
			assert.Error(t, err)
		})
	}
}

func TestLayoutService_PlaceBatch_NoMutualOverlap(t *testing.T) {
	svc := NewLayoutService()
	existing := []Rect{
		{X: 0, Y: 0, Width: 360, Height: 300},
	}
	footprints := []Rect{
		{Width: 360, Height: 300},
		{Width: 360, Height: 300},
		{Width: 200, Height: 150},
	}

	positions, err := svc.PlaceBatch(existing, footprints, 0, 0)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	placed := make([]Rect, len(positions))
	for i, pos := range positions {
		placed[i] = Rect{X: pos.X(), Y: pos.Y(), Width: footprints[i].Width, Height: footprints[i].Height}
	}

	// No placement overlaps the pre-existing rect or an earlier placement
	for i, p := range placed {
		assert.False(t, rectsOverlap(p, existing[0], GridPadding), "placement %d overlaps existing", i)
		for j := 0; j < i; j++ {
			assert.False(t, rectsOverlap(p, placed[j], GridPadding), "placements %d and %d overlap", i, j)
		}
	}
}

func TestLayoutService_PlaceBatch_Empty(t *testing.T) {
	svc := NewLayoutService()
	positions, err := svc.PlaceBatch(nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, positions)
}

func TestNewTunedLayoutService_FallsBackOnInvalid(t *testing.T) {
	svc := NewTunedLayoutService(-1, 0)
	assert.Equal(t, DefaultPadding, svc.padding)
	assert.Equal(t, DefaultStep, svc.step)
}
