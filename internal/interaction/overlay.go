package interaction

import (
	"image"

	"imgedit/internal/tools"
	"imgedit/pkg/geometry"
)

// HandleSize is the on-screen edge length of a path point marker.
const HandleSize = 6.0

// PathOverlay is the closed path polygon and one marker per point, in scene
// coordinates.
type PathOverlay struct {
	Polygon []geometry.Point2D
	Handles []geometry.Rect
}

// Empty reports whether there is nothing to draw.
func (o PathOverlay) Empty() bool { return len(o.Polygon) == 0 }

// buildPathOverlay rebuilds the overlay for pts. Markers keep their screen
// size at any zoom level.
func buildPathOverlay(pts []geometry.Point2D, scale float64) PathOverlay {
	if len(pts) == 0 {
		return PathOverlay{}
	}
	size := HandleSize
	if scale > 0 {
		size = HandleSize / scale
	}
	o := PathOverlay{
		Polygon: append([]geometry.Point2D(nil), pts...),
		Handles: make([]geometry.Rect, len(pts)),
	}
	for i, p := range pts {
		o.Handles[i] = geometry.NewRect(p.X-size/2, p.Y-size/2, size, size)
	}
	return o
}

// Preview is transient feedback drawn over the latest image. Nothing in it
// has been committed.
type Preview struct {
	// Band is the rubber band of a zoom box or rectangle selection in scene
	// coordinates. Empty when no band is shown.
	Band geometry.Rect

	// Working is the in-progress stroke buffer, replacing the latest image
	// while the stroke lasts.
	Working *image.NRGBA

	// Spot is the would-be result of a spot removal at the pointer.
	Spot *tools.SpotPatch
}

// Empty reports whether there is no preview.
func (p Preview) Empty() bool {
	return p.Band.Empty() && p.Working == nil && p.Spot == nil
}
