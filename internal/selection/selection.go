// Package selection defines the active selection region shared by the
// interaction router and the edit pipeline.
package selection

import (
	"image"
	"image/color"
	"slices"

	"imgedit/pkg/geometry"
)

// Kind is the shape of a selection.
type Kind int

const (
	None Kind = iota
	Rect
	Path
)

func (k Kind) String() string {
	switch k {
	case Rect:
		return "Rect"
	case Path:
		return "Path"
	default:
		return "None"
	}
}

// Region is an immutable selection in scene coordinates. The zero value is
// no selection.
type Region struct {
	kind   Kind
	rect   geometry.Rect
	points []geometry.Point2D
}

// NewRect returns a rectangular selection.
func NewRect(r geometry.Rect) Region {
	if r.Empty() {
		return Region{}
	}
	return Region{kind: Rect, rect: r}
}

// NewPath returns a path selection through pts, closed implicitly.
func NewPath(pts []geometry.Point2D) Region {
	if len(pts) == 0 {
		return Region{}
	}
	return Region{kind: Path, points: slices.Clone(pts)}
}

// Kind returns the selection shape.
func (r Region) Kind() Kind { return r.kind }

// Rect returns the rectangle of a Rect selection.
func (r Region) Rect() geometry.Rect { return r.rect }

// Points returns a copy of a Path selection's points.
func (r Region) Points() []geometry.Point2D { return slices.Clone(r.points) }

// Active reports whether the region restricts edits. A path needs at least
// three points to enclose any area.
func (r Region) Active() bool {
	switch r.kind {
	case Rect:
		return !r.rect.Empty()
	case Path:
		return len(r.points) >= 3
	}
	return false
}

// Bounds returns the bounding rectangle of the selection.
func (r Region) Bounds() geometry.Rect {
	switch r.kind {
	case Rect:
		return r.rect
	case Path:
		return geometry.BoundingBox(r.points)
	}
	return geometry.Rect{}
}

// Scope returns the pixel rectangle the selection covers inside bounds and,
// for a path, a mask the size of that rectangle. ok is false when the
// selection does not intersect bounds.
func (r Region) Scope(bounds image.Rectangle) (area image.Rectangle, mask *image.Alpha, ok bool) {
	canvas := geometry.RectFromImage(bounds)
	switch r.kind {
	case Rect:
		clipped := r.rect.Intersect(canvas)
		if clipped.Empty() {
			return image.Rectangle{}, nil, false
		}
		area = clipped.ImageRect().Intersect(bounds)
		return area, nil, !area.Empty()

	case Path:
		poly := geometry.ClipPolygonToRect(r.points, canvas)
		if poly == nil {
			return image.Rectangle{}, nil, false
		}
		area = geometry.BoundingBox(poly).ImageRect().Intersect(bounds)
		if area.Empty() {
			return image.Rectangle{}, nil, false
		}
		mask = image.NewAlpha(image.Rect(0, 0, area.Dx(), area.Dy()))
		filled := false
		for y := area.Min.Y; y < area.Max.Y; y++ {
			for x := area.Min.X; x < area.Max.X; x++ {
				if geometry.PointInPolygon(geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}, poly) {
					mask.SetAlpha(x-area.Min.X, y-area.Min.Y, color.Alpha{A: 255})
					filled = true
				}
			}
		}
		return area, mask, filled
	}
	return image.Rectangle{}, nil, false
}
