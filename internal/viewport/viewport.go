// Package viewport maps device pixels to scene (image) coordinates and owns
// the nested zoom-frame stack.
//
// The active view is the top frame, or the whole scene when the stack is
// empty. Every frame is contained in the frame below it and in the scene.
package viewport

import (
	"math"
	"sync"

	"imgedit/pkg/geometry"
)

const (
	// DefaultWheelFactor is the per-notch wheel zoom factor.
	DefaultWheelFactor = 1.25

	// DefaultMinDragPixels is the device-pixel size a region-zoom drag must
	// exceed in both dimensions to count as a drag rather than a click.
	DefaultMinDragPixels = 3
)

// Viewport is safe for concurrent use; the canvas renders from a different
// goroutine than the one delivering input.
type Viewport struct {
	mu sync.RWMutex

	scene geometry.Rect
	stack []geometry.Rect

	viewW, viewH float64
	wheelFactor  float64
	minDrag      float64
	zoomLevel    int
}

// New creates a viewport over scene with default zoom settings.
func New(scene geometry.Rect) *Viewport {
	return &Viewport{
		scene:       scene,
		wheelFactor: DefaultWheelFactor,
		minDrag:     DefaultMinDragPixels,
	}
}

// SetWheelFactor sets the wheel zoom factor. 0 or 1 disables wheel zoom.
func (v *Viewport) SetWheelFactor(f float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.wheelFactor = f
}

// SetMinDragPixels sets the region-zoom drag threshold in device pixels.
func (v *Viewport) SetMinDragPixels(px float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.minDrag = px
}

// MinDragPixels returns the region-zoom drag threshold.
func (v *Viewport) MinDragPixels() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.minDrag
}

// SetSceneRect replaces the scene and clears the zoom stack.
func (v *Viewport) SetSceneRect(scene geometry.Rect) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scene = scene
	v.stack = nil
	v.zoomLevel = 0
}

// SceneRect returns the full scene rectangle.
func (v *Viewport) SceneRect() geometry.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.scene
}

// SetViewSize sets the device size of the widget showing the scene.
func (v *Viewport) SetViewSize(w, h float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.viewW, v.viewH = w, h
}

// ViewSize returns the device size of the widget.
func (v *Viewport) ViewSize() (float64, float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.viewW, v.viewH
}

// ActiveViewRect returns the top zoom frame, or the scene when not zoomed.
func (v *Viewport) ActiveViewRect() geometry.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.active()
}

func (v *Viewport) active() geometry.Rect {
	if len(v.stack) == 0 {
		return v.scene
	}
	return v.stack[len(v.stack)-1]
}

// Depth returns the number of frames on the zoom stack.
func (v *Viewport) Depth() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.stack)
}

// Frames returns a copy of the zoom stack, bottom first.
func (v *Viewport) Frames() []geometry.Rect {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]geometry.Rect, len(v.stack))
	copy(out, v.stack)
	return out
}

// ZoomLevel counts wheel notches in minus notches out since the last reset.
func (v *Viewport) ZoomLevel() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoomLevel
}

// Transform returns the scene-to-device transform. The active rect is fitted
// into the view keeping its aspect ratio and centered.
func (v *Viewport) Transform() geometry.AffineTransform {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.transform()
}

func (v *Viewport) transform() geometry.AffineTransform {
	a := v.active()
	if a.Empty() {
		return geometry.Identity()
	}
	w, h := v.viewW, v.viewH
	if w <= 0 || h <= 0 {
		w, h = a.Width, a.Height
	}
	s := math.Min(w/a.Width, h/a.Height)
	ox := (w - a.Width*s) / 2
	oy := (h - a.Height*s) / 2
	return geometry.Translation(ox, oy).
		Compose(geometry.Scale(s, s)).
		Compose(geometry.Translation(-a.X, -a.Y))
}

// Scale returns device pixels per scene unit for the active view.
func (v *Viewport) Scale() float64 {
	return v.Transform().A
}

// SceneToScreen maps a scene point to device pixels.
func (v *Viewport) SceneToScreen(p geometry.Point2D) geometry.Point2D {
	return v.Transform().Apply(p)
}

// ScreenToScene maps a device point to scene coordinates.
func (v *Viewport) ScreenToScene(p geometry.Point2D) geometry.Point2D {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.screenToScene(p)
}

func (v *Viewport) screenToScene(p geometry.Point2D) geometry.Point2D {
	inv, ok := v.transform().Inverse()
	if !ok {
		return p
	}
	return inv.Apply(p)
}

// PushZoom intersects rect with the active view and pushes the result.
// Empty results and the full scene are rejected.
func (v *Viewport) PushZoom(rect geometry.Rect) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pushZoom(rect)
}

func (v *Viewport) pushZoom(rect geometry.Rect) bool {
	r := rect.Intersect(v.active())
	if r.Empty() || r.ApproxEqual(v.scene) {
		return false
	}
	v.stack = append(v.stack, r)
	return true
}

// PushZoomDrag pushes the scene rect spanned by a device-space drag. The drag
// must be larger than the minimum drag size in both dimensions.
func (v *Viewport) PushZoomDrag(start, end geometry.Point2D) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !IsDrag(start, end, v.minDrag) {
		return false
	}
	r := geometry.RectFromPoints(v.screenToScene(start), v.screenToScene(end))
	return v.pushZoom(r)
}

// IsDrag reports whether two device points are further apart than minPixels
// in both dimensions.
func IsDrag(start, end geometry.Point2D, minPixels float64) bool {
	return math.Abs(end.X-start.X) > minPixels && math.Abs(end.Y-start.Y) > minPixels
}

// PopZoom removes the top frame.
func (v *Viewport) PopZoom() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.stack) == 0 {
		return false
	}
	v.stack = v.stack[:len(v.stack)-1]
	return true
}

// ClearZoom empties the zoom stack.
func (v *Viewport) ClearZoom() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoomLevel = 0
	if len(v.stack) == 0 {
		return false
	}
	v.stack = nil
	return true
}

// WheelZoom zooms in for a positive sign and out for a negative one. Only the
// top frame survives a wheel step; it is resized around its center and
// clipped to the scene. Zooming back out to the full scene empties the stack.
func (v *Viewport) WheelZoom(sign int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	f := v.wheelFactor
	if f == 0 || f == 1 || sign == 0 || v.scene.Empty() {
		return false
	}

	if sign > 0 {
		if len(v.stack) == 0 {
			v.stack = append(v.stack, v.scene)
		}
		v.truncate()
		top := v.stack[0].ScaleAroundCenter(1 / f).Intersect(v.scene)
		if top.Empty() {
			return false
		}
		v.stack[0] = top
		v.zoomLevel++
		return true
	}

	if len(v.stack) == 0 {
		return false
	}
	v.truncate()
	v.stack[0] = v.stack[0].ScaleAroundCenter(f).Intersect(v.scene)
	if v.stack[0].ApproxEqual(v.scene) {
		v.stack = nil
	}
	v.zoomLevel--
	return true
}

// truncate keeps only the top frame.
func (v *Viewport) truncate() {
	if len(v.stack) > 1 {
		v.stack = v.stack[len(v.stack)-1:]
	}
}

// Pan moves the top frame so the content follows a device-space pointer
// motion of delta. The frame keeps its size and stays inside the frame
// below it, or the scene for a single frame.
func (v *Viewport) Pan(delta geometry.Point2D) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if len(v.stack) == 0 || (delta.X == 0 && delta.Y == 0) {
		return false
	}
	s := v.transform().A
	if s == 0 {
		return false
	}

	parent := v.scene
	if len(v.stack) > 1 {
		parent = v.stack[len(v.stack)-2]
	}
	top := v.stack[len(v.stack)-1]
	moved := top.Translate(geometry.Point2D{X: -delta.X / s, Y: -delta.Y / s})
	moved = keepInside(moved, parent).Intersect(parent)
	if moved.Empty() || moved.ApproxEqual(top) {
		return false
	}
	v.stack[len(v.stack)-1] = moved
	return true
}

// keepInside shifts r so it lies within bounds where its size allows.
func keepInside(r, bounds geometry.Rect) geometry.Rect {
	if r.X < bounds.X {
		r.X = bounds.X
	}
	if r.Y < bounds.Y {
		r.Y = bounds.Y
	}
	if r.Right() > bounds.Right() {
		r.X = bounds.Right() - r.Width
	}
	if r.Bottom() > bounds.Bottom() {
		r.Y = bounds.Bottom() - r.Height
	}
	return r
}
