// Package interaction routes pointer input to navigation gestures and the
// active editing tool.
package interaction

import (
	"image"
	"image/color"
	"slices"
	"sync"

	"imgedit/internal/history"
	"imgedit/internal/logging"
	"imgedit/internal/selection"
	"imgedit/internal/tools"
	"imgedit/internal/viewport"
	"imgedit/pkg/colorutil"
	"imgedit/pkg/geometry"
)

// History is the part of the history store the router reads and commits to.
type History interface {
	Latest() *image.NRGBA
	Commit(e history.Entry) error
}

// Options are the tool settings.
type Options struct {
	PaintColor    color.NRGBA
	PaintSize     int
	EraseSize     int
	BlurSize      int
	SpotSize      int
	SpotThreshold float64 // luma difference
	FillThreshold float64 // luma difference
}

// DefaultOptions returns the stock tool settings.
func DefaultOptions() Options {
	return Options{
		PaintColor:    colorutil.Black,
		PaintSize:     43,
		EraseSize:     43,
		BlurSize:      43,
		SpotSize:      10,
		SpotThreshold: 10,
		FillThreshold: 10,
	}
}

// ButtonAction is what happened to a forwarded button.
type ButtonAction int

const (
	Pressed ButtonAction = iota
	Released
	DoubleClicked
)

func (a ButtonAction) String() string {
	switch a {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	case DoubleClicked:
		return "double-clicked"
	default:
		return "unknown"
	}
}

// ButtonEvent is a button event no interaction consumed, in scene
// coordinates.
type ButtonEvent struct {
	Action ButtonAction
	Button Button
	Scene  geometry.Point2D
}

// RawEvent is a synthetic event handed back to the host untouched.
type RawEvent struct {
	Action    ButtonAction
	Button    Button
	Device    geometry.Point2D
	Modifiers Modifiers
}

// Router is the interaction state machine. Callbacks run on the goroutine
// that delivered the event, after the router's lock is released, so they may
// call back into the router.
type Router struct {
	mu       sync.Mutex
	view     *viewport.Viewport
	hist     History
	bindings Bindings
	opts     Options

	mode       Mode
	g          gesture
	sel        selection.Region
	path       []geometry.Point2D
	spotTarget *image.Point
	preview    Preview

	queue []func()

	onButton      func(ButtonEvent)
	onPointer     func(image.Point)
	onView        func()
	onSelection   func(selection.Region)
	onPreview     func(Preview)
	onColorPicked func(color.NRGBA)
	onPassthrough func(RawEvent)
	onCommitted   func(history.Entry)
	onBeforeEdit  func()
}

// NewRouter creates a router in Idle mode with default bindings and options.
func NewRouter(view *viewport.Viewport, hist History) *Router {
	return &Router{
		view:     view,
		hist:     hist,
		bindings: DefaultBindings(),
		opts:     DefaultOptions(),
	}
}

// OnButton sets the observer for presses, releases and double clicks that
// no interaction consumed.
func (r *Router) OnButton(fn func(ButtonEvent)) { r.set(func() { r.onButton = fn }) }

// OnPointerOverImage sets the observer for the scene pixel under the pointer.
// It is only called while the pointer is over the image.
func (r *Router) OnPointerOverImage(fn func(image.Point)) { r.set(func() { r.onPointer = fn }) }

// OnViewChanged sets the observer for zoom and pan changes.
func (r *Router) OnViewChanged(fn func()) { r.set(func() { r.onView = fn }) }

// OnSelectionChanged sets the observer for selection changes.
func (r *Router) OnSelectionChanged(fn func(selection.Region)) { r.set(func() { r.onSelection = fn }) }

// OnPreviewChanged sets the observer for rubber band, stroke and spot previews.
func (r *Router) OnPreviewChanged(fn func(Preview)) { r.set(func() { r.onPreview = fn }) }

// OnColorPicked sets the observer for the color pick tool.
func (r *Router) OnColorPicked(fn func(color.NRGBA)) { r.set(func() { r.onColorPicked = fn }) }

// OnPassthrough sets the receiver of synthetic events.
func (r *Router) OnPassthrough(fn func(RawEvent)) { r.set(func() { r.onPassthrough = fn }) }

// OnCommitted sets the observer for history entries the router commits.
func (r *Router) OnCommitted(fn func(history.Entry)) { r.set(func() { r.onCommitted = fn }) }

// OnBeforeEdit sets a hook run before a press that starts an image edit.
// It runs without the router's lock held, so it may block on work that
// reads the selection.
func (r *Router) OnBeforeEdit(fn func()) { r.set(func() { r.onBeforeEdit = fn }) }

func (r *Router) set(assign func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assign()
}

// unlock releases the lock and runs the notifications queued while it was
// held.
func (r *Router) unlock() {
	q := r.queue
	r.queue = nil
	r.mu.Unlock()
	for _, fn := range q {
		fn()
	}
}

// SetBindings replaces the button bindings.
func (r *Router) SetBindings(b Bindings) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings = b
}

// Bindings returns the button bindings.
func (r *Router) Bindings() Bindings {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bindings
}

// SetOptions replaces the tool settings.
func (r *Router) SetOptions(o Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts = o
}

// Options returns the tool settings.
func (r *Router) Options() Options {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts
}

// Mode returns the active tool.
func (r *Router) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// Gesture returns the drag in progress.
func (r *Router) Gesture() GestureKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.g.kind
}

// Selection returns the active selection.
func (r *Router) Selection() selection.Region {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sel
}

// Preview returns the current transient feedback.
func (r *Router) Preview() Preview {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.preview
}

// PathOverlay returns the path selection polygon and its point markers,
// sized for the current zoom.
func (r *Router) PathOverlay() PathOverlay {
	r.mu.Lock()
	defer r.mu.Unlock()
	return buildPathOverlay(r.path, r.view.Scale())
}

// SetMode activates a tool. Switching to a different tool drops the
// gesture in progress, the selection, the spot target and any preview.
func (r *Router) SetMode(m Mode) {
	r.mu.Lock()
	defer r.unlock()
	if m == r.mode {
		return
	}
	logging.Logger().Debug("mode changed", "from", r.mode, "to", m)
	r.mode = m
	r.g.end()
	r.spotTarget = nil
	r.clearSelection()
	r.setPreview(Preview{})
}

// ClearSelection drops the active selection.
func (r *Router) ClearSelection() {
	r.mu.Lock()
	defer r.unlock()
	r.clearSelection()
}

// RestorePath makes pts the active path selection. An empty pts clears it.
// Undo uses it to roll path points back; outside SelectPath it does nothing,
// since leaving that mode already dropped the path.
func (r *Router) RestorePath(pts []geometry.Point2D) {
	r.mu.Lock()
	defer r.unlock()
	if r.mode != SelectPath {
		return
	}
	if len(pts) == 0 {
		r.clearSelection()
		return
	}
	r.path = slices.Clone(pts)
	r.setSelection(selection.NewPath(r.path))
}

// PointerDown handles a button press at a device position.
func (r *Router) PointerDown(b Button, pos geometry.Point2D, mods Modifiers) {
	if mods != SyntheticModifiers {
		r.beforeEdit(b)
	}
	r.mu.Lock()
	defer r.unlock()

	if mods == SyntheticModifiers {
		r.passthrough(RawEvent{Action: Pressed, Button: b, Device: pos, Modifiers: mods})
		return
	}
	if r.g.active() {
		return
	}

	scene := r.view.ScreenToScene(pos)
	if matches(r.bindings.RegionZoom, b) && r.toolPress(b, pos, scene) {
		return
	}
	if r.mode.navigating() && matches(r.bindings.ZoomOut, b) {
		if r.view.PopZoom() {
			r.viewChanged()
		}
		return
	}
	if matches(r.bindings.Pan, b) {
		r.g.begin(GesturePan, b, pos, scene)
		return
	}
	r.button(Pressed, b, scene)
}

// beforeEdit runs the before-edit hook when b would start an edit in the
// active mode.
func (r *Router) beforeEdit(b Button) {
	r.mu.Lock()
	fn := r.onBeforeEdit
	edit := !r.g.active() && r.mode.edits() && matches(r.bindings.RegionZoom, b)
	r.mu.Unlock()
	if edit && fn != nil {
		fn()
	}
}

// toolPress dispatches a primary-button press to the active mode.
func (r *Router) toolPress(b Button, pos, scene geometry.Point2D) bool {
	switch r.mode {
	case Idle, RegionZoom:
		r.g.begin(GestureZoomBox, b, pos, scene)
	case Pan:
		r.g.begin(GesturePan, b, pos, scene)
	case ColorPick:
		r.pickColor(scene)
	case Paint, Erase, Blur:
		r.beginStroke(b, pos, scene)
	case Fill:
		if r.hist.Latest() != nil {
			r.g.begin(GestureFill, b, pos, scene)
		}
	case SelectRect:
		r.g.begin(GestureSelectRect, b, pos, scene)
	case SelectPath:
		r.appendPathPoint(scene)
	case SpotRemoval:
		r.spotClick(scene)
	default:
		return false
	}
	return true
}

// PointerMove handles pointer motion at a device position.
func (r *Router) PointerMove(pos geometry.Point2D) {
	r.mu.Lock()
	defer r.unlock()

	scene := r.view.ScreenToScene(pos)
	latest := r.hist.Latest()
	if latest != nil && scene.Pixel().In(latest.Bounds()) {
		r.pointerOver(scene.Pixel())
	}

	switch r.g.kind {
	case GestureZoomBox, GestureSelectRect:
		r.g.move(pos)
		p := r.preview
		p.Band = geometry.RectFromPoints(r.g.origin, scene)
		r.setPreview(p)
	case GesturePan:
		if r.view.Pan(r.g.move(pos)) {
			r.viewChanged()
		}
	case GestureStroke:
		r.g.move(pos)
		r.g.stroke.MoveTo(scene)
		p := r.preview
		p.Working = r.g.stroke.Image()
		r.setPreview(p)
	case GestureFill:
		r.g.move(pos)
	case GestureNone:
		if r.mode == SpotRemoval && r.spotTarget != nil && latest != nil {
			r.previewSpot(latest, scene.Pixel())
		}
	}
}

// PointerUp handles a button release at a device position.
func (r *Router) PointerUp(b Button, pos geometry.Point2D, mods Modifiers) {
	r.mu.Lock()
	defer r.unlock()

	if mods == SyntheticModifiers {
		r.passthrough(RawEvent{Action: Released, Button: b, Device: pos, Modifiers: mods})
		return
	}
	scene := r.view.ScreenToScene(pos)
	if !r.g.active() {
		r.button(Released, b, scene)
		return
	}
	if b != r.g.button {
		return
	}

	r.g.move(pos)
	g := r.g
	r.g.end()

	switch g.kind {
	case GestureZoomBox:
		r.clearBand()
		if r.view.PushZoomDrag(g.start, pos) {
			r.viewChanged()
			return
		}
		r.button(Released, b, scene)
	case GestureSelectRect:
		r.clearBand()
		if viewport.IsDrag(g.start, pos, r.view.MinDragPixels()) {
			scn := r.view.SceneRect()
			rect := geometry.RectFromPoints(g.origin, scene).Intersect(scn)
			if !rect.Empty() && !rect.ApproxEqual(scn) {
				r.path = nil
				r.setSelection(selection.NewRect(rect))
				return
			}
		}
		r.button(Released, b, scene)
	case GesturePan:
	case GestureStroke:
		logging.Logger().Debug("stroke finished", "mode", r.mode, "area", g.stroke.Dirty())
		img := g.stroke.Finish()
		p := r.preview
		p.Working = nil
		r.setPreview(p)
		r.commit(history.Entry{Note: r.mode.String(), Image: img, Kind: history.ToolAction})
	case GestureFill:
		latest := r.hist.Latest()
		if latest == nil {
			return
		}
		if out, ok := tools.FloodFill(latest, g.origin.Pixel(), r.opts.PaintColor, r.opts.FillThreshold); ok {
			r.commit(history.Entry{Note: Fill.String(), Image: out, Kind: history.ToolAction})
		}
	}
}

// DoubleClick clears the zoom stack for the zoom-out button and forwards
// anything else.
func (r *Router) DoubleClick(b Button, pos geometry.Point2D) {
	r.mu.Lock()
	defer r.unlock()

	if r.g.active() {
		return
	}
	if matches(r.bindings.ZoomOut, b) {
		if r.view.ClearZoom() {
			r.viewChanged()
		}
		return
	}
	r.button(DoubleClicked, b, r.view.ScreenToScene(pos))
}

// Wheel zooms in for a positive sign and out for a negative one.
func (r *Router) Wheel(sign int) {
	r.mu.Lock()
	defer r.unlock()
	if r.view.WheelZoom(sign) {
		r.viewChanged()
	}
}

func (r *Router) beginStroke(b Button, pos, scene geometry.Point2D) {
	latest := r.hist.Latest()
	if latest == nil {
		return
	}
	brush := tools.Brush{Kind: tools.BrushPaint, Size: r.opts.PaintSize, Color: r.opts.PaintColor}
	switch r.mode {
	case Erase:
		brush = tools.Brush{Kind: tools.BrushErase, Size: r.opts.EraseSize}
	case Blur:
		brush = tools.Brush{Kind: tools.BrushBlur, Size: r.opts.BlurSize}
	}
	r.g.begin(GestureStroke, b, pos, scene)
	r.g.stroke = tools.BeginStroke(latest, brush, scene)
	p := r.preview
	p.Working = r.g.stroke.Image()
	r.setPreview(p)
}

func (r *Router) pickColor(scene geometry.Point2D) {
	latest := r.hist.Latest()
	if latest == nil {
		return
	}
	c, ok := tools.PickColor(latest, scene.Pixel())
	if !ok {
		return
	}
	r.opts.PaintColor = c
	if fn := r.onColorPicked; fn != nil {
		r.queue = append(r.queue, func() { fn(c) })
	}
}

// appendPathPoint adds a point to the path selection and records the step
// so undo can take it back.
func (r *Router) appendPathPoint(scene geometry.Point2D) {
	latest := r.hist.Latest()
	if latest == nil {
		return
	}
	r.path = append(r.path, scene)
	pts := slices.Clone(r.path)
	r.setSelection(selection.NewPath(pts))
	r.commit(history.Entry{
		Note:    SelectPath.String(),
		Image:   latest,
		Kind:    history.PathSelectionStep,
		Payload: pts,
	})
}

// spotClick picks the target on the first click and the source on the
// second, then applies the removal.
func (r *Router) spotClick(scene geometry.Point2D) {
	latest := r.hist.Latest()
	if latest == nil {
		return
	}
	px := scene.Pixel()
	if r.spotTarget == nil {
		r.spotTarget = &px
		r.previewSpot(latest, px)
		return
	}
	target := *r.spotTarget
	r.spotTarget = nil
	p := r.preview
	p.Spot = nil
	r.setPreview(p)
	if out, ok := tools.SpotRemove(latest, target, px, r.opts.SpotSize, r.opts.SpotThreshold); ok {
		r.commit(history.Entry{Note: SpotRemoval.String(), Image: out, Kind: history.ToolAction})
	}
}

func (r *Router) previewSpot(latest *image.NRGBA, source image.Point) {
	p := r.preview
	p.Spot = nil
	if patch, ok := tools.SpotPreview(latest, *r.spotTarget, source, r.opts.SpotSize, r.opts.SpotThreshold); ok {
		p.Spot = &patch
	}
	r.setPreview(p)
}

func (r *Router) commit(e history.Entry) {
	if err := r.hist.Commit(e); err != nil {
		logging.Logger().Error("failed to commit tool action", "note", e.Note, "error", err)
		return
	}
	if fn := r.onCommitted; fn != nil {
		r.queue = append(r.queue, func() { fn(e) })
	}
}

func (r *Router) clearSelection() {
	r.path = nil
	if r.sel.Kind() == selection.None {
		return
	}
	r.setSelection(selection.Region{})
}

func (r *Router) setSelection(s selection.Region) {
	r.sel = s
	if fn := r.onSelection; fn != nil {
		r.queue = append(r.queue, func() { fn(s) })
	}
}

func (r *Router) clearBand() {
	p := r.preview
	p.Band = geometry.Rect{}
	r.setPreview(p)
}

func (r *Router) setPreview(p Preview) {
	if p.Empty() && r.preview.Empty() {
		return
	}
	r.preview = p
	if fn := r.onPreview; fn != nil {
		r.queue = append(r.queue, func() { fn(p) })
	}
}

func (r *Router) button(a ButtonAction, b Button, scene geometry.Point2D) {
	if fn := r.onButton; fn != nil {
		ev := ButtonEvent{Action: a, Button: b, Scene: scene}
		r.queue = append(r.queue, func() { fn(ev) })
	}
}

func (r *Router) pointerOver(px image.Point) {
	if fn := r.onPointer; fn != nil {
		r.queue = append(r.queue, func() { fn(px) })
	}
}

func (r *Router) viewChanged() {
	if fn := r.onView; fn != nil {
		r.queue = append(r.queue, fn)
	}
}

func (r *Router) passthrough(ev RawEvent) {
	if fn := r.onPassthrough; fn != nil {
		r.queue = append(r.queue, func() { fn(ev) })
	}
}
