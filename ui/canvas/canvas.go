// Package canvas provides the image view: it draws the current image with
// the zoom frame, tool previews and selection overlays, and feeds pointer
// input to the interaction router.
package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"imgedit/internal/app"
	imgutil "imgedit/internal/image"
	"imgedit/internal/interaction"
	"imgedit/internal/selection"
	"imgedit/pkg/colorutil"
	"imgedit/pkg/geometry"
)

// Background fills the area around the image.
var Background = color.NRGBA{R: 40, G: 40, B: 40, A: 255}

// spotOpacity is how strongly the spot removal preview is drawn.
const spotOpacity = 0.8

// ImageCanvas displays the session's latest image through its viewport.
type ImageCanvas struct {
	widget.BaseWidget

	state  *app.State
	raster *fynecanvas.Raster

	mu         sync.Mutex
	lastOutput *image.RGBA
}

var (
	_ desktop.Mouseable   = (*ImageCanvas)(nil)
	_ desktop.Hoverable   = (*ImageCanvas)(nil)
	_ fyne.Draggable      = (*ImageCanvas)(nil)
	_ fyne.Scrollable     = (*ImageCanvas)(nil)
	_ fyne.DoubleTappable = (*ImageCanvas)(nil)
)

// NewImageCanvas creates a canvas for state and redraws it whenever the
// session reports a visible change.
func NewImageCanvas(state *app.State) *ImageCanvas {
	ic := &ImageCanvas{state: state}
	ic.raster = fynecanvas.NewRaster(ic.draw)
	ic.raster.ScaleMode = fynecanvas.ImageScalePixels
	ic.ExtendBaseWidget(ic)

	for _, ev := range []app.EventType{
		app.EventImageOpened,
		app.EventCommitted,
		app.EventUndone,
		app.EventLayerChanged,
		app.EventViewChanged,
		app.EventSelectionChanged,
		app.EventPreviewChanged,
	} {
		state.On(ev, func(interface{}) { ic.Refresh() })
	}
	return ic
}

// Resize keeps the viewport's device size in step with the widget.
func (ic *ImageCanvas) Resize(size fyne.Size) {
	ic.BaseWidget.Resize(size)
	ic.state.View.SetViewSize(float64(size.Width), float64(size.Height))
	ic.Refresh()
}

// Refresh redraws the canvas.
func (ic *ImageCanvas) Refresh() {
	ic.raster.Refresh()
}

// GetRenderedOutput returns the last drawn frame.
func (ic *ImageCanvas) GetRenderedOutput() *image.RGBA {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.lastOutput
}

// MouseDown implements desktop.Mouseable.
func (ic *ImageCanvas) MouseDown(ev *desktop.MouseEvent) {
	ic.state.Router.PointerDown(mapButton(ev.Button), toPoint(ev.Position), mapModifiers(ev.Modifier))
}

// MouseUp implements desktop.Mouseable.
func (ic *ImageCanvas) MouseUp(ev *desktop.MouseEvent) {
	ic.state.Router.PointerUp(mapButton(ev.Button), toPoint(ev.Position), mapModifiers(ev.Modifier))
}

// MouseIn implements desktop.Hoverable.
func (ic *ImageCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (ic *ImageCanvas) MouseMoved(ev *desktop.MouseEvent) {
	ic.state.Router.PointerMove(toPoint(ev.Position))
}

// MouseOut implements desktop.Hoverable.
func (ic *ImageCanvas) MouseOut() {}

// Dragged implements fyne.Draggable. Drags arrive instead of hover moves
// while a button is held.
func (ic *ImageCanvas) Dragged(ev *fyne.DragEvent) {
	ic.state.Router.PointerMove(toPoint(ev.Position))
}

// DragEnd implements fyne.Draggable. The release itself arrives in MouseUp.
func (ic *ImageCanvas) DragEnd() {}

// Scrolled implements fyne.Scrollable: the wheel zooms.
func (ic *ImageCanvas) Scrolled(ev *fyne.ScrollEvent) {
	switch {
	case ev.Scrolled.DY > 0:
		ic.state.Router.Wheel(1)
	case ev.Scrolled.DY < 0:
		ic.state.Router.Wheel(-1)
	}
}

// DoubleTapped implements fyne.DoubleTappable. Fyne only reports primary
// button double clicks.
func (ic *ImageCanvas) DoubleTapped(ev *fyne.PointEvent) {
	ic.state.Router.DoubleClick(interaction.ButtonLeft, toPoint(ev.Position))
}

func mapButton(b desktop.MouseButton) interaction.Button {
	switch b {
	case desktop.MouseButtonPrimary:
		return interaction.ButtonLeft
	case desktop.MouseButtonSecondary:
		return interaction.ButtonRight
	case desktop.MouseButtonTertiary:
		return interaction.ButtonMiddle
	}
	return interaction.ButtonNone
}

func mapModifiers(m fyne.KeyModifier) interaction.Modifiers {
	var out interaction.Modifiers
	if m&fyne.KeyModifierShift != 0 {
		out |= interaction.ModShift
	}
	if m&fyne.KeyModifierControl != 0 {
		out |= interaction.ModCtrl
	}
	if m&fyne.KeyModifierAlt != 0 {
		out |= interaction.ModAlt
	}
	if m&fyne.KeyModifierSuper != 0 {
		out |= interaction.ModMeta
	}
	return out
}

func toPoint(p fyne.Position) geometry.Point2D {
	return geometry.NewPoint2D(float64(p.X), float64(p.Y))
}

// frame is what one redraw needs, read from the session at once.
type frame struct {
	image     *image.NRGBA
	transform geometry.AffineTransform
	active    geometry.Rect
	preview   interaction.Preview
	selection selection.Region
	path      interaction.PathOverlay
}

func (ic *ImageCanvas) snapshot() frame {
	s := ic.state
	return frame{
		image:     s.History.Latest(),
		transform: s.View.Transform(),
		active:    s.View.ActiveViewRect(),
		preview:   s.Router.Preview(),
		selection: s.Router.Selection(),
		path:      s.Router.PathOverlay(),
	}
}

// draw is the raster drawing function. w and h are in output pixels.
func (ic *ImageCanvas) draw(w, h int) image.Image {
	output := image.NewRGBA(image.Rect(0, 0, w, h))
	fill(output, output.Bounds(), Background)

	scale := 1.0
	if size := ic.Size(); size.Width > 0 {
		scale = float64(w) / float64(size.Width)
	}
	render(output, ic.snapshot(), scale)

	ic.mu.Lock()
	ic.lastOutput = output
	ic.mu.Unlock()
	return output
}

// render draws f into output. scale converts device units to output pixels.
func render(output *image.RGBA, f frame, scale float64) {
	img := f.image
	if f.preview.Working != nil {
		img = f.preview.Working
	}
	if img == nil {
		return
	}
	p := projector{t: f.transform, scale: scale}

	visible := f.active.Intersect(geometry.RectFromImage(img.Bounds()))
	src := visible.ImageRect().Intersect(img.Bounds())
	if src.Empty() {
		return
	}
	dst := p.rect(geometry.RectFromImage(src)).Intersect(output.Bounds())
	if dst.Empty() {
		return
	}

	// Checker backdrop first so transparent pixels show through.
	imgutil.Checkerboard(output.SubImage(dst).(*image.RGBA), imgutil.CheckerSize)
	scaled := image.NewNRGBA(image.Rect(0, 0, dst.Dx(), dst.Dy()))
	imgutil.ScaleInto(scaled, img, src)
	draw.Draw(output, dst, scaled, image.Point{}, draw.Over)

	if spot := f.preview.Spot; spot != nil && spot.Image != nil {
		drawSpot(output, p, spot.Image, spot.At)
	}

	o := buildOverlay(p, f.preview, f.selection, f.path)
	drawRect(output, o.Band, colorutil.ZoomBox, 1)
	drawDashedRect(output, o.Selection, colorutil.Black, colorutil.White)
	drawPolygon(output, o.Path, colorutil.Selection, 1)
	for _, hr := range o.Handles {
		fill(output, hr, colorutil.Handle)
	}
}

// drawSpot blends a spot removal patch over the image at its scene position.
func drawSpot(output *image.RGBA, p projector, patch *image.NRGBA, at image.Point) {
	area := image.Rectangle{Min: at, Max: at.Add(patch.Bounds().Size())}
	r := p.rect(geometry.RectFromImage(area))
	if r.Empty() {
		return
	}
	scaled := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	imgutil.ScaleInto(scaled, patch, patch.Bounds())
	imgutil.Blend(output, scaled, r.Min, spotOpacity)
}

// CreateRenderer implements fyne.Widget.
func (ic *ImageCanvas) CreateRenderer() fyne.WidgetRenderer {
	return &imageCanvasRenderer{canvas: ic}
}

type imageCanvasRenderer struct {
	canvas *ImageCanvas
}

func (r *imageCanvasRenderer) Layout(size fyne.Size) {
	r.canvas.raster.Resize(size)
}

func (r *imageCanvasRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *imageCanvasRenderer) Refresh() {
	r.canvas.raster.Refresh()
}

func (r *imageCanvasRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.canvas.raster}
}

func (r *imageCanvasRenderer) Destroy() {}
