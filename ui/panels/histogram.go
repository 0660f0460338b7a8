package panels

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"imgedit/internal/app"
	"imgedit/internal/filters"
)

// HistogramPanel plots the channel histograms of the latest image.
type HistogramPanel struct {
	state     *app.State
	container fyne.CanvasObject
	raster    *fynecanvas.Raster
	summary   *widget.Label

	mu    sync.Mutex
	hist  filters.Histogram
	valid bool
}

// NewHistogramPanel creates a new histogram panel that follows every commit
// and undo.
func NewHistogramPanel(state *app.State) *HistogramPanel {
	hp := &HistogramPanel{state: state}
	hp.raster = fynecanvas.NewRaster(hp.draw)
	hp.raster.SetMinSize(fyne.NewSize(256, 128))
	hp.summary = widget.NewLabel("")

	hp.container = container.NewVBox(
		widget.NewCard("Histogram", "", hp.raster),
		hp.summary,
	)

	for _, ev := range []app.EventType{app.EventImageOpened, app.EventCommitted, app.EventUndone, app.EventLayerChanged} {
		state.On(ev, func(interface{}) { hp.Update() })
	}
	return hp
}

// Container returns the panel container.
func (hp *HistogramPanel) Container() fyne.CanvasObject {
	return hp.container
}

// Update recomputes the histogram from the session.
func (hp *HistogramPanel) Update() {
	h, ok := hp.state.Histogram()
	hp.mu.Lock()
	hp.hist, hp.valid = h, ok
	hp.mu.Unlock()

	if ok {
		hp.summary.SetText("Peak " + formatValue(h.Peak()))
	} else {
		hp.summary.SetText("No image")
	}
	hp.raster.Refresh()
}

func (hp *HistogramPanel) draw(w, h int) image.Image {
	hp.mu.Lock()
	hist, ok := hp.hist, hp.valid
	hp.mu.Unlock()
	if !ok {
		return plotHistogram(filters.Histogram{}, w, h)
	}
	return plotHistogram(hist, w, h)
}
