package panels

import (
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"imgedit/internal/app"
	"imgedit/internal/pipeline"
)

// AdjustPanel holds one slider per adjustment control. It is also the
// pipeline's parameter sink, so undo and tool commits move the sliders.
type AdjustPanel struct {
	state     *app.State
	container fyne.CanvasObject

	sliders map[pipeline.Control]*widget.Slider
	values  map[pipeline.Control]*widget.Label

	mu      sync.Mutex
	syncing bool // set while the pipeline moves a slider
}

var _ pipeline.ParameterSink = (*AdjustPanel)(nil)

// NewAdjustPanel creates the adjustment sliders and registers the panel as
// the pipeline's sink.
func NewAdjustPanel(state *app.State) *AdjustPanel {
	ap := &AdjustPanel{
		state:   state,
		sliders: make(map[pipeline.Control]*widget.Slider),
		values:  make(map[pipeline.Control]*widget.Label),
	}

	form := container.NewVBox()
	for _, c := range pipeline.Controls() {
		min, max, neutral := c.Range()
		slider := widget.NewSlider(min, max)
		slider.Step = 1
		slider.SetValue(neutral)
		value := widget.NewLabel(formatValue(neutral))

		slider.OnChanged = func(v float64) {
			value.SetText(formatValue(v))
			if ap.isSyncing() {
				return
			}
			state.Pipeline.OnParameterChanged(c.Label(), v, c)
		}
		ap.sliders[c] = slider
		ap.values[c] = value

		form.Add(container.NewBorder(nil, nil, widget.NewLabel(c.Label()), value))
		form.Add(slider)
	}

	apply := widget.NewButton("Apply Now", func() { state.Pipeline.Flush() })
	ap.container = container.NewVScroll(container.NewVBox(
		widget.NewCard("Adjustments", "", form),
		apply,
	))

	state.Pipeline.SetSink(ap)
	return ap
}

// Container returns the panel container.
func (ap *AdjustPanel) Container() fyne.CanvasObject {
	return ap.container
}

func (ap *AdjustPanel) isSyncing() bool {
	ap.mu.Lock()
	defer ap.mu.Unlock()
	return ap.syncing
}

// set moves a slider without reporting the move back to the pipeline.
func (ap *AdjustPanel) set(c pipeline.Control, v float64) {
	slider, ok := ap.sliders[c]
	if !ok || slider.Value == v {
		return
	}
	ap.mu.Lock()
	ap.syncing = true
	ap.mu.Unlock()

	slider.SetValue(v)

	ap.mu.Lock()
	ap.syncing = false
	ap.mu.Unlock()
}

func (ap *AdjustPanel) SetRed(v float64)        { ap.set(pipeline.Red, v) }
func (ap *AdjustPanel) SetGreen(v float64)      { ap.set(pipeline.Green, v) }
func (ap *AdjustPanel) SetBlue(v float64)       { ap.set(pipeline.Blue, v) }
func (ap *AdjustPanel) SetSaturation(v float64) { ap.set(pipeline.Saturation, v) }
func (ap *AdjustPanel) SetBrightness(v float64) { ap.set(pipeline.Brightness, v) }
func (ap *AdjustPanel) SetContrast(v float64)   { ap.set(pipeline.Contrast, v) }
func (ap *AdjustPanel) SetSharpness(v float64)  { ap.set(pipeline.Sharpness, v) }
func (ap *AdjustPanel) SetBlur(v float64)       { ap.set(pipeline.Blur, v) }
