package panels

import (
	"image/color"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"imgedit/internal/app"
	"imgedit/internal/interaction"
	"imgedit/internal/logging"
)

// ToolsPanel selects the active tool, its brush settings and the one-shot
// transforms.
type ToolsPanel struct {
	state     *app.State
	window    fyne.Window
	container fyne.CanvasObject

	modeGroup  *widget.RadioGroup
	swatch     *fynecanvas.Rectangle
	colorLabel *widget.Label
	status     *widget.Label
}

// NewToolsPanel creates a new tools panel.
func NewToolsPanel(state *app.State) *ToolsPanel {
	tp := &ToolsPanel{state: state}

	tp.modeGroup = widget.NewRadioGroup(modeNames(), func(selected string) {
		if m, ok := parseMode(selected); ok {
			state.SetMode(m)
		}
	})
	tp.modeGroup.Required = true
	tp.modeGroup.SetSelected(state.Router.Mode().String())

	opts := state.Router.Options()
	tp.swatch = fynecanvas.NewRectangle(opts.PaintColor)
	tp.swatch.SetMinSize(fyne.NewSize(24, 24))
	tp.colorLabel = widget.NewLabel(colorLabel(opts.PaintColor))
	tp.status = widget.NewLabel("")
	tp.status.Wrapping = fyne.TextWrapWord

	brushes := container.NewVBox(
		tp.optionSlider("Paint Size", 1, 200, float64(opts.PaintSize), func(o *interaction.Options, v float64) { o.PaintSize = int(v) }),
		tp.optionSlider("Erase Size", 1, 200, float64(opts.EraseSize), func(o *interaction.Options, v float64) { o.EraseSize = int(v) }),
		tp.optionSlider("Blur Size", 1, 200, float64(opts.BlurSize), func(o *interaction.Options, v float64) { o.BlurSize = int(v) }),
		tp.optionSlider("Spot Size", 1, 100, float64(opts.SpotSize), func(o *interaction.Options, v float64) { o.SpotSize = int(v) }),
		tp.optionSlider("Spot Threshold", 0, 255, opts.SpotThreshold, func(o *interaction.Options, v float64) { o.SpotThreshold = v }),
		tp.optionSlider("Fill Threshold", 0, 255, opts.FillThreshold, func(o *interaction.Options, v float64) { o.FillThreshold = v }),
	)

	transforms := container.NewGridWithColumns(2,
		widget.NewButton("Rotate Left", func() { tp.run(state.RotateLeft) }),
		widget.NewButton("Crop", func() { tp.run(state.Crop) }),
		widget.NewButton("Flip Left-Right", func() { tp.run(state.FlipHorizontal) }),
		widget.NewButton("Flip Top-Bottom", func() { tp.run(state.FlipVertical) }),
	)

	tp.container = container.NewVScroll(container.NewVBox(
		widget.NewCard("Tool", "", tp.modeGroup),
		widget.NewCard("Paint Color", "", container.NewHBox(tp.swatch, tp.colorLabel)),
		widget.NewCard("Brushes", "", brushes),
		widget.NewCard("Transform", "", transforms),
		tp.status,
	))

	state.On(app.EventColorPicked, func(data interface{}) {
		if c, ok := data.(color.NRGBA); ok {
			tp.swatch.FillColor = c
			tp.swatch.Refresh()
			tp.colorLabel.SetText(colorLabel(c))
		}
	})
	state.On(app.EventPointerMoved, func(data interface{}) {
		tp.status.SetText(pointerText(data))
	})
	return tp
}

// Container returns the panel container.
func (tp *ToolsPanel) Container() fyne.CanvasObject {
	return tp.container
}

// SetWindow sets the parent window for dialogs.
func (tp *ToolsPanel) SetWindow(w fyne.Window) {
	tp.window = w
}

// SelectMode moves the tool selection, as from a menu shortcut.
func (tp *ToolsPanel) SelectMode(m interaction.Mode) {
	tp.modeGroup.SetSelected(m.String())
}

func (tp *ToolsPanel) optionSlider(label string, min, max, value float64, set func(*interaction.Options, float64)) fyne.CanvasObject {
	slider := widget.NewSlider(min, max)
	slider.Step = 1
	slider.SetValue(value)
	valueLabel := widget.NewLabel(formatValue(value))
	slider.OnChanged = func(v float64) {
		valueLabel.SetText(formatValue(v))
		o := tp.state.Router.Options()
		set(&o, v)
		tp.state.Router.SetOptions(o)
	}
	return container.NewVBox(
		container.NewBorder(nil, nil, widget.NewLabel(label), valueLabel),
		slider,
	)
}

func (tp *ToolsPanel) run(op func() error) {
	if err := op(); err != nil {
		logging.Logger().Warn("tool failed", "error", err)
		if tp.window != nil {
			dialog.ShowError(err, tp.window)
		}
	}
}
