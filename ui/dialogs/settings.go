// Package dialogs provides application dialogs.
package dialogs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"imgedit/internal/config"
	"imgedit/pkg/colorutil"
)

var (
	buttonChoices = []string{"left", "middle", "right", "none"}
	levelChoices  = []string{"debug", "info", "warn", "error"}
)

// settingsForm is the text of every field in the dialog.
type settingsForm struct {
	LogLevel string

	RegionZoom string
	ZoomOut    string
	Pan        string

	WheelFactor string
	MinDrag     string

	Paint, Erase, Blur, Spot string
	SpotThreshold            string
	FillThreshold            string
	PaintColor               string

	DebounceMS string
	Watch      bool
	SettleMS   string
}

func formFromConfig(c *config.Config) settingsForm {
	return settingsForm{
		LogLevel:      c.LogLevel,
		RegionZoom:    c.Bindings.RegionZoom,
		ZoomOut:       c.Bindings.ZoomOut,
		Pan:           c.Bindings.Pan,
		WheelFactor:   strconv.FormatFloat(c.View.WheelFactor, 'g', -1, 64),
		MinDrag:       strconv.FormatFloat(c.View.MinDragPixels, 'g', -1, 64),
		Paint:         strconv.Itoa(c.Brushes.Paint),
		Erase:         strconv.Itoa(c.Brushes.Erase),
		Blur:          strconv.Itoa(c.Brushes.Blur),
		Spot:          strconv.Itoa(c.Brushes.Spot),
		SpotThreshold: strconv.FormatFloat(c.Brushes.SpotThreshold, 'g', -1, 64),
		FillThreshold: strconv.FormatFloat(c.Brushes.FillThreshold, 'g', -1, 64),
		PaintColor:    c.Brushes.PaintColor,
		DebounceMS:    strconv.Itoa(c.Pipeline.DebounceMS),
		Watch:         c.Watch.Enabled,
		SettleMS:      strconv.Itoa(c.Watch.SettleMS),
	}
}

// parse converts the form into a new config. base is not modified.
func (f settingsForm) parse(base *config.Config) (*config.Config, error) {
	c := *base
	c.LogLevel = f.LogLevel
	c.Bindings = config.Bindings{RegionZoom: f.RegionZoom, ZoomOut: f.ZoomOut, Pan: f.Pan}

	var err error
	float := func(name, s string) float64 {
		v, e := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if e != nil && err == nil {
			err = fmt.Errorf("%s: %q is not a number", name, s)
		}
		return v
	}
	integer := func(name, s string) int {
		v, e := strconv.Atoi(strings.TrimSpace(s))
		if e != nil && err == nil {
			err = fmt.Errorf("%s: %q is not a whole number", name, s)
		}
		return v
	}

	c.View.WheelFactor = float("Wheel zoom factor", f.WheelFactor)
	c.View.MinDragPixels = float("Minimum drag", f.MinDrag)
	c.Brushes.Paint = integer("Paint size", f.Paint)
	c.Brushes.Erase = integer("Erase size", f.Erase)
	c.Brushes.Blur = integer("Blur size", f.Blur)
	c.Brushes.Spot = integer("Spot size", f.Spot)
	c.Brushes.SpotThreshold = float("Spot threshold", f.SpotThreshold)
	c.Brushes.FillThreshold = float("Fill threshold", f.FillThreshold)
	c.Brushes.PaintColor = strings.TrimSpace(f.PaintColor)
	c.Pipeline.DebounceMS = integer("Debounce", f.DebounceMS)
	c.Watch.Enabled = f.Watch
	c.Watch.SettleMS = integer("Settle", f.SettleMS)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// SettingsDialog edits the editor settings.
type SettingsDialog struct {
	cfg    *config.Config
	window fyne.Window

	logLevel   *widget.Select
	regionZoom *widget.Select
	zoomOut    *widget.Select
	pan        *widget.Select

	wheelEntry    *widget.Entry
	minDragEntry  *widget.Entry
	paintEntry    *widget.Entry
	eraseEntry    *widget.Entry
	blurEntry     *widget.Entry
	spotEntry     *widget.Entry
	spotThreshold *widget.Entry
	fillThreshold *widget.Entry
	colorEntry    *widget.Entry
	debounceEntry *widget.Entry
	watchCheck    *widget.Check
	settleEntry   *widget.Entry

	colorSwatch *fynecanvas.Rectangle

	// Callback; a returned error is shown and the dialog stays dismissed.
	onSave func(*config.Config) error
}

// NewSettingsDialog creates a settings dialog for cfg.
func NewSettingsDialog(cfg *config.Config, window fyne.Window, onSave func(*config.Config) error) *SettingsDialog {
	return &SettingsDialog{cfg: cfg, window: window, onSave: onSave}
}

// Show displays the dialog.
func (d *SettingsDialog) Show() {
	content := d.createContent()

	dlg := dialog.NewCustomConfirm(
		"Preferences",
		"Save",
		"Cancel",
		container.NewVScroll(content),
		func(save bool) {
			if !save {
				return
			}
			cfg, err := d.form().parse(d.cfg)
			if err != nil {
				dialog.ShowError(err, d.window)
				return
			}
			if d.onSave != nil {
				if err := d.onSave(cfg); err != nil {
					dialog.ShowError(err, d.window)
				}
			}
		},
		d.window,
	)
	dlg.Resize(fyne.NewSize(460, 640))
	dlg.Show()
}

func (d *SettingsDialog) createContent() fyne.CanvasObject {
	f := formFromConfig(d.cfg)

	d.regionZoom = widget.NewSelect(buttonChoices, nil)
	d.regionZoom.SetSelected(f.RegionZoom)
	d.zoomOut = widget.NewSelect(buttonChoices, nil)
	d.zoomOut.SetSelected(f.ZoomOut)
	d.pan = widget.NewSelect(buttonChoices, nil)
	d.pan.SetSelected(f.Pan)

	bindingsForm := widget.NewForm(
		widget.NewFormItem("Region zoom", d.regionZoom),
		widget.NewFormItem("Zoom out", d.zoomOut),
		widget.NewFormItem("Pan", d.pan),
	)

	d.wheelEntry = entry(f.WheelFactor)
	d.minDragEntry = entry(f.MinDrag)
	viewForm := widget.NewForm(
		widget.NewFormItem("Wheel zoom factor", d.wheelEntry),
		widget.NewFormItem("Minimum drag (px)", d.minDragEntry),
	)

	d.paintEntry = entry(f.Paint)
	d.eraseEntry = entry(f.Erase)
	d.blurEntry = entry(f.Blur)
	d.spotEntry = entry(f.Spot)
	d.spotThreshold = entry(f.SpotThreshold)
	d.fillThreshold = entry(f.FillThreshold)
	d.colorEntry = entry(f.PaintColor)

	d.colorSwatch = fynecanvas.NewRectangle(color.Black)
	d.colorSwatch.SetMinSize(fyne.NewSize(40, 24))
	d.colorEntry.OnChanged = func(string) { d.updateSwatch() }
	d.updateSwatch()

	brushForm := widget.NewForm(
		widget.NewFormItem("Paint size", d.paintEntry),
		widget.NewFormItem("Erase size", d.eraseEntry),
		widget.NewFormItem("Blur size", d.blurEntry),
		widget.NewFormItem("Spot size", d.spotEntry),
		widget.NewFormItem("Spot threshold", d.spotThreshold),
		widget.NewFormItem("Fill threshold", d.fillThreshold),
		widget.NewFormItem("Paint color", container.NewBorder(nil, nil, nil, d.colorSwatch, d.colorEntry)),
	)

	d.debounceEntry = entry(f.DebounceMS)
	d.watchCheck = widget.NewCheck("Reload when the file changes", nil)
	d.watchCheck.SetChecked(f.Watch)
	d.settleEntry = entry(f.SettleMS)
	d.logLevel = widget.NewSelect(levelChoices, nil)
	d.logLevel.SetSelected(f.LogLevel)

	generalForm := widget.NewForm(
		widget.NewFormItem("Adjust delay (ms)", d.debounceEntry),
		widget.NewFormItem("", d.watchCheck),
		widget.NewFormItem("Settle time (ms)", d.settleEntry),
		widget.NewFormItem("Log level", d.logLevel),
	)

	return container.NewVBox(
		widget.NewCard("Mouse Buttons", "", bindingsForm),
		widget.NewCard("Zoom", "", viewForm),
		widget.NewCard("Brushes", "", brushForm),
		widget.NewCard("General", "Watching and log level apply on restart", generalForm),
	)
}

func entry(text string) *widget.Entry {
	e := widget.NewEntry()
	e.SetText(text)
	return e
}

func (d *SettingsDialog) form() settingsForm {
	return settingsForm{
		LogLevel:      d.logLevel.Selected,
		RegionZoom:    d.regionZoom.Selected,
		ZoomOut:       d.zoomOut.Selected,
		Pan:           d.pan.Selected,
		WheelFactor:   d.wheelEntry.Text,
		MinDrag:       d.minDragEntry.Text,
		Paint:         d.paintEntry.Text,
		Erase:         d.eraseEntry.Text,
		Blur:          d.blurEntry.Text,
		Spot:          d.spotEntry.Text,
		SpotThreshold: d.spotThreshold.Text,
		FillThreshold: d.fillThreshold.Text,
		PaintColor:    d.colorEntry.Text,
		DebounceMS:    d.debounceEntry.Text,
		Watch:         d.watchCheck.Checked,
		SettleMS:      d.settleEntry.Text,
	}
}

// updateSwatch shows the parsed paint color, or transparent while the text is invalid.
func (d *SettingsDialog) updateSwatch() {
	c, err := colorutil.ParseHex(d.colorEntry.Text)
	if err != nil {
		d.colorSwatch.FillColor = color.Transparent
	} else {
		d.colorSwatch.FillColor = c
	}
	fynecanvas.Refresh(d.colorSwatch)
}
