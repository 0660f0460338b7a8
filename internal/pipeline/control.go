package pipeline

import (
	"strings"

	"imgedit/internal/filters"
)

// Control identifies one adjustable parameter.
type Control int

const (
	Red Control = iota
	Green
	Blue
	Saturation
	Brightness
	Contrast
	Sharpness
	Blur

	controlCount
)

type controlInfo struct {
	name    string
	label   string
	min     float64
	max     float64
	neutral float64
}

// Slider units: enhancement controls run 0..200 with 100 neutral, blur runs
// 0..2000 hundredths of a pixel.
var controlTable = [controlCount]controlInfo{
	Red:        {"red", "Red", 0, 200, 100},
	Green:      {"green", "Green", 0, 200, 100},
	Blue:       {"blue", "Blue", 0, 200, 100},
	Saturation: {"saturation", "Color", 0, 200, 100},
	Brightness: {"brightness", "Brightness", 0, 200, 100},
	Contrast:   {"contrast", "Contrast", 0, 200, 100},
	Sharpness:  {"sharpness", "Sharpness", 0, 200, 100},
	Blur:       {"blur", "Gaussian Blur", 0, 2000, 0},
}

// Controls returns every control in filter-chain order.
func Controls() []Control {
	out := make([]Control, controlCount)
	for i := range out {
		out[i] = Control(i)
	}
	return out
}

func (c Control) valid() bool { return c >= 0 && c < controlCount }

// String returns the identifier recorded as an entry's source control.
func (c Control) String() string {
	if !c.valid() {
		return "unknown"
	}
	return controlTable[c].name
}

// Label returns the display label, also used as the history note.
func (c Control) Label() string {
	if !c.valid() {
		return "Unknown"
	}
	return controlTable[c].label
}

// Range returns the slider bounds and neutral value.
func (c Control) Range() (min, max, neutral float64) {
	if !c.valid() {
		return 0, 0, 0
	}
	i := controlTable[c]
	return i.min, i.max, i.neutral
}

// ParseControl looks a control up by its identifier.
func ParseControl(s string) (Control, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for c := Control(0); c < controlCount; c++ {
		if controlTable[c].name == s {
			return c, true
		}
	}
	return 0, false
}

// Settings holds the value of every control in slider units. The zero value
// is not neutral; use NeutralSettings.
type Settings struct {
	values [controlCount]float64
}

// NeutralSettings returns settings that leave the image unchanged.
func NeutralSettings() Settings {
	var s Settings
	for c := Control(0); c < controlCount; c++ {
		s.values[c] = controlTable[c].neutral
	}
	return s
}

// Get returns the value of c.
func (s Settings) Get(c Control) float64 {
	if !c.valid() {
		return 0
	}
	return s.values[c]
}

// With returns a copy of s with c set to v, clamped to the control's range.
func (s Settings) With(c Control, v float64) Settings {
	if !c.valid() {
		return s
	}
	lo, hi, _ := c.Range()
	s.values[c] = min(max(v, lo), hi)
	return s
}

// IsNeutral reports whether every control is at its neutral value.
func (s Settings) IsNeutral() bool {
	return s == NeutralSettings()
}

// Params converts slider units to filter factors.
func (s Settings) Params() filters.Params {
	return filters.Params{
		Red:        s.values[Red] / 100,
		Green:      s.values[Green] / 100,
		Blue:       s.values[Blue] / 100,
		Saturation: s.values[Saturation] / 100,
		Brightness: s.values[Brightness] / 100,
		Contrast:   s.values[Contrast] / 100,
		Sharpness:  s.values[Sharpness] / 100,
		BlurRadius: s.values[Blur] / 100,
	}
}

// ParameterSink is implemented by the host's adjustment controls so the
// pipeline can roll their displayed values back.
type ParameterSink interface {
	SetRed(v float64)
	SetGreen(v float64)
	SetBlue(v float64)
	SetSaturation(v float64)
	SetBrightness(v float64)
	SetContrast(v float64)
	SetSharpness(v float64)
	SetBlur(v float64)
}

// PushSettings writes every value of s into sink.
func PushSettings(sink ParameterSink, s Settings) {
	if sink == nil {
		return
	}
	sink.SetRed(s.Get(Red))
	sink.SetGreen(s.Get(Green))
	sink.SetBlue(s.Get(Blue))
	sink.SetSaturation(s.Get(Saturation))
	sink.SetBrightness(s.Get(Brightness))
	sink.SetContrast(s.Get(Contrast))
	sink.SetSharpness(s.Get(Sharpness))
	sink.SetBlur(s.Get(Blur))
}
