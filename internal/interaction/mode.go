package interaction

// Mode is the active tool. Exactly one is active at a time.
type Mode int

const (
	Idle Mode = iota
	RegionZoom
	Pan
	ColorPick
	Paint
	Erase
	Fill
	SelectRect
	SelectPath
	SpotRemoval
	Blur
)

var modeNames = [...]string{
	Idle:        "Idle",
	RegionZoom:  "Region Zoom",
	Pan:         "Pan",
	ColorPick:   "Color Pick",
	Paint:       "Paint",
	Erase:       "Erase",
	Fill:        "Fill",
	SelectRect:  "Select Rectangle",
	SelectPath:  "Select Path",
	SpotRemoval: "Spot Removal",
	Blur:        "Blur",
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return "Unknown"
	}
	return modeNames[m]
}

// Modes lists every mode in toolbar order.
func Modes() []Mode {
	out := make([]Mode, len(modeNames))
	for i := range out {
		out[i] = Mode(i)
	}
	return out
}

// navigating reports whether the primary button is used for navigation
// rather than a tool.
func (m Mode) navigating() bool {
	return m == Idle || m == RegionZoom || m == Pan
}

// edits reports whether a primary press in m may change the image.
func (m Mode) edits() bool {
	switch m {
	case Paint, Erase, Blur, Fill, SpotRemoval:
		return true
	}
	return false
}

// GestureKind identifies the drag currently holding input focus.
type GestureKind int

const (
	GestureNone GestureKind = iota
	GestureZoomBox
	GesturePan
	GestureSelectRect
	GestureStroke
	GestureFill
)

func (g GestureKind) String() string {
	switch g {
	case GestureZoomBox:
		return "ZoomBox"
	case GesturePan:
		return "Pan"
	case GestureSelectRect:
		return "SelectRect"
	case GestureStroke:
		return "Stroke"
	case GestureFill:
		return "Fill"
	default:
		return "None"
	}
}
