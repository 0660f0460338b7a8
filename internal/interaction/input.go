package interaction

import (
	"fmt"
	"strings"
)

// Button is a pointer button.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// String returns the name used in the settings file.
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	default:
		return "none"
	}
}

// ParseButton parses a button name as written by String.
func ParseButton(s string) (Button, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return ButtonLeft, nil
	case "middle":
		return ButtonMiddle, nil
	case "right":
		return ButtonRight, nil
	case "none", "":
		return ButtonNone, nil
	}
	return ButtonNone, fmt.Errorf("unknown button %q", s)
}

// Modifiers is a set of held keyboard modifiers.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// SyntheticModifiers marks events the host generated itself, for example a
// faked primary-button drag standing in for a middle-button pan. Such events
// are handed to the passthrough observer and never interpreted.
const SyntheticModifiers = ModShift | ModCtrl | ModAlt | ModMeta

// Bindings assigns buttons to the navigation gestures. ButtonNone disables
// a gesture.
type Bindings struct {
	RegionZoom Button
	ZoomOut    Button
	Pan        Button
}

// DefaultBindings returns left to zoom, right to zoom out, middle to pan.
func DefaultBindings() Bindings {
	return Bindings{RegionZoom: ButtonLeft, ZoomOut: ButtonRight, Pan: ButtonMiddle}
}

// ParseBindings converts the button names of a settings file.
func ParseBindings(regionZoom, zoomOut, pan string) (Bindings, error) {
	var b Bindings
	var err error
	if b.RegionZoom, err = ParseButton(regionZoom); err != nil {
		return Bindings{}, fmt.Errorf("region zoom: %w", err)
	}
	if b.ZoomOut, err = ParseButton(zoomOut); err != nil {
		return Bindings{}, fmt.Errorf("zoom out: %w", err)
	}
	if b.Pan, err = ParseButton(pan); err != nil {
		return Bindings{}, fmt.Errorf("pan: %w", err)
	}
	return b, nil
}

// matches reports whether b is bound, i.e. not ButtonNone, and equals pressed.
func matches(b, pressed Button) bool {
	return b != ButtonNone && b == pressed
}
