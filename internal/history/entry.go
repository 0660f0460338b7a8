// Package history stores per-layer edit history as immutable raster snapshots.
package history

import (
	"image"

	"imgedit/pkg/geometry"
)

// ChangeKind classifies what produced a history entry. Undo behavior is
// chosen per kind.
type ChangeKind int

const (
	ToolAction ChangeKind = iota
	SliderAdjustment
	LoadOrOpen
	PathSelectionStep
)

func (k ChangeKind) String() string {
	switch k {
	case ToolAction:
		return "Tool"
	case SliderAdjustment:
		return "Slider"
	case LoadOrOpen:
		return "Open"
	case PathSelectionStep:
		return "Path"
	default:
		return "Unknown"
	}
}

// Notes used by the store itself.
const (
	NoteOpen   = "Open"
	NoteBranch = "branch from layer"
)

// Entry is one recorded layer state. Entries and their images are never
// modified once committed.
type Entry struct {
	Note    string
	Image   *image.NRGBA
	Kind    ChangeKind
	Value   *float64 // slider value, when Kind is SliderAdjustment
	Control string   // originating control, when Kind is SliderAdjustment

	// Payload carries per-kind data: []geometry.Point2D for a path step,
	// the adjustment settings for a slider adjustment.
	Payload any
}

// PathPoints returns the path snapshot carried by a path step.
func (e Entry) PathPoints() ([]geometry.Point2D, bool) {
	if e.Kind != PathSelectionStep {
		return nil, false
	}
	pts, ok := e.Payload.([]geometry.Point2D)
	return pts, ok
}

// Float returns a pointer to v, for Entry.Value.
func Float(v float64) *float64 {
	return &v
}
