package history

import "imgedit/pkg/geometry"

// UndoResult describes what an undo removed and which host state should be
// rolled back with it.
type UndoResult struct {
	Undone Entry // the entry that was popped
	Latest Entry // the layer's latest entry afterwards

	// RestorePath is set when the active path selection should become Path.
	RestorePath bool
	Path        []geometry.Point2D

	// RestoreSettings is set when the adjustment controls should show
	// Settings. A nil Settings means neutral.
	RestoreSettings bool
	Settings        any
}

// policy pops one logical edit from a layer's entries. It must leave at least
// one entry and must not modify the entries it keeps.
type policy func(entries []Entry) ([]Entry, UndoResult)

var policies = map[ChangeKind]policy{
	ToolAction:        undoEdit,
	LoadOrOpen:        undoEdit,
	SliderAdjustment:  undoEdit,
	PathSelectionStep: undoPathStep,
}

func pop(entries []Entry) ([]Entry, UndoResult) {
	n := len(entries)
	kept := entries[:n-1:n-1]
	return kept, UndoResult{Undone: entries[n-1], Latest: kept[len(kept)-1]}
}

// undoEdit removes one tool action, open, or settled slider gesture. The
// adjustment controls follow whatever slider gesture is now on top.
func undoEdit(entries []Entry) ([]Entry, UndoResult) {
	kept, res := pop(entries)
	res.RestoreSettings = true
	res.Settings = settingsAt(kept)
	return kept, res
}

// undoPathStep removes the last path point. When no path step remains on
// top the selection is gone entirely.
func undoPathStep(entries []Entry) ([]Entry, UndoResult) {
	kept, res := pop(entries)
	res.RestorePath = true
	if pts, ok := res.Latest.PathPoints(); ok {
		res.Path = append([]geometry.Point2D(nil), pts...)
	}
	return kept, res
}

// settingsAt returns the settings of the slider gesture in effect at the end
// of entries. Path steps do not change the image, so they are looked through.
func settingsAt(entries []Entry) any {
	for i := len(entries) - 1; i >= 0; i-- {
		switch entries[i].Kind {
		case PathSelectionStep:
			continue
		case SliderAdjustment:
			return entries[i].Payload
		}
		return nil
	}
	return nil
}
