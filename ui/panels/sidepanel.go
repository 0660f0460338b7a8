// Package panels provides the editor's side panels.
package panels

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"

	"imgedit/internal/app"
	"imgedit/internal/interaction"
)

// SidePanel provides the main side panel with tabbed sections.
type SidePanel struct {
	state     *app.State
	container *container.AppTabs

	toolsPanel     *ToolsPanel
	adjustPanel    *AdjustPanel
	layersPanel    *LayersPanel
	histogramPanel *HistogramPanel
}

// NewSidePanel creates a new side panel.
func NewSidePanel(state *app.State) *SidePanel {
	sp := &SidePanel{state: state}

	sp.toolsPanel = NewToolsPanel(state)
	sp.adjustPanel = NewAdjustPanel(state)
	sp.layersPanel = NewLayersPanel(state)
	sp.histogramPanel = NewHistogramPanel(state)

	sp.container = container.NewAppTabs(
		container.NewTabItem("Tools", sp.toolsPanel.Container()),
		container.NewTabItem("Adjust", sp.adjustPanel.Container()),
		container.NewTabItem("Layers", sp.layersPanel.Container()),
		container.NewTabItem("Histogram", sp.histogramPanel.Container()),
	)
	return sp
}

// Container returns the panel container.
func (sp *SidePanel) Container() fyne.CanvasObject {
	return sp.container
}

// SetWindow sets the parent window for dialogs.
func (sp *SidePanel) SetWindow(w fyne.Window) {
	sp.toolsPanel.SetWindow(w)
}

// SelectMode switches the active tool and shows it in the tools tab.
func (sp *SidePanel) SelectMode(m interaction.Mode) {
	sp.toolsPanel.SelectMode(m)
}

// Sync refreshes the layer list and histogram from the session.
func (sp *SidePanel) Sync() {
	sp.layersPanel.SetLayers(sp.state.Layers())
	sp.histogramPanel.Update()
}
