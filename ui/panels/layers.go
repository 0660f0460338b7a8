package panels

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"imgedit/internal/app"
)

// LayersPanel lists the layers with thumbnails and switches between them.
type LayersPanel struct {
	state     *app.State
	container fyne.CanvasObject
	list      *widget.List

	mu     sync.Mutex
	layers []app.LayerInfo
	// updating suppresses OnSelected while the list follows the session.
	updating bool
}

// NewLayersPanel creates a new layers panel.
func NewLayersPanel(state *app.State) *LayersPanel {
	lp := &LayersPanel{state: state}

	lp.list = widget.NewList(
		func() int {
			lp.mu.Lock()
			defer lp.mu.Unlock()
			return len(lp.layers)
		},
		func() fyne.CanvasObject {
			thumb := fynecanvas.NewImageFromImage(nil)
			thumb.FillMode = fynecanvas.ImageFillContain
			thumb.SetMinSize(fyne.NewSize(app.ThumbnailSize/2, app.ThumbnailSize/2))
			return container.NewBorder(nil, nil, thumb, nil, widget.NewLabel("Layer"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			info, ok := lp.layer(id)
			if !ok {
				return
			}
			row := obj.(*fyne.Container)
			for _, o := range row.Objects {
				switch w := o.(type) {
				case *widget.Label:
					w.SetText(layerText(info))
				case *fynecanvas.Image:
					if info.Thumbnail != nil {
						w.Image = info.Thumbnail
						w.Refresh()
					}
				}
			}
		},
	)
	lp.list.OnSelected = func(id widget.ListItemID) {
		lp.mu.Lock()
		updating := lp.updating
		lp.mu.Unlock()
		if updating {
			return
		}
		if info, ok := lp.layer(id); ok && !info.Current {
			state.SelectLayer(info.ID)
		}
	}

	duplicate := widget.NewButton("Duplicate Layer", func() { state.DuplicateLayer() })
	lp.container = container.NewBorder(nil, duplicate, nil, nil, lp.list)

	state.On(app.EventLayerChanged, func(data interface{}) {
		if layers, ok := data.([]app.LayerInfo); ok {
			lp.SetLayers(layers)
		}
	})
	return lp
}

// Container returns the panel container.
func (lp *LayersPanel) Container() fyne.CanvasObject {
	return lp.container
}

// SetLayers replaces the listed layers and selects the current one.
func (lp *LayersPanel) SetLayers(layers []app.LayerInfo) {
	lp.mu.Lock()
	lp.layers = layers
	lp.updating = true
	lp.mu.Unlock()

	lp.list.Refresh()
	for i, info := range layers {
		if info.Current {
			lp.list.Select(i)
		}
	}

	lp.mu.Lock()
	lp.updating = false
	lp.mu.Unlock()
}

func (lp *LayersPanel) layer(id widget.ListItemID) (app.LayerInfo, bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if id < 0 || id >= len(lp.layers) {
		return app.LayerInfo{}, false
	}
	return lp.layers[id], true
}

func layerText(info app.LayerInfo) string {
	if info.Note == "" {
		return fmt.Sprintf("Layer %d", info.ID)
	}
	return fmt.Sprintf("Layer %d: %s", info.ID, info.Note)
}
