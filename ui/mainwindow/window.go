// Package mainwindow provides the main application window.
package mainwindow

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"imgedit/internal/app"
	"imgedit/internal/config"
	"imgedit/internal/history"
	imgutil "imgedit/internal/image"
	"imgedit/internal/interaction"
	"imgedit/internal/logging"
	"imgedit/internal/version"
	"imgedit/ui/canvas"
	"imgedit/ui/dialogs"
	"imgedit/ui/panels"
	"imgedit/ui/prefs"
)

// Default window size when no size has been saved.
const (
	defaultWidth  = 1200
	defaultHeight = 800
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app       fyne.App
	state     *app.State
	prefs     *prefs.Prefs
	canvas    *canvas.ImageCanvas
	sidePanel *panels.SidePanel
	statusBar *widget.Label

	// configPath is where Preferences are saved; empty means the user config dir.
	configPath string

	// reloadPrompt is set while the reload question is on screen.
	reloadPrompt bool
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow(version.Name)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	mw.Resize(fyne.NewSize(
		float32(p.FloatWithFallback(prefs.KeyWindowWidth, defaultWidth)),
		float32(p.FloatWithFallback(prefs.KeyWindowHeight, defaultHeight)),
	))
	mw.SetCloseIntercept(mw.onClose)
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewImageCanvas(mw.state)

	mw.sidePanel = panels.NewSidePanel(mw.state)
	mw.sidePanel.SetWindow(mw.Window)

	mw.statusBar = widget.NewLabel("Ready")

	canvasArea := container.NewBorder(mw.createToolbar(), nil, nil, nil, mw.canvas)

	split := container.NewHSplit(mw.sidePanel.Container(), canvasArea)
	split.SetOffset(0.25)

	mw.SetContent(container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	))
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.onZoomOut),
		widget.NewButton("+", mw.onZoomIn),
		widget.NewButton("Back", mw.onPopZoom),
		widget.NewButton("Fit", mw.onFit),
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", mw.onOpen),
		fyne.NewMenuItem("Reload", mw.onReload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Save As...", mw.onSaveAs),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", mw.onUndo),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear Selection", mw.state.Router.ClearSelection),
		fyne.NewMenuItem("Duplicate Layer", mw.onDuplicateLayer),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Preferences...", mw.onPreferences),
	)

	imageMenu := fyne.NewMenu("Image",
		fyne.NewMenuItem("Rotate Left", func() { mw.run("Rotate", mw.state.RotateLeft) }),
		fyne.NewMenuItem("Flip Left-Right", func() { mw.run("Flip", mw.state.FlipHorizontal) }),
		fyne.NewMenuItem("Flip Top-Bottom", func() { mw.run("Flip", mw.state.FlipVertical) }),
		fyne.NewMenuItem("Crop to Selection", func() { mw.run("Crop", mw.state.Crop) }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Previous Zoom", mw.onPopZoom),
		fyne.NewMenuItem("Fit to Window", mw.onFit),
	)

	var toolItems []*fyne.MenuItem
	for _, m := range interaction.Modes() {
		toolItems = append(toolItems, fyne.NewMenuItem(m.String(), func() { mw.sidePanel.SelectMode(m) }))
	}
	toolsMenu := fyne.NewMenu("Tools", toolItems...)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, imageMenu, viewMenu, toolsMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventImageOpened, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateTitle()
			mw.updateStatus("Opened " + path)
		}
	})

	mw.state.On(app.EventImageSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateTitle()
			mw.updateStatus("Saved " + path)
		}
	})

	mw.state.On(app.EventModified, func(interface{}) {
		mw.updateTitle()
	})

	mw.state.On(app.EventCommitted, func(data interface{}) {
		if e, ok := data.(history.Entry); ok && e.Kind != history.PathSelectionStep {
			mw.updateStatus(e.Note)
		}
	})

	mw.state.On(app.EventUndone, func(data interface{}) {
		if res, ok := data.(history.UndoResult); ok {
			mw.updateStatus("Undid " + res.Undone.Note)
		}
	})

	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.updateStatus("Error: " + err.Error())
		}
	})

	mw.state.On(app.EventSourceChanged, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.offerReload(path)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateTitle() {
	title := version.Name
	if path := mw.state.Path(); path != "" {
		title += " - " + filepath.Base(path)
	}
	if mw.state.IsModified() {
		title += " *"
	}
	mw.SetTitle(title)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(filePath))
}

// OpenFile opens path and records it as the last image.
func (mw *MainWindow) OpenFile(path string) error {
	if err := mw.state.Open(path); err != nil {
		return err
	}
	mw.saveLastDir(path)
	mw.prefs.SetString(prefs.KeyLastImage, path)
	return nil
}

// RestoreLastImage reopens the image from the previous run, if any.
func (mw *MainWindow) RestoreLastImage() {
	path := mw.prefs.String(prefs.KeyLastImage)
	if path == "" {
		return
	}
	if err := mw.state.Open(path); err != nil {
		logging.Logger().Info("last image not restored", "path", path, "error", err)
	}
}

// Menu action handlers

func (mw *MainWindow) onOpen() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		if err := mw.OpenFile(reader.URI().Path()); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imgutil.SupportedFormats()))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onReload() {
	if err := mw.state.Reload(); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSave() {
	path := mw.state.Path()
	if path == "" {
		mw.onSaveAs()
		return
	}
	if err := mw.state.Save(path); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

func (mw *MainWindow) onSaveAs() {
	if !mw.state.HasImage() {
		dialog.ShowError(app.ErrNoImage, mw.Window)
		return
	}
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !imgutil.IsSupportedFormat(path) {
			path += ".png"
		}
		mw.saveLastDir(path)
		if err := mw.state.Save(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.prefs.SetString(prefs.KeyLastImage, path)
	}, mw.Window)
	name := "untitled.png"
	if path := mw.state.Path(); path != "" {
		name = filepath.Base(path)
	}
	fd.SetFileName(name)
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onUndo() {
	if !mw.state.Undo() {
		mw.updateStatus("Nothing to undo")
	}
}

// SetConfigPath sets the file Preferences are saved to.
func (mw *MainWindow) SetConfigPath(path string) {
	mw.configPath = path
}

func (mw *MainWindow) onPreferences() {
	dialogs.NewSettingsDialog(mw.state.Settings(), mw.Window, func(cfg *config.Config) error {
		if err := mw.state.ApplyConfig(cfg); err != nil {
			return err
		}
		path := mw.configPath
		if path == "" {
			p, err := config.DefaultPath()
			if err != nil {
				return err
			}
			path = p
		}
		if err := cfg.Save(path); err != nil {
			return err
		}
		mw.updateStatus("Preferences saved")
		return nil
	}).Show()
}

func (mw *MainWindow) onDuplicateLayer() {
	if id, ok := mw.state.DuplicateLayer(); ok {
		mw.updateStatus(fmt.Sprintf("Layer %d created", id))
	}
}

func (mw *MainWindow) onZoomIn() {
	mw.state.Router.Wheel(1)
}

func (mw *MainWindow) onZoomOut() {
	mw.state.Router.Wheel(-1)
}

func (mw *MainWindow) onPopZoom() {
	if mw.state.View.PopZoom() {
		mw.state.Emit(app.EventViewChanged, nil)
	}
}

func (mw *MainWindow) onFit() {
	if mw.state.View.ClearZoom() {
		mw.state.Emit(app.EventViewChanged, nil)
	}
}

// run performs a one-shot image operation and reports failures.
func (mw *MainWindow) run(what string, op func() error) {
	if err := op(); err != nil {
		if errors.Is(err, app.ErrNoImage) {
			mw.updateStatus(what + ": no image open")
			return
		}
		dialog.ShowError(err, mw.Window)
	}
}

// offerReload asks whether to reload a file that changed on disk. Unsaved
// edits are mentioned since reloading discards the history.
func (mw *MainWindow) offerReload(path string) {
	if mw.reloadPrompt {
		return
	}
	mw.reloadPrompt = true

	msg := fmt.Sprintf("%s changed on disk.\nReload it?", filepath.Base(path))
	if mw.state.IsModified() {
		msg += "\nUnsaved edits will be lost."
	}
	dialog.ShowConfirm("File Changed", msg, func(reload bool) {
		mw.reloadPrompt = false
		if !reload {
			return
		}
		if err := mw.state.Reload(); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+version.Name,
		fmt.Sprintf("%s v%s\n\n"+
			"A raster image editor with zoom frames, layered undo\n"+
			"and live adjustments.\n\n"+
			"Formats: %s\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Name, version.Version,
			strings.Join(imgutil.SupportedFormats(), " "),
			version.BuildTime, version.GitCommit),
		mw.Window)
}

// onClose saves the window size and preferences before closing.
func (mw *MainWindow) onClose() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		logging.Logger().Warn("failed to save preferences", "error", err)
	}
	mw.state.Close()
	mw.Close()
}
