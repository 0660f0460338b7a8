// Package app wires the editor components into one session and publishes
// its events.
package app

import (
	"errors"
	"fmt"
	goimage "image"
	"image/color"
	"sync"

	"imgedit/internal/config"
	"imgedit/internal/filters"
	"imgedit/internal/history"
	"imgedit/internal/image"
	"imgedit/internal/interaction"
	"imgedit/internal/logging"
	"imgedit/internal/pipeline"
	"imgedit/internal/selection"
	"imgedit/internal/tools"
	"imgedit/internal/viewport"
	"imgedit/pkg/colorutil"
	"imgedit/pkg/geometry"
)

// ErrNoImage is returned by operations that need an open image.
var ErrNoImage = errors.New("no image open")

// ThumbnailSize bounds the layer list thumbnails.
const ThumbnailSize = 96

// State is one editing session: the open file, its history and the
// components that edit it.
type State struct {
	mu sync.RWMutex

	ImagePath string
	Format    string
	Modified  bool

	Config   *config.Config
	History  *history.Store
	View     *viewport.Viewport
	Router   *interaction.Router
	Pipeline *pipeline.Pipeline

	watcher *SourceWatcher

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different session events.
type EventType int

const (
	EventImageOpened     EventType = iota // data: path string
	EventImageSaved                       // data: path string
	EventCommitted                        // data: history.Entry
	EventUndone                           // data: history.UndoResult
	EventLayerChanged                     // data: []LayerInfo
	EventViewChanged                      // data: nil
	EventSelectionChanged                 // data: selection.Region
	EventButton                           // data: interaction.ButtonEvent
	EventPointerMoved                     // data: image.Point
	EventColorPicked                      // data: color.NRGBA
	EventPreviewChanged                   // data: interaction.Preview
	EventSourceChanged                    // data: path string
	EventModified                         // data: bool
	EventError                            // data: error
	EventPassthrough                      // data: interaction.RawEvent
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// LayerInfo describes one layer for the layer list.
type LayerInfo struct {
	ID        int
	Current   bool
	Note      string
	Thumbnail *goimage.NRGBA
}

// NewState creates a session configured by cfg. A nil cfg uses the defaults.
func NewState(cfg *config.Config) *State {
	if cfg == nil {
		cfg = config.Default()
	}
	s := &State{
		Config:    cfg,
		History:   history.NewStore(),
		View:      viewport.New(geometry.Rect{}),
		listeners: make(map[EventType][]EventListener),
	}
	s.Router = interaction.NewRouter(s.View, s.History)
	s.Pipeline = pipeline.New(s.History, s.Router, nil, cfg.Debounce())
	s.configure(cfg)
	s.wire()
	return s
}

// ApplyConfig validates cfg and reconfigures the running session with it.
// Brush settings replace any changed from the tools panel.
func (s *State) ApplyConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.Config = cfg
	s.mu.Unlock()
	s.configure(cfg)
	return nil
}

// Settings returns the settings in effect.
func (s *State) Settings() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Config
}

func (s *State) configure(cfg *config.Config) {
	s.View.SetWheelFactor(cfg.View.WheelFactor)
	s.View.SetMinDragPixels(cfg.View.MinDragPixels)
	if b, err := interaction.ParseBindings(cfg.Bindings.RegionZoom, cfg.Bindings.ZoomOut, cfg.Bindings.Pan); err == nil {
		s.Router.SetBindings(b)
	} else {
		logging.Logger().Warn("invalid bindings, using defaults", "error", err)
	}
	s.Router.SetOptions(toolOptions(cfg))
	s.Pipeline.SetDelay(cfg.Debounce())
}

func toolOptions(cfg *config.Config) interaction.Options {
	o := interaction.DefaultOptions()
	o.PaintSize = cfg.Brushes.Paint
	o.EraseSize = cfg.Brushes.Erase
	o.BlurSize = cfg.Brushes.Blur
	o.SpotSize = cfg.Brushes.Spot
	o.SpotThreshold = cfg.Brushes.SpotThreshold
	o.FillThreshold = cfg.Brushes.FillThreshold
	if c, err := colorutil.ParseHex(cfg.Brushes.PaintColor); err == nil {
		o.PaintColor = c
	}
	return o
}

// wire forwards component notifications to the session's listeners.
func (s *State) wire() {
	s.Router.OnButton(func(ev interaction.ButtonEvent) { s.Emit(EventButton, ev) })
	s.Router.OnPointerOverImage(func(p goimage.Point) { s.Emit(EventPointerMoved, p) })
	s.Router.OnViewChanged(func() { s.Emit(EventViewChanged, nil) })
	s.Router.OnSelectionChanged(func(r selection.Region) { s.Emit(EventSelectionChanged, r) })
	s.Router.OnPreviewChanged(func(p interaction.Preview) { s.Emit(EventPreviewChanged, p) })
	s.Router.OnColorPicked(func(c color.NRGBA) { s.Emit(EventColorPicked, c) })
	s.Router.OnPassthrough(func(ev interaction.RawEvent) { s.Emit(EventPassthrough, ev) })
	s.Router.OnBeforeEdit(s.Pipeline.Flush)
	s.Router.OnCommitted(s.afterCommit)

	s.Pipeline.OnCommitted(func(e history.Entry) {
		s.SetModified(true)
		s.Emit(EventCommitted, e)
		s.emitLayers()
	})
	s.Pipeline.OnError(func(err error) { s.Emit(EventError, err) })
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// SetModified marks the image as modified and emits an event.
func (s *State) SetModified(modified bool) {
	s.mu.Lock()
	changed := s.Modified != modified
	s.Modified = modified
	s.mu.Unlock()
	if changed {
		s.Emit(EventModified, modified)
	}
}

// IsModified reports whether there are unsaved edits.
func (s *State) IsModified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Modified
}

// Path returns the path of the open image.
func (s *State) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ImagePath
}

// HasImage reports whether an image is open.
func (s *State) HasImage() bool {
	return s.History.Latest() != nil
}

// Open loads an image file and starts a new history with it.
func (s *State) Open(path string) error {
	img, format, err := image.Load(path)
	if err != nil {
		return err
	}
	if err := s.SetImage(img); err != nil {
		return err
	}

	s.mu.Lock()
	s.ImagePath = path
	s.Format = format
	s.mu.Unlock()

	if w := s.sourceWatcher(); w != nil {
		if err := w.Watch(path); err != nil {
			logging.Logger().Warn("not watching source file", "path", path, "error", err)
		}
	}
	logging.Logger().Info("image opened", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	s.Emit(EventImageOpened, path)
	return nil
}

// SetImage replaces the session's history with img as the opened image.
func (s *State) SetImage(img *goimage.NRGBA) error {
	s.Pipeline.Cancel()
	if err := s.History.Reset(img); err != nil {
		return err
	}
	s.View.SetSceneRect(geometry.RectFromImage(img.Bounds()))
	s.Router.ClearSelection()
	s.Pipeline.Reset()
	s.SetModified(false)
	s.Emit(EventViewChanged, nil)
	s.emitLayers()
	return nil
}

// Reload reopens the current file from disk, discarding the history.
func (s *State) Reload() error {
	path := s.Path()
	if path == "" {
		return ErrNoImage
	}
	return s.Open(path)
}

// Save writes the latest image to path. Pending adjustments are applied
// first.
func (s *State) Save(path string) error {
	s.Pipeline.Flush()
	img := s.History.Latest()
	if img == nil {
		return ErrNoImage
	}
	if w := s.sourceWatcher(); w != nil && w.Path() != "" {
		w.IgnoreFor(2 * s.Settings().Settle())
	}
	if err := image.Save(path, img); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	s.mu.Lock()
	moved := s.ImagePath != path
	s.ImagePath = path
	s.mu.Unlock()
	s.SetModified(false)

	if w := s.sourceWatcher(); w != nil && moved {
		if err := w.Watch(path); err != nil {
			logging.Logger().Warn("not watching source file", "path", path, "error", err)
		}
	}
	logging.Logger().Info("image saved", "path", path)
	s.Emit(EventImageSaved, path)
	return nil
}

// Undo takes back the latest logical edit and rolls the selection and the
// adjustment controls back with it.
func (s *State) Undo() bool {
	s.settle()
	res, ok := s.History.Undo()
	if !ok {
		return false
	}
	if res.RestorePath {
		s.Router.RestorePath(res.Path)
	}
	s.Pipeline.Resync(res)
	s.syncScene()

	logging.Logger().Debug("undo", "undone", res.Undone.Note, "kind", res.Undone.Kind)
	if res.Undone.Kind != history.PathSelectionStep {
		s.SetModified(true)
	}
	s.Emit(EventUndone, res)
	s.emitLayers()
	return true
}

// SetMode activates a tool.
func (s *State) SetMode(m interaction.Mode) {
	s.Router.SetMode(m)
}

// DuplicateLayer branches a new layer from the current one.
func (s *State) DuplicateLayer() (int, bool) {
	s.settle()
	id, ok := s.History.DuplicateCurrentLayer()
	if !ok {
		return 0, false
	}
	s.Pipeline.Reset()
	s.emitLayers()
	return id, true
}

// SelectLayer makes layer id current.
func (s *State) SelectLayer(id int) bool {
	s.settle()
	if !s.History.SelectLayer(id) {
		return false
	}
	s.Pipeline.Reset()
	s.syncScene()
	s.emitLayers()
	return true
}

// RotateLeft rotates the image a quarter turn counterclockwise.
func (s *State) RotateLeft() error {
	return s.applyTool("Rotate Left", func(img *goimage.NRGBA) (*goimage.NRGBA, bool) {
		return tools.RotateLeft(img), true
	})
}

// FlipHorizontal mirrors the image left to right.
func (s *State) FlipHorizontal() error {
	return s.applyTool("Flip Left-Right", func(img *goimage.NRGBA) (*goimage.NRGBA, bool) {
		return tools.FlipHorizontal(img), true
	})
}

// FlipVertical mirrors the image top to bottom.
func (s *State) FlipVertical() error {
	return s.applyTool("Flip Top-Bottom", func(img *goimage.NRGBA) (*goimage.NRGBA, bool) {
		return tools.FlipVertical(img), true
	})
}

// Crop cuts the image down to the bounds of the active selection.
func (s *State) Crop() error {
	sel := s.Router.Selection()
	if !sel.Active() {
		return errors.New("crop: no selection")
	}
	err := s.applyTool("Crop", func(img *goimage.NRGBA) (*goimage.NRGBA, bool) {
		return tools.Crop(img, sel.Bounds().ImageRect())
	})
	if err == nil {
		s.Router.ClearSelection()
	}
	return err
}

// applyTool runs a one-shot tool over the latest image and commits the
// result.
func (s *State) applyTool(note string, fn func(*goimage.NRGBA) (*goimage.NRGBA, bool)) error {
	s.settle()
	img := s.History.Latest()
	if img == nil {
		return ErrNoImage
	}
	out, ok := fn(img)
	if !ok {
		return fmt.Errorf("%s: nothing to do", note)
	}
	e := history.Entry{Note: note, Image: out, Kind: history.ToolAction}
	if err := s.History.Commit(e); err != nil {
		return err
	}
	s.afterCommit(e)
	return nil
}

// settle commits the pending adjustment, waits for a running one, and
// invalidates the pipeline so nothing computed from the current history
// lands after the caller changes it.
func (s *State) settle() {
	s.Pipeline.Flush()
	s.Pipeline.Cancel()
}

// afterCommit runs after every tool commit. Path steps leave the image and
// the adjustments alone; anything else bakes the adjustments in.
func (s *State) afterCommit(e history.Entry) {
	if e.Kind != history.PathSelectionStep {
		s.Pipeline.Reset()
		s.syncScene()
		s.SetModified(true)
	}
	s.Emit(EventCommitted, e)
	s.emitLayers()
}

// syncScene resizes the scene when the latest image has different bounds,
// as after a crop or rotation or their undo.
func (s *State) syncScene() {
	img := s.History.Latest()
	if img == nil {
		return
	}
	scene := geometry.RectFromImage(img.Bounds())
	if s.View.SceneRect().ApproxEqual(scene) {
		return
	}
	s.View.SetSceneRect(scene)
	s.Emit(EventViewChanged, nil)
}

// Histogram returns the channel histograms of the latest image.
func (s *State) Histogram() (filters.Histogram, bool) {
	img := s.History.Latest()
	if img == nil {
		return filters.Histogram{}, false
	}
	return filters.ComputeHistogram(img), true
}

// Layers describes every layer with a thumbnail of its latest image.
func (s *State) Layers() []LayerInfo {
	current := s.History.CurrentLayer()
	ids := s.History.Layers()
	out := make([]LayerInfo, 0, len(ids))
	for _, id := range ids {
		info := LayerInfo{ID: id, Current: id == current}
		if img := s.History.LayerLatest(id); img != nil {
			info.Thumbnail = image.Thumbnail(img, ThumbnailSize, ThumbnailSize)
		}
		if id == current {
			if e, ok := s.History.LatestEntry(); ok {
				info.Note = e.Note
			}
		}
		out = append(out, info)
	}
	return out
}

func (s *State) emitLayers() {
	s.Emit(EventLayerChanged, s.Layers())
}

// WatchSource starts reporting on-disk changes of the open file as
// EventSourceChanged.
func (s *State) WatchSource() error {
	w, err := NewSourceWatcher(s.Settings().Settle())
	if err != nil {
		return err
	}
	w.OnChange(func(path string) { s.Emit(EventSourceChanged, path) })
	if path := s.Path(); path != "" {
		if err := w.Watch(path); err != nil {
			w.Close()
			return err
		}
	}
	s.mu.Lock()
	old := s.watcher
	s.watcher = w
	s.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

func (s *State) sourceWatcher() *SourceWatcher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.watcher
}

// Close stops background work.
func (s *State) Close() {
	s.Pipeline.Cancel()
	if w := s.sourceWatcher(); w != nil {
		if err := w.Close(); err != nil {
			logging.Logger().Debug("failed to close watcher", "error", err)
		}
	}
}
