package app

import (
	goimage "image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgedit/internal/config"
	"imgedit/internal/history"
	"imgedit/internal/image"
	"imgedit/internal/interaction"
	"imgedit/internal/pipeline"
	"imgedit/pkg/geometry"
)

func gradient(w, h int) *goimage.NRGBA {
	img := goimage.NewNRGBA(goimage.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	return img
}

type recorder struct {
	mu     sync.Mutex
	events map[EventType][]interface{}
}

func record(s *State, types ...EventType) *recorder {
	r := &recorder{events: map[EventType][]interface{}{}}
	for _, et := range types {
		s.On(et, func(data interface{}) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.events[et] = append(r.events[et], data)
		})
	}
	return r
}

func (r *recorder) count(et EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events[et])
}

func (r *recorder) last(et EventType) interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev := r.events[et]
	if len(ev) == 0 {
		return nil
	}
	return ev[len(ev)-1]
}

func newSession(t *testing.T, w, h int) *State {
	t.Helper()
	cfg := config.Default()
	cfg.Pipeline.DebounceMS = 10
	s := NewState(cfg)
	t.Cleanup(s.Close)
	require.NoError(t, s.SetImage(gradient(w, h)))
	s.View.SetViewSize(float64(w), float64(h))
	return s
}

func TestNewStateAppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Bindings.Pan = "right"
	cfg.Bindings.ZoomOut = "none"
	cfg.Brushes.Paint = 7
	cfg.Brushes.PaintColor = "#FF0000"

	s := NewState(cfg)
	defer s.Close()
	assert.Equal(t, interaction.ButtonRight, s.Router.Bindings().Pan)
	assert.Equal(t, interaction.ButtonNone, s.Router.Bindings().ZoomOut)
	assert.Equal(t, 7, s.Router.Options().PaintSize)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, s.Router.Options().PaintColor)
	assert.False(t, s.HasImage())
}

func TestApplyConfig(t *testing.T) {
	s := NewState(nil)
	defer s.Close()

	bad := config.Default()
	bad.Brushes.PaintColor = "chartreuse"
	assert.Error(t, s.ApplyConfig(bad))
	assert.Equal(t, interaction.ButtonMiddle, s.Router.Bindings().Pan, "rejected settings leave the router alone")

	cfg := config.Default()
	cfg.Bindings.Pan = "left"
	cfg.Bindings.RegionZoom = "none"
	cfg.Brushes.Erase = 5
	require.NoError(t, s.ApplyConfig(cfg))
	assert.Equal(t, interaction.ButtonLeft, s.Router.Bindings().Pan)
	assert.Equal(t, interaction.ButtonNone, s.Router.Bindings().RegionZoom)
	assert.Equal(t, 5, s.Router.Options().EraseSize)
	assert.Same(t, cfg, s.Settings())
}

func TestOperationsWithoutImage(t *testing.T) {
	s := NewState(nil)
	defer s.Close()

	assert.ErrorIs(t, s.Save(filepath.Join(t.TempDir(), "x.png")), ErrNoImage)
	assert.ErrorIs(t, s.RotateLeft(), ErrNoImage)
	assert.ErrorIs(t, s.Reload(), ErrNoImage)
	assert.False(t, s.Undo())
	_, ok := s.Histogram()
	assert.False(t, ok)
	_, ok = s.DuplicateLayer()
	assert.False(t, ok)
}

func TestOpenAndSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	require.NoError(t, image.Save(src, gradient(40, 30)))

	s := NewState(nil)
	defer s.Close()
	rec := record(s, EventImageOpened, EventImageSaved, EventLayerChanged, EventModified)

	require.NoError(t, s.Open(src))
	assert.Equal(t, src, s.Path())
	assert.Equal(t, geometry.NewRect(0, 0, 40, 30), s.View.SceneRect())
	assert.Equal(t, 1, s.History.Len())
	assert.Equal(t, src, rec.last(EventImageOpened))
	layers, ok := rec.last(EventLayerChanged).([]LayerInfo)
	require.True(t, ok)
	require.Len(t, layers, 1)
	assert.True(t, layers[0].Current)
	assert.Equal(t, history.NoteOpen, layers[0].Note)

	require.NoError(t, s.FlipHorizontal())
	assert.True(t, s.IsModified())

	dst := filepath.Join(dir, "out.tif")
	require.NoError(t, s.Save(dst))
	assert.False(t, s.IsModified())
	assert.Equal(t, dst, rec.last(EventImageSaved))

	back, _, err := image.Load(dst)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{R: 39, G: 0, B: 100, A: 255}, back.NRGBAAt(0, 0))
}

func TestOpenMissingFile(t *testing.T) {
	s := NewState(nil)
	defer s.Close()
	assert.Error(t, s.Open(filepath.Join(t.TempDir(), "missing.png")))
	assert.False(t, s.HasImage())
}

func TestRotateResizesSceneAndUndoRestores(t *testing.T) {
	s := newSession(t, 40, 20)
	rec := record(s, EventViewChanged, EventUndone)

	require.NoError(t, s.RotateLeft())
	assert.Equal(t, geometry.NewRect(0, 0, 20, 40), s.View.SceneRect())
	assert.Equal(t, 1, rec.count(EventViewChanged))

	require.True(t, s.Undo())
	assert.Equal(t, geometry.NewRect(0, 0, 40, 20), s.View.SceneRect())
	res, ok := rec.last(EventUndone).(history.UndoResult)
	require.True(t, ok)
	assert.Equal(t, "Rotate Left", res.Undone.Note)
}

func TestCropToRectSelection(t *testing.T) {
	s := newSession(t, 100, 100)
	s.SetMode(interaction.SelectRect)

	s.Router.PointerDown(interaction.ButtonLeft, geometry.NewPoint2D(10, 20), 0)
	s.Router.PointerMove(geometry.NewPoint2D(50, 40))
	s.Router.PointerUp(interaction.ButtonLeft, geometry.NewPoint2D(50, 40), 0)
	require.True(t, s.Router.Selection().Active())

	require.NoError(t, s.Crop())
	img := s.History.Latest()
	assert.Equal(t, goimage.Rect(0, 0, 40, 20), img.Bounds())
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 100, A: 255}, img.NRGBAAt(0, 0))
	assert.False(t, s.Router.Selection().Active())
	assert.Equal(t, geometry.NewRect(0, 0, 40, 20), s.View.SceneRect())

	assert.Error(t, s.Crop())
}

type sink struct {
	mu         sync.Mutex
	brightness []float64
}

func (k *sink) SetRed(float64)        {}
func (k *sink) SetGreen(float64)      {}
func (k *sink) SetBlue(float64)       {}
func (k *sink) SetSaturation(float64) {}
func (k *sink) SetContrast(float64)   {}
func (k *sink) SetSharpness(float64)  {}
func (k *sink) SetBlur(float64)       {}
func (k *sink) SetBrightness(v float64) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.brightness = append(k.brightness, v)
}

func TestSliderGestureAndUndo(t *testing.T) {
	s := newSession(t, 10, 10)
	k := &sink{}
	s.Pipeline.SetSink(k)
	rec := record(s, EventCommitted)

	s.Pipeline.OnParameterChanged("Brightness", 120, pipeline.Brightness)
	s.Pipeline.OnParameterChanged("Brightness", 140, pipeline.Brightness)
	require.Eventually(t, func() bool { return s.History.Len() == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return rec.count(EventCommitted) == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsModified())

	require.True(t, s.Undo())
	assert.Equal(t, 1, s.History.Len())
	assert.True(t, s.Pipeline.Settings().IsNeutral())
	k.mu.Lock()
	assert.Equal(t, []float64{100}, k.brightness)
	k.mu.Unlock()
}

func TestToolCommitBakesAdjustments(t *testing.T) {
	s := newSession(t, 10, 10)

	s.Pipeline.OnParameterChanged("Contrast", 150, pipeline.Contrast)
	s.Pipeline.Flush()
	require.Equal(t, 2, s.History.Len())

	require.NoError(t, s.FlipVertical())
	assert.True(t, s.Pipeline.Settings().IsNeutral())
	require.Equal(t, 3, s.History.Len())

	// Undoing the flip brings the contrast gesture back into the controls.
	require.True(t, s.Undo())
	assert.Equal(t, 150.0, s.Pipeline.Settings().Get(pipeline.Contrast))
}

func TestPathUndoThroughSession(t *testing.T) {
	s := newSession(t, 50, 50)
	s.SetMode(interaction.SelectPath)
	for _, p := range []geometry.Point2D{{X: 5, Y: 5}, {X: 40, Y: 5}, {X: 20, Y: 40}} {
		s.Router.PointerDown(interaction.ButtonLeft, p, 0)
		s.Router.PointerUp(interaction.ButtonLeft, p, 0)
	}
	require.Len(t, s.Router.Selection().Points(), 3)
	assert.False(t, s.IsModified())

	require.True(t, s.Undo())
	assert.Len(t, s.Router.Selection().Points(), 2)
	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.False(t, s.Router.Selection().Active())
	assert.False(t, s.Undo())
}

func TestDuplicateAndSelectLayer(t *testing.T) {
	s := newSession(t, 10, 10)
	rec := record(s, EventLayerChanged)

	id, ok := s.DuplicateLayer()
	require.True(t, ok)
	assert.Equal(t, 1, id)
	require.NoError(t, s.FlipHorizontal())

	layers := s.Layers()
	require.Len(t, layers, 2)
	assert.False(t, layers[0].Current)
	assert.True(t, layers[1].Current)
	assert.Equal(t, "Flip Left-Right", layers[1].Note)
	assert.NotNil(t, layers[1].Thumbnail)

	require.True(t, s.SelectLayer(0))
	assert.Equal(t, uint8(0), s.History.Latest().NRGBAAt(0, 0).R)
	assert.False(t, s.SelectLayer(7))
	assert.GreaterOrEqual(t, rec.count(EventLayerChanged), 3)
}

func TestHistogram(t *testing.T) {
	s := newSession(t, 4, 4)
	h, ok := s.Histogram()
	require.True(t, ok)
	assert.InDelta(t, 16, h.Blue[100], 1e-9)
}

func TestSourceWatcherReportsChanges(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w, err := NewSourceWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	var mu sync.Mutex
	var got []string
	w.OnChange(func(p string) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, p)
	})
	require.NoError(t, w.Watch(path))

	// Writes to other files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.png"), []byte("b"), 0o644))
	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte(i)}, 0o644))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, 2*time.Second, 10*time.Millisecond)
	mu.Lock()
	assert.Equal(t, w.Path(), got[0])
	mu.Unlock()
}

func TestSourceWatcherIgnoresOwnWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img.png")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w, err := NewSourceWatcher(10 * time.Millisecond)
	require.NoError(t, err)
	defer w.Close()

	var mu sync.Mutex
	calls := 0
	w.OnChange(func(string) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})
	require.NoError(t, w.Watch(path))
	w.IgnoreFor(time.Hour)
	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))

	time.Sleep(100 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 0, calls)
	mu.Unlock()
}

func paintStroke(s *State, from, to geometry.Point2D) {
	s.SetMode(interaction.Paint)
	s.Router.PointerDown(interaction.ButtonLeft, from, 0)
	s.Router.PointerMove(to)
	s.Router.PointerUp(interaction.ButtonLeft, to, 0)
}

func kinds(s *State) []history.ChangeKind {
	var out []history.ChangeKind
	for _, e := range s.History.Entries() {
		out = append(out, e.Kind)
	}
	return out
}

func TestUndoDuringRecomputeDoesNotResurrectEdits(t *testing.T) {
	s := newSession(t, 400, 400)
	original := image.Clone(s.History.Latest())
	paintStroke(s, geometry.Point2D{X: 20, Y: 20}, geometry.Point2D{X: 200, Y: 20})
	require.Equal(t, 2, s.History.Len())
	painted := s.History.Latest()

	s.Pipeline.SetDelay(time.Millisecond)
	s.Pipeline.OnParameterChanged("Sharpness", 200, pipeline.Sharpness)
	time.Sleep(2 * time.Millisecond)

	// The adjustment settles first, so the first undo takes it back.
	require.True(t, s.Undo())
	assert.Equal(t, []history.ChangeKind{history.LoadOrOpen, history.ToolAction}, kinds(s))
	assert.Equal(t, painted.Pix, s.History.Latest().Pix)
	assert.True(t, s.Pipeline.Settings().IsNeutral())

	require.True(t, s.Undo())
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []history.ChangeKind{history.LoadOrOpen}, kinds(s))
	assert.Equal(t, original.Pix, s.History.Latest().Pix)
}

func TestSaveDuringRecomputeWritesAdjustedImage(t *testing.T) {
	s := newSession(t, 300, 300)
	s.Pipeline.SetDelay(time.Millisecond)
	s.Pipeline.OnParameterChanged("Brightness", 150, pipeline.Brightness)
	time.Sleep(2 * time.Millisecond)

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, s.Save(path))
	e, ok := s.History.LatestEntry()
	require.True(t, ok)
	assert.Equal(t, history.SliderAdjustment, e.Kind)

	back, _, err := image.Load(path)
	require.NoError(t, err)
	assert.Equal(t, s.History.Latest().Pix, back.Pix)
}

func TestStrokeAfterSliderKeepsAdjustment(t *testing.T) {
	s := newSession(t, 50, 50)
	s.Pipeline.SetDelay(time.Hour)
	s.Pipeline.OnParameterChanged("Brightness", 150, pipeline.Brightness)

	paintStroke(s, geometry.Point2D{X: 5, Y: 5}, geometry.Point2D{X: 10, Y: 5})
	assert.Equal(t, []history.ChangeKind{history.LoadOrOpen, history.SliderAdjustment, history.ToolAction}, kinds(s))
	assert.False(t, s.Pipeline.Pending())

	// Pixels away from the stroke carry the adjustment.
	adjusted := s.History.Entries()[1].Image
	assert.Equal(t, adjusted.NRGBAAt(49, 49), s.History.Latest().NRGBAAt(49, 49))
}

func TestSaveAsMovesSourceWatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	require.NoError(t, image.Save(src, gradient(20, 20)))

	s := NewState(nil)
	defer s.Close()
	require.NoError(t, s.WatchSource())
	require.NoError(t, s.Open(src))
	require.Equal(t, src, s.sourceWatcher().Path())

	dst := filepath.Join(dir, "out.png")
	require.NoError(t, s.Save(dst))
	assert.Equal(t, dst, s.sourceWatcher().Path())
	assert.Equal(t, dst, s.Path())
}

func TestSyntheticEventsAreForwarded(t *testing.T) {
	s := newSession(t, 10, 10)
	rec := record(s, EventPassthrough, EventButton)

	s.Router.PointerDown(interaction.ButtonLeft, geometry.Point2D{X: 3, Y: 4}, interaction.SyntheticModifiers)
	require.Equal(t, 1, rec.count(EventPassthrough))
	ev, ok := rec.last(EventPassthrough).(interaction.RawEvent)
	require.True(t, ok)
	assert.Equal(t, interaction.Pressed, ev.Action)
	assert.Equal(t, geometry.Point2D{X: 3, Y: 4}, ev.Device)
	assert.Zero(t, rec.count(EventButton))
}
