package viewport

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgedit/pkg/geometry"
)

func newSquare(t *testing.T) *Viewport {
	t.Helper()
	v := New(geometry.NewRect(0, 0, 100, 100))
	v.SetViewSize(100, 100)
	return v
}

func TestScreenToSceneIdentityWhenViewMatchesScene(t *testing.T) {
	v := newSquare(t)
	p := geometry.NewPoint2D(37, 64)
	assert.Equal(t, p, v.ScreenToScene(p))
	assert.Equal(t, p, v.SceneToScreen(p))
}

func TestScreenToSceneKeepsAspect(t *testing.T) {
	v := New(geometry.NewRect(0, 0, 200, 100))
	v.SetViewSize(100, 100)

	got := v.ScreenToScene(geometry.NewPoint2D(50, 50))
	assert.InDelta(t, 100, got.X, 1e-9)
	assert.InDelta(t, 50, got.Y, 1e-9)

	back := v.SceneToScreen(got)
	assert.InDelta(t, 50, back.X, 1e-9)
	assert.InDelta(t, 50, back.Y, 1e-9)
	assert.InDelta(t, 0.5, v.Scale(), 1e-9)
}

func TestZoomBoxThenClear(t *testing.T) {
	v := newSquare(t)

	require.True(t, v.PushZoomDrag(geometry.NewPoint2D(50, 50), geometry.NewPoint2D(80, 80)))
	assert.Equal(t, []geometry.Rect{geometry.NewRect(50, 50, 30, 30)}, v.Frames())
	assert.Equal(t, geometry.NewRect(50, 50, 30, 30), v.ActiveViewRect())

	assert.True(t, v.ClearZoom())
	assert.Equal(t, 0, v.Depth())
	assert.Equal(t, geometry.NewRect(0, 0, 100, 100), v.ActiveViewRect())
	assert.False(t, v.ClearZoom())
}

func TestPushZoomDragThreshold(t *testing.T) {
	tests := []struct {
		name       string
		start, end geometry.Point2D
		want       bool
	}{
		{"click", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(10, 10), false},
		{"exactly three", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(13, 13), false},
		{"thin in y", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(40, 12), false},
		{"four by four", geometry.NewPoint2D(10, 10), geometry.NewPoint2D(14, 14), true},
		{"reversed", geometry.NewPoint2D(60, 60), geometry.NewPoint2D(20, 30), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newSquare(t)
			assert.Equal(t, tt.want, v.PushZoomDrag(tt.start, tt.end))
		})
	}
}

func TestPushZoomRejectsEmptyAndScene(t *testing.T) {
	v := newSquare(t)
	assert.False(t, v.PushZoom(geometry.NewRect(200, 200, 10, 10)))
	assert.False(t, v.PushZoom(geometry.NewRect(0, 0, 100, 100)))
	assert.False(t, v.PushZoom(geometry.NewRect(-10, -10, 200, 200)))
	assert.Equal(t, 0, v.Depth())
}

func TestPushZoomIntersectsActiveView(t *testing.T) {
	v := newSquare(t)
	require.True(t, v.PushZoom(geometry.NewRect(10, 10, 50, 50)))
	require.True(t, v.PushZoom(geometry.NewRect(40, 40, 50, 50)))
	assert.Equal(t, geometry.NewRect(40, 40, 20, 20), v.ActiveViewRect())

	assert.True(t, v.PopZoom())
	assert.Equal(t, geometry.NewRect(10, 10, 50, 50), v.ActiveViewRect())
	assert.True(t, v.PopZoom())
	assert.False(t, v.PopZoom())
}

func TestZoomStackStaysNested(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	v := New(geometry.NewRect(0, 0, 640, 480))
	v.SetViewSize(320, 240)

	for i := 0; i < 500; i++ {
		switch rng.Intn(5) {
		case 0:
			v.PopZoom()
		case 1:
			v.Pan(geometry.NewPoint2D(rng.Float64()*80-40, rng.Float64()*80-40))
		default:
			r := geometry.NewRect(rng.Float64()*700-30, rng.Float64()*520-20, rng.Float64()*300, rng.Float64()*300)
			v.PushZoom(r)
		}

		frames := v.Frames()
		parent := v.SceneRect()
		for _, f := range frames {
			require.True(t, parent.Intersect(f).ApproxEqual(f), "frame %v escapes %v", f, parent)
			require.True(t, v.SceneRect().Intersect(f).ApproxEqual(f))
			parent = f
		}
	}
}

func TestWheelInThenOutRestores(t *testing.T) {
	v := newSquare(t)
	before := v.ActiveViewRect()

	require.True(t, v.WheelZoom(1))
	assert.Equal(t, 1, v.Depth())
	assert.InDelta(t, 80, v.ActiveViewRect().Width, 1e-9)
	assert.Equal(t, before.Center(), v.ActiveViewRect().Center())

	require.True(t, v.WheelZoom(-1))
	assert.Equal(t, 0, v.Depth())
	assert.True(t, before.ApproxEqual(v.ActiveViewRect()))
	assert.Equal(t, 0, v.ZoomLevel())
}

func TestWheelInThenOutFromFrame(t *testing.T) {
	v := newSquare(t)
	require.True(t, v.PushZoom(geometry.NewRect(10, 20, 40, 40)))
	before := v.ActiveViewRect()

	v.WheelZoom(1)
	v.WheelZoom(-1)
	assert.True(t, before.ApproxEqual(v.ActiveViewRect()), "got %v", v.ActiveViewRect())
}

func TestWheelTruncatesToTopFrame(t *testing.T) {
	v := newSquare(t)
	require.True(t, v.PushZoom(geometry.NewRect(0, 0, 80, 80)))
	require.True(t, v.PushZoom(geometry.NewRect(20, 20, 40, 40)))

	require.True(t, v.WheelZoom(1))
	assert.Equal(t, 1, v.Depth())
	assert.InDelta(t, 32, v.ActiveViewRect().Width, 1e-9)
	assert.Equal(t, geometry.NewPoint2D(40, 40), v.ActiveViewRect().Center())
}

func TestWheelOutOnEmptyStackIsNoop(t *testing.T) {
	v := newSquare(t)
	assert.False(t, v.WheelZoom(-1))
	assert.False(t, v.WheelZoom(0))
}

func TestWheelDisabled(t *testing.T) {
	for _, f := range []float64{0, 1} {
		v := newSquare(t)
		v.SetWheelFactor(f)
		assert.False(t, v.WheelZoom(1))
		assert.Equal(t, 0, v.Depth())
	}
}

func TestPan(t *testing.T) {
	v := newSquare(t)
	assert.False(t, v.Pan(geometry.NewPoint2D(10, 10)), "pan without zoom")

	require.True(t, v.PushZoom(geometry.NewRect(20, 20, 50, 50)))
	require.True(t, v.Pan(geometry.NewPoint2D(-20, 0)))
	assert.Equal(t, geometry.NewRect(30, 20, 50, 50), v.ActiveViewRect())

	require.True(t, v.Pan(geometry.NewPoint2D(1000, 1000)))
	assert.Equal(t, geometry.NewRect(0, 0, 50, 50), v.ActiveViewRect())

	assert.False(t, v.Pan(geometry.NewPoint2D(10, 10)), "already at the corner")
}

func TestSetSceneRectClearsStack(t *testing.T) {
	v := newSquare(t)
	require.True(t, v.PushZoom(geometry.NewRect(10, 10, 20, 20)))
	v.SetSceneRect(geometry.NewRect(0, 0, 50, 50))
	assert.Equal(t, 0, v.Depth())
	assert.Equal(t, geometry.NewRect(0, 0, 50, 50), v.ActiveViewRect())
}
