package canvas

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgedit/internal/interaction"
	"imgedit/internal/selection"
	"imgedit/internal/tools"
	"imgedit/pkg/colorutil"
	"imgedit/pkg/geometry"
)

var red = color.NRGBA{R: 255, A: 255}

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func identityFrame(img *image.NRGBA) frame {
	return frame{
		image:     img,
		transform: geometry.Identity(),
		active:    geometry.RectFromImage(img.Bounds()),
	}
}

func rgbaAt(out *image.RGBA, x, y int) color.RGBA {
	return out.RGBAAt(x, y)
}

func TestRenderFillsImageArea(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 8, 8))
	render(out, identityFrame(solid(4, 4, red)), 2)

	for _, p := range []image.Point{{0, 0}, {7, 7}, {3, 5}} {
		assert.Equal(t, color.RGBA{R: 255, A: 255}, rgbaAt(out, p.X, p.Y), "pixel %v", p)
	}
}

func TestRenderWithoutImageLeavesOutput(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 4, 4))
	fill(out, out.Bounds(), Background)
	render(out, frame{transform: geometry.Identity()}, 1)
	assert.Equal(t, color.RGBA{R: 40, G: 40, B: 40, A: 255}, rgbaAt(out, 2, 2))
}

func TestRenderShowsCheckerThroughTransparency(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 4, 4))
	render(out, identityFrame(solid(4, 4, color.NRGBA{})), 1)
	light := colorutil.CheckerLight
	assert.Equal(t, color.RGBA{R: light.R, G: light.G, B: light.B, A: 255}, rgbaAt(out, 0, 0))
}

func TestRenderPrefersWorkingBuffer(t *testing.T) {
	f := identityFrame(solid(4, 4, red))
	f.preview.Working = solid(4, 4, color.NRGBA{B: 255, A: 255})
	out := image.NewRGBA(image.Rect(0, 0, 4, 4))
	render(out, f, 1)
	assert.Equal(t, color.RGBA{B: 255, A: 255}, rgbaAt(out, 1, 1))
}

func TestRenderDrawsOnlyActiveFrame(t *testing.T) {
	img := solid(4, 4, red)
	img.SetNRGBA(3, 3, color.NRGBA{G: 255, A: 255})
	f := identityFrame(img)
	// Zoomed into the bottom-right pixel, shown 4x.
	f.active = geometry.NewRect(3, 3, 1, 1)
	f.transform = geometry.Scale(4, 4).Compose(geometry.Translation(-3, -3))

	out := image.NewRGBA(image.Rect(0, 0, 4, 4))
	render(out, f, 1)
	assert.Equal(t, color.RGBA{G: 255, A: 255}, rgbaAt(out, 0, 0))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, rgbaAt(out, 3, 3))
}

func TestRenderBlendsSpotPreview(t *testing.T) {
	f := identityFrame(solid(4, 4, red))
	f.preview.Spot = &tools.SpotPatch{Image: solid(1, 1, color.NRGBA{B: 255, A: 255}), At: image.Pt(2, 2)}
	out := image.NewRGBA(image.Rect(0, 0, 4, 4))
	render(out, f, 1)

	c := rgbaAt(out, 2, 2)
	assert.Greater(t, c.B, uint8(150))
	assert.Less(t, c.R, uint8(100))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, rgbaAt(out, 0, 0))
}

func TestBuildOverlayScalesToOutputPixels(t *testing.T) {
	p := projector{t: geometry.Identity(), scale: 2}
	preview := interaction.Preview{Band: geometry.NewRect(1, 1, 2, 2)}
	sel := selection.NewRect(geometry.NewRect(0, 0, 3, 1))

	o := buildOverlay(p, preview, sel, interaction.PathOverlay{})
	assert.Equal(t, image.Rect(2, 2, 6, 6), o.Band)
	assert.Equal(t, image.Rect(0, 0, 6, 2), o.Selection)
	assert.Empty(t, o.Path)
}

func TestBuildOverlayProjectsPath(t *testing.T) {
	p := projector{t: geometry.Translation(10, 0), scale: 1}
	path := interaction.PathOverlay{
		Polygon: []geometry.Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}},
		Handles: []geometry.Rect{geometry.NewRect(-1, -1, 2, 2)},
	}
	o := buildOverlay(p, interaction.Preview{}, selection.NewPath(path.Polygon), path)
	require.Len(t, o.Path, 3)
	assert.Equal(t, image.Pt(14, 4), o.Path[2])
	assert.Equal(t, []image.Rectangle{image.Rect(9, -1, 11, 1)}, o.Handles)
	assert.True(t, o.Selection.Empty())
}

func TestRenderDrawsPathHandles(t *testing.T) {
	f := identityFrame(solid(10, 10, red))
	f.path = interaction.PathOverlay{
		Polygon: []geometry.Point2D{{X: 2, Y: 2}, {X: 8, Y: 2}, {X: 8, Y: 8}},
		Handles: []geometry.Rect{geometry.NewRect(1, 1, 2, 2)},
	}
	out := image.NewRGBA(image.Rect(0, 0, 10, 10))
	render(out, f, 1)
	h := colorutil.Handle
	assert.Equal(t, color.RGBA{R: h.R, G: h.G, B: h.B, A: 255}, rgbaAt(out, 1, 1))
}

func TestDrawRectOutline(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 6, 6))
	drawRect(out, image.Rect(1, 1, 5, 5), color.White, 1)
	assert.Equal(t, uint8(255), rgbaAt(out, 1, 1).R)
	assert.Equal(t, uint8(255), rgbaAt(out, 4, 4).R)
	assert.Equal(t, uint8(0), rgbaAt(out, 2, 2).R)
}

func TestMapButtonAndModifiers(t *testing.T) {
	assert.Equal(t, interaction.ButtonLeft, mapButton(desktop.MouseButtonPrimary))
	assert.Equal(t, interaction.ButtonRight, mapButton(desktop.MouseButtonSecondary))
	assert.Equal(t, interaction.ButtonMiddle, mapButton(desktop.MouseButtonTertiary))

	all := fyne.KeyModifierShift | fyne.KeyModifierControl | fyne.KeyModifierAlt | fyne.KeyModifierSuper
	assert.Equal(t, interaction.SyntheticModifiers, mapModifiers(all))
	assert.Equal(t, interaction.ModCtrl, mapModifiers(fyne.KeyModifierControl))
	assert.Zero(t, mapModifiers(0))
}
