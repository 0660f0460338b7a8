package image

import (
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestSaveLoadByExtension(t *testing.T) {
	src := solid(6, 4, color.NRGBA{R: 10, G: 200, B: 30, A: 255})
	dir := t.TempDir()

	for _, ext := range []string{".png", ".tif", ".bmp"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(dir, "out"+ext)
			require.NoError(t, Save(path, src))

			got, _, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), got.Bounds())
			assert.Equal(t, src.NRGBAAt(3, 2), got.NRGBAAt(3, 2))
		})
	}

	t.Run(".jpg", func(t *testing.T) {
		path := filepath.Join(dir, "out.jpg")
		require.NoError(t, Save(path, src))
		got, format, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "jpeg", format)
		assert.Equal(t, src.Bounds(), got.Bounds())
	})
}

func TestSaveUnsupportedExtension(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "out.xyz"), solid(1, 1, color.NRGBA{A: 255}))
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}

func TestIsSupportedFormat(t *testing.T) {
	assert.True(t, IsSupportedFormat("a/b/photo.JPG"))
	assert.True(t, IsSupportedFormat("scan.tiff"))
	assert.False(t, IsSupportedFormat("notes.txt"))
}

func TestToNRGBAMovesOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(5, 5, 9, 8))
	src.SetRGBA(5, 5, color.RGBA{R: 255, A: 255})
	got := ToNRGBA(src)
	assert.Equal(t, image.Rect(0, 0, 4, 3), got.Bounds())
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, got.NRGBAAt(0, 0))
}

func TestCloneIsIndependent(t *testing.T) {
	src := solid(2, 2, color.NRGBA{R: 1, A: 255})
	dup := Clone(src)
	dup.SetNRGBA(0, 0, color.NRGBA{R: 99, A: 255})
	assert.Equal(t, uint8(1), src.NRGBAAt(0, 0).R)
	assert.Nil(t, Clone(nil))
}

func TestExtractAndPaste(t *testing.T) {
	base := solid(10, 10, color.NRGBA{A: 255})
	patch := Extract(base, image.Rect(2, 2, 6, 6))
	assert.Equal(t, image.Rect(0, 0, 4, 4), patch.Bounds())

	red := solid(4, 4, color.NRGBA{R: 255, A: 255})
	Paste(base, red, image.Pt(2, 2), nil)
	assert.Equal(t, uint8(255), base.NRGBAAt(2, 2).R)
	assert.Equal(t, uint8(255), base.NRGBAAt(5, 5).R)
	assert.Equal(t, uint8(0), base.NRGBAAt(6, 6).R)
}

func TestPasteWithMask(t *testing.T) {
	base := solid(4, 4, color.NRGBA{A: 255})
	green := solid(2, 2, color.NRGBA{G: 255, A: 255})
	mask := image.NewAlpha(image.Rect(0, 0, 2, 2))
	mask.SetAlpha(1, 1, color.Alpha{A: 255})

	Paste(base, green, image.Pt(1, 1), mask)
	assert.Equal(t, uint8(0), base.NRGBAAt(1, 1).G)
	assert.Equal(t, uint8(255), base.NRGBAAt(2, 2).G)
}

func TestThumbnailKeepsAspect(t *testing.T) {
	thumb := Thumbnail(solid(200, 100, color.NRGBA{B: 255, A: 255}), 64, 64)
	assert.Equal(t, image.Rect(0, 0, 64, 32), thumb.Bounds())
}

func TestCheckerboardAlternates(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 16, 16))
	Checkerboard(dst, 8)
	assert.NotEqual(t, dst.RGBAAt(0, 0), dst.RGBAAt(8, 0))
	assert.Equal(t, dst.RGBAAt(0, 0), dst.RGBAAt(8, 8))
}

func TestBlendOpacity(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 1, 1))
	dst.SetRGBA(0, 0, color.RGBA{A: 255})
	Blend(dst, solid(1, 1, color.NRGBA{R: 255, A: 255}), image.Point{}, 0.5)
	got := dst.RGBAAt(0, 0)
	assert.InDelta(t, 128, int(got.R), 1)
	assert.Equal(t, uint8(255), got.A)
}
