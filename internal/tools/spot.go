package tools

import (
	"image"
	"image/color"

	imgutil "imgedit/internal/image"
	"imgedit/pkg/colorutil"
	"imgedit/pkg/geometry"
)

// SpotPatch is the result of a spot removal restricted to the brush area.
type SpotPatch struct {
	Image *image.NRGBA // patch pixels, zero origin
	At    image.Point  // top-left corner in the full image
}

// SpotRemove clones a circular patch around source over the same-sized patch
// around target. Target pixels whose luma is already within threshold of the
// source pixel are left alone, so only the blemish is replaced.
func SpotRemove(img *image.NRGBA, target, source image.Point, size int, threshold float64) (*image.NRGBA, bool) {
	patch, ok := SpotPreview(img, target, source, size, threshold)
	if !ok {
		return nil, false
	}
	out := imgutil.Clone(img)
	imgutil.Paste(out, patch.Image, patch.At, nil)
	return out, true
}

// SpotPreview computes the replaced patch without copying the whole image.
func SpotPreview(img *image.NRGBA, target, source image.Point, size int, threshold float64) (SpotPatch, bool) {
	b := img.Bounds()
	if !target.In(b) || !source.In(b) || size < 1 {
		return SpotPatch{}, false
	}
	half := size / 2
	area := image.Rect(target.X-half, target.Y-half, target.X-half+size, target.Y-half+size).Intersect(b)
	if area.Empty() {
		return SpotPatch{}, false
	}

	patch := imgutil.Extract(img, area)
	center := geometry.Point2D{X: float64(target.X) + 0.5, Y: float64(target.Y) + 0.5}
	r := float64(size) / 2
	offset := source.Sub(target)

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if (geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}).Distance(center) > r {
				continue
			}
			sp := image.Pt(x, y).Add(offset)
			if !sp.In(b) {
				continue
			}
			src := img.NRGBAAt(sp.X, sp.Y)
			if colorutil.IsSimilar(img.NRGBAAt(x, y), src, threshold) {
				continue
			}
			patch.SetNRGBA(x-area.Min.X, y-area.Min.Y, src)
		}
	}
	return SpotPatch{Image: patch, At: area.Min}, true
}

// PickColor returns the pixel at p.
func PickColor(img *image.NRGBA, p image.Point) (color.NRGBA, bool) {
	if img == nil || !p.In(img.Bounds()) {
		return color.NRGBA{}, false
	}
	return img.NRGBAAt(p.X, p.Y), true
}
