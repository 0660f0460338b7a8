package image

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

var whiteBackground = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// ToNRGBA returns img as a zero-origin NRGBA. NRGBA inputs are copied.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// Clone returns a deep copy of img with the same bounds.
func Clone(img *image.NRGBA) *image.NRGBA {
	if img == nil {
		return nil
	}
	dst := &image.NRGBA{
		Pix:    make([]uint8, len(img.Pix)),
		Stride: img.Stride,
		Rect:   img.Rect,
	}
	copy(dst.Pix, img.Pix)
	return dst
}

// Extract copies the r portion of img into a new zero-origin NRGBA.
func Extract(img *image.NRGBA, r image.Rectangle) *image.NRGBA {
	r = r.Intersect(img.Bounds())
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

// Paste writes src into dst with src's top-left corner at at. When mask is
// non-nil only pixels with a non-zero mask value are written; the mask is
// indexed relative to its own origin, like src.
func Paste(dst *image.NRGBA, src *image.NRGBA, at image.Point, mask *image.Alpha) {
	sb := src.Bounds()
	r := image.Rectangle{Min: at, Max: at.Add(sb.Size())}.Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	if mask == nil {
		draw.Draw(dst, r, src, sb.Min.Add(r.Min.Sub(at)), draw.Src)
		return
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			ox, oy := x-at.X, y-at.Y
			if mask.AlphaAt(mask.Rect.Min.X+ox, mask.Rect.Min.Y+oy).A == 0 {
				continue
			}
			so := src.PixOffset(sb.Min.X+ox, sb.Min.Y+oy)
			do := dst.PixOffset(x, y)
			copy(dst.Pix[do:do+4], src.Pix[so:so+4])
		}
	}
}

// Thumbnail scales img to fit inside maxW x maxH, keeping the aspect ratio.
func Thumbnail(img image.Image, maxW, maxH int) *image.NRGBA {
	b := img.Bounds()
	if b.Empty() || maxW <= 0 || maxH <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	scale := min(float64(maxW)/float64(b.Dx()), float64(maxH)/float64(b.Dy()))
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ScaleInto renders the src sub-rectangle of img into dst, filling it.
// The canvas uses this to draw the active zoom frame.
func ScaleInto(dst draw.Image, img image.Image, src image.Rectangle) {
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, src, xdraw.Src, nil)
}
