package tools

import (
	"image"

	imgutil "imgedit/internal/image"
)

// Crop returns the part of img inside r as a new zero-origin image.
func Crop(img *image.NRGBA, r image.Rectangle) (*image.NRGBA, bool) {
	r = r.Intersect(img.Bounds())
	if r.Empty() {
		return nil, false
	}
	return imgutil.Extract(img, r), true
}

// RotateLeft rotates img 90 degrees counter-clockwise.
func RotateLeft(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, h, w))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			do := dst.PixOffset(y, w-1-x)
			copy(dst.Pix[do:do+4], img.Pix[so:so+4])
		}
	}
	return dst
}

// FlipHorizontal mirrors img left to right.
func FlipHorizontal(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			so := img.PixOffset(b.Min.X+x, b.Min.Y+y)
			do := dst.PixOffset(w-1-x, y)
			copy(dst.Pix[do:do+4], img.Pix[so:so+4])
		}
	}
	return dst
}

// FlipVertical mirrors img top to bottom.
func FlipVertical(img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		so := img.PixOffset(b.Min.X, b.Min.Y+y)
		do := dst.PixOffset(0, h-1-y)
		copy(dst.Pix[do:do+w*4], img.Pix[so:so+w*4])
	}
	return dst
}
