package image

import (
	"image"
	"image/color"
	"image/draw"

	"imgedit/pkg/colorutil"
)

// CheckerSize is the edge length of one transparency checker square.
const CheckerSize = 8

// Checkerboard draws the transparency backdrop into dst.
func Checkerboard(dst draw.Image, size int) {
	if size <= 0 {
		size = CheckerSize
	}
	b := dst.Bounds()
	light := image.NewUniform(colorutil.CheckerLight)
	dark := image.NewUniform(colorutil.CheckerDark)
	for y := b.Min.Y; y < b.Max.Y; y += size {
		for x := b.Min.X; x < b.Max.X; x += size {
			src := light
			if ((x-b.Min.X)/size+(y-b.Min.Y)/size)%2 == 1 {
				src = dark
			}
			draw.Draw(dst, image.Rect(x, y, x+size, y+size).Intersect(b), src, image.Point{}, draw.Src)
		}
	}
}

// FlattenOnto composites img over a solid background color.
func FlattenOnto(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Blend composites src over dst at offset with the given opacity (0.0 - 1.0).
// The canvas uses it for translucent tool previews.
func Blend(dst *image.RGBA, src *image.NRGBA, offset image.Point, opacity float64) {
	opacity = clamp(opacity, 0, 1)
	sb := src.Bounds()
	db := dst.Bounds()

	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		dy := y - sb.Min.Y + offset.Y
		if dy < db.Min.Y || dy >= db.Max.Y {
			continue
		}
		for x := sb.Min.X; x < sb.Max.X; x++ {
			dx := x - sb.Min.X + offset.X
			if dx < db.Min.X || dx >= db.Max.X {
				continue
			}
			dst.SetRGBA(dx, dy, blend(dst.RGBAAt(dx, dy), src.NRGBAAt(x, y), opacity))
		}
	}
}

// blend performs normal source-over blending of one pixel.
func blend(dst color.RGBA, src color.NRGBA, opacity float64) color.RGBA {
	alpha := float64(src.A) / 255 * opacity
	da := float64(dst.A) / 255

	// dst is premultiplied, src is not.
	r := float64(src.R)/255*alpha + float64(dst.R)/255*(1-alpha)
	g := float64(src.G)/255*alpha + float64(dst.G)/255*(1-alpha)
	b := float64(src.B)/255*alpha + float64(dst.B)/255*(1-alpha)
	a := alpha + da*(1-alpha)

	return color.RGBA{
		R: colorutil.ClampByte(clamp(r, 0, a) * 255),
		G: colorutil.ClampByte(clamp(g, 0, a) * 255),
		B: colorutil.ClampByte(clamp(b, 0, a) * 255),
		A: colorutil.ClampByte(clamp(a, 0, 1) * 255),
	}
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
