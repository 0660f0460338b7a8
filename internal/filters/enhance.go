package filters

import (
	"context"
	"image"

	"gonum.org/v1/gonum/stat"

	"imgedit/pkg/colorutil"
)

// Enhancement stages blend between the image and a degenerate version of it:
// factor 0 gives the degenerate image, 1 the original, above 1 extrapolates.
// Alpha is carried through unchanged.

func lerp(degenerate, orig uint8, f float64) uint8 {
	d := float64(degenerate)
	return colorutil.ClampByte(d + f*(float64(orig)-d))
}

// luma is the integer ITU-R 601 grey level of an RGB triple.
func luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*299 + uint32(g)*587 + uint32(b)*114 + 500) / 1000)
}

// Gain multiplies each color channel by its own factor.
func Gain(ctx context.Context, img *image.NRGBA, r, g, b float64) (*image.NRGBA, error) {
	var lut [3][256]uint8
	for i := 0; i < 256; i++ {
		lut[0][i] = colorutil.ClampByte(float64(i) * r)
		lut[1][i] = colorutil.ClampByte(float64(i) * g)
		lut[2][i] = colorutil.ClampByte(float64(i) * b)
	}
	return mapRows(ctx, img, func(_ int, in, out []uint8) {
		for i := 0; i < len(in); i += 4 {
			out[i] = lut[0][in[i]]
			out[i+1] = lut[1][in[i+1]]
			out[i+2] = lut[2][in[i+2]]
			out[i+3] = in[i+3]
		}
	})
}

// Saturation blends toward the greyscale image.
func Saturation(ctx context.Context, img *image.NRGBA, f float64) (*image.NRGBA, error) {
	return mapRows(ctx, img, func(_ int, in, out []uint8) {
		for i := 0; i < len(in); i += 4 {
			l := luma(in[i], in[i+1], in[i+2])
			out[i] = lerp(l, in[i], f)
			out[i+1] = lerp(l, in[i+1], f)
			out[i+2] = lerp(l, in[i+2], f)
			out[i+3] = in[i+3]
		}
	})
}

// Brightness blends toward black.
func Brightness(ctx context.Context, img *image.NRGBA, f float64) (*image.NRGBA, error) {
	return mapRows(ctx, img, func(_ int, in, out []uint8) {
		for i := 0; i < len(in); i += 4 {
			out[i] = lerp(0, in[i], f)
			out[i+1] = lerp(0, in[i+1], f)
			out[i+2] = lerp(0, in[i+2], f)
			out[i+3] = in[i+3]
		}
	})
}

// Contrast blends toward a flat grey at the image's mean luma.
func Contrast(ctx context.Context, img *image.NRGBA, f float64) (*image.NRGBA, error) {
	mean := colorutil.ClampByte(MeanLuma(img))
	return mapRows(ctx, img, func(_ int, in, out []uint8) {
		for i := 0; i < len(in); i += 4 {
			out[i] = lerp(mean, in[i], f)
			out[i+1] = lerp(mean, in[i+1], f)
			out[i+2] = lerp(mean, in[i+2], f)
			out[i+3] = in[i+3]
		}
	})
}

// MeanLuma returns the average integer luma of img.
func MeanLuma(img *image.NRGBA) float64 {
	b := img.Bounds()
	if b.Empty() {
		return 0
	}
	var hist [256]float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			hist[luma(row[i], row[i+1], row[i+2])]++
		}
	}
	levels := make([]float64, 256)
	for i := range levels {
		levels[i] = float64(i)
	}
	return stat.Mean(levels, hist[:])
}

// smoothKernel is the 3x3 smoothing filter used as the degenerate image for
// sharpening; its weights sum to 13.
var smoothKernel = [3][3]uint32{
	{1, 1, 1},
	{1, 5, 1},
	{1, 1, 1},
}

// Sharpness blends away from (f > 1) or toward (f < 1) a smoothed copy.
// Border pixels have no full neighborhood and are kept as they are.
func Sharpness(ctx context.Context, img *image.NRGBA, f float64) (*image.NRGBA, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	return mapRows(ctx, img, func(y int, in, out []uint8) {
		copy(out, in)
		if y == b.Min.Y || y == b.Max.Y-1 || w < 3 || h < 3 {
			return
		}
		for x := 1; x < w-1; x++ {
			for c := 0; c < 3; c++ {
				var sum uint32
				for ky := -1; ky <= 1; ky++ {
					row := img.PixOffset(b.Min.X, y+ky)
					for kx := -1; kx <= 1; kx++ {
						sum += smoothKernel[ky+1][kx+1] * uint32(img.Pix[row+(x+kx)*4+c])
					}
				}
				smooth := uint8((sum + 6) / 13)
				out[x*4+c] = lerp(smooth, in[x*4+c], f)
			}
		}
	})
}
