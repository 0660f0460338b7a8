// Package filters implements the adjustment stages applied by the edit
// pipeline. Every stage is a pure function: it never modifies its input.
package filters

import (
	"context"
	"fmt"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	imgutil "imgedit/internal/image"
)

// Params holds adjustment factors. Gains and enhancement factors are neutral
// at 1, blur at radius 0.
type Params struct {
	Red, Green, Blue float64
	Saturation       float64
	Brightness       float64
	Contrast         float64
	Sharpness        float64
	BlurRadius       float64
}

// Neutral returns parameters that leave an image unchanged.
func Neutral() Params {
	return Params{Red: 1, Green: 1, Blue: 1, Saturation: 1, Brightness: 1, Contrast: 1, Sharpness: 1}
}

// IsNeutral reports whether applying p would be a no-op.
func (p Params) IsNeutral() bool {
	return len(p.Stages()) == 0
}

// Stage is one step of the adjustment chain.
type Stage struct {
	Name  string
	Apply func(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error)
}

// Stages returns the chain for p in application order. Stages whose
// parameter is neutral are left out entirely.
func (p Params) Stages() []Stage {
	var stages []Stage
	if p.Red != 1 || p.Green != 1 || p.Blue != 1 {
		r, g, b := p.Red, p.Green, p.Blue
		stages = append(stages, Stage{"gain", func(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
			return Gain(ctx, img, r, g, b)
		}})
	}
	if p.Saturation != 1 {
		stages = append(stages, Stage{"saturation", factorStage(Saturation, p.Saturation)})
	}
	if p.Brightness != 1 {
		stages = append(stages, Stage{"brightness", factorStage(Brightness, p.Brightness)})
	}
	if p.Contrast != 1 {
		stages = append(stages, Stage{"contrast", factorStage(Contrast, p.Contrast)})
	}
	if p.Sharpness != 1 {
		stages = append(stages, Stage{"sharpness", factorStage(Sharpness, p.Sharpness)})
	}
	if p.BlurRadius > 0 {
		radius := p.BlurRadius
		stages = append(stages, Stage{"blur", func(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return GaussianBlur(img, radius)
		}})
	}
	return stages
}

func factorStage(fn func(context.Context, *image.NRGBA, float64) (*image.NRGBA, error), f float64) func(context.Context, *image.NRGBA) (*image.NRGBA, error) {
	return func(ctx context.Context, img *image.NRGBA) (*image.NRGBA, error) {
		return fn(ctx, img, f)
	}
}

// Apply runs the chain for p over img. With neutral parameters it returns a
// copy of img.
func Apply(ctx context.Context, img *image.NRGBA, p Params) (*image.NRGBA, error) {
	out := img
	for _, s := range p.Stages() {
		next, err := s.Apply(ctx, out)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		out = next
	}
	if out == img {
		out = imgutil.Clone(img)
	}
	return out, nil
}

// mapRows creates a destination the size of src and calls fn for every row,
// splitting the rows into bands evaluated in parallel. It stops early when
// ctx is cancelled.
func mapRows(ctx context.Context, src *image.NRGBA, fn func(y int, in, out []uint8)) (*image.NRGBA, error) {
	b := src.Bounds()
	dst := image.NewNRGBA(b)
	h := b.Dy()
	if h == 0 {
		return dst, nil
	}

	bands := min(runtime.NumCPU(), h)
	rowsPer := (h + bands - 1) / bands

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < h; start += rowsPer {
		end := min(start+rowsPer, h)
		g.Go(func() error {
			for y := start; y < end; y++ {
				if y%32 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				so := src.PixOffset(b.Min.X, b.Min.Y+y)
				do := dst.PixOffset(b.Min.X, b.Min.Y+y)
				n := b.Dx() * 4
				fn(b.Min.Y+y, src.Pix[so:so+n], dst.Pix[do:do+n])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}
