package filters

import (
	"image"

	"gonum.org/v1/gonum/floats"

	"imgedit/pkg/colorutil"
)

// Histogram holds per-channel frequency tables and the luma table derived
// from them.
type Histogram struct {
	Red, Green, Blue, Luma []float64
}

// ComputeHistogram counts channel values over img. The luma table is the
// ITU-R 601 weighted sum of the channel tables.
func ComputeHistogram(img *image.NRGBA) Histogram {
	h := Histogram{
		Red:   make([]float64, 256),
		Green: make([]float64, 256),
		Blue:  make([]float64, 256),
		Luma:  make([]float64, 256),
	}
	if img == nil {
		return h
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 0; i < len(row); i += 4 {
			h.Red[row[i]]++
			h.Green[row[i+1]]++
			h.Blue[row[i+2]]++
		}
	}
	floats.AddScaled(h.Luma, colorutil.LumaR, h.Red)
	floats.AddScaled(h.Luma, colorutil.LumaG, h.Green)
	floats.AddScaled(h.Luma, colorutil.LumaB, h.Blue)
	return h
}

// Peak returns the largest count across all tables, for plot scaling.
func (h Histogram) Peak() float64 {
	var peak float64
	for _, t := range [][]float64{h.Red, h.Green, h.Blue, h.Luma} {
		if len(t) > 0 {
			peak = max(peak, floats.Max(t))
		}
	}
	return peak
}
