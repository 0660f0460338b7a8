package tools

import (
	"image"
	"image/color"

	imgutil "imgedit/internal/image"
	"imgedit/pkg/colorutil"
)

// FloodFill returns a copy of img in which the 4-connected region around
// seed whose pixels are similar to the seed pixel is painted with c.
// The second result is false when seed lies outside the image.
func FloodFill(img *image.NRGBA, seed image.Point, c color.NRGBA, threshold float64) (*image.NRGBA, bool) {
	b := img.Bounds()
	if !seed.In(b) {
		return nil, false
	}
	out := imgutil.Clone(img)
	target := img.NRGBAAt(seed.X, seed.Y)

	visited := make([]bool, b.Dx()*b.Dy())
	idx := func(x, y int) int { return (y-b.Min.Y)*b.Dx() + (x - b.Min.X) }

	stack := []image.Point{seed}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		y := p.Y
		if !fillable(img, visited, idx, p.X, y, target, threshold) {
			continue
		}

		// Scan left and right from p, filling the whole run.
		x0 := p.X
		for x0 > b.Min.X && fillable(img, visited, idx, x0-1, y, target, threshold) {
			x0--
		}
		x1 := p.X
		for x1 < b.Max.X-1 && fillable(img, visited, idx, x1+1, y, target, threshold) {
			x1++
		}
		for x := x0; x <= x1; x++ {
			visited[idx(x, y)] = true
			out.SetNRGBA(x, y, c)
			for _, ny := range [2]int{y - 1, y + 1} {
				if ny >= b.Min.Y && ny < b.Max.Y && fillable(img, visited, idx, x, ny, target, threshold) {
					stack = append(stack, image.Pt(x, ny))
				}
			}
		}
	}
	return out, true
}

func fillable(img *image.NRGBA, visited []bool, idx func(x, y int) int, x, y int, target color.NRGBA, threshold float64) bool {
	return !visited[idx(x, y)] && colorutil.IsSimilar(img.NRGBAAt(x, y), target, threshold)
}
