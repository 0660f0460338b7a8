package canvas

import (
	"image"
	"image/color"
	"image/draw"
)

// fill paints r with col, replacing what is there.
func fill(output *image.RGBA, r image.Rectangle, col color.Color) {
	draw.Draw(output, r.Intersect(output.Bounds()), image.NewUniform(col), image.Point{}, draw.Src)
}

// drawLine draws a line between two points using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.Color, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}

	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}

	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.Set(px, py, col)
				}
			}
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// drawRect draws a rectangle outline of the given thickness inside r.
func drawRect(output *image.RGBA, r image.Rectangle, col color.Color, thickness int) {
	if r.Empty() {
		return
	}
	for t := 0; t < thickness; t++ {
		x1, y1 := r.Min.X+t, r.Min.Y+t
		x2, y2 := r.Max.X-1-t, r.Max.Y-1-t
		if x1 > x2 || y1 > y2 {
			return
		}
		drawLine(output, x1, y1, x2, y1, col, 1)
		drawLine(output, x1, y2, x2, y2, col, 1)
		drawLine(output, x1, y1, x1, y2, col, 1)
		drawLine(output, x2, y1, x2, y2, col, 1)
	}
}

// drawDashedRect draws the marching-ants outline of a selection rectangle.
func drawDashedRect(output *image.RGBA, r image.Rectangle, on, off color.Color) {
	if r.Empty() {
		return
	}
	bounds := output.Bounds()
	x1, y1 := r.Min.X, r.Min.Y
	x2, y2 := r.Max.X-1, r.Max.Y-1

	set := func(x, y int) {
		if !(image.Point{X: x, Y: y}).In(bounds) {
			return
		}
		if (x+y)%8 < 4 {
			output.Set(x, y, on)
		} else {
			output.Set(x, y, off)
		}
	}
	for x := x1; x <= x2; x++ {
		set(x, y1)
		set(x, y2)
	}
	for y := y1; y <= y2; y++ {
		set(x1, y)
		set(x2, y)
	}
}

// drawPolygon draws a closed polygon outline.
func drawPolygon(output *image.RGBA, pts []image.Point, col color.Color, thickness int) {
	n := len(pts)
	if n < 2 {
		return
	}
	for i := 0; i < n; i++ {
		p1 := pts[i]
		p2 := pts[(i+1)%n]
		drawLine(output, p1.X, p1.Y, p2.X, p2.Y, col, thickness)
	}
}
