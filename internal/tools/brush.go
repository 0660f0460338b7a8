// Package tools implements the raster editing tools. Every tool works on a
// private copy; committed snapshots are never touched.
package tools

import (
	"image"
	"image/color"
	"math"

	"imgedit/internal/filters"
	imgutil "imgedit/internal/image"
	"imgedit/pkg/geometry"
)

// BrushKind selects what a stroke does under the brush.
type BrushKind int

const (
	BrushPaint BrushKind = iota
	BrushErase
	BrushBlur
)

func (k BrushKind) String() string {
	switch k {
	case BrushPaint:
		return "Paint"
	case BrushErase:
		return "Erase"
	case BrushBlur:
		return "Blur"
	default:
		return "Unknown"
	}
}

// Brush describes the dab stamped along a stroke.
type Brush struct {
	Kind  BrushKind
	Size  int // diameter in scene pixels
	Color color.NRGBA
}

// Stroke accumulates dabs into a working buffer until it is finished.
type Stroke struct {
	brush Brush
	buf   *image.NRGBA
	last  geometry.Point2D
	dirty image.Rectangle
}

// BeginStroke copies base and stamps the first dab at p.
func BeginStroke(base *image.NRGBA, b Brush, p geometry.Point2D) *Stroke {
	if b.Size < 1 {
		b.Size = 1
	}
	s := &Stroke{brush: b, buf: imgutil.Clone(base), last: p}
	s.dab(p)
	return s
}

// MoveTo extends the stroke to p, stamping dabs spaced a quarter of the
// brush size apart.
func (s *Stroke) MoveTo(p geometry.Point2D) {
	d := s.last.Distance(p)
	step := math.Max(1, float64(s.brush.Size)/4)
	if d < step {
		return
	}
	n := int(d / step)
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		s.dab(geometry.Point2D{X: s.last.X + (p.X-s.last.X)*t, Y: s.last.Y + (p.Y-s.last.Y)*t})
	}
	s.last = p
}

// Image returns the working buffer for previewing. Callers must not keep it
// past Finish.
func (s *Stroke) Image() *image.NRGBA {
	return s.buf
}

// Dirty returns the area touched so far.
func (s *Stroke) Dirty() image.Rectangle {
	return s.dirty
}

// Finish hands the working buffer over to the caller. The stroke must not be
// used afterwards.
func (s *Stroke) Finish() *image.NRGBA {
	buf := s.buf
	s.buf = nil
	return buf
}

func (s *Stroke) dab(c geometry.Point2D) {
	r := float64(s.brush.Size) / 2
	area := image.Rect(
		int(math.Floor(c.X-r)), int(math.Floor(c.Y-r)),
		int(math.Ceil(c.X+r)), int(math.Ceil(c.Y+r)),
	).Intersect(s.buf.Bounds())
	if area.Empty() {
		return
	}
	s.dirty = s.dirty.Union(area)

	mask := circleMask(area, c, r)
	switch s.brush.Kind {
	case BrushPaint:
		fillMasked(s.buf, area, mask, s.brush.Color)
	case BrushErase:
		fillMasked(s.buf, area, mask, color.NRGBA{})
	case BrushBlur:
		blurMasked(s.buf, area, mask, math.Max(1, r/4))
	}
}

// circleMask marks the pixels of area whose centers lie within r of c.
func circleMask(area image.Rectangle, c geometry.Point2D, r float64) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, area.Dx(), area.Dy()))
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			p := geometry.Point2D{X: float64(x) + 0.5, Y: float64(y) + 0.5}
			if p.Distance(c) <= r {
				mask.SetAlpha(x-area.Min.X, y-area.Min.Y, color.Alpha{A: 255})
			}
		}
	}
	return mask
}

func fillMasked(img *image.NRGBA, area image.Rectangle, mask *image.Alpha, c color.NRGBA) {
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			if mask.AlphaAt(x-area.Min.X, y-area.Min.Y).A != 0 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// blurMasked blurs the area with a margin so the dab has no hard edge
// artifacts, then writes back only the masked pixels.
func blurMasked(img *image.NRGBA, area image.Rectangle, mask *image.Alpha, sigma float64) {
	margin := int(math.Ceil(sigma * 3))
	outer := area.Inset(-margin).Intersect(img.Bounds())
	patch := imgutil.Extract(img, outer)
	blurred, err := filters.GaussianBlur(patch, sigma)
	if err != nil {
		return
	}
	inner := imgutil.Extract(blurred, area.Sub(outer.Min))
	imgutil.Paste(img, inner, area.Min, mask)
}
