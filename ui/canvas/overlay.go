package canvas

import (
	"image"
	"math"

	"imgedit/internal/interaction"
	"imgedit/internal/selection"
	"imgedit/pkg/geometry"
)

// Overlay is everything drawn over the image, in output pixels.
type Overlay struct {
	Band      image.Rectangle // zoom box or selection rubber band
	Selection image.Rectangle // committed rectangle selection
	Path      []image.Point   // path selection polygon
	Handles   []image.Rectangle
}

// Empty reports whether there is nothing to draw.
func (o Overlay) Empty() bool {
	return o.Band.Empty() && o.Selection.Empty() && len(o.Path) == 0 && len(o.Handles) == 0
}

// projector maps scene coordinates to output pixels: the scene-to-device
// transform followed by the device pixel scale.
type projector struct {
	t     geometry.AffineTransform
	scale float64
}

func (p projector) point(s geometry.Point2D) image.Point {
	d := p.t.Apply(s)
	return image.Pt(int(math.Round(d.X*p.scale)), int(math.Round(d.Y*p.scale)))
}

func (p projector) rect(r geometry.Rect) image.Rectangle {
	if r.Empty() {
		return image.Rectangle{}
	}
	return image.Rectangle{Min: p.point(r.TopLeft()), Max: p.point(r.BottomRight())}.Canon()
}

// buildOverlay projects the router's feedback into output pixels.
func buildOverlay(p projector, preview interaction.Preview, sel selection.Region, path interaction.PathOverlay) Overlay {
	o := Overlay{Band: p.rect(preview.Band)}
	if sel.Kind() == selection.Rect {
		o.Selection = p.rect(sel.Rect())
	}
	if !path.Empty() {
		o.Path = make([]image.Point, len(path.Polygon))
		for i, pt := range path.Polygon {
			o.Path[i] = p.point(pt)
		}
		o.Handles = make([]image.Rectangle, len(path.Handles))
		for i, h := range path.Handles {
			o.Handles[i] = p.rect(h)
		}
	}
	return o
}
