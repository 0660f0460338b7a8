package interaction

import (
	"imgedit/internal/tools"
	"imgedit/pkg/geometry"
)

// gesture tracks the drag that holds exclusive input focus. Positions are in
// device pixels.
type gesture struct {
	kind    GestureKind
	button  Button
	start   geometry.Point2D
	current geometry.Point2D
	last    geometry.Point2D

	origin geometry.Point2D // scene position of the press

	stroke *tools.Stroke
}

func (g *gesture) begin(kind GestureKind, button Button, pos, scene geometry.Point2D) {
	*g = gesture{kind: kind, button: button, start: pos, current: pos, last: pos, origin: scene}
}

// move records pos and returns the motion since the previous move.
func (g *gesture) move(pos geometry.Point2D) geometry.Point2D {
	g.last = g.current
	g.current = pos
	return pos.Sub(g.last)
}

func (g *gesture) active() bool { return g.kind != GestureNone }

func (g *gesture) end() { *g = gesture{} }
