package panels

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"imgedit/internal/filters"
	"imgedit/internal/interaction"
	"imgedit/pkg/colorutil"
)

// formatValue shows a slider value without a fraction.
func formatValue(v float64) string {
	return fmt.Sprintf("%.0f", math.Round(v))
}

// modeNames lists the tool names in toolbar order.
func modeNames() []string {
	modes := interaction.Modes()
	names := make([]string, len(modes))
	for i, m := range modes {
		names[i] = m.String()
	}
	return names
}

// parseMode is the inverse of Mode.String.
func parseMode(name string) (interaction.Mode, bool) {
	for _, m := range interaction.Modes() {
		if strings.EqualFold(m.String(), name) {
			return m, true
		}
	}
	return interaction.Idle, false
}

// colorLabel describes a color for the status line.
func colorLabel(c color.NRGBA) string {
	return fmt.Sprintf("%s  (luma %.0f)", colorutil.Hex(c), colorutil.Luminance(c.R, c.G, c.B))
}

// Histogram plot colors.
var (
	histRed   = color.NRGBA{R: 220, G: 60, B: 60, A: 255}
	histGreen = color.NRGBA{R: 60, G: 200, B: 60, A: 255}
	histBlue  = color.NRGBA{R: 70, G: 110, B: 230, A: 255}
	histLuma  = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
	histBack  = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
)

// plotHistogram draws the four channel tables as line plots scaled to the
// largest count.
func plotHistogram(h filters.Histogram, w, hgt int) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, w, hgt))
	for i := 0; i < len(out.Pix); i += 4 {
		out.Pix[i], out.Pix[i+1], out.Pix[i+2], out.Pix[i+3] = histBack.R, histBack.G, histBack.B, histBack.A
	}
	peak := h.Peak()
	if w < 2 || hgt < 2 || peak <= 0 {
		return out
	}
	for _, ch := range []struct {
		table []float64
		col   color.NRGBA
	}{
		{h.Luma, histLuma},
		{h.Red, histRed},
		{h.Green, histGreen},
		{h.Blue, histBlue},
	} {
		if len(ch.table) == 0 {
			continue
		}
		prev := -1
		for x := 0; x < w; x++ {
			bin := x * len(ch.table) / w
			y := hgt - 1 - int(ch.table[bin]/peak*float64(hgt-1))
			if prev < 0 {
				prev = y
			}
			lo, hi := min(prev, y), max(prev, y)
			for yy := lo; yy <= hi; yy++ {
				out.SetNRGBA(x, yy, ch.col)
			}
			prev = y
		}
	}
	return out
}

// pointerText formats the image pixel under the pointer.
func pointerText(data interface{}) string {
	p, ok := data.(image.Point)
	if !ok {
		return ""
	}
	return fmt.Sprintf("x %d  y %d", p.X, p.Y)
}
