// Package colorutil provides shared color utilities for the image editor.
package colorutil

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// Overlay colors used by the canvas for selections, zoom boxes and path handles.
var (
	Black     = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	White     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan      = color.NRGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta   = color.NRGBA{R: 255, G: 0, B: 255, A: 255}
	Yellow    = color.NRGBA{R: 255, G: 255, B: 0, A: 255}
	ZoomBox   = color.NRGBA{R: 0, G: 255, B: 255, A: 160}
	Selection = color.NRGBA{R: 255, G: 255, B: 0, A: 200}
	Handle    = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

	// Checker colors for the transparency backdrop.
	CheckerLight = color.NRGBA{R: 204, G: 204, B: 204, A: 255}
	CheckerDark  = color.NRGBA{R: 153, G: 153, B: 153, A: 255}
)

// ITU-R 601 luma weights.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// Luminance returns the ITU-R 601 luma of an 8-bit RGB triple.
func Luminance(r, g, b uint8) float64 {
	return LumaR*float64(r) + LumaG*float64(g) + LumaB*float64(b)
}

// IsSimilar reports whether two colors have luma within threshold of each other.
func IsSimilar(a, b color.NRGBA, threshold float64) bool {
	return math.Abs(Luminance(a.R, a.G, a.B)-Luminance(b.R, b.G, b.B)) <= threshold
}

// Hex formats a color as #RRGGBB, or #RRGGBBAA when it is not opaque.
func Hex(c color.NRGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}

// ParseHex parses #RGB, #RRGGBB or #RRGGBBAA. The leading # is optional.
func ParseHex(s string) (color.NRGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "FF"
	}
	if len(h) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// ClampByte rounds and clamps a float channel value to 0-255.
func ClampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
