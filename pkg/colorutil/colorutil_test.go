package colorutil

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuminance(t *testing.T) {
	assert.InDelta(t, 255, Luminance(255, 255, 255), 1e-9)
	assert.InDelta(t, 0, Luminance(0, 0, 0), 1e-9)
	assert.InDelta(t, 76.245, Luminance(255, 0, 0), 1e-9)
}

func TestIsSimilar(t *testing.T) {
	grey := color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	near := color.NRGBA{R: 105, G: 105, B: 105, A: 255}
	far := color.NRGBA{R: 200, G: 200, B: 200, A: 255}

	assert.True(t, IsSimilar(grey, near, 10))
	assert.False(t, IsSimilar(grey, far, 10))
	assert.True(t, IsSimilar(grey, grey, 0))
}

func TestHex(t *testing.T) {
	assert.Equal(t, "#FF0080", Hex(color.NRGBA{R: 255, G: 0, B: 128, A: 255}))
	assert.Equal(t, "#01020304", Hex(color.NRGBA{R: 1, G: 2, B: 3, A: 4}))
}

func TestParseHex(t *testing.T) {
	for in, want := range map[string]color.NRGBA{
		"#FF0080":   {R: 255, G: 0, B: 128, A: 255},
		"01020304":  {R: 1, G: 2, B: 3, A: 4},
		"#abc":      {R: 0xAA, G: 0xBB, B: 0xCC, A: 255},
		" #000000 ": Black,
	} {
		got, err := ParseHex(in)
		if assert.NoError(t, err, in) {
			assert.Equal(t, want, got, in)
		}
	}
	for _, in := range []string{"", "#12345", "#GGGGGG"} {
		_, err := ParseHex(in)
		assert.Error(t, err, in)
	}
}

func TestClampByte(t *testing.T) {
	assert.Equal(t, uint8(0), ClampByte(-4))
	assert.Equal(t, uint8(255), ClampByte(300))
	assert.Equal(t, uint8(128), ClampByte(127.6))
}
