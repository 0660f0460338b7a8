package selection

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgedit/pkg/geometry"
)

func TestZeroRegionIsNone(t *testing.T) {
	var r Region
	assert.Equal(t, None, r.Kind())
	assert.False(t, r.Active())
	_, _, ok := r.Scope(image.Rect(0, 0, 10, 10))
	assert.False(t, ok)
	assert.Equal(t, None, NewRect(geometry.Rect{}).Kind())
}

func TestRectScopeClipsToCanvas(t *testing.T) {
	r := NewRect(geometry.NewRect(80, 90, 50, 50))
	area, mask, ok := r.Scope(image.Rect(0, 0, 100, 100))
	require.True(t, ok)
	assert.Nil(t, mask)
	assert.Equal(t, image.Rect(80, 90, 100, 100), area)
}

func TestRectScopeOutsideCanvas(t *testing.T) {
	r := NewRect(geometry.NewRect(200, 200, 10, 10))
	assert.True(t, r.Active())
	_, _, ok := r.Scope(image.Rect(0, 0, 100, 100))
	assert.False(t, ok)
}

func TestPathNeedsThreePoints(t *testing.T) {
	r := NewPath([]geometry.Point2D{{X: 1, Y: 1}, {X: 5, Y: 5}})
	assert.Equal(t, Path, r.Kind())
	assert.False(t, r.Active())
}

func TestPathScopeMask(t *testing.T) {
	pts := []geometry.Point2D{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	r := NewPath(pts)
	pts[0].X = 99 // the region keeps its own copy

	area, mask, ok := r.Scope(image.Rect(0, 0, 20, 20))
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 10, 10), area)
	require.NotNil(t, mask)
	assert.Equal(t, uint8(255), mask.AlphaAt(1, 1).A)
	assert.Equal(t, uint8(0), mask.AlphaAt(8, 8).A)
	assert.Equal(t, geometry.NewRect(0, 0, 10, 10), r.Bounds())
}

func TestPathScopeClipped(t *testing.T) {
	r := NewPath([]geometry.Point2D{{X: -10, Y: -10}, {X: 5, Y: -10}, {X: 5, Y: 5}, {X: -10, Y: 5}})
	area, mask, ok := r.Scope(image.Rect(0, 0, 20, 20))
	require.True(t, ok)
	assert.Equal(t, image.Rect(0, 0, 5, 5), area)
	assert.Equal(t, uint8(255), mask.AlphaAt(4, 4).A)
}
