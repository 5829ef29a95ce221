package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/math/f64"
)

func TestRectContainsIsInclusive(t *testing.T) {
	r := NewRect(10, 20, 100, 50)

	assert.True(t, r.Contains(NewPoint2D(10, 20)))
	assert.True(t, r.Contains(NewPoint2D(110, 70)))
	assert.True(t, r.Contains(NewPoint2D(50, 40)))
	assert.False(t, r.Contains(NewPoint2D(9.9, 40)))
	assert.False(t, r.Contains(NewPoint2D(50, 70.1)))
}

func TestTranslateScaleCompose(t *testing.T) {
	tr := Translation(30, 40).Compose(Scale(2, 0.5))

	p := tr.Apply(NewPoint2D(10, 10))
	assert.InDelta(t, 50, p.X, 1e-9)
	assert.InDelta(t, 45, p.Y, 1e-9)

	bounds := tr.ApplyRect(NewRect(0, 0, 100, 200))
	assert.Equal(t, NewRect(30, 40, 200, 100), bounds)

	assert.Equal(t, f64.Aff3{2, 0, 30, 0, 0.5, 40}, tr.Aff3())
}

func TestRectPixelsRoundsOutward(t *testing.T) {
	assert.Equal(t, image.Rect(1, -3, 12, 6), NewRect(1.4, -2.5, 10.2, 8.1).Pixels())
	assert.Equal(t, image.Rect(0, 0, 4, 4), NewRect(0, 0, 4, 4).Pixels())
}

func TestPointArithmetic(t *testing.T) {
	a := NewPoint2D(3, 4)
	b := NewPoint2D(1, -2)
	assert.Equal(t, NewPoint2D(4, 2), a.Add(b))
	assert.Equal(t, NewPoint2D(2, 6), a.Sub(b))
}
