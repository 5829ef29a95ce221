package image

import (
	"image"
	"image/color"
	"testing"
	"time"

	"pico-compositor/pkg/colorutil"
	"pico-compositor/pkg/geometry"

	"github.com/stretchr/testify/assert"
	xdraw "golang.org/x/image/draw"
)

var (
	red   = color.RGBA{R: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
)

func at(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestRenderFillsBackground(t *testing.T) {
	c := NewCompositor(40, 30)

	out := c.Render(nil)
	assert.Equal(t, image.Rect(0, 0, 40, 30), out.Bounds())
	assert.Equal(t, colorutil.Zinc, at(out, 0, 0))
	assert.Equal(t, colorutil.Zinc, at(out, 39, 29))
}

func TestRenderTranslatesAndScales(t *testing.T) {
	c := NewCompositor(64, 64)
	c.Interpolator = xdraw.NearestNeighbor

	out := c.Render([]Placement{{
		Image:    solid(5, 5, red),
		Position: geometry.NewPoint2D(10, 10),
		ScaleX:   2,
		ScaleY:   3,
	}})

	assert.Equal(t, red, at(out, 10, 10))
	assert.Equal(t, red, at(out, 19, 24))
	assert.Equal(t, colorutil.Zinc, at(out, 9, 10))
	assert.Equal(t, colorutil.Zinc, at(out, 20, 10))
	assert.Equal(t, colorutil.Zinc, at(out, 10, 25))
}

func TestRenderLaterPlacementsOnTop(t *testing.T) {
	c := NewCompositor(32, 32)
	c.Interpolator = xdraw.NearestNeighbor

	out := c.Render([]Placement{
		{Image: solid(20, 20, blue), ScaleX: 1, ScaleY: 1},
		{Image: solid(10, 10, red), Position: geometry.NewPoint2D(5, 5), ScaleX: 1, ScaleY: 1},
		{Image: solid(4, 4, green), Position: geometry.NewPoint2D(8, 8), ScaleX: 1, ScaleY: 1},
	})

	assert.Equal(t, blue, at(out, 2, 2))
	assert.Equal(t, red, at(out, 6, 6))
	assert.Equal(t, green, at(out, 9, 9))
}

func TestRenderClipsNegativePositions(t *testing.T) {
	c := NewCompositor(16, 16)
	c.Interpolator = xdraw.NearestNeighbor

	out := c.Render([]Placement{{
		Image:    solid(10, 10, red),
		Position: geometry.NewPoint2D(-5, -5),
		ScaleX:   1,
		ScaleY:   1,
	}})

	assert.Equal(t, red, at(out, 0, 0))
	assert.Equal(t, red, at(out, 4, 4))
	assert.Equal(t, colorutil.Zinc, at(out, 5, 5))
}

func TestRenderHandlesOffsetSourceBounds(t *testing.T) {
	src := image.NewRGBA(image.Rect(100, 100, 104, 104))
	for y := 100; y < 104; y++ {
		for x := 100; x < 104; x++ {
			src.Set(x, y, red)
		}
	}
	c := NewCompositor(16, 16)
	c.Interpolator = xdraw.NearestNeighbor

	out := c.Render([]Placement{{Image: src, Position: geometry.NewPoint2D(2, 2), ScaleX: 1, ScaleY: 1}})

	assert.Equal(t, red, at(out, 2, 2))
	assert.Equal(t, red, at(out, 5, 5))
	assert.Equal(t, colorutil.Zinc, at(out, 6, 6))
}

func TestRenderWithCache(t *testing.T) {
	c := NewCompositor(32, 32)
	c.Cache = NewScaledCache(time.Minute)
	src := solid(4, 4, red)

	p := Placement{Key: "a", Image: src, Position: geometry.NewPoint2D(3, 3), ScaleX: 2, ScaleY: 2}
	out := c.Render([]Placement{p})
	assert.Equal(t, red, at(out, 6, 6))
	assert.Equal(t, colorutil.Zinc, at(out, 12, 12))
	assert.Equal(t, 1, c.Cache.Len())

	p.Position = geometry.NewPoint2D(10, 10)
	out = c.Render([]Placement{p})
	assert.Equal(t, red, at(out, 13, 13))
	assert.Equal(t, 1, c.Cache.Len())

	p.ScaleX = 3
	out = c.Render([]Placement{p})
	assert.Equal(t, red, at(out, 20, 13))
	assert.Equal(t, 1, c.Cache.Len(), "a new scale replaces the old bitmap")

	c.Cache.Forget("a")
	assert.Equal(t, 0, c.Cache.Len())
}

func TestRenderSkipsCacheBeyondSurface(t *testing.T) {
	c := NewCompositor(32, 32)
	c.Interpolator = xdraw.NearestNeighbor
	c.Cache = NewScaledCache(time.Minute)
	p := Placement{Key: "a", Image: solid(4, 4, red), ScaleX: 2, ScaleY: 2}

	c.Render([]Placement{p})
	assert.Equal(t, 1, c.Cache.Len())

	// 40x40 does not fit a 32x32 surface.
	p.ScaleX, p.ScaleY = 10, 10
	out := c.Render([]Placement{p})
	assert.Zero(t, c.Cache.Len())
	assert.Equal(t, red, at(out, 0, 0))
	assert.Equal(t, red, at(out, 31, 31))
}

func TestScaledCacheKeepsOneScalePerKey(t *testing.T) {
	cache := NewScaledCache(time.Minute)
	src := solid(50, 30, red)

	for v := 1.0; v <= 10.0; v += 0.25 {
		img := cache.Get("layer", src, v, v)
		w, h := scaledSize(src.Bounds(), v, v)
		assert.Equal(t, image.Rect(0, 0, w, h), img.Bounds())
		assert.Equal(t, 1, cache.Len())
	}

	first := cache.Get("layer", src, 2, 2)
	assert.Same(t, first, cache.Get("layer", src, 2, 2))
	cache.Get("other", src, 2, 2)
	assert.Equal(t, 2, cache.Len())
}

func TestStrokeRect(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	StrokeRect(dst, image.Rect(2, 2, 12, 12), 2, blue)

	assert.Equal(t, blue, at(dst, 2, 2))
	assert.Equal(t, blue, at(dst, 3, 7))
	assert.Equal(t, blue, at(dst, 11, 11))
	assert.Equal(t, color.RGBA{}, at(dst, 6, 6))
}
