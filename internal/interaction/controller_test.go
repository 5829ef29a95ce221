package interaction

import (
	"fmt"
	"image"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	picoimage "pico-compositor/internal/image"
	"pico-compositor/internal/scene"
	"pico-compositor/pkg/geometry"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func asset(w, h int) *picoimage.Asset {
	return picoimage.FromImage("test.png", image.NewRGBA(image.Rect(0, 0, w, h)))
}

func newFixture(t *testing.T) (*scene.Scene, *Controller, *fakeClock) {
	t.Helper()
	n := 0
	s := scene.New(scene.WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("ref-%d", n)
	}))
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return s, New(s, WithClock(clock.now)), clock
}

func pt(x, y float64) geometry.Point2D { return geometry.NewPoint2D(x, y) }

func TestDragKeepsGrabPoint(t *testing.T) {
	s, c, _ := newFixture(t)
	id := s.AddReference(asset(100, 100))
	target := scene.ReferenceTarget(id)
	require.NoError(t, s.SetPosition(target, pt(10, 10)))

	c.PointerDown(pt(30, 40))
	assert.Equal(t, Dragging, c.State())
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, target, sel)

	c.PointerMove(pt(130, 90))
	l, _ := s.Layer(target)
	assert.Equal(t, pt(110, 60), l.Position)

	c.PointerUp()
	assert.Equal(t, Idle, c.State())
	l, _ = s.Layer(target)
	assert.Equal(t, pt(110, 60), l.Position)
}

func TestDragFinalPositionIndependentOfMoveCount(t *testing.T) {
	paths := [][]geometry.Point2D{
		{pt(200, 150)},
		{pt(50, 50), pt(120, 80), pt(200, 150)},
		{pt(200, 150), pt(200, 150), pt(200, 150)},
	}
	for i, path := range paths {
		t.Run(fmt.Sprintf("path%d", i), func(t *testing.T) {
			s, c, _ := newFixture(t)
			s.SetBackground(asset(300, 200))
			c.PointerDown(pt(20, 30))
			for _, p := range path {
				c.PointerMove(p)
			}
			c.PointerUp()
			bg, _ := s.Background()
			assert.Equal(t, pt(180, 120), bg.Position)
		})
	}
}

func TestMoveWhileIdleDoesNothing(t *testing.T) {
	s, c, _ := newFixture(t)
	s.SetBackground(asset(100, 100))
	c.PointerMove(pt(50, 50))
	bg, _ := s.Background()
	assert.Equal(t, geometry.Point2D{}, bg.Position)
}

func TestPointerLeaveEndsDrag(t *testing.T) {
	s, c, _ := newFixture(t)
	s.SetBackground(asset(100, 100))
	c.PointerDown(pt(5, 5))
	c.PointerMove(pt(15, 25))
	c.PointerLeave()
	assert.Equal(t, Idle, c.State())

	c.PointerMove(pt(90, 90))
	bg, _ := s.Background()
	assert.Equal(t, pt(10, 20), bg.Position)
}

func TestPointerDownPicksTopmost(t *testing.T) {
	s, c, _ := newFixture(t)
	s.SetBackground(asset(500, 500))
	s.AddReference(asset(100, 100))
	top := s.AddReference(asset(100, 100))

	c.PointerDown(pt(50, 50))
	target, ok := c.DragTarget()
	require.True(t, ok)
	assert.Equal(t, scene.ReferenceTarget(top), target)
}

func TestEmptyClickClearsSelection(t *testing.T) {
	s, c, _ := newFixture(t)
	s.SetBackground(asset(100, 100))
	require.NoError(t, s.SelectBackground())

	c.PointerDown(pt(500, 500))
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Equal(t, Idle, c.State())
}

func TestEmptyClickDebounce(t *testing.T) {
	s, c, clock := newFixture(t)
	s.SetBackground(asset(100, 100))

	c.PointerDown(pt(500, 500))

	// Select again, then click empty space shortly after the first click.
	require.NoError(t, s.SelectBackground())
	clock.advance(100 * time.Millisecond)
	c.PointerDown(pt(500, 500))
	_, ok := s.Selected()
	assert.True(t, ok, "click inside the debounce window must be ignored")

	clock.advance(300 * time.Millisecond)
	c.PointerDown(pt(500, 500))
	_, ok = s.Selected()
	assert.False(t, ok)
}

func TestDebounceDisabled(t *testing.T) {
	s := scene.New()
	s.SetBackground(asset(10, 10))
	now := time.Unix(0, 0)
	c := New(s, WithDebounce(0), WithClock(func() time.Time { return now }))

	for i := 0; i < 3; i++ {
		require.NoError(t, s.SelectBackground())
		c.PointerDown(pt(50, 50))
		_, ok := s.Selected()
		assert.False(t, ok)
	}
}

func TestLayerClicksAreNotDebounced(t *testing.T) {
	s, c, _ := newFixture(t)
	s.SetBackground(asset(100, 100))
	c.PointerDown(pt(500, 500))
	c.PointerDown(pt(10, 10))
	assert.Equal(t, Dragging, c.State())
}

func TestKeyDownDeletesSelected(t *testing.T) {
	keys := []fyne.KeyName{fyne.KeyDelete, fyne.KeyBackspace}
	for _, key := range keys {
		t.Run(string(key), func(t *testing.T) {
			s, c, _ := newFixture(t)
			id := s.AddReference(asset(10, 10))
			require.NoError(t, s.SelectReference(id))

			assert.True(t, c.KeyDown(key))
			assert.Empty(t, s.References())
		})
	}
}

func TestKeyDownIgnoresOtherKeysAndEmptySelection(t *testing.T) {
	s, c, _ := newFixture(t)
	id := s.AddReference(asset(10, 10))
	assert.False(t, c.KeyDown(fyne.KeyDelete))

	require.NoError(t, s.SelectReference(id))
	assert.False(t, c.KeyDown(fyne.KeyEscape))
	assert.Len(t, s.References(), 1)
}

func TestDeleteDuringDragEndsDrag(t *testing.T) {
	s, c, _ := newFixture(t)
	s.SetBackground(asset(500, 500))
	c.PointerDown(pt(10, 10))
	require.Equal(t, Dragging, c.State())

	assert.True(t, c.KeyDown(fyne.KeyDelete))
	assert.Equal(t, Idle, c.State())
	_, ok := s.Background()
	assert.False(t, ok)

	c.PointerMove(pt(100, 100))
	assert.True(t, s.Empty())
}
