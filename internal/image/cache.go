package image

import (
	"image"
	"math"
	"time"

	"github.com/patrickmn/go-cache"
	xdraw "golang.org/x/image/draw"
)

// ScaledCache keeps one resampled copy per layer key so that moving a
// layer only re-blits it. A new scale replaces the previous one. Entries
// expire after ttl without use.
type ScaledCache struct {
	items  *cache.Cache
	scaler xdraw.Scaler
}

type scaledEntry struct {
	sx, sy float64
	img    image.Image
}

// NewScaledCache creates a cache whose entries live for ttl.
func NewScaledCache(ttl time.Duration) *ScaledCache {
	return &ScaledCache{
		items:  cache.New(ttl, 2*ttl),
		scaler: xdraw.ApproxBiLinear,
	}
}

// Get returns src scaled by (sx, sy), resampling only when the cached
// scale for key differs.
func (s *ScaledCache) Get(key string, src image.Image, sx, sy float64) image.Image {
	if v, ok := s.items.Get(key); ok {
		if e := v.(scaledEntry); e.sx == sx && e.sy == sy {
			s.items.SetDefault(key, e)
			return e.img
		}
	}

	sb := src.Bounds()
	w, h := scaledSize(sb, sx, sy)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	s.scaler.Scale(dst, dst.Bounds(), src, sb, xdraw.Src, nil)

	s.items.SetDefault(key, scaledEntry{sx: sx, sy: sy, img: dst})
	return dst
}

// Forget drops the cached bitmap of key.
func (s *ScaledCache) Forget(key string) {
	s.items.Delete(key)
}

// Len returns the number of cached bitmaps.
func (s *ScaledCache) Len() int {
	return s.items.ItemCount()
}

func scaledSize(b image.Rectangle, sx, sy float64) (int, int) {
	w := int(math.Max(1, math.Round(float64(b.Dx())*sx)))
	h := int(math.Max(1, math.Round(float64(b.Dy())*sy)))
	return w, h
}
