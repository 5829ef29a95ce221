// Package image provides image intake, format support, and layer compositing.
package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pico-compositor/pkg/geometry"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedFormat is returned for files whose extension is not one of
// SupportedFormats.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// DefaultMaxDimension is the largest accepted width or height, in pixels.
const DefaultMaxDimension = 2048

// ValidationError reports an upload rejected before any scene change.
// Error returns the user-facing alert text.
type ValidationError struct {
	Name   string
	Width  int
	Height int
	Limit  int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("image dimensions must not exceed %d, please resize first", e.Limit)
}

// Detail describes the offending file for logs.
func (e *ValidationError) Detail() string {
	return fmt.Sprintf("%s is %dx%d, limit %d", e.Name, e.Width, e.Height, e.Limit)
}

// Asset is a decoded image together with the bytes it came from.
type Asset struct {
	Name   string // Display name (usually the file's base name)
	Format string // Decoder name: png, jpeg, webp, ...

	width  int
	height int
	data   []byte
	img    image.Image
}

// FromImage wraps an already decoded image. The asset has no source bytes,
// so Load returns the image itself.
func FromImage(name string, img image.Image) *Asset {
	b := img.Bounds()
	return &Asset{
		Name:   name,
		Format: "memory",
		width:  b.Dx(),
		height: b.Dy(),
		img:    img,
	}
}

// Width returns the intrinsic width in pixels.
func (a *Asset) Width() int { return a.width }

// Height returns the intrinsic height in pixels.
func (a *Asset) Height() int { return a.height }

// Size returns the intrinsic dimensions.
func (a *Asset) Size() geometry.Size {
	return geometry.NewSize(float64(a.width), float64(a.height))
}

// Image returns the decoded image.
func (a *Asset) Image() image.Image {
	return a.img
}

// Load decodes the image again from its source bytes.
func (a *Asset) Load(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.data == nil {
		if a.img == nil {
			return nil, fmt.Errorf("asset %q has no image data", a.Name)
		}
		return a.img, nil
	}
	img, _, err := image.Decode(bytes.NewReader(a.data))
	if err != nil {
		return nil, fmt.Errorf("failed to reload %q: %w", a.Name, err)
	}
	return img, nil
}

// Decoder turns uploaded bytes into assets, enforcing the dimension cap.
type Decoder struct {
	MaxDimension int
}

// NewDecoder creates a Decoder. A non-positive limit means DefaultMaxDimension.
func NewDecoder(maxDimension int) *Decoder {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Decoder{MaxDimension: maxDimension}
}

// Decode reads an image. Oversize images are rejected from the header alone
// with a *ValidationError, before the pixel data is decoded.
func (d *Decoder) Decode(r io.Reader, name string) (*Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image header: %w", err)
	}

	limit := d.MaxDimension
	if limit <= 0 {
		limit = DefaultMaxDimension
	}
	if cfg.Width > limit || cfg.Height > limit {
		return nil, &ValidationError{Name: name, Width: cfg.Width, Height: cfg.Height, Limit: limit}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	return &Asset{
		Name:   name,
		Format: format,
		width:  b.Dx(),
		height: b.Dy(),
		data:   data,
		img:    img,
	}, nil
}

// Load reads and decodes the image at path.
func (d *Decoder) Load(path string) (*Asset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	return d.Decode(file, filepath.Base(path))
}

var defaultDecoder = NewDecoder(DefaultMaxDimension)

// Decode decodes with the default dimension limit.
func Decode(r io.Reader, name string) (*Asset, error) {
	return defaultDecoder.Decode(r, name)
}

// Load loads the image at path with the default dimension limit.
func Load(path string) (*Asset, error) {
	return defaultDecoder.Load(path)
}

// SupportedFormats returns the list of supported image file extensions.
func SupportedFormats() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image format.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedFormats() {
		if ext == format {
			return true
		}
	}
	return false
}
