package raster

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/taigrr/arbor/pkg/gfx"
)

// Framebuffer is a row-major grid of pixels. When shown in a terminal each
// cell covers two rows (see Draw), so Height is usually twice the number of
// terminal rows.
type Framebuffer struct {
	Width  int
	Height int
	Pixels []gfx.Color
}

// NewFramebuffer creates a framebuffer with the given dimensions.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]gfx.Color, width*height),
	}
}

// Resize changes the dimensions, reusing the pixel storage when it is
// large enough. Pixel contents are undefined afterwards.
func (fb *Framebuffer) Resize(width, height int) {
	n := width * height
	if cap(fb.Pixels) < n {
		fb.Pixels = make([]gfx.Color, n)
	}
	fb.Pixels = fb.Pixels[:n]
	fb.Width, fb.Height = width, height
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c gfx.Color) {
	n := len(fb.Pixels)
	if n == 0 {
		return
	}
	fb.Pixels[0] = c
	for i := 1; i < n; i *= 2 {
		copy(fb.Pixels[i:], fb.Pixels[:i])
	}
}

// SetPixel sets the pixel at (x, y). Out of range coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c gfx.Color) {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// Pixel returns the color at (x, y), or transparent black out of range.
func (fb *Framebuffer) Pixel(x, y int) gfx.Color {
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height {
		return gfx.Color{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// ToImage copies the framebuffer into an image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG writes the framebuffer to path as a PNG file.
func (fb *Framebuffer) SavePNG(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	if err := png.Encode(f, fb.ToImage()); err != nil {
		f.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return f.Close()
}
