package gfx

import (
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"math"
	"os"
)

// Wrap determines how texture coordinates outside [0,1] are handled.
type Wrap int

const (
	WrapRepeat Wrap = iota
	WrapClamp
)

// Filter selects the sampling filter.
type Filter int

const (
	FilterNearest Filter = iota
	FilterBilinear
)

// Texture is a 2D RGBA image sampled by materials.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []Color // row-major, row 0 at the top
	WrapU  Wrap
	WrapV  Wrap
	Filter Filter
}

// NewTexture creates an empty texture with the given dimensions.
func NewTexture(name string, width, height int) *Texture {
	return &Texture{
		Name:   name,
		Width:  width,
		Height: height,
		Pixels: make([]Color, width*height),
	}
}

// LoadTexture loads a texture from a PNG or JPEG file.
func LoadTexture(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()
	return DecodeTexture(path, f)
}

// DecodeTexture decodes an encoded image into a texture.
func DecodeTexture(name string, r io.Reader) (*Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}
	return TextureFromImage(name, img), nil
}

// TextureFromImage copies an image into a new texture.
func TextureFromImage(name string, img image.Image) *Texture {
	b := img.Bounds()
	tex := NewTexture(name, b.Dx(), b.Dy())
	for y := range tex.Height {
		for x := range tex.Width {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			tex.Pixels[y*tex.Width+x] = Color{
				R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(bl >> 8), A: uint8(a >> 8),
			}
		}
	}
	return tex
}

// NewCheckerTexture creates a procedural checkerboard.
func NewCheckerTexture(name string, width, height, cell int, c1, c2 Color) *Texture {
	tex := NewTexture(name, width, height)
	for y := range height {
		for x := range width {
			if (x/cell+y/cell)%2 == 0 {
				tex.SetPixel(x, y, c1)
			} else {
				tex.SetPixel(x, y, c2)
			}
		}
	}
	return tex
}

// SetPixel sets a pixel; out-of-range coordinates are ignored.
func (t *Texture) SetPixel(x, y int, c Color) {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return
	}
	t.Pixels[y*t.Width+x] = c
}

// Pixel returns the pixel at (x, y), or transparent black when out of range.
func (t *Texture) Pixel(x, y int) Color {
	if x < 0 || x >= t.Width || y < 0 || y >= t.Height {
		return Color{}
	}
	return t.Pixels[y*t.Width+x]
}

// Sample samples the texture at UV coordinates. V=0 is the bottom row.
func (t *Texture) Sample(u, v float64) Color {
	if t.Width == 0 || t.Height == 0 {
		return Color{}
	}
	u = wrap(u, t.WrapU)
	v = 1 - wrap(v, t.WrapV)
	if t.Filter == FilterBilinear {
		return t.sampleBilinear(u, v)
	}
	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)
	return t.Pixel(x, y)
}

func (t *Texture) sampleBilinear(u, v float64) Color {
	fx := u*float64(t.Width) - 0.5
	fy := v*float64(t.Height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := fx - float64(x0)
	ty := fy - float64(y0)

	px := func(x, y int) Color {
		return t.Pixel(wrapPixel(x, t.Width, t.WrapU), wrapPixel(y, t.Height, t.WrapV))
	}
	top := LerpColor(px(x0, y0), px(x0+1, y0), tx)
	bot := LerpColor(px(x0, y0+1), px(x0+1, y0+1), tx)
	return LerpColor(top, bot, ty)
}

func wrap(c float64, mode Wrap) float64 {
	if mode == WrapClamp {
		return math.Max(0, math.Min(1, c))
	}
	return c - math.Floor(c)
}

func wrapPixel(x, size int, mode Wrap) int {
	if mode == WrapClamp {
		return max(0, min(size-1, x))
	}
	x %= size
	if x < 0 {
		x += size
	}
	return x
}
