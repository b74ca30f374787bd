package raster

import (
	"github.com/taigrr/arbor/pkg/gfx"
)

// rgba is a color with float channels in 0-1, used between the vertex and
// fragment stages.
type rgba struct {
	r, g, b, a float64
}

var white = rgba{1, 1, 1, 1}

func fromColor(c gfx.Color) rgba {
	return rgba{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255}
}

func (c rgba) add(o rgba) rgba      { return rgba{c.r + o.r, c.g + o.g, c.b + o.b, c.a + o.a} }
func (c rgba) mul(o rgba) rgba      { return rgba{c.r * o.r, c.g * o.g, c.b * o.b, c.a * o.a} }
func (c rgba) scale(s float64) rgba { return rgba{c.r * s, c.g * s, c.b * s, c.a * s} }

func (c rgba) color() gfx.Color {
	return gfx.Color{R: unit8(c.r), G: unit8(c.g), B: unit8(c.b), A: unit8(c.a)}
}

func unit8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}

// factor returns the per-channel multiplier of a blend factor.
func factor(f gfx.BlendFactor, src, dst rgba) rgba {
	switch f {
	case gfx.BlendZero:
		return rgba{}
	case gfx.BlendOne:
		return white
	case gfx.BlendSrcAlpha:
		return rgba{src.a, src.a, src.a, src.a}
	case gfx.BlendOneMinusSrcAlpha:
		a := 1 - src.a
		return rgba{a, a, a, a}
	case gfx.BlendDstAlpha:
		return rgba{dst.a, dst.a, dst.a, dst.a}
	case gfx.BlendOneMinusDstAlpha:
		a := 1 - dst.a
		return rgba{a, a, a, a}
	case gfx.BlendSrcColor:
		return src
	case gfx.BlendOneMinusSrcColor:
		return rgba{1 - src.r, 1 - src.g, 1 - src.b, 1 - src.a}
	}
	return white
}

// masked combines src into dst honoring the color mask.
func (b *Backend) masked(dst, src gfx.Color) gfx.Color {
	m := b.st.mask
	if m[0] {
		dst.R = src.R
	}
	if m[1] {
		dst.G = src.G
	}
	if m[2] {
		dst.B = src.B
	}
	if m[3] {
		dst.A = src.A
	}
	return dst
}
