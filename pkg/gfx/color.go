package gfx

import (
	"image/color"
	"math"

	"github.com/taigrr/arbor/pkg/math3d"
)

// Color is an 8-bit RGBA color.
type Color = color.RGBA

// RGB creates an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// RGBA creates a color with alpha.
func RGBA(r, g, b, a uint8) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ColorFromVec4 converts a 0-1 float RGBA vector to a Color, clamping each
// channel.
func ColorFromVec4(v math3d.Vec4) Color {
	return Color{R: unit8(v.X), G: unit8(v.Y), B: unit8(v.Z), A: unit8(v.W)}
}

// ColorToVec4 converts a Color to a 0-1 float RGBA vector.
func ColorToVec4(c Color) math3d.Vec4 {
	return math3d.V4(float64(c.R)/255, float64(c.G)/255, float64(c.B)/255, float64(c.A)/255)
}

// LerpColor linearly interpolates between two colors.
func LerpColor(a, b Color, t float64) Color {
	return Color{
		R: uint8(float64(a.R) + (float64(b.R)-float64(a.R))*t),
		G: uint8(float64(a.G) + (float64(b.G)-float64(a.G))*t),
		B: uint8(float64(a.B) + (float64(b.B)-float64(a.B))*t),
		A: uint8(float64(a.A) + (float64(b.A)-float64(a.A))*t),
	}
}

// ScaleColor multiplies the RGB channels by intensity, saturating at 255.
func ScaleColor(c Color, intensity float64) Color {
	return Color{
		R: uint8(math.Min(255, math.Max(0, float64(c.R)*intensity))),
		G: uint8(math.Min(255, math.Max(0, float64(c.G)*intensity))),
		B: uint8(math.Min(255, math.Max(0, float64(c.B)*intensity))),
		A: c.A,
	}
}

// ModulateColor multiplies two colors channel by channel.
func ModulateColor(a, b Color) Color {
	return Color{
		R: uint8((int(a.R) * int(b.R)) / 255),
		G: uint8((int(a.G) * int(b.G)) / 255),
		B: uint8((int(a.B) * int(b.B)) / 255),
		A: uint8((int(a.A) * int(b.A)) / 255),
	}
}

func unit8(f float64) uint8 {
	return uint8(math.Round(math.Min(1, math.Max(0, f)) * 255))
}
