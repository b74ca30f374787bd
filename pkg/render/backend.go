// Package render implements the frame pipeline: it flattens a scene's draw
// groups into a culled, back-to-front draw list and dispatches each drawable
// to a Backend with its material, camera and light state bound.
package render

import (
	"github.com/taigrr/arbor/pkg/gfx"
)

// CullMode selects which triangle faces are discarded.
type CullMode int

const (
	CullNone CullMode = iota
	CullBack
	CullFront
)

func (m CullMode) String() string {
	switch m {
	case CullNone:
		return "none"
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	}
	return "unknown"
}

// Backend is the graphics context the renderer drives. Calls are made from
// a single goroutine. Implementations record failures instead of returning
// them; Err reports and clears the first pending failure.
type Backend interface {
	Clear(c gfx.Color, depth bool)

	SetCullFace(mode CullMode)
	SetDepthTest(enabled bool)
	SetDepthWrite(enabled bool)
	SetColorMask(r, g, b, a bool)
	SetPointSize(size float64)
	SetLineWidth(width float64)
	SetBlend(enabled bool)
	SetBlendFunc(src, dst gfx.BlendFactor)

	// UseProgram activates a shader; nil restores the default program.
	UseProgram(s *gfx.Shader)
	SetUniform(name string, value any)
	BindTexture(unit int, tex *gfx.Texture)

	// DrawGeometry draws with the current state, indexed when the geometry
	// has indices.
	DrawGeometry(g *gfx.Geometry)

	Err() error
}

// applyDefaults puts the backend into the state expected between draws.
func applyDefaults(b Backend) {
	b.UseProgram(nil)
	b.SetCullFace(CullBack)
	b.SetDepthTest(true)
	b.SetDepthWrite(true)
	b.SetColorMask(true, true, true, true)
	b.SetBlend(false)
}
