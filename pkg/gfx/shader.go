package gfx

import (
	"fmt"
	"slices"
)

// Standard uniform slots filled by the renderer when a shader declares them.
const (
	UniformProjection          = "projection"
	UniformView                = "view"
	UniformViewInverse         = "viewInverse"
	UniformModel               = "model"
	UniformModelView           = "modelView"
	UniformModelViewProjection = "modelViewProjection"
	UniformNormalMatrix        = "normalMatrix"
	UniformLightCount          = "lightCount"
)

// Per-light uniform fields. See LightUniform.
const (
	LightDirectional = "directional"
	LightDirection   = "direction"
	LightPosition    = "position"
	LightAmbient     = "ambient"
	LightDiffuse     = "diffuse"
	LightAttenuation = "attenuation"
	LightConeAngle   = "coneAngle"
)

// Conventional material parameter and sampler names shared by importers and
// backends.
const (
	ParamColor     = "color"      // math3d.Vec4 base color
	SamplerDiffuse = "diffuseMap" // base color texture
)

// LightUniform returns the slot name of a field of light i, e.g.
// "lights[2].position".
func LightUniform(i int, field string) string {
	return fmt.Sprintf("lights[%d].%s", i, field)
}

// Shader is a compiled program handle and the uniform slots it declares.
//
// Program 0 means the shader has not been compiled (or failed to compile);
// drawables using it are skipped. A slot that is not declared is simply not
// written.
type Shader struct {
	Name    string
	Program uint32

	uniforms map[string]struct{}
}

// NewShader creates a shader declaring the given uniform slots.
func NewShader(name string, program uint32, uniforms ...string) *Shader {
	s := &Shader{Name: name, Program: program}
	s.Declare(uniforms...)
	return s
}

// Declare adds uniform slots to the shader.
func (s *Shader) Declare(uniforms ...string) {
	if s.uniforms == nil {
		s.uniforms = make(map[string]struct{}, len(uniforms))
	}
	for _, u := range uniforms {
		s.uniforms[u] = struct{}{}
	}
}

// DeclareLights declares every per-light field for lights 0..n-1 plus the
// light count slot.
func (s *Shader) DeclareLights(n int) {
	fields := []string{
		LightDirectional, LightDirection, LightPosition, LightAmbient,
		LightDiffuse, LightAttenuation, LightConeAngle,
	}
	for i := range n {
		for _, f := range fields {
			s.Declare(LightUniform(i, f))
		}
	}
	s.Declare(UniformLightCount)
}

// Declares reports whether the shader has a slot with the given name.
func (s *Shader) Declares(uniform string) bool {
	_, ok := s.uniforms[uniform]
	return ok
}

// Uniforms returns the declared slot names in sorted order.
func (s *Shader) Uniforms() []string {
	names := make([]string, 0, len(s.uniforms))
	for u := range s.uniforms {
		names = append(names, u)
	}
	slices.Sort(names)
	return names
}

// Compiled reports whether the shader has a usable program.
func (s *Shader) Compiled() bool {
	return s != nil && s.Program != 0
}
