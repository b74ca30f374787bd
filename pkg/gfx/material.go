package gfx

import (
	"maps"
	"slices"
)

// BlendFactor is a source or destination factor of the blend equation.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
	BlendDstAlpha
	BlendOneMinusDstAlpha
	BlendSrcColor
	BlendOneMinusSrcColor
)

func (f BlendFactor) String() string {
	switch f {
	case BlendZero:
		return "zero"
	case BlendOne:
		return "one"
	case BlendSrcAlpha:
		return "src-alpha"
	case BlendOneMinusSrcAlpha:
		return "one-minus-src-alpha"
	case BlendDstAlpha:
		return "dst-alpha"
	case BlendOneMinusDstAlpha:
		return "one-minus-dst-alpha"
	case BlendSrcColor:
		return "src-color"
	case BlendOneMinusSrcColor:
		return "one-minus-src-color"
	}
	return "unknown"
}

// Material holds the fixed render state and shader parameters of a draw.
//
// PointSize and LineWidth of 0 mean "unset": the backend default is left in
// place.
type Material struct {
	Name   string
	Shader *Shader

	TwoSided   bool
	DepthTest  bool
	DepthWrite bool
	ColorWrite bool
	PointSize  float64
	LineWidth  float64

	Blend    bool
	BlendSrc BlendFactor
	BlendDst BlendFactor

	params   map[string]any
	textures map[string]*Texture
}

// Param is a named shader parameter value.
type Param struct {
	Name  string
	Value any
}

// TextureBinding pairs a sampler slot with the texture bound to it.
type TextureBinding struct {
	Sampler string
	Texture *Texture
}

// NewMaterial creates a material with depth test, depth write and color
// write enabled and standard alpha blend factors.
func NewMaterial(name string, shader *Shader) *Material {
	return &Material{
		Name:       name,
		Shader:     shader,
		DepthTest:  true,
		DepthWrite: true,
		ColorWrite: true,
		BlendSrc:   BlendSrcAlpha,
		BlendDst:   BlendOneMinusSrcAlpha,
		params:     make(map[string]any),
		textures:   make(map[string]*Texture),
	}
}

// SetParam sets a named uniform value. Values are passed through to the
// backend unchanged.
func (m *Material) SetParam(name string, value any) {
	if m.params == nil {
		m.params = make(map[string]any)
	}
	m.params[name] = value
}

// Param returns the value of a named uniform.
func (m *Material) Param(name string) (any, bool) {
	v, ok := m.params[name]
	return v, ok
}

// Params returns every parameter sorted by name.
func (m *Material) Params() []Param {
	out := make([]Param, 0, len(m.params))
	for _, name := range slices.Sorted(maps.Keys(m.params)) {
		out = append(out, Param{Name: name, Value: m.params[name]})
	}
	return out
}

// SetTexture binds a texture to a sampler slot. A nil texture removes the
// binding.
func (m *Material) SetTexture(sampler string, tex *Texture) {
	if tex == nil {
		delete(m.textures, sampler)
		return
	}
	if m.textures == nil {
		m.textures = make(map[string]*Texture)
	}
	m.textures[sampler] = tex
}

// Textures returns every texture binding sorted by sampler name; the index
// of a binding is the texture unit it is assigned to.
func (m *Material) Textures() []TextureBinding {
	out := make([]TextureBinding, 0, len(m.textures))
	for _, s := range slices.Sorted(maps.Keys(m.textures)) {
		out = append(out, TextureBinding{Sampler: s, Texture: m.textures[s]})
	}
	return out
}

// SetBlendFunc enables blending with the given factors.
func (m *Material) SetBlendFunc(src, dst BlendFactor) {
	m.Blend = true
	m.BlendSrc = src
	m.BlendDst = dst
}
