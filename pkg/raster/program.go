package raster

import (
	"fmt"
	"math"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/render"
)

// program is a built-in shading model.
type program struct {
	id       uint32
	name     string
	lit      bool // evaluates lights
	smooth   bool // uses vertex normals instead of the face normal
	textured bool // modulates by the diffuse texture
}

// Program names understood by the backend.
const (
	ProgramUnlit    = "unlit"
	ProgramFlat     = "flat"
	ProgramGouraud  = "gouraud"
	ProgramTextured = "textured"
)

var programs = map[string]*program{
	ProgramUnlit:    {id: 1, name: ProgramUnlit},
	ProgramFlat:     {id: 2, name: ProgramFlat, lit: true},
	ProgramGouraud:  {id: 3, name: ProgramGouraud, lit: true, smooth: true},
	ProgramTextured: {id: 4, name: ProgramTextured, lit: true, smooth: true, textured: true},
}

// NewShader returns a compiled shader for a built-in program, declaring
// every uniform slot the program reads.
func NewShader(name string) (*gfx.Shader, error) {
	p, ok := programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	s := gfx.NewShader(p.name, p.id,
		gfx.UniformModelViewProjection, gfx.UniformModel, gfx.UniformNormalMatrix, gfx.ParamColor)
	if p.lit {
		s.DeclareLights(render.MaxLights)
	}
	if p.textured {
		s.Declare(gfx.SamplerDiffuse)
	}
	return s, nil
}

// light is one light as read back from the uniform slots.
type light struct {
	directional bool
	direction   math3d.Vec3
	position    math3d.Vec3
	ambient     float64
	color       math3d.Vec3
	attenuation math3d.Vec3
	cone        float64
}

// uniforms is the resolved input of one draw call.
type uniforms struct {
	mvp    math3d.Mat4
	model  math3d.Mat4
	normal math3d.Mat3
	color  rgba
	lights []light
	tex    *gfx.Texture
}

func lookup[T any](m map[string]any, name string) (T, bool) {
	v, ok := m[name].(T)
	return v, ok
}

func (b *Backend) readUniforms() (*uniforms, error) {
	m := b.uniforms
	mvp, ok := lookup[math3d.Mat4](m, gfx.UniformModelViewProjection)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingUniform, gfx.UniformModelViewProjection)
	}
	u := &uniforms{mvp: mvp, model: math3d.Identity(), color: white}
	if model, ok := lookup[math3d.Mat4](m, gfx.UniformModel); ok {
		u.model = model
	}
	if nm, ok := lookup[math3d.Mat3](m, gfx.UniformNormalMatrix); ok {
		u.normal = nm
	} else {
		u.normal = u.model.NormalMatrix()
	}

	switch c := m[gfx.ParamColor].(type) {
	case math3d.Vec4:
		u.color = rgba{c.X, c.Y, c.Z, c.W}
	case math3d.Vec3:
		u.color = rgba{c.X, c.Y, c.Z, 1}
	case gfx.Color:
		u.color = fromColor(c)
	}

	if b.prog.lit {
		n, _ := lookup[int](m, gfx.UniformLightCount)
		for i := range min(n, render.MaxLights) {
			u.lights = append(u.lights, readLight(m, i))
		}
	}
	if b.prog.textured {
		if unit, ok := lookup[int](m, gfx.SamplerDiffuse); ok && unit >= 0 && unit < MaxTextureUnits {
			u.tex = b.units[unit]
		}
	}
	return u, nil
}

func readLight(m map[string]any, i int) light {
	l := light{
		color:       math3d.One3(),
		attenuation: math3d.V3(1, 0, 0),
		cone:        math.Pi,
	}
	field := func(f string) string { return gfx.LightUniform(i, f) }
	if v, ok := lookup[bool](m, field(gfx.LightDirectional)); ok {
		l.directional = v
	}
	if v, ok := lookup[math3d.Vec3](m, field(gfx.LightDirection)); ok {
		l.direction = v.Normalize()
	}
	if v, ok := lookup[math3d.Vec3](m, field(gfx.LightPosition)); ok {
		l.position = v
	}
	if v, ok := lookup[float64](m, field(gfx.LightAmbient)); ok {
		l.ambient = v
	}
	if v, ok := lookup[math3d.Vec3](m, field(gfx.LightDiffuse)); ok {
		l.color = v
	}
	if v, ok := lookup[math3d.Vec3](m, field(gfx.LightAttenuation)); ok {
		l.attenuation = v
	}
	if v, ok := lookup[float64](m, field(gfx.LightConeAngle)); ok {
		l.cone = v
	}
	return l
}

// shade lights a surface point. Without lights, or without a usable normal,
// the base color is returned unchanged.
func (u *uniforms) shade(base rgba, pos, normal math3d.Vec3) rgba {
	if len(u.lights) == 0 || normal.LenSq() < 1e-18 {
		return base
	}
	normal = normal.Normalize()
	var sum math3d.Vec3
	for _, l := range u.lights {
		toLight := l.direction.Negate()
		atten := 1.0
		if !l.directional {
			d := l.position.Sub(pos)
			dist := d.Len()
			if dist > 1e-12 {
				toLight = d.Scale(1 / dist)
			}
			if k := l.attenuation.X + l.attenuation.Y*dist + l.attenuation.Z*dist*dist; k > 0 {
				atten = 1 / k
			}
			if l.cone < math.Pi && toLight.Negate().Dot(l.direction) < math.Cos(l.cone) {
				atten = 0
			}
		}
		diffuse := math.Max(0, normal.Dot(toLight)) * atten
		sum = sum.Add(l.color.Scale(l.ambient + diffuse))
	}
	return rgba{base.r * sum.X, base.g * sum.Y, base.b * sum.Z, base.a}
}
