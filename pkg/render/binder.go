package render

import (
	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/scene"
)

// MaxLights is the number of light slots a shader can receive.
const MaxLights = 8

// bindMaterial activates a material's shader and state, then fills every
// uniform slot the shader declares: camera matrices, lights, material
// parameters and texture samplers.
func (r *Renderer) bindMaterial(fc *frameContext, mat *gfx.Material, model math3d.Mat4) {
	b := r.backend
	sh := mat.Shader

	b.UseProgram(sh)

	if mat.TwoSided {
		b.SetCullFace(CullNone)
	} else {
		b.SetCullFace(CullBack)
	}
	b.SetDepthTest(mat.DepthTest)
	b.SetDepthWrite(mat.DepthWrite)
	cw := mat.ColorWrite
	b.SetColorMask(cw, cw, cw, cw)
	if mat.PointSize > 0 {
		b.SetPointSize(mat.PointSize)
	}
	if mat.LineWidth > 0 {
		b.SetLineWidth(mat.LineWidth)
	}
	if mat.Blend {
		b.SetBlend(true)
		b.SetBlendFunc(mat.BlendSrc, mat.BlendDst)
	} else {
		b.SetBlend(false)
	}

	r.bindCamera(sh, fc.view, model)
	r.bindLights(fc, sh)

	for _, p := range mat.Params() {
		r.set(sh, p.Name, p.Value)
	}
	for unit, t := range mat.Textures() {
		b.BindTexture(unit, t.Texture)
		r.set(sh, t.Sampler, unit)
	}
}

func (r *Renderer) bindCamera(sh *gfx.Shader, v scene.View, model math3d.Mat4) {
	r.set(sh, gfx.UniformProjection, v.Projection)
	r.set(sh, gfx.UniformView, v.View)
	r.set(sh, gfx.UniformViewInverse, v.ViewInverse)
	r.set(sh, gfx.UniformModel, model)
	if sh.Declares(gfx.UniformModelView) {
		r.backend.SetUniform(gfx.UniformModelView, v.View.Mul(model))
	}
	if sh.Declares(gfx.UniformModelViewProjection) {
		r.backend.SetUniform(gfx.UniformModelViewProjection, v.ViewProjection.Mul(model))
	}
	if sh.Declares(gfx.UniformNormalMatrix) {
		r.backend.SetUniform(gfx.UniformNormalMatrix, model.NormalMatrix())
	}
}

func (r *Renderer) bindLights(fc *frameContext, sh *gfx.Shader) {
	lights := fc.lights
	if len(lights) > MaxLights {
		if !fc.lightsWarned {
			r.log.Warn("too many lights, extra lights ignored",
				zap.Int("lights", len(lights)),
				zap.Int("max", MaxLights))
			fc.lightsWarned = true
		}
		lights = lights[:MaxLights]
	}
	for i, l := range lights {
		r.set(sh, gfx.LightUniform(i, gfx.LightDirectional), l.Light.Kind == scene.Directional)
		r.set(sh, gfx.LightUniform(i, gfx.LightDirection), l.Direction)
		r.set(sh, gfx.LightUniform(i, gfx.LightPosition), l.Position)
		r.set(sh, gfx.LightUniform(i, gfx.LightAmbient), l.Light.Ambient)
		r.set(sh, gfx.LightUniform(i, gfx.LightDiffuse), l.Light.Color)
		r.set(sh, gfx.LightUniform(i, gfx.LightAttenuation), l.Light.Attenuation)
		r.set(sh, gfx.LightUniform(i, gfx.LightConeAngle), l.Light.ConeAngle)
	}
	r.set(sh, gfx.UniformLightCount, len(lights))
	fc.frame.Stats.Lights = len(lights)
}

// set writes a uniform only if the shader declares the slot.
func (r *Renderer) set(sh *gfx.Shader, name string, value any) {
	if sh.Declares(name) {
		r.backend.SetUniform(name, value)
	}
}
