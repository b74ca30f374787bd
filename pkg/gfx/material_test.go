package gfx

import (
	"testing"
)

func TestMaterialDefaults(t *testing.T) {
	m := NewMaterial("test", nil)
	if !m.DepthTest || !m.DepthWrite || !m.ColorWrite {
		t.Errorf("depth test/write and color write should default on: %+v", m)
	}
	if m.Blend || m.TwoSided {
		t.Error("blend and two-sided should default off")
	}
	if m.PointSize != 0 || m.LineWidth != 0 {
		t.Error("point size and line width should default to unset")
	}
	if m.BlendSrc != BlendSrcAlpha || m.BlendDst != BlendOneMinusSrcAlpha {
		t.Errorf("blend func = %v/%v", m.BlendSrc, m.BlendDst)
	}
}

func TestMaterialParamsSorted(t *testing.T) {
	m := NewMaterial("test", nil)
	m.SetParam("shininess", 8.0)
	m.SetParam("color", ColorToVec4(RGB(255, 0, 0)))
	m.SetParam("alpha", 0.5)
	m.SetParam("alpha", 0.25)

	params := m.Params()
	want := []string{"alpha", "color", "shininess"}
	if len(params) != len(want) {
		t.Fatalf("got %d params, want %d", len(params), len(want))
	}
	for i, p := range params {
		if p.Name != want[i] {
			t.Errorf("param %d = %q, want %q", i, p.Name, want[i])
		}
	}
	if v, _ := m.Param("alpha"); v != 0.25 {
		t.Errorf("alpha = %v, want overwritten value 0.25", v)
	}
}

func TestMaterialTextures(t *testing.T) {
	var zero Material
	diffuse := NewTexture("d", 1, 1)
	normal := NewTexture("n", 1, 1)

	zero.SetTexture("normalMap", normal)
	zero.SetTexture("diffuseMap", diffuse)

	got := zero.Textures()
	if len(got) != 2 || got[0].Sampler != "diffuseMap" || got[1].Sampler != "normalMap" {
		t.Fatalf("Textures() = %+v", got)
	}

	zero.SetTexture("diffuseMap", nil)
	if got := zero.Textures(); len(got) != 1 || got[0].Texture != normal {
		t.Errorf("after removal Textures() = %+v", got)
	}
}

func TestShaderDeclares(t *testing.T) {
	s := NewShader("flat", 3, UniformModelViewProjection, "color")
	if !s.Declares("color") || s.Declares(UniformView) {
		t.Error("Declares() reported the wrong slots")
	}
	s.DeclareLights(2)
	if !s.Declares(LightUniform(1, LightConeAngle)) || s.Declares(LightUniform(2, LightPosition)) {
		t.Error("DeclareLights(2) declared the wrong light slots")
	}
	if !s.Declares(UniformLightCount) {
		t.Error("DeclareLights should declare the light count")
	}
	if got := LightUniform(2, LightPosition); got != "lights[2].position" {
		t.Errorf("LightUniform = %q", got)
	}

	var missing *Shader
	if missing.Compiled() || NewShader("raw", 0).Compiled() {
		t.Error("nil shader and program 0 must not be compiled")
	}
}

func TestMeshHooks(t *testing.T) {
	m := NewMesh(nil, nil)
	if !m.PreDraw() {
		t.Error("PreDraw without a hook should allow the draw")
	}
	m.PostDraw()

	calls := 0
	m.OnPreDraw = func() bool { calls++; return false }
	m.OnPostDraw = func() { calls++ }
	if m.PreDraw() {
		t.Error("PreDraw hook veto ignored")
	}
	m.PostDraw()
	if calls != 2 {
		t.Errorf("hooks called %d times, want 2", calls)
	}
}
