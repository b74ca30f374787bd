package render

import (
	"github.com/taigrr/arbor/pkg/geom"
	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
)

// BoundsShader draws the bounding box overlay. Backends select it by name.
var BoundsShader = gfx.NewShader("unlit", 1,
	gfx.UniformModelViewProjection, gfx.UniformModel, gfx.ParamColor)

// boundsMesh returns the unit-cube line list scaled onto each drawn box.
func (r *Renderer) boundsMesh() *gfx.Mesh {
	if r.boxes != nil {
		return r.boxes
	}
	g := gfx.NewGeometry("bounds", gfx.Lines, []math3d.Vec3{
		{X: 0, Y: 0, Z: 0}, {X: 0, Y: 1, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 1, Y: 0, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 1, Y: 0, Z: 1},
	}, []uint32{
		0, 1, 1, 2, 2, 3, 3, 0,
		4, 5, 5, 6, 6, 7, 7, 4,
		0, 4, 1, 5, 2, 6, 3, 7,
	})
	m := gfx.NewMaterial("bounds", BoundsShader)
	m.TwoSided = true
	m.SetParam(gfx.ParamColor, math3d.V4(0, 1, 0, 1))
	r.boxes = gfx.NewMesh(g, m)
	return r.boxes
}

func (r *Renderer) drawBox(fc *frameContext, box geom.Box) {
	mesh := r.boundsMesh()
	model := math3d.Translate(box.Min).Mul(math3d.Scale(box.Size()))
	r.bindMaterial(fc, mesh.Mat, model)
	r.backend.DrawGeometry(mesh.Geom)
	r.checkBackend(fc, "bounds")
	r.backend.UseProgram(nil)
}
