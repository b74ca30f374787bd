package gfx

// Drawable pairs a geometry with the material it is drawn with.
//
// PreDraw runs after the material state has been bound; returning false
// skips the draw call. PostDraw always runs afterwards.
type Drawable interface {
	Geometry() *Geometry
	Material() *Material
	PreDraw() bool
	PostDraw()
}

// Mesh is the stock Drawable. The hooks are optional.
type Mesh struct {
	Geom *Geometry
	Mat  *Material

	OnPreDraw  func() bool
	OnPostDraw func()
}

var _ Drawable = (*Mesh)(nil)

// NewMesh creates a drawable from a geometry and a material.
func NewMesh(g *Geometry, m *Material) *Mesh {
	return &Mesh{Geom: g, Mat: m}
}

// Geometry returns nil for a nil mesh, so a nil *Mesh draws nothing.
func (m *Mesh) Geometry() *Geometry {
	if m == nil {
		return nil
	}
	return m.Geom
}

func (m *Mesh) Material() *Material {
	if m == nil {
		return nil
	}
	return m.Mat
}

func (m *Mesh) PreDraw() bool {
	if m == nil || m.OnPreDraw == nil {
		return true
	}
	return m.OnPreDraw()
}

func (m *Mesh) PostDraw() {
	if m != nil && m.OnPostDraw != nil {
		m.OnPostDraw()
	}
}
