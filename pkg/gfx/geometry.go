// Package gfx defines the resources a draw node refers to: geometry,
// materials, shaders and textures, and the Drawable pairing them.
//
// Resources are plain values shared by pointer. Many draw nodes may reference
// the same geometry or material; nothing here owns backend objects.
package gfx

import (
	"github.com/taigrr/arbor/pkg/geom"
	"github.com/taigrr/arbor/pkg/math3d"
)

// Primitive is the topology used to assemble vertices.
type Primitive int

const (
	Triangles Primitive = iota
	Lines
	Points
)

func (p Primitive) String() string {
	switch p {
	case Triangles:
		return "triangles"
	case Lines:
		return "lines"
	case Points:
		return "points"
	}
	return "unknown"
}

// VertsPerElement returns how many indices make up one element.
func (p Primitive) VertsPerElement() int {
	switch p {
	case Lines:
		return 2
	case Points:
		return 1
	}
	return 3
}

// Geometry is a vertex/index set for a single primitive topology.
//
// Positions is required. Normals, UVs and Colors are optional and, when
// present, must have one entry per position. Indices may be empty for a
// non-indexed draw.
type Geometry struct {
	Name      string
	Primitive Primitive
	Positions []math3d.Vec3
	Normals   []math3d.Vec3
	UVs       []math3d.Vec2
	Colors    []Color
	Indices   []uint32

	bounds       geom.Box
	boundsCached bool
}

// NewGeometry creates a geometry from positions and optional indices.
func NewGeometry(name string, prim Primitive, positions []math3d.Vec3, indices []uint32) *Geometry {
	return &Geometry{
		Name:      name,
		Primitive: prim,
		Positions: positions,
		Indices:   indices,
	}
}

// Bounds returns the object-space bounding box of the positions, or the
// invalid box when there are none. The box is cached until Invalidate.
func (g *Geometry) Bounds() geom.Box {
	if !g.boundsCached {
		g.bounds = geom.BoxFromPoints(g.Positions...)
		g.boundsCached = true
	}
	return g.bounds
}

// Invalidate marks cached data stale after Positions was modified in place.
func (g *Geometry) Invalidate() {
	g.boundsCached = false
}

// Indexed reports whether the geometry draws through an index list.
func (g *Geometry) Indexed() bool {
	return len(g.Indices) > 0
}

// VertexCount returns the number of vertices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions)
}

// ElementCount returns the number of indices, or vertices if not indexed.
func (g *Geometry) ElementCount() int {
	if g.Indexed() {
		return len(g.Indices)
	}
	return len(g.Positions)
}

// PrimitiveCount returns the number of points, lines or triangles drawn.
func (g *Geometry) PrimitiveCount() int {
	return g.ElementCount() / g.Primitive.VertsPerElement()
}

// Element returns the vertex index used at element position i.
func (g *Geometry) Element(i int) int {
	if g.Indexed() {
		return int(g.Indices[i])
	}
	return i
}

// CalculateNormals computes face normals and assigns them to vertices.
// This is a flat-shading approach; shared vertices keep the normal of the
// last face that references them. Only triangle geometry is affected.
func (g *Geometry) CalculateNormals() {
	if g.Primitive != Triangles {
		return
	}
	g.Normals = make([]math3d.Vec3, len(g.Positions))
	for i := 0; i+2 < g.ElementCount(); i += 3 {
		a, b, c := g.Element(i), g.Element(i+1), g.Element(i+2)
		normal := g.faceNormal(a, b, c).Normalize()
		g.Normals[a] = normal
		g.Normals[b] = normal
		g.Normals[c] = normal
	}
}

// CalculateSmoothNormals computes area-weighted averaged normals.
func (g *Geometry) CalculateSmoothNormals() {
	if g.Primitive != Triangles {
		return
	}
	g.Normals = make([]math3d.Vec3, len(g.Positions))
	for i := 0; i+2 < g.ElementCount(); i += 3 {
		a, b, c := g.Element(i), g.Element(i+1), g.Element(i+2)
		normal := g.faceNormal(a, b, c) // not normalized: weights by area
		g.Normals[a] = g.Normals[a].Add(normal)
		g.Normals[b] = g.Normals[b].Add(normal)
		g.Normals[c] = g.Normals[c].Add(normal)
	}
	for i := range g.Normals {
		g.Normals[i] = g.Normals[i].Normalize()
	}
}

func (g *Geometry) faceNormal(a, b, c int) math3d.Vec3 {
	v0, v1, v2 := g.Positions[a], g.Positions[b], g.Positions[c]
	return v1.Sub(v0).Cross(v2.Sub(v0))
}

// HasNormals reports whether any vertex carries a non-zero normal.
func (g *Geometry) HasNormals() bool {
	for _, n := range g.Normals {
		if n.LenSq() > 1e-6 {
			return true
		}
	}
	return false
}

// Transform applies a transformation matrix to all vertices in place.
// Normals are transformed with the normal matrix.
func (g *Geometry) Transform(m math3d.Mat4) {
	nm := m.NormalMatrix()
	for i := range g.Positions {
		g.Positions[i] = m.MulVec3(g.Positions[i])
	}
	for i := range g.Normals {
		g.Normals[i] = nm.MulVec3(g.Normals[i]).Normalize()
	}
	g.Invalidate()
}
