package gfx

import "github.com/taigrr/arbor/pkg/math3d"

// NewCube returns a triangle cube of the given edge size centred on the
// origin, with per-face normals and UVs (24 vertices, 36 indices).
func NewCube(name string, size float64) *Geometry {
	h := size / 2
	faces := []struct {
		normal  math3d.Vec3
		corners [4]math3d.Vec3
	}{
		{math3d.V3(0, 0, 1), [4]math3d.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},
		{math3d.V3(0, 0, -1), [4]math3d.Vec3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}},
		{math3d.V3(1, 0, 0), [4]math3d.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}},
		{math3d.V3(-1, 0, 0), [4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}},
		{math3d.V3(0, 1, 0), [4]math3d.Vec3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},
		{math3d.V3(0, -1, 0), [4]math3d.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}},
	}
	uvs := [4]math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	g := NewGeometry(name, Triangles, nil, nil)
	for _, f := range faces {
		base := uint32(len(g.Positions))
		for i, c := range f.corners {
			g.Positions = append(g.Positions, c)
			g.Normals = append(g.Normals, f.normal)
			g.UVs = append(g.UVs, uvs[i])
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// NewPlane returns a width × depth quad on the XZ plane facing +Y.
func NewPlane(name string, width, depth float64) *Geometry {
	w, d := width/2, depth/2
	g := NewGeometry(name, Triangles, []math3d.Vec3{
		math3d.V3(-w, 0, d), math3d.V3(w, 0, d), math3d.V3(w, 0, -d), math3d.V3(-w, 0, -d),
	}, []uint32{0, 1, 2, 0, 2, 3})
	g.Normals = []math3d.Vec3{math3d.Up(), math3d.Up(), math3d.Up(), math3d.Up()}
	g.UVs = []math3d.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}
	return g
}

// NewGrid returns a line grid of the given size on the XZ plane, with a
// line every step units.
func NewGrid(name string, size, step float64) *Geometry {
	half := size / 2
	n := int(size/step + 1e-9)
	var pos []math3d.Vec3
	for i := 0; i <= n; i++ {
		c := -half + float64(i)*step
		pos = append(pos,
			math3d.V3(c, 0, -half), math3d.V3(c, 0, half),
			math3d.V3(-half, 0, c), math3d.V3(half, 0, c))
	}
	return NewGeometry(name, Lines, pos, nil)
}

// NewAxes returns three colored lines from the origin along +X (red),
// +Y (green) and +Z (blue).
func NewAxes(name string, length float64) *Geometry {
	o := math3d.Zero3()
	g := NewGeometry(name, Lines, []math3d.Vec3{
		o, math3d.V3(length, 0, 0),
		o, math3d.V3(0, length, 0),
		o, math3d.V3(0, 0, length),
	}, nil)
	red, green, blue := RGB(255, 0, 0), RGB(0, 255, 0), RGB(0, 0, 255)
	g.Colors = []Color{red, red, green, green, blue, blue}
	return g
}
