package gfx

import (
	"math"
	"testing"

	"github.com/taigrr/arbor/pkg/math3d"
)

func TestGeometryBounds(t *testing.T) {
	g := NewGeometry("tri", Triangles, []math3d.Vec3{
		math3d.V3(-1, 0, 0), math3d.V3(2, 3, 0), math3d.V3(0, -1, 4),
	}, nil)

	b := g.Bounds()
	if !b.Min.ApproxEqual(math3d.V3(-1, -1, 0), 1e-12) || !b.Max.ApproxEqual(math3d.V3(2, 3, 4), 1e-12) {
		t.Errorf("Bounds() = %v..%v", b.Min, b.Max)
	}

	g.Positions[0] = math3d.V3(-5, 0, 0)
	if got := g.Bounds().Min.X; got != -1 {
		t.Errorf("Bounds() recomputed without Invalidate: min.x = %f", got)
	}
	g.Invalidate()
	if got := g.Bounds().Min.X; got != -5 {
		t.Errorf("after Invalidate min.x = %f, want -5", got)
	}
}

func TestGeometryEmptyBoundsInvalid(t *testing.T) {
	g := &Geometry{Name: "empty"}
	if g.Bounds().Valid() {
		t.Error("geometry without positions should have an invalid box")
	}
}

func TestGeometryCounts(t *testing.T) {
	tests := []struct {
		name       string
		geom       *Geometry
		elements   int
		primitives int
	}{
		{"cube", NewCube("cube", 1), 36, 12},
		{"plane", NewPlane("plane", 2, 2), 6, 2},
		{"points", NewGeometry("pts", Points, make([]math3d.Vec3, 5), nil), 5, 5},
		{"lines indexed", NewGeometry("ln", Lines, make([]math3d.Vec3, 3), []uint32{0, 1, 1, 2}), 4, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.geom.ElementCount(); got != tt.elements {
				t.Errorf("ElementCount() = %d, want %d", got, tt.elements)
			}
			if got := tt.geom.PrimitiveCount(); got != tt.primitives {
				t.Errorf("PrimitiveCount() = %d, want %d", got, tt.primitives)
			}
		})
	}
}

func TestCubeBounds(t *testing.T) {
	b := NewCube("cube", 2).Bounds()
	if !b.Min.ApproxEqual(math3d.V3(-1, -1, -1), 1e-12) || !b.Max.ApproxEqual(math3d.V3(1, 1, 1), 1e-12) {
		t.Errorf("cube bounds = %v..%v", b.Min, b.Max)
	}
}

func TestCubeWindingMatchesNormals(t *testing.T) {
	g := NewCube("cube", 1)
	for i := 0; i < len(g.Indices); i += 3 {
		a, b, c := g.Indices[i], g.Indices[i+1], g.Indices[i+2]
		face := g.Positions[b].Sub(g.Positions[a]).Cross(g.Positions[c].Sub(g.Positions[a]))
		if face.Dot(g.Normals[a]) <= 0 {
			t.Fatalf("triangle %d winds against its normal", i/3)
		}
	}
}

func TestCalculateNormals(t *testing.T) {
	g := NewGeometry("quad", Triangles, []math3d.Vec3{
		math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(1, 1, 0), math3d.V3(0, 1, 0),
	}, []uint32{0, 1, 2, 0, 2, 3})
	g.CalculateNormals()
	for i, n := range g.Normals {
		if !n.ApproxEqual(math3d.V3(0, 0, 1), 1e-12) {
			t.Errorf("normal %d = %v, want +Z", i, n)
		}
	}
	if !g.HasNormals() {
		t.Error("HasNormals() = false after CalculateNormals")
	}
}

func TestCalculateSmoothNormals(t *testing.T) {
	// Two faces meeting at a right angle along the shared edge 0-1.
	g := NewGeometry("fold", Triangles, []math3d.Vec3{
		math3d.V3(0, 0, 0), math3d.V3(1, 0, 0), math3d.V3(0, 1, 0), math3d.V3(0, 0, -1),
	}, []uint32{0, 1, 2, 0, 1, 3})
	g.CalculateSmoothNormals()

	want := math3d.V3(0, 1, 1).Normalize()
	if !g.Normals[0].ApproxEqual(want, 1e-9) {
		t.Errorf("shared vertex normal = %v, want %v", g.Normals[0], want)
	}
	if !g.Normals[2].ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
		t.Errorf("unshared vertex normal = %v, want +Z", g.Normals[2])
	}
}

func TestGeometryTransform(t *testing.T) {
	g := NewPlane("plane", 2, 2)
	_ = g.Bounds()
	g.Transform(math3d.Translate(math3d.V3(0, 5, 0)).Mul(math3d.RotateX(math.Pi / 2)))

	b := g.Bounds()
	if math.Abs(b.Min.Y-4) > 1e-9 || math.Abs(b.Max.Y-6) > 1e-9 {
		t.Errorf("transformed bounds y = [%f, %f], want [4, 6]", b.Min.Y, b.Max.Y)
	}
	if !g.Normals[0].ApproxEqual(math3d.V3(0, 0, 1), 1e-9) {
		t.Errorf("rotated normal = %v, want +Z", g.Normals[0])
	}
}

func TestGridAndAxes(t *testing.T) {
	grid := NewGrid("grid", 4, 1)
	if grid.Primitive != Lines || grid.PrimitiveCount() != 10 {
		t.Errorf("grid: %v with %d lines, want 10 lines", grid.Primitive, grid.PrimitiveCount())
	}
	b := grid.Bounds()
	if !b.Min.ApproxEqual(math3d.V3(-2, 0, -2), 1e-9) || !b.Max.ApproxEqual(math3d.V3(2, 0, 2), 1e-9) {
		t.Errorf("grid bounds = %v", b)
	}

	axes := NewAxes("axes", 2)
	if axes.PrimitiveCount() != 3 || len(axes.Colors) != axes.VertexCount() {
		t.Errorf("axes: %d lines, %d colors", axes.PrimitiveCount(), len(axes.Colors))
	}
}

func BenchmarkCalculateSmoothNormals(b *testing.B) {
	g := NewCube("cube", 1)
	for b.Loop() {
		g.CalculateSmoothNormals()
	}
}
