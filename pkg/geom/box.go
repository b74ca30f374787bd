// Package geom provides the bounding volumes and the view frustum used to
// cull scene nodes.
package geom

import (
	"math"

	"github.com/taigrr/arbor/pkg/math3d"
)

// Box is an axis-aligned bounding box.
//
// The zero Box is a valid degenerate box at the origin. A box with no volume
// at all (nothing to bound) is represented by Empty, whose Min is +Inf and
// Max is -Inf; Valid reports false for it.
type Box struct {
	Min math3d.Vec3
	Max math3d.Vec3
}

// Empty returns the invalid box. It is the identity for Union.
func Empty() Box {
	inf := math.Inf(1)
	return Box{
		Min: math3d.V3(inf, inf, inf),
		Max: math3d.V3(-inf, -inf, -inf),
	}
}

// NewBox creates a box from min and max points.
func NewBox(min, max math3d.Vec3) Box {
	return Box{Min: min, Max: max}
}

// BoxFromPoints returns the smallest box containing all points,
// or Empty if there are none.
func BoxFromPoints(points ...math3d.Vec3) Box {
	b := Empty()
	for _, p := range points {
		b = b.ExtendPoint(p)
	}
	return b
}

// Valid reports whether the box bounds anything.
// A zero-size box around a single point is valid.
func (b Box) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// Center returns the center of the box.
func (b Box) Center() math3d.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the box.
func (b Box) Size() math3d.Vec3 {
	return b.Max.Sub(b.Min)
}

// HalfSize returns half the dimensions (extents from center).
func (b Box) HalfSize() math3d.Vec3 {
	return b.Size().Scale(0.5)
}

// ExtendPoint returns the box grown to contain p.
func (b Box) ExtendPoint(p math3d.Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both boxes.
// An invalid operand is ignored.
func (b Box) Union(o Box) Box {
	switch {
	case !o.Valid():
		return b
	case !b.Valid():
		return o
	}
	return Box{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Corners returns the 8 corners of the box.
func (b Box) Corners() [8]math3d.Vec3 {
	return [8]math3d.Vec3{
		{X: b.Min.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Min.Z},
		{X: b.Min.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Min.Y, Z: b.Max.Z},
		{X: b.Min.X, Y: b.Max.Y, Z: b.Max.Z},
		{X: b.Max.X, Y: b.Max.Y, Z: b.Max.Z},
	}
}

// Transform returns the box bounding all 8 corners after transformation by m.
// The invalid box transforms to the invalid box.
func (b Box) Transform(m math3d.Mat4) Box {
	if !b.Valid() {
		return Empty()
	}
	corners := b.Corners()
	out := Empty()
	for _, c := range corners {
		out = out.ExtendPoint(m.MulVec3(c))
	}
	return out
}

// ContainsPoint returns true if the point is inside the box.
func (b Box) ContainsPoint(p math3d.Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// ClosestPoint returns the point of the box nearest to p.
// For a point inside the box that is p itself.
func (b Box) ClosestPoint(p math3d.Vec3) math3d.Vec3 {
	return p.Max(b.Min).Min(b.Max)
}

// DistanceSq returns the squared distance from p to the closest point of the
// box: 0 when p is inside, +Inf for the invalid box.
func (b Box) DistanceSq(p math3d.Vec3) float64 {
	if !b.Valid() {
		return math.Inf(1)
	}
	return b.ClosestPoint(p).Sub(p).LenSq()
}
