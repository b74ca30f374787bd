package geom

import (
	"github.com/taigrr/arbor/pkg/math3d"
)

// Plane represents a plane in 3D space using the equation: Ax + By + Cz + D = 0
// where (A, B, C) is the normal and D is the distance from origin.
type Plane struct {
	Normal math3d.Vec3
	D      float64
}

// PlaneFromPoints returns the plane through a, b and c. The normal follows
// the counter-clockwise winding a → b → c.
func PlaneFromPoints(a, b, c math3d.Vec3) Plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Plane{Normal: n, D: -n.Dot(a)}
}

// Normalize normalizes the plane equation so the normal has unit length.
func (p *Plane) Normalize() {
	l := p.Normal.Len()
	if l == 0 {
		return
	}
	p.Normal = p.Normal.Scale(1.0 / l)
	p.D /= l
}

// DistanceToPoint returns the signed distance from the plane to a point.
// Positive = in front (same side as normal), negative = behind.
func (p Plane) DistanceToPoint(point math3d.Vec3) float64 {
	return p.Normal.Dot(point) + p.D
}

// Flip returns the plane with its normal reversed.
func (p Plane) Flip() Plane {
	return Plane{Normal: p.Normal.Negate(), D: -p.D}
}

// Frustum represents the 6 planes of a view frustum.
// Each plane's normal points inward, so points inside the frustum have a
// non-negative distance to every plane.
type Frustum struct {
	Planes [6]Plane
}

// Plane indices.
const (
	FrustumNear = iota
	FrustumFar
	FrustumLeft
	FrustumRight
	FrustumTop
	FrustumBottom
)

// Corner indices for the near and far quads passed to NewFrustum.
const (
	CornerBottomLeft = iota
	CornerBottomRight
	CornerTopRight
	CornerTopLeft
)

// NewFrustum builds the frustum from the world-space corners of the near and
// far planes, indexed by CornerBottomLeft..CornerTopLeft. Each plane goes
// through three corners and is then oriented so the centroid of all eight
// corners lies on its positive side; this works for perspective and
// orthographic projections alike.
func NewFrustum(near, far [4]math3d.Vec3) Frustum {
	const (
		bl = CornerBottomLeft
		br = CornerBottomRight
		tr = CornerTopRight
		tl = CornerTopLeft
	)

	var centroid math3d.Vec3
	for i := range 4 {
		centroid = centroid.Add(near[i]).Add(far[i])
	}
	centroid = centroid.Scale(1.0 / 8)

	var f Frustum
	f.Planes[FrustumNear] = PlaneFromPoints(near[bl], near[br], near[tr])
	f.Planes[FrustumFar] = PlaneFromPoints(far[bl], far[tr], far[br])
	f.Planes[FrustumLeft] = PlaneFromPoints(near[bl], near[tl], far[bl])
	f.Planes[FrustumRight] = PlaneFromPoints(near[br], far[br], near[tr])
	f.Planes[FrustumTop] = PlaneFromPoints(near[tl], near[tr], far[tl])
	f.Planes[FrustumBottom] = PlaneFromPoints(near[bl], far[bl], near[br])

	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(centroid) < 0 {
			f.Planes[i] = f.Planes[i].Flip()
		}
	}
	return f
}

// FrustumFromMatrix extracts frustum planes from a view-projection matrix
// using the Gribb/Hartmann method. The planes come out in the same order and
// orientation as NewFrustum.
func FrustumFromMatrix(m math3d.Mat4) Frustum {
	// For column-major m, row i element j is at m[i + j*4].
	row := func(i int) math3d.Vec4 {
		return math3d.V4(m[i], m[i+4], m[i+8], m[i+12])
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)
	plane := func(v math3d.Vec4) Plane {
		p := Plane{Normal: v.Vec3(), D: v.W}
		p.Normalize()
		return p
	}

	var f Frustum
	f.Planes[FrustumNear] = plane(r3.Add(r2))
	f.Planes[FrustumFar] = plane(r3.Sub(r2))
	f.Planes[FrustumLeft] = plane(r3.Add(r0))
	f.Planes[FrustumRight] = plane(r3.Sub(r0))
	f.Planes[FrustumTop] = plane(r3.Sub(r1))
	f.Planes[FrustumBottom] = plane(r3.Add(r1))
	return f
}

// Intersects tests whether any part of the box may be inside the frustum.
// It uses the positive-vertex test: for each plane, the box corner furthest
// along the plane normal is checked, and the box is rejected if that corner
// is behind the plane. The test is conservative: a box near a frustum edge
// can be accepted while lying just outside, but a box overlapping the frustum
// is never rejected. The invalid box never intersects.
func (f Frustum) Intersects(box Box) bool {
	if !box.Valid() {
		return false
	}
	for i := range f.Planes {
		plane := f.Planes[i]
		pVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Max.X, box.Min.X),
			selectComponent(plane.Normal.Y >= 0, box.Max.Y, box.Min.Y),
			selectComponent(plane.Normal.Z >= 0, box.Max.Z, box.Min.Z),
		)
		if plane.DistanceToPoint(pVertex) < 0 {
			return false
		}
	}
	return true
}

// ContainsBox tests whether the box is completely inside the frustum.
func (f Frustum) ContainsBox(box Box) bool {
	if !box.Valid() {
		return false
	}
	for i := range f.Planes {
		plane := f.Planes[i]
		nVertex := math3d.V3(
			selectComponent(plane.Normal.X >= 0, box.Min.X, box.Max.X),
			selectComponent(plane.Normal.Y >= 0, box.Min.Y, box.Max.Y),
			selectComponent(plane.Normal.Z >= 0, box.Min.Z, box.Max.Z),
		)
		if plane.DistanceToPoint(nVertex) < 0 {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum.
func (f Frustum) ContainsPoint(p math3d.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(p) < 0 {
			return false
		}
	}
	return true
}

// IntersectsSphere tests if a sphere intersects the frustum.
func (f Frustum) IntersectsSphere(center math3d.Vec3, radius float64) bool {
	for i := range f.Planes {
		if f.Planes[i].DistanceToPoint(center) < -radius {
			return false
		}
	}
	return true
}

func selectComponent(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}
