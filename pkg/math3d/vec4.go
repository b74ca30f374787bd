package math3d

// Vec4 is a homogeneous point, a clip-space position or an RGBA color in
// the 0-1 range.
type Vec4 struct {
	X, Y, Z, W float64
}

func V4(x, y, z, w float64) Vec4 {
	return Vec4{x, y, z, w}
}

// V4FromV3 extends v with w: 1 for points, 0 for directions.
func V4FromV3(v Vec3, w float64) Vec4 {
	return Vec4{v.X, v.Y, v.Z, w}
}

// Vec3 drops W without dividing.
func (v Vec4) Vec3() Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// PerspectiveDivide projects a homogeneous point to 3D. Points at infinity
// (W == 0) are returned undivided.
func (v Vec4) PerspectiveDivide() Vec3 {
	if v.W == 0 {
		return v.Vec3()
	}
	return v.Vec3().Scale(1 / v.W)
}

func (v Vec4) Add(o Vec4) Vec4 {
	return Vec4{v.X + o.X, v.Y + o.Y, v.Z + o.Z, v.W + o.W}
}

func (v Vec4) Sub(o Vec4) Vec4 {
	return Vec4{v.X - o.X, v.Y - o.Y, v.Z - o.Z, v.W - o.W}
}

func (v Vec4) Scale(s float64) Vec4 {
	return Vec4{v.X * s, v.Y * s, v.Z * s, v.W * s}
}

// Dot is the four-component dot product. With a plane (n, d) and a point
// (p, 1) it gives the signed distance of p from the plane.
func (v Vec4) Dot(o Vec4) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z + v.W*o.W
}

// Lerp interpolates linearly between v (t=0) and o (t=1).
func (v Vec4) Lerp(o Vec4, t float64) Vec4 {
	return v.Add(o.Sub(v).Scale(t))
}
