package math3d

import "math"

// Quat is a rotation quaternion. Scene transforms keep it at unit length.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat returns the quaternion for no rotation.
func IdentityQuat() Quat {
	return Quat{W: 1}
}

// QuatAxisAngle returns the rotation of angle radians around axis.
func QuatAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s, c := math.Sincos(angle / 2)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// QuatEuler returns the rotation that applies yaw (Y), then pitch (X),
// then roll (Z), all in radians.
func QuatEuler(pitch, yaw, roll float64) Quat {
	return QuatAxisAngle(Up(), yaw).
		Mul(QuatAxisAngle(V3(1, 0, 0), pitch)).
		Mul(QuatAxisAngle(V3(0, 0, 1), roll))
}

// QuatLookRotation returns the rotation that turns the local forward axis
// (0, 0, -1) toward dir, keeping the local up axis as close to up as possible.
func QuatLookRotation(dir, up Vec3) Quat {
	f := dir.Normalize()
	if f.LenSq() == 0 {
		return IdentityQuat()
	}
	r := f.Cross(up).Normalize()
	if r.LenSq() == 0 {
		// dir is parallel to up; any perpendicular right axis will do.
		r = f.Cross(V3(1, 0, 0)).Normalize()
		if r.LenSq() == 0 {
			r = f.Cross(V3(0, 0, 1)).Normalize()
		}
	}
	u := r.Cross(f)
	return QuatFromMat3(Mat3{
		r.X, r.Y, r.Z,
		u.X, u.Y, u.Z,
		-f.X, -f.Y, -f.Z,
	})
}

// QuatFromMat3 converts a pure rotation matrix to a quaternion.
func QuatFromMat3(m Mat3) Quat {
	m00, m01, m02 := m.Get(0, 0), m.Get(0, 1), m.Get(0, 2)
	m10, m11, m12 := m.Get(1, 0), m.Get(1, 1), m.Get(1, 2)
	m20, m21, m22 := m.Get(2, 0), m.Get(2, 1), m.Get(2, 2)

	var q Quat
	switch trace := m00 + m11 + m22; {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quat{(m21 - m12) * s, (m02 - m20) * s, (m10 - m01) * s, 0.25 / s}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quat{0.25 * s, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quat{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quat{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s, (m10 - m01) / s}
	}
	return q.Normalize()
}

// Mul returns the Hamilton product a * b (b is applied first).
func (a Quat) Mul(b Quat) Quat {
	return Quat{
		a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
		a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
	}
}

// Len returns the quaternion norm.
func (a Quat) Len() float64 {
	return math.Sqrt(a.X*a.X + a.Y*a.Y + a.Z*a.Z + a.W*a.W)
}

// Normalize returns the unit quaternion. The zero quaternion normalizes to identity.
func (a Quat) Normalize() Quat {
	l := a.Len()
	if l == 0 {
		return IdentityQuat()
	}
	return Quat{a.X / l, a.Y / l, a.Z / l, a.W / l}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (a Quat) Conjugate() Quat {
	return Quat{-a.X, -a.Y, -a.Z, a.W}
}

// Rotate applies the rotation to v.
func (a Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{a.X, a.Y, a.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(a.W)).Add(u.Cross(t))
}

// Mat4 returns the rotation as a column-major 4x4 matrix.
func (a Quat) Mat4() Mat4 {
	x, y, z, w := a.X, a.Y, a.Z, a.W
	return Mat4{
		1 - 2*(y*y+z*z), 2 * (x*y + w*z), 2 * (x*z - w*y), 0,
		2 * (x*y - w*z), 1 - 2*(x*x+z*z), 2 * (y*z + w*x), 0,
		2 * (x*z + w*y), 2 * (y*z - w*x), 1 - 2*(x*x+y*y), 0,
		0, 0, 0, 1,
	}
}

// ApproxEqual reports whether a and b describe the same rotation within eps.
// q and -q are the same rotation.
func (a Quat) ApproxEqual(b Quat, eps float64) bool {
	d := math.Abs(a.X*b.X + a.Y*b.Y + a.Z*b.Z + a.W*b.W)
	return math.Abs(1-d) <= eps
}
