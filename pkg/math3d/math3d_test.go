package math3d

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestFromTRSOrder(t *testing.T) {
	// Scale first, then rotate 90° about Y, then translate.
	m := FromTRS(V3(10, 0, 0), QuatAxisAngle(Up(), math.Pi/2), V3(2, 1, 1))
	got := m.MulVec3(V3(1, 0, 0))
	want := V3(10, 0, -2)
	if !got.ApproxEqual(want, eps) {
		t.Errorf("FromTRS point = %v, want %v", got, want)
	}

	manual := Translate(V3(10, 0, 0)).Mul(RotateY(math.Pi / 2)).Mul(Scale(V3(2, 1, 1)))
	for i := range m {
		if math.Abs(m[i]-manual[i]) > eps {
			t.Fatalf("FromTRS[%d] = %v, want %v", i, m[i], manual[i])
		}
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		t    Vec3
		r    Quat
		s    Vec3
	}{
		{"identity", Zero3(), IdentityQuat(), One3()},
		{"translate only", V3(1, -2, 3), IdentityQuat(), One3()},
		{"rotate about diagonal", V3(0, 1, 0), QuatAxisAngle(V3(1, 1, 1), 1.2), One3()},
		{"non-uniform scale", V3(4, 5, 6), QuatAxisAngle(V3(0, 0, 1), -0.4), V3(2, 0.5, 3)},
		{"half turn", Zero3(), QuatAxisAngle(V3(1, 0, 0), math.Pi), V3(1, 2, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotT, gotR, gotS := FromTRS(tc.t, tc.r, tc.s).Decompose()
			if !gotT.ApproxEqual(tc.t, 1e-9) {
				t.Errorf("translation = %v, want %v", gotT, tc.t)
			}
			if !gotS.ApproxEqual(tc.s, 1e-9) {
				t.Errorf("scale = %v, want %v", gotS, tc.s)
			}
			if !gotR.ApproxEqual(tc.r, 1e-9) {
				t.Errorf("rotation = %v, want %v", gotR, tc.r)
			}
		})
	}
}

func TestQuatRotateMatchesMatrix(t *testing.T) {
	q := QuatAxisAngle(V3(0.3, -1, 0.2), 2.1)
	v := V3(1, 2, 3)
	a := q.Rotate(v)
	b := q.Mat4().MulVec3(v)
	if !a.ApproxEqual(b, eps) {
		t.Errorf("Rotate = %v, matrix = %v", a, b)
	}
}

func TestQuatLookRotation(t *testing.T) {
	tests := []struct {
		name string
		dir  Vec3
	}{
		{"forward", Forward()},
		{"right", V3(1, 0, 0)},
		{"behind", V3(0, 0, 1)},
		{"down", V3(0, -1, 0)},
		{"diagonal", V3(1, 1, -1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := QuatLookRotation(tc.dir, Up())
			got := q.Rotate(Forward())
			if !got.ApproxEqual(tc.dir.Normalize(), 1e-9) {
				t.Errorf("forward maps to %v, want %v", got, tc.dir.Normalize())
			}
		})
	}
}

func TestNormalMatrix(t *testing.T) {
	// Normals must stay perpendicular to transformed tangents under non-uniform scale.
	m := Scale(V3(1, 0.5, 1)).Mul(RotateZ(math.Pi / 4))
	n := m.NormalMatrix().MulVec3(V3(1, 1, 0).Normalize()).Normalize()
	tangent := m.MulVec3Dir(V3(1, -1, 0))
	if d := n.Dot(tangent); math.Abs(d) > 1e-9 {
		t.Errorf("transformed normal not perpendicular to surface: dot = %v", d)
	}
}

func TestMat3Inverse(t *testing.T) {
	m := FromTRS(Zero3(), QuatAxisAngle(V3(1, 2, 3), 0.9), V3(2, 3, 4)).Upper3()
	id := m.Inverse()
	v := V3(1, -1, 2)
	got := id.MulVec3(m.MulVec3(v))
	if !got.ApproxEqual(v, 1e-9) {
		t.Errorf("inverse round trip = %v, want %v", got, v)
	}
}

func TestMat4Inverse(t *testing.T) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))
	if !m.Invertible() {
		t.Fatal("expected invertible matrix")
	}
	p := V3(4, 5, 6)
	got := m.Inverse().MulVec3(m.MulVec3(p))
	if !got.ApproxEqual(p, 1e-9) {
		t.Errorf("inverse round trip = %v, want %v", got, p)
	}

	if (Mat4{}).Invertible() {
		t.Error("zero matrix should not be invertible")
	}
}

func TestVec4(t *testing.T) {
	a, b := V4(1, 2, 3, 1), V4(3, 2, 1, 5)
	if got := a.Lerp(b, 0.5); got != V4(2, 2, 2, 3) {
		t.Errorf("Lerp = %v", got)
	}
	if got := a.Dot(b); got != 15 {
		t.Errorf("Dot = %v, want 15", got)
	}
	if got := V4(2, 4, 6, 2).PerspectiveDivide(); got != V3(1, 2, 3) {
		t.Errorf("PerspectiveDivide = %v", got)
	}
	if got := V4(2, 4, 6, 0).PerspectiveDivide(); got != V3(2, 4, 6) {
		t.Errorf("PerspectiveDivide at infinity = %v", got)
	}

	// A plane through z=-2 facing +z: the point (0, 0, 1) is 3 units in front.
	plane := V4(0, 0, 1, 2)
	if d := plane.Dot(V4FromV3(V3(0, 0, 1), 1)); d != 3 {
		t.Errorf("plane distance = %v, want 3", d)
	}
}
