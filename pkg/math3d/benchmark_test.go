package math3d

import (
	"testing"
)

func BenchmarkMat4Mul(b *testing.B) {
	m1 := Translate(V3(1, 2, 3))
	m2 := RotateY(0.5)

	for b.Loop() {
		_ = m1.Mul(m2)
	}
}

func BenchmarkMat4MulVec3(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5))
	v := V3(1, 2, 3)

	for b.Loop() {
		_ = m.MulVec3(v)
	}
}

func BenchmarkMat4Inverse(b *testing.B) {
	m := Translate(V3(1, 2, 3)).Mul(RotateY(0.5)).Mul(Scale(V3(2, 2, 2)))

	for b.Loop() {
		_ = m.Inverse()
	}
}

func BenchmarkFromTRS(b *testing.B) {
	t := V3(1, 2, 3)
	r := QuatAxisAngle(V3(0, 1, 1), 0.7)
	s := V3(2, 3, 4)

	for b.Loop() {
		_ = FromTRS(t, r, s)
	}
}

func BenchmarkDecompose(b *testing.B) {
	m := FromTRS(V3(1, 2, 3), QuatAxisAngle(V3(0, 1, 1), 0.7), V3(2, 3, 4))

	for b.Loop() {
		_, _, _ = m.Decompose()
	}
}

func BenchmarkNormalMatrix(b *testing.B) {
	m := FromTRS(V3(1, 2, 3), QuatAxisAngle(V3(0, 1, 1), 0.7), V3(2, 3, 4))

	for b.Loop() {
		_ = m.NormalMatrix()
	}
}

func BenchmarkViewProjection(b *testing.B) {
	// View-projection as built once per frame by the renderer.
	view := LookAt(V3(0, 0, 10), Zero3(), Up())
	proj := Perspective(1.0, 1.333, 0.1, 100.0)

	for b.Loop() {
		_ = proj.Mul(view)
	}
}
