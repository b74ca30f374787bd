package geom

import (
	"math"
	"testing"

	"github.com/taigrr/arbor/pkg/math3d"
)

func TestBoxBasics(t *testing.T) {
	box := NewBox(math3d.V3(-1, -2, -3), math3d.V3(1, 2, 3))

	center := box.Center()
	if center.X != 0 || center.Y != 0 || center.Z != 0 {
		t.Errorf("center = %v, want (0, 0, 0)", center)
	}

	size := box.Size()
	if size.X != 2 || size.Y != 4 || size.Z != 6 {
		t.Errorf("size = %v, want (2, 4, 6)", size)
	}

	halfSize := box.HalfSize()
	if halfSize.X != 1 || halfSize.Y != 2 || halfSize.Z != 3 {
		t.Errorf("halfSize = %v, want (1, 2, 3)", halfSize)
	}
}

func TestBoxValidity(t *testing.T) {
	if Empty().Valid() {
		t.Error("Empty box should be invalid")
	}
	if !(Box{}).Valid() {
		t.Error("zero-size box at origin should be valid")
	}
	if !BoxFromPoints(math3d.V3(1, 2, 3)).Valid() {
		t.Error("single-point box should be valid")
	}
	if BoxFromPoints().Valid() {
		t.Error("box from no points should be invalid")
	}
}

func TestBoxUnion(t *testing.T) {
	a := NewBox(math3d.V3(0, 0, 0), math3d.V3(1, 1, 1))
	b := NewBox(math3d.V3(-2, 0.5, 0.5), math3d.V3(0.5, 3, 0.5))

	tests := []struct {
		name string
		got  Box
		want Box
	}{
		{"overlapping", a.Union(b), NewBox(math3d.V3(-2, 0, 0), math3d.V3(1, 3, 1))},
		{"invalid right", a.Union(Empty()), a},
		{"invalid left", Empty().Union(a), a},
		{"zero size joins", a.Union(Box{Min: math3d.V3(5, 5, 5), Max: math3d.V3(5, 5, 5)}), NewBox(math3d.V3(0, 0, 0), math3d.V3(5, 5, 5))},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}

	if Empty().Union(Empty()).Valid() {
		t.Error("union of invalid boxes should stay invalid")
	}
}

func TestBoxContainsPoint(t *testing.T) {
	box := NewBox(math3d.V3(0, 0, 0), math3d.V3(10, 10, 10))

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected bool
	}{
		{"center", math3d.V3(5, 5, 5), true},
		{"corner min", math3d.V3(0, 0, 0), true},
		{"corner max", math3d.V3(10, 10, 10), true},
		{"edge", math3d.V3(5, 0, 5), true},
		{"outside X", math3d.V3(11, 5, 5), false},
		{"outside Y", math3d.V3(5, -1, 5), false},
		{"outside Z", math3d.V3(5, 5, 15), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := box.ContainsPoint(tc.point)
			if result != tc.expected {
				t.Errorf("ContainsPoint(%v) = %v, want %v", tc.point, result, tc.expected)
			}
		})
	}
}

func TestBoxTransform(t *testing.T) {
	box := NewBox(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	t.Run("translation", func(t *testing.T) {
		transformed := box.Transform(math3d.Translate(math3d.V3(10, 20, 30)))

		if transformed.Min != math3d.V3(9, 19, 29) {
			t.Errorf("translated min = %v, want (9, 19, 29)", transformed.Min)
		}
		if transformed.Max != math3d.V3(11, 21, 31) {
			t.Errorf("translated max = %v, want (11, 21, 31)", transformed.Max)
		}
	})

	t.Run("scale", func(t *testing.T) {
		transformed := box.Transform(math3d.Scale(math3d.V3(2, 2, 2)))

		if transformed.Min != math3d.V3(-2, -2, -2) {
			t.Errorf("scaled min = %v, want (-2, -2, -2)", transformed.Min)
		}
		if transformed.Max != math3d.V3(2, 2, 2) {
			t.Errorf("scaled max = %v, want (2, 2, 2)", transformed.Max)
		}
	})

	t.Run("rotation grows box", func(t *testing.T) {
		transformed := box.Transform(math3d.RotateY(math.Pi / 4))
		want := math.Sqrt2
		if math.Abs(transformed.Max.X-want) > 1e-9 || math.Abs(transformed.Max.Z-want) > 1e-9 {
			t.Errorf("rotated max = %v, want (%v, 1, %v)", transformed.Max, want, want)
		}
	})

	t.Run("invalid stays invalid", func(t *testing.T) {
		if Empty().Transform(math3d.Translate(math3d.V3(1, 2, 3))).Valid() {
			t.Error("transformed invalid box should be invalid")
		}
	})
}

func TestBoxDistanceSq(t *testing.T) {
	box := NewBox(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1))

	tests := []struct {
		name     string
		point    math3d.Vec3
		expected float64
	}{
		{"inside", math3d.V3(0.5, 0, 0), 0},
		{"on face", math3d.V3(1, 0, 0), 0},
		{"face region", math3d.V3(0, 0, 4), 9},
		{"edge region", math3d.V3(3, 3, 0), 8},
		{"corner region", math3d.V3(-2, -2, -2), 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := box.DistanceSq(tc.point); math.Abs(got-tc.expected) > 1e-9 {
				t.Errorf("DistanceSq(%v) = %v, want %v", tc.point, got, tc.expected)
			}
		})
	}

	if !math.IsInf(Empty().DistanceSq(math3d.Zero3()), 1) {
		t.Error("distance to invalid box should be +Inf")
	}
}
