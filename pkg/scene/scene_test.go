package scene

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
)

// cube returns a drawable whose object box spans [-h, h] on every axis.
func cube(h float64) gfx.Drawable {
	return gfx.NewMesh(gfx.NewCube("cube", 2*h), gfx.NewMaterial("m", nil))
}

func assertVec(t *testing.T, want, got math3d.Vec3) {
	t.Helper()
	assert.True(t, want.ApproxEqual(got, 1e-9), "want %v, got %v", want, got)
}

func TestNewNodesAttachAndRegister(t *testing.T) {
	s := New()
	g, err := s.NewGroup("models", s.Root())
	require.NoError(t, err)
	d, err := s.NewDraw("", g, cube(1))
	require.NoError(t, err)
	c, err := s.NewCamera("cam", s.Root(), DefaultCamera())
	require.NoError(t, err)
	l, err := s.NewLight("", s.Root(), DefaultLight(Point))
	require.NoError(t, err)

	assert.Equal(t, []ID{g, c, l}, s.Children(s.Root()))
	assert.Equal(t, []ID{d}, s.Children(g))
	assert.Equal(t, g, s.Parent(d))
	assert.Equal(t, 5, s.Len())

	got, ok := s.Lookup("models")
	assert.True(t, ok)
	assert.Equal(t, g, got)

	dn := s.Node(d)
	require.NotNil(t, dn)
	assert.Equal(t, KindDraw, dn.Kind())
	assert.Equal(t, "draw1", dn.Name())
	assert.Same(t, s.DefaultDrawGroup(), dn.DrawGroup())
	assert.Equal(t, "light2", s.Node(l).Name())

	assert.Equal(t, []ID{c}, s.Cameras())
	assert.Equal(t, []ID{l}, s.Lights())
}

func TestAutoNameSkipsTakenNames(t *testing.T) {
	s := New()
	_, err := s.NewGroup("group1", s.Root())
	require.NoError(t, err)
	id, err := s.NewGroup("", s.Root())
	require.NoError(t, err)
	assert.Equal(t, "group2", s.Node(id).Name())
}

func TestDuplicateNameRejected(t *testing.T) {
	s := New()
	_, err := s.NewGroup("a", s.Root())
	require.NoError(t, err)
	_, err = s.NewDraw("a", s.Root())
	assert.ErrorIs(t, err, ErrDuplicateName)
	_, err = s.NewGroup("root", s.Root())
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.Equal(t, 2, s.Len())
}

func TestCreateUnderNonGroupFails(t *testing.T) {
	s := New()
	d, err := s.NewDraw("d", s.Root())
	require.NoError(t, err)
	_, err = s.NewGroup("g", d)
	assert.ErrorIs(t, err, ErrNotGroup)
	_, err = s.NewGroup("g", ID{index: 42, gen: 1})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewCameraValidates(t *testing.T) {
	s := New()
	bad := DefaultCamera()
	bad.Far = bad.Near
	_, err := s.NewCamera("cam", s.Root(), bad)
	assert.ErrorIs(t, err, ErrBadCamera)
	_, ok := s.Lookup("cam")
	assert.False(t, ok)
}

func TestNilDrawableRejected(t *testing.T) {
	s := New()
	_, err := s.NewDraw("bad", s.Root(), cube(1), nil)
	require.ErrorIs(t, err, ErrNilDrawable)
	_, ok := s.Lookup("bad")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())

	d, err := s.NewDraw("good", s.Root(), cube(1))
	require.NoError(t, err)
	assert.ErrorIs(t, s.AddDrawable(d, nil), ErrNilDrawable)
	assert.ErrorIs(t, s.SetDrawables(d, nil), ErrNilDrawable)
	assert.Len(t, s.Node(d).Drawables(), 1)

	// A typed nil mesh is not an interface nil; it has no geometry.
	require.NoError(t, s.AddDrawable(d, (*gfx.Mesh)(nil)))
	box := s.ObjectBoundingBox(d)
	assertVec(t, math3d.V3(-1, -1, -1), box.Min)
	assertVec(t, math3d.V3(1, 1, 1), box.Max)
}

func TestAddChild(t *testing.T) {
	s := New()
	a, _ := s.NewGroup("a", s.Root())
	b, _ := s.NewGroup("b", a)
	loose, _ := s.NewGroup("loose", Nil)
	d, _ := s.NewDraw("d", s.Root())

	t.Run("already parented", func(t *testing.T) {
		assert.ErrorIs(t, s.AddChild(s.Root(), b), ErrHasParent)
	})
	t.Run("parent is not a group", func(t *testing.T) {
		assert.ErrorIs(t, s.AddChild(d, loose), ErrNotGroup)
	})
	t.Run("root", func(t *testing.T) {
		assert.ErrorIs(t, s.AddChild(a, s.Root()), ErrCycle)
	})
	t.Run("cycle", func(t *testing.T) {
		require.NoError(t, s.RemoveChild(s.Root(), a))
		assert.ErrorIs(t, s.AddChild(b, a), ErrCycle)
		assert.ErrorIs(t, s.AddChild(a, a), ErrCycle)
		require.NoError(t, s.AddChild(s.Root(), a))
	})
	t.Run("success appends", func(t *testing.T) {
		require.NoError(t, s.AddChild(b, loose))
		assert.Equal(t, b, s.Parent(loose))
		assert.Equal(t, []ID{loose}, s.Children(b))
		assert.True(t, s.IsAncestor(a, loose))
	})
}

func TestRemoveChild(t *testing.T) {
	s := New()
	a, _ := s.NewGroup("a", s.Root())
	b, _ := s.NewGroup("b", s.Root())
	d, _ := s.NewDraw("d", a, cube(1))

	assert.ErrorIs(t, s.RemoveChild(b, d), ErrNotChild)
	require.NoError(t, s.RemoveChild(a, d))
	assert.Empty(t, s.Children(a))
	assert.Equal(t, Nil, s.Parent(d))

	_, ok := s.Lookup("d")
	assert.True(t, ok, "detached node stays registered")
	_, visible := s.WorldTransform(d)
	assert.False(t, visible, "detached nodes are never visible")

	require.NoError(t, s.AddChild(b, d))
	_, visible = s.WorldTransform(d)
	assert.True(t, visible)
}

func TestDestroyRecursive(t *testing.T) {
	s := New()
	g, _ := s.NewGroup("g", s.Root())
	inner, _ := s.NewGroup("inner", g)
	d1, _ := s.NewDraw("d1", g, cube(1))
	d2, _ := s.NewDraw("d2", inner, cube(1))
	cam, _ := s.NewCamera("cam", inner, DefaultCamera())
	light, _ := s.NewLight("light", inner, DefaultLight(Directional))
	other, _ := s.NewDrawGroup("overlay", 1, cam)
	require.NoError(t, s.SetDrawGroup(d2, other))
	keep, _ := s.NewDraw("keep", s.Root(), cube(1))

	require.NoError(t, s.Destroy(g))

	for _, name := range []string{"g", "inner", "d1", "d2", "cam", "light"} {
		_, ok := s.Lookup(name)
		assert.False(t, ok, "%s still registered", name)
	}
	for _, id := range []ID{g, inner, d1, d2, cam, light} {
		assert.Nil(t, s.Node(id))
	}
	assert.Equal(t, []ID{keep}, s.DefaultDrawGroup().Members())
	assert.Zero(t, other.Len())
	assert.Equal(t, Nil, other.Camera(), "destroyed camera is cleared from its group")
	assert.Empty(t, s.Cameras())
	assert.Empty(t, s.Lights())
	assert.Equal(t, []ID{keep}, s.Children(s.Root()))
	assert.Equal(t, 2, s.Len())

	assert.ErrorIs(t, s.Destroy(g), ErrNotFound)
	assert.ErrorIs(t, s.Destroy(s.Root()), ErrRootNode)
}

func TestStaleHandleAfterSlotReuse(t *testing.T) {
	s := New()
	old, _ := s.NewGroup("old", s.Root())
	require.NoError(t, s.Destroy(old))
	fresh, _ := s.NewGroup("fresh", s.Root())

	assert.NotEqual(t, old, fresh)
	assert.Nil(t, s.Node(old))
	assert.ErrorIs(t, s.SetTranslation(old, math3d.V3(1, 0, 0)), ErrNotFound)
	assert.Equal(t, "fresh", s.Node(fresh).Name())
}

func TestWalkPreOrder(t *testing.T) {
	s := New()
	a, _ := s.NewGroup("a", s.Root())
	s.NewDraw("a1", a)
	s.NewDraw("a2", a)
	b, _ := s.NewGroup("b", s.Root())
	s.NewDraw("b1", b)

	var names []string
	s.Walk(s.Root(), func(n *Node) bool {
		names = append(names, n.Name())
		return n.Name() != "b"
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names)
}

func TestClear(t *testing.T) {
	s := New()
	g, _ := s.NewGroup("g", s.Root())
	s.NewDraw("d", g, cube(1))
	s.NewGroup("loose", Nil)
	s.NewCamera("cam", s.Root(), DefaultCamera())
	s.NewDrawGroup("extra", 2, Nil)

	s.Clear()

	assert.Equal(t, 1, s.Len())
	assert.Empty(t, s.Children(s.Root()))
	assert.Empty(t, s.Cameras())
	assert.Len(t, s.DrawGroups(), 1)
	assert.Zero(t, s.DefaultDrawGroup().Len())
	assert.False(t, s.WorldBoundingBox(s.Root()).Valid())

	_, err := s.NewGroup("g", s.Root())
	assert.NoError(t, err, "names are free again after Clear")
}

func TestStats(t *testing.T) {
	s := New()
	g, _ := s.NewGroup("g", s.Root())
	s.NewDraw("d", g)
	s.NewLight("l", g, DefaultLight(Spot))
	s.NewCamera("c", Nil, DefaultCamera())

	assert.Equal(t, Stats{
		Nodes: 5, Groups: 2, Cameras: 1, Lights: 1, Draws: 1, Detached: 1, DrawGroups: 1,
	}, s.Stats())
}

func TestCopyFrom(t *testing.T) {
	src := New()
	model, _ := src.NewGroup("model", src.Root())
	require.NoError(t, src.SetTranslation(model, math3d.V3(0, 3, 0)))
	part, _ := src.NewGroup("part", model)
	shared := cube(1)
	d, _ := src.NewDraw("body", part, shared)
	require.NoError(t, src.SetTranslation(d, math3d.V3(1, 0, 0)))
	src.NewLight("lamp", model, DefaultLight(Point))

	dst := New()
	copied, err := dst.CopyFrom("instance", dst.Root(), src, model)
	require.NoError(t, err)

	assert.Equal(t, 5, dst.Len())
	assert.Equal(t, 1, dst.DefaultDrawGroup().Len())
	assert.Len(t, dst.Lights(), 1)
	assertVec(t, math3d.V3(0, 3, 0), dst.Node(copied).Translation())

	box := dst.WorldBoundingBox(copied)
	assertVec(t, math3d.V3(0, 2, -1), box.Min)
	assertVec(t, math3d.V3(2, 4, 1), box.Max)

	drawID := dst.DefaultDrawGroup().Members()[0]
	assert.Same(t, shared, dst.Node(drawID).Drawables()[0])

	t.Run("into itself", func(t *testing.T) {
		before := src.Len()
		_, err := src.CopyFrom("again", model, src, model)
		require.NoError(t, err)
		assert.Equal(t, before*2-1, src.Len())
	})
}

func TestCopyFromFailureLeavesSceneUnchanged(t *testing.T) {
	src := New()
	model, _ := src.NewGroup("model", src.Root())
	src.NewDraw("body", model, cube(1))
	cam, _ := src.NewCamera("cam", model, DefaultCamera())
	src.get(cam).camera.Near = 0

	dst := New()
	_, err := dst.CopyFrom("instance", dst.Root(), src, model)
	require.ErrorIs(t, err, ErrBadCamera)
	assert.Equal(t, 1, dst.Len())
	assert.Empty(t, dst.Children(dst.Root()))
	assert.Zero(t, dst.DefaultDrawGroup().Len())
	_, ok := dst.Lookup("instance")
	assert.False(t, ok)
}

func TestLookAt(t *testing.T) {
	s := New()
	rig, _ := s.NewGroup("rig", s.Root())
	require.NoError(t, s.SetTranslation(rig, math3d.V3(0, 0, 10)))
	require.NoError(t, s.SetRotation(rig, math3d.QuatAxisAngle(math3d.Up(), math.Pi/2)))
	cam, _ := s.NewCamera("cam", rig, DefaultCamera())

	require.NoError(t, s.LookAt(cam, math3d.Zero3(), math3d.Up()))

	v, err := s.View(cam)
	require.NoError(t, err)
	assertVec(t, math3d.V3(0, 0, 10), v.Eye)
	assertVec(t, math3d.V3(0, 0, -1), v.Forward())
}
