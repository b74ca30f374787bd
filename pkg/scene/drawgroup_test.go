package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func totalMembers(s *Scene) int {
	n := 0
	for _, g := range s.DrawGroups() {
		n += g.Len()
	}
	return n
}

func TestDefaultDrawGroup(t *testing.T) {
	s := New()
	g := s.DefaultDrawGroup()
	require.NotNil(t, g)
	assert.Equal(t, DefaultDrawGroupName, g.Name())
	assert.Zero(t, g.Order())
	assert.Same(t, g, s.DrawGroup("default"))
	assert.Nil(t, s.DrawGroup("missing"))
}

func TestNewDrawGroup(t *testing.T) {
	s := New()
	cam, _ := s.NewCamera("cam", s.Root(), DefaultCamera())
	hud, err := s.NewDrawGroup("hud", 10, cam)
	require.NoError(t, err)
	assert.Equal(t, cam, hud.Camera())

	_, err = s.NewDrawGroup("hud", 3, Nil)
	assert.ErrorIs(t, err, ErrDuplicateGroup)
	_, err = s.NewDrawGroup("default", 3, Nil)
	assert.ErrorIs(t, err, ErrDuplicateGroup)

	g, _ := s.NewGroup("g", s.Root())
	_, err = s.NewDrawGroup("bad", 3, g)
	assert.ErrorIs(t, err, ErrNotCamera)
}

func TestDrawGroupsSorted(t *testing.T) {
	s := New()
	late, _ := s.NewDrawGroup("late", 5, Nil)
	early, _ := s.NewDrawGroup("early", -1, Nil)
	tie, _ := s.NewDrawGroup("tie", 0, Nil)

	assert.Equal(t, []*DrawGroup{early, s.DefaultDrawGroup(), tie, late}, s.DrawGroups())

	late.SetOrder(-5)
	assert.Equal(t, []*DrawGroup{late, early, s.DefaultDrawGroup(), tie}, s.DrawGroups())
}

func TestSetDrawGroupMovesExactlyOnce(t *testing.T) {
	s := New()
	overlay, _ := s.NewDrawGroup("overlay", 1, Nil)
	a, _ := s.NewDraw("a", s.Root(), cube(1))
	b, _ := s.NewDraw("b", s.Root(), cube(1))
	def := s.DefaultDrawGroup()
	require.Equal(t, 2, totalMembers(s))

	require.NoError(t, s.SetDrawGroup(a, overlay))
	assert.False(t, def.Contains(a))
	assert.True(t, overlay.Contains(a))
	assert.Same(t, overlay, s.Node(a).DrawGroup())
	assert.Equal(t, 2, totalMembers(s))

	require.NoError(t, s.SetDrawGroup(a, overlay))
	assert.Equal(t, []ID{a}, overlay.Members(), "same group is a no-op")

	require.NoError(t, s.SetDrawGroup(a, def))
	assert.Equal(t, []ID{b, a}, def.Members())
	assert.Zero(t, overlay.Len())
	assert.Equal(t, 2, totalMembers(s))
}

func TestSetDrawGroupErrors(t *testing.T) {
	s := New()
	g, _ := s.NewGroup("g", s.Root())
	d, _ := s.NewDraw("d", g)
	foreign := New().DefaultDrawGroup()

	assert.ErrorIs(t, s.SetDrawGroup(g, s.DefaultDrawGroup()), ErrNotDraw)
	assert.ErrorIs(t, s.SetDrawGroup(d, foreign), ErrNoDrawGroup)
	assert.ErrorIs(t, s.SetDrawGroup(d, nil), ErrNoDrawGroup)
	assert.ErrorIs(t, s.SetSubtreeDrawGroup(Nil, s.DefaultDrawGroup()), ErrNotFound)
}

func TestSetSubtreeDrawGroup(t *testing.T) {
	s := New()
	overlay, _ := s.NewDrawGroup("overlay", 1, Nil)
	g, _ := s.NewGroup("g", s.Root())
	inner, _ := s.NewGroup("inner", g)
	d1, _ := s.NewDraw("d1", g)
	d2, _ := s.NewDraw("d2", inner)
	s.NewLight("l", inner, DefaultLight(Point))
	outside, _ := s.NewDraw("outside", s.Root())

	require.NoError(t, s.SetSubtreeDrawGroup(g, overlay))
	assert.ElementsMatch(t, []ID{d1, d2}, overlay.Members())
	assert.Equal(t, []ID{outside}, s.DefaultDrawGroup().Members())

	require.NoError(t, s.SetSubtreeDrawGroup(d2, s.DefaultDrawGroup()))
	assert.Equal(t, []ID{d1}, overlay.Members())
	assert.Equal(t, 3, totalMembers(s))
}

func TestDestroyDrawGroup(t *testing.T) {
	s := New()
	overlay, _ := s.NewDrawGroup("overlay", 1, Nil)
	d, _ := s.NewDraw("d", s.Root())
	require.NoError(t, s.SetDrawGroup(d, overlay))

	assert.ErrorIs(t, s.DestroyDrawGroup("nope"), ErrNoDrawGroup)
	assert.ErrorIs(t, s.DestroyDrawGroup(DefaultDrawGroupName), ErrDefaultGroup)

	require.NoError(t, s.DestroyDrawGroup("overlay"))
	assert.Nil(t, s.DrawGroup("overlay"))
	assert.True(t, s.DefaultDrawGroup().Contains(d))
	assert.Same(t, s.DefaultDrawGroup(), s.Node(d).DrawGroup())
	assert.ErrorIs(t, s.SetDrawGroup(d, overlay), ErrNoDrawGroup)
}
