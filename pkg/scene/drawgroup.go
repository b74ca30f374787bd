package scene

import (
	"cmp"
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// DefaultDrawGroupName names the draw group every Scene starts with.
const DefaultDrawGroupName = "default"

// DrawGroup is an ordered bucket of draw nodes rendered together, optionally
// through their own camera. Groups are rendered in ascending Order; ties keep
// creation order.
type DrawGroup struct {
	name    string
	order   int
	camera  ID
	seq     int
	members []ID
}

func (g *DrawGroup) Name() string { return g.name }
func (g *DrawGroup) Order() int   { return g.order }

// Camera returns the group's camera, or Nil to render with the frame's
// camera.
func (g *DrawGroup) Camera() ID { return g.camera }

// SetCamera sets the camera used for this group. Nil uses the frame's
// camera.
func (g *DrawGroup) SetCamera(id ID) { g.camera = id }

// SetOrder changes the group's position in the render order.
func (g *DrawGroup) SetOrder(order int) { g.order = order }

// Members returns the member draw nodes in insertion order.
func (g *DrawGroup) Members() []ID {
	return append([]ID(nil), g.members...)
}

// Len returns the number of members.
func (g *DrawGroup) Len() int { return len(g.members) }

// Contains reports whether id is a member.
func (g *DrawGroup) Contains(id ID) bool {
	return slices.Contains(g.members, id)
}

func (g *DrawGroup) add(id ID) {
	g.members = append(g.members, id)
}

func (g *DrawGroup) remove(id ID) {
	if i := slices.Index(g.members, id); i >= 0 {
		g.members = slices.Delete(g.members, i, i+1)
	}
}

// NewDrawGroup creates a draw group. camera may be Nil.
func (s *Scene) NewDrawGroup(name string, order int, camera ID) (*DrawGroup, error) {
	if s.DrawGroup(name) != nil {
		return nil, fmt.Errorf("draw group %q: %w", name, ErrDuplicateGroup)
	}
	if !camera.IsNil() {
		if _, err := s.lookupKind(camera, KindCamera, ErrNotCamera); err != nil {
			return nil, fmt.Errorf("draw group %q: %w", name, err)
		}
	}
	s.groupSeq++
	g := &DrawGroup{name: name, order: order, camera: camera, seq: s.groupSeq}
	s.groups = append(s.groups, g)
	return g, nil
}

// DestroyDrawGroup removes a draw group. Its members move to the default
// group.
func (s *Scene) DestroyDrawGroup(name string) error {
	if name == DefaultDrawGroupName {
		return ErrDefaultGroup
	}
	i := slices.IndexFunc(s.groups, func(g *DrawGroup) bool { return g.name == name })
	if i < 0 {
		return fmt.Errorf("draw group %q: %w", name, ErrNoDrawGroup)
	}
	g := s.groups[i]
	for _, id := range g.members {
		if n := s.get(id); n != nil {
			n.group = s.defaultGroup
			s.defaultGroup.add(id)
		}
	}
	s.log.Debug("destroyed draw group",
		zap.String("group", name),
		zap.Int("moved", len(g.members)))
	g.members = nil
	s.groups = slices.Delete(s.groups, i, i+1)
	return nil
}

// DrawGroup returns the named group, or nil.
func (s *Scene) DrawGroup(name string) *DrawGroup {
	for _, g := range s.groups {
		if g.name == name {
			return g
		}
	}
	return nil
}

// DefaultDrawGroup returns the group new draw nodes are assigned to.
func (s *Scene) DefaultDrawGroup() *DrawGroup {
	return s.defaultGroup
}

// DrawGroups returns every group sorted by order, then creation.
func (s *Scene) DrawGroups() []*DrawGroup {
	out := slices.Clone(s.groups)
	slices.SortStableFunc(out, func(a, b *DrawGroup) int {
		return cmp.Or(cmp.Compare(a.order, b.order), cmp.Compare(a.seq, b.seq))
	})
	return out
}

// SetDrawGroup moves a draw node to g. Assigning the node's current group is
// a no-op.
func (s *Scene) SetDrawGroup(id ID, g *DrawGroup) error {
	n, err := s.lookupKind(id, KindDraw, ErrNotDraw)
	if err != nil {
		return err
	}
	if !s.ownsGroup(g) {
		return ErrNoDrawGroup
	}
	s.assignGroup(n, g)
	return nil
}

// SetSubtreeDrawGroup moves every draw node in the subtree rooted at id,
// including id itself, to g.
func (s *Scene) SetSubtreeDrawGroup(id ID, g *DrawGroup) error {
	if s.get(id) == nil {
		return fmt.Errorf("node %v: %w", id, ErrNotFound)
	}
	if !s.ownsGroup(g) {
		return ErrNoDrawGroup
	}
	s.Walk(id, func(n *Node) bool {
		if n.kind == KindDraw {
			s.assignGroup(n, g)
		}
		return true
	})
	return nil
}

func (s *Scene) assignGroup(n *Node, g *DrawGroup) {
	if n.group == g {
		return
	}
	if n.group != nil {
		n.group.remove(n.id)
	}
	g.add(n.id)
	n.group = g
}

func (s *Scene) ownsGroup(g *DrawGroup) bool {
	return g != nil && slices.Contains(s.groups, g)
}
