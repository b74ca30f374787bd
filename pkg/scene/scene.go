// Package scene implements the scene graph: a hierarchy of group, camera,
// light and draw nodes stored in an arena and addressed by stable handles,
// plus the draw groups that partition draw nodes for rendering.
//
// A Scene is not safe for concurrent use.
package scene

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/geom"
	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
)

const rootName = "root"

type slot struct {
	node *Node
	gen  uint32
}

// Scene owns every node and draw group.
type Scene struct {
	slots []slot
	free  []uint32
	names map[string]ID
	root  ID

	cameras []ID
	lights  []ID

	groups       []*DrawGroup
	defaultGroup *DrawGroup
	groupSeq     int

	autoName     int
	boxRecompute int

	log *zap.Logger
}

// Option configures a Scene.
type Option func(*Scene)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.log = l
		}
	}
}

// New creates a scene holding a root group and the default draw group.
func New(opts ...Option) *Scene {
	s := &Scene{
		names: make(map[string]ID),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.root = s.alloc(rootName, KindGroup)
	s.defaultGroup = &DrawGroup{name: DefaultDrawGroupName}
	s.groups = []*DrawGroup{s.defaultGroup}
	return s
}

// Root returns the root group.
func (s *Scene) Root() ID { return s.root }

// Len returns the number of live nodes, including the root.
func (s *Scene) Len() int { return len(s.names) }

func (s *Scene) alloc(name string, kind Kind) ID {
	n := &Node{
		name:      name,
		kind:      kind,
		transform: IdentityTransform(),
		visible:   true,
		box:       geom.Empty(),
		boxDirty:  true,
	}
	var idx uint32
	if k := len(s.free); k > 0 {
		idx = s.free[k-1]
		s.free = s.free[:k-1]
	} else {
		idx = uint32(len(s.slots))
		s.slots = append(s.slots, slot{})
	}
	sl := &s.slots[idx]
	sl.gen++
	sl.node = n
	n.id = ID{index: idx, gen: sl.gen}
	s.names[name] = n.id
	return n.id
}

func (s *Scene) release(n *Node) {
	delete(s.names, n.name)
	sl := &s.slots[n.id.index]
	sl.node = nil
	s.free = append(s.free, n.id.index)
}

func (s *Scene) get(id ID) *Node {
	if id.gen == 0 || int(id.index) >= len(s.slots) {
		return nil
	}
	sl := s.slots[id.index]
	if sl.gen != id.gen {
		return nil
	}
	return sl.node
}

func (s *Scene) lookup(id ID) (*Node, error) {
	if n := s.get(id); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("node %v: %w", id, ErrNotFound)
}

func (s *Scene) lookupKind(id ID, kind Kind, kindErr error) (*Node, error) {
	n, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if n.kind != kind {
		return nil, fmt.Errorf("node %q is a %v: %w", n.name, n.kind, kindErr)
	}
	return n, nil
}

// pickName returns name, or a generated "<kind><n>" name when empty.
func (s *Scene) pickName(name string, kind Kind) (string, error) {
	if name == "" {
		for {
			s.autoName++
			name = fmt.Sprintf("%v%d", kind, s.autoName)
			if _, taken := s.names[name]; !taken {
				return name, nil
			}
		}
	}
	if _, taken := s.names[name]; taken {
		return "", fmt.Errorf("%q: %w", name, ErrDuplicateName)
	}
	return name, nil
}

func (s *Scene) create(name string, kind Kind, parent ID) (*Node, error) {
	if !parent.IsNil() {
		if _, err := s.lookupKind(parent, KindGroup, ErrNotGroup); err != nil {
			return nil, fmt.Errorf("create %v: %w", kind, err)
		}
	}
	name, err := s.pickName(name, kind)
	if err != nil {
		return nil, fmt.Errorf("create %v: %w", kind, err)
	}
	n := s.get(s.alloc(name, kind))
	if !parent.IsNil() {
		s.attach(s.get(parent), n)
	}
	return n, nil
}

// NewGroup creates a group under parent. An empty name is generated. A Nil
// parent leaves the node detached until AddChild.
func (s *Scene) NewGroup(name string, parent ID) (ID, error) {
	n, err := s.create(name, KindGroup, parent)
	if err != nil {
		return Nil, err
	}
	return n.id, nil
}

// NewCamera creates a camera node.
func (s *Scene) NewCamera(name string, parent ID, c Camera) (ID, error) {
	if err := c.Validate(); err != nil {
		return Nil, fmt.Errorf("create camera: %w", err)
	}
	n, err := s.create(name, KindCamera, parent)
	if err != nil {
		return Nil, err
	}
	n.camera = c
	s.cameras = append(s.cameras, n.id)
	return n.id, nil
}

// NewLight creates a light node.
func (s *Scene) NewLight(name string, parent ID, l Light) (ID, error) {
	n, err := s.create(name, KindLight, parent)
	if err != nil {
		return Nil, err
	}
	n.light = l
	s.lights = append(s.lights, n.id)
	return n.id, nil
}

// NewDraw creates a draw node in the default draw group.
func (s *Scene) NewDraw(name string, parent ID, drawables ...gfx.Drawable) (ID, error) {
	if err := checkDrawables(drawables); err != nil {
		return Nil, err
	}
	n, err := s.create(name, KindDraw, parent)
	if err != nil {
		return Nil, err
	}
	n.drawables = slices.Clone(drawables)
	s.assignGroup(n, s.defaultGroup)
	return n.id, nil
}

// AddChild attaches a parentless node to a group.
func (s *Scene) AddChild(parent, child ID) error {
	p, err := s.lookupKind(parent, KindGroup, ErrNotGroup)
	if err != nil {
		return err
	}
	c, err := s.lookup(child)
	if err != nil {
		return err
	}
	if !c.parent.IsNil() {
		return fmt.Errorf("add %q to %q: %w", c.name, p.name, ErrHasParent)
	}
	if child == s.root {
		return fmt.Errorf("add root to %q: %w", p.name, ErrCycle)
	}
	for a := p; a != nil; a = s.get(a.parent) {
		if a == c {
			return fmt.Errorf("add %q to %q: %w", c.name, p.name, ErrCycle)
		}
	}
	s.attach(p, c)
	return nil
}

func (s *Scene) attach(p, c *Node) {
	p.children = append(p.children, c.id)
	c.parent = p.id
	s.changed(c)
}

// RemoveChild detaches child from parent. The child stays in the scene,
// parentless, until it is re-attached or destroyed.
func (s *Scene) RemoveChild(parent, child ID) error {
	p, err := s.lookupKind(parent, KindGroup, ErrNotGroup)
	if err != nil {
		return err
	}
	c, err := s.lookup(child)
	if err != nil {
		return err
	}
	if c.parent != parent {
		return fmt.Errorf("remove %q from %q: %w", c.name, p.name, ErrNotChild)
	}
	s.detach(p, c)
	return nil
}

func (s *Scene) detach(p, c *Node) {
	s.changed(c)
	p.children = slices.DeleteFunc(p.children, func(id ID) bool { return id == c.id })
	c.parent = Nil
	s.dirtyBoxUp(p)
}

// Destroy removes a node and, for groups, all of its descendants.
func (s *Scene) Destroy(id ID) error {
	if id == s.root {
		return ErrRootNode
	}
	n, err := s.lookup(id)
	if err != nil {
		return err
	}
	if p := s.get(n.parent); p != nil {
		s.detach(p, n)
	}
	count := s.destroy(n)
	s.log.Debug("destroyed node",
		zap.String("node", n.name),
		zap.Int("count", count))
	return nil
}

// destroy frees n and its descendants, children first. n must already be
// detached from its parent, or be a descendant being torn down.
func (s *Scene) destroy(n *Node) int {
	count := 1
	for _, cid := range n.children {
		if c := s.get(cid); c != nil {
			count += s.destroy(c)
		}
	}
	n.children = nil
	switch n.kind {
	case KindGroup:
	case KindCamera:
		s.cameras = slices.DeleteFunc(s.cameras, func(id ID) bool { return id == n.id })
		for _, g := range s.groups {
			if g.camera == n.id {
				g.camera = Nil
			}
		}
	case KindLight:
		s.lights = slices.DeleteFunc(s.lights, func(id ID) bool { return id == n.id })
	case KindDraw:
		if n.group != nil {
			n.group.remove(n.id)
			n.group = nil
		}
		n.drawables = nil
	}
	s.release(n)
	return count
}

// Clear destroys every node except the root and every draw group except the
// default one.
func (s *Scene) Clear() {
	var count int
	for i := range s.slots {
		n := s.slots[i].node
		if n == nil || n.id == s.root || !n.parent.IsNil() {
			continue
		}
		count += s.destroy(n)
	}
	root := s.get(s.root)
	for _, cid := range root.children {
		if c := s.get(cid); c != nil {
			count += s.destroy(c)
		}
	}
	root.children = nil
	s.changed(root)
	s.groups = []*DrawGroup{s.defaultGroup}
	s.defaultGroup.members = nil
	s.log.Debug("cleared scene", zap.Int("nodes", count))
}

// Node returns the node for id, or nil if it does not exist.
func (s *Scene) Node(id ID) *Node { return s.get(id) }

// Lookup finds a node by name.
func (s *Scene) Lookup(name string) (ID, bool) {
	id, ok := s.names[name]
	return id, ok
}

// Children returns a group's children in insertion order.
func (s *Scene) Children(id ID) []ID {
	if n := s.get(id); n != nil {
		return n.Children()
	}
	return nil
}

// Parent returns the parent of id, or Nil.
func (s *Scene) Parent(id ID) ID {
	if n := s.get(id); n != nil {
		return n.parent
	}
	return Nil
}

// Cameras returns the camera nodes in creation order.
func (s *Scene) Cameras() []ID { return slices.Clone(s.cameras) }

// Lights returns the light nodes in creation order.
func (s *Scene) Lights() []ID { return slices.Clone(s.lights) }

// Walk visits the subtree rooted at id depth-first, parents before children.
// Returning false from fn skips the node's children.
func (s *Scene) Walk(id ID, fn func(n *Node) bool) {
	n := s.get(id)
	if n == nil || !fn(n) {
		return
	}
	for _, c := range slices.Clone(n.children) {
		s.Walk(c, fn)
	}
}

// IsAncestor reports whether a is a proper ancestor of b.
func (s *Scene) IsAncestor(a, b ID) bool {
	n := s.get(b)
	if n == nil {
		return false
	}
	for p := s.get(n.parent); p != nil; p = s.get(p.parent) {
		if p.id == a {
			return true
		}
	}
	return false
}

// Stats summarises the scene's contents.
type Stats struct {
	Nodes      int
	Groups     int
	Cameras    int
	Lights     int
	Draws      int
	Detached   int
	DrawGroups int
}

// Stats counts live nodes by kind.
func (s *Scene) Stats() Stats {
	st := Stats{DrawGroups: len(s.groups)}
	for _, sl := range s.slots {
		n := sl.node
		if n == nil {
			continue
		}
		st.Nodes++
		switch n.kind {
		case KindGroup:
			st.Groups++
		case KindCamera:
			st.Cameras++
		case KindLight:
			st.Lights++
		case KindDraw:
			st.Draws++
		}
		if n.parent.IsNil() && n.id != s.root {
			st.Detached++
		}
	}
	return st
}

// View resolves a camera node for rendering.
func (s *Scene) View(camera ID) (View, error) {
	n, err := s.lookupKind(camera, KindCamera, ErrNotCamera)
	if err != nil {
		return View{}, err
	}
	world, _ := s.world(n)
	return newView(n.camera, world), nil
}

// SetCamera replaces a camera node's parameters.
func (s *Scene) SetCamera(id ID, c Camera) error {
	n, err := s.lookupKind(id, KindCamera, ErrNotCamera)
	if err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}
	n.camera = c
	return nil
}

// SetDrawables replaces a draw node's drawables.
func (s *Scene) SetDrawables(id ID, drawables ...gfx.Drawable) error {
	if err := checkDrawables(drawables); err != nil {
		return err
	}
	n, err := s.lookupKind(id, KindDraw, ErrNotDraw)
	if err != nil {
		return err
	}
	n.drawables = slices.Clone(drawables)
	s.BoundsChanged(id)
	return nil
}

// AddDrawable appends a drawable to a draw node.
func (s *Scene) AddDrawable(id ID, d gfx.Drawable) error {
	if d == nil {
		return ErrNilDrawable
	}
	n, err := s.lookupKind(id, KindDraw, ErrNotDraw)
	if err != nil {
		return err
	}
	n.drawables = append(n.drawables, d)
	s.BoundsChanged(id)
	return nil
}

func checkDrawables(ds []gfx.Drawable) error {
	for i, d := range ds {
		if d == nil {
			return fmt.Errorf("drawable %d: %w", i, ErrNilDrawable)
		}
	}
	return nil
}

// LookAt orients a node so its local -Z axis points at a world-space target.
func (s *Scene) LookAt(id ID, target, up math3d.Vec3) error {
	n, err := s.lookup(id)
	if err != nil {
		return err
	}
	parentWorld := math3d.Identity()
	if p := s.get(n.parent); p != nil {
		parentWorld, _ = s.world(p)
	}
	inv := parentWorld.Inverse()
	dir := inv.MulVec3(target).Sub(n.transform.Translation)
	if dir.LenSq() < 1e-18 {
		return nil
	}
	return s.SetRotation(id, math3d.QuatLookRotation(dir, inv.MulVec3Dir(up)))
}
