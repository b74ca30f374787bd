package scene

import (
	"github.com/taigrr/arbor/pkg/geom"
	"github.com/taigrr/arbor/pkg/math3d"
)

const transformEpsilon = 1e-12

// SetTranslation sets a node's local translation.
func (s *Scene) SetTranslation(id ID, t math3d.Vec3) error {
	return s.update(id, func(tr *Transform) bool {
		if tr.Translation.ApproxEqual(t, transformEpsilon) {
			return false
		}
		tr.Translation = t
		return true
	})
}

// SetRotation sets a node's local rotation. The quaternion is normalized.
func (s *Scene) SetRotation(id ID, r math3d.Quat) error {
	r = r.Normalize()
	return s.update(id, func(tr *Transform) bool {
		if tr.Rotation.ApproxEqual(r, transformEpsilon) {
			return false
		}
		tr.Rotation = r
		return true
	})
}

// SetScale sets a node's local scale.
func (s *Scene) SetScale(id ID, scale math3d.Vec3) error {
	return s.update(id, func(tr *Transform) bool {
		if tr.Scale.ApproxEqual(scale, transformEpsilon) {
			return false
		}
		tr.Scale = scale
		return true
	})
}

// SetTransform replaces a node's local transform.
func (s *Scene) SetTransform(id ID, t Transform) error {
	t.Rotation = t.Rotation.Normalize()
	return s.update(id, func(tr *Transform) bool {
		if *tr == t {
			return false
		}
		*tr = t
		return true
	})
}

// SetVisible sets a node's own visibility flag. A node is drawn only if it
// and all of its ancestors are visible.
func (s *Scene) SetVisible(id ID, visible bool) error {
	n, err := s.lookup(id)
	if err != nil {
		return err
	}
	if n.visible != visible {
		n.visible = visible
		s.changed(n)
	}
	return nil
}

func (s *Scene) update(id ID, fn func(*Transform) bool) error {
	n, err := s.lookup(id)
	if err != nil {
		return err
	}
	if fn(&n.transform) {
		s.changed(n)
	}
	return nil
}

// TransformChanged invalidates cached state after a node's transform or
// visibility changed: world transforms of the node and its descendants, and
// the bounding boxes of its group descendants and of every ancestor.
// The setters call it; callers only need it after editing a node through
// means the scene cannot observe.
func (s *Scene) TransformChanged(id ID) {
	if n := s.get(id); n != nil {
		s.changed(n)
	}
}

func (s *Scene) changed(n *Node) {
	s.invalidateDown(n)
	s.dirtyBoxUp(s.get(n.parent))
}

func (s *Scene) invalidateDown(n *Node) {
	n.worldValid = false
	if n.kind != KindGroup {
		return
	}
	n.boxDirty = true
	for _, cid := range n.children {
		if c := s.get(cid); c != nil {
			s.invalidateDown(c)
		}
	}
}

// dirtyBoxUp marks the cached boxes of g and its ancestors stale. A dirty
// group implies dirty ancestors, so the walk stops at the first one found.
func (s *Scene) dirtyBoxUp(g *Node) {
	for ; g != nil; g = s.get(g.parent) {
		if g.boxDirty {
			return
		}
		g.boxDirty = true
	}
}

// BoundsChanged marks a draw node's object box stale, for example after its
// geometry was edited in place.
func (s *Scene) BoundsChanged(id ID) {
	n := s.get(id)
	if n == nil {
		return
	}
	if n.kind == KindDraw || n.kind == KindGroup {
		n.boxDirty = true
	}
	s.dirtyBoxUp(s.get(n.parent))
}

// world returns the cached world matrix and effective visibility of n.
// Nodes not attached under the root are never visible.
func (s *Scene) world(n *Node) (math3d.Mat4, bool) {
	if n.worldValid {
		return n.world, n.worldVisible
	}
	m := n.transform.Matrix()
	vis := n.visible
	if p := s.get(n.parent); p != nil {
		pm, pv := s.world(p)
		m = pm.Mul(m)
		vis = vis && pv
	} else if n.id != s.root {
		vis = false
	}
	n.world, n.worldVisible, n.worldValid = m, vis, true
	return m, vis
}

// WorldTransform returns the product of the local transforms from the root
// down to id, and whether id and all of its ancestors are visible.
func (s *Scene) WorldTransform(id ID) (math3d.Mat4, bool) {
	n := s.get(id)
	if n == nil {
		return math3d.Identity(), false
	}
	return s.world(n)
}

// LocalMatrix returns id's local transform matrix.
func (s *Scene) LocalMatrix(id ID) math3d.Mat4 {
	if n := s.get(id); n != nil {
		return n.LocalMatrix()
	}
	return math3d.Identity()
}

// ObjectBoundingBox returns the union of a draw node's geometry boxes in
// its local space. Other kinds have no object box.
func (s *Scene) ObjectBoundingBox(id ID) geom.Box {
	n := s.get(id)
	if n == nil || n.kind != KindDraw {
		return geom.Empty()
	}
	if n.boxDirty {
		box := geom.Empty()
		for _, d := range n.drawables {
			if g := d.Geometry(); g != nil {
				box = box.Union(g.Bounds())
			}
		}
		n.box = box
		n.boxDirty = false
		s.boxRecompute++
	}
	return n.box
}

// WorldBoundingBox returns a node's box in world space. For groups this is
// the cached union of the children's boxes, recomputed only when stale.
// Cameras and lights have no volume.
func (s *Scene) WorldBoundingBox(id ID) geom.Box {
	n := s.get(id)
	if n == nil {
		return geom.Empty()
	}
	switch n.kind {
	case KindGroup:
		if n.boxDirty {
			box := geom.Empty()
			for _, c := range n.children {
				box = box.Union(s.WorldBoundingBox(c))
			}
			n.box = box
			n.boxDirty = false
			s.boxRecompute++
		}
		return n.box
	case KindDraw:
		world, _ := s.world(n)
		return s.ObjectBoundingBox(id).Transform(world)
	case KindCamera, KindLight:
	}
	return geom.Empty()
}

// BoxRecomputes counts how many cached boxes have been rebuilt.
func (s *Scene) BoxRecomputes() int {
	return s.boxRecompute
}
