package scene

import "fmt"

// CopyFrom instantiates the subtree rooted at srcRoot of src as a new group
// under parent. The new group takes srcRoot's transform and visibility;
// descendants get generated names, and draw nodes share their drawables with
// the source and join the default draw group. src may be s itself.
func (s *Scene) CopyFrom(name string, parent ID, src *Scene, srcRoot ID) (ID, error) {
	root, err := src.lookupKind(srcRoot, KindGroup, ErrNotGroup)
	if err != nil {
		return Nil, fmt.Errorf("copy: %w", err)
	}

	// Snapshot the source in pre-order before creating anything, so a
	// subtree copied into itself does not see its own copies.
	type entry struct {
		node   Node
		parent int
	}
	var entries []entry
	var collect func(id ID, parent int)
	collect = func(id ID, parent int) {
		n := src.get(id)
		if n == nil {
			return
		}
		entries = append(entries, entry{node: *n, parent: parent})
		idx := len(entries) - 1
		for _, c := range n.children {
			collect(c, idx)
		}
	}
	for _, c := range root.children {
		collect(c, -1)
	}
	rootTransform, rootVisible := root.transform, root.visible

	top, err := s.NewGroup(name, parent)
	if err != nil {
		return Nil, fmt.Errorf("copy: %w", err)
	}
	if err := s.SetTransform(top, rootTransform); err != nil {
		_ = s.Destroy(top)
		return Nil, err
	}
	if err := s.SetVisible(top, rootVisible); err != nil {
		_ = s.Destroy(top)
		return Nil, err
	}

	ids := make([]ID, len(entries))
	for i := range entries {
		e := &entries[i]
		p := top
		if e.parent >= 0 {
			p = ids[e.parent]
		}
		if ids[i], err = s.copyNode(&e.node, p); err != nil {
			_ = s.Destroy(top)
			return Nil, fmt.Errorf("copy %q: %w", e.node.name, err)
		}
	}
	return top, nil
}

func (s *Scene) copyNode(n *Node, parent ID) (ID, error) {
	var (
		id  ID
		err error
	)
	switch n.kind {
	case KindGroup:
		id, err = s.NewGroup("", parent)
	case KindCamera:
		id, err = s.NewCamera("", parent, n.camera)
	case KindLight:
		id, err = s.NewLight("", parent, n.light)
	case KindDraw:
		id, err = s.NewDraw("", parent, n.drawables...)
	}
	if err != nil {
		return Nil, err
	}
	if err := s.SetTransform(id, n.transform); err != nil {
		return Nil, err
	}
	return id, s.SetVisible(id, n.visible)
}
