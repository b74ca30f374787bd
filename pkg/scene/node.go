package scene

import (
	"fmt"

	"github.com/taigrr/arbor/pkg/geom"
	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
)

// ID is a stable handle to a node in a Scene. Handles of destroyed nodes
// are never reused; looking one up fails with ErrNotFound.
type ID struct {
	index uint32
	gen   uint32
}

// Nil is the zero ID. It never refers to a node.
var Nil ID

// IsNil reports whether id is the zero handle.
func (id ID) IsNil() bool { return id == Nil }

func (id ID) String() string {
	if id.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%d.%d", id.index, id.gen)
}

// Kind is the closed set of node variants.
type Kind int

const (
	KindGroup Kind = iota
	KindCamera
	KindLight
	KindDraw
)

func (k Kind) String() string {
	switch k {
	case KindGroup:
		return "group"
	case KindCamera:
		return "camera"
	case KindLight:
		return "light"
	case KindDraw:
		return "draw"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Transform is a local translation, rotation and scale. The matrix applies
// scale first, then rotation, then translation.
type Transform struct {
	Translation math3d.Vec3
	Rotation    math3d.Quat
	Scale       math3d.Vec3
}

// IdentityTransform returns the transform with no effect.
func IdentityTransform() Transform {
	return Transform{Rotation: math3d.IdentityQuat(), Scale: math3d.One3()}
}

// Matrix returns T * R * S.
func (t Transform) Matrix() math3d.Mat4 {
	return math3d.FromTRS(t.Translation, t.Rotation, t.Scale)
}

// TransformFromMatrix decomposes an affine matrix.
func TransformFromMatrix(m math3d.Mat4) Transform {
	tr, r, s := m.Decompose()
	return Transform{Translation: tr, Rotation: r, Scale: s}
}

// Node is a scene node. Nodes are created and owned by a Scene; the pointer
// returned by Scene.Node is valid until the node is destroyed.
//
// The payload fields used depend on Kind: groups have children and a cached
// world box, cameras a Camera, lights a Light, draw nodes drawables, a cached
// object box and a draw group.
type Node struct {
	id        ID
	name      string
	kind      Kind
	parent    ID
	transform Transform
	visible   bool

	world        math3d.Mat4
	worldVisible bool
	worldValid   bool

	// Group: world box. Draw: object box.
	box      geom.Box
	boxDirty bool

	children  []ID
	camera    Camera
	light     Light
	drawables []gfx.Drawable
	group     *DrawGroup
}

func (n *Node) ID() ID                   { return n.id }
func (n *Node) Name() string             { return n.name }
func (n *Node) Kind() Kind               { return n.kind }
func (n *Node) Parent() ID               { return n.parent }
func (n *Node) Visible() bool            { return n.visible }
func (n *Node) Transform() Transform     { return n.transform }
func (n *Node) Translation() math3d.Vec3 { return n.transform.Translation }
func (n *Node) Rotation() math3d.Quat    { return n.transform.Rotation }
func (n *Node) Scale() math3d.Vec3       { return n.transform.Scale }

// LocalMatrix returns the node's local transform matrix.
func (n *Node) LocalMatrix() math3d.Mat4 {
	return n.transform.Matrix()
}

// Children returns a copy of a group's child handles in insertion order.
func (n *Node) Children() []ID {
	if n.kind != KindGroup {
		return nil
	}
	return append([]ID(nil), n.children...)
}

// Camera returns the camera payload, or false for other kinds.
func (n *Node) Camera() (Camera, bool) {
	return n.camera, n.kind == KindCamera
}

// Light returns the light payload, or false for other kinds.
func (n *Node) Light() (Light, bool) {
	return n.light, n.kind == KindLight
}

// Drawables returns a copy of a draw node's drawables.
func (n *Node) Drawables() []gfx.Drawable {
	if n.kind != KindDraw {
		return nil
	}
	return append([]gfx.Drawable(nil), n.drawables...)
}

// DrawGroup returns the group a draw node belongs to, or nil.
func (n *Node) DrawGroup() *DrawGroup {
	return n.group
}
