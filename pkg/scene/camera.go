package scene

import (
	"fmt"
	"math"

	"github.com/taigrr/arbor/pkg/geom"
	"github.com/taigrr/arbor/pkg/math3d"
)

// Projection selects a camera's projection model.
type Projection int

const (
	Perspective Projection = iota
	Orthographic
)

func (p Projection) String() string {
	if p == Orthographic {
		return "orthographic"
	}
	return "perspective"
}

// Camera holds the projection parameters of a camera node. The camera's
// position and orientation come from the node transform; it looks down its
// local -Z axis with +Y up.
type Camera struct {
	Projection Projection

	FOV    float64 // vertical field of view in radians (perspective)
	Aspect float64 // width / height; 0 derives it from the viewport
	Near   float64
	Far    float64

	// OrthoHeight is half the height of the orthographic view volume.
	OrthoHeight float64

	ViewportWidth  int
	ViewportHeight int
}

// DefaultCamera returns a 60° perspective camera.
func DefaultCamera() Camera {
	return Camera{
		Projection:     Perspective,
		FOV:            math.Pi / 3,
		Near:           0.1,
		Far:            1000,
		OrthoHeight:    1,
		ViewportWidth:  640,
		ViewportHeight: 360,
	}
}

// Validate checks the projection parameters.
func (c Camera) Validate() error {
	switch {
	case c.Near <= 0 && c.Projection == Perspective:
		return fmt.Errorf("%w: near plane %g must be positive", ErrBadCamera, c.Near)
	case c.Far <= c.Near:
		return fmt.Errorf("%w: far plane %g must exceed near plane %g", ErrBadCamera, c.Far, c.Near)
	case c.Projection == Perspective && (c.FOV <= 0 || c.FOV >= math.Pi):
		return fmt.Errorf("%w: field of view %g out of range", ErrBadCamera, c.FOV)
	case c.Projection == Orthographic && c.OrthoHeight <= 0:
		return fmt.Errorf("%w: orthographic height %g must be positive", ErrBadCamera, c.OrthoHeight)
	case c.ViewportWidth < 0 || c.ViewportHeight < 0:
		return fmt.Errorf("%w: negative viewport", ErrBadCamera)
	}
	return nil
}

// AspectRatio returns Aspect, or the viewport's ratio when Aspect is unset.
func (c Camera) AspectRatio() float64 {
	if c.Aspect > 0 {
		return c.Aspect
	}
	if c.ViewportWidth > 0 && c.ViewportHeight > 0 {
		return float64(c.ViewportWidth) / float64(c.ViewportHeight)
	}
	return 1
}

// ProjectionMatrix returns the clip-space projection.
func (c Camera) ProjectionMatrix() math3d.Mat4 {
	if c.Projection == Orthographic {
		h := c.OrthoHeight
		w := h * c.AspectRatio()
		return math3d.Orthographic(-w, w, -h, h, c.Near, c.Far)
	}
	return math3d.Perspective(c.FOV, c.AspectRatio(), c.Near, c.Far)
}

// View is a camera resolved against its world transform for one frame.
type View struct {
	Camera         Camera
	Eye            math3d.Vec3
	View           math3d.Mat4
	ViewInverse    math3d.Mat4
	Projection     math3d.Mat4
	ViewProjection math3d.Mat4

	invViewProj math3d.Mat4
}

func newView(c Camera, world math3d.Mat4) View {
	// Strip scale so a scaled parent cannot skew the view volume.
	t, r, _ := world.Decompose()
	camWorld := math3d.FromTRS(t, r, math3d.One3())
	v := View{
		Camera:      c,
		Eye:         t,
		ViewInverse: camWorld,
		View:        camWorld.Inverse(),
		Projection:  c.ProjectionMatrix(),
	}
	v.ViewProjection = v.Projection.Mul(v.View)
	v.invViewProj = v.ViewProjection.Inverse()
	return v
}

// Forward returns the world-space viewing direction.
func (v View) Forward() math3d.Vec3 {
	return v.ViewInverse.MulVec3Dir(math3d.V3(0, 0, -1)).Normalize()
}

func (v View) viewport() (w, h float64) {
	w, h = float64(v.Camera.ViewportWidth), float64(v.Camera.ViewportHeight)
	if w <= 0 || h <= 0 {
		return 1, 1
	}
	return w, h
}

// Unproject maps a viewport pixel and a depth in [0,1] (0 on the near plane,
// 1 on the far plane) to a world-space point. Pixel (0,0) is the top-left
// corner of the viewport.
func (v View) Unproject(px, py, depth float64) math3d.Vec3 {
	w, h := v.viewport()
	ndc := math3d.V4(2*px/w-1, 1-2*py/h, 2*depth-1, 1)
	return v.invViewProj.MulVec4(ndc).PerspectiveDivide()
}

// Ray returns the world-space ray through a pixel, starting on the near
// plane.
func (v View) Ray(px, py float64) (origin, dir math3d.Vec3) {
	origin = v.Unproject(px, py, 0)
	dir = v.Unproject(px, py, 1).Sub(origin).Normalize()
	return origin, dir
}

// Project maps a world point to viewport pixel coordinates and NDC depth.
// visible is false for points behind the camera or outside the view volume.
func (v View) Project(p math3d.Vec3) (x, y, depth float64, visible bool) {
	clip := v.ViewProjection.MulVec4(math3d.V4FromV3(p, 1))
	if clip.W <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.PerspectiveDivide()
	w, h := v.viewport()
	x = (ndc.X + 1) * 0.5 * w
	y = (1 - ndc.Y) * 0.5 * h
	visible = ndc.X >= -1 && ndc.X <= 1 && ndc.Y >= -1 && ndc.Y <= 1 && ndc.Z >= -1 && ndc.Z <= 1
	return x, y, ndc.Z, visible
}

// Corners returns the world-space corners of the near and far planes,
// indexed by geom.CornerBottomLeft..geom.CornerTopLeft.
func (v View) Corners() (near, far [4]math3d.Vec3) {
	w, h := v.viewport()
	px := [4][2]float64{
		geom.CornerBottomLeft:  {0, h},
		geom.CornerBottomRight: {w, h},
		geom.CornerTopRight:    {w, 0},
		geom.CornerTopLeft:     {0, 0},
	}
	for i, p := range px {
		near[i] = v.Unproject(p[0], p[1], 0)
		far[i] = v.Unproject(p[0], p[1], 1)
	}
	return near, far
}

// Frustum builds the culling frustum from the view's corners.
func (v View) Frustum() geom.Frustum {
	return geom.NewFrustum(v.Corners())
}
