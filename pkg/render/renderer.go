package render

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/geom"
	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/scene"
)

// ErrNoCamera is returned when a frame is requested without a live camera.
var ErrNoCamera = errors.New("render: no active camera")

// Options configures a Renderer.
type Options struct {
	Logger *zap.Logger

	// ClearColor fills the color buffer at the start of every frame.
	ClearColor gfx.Color

	// DisableCulling draws every visible node regardless of the frustum.
	DisableCulling bool

	// DrawBoundingBoxes outlines the world box of every drawn node.
	DrawBoundingBoxes bool
}

// Renderer turns scenes into draw calls on a Backend. It is not safe for
// concurrent use.
type Renderer struct {
	backend Backend
	opts    Options
	log     *zap.Logger
	frames  uint64

	boxes *gfx.Mesh
}

// New creates a renderer drawing to b.
func New(b Backend, opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{backend: b, opts: opts, log: log}
}

// Backend returns the backend the renderer draws to.
func (r *Renderer) Backend() Backend { return r.backend }

// SetOptions replaces the renderer options. A nil logger keeps the current
// one.
func (r *Renderer) SetOptions(opts Options) {
	if opts.Logger != nil {
		r.log = opts.Logger
	}
	r.opts = opts
}

// frameContext carries the per-frame state through the pipeline and binder.
type frameContext struct {
	scene        *scene.Scene
	view         scene.View
	frustum      geom.Frustum
	lights       []scene.LightState
	lightsWarned bool
	group        *scene.DrawGroup
	frame        *Frame
}

// candidate is a draw node that survived culling.
type candidate struct {
	node   *scene.Node
	model  math3d.Mat4
	box    geom.Box
	distSq float64
}

// RenderFrame draws sc as seen from camera. Draw groups are rendered in
// order; a group with its own camera uses it instead of camera. Passes are
// notified before and after the scene is drawn.
//
// Only a missing camera fails the frame. Problems with individual nodes,
// passes or backend calls are logged and the frame goes on.
func (r *Renderer) RenderFrame(sc *scene.Scene, camera scene.ID, passes ...Pass) (*Frame, error) {
	view, err := sc.View(camera)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoCamera, err)
	}
	r.frames++
	frame := &Frame{Number: r.frames, Camera: camera}
	fc := &frameContext{
		scene:  sc,
		view:   view,
		lights: sc.ActiveLights(),
		frame:  frame,
	}
	info := &FrameInfo{
		Number:  frame.Number,
		Scene:   sc,
		Camera:  camera,
		View:    view,
		Backend: r.backend,
	}

	r.backend.Clear(r.opts.ClearColor, true)
	applyDefaults(r.backend)
	r.checkBackend(fc, "clear")

	for _, p := range passes {
		if p.Enabled() {
			if err := p.Begin(info); err != nil {
				r.log.Warn("pass begin failed", zap.String("pass", p.Name()), zap.Error(err))
			}
			applyDefaults(r.backend)
			r.checkBackend(fc, p.Name())
		}
	}

	for _, g := range sc.DrawGroups() {
		r.renderGroup(fc, g, view)
	}

	applyDefaults(r.backend)
	info.Frame = frame
	for _, p := range passes {
		if p.Enabled() {
			if err := p.End(info); err != nil {
				r.log.Warn("pass end failed", zap.String("pass", p.Name()), zap.Error(err))
			}
			applyDefaults(r.backend)
			r.checkBackend(fc, p.Name())
		}
	}
	return frame, nil
}

func (r *Renderer) renderGroup(fc *frameContext, g *scene.DrawGroup, frameView scene.View) {
	fc.group = g
	fc.view = frameView
	if cam := g.Camera(); !cam.IsNil() {
		v, err := fc.scene.View(cam)
		if err != nil {
			r.log.Warn("draw group camera unavailable, using frame camera",
				zap.String("group", g.Name()), zap.Error(err))
		} else {
			fc.view = v
		}
	}
	fc.frustum = fc.view.Frustum()

	list := r.collect(fc, g.Members())
	// Farthest first; equal distances keep membership order.
	slices.SortStableFunc(list, func(a, b candidate) int {
		return cmp.Compare(b.distSq, a.distSq)
	})
	for i := range list {
		r.drawNode(fc, &list[i])
		if r.opts.DrawBoundingBoxes {
			r.drawBox(fc, list[i].box)
		}
	}
}

// collect resolves world transforms and boxes of the members and drops the
// ones that cannot be seen.
func (r *Renderer) collect(fc *frameContext, members []scene.ID) []candidate {
	sc := fc.scene
	st := &fc.frame.Stats
	list := make([]candidate, 0, len(members))
	for _, id := range members {
		n := sc.Node(id)
		if n == nil {
			continue
		}
		st.Candidates++

		model, visible := sc.WorldTransform(id)
		if !visible {
			st.Invisible++
			continue
		}
		box := sc.ObjectBoundingBox(id).Transform(model)
		if !box.Valid() {
			st.Empty++
			continue
		}
		if !r.opts.DisableCulling {
			if !fc.frustum.Intersects(box) {
				st.Culled++
				continue
			}
			if fc.frustum.ContainsBox(box) {
				st.Inside++
			}
		}
		st.Visible++
		list = append(list, candidate{
			node:   n,
			model:  model,
			box:    box,
			distSq: box.DistanceSq(fc.view.Eye),
		})
	}
	return list
}

func (r *Renderer) drawNode(fc *frameContext, c *candidate) {
	st := &fc.frame.Stats
	for _, d := range c.node.Drawables() {
		geo, mat := d.Geometry(), d.Material()
		if geo == nil || mat == nil || !mat.Shader.Compiled() {
			st.Skipped++
			r.log.Debug("drawable skipped: no geometry, material or compiled shader",
				zap.String("node", c.node.Name()))
			continue
		}

		r.bindMaterial(fc, mat, c.model)
		if d.PreDraw() {
			r.backend.DrawGeometry(geo)
			st.Drawn++
			fc.frame.Draws = append(fc.frame.Draws, DrawRecord{
				Node:       c.node.ID(),
				Name:       c.node.Name(),
				Group:      fc.group.Name(),
				DistanceSq: c.distSq,
				Drawable:   d,
			})
		} else {
			st.Vetoed++
		}
		d.PostDraw()

		r.checkBackend(fc, c.node.Name())

		r.backend.UseProgram(nil)
		if mat.PointSize > 0 {
			r.backend.SetPointSize(1)
		}
		if mat.LineWidth > 0 {
			r.backend.SetLineWidth(1)
		}
		r.backend.SetColorMask(true, true, true, true)
	}
}

// checkBackend logs a pending backend error, attributed to source.
func (r *Renderer) checkBackend(fc *frameContext, source string) {
	if err := r.backend.Err(); err != nil {
		fc.frame.Stats.BackendErrors++
		r.log.Warn("backend error", zap.String("source", source), zap.Error(err))
	}
}
