package main

import (
	"fmt"
	"math"
	"path/filepath"
	"slices"

	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/assets"
	"github.com/taigrr/arbor/pkg/config"
	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/raster"
	"github.com/taigrr/arbor/pkg/render"
	"github.com/taigrr/arbor/pkg/scene"
)

const (
	minDistance = 1.0
	maxDistance = 50.0
	lightRadius = 10.0
)

// viewer owns the scene and render state of one loaded model. It has no
// terminal dependency so it can also render snapshots.
type viewer struct {
	cfg config.Config
	log *zap.Logger

	sc       *scene.Scene
	pivot    scene.ID // orbit group holding the model
	model    scene.ID // import root, normalized to a 2-unit cube
	camera   scene.ID
	sun      scene.ID
	helpers  []scene.ID
	lightDir math3d.Vec3

	fb       *raster.Framebuffer
	backend  *raster.Backend
	renderer *render.Renderer
	shaders  map[string]*gfx.Shader
	shaded   []*gfx.Material // lit triangle materials that follow the shading mode

	orbit    *Orbit
	hud      *HUD
	distance float64
}

func newShaders() (map[string]*gfx.Shader, error) {
	shaders := make(map[string]*gfx.Shader)
	for _, name := range []string{raster.ProgramUnlit, raster.ProgramFlat, raster.ProgramGouraud, raster.ProgramTextured} {
		s, err := raster.NewShader(name)
		if err != nil {
			return nil, err
		}
		shaders[name] = s
	}
	return shaders, nil
}

// newViewer loads modelPath into a fresh scene rendered at width x height
// pixels.
func newViewer(cfg config.Config, log *zap.Logger, modelPath string, width, height int) (*viewer, error) {
	shaders, err := newShaders()
	if err != nil {
		return nil, err
	}
	v := &viewer{
		cfg:      cfg,
		log:      log,
		sc:       scene.New(scene.WithLogger(log)),
		shaders:  shaders,
		fb:       raster.NewFramebuffer(width, height),
		orbit:    NewOrbit(cfg.Viewer.FPS, cfg.Viewer.SpringFrequency, cfg.Viewer.SpringDamping),
		distance: cfg.Camera.Distance,
		lightDir: math3d.V3(cfg.Light.Direction[0], cfg.Light.Direction[1], cfg.Light.Direction[2]).Normalize(),
	}
	v.backend = raster.New(v.fb, raster.WithLogger(log))
	v.renderer = render.New(v.backend, v.renderOptions())

	if v.pivot, err = v.sc.NewGroup("pivot", v.sc.Root()); err != nil {
		return nil, err
	}
	res, err := assets.Load(modelPath, v.sc, v.pivot, assets.Options{
		Shaders: assets.ShaderSet{
			Unlit:    shaders[raster.ProgramUnlit],
			Lit:      shaders[cfg.Render.Shading],
			Textured: shaders[raster.ProgramTextured],
		},
		Logger:      log,
		Scene:       -1,
		FlatNormals: cfg.Render.FlatNormals,
	})
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	v.model = res.Root
	log.Info("model loaded",
		zap.String("path", modelPath),
		zap.Int("triangles", res.Triangles),
		zap.Int("textures", res.Textures),
		zap.Int("cameras", len(res.Cameras)),
		zap.Int("lights", len(res.Lights)))

	if err := v.normalize(); err != nil {
		return nil, err
	}
	if err := v.collectMaterials(); err != nil {
		return nil, err
	}
	if err := v.addCamera(width, height); err != nil {
		return nil, err
	}
	if err := v.addLight(); err != nil {
		return nil, err
	}
	if err := v.addHelpers(); err != nil {
		return nil, err
	}
	v.hud = NewHUD(filepath.Base(modelPath), res.Triangles)
	return v, nil
}

func (v *viewer) renderOptions() render.Options {
	bg := v.cfg.Render.Background
	return render.Options{
		Logger:            v.log,
		ClearColor:        gfx.RGB(bg[0], bg[1], bg[2]),
		DisableCulling:    !v.cfg.Render.Culling,
		DrawBoundingBoxes: v.cfg.Render.BoundingBoxes,
	}
}

// normalize centers the model on the pivot and scales its largest extent
// to 2 units.
func (v *viewer) normalize() error {
	box := v.sc.WorldBoundingBox(v.model)
	if !box.Valid() {
		v.log.Warn("model has no geometry")
		return nil
	}
	size := box.Size()
	maxDim := math.Max(size.X, math.Max(size.Y, size.Z))
	if maxDim <= 0 {
		return nil
	}
	scale := 2 / maxDim
	center := box.Center()
	if err := v.sc.SetScale(v.model, math3d.V3(scale, scale, scale)); err != nil {
		return err
	}
	return v.sc.SetTranslation(v.model, center.Scale(-scale))
}

// collectMaterials gathers the lit materials and applies the fallback
// texture to untextured triangle meshes that carry UVs.
func (v *viewer) collectMaterials() error {
	var fallback *gfx.Texture
	if path := v.cfg.Render.Texture; path != "" {
		tex, err := gfx.LoadTexture(path)
		if err != nil {
			return err
		}
		tex.Filter = gfx.FilterBilinear
		fallback = tex
	}
	lit := v.shaders[v.cfg.Render.Shading]
	v.sc.Walk(v.model, func(n *scene.Node) bool {
		for _, d := range n.Drawables() {
			g, m := d.Geometry(), d.Material()
			if m == nil || g.Primitive != gfx.Triangles {
				continue
			}
			if fallback != nil && len(g.UVs) > 0 && len(m.Textures()) == 0 {
				m.SetTexture(gfx.SamplerDiffuse, fallback)
				m.Shader = v.shaders[raster.ProgramTextured]
			}
			if m.Shader == lit && !slices.Contains(v.shaded, m) {
				v.shaded = append(v.shaded, m)
			}
		}
		return true
	})
	return nil
}

func (v *viewer) addCamera(width, height int) error {
	c := scene.DefaultCamera()
	c.FOV = v.cfg.Camera.FOVRadians()
	c.Near, c.Far = v.cfg.Camera.Near, v.cfg.Camera.Far
	c.ViewportWidth, c.ViewportHeight = width, height
	id, err := v.sc.NewCamera("camera", v.sc.Root(), c)
	if err != nil {
		return err
	}
	v.camera = id
	return v.sc.SetTranslation(id, math3d.V3(0, 0, v.distance))
}

func (v *viewer) addLight() error {
	l, err := v.cfg.Light.Light()
	if err != nil {
		return err
	}
	if v.sun, err = v.sc.NewLight("sun", v.sc.Root(), l); err != nil {
		return err
	}
	return v.aimLight(v.lightDir)
}

// aimLight places the viewer light on the far side of dir and points it at
// the origin.
func (v *viewer) aimLight(dir math3d.Vec3) error {
	if dir.LenSq() == 0 {
		dir = math3d.V3(0, -1, 0)
	}
	if err := v.sc.SetTranslation(v.sun, dir.Normalize().Scale(-lightRadius)); err != nil {
		return err
	}
	up := math3d.Up()
	if math.Abs(dir.Normalize().Dot(up)) > 0.99 {
		up = math3d.V3(0, 0, -1)
	}
	return v.sc.LookAt(v.sun, math3d.Zero3(), up)
}

// addHelpers creates the ground grid and axes in a draw group that renders
// before the model.
func (v *viewer) addHelpers() error {
	g, err := v.sc.NewDrawGroup("helpers", -1, scene.Nil)
	if err != nil {
		return err
	}
	unlit := v.shaders[raster.ProgramUnlit]
	grid := gfx.NewMaterial("grid", unlit)
	grid.SetParam(gfx.ParamColor, math3d.V4(0.35, 0.35, 0.4, 1))
	axes := gfx.NewMaterial("axes", unlit)
	axes.LineWidth = 2

	for _, h := range []struct {
		name    string
		d       gfx.Drawable
		visible bool
	}{
		{"grid", gfx.NewMesh(gfx.NewGrid("grid", 4, 0.5), grid), v.cfg.Viewer.Grid},
		{"axes", gfx.NewMesh(gfx.NewAxes("axes", 1.5), axes), v.cfg.Viewer.Axes},
	} {
		id, err := v.sc.NewDraw(h.name, v.sc.Root(), h.d)
		if err != nil {
			return err
		}
		if err := v.sc.SetTranslation(id, math3d.V3(0, -1, 0)); err != nil {
			return err
		}
		if err := v.sc.SetVisible(id, h.visible); err != nil {
			return err
		}
		if err := v.sc.SetDrawGroup(id, g); err != nil {
			return err
		}
		v.helpers = append(v.helpers, id)
	}
	return nil
}

// resize changes the render target size, keeping the camera aspect in step.
func (v *viewer) resize(width, height int) error {
	v.backend.Resize(width, height)
	c, _ := v.sc.Node(v.camera).Camera()
	c.ViewportWidth, c.ViewportHeight = width, height
	return v.sc.SetCamera(v.camera, c)
}

// step advances the orbit one frame.
func (v *viewer) step() error {
	v.orbit.Update()
	return v.sc.SetRotation(v.pivot, v.orbit.Rotation())
}

func (v *viewer) zoom(delta float64) error {
	v.distance = math.Min(maxDistance, math.Max(minDistance, v.distance+delta))
	return v.sc.SetTranslation(v.camera, math3d.V3(0, 0, v.distance))
}

func (v *viewer) reset() error {
	v.orbit.Reset()
	v.distance = v.cfg.Camera.Distance
	if err := v.sc.SetRotation(v.pivot, math3d.IdentityQuat()); err != nil {
		return err
	}
	return v.zoom(0)
}

// cycleShading moves the lit materials to the next shading program.
func (v *viewer) cycleShading() string {
	i := slices.Index(config.Shadings, v.cfg.Render.Shading)
	v.cfg.Render.Shading = config.Shadings[(i+1)%len(config.Shadings)]
	s := v.shaders[v.cfg.Render.Shading]
	for _, m := range v.shaded {
		m.Shader = s
	}
	return v.cfg.Render.Shading
}

func (v *viewer) toggleBoundingBoxes() {
	v.cfg.Render.BoundingBoxes = !v.cfg.Render.BoundingBoxes
	v.renderer.SetOptions(v.renderOptions())
}

func (v *viewer) toggleCulling() {
	v.cfg.Render.Culling = !v.cfg.Render.Culling
	v.renderer.SetOptions(v.renderOptions())
}

func (v *viewer) toggleHelpers() error {
	for _, id := range v.helpers {
		if err := v.sc.SetVisible(id, !v.sc.Node(id).Visible()); err != nil {
			return err
		}
	}
	return nil
}

// frame renders the scene into the framebuffer.
func (v *viewer) frame() (*render.Frame, error) {
	v.backend.ResetStats()
	return v.renderer.RenderFrame(v.sc, v.camera, v.hud)
}

// screenToLightDir maps a terminal position onto a hemisphere facing the
// camera and returns the direction light travels from there.
func screenToLightDir(x, y, width, height int) math3d.Vec3 {
	nx := (float64(x)/float64(width))*2 - 1
	ny := (float64(y)/float64(height))*2 - 1
	lenSq := nx*nx + ny*ny
	if lenSq > 1 {
		l := math.Sqrt(lenSq)
		nx /= l
		ny /= l
		lenSq = 1
	}
	nz := math.Sqrt(1 - lenSq)
	return math3d.V3(nx, -ny, nz).Negate().Normalize()
}
