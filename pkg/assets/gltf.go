// Package assets imports glTF 2.0 documents into a scene: the node
// hierarchy with its transforms, mesh primitives as drawables, materials,
// textures, cameras and KHR_lights_punctual lights.
package assets

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/scene"
)

// ErrNoScene is returned when a document has neither scenes nor nodes.
var ErrNoScene = errors.New("assets: document has no scene")

// ShaderSet holds the shaders assigned to imported materials.
type ShaderSet struct {
	Unlit    *gfx.Shader // points, lines and primitives without lighting
	Lit      *gfx.Shader // shaded triangles
	Textured *gfx.Shader // shaded triangles with a base color texture
}

// Options controls an import.
type Options struct {
	Shaders ShaderSet
	Logger  *zap.Logger

	// Name of the group holding the import. Empty picks a generated name.
	Name string

	// Scene selects the glTF scene; -1 uses the document default.
	Scene int

	// FlatNormals generates face normals instead of smooth ones for
	// triangle primitives that carry none.
	FlatNormals bool
}

// DefaultOptions imports the default scene with smooth normals.
func DefaultOptions() Options {
	return Options{Scene: -1}
}

// Result describes what an import created.
type Result struct {
	Root    scene.ID   // group holding the imported hierarchy
	Nodes   []scene.ID // scene node per glTF node, Nil when not imported
	Cameras []scene.ID
	Lights  []scene.ID
	Draws   []scene.ID

	Triangles int
	Textures  int
}

// Load opens a .gltf or .glb file and imports it under parent. The import
// group is named after the file unless opts.Name is set.
func Load(path string, sc *scene.Scene, parent scene.ID, opts Options) (*Result, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	if opts.Name == "" {
		opts.Name = uniqueName(sc, filepath.Base(path))
	}
	imp := newImporter(doc, sc, opts)
	imp.dir = filepath.Dir(path)
	return imp.run(parent)
}

// Import adds the nodes of an in-memory document under parent. On error the
// scene is left as it was.
func Import(doc *gltf.Document, sc *scene.Scene, parent scene.ID, opts Options) (*Result, error) {
	return newImporter(doc, sc, opts).run(parent)
}

type importer struct {
	doc  *gltf.Document
	sc   *scene.Scene
	opts Options
	log  *zap.Logger
	dir  string

	res       *Result
	textures  map[int]*gfx.Texture
	materials map[materialKey]*gfx.Material
	lights    []scene.Light
}

func newImporter(doc *gltf.Document, sc *scene.Scene, opts Options) *importer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &importer{
		doc:       doc,
		sc:        sc,
		opts:      opts,
		log:       log,
		res:       &Result{Nodes: make([]scene.ID, len(doc.Nodes))},
		textures:  make(map[int]*gfx.Texture),
		materials: make(map[materialKey]*gfx.Material),
	}
}

func (imp *importer) run(parent scene.ID) (*Result, error) {
	roots, err := imp.rootNodes()
	if err != nil {
		return nil, err
	}
	if imp.lights, err = documentLights(imp.doc); err != nil {
		return nil, err
	}

	root, err := imp.sc.NewGroup(imp.opts.Name, parent)
	if err != nil {
		return nil, fmt.Errorf("create import group: %w", err)
	}
	imp.res.Root = root
	for _, n := range roots {
		if err := imp.node(n, root, 0); err != nil {
			_ = imp.sc.Destroy(root)
			return nil, err
		}
	}
	imp.res.Textures = len(imp.textures)
	imp.log.Debug("gltf imported",
		zap.String("root", imp.sc.Node(root).Name()),
		zap.Int("nodes", len(imp.doc.Nodes)),
		zap.Int("triangles", imp.res.Triangles))
	return imp.res, nil
}

// rootNodes returns the top-level nodes of the selected scene, or every
// parentless node when the document has no scenes.
func (imp *importer) rootNodes() ([]int, error) {
	doc := imp.doc
	if len(doc.Scenes) > 0 {
		i := imp.opts.Scene
		if i < 0 {
			i = 0
			if doc.Scene != nil {
				i = *doc.Scene
			}
		}
		if i >= len(doc.Scenes) {
			return nil, fmt.Errorf("assets: scene %d of %d", i, len(doc.Scenes))
		}
		return doc.Scenes[i].Nodes, nil
	}
	if len(doc.Nodes) == 0 {
		return nil, ErrNoScene
	}
	child := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(child) {
				child[c] = true
			}
		}
	}
	var roots []int
	for i, isChild := range child {
		if !isChild {
			roots = append(roots, i)
		}
	}
	return roots, nil
}

// maxDepth bounds the node recursion so a cyclic document cannot loop.
const maxDepth = 256

func (imp *importer) node(idx int, parent scene.ID, depth int) error {
	if idx < 0 || idx >= len(imp.doc.Nodes) {
		return fmt.Errorf("assets: node index %d out of range", idx)
	}
	if depth > maxDepth || !imp.res.Nodes[idx].IsNil() {
		return fmt.Errorf("assets: node %d visited twice", idx)
	}
	n := imp.doc.Nodes[idx]
	name := uniqueName(imp.sc, n.Name)
	tr := nodeTransform(n)

	light, hasLight, err := nodeLight(n, imp.lights)
	if err != nil {
		return fmt.Errorf("node %q: %w", n.Name, err)
	}
	payloads := 0
	for _, has := range []bool{n.Mesh != nil, n.Camera != nil, hasLight} {
		if has {
			payloads++
		}
	}

	// A leaf with a single payload becomes that node directly; anything
	// else becomes a group with one child per payload.
	target := parent
	if len(n.Children) > 0 || payloads != 1 {
		id, err := imp.sc.NewGroup(name, parent)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		if err := imp.sc.SetTransform(id, tr); err != nil {
			return err
		}
		imp.res.Nodes[idx] = id
		target, name, tr = id, "", scene.IdentityTransform()
	}

	var created []scene.ID
	if n.Mesh != nil {
		id, err := imp.mesh(*n.Mesh, name, target)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		created = append(created, id)
	}
	if n.Camera != nil {
		id, err := imp.camera(*n.Camera, name, target)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		created = append(created, id)
	}
	if hasLight {
		id, err := imp.sc.NewLight(name, target, light)
		if err != nil {
			return fmt.Errorf("node %q: %w", n.Name, err)
		}
		imp.res.Lights = append(imp.res.Lights, id)
		created = append(created, id)
	}
	if imp.res.Nodes[idx].IsNil() {
		for _, id := range created {
			if id.IsNil() {
				continue
			}
			if err := imp.sc.SetTransform(id, tr); err != nil {
				return err
			}
			imp.res.Nodes[idx] = id
		}
	}

	for _, c := range n.Children {
		if err := imp.node(c, target, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// nodeTransform returns the local transform of a node. A matrix, when
// present, is decomposed into translation, rotation and scale.
func nodeTransform(n *gltf.Node) scene.Transform {
	var zero [16]float64
	if n.Matrix != zero && math3d.Mat4(n.Matrix) != math3d.Identity() {
		t := scene.TransformFromMatrix(math3d.Mat4(n.Matrix))
		t.Rotation = t.Rotation.Normalize()
		return t
	}
	tr := scene.IdentityTransform()
	tr.Translation = math3d.V3(n.Translation[0], n.Translation[1], n.Translation[2])
	if n.Rotation != [4]float64{} {
		tr.Rotation = math3d.Quat{X: n.Rotation[0], Y: n.Rotation[1], Z: n.Rotation[2], W: n.Rotation[3]}.Normalize()
	}
	if n.Scale != [3]float64{} {
		tr.Scale = math3d.V3(n.Scale[0], n.Scale[1], n.Scale[2])
	}
	return tr
}

// camera creates a camera node. Invalid projections are logged and
// skipped, returning Nil.
func (imp *importer) camera(idx int, name string, parent scene.ID) (scene.ID, error) {
	if idx < 0 || idx >= len(imp.doc.Cameras) {
		return scene.Nil, fmt.Errorf("assets: camera index %d out of range", idx)
	}
	gc := imp.doc.Cameras[idx]
	c := scene.DefaultCamera()
	switch {
	case gc.Perspective != nil:
		p := gc.Perspective
		c.FOV, c.Near = p.Yfov, p.Znear
		if p.AspectRatio != nil {
			c.Aspect = *p.AspectRatio
		}
		if p.Zfar != nil {
			c.Far = *p.Zfar
		}
	case gc.Orthographic != nil:
		o := gc.Orthographic
		c.Projection = scene.Orthographic
		c.OrthoHeight, c.Near, c.Far = o.Ymag, o.Znear, o.Zfar
		if o.Ymag != 0 {
			c.Aspect = o.Xmag / o.Ymag
		}
	}
	if err := c.Validate(); err != nil {
		imp.log.Warn("skipping gltf camera", zap.String("camera", gc.Name), zap.Error(err))
		return scene.Nil, nil
	}
	if name == "" {
		name = uniqueName(imp.sc, gc.Name)
	}
	id, err := imp.sc.NewCamera(name, parent, c)
	if err != nil {
		return scene.Nil, err
	}
	imp.res.Cameras = append(imp.res.Cameras, id)
	return id, nil
}

// uniqueName returns name, or name with a numeric suffix when it is taken.
// Empty names stay empty so the scene generates one.
func uniqueName(sc *scene.Scene, name string) string {
	if name == "" {
		return ""
	}
	if _, taken := sc.Lookup(name); !taken {
		return name
	}
	for i := 2; ; i++ {
		n := fmt.Sprintf("%s.%d", name, i)
		if _, taken := sc.Lookup(n); !taken {
			return n
		}
	}
}
