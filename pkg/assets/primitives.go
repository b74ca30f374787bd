package assets

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/scene"
)

// mesh creates a draw node holding one drawable per primitive of the mesh.
func (imp *importer) mesh(idx int, name string, parent scene.ID) (scene.ID, error) {
	if idx < 0 || idx >= len(imp.doc.Meshes) {
		return scene.Nil, fmt.Errorf("assets: mesh index %d out of range", idx)
	}
	m := imp.doc.Meshes[idx]
	if name == "" {
		name = uniqueName(imp.sc, m.Name)
	}

	var drawables []gfx.Drawable
	for i, p := range m.Primitives {
		g, err := imp.geometry(p, fmt.Sprintf("%s/%d", m.Name, i))
		if err != nil {
			return scene.Nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
		}
		if g == nil {
			continue
		}
		mat, err := imp.material(p.Material, g)
		if err != nil {
			return scene.Nil, fmt.Errorf("mesh %q primitive %d: %w", m.Name, i, err)
		}
		if g.Primitive == gfx.Triangles {
			imp.res.Triangles += g.PrimitiveCount()
		}
		drawables = append(drawables, gfx.NewMesh(g, mat))
	}

	id, err := imp.sc.NewDraw(name, parent, drawables...)
	if err != nil {
		return scene.Nil, err
	}
	imp.res.Draws = append(imp.res.Draws, id)
	return id, nil
}

// geometry reads the vertex attributes of a primitive. Primitives without
// positions return nil.
func (imp *importer) geometry(p *gltf.Primitive, name string) (*gfx.Geometry, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		imp.log.Debug("skipping primitive without positions")
		return nil, nil
	}
	acr, err := imp.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	pos, err := modeler.ReadPosition(imp.doc, acr, nil)
	if err != nil {
		return nil, fmt.Errorf("read positions: %w", err)
	}

	var indices []uint32
	if p.Indices != nil {
		acr, err := imp.accessor(*p.Indices)
		if err != nil {
			return nil, err
		}
		if indices, err = modeler.ReadIndices(imp.doc, acr, nil); err != nil {
			return nil, fmt.Errorf("read indices: %w", err)
		}
		for _, i := range indices {
			if int(i) >= len(pos) {
				return nil, fmt.Errorf("assets: index %d out of range of %d vertices", i, len(pos))
			}
		}
	}

	prim, indices := topology(p.Mode, indices, len(pos))
	g := gfx.NewGeometry(name, prim, vec3s(pos), indices)

	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		acr, err := imp.accessor(idx)
		if err != nil {
			return nil, err
		}
		n, err := modeler.ReadNormal(imp.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read normals: %w", err)
		}
		if len(n) == len(pos) {
			g.Normals = vec3s(n)
		}
	}
	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		acr, err := imp.accessor(idx)
		if err != nil {
			return nil, err
		}
		uv, err := modeler.ReadTextureCoord(imp.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read texture coordinates: %w", err)
		}
		if len(uv) == len(pos) {
			g.UVs = make([]math3d.Vec2, len(uv))
			for i, t := range uv {
				// glTF puts V=0 at the top of the image.
				g.UVs[i] = math3d.V2(float64(t[0]), 1-float64(t[1]))
			}
		}
	}
	if idx, ok := p.Attributes[gltf.COLOR_0]; ok {
		acr, err := imp.accessor(idx)
		if err != nil {
			return nil, err
		}
		c, err := modeler.ReadColor(imp.doc, acr, nil)
		if err != nil {
			return nil, fmt.Errorf("read colors: %w", err)
		}
		if len(c) == len(pos) {
			g.Colors = make([]gfx.Color, len(c))
			for i, v := range c {
				g.Colors[i] = gfx.RGBA(v[0], v[1], v[2], v[3])
			}
		}
	}

	if g.Primitive == gfx.Triangles && len(g.Normals) == 0 {
		if imp.opts.FlatNormals {
			g.CalculateNormals()
		} else {
			g.CalculateSmoothNormals()
		}
	}
	return g, nil
}

func (imp *importer) accessor(idx int) (*gltf.Accessor, error) {
	if idx < 0 || idx >= len(imp.doc.Accessors) {
		return nil, fmt.Errorf("assets: accessor index %d out of range", idx)
	}
	return imp.doc.Accessors[idx], nil
}

// topology maps a glTF primitive mode onto a list topology, expanding
// strips, fans and loops into explicit indices.
func topology(mode gltf.PrimitiveMode, indices []uint32, count int) (gfx.Primitive, []uint32) {
	elem := func(i int) uint32 {
		if indices != nil {
			return indices[i]
		}
		return uint32(i)
	}
	n := count
	if indices != nil {
		n = len(indices)
	}

	switch mode {
	case gltf.PrimitivePoints:
		return gfx.Points, indices
	case gltf.PrimitiveLines:
		return gfx.Lines, indices
	case gltf.PrimitiveLineStrip, gltf.PrimitiveLineLoop:
		out := make([]uint32, 0, 2*n)
		for i := 0; i+1 < n; i++ {
			out = append(out, elem(i), elem(i+1))
		}
		if mode == gltf.PrimitiveLineLoop && n > 2 {
			out = append(out, elem(n-1), elem(0))
		}
		return gfx.Lines, out
	case gltf.PrimitiveTriangleStrip:
		out := make([]uint32, 0, 3*n)
		for i := 0; i+2 < n; i++ {
			// Odd triangles swap their first two vertices to keep the
			// winding consistent.
			if i%2 == 0 {
				out = append(out, elem(i), elem(i+1), elem(i+2))
			} else {
				out = append(out, elem(i+1), elem(i), elem(i+2))
			}
		}
		return gfx.Triangles, out
	case gltf.PrimitiveTriangleFan:
		out := make([]uint32, 0, 3*n)
		for i := 1; i+1 < n; i++ {
			out = append(out, elem(0), elem(i), elem(i+1))
		}
		return gfx.Triangles, out
	}
	return gfx.Triangles, indices
}

func vec3s(in [][3]float32) []math3d.Vec3 {
	out := make([]math3d.Vec3, len(in))
	for i, v := range in {
		out[i] = math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
	}
	return out
}
