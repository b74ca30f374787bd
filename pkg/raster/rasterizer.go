package raster

import (
	"math"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/math3d"
	"github.com/taigrr/arbor/pkg/render"
)

// vertex is a shaded vertex in clip space.
type vertex struct {
	clip  math3d.Vec4
	color rgba
	uv    math3d.Vec2
}

func lerpVertex(a, b vertex, t float64) vertex {
	return vertex{
		clip:  a.clip.Lerp(b.clip, t),
		color: a.color.add(b.color.add(a.color.scale(-1)).scale(t)),
		uv:    math3d.V2(a.uv.X+(b.uv.X-a.uv.X)*t, a.uv.Y+(b.uv.Y-a.uv.Y)*t),
	}
}

// nearDist is the signed distance to the near clip plane (z = -w).
func nearDist(v vertex) float64 { return v.clip.Z + v.clip.W }

// screenVertex holds a vertex after the perspective divide.
type screenVertex struct {
	x, y  float64 // pixels, y down
	z     float64 // depth in 0-1
	invW  float64
	color rgba
	uv    math3d.Vec2
}

func (d *drawCall) toScreen(v vertex) screenVertex {
	invW := 1 / v.clip.W
	w, h := float64(d.b.fb.Width), float64(d.b.fb.Height)
	return screenVertex{
		x:     (v.clip.X*invW + 1) * 0.5 * w,
		y:     (1 - v.clip.Y*invW) * 0.5 * h,
		z:     (v.clip.Z*invW + 1) * 0.5,
		invW:  invW,
		color: v.color,
		uv:    v.uv,
	}
}

// drawCall is one DrawGeometry invocation.
type drawCall struct {
	b    *Backend
	g    *gfx.Geometry
	u    *uniforms
	prog *program
}

func (d *drawCall) base(i int) rgba {
	c := d.u.color
	if i < len(d.g.Colors) {
		c = c.mul(fromColor(d.g.Colors[i]))
	}
	return c
}

func (d *drawCall) uv(i int) math3d.Vec2 {
	if i < len(d.g.UVs) {
		return d.g.UVs[i]
	}
	return math3d.Vec2{}
}

func (d *drawCall) normal(i int) math3d.Vec3 {
	if i < len(d.g.Normals) {
		return d.u.normal.MulVec3(d.g.Normals[i])
	}
	return math3d.Vec3{}
}

// vertex runs the vertex stage for vertex i with the given world normal.
func (d *drawCall) vertex(i int, normal math3d.Vec3) vertex {
	p := d.g.Positions[i]
	color := d.base(i)
	if d.prog.lit {
		color = d.u.shade(color, d.u.model.MulVec3(p), normal)
	}
	return vertex{
		clip:  d.u.mvp.MulVec4(math3d.V4FromV3(p, 1)),
		color: color,
		uv:    d.uv(i),
	}
}

func (d *drawCall) triangles() {
	g := d.g
	for e := 0; e+2 < g.ElementCount(); e += 3 {
		idx := [3]int{g.Element(e), g.Element(e + 1), g.Element(e + 2)}

		var face math3d.Vec3
		if d.prog.lit {
			w0 := d.u.model.MulVec3(g.Positions[idx[0]])
			w1 := d.u.model.MulVec3(g.Positions[idx[1]])
			w2 := d.u.model.MulVec3(g.Positions[idx[2]])
			face = w1.Sub(w0).Cross(w2.Sub(w0))
		}
		var tri [3]vertex
		for k, i := range idx {
			n := face
			if d.prog.smooth {
				if vn := d.normal(i); vn.LenSq() > 1e-18 {
					n = vn
				}
			}
			tri[k] = d.vertex(i, n)
		}
		d.b.stats.Triangles++
		d.clipTriangle(tri)
	}
}

// clipTriangle clips against the near plane and rasterizes the result as a
// fan.
func (d *drawCall) clipTriangle(tri [3]vertex) {
	var poly [4]vertex
	n := 0
	for i := range 3 {
		a, b := tri[i], tri[(i+1)%3]
		da, db := nearDist(a), nearDist(b)
		if da >= 0 {
			poly[n] = a
			n++
		}
		if (da >= 0) != (db >= 0) {
			poly[n] = lerpVertex(a, b, da/(da-db))
			n++
		}
	}
	if n < 3 {
		return
	}
	s0 := d.toScreen(poly[0])
	for i := 1; i+1 < n; i++ {
		d.fillTriangle(s0, d.toScreen(poly[i]), d.toScreen(poly[i+1]))
	}
}

// edgeCoeffs returns A, B, C of the edge function A*x + B*y + C for the
// edge from (x0, y0) to (x1, y1).
func edgeCoeffs(x0, y0, x1, y1 float64) (a, b, c float64) {
	return y0 - y1, x1 - x0, x0*y1 - x1*y0
}

// fillTriangle rasterizes a screen-space triangle with incremental edge
// functions and perspective-correct attributes.
func (d *drawCall) fillTriangle(v0, v1, v2 screenVertex) {
	area2 := (v1.x-v0.x)*(v2.y-v0.y) - (v1.y-v0.y)*(v2.x-v0.x)
	if area2 == 0 {
		return
	}
	// Screen y points down, so counter-clockwise faces have negative area.
	front := area2 < 0
	switch d.b.st.cull {
	case render.CullBack:
		if !front {
			return
		}
	case render.CullFront:
		if front {
			return
		}
	}

	fb := d.b.fb
	minX := max(0, int(math.Floor(min(v0.x, v1.x, v2.x))))
	maxX := min(fb.Width-1, int(math.Ceil(max(v0.x, v1.x, v2.x))))
	minY := max(0, int(math.Floor(min(v0.y, v1.y, v2.y))))
	maxY := min(fb.Height-1, int(math.Ceil(max(v0.y, v1.y, v2.y))))
	if minX > maxX || minY > maxY {
		return
	}

	a0, b0, c0 := edgeCoeffs(v1.x, v1.y, v2.x, v2.y)
	a1, b1, c1 := edgeCoeffs(v2.x, v2.y, v0.x, v0.y)
	a2, b2, c2 := edgeCoeffs(v0.x, v0.y, v1.x, v1.y)
	invArea := 1 / area2

	px, py := float64(minX)+0.5, float64(minY)+0.5
	e0Row := a0*px + b0*py + c0
	e1Row := a1*px + b1*py + c1
	e2Row := a2*px + b2*py + c2

	for y := minY; y <= maxY; y++ {
		e0, e1, e2 := e0Row, e1Row, e2Row
		for x := minX; x <= maxX; x++ {
			w0, w1, w2 := e0*invArea, e1*invArea, e2*invArea
			if w0 >= 0 && w1 >= 0 && w2 >= 0 {
				z := w0*v0.z + w1*v1.z + w2*v2.z
				p0, p1, p2 := w0*v0.invW, w1*v1.invW, w2*v2.invW
				if sum := p0 + p1 + p2; sum != 0 {
					k := 1 / sum
					p0, p1, p2 = p0*k, p1*k, p2*k
					c := blend3(v0.color, v1.color, v2.color, p0, p1, p2)
					if d.prog.textured && d.u.tex != nil {
						u := p0*v0.uv.X + p1*v1.uv.X + p2*v2.uv.X
						v := p0*v0.uv.Y + p1*v1.uv.Y + p2*v2.uv.Y
						c = c.mul(fromColor(d.u.tex.Sample(u, v)))
					}
					d.b.fragment(x, y, z, c)
				}
			}
			e0 += a0
			e1 += a1
			e2 += a2
		}
		e0Row += b0
		e1Row += b1
		e2Row += b2
	}
}

// blend3 interpolates three vertex colors. Equal colors are returned as is,
// since the weights only sum to one up to rounding.
func blend3(c0, c1, c2 rgba, w0, w1, w2 float64) rgba {
	if c0 == c1 && c1 == c2 {
		return c0
	}
	return c0.scale(w0).add(c1.scale(w1)).add(c2.scale(w2))
}

func (d *drawCall) lines() {
	g := d.g
	for e := 0; e+1 < g.ElementCount(); e += 2 {
		i0, i1 := g.Element(e), g.Element(e+1)
		a := d.vertex(i0, d.normal(i0))
		b := d.vertex(i1, d.normal(i1))
		d.b.stats.Lines++

		da, db := nearDist(a), nearDist(b)
		switch {
		case da < 0 && db < 0:
			continue
		case da < 0:
			a = lerpVertex(a, b, da/(da-db))
		case db < 0:
			b = lerpVertex(a, b, da/(da-db))
		}
		d.drawLine(d.toScreen(a), d.toScreen(b))
	}
}

// drawLine walks the segment one pixel at a time, stamping a square brush
// of the current line width.
func (d *drawCall) drawLine(a, b screenVertex) {
	dx, dy := b.x-a.x, b.y-a.y
	steps := int(math.Ceil(math.Max(math.Abs(dx), math.Abs(dy))))
	if steps == 0 {
		steps = 1
	}
	for s := 0; s <= steps; s++ {
		t := float64(s) / float64(steps)
		// Perspective-correct weight of b.
		wa, wb := (1-t)*a.invW, t*b.invW
		pt := 0.0
		if sum := wa + wb; sum != 0 {
			pt = wb / sum
		}
		z := a.z + (b.z-a.z)*t
		c := a.color
		if a.color != b.color {
			c = a.color.add(b.color.add(a.color.scale(-1)).scale(pt))
		}
		d.stamp(a.x+dx*t, a.y+dy*t, z, d.b.st.lineWidth, c)
	}
}

func (d *drawCall) points() {
	g := d.g
	for e := range g.ElementCount() {
		i := g.Element(e)
		v := d.vertex(i, d.normal(i))
		d.b.stats.Points++
		if nearDist(v) < 0 || v.clip.W <= 0 {
			continue
		}
		s := d.toScreen(v)
		d.stamp(s.x, s.y, s.z, d.b.st.pointSize, s.color)
	}
}

// stamp covers a size x size pixel square centered on (cx, cy).
func (d *drawCall) stamp(cx, cy, z, size float64, c rgba) {
	n := max(1, int(math.Round(size)))
	x0 := int(math.Floor(cx - float64(n)/2 + 0.5))
	y0 := int(math.Floor(cy - float64(n)/2 + 0.5))
	for y := y0; y < y0+n; y++ {
		for x := x0; x < x0+n; x++ {
			d.b.fragment(x, y, z, c)
		}
	}
}

// fragment runs the per-fragment tests and writes the result.
func (b *Backend) fragment(x, y int, z float64, c rgba) {
	fb := b.fb
	if x < 0 || x >= fb.Width || y < 0 || y >= fb.Height || z < 0 || z > 1 {
		return
	}
	i := y*fb.Width + x
	if b.st.depthTest && z >= b.depth[i] {
		return
	}
	b.stats.Fragments++
	if b.st.depthWrite {
		b.depth[i] = z
	}
	dst := fb.Pixels[i]
	if b.st.blend {
		d := fromColor(dst)
		c = c.mul(factor(b.st.src, c, d)).add(d.mul(factor(b.st.dst, c, d)))
	}
	fb.Pixels[i] = b.masked(dst, c.color())
}
