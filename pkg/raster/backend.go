// Package raster is a software implementation of render.Backend. It
// rasterizes points, lines and triangles into a Framebuffer with a depth
// buffer, face culling, color masking and alpha blending, and shades them
// with a small set of built-in programs selected by shader name.
package raster

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/render"
)

// MaxTextureUnits is the number of texture units a program can sample.
const MaxTextureUnits = 16

// Errors recorded by invalid calls and reported through Err.
var (
	ErrNoProgram      = errors.New("raster: no program in use")
	ErrUnknownProgram = errors.New("raster: unknown program")
	ErrTextureUnit    = errors.New("raster: texture unit out of range")
	ErrIndexRange     = errors.New("raster: vertex index out of range")
	ErrMissingUniform = errors.New("raster: missing uniform")
)

// state is the fixed-function state set through the Backend methods.
type state struct {
	cull       render.CullMode
	depthTest  bool
	depthWrite bool
	mask       [4]bool
	pointSize  float64
	lineWidth  float64
	blend      bool
	src, dst   gfx.BlendFactor
}

func defaultState() state {
	return state{
		cull:       render.CullBack,
		depthTest:  true,
		depthWrite: true,
		mask:       [4]bool{true, true, true, true},
		pointSize:  1,
		lineWidth:  1,
		src:        gfx.BlendOne,
		dst:        gfx.BlendZero,
	}
}

// Stats counts the work done since the last ResetStats.
type Stats struct {
	Draws     int
	Triangles int
	Lines     int
	Points    int
	Fragments int // fragments that passed the depth test
}

// Backend draws into a Framebuffer. It is not safe for concurrent use.
type Backend struct {
	fb    *Framebuffer
	depth []float64

	st       state
	shader   *gfx.Shader
	prog     *program
	uniforms map[string]any
	units    [MaxTextureUnits]*gfx.Texture
	resident map[*gfx.Texture]struct{}

	err   error
	log   *zap.Logger
	stats Stats
}

var _ render.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger used for invalid calls.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// New creates a backend drawing into fb.
func New(fb *Framebuffer, opts ...Option) *Backend {
	b := &Backend{
		fb:       fb,
		st:       defaultState(),
		uniforms: make(map[string]any),
		resident: make(map[*gfx.Texture]struct{}),
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(b)
	}
	b.depth = make([]float64, fb.Width*fb.Height)
	b.clearDepth()
	return b
}

// Framebuffer returns the color target.
func (b *Backend) Framebuffer() *Framebuffer { return b.fb }

// Resize changes the framebuffer and depth buffer dimensions.
func (b *Backend) Resize(width, height int) {
	b.fb.Resize(width, height)
	n := width * height
	if cap(b.depth) < n {
		b.depth = make([]float64, n)
	}
	b.depth = b.depth[:n]
	b.clearDepth()
}

// Depth returns the depth buffer value at (x, y) in the 0-1 range, or +Inf
// where nothing has been drawn.
func (b *Backend) Depth(x, y int) float64 {
	if x < 0 || x >= b.fb.Width || y < 0 || y >= b.fb.Height {
		return math.Inf(1)
	}
	return b.depth[y*b.fb.Width+x]
}

// Stats returns the counters since the last ResetStats.
func (b *Backend) Stats() Stats { return b.stats }

// ResetStats zeroes the counters.
func (b *Backend) ResetStats() { b.stats = Stats{} }

func (b *Backend) clearDepth() {
	n := len(b.depth)
	if n == 0 {
		return
	}
	b.depth[0] = math.Inf(1)
	for i := 1; i < n; i *= 2 {
		copy(b.depth[i:], b.depth[:i])
	}
}

// fail records the first error until Err is called.
func (b *Backend) fail(err error) {
	b.log.Debug("invalid backend call", zap.Error(err))
	if b.err == nil {
		b.err = err
	}
}

// Err returns and clears the first error recorded since the last call.
func (b *Backend) Err() error {
	err := b.err
	b.err = nil
	return err
}

func (b *Backend) Clear(c gfx.Color, depth bool) {
	if b.st.mask == [4]bool{true, true, true, true} {
		b.fb.Clear(c)
	} else {
		for i, p := range b.fb.Pixels {
			b.fb.Pixels[i] = b.masked(p, c)
		}
	}
	if depth {
		b.clearDepth()
	}
}

func (b *Backend) SetCullFace(m render.CullMode) { b.st.cull = m }
func (b *Backend) SetDepthTest(on bool)          { b.st.depthTest = on }
func (b *Backend) SetDepthWrite(on bool)         { b.st.depthWrite = on }
func (b *Backend) SetBlend(on bool)              { b.st.blend = on }

func (b *Backend) SetColorMask(r, g, bl, a bool) {
	b.st.mask = [4]bool{r, g, bl, a}
}

func (b *Backend) SetPointSize(size float64) {
	if size <= 0 {
		b.fail(fmt.Errorf("raster: point size %v", size))
		return
	}
	b.st.pointSize = size
}

func (b *Backend) SetLineWidth(width float64) {
	if width <= 0 {
		b.fail(fmt.Errorf("raster: line width %v", width))
		return
	}
	b.st.lineWidth = width
}

func (b *Backend) SetBlendFunc(src, dst gfx.BlendFactor) {
	b.st.src, b.st.dst = src, dst
}

// UseProgram selects the built-in program named like the shader. Uniform
// values do not survive a program change.
func (b *Backend) UseProgram(s *gfx.Shader) {
	clear(b.uniforms)
	b.shader, b.prog = nil, nil
	if s == nil {
		return
	}
	p, ok := programs[s.Name]
	if !ok || !s.Compiled() {
		b.fail(fmt.Errorf("%w: %q", ErrUnknownProgram, s.Name))
		return
	}
	b.shader, b.prog = s, p
}

func (b *Backend) SetUniform(name string, v any) {
	if b.prog == nil {
		b.fail(fmt.Errorf("%w: set %s", ErrNoProgram, name))
		return
	}
	b.uniforms[name] = v
}

// BindTexture attaches tex to a unit. The texture stays resident until
// Release is called for it.
func (b *Backend) BindTexture(unit int, tex *gfx.Texture) {
	if unit < 0 || unit >= MaxTextureUnits {
		b.fail(fmt.Errorf("%w: %d", ErrTextureUnit, unit))
		return
	}
	b.units[unit] = tex
	if tex != nil {
		b.resident[tex] = struct{}{}
	}
}

// Release drops a texture from the backend, unbinding it from every unit.
func (b *Backend) Release(tex *gfx.Texture) {
	delete(b.resident, tex)
	for i, t := range b.units {
		if t == tex {
			b.units[i] = nil
		}
	}
}

// Resident returns the number of textures bound since they were last
// released.
func (b *Backend) Resident() int { return len(b.resident) }

// DrawGeometry runs the current program over every primitive of g.
func (b *Backend) DrawGeometry(g *gfx.Geometry) {
	if b.prog == nil {
		b.fail(fmt.Errorf("%w: draw %s", ErrNoProgram, g.Name))
		return
	}
	n := len(g.Positions)
	for _, i := range g.Indices {
		if int(i) >= n {
			b.fail(fmt.Errorf("%w: %s index %d of %d vertices", ErrIndexRange, g.Name, i, n))
			return
		}
	}
	u, err := b.readUniforms()
	if err != nil {
		b.fail(err)
		return
	}
	b.stats.Draws++

	d := drawCall{b: b, g: g, u: u, prog: b.prog}
	switch g.Primitive {
	case gfx.Triangles:
		d.triangles()
	case gfx.Lines:
		d.lines()
	case gfx.Points:
		d.points()
	}
}
