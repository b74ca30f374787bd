package render

import (
	"fmt"

	"github.com/taigrr/arbor/pkg/gfx"
)

// Op names a Backend method.
type Op string

const (
	OpClear        Op = "Clear"
	OpCullFace     Op = "SetCullFace"
	OpDepthTest    Op = "SetDepthTest"
	OpDepthWrite   Op = "SetDepthWrite"
	OpColorMask    Op = "SetColorMask"
	OpPointSize    Op = "SetPointSize"
	OpLineWidth    Op = "SetLineWidth"
	OpBlend        Op = "SetBlend"
	OpBlendFunc    Op = "SetBlendFunc"
	OpUseProgram   Op = "UseProgram"
	OpSetUniform   Op = "SetUniform"
	OpBindTexture  Op = "BindTexture"
	OpDrawGeometry Op = "DrawGeometry"
)

// Call is one recorded backend call. Name holds the uniform, shader or
// geometry name where one applies; Value holds the argument.
type Call struct {
	Op    Op
	Name  string
	Value any
}

func (c Call) String() string {
	if c.Name != "" {
		return fmt.Sprintf("%s(%s, %v)", c.Op, c.Name, c.Value)
	}
	return fmt.Sprintf("%s(%v)", c.Op, c.Value)
}

// Recorder is a Backend that records every call. It draws nothing and is
// used to inspect what a frame would do.
type Recorder struct {
	Calls []Call

	pending []error
}

var _ Backend = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(op Op, name string, v any) {
	r.Calls = append(r.Calls, Call{Op: op, Name: name, Value: v})
}

func (r *Recorder) Clear(c gfx.Color, depth bool) { r.add(OpClear, "", [2]any{c, depth}) }
func (r *Recorder) SetCullFace(m CullMode)        { r.add(OpCullFace, "", m) }
func (r *Recorder) SetDepthTest(on bool)          { r.add(OpDepthTest, "", on) }
func (r *Recorder) SetDepthWrite(on bool)         { r.add(OpDepthWrite, "", on) }
func (r *Recorder) SetColorMask(cr, cg, cb, ca bool) {
	r.add(OpColorMask, "", [4]bool{cr, cg, cb, ca})
}
func (r *Recorder) SetPointSize(size float64)  { r.add(OpPointSize, "", size) }
func (r *Recorder) SetLineWidth(width float64) { r.add(OpLineWidth, "", width) }
func (r *Recorder) SetBlend(on bool)           { r.add(OpBlend, "", on) }
func (r *Recorder) SetBlendFunc(src, dst gfx.BlendFactor) {
	r.add(OpBlendFunc, "", [2]gfx.BlendFactor{src, dst})
}

func (r *Recorder) UseProgram(s *gfx.Shader) {
	name := ""
	if s != nil {
		name = s.Name
	}
	r.add(OpUseProgram, name, s)
}

func (r *Recorder) SetUniform(name string, v any) { r.add(OpSetUniform, name, v) }

func (r *Recorder) BindTexture(unit int, tex *gfx.Texture) {
	name := ""
	if tex != nil {
		name = tex.Name
	}
	r.add(OpBindTexture, name, unit)
}

func (r *Recorder) DrawGeometry(g *gfx.Geometry) { r.add(OpDrawGeometry, g.Name, g) }

// Fail queues an error for Err to report.
func (r *Recorder) Fail(err error) {
	r.pending = append(r.pending, err)
}

// Err reports and clears the oldest queued error.
func (r *Recorder) Err() error {
	if len(r.pending) == 0 {
		return nil
	}
	err := r.pending[0]
	r.pending = r.pending[1:]
	return err
}

// Reset discards recorded calls and queued errors.
func (r *Recorder) Reset() {
	r.Calls = nil
	r.pending = nil
}

// Ops returns the recorded calls matching op, in order.
func (r *Recorder) Ops(op Op) []Call {
	var out []Call
	for _, c := range r.Calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Uniform returns the last value written to a uniform slot.
func (r *Recorder) Uniform(name string) (any, bool) {
	for i := len(r.Calls) - 1; i >= 0; i-- {
		if c := r.Calls[i]; c.Op == OpSetUniform && c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

// Geometries returns the names of drawn geometries in order.
func (r *Recorder) Geometries() []string {
	var out []string
	for _, c := range r.Ops(OpDrawGeometry) {
		out = append(out, c.Name)
	}
	return out
}
