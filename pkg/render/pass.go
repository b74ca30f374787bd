package render

import (
	"github.com/taigrr/arbor/pkg/scene"
)

// FrameInfo is handed to passes at the start and end of a frame.
type FrameInfo struct {
	Number  uint64
	Scene   *scene.Scene
	Camera  scene.ID
	View    scene.View
	Backend Backend

	// Frame is nil during Begin and holds the finished draw list during End.
	Frame *Frame
}

// Pass is an auxiliary renderer hooked into every frame. Begin runs before
// any scene geometry is drawn and End after all of it, in the order passes
// were given. Disabled passes are skipped.
type Pass interface {
	Name() string
	Enabled() bool
	Begin(info *FrameInfo) error
	End(info *FrameInfo) error
}

// FuncPass adapts a pair of functions to a Pass. Either may be nil.
type FuncPass struct {
	name     string
	disabled bool
	begin    func(*FrameInfo) error
	end      func(*FrameInfo) error
}

var _ Pass = (*FuncPass)(nil)

// PassFunc creates an enabled pass from begin and end hooks.
func PassFunc(name string, begin, end func(*FrameInfo) error) *FuncPass {
	return &FuncPass{name: name, begin: begin, end: end}
}

func (p *FuncPass) Name() string       { return p.name }
func (p *FuncPass) Enabled() bool      { return !p.disabled }
func (p *FuncPass) SetEnabled(on bool) { p.disabled = !on }

func (p *FuncPass) Begin(info *FrameInfo) error {
	if p.begin == nil {
		return nil
	}
	return p.begin(info)
}

func (p *FuncPass) End(info *FrameInfo) error {
	if p.end == nil {
		return nil
	}
	return p.end(info)
}
