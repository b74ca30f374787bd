package render

import (
	"github.com/taigrr/arbor/pkg/gfx"
	"github.com/taigrr/arbor/pkg/scene"
)

// Frame is the result of one RenderFrame call.
type Frame struct {
	Number uint64
	Camera scene.ID
	Draws  []DrawRecord
	Stats  Stats
}

// DrawRecord describes one issued draw call, in dispatch order.
type DrawRecord struct {
	Node       scene.ID
	Name       string
	Group      string
	DistanceSq float64
	Drawable   gfx.Drawable
}

// Stats counts what happened to the candidates of a frame. Every candidate
// node ends up in exactly one of Invisible, Empty, Culled or Visible.
type Stats struct {
	Candidates int // draw-group members considered
	Invisible  int // hidden by their own flag or an ancestor's
	Empty      int // no valid bounding box
	Culled     int // outside the view frustum
	Visible    int // sorted and dispatched
	Inside     int // visible and wholly inside the frustum; 0 without culling

	Drawn   int // drawables that issued a draw call
	Skipped int // drawables without a shader or compiled program
	Vetoed  int // drawables whose PreDraw returned false

	Lights        int // lights bound to shaders
	BackendErrors int
}

// DrawnNames returns the node names of the draw list in order, one per
// issued draw.
func (f *Frame) DrawnNames() []string {
	names := make([]string, len(f.Draws))
	for i, d := range f.Draws {
		names[i] = d.Name
	}
	return names
}
