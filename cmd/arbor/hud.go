package main

import (
	"fmt"
	"image/color"
	"time"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/arbor/pkg/render"
)

var (
	hudBg     = color.RGBA{0, 0, 0, 255}
	hudFg     = color.RGBA{235, 235, 235, 255}
	hudAccent = color.RGBA{120, 230, 120, 255}
)

// HUD is a render pass that collects frame statistics and overlays them on
// the top and bottom terminal rows.
type HUD struct {
	title     string
	triangles int
	enabled   bool
	status    string

	now     func() time.Time
	fps     float64
	frames  int
	since   time.Time
	stats   render.Stats
	drawn   int
	frameNo uint64
}

var _ render.Pass = (*HUD)(nil)

// NewHUD creates an enabled HUD for a model.
func NewHUD(title string, triangles int) *HUD {
	h := &HUD{title: title, triangles: triangles, enabled: true, now: time.Now}
	h.since = h.now()
	return h
}

func (h *HUD) Name() string       { return "hud" }
func (h *HUD) Enabled() bool      { return h.enabled }
func (h *HUD) Toggle()            { h.enabled = !h.enabled }
func (h *HUD) SetStatus(s string) { h.status = s }

func (h *HUD) Begin(*render.FrameInfo) error { return nil }

// End records the finished frame and updates the frame rate once a second.
func (h *HUD) End(info *render.FrameInfo) error {
	if info.Frame != nil {
		h.stats = info.Frame.Stats
		h.drawn = len(info.Frame.Draws)
		h.frameNo = info.Frame.Number
	}
	h.frames++
	if elapsed := h.now().Sub(h.since); elapsed >= time.Second {
		h.fps = float64(h.frames) / elapsed.Seconds()
		h.frames = 0
		h.since = h.now()
	}
	return nil
}

// Lines returns the text of the top and bottom rows.
func (h *HUD) Lines() (top, bottom string) {
	top = fmt.Sprintf(" %.0f FPS | %s | %d tris ", h.fps, h.title, h.triangles)
	bottom = fmt.Sprintf(" draws %d  visible %d  culled %d  lights %d ",
		h.drawn, h.stats.Visible, h.stats.Culled, h.stats.Lights)
	if h.status != "" {
		bottom += "| " + h.status + " "
	}
	return top, bottom
}

// Draw writes the HUD rows over area. Nothing is drawn when disabled.
func (h *HUD) Draw(scr uv.Screen, area uv.Rectangle) {
	rows := area.Max.Y - area.Min.Y
	if !h.enabled || rows <= 0 {
		return
	}
	top, bottom := h.Lines()
	drawText(scr, area, area.Min.Y, top, hudAccent)
	if rows > 1 {
		drawText(scr, area, area.Max.Y-1, bottom, hudFg)
	}
}

func drawText(scr uv.Screen, area uv.Rectangle, row int, text string, fg color.Color) {
	col := area.Min.X
	for _, r := range text {
		if col >= area.Max.X {
			return
		}
		scr.SetCell(col, row, &uv.Cell{
			Content: string(r),
			Width:   1,
			Style:   uv.Style{Fg: fg, Bg: hudBg},
		})
		col++
	}
}
