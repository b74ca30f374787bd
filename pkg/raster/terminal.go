package raster

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/arbor/pkg/gfx"
)

// Draw writes the framebuffer to a terminal screen. Every cell shows two
// framebuffer rows with an upper half block: the foreground is the top
// pixel and the background the bottom one.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		y := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.Pixel(x, y)),
					Bg: cellColor(fb.Pixel(x, y+1)),
				},
			})
		}
	}
}

// cellColor maps fully transparent pixels to the terminal default.
func cellColor(c gfx.Color) color.Color {
	if c.A == 0 {
		return nil
	}
	return c
}
