package renderer

import (
	"image/color"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/linkfield/camera"
)

// RaylibCanvas draws onto the current raylib render target, mapping field
// coordinates to the screen through a camera.
// Must be used between rl.BeginDrawing and rl.EndDrawing.
type RaylibCanvas struct {
	cam        *camera.Camera
	offX, offY float64
}

// NewRaylibCanvas creates a canvas viewed through cam.
func NewRaylibCanvas(cam *camera.Camera) *RaylibCanvas {
	return &RaylibCanvas{cam: cam}
}

// Translate offsets every later draw call.
func (c *RaylibCanvas) Translate(dx, dy float64) {
	c.offX += dx
	c.offY += dy
}

func (c *RaylibCanvas) project(x, y float64) rl.Vector2 {
	sx, sy := c.cam.WorldToScreen(float32(x+c.offX), float32(y+c.offY))
	return rl.Vector2{X: sx, Y: sy}
}

// FillRect fills an axis-aligned rectangle.
func (c *RaylibCanvas) FillRect(x, y, w, h float64, col color.RGBA) {
	size := rl.Vector2{X: c.cam.Scale(float32(w)), Y: c.cam.Scale(float32(h))}
	rl.DrawRectangleV(c.project(x, y), size, rlColor(col))
}

// FillCircle fills a disc. Discs outside the view are culled.
func (c *RaylibCanvas) FillCircle(x, y, r float64, col color.RGBA) {
	if !c.cam.IsVisible(float32(x+c.offX), float32(y+c.offY), float32(r)) {
		return
	}
	rl.DrawCircleV(c.project(x, y), c.cam.Scale(float32(r)), rlColor(col))
}

// StrokeLine draws a one pixel wide line.
func (c *RaylibCanvas) StrokeLine(x1, y1, x2, y2 float64, col color.RGBA) {
	rl.DrawLineEx(c.project(x1, y1), c.project(x2, y2), 1, rlColor(col))
}

func rlColor(c color.RGBA) rl.Color {
	return rl.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}
