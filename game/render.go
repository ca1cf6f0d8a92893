package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	panelWidth  = 240
	panelMargin = 10

	// Slider range for the attractor pull
	minAcceleration = 0
	maxAcceleration = 0.1
)

// Update handles input and delivers this repaint's frame signals.
func (g *Game) Update() {
	if !g.headless {
		g.handleInput()
	}
	g.Frame()
}

// Draw renders the field, HUD and control panel to the window.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	g.Render(g.canvas)
	g.drawHUD()
	g.drawControlPanel()

	rl.EndDrawing()
	g.perfCollector.RecordFrame()
}

// drawHUD renders tick and population counters.
func (g *Game) drawHUD() {
	rl.DrawText(fmt.Sprintf("Tick: %d", g.tick), 10, 10, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Particles: %d  Links: %d", g.index.Len(), len(g.linker.Links())), 10, 35, 20, rl.White)
	rl.DrawText(fmt.Sprintf("Speed: %dx  [</>]  FPS: %d", g.stepsPerUpdate, rl.GetFPS()), 10, 60, 20, rl.White)
	if g.scheduler.State() == StatePaused {
		rl.DrawText("PAUSED", 10, 85, 20, rl.Yellow)
	}
}

// drawControlPanel renders the raygui controls in the top right corner.
func (g *Game) drawControlPanel() {
	x := g.screenWidth - panelWidth - panelMargin
	y := float32(panelMargin)
	half := float32(panelWidth-panelMargin) / 2

	paused := g.scheduler.State() == StatePaused
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 30}, toggleText(paused, "Resume", "Pause")) {
		g.TogglePause()
	}
	if gui.Button(rl.Rectangle{X: x + half + panelMargin, Y: y, Width: half, Height: 30}, toggleText(g.showGrid, "Hide grid", "Show grid")) {
		g.ToggleGrid()
	}
	y += 45

	strength := float32(g.field.Strength())
	rl.DrawText("Acceleration", int32(x), int32(y), 14, rl.LightGray)
	y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: y, Width: panelWidth - 70, Height: 20},
		"", "",
		strength, minAcceleration, maxAcceleration,
	)
	rl.DrawText(fmt.Sprintf("%.3f", strength), int32(x+panelWidth-60), int32(y+2), 16, rl.LightGray)
	if next != strength {
		g.SetAcceleration(float64(next))
	}
}

func toggleText(on bool, onText, offText string) string {
	if on {
		return onText
	}
	return offText
}
