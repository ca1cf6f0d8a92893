// Package game wires the simulation systems to a host frame loop.
package game

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/linkfield/camera"
	"github.com/pthm-cable/linkfield/components"
	"github.com/pthm-cable/linkfield/config"
	"github.com/pthm-cable/linkfield/renderer"
	"github.com/pthm-cable/linkfield/systems"
	"github.com/pthm-cable/linkfield/telemetry"
)

// Options configures a game beyond the loaded config.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	OutputDir      string  // Empty disables CSV output
	Headless       bool
	StepsPerUpdate int
}

// Game holds the simulation state and its host-facing controls.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	particleMapper *ecs.Map4[
		components.Position,
		components.Velocity,
		components.Particle,
		components.Cell,
	]
	posFilter *ecs.Filter1[components.Position]
	velFilter *ecs.Filter1[components.Velocity]
	posMap    *ecs.Map[components.Position]

	ids    *systems.IDSource
	index  *systems.SpatialIndex
	motion *systems.MotionSystem
	linker *systems.NeighborLinker
	field  *systems.AccelerationField
	accel  *systems.AccelerationSystem

	scheduler *Scheduler

	// Rendering
	palette renderer.Palette
	canvas  renderer.Canvas
	camera  *camera.Camera

	// State
	tick           int32
	stepsPerUpdate int
	headless       bool
	showGrid       bool

	screenWidth, screenHeight float32

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
}

// NewGame creates a game from cfg. Particles are placed by Start.
// Graphical games draw through raylib; headless games have no canvas until
// SetCanvas is called.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	palette, err := renderer.NewPalette(cfg.Colors)
	if err != nil {
		return nil, fmt.Errorf("parsing colours: %w", err)
	}

	world := ecs.NewWorld()
	fieldW, fieldH := cfg.Derived.FieldW, cfg.Derived.FieldH
	threshold := cfg.Links.MaxDistance

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rand.New(rand.NewSource(opts.Seed)),
		seed:  opts.Seed,
		particleMapper: ecs.NewMap4[
			components.Position,
			components.Velocity,
			components.Particle,
			components.Cell,
		](world),
		posFilter:      ecs.NewFilter1[components.Position](world),
		velFilter:      ecs.NewFilter1[components.Velocity](world),
		posMap:         ecs.NewMap[components.Position](world),
		ids:            systems.NewIDSource(),
		palette:        palette,
		stepsPerUpdate: steps,
		headless:       opts.Headless,
		screenWidth:    float32(cfg.Screen.Width),
		screenHeight:   float32(cfg.Screen.Height),
		logStats:       opts.LogStats,
	}

	g.index = systems.NewSpatialIndex(world, fieldW, fieldH, threshold)
	g.motion = systems.NewMotionSystem(world, systems.Bounds{
		Width:  fieldW,
		Height: fieldH,
		Radius: cfg.Particles.Radius,
	}, g.index)
	g.linker = systems.NewNeighborLinker(world, g.index, g.ids, threshold)
	g.field = systems.NewAccelerationField(fieldW, fieldH, cfg.Attractors.Acceleration)
	g.accel = systems.NewAccelerationSystem(world, g.field)
	g.scheduler = NewScheduler(g.step)

	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(fieldW), float32(fieldH))
	if !opts.Headless {
		g.canvas = renderer.NewRaylibCanvas(g.camera)
	}

	// Telemetry
	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, 1/float64(cfg.Screen.TargetFPS))
	g.perfCollector = telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow)

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output: %w", err)
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		g.outputManager.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	return g, nil
}

// Start places the particles, offsets the canvas by half a pixel so one
// pixel lines land on pixel centres, and schedules the first tick.
// A game can only be started once.
func (g *Game) Start() error {
	err := g.scheduler.Start(func() {
		g.spawnParticles()
		if g.canvas != nil {
			g.canvas.Translate(0.5, 0.5)
		}
	})
	if err != nil {
		return err
	}

	cols, rows := g.index.Dims()
	slog.Info("simulation started",
		"seed", g.seed,
		"particles", g.index.Len(),
		"field_w", g.cfg.Derived.FieldW,
		"field_h", g.cfg.Derived.FieldH,
		"cells_x", cols,
		"cells_y", rows,
	)
	return nil
}

// spawnParticles creates the fixed particle population. Positions are uniform
// inside the walls, per-axis velocities uniform in +/- max/2 rounded to two
// decimals, and groups assigned round-robin.
func (g *Game) spawnParticles() {
	p := g.cfg.Particles
	w, h := g.cfg.Derived.FieldW, g.cfg.Derived.FieldH

	for i := 0; i < p.Count; i++ {
		pos := components.Position{
			X: g.randomCoord(w, p.Radius),
			Y: g.randomCoord(h, p.Radius),
		}
		vel := components.Velocity{
			X: g.randomVelocity(p.MaxVelocity),
			Y: g.randomVelocity(p.MaxVelocity),
		}
		part := components.Particle{ID: g.ids.Next(), Group: i % p.Groups}
		cell := components.Cell{}

		e := g.particleMapper.NewEntity(&pos, &vel, &part, &cell)
		g.index.Assign(e, pos)
	}
}

func (g *Game) randomCoord(size, radius float64) float64 {
	span := size - 2*radius
	if span <= 0 {
		return size / 2
	}
	return radius + g.rng.Float64()*span
}

func (g *Game) randomVelocity(spread float64) float64 {
	return math.Round((g.rng.Float64()-0.5)*spread*100) / 100
}

// step runs a single tick: motion and migration, relink, acceleration.
func (g *Game) step() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseMotion)
	motion := g.motion.Update()

	g.perfCollector.StartPhase(telemetry.PhaseLinks)
	links := g.linker.Relink()

	g.perfCollector.StartPhase(telemetry.PhaseAcceleration)
	g.accel.Update()

	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordMotion(motion.Reflections, motion.Migrations)
	g.collector.RecordLinks(links.Pairs, links.Created, links.Removed)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// Frame delivers stepsPerUpdate frame signals to the scheduler and returns
// how many ticks ran.
func (g *Game) Frame() int {
	ran := 0
	for i := 0; i < g.stepsPerUpdate; i++ {
		if g.scheduler.Frame() {
			ran++
		}
	}
	return ran
}

// UpdateHeadless advances the simulation without touching raylib.
func (g *Game) UpdateHeadless() {
	g.Frame()
}

// Render draws the current state onto c: field, optional overlays,
// particles, then links.
func (g *Game) Render(c renderer.Canvas) {
	w, h := g.cfg.Derived.FieldW, g.cfg.Derived.FieldH
	renderer.DrawField(c, w, h, g.palette.Background)

	if g.showGrid {
		cols, rows := g.index.Dims()
		renderer.DrawGrid(c, w, h, cols, rows, g.palette.Overlay)
		renderer.DrawAttractors(c, g.field.Attractors(), 6, g.palette.Overlay)
	}

	radius := g.cfg.Particles.Radius
	query := g.posFilter.Query()
	for query.Next() {
		renderer.DrawParticle(c, *query.Get(), radius, g.palette.Particle)
	}

	for _, l := range g.linker.Links() {
		renderer.DrawLink(c, *g.posMap.Get(l.From), *g.posMap.Get(l.To), l.Intensity, g.palette.Link)
	}
}

// Pause stops scheduling ticks.
func (g *Game) Pause() {
	if g.scheduler.State() != StateRunning {
		return
	}
	g.scheduler.Pause()
	slog.Info("paused", "tick", g.tick)
}

// Resume restarts scheduling ticks.
func (g *Game) Resume() {
	if g.scheduler.State() != StatePaused {
		return
	}
	g.scheduler.Resume()
	slog.Info("resumed", "tick", g.tick)
}

// TogglePause switches between running and paused.
func (g *Game) TogglePause() {
	if g.scheduler.State() == StatePaused {
		g.Resume()
	} else {
		g.Pause()
	}
}

// SetCanvas replaces the canvas the half-pixel offset is applied to on Start.
func (g *Game) SetCanvas(c renderer.Canvas) {
	g.canvas = c
}

// SetStatsCallback registers a function called with every flushed window.
func (g *Game) SetStatsCallback(fn func(telemetry.WindowStats)) {
	g.statsCallback = fn
}

// SetAcceleration changes the attractor pull strength.
func (g *Game) SetAcceleration(k float64) {
	g.field.SetStrength(k)
}

// ToggleGrid switches the grid and attractor overlay.
func (g *Game) ToggleGrid() {
	g.showGrid = !g.showGrid
}

// Unload closes output files.
func (g *Game) Unload() {
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// State returns the scheduler state.
func (g *Game) State() State {
	return g.scheduler.State()
}

// ParticleCount returns the number of particles.
func (g *Game) ParticleCount() int {
	return g.index.Len()
}

// Links returns the current links. The slice is only valid until the next tick.
func (g *Game) Links() []components.Link {
	return g.linker.Links()
}
