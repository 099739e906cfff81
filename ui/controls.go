package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/game"
)

// Settings holds the slider values that apply on the next reset.
type Settings struct {
	Guarani  int
	Jesuit   int
	MaxSteps int
}

// Actions is the set of commands the controls produced this frame.
type Actions struct {
	Reset       bool
	TogglePause bool
	Speed       float32 // 0 = unchanged
	MaxSteps    int     // 0 = unchanged
	Add         [components.NumFactions]bool
	Remove      [components.NumFactions]bool
}

// Apply forwards the actions to the engine. The step limit applies live;
// population sizes only apply on reset.
func Apply(g *game.Game, s Settings, a Actions) {
	if a.MaxSteps > 0 && a.MaxSteps != g.MaxSteps() {
		g.SetMaxSteps(a.MaxSteps)
	}
	if a.Speed > 0 {
		g.SetSpeedMultiplier(a.Speed)
	}
	for f := range components.NumFactions {
		if a.Add[f] {
			g.AddAgent(components.Faction(f))
		}
		if a.Remove[f] {
			g.RemoveAgent(components.Faction(f))
		}
	}
	if a.TogglePause {
		g.SetPaused(!g.IsPaused())
	}
	if a.Reset {
		g.ResetWithSettings(s.Guarani, s.Jesuit, s.MaxSteps)
	}
}

// ControlsPanel renders the right-side sliders and buttons.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32

	settings      Settings
	maxPerFaction int
	stepLimit     int
	minSpeed      float32
	maxSpeed      float32
}

// NewControlsPanel creates a controls panel seeded from the engine's current
// configuration.
func NewControlsPanel(x, y, width int32, g *game.Game) *ControlsPanel {
	cfg := g.Config()
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		settings: Settings{
			Guarani:  cfg.Population.Guarani,
			Jesuit:   cfg.Population.Jesuit,
			MaxSteps: g.MaxSteps(),
		},
		maxPerFaction: g.MaxPerFaction(),
		stepLimit:     max(2000, g.MaxSteps()),
		minSpeed:      float32(cfg.Simulation.MinSpeed),
		maxSpeed:      float32(cfg.Simulation.MaxSpeed),
	}
}

// Settings returns the current slider values.
func (c *ControlsPanel) Settings() Settings {
	return c.settings
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// Draw renders the panel and returns the actions the user triggered.
func (c *ControlsPanel) Draw(stats game.Stats) Actions {
	var a Actions
	r := c.renderer
	padding := r.Theme.Padding

	r.DrawPanel(c.x, c.y, c.width, 330)

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2)

	rl.DrawText("Simulation", int32(x), int32(y), 16, rl.White)
	y += 24

	c.settings.Guarani = c.intSlider(x, &y, w, "Guarani", c.settings.Guarani, 0, c.maxPerFaction)
	c.settings.Jesuit = c.intSlider(x, &y, w, "Jesuit", c.settings.Jesuit, 0, c.maxPerFaction)

	steps := c.intSlider(x, &y, w, "Max steps", c.settings.MaxSteps, 1, c.stepLimit)
	if steps != c.settings.MaxSteps {
		c.settings.MaxSteps = steps
		a.MaxSteps = steps
	}

	rl.DrawText(fmt.Sprintf("Speed %.2fx", stats.Speed), int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	y += 14
	speed := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w - 40, Height: 16}, "", "", stats.Speed, c.minSpeed, c.maxSpeed)
	if speed != stats.Speed {
		a.Speed = speed
	}
	y += 28

	half := (w - 10) / 2
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 26}, "Reset") {
		a.Reset = true
	}
	pauseLabel := "Pause"
	if stats.Paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 26}, pauseLabel) {
		a.TogglePause = true
	}
	y += 36

	for f := range components.NumFactions {
		name := components.Faction(f).String()
		if gui.Button(rl.Rectangle{X: x, Y: y, Width: half, Height: 24}, "+ "+name) {
			a.Add[f] = true
		}
		if gui.Button(rl.Rectangle{X: x + half + 10, Y: y, Width: half, Height: 24}, "- "+name) {
			a.Remove[f] = true
		}
		y += 30
	}

	return a
}

// intSlider draws a labeled integer slider and advances y past it.
func (c *ControlsPanel) intSlider(x float32, y *float32, w float32, label string, value, lo, hi int) int {
	r := c.renderer
	rl.DrawText(label, int32(x), int32(*y), r.Theme.FontSize, r.Theme.LabelColor)
	*y += 14
	v := gui.SliderBar(rl.Rectangle{X: x, Y: *y, Width: w - 40, Height: 16}, "", "", float32(value), float32(lo), float32(hi))
	rl.DrawText(fmt.Sprintf("%d", value), int32(x+w-34), int32(*y+2), r.Theme.FontSize, r.Theme.ValueColor)
	*y += 28
	return int(math.Round(float64(v)))
}
