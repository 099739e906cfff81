package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/game"
	"github.com/pthm-cable/missions/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title string
	Stats game.Stats
	FPS   int32
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	t := h.renderer.Theme
	s := data.Stats

	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(fmt.Sprintf("Guarani: %d", s.Guarani), 10, 35, 16, t.Guarani)
	rl.DrawText(fmt.Sprintf("Jesuit: %d", s.Jesuit), 130, 35, 16, t.Jesuit)

	rl.DrawText(
		fmt.Sprintf("Step: %s / %s | Speed: %.2gx | FPS: %d",
			humanize.Comma(int64(s.Step)), humanize.Comma(int64(s.MaxSteps)), s.Speed, data.FPS),
		10, 55, 16, rl.LightGray,
	)

	rl.DrawText(
		fmt.Sprintf("Wood: %d | Soy: %d | Mate: %d",
			s.ActiveResources[components.ResourceWood],
			s.ActiveResources[components.ResourceSoy],
			s.ActiveResources[components.ResourceMate]),
		10, 75, 14, rl.Gray,
	)

	rl.DrawText(statusText(s), 10, 95, 16, rl.Yellow)
}

// statusText is the run status line: running, paused, or the final outcome.
func statusText(s game.Stats) string {
	switch {
	case s.Terminated:
		return "Winner: " + s.Winner
	case s.Paused:
		return "PAUSED"
	default:
		return "Running"
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the per-phase tick timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
	}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Tick Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s",
		stats.AvgTickDuration.Round(time.Microsecond),
		stats.MaxTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	for ph := range telemetry.NumPhases {
		phase := telemetry.Phase(ph)
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %6s %5.1f%%", phase.String(), stats.PhaseAvg[phase].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
