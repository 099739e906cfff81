package ui

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/camera"
	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/game"
)

const (
	sidePanelWidth = 260
	hudHeight      = 120
	legendHeight   = 36
	agentRadius    = 0.35 // world units
	resourceSize   = 0.4  // world units
	pickRadiusPx   = 10
)

// Viewer owns the window and drives the engine once per frame.
type Viewer struct {
	g     *game.Game
	theme Theme

	hud       *HUD
	controls  *ControlsPanel
	inspector *Inspector
	perfPanel *PerfPanel
	overlays  *OverlayRegistry

	cam          *camera.Camera
	selected     ecs.Entity
	hasSelection bool
}

// NewViewer creates a viewer for g. The window is opened by Run.
func NewViewer(g *game.Game) *Viewer {
	w := int32(g.Config().Screen.Width)
	panelX := w - sidePanelWidth
	return &Viewer{
		g:         g,
		theme:     DefaultTheme(),
		hud:       NewHUD(),
		controls:  NewControlsPanel(panelX, 10, sidePanelWidth-10, g),
		inspector: NewInspector(panelX, 350, sidePanelWidth-10),
		perfPanel: NewPerfPanel(10, hudHeight+10),
		overlays:  NewOverlayRegistry(),
	}
}

// Run opens the window and blocks until it is closed.
func (v *Viewer) Run() {
	cfg := v.g.Config()
	w, h := int32(cfg.Screen.Width), int32(cfg.Screen.Height)

	rl.InitWindow(w, h, "Missions")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	v.cam = camera.New(0, hudHeight, float32(w-sidePanelWidth), float32(h-hudHeight-legendHeight), cfg.Derived.WorldSize32)
	slog.Info("viewer_started", "width", w, "height", h, "zoom", v.cam.Zoom)

	for !rl.WindowShouldClose() {
		v.handleInput()

		v.g.Tick(cfg.Derived.DT32)
		v.g.Perf().RecordFrame()

		stats := v.g.Stats()

		rl.BeginDrawing()
		rl.ClearBackground(v.theme.Background)

		v.drawWorld()
		v.hud.Draw(HUDData{Title: "Missions", Stats: stats, FPS: rl.GetFPS()})
		v.hud.DrawControls(h, "[Space] Pause  [Click] Select  [Wheel/RMB] Zoom/Pan  [Home] Recenter  [+/-] Speed  "+v.overlays.Legend())
		if v.overlays.IsEnabled(OverlayPerf) {
			v.perfPanel.Draw(v.g.Perf().Stats())
		}
		actions := v.controls.Draw(stats)
		if v.hasSelection && !v.inspector.Draw(v.g, v.selected) {
			v.hasSelection = false
		}

		rl.EndDrawing()

		Apply(v.g, v.controls.Settings(), actions)
		if actions.Reset {
			v.hasSelection = false
		}
	}

	slog.Info("viewer_closed", "step", v.g.CurrentStep())
}

// handleInput processes keyboard shortcuts and world clicks.
func (v *Viewer) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		v.g.SetPaused(!v.g.IsPaused())
	}
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		v.g.SetSpeedMultiplier(v.g.SpeedMultiplier() * 2)
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		v.g.SetSpeedMultiplier(v.g.SpeedMultiplier() / 2)
	}

	for key := rl.GetKeyPressed(); key != 0; key = rl.GetKeyPressed() {
		v.overlays.HandleKeyPress(key)
	}

	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}

	mouse := rl.GetMousePosition()
	if !v.cam.Contains(mouse.X, mouse.Y) {
		return
	}
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		v.cam.ZoomAt(mouse.X, mouse.Y, 1+0.1*wheel)
	}
	if rl.IsMouseButtonDown(rl.MouseRightButton) {
		d := rl.GetMouseDelta()
		v.cam.Pan(d.X, d.Y)
	}
	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		wx, wy := v.cam.ScreenToWorld(mouse.X, mouse.Y)
		v.selected, v.hasSelection = v.g.AgentAt(wx, wy, pickRadiusPx/v.cam.Zoom)
	}
}

// drawWorld draws the world bounds, resources, agents and enabled overlays.
func (v *Viewer) drawWorld() {
	cfg := v.g.Config()
	half := float32(cfg.Derived.HalfSize)

	cam := v.cam
	rl.BeginScissorMode(int32(cam.OffsetX), int32(cam.OffsetY), int32(cam.ViewportW), int32(cam.ViewportH))
	defer rl.EndScissorMode()

	x0, y0 := cam.WorldToScreen(-half, half)
	side := 2 * half * cam.Zoom
	rl.DrawRectangle(int32(x0), int32(y0), int32(side), int32(side), v.theme.WorldBg)
	rl.DrawRectangleLines(int32(x0), int32(y0), int32(side), int32(side), v.theme.WorldBorder)

	pool := v.g.Pool()
	size := resourceSize * cam.Zoom
	for _, e := range pool.AvailableResources() {
		pos := pool.Position(e)
		if !cam.IsVisible(pos.X, pos.Y, resourceSize) {
			continue
		}
		sx, sy := cam.WorldToScreen(pos.X, pos.Y)
		rl.DrawRectangleV(rl.Vector2{X: sx - size/2, Y: sy - size/2}, rl.Vector2{X: size, Y: size}, v.theme.ResourceColor(pool.Kind(e)))
	}

	for f := range components.NumFactions {
		faction := components.Faction(f)
		fc := cfg.Faction(f)
		for _, e := range v.g.Population(faction) {
			av, ok := v.g.AgentView(e)
			if !ok || !cam.IsVisible(av.X, av.Y, float32(fc.AttackRange)) {
				continue
			}
			v.drawAgent(e, av, v.theme.FactionColor(faction), float32(fc.AttackRange))
		}
	}
}

func (v *Viewer) drawAgent(e ecs.Entity, av game.AgentView, color rl.Color, attackRange float32) {
	sx, sy := v.cam.WorldToScreen(av.X, av.Y)
	center := rl.Vector2{X: sx, Y: sy}
	radius := agentRadius * v.cam.Zoom

	if v.overlays.IsEnabled(OverlayAttackRange) {
		rl.DrawCircleLinesV(center, attackRange*v.cam.Zoom, rl.Fade(color, 0.35))
	}
	if v.overlays.IsEnabled(OverlayTargets) {
		v.drawTargets(e, center)
	}

	rl.DrawCircleV(center, radius, color)

	// Health ring shrinks from a full circle as the agent is hurt.
	ratio := barRatio(av.Health, 0, av.MaxHealth)
	rl.DrawRing(center, radius+1, radius+3, -90, -90+360*ratio, 24, v.theme.BarFillHigh)

	selected := v.hasSelection && e == v.selected
	if selected {
		rl.DrawCircleLinesV(center, radius+6, v.theme.Selection)
		if v.overlays.IsEnabled(OverlayVision) {
			vision := float32(v.g.Config().Behavior.VisionRadius)
			rl.DrawCircleLinesV(center, vision*v.cam.Zoom, rl.Fade(v.theme.Selection, 0.4))
		}
	}

	label := ""
	switch {
	case v.overlays.IsEnabled(OverlayNames):
		label = av.Name
	case v.overlays.IsEnabled(OverlayStates):
		label = av.State
	}
	if label != "" {
		tw := rl.MeasureText(label, 10)
		rl.DrawText(label, int32(sx)-tw/2, int32(sy-radius)-14, 10, rl.LightGray)
	}
}

// drawTargets draws lines from an agent to its current enemy and resource.
func (v *Viewer) drawTargets(e ecs.Entity, from rl.Vector2) {
	beh, ok := v.g.Behavior(e)
	if !ok {
		return
	}
	if beh.HasEnemy {
		if enemy, ok := v.g.AgentView(beh.Enemy); ok {
			tx, ty := v.cam.WorldToScreen(enemy.X, enemy.Y)
			rl.DrawLineV(from, rl.Vector2{X: tx, Y: ty}, rl.Fade(rl.Red, 0.6))
		}
	}
	if beh.HasResource && v.g.Pool().IsAvailable(beh.Resource) {
		pos := v.g.Pool().Position(beh.Resource)
		tx, ty := v.cam.WorldToScreen(pos.X, pos.Y)
		rl.DrawLineV(from, rl.Vector2{X: tx, Y: ty}, rl.Fade(rl.Yellow, 0.5))
	}
}
