package ui

import (
	"github.com/dustin/go-humanize"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/game"
)

// Inspector renders the selected agent's panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Draw renders the inspector for agent e. It returns false when e is no
// longer a living agent, so the caller can drop the selection.
func (ins *Inspector) Draw(g *game.Game, e ecs.Entity) bool {
	agent, ok := g.Agent(e)
	if !ok {
		return false
	}
	beh, _ := g.Behavior(e)

	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2
	x := ins.x + padding

	r.DrawPanel(ins.x, ins.y, ins.width, 250)
	y := ins.y + padding

	rl.DrawText(g.Name(e), x, y, 18, r.Theme.FactionColor(agent.Faction))
	y += r.Theme.LineHeight + 6

	y = r.DrawLabelValue(x, y, "State", beh.State.String())
	y += 4

	fields := components.AgentFieldDescriptors()
	for _, group := range components.AgentGroups() {
		y = r.DrawSectionHeader(x, y, groupTitle(group))
		for _, fd := range fields {
			if fd.Group != group {
				continue
			}
			value := components.GetAgentValue(&agent, fd.ID)
			y = r.DrawField(x, y, fd, value, agent.MaxHealth(), contentWidth)
		}
		y += 4
	}

	if life, ok := g.Lifetime(e); ok {
		y = r.DrawSectionHeader(x, y, "Record")
		y = r.DrawLabelValue(x, y, "Born", "step "+humanize.Comma(int64(life.BirthStep)))
		y = r.DrawLabelValue(x, y, "Kills", humanize.Comma(int64(life.Kills)))
		r.DrawLabelValue(x, y, "Children", humanize.Comma(int64(life.Children)))
	}
	return true
}

func groupTitle(group string) string {
	switch group {
	case "vitals":
		return "Vitals"
	case "growth":
		return "Growth"
	default:
		return group
	}
}
