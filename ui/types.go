// Package ui is the raylib viewer for the simulation. It draws the world,
// forwards slider and button input to the engine as commands, and polls the
// engine's read-only queries for its panels.
package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/missions/components"
)

// Theme holds UI styling constants.
type Theme struct {
	Background     rl.Color
	WorldBg        rl.Color
	WorldBorder    rl.Color
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Guarani        rl.Color
	Jesuit         rl.Color
	Wood           rl.Color
	Soy            rl.Color
	Mate           rl.Color
	Selection      rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Background:     rl.Color{R: 12, G: 16, B: 14, A: 255},
		WorldBg:        rl.Color{R: 34, G: 52, B: 36, A: 255},
		WorldBorder:    rl.Color{R: 90, G: 110, B: 90, A: 255},
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillMedium:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:    rl.Color{R: 100, G: 200, B: 100, A: 255},
		Guarani:        rl.Color{R: 230, G: 160, B: 60, A: 255},
		Jesuit:         rl.Color{R: 90, G: 120, B: 230, A: 255},
		Wood:           rl.Color{R: 140, G: 90, B: 50, A: 255},
		Soy:            rl.Color{R: 220, G: 210, B: 120, A: 255},
		Mate:           rl.Color{R: 80, G: 190, B: 90, A: 255},
		Selection:      rl.White,
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// FactionColor returns the draw color for a faction.
func (t Theme) FactionColor(f components.Faction) rl.Color {
	if f == components.FactionJesuit {
		return t.Jesuit
	}
	return t.Guarani
}

// ResourceColor returns the draw color for a resource kind.
func (t Theme) ResourceColor(k components.ResourceKind) rl.Color {
	switch k {
	case components.ResourceWood:
		return t.Wood
	case components.ResourceSoy:
		return t.Soy
	default:
		return t.Mate
	}
}
