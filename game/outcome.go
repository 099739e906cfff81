package game

import "github.com/pthm-cable/missions/components"

// Reason records why a run terminated.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonTime
	ReasonExtinction
)

// String returns the reason name.
func (r Reason) String() string {
	switch r {
	case ReasonTime:
		return "time"
	case ReasonExtinction:
		return "extinction"
	default:
		return "none"
	}
}

// Outcome is the result of a run, or ReasonNone while it is in progress.
type Outcome struct {
	Reason Reason
	Winner components.Faction
	Draw   bool
}

// String renders the outcome: "Guarani (time)", "Draw (time)", "Jesuit",
// "Draw (extinction)" and so on, or "-" while the run is in progress.
func (o Outcome) String() string {
	switch o.Reason {
	case ReasonTime:
		if o.Draw {
			return "Draw (time)"
		}
		return o.Winner.String() + " (time)"
	case ReasonExtinction:
		if o.Draw {
			return "Draw (extinction)"
		}
		return o.Winner.String()
	default:
		return "-"
	}
}

// WinnerName returns the winning faction name, "draw", or "" in progress.
func (o Outcome) WinnerName() string {
	switch {
	case o.Reason == ReasonNone:
		return ""
	case o.Draw:
		return "draw"
	default:
		return o.Winner.String()
	}
}

// Outcome determines the result from the termination reason and the
// current population sizes.
func (g *Game) Outcome() Outcome {
	o := Outcome{Reason: g.reason}
	if g.reason == ReasonNone {
		return o
	}

	ng := g.GuaraniCount()
	nj := g.JesuitCount()
	switch {
	case ng > nj:
		o.Winner = components.FactionGuarani
	case nj > ng:
		o.Winner = components.FactionJesuit
	default:
		o.Draw = true
	}
	return o
}

// Winner returns the outcome as display text, "-" while in progress.
func (g *Game) Winner() string {
	return g.Outcome().String()
}
