package server

import (
	"github.com/pthm-cable/missions/game"
	"github.com/pthm-cable/missions/telemetry"
)

// Command types accepted from clients.
const (
	CmdReset    = "reset"
	CmdPause    = "pause"
	CmdSpeed    = "speed"
	CmdMaxSteps = "max_steps"
	CmdAdd      = "add"
	CmdRemove   = "remove"
	CmdStats    = "stats"
	CmdSnapshot = "snapshot"
)

// Message types sent to clients.
const (
	MsgAck      = "ack"
	MsgError    = "error"
	MsgStats    = "stats"
	MsgSnapshot = "snapshot"
	MsgFinished = "finished"
)

// Command is an incoming request from a client.
type Command struct {
	Type     string  `json:"type"`
	Guarani  int     `json:"guarani,omitempty"`
	Jesuit   int     `json:"jesuit,omitempty"`
	MaxSteps int     `json:"max_steps,omitempty"`
	Paused   bool    `json:"paused,omitempty"`
	Speed    float32 `json:"speed,omitempty"`
	Faction  string  `json:"faction,omitempty"`
}

// ReadOnly reports whether the command only queries the run. Observers may
// send read-only commands; everything else is reserved for the operator.
func (c Command) ReadOnly() bool {
	return c.Type == CmdStats || c.Type == CmdSnapshot
}

// Message is an outgoing reply or broadcast.
type Message struct {
	Type     string                `json:"type"`
	Command  string                `json:"command,omitempty"`
	OK       bool                  `json:"ok"`
	Error    string                `json:"error,omitempty"`
	Stats    *game.Stats           `json:"stats,omitempty"`
	Snapshot *game.Snapshot        `json:"snapshot,omitempty"`
	Summary  *telemetry.RunSummary `json:"summary,omitempty"`
}

// request carries a command to the loop goroutine. The reply goes to client
// through the hub, or to reply, whichever is set.
type request struct {
	cmd    Command
	client *Client
	reply  chan Message
}
