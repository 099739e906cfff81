package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/config"
	"github.com/pthm-cable/missions/game"
)

// Loop owns the engine. It advances it on a fixed-rate ticker and applies
// client commands between ticks, so the engine only ever runs on one goroutine.
type Loop struct {
	g   *game.Game
	hub *Hub

	interval       time.Duration
	dt             float32
	broadcastEvery int

	announced bool // finished message sent for the current run
}

// NewLoop creates a loop driving g at cfg.TickHz.
func NewLoop(g *game.Game, hub *Hub, cfg config.ServerConfig, dt float32) *Loop {
	hz := cfg.TickHz
	if hz < 1 {
		hz = 60
	}
	return &Loop{
		g:              g,
		hub:            hub,
		interval:       time.Second / time.Duration(hz),
		dt:             dt,
		broadcastEvery: max(cfg.BroadcastEvery, 1),
	}
}

// Run ticks the engine until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	slog.Info("loop_started", "interval", l.interval.String())

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("loop_stopped", "step", l.g.CurrentStep())
			return
		case req := <-l.hub.requests:
			l.handle(req)
		case <-ticker.C:
			l.step()
		}
	}
}

func (l *Loop) handle(req request) {
	msg := l.Apply(req.cmd)
	if req.reply != nil {
		req.reply <- msg
	}
	if req.client != nil {
		l.hub.SendTo(req.client, msg)
	}
}

// step advances the engine once and publishes what changed.
func (l *Loop) step() {
	before := l.g.CurrentStep()
	l.g.Tick(l.dt)
	now := l.g.CurrentStep()
	if now == before {
		return
	}

	if now%l.broadcastEvery == 0 {
		stats := l.g.Stats()
		l.hub.Broadcast(Message{Type: MsgStats, OK: true, Stats: &stats})
	}
	l.announce()
}

// announce broadcasts the run summary once per run after termination.
func (l *Loop) announce() {
	if l.announced || !l.g.IsTerminated() {
		return
	}
	summary, ok := l.g.LastSummary()
	if !ok {
		return
	}
	l.announced = true
	stats := l.g.Stats()
	l.hub.Broadcast(Message{Type: MsgFinished, OK: true, Stats: &stats, Summary: &summary})
}

// Apply executes one command against the engine and returns the reply.
func (l *Loop) Apply(cmd Command) Message {
	msg := Message{Type: MsgAck, Command: cmd.Type, OK: true}
	fail := func(reason string) {
		msg.Type = MsgError
		msg.OK = false
		msg.Error = reason
	}

	switch cmd.Type {
	case CmdReset:
		maxSteps := cmd.MaxSteps
		if maxSteps == 0 {
			maxSteps = l.g.MaxSteps()
		}
		l.g.ResetWithSettings(cmd.Guarani, cmd.Jesuit, maxSteps)
		l.announced = false
	case CmdPause:
		if !l.g.SetPaused(cmd.Paused) {
			fail("run has terminated; reset to continue")
		}
	case CmdSpeed:
		l.g.SetSpeedMultiplier(cmd.Speed)
	case CmdMaxSteps:
		l.g.SetMaxSteps(cmd.MaxSteps)
	case CmdAdd, CmdRemove:
		f, ok := components.ParseFaction(cmd.Faction)
		if !ok {
			fail("unknown faction " + cmd.Faction)
			break
		}
		if cmd.Type == CmdAdd && !l.g.AddAgent(f) {
			fail(f.String() + " population is at its cap")
		}
		if cmd.Type == CmdRemove && !l.g.RemoveAgent(f) {
			fail(f.String() + " population is empty")
		}
	case CmdStats:
		msg.Type = MsgStats
	case CmdSnapshot:
		snap := l.g.Snapshot()
		msg.Type = MsgSnapshot
		msg.Snapshot = &snap
	default:
		fail("unknown command " + cmd.Type)
	}

	stats := l.g.Stats()
	msg.Stats = &stats
	return msg
}
