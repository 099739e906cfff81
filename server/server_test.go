package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/missions/config"
	"github.com/pthm-cable/missions/game"
)

func init() {
	config.MustInit("")
}

// testConfig returns a fast, combat-free configuration that starts paused.
func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Simulation.StartPaused = true
	cfg.Simulation.MaxSteps = 5
	cfg.Behavior.VisionRadius = 0.001
	cfg.Server.TickHz = 500
	cfg.Server.BroadcastEvery = 1
	return cfg
}

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := testConfig()
	g := game.NewGame(game.Options{Config: cfg, Seed: 1})
	srv := New(g, nil, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		cancel()
		<-done
		ts.Close()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, cmd Command) {
	t.Helper()
	if err := conn.WriteJSON(cmd); err != nil {
		t.Fatalf("write %s: %v", cmd.Type, err)
	}
}

// readUntil reads frames until a message matches, skipping broadcasts.
// A frame may carry several newline-separated messages.
func readUntil(t *testing.T, conn *websocket.Conn, match func(Message) bool) Message {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		for _, line := range bytes.Split(data, []byte{'\n'}) {
			var msg Message
			if err := json.Unmarshal(line, &msg); err != nil {
				t.Fatalf("decode %q: %v", line, err)
			}
			if match(msg) {
				return msg
			}
		}
	}
	t.Fatal("timed out waiting for message")
	return Message{}
}

func reply(command string) func(Message) bool {
	return func(m Message) bool {
		return m.Command == command && (m.Type == MsgAck || m.Type == MsgError)
	}
}

// ---------- WebSocket ----------

func TestServer_RunOverWebSocket(t *testing.T) {
	ts := startServer(t)
	conn := dial(t, ts)

	send(t, conn, Command{Type: CmdReset, Guarani: 2, Jesuit: 3, MaxSteps: 5})
	msg := readUntil(t, conn, reply(CmdReset))
	if !msg.OK || msg.Stats.Guarani != 2 || msg.Stats.Jesuit != 3 || msg.Stats.MaxSteps != 5 {
		t.Fatalf("reset reply = %+v, stats %+v", msg, msg.Stats)
	}

	send(t, conn, Command{Type: CmdAdd, Faction: "guarani"})
	if msg := readUntil(t, conn, reply(CmdAdd)); !msg.OK || msg.Stats.Guarani != 3 {
		t.Errorf("add reply = %+v", msg)
	}

	send(t, conn, Command{Type: CmdRemove, Faction: "Jesuit"})
	if msg := readUntil(t, conn, reply(CmdRemove)); !msg.OK || msg.Stats.Jesuit != 2 {
		t.Errorf("remove reply = %+v", msg)
	}

	send(t, conn, Command{Type: CmdAdd, Faction: "martians"})
	if msg := readUntil(t, conn, reply(CmdAdd)); msg.OK || msg.Type != MsgError {
		t.Errorf("unknown faction reply = %+v, want error", msg)
	}

	send(t, conn, Command{Type: CmdPause, Paused: false})
	if msg := readUntil(t, conn, reply(CmdPause)); !msg.OK {
		t.Fatalf("unpause reply = %+v", msg)
	}

	fin := readUntil(t, conn, func(m Message) bool { return m.Type == MsgFinished })
	if fin.Summary == nil || fin.Summary.Outcome != "Guarani (time)" {
		t.Fatalf("finished = %+v, summary %+v", fin, fin.Summary)
	}
	if fin.Stats.Step != 5 || !fin.Stats.Terminated {
		t.Errorf("final stats = %+v", fin.Stats)
	}

	send(t, conn, Command{Type: CmdPause, Paused: false})
	if msg := readUntil(t, conn, reply(CmdPause)); msg.OK {
		t.Error("unpausing a terminated run should fail")
	}
}

func TestServer_InvalidJSON(t *testing.T) {
	ts := startServer(t)
	conn := dial(t, ts)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	msg := readUntil(t, conn, func(m Message) bool { return m.Type == MsgError })
	if !strings.HasPrefix(msg.Error, "invalid command") {
		t.Errorf("error = %q", msg.Error)
	}
}

func TestServer_SingleOperator(t *testing.T) {
	ts := startServer(t)
	operator := dial(t, ts)

	send(t, operator, Command{Type: CmdReset, Guarani: 2, Jesuit: 2})
	if msg := readUntil(t, operator, reply(CmdReset)); !msg.OK {
		t.Fatalf("operator reset = %+v", msg)
	}

	observer := dial(t, ts)
	send(t, observer, Command{Type: CmdAdd, Faction: "guarani"})
	if msg := readUntil(t, observer, reply(CmdAdd)); msg.OK || msg.Error != "observers cannot change the run" {
		t.Errorf("observer add = %+v, want rejection", msg)
	}
	send(t, observer, Command{Type: CmdStats})
	if msg := readUntil(t, observer, func(m Message) bool { return m.Type == MsgStats }); msg.Stats.Guarani != 2 {
		t.Errorf("observer stats = %+v", msg.Stats)
	}

	// The observer takes over once the operator leaves.
	operator.Close()
	deadline := time.Now().Add(5 * time.Second)
	for {
		send(t, observer, Command{Type: CmdAdd, Faction: "guarani"})
		msg := readUntil(t, observer, reply(CmdAdd))
		if msg.OK {
			if msg.Stats.Guarani != 3 {
				t.Errorf("GuaraniCount = %d after takeover, want 3", msg.Stats.Guarani)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("observer never became operator")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

// ---------- HTTP ----------

func TestServer_StatsEndpoint(t *testing.T) {
	ts := startServer(t)

	resp, err := http.Get(ts.URL + "/api/stats")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var stats game.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Guarani != 5 || stats.Jesuit != 5 || !stats.Paused || stats.Winner != "-" {
		t.Errorf("stats = %+v", stats)
	}
}

func TestServer_HistoryDisabled(t *testing.T) {
	ts := startServer(t)

	resp, err := http.Get(ts.URL + "/api/history")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

// ---------- Commands ----------

func TestLoop_Apply(t *testing.T) {
	cfg := testConfig()
	cfg.Population.MaxPerFaction = 5
	g := game.NewGame(game.Options{Config: cfg, Seed: 3})
	l := NewLoop(g, NewHub(), cfg.Server, cfg.Derived.DT32)

	tests := []struct {
		name   string
		cmd    Command
		wantOK bool
		check  func(game.Stats) bool
	}{
		{"add at cap", Command{Type: CmdAdd, Faction: "guarani"}, false, func(s game.Stats) bool { return s.Guarani == 5 }},
		{"speed clamped", Command{Type: CmdSpeed, Speed: 50}, true, func(s game.Stats) bool { return s.Speed == 8 }},
		{"max steps clamped", Command{Type: CmdMaxSteps, MaxSteps: -2}, true, func(s game.Stats) bool { return s.MaxSteps == 1 }},
		{"reset keeps max steps", Command{Type: CmdReset, Guarani: 1, Jesuit: 0}, true, func(s game.Stats) bool { return s.Guarani == 1 && s.Jesuit == 0 && s.MaxSteps == 1 }},
		{"remove from empty", Command{Type: CmdRemove, Faction: "jesuit"}, false, func(s game.Stats) bool { return s.Jesuit == 0 }},
		{"unknown command", Command{Type: "launch"}, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := l.Apply(tt.cmd)
			if msg.OK != tt.wantOK {
				t.Errorf("OK = %v, want %v (error %q)", msg.OK, tt.wantOK, msg.Error)
			}
			if msg.Stats == nil {
				t.Fatal("reply carries no stats")
			}
			if tt.check != nil && !tt.check(*msg.Stats) {
				t.Errorf("stats = %+v", *msg.Stats)
			}
		})
	}

	snap := l.Apply(Command{Type: CmdSnapshot})
	if snap.Type != MsgSnapshot || snap.Snapshot == nil || len(snap.Snapshot.Agents) != 1 {
		t.Errorf("snapshot reply = %+v", snap)
	}
}
