package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/missions/config"
)

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}

	// A nil manager accepts writes silently.
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("WriteTelemetry on nil: %v", err)
	}
	if err := om.WriteRun(RunSummary{}); err != nil {
		t.Errorf("WriteRun on nil: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil: %v", err)
	}
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := om.WriteTelemetry(WindowStats{RunID: "r", WindowEndStep: i * 50, Guarani: i}); err != nil {
			t.Fatalf("WriteTelemetry: %v", err)
		}
	}
	if err := om.WriteRun(RunSummary{RunID: "r", Outcome: "Draw (time)"}); err != nil {
		t.Fatalf("WriteRun: %v", err)
	}
	if err := om.WriteConfig(config.Defaults()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("telemetry.csv has %d lines, want header + 3", len(lines))
	}
	if !strings.HasPrefix(lines[0], "run_id,window_end,") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Count(string(data), "run_id") != 1 {
		t.Error("header written more than once")
	}

	runs, err := os.ReadFile(filepath.Join(dir, "runs.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(runs), "Draw (time)") {
		t.Errorf("runs.csv missing outcome:\n%s", runs)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}

	if err := om.WriteTelemetry(WindowStats{}); err == nil {
		t.Error("write after Close should fail")
	}
}

func TestRunSummary_Headline(t *testing.T) {
	s := RunSummary{Outcome: "Guarani (time)", Steps: 1200, FinalGuarani: 7, FinalJesuit: 3, GuaraniBirths: 4, JesuitDeaths: 2}
	want := "Guarani (time) after 1,200 steps: 7 Guarani vs 3 Jesuit (4 births, 2 deaths)"
	if got := s.Headline(); got != want {
		t.Errorf("Headline() = %q, want %q", got, want)
	}
}
