package telemetry

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

// RunSummary describes one finished run. It is written to runs.csv and to
// the run history store.
type RunSummary struct {
	RunID    string `csv:"run_id" db:"run_id"`
	Seed     int64  `csv:"seed" db:"seed"`
	Steps    int    `csv:"steps" db:"steps"`
	MaxSteps int    `csv:"max_steps" db:"max_steps"`
	Reason   string `csv:"reason" db:"reason"`
	Winner   string `csv:"winner" db:"winner"`
	Outcome  string `csv:"outcome" db:"outcome"`

	InitialGuarani int `csv:"initial_guarani" db:"initial_guarani"`
	InitialJesuit  int `csv:"initial_jesuit" db:"initial_jesuit"`
	FinalGuarani   int `csv:"final_guarani" db:"final_guarani"`
	FinalJesuit    int `csv:"final_jesuit" db:"final_jesuit"`

	GuaraniBirths int `csv:"guarani_births" db:"guarani_births"`
	JesuitBirths  int `csv:"jesuit_births" db:"jesuit_births"`
	GuaraniDeaths int `csv:"guarani_deaths" db:"guarani_deaths"`
	JesuitDeaths  int `csv:"jesuit_deaths" db:"jesuit_deaths"`

	TopKiller      string `csv:"top_killer" db:"top_killer"`
	TopKills       int    `csv:"top_kills" db:"top_kills"`
	TopGatherer    string `csv:"top_gatherer" db:"top_gatherer"`
	TopCollections int    `csv:"top_collections" db:"top_collections"`

	StartedAt  string `csv:"started_at" db:"started_at"`
	FinishedAt string `csv:"finished_at" db:"finished_at"`
}

// Headline renders a one-line human-readable description of the run.
func (s RunSummary) Headline() string {
	return fmt.Sprintf("%s after %s steps: %s Guarani vs %s Jesuit (%s births, %s deaths)",
		s.Outcome,
		humanize.Comma(int64(s.Steps)),
		humanize.Comma(int64(s.FinalGuarani)),
		humanize.Comma(int64(s.FinalJesuit)),
		humanize.Comma(int64(s.GuaraniBirths+s.JesuitBirths)),
		humanize.Comma(int64(s.GuaraniDeaths+s.JesuitDeaths)),
	)
}

// LogValue implements slog.LogValuer for structured logging.
func (s RunSummary) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("run_id", s.RunID),
		slog.Int64("seed", s.Seed),
		slog.Int("steps", s.Steps),
		slog.String("reason", s.Reason),
		slog.String("winner", s.Winner),
		slog.String("outcome", s.Outcome),
		slog.Int("guarani", s.FinalGuarani),
		slog.Int("jesuit", s.FinalJesuit),
	}
	if s.TopKills > 0 {
		attrs = append(attrs, slog.String("top_killer", s.TopKiller), slog.Int("top_kills", s.TopKills))
	}
	return slog.GroupValue(attrs...)
}
