package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/missions/config"
)

// OutputManager writes experiment output: window telemetry, tick timing and
// one summary row per finished run, each to its own CSV file.
type OutputManager struct {
	dir string

	telemetry csvFile
	perf      csvFile
	runs      csvFile
}

// csvFile is an append-only CSV file whose header is written with the first record.
type csvFile struct {
	name          string
	f             *os.File
	headerWritten bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{
		dir:       dir,
		telemetry: csvFile{name: "telemetry.csv"},
		perf:      csvFile{name: "perf.csv"},
		runs:      csvFile{name: "runs.csv"},
	}

	for _, cf := range []*csvFile{&om.telemetry, &om.perf, &om.runs} {
		f, err := os.Create(filepath.Join(dir, cf.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", cf.name, err)
		}
		cf.f = f
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return writeRecord(&om.telemetry, stats)
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	return writeRecord(&om.perf, stats.ToCSV(windowEnd))
}

// WriteRun appends a finished run to runs.csv.
func (om *OutputManager) WriteRun(s RunSummary) error {
	if om == nil {
		return nil
	}
	return writeRecord(&om.runs, s)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, cf := range []*csvFile{&om.telemetry, &om.perf, &om.runs} {
		if cf.f == nil {
			continue
		}
		if err := cf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		cf.f = nil
	}
	return firstErr
}

func writeRecord[T any](cf *csvFile, rec T) error {
	if cf.f == nil {
		return fmt.Errorf("writing %s: file closed", cf.name)
	}

	records := []T{rec}
	if !cf.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, cf.f); err != nil {
			return fmt.Errorf("writing %s: %w", cf.name, err)
		}
		cf.headerWritten = true
		return nil
	}

	if err := gocsv.MarshalWithoutHeaders(records, cf.f); err != nil {
		return fmt.Errorf("writing %s: %w", cf.name, err)
	}
	return nil
}
