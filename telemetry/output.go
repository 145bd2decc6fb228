package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/planetforge/config"
)

// OutcomeRecord is one row of the batch report.
type OutcomeRecord struct {
	ID      string `csv:"id"`
	Kind    string `csv:"kind"`
	Preset  string `csv:"preset"`
	Seed    int64  `csv:"seed"`
	Status  string `csv:"status"` // ok, skipped or failed
	TotalMS int64  `csv:"total_ms"`
	Error   string `csv:"error"`
}

// OutputManager writes the batch-level report files with CSV logging.
// It is not safe for concurrent use; the batch writes from one goroutine.
type OutputManager struct {
	dir        string
	reportFile *os.File
	perfFile   *os.File

	// Track if headers have been written
	reportHeaderWritten bool
	perfHeaderWritten   bool
}

// NewOutputManager creates the output directory and the report and perf CSV
// files inside it. Returns nil if dir is empty (output disabled). An empty
// file name disables that file.
func NewOutputManager(dir, reportName, perfName string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	if reportName != "" {
		f, err := os.Create(filepath.Join(dir, reportName))
		if err != nil {
			return nil, fmt.Errorf("creating %s: %w", reportName, err)
		}
		om.reportFile = f
	}

	if perfName != "" {
		f, err := os.Create(filepath.Join(dir, perfName))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", perfName, err)
		}
		om.perfFile = f
	}

	return om, nil
}

// WriteConfig saves the configuration used for the run as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteOutcome appends one request outcome to the report.
func (om *OutputManager) WriteOutcome(rec OutcomeRecord) error {
	if om == nil || om.reportFile == nil {
		return nil
	}
	if err := appendCSV(om.reportFile, []OutcomeRecord{rec}, &om.reportHeaderWritten); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

// WritePerf appends one request's phase timings.
func (om *OutputManager) WritePerf(id string, s PerfSample) error {
	if om == nil || om.perfFile == nil {
		return nil
	}
	if err := appendCSV(om.perfFile, []PerfSampleCSV{s.ToCSV(id)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// appendCSV writes records, including the header only on the first call.
func appendCSV(f *os.File, records any, headerWritten *bool) error {
	if !*headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteFieldStats writes a stats CSV for one body into its own directory.
func WriteFieldStats(path string, stats []FieldStats) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := gocsv.MarshalFile(&stats, f); err != nil {
		f.Close()
		return fmt.Errorf("writing field stats: %w", err)
	}
	return f.Close()
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

	if om.reportFile != nil {
		if err := om.reportFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.perfFile != nil {
		if err := om.perfFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
