package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/gridsolve/internal/config"
	"github.com/san-kum/gridsolve/internal/experiment"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	profileFile  = "profile.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID          string             `json:"id"`
	Experiment  string             `json:"experiment"`
	Method      string             `json:"method"`
	Timestamp   time.Time          `json:"timestamp"`
	Dt          float64            `json:"dt"`
	T0          float64            `json:"t0"`
	Steps       int                `json:"steps"`
	StepsTaken  int                `json:"steps_taken"`
	Evaluations int                `json:"evaluations"`
	Shape       []int              `json:"shape"`
	Extent      float64            `json:"extent"`
	Elapsed     float64            `json:"elapsed_seconds"`
	Coords      []float64          `json:"coords"`
	Metrics     map[string]float64 `json:"metrics"`
	Error       string             `json:"error,omitempty"`
}

// NewRunID returns "<experiment>_<first 8 hex digits of a random UUID>".
func NewRunID(experiment string) string {
	return fmt.Sprintf("%s_%s", experiment, uuid.NewString()[:8])
}

// Save writes a run directory for res. A non-nil runErr is recorded in the
// metadata so partial runs can still be inspected.
func (s *Store) Save(cfg *config.Config, res *experiment.Result, runErr error) (string, error) {
	runID := NewRunID(res.Experiment)
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:          runID,
		Experiment:  res.Experiment,
		Method:      res.Method,
		Timestamp:   time.Now(),
		Dt:          cfg.Dt,
		T0:          cfg.T0,
		Steps:       cfg.Steps,
		StepsTaken:  res.StepsTaken,
		Evaluations: res.Evaluations,
		Shape:       cfg.Shape,
		Extent:      cfg.Extent,
		Elapsed:     res.Elapsed.Seconds(),
		Coords:      res.Coords,
		Metrics:     res.Final,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	header := append([]string{"step", "time"}, res.Names...)
	err := writeCSV(filepath.Join(runDir, samplesFile), header, res.Samples, func(sm experiment.Sample) []float64 {
		return sm.Values
	})
	if err != nil {
		return "", err
	}

	header = []string{"step", "time"}
	if len(res.Samples) > 0 {
		for i := range res.Samples[0].Profile {
			header = append(header, fmt.Sprintf("p%d", i))
		}
	}
	err = writeCSV(filepath.Join(runDir, profileFile), header, res.Samples, func(sm experiment.Sample) []float64 {
		return sm.Profile
	})
	if err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeCSV(path string, header []string, samples []experiment.Sample, values func(experiment.Sample) []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, sm := range samples {
		row := []string{strconv.Itoa(sm.Step), formatFloat(sm.Time)}
		for _, v := range values(sm) {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns the metadata of every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%s: %w", runID, err)
	}
	return &meta, nil
}

// LoadSamples reads the metric series of a run. names excludes the step and
// time columns.
func (s *Store) LoadSamples(runID string) (names []string, samples []experiment.Sample, err error) {
	header, rows, err := s.readCSV(runID, samplesFile)
	if err != nil {
		return nil, nil, err
	}
	if len(header) >= 2 {
		names = header[2:]
	}
	for _, r := range rows {
		samples = append(samples, experiment.Sample{Step: r.step, Time: r.time, Values: r.values})
	}
	return names, samples, nil
}

// LoadProfiles reads the recorded centre-line profiles of a run.
func (s *Store) LoadProfiles(runID string) ([]experiment.Sample, error) {
	_, rows, err := s.readCSV(runID, profileFile)
	if err != nil {
		return nil, err
	}
	out := make([]experiment.Sample, 0, len(rows))
	for _, r := range rows {
		out = append(out, experiment.Sample{Step: r.step, Time: r.time, Profile: r.values})
	}
	return out, nil
}

// LoadResult rebuilds the recorded part of a run's result.
func (s *Store) LoadResult(runID string) (*experiment.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	names, samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	profiles, err := s.LoadProfiles(runID)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		if i < len(profiles) {
			samples[i].Profile = profiles[i].Profile
		}
	}

	return &experiment.Result{
		Experiment:  meta.Experiment,
		Method:      meta.Method,
		Names:       names,
		Coords:      meta.Coords,
		Samples:     samples,
		StepsTaken:  meta.StepsTaken,
		Evaluations: meta.Evaluations,
		Final:       meta.Metrics,
		Elapsed:     time.Duration(meta.Elapsed * float64(time.Second)),
	}, nil
}

type row struct {
	step   int
	time   float64
	values []float64
}

func (s *Store) readCSV(runID, name string) ([]string, []row, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s/%s: %w", runID, name, err)
	}
	if len(records) == 0 {
		return nil, nil, nil
	}

	rows := make([]row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		step, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, nil, fmt.Errorf("%s/%s line %d: %w", runID, name, i+2, err)
		}
		t, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s/%s line %d: %w", runID, name, i+2, err)
		}
		vals := make([]float64, 0, len(rec)-2)
		for _, field := range rec[2:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s/%s line %d: %w", runID, name, i+2, err)
			}
			vals = append(vals, v)
		}
		rows = append(rows, row{step: step, time: t, values: vals})
	}
	return records[0], rows, nil
}
