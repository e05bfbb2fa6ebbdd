package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/wavelab/internal/analysis"
	"github.com/san-kum/wavelab/internal/config"
	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/wave"
)

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	fieldFile    = "field.csv"
	probeFile    = "probe.csv"
)

// ErrRunNotFound is returned when a run directory has no metadata.
var ErrRunNotFound = errors.New("storage: run not found")

// Store keeps one directory per run under baseDir.
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
	ID         string             `json:"id"`
	System     string             `json:"coord_system"`
	Timestamp  time.Time          `json:"timestamp"`
	Resolution []int              `json:"resolution"`
	Spacing    []float64          `json:"spacing"`
	Boundary   string             `json:"boundary"`
	Method     string             `json:"method"`
	WaveSpeed  float64            `json:"wave_speed"`
	Dt         float64            `json:"dt"`
	Time       float64            `json:"time"`
	Steps      int                `json:"steps"`
	StepsTaken int                `json:"steps_taken"`
	Probe      []int              `json:"probe,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes the run configuration, the final field and, when probe is
// non-nil, the probe series. It returns the new run ID. A failed save
// leaves no run directory behind.
func (s *Store) Save(cfg *config.Config, result *wave.Result, probe *analysis.Probe) (string, error) {
	wc, err := cfg.Wave()
	if err != nil {
		return "", err
	}

	runID := uuid.Must(uuid.NewV7()).String()
	runDir := filepath.Join(s.baseDir, runID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		System:     wc.System.String(),
		Timestamp:  time.Now(),
		Resolution: wc.Resolution,
		Spacing:    wc.Spacing,
		Boundary:   wc.Boundary.String(),
		Method:     wc.Method.String(),
		WaveSpeed:  wc.WaveSpeed,
		Dt:         result.Dt,
		Time:       result.Time,
		Steps:      wc.Steps,
		StepsTaken: result.StepsTaken,
		Metrics:    finiteMetrics(result.Metrics),
	}
	if probe != nil {
		meta.Probe = []int{probe.I, probe.J}
	}

	if err := writeRun(runDir, meta, cfg, result, probe); err != nil {
		if rmErr := os.RemoveAll(runDir); rmErr != nil {
			return "", errors.Join(err, rmErr)
		}
		return "", err
	}
	return runID, nil
}

func writeRun(runDir string, meta RunMetadata, cfg *config.Config, result *wave.Result, probe *analysis.Probe) error {
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return err
	}
	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return err
	}
	if err := writeField(filepath.Join(runDir, fieldFile), result.Final); err != nil {
		return err
	}
	if probe != nil {
		return writeProbe(filepath.Join(runDir, probeFile), probe)
	}
	return nil
}

// finiteMetrics drops NaN and Inf values, which encoding/json rejects.
func finiteMetrics(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeCSV(path string, rows func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if err := rows(w); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeField(path string, u *field.Field) error {
	return writeCSV(path, func(w *csv.Writer) error {
		rec := make([]string, u.Cols)
		for i := 0; i < u.Rows; i++ {
			for j, v := range u.Row(i) {
				rec[j] = formatFloat(v)
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeProbe(path string, p *analysis.Probe) error {
	if len(p.Times) != len(p.Values) {
		return fmt.Errorf("probe has %d times for %d values", len(p.Times), len(p.Values))
	}
	return writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"time", "u"}); err != nil {
			return err
		}
		for i := range p.Values {
			if err := w.Write([]string{formatFloat(p.Times[i]), formatFloat(p.Values[i])}); err != nil {
				return err
			}
		}
		return nil
	})
}

// List returns every readable run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadConfig returns the configuration the run was started with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadField reads the final field of a run.
func (s *Store) LoadField(runID string) (*field.Field, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, fieldFile))
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, len(records))
	for i, rec := range records {
		rows[i] = make([]float64, len(rec))
		for j, cell := range rec {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s row %d col %d: %w", fieldFile, i, j, err)
			}
			rows[i][j] = v
		}
	}
	return field.FromRows(rows)
}

// LoadProbe reads the probe series of a run. Runs saved without a probe
// return empty slices.
func (s *Store) LoadProbe(runID string) (times, values []float64, err error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, probeFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []float64{}, []float64{}, nil
		}
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	times = make([]float64, 0, len(records)-1)
	values = make([]float64, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < 2 {
			continue
		}
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			continue
		}
		v, err := strconv.ParseFloat(rec[1], 64)
		if err != nil {
			continue
		}
		times = append(times, t)
		values = append(values, v)
	}
	return times, values, nil
}
