// Package storage keeps scenario runs on disk: metadata as json, the
// scenario config as yaml and frame samples as csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/creepersim/internal/creeper"
	"github.com/san-kum/creepersim/internal/scenario"
	"gopkg.in/yaml.v3"
)

// ErrNoRun is returned when a run id has no metadata on disk.
var ErrNoRun = errors.New("storage: run not found")

const (
	metadataFile = "metadata.json"
	configFile   = "config.yaml"
	framesFile   = "frames.csv"
	stepsFile    = "steps.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID        string             `json:"id"`
	Scenario  string             `json:"scenario"`
	Path      string             `json:"path"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Legs      int                `json:"legs"`
	Groups    int                `json:"groups"`
	Frames    int                `json:"frames"`
	Steps     int                `json:"steps"`
	Rebuilds  int                `json:"rebuilds"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes a run directory and returns its id.
func (s *Store) Save(res *scenario.Result) (string, error) {
	now := time.Now()
	cfg := res.Config
	runID := fmt.Sprintf("%s_%d", cfg.Name, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  cfg.Name,
		Path:      cfg.Path,
		Timestamp: now,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Duration:  cfg.Duration,
		Legs:      cfg.Legs,
		Groups:    cfg.Groups,
		Frames:    len(res.Samples),
		Steps:     len(res.Steps),
		Rebuilds:  res.Rebuilds,
		Metrics:   res.Metrics,
	}
	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	cfgData, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, configFile), cfgData, 0644); err != nil {
		return "", err
	}

	if err := writeCSV(filepath.Join(runDir, framesFile), func(w *csv.Writer) error {
		return WriteSamples(w, res.Samples)
	}); err != nil {
		return "", err
	}
	if err := writeCSV(filepath.Join(runDir, stepsFile), func(w *csv.Writer) error {
		return writeSteps(w, res.Steps)
	}); err != nil {
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

func writeCSV(path string, fill func(w *csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := fill(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

var sampleHeader = []string{
	"time", "body_x", "body_y", "body_z", "end_x", "end_y", "end_z",
	"lag", "phase", "scale", "bounce",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// WriteSamples writes a header and one row per sample.
func WriteSamples(w *csv.Writer, samples []scenario.Sample) error {
	if err := w.Write(sampleHeader); err != nil {
		return err
	}
	for _, s := range samples {
		row := make([]string, 0, len(sampleHeader))
		row = append(row, formatFloat(s.Time))
		for _, v := range s.Body {
			row = append(row, formatFloat(v))
		}
		for _, v := range s.EndPoint {
			row = append(row, formatFloat(v))
		}
		row = append(row,
			formatFloat(s.Lag),
			strconv.Itoa(int(s.Phase)),
			formatFloat(s.Scale),
			formatFloat(s.Bounce),
		)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeSteps(w *csv.Writer, steps []creeper.StepEvent) error {
	if err := w.Write([]string{"frame", "time", "group", "forced"}); err != nil {
		return err
	}
	for _, ev := range steps {
		row := []string{
			strconv.FormatInt(ev.Frame, 10),
			formatFloat(ev.Time),
			strconv.Itoa(ev.Group),
			strconv.FormatBool(ev.Forced),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// List returns every readable run, oldest first. Directories without
// metadata are skipped.
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
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the scenario config the run was made with.
func (s *Store) LoadConfig(runID string) (scenario.Config, error) {
	cfg := scenario.DefaultConfig()
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("storage: decode config %s: %w", runID, err)
	}
	return cfg, nil
}

// LoadSamples reads the frame csv back. Malformed rows are skipped.
func (s *Store) LoadSamples(runID string) ([]scenario.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, framesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}
	defer file.Close()
	return ReadSamples(file)
}

func ReadSamples(r io.Reader) ([]scenario.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []scenario.Sample{}, nil
	}

	samples := make([]scenario.Sample, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) != len(sampleHeader) {
			continue
		}
		v := make([]float64, len(record))
		ok := true
		for j, field := range record {
			if v[j], err = strconv.ParseFloat(field, 64); err != nil {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		samples = append(samples, scenario.Sample{
			Time:     v[0],
			Body:     mgl64.Vec3{v[1], v[2], v[3]},
			EndPoint: mgl64.Vec3{v[4], v[5], v[6]},
			Lag:      v[7],
			Phase:    creeper.Phase(int(v[8])),
			Scale:    v[9],
			Bounce:   v[10],
		})
	}
	return samples, nil
}

// LoadSteps reads the step events of a run.
func (s *Store) LoadSteps(runID string) ([]creeper.StepEvent, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, stepsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoRun, runID)
		}
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}
	steps := make([]creeper.StepEvent, 0, max(0, len(records)-1))
	for i, record := range records {
		if i == 0 || len(record) != 4 {
			continue
		}
		frame, err1 := strconv.ParseInt(record[0], 10, 64)
		t, err2 := strconv.ParseFloat(record[1], 64)
		group, err3 := strconv.Atoi(record[2])
		forced, err4 := strconv.ParseBool(record[3])
		if err := errors.Join(err1, err2, err3, err4); err != nil {
			continue
		}
		steps = append(steps, creeper.StepEvent{Frame: frame, Time: t, Group: group, Forced: forced})
	}
	return steps, nil
}

// LoadResult rebuilds a scenario result from a stored run. Final foot
// positions are not stored and stay empty.
func (s *Store) LoadResult(runID string) (*scenario.Result, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.LoadConfig(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	steps, err := s.LoadSteps(runID)
	if err != nil {
		return nil, err
	}
	return &scenario.Result{
		Config:   cfg,
		Samples:  samples,
		Steps:    steps,
		Metrics:  meta.Metrics,
		Rebuilds: meta.Rebuilds,
	}, nil
}
