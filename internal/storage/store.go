package storage

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/natefinch/atomic"
	"golang.org/x/exp/slices"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	configFile   = "config.yaml"
)

var (
	ErrRunNotFound = errors.New("storage: run not found")
	ErrBadSamples  = errors.New("storage: malformed samples file")
)

var samplesHeader = []string{"time", "dt", "reference", "observable", "requested", "actual", "increment", "mode"}

type Store struct {
	baseDir string
	now     func() time.Time
}

// New returns a store rooted at baseDir. A leading ~ is expanded.
func New(baseDir string) *Store {
	if expanded, err := homedir.Expand(baseDir); err == nil {
		baseDir = expanded
	}
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string                  `json:"id"`
	Name       string                  `json:"name"`
	Timestamp  time.Time               `json:"timestamp"`
	Seed       int64                   `json:"seed"`
	Dt         float64                 `json:"dt"`
	Duration   float64                 `json:"duration"`
	Integrator string                  `json:"integrator"`
	Controller string                  `json:"controller"`
	Tuning     map[string]config.Float `json:"tuning"`
	Metrics    map[string]config.Float `json:"metrics"`
	Steps      int                     `json:"steps"`
}

// Save writes one run directory holding the metadata, the loop samples
// and the configuration that produced them. It returns the run ID.
func (s *Store) Save(name string, cfg *config.Config, tuning map[string]float64, result *dynamo.Result) (string, error) {
	if err := s.Init(); err != nil {
		return "", err
	}

	ts := s.now()
	runID, runDir, err := s.createRunDir(name, ts)
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Name:       name,
		Timestamp:  ts,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Tuning:     floats(tuning),
		Metrics:    floats(result.Metrics),
		Steps:      result.StepsTaken,
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}
	if err := atomic.WriteFile(filepath.Join(runDir, metadataFile), bytes.NewReader(data)); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteSamplesCSV(&buf, result.Samples); err != nil {
		return "", err
	}
	if err := atomic.WriteFile(filepath.Join(runDir, samplesFile), &buf); err != nil {
		return "", err
	}

	if err := config.Save(filepath.Join(runDir, configFile), cfg); err != nil {
		return "", err
	}
	return runID, nil
}

// createRunDir claims a fresh directory, suffixing the ID when two runs
// share a name and second.
func (s *Store) createRunDir(name string, ts time.Time) (string, string, error) {
	base := fmt.Sprintf("%s_%s", name, ts.Format("20060102-150405"))
	for i := 1; ; i++ {
		runID := base
		if i > 1 {
			runID = fmt.Sprintf("%s_%d", base, i)
		}
		runDir := filepath.Join(s.baseDir, runID)
		err := os.Mkdir(runDir, 0755)
		if err == nil {
			return runID, runDir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
	}
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

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := s.read(runID, metadataFile)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadConfig returns the configuration a run was made with.
func (s *Store) LoadConfig(runID string) (*config.Config, error) {
	if _, err := os.Stat(filepath.Join(s.baseDir, runID, configFile)); err != nil {
		return nil, notFound(runID, err)
	}
	return config.Load(filepath.Join(s.baseDir, runID, configFile))
}

func (s *Store) LoadSamples(runID string) ([]dynamo.Sample, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, samplesFile))
	if err != nil {
		return nil, notFound(runID, err)
	}
	defer file.Close()

	samples, err := ReadSamplesCSV(file)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return samples, nil
}

// SamplesPath is the CSV file of a run, for callers that stream it.
func (s *Store) SamplesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, samplesFile)
}

func (s *Store) read(runID, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, notFound(runID, err)
	}
	return data, nil
}

func notFound(runID string, err error) error {
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

func floats(m map[string]float64) map[string]config.Float {
	out := make(map[string]config.Float, len(m))
	for k, v := range m {
		out[k] = config.Float(v)
	}
	return out
}

// WriteSamplesCSV writes one row per loop sample. NaN observables (lost
// samples) are written as NaN.
func WriteSamplesCSV(w io.Writer, samples []dynamo.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(samplesHeader); err != nil {
		return err
	}

	for _, smp := range samples {
		row := []string{
			formatFloat(smp.Time),
			formatFloat(smp.Dt),
			formatFloat(smp.Reference),
			formatFloat(smp.Observable),
			formatFloat(smp.Requested),
			formatFloat(smp.Actual),
			formatFloat(smp.Increment),
			smp.Mode.String(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func ReadSamplesCSV(r io.Reader) ([]dynamo.Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(samplesHeader)

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSamples, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: missing header", ErrBadSamples)
	}

	samples := make([]dynamo.Sample, 0, len(records)-1)
	for i, record := range records[1:] {
		var vals [7]float64
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, fmt.Errorf("%w: row %d: %w", ErrBadSamples, i+1, err)
			}
			vals[j] = v
		}

		mode := dynamo.Automatic
		if record[7] == dynamo.Manual.String() {
			mode = dynamo.Manual
		}

		samples = append(samples, dynamo.Sample{
			Time:       vals[0],
			Dt:         vals[1],
			Reference:  vals[2],
			Observable: vals[3],
			Requested:  vals[4],
			Actual:     vals[5],
			Increment:  vals[6],
			Mode:       mode,
		})
	}
	return samples, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
