package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/gravsim/internal/nbody"
	"github.com/san-kum/gravsim/internal/sim"
	"github.com/san-kum/gravsim/internal/vmath"
)

const (
	metadataFile = "metadata.json"
	samplesFile  = "samples.csv"
	bodiesFile   = "bodies.csv"
)

var (
	samplesHeader = []string{"time", "active", "mass", "px", "py", "angmom", "energy"}
	bodiesHeader  = []string{"index", "mass", "radius", "x", "y", "px", "py"}
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

// RunInfo describes how a run was set up.
type RunInfo struct {
	Policy   string
	Bodies   int
	Dt       float64
	Duration float64
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Policy    string             `json:"policy"`
	Bodies    int                `json:"bodies"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Steps     int                `json:"steps"`
	Merges    int                `json:"merges"`
	Survivors int                `json:"survivors"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes metadata, the sample series and the final bodies to a new run
// directory and returns its id.
func (s *Store) Save(info RunInfo, result *sim.Result) (string, error) {
	now := time.Now()
	runID, runDir, err := s.newRunDir(fmt.Sprintf("%s_s%d_%d", info.Policy, result.Seed, now.Unix()))
	if err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: now,
		Seed:      result.Seed,
		Policy:    info.Policy,
		Bodies:    info.Bodies,
		Dt:        info.Dt,
		Duration:  info.Duration,
		Steps:     result.StepsTaken,
		Merges:    len(result.Merges),
		Survivors: len(result.Final),
		Metrics:   result.Metrics,
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	rows := make([][]string, 0, len(result.Samples))
	for _, smp := range result.Samples {
		rows = append(rows, []string{
			formatFloat(smp.Time),
			strconv.Itoa(smp.Active),
			formatFloat(smp.Mass),
			formatFloat(smp.Momentum.X),
			formatFloat(smp.Momentum.Y),
			formatFloat(smp.AngMom),
			formatFloat(smp.Energy),
		})
	}
	if err := writeCSV(filepath.Join(runDir, samplesFile), samplesHeader, rows); err != nil {
		return "", err
	}

	rows = make([][]string, 0, len(result.Final))
	for _, b := range result.Final {
		rows = append(rows, []string{
			strconv.Itoa(b.Index),
			formatFloat(b.Mass),
			formatFloat(b.Radius),
			formatFloat(b.Pos.X),
			formatFloat(b.Pos.Y),
			formatFloat(b.Mom.X),
			formatFloat(b.Mom.Y),
		})
	}
	if err := writeCSV(filepath.Join(runDir, bodiesFile), bodiesHeader, rows); err != nil {
		return "", err
	}

	return runID, nil
}

// newRunDir creates base, or base_2, base_3... if runs land in the same second.
func (s *Store) newRunDir(base string) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	id := base
	for n := 2; ; n++ {
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !os.IsExist(err) {
			return "", "", err
		}
		id = fmt.Sprintf("%s_%d", base, n)
	}
}

// List returns the stored runs, oldest first. Directories without readable
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

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}

	return &meta, nil
}

func (s *Store) LoadSamples(runID string) ([]sim.Sample, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, samplesFile), len(samplesHeader))
	if err != nil {
		return nil, err
	}

	samples := make([]sim.Sample, 0, len(records))
	for i, rec := range records {
		var p parser
		smp := sim.Sample{
			Time:     p.f64(rec[0]),
			Active:   p.atoi(rec[1]),
			Mass:     p.f64(rec[2]),
			Momentum: vmath.Vec2{X: p.f64(rec[3]), Y: p.f64(rec[4])},
			AngMom:   p.f64(rec[5]),
			Energy:   p.f64(rec[6]),
		}
		if p.err != nil {
			return nil, fmt.Errorf("%s line %d: %w", samplesFile, i+2, p.err)
		}
		samples = append(samples, smp)
	}
	return samples, nil
}

// LoadBodies returns the active bodies at the end of the run.
func (s *Store) LoadBodies(runID string) ([]nbody.Body, error) {
	records, err := readCSV(filepath.Join(s.baseDir, runID, bodiesFile), len(bodiesHeader))
	if err != nil {
		return nil, err
	}

	bodies := make([]nbody.Body, 0, len(records))
	for i, rec := range records {
		var p parser
		b := nbody.Body{
			Index:  p.atoi(rec[0]),
			Mass:   p.f64(rec[1]),
			Radius: p.f64(rec[2]),
			Pos:    vmath.Vec2{X: p.f64(rec[3]), Y: p.f64(rec[4])},
			Mom:    vmath.Vec2{X: p.f64(rec[5]), Y: p.f64(rec[6])},
			Active: true,
		}
		if p.err != nil {
			return nil, fmt.Errorf("%s line %d: %w", bodiesFile, i+2, p.err)
		}
		bodies = append(bodies, b)
	}
	return bodies, nil
}

// SamplesPath is the on-disk location of a run's sample series.
func (s *Store) SamplesPath(runID string) string {
	return filepath.Join(s.baseDir, runID, samplesFile)
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

func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

// readCSV returns the data rows, header dropped.
func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parser keeps the first conversion error.
type parser struct {
	err error
}

func (p *parser) f64(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}

func (p *parser) atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil && p.err == nil {
		p.err = err
	}
	return v
}
