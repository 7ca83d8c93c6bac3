package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/gravsim/internal/sim"
)

type ExportBody struct {
	Index  int     `json:"index"`
	Mass   float64 `json:"mass"`
	Radius float64 `json:"radius"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	PX     float64 `json:"px"`
	PY     float64 `json:"py"`
}

type ExportData struct {
	Run     RunMetadata  `json:"run"`
	Samples []sim.Sample `json:"samples"`
	Bodies  []ExportBody `json:"bodies"`
}

// Export gathers everything stored for a run.
func (s *Store) Export(runID string) (*ExportData, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, err
	}
	samples, err := s.LoadSamples(runID)
	if err != nil {
		return nil, err
	}
	bodies, err := s.LoadBodies(runID)
	if err != nil {
		return nil, err
	}

	data := &ExportData{
		Run:     *meta,
		Samples: samples,
		Bodies:  make([]ExportBody, len(bodies)),
	}
	for i, b := range bodies {
		data.Bodies[i] = ExportBody{
			Index:  b.Index,
			Mass:   b.Mass,
			Radius: b.Radius,
			X:      b.Pos.X,
			Y:      b.Pos.Y,
			PX:     b.Mom.X,
			PY:     b.Mom.Y,
		}
	}
	return data, nil
}

func (s *Store) ExportJSON(w io.Writer, runID string) error {
	data, err := s.Export(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (s *Store) ExportJSONFile(path, runID string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := s.ExportJSON(f, runID); err != nil {
		return err
	}
	return f.Close()
}

// ExportCSV copies the run's sample series as stored.
func (s *Store) ExportCSV(w io.Writer, runID string) error {
	f, err := os.Open(s.SamplesPath(runID))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
