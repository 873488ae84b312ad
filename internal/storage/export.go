package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gridsolve/internal/experiment"
)

type ExportData struct {
	ID         string             `json:"id"`
	Experiment string             `json:"experiment"`
	Method     string             `json:"method"`
	Dt         float64            `json:"dt"`
	Shape      []int              `json:"shape"`
	Coords     []float64          `json:"coords"`
	Names      []string           `json:"names"`
	Times      []float64          `json:"times"`
	Values     [][]float64        `json:"values"`
	Profiles   [][]float64        `json:"profiles"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Export writes a stored run as one JSON document.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	res, err := s.LoadResult(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, meta, res)
}

func ExportJSON(w io.Writer, meta *RunMetadata, res *experiment.Result) error {
	data := ExportData{
		ID:         meta.ID,
		Experiment: res.Experiment,
		Method:     res.Method,
		Dt:         meta.Dt,
		Shape:      meta.Shape,
		Coords:     res.Coords,
		Names:      res.Names,
		Times:      res.Times(),
		Values:     make([][]float64, len(res.Samples)),
		Profiles:   make([][]float64, len(res.Samples)),
		Metrics:    res.Final,
	}
	for i, sm := range res.Samples {
		data.Values[i] = sm.Values
		data.Profiles[i] = sm.Profile
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
