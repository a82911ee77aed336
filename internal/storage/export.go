package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/creepersim/internal/scenario"
)

type ExportSample struct {
	Time     float64    `json:"time"`
	Body     [3]float64 `json:"body"`
	EndPoint [3]float64 `json:"end_point"`
	Lag      float64    `json:"lag"`
	Phase    string     `json:"phase"`
	Scale    float64    `json:"scale"`
	Bounce   float64    `json:"bounce,omitempty"`
}

type ExportStep struct {
	Time   float64 `json:"time"`
	Group  int     `json:"group"`
	Forced bool    `json:"forced,omitempty"`
}

type ExportData struct {
	Scenario string             `json:"scenario"`
	Path     string             `json:"path"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Frames   int                `json:"frames"`
	Samples  []ExportSample     `json:"samples"`
	Steps    []ExportStep       `json:"steps"`
	Metrics  map[string]float64 `json:"metrics"`
}

func exportData(res *scenario.Result) ExportData {
	data := ExportData{
		Scenario: res.Config.Name,
		Path:     res.Config.Path,
		Dt:       res.Config.Dt,
		Duration: res.Config.Duration,
		Frames:   len(res.Samples),
		Samples:  make([]ExportSample, len(res.Samples)),
		Steps:    make([]ExportStep, len(res.Steps)),
		Metrics:  res.Metrics,
	}
	for i, s := range res.Samples {
		data.Samples[i] = ExportSample{
			Time:     s.Time,
			Body:     s.Body,
			EndPoint: s.EndPoint,
			Lag:      s.Lag,
			Phase:    s.Phase.String(),
			Scale:    s.Scale,
			Bounce:   s.Bounce,
		}
	}
	for i, ev := range res.Steps {
		data.Steps[i] = ExportStep{Time: ev.Time, Group: ev.Group, Forced: ev.Forced}
	}
	return data
}

// WriteJSON encodes the run as indented json.
func WriteJSON(w io.Writer, res *scenario.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(exportData(res))
}

// ExportJSON writes the run to path, or to stdout when path is "-".
func ExportJSON(path string, res *scenario.Result) error {
	if path == "-" {
		return WriteJSON(os.Stdout, res)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, res)
}
