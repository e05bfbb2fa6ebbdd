package export

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/wavelab/internal/field"
	"github.com/san-kum/wavelab/internal/storage"
)

type ProbeSeries struct {
	Index  []int     `json:"index"`
	Times  []float64 `json:"times"`
	Values []float64 `json:"values"`
}

type ExportData struct {
	ID         string             `json:"id"`
	System     string             `json:"coord_system"`
	Resolution []int              `json:"resolution"`
	Spacing    []float64          `json:"spacing"`
	Boundary   string             `json:"boundary"`
	Method     string             `json:"method"`
	WaveSpeed  float64            `json:"wave_speed"`
	Dt         float64            `json:"dt"`
	Time       float64            `json:"time"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics"`
	Field      [][]float64        `json:"field"`
	Probe      *ProbeSeries       `json:"probe,omitempty"`
}

// NewExportData assembles a stored run. times and values may be empty.
func NewExportData(meta *storage.RunMetadata, u *field.Field, times, values []float64) ExportData {
	data := ExportData{
		ID:         meta.ID,
		System:     meta.System,
		Resolution: meta.Resolution,
		Spacing:    meta.Spacing,
		Boundary:   meta.Boundary,
		Method:     meta.Method,
		WaveSpeed:  meta.WaveSpeed,
		Dt:         meta.Dt,
		Time:       meta.Time,
		Steps:      meta.StepsTaken,
		Metrics:    meta.Metrics,
		Field:      u.ToRows(),
	}
	if len(values) > 0 {
		data.Probe = &ProbeSeries{Index: meta.Probe, Times: times, Values: values}
	}
	return data
}

func WriteJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSON(path string, data ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, data)
}

func ExportJSONStdout(data ExportData) error {
	return WriteJSON(os.Stdout, data)
}
