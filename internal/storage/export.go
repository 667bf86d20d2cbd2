package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/quarksim/internal/engine"
	"github.com/san-kum/quarksim/internal/world"
)

type ExportData struct {
	Preset  string             `json:"preset"`
	Seed    int64              `json:"seed"`
	Dt      float64            `json:"dt"`
	Steps   int                `json:"steps"`
	Frames  []world.FrameStats `json:"frames"`
	Metrics map[string]float64 `json:"metrics"`
}

func exportData(preset string, seed int64, dt float64, result *engine.Result) ExportData {
	return ExportData{
		Preset:  preset,
		Seed:    seed,
		Dt:      dt,
		Steps:   result.StepsTaken,
		Frames:  result.Frames,
		Metrics: result.Metrics,
	}
}

func writeJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func ExportJSON(path, preset string, seed int64, dt float64, result *engine.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return writeJSON(file, exportData(preset, seed, dt, result))
}

func ExportJSONStdout(preset string, seed int64, dt float64, result *engine.Result) error {
	return writeJSON(os.Stdout, exportData(preset, seed, dt, result))
}
