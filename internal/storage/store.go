package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/quarksim/internal/engine"
	"github.com/san-kum/quarksim/internal/world"
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

type RunMetadata struct {
	ID        string             `json:"id"`
	Preset    string             `json:"preset"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Dt        float64            `json:"dt"`
	Frames    int                `json:"frames"`
	Particles int                `json:"particles"`
	Metrics   map[string]float64 `json:"metrics"`
}

// Save writes one run directory: metadata.json, the per-frame history as
// frames.csv and the final particle snapshot as positions.csv. It returns
// the generated run ID.
func (s *Store) Save(preset string, seed int64, dt float64, result *engine.Result, w *world.World) (string, error) {
	runID := fmt.Sprintf("%s_%d", preset, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Preset:    preset,
		Timestamp: time.Now(),
		Seed:      seed,
		Dt:        dt,
		Frames:    result.StepsTaken,
		Particles: len(w.Particles),
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeFrames(filepath.Join(runDir, "frames.csv"), result.Frames); err != nil {
		return "", err
	}
	if err := writePositions(filepath.Join(runDir, "positions.csv"), w); err != nil {
		return "", err
	}

	return runID, nil
}

var frameHeader = []string{
	"frame", "time", "free_quarks", "protons", "neutrons", "other_baryons",
	"mesons", "hadrons", "nuclei", "max_nucleus", "bound_fraction", "kinetic",
}

func writeFrames(path string, frames []world.FrameStats) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	defer cw.Flush()

	if err := cw.Write(frameHeader); err != nil {
		return err
	}

	for _, f := range frames {
		row := []string{
			strconv.Itoa(f.Frame),
			strconv.FormatFloat(f.Time, 'f', 6, 64),
			strconv.Itoa(f.FreeQuarks),
			strconv.Itoa(f.Protons),
			strconv.Itoa(f.Neutrons),
			strconv.Itoa(f.OtherBaryons),
			strconv.Itoa(f.Mesons),
			strconv.Itoa(f.Hadrons),
			strconv.Itoa(f.Nuclei),
			strconv.Itoa(f.MaxNucleus),
			strconv.FormatFloat(f.BoundFraction, 'f', 6, 64),
			strconv.FormatFloat(f.Kinetic, 'f', 6, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writePositions(path string, w *world.World) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	cw := csv.NewWriter(file)
	defer cw.Flush()

	header := []string{"index", "flavor", "color", "x", "y", "z", "vx", "vy", "vz", "bound_hadron"}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range w.Particles {
		p := &w.Particles[i]
		row := []string{
			strconv.Itoa(i),
			strconv.Itoa(int(p.Flavor)),
			strconv.Itoa(int(p.Color)),
			strconv.FormatFloat(p.Pos.X, 'f', 6, 64),
			strconv.FormatFloat(p.Pos.Y, 'f', 6, 64),
			strconv.FormatFloat(p.Pos.Z, 'f', 6, 64),
			strconv.FormatFloat(p.Vel.X, 'f', 6, 64),
			strconv.FormatFloat(p.Vel.Y, 'f', 6, 64),
			strconv.FormatFloat(p.Vel.Z, 'f', 6, 64),
			strconv.Itoa(int(p.BoundHadron.Load())),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	return nil
}

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

		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}

		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadFrames reads a run's per-frame history back from frames.csv. Rows
// that fail to parse are skipped.
func (s *Store) LoadFrames(runID string) ([]world.FrameStats, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "frames.csv"))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []world.FrameStats{}, nil
	}

	frames := make([]world.FrameStats, 0, len(records)-1)
	for _, rec := range records[1:] {
		if len(rec) < len(frameHeader) {
			continue
		}
		f, err := parseFrame(rec)
		if err != nil {
			continue
		}
		frames = append(frames, f)
	}
	return frames, nil
}

func parseFrame(rec []string) (world.FrameStats, error) {
	var f world.FrameStats
	var err error

	ints := []struct {
		dst *int
		col int
	}{
		{&f.Frame, 0}, {&f.FreeQuarks, 2}, {&f.Protons, 3}, {&f.Neutrons, 4},
		{&f.OtherBaryons, 5}, {&f.Mesons, 6}, {&f.Hadrons, 7}, {&f.Nuclei, 8},
		{&f.MaxNucleus, 9},
	}
	for _, c := range ints {
		if *c.dst, err = strconv.Atoi(rec[c.col]); err != nil {
			return f, err
		}
	}

	if f.Time, err = strconv.ParseFloat(rec[1], 64); err != nil {
		return f, err
	}
	if f.BoundFraction, err = strconv.ParseFloat(rec[10], 64); err != nil {
		return f, err
	}
	if f.Kinetic, err = strconv.ParseFloat(rec[11], 64); err != nil {
		return f, err
	}
	return f, nil
}
