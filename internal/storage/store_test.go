package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/quarksim/internal/engine"
	"github.com/san-kum/quarksim/internal/world"
)

func testResult() *engine.Result {
	return &engine.Result{
		Frames: []world.FrameStats{
			{Frame: 1, Time: 0.01, FreeQuarks: 10, Protons: 1, Hadrons: 1, BoundFraction: 0.25, Kinetic: 3.5},
			{Frame: 2, Time: 0.02, FreeQuarks: 7, Protons: 2, Hadrons: 2, Nuclei: 1, MaxNucleus: 2, BoundFraction: 0.5, Kinetic: 3.2},
		},
		Metrics: map[string]float64{
			"bound_fraction": 0.375,
		},
		StepsTaken: 2,
	}
}

func testWorld(t *testing.T) *world.World {
	t.Helper()
	w, err := world.New(world.Options{
		Ups:         4,
		Downs:       2,
		HadronCap:   4,
		NucleusCap:  2,
		BoxSize:     10,
		QuarkRadius: 0.15,
		Seed:        1,
	})
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("small", 42, 0.01, testResult(), testWorld(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Preset != "small" {
		t.Errorf("expected preset 'small', got '%s'", meta.Preset)
	}
	if meta.Seed != 42 {
		t.Errorf("expected seed 42, got %d", meta.Seed)
	}
	if meta.Frames != 2 {
		t.Errorf("expected 2 frames, got %d", meta.Frames)
	}
	if meta.Metrics["bound_fraction"] != 0.375 {
		t.Errorf("expected bound_fraction 0.375, got %f", meta.Metrics["bound_fraction"])
	}

	frames, err := st.LoadFrames(runID)
	if err != nil {
		t.Fatalf("load frames failed: %v", err)
	}
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[1].Nuclei != 1 || frames[1].MaxNucleus != 2 {
		t.Errorf("frame 2 nuclei=%d max=%d, want 1/2", frames[1].Nuclei, frames[1].MaxNucleus)
	}
	if frames[0].BoundFraction != 0.25 {
		t.Errorf("frame 1 bound fraction = %f, want 0.25", frames[0].BoundFraction)
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if _, err := st.Save("small", 1, 0.01, testResult(), testWorld(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("small", 1, 0.01, testResult(), testWorld(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{"metadata.json", "frames.csv", "positions.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.json")

	if err := ExportJSON(path, "small", 7, 0.01, testResult()); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	for _, want := range []string{`"preset": "small"`, `"seed": 7`, `"bound_fraction"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("export missing %q", want)
		}
	}
}
