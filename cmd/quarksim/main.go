package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/quarksim/internal/config"
	"github.com/san-kum/quarksim/internal/engine"
	"github.com/san-kum/quarksim/internal/export"
	"github.com/san-kum/quarksim/internal/metrics"
	"github.com/san-kum/quarksim/internal/storage"
	"github.com/san-kum/quarksim/internal/viz"
	"github.com/san-kum/quarksim/internal/world"
)

var (
	dataDir    string
	configFile string
	preset     string
	frames     int
	seed       int64
	particles  int
	dt         float64
	rebuild    bool
	outFile    string
	imgWidth   int
	imgHeight  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "quarksim",
		Short: "concurrent quark aggregation sandbox",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".quarksim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and record it",
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list recorded runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run series",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run frames to CSV on stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and frames to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "run a simulation and write an SVG snapshot of the final state",
		RunE:  snapshot,
	}
	addConfigFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&outFile, "out", "snapshot.svg", "output file")
	snapshotCmd.Flags().IntVar(&imgWidth, "width", 1024, "image width")
	snapshotCmd.Flags().IntVar(&imgHeight, "height", 768, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Printf("%-10s %d particles, %d frames, box %.0f\n", name,
					cfg.Population.Ups+cfg.Population.Downs+cfg.Population.Electrons+cfg.Population.Carriers,
					cfg.Frames, cfg.BoxSize)
			}
			return nil
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark frame throughput across presets",
		RunE:  benchPresets,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd,
		exportJSONCmd, snapshotCmd, presetsCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "default", "preset configuration")
	cmd.Flags().IntVar(&frames, "frames", 0, "number of frames (0 = preset default)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = preset default)")
	cmd.Flags().IntVar(&particles, "particles", 0, "total particle count, scales the preset mix (0 = preset default)")
	cmd.Flags().Float64Var(&dt, "dt", 0, "timestep (0 = preset default)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "rebuild nucleus membership every frame")
}

// resolveConfig layers preset, config file and explicit flags, in that
// order of increasing precedence.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	base := config.GetPreset(preset)
	if base == nil {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}
	cfg := *base

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if cmd.Flags().Changed("frames") {
		cfg.Frames = frames
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if cmd.Flags().Changed("particles") {
		cfg.Scale(particles)
	}
	if cmd.Flags().Changed("dt") {
		cfg.Forces.Dt = dt
	}
	if cmd.Flags().Changed("rebuild") {
		cfg.RebuildNuclei = rebuild
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func buildEngine(cfg *config.Config) (*engine.Engine, error) {
	w, err := world.New(cfg.WorldOptions())
	if err != nil {
		return nil, err
	}
	e := engine.New(w, cfg.Forces)
	e.RebuildNuclei = cfg.RebuildNuclei
	return e, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	e, err := buildEngine(cfg)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		e.AddMetric(m)
	}

	fmt.Printf("running %s (%d particles, %d frames)...\n",
		preset, len(e.World.Particles), cfg.Frames)
	start := time.Now()

	result, err := e.Run(context.Background(), cfg.Frames)
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(preset, cfg.Seed, cfg.Forces.Dt, result, e.World)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d\n", result.StepsTaken)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	// Fail on a bad config before bubbletea owns the terminal; after this
	// the factory cannot error.
	if _, err := buildEngine(cfg); err != nil {
		return err
	}

	model := viz.NewModel(func() *engine.Engine {
		e, _ := buildEngine(cfg)
		return e
	})

	p := tea.NewProgram(model)
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tFRAMES\tDT\tPARTICLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4f\t%d\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Dt,
			run.Particles,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	history, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}
	if len(history) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("preset: %s\n", meta.Preset)
	fmt.Printf("samples: %d\n\n", len(history))

	series := []struct {
		caption string
		pick    func(world.FrameStats) float64
	}{
		{"bound fraction", func(f world.FrameStats) float64 { return f.BoundFraction }},
		{"hadrons", func(f world.FrameStats) float64 { return float64(f.Hadrons) }},
		{"nuclei", func(f world.FrameStats) float64 { return float64(f.Nuclei) }},
		{"max nucleus size", func(f world.FrameStats) float64 { return float64(f.MaxNucleus) }},
		{"kinetic energy", func(f world.FrameStats) float64 { return f.Kinetic }},
	}

	for _, sp := range series {
		data := make([]float64, len(history))
		for i, f := range history {
			data[i] = sp.pick(f)
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(sp.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	history, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()

	header := []string{"frame", "time", "free_quarks", "protons", "neutrons",
		"other_baryons", "mesons", "hadrons", "nuclei", "max_nucleus",
		"bound_fraction", "kinetic"}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, f := range history {
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
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	history, err := st.LoadFrames(runID)
	if err != nil {
		return err
	}

	out := struct {
		storage.RunMetadata
		FrameData []world.FrameStats `json:"frame_data"`
	}{RunMetadata: *meta, FrameData: history}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	e, err := buildEngine(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("simulating %d frames...\n", cfg.Frames)
	if _, err := e.Run(context.Background(), cfg.Frames); err != nil {
		return err
	}

	svg := export.SnapshotSVG(e.World, imgWidth, imgHeight)
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}

	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func benchPresets(cmd *cobra.Command, args []string) error {
	frameCounts := []int{100, 500}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tPARTICLES\tFRAMES\tTIME\tFRAMES/SEC")

	for _, name := range config.ListPresets() {
		cfg := *config.GetPreset(name)
		for _, n := range frameCounts {
			cfg.Frames = n
			e, err := buildEngine(&cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := e.Run(context.Background(), n)
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			fmt.Fprintf(w, "%s\t%d\t%d\t%v\t%.0f\n",
				name, len(e.World.Particles), result.StepsTaken, elapsed,
				float64(result.StepsTaken)/elapsed.Seconds())
		}
	}

	return w.Flush()
}
