package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/scaletilt/internal/analysis"
	"github.com/san-kum/scaletilt/internal/batch"
	"github.com/san-kum/scaletilt/internal/config"
	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/manifest"
	"github.com/san-kum/scaletilt/internal/storage"
	"github.com/san-kum/scaletilt/internal/viz"
	"github.com/spf13/cobra"
)

var (
	outDir     string
	configFile string
	preset     string
	samples    int
	seed       int64
	index      int
	minObjects int
	maxObjects int
	minWeight  int
	maxWeight  int
	beamLength float64
	fulcrumH   float64
	frames     int
	easing     string
	tiePolicy  string
	workers    int
	noVideo    bool
	svg        bool
	quiet      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "scaletilt",
		Short:         "balance scale reasoning task generator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&outDir, "out", "", "output directory (default from config, \"data\")")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "generate samples",
		RunE:  runGenerate,
	}
	addConfigFlags(generateCmd)
	generateCmd.Flags().IntVarP(&samples, "samples", "n", 10, "number of samples")
	generateCmd.Flags().IntVar(&minObjects, "min-objects", config.DefaultMinObjects, "min weights per pan")
	generateCmd.Flags().IntVar(&maxObjects, "max-objects", config.DefaultMaxObjects, "max weights per pan")
	generateCmd.Flags().IntVar(&minWeight, "min-weight", config.DefaultMinWeight, "min weight value")
	generateCmd.Flags().IntVar(&maxWeight, "max-weight", config.DefaultMaxWeight, "max weight value")
	generateCmd.Flags().Float64Var(&beamLength, "beam-length", config.DefaultBeamLength, "beam length (px)")
	generateCmd.Flags().Float64Var(&fulcrumH, "fulcrum-height", config.DefaultFulcrumHeight, "pivot height above base (px)")
	generateCmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "animation states per sample")
	generateCmd.Flags().StringVar(&easing, "easing", dynamo.DefaultEasing, "easing curve "+strings.Join(dynamo.EasingNames(), "|"))
	generateCmd.Flags().StringVar(&tiePolicy, "tie-policy", config.TieReperturb, "tie handling: reperturb|balanced|skip")
	generateCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "parallel workers")
	generateCmd.Flags().BoolVar(&noVideo, "no-video", false, "skip ground truth gif")
	generateCmd.Flags().BoolVar(&svg, "svg", false, "also write final_frame.svg")
	generateCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress per-sample log lines")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list generated samples",
		RunE:  listSamples,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [task_id]",
		Short: "show trajectory stats and tilt plot",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectSample,
	}

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "play one sample in the terminal",
		RunE:  runPreview,
	}
	addConfigFlags(previewCmd)
	previewCmd.Flags().IntVar(&index, "index", 0, "sample index")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [task_id]",
		Short: "export sample metadata and trajectory to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(resolveOut(nil)).ExportJSON(os.Stdout, args[0])
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tIMAGE\tBEAM\tOBJECTS\tWEIGHTS\tFRAMES")
			for _, name := range config.ListPresets() {
				c := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%.0f\t%d-%d\t%d-%d\t%d\n", name,
					c.Image.Width, c.Image.Height, c.Scale.BeamLength,
					c.Sampling.MinObjects, c.Sampling.MaxObjects,
					c.Sampling.MinWeight, c.Sampling.MaxWeight, c.Animation.Frames)
			}
			return w.Flush()
		},
	}

	configInitCmd := &cobra.Command{
		Use:   "config-init [path]",
		Short: "write the default config as yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "scaletilt.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Println(viz.Success.Render("wrote " + path))
			return nil
		},
	}
	configInitCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(generateCmd, listCmd, inspectCmd, previewCmd, exportJSONCmd, presetsCmd, configInitCmd)

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errInterrupted) {
			fmt.Fprintln(os.Stderr, viz.Failure.Render("error: ")+err.Error())
		}
		os.Exit(exitCode(err))
	}
}

// errInterrupted ends a run stopped by the user. The report is already
// printed, so main exits without the error banner.
var errInterrupted = errors.New("interrupted")

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errInterrupted):
		return 130
	default:
		return 1
	}
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
}

// loadConfig layers preset, config file and changed flags, in that order.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		var err error
		if cfg, err = config.LoadOver(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("min-objects") {
		cfg.Sampling.MinObjects = minObjects
	}
	if flags.Changed("max-objects") {
		cfg.Sampling.MaxObjects = maxObjects
	}
	if flags.Changed("min-weight") {
		cfg.Sampling.MinWeight = minWeight
	}
	if flags.Changed("max-weight") {
		cfg.Sampling.MaxWeight = maxWeight
	}
	if flags.Changed("beam-length") {
		cfg.Scale.BeamLength = beamLength
	}
	if flags.Changed("fulcrum-height") {
		cfg.Scale.FulcrumHeight = fulcrumH
	}
	if flags.Changed("frames") {
		cfg.Animation.Frames = frames
	}
	if flags.Changed("easing") {
		cfg.Animation.Easing = easing
	}
	if flags.Changed("tie-policy") {
		cfg.Sampling.TiePolicy = tiePolicy
	}
	if flags.Changed("workers") {
		cfg.Output.Workers = workers
	}
	if flags.Changed("no-video") {
		cfg.Animation.Video = !noVideo
	}
	if flags.Changed("svg") {
		cfg.Output.SVG = svg
	}
	cfg.Output.Dir = resolveOut(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveOut(cfg *config.Config) string {
	if outDir != "" {
		return outDir
	}
	if cfg != nil && cfg.Output.Dir != "" {
		return cfg.Output.Dir
	}
	return config.DefaultConfig().Output.Dir
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(cfg.Output.Dir)
	if err := st.Init(); err != nil {
		return err
	}
	ix, err := manifest.Open(filepath.Join(cfg.Output.Dir, manifest.FileName))
	if err != nil {
		return err
	}
	defer ix.Close()

	logger := log.New(os.Stderr, "scaletilt: ", log.LstdFlags)
	if quiet {
		logger.SetOutput(io.Discard)
	}

	runner, err := batch.New(cfg, st, ix, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("generating %d samples into %s (seed %d, %d workers)...\n", samples, cfg.Output.Dir, seed, cfg.Output.Workers)
	rep, err := runner.Run(ctx, samples, seed)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	fmt.Printf("run id: %s\n", rep.RunID)
	fmt.Println(viz.Success.Render(fmt.Sprintf("generated: %d", rep.Generated)))
	if rep.Skipped > 0 {
		fmt.Println(viz.Warning.Render(fmt.Sprintf("skipped:   %d", rep.Skipped)))
	}
	if rep.Failed > 0 {
		fmt.Println(viz.Failure.Render(fmt.Sprintf("failed:    %d", rep.Failed)))
	}
	fmt.Printf("completed in %v\n", rep.Elapsed.Round(time.Millisecond))
	if err != nil {
		fmt.Println(viz.Warning.Render("interrupted, remaining samples not generated"))
		return fmt.Errorf("%w: %v", errInterrupted, err)
	}
	return nil
}

func listSamples(cmd *cobra.Command, args []string) error {
	dir := resolveOut(nil)
	path := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(path); err != nil {
		fmt.Println("no samples found")
		return nil
	}
	ix, err := manifest.Open(path)
	if err != nil {
		return err
	}
	defer ix.Close()

	entries, err := ix.List(context.Background())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no samples found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tLEFT\tRIGHT\tHEAVIER\tANGLE\tFRAMES\tCREATED\tRUN")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s=%d\t%s=%d\t%s\t%+.2f°\t%d\t%s\t%s\n",
			e.TaskID,
			joinInts(e.Weights.Left), e.Outcome.LeftSum,
			joinInts(e.Weights.Right), e.Outcome.RightSum,
			e.Outcome.Winner,
			e.TargetAngle*180/math.Pi,
			e.Frames,
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			shortID(e.RunID),
		)
	}
	return w.Flush()
}

func inspectSample(cmd *cobra.Command, args []string) error {
	id := args[0]
	st := storage.New(resolveOut(nil))

	meta, err := st.Load(id)
	if err != nil {
		return err
	}
	traj, err := st.LoadTrajectory(id)
	if err != nil {
		return err
	}

	stats := analysis.Stats(traj)
	fmt.Printf("sample: %s\n", meta.ID)
	if meta.Summary != "" {
		fmt.Println(viz.Subtle.Render(meta.Summary))
	}
	fmt.Printf("left:   %s = %d\n", joinInts(meta.Weights.Left), meta.Outcome.LeftSum)
	fmt.Printf("right:  %s = %d\n", joinInts(meta.Weights.Right), meta.Outcome.RightSum)
	fmt.Printf("heavier: %s\n", meta.Outcome.Winner)
	fmt.Printf("easing: %s\n\n", meta.Easing)

	fmt.Printf("frames:       %d\n", stats.Frames)
	fmt.Printf("target angle: %+.3f°\n", stats.TargetDegrees)
	fmt.Printf("peak step:    %.3f°\n", stats.PeakStep)
	fmt.Printf("first move:   %d\n", stats.FirstMove)
	fmt.Printf("clearance:    %.2e px\n", stats.Clearance)

	if err := analysis.Verify(traj, analysis.DefaultTolerance); err != nil {
		fmt.Println(viz.Failure.Render("verify: " + err.Error()))
	} else {
		fmt.Println(viz.Success.Render("verify: ok"))
	}
	fmt.Println()

	degs := make([]float64, len(traj.States))
	for i, s := range traj.States {
		degs[i] = s.Degrees()
	}
	graph := asciigraph.Plot(degs,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("tilt angle (deg) vs frame"),
	)
	fmt.Println(graph)
	return nil
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := batch.New(cfg, storage.New(cfg.Output.Dir), nil, nil)
	if err != nil {
		return err
	}
	plan, err := runner.Plan(index, seed)
	if err != nil {
		return err
	}

	m := viz.NewPreview(plan.Scene, cfg.Animation.HoldFrames, cfg.Animation.FPS, plan.ID)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func joinInts(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprint(v)
	}
	return strings.Join(parts, "+")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
