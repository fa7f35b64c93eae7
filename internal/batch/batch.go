// Package batch turns sampled weight configurations into stored samples.
package batch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/san-kum/scaletilt/internal/analysis"
	"github.com/san-kum/scaletilt/internal/config"
	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/export"
	"github.com/san-kum/scaletilt/internal/manifest"
	"github.com/san-kum/scaletilt/internal/prompt"
	"github.com/san-kum/scaletilt/internal/raster"
	"github.com/san-kum/scaletilt/internal/sampler"
	"github.com/san-kum/scaletilt/internal/scene"
	"github.com/san-kum/scaletilt/internal/storage"
)

// ErrSkipped marks a tied sample dropped under the skip policy.
var ErrSkipped = errors.New("batch: tied sample skipped")

type Runner struct {
	cfg   *config.Config
	store *storage.Store
	index *manifest.Index
	log   *log.Logger
	runID string
}

// New validates cfg and returns a runner. index may be nil to skip the
// manifest; a nil logger discards output.
func New(cfg *config.Config, store *storage.Store, index *manifest.Index, logger *log.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Runner{
		cfg:   cfg,
		store: store,
		index: index,
		log:   logger,
		runID: manifest.NewRunID(),
	}, nil
}

func (r *Runner) RunID() string { return r.runID }

// TaskID names sample idx the way the output tree does.
func (r *Runner) TaskID(idx int) string {
	return fmt.Sprintf("%s_%04d", r.cfg.Domain, idx)
}

type Report struct {
	RunID     string
	Generated int
	Skipped   int
	Failed    int
	Failures  map[string]error
	Elapsed   time.Duration
}

// Plan is a sample before rendering.
type Plan struct {
	ID         string
	Seed       int64
	Weights    dynamo.WeightConfig
	Outcome    dynamo.Outcome
	Trajectory *dynamo.Trajectory
	Scene      *scene.Scene
}

// SampleSeed derives the seed of sample idx from the run seed. Nearby run
// seeds give unrelated sample streams.
func SampleSeed(seed int64, idx int) int64 {
	return int64(splitmix64(splitmix64(uint64(seed)) + uint64(idx)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Plan samples weights for sample idx and computes the verified trajectory.
// The result depends only on the config, idx and seed.
func (r *Runner) Plan(idx int, seed int64) (*Plan, error) {
	cfg := r.cfg
	sampleSeed := SampleSeed(seed, idx)

	w, err := sampler.New(cfg.Sampling, sampleSeed).Sample()
	if err != nil {
		return nil, err
	}
	if err := w.Validate(cfg.Sampling.MinWeight, cfg.Sampling.MaxWeight); err != nil {
		return nil, fmt.Errorf("sampled weights: %w", err)
	}
	o, err := dynamo.Resolve(w)
	if err != nil {
		return nil, err
	}
	if o.Winner == dynamo.Tie && cfg.Sampling.TiePolicy == config.TieSkip {
		return nil, fmt.Errorf("%w: %d = %d", ErrSkipped, o.LeftSum, o.RightSum)
	}

	g, err := cfg.Geometry()
	if err != nil {
		return nil, err
	}
	ease, err := cfg.Easing()
	if err != nil {
		return nil, err
	}
	traj, err := dynamo.Generate(g, o, cfg.Animation.Frames, ease)
	if err != nil {
		return nil, err
	}
	if err := analysis.Verify(traj, analysis.DefaultTolerance); err != nil {
		return nil, err
	}

	return &Plan{
		ID:         r.TaskID(idx),
		Seed:       sampleSeed,
		Weights:    w,
		Outcome:    o,
		Trajectory: traj,
		Scene:      scene.New(scene.StyleFrom(cfg), traj, w),
	}, nil
}

// Render draws the images, video and prompt for a plan.
func (r *Runner) Render(p *Plan) (*storage.Sample, error) {
	cfg := r.cfg
	sc := p.Scene
	bg := cfg.Colors.Background.Color()

	first := raster.Draw(sc.Build(sc.First()), cfg.Image.Width, cfg.Image.Height, bg)
	finalPrims := sc.Build(sc.Final())
	final := raster.Draw(finalPrims, cfg.Image.Width, cfg.Image.Height, bg)

	sample := &storage.Sample{
		Meta: storage.Metadata{
			ID:          p.ID,
			Domain:      cfg.Domain,
			Summary:     prompt.Summary,
			RunID:       r.runID,
			Seed:        p.Seed,
			Weights:     p.Weights,
			Outcome:     p.Outcome,
			Frames:      len(p.Trajectory.States),
			Easing:      cfg.Animation.Easing,
			TargetAngle: p.Trajectory.TargetAngle,
			TargetDeg:   p.Trajectory.Last().Degrees(),
			Geometry:    p.Trajectory.Geometry,
		},
		Trajectory: p.Trajectory,
		Prompt:     prompt.Build(p.Weights, p.Outcome),
		First:      first,
		Final:      final,
	}

	if cfg.Output.SVG {
		sample.FinalSVG = export.PrimitivesToSVG(finalPrims, cfg.Image.Width, cfg.Image.Height, bg)
	}

	if cfg.Animation.Video {
		frames := raster.RenderAll(sc, sc.Timeline(cfg.Animation.HoldFrames))
		c := cfg.Colors
		pal := raster.Palette(
			c.Background.Color(), c.Beam.Color(), c.Fulcrum.Color(), c.Pan.Color(), c.Weight.Color(),
			c.Heavy.Color(), c.StopLine.Color(), c.Chain.Color(), c.Label.Color(), c.Sum.Color(),
		)
		var buf bytes.Buffer
		if err := raster.EncodeGIF(&buf, frames, cfg.Animation.FPS, pal); err != nil {
			return nil, fmt.Errorf("encode video: %w", err)
		}
		sample.Video = buf.Bytes()
	}

	return sample, nil
}

// Generate plans, renders, stores and indexes sample idx.
func (r *Runner) Generate(ctx context.Context, idx int, seed int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p, err := r.Plan(idx, seed)
	if err != nil {
		return "", err
	}
	sample, err := r.Render(p)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := r.store.Save(sample)
	if err != nil {
		return "", err
	}
	if r.index != nil {
		err := r.index.Record(ctx, manifest.Entry{
			TaskID:      p.ID,
			RunID:       r.runID,
			Weights:     p.Weights,
			Outcome:     p.Outcome,
			Frames:      sample.Meta.Frames,
			TargetAngle: p.Trajectory.TargetAngle,
			Dir:         dir,
		})
		if err != nil {
			return "", fmt.Errorf("manifest: %w", err)
		}
	}
	return p.ID, nil
}

type result struct {
	id  string
	err error
}

// Run generates samples 0..n-1 on cfg.Output.Workers goroutines. Sample
// failures are logged and counted; only cancellation or a store that cannot
// be initialized fail the run.
func (r *Runner) Run(ctx context.Context, n int, seed int64) (Report, error) {
	start := time.Now()
	rep := Report{RunID: r.runID, Failures: make(map[string]error)}
	if n <= 0 {
		return rep, nil
	}
	if err := r.store.Init(); err != nil {
		return rep, err
	}

	jobs := make(chan int)
	results := make(chan result)

	workers := min(r.cfg.Output.Workers, n)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				_, err := r.Generate(ctx, idx, seed)
				results <- result{id: r.TaskID(idx), err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < n; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		switch {
		case res.err == nil:
			rep.Generated++
		case errors.Is(res.err, ErrSkipped):
			rep.Skipped++
			r.log.Printf("skip %s: %v", res.id, res.err)
		case ctx.Err() != nil && errors.Is(res.err, ctx.Err()):
			r.log.Printf("drop %s: %v", res.id, res.err)
		default:
			rep.Failed++
			rep.Failures[res.id] = res.err
			r.log.Printf("fail %s: %v", res.id, res.err)
		}
	}

	rep.Elapsed = time.Since(start)
	r.log.Printf("run %s: %d generated, %d skipped, %d failed in %s",
		r.runID, rep.Generated, rep.Skipped, rep.Failed, rep.Elapsed.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	return rep, nil
}
