package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/san-kum/scaletilt/internal/config"
	"github.com/san-kum/scaletilt/internal/dynamo"
	"github.com/san-kum/scaletilt/internal/manifest"
	"github.com/san-kum/scaletilt/internal/sampler"
	"github.com/san-kum/scaletilt/internal/storage"
)

func testConfig(workers int) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Image.Width, cfg.Image.Height = 256, 256
	cfg.Image.BaseMargin = 40
	cfg.Scale.BeamLength = 160
	cfg.Scale.FulcrumHeight = 60
	cfg.Scale.ArmLength = 20
	cfg.Animation.Frames = 6
	cfg.Animation.HoldFrames = 1
	cfg.Animation.Video = false
	cfg.Output.Workers = workers
	return cfg
}

func newRunner(t *testing.T, cfg *config.Config) (*Runner, *storage.Store, *manifest.Index) {
	t.Helper()
	store := storage.New(t.TempDir())
	ix, err := manifest.Open(":memory:")
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	t.Cleanup(func() { ix.Close() })
	r, err := New(cfg, store, ix, nil)
	if err != nil {
		t.Fatalf("new runner: %v", err)
	}
	return r, store, ix
}

func TestRunWritesSamples(t *testing.T) {
	cfg := testConfig(2)
	cfg.Animation.Video = true
	cfg.Output.SVG = true
	r, store, ix := newRunner(t, cfg)

	rep, err := r.Run(context.Background(), 3, 42)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if rep.Generated != 3 || rep.Failed != 0 || rep.Skipped != 0 {
		t.Fatalf("unexpected report %+v", rep)
	}

	dir := store.Dir("scale_balance_0001")
	for _, name := range []string{
		storage.FirstFrameFile, storage.FinalFrameFile, storage.FinalSVGFile,
		storage.PromptFile, storage.VideoFile, storage.MetadataFile, storage.TrajectoryFile,
	} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	entries, err := ix.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 || entries[0].RunID != rep.RunID {
		t.Fatalf("unexpected manifest %+v", entries)
	}

	meta, err := store.Load("scale_balance_0002")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if want := SampleSeed(42, 2); meta.Seed != want {
		t.Errorf("expected per-sample seed %d, got %d", want, meta.Seed)
	}
	if meta.Outcome.Winner == dynamo.Tie {
		t.Error("reperturb policy should never store a tie")
	}
}

func TestRunDeterministicAcrossWorkers(t *testing.T) {
	r1, s1, _ := newRunner(t, testConfig(1))
	r4, s4, _ := newRunner(t, testConfig(4))

	if _, err := r1.Run(context.Background(), 6, 7); err != nil {
		t.Fatalf("run 1: %v", err)
	}
	if _, err := r4.Run(context.Background(), 6, 7); err != nil {
		t.Fatalf("run 4: %v", err)
	}

	for i := 0; i < 6; i++ {
		id := r1.TaskID(i)
		for _, name := range []string{storage.PromptFile, storage.TrajectoryFile, storage.FinalFrameFile} {
			a, err := os.ReadFile(filepath.Join(s1.Dir(id), name))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			b, err := os.ReadFile(filepath.Join(s4.Dir(id), name))
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if !bytes.Equal(a, b) {
				t.Errorf("%s/%s differs between worker counts", id, name)
			}
		}
	}
}

// min = max with one object per pan always ties 1 = 1.
func tiedConfig(policy string) *config.Config {
	cfg := testConfig(2)
	cfg.Sampling = config.SamplingConfig{MinObjects: 1, MaxObjects: 1, MinWeight: 1, MaxWeight: 1, TiePolicy: policy}
	return cfg
}

func TestTiePolicies(t *testing.T) {
	t.Run("skip", func(t *testing.T) {
		r, _, _ := newRunner(t, tiedConfig(config.TieSkip))
		rep, err := r.Run(context.Background(), 2, 1)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if rep.Skipped != 2 || rep.Generated != 0 {
			t.Errorf("expected 2 skipped, got %+v", rep)
		}
	})

	t.Run("balanced", func(t *testing.T) {
		r, store, _ := newRunner(t, tiedConfig(config.TieBalanced))
		rep, err := r.Run(context.Background(), 1, 1)
		if err != nil || rep.Generated != 1 {
			t.Fatalf("run: %+v, %v", rep, err)
		}
		traj, err := store.LoadTrajectory(r.TaskID(0))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		for _, s := range traj.States {
			if s.Angle != 0 {
				t.Fatalf("balanced sample tilted at frame %d", s.Frame)
			}
		}
		p, _ := store.LoadPrompt(r.TaskID(0))
		if !strings.Contains(p, "NEITHER") {
			t.Errorf("expected balanced prompt, got %q", p)
		}
	})

	t.Run("reperturb", func(t *testing.T) {
		r, _, _ := newRunner(t, tiedConfig(config.TieReperturb))
		rep, err := r.Run(context.Background(), 1, 1)
		if err != nil {
			t.Fatalf("run: %v", err)
		}
		if rep.Failed != 1 || !errors.Is(rep.Failures[r.TaskID(0)], sampler.ErrUnavoidableTie) {
			t.Errorf("expected unavoidable tie failure, got %+v", rep)
		}
	})
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := testConfig(1)
	cfg.Animation.Frames = 1
	if _, err := New(cfg, storage.New(t.TempDir()), nil, nil); !errors.Is(err, dynamo.ErrConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	r, _, _ := newRunner(t, testConfig(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := r.Run(ctx, 50, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if rep.Generated+rep.Failed+rep.Skipped >= 50 {
		t.Errorf("cancelled run should stop early, got %+v", rep)
	}
}

func TestNearbyRunSeedsDoNotShift(t *testing.T) {
	r, _, _ := newRunner(t, testConfig(1))

	same := 0
	for i := 0; i < 9; i++ {
		if SampleSeed(42, i+1) == SampleSeed(43, i) {
			t.Fatalf("sample %d of seed 42 reuses sample %d of seed 43", i+1, i)
		}
		a, err := r.Plan(i+1, 42)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		b, err := r.Plan(i, 43)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}
		if reflect.DeepEqual(a.Weights, b.Weights) {
			same++
		}
	}
	if same > 2 {
		t.Errorf("%d/9 weight configs repeat between seeds 42 and 43", same)
	}
}

func TestPlanWeightsWithinBounds(t *testing.T) {
	cfg := testConfig(1)
	cfg.Sampling.MinWeight, cfg.Sampling.MaxWeight = 3, 5
	r, _, _ := newRunner(t, cfg)

	for i := 0; i < 20; i++ {
		p, err := r.Plan(i, 11)
		if err != nil {
			t.Fatalf("plan %d: %v", i, err)
		}
		if err := p.Weights.Validate(3, 5); err != nil {
			t.Errorf("plan %d: %v", i, err)
		}
	}
}

func TestGenerateCancelledWritesNothing(t *testing.T) {
	r, store, ix := newRunner(t, testConfig(1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Generate(ctx, 0, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if _, err := os.Stat(store.Dir(r.TaskID(0))); !os.IsNotExist(err) {
		t.Error("cancelled sample was written")
	}
	if n, err := ix.Count(context.Background(), r.RunID()); err != nil || n != 0 {
		t.Errorf("expected empty manifest, got %d (%v)", n, err)
	}
}
