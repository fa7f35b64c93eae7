package sampler

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/san-kum/scaletilt/internal/config"
	"github.com/san-kum/scaletilt/internal/dynamo"
)

const (
	perturbsPerDraw = 32
	maxAttempts     = 1024
)

// ErrUnavoidableTie means the configured ranges kept producing equal pans.
var ErrUnavoidableTie = errors.New("sampler: could not break weight tie")

type Sampler struct {
	cfg        config.SamplingConfig
	randSource *rand.Rand
}

func New(cfg config.SamplingConfig, seed int64) *Sampler {
	return &Sampler{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(seed)),
	}
}

// Sample draws a weight configuration. Under the reperturb policy a tie is
// broken by redrawing one weight at a time; other policies return ties as is.
func (s *Sampler) Sample() (dynamo.WeightConfig, error) {
	if err := s.check(); err != nil {
		return dynamo.WeightConfig{}, err
	}

	w := dynamo.WeightConfig{Left: s.pan(), Right: s.pan()}
	if s.cfg.TiePolicy != config.TieReperturb {
		return w, nil
	}

	for attempt := 1; sum(w.Left) == sum(w.Right); attempt++ {
		if attempt > maxAttempts {
			return dynamo.WeightConfig{}, fmt.Errorf("%w after %d attempts (weights %d..%d, objects %d..%d)",
				ErrUnavoidableTie, maxAttempts, s.cfg.MinWeight, s.cfg.MaxWeight, s.cfg.MinObjects, s.cfg.MaxObjects)
		}
		if attempt%perturbsPerDraw == 0 {
			w = dynamo.WeightConfig{Left: s.pan(), Right: s.pan()}
			continue
		}
		s.perturb(&w)
	}
	return w, nil
}

func (s *Sampler) check() error {
	c := s.cfg
	if c.MinObjects < 1 || c.MaxObjects < c.MinObjects {
		return &dynamo.ConfigError{Field: "objects", Value: float64(c.MaxObjects), Reason: fmt.Sprintf("bad range %d..%d", c.MinObjects, c.MaxObjects)}
	}
	if c.MinWeight < 1 || c.MaxWeight < c.MinWeight {
		return &dynamo.ConfigError{Field: "weights", Value: float64(c.MaxWeight), Reason: fmt.Sprintf("bad range %d..%d", c.MinWeight, c.MaxWeight)}
	}
	return nil
}

func (s *Sampler) pan() []int {
	n := s.between(s.cfg.MinObjects, s.cfg.MaxObjects)
	weights := make([]int, n)
	for i := range weights {
		weights[i] = s.weight()
	}
	return weights
}

// perturb replaces one weight on a random side.
func (s *Sampler) perturb(w *dynamo.WeightConfig) {
	side := w.Right
	if s.randSource.Float64() < 0.5 {
		side = w.Left
	}
	side[s.randSource.Intn(len(side))] = s.weight()
}

func (s *Sampler) weight() int {
	return s.between(s.cfg.MinWeight, s.cfg.MaxWeight)
}

func (s *Sampler) between(lo, hi int) int {
	return lo + s.randSource.Intn(hi-lo+1)
}

func sum(v []int) int {
	total := 0
	for _, x := range v {
		total += x
	}
	return total
}
