package dynamo

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name   string
		w      WeightConfig
		left   int
		right  int
		winner Side
	}{
		{"left heavy", WeightConfig{Left: []int{5, 3, 7}, Right: []int{4, 2}}, 15, 6, Left},
		{"right heavy", WeightConfig{Left: []int{1}, Right: []int{10, 10, 10, 10}}, 1, 40, Right},
		{"tie", WeightConfig{Left: []int{4, 4}, Right: []int{8}}, 8, 8, Tie},
		{"single each", WeightConfig{Left: []int{2}, Right: []int{3}}, 2, 3, Right},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resolve(tt.w)
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if out.LeftSum != tt.left || out.RightSum != tt.right {
				t.Errorf("expected sums %d/%d, got %d/%d", tt.left, tt.right, out.LeftSum, out.RightSum)
			}
			if out.Winner != tt.winner {
				t.Errorf("expected winner %s, got %s", tt.winner, out.Winner)
			}
		})
	}
}

func TestResolveSumsAllWeights(t *testing.T) {
	for l := 1; l <= 4; l++ {
		for r := 1; r <= 4; r++ {
			w := WeightConfig{Left: make([]int, l), Right: make([]int, r)}
			total := 0
			for i := range w.Left {
				w.Left[i] = 2*i + 3
				total += w.Left[i]
			}
			for i := range w.Right {
				w.Right[i] = 3*i + 1
				total += w.Right[i]
			}

			out, err := Resolve(w)
			if err != nil {
				t.Fatalf("resolve failed: %v", err)
			}
			if out.LeftSum+out.RightSum != total {
				t.Errorf("expected total %d, got %d", total, out.LeftSum+out.RightSum)
			}
			if out.LeftSum != out.RightSum {
				heavy, light := out.Lower()
				if heavy <= light {
					t.Errorf("winner %s does not carry the larger sum (%d vs %d)", out.Winner, heavy, light)
				}
			}
		}
	}
}

func TestResolveEmptyPan(t *testing.T) {
	tests := []struct {
		name string
		w    WeightConfig
	}{
		{"empty left", WeightConfig{Right: []int{1}}},
		{"empty right", WeightConfig{Left: []int{1}}},
		{"non-positive", WeightConfig{Left: []int{1, 0}, Right: []int{1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.w)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestWeightConfigValidate(t *testing.T) {
	w := WeightConfig{Left: []int{1, 10}, Right: []int{5}}
	if err := w.Validate(1, 10); err != nil {
		t.Errorf("expected valid, got %v", err)
	}

	w.Right = []int{11}
	var cerr *ConfigError
	if err := w.Validate(1, 10); !errors.As(err, &cerr) || cerr.Field != "right_weights" {
		t.Errorf("expected right_weights config error, got %v", err)
	}
}

func TestSideText(t *testing.T) {
	for _, s := range []Side{Tie, Left, Right} {
		b, _ := s.MarshalText()
		var back Side
		if err := back.UnmarshalText(b); err != nil {
			t.Fatalf("unmarshal %q: %v", b, err)
		}
		if back != s {
			t.Errorf("expected %s, got %s", s, back)
		}
	}

	if _, err := ParseSide("up"); err == nil {
		t.Error("expected error for unknown side")
	}
}
