package dynamo

import (
	"errors"
	"math"
	"testing"
)

func defaultGeometry(t *testing.T) Geometry {
	t.Helper()
	g, err := NewGeometry(300, 100, 40, 432, 256)
	if err != nil {
		t.Fatalf("geometry: %v", err)
	}
	return g
}

func TestTargetAngleDefaults(t *testing.T) {
	g := defaultGeometry(t)

	right, err := TargetAngle(g, Right)
	if err != nil {
		t.Fatalf("target angle: %v", err)
	}
	expected := math.Asin(60.0 / 150.0)
	if math.Abs(right-expected) > 1e-12 {
		t.Errorf("expected %f, got %f", expected, right)
	}

	left, _ := TargetAngle(g, Left)
	if left != -right {
		t.Errorf("expected mirrored angle %f, got %f", -right, left)
	}

	tie, _ := TargetAngle(g, Tie)
	if tie != 0 {
		t.Errorf("expected 0 for tie, got %f", tie)
	}
}

func TestGenerateExampleScenario(t *testing.T) {
	g := defaultGeometry(t)
	out, err := Resolve(WeightConfig{Left: []int{5, 3, 7}, Right: []int{4, 2}})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	traj, err := Generate(g, out, 30, EaseOutCubic)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if len(traj.States) != 30 {
		t.Fatalf("expected 30 states, got %d", len(traj.States))
	}
	if traj.First().Angle != 0 {
		t.Errorf("expected level start, got %f", traj.First().Angle)
	}
	if traj.TargetAngle >= 0 {
		t.Errorf("left win should rotate counter-clockwise, got %f", traj.TargetAngle)
	}

	last := traj.Last()
	if math.Abs(last.LeftPan.Y-g.BaseY) > 1e-6 {
		t.Errorf("expected left pan on base %f, got %f", g.BaseY, last.LeftPan.Y)
	}
	if last.RightPan.Y >= last.LeftPan.Y {
		t.Error("left pan should be the lower one")
	}

	for i := 1; i < len(traj.States); i++ {
		if math.Abs(traj.States[i-1].Angle) > math.Abs(traj.States[i].Angle) {
			t.Fatalf("angle magnitude decreased at frame %d", i)
		}
	}
}

func TestGenerateTerminalOnlyLast(t *testing.T) {
	g := defaultGeometry(t)
	traj, err := Generate(g, Outcome{LeftSum: 1, RightSum: 9, Winner: Right}, 12, Linear)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for i, s := range traj.States {
		if s.Terminal != (i == len(traj.States)-1) {
			t.Errorf("frame %d: terminal=%v", i, s.Terminal)
		}
		if s.Frame != i {
			t.Errorf("frame %d: index %d", i, s.Frame)
		}
	}
}

func TestGenerateRigidBeam(t *testing.T) {
	g := defaultGeometry(t)
	traj, err := Generate(g, Outcome{LeftSum: 3, RightSum: 2, Winner: Left}, 40, EaseInOutCubic)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, s := range traj.States {
		mid := Vec2{(s.LeftEnd.X + s.RightEnd.X) / 2, (s.LeftEnd.Y + s.RightEnd.Y) / 2}
		if mid.Sub(g.Fulcrum).Len() > 1e-9 {
			t.Errorf("frame %d: beam midpoint %v left the fulcrum %v", s.Frame, mid, g.Fulcrum)
		}
		if math.Abs(s.RightEnd.Sub(s.LeftEnd).Len()-g.BeamLength) > 1e-9 {
			t.Errorf("frame %d: beam length changed", s.Frame)
		}
		if math.Abs(s.LeftPan.Y-s.LeftEnd.Y-g.ArmLength) > 1e-9 {
			t.Errorf("frame %d: arm length changed", s.Frame)
		}
	}
}

func TestGenerateTie(t *testing.T) {
	g := defaultGeometry(t)
	traj, err := Generate(g, Outcome{LeftSum: 8, RightSum: 8, Winner: Tie}, 10, EaseOutCubic)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	for _, s := range traj.States {
		if s.Angle != 0 {
			t.Errorf("frame %d: expected level beam, got %f", s.Frame, s.Angle)
		}
	}
	if !traj.Last().Terminal {
		t.Error("last tie frame should be terminal")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := defaultGeometry(t)
	out := Outcome{LeftSum: 2, RightSum: 7, Winner: Right}

	for _, frames := range []int{2, 30, 1000} {
		a, err := Generate(g, out, frames, SmoothStep)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		b, _ := Generate(g, out, frames, SmoothStep)

		for i := range a.States {
			if a.States[i] != b.States[i] {
				t.Fatalf("frames=%d: state %d differs", frames, i)
			}
		}
	}
}

func TestGenerateLongSequenceMatchesSerial(t *testing.T) {
	g := defaultGeometry(t)
	out := Outcome{LeftSum: 9, RightSum: 1, Winner: Left}

	traj, err := Generate(g, out, 2048, EaseOutCubic)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i, s := range traj.States {
		if s != stateAt(g, traj.TargetAngle, i, 2048, EaseOutCubic) {
			t.Fatalf("frame %d differs from serial evaluation", i)
		}
	}
}

func TestGenerateConfigErrors(t *testing.T) {
	g := defaultGeometry(t)
	out := Outcome{LeftSum: 2, RightSum: 1, Winner: Left}

	tests := []struct {
		name   string
		g      Geometry
		frames int
		ease   Easing
	}{
		{"one frame", g, 1, Linear},
		{"zero frames", g, 0, Linear},
		{"nil easing", g, 10, nil},
		{"zero arm", Geometry{BeamLength: 300, FulcrumHeight: 100, BaseY: 432, Fulcrum: Vec2{256, 332}}, 10, Linear},
		{"zero beam", Geometry{FulcrumHeight: 100, ArmLength: 40, BaseY: 432, Fulcrum: Vec2{256, 332}}, 10, Linear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.g, out, tt.frames, tt.ease)
			if !errors.Is(err, ErrConfig) {
				t.Errorf("expected ErrConfig, got %v", err)
			}
		})
	}
}

func TestNewGeometryErrors(t *testing.T) {
	tests := []struct {
		name               string
		beam, fulcrum, arm float64
		field              string
	}{
		{"negative beam", -1, 100, 40, "beam_length"},
		{"zero fulcrum", 300, 0, 40, "fulcrum_height"},
		{"zero arm", 300, 100, 0, "arm_length"},
		{"arm below base", 300, 100, 100, "arm_length"},
		{"beam too short", 60, 100, 40, "beam_length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGeometry(tt.beam, tt.fulcrum, tt.arm, 432, 256)
			var cerr *ConfigError
			if !errors.As(err, &cerr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cerr.Field != tt.field {
				t.Errorf("expected field %s, got %s", tt.field, cerr.Field)
			}
		})
	}
}

func TestEasingCurves(t *testing.T) {
	for _, name := range EasingNames() {
		e, err := LookupEasing(name)
		if err != nil {
			t.Fatalf("lookup %s: %v", name, err)
		}
		if e(0) != 0 || e(1) != 1 {
			t.Errorf("%s: expected endpoints 0 and 1, got %f and %f", name, e(0), e(1))
		}
		prev := 0.0
		for i := 1; i <= 1000; i++ {
			v := e(float64(i) / 1000)
			if v < prev {
				t.Fatalf("%s: not monotonic at %d", name, i)
			}
			prev = v
		}
	}

	if _, err := LookupEasing("bounce"); !errors.Is(err, ErrConfig) {
		t.Errorf("expected ErrConfig for unknown easing, got %v", err)
	}
}
