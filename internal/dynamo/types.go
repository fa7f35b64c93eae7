package dynamo

import (
	"fmt"
	"math"
)

type Side int

const (
	Tie Side = iota
	Left
	Right
)

func (s Side) String() string {
	switch s {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "tie"
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseSide is the inverse of Side.String.
func ParseSide(s string) (Side, error) {
	switch s {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "tie":
		return Tie, nil
	}
	return Tie, fmt.Errorf("unknown side: %q", s)
}

type WeightConfig struct {
	Left  []int `json:"left_weights" yaml:"left_weights"`
	Right []int `json:"right_weights" yaml:"right_weights"`
}

// Validate checks both pans are non-empty and every weight lies in [min, max].
func (w WeightConfig) Validate(min, max int) error {
	if err := checkPan("left_weights", w.Left, min, max); err != nil {
		return err
	}
	return checkPan("right_weights", w.Right, min, max)
}

func checkPan(field string, weights []int, min, max int) error {
	if len(weights) == 0 {
		return &ConfigError{Field: field, Value: 0, Reason: "pan has no weights"}
	}
	for _, v := range weights {
		if v < min || v > max {
			return &ConfigError{Field: field, Value: float64(v), Reason: fmt.Sprintf("weight outside [%d, %d]", min, max)}
		}
	}
	return nil
}

type Outcome struct {
	LeftSum  int  `json:"total_left"`
	RightSum int  `json:"total_right"`
	Winner   Side `json:"heavier_side"`
}

// Lower returns the sum on the winning side followed by the other one.
func (o Outcome) Lower() (heavy, light int) {
	if o.Winner == Right {
		return o.RightSum, o.LeftSum
	}
	return o.LeftSum, o.RightSum
}

type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Len() float64    { return math.Hypot(v.X, v.Y) }

// Geometry is the fixed layout of the scale. Build it with NewGeometry.
type Geometry struct {
	BeamLength    float64 `json:"beam_length"`
	FulcrumHeight float64 `json:"fulcrum_height"`
	ArmLength     float64 `json:"arm_length"`
	BaseY         float64 `json:"base_y"`
	Fulcrum       Vec2    `json:"fulcrum"`
}

// NewGeometry places the pivot FulcrumHeight above baseY at x = centerX.
func NewGeometry(beamLength, fulcrumHeight, armLength, baseY, centerX float64) (Geometry, error) {
	g := Geometry{
		BeamLength:    beamLength,
		FulcrumHeight: fulcrumHeight,
		ArmLength:     armLength,
		BaseY:         baseY,
		Fulcrum:       Vec2{X: centerX, Y: baseY - fulcrumHeight},
	}
	if err := g.Validate(); err != nil {
		return Geometry{}, err
	}
	return g, nil
}

func (g Geometry) HalfBeam() float64 { return g.BeamLength / 2 }

func (g Geometry) Validate() error {
	switch {
	case !(g.BeamLength > 0):
		return &ConfigError{Field: "beam_length", Value: g.BeamLength, Reason: "must be positive"}
	case !(g.FulcrumHeight > 0):
		return &ConfigError{Field: "fulcrum_height", Value: g.FulcrumHeight, Reason: "must be positive"}
	case !(g.ArmLength > 0):
		return &ConfigError{Field: "arm_length", Value: g.ArmLength, Reason: "must be positive"}
	case g.Fulcrum.Y != g.BaseY-g.FulcrumHeight:
		return &ConfigError{Field: "fulcrum", Value: g.Fulcrum.Y, Reason: "pivot must sit fulcrum_height above base"}
	}
	drop := g.BaseY - g.Fulcrum.Y - g.ArmLength
	if drop <= 0 {
		return &ConfigError{Field: "arm_length", Value: g.ArmLength, Reason: "pan starts on or below the base line"}
	}
	if drop > g.HalfBeam() {
		return &ConfigError{Field: "beam_length", Value: g.BeamLength, Reason: "beam too short for the pan to reach the base line"}
	}
	return nil
}

// Ends returns the beam end points for angle theta.
func (g Geometry) Ends(theta float64) (left, right Vec2) {
	h := g.HalfBeam()
	sin, cos := math.Sincos(theta)
	left = Vec2{X: g.Fulcrum.X - h*cos, Y: g.Fulcrum.Y - h*sin}
	right = Vec2{X: g.Fulcrum.X + h*cos, Y: g.Fulcrum.Y + h*sin}
	return left, right
}

// Pan returns where a pan hangs below beam end e.
func (g Geometry) Pan(e Vec2) Vec2 { return Vec2{X: e.X, Y: e.Y + g.ArmLength} }

type TiltState struct {
	Frame    int     `json:"frame"`
	Progress float64 `json:"progress"`
	Angle    float64 `json:"angle"`
	LeftEnd  Vec2    `json:"left_end"`
	RightEnd Vec2    `json:"right_end"`
	LeftPan  Vec2    `json:"left_pan"`
	RightPan Vec2    `json:"right_pan"`
	Terminal bool    `json:"terminal"`
}

// LowerPan returns the pan on the side the beam tips toward. A level beam
// reports the left pan.
func (s TiltState) LowerPan() Vec2 {
	if s.RightPan.Y > s.LeftPan.Y {
		return s.RightPan
	}
	return s.LeftPan
}

// Degrees is the angle in degrees.
func (s TiltState) Degrees() float64 { return s.Angle * 180 / math.Pi }

type Trajectory struct {
	Geometry    Geometry
	Outcome     Outcome
	TargetAngle float64
	States      []TiltState
}

func (t *Trajectory) First() TiltState { return t.States[0] }
func (t *Trajectory) Last() TiltState  { return t.States[len(t.States)-1] }

// Angles returns the angle of every frame in order.
func (t *Trajectory) Angles() []float64 {
	out := make([]float64, len(t.States))
	for i, s := range t.States {
		out[i] = s.Angle
	}
	return out
}
