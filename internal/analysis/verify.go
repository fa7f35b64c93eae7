package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/scaletilt/internal/dynamo"
)

// DefaultTolerance bounds how far the final pan may sit from the base line.
const DefaultTolerance = 1e-6

var ErrInvariant = errors.New("analysis: trajectory invariant violated")

type Violation struct {
	Frame  int
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("analysis: frame %d: %s", v.Frame, v.Reason)
}

func (v *Violation) Unwrap() error { return ErrInvariant }

// Verify re-checks a generated trajectory: level start, monotonic angle
// magnitude, rigid beam about a fixed pivot, a single terminal state, and the
// lower pan resting on the base line at the end.
func Verify(traj *dynamo.Trajectory, tol float64) error {
	states := traj.States
	if len(states) < 2 {
		return &Violation{Frame: 0, Reason: fmt.Sprintf("only %d states", len(states))}
	}
	g := traj.Geometry

	if states[0].Angle != 0 {
		return &Violation{Frame: 0, Reason: fmt.Sprintf("starts tilted at %g rad", states[0].Angle)}
	}

	for i, s := range states {
		if s.Terminal != (i == len(states)-1) {
			return &Violation{Frame: i, Reason: "terminal flag out of place"}
		}
		if i > 0 && math.Abs(s.Angle) < math.Abs(states[i-1].Angle) {
			return &Violation{Frame: i, Reason: "angle magnitude decreased"}
		}
		if math.Abs(s.Angle) > math.Abs(traj.TargetAngle) {
			return &Violation{Frame: i, Reason: "overshoots target angle"}
		}
		if traj.TargetAngle != 0 && s.Angle != 0 && math.Signbit(s.Angle) != math.Signbit(traj.TargetAngle) {
			return &Violation{Frame: i, Reason: "rotates away from the heavier side"}
		}
		mid := dynamo.Vec2{X: (s.LeftEnd.X + s.RightEnd.X) / 2, Y: (s.LeftEnd.Y + s.RightEnd.Y) / 2}
		if mid.Sub(g.Fulcrum).Len() > tol {
			return &Violation{Frame: i, Reason: "beam is not centered on the fulcrum"}
		}
		if math.Abs(s.RightEnd.Sub(s.LeftEnd).Len()-g.BeamLength) > tol {
			return &Violation{Frame: i, Reason: "beam length changed"}
		}
	}

	last := states[len(states)-1]
	if traj.Outcome.Winner == dynamo.Tie {
		if traj.TargetAngle != 0 || last.Angle != 0 {
			return &Violation{Frame: last.Frame, Reason: "tie must stay level"}
		}
		return nil
	}

	if d := math.Abs(last.LowerPan().Y - g.BaseY); d > tol {
		return &Violation{Frame: last.Frame, Reason: fmt.Sprintf("lower pan misses base line by %g", d)}
	}
	return nil
}

type Summary struct {
	Frames        int
	TargetDegrees float64
	PeakStep      float64 // largest per-frame change, degrees
	FirstMove     int     // first frame with a non-zero angle, -1 if level
	Clearance     float64 // base line minus final lower pan y
}

// Stats summarizes the motion of a trajectory.
func Stats(traj *dynamo.Trajectory) Summary {
	st := Summary{
		Frames:        len(traj.States),
		TargetDegrees: traj.TargetAngle * 180 / math.Pi,
		FirstMove:     -1,
	}
	for i, s := range traj.States {
		if st.FirstMove < 0 && s.Angle != 0 {
			st.FirstMove = i
		}
		if i > 0 {
			step := math.Abs(s.Degrees() - traj.States[i-1].Degrees())
			if step > st.PeakStep {
				st.PeakStep = step
			}
		}
	}
	if len(traj.States) > 0 {
		st.Clearance = traj.Geometry.BaseY - traj.Last().LowerPan().Y
	}
	return st
}
