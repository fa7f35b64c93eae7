package dynamo

import (
	"math"
)

// parallelThreshold is the frame count above which Generate fans out.
const parallelThreshold = 256

// TargetAngle returns the signed angle at which the pan on the winning side
// touches the base line. Ties return 0.
func TargetAngle(g Geometry, winner Side) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if winner == Tie {
		return 0, nil
	}

	// lower pan y = pivot.Y + h*sin|a| + arm, solved for |a| at BaseY
	ratio := (g.BaseY - g.Fulcrum.Y - g.ArmLength) / g.HalfBeam()
	mag := math.Asin(ratio)

	if winner == Left {
		return -mag, nil
	}
	return mag, nil
}

// Generate produces frames states tilting the beam from level to the target
// angle. The first state is level, only the last is terminal, and the angle
// magnitude never decreases. A tie yields frames level states.
func Generate(g Geometry, o Outcome, frames int, ease Easing) (*Trajectory, error) {
	if frames < 2 {
		return nil, &ConfigError{Field: "frames", Value: float64(frames), Reason: "need at least 2 frames"}
	}
	if ease == nil {
		return nil, &ConfigError{Field: "easing", Reason: "no easing function"}
	}

	target, err := TargetAngle(g, o.Winner)
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{
		Geometry:    g,
		Outcome:     o,
		TargetAngle: target,
		States:      make([]TiltState, frames),
	}

	fill := func(start, end int) {
		for i := start; i < end; i++ {
			traj.States[i] = stateAt(g, target, i, frames, ease)
		}
	}
	if frames > parallelThreshold {
		ParallelFor(frames, parallelThreshold/4, fill)
	} else {
		fill(0, frames)
	}

	return traj, nil
}

func stateAt(g Geometry, target float64, i, frames int, ease Easing) TiltState {
	var p float64
	switch i {
	case 0:
		p = 0
	case frames - 1:
		p = 1
	default:
		p = clamp01(ease(float64(i) / float64(frames-1)))
	}

	angle := target * p
	if target == 0 {
		angle = 0
	}

	left, right := g.Ends(angle)
	return TiltState{
		Frame:    i,
		Progress: p,
		Angle:    angle,
		LeftEnd:  left,
		RightEnd: right,
		LeftPan:  g.Pan(left),
		RightPan: g.Pan(right),
		Terminal: i == frames-1,
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
