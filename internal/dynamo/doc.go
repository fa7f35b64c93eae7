// Package dynamo computes the outcome and tilt trajectory of a balance scale.
//
// The package defines the value types shared by the whole generator and the
// two pure operations on them:
//
//   - [WeightConfig]: weights placed on each pan
//   - [Resolve]: sums both pans and picks the heavier side
//   - [Geometry]: fixed scene geometry (beam, fulcrum, stop line)
//   - [Generate]: frame-by-frame [TiltState] sequence from level to the
//     point where the lower pan touches the stop line
//
// # Example
//
//	g, _ := dynamo.NewGeometry(300, 100, 40, 432, 256)
//	out, _ := dynamo.Resolve(dynamo.WeightConfig{Left: []int{5, 3, 7}, Right: []int{4, 2}})
//	traj, _ := dynamo.Generate(g, out, 30, dynamo.EaseOutCubic)
//
// # Coordinates
//
// Positions are in image space: x grows to the right and y grows downward.
// A positive angle rotates the beam clockwise on screen and lowers the right
// end, so a left-heavy outcome has a negative target angle.
//
// # Thread Safety
//
// Every function here is pure. Trajectories for different samples may be
// generated concurrently.
package dynamo
