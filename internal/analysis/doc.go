// Package analysis checks and summarizes generated tilt trajectories.
//
//   - [Verify]: re-checks a trajectory against the motion invariants before it
//     is written to disk
//   - [Stats]: angle, step size and base-line clearance for inspection
//
// # Verification
//
// The batch driver refuses to store a sample whose trajectory fails:
//
//	if err := analysis.Verify(traj, analysis.DefaultTolerance); err != nil {
//	    // sample counted as failed
//	}
package analysis
