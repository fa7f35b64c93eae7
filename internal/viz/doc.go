// Package viz draws tilt trajectories in the terminal.
//
//   - [Canvas]: braille dot canvas that outlines scene primitives
//   - [Preview]: Bubble Tea model that plays a sample's video timeline
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	R     - Restart from the first frame
//	L     - Toggle looping
//	[ ]   - Step one frame back/forward
//	End   - Jump to the final frame
//	Q     - Quit
package viz
