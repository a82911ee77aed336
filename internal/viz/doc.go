// Package viz draws a running creeper in the terminal.
//
// [Model] is a Bubble Tea program that steps a scenario and renders it from
// above on a braille [Canvas]: body, legs, feet, tail and the end point it
// chases, with a lag graph and, when audio is enabled, spring-smoothed
// spectrum bars.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the scenario
//	+/-   - Grow or shrink the cursor (rescales the creeper, rebuilds the rig)
//	A     - Toggle the alive cursor
//	W     - Simulate a window change
//	F     - Force every leg to step
//	P     - Teleport every leg onto its target
//	G     - Toggle GIF recording
//	?     - Show help overlay
package viz
