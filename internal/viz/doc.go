// Package viz renders wave fields in the terminal.
//
// Fields are resampled onto a screen raster with [Project], which unrolls
// cylindrical and spherical-radial grids onto the disk they describe, and
// then drawn as:
//
//   - [Heatmap]: 24-bit colour half-block heatmap (lipgloss)
//   - [ASCIIHeatmap]: density ramp for plain terminals
//   - [Canvas]: Braille line plot used for centre-line profiles
//
// [Model] is a Bubble Tea program that steps a wave.Integrator on every tick.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Restart from the initial pulse
//	+/-   - Steps per frame
//	T     - Cycle colour themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	[ ]   - Replay recent frames
package viz
