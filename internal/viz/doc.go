// Package viz renders a running simulation in the terminal.
//
//   - [Canvas]: braille sub-pixel grid
//   - [Camera]: perspective projection looking at the anchor
//   - [TermRenderer]: scene renderer drawing bodies onto a canvas
//   - [LiveModel]: Bubble Tea program that advances one frame per tick
//
// # Key Bindings
//
//	Space   - Pause/Resume
//	N       - Single frame while paused
//	+/-     - Zoom
//	Arrows  - Rotate camera
//	T       - Cycle color themes
//	Q       - Quit
package viz
