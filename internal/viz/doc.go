// Package viz is a terminal monitor for a running bridge.
//
// A [Feed] is attached to the executor as an observer and to the acceptor
// as a state hook. The bubbletea [Model] polls it on a frame timer, so the
// tick loop never blocks on rendering.
//
// # Key Bindings
//
//	P - Pause/Resume the display
//	C - Clear the altitude history
//	T - Cycle color themes
//	Q - Quit the monitor
package viz
