// Package build runs the per-board export pipeline: it sequences the
// kicad-cli and KiBOM invocations, post-processes their output into the
// assembly directory and reports each board's outcome.
//
// Boards are built one at a time and every stage blocks until its tool
// exits. The first failing stage aborts the board and the whole run; boards
// finished earlier keep their artifacts.
package build
