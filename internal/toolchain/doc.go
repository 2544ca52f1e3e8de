// Package toolchain runs the external KiCad tools.
//
// Every invocation blocks until the process exits. A non-zero exit is
// reported as a *ToolError carrying the full command line, the exit code and
// whatever the tool wrote to stderr. Callers depend on the Runner interface so
// tests can substitute a fake that writes artifacts instead of spawning
// kicad-cli or kibom.
package toolchain
