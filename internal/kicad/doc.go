// Package kicad wraps the kicad-cli subcommands used to export fabrication
// artifacts and reads metadata from KiCad project files.
package kicad
