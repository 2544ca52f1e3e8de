// Package kibom invokes the KiBOM bill-of-materials generator.
package kibom

import (
	"context"
	"log/slog"
	"path/filepath"

	"git.home.luguber.info/inful/kixport/internal/config"
	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/logfields"
	"git.home.luguber.info/inful/kixport/internal/toolchain"
)

// Generator renders BOM files from an XML netlist.
type Generator struct {
	binary string
	runner toolchain.Runner
}

// New returns a Generator invoking binary (usually "kibom") through runner.
func New(binary string, runner toolchain.Runner) *Generator {
	if binary == "" {
		binary = config.DefaultKiBOM
	}
	return &Generator{binary: binary, runner: runner}
}

// Request describes one BOM rendering.
type Request struct {
	Netlist  string // python-bom XML
	INI      string // KiBOM configuration
	Selector string // variant selector; empty renders the unfiltered BOM
	Output   string // target file; its extension selects the format
}

// Generate runs KiBOM once. KiBOM writes Output's base name into Output's
// directory, which is passed as an absolute path.
func (g *Generator) Generate(ctx context.Context, req Request) error {
	dir, err := filepath.Abs(filepath.Dir(req.Output))
	if err != nil {
		return kerrors.FileSystem("abs", req.Output, err)
	}

	args := []string{"--cfg", req.INI, "-d", dir}
	if req.Selector != "" {
		args = append(args, "-r", req.Selector)
	}
	args = append(args, req.Netlist, filepath.Base(req.Output))

	slog.Info("Running KiBOM", logfields.Variant(req.Selector), logfields.Path(req.Output))
	if err := g.runner.Run(ctx, g.binary, args...); err != nil {
		return kerrors.ExternalTool(g.binary, err).WithContext("output", req.Output)
	}
	return nil
}
