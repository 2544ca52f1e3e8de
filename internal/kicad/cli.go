package kicad

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/kixport/internal/config"
	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/logfields"
	"git.home.luguber.info/inful/kixport/internal/toolchain"
)

// CLI issues kicad-cli export commands.
type CLI struct {
	binary string
	runner toolchain.Runner
}

// NewCLI returns a CLI invoking binary (usually "kicad-cli") through runner.
func NewCLI(binary string, runner toolchain.Runner) *CLI {
	if binary == "" {
		binary = config.DefaultKiCadCLI
	}
	return &CLI{binary: binary, runner: runner}
}

// ExportNetlist writes the python-bom XML netlist consumed by KiBOM.
func (c *CLI) ExportNetlist(ctx context.Context, schematic, out string) error {
	slog.Info("Exporting XML netlist", logfields.Path(out))
	return c.run(ctx, "sch", "export", "python-bom", "-o", out, schematic)
}

// ExportSchematicPDF plots the whole schematic to one PDF.
func (c *CLI) ExportSchematicPDF(ctx context.Context, schematic, out string) error {
	slog.Info("Generating schematic PDF", logfields.Path(out))
	return c.run(ctx, "sch", "export", "pdf", "-o", out, schematic)
}

// ExportGerbers writes per-layer Gerbers followed by the drill files into dir,
// creating it if needed. Coordinates use the drill/place file origin.
func (c *CLI) ExportGerbers(ctx context.Context, pcb, dir string) error {
	slog.Info("Generating gerber files", logfields.Path(dir))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return kerrors.FileSystem("mkdir", dir, err)
	}
	if err := c.run(ctx, "pcb", "export", "gerbers", "-o", dir, "--use-drill-file-origin", pcb); err != nil {
		return err
	}
	// kicad-cli treats a trailing separator as "write into this directory".
	return c.run(ctx, "pcb", "export", "drill", "-o", dir+string(filepath.Separator), pcb)
}

// ExportLayersPDF plots the layers named by fab to one PDF.
func (c *CLI) ExportLayersPDF(ctx context.Context, pcb string, fab config.FabOutput, out string) error {
	slog.Info("Generating fabrication layer PDF", slog.String("fab", fab.Name), logfields.Path(out))
	args := []string{"pcb", "export", "pdf", "--output", out, "--layers", fab.Layers}
	if fab.Mirror {
		args = append(args, "--mirror")
	}
	if fab.BorderTitle() {
		args = append(args, "--include-border-title")
	}
	args = append(args, pcb)
	return c.run(ctx, args...)
}

// ExportSTEP writes a 3D model, substituting placeholder models for missing parts.
func (c *CLI) ExportSTEP(ctx context.Context, pcb, out string) error {
	slog.Info("Generating STEP file", logfields.Path(out))
	return c.run(ctx, "pcb", "export", "step", "--subst-models", "--output", out, pcb)
}

// ExportPositions writes the pick-and-place file in millimetres. The format
// (csv, ascii, gerber) is taken from out's extension.
func (c *CLI) ExportPositions(ctx context.Context, pcb, out string) error {
	slog.Info("Generating position file", logfields.Path(out))
	format := strings.TrimPrefix(filepath.Ext(out), ".")
	return c.run(ctx, "pcb", "export", "pos", "--units", "mm", "--output", out, "--format", format, pcb)
}

func (c *CLI) run(ctx context.Context, args ...string) error {
	if err := c.runner.Run(ctx, c.binary, args...); err != nil {
		return kerrors.ExternalTool(c.binary, err).WithContext("subcommand", strings.Join(args[:3], " "))
	}
	return nil
}
