package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"git.home.luguber.info/inful/kixport/internal/config"
	"git.home.luguber.info/inful/kixport/internal/kicad"
	"git.home.luguber.info/inful/kixport/internal/logfields"
	"git.home.luguber.info/inful/kixport/internal/toolchain"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct {
	SkipTools bool `name:"skip-tools" help:"Do not check that kicad-cli and kibom are on PATH"`
}

func (v *ValidateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	return RunValidate(os.Stdout, cfg, !v.SkipTools)
}

// RunValidate prints the derived paths and BOM plan of every board. Missing
// project versions and tools are reported as warnings.
func RunValidate(w io.Writer, cfg *config.Config, checkTools bool) error {
	for _, name := range config.DuplicateBoardNames(cfg) {
		slog.Warn("Duplicate board name; later boards overwrite earlier artifacts", logfields.Board(name))
	}

	boards, err := resolveBoards(cfg, nil)
	if err != nil {
		return err
	}

	for _, b := range boards {
		_, _ = fmt.Fprintf(w, "%s\n", b.Name)
		_, _ = fmt.Fprintf(w, "  project:   %s\n", b.Project)
		if version, err := kicad.ReadVersion(b.Project); err != nil {
			slog.Warn("Cannot read board version", logfields.Board(b.Name), logfields.Error(err))
		} else {
			_, _ = fmt.Fprintf(w, "  version:   %s\n", version)
		}
		_, _ = fmt.Fprintf(w, "  schematic: %s\n", b.Schematic)
		_, _ = fmt.Fprintf(w, "  pcb:       %s\n", b.PCB)
		_, _ = fmt.Fprintf(w, "  assembly:  %s\n", b.AssemblyDir)
		_, _ = fmt.Fprintf(w, "  build:     %s\n", b.BuildDir)
		for _, spec := range cfg.Settings.Outputs.KiBOM {
			for _, format := range spec.Formats {
				for _, variant := range b.Variants() {
					_, _ = fmt.Fprintf(w, "  bom:       %s\n", b.BOMFile(variant, spec.FileID, format))
				}
			}
		}
	}

	if checkTools {
		missing := toolchain.LookPath(cfg.Settings.Tools.KiCadCLI, cfg.Settings.Tools.KiBOM)
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			slog.Warn("Tool not found on PATH", logfields.Tool(name), logfields.Error(missing[name]))
		}
	}

	_, _ = fmt.Fprintf(w, "%d board(s) valid\n", len(boards))
	return nil
}
