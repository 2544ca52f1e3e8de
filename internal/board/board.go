// Package board derives every per-board path and artifact name from a board
// entry and the global settings. Nothing here touches the filesystem.
package board

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/kixport/internal/config"
	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
)

// KiCad file extensions sharing the project's stem.
const (
	SchematicExt = ".kicad_sch"
	PCBExt       = ".kicad_pcb"
)

// Variant selects a subset of BOM line items. An empty Selector means no filter.
type Variant struct {
	Name     string
	Selector string
}

// NoFilter is the implicit variant used when a board declares none.
var NoFilter = Variant{}

// Board is one circuit-board project with all derived paths resolved.
type Board struct {
	Name        string
	Project     string // .kicad_pro
	Schematic   string // .kicad_sch
	PCB         string // .kicad_pcb
	AssemblyDir string // durable artifacts
	BuildDir    string // intermediate artifacts
	variants    []Variant
}

// New builds a Board from one configuration entry.
func New(raw config.BoardConfig, settings config.Settings) (Board, error) {
	if raw.KiCadPro == "" {
		return Board{}, kerrors.ConfigRequired("kicad_pro").WithContext("board", raw.Name)
	}

	variants := make([]Variant, 0, len(raw.Variants))
	for _, v := range raw.Variants {
		variants = append(variants, Variant{Name: v.Name, Selector: v.Variant})
	}
	if len(variants) == 0 {
		variants = append(variants, NoFilter)
	}

	return Board{
		Name:        raw.Name,
		Project:     raw.KiCadPro,
		Schematic:   withExt(raw.KiCadPro, SchematicExt),
		PCB:         withExt(raw.KiCadPro, PCBExt),
		AssemblyDir: filepath.Join(settings.AssemblyDir, raw.Name),
		BuildDir:    filepath.Join(settings.BuildDir, raw.Name),
		variants:    variants,
	}, nil
}

// Variants returns the board's variants in configuration order. The slice is
// never empty and must not be modified by the caller.
func (b Board) Variants() []Variant {
	if len(b.variants) == 0 {
		return []Variant{NoFilter}
	}
	return b.variants
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// Artifact paths. Assembly artifacts are the deliverables; build artifacts are
// raw tool output kept for inspection.

func (b Board) SchematicPDF() string { return b.assembly("-schematic.pdf") }
func (b Board) GerberDir() string    { return b.build("-gerber") }
func (b Board) GerberZip() string    { return b.assembly("-gerber.zip") }
func (b Board) NetlistXML() string   { return b.build("-bom.xml") }
func (b Board) FabPDF() string       { return b.assembly("-fab.pdf") }
func (b Board) STEP() string         { return b.assembly(".step") }
func (b Board) RawPositions() string { return b.build("-pos.csv") }
func (b Board) Positions() string    { return b.assembly("-jlcpcb-cpl.csv") }
func (b Board) Report() string       { return b.build("-report.json") }

// FabLayerPDF is the intermediate PDF for one fabrication page set.
func (b Board) FabLayerPDF(fab config.FabOutput) string {
	return b.build("-fab-" + fab.Name + ".pdf")
}

// BOMFileName is {board}-{selector}-{file_id}.{format}, or {board}-{file_id}.{format}
// for the unfiltered variant.
func (b Board) BOMFileName(v Variant, fileID, format string) string {
	if v.Selector == "" {
		return b.Name + "-" + fileID + "." + format
	}
	return b.Name + "-" + v.Selector + "-" + fileID + "." + format
}

// BOMFile is the assembly path of one BOM rendering.
func (b Board) BOMFile(v Variant, fileID, format string) string {
	return filepath.Join(b.AssemblyDir, b.BOMFileName(v, fileID, format))
}

func (b Board) assembly(suffix string) string {
	return filepath.Join(b.AssemblyDir, b.Name+suffix)
}

func (b Board) build(suffix string) string {
	return filepath.Join(b.BuildDir, b.Name+suffix)
}
