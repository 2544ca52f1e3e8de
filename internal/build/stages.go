package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"git.home.luguber.info/inful/kixport/internal/board"
	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/fabpdf"
	"git.home.luguber.info/inful/kixport/internal/gerberzip"
	"git.home.luguber.info/inful/kixport/internal/kibom"
	"git.home.luguber.info/inful/kixport/internal/kicad"
	"git.home.luguber.info/inful/kixport/internal/logfields"
	"git.home.luguber.info/inful/kixport/internal/metrics"
	"git.home.luguber.info/inful/kixport/internal/placement"
)

// Stage names, in execution order.
const (
	StageVersion     = "version"
	StageDirectories = "directories"
	StageSchematic   = "schematic"
	StageGerbers     = "gerbers"
	StageNetlist     = "netlist"
	StageBOM         = "bom"
	StageFab         = "fab"
	StageSTEP        = "step"
	StagePositions   = "positions"
)

// Stage is one step of a board build.
type Stage func(ctx context.Context, bs *boardState) error

// StageErrorKind classifies how a stage ended.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"
	StageErrorCanceled StageErrorKind = "canceled"
)

// StageError records which board and stage failed. The wrapped error keeps
// its category so exit codes reflect the root cause.
type StageError struct {
	Kind  StageErrorKind
	Board string
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("board %s: %s stage %s: %v", e.Board, e.Kind, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type namedStage struct {
	name string
	fn   Stage
}

// boardState carries one board through the stages.
type boardState struct {
	builder *Builder
	board   board.Board
	report  *Report
}

func (bs *boardState) addArtifact(kind, path string) {
	bs.report.Artifacts = append(bs.report.Artifacts, path)
	bs.builder.recorder.IncArtifacts(kind, 1)
}

func pipeline() []namedStage {
	return []namedStage{
		{StageVersion, stageReadVersion},
		{StageDirectories, stageEnsureDirectories},
		{StageSchematic, stageSchematicPDF},
		{StageGerbers, stageGerbers},
		{StageNetlist, stageNetlist},
		{StageBOM, stageBOM},
		{StageFab, stageFabPDF},
		{StageSTEP, stageSTEP},
		{StagePositions, stagePositions},
	}
}

// runStages executes stages in order, timing each and stopping at the first
// error or cancellation.
func runStages(ctx context.Context, bs *boardState, stages []namedStage) error {
	rec := bs.builder.recorder
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			rec.IncStageResult(st.name, metrics.ResultCanceled)
			bs.report.addStage(st.name, 0, metrics.ResultCanceled)
			return &StageError{Kind: StageErrorCanceled, Board: bs.board.Name, Stage: st.name, Err: err}
		}

		slog.Debug("Stage started", logfields.Board(bs.board.Name), logfields.Stage(st.name))
		t0 := time.Now()
		err := st.fn(ctx, bs)
		dur := time.Since(t0)
		rec.ObserveStageDuration(st.name, dur)

		if err != nil {
			kind, result := StageErrorFatal, metrics.ResultFailed
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				kind, result = StageErrorCanceled, metrics.ResultCanceled
			}
			rec.IncStageResult(st.name, result)
			bs.report.addStage(st.name, dur, result)
			return &StageError{Kind: kind, Board: bs.board.Name, Stage: st.name, Err: err}
		}

		rec.IncStageResult(st.name, metrics.ResultSuccess)
		bs.report.addStage(st.name, dur, metrics.ResultSuccess)
	}
	return nil
}

func stageReadVersion(_ context.Context, bs *boardState) error {
	v, err := kicad.ReadVersion(bs.board.Project)
	if err != nil {
		return err
	}
	bs.report.Version = v
	slog.Info("Board version", logfields.Board(bs.board.Name), logfields.Version(v))
	return nil
}

func stageEnsureDirectories(_ context.Context, bs *boardState) error {
	for _, dir := range []string{bs.board.AssemblyDir, bs.board.BuildDir} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return kerrors.FileSystem("mkdir", dir, err)
		}
	}
	return nil
}

func stageSchematicPDF(ctx context.Context, bs *boardState) error {
	out := bs.board.SchematicPDF()
	if err := bs.builder.kicad.ExportSchematicPDF(ctx, bs.board.Schematic, out); err != nil {
		return err
	}
	bs.addArtifact("schematic", out)
	return nil
}

func stageGerbers(ctx context.Context, bs *boardState) error {
	dir := bs.board.GerberDir()
	if err := bs.builder.kicad.ExportGerbers(ctx, bs.board.PCB, dir); err != nil {
		return err
	}
	out := bs.board.GerberZip()
	if _, err := gerberzip.Create(dir, out); err != nil {
		return err
	}
	bs.addArtifact("gerber", out)
	return nil
}

func stageNetlist(ctx context.Context, bs *boardState) error {
	return bs.builder.kicad.ExportNetlist(ctx, bs.board.Schematic, bs.board.NetlistXML())
}

// stageBOM renders every configured KiBOM output in every format for every
// variant, in that nesting order.
func stageBOM(ctx context.Context, bs *boardState) error {
	for _, spec := range bs.builder.settings.Outputs.KiBOM {
		for _, format := range spec.Formats {
			for _, v := range bs.board.Variants() {
				out := bs.board.BOMFile(v, spec.FileID, format)
				slog.Debug("Rendering BOM",
					logfields.Board(bs.board.Name),
					logfields.Variant(v.Selector),
					logfields.Format(format))
				err := bs.builder.kibom.Generate(ctx, kibom.Request{
					Netlist:  bs.board.NetlistXML(),
					INI:      spec.INI,
					Selector: v.Selector,
					Output:   out,
				})
				if err != nil {
					return err
				}
				bs.addArtifact("bom", out)
			}
		}
	}
	return nil
}

func stageFabPDF(ctx context.Context, bs *boardState) error {
	specs := bs.builder.settings.Outputs.Fab
	inputs := make([]string, 0, len(specs))
	for _, fab := range specs {
		out := bs.board.FabLayerPDF(fab)
		if err := bs.builder.kicad.ExportLayersPDF(ctx, bs.board.PCB, fab, out); err != nil {
			return err
		}
		inputs = append(inputs, out)
	}

	out := bs.board.FabPDF()
	if err := fabpdf.Merge(inputs, out); err != nil {
		return err
	}
	bs.addArtifact("fab", out)
	return nil
}

func stageSTEP(ctx context.Context, bs *boardState) error {
	out := bs.board.STEP()
	if err := bs.builder.kicad.ExportSTEP(ctx, bs.board.PCB, out); err != nil {
		return err
	}
	bs.addArtifact("step", out)
	return nil
}

func stagePositions(ctx context.Context, bs *boardState) error {
	raw := bs.board.RawPositions()
	if err := bs.builder.kicad.ExportPositions(ctx, bs.board.PCB, raw); err != nil {
		return err
	}
	out := bs.board.Positions()
	if _, err := placement.Reshape(raw, out); err != nil {
		return err
	}
	bs.addArtifact("placement", out)
	return nil
}
