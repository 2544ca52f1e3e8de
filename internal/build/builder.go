package build

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/kixport/internal/board"
	"git.home.luguber.info/inful/kixport/internal/config"
	"git.home.luguber.info/inful/kixport/internal/git"
	"git.home.luguber.info/inful/kixport/internal/history"
	"git.home.luguber.info/inful/kixport/internal/kibom"
	"git.home.luguber.info/inful/kixport/internal/kicad"
	"git.home.luguber.info/inful/kixport/internal/logfields"
	"git.home.luguber.info/inful/kixport/internal/metrics"
	"git.home.luguber.info/inful/kixport/internal/notify"
	"git.home.luguber.info/inful/kixport/internal/toolchain"
)

// Builder runs the export pipeline for boards sharing one set of settings.
type Builder struct {
	settings  config.Settings
	kicad     *kicad.CLI
	kibom     *kibom.Generator
	recorder  metrics.Recorder
	history   history.Store
	publisher notify.Publisher
	describe  func(path string) (git.Revision, error)
	now       func() time.Time
}

// New returns a Builder invoking the configured tools through runner.
func New(settings config.Settings, runner toolchain.Runner) *Builder {
	return &Builder{
		settings:  settings,
		kicad:     kicad.NewCLI(settings.Tools.KiCadCLI, runner),
		kibom:     kibom.New(settings.Tools.KiBOM, runner),
		recorder:  metrics.NoopRecorder{},
		publisher: notify.NoopPublisher{},
		describe:  git.Describe,
		now:       time.Now,
	}
}

// WithRecorder injects a metrics recorder.
func (b *Builder) WithRecorder(r metrics.Recorder) *Builder {
	if r != nil {
		b.recorder = r
	}
	return b
}

// WithHistory records every board outcome in store.
func (b *Builder) WithHistory(store history.Store) *Builder {
	b.history = store
	return b
}

// WithPublisher announces every board outcome through p.
func (b *Builder) WithPublisher(p notify.Publisher) *Builder {
	if p != nil {
		b.publisher = p
	}
	return b
}

// Run builds boards in order under a fresh run id. It stops at the first
// failing board and returns that board's error; reports of every attempted
// board are returned either way.
func (b *Builder) Run(ctx context.Context, boards []board.Board) ([]*Report, error) {
	runID := uuid.NewString()
	start := b.now()
	slog.Info("Build started", logfields.RunID(runID), logfields.Count(len(boards)))

	reports := make([]*Report, 0, len(boards))
	for _, brd := range boards {
		report, err := b.BuildBoard(ctx, runID, brd)
		reports = append(reports, report)
		if err != nil {
			slog.Error("Build aborted",
				logfields.RunID(runID),
				logfields.Board(brd.Name),
				logfields.Error(err))
			return reports, err
		}
	}

	slog.Info("Build complete",
		logfields.RunID(runID),
		logfields.Count(len(boards)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return reports, nil
}

// BuildBoard runs every stage for one board. The returned report is never nil.
func (b *Builder) BuildBoard(ctx context.Context, runID string, brd board.Board) (*Report, error) {
	start := b.now()
	report := &Report{
		RunID:     runID,
		Board:     brd.Name,
		StartedAt: start.UTC(),
		Artifacts: []string{},
	}
	slog.Info("Building board", logfields.RunID(runID), logfields.Board(brd.Name))

	if rev, err := b.describe(brd.Project); err != nil {
		slog.Debug("No git revision for board", logfields.Board(brd.Name), logfields.Error(err))
	} else {
		report.Revision = &rev
	}

	bs := &boardState{builder: b, board: brd, report: report}
	err := runStages(ctx, bs, pipeline())

	elapsed := time.Since(start)
	report.DurationMS = elapsed.Milliseconds()
	b.recorder.ObserveBoardDuration(brd.Name, elapsed)

	switch {
	case err == nil:
		report.Outcome = OutcomeSuccess
		b.recorder.IncBoardOutcome(metrics.ResultSuccess)
		slog.Info("Board complete",
			logfields.Board(brd.Name),
			logfields.Count(len(report.Artifacts)),
			logfields.DurationMS(float64(elapsed.Milliseconds())))
	default:
		report.Outcome = OutcomeFailed
		result := metrics.ResultFailed
		var se *StageError
		if errors.As(err, &se) {
			report.FailedAt = se.Stage
			if se.Kind == StageErrorCanceled {
				report.Outcome = OutcomeCanceled
				result = metrics.ResultCanceled
			}
		}
		report.Error = err.Error()
		b.recorder.IncBoardOutcome(result)
	}

	b.publishOutcome(context.WithoutCancel(ctx), brd, report)
	return report, err
}

// publishOutcome writes the report and feeds history and notifications.
// Failures here are logged and never change the board's outcome.
func (b *Builder) publishOutcome(ctx context.Context, brd board.Board, r *Report) {
	if _, err := os.Stat(brd.BuildDir); err != nil {
		slog.Debug("Build directory absent, report not written", logfields.Board(brd.Name), logfields.Path(brd.BuildDir))
	} else if err := r.WriteFile(brd.Report()); err != nil {
		slog.Warn("Failed to write build report", logfields.Board(brd.Name), logfields.Error(err))
	}

	var commit string
	if r.Revision != nil {
		commit = r.Revision.Short()
	}

	if b.history != nil {
		err := b.history.Record(ctx, history.Entry{
			RunID:     r.RunID,
			Board:     r.Board,
			Version:   r.Version,
			Commit:    commit,
			Status:    r.Outcome,
			StartedAt: r.StartedAt,
			Duration:  r.Duration(),
			Error:     r.Error,
		})
		if err != nil {
			slog.Warn("Failed to record build history", logfields.Board(brd.Name), logfields.Error(err))
		}
	}

	err := b.publisher.Publish(ctx, notify.Event{
		RunID:      r.RunID,
		Board:      r.Board,
		Version:    r.Version,
		Commit:     commit,
		Status:     r.Outcome,
		Artifacts:  r.Artifacts,
		DurationMS: r.DurationMS,
		Error:      r.Error,
	})
	if err != nil {
		slog.Warn("Failed to publish board event", logfields.Board(brd.Name), logfields.Error(err))
	}
}
