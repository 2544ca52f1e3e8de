package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/kixport/internal/board"
	"git.home.luguber.info/inful/kixport/internal/build"
	"git.home.luguber.info/inful/kixport/internal/config"
	"git.home.luguber.info/inful/kixport/internal/history"
	"git.home.luguber.info/inful/kixport/internal/logfields"
	"git.home.luguber.info/inful/kixport/internal/metrics"
	"git.home.luguber.info/inful/kixport/internal/notify"
	"git.home.luguber.info/inful/kixport/internal/toolchain"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Boards      []string `name:"board" short:"b" help:"Only build the named board (repeatable)"`
	HistoryDB   string   `name:"history-db" help:"Record board builds in this SQLite database (overrides settings.history_db)"`
	MetricsFile string   `name:"metrics-file" help:"Write Prometheus metrics to this textfile after the run (overrides settings.metrics_file)"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	boards, err := resolveBoards(cfg, b.Boards)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	p, err := newPipeline(cfg.Settings, b.HistoryDB, b.MetricsFile, toolchain.NewExecRunner())
	if err != nil {
		return err
	}
	defer p.Close()

	return p.Run(ctx, boards)
}

// pipeline is a Builder with its optional side channels opened.
type pipeline struct {
	builder     *build.Builder
	store       history.Store
	publisher   notify.Publisher
	registry    *prometheus.Registry
	metricsFile string
}

// newPipeline wires the builder to history, NATS and metrics as configured.
// Flag values take precedence over settings.
func newPipeline(settings config.Settings, historyDB, metricsFile string, runner *toolchain.ExecRunner) (*pipeline, error) {
	if historyDB == "" {
		historyDB = settings.HistoryDB
	}
	if metricsFile == "" {
		metricsFile = settings.MetricsFile
	}

	p := &pipeline{builder: build.New(settings, runner), metricsFile: metricsFile}

	if metricsFile != "" {
		p.registry = prometheus.NewRegistry()
		rec := metrics.NewPrometheusRecorder(p.registry)
		runner.Observe = func(tool string, d time.Duration, err error) {
			rec.ObserveToolDuration(tool, d, err == nil)
		}
		p.builder.WithRecorder(rec)
	}

	if historyDB != "" {
		store, err := history.NewSQLiteStore(historyDB)
		if err != nil {
			return nil, err
		}
		p.store = store
		p.builder.WithHistory(store)
	}

	if n := settings.Notify; n != nil {
		pub, err := notify.NewNATSPublisher(n.NATSURL, n.Subject)
		if err != nil {
			// Notifications never block a build.
			slog.Warn("NATS unavailable; board events disabled", logfields.Error(err))
		} else {
			p.publisher = pub
			p.builder.WithPublisher(pub)
		}
	}

	return p, nil
}

// Run builds boards and flushes metrics, even when the build fails.
func (p *pipeline) Run(ctx context.Context, boards []board.Board) error {
	_, err := p.builder.Run(ctx, boards)
	if p.registry != nil {
		if werr := metrics.WriteTextfile(p.metricsFile, p.registry); werr != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(p.metricsFile), logfields.Error(werr))
		}
	}
	return err
}

func (p *pipeline) Close() {
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			slog.Warn("Failed to close NATS connection", logfields.Error(err))
		}
	}
	if p.store != nil {
		if err := p.store.Close(); err != nil {
			slog.Warn("Failed to close history database", logfields.Error(err))
		}
	}
}
