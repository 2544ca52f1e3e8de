package commands

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/kixport/internal/config"
	"git.home.luguber.info/inful/kixport/internal/logfields"
	"git.home.luguber.info/inful/kixport/internal/toolchain"
	"git.home.luguber.info/inful/kixport/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	Boards      []string      `name:"board" short:"b" help:"Only watch the named board (repeatable)"`
	Schedule    string        `help:"Cron expression for periodic rebuilds of every watched board"`
	Debounce    time.Duration `help:"Quiet period after the last change before rebuilding" default:"2s"`
	HistoryDB   string        `name:"history-db" help:"Record board builds in this SQLite database"`
	MetricsFile string        `name:"metrics-file" help:"Write Prometheus metrics to this textfile after each rebuild"`
	Initial     bool          `help:"Build every watched board once before waiting for changes"`
}

func (c *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return err
	}
	boards, err := resolveBoards(cfg, c.Boards)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	p, err := newPipeline(cfg.Settings, c.HistoryDB, c.MetricsFile, toolchain.NewExecRunner())
	if err != nil {
		return err
	}
	defer p.Close()

	w, err := watch.New(boards, c.Debounce)
	if err != nil {
		return err
	}
	if c.Schedule != "" {
		if err := w.ScheduleCron(c.Schedule); err != nil {
			if cerr := w.Close(); cerr != nil {
				slog.Warn("Failed to close watcher", logfields.Error(cerr))
			}
			return err
		}
	}

	rebuild := func(ctx context.Context, t watch.Trigger) error {
		names := t.Boards
		if names == nil {
			names = c.Boards
		}
		selected, err := resolveBoards(cfg, names)
		if err != nil {
			return err
		}
		return p.Run(ctx, selected)
	}

	if c.Initial {
		if err := rebuild(ctx, watch.Trigger{Boards: c.Boards, Reason: "initial"}); err != nil {
			slog.Error("Initial build failed", logfields.Error(err))
		}
	}

	slog.Info("Watching board projects", logfields.Count(len(boards)))
	return w.Run(ctx, rebuild)
}
