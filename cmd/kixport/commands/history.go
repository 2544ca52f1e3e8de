package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"git.home.luguber.info/inful/kixport/internal/config"
	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/history"
)

// HistoryCmd implements the 'history' command.
type HistoryCmd struct {
	Limit     int    `short:"n" help:"Maximum number of entries" default:"20"`
	Board     string `help:"Only show builds of this board"`
	HistoryDB string `name:"history-db" help:"History database (overrides settings.history_db)"`
}

func (h *HistoryCmd) Run(_ *Global, root *CLI) error {
	path := h.HistoryDB
	if path == "" {
		cfg, err := config.Load(root.Config)
		if err != nil {
			return err
		}
		path = cfg.Settings.HistoryDB
	}
	if path == "" {
		return kerrors.ConfigRequired("settings.history_db")
	}

	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return kerrors.FileSystem("open", path, err)
	}
	defer func() { _ = store.Close() }()

	return RunHistory(context.Background(), os.Stdout, store, history.Query{Board: h.Board, Limit: h.Limit})
}

// RunHistory prints recorded builds as a table, newest first.
func RunHistory(ctx context.Context, w io.Writer, store history.Store, q history.Query) error {
	entries, err := store.List(ctx, q)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "STARTED\tBOARD\tVERSION\tCOMMIT\tSTATUS\tDURATION\tRUN")
	for _, e := range entries {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.StartedAt.Local().Format(time.DateTime),
			e.Board,
			dash(e.Version),
			dash(e.Commit),
			e.Status,
			e.Duration.Round(time.Millisecond),
			e.RunID)
	}
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
