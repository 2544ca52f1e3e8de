package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/kixport/internal/board"
	"git.home.luguber.info/inful/kixport/internal/config"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"kixport.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Export fabrication artifacts for configured boards"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration file"`
	Validate ValidateCmd `cmd:"" help:"Check the configuration and print the derived build plan"`
	Watch    WatchCmd    `cmd:"" help:"Rebuild boards when their KiCad files change"`
	History  HistoryCmd  `cmd:"" help:"List recorded board builds"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// resolveBoards selects boards by name, in configuration order, and derives
// their paths. An empty name list selects every board.
func resolveBoards(cfg *config.Config, names []string) ([]board.Board, error) {
	selected, err := config.SelectBoards(cfg, names)
	if err != nil {
		return nil, err
	}
	boards := make([]board.Board, 0, len(selected))
	for _, raw := range selected {
		b, err := board.New(raw, cfg.Settings)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, nil
}
