// Package watch triggers board rebuilds when KiCad sources change on disk
// or when a cron schedule fires. Triggers are delivered one at a time to a
// single build callback so builds never overlap.
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/kixport/internal/board"
	"git.home.luguber.info/inful/kixport/internal/logfields"
)

// DefaultDebounce is the quiet period after the last file event before a
// rebuild starts. KiCad writes several files per save.
const DefaultDebounce = 2 * time.Second

// Trigger describes one rebuild request. Nil Boards means every board.
type Trigger struct {
	Boards []string
	Reason string
}

// BuildFunc runs a rebuild. Errors are logged and watching continues.
type BuildFunc func(ctx context.Context, t Trigger) error

var watchedExtensions = []string{".kicad_pro", ".kicad_sch", ".kicad_pcb"}

// Watcher maps file system events on board project directories to rebuild
// triggers.
type Watcher struct {
	fs        *fsnotify.Watcher
	scheduler gocron.Scheduler
	debounce  time.Duration
	dirs      map[string][]string
	scheduled chan Trigger
	closeOnce sync.Once
}

// New watches the project directory of every board. A non-positive
// debounce selects DefaultDebounce.
func New(boards []board.Board, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		fs:        fsw,
		debounce:  debounce,
		dirs:      make(map[string][]string),
		scheduled: make(chan Trigger, 1),
	}

	for _, b := range boards {
		dir, err := filepath.Abs(filepath.Dir(b.Project))
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("failed to resolve project path %s: %w", b.Project, err)
		}
		if _, seen := w.dirs[dir]; !seen {
			if err := fsw.Add(dir); err != nil {
				_ = fsw.Close()
				return nil, fmt.Errorf("failed to watch project directory %s: %w", dir, err)
			}
		}
		if !slices.Contains(w.dirs[dir], b.Name) {
			w.dirs[dir] = append(w.dirs[dir], b.Name)
		}
	}

	return w, nil
}

// Match returns the boards affected by a change to path.
func (w *Watcher) Match(path string) []string {
	if !slices.Contains(watchedExtensions, filepath.Ext(path)) {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil
	}
	return w.dirs[filepath.Dir(abs)]
}

// ScheduleCron rebuilds every board on the given cron expression.
func (w *Watcher) ScheduleCron(expr string) error {
	if w.scheduler == nil {
		s, err := gocron.NewScheduler()
		if err != nil {
			return fmt.Errorf("failed to create gocron scheduler: %w", err)
		}
		w.scheduler = s
	}

	_, err := w.scheduler.NewJob(
		gocron.CronJob(expr, false),
		gocron.NewTask(func() {
			select {
			case w.scheduled <- Trigger{Reason: "schedule"}:
			default:
				slog.Debug("Scheduled rebuild already pending", logfields.Schedule(expr))
			}
		}),
		gocron.WithName("scheduled-rebuild"),
	)
	if err != nil {
		return fmt.Errorf("failed to create scheduled rebuild job: %w", err)
	}
	slog.Info("Scheduled rebuilds", logfields.Schedule(expr))
	return nil
}

// Run delivers triggers to build until ctx is cancelled, then closes the
// watcher.
func (w *Watcher) Run(ctx context.Context, build BuildFunc) error {
	defer func() {
		if err := w.Close(); err != nil {
			slog.Error("Error closing watcher", logfields.Error(err))
		}
	}()
	if w.scheduler != nil {
		w.scheduler.Start()
	}

	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			names := w.Match(event.Name)
			if len(names) == 0 {
				continue
			}
			slog.Debug("KiCad file change detected", logfields.Path(event.Name))
			for _, n := range names {
				pending[n] = struct{}{}
			}
			timer.Reset(w.debounce)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			slog.Error("File watcher error", logfields.Error(err))

		case <-timer.C:
			names := make([]string, 0, len(pending))
			for n := range pending {
				names = append(names, n)
			}
			sort.Strings(names)
			clear(pending)
			w.dispatch(ctx, build, Trigger{Boards: names, Reason: "change"})

		case t := <-w.scheduled:
			w.dispatch(ctx, build, t)
		}
	}
}

func (w *Watcher) dispatch(ctx context.Context, build BuildFunc, t Trigger) {
	slog.Info("Rebuild triggered", slog.String("reason", t.Reason), logfields.Count(len(t.Boards)))
	if err := build(ctx, t); err != nil {
		slog.Error("Rebuild failed", slog.String("reason", t.Reason), logfields.Error(err))
	}
}

// Close stops the scheduler and releases the file watcher. It is safe to call
// more than once; Run calls it on return.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		if w.scheduler != nil {
			if serr := w.scheduler.Shutdown(); serr != nil {
				err = fmt.Errorf("failed to stop scheduler: %w", serr)
			}
		}
		if ferr := w.fs.Close(); ferr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close file watcher: %w", ferr))
		}
	})
	return err
}
