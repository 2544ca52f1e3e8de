package logfields

import (
	"log/slog"
	"strings"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRunID      = "run_id"
	KeyBoard      = "board"
	KeyVersion    = "version"
	KeyStage      = "stage"
	KeyVariant    = "variant"
	KeyFormat     = "format"
	KeyTool       = "tool"
	KeyCommand    = "command"
	KeyExitCode   = "exit_code"
	KeyPath       = "path"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeySchedule   = "schedule"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Board(name string) slog.Attr     { return slog.String(KeyBoard, name) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Variant(v string) slog.Attr      { return slog.String(KeyVariant, v) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func Tool(name string) slog.Attr      { return slog.String(KeyTool, name) }
func Command(args []string) slog.Attr { return slog.String(KeyCommand, strings.Join(args, " ")) }
func ExitCode(code int) slog.Attr     { return slog.Int(KeyExitCode, code) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Schedule(expr string) slog.Attr  { return slog.String(KeySchedule, expr) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
