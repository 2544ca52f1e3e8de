package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"git.home.luguber.info/inful/kixport/internal/logfields"
)

// Runner executes one external command to completion.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
}

// ToolError reports a failed external command.
type ToolError struct {
	Command  []string
	ExitCode int // -1 when the process could not be started or was killed
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%s: exit code %d", strings.Join(e.Command, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	if e.ExitCode < 0 && e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// ExecRunner invokes binaries via os/exec.
type ExecRunner struct {
	// Observe, when set, is called after every invocation with the tool name,
	// elapsed time and outcome.
	Observe func(tool string, d time.Duration, err error)
}

// NewExecRunner returns a runner that spawns real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	command := append([]string{name}, args...)

	// #nosec G204 -- tool names and arguments come from the operator's configuration
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("Running external tool", logfields.Tool(name), logfields.Command(command))
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if out := strings.TrimSpace(stdout.String()); out != "" {
		slog.Debug("tool stdout", logfields.Tool(name), slog.String("output", out))
	}
	errStr := strings.TrimSpace(stderr.String())
	if errStr != "" {
		slog.Debug("tool stderr", logfields.Tool(name), slog.String("error_output", errStr))
	}

	if err != nil {
		err = newToolError(command, errStr, err)
	}
	if r.Observe != nil {
		r.Observe(name, elapsed, err)
	}
	return err
}

func newToolError(command []string, stderr string, err error) *ToolError {
	te := &ToolError{Command: command, ExitCode: -1, Stderr: stderr, Err: err}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.ExitCode()
	}
	return te
}

// LookPath reports whether each named binary can be found on PATH.
func LookPath(names ...string) map[string]error {
	missing := make(map[string]error)
	for _, n := range names {
		if _, err := exec.LookPath(n); err != nil {
			missing[n] = err
		}
	}
	return missing
}
