package build

import (
	"encoding/json"
	"os"
	"time"

	kerrors "git.home.luguber.info/inful/kixport/internal/errors"
	"git.home.luguber.info/inful/kixport/internal/git"
	"git.home.luguber.info/inful/kixport/internal/metrics"
)

// Outcome values for a board report.
const (
	OutcomeSuccess  = "success"
	OutcomeFailed   = "failed"
	OutcomeCanceled = "canceled"
)

// StageTiming is the duration and result of one executed stage.
type StageTiming struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"duration_ms"`
	Result     string `json:"result"`
}

// Report summarizes one board build. It is written next to the board's
// intermediate artifacts.
type Report struct {
	RunID      string        `json:"run_id"`
	Board      string        `json:"board"`
	Version    string        `json:"version,omitempty"`
	Revision   *git.Revision `json:"revision,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMS int64         `json:"duration_ms"`
	Stages     []StageTiming `json:"stages"`
	Artifacts  []string      `json:"artifacts"`
	Outcome    string        `json:"outcome"`
	FailedAt   string        `json:"failed_stage,omitempty"`
	Error      string        `json:"error,omitempty"`
}

func (r *Report) addStage(name string, d time.Duration, result metrics.ResultLabel) {
	r.Stages = append(r.Stages, StageTiming{Name: name, DurationMS: d.Milliseconds(), Result: string(result)})
}

// Duration returns the total board build time.
func (r *Report) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// WriteFile stores the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return kerrors.InternalError("marshal build report", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return kerrors.FileSystem("write", path, err)
	}
	return nil
}

// ReadReport loads a report written by WriteFile.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, kerrors.FileSystem("read", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, kerrors.Wrap(err, kerrors.CategoryBuild, kerrors.SeverityError, "parse build report").
			WithContext("path", path)
	}
	return &r, nil
}
