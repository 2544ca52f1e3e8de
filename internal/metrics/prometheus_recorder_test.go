package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("gerbers", 150*time.Millisecond)
	pr.IncStageResult("gerbers", ResultSuccess)
	pr.IncStageResult("step", ResultFailed)
	pr.ObserveBoardDuration("Widget", 12*time.Second)
	pr.IncBoardOutcome(ResultSuccess)
	pr.ObserveToolDuration("kicad-cli", time.Second, true)
	pr.IncArtifacts("bom", 4)
	pr.IncArtifacts("bom", 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)

	require.Equal(t, float64(1), testutil.ToFloat64(pr.stageResults.WithLabelValues("step", "failed")))
	require.Equal(t, float64(4), testutil.ToFloat64(pr.artifacts.WithLabelValues("bom")))
	require.Equal(t, float64(1), testutil.ToFloat64(pr.boardOutcome.WithLabelValues("success")))
}

func TestPrometheusRecorder_NilSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("x", time.Second)
	pr.IncStageResult("x", ResultSuccess)
	pr.ObserveBoardDuration("x", time.Second)
	pr.IncBoardOutcome(ResultFailed)
	pr.ObserveToolDuration("x", time.Second, false)
	pr.IncArtifacts("x", 1)
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBoardOutcome(ResultFailed)

	path := filepath.Join(t.TempDir(), "kixport.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `kixport_board_outcomes_total{outcome="failed"} 1`), string(data))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("x", time.Second)
	r.IncStageResult("x", ResultSuccess)
	r.ObserveBoardDuration("x", time.Second)
	r.IncBoardOutcome(ResultSuccess)
	r.ObserveToolDuration("x", time.Second, true)
	r.IncArtifacts("x", 1)
}
