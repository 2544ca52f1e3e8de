package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stageDuration *prom.HistogramVec
	stageResults  *prom.CounterVec
	boardDuration *prom.HistogramVec
	boardOutcome  *prom.CounterVec
	toolDuration  *prom.HistogramVec
	artifacts     *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on reg.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stageDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kixport",
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual board build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"}),
		stageResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kixport",
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"}),
		boardDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kixport",
			Name:      "board_duration_seconds",
			Help:      "Total duration of one board build",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"board"}),
		boardOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kixport",
			Name:      "board_outcomes_total",
			Help:      "Board builds by final status",
		}, []string{"outcome"}),
		toolDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "kixport",
			Name:      "tool_duration_seconds",
			Help:      "Duration of external tool invocations",
			Buckets:   prom.DefBuckets,
		}, []string{"tool", "result"}),
		artifacts: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "kixport",
			Name:      "artifacts_total",
			Help:      "Artifacts written by kind",
		}, []string{"kind"}),
	}
	reg.MustRegister(pr.stageDuration, pr.stageResults, pr.boardDuration, pr.boardOutcome, pr.toolDuration, pr.artifacts)
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveBoardDuration(board string, d time.Duration) {
	if p == nil || p.boardDuration == nil {
		return
	}
	p.boardDuration.WithLabelValues(board).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBoardOutcome(outcome ResultLabel) {
	if p == nil || p.boardOutcome == nil {
		return
	}
	p.boardOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveToolDuration(tool string, d time.Duration, success bool) {
	if p == nil || p.toolDuration == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.toolDuration.WithLabelValues(tool, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncArtifacts(kind string, n int) {
	if p == nil || p.artifacts == nil || n <= 0 {
		return
	}
	p.artifacts.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile writes all metrics gathered from reg to path in the Prometheus
// text exposition format. The file is replaced atomically.
func WriteTextfile(path string, reg prom.Gatherer) error {
	return prom.WriteToTextfile(path, reg)
}
