// Package metrics provides Prometheus-based metrics recording for
// solving sessions and oracle calls.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records solver metrics. A nil *PrometheusRecorder method
// receiver is safe; callers may hold a nil recorder when metrics are
// disabled.
type Recorder interface {
	ObserveOracleRequest(model, status, errorType string, duration time.Duration)
	IncToolCall(tool, status string)
	IncIteration(puzzle string)
	ObserveSolveDuration(puzzle, outcome string, duration time.Duration)
	SetCluesSolved(puzzle string, solved, total int)
}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	oracleRequestsTotal   *prometheus.CounterVec
	oracleRequestDuration *prometheus.HistogramVec
	toolCallsTotal        *prometheus.CounterVec
	iterationsTotal       *prometheus.CounterVec
	solveDuration         *prometheus.HistogramVec
	cluesSolved           *prometheus.GaugeVec
	cluesTotal            *prometheus.GaugeVec
}

// NewPrometheusRecorder creates a new Prometheus-based metrics recorder
// registered on the default registry.
func NewPrometheusRecorder() *PrometheusRecorder {
	return &PrometheusRecorder{
		oracleRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solver_oracle_requests_total",
				Help: "Total number of oracle requests by model, status, and error type",
			},
			[]string{"model", "status", "error_type"},
		),
		oracleRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solver_oracle_request_duration_seconds",
				Help:    "Duration of oracle requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		toolCallsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solver_tool_calls_total",
				Help: "Total number of tool invocations by tool and status",
			},
			[]string{"tool", "status"},
		),
		iterationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "solver_iterations_total",
				Help: "Total number of solving iterations",
			},
			[]string{"puzzle"},
		),
		solveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "solver_solve_duration_seconds",
				Help:    "Wall-clock duration of solving sessions in seconds",
				Buckets: []float64{10, 30, 60, 120, 300, 600, 1200},
			},
			[]string{"puzzle", "outcome"},
		),
		cluesSolved: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "solver_clues_solved",
				Help: "Number of clues currently validated as correct",
			},
			[]string{"puzzle"},
		),
		cluesTotal: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "solver_clues_total",
				Help: "Total number of clues in the active puzzle",
			},
			[]string{"puzzle"},
		),
	}
}

// ObserveOracleRequest records metrics for a completed oracle request.
func (p *PrometheusRecorder) ObserveOracleRequest(model, status, errorType string, duration time.Duration) {
	if p == nil {
		return
	}
	p.oracleRequestsTotal.WithLabelValues(model, status, errorType).Inc()
	p.oracleRequestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// IncToolCall increments the tool call counter.
func (p *PrometheusRecorder) IncToolCall(tool, status string) {
	if p == nil {
		return
	}
	p.toolCallsTotal.WithLabelValues(tool, status).Inc()
}

// IncIteration counts a completed solving iteration.
func (p *PrometheusRecorder) IncIteration(puzzle string) {
	if p == nil {
		return
	}
	p.iterationsTotal.WithLabelValues(puzzle).Inc()
}

// ObserveSolveDuration records the wall-clock duration of a finished
// session. Outcome is "completed" or "failed".
func (p *PrometheusRecorder) ObserveSolveDuration(puzzle, outcome string, duration time.Duration) {
	if p == nil {
		return
	}
	p.solveDuration.WithLabelValues(puzzle, outcome).Observe(duration.Seconds())
}

// SetCluesSolved updates the solved/total clue gauges.
func (p *PrometheusRecorder) SetCluesSolved(puzzle string, solved, total int) {
	if p == nil {
		return
	}
	p.cluesSolved.WithLabelValues(puzzle).Set(float64(solved))
	p.cluesTotal.WithLabelValues(puzzle).Set(float64(total))
}
