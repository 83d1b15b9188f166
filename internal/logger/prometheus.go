package logger

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var (
	// logLines counts emitted log statements per level.
	logLines     *prometheus.CounterVec //nolint:gochecknoglobals
	logLinesOnce sync.Once              //nolint:gochecknoglobals
)

// PrometheusHook increments the per-level log counter on every write.
type PrometheusHook struct{}

// Run implements zerolog.Hook.
func (h PrometheusHook) Run(_ *zerolog.Event, level zerolog.Level, _ string) {
	if level != zerolog.NoLevel {
		logLines.WithLabelValues(level.String()).Inc()
	}
}

// NewPrometheusHook returns a hook counting log statements by level.
// The counter registers once per process no matter how often Init runs.
func NewPrometheusHook(service string) PrometheusHook {
	logLinesOnce.Do(func() {
		logLines = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name:        "log_statements_total",
				Help:        "Number of log statements, differentiated by log level.",
				ConstLabels: prometheus.Labels{"service": service},
			},
			[]string{"level"},
		)
	})

	return PrometheusHook{}
}
