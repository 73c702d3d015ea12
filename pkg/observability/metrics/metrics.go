package metrics

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

const namespace = "clusterops"

// Recorder holds the metrics of a single pipeline run. Each run gets its own
// registry so the textfile output describes exactly one invocation.
type Recorder struct {
    reg *prometheus.Registry

    StepDuration      *prometheus.GaugeVec
    StepOutcomes      *prometheus.CounterVec
    ValidationEntries *prometheus.GaugeVec
    EventsCollected   *prometheus.GaugeVec
    ExitCode          prometheus.Gauge
    LastRun           prometheus.Gauge
}

// New creates a Recorder with all collectors registered.
func New() *Recorder {
    r := &Recorder{
        reg: prometheus.NewRegistry(),
        StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace: namespace,
            Name:      "step_duration_seconds",
            Help:      "Wall time spent in each pipeline step during the last run",
        }, []string{"step"}),
        StepOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
            Namespace: namespace,
            Name:      "step_outcomes_total",
            Help:      "Pipeline step outcomes by step and status",
        }, []string{"step", "status"}),
        ValidationEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace: namespace,
            Subsystem: "validation",
            Name:      "entries",
            Help:      "Validation entries reported by the cluster validator, by status",
        }, []string{"status"}),
        EventsCollected: prometheus.NewGaugeVec(prometheus.GaugeOpts{
            Namespace: namespace,
            Subsystem: "events",
            Name:      "collected",
            Help:      "Recent operational log events collected, by severity",
        }, []string{"severity"}),
        ExitCode: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: namespace,
            Name:      "exit_code",
            Help:      "Exit code of the last run",
        }),
        LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
            Namespace: namespace,
            Name:      "last_run_timestamp_seconds",
            Help:      "Unix time the last run finished",
        }),
    }
    r.reg.MustRegister(r.StepDuration, r.StepOutcomes, r.ValidationEntries, r.EventsCollected, r.ExitCode, r.LastRun)
    return r
}

// ObserveStep records duration and outcome for a finished step.
func (r *Recorder) ObserveStep(step, status string, d time.Duration) {
    r.StepDuration.WithLabelValues(step).Set(d.Seconds())
    r.StepOutcomes.WithLabelValues(step, status).Inc()
}

// Finish stamps the exit code and completion time.
func (r *Recorder) Finish(code int, at time.Time) {
    r.ExitCode.Set(float64(code))
    r.LastRun.Set(float64(at.Unix()))
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer { return r.reg }

// WriteTextfile writes the registry in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
    return prometheus.WriteToTextfile(path, r.reg)
}
