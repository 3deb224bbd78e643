package report

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dm/pvecheck/internal/model"
)

const metricsNamespace = "pvecheck"

var allSeverities = []model.Severity{
	model.SeverityOK,
	model.SeverityWarning,
	model.SeverityCritical,
	model.SeverityUnknown,
}

// NewRegistry returns a private registry holding the gauges describing r.
func NewRegistry(r model.Report) *prometheus.Registry {
	outcome := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "outcome_severity",
		Help:      "Merged severity per profile (0=OK, 1=WARNING, 2=CRITICAL, 3=UNKNOWN).",
	}, []string{"profile"})
	findings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "findings",
		Help:      "Number of findings per profile and severity.",
	}, []string{"profile", "severity"})
	duration := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "check_duration_seconds",
		Help:      "Wall time spent evaluating a profile.",
	}, []string{"profile"})
	final := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "final_severity",
		Help:      "Severity of the merged result across all profiles.",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "last_run_timestamp_seconds",
		Help:      "Unix time the run started.",
	})

	for _, po := range r.Profiles {
		outcome.WithLabelValues(po.Profile).Set(float64(po.Outcome.Severity))
		duration.WithLabelValues(po.Profile).Set(po.Duration.Seconds())

		counts := make(map[model.Severity]int, len(allSeverities))
		for _, f := range po.Findings {
			counts[f.Severity]++
		}
		for _, s := range allSeverities {
			findings.WithLabelValues(po.Profile, s.String()).Set(float64(counts[s]))
		}
	}
	final.Set(float64(r.Final.Severity))
	if !r.StartedAt.IsZero() {
		lastRun.Set(float64(r.StartedAt.UnixNano()) / 1e9)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(outcome, findings, duration, final, lastRun)
	return reg
}

// WriteTextfile writes the metrics of r to path in the text exposition
// format, atomically, for the node_exporter textfile collector.
func WriteTextfile(path string, r model.Report) error {
	if err := prometheus.WriteToTextfile(path, NewRegistry(r)); err != nil {
		return errors.Wrapf(err, "write metrics textfile %s", path)
	}
	return nil
}
