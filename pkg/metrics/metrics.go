// Package metrics counts probes and conclusions of a license-hound run so
// that they can be picked up by node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jakexks/license-hound/pkg/provenance"
)

type Metrics struct {
	Registry *prometheus.Registry

	ProbesTotal   *prometheus.CounterVec
	PackagesTotal *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.ProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "license_hound_probes_total",
			Help: "Number of license document lookups, by prober and outcome",
		},
		[]string{"prober", "outcome"},
	)

	m.PackagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "license_hound_packages_total",
			Help: "Number of audited packages, by conclusion",
		},
		[]string{"conclusion"},
	)

	m.Registry.MustRegister(m.ProbesTotal, m.PackagesTotal)
	return m
}

// ObserveProbe counts a probe. Probers skipped because they do not apply
// to the package are counted apart from misses.
func (m *Metrics) ObserveProbe(prober string, outcome provenance.Outcome) {
	m.ProbesTotal.WithLabelValues(prober, string(outcome)).Inc()
}

// ObserveConclusion counts a package. conclusion is "ok" or the kind of
// error the package ended with.
func (m *Metrics) ObserveConclusion(conclusion string) {
	m.PackagesTotal.WithLabelValues(conclusion).Inc()
}

// WriteTextfile writes the metrics atomically to path, in the text format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics to '%s': %w", path, err)
	}
	return nil
}
