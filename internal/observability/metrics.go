package observability

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts resolved exchanges, table resolutions and injuries. It
// satisfies the combat engine's Recorder port.
type Metrics struct {
	registry  *prometheus.Registry
	exchanges *prometheus.CounterVec
	tables    *prometheus.CounterVec
	rerolls   *prometheus.CounterVec
	injuries  *prometheus.CounterVec
}

// NewMetrics registers the duel counters on a fresh registry.
//
// Postcondition: Returns a Metrics with every counter registered.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "duel",
			Name:      "exchanges_total",
			Help:      "Committed exchanges by outcome.",
		}, []string{"outcome"}),
		tables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "duel",
			Name:      "table_resolutions_total",
			Help:      "Critical and fumble table resolutions.",
		}, []string{"table", "fallback"}),
		rerolls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "duel",
			Name:      "table_rerolls_total",
			Help:      "Reroll leaves hit while resolving tables.",
		}, []string{"table"}),
		injuries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "duel",
			Name:      "injuries_total",
			Help:      "Severe injuries by zone category.",
		}, []string{"category", "extreme"}),
	}
	m.registry.MustRegister(m.exchanges, m.tables, m.rerolls, m.injuries)
	return m
}

// Registry exposes the underlying registry, e.g. for testutil gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Exchange counts one committed exchange.
func (m *Metrics) Exchange(outcome string) {
	m.exchanges.WithLabelValues(outcome).Inc()
}

// Table counts one table resolution and its rerolls.
func (m *Metrics) Table(table string, rerolls int, fallback bool) {
	m.tables.WithLabelValues(table, strconv.FormatBool(fallback)).Inc()
	if rerolls > 0 {
		m.rerolls.WithLabelValues(table).Add(float64(rerolls))
	}
}

// Injury counts one severe injury.
func (m *Metrics) Injury(category string, extreme bool) {
	m.injuries.WithLabelValues(category, strconv.FormatBool(extreme)).Inc()
}

// WriteTextfile writes every counter in the node-exporter textfile format.
//
// Precondition: path must be writable.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
