package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
)

const namespace = "gem"

// PrometheusMetrics implements core.Metrics with Prometheus counters on its own registry
type PrometheusMetrics struct {
	registry *prometheus.Registry

	mutations              *prometheus.CounterVec
	fallbacks              prometheus.Counter
	casConflicts           prometheus.Counter
	partialTransferFailure prometheus.Counter
	achievementsUnlocked   *prometheus.CounterVec
	withdrawalTransitions  *prometheus.CounterVec
}

var _ coreport.Metrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the ledger counters plus the Go and process
// collectors on a fresh registry
func NewPrometheusMetrics() *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &PrometheusMetrics{
		registry: registry,
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ledger",
				Name:      "mutations_total",
				Help:      "Committed balance mutations by ledger kind and execution path",
			},
			[]string{"kind", "path"},
		),
		fallbacks: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "fallback_total",
			Help:      "Mutations applied without the atomic database primitive",
		}),
		casConflicts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "cas_conflicts_total",
			Help:      "Lost compare-and-swap updates on account rows",
		}),
		partialTransferFailure: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "partial_transfer_failures_total",
			Help:      "Transfers whose outcome is unknown and need manual reconciliation",
		}),
		achievementsUnlocked: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "achievements",
				Name:      "unlocked_total",
				Help:      "Newly unlocked achievements",
			},
			[]string{"achievement"},
		),
		withdrawalTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "withdrawal",
				Name:      "transitions_total",
				Help:      "Withdrawal requests entering a status",
			},
			[]string{"to"},
		),
	}
}

// RegisterDBStats exports connection pool statistics of db
func (m *PrometheusMetrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// Handler serves the registry in the Prometheus text format
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) MutationApplied(kind, path string) {
	m.mutations.WithLabelValues(kind, path).Inc()
}

func (m *PrometheusMetrics) FallbackUsed() {
	m.fallbacks.Inc()
}

func (m *PrometheusMetrics) CASConflict() {
	m.casConflicts.Inc()
}

func (m *PrometheusMetrics) PartialTransferFailure() {
	m.partialTransferFailure.Inc()
}

func (m *PrometheusMetrics) AchievementUnlocked(achievementID string) {
	m.achievementsUnlocked.WithLabelValues(achievementID).Inc()
}

func (m *PrometheusMetrics) WithdrawalTransition(status string) {
	m.withdrawalTransitions.WithLabelValues(status).Inc()
}
