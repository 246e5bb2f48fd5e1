// Package metrics defines the Prometheus collectors for the note index and
// dumps them in the node-exporter textfile format.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/starford/notesearch/internal/apperr"
)

const namespace = "notesearch"

// Result labels for CommandsTotal.
const (
	ResultOK           = "ok"
	ResultNotFound     = "not_found"
	ResultExists       = "exists"
	ResultMalformed    = "malformed"
	ResultInvalid      = "invalid"
	ResultInvalidQuery = "invalid_query"
	ResultError        = "error"
)

// Metrics holds the collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	CommandsTotal  *prometheus.CounterVec
	SearchDuration prometheus.Histogram
	SearchResults  prometheus.Histogram
	Notes          prometheus.Gauge
	Tombstones     prometheus.Gauge
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CommandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Commands processed by command and result.",
			},
			[]string{"command", "result"},
		),
		SearchDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_duration_seconds",
				Help:      "Query evaluation latency in seconds.",
				Buckets:   []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
			},
		),
		SearchResults: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "search_results",
				Help:      "Number of identifiers returned per query.",
				Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		Notes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "notes",
				Help:      "Notes in the corpus, tombstoned ones included.",
			},
		),
		Tombstones: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "tombstones",
				Help:      "Deleted note identifiers.",
			},
		),
	}

	m.registry.MustRegister(
		m.CommandsTotal,
		m.SearchDuration,
		m.SearchResults,
		m.Notes,
		m.Tombstones,
	)
	return m
}

// Registry exposes the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCommand counts one command, labelled by the class of err.
func (m *Metrics) ObserveCommand(command string, err error) {
	m.CommandsTotal.WithLabelValues(command, Result(err)).Inc()
}

// ObserveSearch records latency and result size of one query.
func (m *Metrics) ObserveSearch(d time.Duration, hits int) {
	m.SearchDuration.Observe(d.Seconds())
	m.SearchResults.Observe(float64(hits))
}

// SetCorpus updates the corpus gauges.
func (m *Metrics) SetCorpus(notes, deleted int) {
	m.Notes.Set(float64(notes))
	m.Tombstones.Set(float64(deleted))
}

// WriteTextfile writes every collector to path, atomically replacing it.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}

// Result maps an error onto a result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, apperr.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, apperr.ErrAlreadyExists):
		return ResultExists
	case errors.Is(err, apperr.ErrMalformedRecord):
		return ResultMalformed
	case errors.Is(err, apperr.ErrInvalidCommand):
		return ResultInvalid
	case errors.Is(err, apperr.ErrInvalidQuery):
		return ResultInvalidQuery
	default:
		return ResultError
	}
}
