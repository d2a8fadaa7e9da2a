// SPDX-License-Identifier: MIT
// Package: metafactory/factorymetrics
//
// collector.go - Prometheus implementation of factory.Observer.
//
// Metrics (namespace configurable, default "metafactory"):
//   • <ns>_factories_created_total                   counter
//   • <ns>_instances_built_total{mode}                counter
//   • <ns>_initializer_failures_total{mode}           counter
//   • <ns>_construction_duration_seconds{mode}        histogram
//
// mode is "sync" or "deferred".

package factorymetrics

import (
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/katalvlaran/metafactory/factory"
)

// Label values for the mode label.
const (
	ModeSync     = "sync"
	ModeDeferred = "deferred"
)

const defaultNamespace = "metafactory"

// defaultBuckets covers microsecond-scale synchronous chains up to
// second-scale deferred ones.
var defaultBuckets = []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1, 10}

// Option customizes a Collector.
type Option func(*collectorConfig)

type collectorConfig struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace. Panics on an empty string.
func WithNamespace(ns string) Option {
	if ns == "" {
		panic("factorymetrics: WithNamespace(\"\")")
	}
	return func(c *collectorConfig) {
		c.namespace = ns
	}
}

// WithBuckets sets the duration histogram buckets. Panics on an empty slice.
func WithBuckets(b ...float64) Option {
	if len(b) == 0 {
		panic("factorymetrics: WithBuckets()")
	}
	return func(c *collectorConfig) {
		c.buckets = append([]float64(nil), b...)
	}
}

// Collector records factory lifecycle events. It is safe for concurrent use.
type Collector struct {
	created  prometheus.Counter
	built    *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ factory.Observer = (*Collector)(nil)

// New registers the collector's metrics with reg. Like every promauto
// constructor it panics if the metrics are already registered there.
func New(reg prometheus.Registerer, opts ...Option) *Collector {
	cfg := collectorConfig{namespace: defaultNamespace, buckets: defaultBuckets}
	for _, opt := range opts {
		opt(&cfg)
	}
	auto := promauto.With(reg)

	return &Collector{
		created: auto.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "factories_created_total",
			Help:      "Factories created, including derived and composed ones",
		}),
		built: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "instances_built_total",
			Help:      "Instances whose initializer chain completed",
		}, []string{"mode"}),
		failures: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "initializer_failures_total",
			Help:      "Initializer chains stopped by an error",
		}, []string{"mode"}),
		duration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Name:      "construction_duration_seconds",
			Help:      "Time from call to finished instance",
			Buckets:   cfg.buckets,
		}, []string{"mode"}),
	}
}

// Option returns the factory option attaching c.
func (c *Collector) Option() factory.Option {
	return factory.WithObserver(c)
}

// FactoryCreated implements factory.Observer.
func (c *Collector) FactoryCreated(uuid.UUID) {
	c.created.Inc()
}

// InstanceBuilt implements factory.Observer.
func (c *Collector) InstanceBuilt(_ uuid.UUID, deferred bool, elapsed time.Duration) {
	m := mode(deferred)
	c.built.WithLabelValues(m).Inc()
	c.duration.WithLabelValues(m).Observe(elapsed.Seconds())
}

// InitializerFailed implements factory.Observer.
func (c *Collector) InitializerFailed(_ uuid.UUID, deferred bool, _ error) {
	c.failures.WithLabelValues(mode(deferred)).Inc()
}

// Created returns the factories-created counter.
func (c *Collector) Created() prometheus.Counter {
	return c.created
}

// Built returns the instances-built counter for mode m.
func (c *Collector) Built(m string) prometheus.Counter {
	return c.built.WithLabelValues(m)
}

// Failures returns the initializer-failures counter for mode m.
func (c *Collector) Failures(m string) prometheus.Counter {
	return c.failures.WithLabelValues(m)
}

// DurationCollector returns the construction-duration histogram vector.
func (c *Collector) DurationCollector() prometheus.Collector {
	return c.duration
}

func mode(deferred bool) string {
	if deferred {
		return ModeDeferred
	}

	return ModeSync
}
