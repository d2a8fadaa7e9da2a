// Package factorymetrics exports factory lifecycle events as Prometheus metrics.
//
//	c := factorymetrics.New(prometheus.DefaultRegisterer)
//	f, _ := factory.New(fragment, c.Option())
//
// Every factory derived from f (combinators, Compose with f first) reports to
// the same Collector.
package factorymetrics
