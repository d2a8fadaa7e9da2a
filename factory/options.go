// SPDX-License-Identifier: MIT
// Package: metafactory/factory
//
// options.go - functional options and the observer hook.
//
// Contract:
//   - Options are functional (type Option func(*config)), applied in order.
//   - Option constructors panic on nil inputs; construction never panics.
//   - A factory's options are inherited by every factory derived from it.

package factory

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Observer receives lifecycle events. Implementations must be safe for
// concurrent use: deferred chains report from their own goroutine.
type Observer interface {
	// FactoryCreated is called once per new factory (including derived ones).
	FactoryCreated(id uuid.UUID)

	// InstanceBuilt is called when a construction finishes successfully.
	// deferred reports whether the chain went asynchronous.
	InstanceBuilt(id uuid.UUID, deferred bool, elapsed time.Duration)

	// InitializerFailed is called when the chain stops on an error.
	InitializerFailed(id uuid.UUID, deferred bool, err error)
}

// nopObserver is the default Observer.
type nopObserver struct{}

func (nopObserver) FactoryCreated(uuid.UUID)                      {}
func (nopObserver) InstanceBuilt(uuid.UUID, bool, time.Duration) {}
func (nopObserver) InitializerFailed(uuid.UUID, bool, error)     {}

// config is shared, read-only, by a factory and all of its successors.
type config struct {
	logger   *slog.Logger
	observer Observer
}

// Option customizes factory construction.
type Option func(*config)

// WithLogger routes the package's log records to l instead of slog.Default().
// Panics on nil.
func WithLogger(l *slog.Logger) Option {
	if l == nil {
		panic("factory: WithLogger(nil)")
	}
	return func(c *config) {
		c.logger = l
	}
}

// WithObserver attaches an Observer. Panics on nil.
func WithObserver(o Observer) Option {
	if o == nil {
		panic("factory: WithObserver(nil)")
	}
	return func(c *config) {
		c.observer = o
	}
}

// newConfig applies opts over the defaults (default logger, no-op observer).
func newConfig(opts ...Option) *config {
	cfg := &config{observer: nopObserver{}}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// log resolves the logger at call time so slog.SetDefault is honoured.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}

	return slog.Default()
}
