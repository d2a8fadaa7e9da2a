// SPDX-License-Identifier: MIT
// Package: metafactory/legacy
//
// options.go - conversion options.
//
// Defaults:
//   • inherited = true (the whole prototype chain is flattened)
//   • no factory options (default logger, no observer)

package legacy

import "github.com/katalvlaran/metafactory/factory"

// Option customizes a conversion.
type Option func(*convertConfig)

type convertConfig struct {
	// inherited selects full chain flattening over own-prototype-only copying.
	inherited bool
	// factoryOpts are forwarded to the produced factory.
	factoryOpts []factory.Option
}

// WithInherited selects whether members reachable only through Prototype.Parent
// are copied (true, the default) or only the constructor's own prototype is.
func WithInherited(on bool) Option {
	return func(c *convertConfig) {
		c.inherited = on
	}
}

// WithFactoryOptions forwards opts to the factory Convert builds.
func WithFactoryOptions(opts ...factory.Option) Option {
	for _, o := range opts {
		if o == nil {
			panic("legacy: WithFactoryOptions(nil)")
		}
	}
	return func(c *convertConfig) {
		c.factoryOpts = append(c.factoryOpts, opts...)
	}
}

func newConvertConfig(opts ...Option) convertConfig {
	cfg := convertConfig{inherited: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
