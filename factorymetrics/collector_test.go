// SPDX-License-Identifier: MIT
package factorymetrics_test

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/metafactory/deep"
	"github.com/katalvlaran/metafactory/factory"
	"github.com/katalvlaran/metafactory/factorymetrics"
)

func TestCollectorCountsLifecycle(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := factorymetrics.New(reg)

	f, err := factory.New(factory.Fragment{Props: deep.Map{"n": 1}}, c.Option())
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = f.Call(nil)
		require.NoError(t, err)
	}

	deferred, err := f.Init(func(*factory.InitContext) (factory.Outcome, error) {
		return factory.Resolved(nil), nil
	})
	require.NoError(t, err)
	_, err = deferred.New(t.Context(), nil)
	require.NoError(t, err)

	failing, err := f.Init(func(*factory.InitContext) error { return errors.New("nope") })
	require.NoError(t, err)
	_, err = failing.Call(nil)
	require.Error(t, err)

	require.Equal(t, 3.0, testutil.ToFloat64(c.Created()))
	require.Equal(t, 3.0, testutil.ToFloat64(c.Built(factorymetrics.ModeSync)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Built(factorymetrics.ModeDeferred)))
	require.Equal(t, 1.0, testutil.ToFloat64(c.Failures(factorymetrics.ModeSync)))
	require.Equal(t, 0.0, testutil.ToFloat64(c.Failures(factorymetrics.ModeDeferred)))

	// one series per mode in the histogram
	require.Equal(t, 2, testutil.CollectAndCount(c.DurationCollector()))
}

func TestCollectorNamespaceAndRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	factorymetrics.New(reg, factorymetrics.WithNamespace("shop"), factorymetrics.WithBuckets(0.1, 1))

	families, err := reg.Gather()
	require.NoError(t, err)
	// only the plain counter has a series before any event
	require.Len(t, families, 1)
	require.Equal(t, "shop_factories_created_total", families[0].GetName())

	require.Panics(t, func() { factorymetrics.New(reg, factorymetrics.WithNamespace("shop")) })
	require.Panics(t, func() { factorymetrics.WithNamespace("") })
	require.Panics(t, func() { factorymetrics.WithBuckets() })
}
