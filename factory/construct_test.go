// SPDX-License-Identifier: MIT
package factory_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/metafactory/deep"
	"github.com/katalvlaran/metafactory/factory"
)

func newCounter(t *testing.T) *factory.Factory {
	t.Helper()
	f, err := factory.Create(
		map[string]factory.Method{MethodGreet: greet, MethodAdd: add},
		deep.Map{FieldN: 1},
		func(ic *factory.InitContext) {
			n, _ := factory.Field[int](ic.Instance, FieldN)
			ic.Instance.Set(FieldN, n+ic.Arg(0).(int))
		},
	)
	require.NoError(t, err)

	return f
}

func TestCallEndToEnd(t *testing.T) {
	f := newCounter(t)

	res, err := f.Call(nil, 5)
	require.NoError(t, err)
	require.False(t, res.IsDeferred())

	inst, ok := res.Instance()
	require.True(t, ok)
	n, ok := factory.Field[int](inst, FieldN)
	require.True(t, ok)
	require.Equal(t, 6, n)

	got, err := inst.Call(MethodGreet)
	require.NoError(t, err)
	require.Equal(t, "hi", got)
	require.False(t, inst.HasOwn(MethodGreet), "methods are shared, not own")
	_, ok = inst.Get(MethodGreet)
	require.False(t, ok)
	_, ok = inst.Lookup(MethodGreet)
	require.True(t, ok)

	got, err = inst.Call(MethodAdd, 4)
	require.NoError(t, err)
	require.Equal(t, 10, got)

	require.True(t, f.Owns(inst))
	require.Same(t, f, inst.Constructor())
}

func TestCallWithoutInitializersIsSynchronous(t *testing.T) {
	f, err := factory.Props(deep.Map{FieldN: 1})
	require.NoError(t, err)

	res, err := f.Create(map[string]any{FieldA: 2})
	require.NoError(t, err)
	inst, ok := res.Instance()
	require.True(t, ok)
	require.Equal(t, []string{FieldA, FieldN}, inst.Keys())

	_, pending := res.Deferred()
	require.False(t, pending)
}

func TestInstancesDoNotShareNestedProps(t *testing.T) {
	f, err := factory.Props(deep.Map{FieldDeep: deep.Map{"list": deep.List{1}}})
	require.NoError(t, err)

	first, err := f.New(t.Context(), nil)
	require.NoError(t, err)
	second, err := f.New(t.Context(), nil)
	require.NoError(t, err)

	nested := first.Fields()[FieldDeep].(deep.Map)
	nested["list"] = append(nested["list"].(deep.List), 2)
	nested["x"] = true

	require.Equal(t, deep.Map{"list": deep.List{1}}, second.Fields()[FieldDeep])
	require.Equal(t, deep.Map{"list": deep.List{1}}, f.Fixed().Props[FieldDeep])
}

func TestRefsAreShared(t *testing.T) {
	shared := deep.Map{"hits": 0}
	f, err := factory.Refs(map[string]any{FieldA: shared})
	require.NoError(t, err)

	first, err := f.New(t.Context(), nil)
	require.NoError(t, err)
	second, err := f.New(t.Context(), nil)
	require.NoError(t, err)

	first.Fields()[FieldA].(deep.Map)["hits"] = 1
	require.Equal(t, 1, second.Fields()[FieldA].(deep.Map)["hits"])
}

func TestCallStateOverridesPropsAndRefs(t *testing.T) {
	f, err := factory.New(factory.Fragment{
		Props: deep.Map{FieldA: "prop", FieldB: "prop"},
		Refs:  map[string]any{FieldB: "ref", FieldC: "ref"},
	})
	require.NoError(t, err)

	inst, err := f.New(t.Context(), map[string]string{FieldC: "state"})
	require.NoError(t, err)
	require.Equal(t, map[string]any{FieldA: "prop", FieldB: "ref", FieldC: "state"}, inst.Fields())
}

func TestCallRejectsInvalidState(t *testing.T) {
	f := factory.Empty()
	for _, bad := range []any{42, "s", []any{1}, map[int]any{1: 1}} {
		_, err := f.Call(bad)
		require.ErrorIs(t, err, factory.ErrInvalidInstanceState, "state %T", bad)
	}
}

func TestInitializerReplacesInstance(t *testing.T) {
	f, err := factory.New(factory.Fragment{
		Methods: map[string]factory.Method{MethodGreet: greet},
		Init: []factory.Initializer{
			func(*factory.InitContext) (factory.Outcome, error) {
				return factory.NewInstance(map[string]any{FieldA: 1}), nil
			},
			func(ic *factory.InitContext) (factory.Outcome, error) {
				ic.Instance.Set(FieldB, 2)
				return nil, nil
			},
		},
	})
	require.NoError(t, err)

	inst, err := f.New(t.Context(), nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{FieldA: 1, FieldB: 2}, inst.Fields())
	require.Nil(t, inst.Constructor(), "replacement is a bare instance")
	require.False(t, f.Owns(inst))

	_, err = inst.Call(MethodGreet)
	require.ErrorIs(t, err, factory.ErrMethodNotFound)
}

func TestInitializerErrorStopsChain(t *testing.T) {
	boom := errors.New("boom")
	ran := false
	f, err := factory.Init(
		func(*factory.InitContext) error { return boom },
		func(*factory.InitContext) { ran = true },
	)
	require.NoError(t, err)

	_, err = f.Call(nil)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "initializer #0")
	require.False(t, ran)
}

func TestDeferredChainRunsInOrder(t *testing.T) {
	f, err := factory.New(factory.Fragment{
		Props: deep.Map{FieldTrace: []int{}},
		Init: []any{
			appendTrace(1),
			deferTrace(2),
			appendTrace(3),
			deferTrace(4),
			appendTrace(5),
		},
	})
	require.NoError(t, err)

	res, err := f.Call(nil)
	require.NoError(t, err)
	require.True(t, res.IsDeferred())
	_, ok := res.Instance()
	require.False(t, ok)

	ctx, cancel := context.WithTimeout(t.Context(), awaitTimeout)
	defer cancel()
	inst, err := res.Await(ctx)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3, 4, 5}, inst.Fields()[FieldTrace])
	require.True(t, f.Owns(inst))
}

func TestDeferredReplacementCarriesForward(t *testing.T) {
	f, err := factory.Init(
		func(*factory.InitContext) (factory.Outcome, error) {
			return factory.Resolved(factory.NewInstance(map[string]any{FieldA: 1})), nil
		},
		func(ic *factory.InitContext) {
			ic.Instance.Set(FieldB, 2)
		},
	)
	require.NoError(t, err)

	inst, err := f.New(t.Context(), nil)
	require.NoError(t, err)
	require.Equal(t, map[string]any{FieldA: 1, FieldB: 2}, inst.Fields())
}

func TestDeferredRejectionAndPanic(t *testing.T) {
	boom := errors.New("async boom")
	obs := newRecordingObserver()

	rejecting, err := factory.New(factory.Fragment{
		Init: []any{
			func(*factory.InitContext) (factory.Outcome, error) { return factory.Rejected(boom), nil },
			func(*factory.InitContext) { t.Error("must not run after rejection") },
		},
	}, factory.WithObserver(obs))
	require.NoError(t, err)

	_, err = rejecting.New(t.Context(), nil)
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "initializer #0")

	panicking, err := factory.Compose(factory.Empty(), mustInit(t,
		func(*factory.InitContext) (factory.Outcome, error) { return factory.Resolved(nil), nil },
		func(*factory.InitContext) { panic("later") },
	))
	require.NoError(t, err)

	_, err = panicking.New(t.Context(), nil)
	require.ErrorIs(t, err, factory.ErrInitializerPanic)

	_, _, _, failed := obs.snapshot()
	require.Equal(t, 1, failed, "the composed factory has no observer")
}

func mustInit(t *testing.T, sources ...any) *factory.Factory {
	t.Helper()
	f, err := factory.Init(sources...)
	require.NoError(t, err)

	return f
}

func TestZeroValueDeferredFails(t *testing.T) {
	obs := newRecordingObserver()
	f, err := factory.Init(func(*factory.InitContext) (factory.Outcome, error) {
		return new(factory.Deferred), nil
	})
	require.NoError(t, err)
	f, err = f.WithOptions(factory.WithObserver(obs))
	require.NoError(t, err)

	_, err = f.Call(nil)
	require.ErrorIs(t, err, factory.ErrDetachedDeferred)
	require.Contains(t, err.Error(), "initializer #0")
	_, _, _, failed := obs.snapshot()
	require.Equal(t, 1, failed)

	later := mustInit(t,
		func(*factory.InitContext) (factory.Outcome, error) { return factory.Resolved(nil), nil },
		func(*factory.InitContext) (factory.Outcome, error) { return &factory.Deferred{}, nil },
	)
	ctx, cancel := context.WithTimeout(t.Context(), awaitTimeout)
	defer cancel()
	_, err = later.New(ctx, nil)
	require.ErrorIs(t, err, factory.ErrDetachedDeferred)
	require.Contains(t, err.Error(), "initializer #1")

	_, err = new(factory.Deferred).Await(t.Context())
	require.ErrorIs(t, err, factory.ErrDetachedDeferred)
}

func TestAwaitHonoursContext(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	f := mustInit(t, func(*factory.InitContext) (factory.Outcome, error) {
		return factory.Go(func() (*factory.Instance, error) {
			<-release
			return nil, nil
		}), nil
	})

	res, err := f.Call(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 10*time.Millisecond)
	defer cancel()
	_, err = res.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestObserverEvents(t *testing.T) {
	obs := newRecordingObserver()
	f, err := factory.New(factory.Fragment{Init: deferTrace(1)}, factory.WithObserver(obs))
	require.NoError(t, err)

	_, err = f.New(t.Context(), nil)
	require.NoError(t, err)

	g, err := f.Init(func(*factory.InitContext) error { return errors.New("x") })
	require.NoError(t, err)
	plain, err := factory.Props(deep.Map{FieldN: 1})
	require.NoError(t, err)
	_, err = plain.Call(nil)
	require.NoError(t, err)

	// g keeps f's observer; its first initializer defers, the second fails.
	_, err = g.New(t.Context(), nil)
	require.Error(t, err)

	created, syncBuilt, asyncBuilt, failed := obs.snapshot()
	require.Equal(t, 2, created)
	require.Equal(t, 0, syncBuilt)
	require.Equal(t, 1, asyncBuilt)
	require.Equal(t, 1, failed)
}

func TestAwaitAll(t *testing.T) {
	f, err := factory.New(factory.Fragment{
		Props: deep.Map{FieldTrace: []int{}},
		Init:  deferTrace(7),
	})
	require.NoError(t, err)

	pending := make([]*factory.Deferred, 0, 3)
	for i := 0; i < 3; i++ {
		res, err := f.Call(nil)
		require.NoError(t, err)
		d, ok := res.Deferred()
		require.True(t, ok)
		pending = append(pending, d)
	}
	pending = append(pending, nil)

	insts, err := factory.AwaitAll(t.Context(), pending...)
	require.NoError(t, err)
	require.Len(t, insts, 4)
	for _, inst := range insts[:3] {
		require.Equal(t, []int{7}, inst.Fields()[FieldTrace])
	}
	require.Nil(t, insts[3])

	_, err = factory.AwaitAll(t.Context(), factory.Resolved(nil), factory.Rejected(errors.New("no")))
	require.ErrorContains(t, err, "deferred #1")
}

func TestDeferredSettlesOnce(t *testing.T) {
	d, resolve := factory.NewDeferred()
	require.False(t, d.Settled())

	require.NoError(t, resolve(nil, nil))
	require.ErrorIs(t, resolve(nil, errors.New("late")), factory.ErrAlreadySettled)
	require.True(t, d.Settled())

	inst, err := d.Await(t.Context())
	require.NoError(t, err)
	require.Nil(t, inst)
}

func TestConcurrentCalls(t *testing.T) {
	f := newCounter(t)
	const workers = 64

	var wg sync.WaitGroup
	results := make([]int, workers)
	errs := make([]error, workers)
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer wg.Done()
			inst, err := f.New(context.Background(), nil, id)
			if err != nil {
				errs[id] = err
				return
			}
			results[id], _ = factory.Field[int](inst, FieldN)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, i+1, results[i], fmt.Sprintf("worker %d", i))
	}
}

func TestDumpIsStable(t *testing.T) {
	f, err := factory.Props(deep.Map{FieldB: 2, FieldA: deep.List{"x"}})
	require.NoError(t, err)

	first, err := f.New(t.Context(), nil)
	require.NoError(t, err)
	second, err := f.New(t.Context(), nil)
	require.NoError(t, err)

	require.Equal(t, first.Dump(), second.Dump())
	require.Less(t, strings.Index(first.Dump(), `"a"`), strings.Index(first.Dump(), `"b"`))
}

func TestInstanceFieldAccess(t *testing.T) {
	inst := factory.NewInstance(map[string]any{FieldA: 1})

	_, ok := factory.Field[string](inst, FieldA)
	require.False(t, ok, "wrong type")
	_, ok = inst.Get("missing")
	require.False(t, ok)

	inst.Set(MethodGreet, factory.Method(greet))
	got, err := inst.Call(MethodGreet)
	require.NoError(t, err)
	require.Equal(t, "hi", got)

	inst.Delete(MethodGreet)
	require.Equal(t, 1, inst.Len())
	_, err = inst.Call(MethodGreet)
	require.ErrorIs(t, err, factory.ErrMethodNotFound)
}
