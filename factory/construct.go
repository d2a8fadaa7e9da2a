// SPDX-License-Identifier: MIT
// File: construct.go
// Role: Instance construction and the initializer chain.
// Determinism:
//   - Initializers run strictly in chain order, never concurrently; initializer N+1
//     observes the instance exactly as initializer N left it.
//   - The chain stays on the caller's goroutine until an initializer returns a
//     *Deferred; from then on the remainder runs on one continuation goroutine.

package factory

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/katalvlaran/metafactory/deep"
)

// Result is the outcome of a factory call: either a finished instance or a
// pending Deferred, depending purely on what the initializers returned.
type Result struct {
	instance *Instance
	pending  *Deferred
}

// Instance returns the finished instance; ok is false when the call went deferred.
func (r Result) Instance() (*Instance, bool) {
	return r.instance, r.pending == nil && r.instance != nil
}

// Deferred returns the pending construction; ok is false when the call finished synchronously.
func (r Result) Deferred() (*Deferred, bool) {
	return r.pending, r.pending != nil
}

// IsDeferred reports whether an initializer suspended the chain.
func (r Result) IsDeferred() bool {
	return r.pending != nil
}

// Await returns the instance, waiting for the pending chain if there is one.
func (r Result) Await(ctx context.Context) (*Instance, error) {
	if r.pending != nil {
		return r.pending.Await(ctx)
	}

	return r.instance, nil
}

// Call builds one instance.
//
// Steps:
//  1. link the instance to the factory's method table;
//  2. deep-clone default props into it;
//  3. assign refs, then the per-call state (nil or a string-keyed map);
//  4. run the initializer chain with args as InitContext.Args.
//
// Errors from steps 1-3 and from initializers that run before any suspension
// are returned directly. Once an initializer returns a *Deferred, later
// failures reject the Result's Deferred instead.
//
// Errors: ErrInvalidInstanceState, initializer errors wrapped with their index.
func (f *Factory) Call(state any, args ...any) (Result, error) {
	start := time.Now()
	inst, err := f.prepare(state)
	if err != nil {
		return Result{}, err
	}
	chain := f.state.Init
	if len(chain) == 0 {
		f.cfg.observer.InstanceBuilt(f.id, false, time.Since(start))
		return Result{instance: inst}, nil
	}

	ic := &InitContext{Args: args, Instance: inst, Factory: f}
	for i, fn := range chain {
		out, err := fn(ic)
		if err != nil {
			err = fmt.Errorf("initializer #%d: %w", i, err)
			f.failed(false, err)
			return Result{}, err
		}
		switch o := out.(type) {
		case *Instance:
			if o != nil {
				ic.Instance = o
			}
		case *Deferred:
			if o == nil {
				continue
			}
			if o.detached() {
				err = fmt.Errorf("initializer #%d: %w", i, ErrDetachedDeferred)
				f.failed(false, err)
				return Result{}, err
			}
			return Result{pending: f.suspend(o, i+1, ic.Instance, args, start)}, nil
		}
	}
	f.cfg.observer.InstanceBuilt(f.id, false, time.Since(start))

	return Result{instance: ic.Instance}, nil
}

// Create is an alias of Call.
func (f *Factory) Create(state any, args ...any) (Result, error) {
	return f.Call(state, args...)
}

// New builds one instance and waits for it when the chain suspends.
func (f *Factory) New(ctx context.Context, state any, args ...any) (*Instance, error) {
	res, err := f.Call(state, args...)
	if err != nil {
		return nil, err
	}

	return res.Await(ctx)
}

// prepare performs steps 1-3 of Call.
func (f *Factory) prepare(state any) (*Instance, error) {
	fields, err := deep.CloneMap(f.state.Props)
	if err != nil {
		return nil, fmt.Errorf("props: %w", err)
	}
	if fields == nil {
		fields = make(map[string]any, len(f.state.Refs))
	}
	for k, v := range f.state.Refs {
		fields[k] = v
	}
	if err = assignState(fields, state); err != nil {
		return nil, err
	}

	return &Instance{fields: fields, table: f.table}, nil
}

// assignState shallow-copies a per-call instance state into fields.
func assignState(fields map[string]any, state any) error {
	if state == nil {
		return nil
	}
	if m, ok := state.(map[string]any); ok {
		for k, v := range m {
			fields[k] = v
		}
		return nil
	}
	rv := reflect.ValueOf(state)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: %T", ErrInvalidInstanceState, state)
	}
	iter := rv.MapRange()
	for iter.Next() {
		fields[iter.Key().String()] = iter.Value().Interface()
	}

	return nil
}

// suspend hands the rest of the chain to a continuation goroutine.
func (f *Factory) suspend(pending *Deferred, next int, last *Instance, args []any, start time.Time) *Deferred {
	if log := f.cfg.log(); log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("initializer chain suspended",
			slog.String("factory", f.id.String()),
			slog.Int("initializer", next-1),
			slog.Int("remaining", len(f.state.Init)-next),
		)
	}
	out, resolve := NewDeferred()
	go func() {
		inst, err := f.resume(pending, next, last, args)
		if err != nil {
			f.failed(true, err)
		} else {
			f.cfg.observer.InstanceBuilt(f.id, true, time.Since(start))
		}
		_ = resolve(inst, err) // sole settler of out
	}()

	return out
}

// resume waits for pending, then runs the chain from next, suspending again
// on every further *Deferred. A Deferred resolved with nil keeps the instance.
func (f *Factory) resume(pending *Deferred, next int, inst *Instance, args []any) (res *Instance, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("%w: initializer #%d: %v", ErrInitializerPanic, next, r)
		}
	}()
	chain := f.state.Init
	for pending != nil {
		got, err := pending.wait()
		if err != nil {
			return nil, fmt.Errorf("initializer #%d: %w", next-1, err)
		}
		if got != nil {
			inst = got
		}
		pending = nil
		for next < len(chain) && pending == nil {
			out, err := chain[next](&InitContext{Args: args, Instance: inst, Factory: f})
			if err != nil {
				return nil, fmt.Errorf("initializer #%d: %w", next, err)
			}
			switch o := out.(type) {
			case *Instance:
				if o != nil {
					inst = o
				}
			case *Deferred:
				if o != nil && o.detached() {
					return nil, fmt.Errorf("initializer #%d: %w", next, ErrDetachedDeferred)
				}
				if o != nil {
					pending = o
				}
			}
			next++
		}
	}

	return inst, nil
}

// failed reports a stopped chain to the observer and the log.
func (f *Factory) failed(deferred bool, err error) {
	f.cfg.observer.InitializerFailed(f.id, deferred, err)
	f.cfg.log().Debug("initializer chain failed",
		slog.String("factory", f.id.String()),
		slog.Bool("deferred", deferred),
		slog.Any("error", err),
	)
}
