// SPDX-License-Identifier: MIT
// File: deferred.go
// Role: Deferred - a one-shot, settle-once stand-in for an instance that is not ready yet.
// Concurrency:
//   - Settling closes a channel; every read of the result happens after that close.
//   - Await only bounds the caller's wait; it never cancels the producing work.

package factory

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Deferred is the pending result of asynchronous initializer work.
// It settles exactly once, either resolved with an instance (possibly nil,
// meaning "keep the current one") or rejected with an error.
//
// Obtain one from NewDeferred, Resolved, Rejected or Go. The zero value has no
// resolver and never settles: an initializer returning it fails with
// ErrDetachedDeferred, and Await on it returns ErrDetachedDeferred at once.
type Deferred struct {
	done chan struct{}
	once sync.Once
	inst *Instance
	err  error
}

// Resolver settles its Deferred. Only the first call has an effect; later
// calls return ErrAlreadySettled.
type Resolver func(inst *Instance, err error) error

// NewDeferred returns a pending Deferred and the function that settles it.
func NewDeferred() (*Deferred, Resolver) {
	d := &Deferred{done: make(chan struct{})}

	return d, d.settle
}

// Resolved returns a Deferred already resolved with inst.
func Resolved(inst *Instance) *Deferred {
	d, resolve := NewDeferred()
	_ = resolve(inst, nil) // fresh deferred, cannot be settled yet

	return d
}

// Rejected returns a Deferred already rejected with err.
func Rejected(err error) *Deferred {
	d, resolve := NewDeferred()
	_ = resolve(nil, err)

	return d
}

// Go runs fn on a new goroutine and returns a Deferred settled with its result.
// A panic inside fn rejects the Deferred with ErrInitializerPanic.
func Go(fn func() (*Instance, error)) *Deferred {
	d, resolve := NewDeferred()
	go func() {
		inst, err := runGuarded(fn)
		_ = resolve(inst, err)
	}()

	return d
}

func runGuarded(fn func() (*Instance, error)) (inst *Instance, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst, err = nil, fmt.Errorf("%w: %v", ErrInitializerPanic, r)
		}
	}()

	return fn()
}

func (d *Deferred) settle(inst *Instance, err error) error {
	settled := false
	d.once.Do(func() {
		d.inst, d.err = inst, err
		settled = true
		close(d.done)
	})
	if !settled {
		return ErrAlreadySettled
	}

	return nil
}

// Done is closed once the Deferred settles. It is nil for the zero value.
func (d *Deferred) Done() <-chan struct{} {
	return d.done
}

// Settled reports whether the Deferred has been resolved or rejected.
func (d *Deferred) Settled() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// Await blocks until the Deferred settles or ctx is done.
// A ctx error is returned wrapped; the pending work keeps running.
func (d *Deferred) Await(ctx context.Context) (*Instance, error) {
	if d.detached() {
		return nil, ErrDetachedDeferred
	}
	select {
	case <-d.done:
		return d.inst, d.err
	case <-ctx.Done():
		return nil, fmt.Errorf("factory: await deferred: %w", ctx.Err())
	}
}

func (d *Deferred) detached() bool {
	return d.done == nil
}

// wait blocks without a bound; used by the construction continuation,
// which has no cancellation primitive.
func (d *Deferred) wait() (*Instance, error) {
	<-d.done

	return d.inst, d.err
}

// AwaitAll waits for every Deferred and returns their instances in argument order.
// The first rejection (or ctx expiry) is returned; remaining waits are abandoned.
func AwaitAll(ctx context.Context, ds ...*Deferred) ([]*Instance, error) {
	out := make([]*Instance, len(ds))
	g, gctx := errgroup.WithContext(ctx)
	for i, d := range ds {
		if d == nil {
			continue
		}
		g.Go(func() error {
			inst, err := d.Await(gctx)
			if err != nil {
				return fmt.Errorf("deferred #%d: %w", i, err)
			}
			out[i] = inst
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return out, nil
}
