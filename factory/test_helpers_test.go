// SPDX-License-Identifier: MIT
// Package factory_test contains shared fixtures for factory tests.
//
// Purpose:
//   - Keep field and method names in one place (no magic strings in test bodies).
//   - Provide small initializer builders that record their execution order.

package factory_test

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/katalvlaran/metafactory/factory"
)

// Common field and method names.
const (
	FieldN     = "n"
	FieldA     = "a"
	FieldB     = "b"
	FieldC     = "c"
	FieldTrace = "trace"
	FieldDeep  = "deep"

	MethodGreet = "greet"
	MethodAdd   = "add"
)

// awaitTimeout bounds every Await in tests.
const awaitTimeout = 2 * time.Second

// greet is a shared method returning a constant.
func greet(_ *factory.Instance, _ ...any) (any, error) {
	return "hi", nil
}

// add returns the instance's n plus the first argument.
func add(self *factory.Instance, args ...any) (any, error) {
	n, _ := factory.Field[int](self, FieldN)

	return n + args[0].(int), nil
}

// appendTrace returns an initializer that appends tag to the instance's trace.
func appendTrace(tag int) func(*factory.InitContext) {
	return func(ic *factory.InitContext) {
		tr, _ := factory.Field[[]int](ic.Instance, FieldTrace)
		ic.Instance.Set(FieldTrace, append(append([]int(nil), tr...), tag))
	}
}

// deferTrace returns an initializer that appends tag on another goroutine.
func deferTrace(tag int) factory.Initializer {
	return func(ic *factory.InitContext) (factory.Outcome, error) {
		inst := ic.Instance
		return factory.Go(func() (*factory.Instance, error) {
			time.Sleep(5 * time.Millisecond)
			tr, _ := factory.Field[[]int](inst, FieldTrace)
			inst.Set(FieldTrace, append(append([]int(nil), tr...), tag))
			return nil, nil
		}), nil
	}
}

// recordingObserver counts observer events; safe for concurrent use.
type recordingObserver struct {
	mu       sync.Mutex
	created  int
	built    map[bool]int
	failures []error
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{built: make(map[bool]int)}
}

func (r *recordingObserver) FactoryCreated(uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *recordingObserver) InstanceBuilt(_ uuid.UUID, deferred bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.built[deferred]++
}

func (r *recordingObserver) InitializerFailed(_ uuid.UUID, _ bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, err)
}

func (r *recordingObserver) snapshot() (created, syncBuilt, asyncBuilt, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.created, r.built[false], r.built[true], len(r.failures)
}
