// SPDX-License-Identifier: MIT
// Package: metafactory/factory
//
// types.go - sentinel errors, function shapes and the initializer outcome sum type.
//
// Error policy:
//   - Only sentinel variables are exposed; branch with errors.Is.
//   - Context (initializer index, offending type) is attached with %w.
//   - Everything here is a programmer error surfaced immediately; nothing is retried.

package factory

import "errors"

var (
	// ErrInvalidInitializer indicates an initializer entry that is not a supported function shape.
	ErrInvalidInitializer = errors.New("factory: initializer must be a function or a list/map of functions")

	// ErrNotAFactory indicates a Compose argument that does not satisfy the Stamp contract.
	ErrNotAFactory = errors.New("factory: argument is not a factory")

	// ErrInvalidInstanceState indicates a per-call instance state that is not a string-keyed map.
	ErrInvalidInstanceState = errors.New("factory: instance state must be a string-keyed map")

	// ErrMethodNotFound indicates Instance.Call found neither an own callable field nor a shared method.
	ErrMethodNotFound = errors.New("factory: method not found")

	// ErrInitializerPanic indicates a panic recovered while running deferred initializer work.
	ErrInitializerPanic = errors.New("factory: initializer panicked")

	// ErrAlreadySettled indicates a second attempt to resolve or reject a Deferred.
	ErrAlreadySettled = errors.New("factory: deferred already settled")

	// ErrDetachedDeferred indicates a zero-value Deferred, which nothing can settle.
	ErrDetachedDeferred = errors.New("factory: deferred not created by NewDeferred")
)

// Method is a shared behaviour entry. It receives the instance it was
// looked up on, the way a prototype method receives its receiver.
type Method func(self *Instance, args ...any) (any, error)

// Initializer runs once per instantiation, in chain order.
//
// Returning a nil Outcome keeps the current instance. Returning an *Instance
// replaces it for the rest of the chain and as the final result. Returning a
// *Deferred suspends the chain: the remaining initializers run after it
// settles and the construction call yields a pending Result.
type Initializer func(ic *InitContext) (Outcome, error)

// Outcome is what an initializer hands back to the construction loop.
// It is implemented by *Instance (replacement) and *Deferred (suspension);
// nil means "unchanged".
type Outcome interface {
	outcome()
}

func (*Instance) outcome() {}

func (*Deferred) outcome() {}

// InitContext is passed to every initializer.
type InitContext struct {
	// Args holds the positional arguments that followed the instance state.
	Args []any

	// Instance is the object under construction, as the previous initializer left it.
	Instance *Instance

	// Factory is the factory whose call started this construction.
	Factory *Factory
}

// Arg returns the i-th positional argument, or nil when out of range.
func (ic *InitContext) Arg(i int) any {
	if i < 0 || i >= len(ic.Args) {
		return nil
	}

	return ic.Args[i]
}
