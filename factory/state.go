// SPDX-License-Identifier: MIT
// File: state.go
// Role: The per-version configuration of a factory and the single merge routine
//       reused by construction, every combinator, and composition.
// Policy:
//   - A State held by a Factory is never mutated; successors merge into a fresh State.
//   - Props deep-merge, Methods/Refs/Statics assign shallowly, Init appends.

package factory

import (
	"fmt"

	"github.com/katalvlaran/metafactory/deep"
)

// State is the resolved bundle a factory carries.
type State struct {
	// Methods is the shared behaviour table every instance delegates to.
	Methods map[string]Method

	// Props holds default instance data, deep-cloned into every instance.
	Props deep.Map

	// Refs are assigned by reference into every instance (intentionally shared).
	Refs map[string]any

	// Statics belong to the factory value itself, never to instances.
	Statics map[string]any

	// Init is the ordered initializer chain.
	Init []Initializer
}

// NewState returns an empty State with every table allocated.
func NewState() *State {
	return &State{
		Methods: make(map[string]Method),
		Props:   make(deep.Map),
		Refs:    make(map[string]any),
		Statics: make(map[string]any),
	}
}

// MergeState folds src into dst: Props deep-merge, Refs/Statics/Methods are
// assigned (src wins on collision), Init is appended after dst's chain.
// A nil src is a no-op. Missing tables on dst are allocated.
//
// Errors: deep.ErrUncloneable / deep.ErrCyclicValue from Props,
// ErrInvalidInitializer from a nil entry in src.Init.
func MergeState(dst, src *State) error {
	if src == nil {
		return nil
	}
	if dst.Props == nil {
		dst.Props = make(deep.Map)
	}
	if _, err := deep.Merge(dst.Props, src.Props); err != nil {
		return fmt.Errorf("props: %w", err)
	}
	dst.Refs = deep.Assign(dst.Refs, src.Refs)
	dst.Statics = deep.Assign(dst.Statics, src.Statics)
	dst.Methods = deep.Assign(dst.Methods, src.Methods)

	chain, err := LoadInitializers(dst.Init, src.Init)
	if err != nil {
		return err
	}
	dst.Init = chain

	return nil
}

// Clone returns an independent copy: Props deep-cloned, tables and the
// initializer chain copied.
func (s *State) Clone() (*State, error) {
	return mergeStates(s)
}

// mergeStates folds every state, left to right, into a fresh State.
func mergeStates(states ...*State) (*State, error) {
	out := NewState()
	for _, s := range states {
		if err := MergeState(out, s); err != nil {
			return nil, err
		}
	}

	return out, nil
}
