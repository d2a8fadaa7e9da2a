// SPDX-License-Identifier: MIT
// File: factory.go
// Role: Factory value, its constructors, the combinator operations and composition.
// Policy:
//   - A Factory never changes after creation; every combinator returns a successor
//     built from a fresh State (old state merged with the new fragment).
//   - Composition folds states left to right: last writer wins for scalars,
//     earlier factories' initializers run first.

package factory

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/google/uuid"

	"github.com/katalvlaran/metafactory/deep"
)

// Stamp is the structural factory contract: callable, exposing its state and
// the combinator operations. Anything implementing it can be composed.
type Stamp interface {
	// Fixed returns a copy of the factory's State.
	Fixed() *State
	// Call builds one instance.
	Call(state any, args ...any) (Result, error)

	Methods(tables ...map[string]Method) (*Factory, error)
	Props(sources ...deep.Map) (*Factory, error)
	Refs(sources ...map[string]any) (*Factory, error)
	Statics(sources ...map[string]any) (*Factory, error)
	Init(sources ...any) (*Factory, error)
	Compose(others ...Stamp) (*Factory, error)
}

// Fragment is the raw declarative input of New.
type Fragment struct {
	Methods map[string]Method
	Props   deep.Map
	Refs    map[string]any
	Statics map[string]any
	// Init is anything LoadInitializers accepts: a function, a list or a map of functions.
	Init any
}

// Factory produces instances from an immutable State.
type Factory struct {
	id    uuid.UUID
	state *State
	table *methodTable
	cfg   *config
}

var _ Stamp = (*Factory)(nil)

// New builds a factory from one fragment.
//
// Errors: deep.ErrUncloneable / deep.ErrCyclicValue for Props,
// ErrInvalidInitializer for Init.
func New(fr Fragment, opts ...Option) (*Factory, error) {
	chain, err := LoadInitializers(nil, fr.Init)
	if err != nil {
		return nil, err
	}
	st, err := mergeStates(&State{
		Methods: fr.Methods,
		Props:   fr.Props,
		Refs:    fr.Refs,
		Statics: fr.Statics,
		Init:    chain,
	})
	if err != nil {
		return nil, err
	}

	return newFactory(st, newConfig(opts...)), nil
}

// Create is the positional form of New: methods, default props, initializers.
// Each init argument may be any source LoadInitializers accepts.
func Create(methods map[string]Method, props deep.Map, init ...any) (*Factory, error) {
	chain, err := LoadInitializers(nil, init...)
	if err != nil {
		return nil, err
	}

	return New(Fragment{Methods: methods, Props: props, Init: chain})
}

// FromState builds a factory from an existing State. The State is merged into
// a fresh one, so the caller keeps ownership of s.
func FromState(s *State, opts ...Option) (*Factory, error) {
	st, err := mergeStates(s)
	if err != nil {
		return nil, err
	}

	return newFactory(st, newConfig(opts...)), nil
}

// Empty returns a factory with an empty state.
func Empty(opts ...Option) *Factory {
	return newFactory(NewState(), newConfig(opts...))
}

// newFactory takes ownership of st.
func newFactory(st *State, cfg *config) *Factory {
	f := &Factory{id: uuid.New(), state: st, cfg: cfg}
	f.table = &methodTable{owner: f, fns: st.Methods}

	cfg.observer.FactoryCreated(f.id)
	if log := cfg.log(); log.Enabled(context.Background(), slog.LevelDebug) {
		log.Debug("factory created",
			slog.String("factory", f.id.String()),
			slog.Int("methods", len(st.Methods)),
			slog.Int("props", len(st.Props)),
			slog.Int("initializers", len(st.Init)),
		)
	}

	return f
}

// ID returns the factory's unique identity.
func (f *Factory) ID() uuid.UUID {
	return f.id
}

// Fixed returns a copy of the State; it may be modified freely.
// A nil *Factory has no state and returns nil.
func (f *Factory) Fixed() *State {
	if f == nil {
		return nil
	}
	st, _ := f.state.Clone() // f.state already passed the same merge

	return st
}

// Static returns the static member name attached to the factory.
func (f *Factory) Static(name string) (any, bool) {
	v, ok := f.state.Statics[name]

	return v, ok
}

// Owns reports whether inst delegates to this factory's method table
// (the analogue of an instanceof check).
func (f *Factory) Owns(inst *Instance) bool {
	return inst != nil && inst.table == f.table
}

// WithOptions returns a successor with the same state and opts applied on
// top of the receiver's options.
func (f *Factory) WithOptions(opts ...Option) (*Factory, error) {
	cfg := *f.cfg
	for _, opt := range opts {
		opt(&cfg)
	}

	return f.derive(&cfg, func(*State) error { return nil })
}

// derive builds a successor: the receiver's state merged into a fresh one,
// then edit applied to that fresh state only.
func (f *Factory) derive(cfg *config, edit func(*State) error) (*Factory, error) {
	st, err := f.state.Clone()
	if err != nil {
		return nil, err
	}
	if err = edit(st); err != nil {
		return nil, err
	}

	return newFactory(st, cfg), nil
}

// Methods returns a successor whose method table is extended by tables
// (later tables win).
func (f *Factory) Methods(tables ...map[string]Method) (*Factory, error) {
	return f.derive(f.cfg, func(st *State) error {
		st.Methods = deep.Assign(st.Methods, tables...)
		return nil
	})
}

// Props returns a successor whose default props are deep-merged with sources.
func (f *Factory) Props(sources ...deep.Map) (*Factory, error) {
	return f.derive(f.cfg, func(st *State) error {
		for _, src := range sources {
			if _, err := deep.Merge(st.Props, src); err != nil {
				return fmt.Errorf("props: %w", err)
			}
		}
		return nil
	})
}

// State is an alias of Props.
func (f *Factory) State(sources ...deep.Map) (*Factory, error) {
	return f.Props(sources...)
}

// Refs returns a successor whose shared references are extended by sources.
func (f *Factory) Refs(sources ...map[string]any) (*Factory, error) {
	return f.derive(f.cfg, func(st *State) error {
		st.Refs = deep.Assign(st.Refs, sources...)
		return nil
	})
}

// Statics returns a successor whose static members are extended by sources.
func (f *Factory) Statics(sources ...map[string]any) (*Factory, error) {
	return f.derive(f.cfg, func(st *State) error {
		st.Statics = deep.Assign(st.Statics, sources...)
		return nil
	})
}

// Init returns a successor whose initializer chain is extended by sources
// (see LoadInitializers for the accepted shapes).
func (f *Factory) Init(sources ...any) (*Factory, error) {
	return f.derive(f.cfg, func(st *State) error {
		chain, err := LoadInitializers(st.Init, sources...)
		if err != nil {
			return err
		}
		st.Init = chain
		return nil
	})
}

// Enclose is an alias of Init.
func (f *Factory) Enclose(sources ...any) (*Factory, error) {
	return f.Init(sources...)
}

// Compose returns a new factory combining the receiver with others, in that order.
func (f *Factory) Compose(others ...Stamp) (*Factory, error) {
	all := make([]Stamp, 0, len(others)+1)
	all = append(all, f)

	return compose(f.cfg, append(all, others...))
}

// Compose combines stamps left to right into a new factory: methods, refs,
// statics and scalar props of later stamps override earlier ones, nested
// props merge, initializers run in argument order.
// The options of the first *Factory argument are inherited.
//
// Errors: ErrNotAFactory for a nil argument or one exposing no state.
func Compose(stamps ...Stamp) (*Factory, error) {
	cfg := newConfig()
	for _, s := range stamps {
		if f, ok := s.(*Factory); ok && f != nil {
			cfg = f.cfg
			break
		}
	}

	return compose(cfg, stamps)
}

func compose(cfg *config, stamps []Stamp) (*Factory, error) {
	states := make([]*State, 0, len(stamps))
	for i, s := range stamps {
		st := stateOf(s)
		if st == nil {
			return nil, fmt.Errorf("%w: argument #%d (%T)", ErrNotAFactory, i, s)
		}
		states = append(states, st)
	}
	st, err := mergeStates(states...)
	if err != nil {
		return nil, err
	}

	return newFactory(st, cfg), nil
}

// stateOf returns the state behind a stamp, or nil when s breaks the contract.
func stateOf(s Stamp) *State {
	if isNil(s) {
		return nil
	}
	if f, ok := s.(*Factory); ok {
		return f.state
	}

	return s.Fixed()
}

// IsStamp reports whether v satisfies the factory contract: it implements
// Stamp and exposes a non-nil state.
func IsStamp(v any) bool {
	s, ok := v.(Stamp)

	return ok && stateOf(s) != nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}

// Methods is shorthand for Empty().Methods(tables...).
func Methods(tables ...map[string]Method) (*Factory, error) {
	return Empty().Methods(tables...)
}

// Props is shorthand for Empty().Props(sources...).
func Props(sources ...deep.Map) (*Factory, error) {
	return Empty().Props(sources...)
}

// Refs is shorthand for Empty().Refs(sources...).
func Refs(sources ...map[string]any) (*Factory, error) {
	return Empty().Refs(sources...)
}

// Statics is shorthand for Empty().Statics(sources...).
func Statics(sources ...map[string]any) (*Factory, error) {
	return Empty().Statics(sources...)
}

// Init is shorthand for Empty().Init(sources...).
func Init(sources ...any) (*Factory, error) {
	return Empty().Init(sources...)
}
