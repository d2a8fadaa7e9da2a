// SPDX-License-Identifier: MIT
// File: legacy.go
// Role: Adapts a constructor-plus-prototype-chain description into a factory.
// Mapping:
//   - prototype methods (flattened, nearest definition wins) → State.Methods
//   - prototype data fields (deep-cloned)                    → State.Props
//   - constructor statics                                    → State.Statics
//   - constructor body                                       → the single initializer

package legacy

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/metafactory/deep"
	"github.com/katalvlaran/metafactory/factory"
)

var (
	// ErrNilBody indicates a Constructor without a Body.
	ErrNilBody = errors.New("legacy: constructor body is nil")

	// ErrPrototypeCycle indicates a Prototype reachable from its own Parent chain.
	ErrPrototypeCycle = errors.New("legacy: prototype chain contains a cycle")
)

// Prototype is one link of a prototype chain.
type Prototype struct {
	// Methods are shared behaviour entries defined on this link.
	Methods map[string]factory.Method

	// Fields are shared data members defined on this link.
	Fields map[string]any

	// Parent is the next link, or nil at the end of the chain.
	Parent *Prototype
}

// Constructor describes a classic constructor: a body run against a fresh
// object, a prototype chain behind it and members attached to the
// constructor itself.
type Constructor struct {
	Name      string
	Prototype *Prototype
	Statics   map[string]any

	// Body initializes self from the call arguments. An empty constructor
	// is a Body that returns nil.
	Body func(self *factory.Instance, args []any) error
}

// ConvertState builds the factory State equivalent to c.
//
// Errors: ErrNilBody, ErrPrototypeCycle, deep.ErrUncloneable for prototype
// fields that are not plain values.
func ConvertState(c Constructor, opts ...Option) (*factory.State, error) {
	if c.Body == nil {
		return nil, fmt.Errorf("%w: %q", ErrNilBody, c.Name)
	}
	cfg := newConvertConfig(opts...)

	chain, err := links(c.Prototype, cfg.inherited)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", c.Name, err)
	}

	st := factory.NewState()
	// farthest ancestor first so nearer links overwrite it
	for i := len(chain) - 1; i >= 0; i-- {
		p := chain[i]
		st.Methods = deep.Assign(st.Methods, p.Methods)
		for k, v := range p.Fields {
			cv, err := deep.Clone(v)
			if err != nil {
				return nil, fmt.Errorf("prototype field %q: %w", k, err)
			}
			st.Props[k] = cv
		}
	}
	st.Statics = deep.Assign(st.Statics, c.Statics)

	body := c.Body
	st.Init = []factory.Initializer{
		func(ic *factory.InitContext) (factory.Outcome, error) {
			return nil, body(ic.Instance, ic.Args)
		},
	}

	return st, nil
}

// Convert builds a factory whose instances behave like objects made by c:
// prototype methods are shared, prototype fields are per-instance defaults
// and the body runs once per instance with the call arguments.
func Convert(c Constructor, opts ...Option) (*factory.Factory, error) {
	st, err := ConvertState(c, opts...)
	if err != nil {
		return nil, err
	}
	cfg := newConvertConfig(opts...)

	return factory.FromState(st, cfg.factoryOpts...)
}

// links returns the prototype chain starting at p, nearest first.
func links(p *Prototype, inherited bool) ([]*Prototype, error) {
	if p == nil {
		return nil, nil
	}
	if !inherited {
		return []*Prototype{p}, nil
	}
	seen := make(map[*Prototype]struct{})
	var out []*Prototype
	for ; p != nil; p = p.Parent {
		if _, dup := seen[p]; dup {
			return nil, ErrPrototypeCycle
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	return out, nil
}
