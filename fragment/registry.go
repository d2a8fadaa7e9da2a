// SPDX-License-Identifier: MIT
// File: registry.go
// Role: Named methods and initializers; resolution of Documents into factories.
// Concurrency:
//   - A Registry is safe for concurrent use; registration is usually done once
//     at start-up and resolution many times after.

package fragment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/katalvlaran/metafactory/deep"
	"github.com/katalvlaran/metafactory/factory"
)

var (
	// ErrInvalidDocument indicates malformed YAML or a value the factory cannot hold.
	ErrInvalidDocument = errors.New("fragment: invalid document")

	// ErrDuplicateName indicates a second registration under the same name.
	ErrDuplicateName = errors.New("fragment: name already registered")

	// ErrUnknownName indicates a document referring to an unregistered name.
	ErrUnknownName = errors.New("fragment: unknown name")

	// ErrEmptyName indicates an empty name or alias.
	ErrEmptyName = errors.New("fragment: empty name")

	// ErrNilFunction indicates a registration with a nil method.
	ErrNilFunction = errors.New("fragment: nil function")
)

// Registry maps names used in documents to Go functions.
type Registry struct {
	mu      sync.RWMutex
	methods map[string]factory.Method
	inits   map[string]factory.Initializer
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		methods: make(map[string]factory.Method),
		inits:   make(map[string]factory.Initializer),
	}
}

// RegisterMethod binds name to m.
//
// Errors: ErrEmptyName, ErrNilFunction, ErrDuplicateName.
func (r *Registry) RegisterMethod(name string, m factory.Method) error {
	if name == "" {
		return ErrEmptyName
	}
	if m == nil {
		return fmt.Errorf("%w: method %q", ErrNilFunction, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.methods[name]; dup {
		return fmt.Errorf("%w: method %q", ErrDuplicateName, name)
	}
	r.methods[name] = m

	return nil
}

// RegisterInit binds name to an initializer of any shape factory.LoadInitializers
// accepts for a single function.
//
// Errors: ErrEmptyName, factory.ErrInvalidInitializer, ErrDuplicateName.
func (r *Registry) RegisterInit(name string, fn any) error {
	if name == "" {
		return ErrEmptyName
	}
	chain, err := factory.LoadInitializers(nil, fn)
	if err != nil {
		return fmt.Errorf("init %q: %w", name, err)
	}
	if len(chain) != 1 {
		return fmt.Errorf("init %q: %w: expected exactly one function", name, factory.ErrInvalidInitializer)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.inits[name]; dup {
		return fmt.Errorf("%w: init %q", ErrDuplicateName, name)
	}
	r.inits[name] = chain[0]

	return nil
}

// Fragment resolves every name in doc and returns the equivalent factory.Fragment.
// Props and State are merged into one fresh props map.
//
// Errors: ErrUnknownName, ErrEmptyName, ErrDuplicateName (two method
// entries installed under the same alias), deep errors from merging props.
func (r *Registry) Fragment(doc *Document) (factory.Fragment, error) {
	if doc == nil {
		return factory.Fragment{}, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make(map[string]factory.Method, len(doc.Methods))
	for _, entry := range doc.Methods {
		alias, name := binding(entry)
		if alias == "" || name == "" {
			return factory.Fragment{}, fmt.Errorf("%w: method entry %q", ErrEmptyName, entry)
		}
		m, ok := r.methods[name]
		if !ok {
			return factory.Fragment{}, fmt.Errorf("%w: method %q", ErrUnknownName, name)
		}
		if _, dup := methods[alias]; dup {
			return factory.Fragment{}, fmt.Errorf("%w: method alias %q", ErrDuplicateName, alias)
		}
		methods[alias] = m
	}

	chain := make([]factory.Initializer, 0, len(doc.Init))
	for _, name := range doc.Init {
		if name == "" {
			return factory.Fragment{}, fmt.Errorf("%w: init entry", ErrEmptyName)
		}
		fn, ok := r.inits[name]
		if !ok {
			return factory.Fragment{}, fmt.Errorf("%w: init %q", ErrUnknownName, name)
		}
		chain = append(chain, fn)
	}

	props, err := deep.Merge(make(deep.Map), doc.Props, doc.State)
	if err != nil {
		return factory.Fragment{}, fmt.Errorf("props: %w", err)
	}

	return factory.Fragment{
		Methods: methods,
		Props:   props,
		Refs:    deep.Assign(nil, doc.Refs),
		Statics: deep.Assign(nil, doc.Statics),
		Init:    chain,
	}, nil
}

// Load parses one YAML document and builds a factory from it.
func (r *Registry) Load(data []byte, opts ...factory.Option) (*factory.Factory, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	fr, err := r.Fragment(doc)
	if err != nil {
		return nil, err
	}

	return factory.New(fr, opts...)
}

// LoadAll parses a multi-document stream and composes one factory per
// document, in stream order. opts apply to every per-document factory and
// to the composed one.
func (r *Registry) LoadAll(data []byte, opts ...factory.Option) (*factory.Factory, error) {
	docs, err := ParseAll(data)
	if err != nil {
		return nil, err
	}
	stamps := make([]factory.Stamp, 0, len(docs))
	for i, doc := range docs {
		fr, err := r.Fragment(doc)
		if err != nil {
			return nil, fmt.Errorf("document #%d: %w", i, err)
		}
		f, err := factory.New(fr, opts...)
		if err != nil {
			return nil, fmt.Errorf("document #%d: %w", i, err)
		}
		stamps = append(stamps, f)
	}
	if len(stamps) == 0 {
		return factory.Empty(opts...), nil
	}

	return factory.Compose(stamps...)
}
