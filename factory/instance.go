// SPDX-License-Identifier: MIT
// File: instance.go
// Role: Instance - own field map over a shared, read-only method table.
// Lookup:
//   - Own fields first, then the method table of the factory that built the instance.
// Concurrency:
//   - Instances are plain values and are not synchronized; the shared method
//     table is never written after its factory is created.

package factory

import (
	"fmt"
	"sort"

	"github.com/davecgh/go-spew/spew"
)

// methodTable is the shared behaviour surface of one factory.
// owner is the factory that created it; instances reach it as their constructor.
type methodTable struct {
	owner *Factory
	fns   map[string]Method
}

// Instance is one object produced by a factory call.
type Instance struct {
	fields map[string]any
	table  *methodTable
}

// NewInstance returns a bare instance holding a shallow copy of fields and no
// shared methods. Initializers use it to replace the object under construction.
func NewInstance(fields map[string]any) *Instance {
	own := make(map[string]any, len(fields))
	for k, v := range fields {
		own[k] = v
	}

	return &Instance{fields: own}
}

// Get returns the own field name.
func (in *Instance) Get(name string) (any, bool) {
	v, ok := in.fields[name]

	return v, ok
}

// Lookup resolves name the way a property read does: an own field if
// present, otherwise the shared Method of that name.
func (in *Instance) Lookup(name string) (any, bool) {
	if v, ok := in.fields[name]; ok {
		return v, true
	}
	if in.table != nil {
		if m, ok := in.table.fns[name]; ok {
			return m, true
		}
	}

	return nil, false
}

// Field returns the own or shared value of name converted to T.
// ok is false when name is absent or holds another type.
func Field[T any](in *Instance, name string) (T, bool) {
	var zero T
	v, ok := in.Lookup(name)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)

	return t, ok
}

// Set stores an own field, shadowing any shared method of the same name.
func (in *Instance) Set(name string, v any) {
	in.fields[name] = v
}

// Delete removes an own field; a shared method of that name becomes visible again.
func (in *Instance) Delete(name string) {
	delete(in.fields, name)
}

// HasOwn reports whether name is an own field (shared methods are not own).
func (in *Instance) HasOwn(name string) bool {
	_, ok := in.fields[name]

	return ok
}

// Method resolves name to something callable: an own field holding a Method
// wins over the shared table.
func (in *Instance) Method(name string) (Method, bool) {
	if v, ok := in.fields[name]; ok {
		switch fn := v.(type) {
		case Method:
			return fn, fn != nil
		case func(*Instance, ...any) (any, error):
			return fn, fn != nil
		default:
			return nil, false
		}
	}
	if in.table == nil {
		return nil, false
	}
	m, ok := in.table.fns[name]

	return m, ok && m != nil
}

// Call invokes the method name with the instance as receiver.
func (in *Instance) Call(name string, args ...any) (any, error) {
	m, ok := in.Method(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrMethodNotFound, name)
	}

	return m(in, args...)
}

// Keys returns the own field names in sorted order.
func (in *Instance) Keys() []string {
	keys := make([]string, 0, len(in.fields))
	for k := range in.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Fields returns a shallow copy of the own fields.
func (in *Instance) Fields() map[string]any {
	out := make(map[string]any, len(in.fields))
	for k, v := range in.fields {
		out[k] = v
	}

	return out
}

// Len reports the number of own fields.
func (in *Instance) Len() int {
	return len(in.fields)
}

// Constructor returns the factory whose method table this instance delegates
// to, or nil for a bare instance.
func (in *Instance) Constructor() *Factory {
	if in.table == nil {
		return nil
	}

	return in.table.owner
}

// dumpConfig renders instances deterministically for debugging.
var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          true,
}

// Dump renders the own fields for debugging. Output is stable across runs
// (keys sorted, no pointer addresses) but is not a serialization format.
func (in *Instance) Dump() string {
	return dumpConfig.Sdump(in.fields)
}
