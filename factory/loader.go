// SPDX-License-Identifier: MIT
// File: loader.go
// Role: Normalizes heterogeneous initializer inputs into one ordered chain.

package factory

import (
	"fmt"
	"reflect"
	"sort"
)

// LoadInitializers returns dst followed by every initializer found in sources.
//
// A source may be a single function, a slice/array of functions, or a
// string-keyed map of functions (taken in sorted key order, which lets callers
// group initializers under descriptive names). nil sources are skipped.
// Accepted function shapes:
//
//	Initializer / func(*InitContext) (Outcome, error)
//	func(*InitContext) error
//	func(*InitContext)
//
// Any other entry (including nil entries inside a list or map) fails the
// whole call with ErrInvalidInitializer. The result is a fresh slice; dst is
// never modified, so a failed call leaves nothing half-appended.
//
// Complexity: O(len(dst) + N + K log K) for N functions and K map keys.
func LoadInitializers(dst []Initializer, sources ...any) ([]Initializer, error) {
	var (
		scratch []Initializer
		err     error
	)
	for i, src := range sources {
		if scratch, err = loadSource(scratch, src); err != nil {
			return dst, fmt.Errorf("init source #%d: %w", i, err)
		}
	}
	out := make([]Initializer, 0, len(dst)+len(scratch))
	out = append(out, dst...)

	return append(out, scratch...), nil
}

func loadSource(acc []Initializer, src any) ([]Initializer, error) {
	if src == nil {
		return acc, nil
	}
	if fn, ok := asInitializer(src); ok {
		return append(acc, fn), nil
	}
	// []Initializer is by far the common case (state merges)
	if list, ok := src.([]Initializer); ok {
		for i, fn := range list {
			if fn == nil {
				return nil, fmt.Errorf("%w: nil entry at index %d", ErrInvalidInitializer, i)
			}
			acc = append(acc, fn)
		}
		return acc, nil
	}

	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			fn, ok := asInitializer(rv.Index(i).Interface())
			if !ok {
				return nil, fmt.Errorf("%w: entry %d is %T", ErrInvalidInitializer, i, rv.Index(i).Interface())
			}
			acc = append(acc, fn)
		}
		return acc, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %T", ErrInvalidInitializer, src)
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface()
			fn, ok := asInitializer(v)
			if !ok {
				return nil, fmt.Errorf("%w: entry %q is %T", ErrInvalidInitializer, k, v)
			}
			acc = append(acc, fn)
		}
		return acc, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidInitializer, src)
	}
}

// asInitializer adapts the supported function shapes. Nil functions are rejected.
func asInitializer(v any) (Initializer, bool) {
	switch fn := v.(type) {
	case Initializer:
		return fn, fn != nil
	case func(*InitContext) (Outcome, error):
		return fn, fn != nil
	case func(*InitContext) error:
		if fn == nil {
			return nil, false
		}
		return func(ic *InitContext) (Outcome, error) { return nil, fn(ic) }, true
	case func(*InitContext):
		if fn == nil {
			return nil, false
		}
		return func(ic *InitContext) (Outcome, error) { fn(ic); return nil, nil }, true
	default:
		return nil, false
	}
}
