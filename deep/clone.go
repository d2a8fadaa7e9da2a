// SPDX-License-Identifier: MIT
// File: clone.go
// Role: Structural deep clone of plain values.
// Policy:
//   - Primitives are returned as-is; containers are rebuilt with their concrete type.
//   - Non-plain structured values fail with ErrUncloneable, never shallow-copied.

package deep

import (
	"fmt"
	"reflect"
)

// Clone returns a structural deep copy of v.
//
// Primitives (nil, bool, string, every numeric kind, including named types of
// those kinds) are returned unchanged. String-keyed maps, slices and arrays
// are rebuilt element by element and keep their concrete type, so a
// map[string]int clones to a map[string]int. Any other structured value
// fails with ErrUncloneable; a container that contains itself fails with
// ErrCyclicValue.
//
// Complexity: O(N) in the number of reachable elements.
func Clone(v any) (any, error) {
	return cloneValue(v, nil)
}

// CloneMap is Clone specialised to the plain mapping shape.
// A nil map clones to a nil map.
func CloneMap(m Map) (Map, error) {
	if m == nil {
		return nil, nil
	}
	return cloneMap(m, nil)
}

// IsPlainMap reports whether v is a non-nil string-keyed map.
func IsPlainMap(v any) bool {
	if v == nil {
		return false
	}
	if m, ok := v.(Map); ok {
		return m != nil
	}
	rv := reflect.ValueOf(v)

	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String && !rv.IsNil()
}

// IsSequence reports whether v is a slice or an array.
func IsSequence(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.ValueOf(v).Kind()

	return k == reflect.Slice || k == reflect.Array
}

// IsPrimitive reports whether v passes through Clone unchanged.
func IsPrimitive(v any) bool {
	if v == nil {
		return true
	}

	return isPrimitiveKind(reflect.ValueOf(v).Kind())
}

func isPrimitiveKind(k reflect.Kind) bool {
	switch k {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	default:
		return false
	}
}

// frame identifies one container on the current clone path.
type frame struct {
	kind reflect.Kind
	ptr  uintptr
	n    int
}

// enter pushes rv onto the path, failing when rv is already one of its ancestors.
// Empty containers cannot contain anything and are not tracked.
func enter(path []frame, rv reflect.Value) ([]frame, error) {
	if rv.Len() == 0 {
		return path, nil
	}
	f := frame{kind: rv.Kind(), ptr: rv.Pointer(), n: rv.Len()}
	for _, p := range path {
		if p == f {
			return nil, fmt.Errorf("%w: %s", ErrCyclicValue, rv.Type())
		}
	}

	return append(path, f), nil
}

func cloneValue(v any, path []frame) (any, error) {
	if v == nil {
		return nil, nil
	}
	// fast paths for the plain shapes
	switch typed := v.(type) {
	case Map:
		if typed == nil {
			return typed, nil
		}
		return cloneMap(typed, path)
	case List:
		if typed == nil {
			return typed, nil
		}
		return cloneList(typed, path)
	}

	rv := reflect.ValueOf(v)
	if isPrimitiveKind(rv.Kind()) {
		return v, nil
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: %T (non-string keys)", ErrUncloneable, v)
		}
		if rv.IsNil() {
			return v, nil
		}
		out, err := cloneReflectMap(rv, path)
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	case reflect.Slice:
		if rv.IsNil() {
			return v, nil
		}
		out, err := cloneReflectSeq(rv, reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len()), path)
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	case reflect.Array:
		out, err := cloneReflectSeq(rv, reflect.New(rv.Type()).Elem(), path)
		if err != nil {
			return nil, err
		}
		return out.Interface(), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUncloneable, v)
	}
}

func cloneMap(m Map, path []frame) (Map, error) {
	path, err := enter(path, reflect.ValueOf(m))
	if err != nil {
		return nil, err
	}
	out := make(Map, len(m))
	var c any
	for k, v := range m {
		if c, err = cloneValue(v, path); err != nil {
			return nil, err
		}
		out[k] = c
	}

	return out, nil
}

func cloneList(l List, path []frame) (List, error) {
	path, err := enter(path, reflect.ValueOf(l))
	if err != nil {
		return nil, err
	}
	out := make(List, len(l))
	for i, v := range l {
		if out[i], err = cloneValue(v, path); err != nil {
			return nil, err
		}
	}

	return out, nil
}

func cloneReflectMap(rv reflect.Value, path []frame) (reflect.Value, error) {
	path, err := enter(path, rv)
	if err != nil {
		return reflect.Value{}, err
	}
	elem := rv.Type().Elem()
	out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		c, err := cloneElem(iter.Value(), elem, path)
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(iter.Key(), c)
	}

	return out, nil
}

// cloneReflectSeq copies every element of src into dst, which must already
// have src's length (a fresh slice or a zero array).
func cloneReflectSeq(src, dst reflect.Value, path []frame) (reflect.Value, error) {
	var err error
	if src.Kind() == reflect.Slice {
		if path, err = enter(path, src); err != nil {
			return reflect.Value{}, err
		}
	}
	elem := src.Type().Elem()
	for i := 0; i < src.Len(); i++ {
		c, err := cloneElem(src.Index(i), elem, path)
		if err != nil {
			return reflect.Value{}, err
		}
		dst.Index(i).Set(c)
	}

	return dst, nil
}

// cloneElem clones one container element and returns it as a value
// assignable to the container's element type.
func cloneElem(v reflect.Value, elem reflect.Type, path []frame) (reflect.Value, error) {
	if v.Kind() == reflect.Interface && v.IsNil() {
		return reflect.Zero(elem), nil
	}
	c, err := cloneValue(v.Interface(), path)
	if err != nil {
		return reflect.Value{}, err
	}
	if c == nil {
		return reflect.Zero(elem), nil
	}

	return reflect.ValueOf(c), nil
}
