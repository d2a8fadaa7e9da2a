// SPDX-License-Identifier: MIT
// File: merge.go
// Role: In-place structural merge of plain maps, plus shallow Assign.
// Policy:
//   - Destination is mutated and returned; callers needing immutability pass a fresh map.
//   - Every value copied from a source is cloned first (no aliasing across sources).

package deep

import (
	"fmt"
	"reflect"
)

// Merge folds every source into dst and returns dst.
//
// Sources are applied left to right. A nil source (or a nil map) is skipped.
// For every key of a source:
//   - if both dst's entry and the incoming value are string-keyed maps, they
//     are merged recursively; a typed map in dst is first widened to a Map;
//   - if both are sequences, the result is a fresh sequence with dst's items
//     followed by clones of the incoming items. It keeps dst's slice type when
//     both sides share it and is a List otherwise;
//   - otherwise the incoming value is cloned and overwrites dst's entry.
//
// Errors:
//   - ErrInvalidMergeTarget if dst is nil.
//   - ErrInvalidMergeSource if a source is not a string-keyed map.
//   - ErrUncloneable / ErrCyclicValue from cloning incoming values.
//
// On error dst may already hold the keys folded before the failure.
func Merge(dst Map, sources ...any) (Map, error) {
	if dst == nil {
		return nil, ErrInvalidMergeTarget
	}
	for i, src := range sources {
		if err := fold(dst, src, nil); err != nil {
			return dst, fmt.Errorf("merge source #%d: %w", i, err)
		}
	}

	return dst, nil
}

// Assign copies every key of every source into dst, shallowly, and returns dst.
// A nil dst is allocated. Later sources win on key collision.
func Assign[V any](dst map[string]V, sources ...map[string]V) map[string]V {
	if dst == nil {
		dst = make(map[string]V)
	}
	for _, src := range sources {
		for k, v := range src {
			dst[k] = v
		}
	}

	return dst
}

// fold merges one source map into dst.
func fold(dst Map, src any, path []frame) error {
	if src == nil {
		return nil
	}
	if m, ok := src.(Map); ok {
		if m == nil {
			return nil
		}
		path, err := enter(path, reflect.ValueOf(m))
		if err != nil {
			return err
		}
		for k, v := range m {
			if err = mergeKey(dst, k, v, path); err != nil {
				return err
			}
		}
		return nil
	}

	rv := reflect.ValueOf(src)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return fmt.Errorf("%w: %T", ErrInvalidMergeSource, src)
	}
	if rv.IsNil() {
		return nil
	}
	path, err := enter(path, rv)
	if err != nil {
		return err
	}
	iter := rv.MapRange()
	for iter.Next() {
		var v any
		if val := iter.Value(); !(val.Kind() == reflect.Interface && val.IsNil()) {
			v = val.Interface()
		}
		if err = mergeKey(dst, iter.Key().String(), v, path); err != nil {
			return err
		}
	}

	return nil
}

func mergeKey(dst Map, k string, v any, path []frame) error {
	if existing, ok := dst[k]; ok && v != nil {
		if IsPlainMap(existing) && IsPlainMap(v) {
			nested, isMap := existing.(Map)
			if !isMap {
				nested = make(Map)
				if err := fold(nested, existing, nil); err != nil {
					return err
				}
			}
			if err := fold(nested, v, path); err != nil {
				return err
			}
			dst[k] = nested
			return nil
		}
		joined, ok, err := concat(existing, v, path)
		if err != nil {
			return err
		}
		if ok {
			dst[k] = joined
			return nil
		}
	}
	c, err := cloneValue(v, path)
	if err != nil {
		return err
	}
	dst[k] = c

	return nil
}

// concat joins two sequences. ok is false when either side is not a
// sequence and the caller should overwrite instead.
func concat(existing, incoming any, path []frame) (any, bool, error) {
	if !IsSequence(existing) || !IsSequence(incoming) {
		return nil, false, nil
	}
	cloned, err := cloneValue(incoming, path)
	if err != nil {
		return nil, false, err
	}
	head, tail := reflect.ValueOf(existing), reflect.ValueOf(cloned)

	if head.Kind() == reflect.Slice && head.Type() == tail.Type() {
		out := reflect.MakeSlice(head.Type(), 0, head.Len()+tail.Len())
		out = reflect.AppendSlice(out, head)
		out = reflect.AppendSlice(out, tail)
		return out.Interface(), true, nil
	}

	// mixed element types widen to a List
	out := make(List, 0, head.Len()+tail.Len())
	for _, side := range [...]reflect.Value{head, tail} {
		for i := 0; i < side.Len(); i++ {
			out = append(out, side.Index(i).Interface())
		}
	}

	return out, true, nil
}
