// SPDX-License-Identifier: MIT
// Package: metafactory/deep
//
// types.go - value aliases and sentinel errors for the deep-value utility.
//
// Error policy:
//   - Only sentinel variables are exposed; callers branch with errors.Is.
//   - Call sites attach context (offending type, source index) with %w.

package deep

import "errors"

// Map is the plain mapping shape: string keys, Value elements.
type Map = map[string]any

// List is the plain sequence shape.
type List = []any

var (
	// ErrInvalidMergeTarget indicates Merge received a nil destination map.
	ErrInvalidMergeTarget = errors.New("deep: merge target must be a non-nil map")

	// ErrInvalidMergeSource indicates a merge source that is neither nil nor a string-keyed map.
	ErrInvalidMergeSource = errors.New("deep: merge source must be a string-keyed map or nil")

	// ErrUncloneable indicates a structured value that is not a plain map, slice or array
	// (functions, channels, pointers, structs, maps with non-string keys).
	ErrUncloneable = errors.New("deep: uncloneable value")

	// ErrCyclicValue indicates a map or slice that (transitively) contains itself.
	ErrCyclicValue = errors.New("deep: cyclic value")
)
