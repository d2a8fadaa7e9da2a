// Package deep implements structural clone and structural merge over plain
// Go values: nil, booleans, strings, numbers, string-keyed maps, slices and
// arrays built from those.
//
// It is the foundation of the factory package: default instance state is
// deep-cloned into every instance, and factory states are combined with Merge.
//
// Merge rules (applied per key, sources left to right):
//
//	both string-keyed maps     → merged recursively (typed maps widen to Map)
//	both sequences             → concatenated, existing items first; mixed
//	                             element types widen to List
//	anything else              → incoming value cloned, then overwrites
//
// Nothing copied out of a source is aliased by the destination: nested maps
// and slices are always cloned first, so mutating a merge result never
// mutates a source.
//
// Errors:
//
//	ErrInvalidMergeTarget - nil destination
//	ErrInvalidMergeSource - source that is not a string-keyed map or nil
//	ErrUncloneable        - func, chan, pointer, struct, non-string-keyed map
//	ErrCyclicValue        - a map/slice reachable from itself
//
// Cycles are rejected rather than followed: the clone walk keeps the chain of
// containers it is currently inside and fails as soon as one reappears.
package deep
