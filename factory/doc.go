// Package factory builds composable object factories.
//
// A Factory is produced from declarative fragments:
//
//   - Methods - shared behaviour, never copied into instances
//   - Props   - default instance data, deep-cloned into every instance
//   - Refs    - values assigned by reference into every instance
//   - Statics - members of the factory itself
//   - Init    - an ordered chain of initializers run once per instance
//
// and is immutable: Methods/Props/State/Refs/Statics/Init/Enclose/Compose all
// return a successor built from a fresh State, leaving the receiver untouched.
//
// Quick start:
//
//	greeter, _ := factory.Create(
//		map[string]factory.Method{
//			"greet": func(self *factory.Instance, _ ...any) (any, error) { return "hi", nil },
//		},
//		deep.Map{"n": 1},
//		func(ic *factory.InitContext) {
//			n, _ := factory.Field[int](ic.Instance, "n")
//			ic.Instance.Set("n", n+ic.Arg(0).(int))
//		},
//	)
//	res, _ := greeter.Call(nil, 5)
//	inst, _ := res.Instance() // n == 6, inst.Call("greet") == "hi"
//
// Composition:
//
// Compose(a, b, c) folds the factories' states left to right. Methods, refs,
// statics and scalar props follow "last writer wins"; nested props merge
// key-wise and slices concatenate; initializers run a's first, then b's, then c's.
// Anything implementing Stamp can take part, not only *Factory.
//
// Initializer outcomes:
//
//	nil         - keep the current instance
//	*Instance   - replace it (for the rest of the chain and as the result)
//	*Deferred   - suspend: the remaining initializers run, in order, after it settles
//
// A call therefore returns a Result that is either finished or pending,
// depending only on what the initializers returned at run time. Result.Await
// handles both; Result.Instance reports ok=false for a pending one.
//
// Errors:
//
//	ErrInvalidInitializer   - a non-function in an initializer list
//	ErrNotAFactory          - a Compose argument without state
//	ErrInvalidInstanceState - per-call state that is not a string-keyed map
//	ErrMethodNotFound       - Instance.Call on an unknown name
//	ErrInitializerPanic     - panic recovered inside deferred initializer work
//	ErrAlreadySettled       - a Deferred resolved twice
//	ErrDetachedDeferred     - a zero-value Deferred returned or awaited
//
// Concurrency: a Factory is safe for concurrent use (its state is read-only).
// Instances are ordinary values and are not synchronized.
//
// Observability: WithLogger routes debug records to a *slog.Logger,
// WithObserver receives creation/build/failure events (see package
// factorymetrics for a Prometheus implementation).
package factory
