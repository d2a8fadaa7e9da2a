// Package metafactory is a toolkit for building objects from composable,
// immutable factories.
//
// What is a factory here?
//
//	A value that produces instances from five declarative parts:
//		• Methods - shared behaviour, looked up through the instance
//		• Props   - default data, deep-cloned into each instance
//		• Refs    - values shared by reference across instances
//		• Statics - members of the factory itself
//		• Init    - an ordered initializer chain that may go asynchronous
//
// Factories never change. Every combinator (Methods, Props, Refs, Statics,
// Init, Compose) returns a new factory, so a base factory can be extended in
// many directions without the branches seeing each other.
//
// Packages:
//
//	deep/           - structural Clone and Merge of plain values (maps, slices, primitives)
//	factory/        - Factory, Instance, composition, the initializer chain and Deferred
//	legacy/         - converts constructor + prototype-chain definitions into factories
//	fragment/       - YAML documents naming registered methods and initializers
//	factorymetrics/ - Prometheus counters and histograms via factory.Observer
//
// Quick example:
//
//	base, _ := factory.Props(deep.Map{"tags": deep.List{"base"}})
//	more, _ := factory.Props(deep.Map{"tags": deep.List{"more"}})
//	both, _ := factory.Compose(base, more)
//	inst, _ := both.New(ctx, nil) // inst.Fields()["tags"] == []any{"base", "more"}
//
// See examples/inventory for a runnable tour.
//
//	go get github.com/katalvlaran/metafactory
package metafactory
