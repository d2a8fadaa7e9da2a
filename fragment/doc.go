// Package fragment builds factories from declarative YAML documents.
//
// Functions cannot live in YAML, so a document names them and a Registry
// maps the names to Go code:
//
//	reg := fragment.NewRegistry()
//	_ = reg.RegisterMethod("greet", greet)
//	_ = reg.RegisterInit("bump", bump)
//
//	f, err := reg.Load([]byte(`
//	methods: [greet, "hello=greet"]
//	props:   {n: 1, tags: [base]}
//	init:    bump
//	`))
//
// A method entry "alias=name" installs the registered method name under
// alias. Props and State are the same table; State is merged after Props.
// LoadAll composes the documents of a "---" separated stream in order, so
// later documents extend earlier ones exactly as factory.Compose does.
package fragment
