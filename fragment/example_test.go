package fragment_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/metafactory/factory"
	"github.com/katalvlaran/metafactory/fragment"
)

// ExampleRegistry_Load builds a factory from a YAML document.
func ExampleRegistry_Load() {
	reg := fragment.NewRegistry()
	_ = reg.RegisterMethod("greet", func(self *factory.Instance, _ ...any) (any, error) {
		name, _ := factory.Field[string](self, "name")
		return "hello, " + name, nil
	})
	_ = reg.RegisterInit("name", func(ic *factory.InitContext) {
		if s, ok := ic.Arg(0).(string); ok {
			ic.Instance.Set("name", s)
		}
	})

	f, err := reg.Load([]byte(`
methods: greet
props:   {name: world}
init:    name
`))
	if err != nil {
		fmt.Println(err)
		return
	}

	a, _ := f.New(context.Background(), nil)
	b, _ := f.New(context.Background(), nil, "gopher")
	ga, _ := a.Call("greet")
	gb, _ := b.Call("greet")
	fmt.Println(ga)
	fmt.Println(gb)

	// Output:
	// hello, world
	// hello, gopher
}
