package legacy_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/metafactory/factory"
	"github.com/katalvlaran/metafactory/legacy"
)

// ExampleConvert turns a constructor with a two-link prototype chain into a factory.
func ExampleConvert() {
	animal := &legacy.Prototype{
		Methods: map[string]factory.Method{
			"describe": func(self *factory.Instance, _ ...any) (any, error) {
				name, _ := factory.Field[string](self, "name")
				legs, _ := factory.Field[int](self, "legs")
				return fmt.Sprintf("%s has %d legs", name, legs), nil
			},
		},
		Fields: map[string]any{"legs": 4},
	}
	bird := legacy.Constructor{
		Name:      "Bird",
		Prototype: &legacy.Prototype{Fields: map[string]any{"legs": 2}, Parent: animal},
		Body: func(self *factory.Instance, args []any) error {
			self.Set("name", args[0])
			return nil
		},
	}

	f, _ := legacy.Convert(bird)
	inst, _ := f.New(context.Background(), nil, "robin")
	out, _ := inst.Call("describe")
	fmt.Println(out)

	// Output:
	// robin has 2 legs
}
