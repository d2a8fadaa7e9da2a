package deep_test

import (
	"fmt"

	"github.com/katalvlaran/metafactory/deep"
)

// ExampleMerge layers two sources: nested maps merge, lists concatenate,
// scalars are overwritten by the later source.
func ExampleMerge() {
	a := deep.Map{"a": 1, "b": deep.List{1, 2}, "c": deep.Map{"x": 1, "y": 2}}
	b := deep.Map{"a": 2, "b": deep.List{3, 4}, "c": deep.Map{"x": 4, "z": 5}}

	out, _ := deep.Merge(deep.Map{}, a, b)
	fmt.Println(out["a"], out["b"], out["c"])

	// Output:
	// 2 [1 2 3 4] map[x:4 y:2 z:5]
}

// ExampleClone shows that the clone shares nothing with its source.
func ExampleClone() {
	src := deep.Map{"tags": deep.List{"a"}}
	c, _ := deep.Clone(src)

	c.(deep.Map)["tags"] = append(c.(deep.Map)["tags"].(deep.List), "b")
	fmt.Println(src["tags"], c.(deep.Map)["tags"])

	// Output:
	// [a] [a b]
}
