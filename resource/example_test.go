package resource_test

import (
	"fmt"

	"github.com/wippyai/xresource/guid"
	"github.com/wippyai/xresource/resource"
)

type texture struct {
	name  string
	width int
}

func Example() {
	m := resource.NewManager()
	textures := resource.MustRegister[texture](m, guid.TypeFromString("texture"), resource.LoaderFuncs[texture]{
		OnLoad: func(_ *resource.Manager, id guid.Full) *texture {
			return &texture{name: "brick", width: 256}
		},
		OnDestroy: func(_ *resource.Manager, t *texture, _ guid.Full) {
			fmt.Println("destroy", t.name)
		},
	})
	if err := m.Initialize(resource.DefaultCapacity); err != nil {
		panic(err)
	}

	id := guid.InstanceFromString("textures/brick.png")
	a := resource.NewTypedRef[texture](id)
	b := resource.NewTypedRef[texture](id)

	ta, _, _ := textures.Get(m, &a)
	tb, _, _ := textures.Get(m, &b)
	fmt.Println(ta == tb, ta.width, m.Count())

	_ = textures.Release(m, &a)
	_ = textures.Release(m, &b)
	fmt.Println(m.Count())
	// Output:
	// true 256 1
	// destroy brick
	// 0
}
