package Trees_test

import (
	"fmt"

	"github.com/g-m-twostay/postree/Trees"
)

func Example() {
	t := Trees.New[string, uint32]()
	for _, v := range []string{"a", "b", "c"} {
		t.Emplace(t.LastPosition(), v)
	}
	t.Erase(t.At(1), true, true)
	t.Emplace(t.After(t.Front()), "x")
	fmt.Println(t.Values(), t.Size())

	r := t.Split(1)
	fmt.Println(t.Values(), r.Values())
	t.Join(t.FirstPosition(), r)
	fmt.Println(t.Values())

	for it := t.Begin(); it.Valid(); it.Next() {
		fmt.Print(it.Index(), ":", it.Get(), " ")
	}
	fmt.Println()
	// Output:
	// [a x c] 3
	// [a] [x c]
	// [x c a]
	// 0:x 1:c 2:a
}
