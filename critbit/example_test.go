package critbit_test

import (
	"fmt"

	"github.com/TomTonic/spatialindex/critbit"
	"github.com/TomTonic/spatialindex/keyenc"
)

func Example_basicUsage() {
	tr, _ := critbit.New[string](64)
	tr.Put(keyenc.FromInt64(1), "one")
	tr.Put(keyenc.FromInt64(2), "two")

	v, _ := tr.Get(keyenc.FromInt64(1))
	fmt.Println(v, tr.Size())
	// Output:
	// one 2
}

func Example_rangeQuery() {
	tr, _ := critbit.New[int](64)
	for i := int64(0); i < 5; i++ {
		tr.Put(keyenc.FromInt64(i), int(i))
	}
	it := tr.Query(keyenc.FromInt64(1), keyenc.FromInt64(3))
	sum := 0
	for it.HasNext() {
		_, v, _ := it.Next()
		sum += v
	}
	fmt.Println(sum)
	// Output:
	// 6
}
