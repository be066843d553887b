package Lists

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/emirpasic/gods/lists"
	"github.com/emirpasic/gods/utils"
	"github.com/g-m-twostay/postree/Trees"
	"golang.org/x/exp/constraints"
)

// List is a gods lists.List kept in a Tree, so that Get, Insert, Remove and
// Set cost O(log n) at any index. Values passed as interface{} must hold a T.
// The lists.List methods have no way to report an allocation failure, so they
// panic when the pool is exhausted.
// Contains and IndexOf compare with ==, so they panic when T is not comparable,
// and when T is an interface type holding incomparable values.
type List[T any, S constraints.Unsigned] struct {
	t *Trees.Tree[T, S]
}

var _ lists.List = (*List[int, uint])(nil)

// NewList returns a list holding values.
func NewList[T any, S constraints.Unsigned](values ...T) *List[T, S] {
	l := &List[T, S]{Trees.New[T, S]()}
	if _, err := InsertBefore[T, S](l.t, Trees.Node[S]{}, values...); err != nil {
		panic(err)
	}
	return l
}

// Tree the list is kept in.
func (l *List[T, S]) Tree() *Trees.Tree[T, S] {
	return l.t
}

func (l *List[T, S]) inRange(index int) bool {
	return index >= 0 && uint64(index) < uint64(l.t.Size())
}

// Get returns the value at index, and whether index is in range.
func (l *List[T, S]) Get(index int) (interface{}, bool) {
	if !l.inRange(index) {
		return nil, false
	}
	return l.t.Get(l.t.At(S(index))), true
}

// Remove the value at index; no-op when out of range.
func (l *List[T, S]) Remove(index int) {
	if !l.inRange(index) {
		return
	}
	l.t.Erase(l.t.At(S(index)), true, true)
}

// Add appends values.
func (l *List[T, S]) Add(values ...interface{}) {
	l.insert(Trees.Node[S]{}, values)
}

// Contains reports whether all values are in the list, comparing with ==.
// Time: O(n*len(values))
func (l *List[T, S]) Contains(values ...interface{}) bool {
	for _, v := range values {
		if l.IndexOf(v) < 0 {
			return false
		}
	}
	return true
}

// IndexOf returns the index of the first value equal to v, or -1.
func (l *List[T, S]) IndexOf(v interface{}) int {
	if !reflect.TypeFor[T]().Comparable() {
		panic(errors.AssertionFailedf("%s values can't be compared", reflect.TypeFor[T]()))
	}
	for i, x := range l.t.All() {
		if interface{}(*x) == v {
			return int(i)
		}
	}
	return -1
}

// Sort the values with comparator. Nodes stay in place, only values move.
// Time: O(n*log(n))
func (l *List[T, S]) Sort(comparator utils.Comparator) {
	if l.t.Size() < 2 {
		return
	}
	vs := l.Values()
	utils.Sort(vs, comparator)
	for i, x := range l.t.All() {
		*x = vs[i].(T)
	}
}

// Swap the values at index1 and index2; no-op when either is out of range.
func (l *List[T, S]) Swap(index1, index2 int) {
	if !l.inRange(index1) || !l.inRange(index2) || index1 == index2 {
		return
	}
	a, b := l.t.Value(l.t.At(S(index1))), l.t.Value(l.t.At(S(index2)))
	*a, *b = *b, *a
}

// Insert values before index. index==Size() appends; other indexes out of
// range are ignored.
func (l *List[T, S]) Insert(index int, values ...interface{}) {
	if index < 0 || uint64(index) > uint64(l.t.Size()) {
		return
	}
	var n Trees.Node[S]
	if uint64(index) < uint64(l.t.Size()) {
		n = l.t.At(S(index))
	}
	l.insert(n, values)
}

func (l *List[T, S]) insert(n Trees.Node[S], values []interface{}) {
	vs := make([]T, len(values))
	for i, v := range values {
		vs[i] = v.(T)
	}
	if _, err := InsertBefore[T, S](l.t, n, vs...); err != nil {
		panic(errors.Wrap(err, "list insert"))
	}
}

// Set the value at index. index==Size() appends; other indexes out of range
// are ignored.
func (l *List[T, S]) Set(index int, value interface{}) {
	if !l.inRange(index) {
		if uint64(index) == uint64(l.t.Size()) {
			l.Add(value)
		}
		return
	}
	l.t.Set(l.t.At(S(index)), value.(T))
}

// Empty reports whether the list has no values.
func (l *List[T, S]) Empty() bool {
	return l.t.Empty()
}

// Size of the list.
func (l *List[T, S]) Size() int {
	return int(l.t.Size())
}

// Clear removes all values.
func (l *List[T, S]) Clear() {
	l.t.DestroyAll()
}

// Values returns the values in order.
func (l *List[T, S]) Values() []interface{} {
	vs := make([]interface{}, 0, l.Size())
	for _, x := range l.t.All() {
		vs = append(vs, *x)
	}
	return vs
}

func (l *List[T, S]) String() string {
	str := "TreeList\n"
	values := make([]string, 0, l.Size())
	for _, x := range l.t.All() {
		values = append(values, fmt.Sprintf("%v", *x))
	}
	str += strings.Join(values, ", ")
	return str
}
