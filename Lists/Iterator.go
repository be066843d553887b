package Lists

import (
	"github.com/emirpasic/gods/containers"
	"github.com/g-m-twostay/postree/Trees"
	"golang.org/x/exp/constraints"
)

// Iterator is a stateful gods iterator over a List. It starts one before the
// first value. Modifying the list invalidates it.
type Iterator[T any, S constraints.Unsigned] struct {
	l     *List[T, S]
	n     Trees.Node[S]
	index int
}

var _ containers.ReverseIteratorWithIndex = (*Iterator[int, uint])(nil)

// Iterator returns an iterator before the first value.
func (l *List[T, S]) Iterator() Iterator[T, S] {
	return Iterator[T, S]{l: l, index: -1}
}

// Next moves to the next value and reports whether there is one.
func (it *Iterator[T, S]) Next() bool {
	size := it.l.Size()
	if it.index < size {
		it.index++
	}
	switch {
	case it.index >= size:
		it.n = Trees.Node[S]{}
		return false
	case it.index == 0:
		it.n = it.l.t.Front()
	default:
		it.n = it.l.t.Next(it.n)
	}
	return true
}

// Prev moves to the previous value and reports whether there is one.
func (it *Iterator[T, S]) Prev() bool {
	size := it.l.Size()
	if it.index >= 0 {
		it.index--
	}
	switch {
	case it.index < 0:
		it.n = Trees.Node[S]{}
		return false
	case it.index == size-1:
		it.n = it.l.t.Back()
	default:
		it.n = it.l.t.Prev(it.n)
	}
	return true
}

// Value at the iterator.
func (it *Iterator[T, S]) Value() interface{} {
	return it.l.t.Get(it.n)
}

// Index of the iterator.
func (it *Iterator[T, S]) Index() int {
	return it.index
}

// Begin resets the iterator to one before the first value.
func (it *Iterator[T, S]) Begin() {
	it.index, it.n = -1, Trees.Node[S]{}
}

// End moves the iterator past the last value.
func (it *Iterator[T, S]) End() {
	it.index, it.n = it.l.Size(), Trees.Node[S]{}
}

// First moves to the first value and reports whether there is one.
func (it *Iterator[T, S]) First() bool {
	it.Begin()
	return it.Next()
}

// Last moves to the last value and reports whether there is one.
func (it *Iterator[T, S]) Last() bool {
	it.End()
	return it.Prev()
}

// NextTo moves to the next value for which f is true, and reports whether
// there is one.
func (it *Iterator[T, S]) NextTo(f func(index int, value interface{}) bool) bool {
	for it.Next() {
		if f(it.index, it.Value()) {
			return true
		}
	}
	return false
}

// PrevTo is the mirror of NextTo.
func (it *Iterator[T, S]) PrevTo(f func(index int, value interface{}) bool) bool {
	for it.Prev() {
		if f(it.index, it.Value()) {
			return true
		}
	}
	return false
}
