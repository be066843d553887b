package Trees

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Iterator is a cursor over the nodes of a tree. The end of the sequence is
// the nil node: stepping forward from the last node reaches it and stepping
// back from it reaches the last node.
// An Iterator doesn't track the tree. Erasing the node under it makes it
// stale, and any use after that panics.
type Iterator[T any, S constraints.Unsigned] struct {
	t *Tree[T, S]
	n Node[S]
}

// Begin returns an iterator at the first node.
func (u *Tree[T, S]) Begin() Iterator[T, S] {
	return Iterator[T, S]{u, u.Front()}
}

// End returns an iterator past the last node.
func (u *Tree[T, S]) End() Iterator[T, S] {
	return Iterator[T, S]{t: u}
}

// IterAt returns an iterator at index i. i==Size() gives End.
// Time: O(D)
func (u *Tree[T, S]) IterAt(i S) Iterator[T, S] {
	if i == u.Size() {
		return u.End()
	}
	return Iterator[T, S]{u, u.At(i)}
}

// IterOf returns an iterator at n.
func (u *Tree[T, S]) IterOf(n Node[S]) Iterator[T, S] {
	u.node(n)
	return Iterator[T, S]{u, n}
}

// Valid reports whether the iterator is at a node, i.e. not at End.
func (it *Iterator[T, S]) Valid() bool {
	return !it.n.IsNil()
}

// Node under the iterator; nil at End.
func (it *Iterator[T, S]) Node() Node[S] {
	return it.n
}

// Value returns a pointer to the value under the iterator.
func (it *Iterator[T, S]) Value() *T {
	return it.t.Value(it.n)
}

// Get the value under the iterator.
func (it *Iterator[T, S]) Get() T {
	return it.t.Get(it.n)
}

// Index of the iterator; Size() at End.
// Time: O(D)
func (it *Iterator[T, S]) Index() S {
	if it.n.IsNil() {
		return it.t.Size()
	}
	return it.t.Index(it.n)
}

// Next moves to the following node and reports whether it is one. Calling it
// at End is a no-op returning false.
func (it *Iterator[T, S]) Next() bool {
	if it.n.IsNil() {
		return false
	}
	it.n = it.t.Next(it.n)
	return !it.n.IsNil()
}

// Prev moves to the preceding node and reports whether it moved. At End it
// moves to the last node; at the first node it stays and returns false.
func (it *Iterator[T, S]) Prev() bool {
	if it.n.IsNil() {
		it.n = it.t.Back()
		return !it.n.IsNil()
	}
	if p := it.t.Prev(it.n); !p.IsNil() {
		it.n = p
		return true
	}
	return false
}

// Advance moves the iterator by k, which may be negative. It goes through the
// index of the node rather than k single steps. The target must be within
// [0, Size()], Size() being End.
// Time: O(D)
func (it *Iterator[T, S]) Advance(k int) {
	i := int64(it.Index()) + int64(k)
	if i < 0 || i > int64(it.t.Size()) {
		panic(errors.AssertionFailedf("advance by %d from %d out of range [0, %d]", k, it.Index(), it.t.Size()))
	}
	*it = it.t.IterAt(S(i))
}

// Seek moves the iterator to n.
func (it *Iterator[T, S]) Seek(n Node[S]) {
	*it = it.t.IterOf(n)
}
