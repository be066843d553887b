// Package Lists holds the front-end operations over Trees: adding and
// removing at the ends, bulk insertion, joins and range erasure, plus List, a
// gods lists.List, and Deque, an indexable double ended queue.
// None of them keep state of their own, they only translate calls into
// Positions and Nodes.
package Lists

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/g-m-twostay/postree/Trees"
	"golang.org/x/exp/constraints"
)

var (
	// ErrOutOfIndex is returned when an index is outside the sequence.
	ErrOutOfIndex = errors.New("index out of range")
	// ErrEmpty is returned when taking from an empty sequence.
	ErrEmpty = errors.New("sequence is empty")
)

// EmplaceFront adds v as the first node of t.
func EmplaceFront[T any, S constraints.Unsigned](t Trees.Sequence[T, S], v T) (Trees.Node[S], error) {
	return t.Emplace(t.FirstPosition(), v)
}

// EmplaceBack adds v as the last node of t.
func EmplaceBack[T any, S constraints.Unsigned](t Trees.Sequence[T, S], v T) (Trees.Node[S], error) {
	return t.Emplace(t.LastPosition(), v)
}

// EmplaceBefore adds v right before n and returns the new node. A nil n is
// the end of t.
func EmplaceBefore[T any, S constraints.Unsigned](t Trees.Sequence[T, S], n Trees.Node[S], v T) (Trees.Node[S], error) {
	return t.Emplace(t.PrevPosition(n), v)
}

// InsertBefore adds vs right before n, in order, and returns the node of
// vs[0]; n itself if vs is empty. A nil n is the end of t.
// On error the values added so far stay in t, and the first of them is
// returned (n if there is none).
// Time: O(len(vs)*D)
func InsertBefore[T any, S constraints.Unsigned](t Trees.Sequence[T, S], n Trees.Node[S], vs ...T) (Trees.Node[S], error) {
	if len(vs) == 0 {
		return n, nil
	}
	first, err := EmplaceBefore(t, n, vs[0])
	if err != nil {
		return n, err
	}
	cur := first
	for _, v := range vs[1:] {
		pos := t.After(cur)
		if cur, err = t.CreateNode(v); err != nil {
			return first, err
		}
		t.Link(pos, cur)
	}
	return first, nil
}

// InsertSeq is InsertBefore taking its values from seq. It returns the first
// new node, or n when seq yields nothing.
func InsertSeq[T any, S constraints.Unsigned](t Trees.Sequence[T, S], n Trees.Node[S], seq iter.Seq[T]) (first Trees.Node[S], err error) {
	first = n
	var cur Trees.Node[S]
	for v := range seq {
		if cur.IsNil() {
			if cur, err = EmplaceBefore(t, n, v); err != nil {
				return n, err
			}
			first = cur
			continue
		}
		if cur, err = t.Emplace(t.After(cur), v); err != nil {
			return first, err
		}
	}
	return first, nil
}

// Assign replaces the content of t with vs.
func Assign[T any, S constraints.Unsigned](t Trees.Sequence[T, S], vs ...T) error {
	t.DestroyAll()
	_, err := InsertBefore(t, t.Front(), vs...)
	return err
}

// Join moves the content of other to pos in t, leaving other empty.
func Join[T any, S constraints.Unsigned](t *Trees.Tree[T, S], pos Trees.Position[S], other *Trees.Tree[T, S]) {
	t.Join(pos, other)
}

// JoinFront moves the content of other in front of t.
func JoinFront[T any, S constraints.Unsigned](t, other *Trees.Tree[T, S]) {
	t.Join(t.FirstPosition(), other)
}

// JoinBack moves the content of other behind t.
func JoinBack[T any, S constraints.Unsigned](t, other *Trees.Tree[T, S]) {
	t.Join(t.LastPosition(), other)
}

// EraseFront removes the first node. t must not be empty.
func EraseFront[T any, S constraints.Unsigned](t Trees.Sequence[T, S]) {
	if t.Empty() {
		panic(errors.AssertionFailedf("EraseFront on an empty sequence"))
	}
	t.Erase(t.Front(), true, true)
}

// EraseBack removes the last node. t must not be empty.
func EraseBack[T any, S constraints.Unsigned](t Trees.Sequence[T, S]) {
	if t.Empty() {
		panic(errors.AssertionFailedf("EraseBack on an empty sequence"))
	}
	t.Erase(t.Back(), true, true)
}

// EraseNode removes n and returns the node that followed it.
func EraseNode[T any, S constraints.Unsigned](t Trees.Sequence[T, S], n Trees.Node[S]) Trees.Node[S] {
	next := t.Next(n)
	t.Erase(n, true, true)
	return next
}

// EraseRange removes the nodes from begin up to, excluding, end, and returns
// end. end must follow begin, or be nil for the end of t.
// Time: O((end-begin)*D)
func EraseRange[T any, S constraints.Unsigned](t Trees.Sequence[T, S], begin, end Trees.Node[S]) Trees.Node[S] {
	for begin != end {
		if begin.IsNil() {
			panic(errors.AssertionFailedf("erase range ran past the end before %s", end))
		}
		begin = EraseNode(t, begin)
	}
	return begin
}
