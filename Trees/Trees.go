package Trees

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Sequence represents A mutable sequence kept in A tree of nodes, where nodes
// are addressed by position instead of by value.
// Receivers taking a Node or A Position require it to be live and to belong to
// the receiver; breaking that, or passing an index out of range, is A
// programming error and panics. Such calls are never reported through errors.
// The only errors are allocation failures, after which the sequence is left
// as it was.
// Methods implemented recursively should be noted, otherwise functions are
// implemented iteratively.
type Sequence[T any, S constraints.Unsigned] interface {
	//Size of the sequence.
	Size() S
	//Empty reports whether Size()==0.
	Empty() bool
	//At returns the node at index i. 0<=i<Size().
	At(i S) Node[S]
	//Front and Back are the first and last nodes, nil when empty.
	Front() Node[S]
	Back() Node[S]
	//Next and Prev step in order. They return nil past the ends.
	Next(n Node[S]) Node[S]
	Prev(n Node[S]) Node[S]
	//Value returns A pointer to the value held by n.
	Value(n Node[S]) *T
	//Before and After describe the places right before and after n.
	Before(n Node[S]) Position[S]
	After(n Node[S]) Position[S]
	//PrevPosition is Before(n), or LastPosition() when n is nil.
	PrevPosition(n Node[S]) Position[S]
	//FirstPosition and LastPosition describe the two ends; Root when empty.
	FirstPosition() Position[S]
	LastPosition() Position[S]
	//CreateNode allocates A detached node.
	CreateNode(v T) (Node[S], error)
	//Emplace adds A node holding v at pos and returns it.
	Emplace(pos Position[S], v T) (Node[S], error)
	//Link attaches the detached subtree rooted at sub at pos.
	Link(pos Position[S], sub Node[S])
	//Erase removes n, rebalancing and releasing it as asked.
	Erase(n Node[S], rebalance, destroy bool)
	//DestroyAll releases every node.
	DestroyAll()
	//Check returns the first broken invariant found, or nil.
	Check() error
}

var _ Sequence[int, uint] = (*Tree[int, uint])(nil)

// Check verifies the structure of the tree: every node's size is one plus the
// sizes of its children, children link back to their parent, the root has no
// parent, and the cached first and last nodes are the ends of the in-order
// walk, which visits Size() nodes. It doesn't check balance: see Height.
// Time: O(n)
func (u *Tree[T, S]) Check() error {
	s := u.pool.slots
	if s[0].sz != 0 || s[0].l != 0 || s[0].r != 0 {
		return errors.Newf("nil slot modified: %+v", s[0])
	}
	if u.root == 0 {
		if u.first != 0 || u.last != 0 {
			return errors.Newf("empty tree caches first %d and last %d", u.first, u.last)
		}
		return nil
	}
	if s[u.root].p != 0 {
		return errors.Newf("root %d has parent %d", u.root, s[u.root].p)
	}
	q := u.pool.queue()
	q.Clear()
	var n S
	for q.Push(u.root); !q.Empty(); n++ {
		x, _ := q.Pop()
		c := s[x]
		if c.sz != s[c.l].sz+s[c.r].sz+1 {
			return errors.Newf("node %d has size %d, children %d and %d", x, c.sz, s[c.l].sz, s[c.r].sz)
		}
		for _, ch := range [2]S{c.l, c.r} {
			if ch != 0 {
				if s[ch].p != x {
					return errors.Newf("node %d has parent %d, want %d", ch, s[ch].p, x)
				}
				q.Push(ch)
			}
		}
		if n > s[u.root].sz {
			return errors.Newf("more than %d nodes reachable from root", s[u.root].sz)
		}
	}
	if n != s[u.root].sz {
		return errors.Newf("%d nodes reachable, root size %d", n, s[u.root].sz)
	}
	if f := u.pool.leftmost(u.root); u.first != f {
		return errors.Newf("first is %d, want %d", u.first, f)
	}
	if l := u.pool.rightmost(u.root); u.last != l {
		return errors.Newf("last is %d, want %d", u.last, l)
	}
	n = 0
	for x := u.first; x != 0; x = u.pool.next(x) {
		if n++; n > s[u.root].sz {
			return errors.Newf("in-order walk longer than %d", s[u.root].sz)
		}
	}
	if n != s[u.root].sz {
		return errors.Newf("in-order walk visits %d nodes, want %d", n, s[u.root].sz)
	}
	return nil
}

// Height of the tree; 0 when empty.
// Recursive. Time: O(n)
func (u *Tree[T, S]) Height() int {
	var h func(S) int
	h = func(x S) int {
		if x == 0 {
			return 0
		}
		return max(h(u.pool.slots[x].l), h(u.pool.slots[x].r)) + 1
	}
	return h(u.root)
}
