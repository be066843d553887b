package Trees

import (
	"iter"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
)

// Log receives the debug events of bulk operations and pool growth.
var Log = logrus.New()

type config struct {
	log  logrus.FieldLogger
	pool []PoolOption
}

// Option configures a Tree.
type Option func(*config)

// WithLogger makes the tree log to l instead of Log.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) { c.log = l }
}

// WithPoolOptions configures the pool New creates for the tree. It has no
// effect on NewIn.
func WithPoolOptions(opts ...PoolOption) Option {
	return func(c *config) { c.pool = append(c.pool, opts...) }
}

// Tree is a sequence kept as a size-balanced binary tree: the in-order
// traversal of the nodes is the sequence, and nodes are addressed by their
// position in it instead of by comparing values. Every node stores the size of
// its subtree, which gives access by index, and the tree maintains balance
// through rotations by checking those sizes.
// T is the type of the values, S the type of indexes and sizes (see Pool).
// Receivers panic on broken preconditions: indexes out of range, stale Nodes,
// Nodes of other trees and occupied Positions. The cheap checks always run;
// building with the invariants tag adds the ownership checks and a full Check
// after every mutation.
// The worst case height of the tree is less than 1.44*log2(n+1.5)-1.33 while
// only Emplace and rebalancing Erase are used.
type Tree[T any, S constraints.Unsigned] struct {
	pool              *Pool[T, S]
	root, first, last S
	log               logrus.FieldLogger
}

// New returns an empty tree with a pool of its own.
func New[T any, S constraints.Unsigned](opts ...Option) *Tree[T, S] {
	c := config{log: Log}
	for _, o := range opts {
		o(&c)
	}
	return &Tree[T, S]{pool: NewPool[T, S](c.pool...), log: c.log}
}

// NewIn returns an empty tree keeping its nodes in p. Trees sharing a pool
// can be joined and split without moving values.
func NewIn[T any, S constraints.Unsigned](p *Pool[T, S], opts ...Option) *Tree[T, S] {
	c := config{log: Log}
	for _, o := range opts {
		o(&c)
	}
	return &Tree[T, S]{pool: p, log: c.log}
}

// Pool the tree keeps its nodes in.
func (u *Tree[T, S]) Pool() *Pool[T, S] {
	return u.pool
}

// Size returns the size of the tree.
// Time: O(1); Space: O(1)
func (u *Tree[T, S]) Size() S {
	return u.pool.slots[u.root].sz
}

// Empty reports whether the tree has no nodes.
func (u *Tree[T, S]) Empty() bool {
	return u.root == 0
}

// Front is the first node, or nil.
// Time: O(1)
func (u *Tree[T, S]) Front() Node[S] {
	return u.pool.handle(u.first)
}

// Back is the last node, or nil.
// Time: O(1)
func (u *Tree[T, S]) Back() Node[S] {
	return u.pool.handle(u.last)
}

// At returns the node at index i, starting from 0.
// 0<=i<Size().
// Time: O(D); Space: O(1)
func (u *Tree[T, S]) At(i S) Node[S] {
	if i >= u.Size() {
		panic(errors.AssertionFailedf("index %d out of range [0, %d)", i, u.Size()))
	}
	return u.pool.handle(u.at(u.root, i))
}

func (u *Tree[T, S]) at(curI, k S) S {
	for {
		if li := u.pool.slots[curI].l; k < u.pool.slots[li].sz {
			curI = li
		} else if k > u.pool.slots[li].sz {
			k -= u.pool.slots[li].sz + 1
			curI = u.pool.slots[curI].r
		} else {
			return curI
		}
	}
}

// Index returns the index of n.
// Time: O(D)
func (u *Tree[T, S]) Index(n Node[S]) S {
	return u.pool.rank(u.node(n))
}

// Value returns a pointer to the value held by n, which may be detached. It is
// valid until the next allocation in the pool.
func (u *Tree[T, S]) Value(n Node[S]) *T {
	return &u.pool.slots[u.pool.index(n)].v
}

// Get the value held by n.
func (u *Tree[T, S]) Get(n Node[S]) T {
	return u.pool.slots[u.pool.index(n)].v
}

// Set the value held by n.
func (u *Tree[T, S]) Set(n Node[S], v T) {
	u.pool.slots[u.pool.index(n)].v = v
}

// Next returns the node after n, or nil if n is the last one.
// Time: O(D), amortized O(1) when walking the whole tree.
func (u *Tree[T, S]) Next(n Node[S]) Node[S] {
	return u.pool.handle(u.pool.next(u.node(n)))
}

// Prev returns the node before n, or nil if n is the first one.
func (u *Tree[T, S]) Prev(n Node[S]) Node[S] {
	return u.pool.handle(u.pool.prev(u.node(n)))
}

// CreateNode allocates a node holding v without adding it to the tree. The
// node is detached: it can be added with Link or released with Destroy.
// Time: O(1) amortized
func (u *Tree[T, S]) CreateNode(v T) (Node[S], error) {
	x, err := u.pool.alloc(v)
	if err != nil {
		return Node[S]{}, err
	}
	return u.pool.handle(x), nil
}

// Emplace creates a node holding v at pos. The node is allocated before the
// tree is touched, so on error the tree is unchanged.
// Time: O(D)
func (u *Tree[T, S]) Emplace(pos Position[S], v T) (Node[S], error) {
	u.checkPosition(pos)
	x, err := u.pool.alloc(v)
	if err != nil {
		return Node[S]{}, errors.Wrapf(err, "emplace %s", pos)
	}
	u.attach(pos, x)
	return u.pool.handle(x), nil
}

// Link attaches the detached subtree rooted at sub at pos. sub must not be
// linked anywhere, including being the root of another tree: use Join for
// that. The check only covers u: the root of another tree sharing the pool
// passes for a detached node.
// Time: O(D) for a single node, O(D) joins for a larger subtree.
func (u *Tree[T, S]) Link(pos Position[S], sub Node[S]) {
	x := u.pool.index(sub)
	if u.pool.slots[x].p != 0 || x == u.root {
		panic(errors.AssertionFailedf("%s is not detached", sub))
	}
	u.checkPosition(pos)
	u.attach(pos, x)
}

func (u *Tree[T, S]) attach(pos Position[S], x S) {
	s := u.pool.slots
	switch {
	case pos.side == Root:
		u.root, u.first, u.last = x, u.pool.leftmost(x), u.pool.rightmost(x)
		u.verify()
		return
	case s[x].sz > 1:
		u.splice(pos, x)
		u.verify()
		return
	case pos.side == Left:
		s[pos.at.i].l = x
		if pos.at.i == u.first {
			u.first = u.pool.leftmost(x)
		}
	default:
		s[pos.at.i].r = x
		if pos.at.i == u.last {
			u.last = u.pool.rightmost(x)
		}
	}
	s[x].p = pos.at.i
	// sizes are fixed bottom up. Only the side a node was reached from grew,
	// so only that side can be too heavy.
	for a, c := pos.at.i, x; a != 0; {
		s[a].sz++
		fromLeft := s[a].l == c
		ni := u.ref(a)
		u.pool.maintain(ni, !fromLeft)
		c = *ni
		a = s[c].p
	}
	u.verify()
}

// splice rebuilds the tree around the multi-node subtree x: the tree is split
// where pos lies, then x goes in between with its first and last nodes as the
// pivots of the two joins.
func (u *Tree[T, S]) splice(pos Position[S], x S) {
	k := u.pool.rank(pos.at.i)
	if pos.side == Right {
		k++
	}
	l, r := u.pool.split(u.root, k)
	mid, a := u.pool.popEnd(x, true)
	mid, b := u.pool.popEnd(mid, false)
	u.root = u.pool.join3(u.pool.join3(l, a, mid), b, r)
	u.first, u.last = u.pool.leftmost(u.root), u.pool.rightmost(u.root)
}

// Erase removes n from the tree. If rebalance is false the sizes are updated
// but no rotation happens, so a run of erasures can leave the tree less
// balanced until the next insertion. If destroy is false, n stays allocated as
// a detached node that can be linked again, or released with Destroy;
// otherwise n is released and every handle to it goes stale.
// When n has two children, its successor takes its place in the structure;
// the successor keeps its slot, so handles to it stay valid.
// Callers that need the successor of n must get it before calling Erase.
// Time: O(D)
func (u *Tree[T, S]) Erase(n Node[S], rebalance, destroy bool) {
	x := u.node(n)
	s := u.pool.slots
	if s[x].p == 0 && x != u.root {
		panic(errors.AssertionFailedf("%s is not in this tree", n))
	}
	if x == u.first {
		u.first = u.pool.next(x)
	}
	if x == u.last {
		u.last = u.pool.prev(x)
	}
	nn, ni := s[x], u.ref(x)
	var start, c S
	if nn.l == 0 || nn.r == 0 {
		if c = nn.l; c == 0 {
			c = nn.r
		}
		*ni = c
		if c != 0 {
			s[c].p = nn.p
		}
		start = nn.p
	} else {
		si := u.pool.leftmost(nn.r)
		if si != nn.r {
			sp := s[si].p
			s[sp].l = s[si].r
			if s[si].r != 0 {
				s[s[si].r].p = sp
			}
			s[si].r = nn.r
			s[nn.r].p = si
			start, c = sp, s[sp].l
		} else {
			start, c = si, s[si].r
		}
		s[si].l = nn.l
		s[nn.l].p = si
		s[si].p, s[si].sz = nn.p, nn.sz
		*ni = si
	}
	for a := start; a != 0; {
		s[a].sz--
		if !rebalance {
			c, a = a, s[a].p
			continue
		}
		// the side reached from shrank, so the other one may be too heavy.
		fromLeft := s[a].l == c
		ni := u.ref(a)
		u.pool.maintain(ni, fromLeft)
		c = *ni
		a = s[c].p
	}
	s[x].p, s[x].l, s[x].r, s[x].sz = 0, 0, 0, 1
	if destroy {
		u.pool.release(x)
	}
	u.verify()
}

// Destroy releases the detached subtree rooted at n. As with Link, the check
// only covers u: given the root of another tree sharing the pool, Destroy
// releases that tree's nodes.
// Time: O(n)
func (u *Tree[T, S]) Destroy(n Node[S]) {
	x := u.pool.index(n)
	if u.pool.slots[x].p != 0 || x == u.root {
		panic(errors.AssertionFailedf("%s is not detached", n))
	}
	u.pool.releaseTree(x)
}

// DestroyAll releases every node and leaves the tree empty. No rebalancing
// happens on the way.
// Time: O(n)
func (u *Tree[T, S]) DestroyAll() {
	n := u.pool.releaseTree(u.root)
	u.root, u.first, u.last = 0, 0, 0
	u.log.WithFields(logrus.Fields{"released": n}).Debug("tree destroyed")
}

// Join moves all nodes of other to pos in u, and leaves other empty. Both
// trees must share a pool.
// Time: O(D) with amortized rebalancing.
func (u *Tree[T, S]) Join(pos Position[S], other *Tree[T, S]) {
	if other.pool != u.pool {
		panic(errors.AssertionFailedf("joined trees must share a pool"))
	}
	if other == u {
		panic(errors.AssertionFailedf("tree joined with itself"))
	}
	u.checkPosition(pos)
	if other.root == 0 {
		return
	}
	x := other.root
	other.root, other.first, other.last = 0, 0, 0
	u.log.WithFields(logrus.Fields{"size": u.Size(), "joined": u.pool.slots[x].sz, "at": pos}).Debug("join")
	u.attach(pos, x)
}

// Split moves the nodes at indexes [i, Size()) into a new tree sharing u's
// pool, which it returns. 0<=i<=Size().
// Time: O(D) joins along the search path.
func (u *Tree[T, S]) Split(i S) *Tree[T, S] {
	if i > u.Size() {
		panic(errors.AssertionFailedf("split index %d out of range [0, %d]", i, u.Size()))
	}
	r := &Tree[T, S]{pool: u.pool, log: u.log}
	if i == u.Size() {
		return r
	}
	last := u.last
	l, ri := u.pool.split(u.root, i)
	u.root, u.first, u.last = l, u.pool.leftmost(l), u.pool.rightmost(l)
	r.root, r.first, r.last = ri, u.pool.leftmost(ri), last
	u.log.WithFields(logrus.Fields{"left": u.Size(), "right": r.Size()}).Debug("split")
	u.verify()
	r.verify()
	return r
}

// All yields the index and a pointer to the value of every node in order.
// The tree must not be modified during the iteration.
func (u *Tree[T, S]) All() iter.Seq2[S, *T] {
	return func(yield func(S, *T) bool) {
		var i S
		for x := u.first; x != 0; x = u.pool.next(x) {
			if !yield(i, &u.pool.slots[x].v) {
				return
			}
			i++
		}
	}
}

// Backward is All in reverse order.
func (u *Tree[T, S]) Backward() iter.Seq2[S, *T] {
	return func(yield func(S, *T) bool) {
		i := u.Size()
		for x := u.last; x != 0; x = u.pool.prev(x) {
			i--
			if !yield(i, &u.pool.slots[x].v) {
				return
			}
		}
	}
}

// Values returns the values in order.
// Time: O(n)
func (u *Tree[T, S]) Values() []T {
	vs := make([]T, 0, int(u.Size()))
	for _, v := range u.All() {
		vs = append(vs, *v)
	}
	return vs
}

// ref returns the link holding x: the l or r of its parent, or u.root.
func (u *Tree[T, S]) ref(x S) *S {
	return u.pool.ref(x, &u.root)
}

// node validates n and returns its slot.
func (u *Tree[T, S]) node(n Node[S]) S {
	x := u.pool.index(n)
	if invariantsEnabled && u.pool.top(x) != u.root {
		panic(errors.AssertionFailedf("%s is not in this tree", n))
	}
	return x
}

func (u *Tree[T, S]) verify() {
	if invariantsEnabled {
		if err := u.Check(); err != nil {
			panic(errors.NewAssertionErrorWithWrappedErrf(err, "tree corrupted"))
		}
	}
}

// split the subtree rooted at x into the nodes ranked below k and the rest,
// both returned as detached roots. The nodes on the search path are joined
// back as pivots.
// Recursive. Time: O(D) joins.
func (u *Pool[T, S]) split(x, k S) (l, r S) {
	if x == 0 {
		return 0, 0
	}
	n := u.slots[x]
	if ls := u.slots[n.l].sz; k <= ls {
		a, b := u.split(n.l, k)
		return a, u.join3(b, x, n.r)
	} else {
		a, b := u.split(n.r, k-ls-1)
		return u.join3(n.l, x, a), b
	}
}

// popEnd unlinks the first node of the detached subtree rooted at x, or the
// last one if first is false. It returns the root of what is left, rebalanced,
// and the unlinked node, itself detached.
// Time: O(D)
func (u *Pool[T, S]) popEnd(x S, first bool) (rest, m S) {
	s := u.slots
	var c S
	if first {
		m = u.leftmost(x)
		c = s[m].r
	} else {
		m = u.rightmost(x)
		c = s[m].l
	}
	rest = x
	p := s[m].p
	switch {
	case p == 0:
		rest = c
	case first:
		s[p].l = c
	default:
		s[p].r = c
	}
	if c != 0 {
		s[c].p = p
	}
	// the side on the path shrank, so the other one may be too heavy.
	for a := p; a != 0; {
		s[a].sz--
		ni := u.ref(a, &rest)
		u.maintain(ni, first)
		a = s[*ni].p
	}
	s[m].p, s[m].l, s[m].r, s[m].sz = 0, 0, 0, 1
	return rest, m
}

// ref returns the link holding x: the l or r of its parent, or *root when x
// has none.
func (u *Pool[T, S]) ref(x S, root *S) *S {
	s := u.slots
	if p := s[x].p; p == 0 {
		return root
	} else if s[p].l == x {
		return &s[p].l
	} else {
		return &s[p].r
	}
}

// join3 joins the detached subtrees a and b with the node x between them and
// returns the detached root. The lighter tree is hung from the spine of the
// heavier one where their sizes are comparable, then maintain restores
// balance on the way back up.
// Recursive. Time: O(|D(a)-D(b)|)
func (u *Pool[T, S]) join3(a, x, b S) S {
	sa, sb := u.slots[a].sz, u.slots[b].sz
	switch {
	case uint64(sa) > 2*uint64(sb)+1:
		r := u.join3(u.slots[a].r, x, b)
		u.slots[a].r, u.slots[r].p = r, a
		u.slots[a].sz = sa + sb + 1
		u.maintain(&a, true)
	case uint64(sb) > 2*uint64(sa)+1:
		l := u.join3(a, x, u.slots[b].l)
		u.slots[b].l, u.slots[l].p = l, b
		u.slots[b].sz = sa + sb + 1
		u.maintain(&b, false)
		a = b
	default:
		n := &u.slots[x]
		n.l, n.r, n.sz = a, b, sa+sb+1
		if a != 0 {
			u.slots[a].p = x
		}
		if b != 0 {
			u.slots[b].p = x
		}
		a = x
		u.maintain(&a, false)
		u.maintain(&a, true)
	}
	u.slots[a].p = 0
	return a
}
