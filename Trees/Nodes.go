package Trees

import (
	"fmt"

	"golang.org/x/exp/constraints"
)

// A slot in a Pool.
// slots[0] is the loopback nil: its links are 0 and sz is 0, so sizes can be
// read through any link without checking it first.
type slot[T any, S constraints.Unsigned] struct {
	v       T
	p, l, r S
	sz      S
	gen     uint32
}

// Node is a handle to a node stored in a Pool. It is the index of the slot
// plus the generation the slot had when the node was created. Releasing a
// node bumps the generation of its slot, so a Node kept past the release of
// its node no longer validates instead of silently naming whatever reuses
// the slot.
// The zero value is the nil Node: it names no node, and is what Next, Prev and
// friends return at the sequence boundaries.
type Node[S constraints.Unsigned] struct {
	i   S
	gen uint32
}

// IsNil reports whether n names no node.
func (n Node[S]) IsNil() bool {
	return n.i == 0
}

func (n Node[S]) String() string {
	if n.i == 0 {
		return "node(nil)"
	}
	return fmt.Sprintf("node(%d@%d)", n.i, n.gen)
}

// rotateLeft performs a left rotation on the subtree referenced by ni. ni
// points to the link holding the subtree root: the l or r of its parent, or the
// root of a tree. Sizes and parents are kept up to date.
// Time: O(1); Space: O(1)
func (u *Pool[T, S]) rotateLeft(ni *S) {
	x := *ni
	n := &u.slots[x]
	rci := n.r
	rc := &u.slots[rci]

	n.r = rc.l
	if rc.l != 0 {
		u.slots[rc.l].p = x
	}
	rc.l, rc.p, n.p = x, n.p, rci
	rc.sz = n.sz
	n.sz = u.slots[n.l].sz + u.slots[n.r].sz + 1
	*ni = rci
}

// rotateRight is the mirror of rotateLeft.
// Time: O(1); Space: O(1)
func (u *Pool[T, S]) rotateRight(ni *S) {
	x := *ni
	n := &u.slots[x]
	lci := n.l
	lc := &u.slots[lci]

	n.l = lc.r
	if lc.r != 0 {
		u.slots[lc.r].p = x
	}
	lc.r, lc.p, n.p = x, n.p, lci
	lc.sz = n.sz
	n.sz = u.slots[n.l].sz + u.slots[n.r].sz + 1
	*ni = lci
}

// maintain restores the size-balanced property of the subtree referenced by ni
// after one of its sides grew, or the other side shrank, by any amount.
// rightBigger tells which side may now be too heavy, which saves the
// comparisons on the other side. Both children of *ni must already be size
// balanced.
// Every rotation lowers the sum of the depths of the nodes, which bounds the
// recursion.
// Recursive. Time: amortized O(1) after a single insertion or erasure.
func (u *Pool[T, S]) maintain(ni *S, rightBigger bool) {
	cur := &u.slots[*ni]
	if lc, rc := &u.slots[cur.l], &u.slots[cur.r]; rightBigger {
		if u.slots[rc.r].sz > lc.sz {
			u.rotateLeft(ni)
		} else if u.slots[rc.l].sz > lc.sz {
			u.rotateRight(&cur.r)
			u.rotateLeft(ni)
		} else {
			return
		}
	} else {
		if u.slots[lc.l].sz > rc.sz {
			u.rotateRight(ni)
		} else if u.slots[lc.r].sz > rc.sz {
			u.rotateLeft(&cur.l)
			u.rotateRight(ni)
		} else {
			return
		}
	}
	// a side may have grown by more than one node, so the rotated children are
	// checked both ways.
	cur = &u.slots[*ni]
	u.maintain(&cur.l, false)
	u.maintain(&cur.l, true)
	u.maintain(&cur.r, true)
	u.maintain(&cur.r, false)
	u.maintain(ni, false)
	u.maintain(ni, true)
}

// leftmost node of the subtree rooted at x.
func (u *Pool[T, S]) leftmost(x S) S {
	if x != 0 {
		for u.slots[x].l != 0 {
			x = u.slots[x].l
		}
	}
	return x
}

// rightmost node of the subtree rooted at x.
func (u *Pool[T, S]) rightmost(x S) S {
	if x != 0 {
		for u.slots[x].r != 0 {
			x = u.slots[x].r
		}
	}
	return x
}

// next returns the in-order successor of x, or 0.
// Time: O(D), amortized O(1) over a full traversal.
func (u *Pool[T, S]) next(x S) S {
	if r := u.slots[x].r; r != 0 {
		return u.leftmost(r)
	}
	for p := u.slots[x].p; p != 0; x, p = p, u.slots[p].p {
		if u.slots[p].l == x {
			return p
		}
	}
	return 0
}

// prev returns the in-order predecessor of x, or 0.
func (u *Pool[T, S]) prev(x S) S {
	if l := u.slots[x].l; l != 0 {
		return u.rightmost(l)
	}
	for p := u.slots[x].p; p != 0; x, p = p, u.slots[p].p {
		if u.slots[p].r == x {
			return p
		}
	}
	return 0
}

// rank of x within the outermost subtree containing it, starting from 0.
func (u *Pool[T, S]) rank(x S) S {
	r := u.slots[u.slots[x].l].sz
	for p := u.slots[x].p; p != 0; x, p = p, u.slots[p].p {
		if u.slots[p].r == x {
			r += u.slots[u.slots[p].l].sz + 1
		}
	}
	return r
}

// top climbs parent links from x to the root of the subtree holding it.
func (u *Pool[T, S]) top(x S) S {
	for u.slots[x].p != 0 {
		x = u.slots[x].p
	}
	return x
}
