package Trees

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"golang.org/x/exp/constraints"
)

// Side tells how a Position attaches a new node.
type Side uint8

const (
	// Root: the tree is empty and the new node becomes its root.
	Root Side = iota
	// Left: the new node becomes the left child of the Position's node.
	Left
	// Right: the new node becomes the right child of the Position's node.
	Right
)

// Position describes where a new node goes in a tree, structurally: as the
// left or right child of a node that has no such child yet, or as the root of
// an empty tree. It says nothing about how the tree reacts to the insertion.
// A Position is a plain value pointing at a Node; like the Node it goes stale
// once the tree changes, and using a stale Position panics.
// The zero value is the Root position.
type Position[S constraints.Unsigned] struct {
	at   Node[S]
	side Side
}

// Side of the position.
func (p Position[S]) Side() Side {
	return p.side
}

// Node the position attaches to. The nil Node for Root.
func (p Position[S]) Node() Node[S] {
	return p.at
}

func (p Position[S]) String() string {
	switch p.side {
	case Left:
		return fmt.Sprintf("left of %s", p.at)
	case Right:
		return fmt.Sprintf("right of %s", p.at)
	default:
		return "root"
	}
}

// Before returns the position right before n in order: its free left link
// if it has one, otherwise the right link of the last node of its left
// subtree.
// Time: O(D)
func (u *Tree[T, S]) Before(n Node[S]) Position[S] {
	x := u.node(n)
	if l := u.pool.slots[x].l; l != 0 {
		return Position[S]{u.pool.handle(u.pool.rightmost(l)), Right}
	}
	return Position[S]{n, Left}
}

// After is the mirror of Before.
func (u *Tree[T, S]) After(n Node[S]) Position[S] {
	x := u.node(n)
	if r := u.pool.slots[x].r; r != 0 {
		return Position[S]{u.pool.handle(u.pool.leftmost(r)), Left}
	}
	return Position[S]{n, Right}
}

// PrevPosition is Before(n), except that a nil n stands for the end of the
// sequence, where it returns LastPosition.
func (u *Tree[T, S]) PrevPosition(n Node[S]) Position[S] {
	if n.IsNil() {
		return u.LastPosition()
	}
	return u.Before(n)
}

// FirstPosition is the position before the first node, or Root when the tree
// is empty.
func (u *Tree[T, S]) FirstPosition() Position[S] {
	if u.first == 0 {
		return Position[S]{}
	}
	return Position[S]{u.pool.handle(u.first), Left}
}

// LastPosition is the position after the last node, or Root when the tree
// is empty.
func (u *Tree[T, S]) LastPosition() Position[S] {
	if u.last == 0 {
		return Position[S]{}
	}
	return Position[S]{u.pool.handle(u.last), Right}
}

// checkPosition panics unless pos is free in u.
func (u *Tree[T, S]) checkPosition(pos Position[S]) {
	switch pos.side {
	case Root:
		if u.root != 0 {
			panic(errors.AssertionFailedf("root position used on a tree of size %d", u.Size()))
		}
	case Left, Right:
		x := u.node(pos.at)
		if s := &u.pool.slots[x]; (pos.side == Left && s.l != 0) || (pos.side == Right && s.r != 0) {
			panic(errors.AssertionFailedf("position %s is taken", pos))
		}
	default:
		panic(errors.AssertionFailedf("bad position side %d", pos.side))
	}
}
