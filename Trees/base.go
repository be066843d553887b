package Trees

import (
	"math"

	"github.com/RoaringBitmap/roaring"
	"github.com/cockroachdb/errors"
	"github.com/g-m-twostay/postree/Queues"
	"github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
)

// ErrPoolExhausted is returned when a Pool cannot hand out another slot,
// either because it reached its limit or because S cannot index another slot.
var ErrPoolExhausted = errors.New("node pool exhausted")

type poolConfig struct {
	capacity, limit int
	grow            func(int) int
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

// WithCapacity preallocates room for hint nodes.
func WithCapacity(hint int) PoolOption {
	return func(c *poolConfig) { c.capacity = hint }
}

// WithLimit caps the number of slots, live or free, the pool may hold.
// Allocations beyond it fail with ErrPoolExhausted.
func WithLimit(max int) PoolOption {
	return func(c *poolConfig) { c.limit = max }
}

// WithGrowth sets how the slot array grows once full: f gets the current
// capacity and returns the new one. Results not larger than the current
// capacity are bumped by one.
func WithGrowth(f func(cur int) int) PoolOption {
	return func(c *poolConfig) { c.grow = f }
}

// Pool is the arena that owns the nodes of one or more trees. Nodes are slots
// of a dense array linked by index, so parent links never own anything and
// moving a subtree between two trees of the same pool moves no values.
// Released slots are reused lowest index first, which keeps the live slots
// packed at the front and lets Shrink hand the tail back.
// T is the type of the values held by the nodes, S the type used for slot
// indexes and subtree sizes: a Pool holds at most min(^S(0), math.MaxUint32)
// nodes.
// Every allocation and release bumps a pool wide uint32 generation. After 2^32
// of them it wraps, and a handle kept that long may validate again.
// A Pool isn't safe for concurrent use, and neither are the trees using it.
type Pool[T any, S constraints.Unsigned] struct {
	slots []slot[T, S]
	free  *roaring.Bitmap
	gen   uint32 // highest generation given to a slot so far.
	limit int    // maximum len(slots)-1
	grow  func(int) int
	q     Queues.ArrayQueue[S] // scratch for breadth first walks.
}

// NewPool returns an empty pool.
func NewPool[T any, S constraints.Unsigned](opts ...PoolOption) *Pool[T, S] {
	c := poolConfig{grow: func(cur int) int { return cur + cur>>1 + 4 }}
	for _, o := range opts {
		o(&c)
	}
	max := uint64(^S(0))
	if max > math.MaxUint32 {
		max = math.MaxUint32
	}
	if c.limit <= 0 || uint64(c.limit) > max {
		c.limit = int(max)
	}
	if c.capacity < 0 {
		c.capacity = 0
	} else if c.capacity > c.limit {
		c.capacity = c.limit
	}
	return &Pool[T, S]{
		slots: make([]slot[T, S], 1, c.capacity+1),
		free:  roaring.New(),
		limit: c.limit,
		grow:  c.grow,
	}
}

// Len is the number of live nodes in the pool across all its trees.
func (u *Pool[T, S]) Len() int {
	return len(u.slots) - 1 - int(u.free.GetCardinality())
}

// Cap is the number of nodes the pool can hold before growing.
func (u *Pool[T, S]) Cap() int {
	return cap(u.slots) - 1
}

// alloc a detached node holding v. Nothing is modified on failure.
// Time: O(1) amortized
func (u *Pool[T, S]) alloc(v T) (S, error) {
	if !u.free.IsEmpty() {
		i := u.free.Minimum()
		u.free.Remove(i)
		u.gen++
		s := &u.slots[i]
		s.v, s.sz, s.gen = v, 1, u.gen
		return S(i), nil
	}
	n := len(u.slots)
	if n > u.limit {
		Log.WithFields(logrus.Fields{"limit": u.limit}).Warn("node pool exhausted")
		return 0, errors.Wrapf(ErrPoolExhausted, "pool holds %d nodes", n-1)
	}
	if n == cap(u.slots) {
		c := u.grow(cap(u.slots))
		if c <= cap(u.slots) {
			c = cap(u.slots) + 1
		}
		if c > u.limit+1 {
			c = u.limit + 1
		}
		ns := make([]slot[T, S], n, c)
		copy(ns, u.slots)
		u.slots = ns
		Log.WithFields(logrus.Fields{"len": n - 1, "cap": c - 1}).Debug("node pool grown")
	}
	u.gen++
	u.slots = append(u.slots, slot[T, S]{v: v, sz: 1, gen: u.gen})
	return S(n), nil
}

// release the slot of the detached node x. Every handle to x goes stale.
func (u *Pool[T, S]) release(x S) {
	u.gen++
	u.slots[x] = slot[T, S]{gen: u.gen}
	u.free.Add(uint32(x))
}

// releaseTree releases every node of the detached subtree rooted at x,
// breadth first, and returns how many were released.
// Time: O(n)
func (u *Pool[T, S]) releaseTree(x S) (n int) {
	if x == 0 {
		return 0
	}
	q := u.queue()
	q.Clear()
	for q.Push(x); !q.Empty(); n++ {
		x, _ = q.Pop()
		if s := &u.slots[x]; s.l != 0 {
			q.Push(s.l)
		}
		if s := &u.slots[x]; s.r != 0 {
			q.Push(s.r)
		}
		u.release(x)
	}
	return n
}

func (u *Pool[T, S]) queue() Queues.ArrayQueue[S] {
	if u.q == nil {
		u.q = Queues.MakeArrayQueue[S](16)
	}
	return u.q
}

// Shrink drops the free slots at the end of the slot array and trims its
// capacity, along with the scratch queue. Slots in use never move, so handles
// stay valid.
// Time: O(len)
func (u *Pool[T, S]) Shrink() {
	if u.q != nil {
		u.q.Clear()
		u.q.Shrink()
	}
	n := len(u.slots)
	for !u.free.IsEmpty() && u.free.Maximum() == uint32(n-1) {
		u.free.Remove(uint32(n - 1))
		n--
	}
	if n == cap(u.slots) {
		return
	}
	ns := make([]slot[T, S], n)
	copy(ns, u.slots)
	Log.WithFields(logrus.Fields{"len": n - 1, "was": cap(u.slots) - 1}).Debug("node pool shrunk")
	u.slots = ns
}

// valid reports whether n names a live node of u.
func (u *Pool[T, S]) valid(n Node[S]) bool {
	return n.i != 0 && int(n.i) < len(u.slots) && u.slots[n.i].gen == n.gen
}

// handle for the slot x; the nil Node for 0.
func (u *Pool[T, S]) handle(x S) Node[S] {
	if x == 0 {
		return Node[S]{}
	}
	return Node[S]{x, u.slots[x].gen}
}

// index of n after validating it against u. Panics on a stale or foreign handle.
func (u *Pool[T, S]) index(n Node[S]) S {
	if !u.valid(n) {
		panic(errors.AssertionFailedf("stale or foreign %s", n))
	}
	return n.i
}
