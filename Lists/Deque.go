package Lists

import (
	"github.com/cockroachdb/errors"
	"github.com/g-m-twostay/postree/Queues"
	"github.com/g-m-twostay/postree/Trees"
	"golang.org/x/exp/constraints"
)

// Deque is a double ended queue with O(log n) access, insertion and removal
// at any index. It is a Queues.Queue popping from the front.
type Deque[T any, S constraints.Unsigned] struct {
	t *Trees.Tree[T, S]
}

var _ Queues.Queue[int] = (*Deque[int, uint])(nil)

// NewDeque returns an empty deque.
func NewDeque[T any, S constraints.Unsigned](opts ...Trees.Option) *Deque[T, S] {
	return &Deque[T, S]{Trees.New[T, S](opts...)}
}

// Len of the deque.
func (d *Deque[T, S]) Len() int {
	return int(d.t.Size())
}

// Empty reports whether Len()==0.
func (d *Deque[T, S]) Empty() bool {
	return d.t.Empty()
}

// PushFront adds v at the front.
func (d *Deque[T, S]) PushFront(v T) error {
	_, err := EmplaceFront[T, S](d.t, v)
	return err
}

// PushBack adds v at the back.
func (d *Deque[T, S]) PushBack(v T) error {
	_, err := EmplaceBack[T, S](d.t, v)
	return err
}

// PopFront removes and returns the front value, or ErrEmpty.
func (d *Deque[T, S]) PopFront() (T, error) {
	if d.t.Empty() {
		return *new(T), ErrEmpty
	}
	v := d.t.Get(d.t.Front())
	EraseFront[T, S](d.t)
	return v, nil
}

// PopBack removes and returns the back value, or ErrEmpty.
func (d *Deque[T, S]) PopBack() (T, error) {
	if d.t.Empty() {
		return *new(T), ErrEmpty
	}
	v := d.t.Get(d.t.Back())
	EraseBack[T, S](d.t)
	return v, nil
}

// Front value; the zero value when empty.
func (d *Deque[T, S]) Front() T {
	if d.t.Empty() {
		return *new(T)
	}
	return d.t.Get(d.t.Front())
}

// Back value; the zero value when empty.
func (d *Deque[T, S]) Back() T {
	if d.t.Empty() {
		return *new(T)
	}
	return d.t.Get(d.t.Back())
}

func (d *Deque[T, S]) check(i int) error {
	if i < 0 || i >= d.Len() {
		return errors.Wrapf(ErrOutOfIndex, "deque size %d, index %d", d.Len(), i)
	}
	return nil
}

// At returns the value at index i.
// Time: O(log n)
func (d *Deque[T, S]) At(i int) (T, error) {
	if err := d.check(i); err != nil {
		return *new(T), err
	}
	return d.t.Get(d.t.At(S(i))), nil
}

// Set the value at index i.
func (d *Deque[T, S]) Set(i int, v T) error {
	if err := d.check(i); err != nil {
		return err
	}
	d.t.Set(d.t.At(S(i)), v)
	return nil
}

// Insert v so that it ends up at index i. 0<=i<=Len().
func (d *Deque[T, S]) Insert(i int, v T) error {
	if i == d.Len() {
		return d.PushBack(v)
	}
	if err := d.check(i); err != nil {
		return err
	}
	_, err := EmplaceBefore[T, S](d.t, d.t.At(S(i)), v)
	return err
}

// Remove and return the value at index i.
func (d *Deque[T, S]) Remove(i int) (T, error) {
	if err := d.check(i); err != nil {
		return *new(T), err
	}
	n := d.t.At(S(i))
	v := d.t.Get(n)
	d.t.Erase(n, true, true)
	return v, nil
}

// Rotate moves the first k values to the back, or for a negative k the last
// -k values to the front. k is taken modulo Len().
// Time: O(log n), by a split and a join.
func (d *Deque[T, S]) Rotate(k int) {
	n := d.Len()
	if n == 0 {
		return
	}
	if k %= n; k < 0 {
		k += n
	}
	if k == 0 {
		return
	}
	rest := d.t.Split(S(k))
	JoinFront(d.t, rest)
}

// Values in order.
func (d *Deque[T, S]) Values() []T {
	return d.t.Values()
}

// Push is PushBack for Queues.Queue. It panics when the pool is exhausted.
func (d *Deque[T, S]) Push(item T) {
	if err := d.PushBack(item); err != nil {
		panic(err)
	}
}

// Pop is PopFront for Queues.Queue.
func (d *Deque[T, S]) Pop() (T, error) {
	if d.t.Empty() {
		return *new(T), &Queues.EmptyQueueError{}
	}
	return d.PopFront()
}
