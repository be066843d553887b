package Queues

// Queue is a FIFO of T.
type Queue[T any] interface {
	Push(item T)
	Pop() (T, error)
	Empty() bool
}

// ArrayQueue is a Queue kept in a circular array. It is used for breadth
// first walks, where the same queue is cleared and refilled many times.
type ArrayQueue[T any] interface {
	Queue[T]
	Shrink()
	Clear()
	resize(newLen uint)
}

type EmptyQueueError struct {
}

func (e *EmptyQueueError) Error() string {
	return "Queue is Empty: cannot Pop."
}
