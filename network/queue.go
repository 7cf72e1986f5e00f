package network

import "sync"

// Queue is a fixed-size FIFO ring shared between network goroutines and the
// simulation. It is safe for concurrent producers and a single consumer.
type Queue[T any] struct {
	mu         sync.Mutex
	data       []T
	head       int
	tail       int
	count      int
	onOverflow func()
}

// NewQueue constructs a ring with the provided capacity. onOverflow, if set,
// is called for every rejected Push.
func NewQueue[T any](capacity int, onOverflow func()) *Queue[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue[T]{
		data:       make([]T, capacity),
		onOverflow: onOverflow,
	}
}

// Push stages a value, returning false if the queue is full.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	if q.count == len(q.data) {
		q.mu.Unlock()
		if q.onOverflow != nil {
			q.onOverflow()
		}
		return false
	}
	q.data[q.tail] = v
	q.tail = (q.tail + 1) % len(q.data)
	q.count++
	q.mu.Unlock()
	return true
}

// Drain returns all staged values in FIFO order and empties the queue.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.count == 0 {
		return nil
	}
	out := make([]T, q.count)
	var zero T
	for i := 0; i < q.count; i++ {
		idx := (q.head + i) % len(q.data)
		out[i] = q.data[idx]
		q.data[idx] = zero
	}
	q.head = 0
	q.tail = 0
	q.count = 0
	return out
}

// Len reports how many values are staged.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}
