package crossway

// Queue is a first-in first-out container
type Queue[T any] struct {
	items []T
	head  int
}

// NewQueue creates an empty queue
func NewQueue[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Enqueue appends an item to the back of the queue
func (q *Queue[T]) Enqueue(item T) {
	q.items = append(q.items, item)
}

// Dequeue removes and returns the front item.
// The second return value is false when the queue is empty.
func (q *Queue[T]) Dequeue() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}

	item := q.items[q.head]
	q.items[q.head] = zero
	q.head++

	// Reclaim the consumed prefix once it dominates the backing array
	if q.head > 32 && q.head*2 >= len(q.items) {
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}

	return item, true
}

// Peek returns the front item without removing it
func (q *Queue[T]) Peek() (T, bool) {
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}
	return q.items[q.head], true
}

// Size returns the number of queued items
func (q *Queue[T]) Size() int {
	return len(q.items) - q.head
}

// IsEmpty reports whether the queue holds no items
func (q *Queue[T]) IsEmpty() bool {
	return q.Size() == 0
}

// Items returns a copy of the queued items in dequeue order
func (q *Queue[T]) Items() []T {
	result := make([]T, q.Size())
	copy(result, q.items[q.head:])
	return result
}
