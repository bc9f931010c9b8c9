package broadcast

import (
	"sync"

	"newswire/internal/model"
)

// Queue is the broadcaster's outbound event queue: multi-producer,
// single-consumer, unbounded. Push never blocks; the ring doubles its
// capacity when full. The consumer polls with TryPop/Drain and sleeps only
// when the queue is empty.
type Queue struct {
	mu       sync.Mutex
	buf      []model.BroadcastEvent
	head     int // read position
	tail     int // write position
	count    int
	capacity int
	closed   bool

	totalPushed int64
	totalPopped int64
}

// NewQueue creates a queue with the given initial capacity.
func NewQueue(initialCapacity int) *Queue {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &Queue{
		buf:      make([]model.BroadcastEvent, initialCapacity),
		capacity: initialCapacity,
	}
}

// Push enqueues an event. Returns false only after Close.
func (q *Queue) Push(evt model.BroadcastEvent) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}

	if q.count == q.capacity {
		q.grow()
	}

	q.buf[q.tail] = evt
	q.tail = (q.tail + 1) % q.capacity
	q.count++
	q.totalPushed++
	return true
}

// TryPop dequeues one event without blocking.
func (q *Queue) TryPop() (model.BroadcastEvent, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return model.BroadcastEvent{}, false
	}
	return q.pop(), true
}

// Drain dequeues up to max events (all of them when max <= 0).
func (q *Queue) Drain(max int) []model.BroadcastEvent {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.count == 0 {
		return nil
	}

	n := q.count
	if max > 0 && max < n {
		n = max
	}

	out := make([]model.BroadcastEvent, n)
	for i := 0; i < n; i++ {
		out[i] = q.pop()
	}
	return out
}

// Len returns the current number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// Close rejects further pushes. Queued events remain drainable.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}

// QueueStats reports queue throughput counters.
type QueueStats struct {
	Len         int
	Capacity    int
	TotalPushed int64
	TotalPopped int64
}

// Stats returns a point-in-time snapshot of the counters.
func (q *Queue) Stats() QueueStats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return QueueStats{
		Len:         q.count,
		Capacity:    q.capacity,
		TotalPushed: q.totalPushed,
		TotalPopped: q.totalPopped,
	}
}

// pop removes the head event. Caller holds the lock; count is nonzero.
func (q *Queue) pop() model.BroadcastEvent {
	evt := q.buf[q.head]
	q.buf[q.head] = model.BroadcastEvent{} // clear reference for GC
	q.head = (q.head + 1) % q.capacity
	q.count--
	q.totalPopped++
	return evt
}

// grow doubles the capacity. Caller holds the lock.
func (q *Queue) grow() {
	newBuf := make([]model.BroadcastEvent, q.capacity*2)

	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}

	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.capacity = len(newBuf)
}
