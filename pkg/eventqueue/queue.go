// Package eventqueue provides the bounded queue that hands decoded note
// events from the playback goroutine to a consumer such as a renderer. The
// queue never blocks either side: a push into a full queue and a pop from an
// empty queue both fail immediately, so sustained consumer backpressure costs
// events rather than scheduling accuracy.
package eventqueue

import (
	"sync"
	"time"
)

// Event is one decoded note-on or note-off.
type Event struct {
	Channel   uint8
	Note      uint8
	Velocity  uint8
	NoteOn    bool
	Timestamp time.Duration
}

// Queue is a bounded FIFO for a single producer and a single consumer.
type Queue struct {
	mu     sync.Mutex
	events []Event
	head   int
	tail   int
}

// New returns a queue holding up to capacity events.
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	// One slot stays empty to distinguish full from empty.
	return &Queue{events: make([]Event, capacity+1)}
}

// Push appends ev and reports whether there was room. A failed push leaves
// the queue unchanged.
func (q *Queue) Push(ev Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	next := (q.head + 1) % len(q.events)
	if next == q.tail {
		return false
	}
	q.events[q.head] = ev
	q.head = next
	return true
}

// Pop removes and returns the oldest event, reporting false on an empty
// queue without blocking.
func (q *Queue) Pop() (Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.tail == q.head {
		return Event{}, false
	}
	ev := q.events[q.tail]
	q.tail = (q.tail + 1) % len(q.events)
	return ev, true
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := q.head - q.tail
	if n < 0 {
		n += len(q.events)
	}
	return n
}
