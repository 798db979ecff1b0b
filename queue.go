package fedsync

import "sync"

// Ticket is an admission token. Tickets are issued in strictly increasing
// order per FairQueue and never reused.
type Ticket uint64

type waiter struct {
	ticket Ticket
	ready  chan struct{}
}

// FairQueue is a FIFO mutual-exclusion lock. Callers are admitted in the
// order they called Acquire; later arrivals never overtake earlier ones.
//
// Waiters park on a per-ticket channel that is closed when their ticket
// becomes the head, so there is no busy waiting and only one caller is woken
// per release.
type FairQueue struct {
	mu      sync.Mutex
	next    Ticket
	waiting []waiter // outstanding tickets, head first
}

// NewFairQueue returns an empty queue
func NewFairQueue() *FairQueue {
	return &FairQueue{}
}

// Acquire issues the next ticket and blocks until it is at the head
func (q *FairQueue) Acquire() Ticket {
	q.mu.Lock()
	w := waiter{ticket: q.next, ready: make(chan struct{})}
	q.next++
	q.waiting = append(q.waiting, w)
	if len(q.waiting) == 1 {
		close(w.ready)
	}
	q.mu.Unlock()

	<-w.ready
	return w.ticket
}

// Release removes the head ticket and admits the next one. Releasing an
// empty queue is a no-op.
func (q *FairQueue) Release() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) == 0 {
		return
	}
	q.waiting[0] = waiter{}
	q.waiting = q.waiting[1:]
	if len(q.waiting) > 0 {
		close(q.waiting[0].ready)
	}
}

// Head returns the ticket currently holding the queue
func (q *FairQueue) Head() (Ticket, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiting) == 0 {
		return 0, false
	}
	return q.waiting[0].ticket, true
}

// Len returns the number of outstanding tickets, including the head
func (q *FairQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiting)
}
