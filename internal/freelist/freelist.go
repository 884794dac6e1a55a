// Package freelist implements a bounded free-list of resettable objects.
package freelist

import "github.com/eapache/queue"

// List holds up to a fixed number of previously used objects awaiting reuse.
// Objects put into a full list are dropped.
//
// A List is not safe for concurrent use.
type List[E any] struct {
	q     *queue.Queue
	size  int
	reset func(E)
}

// New creates an empty free-list holding at most size objects.
// reset is called on every object accepted by Put and may be nil.
// A size <= 0 disables the list; Put drops everything.
func New[E any](size int, reset func(E)) *List[E] {
	l := &List[E]{size: max(size, 0), reset: reset}
	if l.size > 0 {
		l.q = queue.New()
	}
	return l
}

// Get removes and returns a recycled object.
// The ok result is false if the list is empty.
func (l *List[E]) Get() (e E, ok bool) {
	if l.Len() == 0 {
		return e, false
	}
	return l.q.Remove().(E), true
}

// Put resets e and keeps it for reuse. It returns false if the list is
// full and e was dropped.
func (l *List[E]) Put(e E) bool {
	if l.Len() >= l.size {
		return false
	}
	if l.reset != nil {
		l.reset(e)
	}
	l.q.Add(e)
	return true
}

// Len returns the number of objects awaiting reuse.
func (l *List[E]) Len() int {
	if l.q == nil {
		return 0
	}
	return l.q.Length()
}

// Cap returns the maximum number of objects the list holds.
func (l *List[E]) Cap() int {
	return l.size
}
