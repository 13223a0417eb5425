// Package queue provides the bounded FIFO between receive and transmit.
package queue

import (
	"errors"

	"github.com/robotalks/upshift/pkg/periph"
)

// Capacity is the fixed number of units a Queue holds.
const Capacity = 8

var (
	// ErrFull indicates the Queue already holds Capacity units.
	// The rejected unit is discarded, resident units are untouched.
	ErrFull = errors.New("queue full")
)

// Queue is a fixed capacity ring of units.
// It is not safe for concurrent use: producer and consumer must run
// sequentially in the same context.
type Queue struct {
	units [Capacity]periph.Unit
	head  int
	size  int
}

// New creates an empty Queue.
func New() *Queue {
	return &Queue{}
}

// Enqueue appends a unit at the tail.
func (q *Queue) Enqueue(u periph.Unit) error {
	if q.size == Capacity {
		return ErrFull
	}
	q.units[(q.head+q.size)%Capacity] = u
	q.size++
	return nil
}

// Dequeue removes the head unit. ok is false if the Queue is empty.
func (q *Queue) Dequeue() (u periph.Unit, ok bool) {
	if q.size == 0 {
		return
	}
	u, ok = q.units[q.head], true
	q.head = (q.head + 1) % Capacity
	q.size--
	return
}

// IsEmpty indicates no unit is queued.
func (q *Queue) IsEmpty() bool {
	return q.size == 0
}

// Len returns the number of queued units.
func (q *Queue) Len() int {
	return q.size
}

// Cap returns Capacity.
func (q *Queue) Cap() int {
	return Capacity
}

// Units copies queued units in dequeue order.
func (q *Queue) Units() []periph.Unit {
	units := make([]periph.Unit, q.size)
	for n := range units {
		units[n] = q.units[(q.head+n)%Capacity]
	}
	return units
}
