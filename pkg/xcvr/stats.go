package xcvr

import (
	"sync/atomic"

	"github.com/robotalks/upshift/pkg/periph"
)

// EventKind classifies what the service routine did with a unit.
type EventKind int

// Event kinds
const (
	// EventQueueFull means a transformed unit was dropped on a full queue.
	EventQueueFull EventKind = iota
	// EventOverrun means the line overran and a unit was lost.
	EventOverrun
	// EventSpurious means transmit-ready was seen with nothing queued.
	EventSpurious
	// EventUnderflow means a data byte below Shift went through the
	// underflow policy of the transform. It is not a loss.
	EventUnderflow
)

var eventNames = [...]string{
	EventQueueFull: "queue-full",
	EventOverrun:   "overrun",
	EventSpurious:  "spurious-tx-ready",
	EventUnderflow: "underflow",
}

// String implements Stringer.
func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// IsDrop indicates a unit was lost.
func (k EventKind) IsDrop() bool {
	return k == EventQueueFull || k == EventOverrun
}

// Event is reported to Observer from interrupt context.
type Event struct {
	Kind EventKind
	// Unit is the affected unit, zero for EventOverrun and EventSpurious.
	Unit periph.Unit
}

// Observer is notified of events from interrupt context. It must not block.
type Observer interface {
	Observe(Event)
}

// ObserveFunc is func form of Observer.
type ObserveFunc func(Event)

// Observe implements Observer.
func (f ObserveFunc) Observe(ev Event) {
	f(ev)
}

// Stats are counters updated from interrupt context and readable from
// any goroutine.
type Stats struct {
	received      uint64
	transmitted   uint64
	queueFull     uint64
	overruns      uint64
	spurious      uint64
	underflows    uint64
	depth         uint32
	highWaterMark uint32
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Received      uint64
	Transmitted   uint64
	QueueFull     uint64
	Overruns      uint64
	Spurious      uint64
	Underflows    uint64
	QueueDepth    uint32
	HighWaterMark uint32
}

// Dropped is the total number of lost units.
func (s Snapshot) Dropped() uint64 {
	return s.QueueFull + s.Overruns
}

// Snapshot reads all counters.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Received:      atomic.LoadUint64(&s.received),
		Transmitted:   atomic.LoadUint64(&s.transmitted),
		QueueFull:     atomic.LoadUint64(&s.queueFull),
		Overruns:      atomic.LoadUint64(&s.overruns),
		Spurious:      atomic.LoadUint64(&s.spurious),
		Underflows:    atomic.LoadUint64(&s.underflows),
		QueueDepth:    atomic.LoadUint32(&s.depth),
		HighWaterMark: atomic.LoadUint32(&s.highWaterMark),
	}
}

func (s *Stats) receivedOne() {
	atomic.AddUint64(&s.received, 1)
}

func (s *Stats) transmittedOne() {
	atomic.AddUint64(&s.transmitted, 1)
}

func (s *Stats) count(kind EventKind) {
	switch kind {
	case EventQueueFull:
		atomic.AddUint64(&s.queueFull, 1)
	case EventOverrun:
		atomic.AddUint64(&s.overruns, 1)
	case EventSpurious:
		atomic.AddUint64(&s.spurious, 1)
	case EventUnderflow:
		atomic.AddUint64(&s.underflows, 1)
	}
}

// setDepth is only called from interrupt context, so the high water mark
// has a single writer.
func (s *Stats) setDepth(depth int) {
	atomic.StoreUint32(&s.depth, uint32(depth))
	if uint32(depth) > atomic.LoadUint32(&s.highWaterMark) {
		atomic.StoreUint32(&s.highWaterMark, uint32(depth))
	}
}

// Observers fans out events to multiple observers.
type Observers []Observer

// Observe implements Observer.
func (o Observers) Observe(ev Event) {
	for _, observer := range o {
		observer.Observe(ev)
	}
}
