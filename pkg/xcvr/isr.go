// Package xcvr implements the interrupt driven transceiver core.
package xcvr

import (
	"github.com/robotalks/upshift/pkg/periph"
	"github.com/robotalks/upshift/pkg/queue"
)

// Every received unit is transformed and queued, and units leave the queue
// only when the peripheral reports transmit-ready. The transmit interrupt is
// enabled exactly while the queue is non-empty. Nothing is retried and no
// error leaves the service routine: losses show up in Stats and Observer.

// Options customizes a Context.
type Options struct {
	// Transform defaults to Upshift.
	Transform Transform
	// Observer is optional.
	Observer Observer
}

// Context owns the peripheral and the queue once the handoff is done.
// Service is the only method touching them.
type Context struct {
	port      periph.Peripheral
	queue     *queue.Queue
	transform Transform
	observer  Observer
	stats     Stats
}

// New takes the peripheral out of the handle and binds it to a new Context
// with an empty queue. The handle is unusable afterwards.
func New(h *periph.Handle, opts Options) (*Context, error) {
	port, err := h.Take()
	if err != nil {
		return nil, err
	}
	c := &Context{
		port:      port,
		queue:     queue.New(),
		transform: opts.Transform,
		observer:  opts.Observer,
	}
	if c.transform == nil {
		c.transform = Upshift
	}
	return c, nil
}

// Stats returns the counters, safe to read from any goroutine.
func (c *Context) Stats() *Stats {
	return &c.stats
}

// ServeIRQ implements irq.Handler.
func (c *Context) ServeIRQ() {
	c.Service()
}

// Service inspects the peripheral flags and performs at most one transmit
// and one receive action, then clears overrun if flagged.
func (c *Context) Service() {
	if c.port.TransmitReady() {
		c.transmit()
	}
	if c.port.ReceiveReady() {
		c.receive()
	}
	if c.port.Overrun() {
		c.port.ClearOverrun()
		c.event(Event{Kind: EventOverrun})
	}
}

func (c *Context) transmit() {
	u, ok := c.queue.Dequeue()
	if !ok {
		c.port.DisableTransmitInterrupt()
		c.event(Event{Kind: EventSpurious})
		return
	}
	c.port.WriteUnit(u)
	c.stats.transmittedOne()
	if c.queue.IsEmpty() {
		c.port.DisableTransmitInterrupt()
	}
	c.stats.setDepth(c.queue.Len())
}

func (c *Context) receive() {
	u, underflow := c.transform(c.port.ReadUnit())
	c.stats.receivedOne()
	if underflow {
		c.event(Event{Kind: EventUnderflow, Unit: u})
	}
	wasEmpty := c.queue.IsEmpty()
	if err := c.queue.Enqueue(u); err != nil {
		c.event(Event{Kind: EventQueueFull, Unit: u})
		return
	}
	if wasEmpty {
		c.port.EnableTransmitInterrupt()
	}
	c.stats.setDepth(c.queue.Len())
}

func (c *Context) event(ev Event) {
	c.stats.count(ev.Kind)
	if o := c.observer; o != nil {
		o.Observe(ev)
	}
}
