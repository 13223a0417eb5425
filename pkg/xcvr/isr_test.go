package xcvr

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/upshift/pkg/periph"
	"github.com/robotalks/upshift/pkg/queue"
)

// fakePort models the flags of a UART with register side effects.
type fakePort struct {
	rxReady bool
	txReady bool
	overrun bool
	rdr     periph.Unit
	txie    bool
	rxie    bool

	line         []periph.Unit
	enableCalls  int
	disableCalls int
}

func (p *fakePort) ReceiveReady() bool  { return p.rxReady }
func (p *fakePort) TransmitReady() bool { return p.txReady }
func (p *fakePort) Overrun() bool       { return p.overrun }
func (p *fakePort) ClearOverrun()       { p.overrun = false }

func (p *fakePort) ReadUnit() periph.Unit {
	p.rxReady = false
	return p.rdr
}

func (p *fakePort) WriteUnit(u periph.Unit) {
	p.txReady = false
	p.line = append(p.line, u)
}

func (p *fakePort) EnableTransmitInterrupt() {
	p.enableCalls++
	p.txie = true
}

func (p *fakePort) DisableTransmitInterrupt() {
	p.disableCalls++
	p.txie = false
}

func (p *fakePort) EnableReceiveInterrupt()                { p.rxie = true }
func (p *fakePort) Configure(conf periph.LineConfig) error { return nil }

type isrTestCtx struct {
	t      *testing.T
	port   *fakePort
	ctx    *Context
	events []Event
}

func newISRTestCtx(t *testing.T) *isrTestCtx {
	tc := &isrTestCtx{t: t, port: &fakePort{}}
	ctx, err := New(periph.NewHandle(tc.port), Options{
		Observer: ObserveFunc(func(ev Event) { tc.events = append(tc.events, ev) }),
	})
	require.NoError(t, err)
	tc.ctx = ctx
	return tc
}

func (c *isrTestCtx) checkMirror() *isrTestCtx {
	require.Equal(c.t, !c.ctx.queue.IsEmpty(), c.port.txie, "transmit interrupt must mirror non-empty queue")
	require.True(c.t, c.ctx.queue.Len() >= 0 && c.ctx.queue.Len() <= queue.Capacity)
	return c
}

func (c *isrTestCtx) receive(in ...byte) *isrTestCtx {
	for _, b := range in {
		c.port.rdr, c.port.rxReady = periph.Unit(b), true
		c.ctx.Service()
		require.False(c.t, c.port.rxReady)
		c.checkMirror()
	}
	return c
}

// transmitReady simulates the shift register taking the transmit data.
func (c *isrTestCtx) transmitReady(times int) *isrTestCtx {
	for i := 0; i < times; i++ {
		c.port.txReady = true
		c.ctx.Service()
		c.checkMirror()
	}
	return c
}

// drain keeps the transmitter ready until the interrupt is disabled.
func (c *isrTestCtx) drain() *isrTestCtx {
	for c.port.txie {
		c.transmitReady(1)
	}
	return c
}

func (c *isrTestCtx) overrun() *isrTestCtx {
	c.port.overrun = true
	c.ctx.Service()
	require.False(c.t, c.port.overrun)
	c.checkMirror()
	return c
}

func (c *isrTestCtx) expectLine(out ...byte) *isrTestCtx {
	units := make([]periph.Unit, len(out))
	for n, b := range out {
		units[n] = periph.Unit(b)
	}
	if len(units) == 0 {
		units = nil
	}
	require.Equal(c.t, units, c.port.line)
	return c
}

func (c *isrTestCtx) expectQueued(units ...periph.Unit) *isrTestCtx {
	if len(units) == 0 {
		require.Empty(c.t, c.ctx.queue.Units())
		return c
	}
	require.Equal(c.t, units, c.ctx.queue.Units())
	return c
}

func (c *isrTestCtx) kinds() (kinds []EventKind) {
	for _, ev := range c.events {
		kinds = append(kinds, ev.Kind)
	}
	return
}

func TestNewTakesHandle(t *testing.T) {
	h := periph.NewHandle(&fakePort{})
	_, err := New(h, Options{})
	require.NoError(t, err)
	_, err = New(h, Options{})
	require.Equal(t, periph.ErrTaken, err)
	require.Equal(t, periph.ErrTaken, h.EnableReceiveInterrupt())
}

func TestTransformEndToEnd(t *testing.T) {
	c := newISRTestCtx(t)
	c.receive('a').drain().
		receive('b').drain().
		receive('c').drain().
		expectLine('A', 'B', 'C')
	s := c.ctx.Stats().Snapshot()
	require.Equal(t, uint64(3), s.Received)
	require.Equal(t, uint64(3), s.Transmitted)
	require.Zero(t, s.Dropped())
}

func TestQueueIsIntermediary(t *testing.T) {
	c := newISRTestCtx(t)
	c.port.txReady = true
	c.port.rdr, c.port.rxReady = 'x', true
	c.ctx.Service()
	// transmit side runs first and finds nothing; the unit stays queued.
	c.expectLine().expectQueued('X').checkMirror()
	c.transmitReady(1).expectLine('X').expectQueued()
}

func TestBurstOverflow(t *testing.T) {
	c := newISRTestCtx(t)
	c.receive('a', 'b', 'c', 'd', 'e', 'f', 'g', 'h')
	c.expectLine().expectQueued('A', 'B', 'C', 'D', 'E', 'F', 'G', 'H')

	c.receive('i')
	c.expectQueued('A', 'B', 'C', 'D', 'E', 'F', 'G', 'H')
	require.Equal(t, []Event{{Kind: EventQueueFull, Unit: 'I'}}, c.events)

	c.drain().expectLine('A', 'B', 'C', 'D', 'E', 'F', 'G', 'H')
	s := c.ctx.Stats().Snapshot()
	require.Equal(t, uint64(1), s.QueueFull)
	require.Equal(t, uint32(queue.Capacity), s.HighWaterMark)
	require.Equal(t, uint32(0), s.QueueDepth)
}

func TestOverrunRecovery(t *testing.T) {
	c := newISRTestCtx(t)
	c.overrun()
	require.Equal(t, []EventKind{EventOverrun}, c.kinds())
	c.receive('q').drain().expectLine('Q')
	require.Equal(t, uint64(1), c.ctx.Stats().Snapshot().Overruns)
}

func TestOverrunWithReceive(t *testing.T) {
	c := newISRTestCtx(t)
	c.port.overrun = true
	c.receive('z')
	require.False(t, c.port.overrun)
	c.drain().expectLine('Z')
}

func TestIdleToActive(t *testing.T) {
	c := newISRTestCtx(t)
	require.False(t, c.port.txie)
	c.receive('a', 'b', 'c')
	require.Equal(t, 1, c.port.enableCalls)
	require.Equal(t, 0, c.port.disableCalls)

	c.transmitReady(2)
	require.Equal(t, 0, c.port.disableCalls)
	c.transmitReady(1)
	require.Equal(t, 1, c.port.disableCalls)
	c.expectLine('A', 'B', 'C')
}

func TestSpuriousTransmitReady(t *testing.T) {
	c := newISRTestCtx(t)
	c.port.txie = true
	c.transmitReady(1)
	require.False(t, c.port.txie)
	require.Equal(t, []EventKind{EventSpurious}, c.kinds())
	c.expectLine()
}

func TestUnderflowPolicy(t *testing.T) {
	c := newISRTestCtx(t)
	c.receive('\r', '\n', ' ').drain()
	c.expectLine('\r', '\n', 0)
	require.Equal(t, []Event{
		{Kind: EventUnderflow, Unit: '\r'},
		{Kind: EventUnderflow, Unit: '\n'},
	}, c.events)
}

func TestInterleaved(t *testing.T) {
	c := newISRTestCtx(t)
	in := []byte("hello world")
	var out []byte
	for n, b := range in {
		c.receive(b)
		if n%3 == 2 {
			c.transmitReady(1)
		}
	}
	c.drain()
	for _, b := range in {
		r, _ := Upshift(periph.Unit(b))
		out = append(out, r.Byte())
	}
	c.expectLine(out...)
}
