// Package board assembles a hosted device: the interrupt controller, a
// simulated USART with its line, and the transceiver booted on top.
package board

import (
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/upshift/pkg/firmware"
	fx "github.com/robotalks/upshift/pkg/framework"
	"github.com/robotalks/upshift/pkg/irq"
	"github.com/robotalks/upshift/pkg/periph"
	"github.com/robotalks/upshift/pkg/sim"
	"github.com/robotalks/upshift/pkg/xcvr"
)

// maxDrainSteps bounds Drain: the backlog plus everything the queue and the
// transmitter can hold.
const maxDrainSteps = 1 << 16

// Board is a booted device.
type Board struct {
	Controller *irq.Controller
	USART      *sim.USART
	Line       *sim.Line
	Device     *firmware.Device
}

// New boots a board with conf.
func New(conf firmware.Config) (*Board, error) {
	b := &Board{Controller: irq.New()}
	b.USART = sim.NewUSART(conf.Vector, b.Controller)
	h, err := b.USART.Take()
	if err != nil {
		return nil, err
	}
	if b.Device, err = firmware.Boot(b.Controller, h, conf); err != nil {
		return nil, fmt.Errorf("boot: %v", err)
	}
	b.Line = sim.NewLine(b.USART, conf.Line.BaudRate)
	return b, nil
}

// Stats returns the service counters.
func (b *Board) Stats() xcvr.Snapshot {
	return b.Device.Stats().Snapshot()
}

// Step advances the line by one unit time, servicing interrupts before and
// after like the hardware would.
func (b *Board) Step() (out periph.Unit, sent bool, err error) {
	b.Controller.Dispatch()
	out, sent, err = b.Line.Step()
	b.Controller.Dispatch()
	return
}

// Idle indicates nothing is left on the line, in the transmitter or in the
// queue.
func (b *Board) Idle() bool {
	f := b.USART.Flags()
	return b.Line.Backlog() == 0 && !f.Busy && f.TXE && !f.TXEIE && !f.RXNE
}

// Drain steps until the board is idle and returns the transmitted units.
func (b *Board) Drain() ([]periph.Unit, error) {
	var units []periph.Unit
	for i := 0; i < maxDrainSteps && !b.Idle(); i++ {
		out, sent, err := b.Step()
		if err != nil {
			return units, err
		}
		if sent {
			units = append(units, out)
		}
	}
	if !b.Idle() {
		return units, fmt.Errorf("board not idle after %d steps", maxDrainSteps)
	}
	return units, nil
}

// Stall delivers units straight to the receiver and services each one
// while the transmitter makes no progress, as when the line is slower
// than the input.
func (b *Board) Stall(units ...periph.Unit) {
	for _, u := range units {
		b.USART.Receive(u)
		b.Controller.Dispatch()
	}
}

// Overrun delivers units back to back with no chance to service them in
// between, then services the interrupt.
func (b *Board) Overrun(units ...periph.Unit) {
	for _, u := range units {
		b.USART.Receive(u)
	}
	b.Controller.Dispatch()
}

// Runnables returns the runners of a free running board: the interrupt
// context, the line and the idle wait.
func (b *Board) Runnables() []fx.Runnable {
	return []fx.Runnable{
		fx.NamedRun("irq", fx.RunFunc(b.Controller.Run)),
		fx.NamedRun("line", b.Line),
		fx.NamedRun("idle", b.Device),
	}
}

// LogEvent logs service routine events, drops as warnings.
func LogEvent(ev xcvr.Event) {
	switch ev.Kind {
	case xcvr.EventQueueFull:
		glog.Warningf("%s: dropped %q", ev.Kind, ev.Unit.Byte())
	case xcvr.EventOverrun:
		glog.Warningf("%s", ev.Kind)
	default:
		glog.V(2).Infof("%s %#x", ev.Kind, ev.Unit)
	}
}
