// Package sim simulates a USART peripheral and the serial line around it.
package sim

import (
	"errors"
	"sync"

	"github.com/robotalks/upshift/pkg/irq"
	"github.com/robotalks/upshift/pkg/periph"
)

// The register model follows a common MCU USART: RDR/TDR data registers,
// RXNE/TXE/ORE status flags, RXNEIE/TXEIE interrupt enables in CR1 and a
// BRR divisor. The transmitter is double buffered: TDR feeds a shift
// register, and TXE is set again as soon as TDR is moved into it.
// A unit arriving while RXNE is still set is lost and raises ORE.

var (
	// ErrTaken indicates the register block has been handed out.
	ErrTaken = errors.New("usart already taken")
)

// Interrupter receives interrupt requests from the peripheral.
type Interrupter interface {
	Pend(irq.Vector)
}

// Flags is a snapshot of the status and control bits.
type Flags struct {
	// control
	UE     bool
	TE     bool
	RE     bool
	RXNEIE bool
	TXEIE  bool
	// status
	RXNE bool
	TXE  bool
	ORE  bool
	// Busy means the shift register holds a unit on the wire.
	Busy bool
}

// USART is the hardware side of a simulated peripheral.
type USART struct {
	vector irq.Vector
	intr   Interrupter

	flags Flags
	brr   uint32
	conf  periph.LineConfig
	rdr   periph.Unit
	tdr   periph.Unit
	shift periph.Unit
	taken bool
	lock  sync.Mutex
}

// NewUSART creates a USART signaling vector on intr.
func NewUSART(vector irq.Vector, intr Interrupter) *USART {
	u := &USART{vector: vector, intr: intr}
	u.flags.TXE = true
	return u
}

// Vector returns the interrupt vector of the USART.
func (u *USART) Vector() irq.Vector {
	return u.vector
}

// Take hands out the register block. It succeeds only once.
func (u *USART) Take() (*periph.Handle, error) {
	u.lock.Lock()
	defer u.lock.Unlock()
	if u.taken {
		return nil, ErrTaken
	}
	u.taken = true
	return periph.NewHandle(&registers{u: u}), nil
}

// Flags reads the status and control bits.
func (u *USART) Flags() Flags {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.flags
}

// Divisor reads BRR.
func (u *USART) Divisor() uint32 {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.brr
}

// LineConfig returns the configuration programmed into the USART.
func (u *USART) LineConfig() periph.LineConfig {
	u.lock.Lock()
	defer u.lock.Unlock()
	return u.conf
}

// Receive delivers a unit from the RX pin. It returns false if the unit is
// not latched into RDR: the receiver is disabled, or RDR is still unread
// in which case ORE is raised.
func (u *USART) Receive(unit periph.Unit) (latched bool) {
	u.lock.Lock()
	switch {
	case !u.flags.UE || !u.flags.RE:
	case u.flags.RXNE:
		u.flags.ORE = true
	default:
		u.rdr, u.flags.RXNE, latched = unit, true, true
	}
	assert := u.assertedLocked()
	u.lock.Unlock()
	u.raise(assert)
	return
}

// Shift completes the frame in the shift register and returns the unit put
// on the TX pin. TDR, if full, is moved into the shift register.
func (u *USART) Shift() (unit periph.Unit, ok bool) {
	u.lock.Lock()
	if u.flags.Busy {
		unit, ok = u.shift, true
		u.flags.Busy = false
	}
	if !u.flags.TXE {
		u.shift, u.flags.Busy, u.flags.TXE = u.tdr, true, true
	}
	assert := u.assertedLocked()
	u.lock.Unlock()
	u.raise(assert)
	return
}

func (u *USART) assertedLocked() bool {
	f := &u.flags
	return f.UE && (f.RXNEIE && (f.RXNE || f.ORE) || f.TXEIE && f.TXE)
}

func (u *USART) raise(assert bool) {
	if assert && u.intr != nil {
		u.intr.Pend(u.vector)
	}
}

// update runs fn on the flags and re-evaluates the interrupt line.
func (u *USART) update(fn func(f *Flags)) {
	u.lock.Lock()
	fn(&u.flags)
	assert := u.assertedLocked()
	u.lock.Unlock()
	u.raise(assert)
}

// registers is the CPU side of the USART, reachable only through Take.
type registers struct {
	u *USART
}

func (r *registers) ReceiveReady() bool  { return r.u.Flags().RXNE }
func (r *registers) TransmitReady() bool { return r.u.Flags().TXE }
func (r *registers) Overrun() bool       { return r.u.Flags().ORE }

func (r *registers) ReadUnit() (unit periph.Unit) {
	r.u.update(func(f *Flags) {
		unit = r.u.rdr
		f.RXNE = false
	})
	return
}

func (r *registers) WriteUnit(unit periph.Unit) {
	r.u.update(func(f *Flags) {
		if !f.UE || !f.TE {
			return
		}
		if !f.Busy {
			r.u.shift, f.Busy = unit, true
			return
		}
		r.u.tdr, f.TXE = unit, false
	})
}

func (r *registers) ClearOverrun() {
	r.u.update(func(f *Flags) { f.ORE = false })
}

func (r *registers) EnableTransmitInterrupt() {
	r.u.update(func(f *Flags) { f.TXEIE = true })
}

func (r *registers) DisableTransmitInterrupt() {
	r.u.update(func(f *Flags) { f.TXEIE = false })
}

func (r *registers) EnableReceiveInterrupt() {
	r.u.update(func(f *Flags) { f.RXNEIE = true })
}

func (r *registers) Configure(conf periph.LineConfig) error {
	r.u.update(func(f *Flags) {
		r.u.brr, r.u.conf = conf.Divisor(), conf
		f.UE, f.TE, f.RE = true, true, true
	})
	return nil
}
