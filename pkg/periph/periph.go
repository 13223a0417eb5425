// Package periph defines the capability surface of a UART peripheral.
package periph

// The register layout of a particular microcontroller family stays behind
// these interfaces. Core code observes and mutates hardware state only
// through Peripheral, and gets hold of a Peripheral only by taking it out of
// a Handle, which happens exactly once.

// Unit is one received or to-be-transmitted item. The slot is register wide
// so parity/error bits above the data byte pass through uninterpreted.
type Unit uint16

// Byte returns the data byte carried in the unit.
func (u Unit) Byte() byte {
	return byte(u)
}

// Peripheral is the register-level capability used from interrupt context.
// No operation blocks, each one maps to a single register access.
type Peripheral interface {
	// ReceiveReady reports a received unit is waiting to be read.
	ReceiveReady() bool
	// TransmitReady reports the transmit register can accept a unit.
	TransmitReady() bool
	// Overrun reports a unit arrived before the previous one was read.
	Overrun() bool
	// ReadUnit reads the received unit, clearing receive-ready.
	ReadUnit() Unit
	// WriteUnit writes a unit for transmission, clearing transmit-ready.
	WriteUnit(Unit)
	// ClearOverrun clears the overrun condition.
	ClearOverrun()
	// EnableTransmitInterrupt enables the transmit-ready interrupt.
	EnableTransmitInterrupt()
	// DisableTransmitInterrupt disables the transmit-ready interrupt.
	DisableTransmitInterrupt()
}

// Port is a Peripheral together with the setup operations used before the
// peripheral is handed over to interrupt context.
type Port interface {
	Peripheral
	// Configure programs clocks, pins, divisor and enables TX/RX.
	Configure(LineConfig) error
	// EnableReceiveInterrupt enables the receive-ready (and overrun) interrupt.
	EnableReceiveInterrupt()
}
