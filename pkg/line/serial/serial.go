// Package serial bridges the simulated line to a real serial device.
package serial

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/tarm/serial"
)

// DefaultReadTimeout bounds each read on the device so Read can notice
// Close.
const DefaultReadTimeout = 250 * time.Millisecond

// Port wraps a serial port. tarm/serial reports a read timeout as 0, io.EOF;
// Read retries those until the Port is closed, so io.EOF only means Close.
type Port struct {
	*serial.Port
	Name string

	closed int32
}

// Open opens device at baud.
func Open(device string, baud int) (*Port, error) {
	if device == "" {
		return nil, fmt.Errorf("serial device missing")
	}
	p, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        baud,
		ReadTimeout: DefaultReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %v", device, err)
	}
	return &Port{Port: p, Name: device}, nil
}

// Read implements io.Reader. It blocks until data arrives or the Port is
// closed.
func (p *Port) Read(b []byte) (int, error) {
	for {
		if atomic.LoadInt32(&p.closed) != 0 {
			return 0, io.EOF
		}
		n, err := p.Port.Read(b)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			if atomic.LoadInt32(&p.closed) != 0 {
				return 0, io.EOF
			}
			return 0, err
		}
	}
}

// Close implements io.Closer.
func (p *Port) Close() error {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return nil
	}
	return p.Port.Close()
}
