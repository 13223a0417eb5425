package sim

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/upshift/pkg/periph"
)

// BitsPerUnit is start bit + 8 data bits + stop bit.
const BitsPerUnit = 10

// UnitTime returns how long one unit occupies the wire.
func UnitTime(baud uint32) time.Duration {
	if baud == 0 {
		return 0
	}
	return time.Second * BitsPerUnit / time.Duration(baud)
}

// Line is the wire around a USART. Each Step moves at most one unit in
// each direction: the next backlog unit onto the RX pin and the shift
// register content off the TX pin.
type Line struct {
	USART    *USART
	UnitTime time.Duration

	// Output receives transmitted data bytes.
	Output io.Writer
	// Input is read into the backlog while Run is running. The line keeps
	// running after Input reaches EOF.
	Input io.Reader

	backlog []periph.Unit
	lock    sync.Mutex
}

// NewLine creates a Line paced at baud.
func NewLine(u *USART, baud uint32) *Line {
	return &Line{USART: u, UnitTime: UnitTime(baud)}
}

// Attach sets Input and Output.
func (l *Line) Attach(in io.Reader, out io.Writer) *Line {
	l.Input, l.Output = in, out
	return l
}

// Inject appends bytes to the RX backlog.
func (l *Line) Inject(p []byte) {
	l.lock.Lock()
	for _, b := range p {
		l.backlog = append(l.backlog, periph.Unit(b))
	}
	l.lock.Unlock()
}

// Backlog returns the number of units waiting to go onto the RX pin.
func (l *Line) Backlog() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return len(l.backlog)
}

// Step advances the line by one unit time. It returns the transmitted unit
// if any.
func (l *Line) Step() (out periph.Unit, sent bool, err error) {
	if out, sent = l.USART.Shift(); sent && l.Output != nil {
		_, err = l.Output.Write([]byte{out.Byte()})
	}
	l.lock.Lock()
	var unit periph.Unit
	rx := len(l.backlog) > 0
	if rx {
		unit = l.backlog[0]
		l.backlog = l.backlog[1:]
	}
	l.lock.Unlock()
	if rx && !l.USART.Receive(unit) {
		glog.V(3).Infof("unit %#x not latched", unit)
	}
	return
}

// Run implements Runnable.
func (l *Line) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	if l.Input != nil {
		go l.readLoop(ctx, errCh)
	}
	interval := l.UnitTime
	if interval <= 0 {
		interval = UnitTime(periph.DefaultBaudRate)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errCh:
			return err
		case <-ticker.C:
			if _, _, err := l.Step(); err != nil {
				return err
			}
		}
	}
}

func (l *Line) readLoop(ctx context.Context, errCh chan error) {
	buf := make([]byte, 64)
	for {
		n, err := l.Input.Read(buf)
		if n > 0 {
			l.Inject(buf[:n])
		}
		if err == io.EOF {
			glog.V(1).Info("line input closed")
			return
		}
		if err != nil {
			select {
			case errCh <- err:
			case <-ctx.Done():
			}
			return
		}
	}
}
