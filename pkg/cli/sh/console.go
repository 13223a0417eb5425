package sh

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/upshift/pkg/board"
	"github.com/robotalks/upshift/pkg/firmware"
	"github.com/robotalks/upshift/pkg/periph"
	"github.com/robotalks/upshift/pkg/xcvr"
)

// Console drives a board without goroutines, so every command is
// deterministic.
type Console struct {
	Board  *board.Board
	Config firmware.Config
}

// LineResult is what left the TX pin during a command. Steps is only set
// by Step.
type LineResult struct {
	Steps int           `json:"steps,omitempty"`
	Units []periph.Unit `json:"units"`
	Stats xcvr.Snapshot `json:"stats"`
}

// Text renders the transmitted data bytes with non-printable ones escaped.
func (r *LineResult) Text() string {
	var sb strings.Builder
	for _, u := range r.Units {
		sb.WriteByte(u.Byte())
	}
	return strconv.Quote(sb.String())
}

// String implements Stringer.
func (r *LineResult) String() string {
	return fmt.Sprintf("%s (%d units, %d dropped)",
		r.Text(), len(r.Units), r.Stats.Dropped())
}

// NewConsole boots a board with conf.
func NewConsole(conf firmware.Config) (*Console, error) {
	c := &Console{Config: conf}
	if err := c.Reset(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reset replaces the board with a freshly booted one.
func (c *Console) Reset() error {
	b, err := board.New(c.Config)
	if err != nil {
		return err
	}
	c.Board = b
	return nil
}

// Inject queues units on the RX side of the line.
func (c *Console) Inject(units []periph.Unit) {
	data := make([]byte, len(units))
	for n, u := range units {
		data[n] = u.Byte()
	}
	c.Board.Line.Inject(data)
}

// Send injects units and runs until idle.
func (c *Console) Send(units []periph.Unit) (*LineResult, error) {
	c.Inject(units)
	return c.drain()
}

// Step advances count unit times.
func (c *Console) Step(count int) (*LineResult, error) {
	r := &LineResult{}
	for ; r.Steps < count; r.Steps++ {
		out, sent, err := c.Board.Step()
		if err != nil {
			return nil, err
		}
		if sent {
			r.Units = append(r.Units, out)
		}
	}
	r.Stats = c.Board.Stats()
	return r, nil
}

// Stall receives units with the transmitter stalled, then runs until idle.
func (c *Console) Stall(units []periph.Unit) (*LineResult, error) {
	c.Board.Stall(units...)
	return c.drain()
}

// Overrun receives units back to back, then runs until idle.
func (c *Console) Overrun(units []periph.Unit) (*LineResult, error) {
	c.Board.Overrun(units...)
	return c.drain()
}

func (c *Console) drain() (*LineResult, error) {
	units, err := c.Board.Drain()
	if err != nil {
		return nil, err
	}
	return &LineResult{Units: units, Stats: c.Board.Stats()}, nil
}

// ParseUnits converts text into units. \xNN, \r, \n and \t are unescaped;
// anything that fails to unescape is taken literally.
func ParseUnits(text string) []periph.Unit {
	if s, err := strconv.Unquote(`"` + strings.Replace(text, `"`, `\"`, -1) + `"`); err == nil {
		text = s
	}
	units := make([]periph.Unit, len(text))
	for n := 0; n < len(text); n++ {
		units[n] = periph.Unit(text[n])
	}
	return units
}
