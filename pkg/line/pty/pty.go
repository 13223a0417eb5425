// Package pty exposes the simulated line as a pseudo terminal, so any
// terminal program can be attached to the slave side.
package pty

import (
	"fmt"
	"os"

	"github.com/creack/pty"
)

// Port is the master side of a pty pair. The slave is kept open so reads on
// the master don't fail while no terminal is attached.
type Port struct {
	master *os.File
	slave  *os.File
}

// Open allocates a pty pair and puts the slave into raw mode.
func Open() (*Port, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("open pty: %v", err)
	}
	if err = makeRaw(slave); err != nil {
		master.Close()
		slave.Close()
		return nil, fmt.Errorf("raw mode on %s: %v", slave.Name(), err)
	}
	return &Port{master: master, slave: slave}, nil
}

// SlaveName is the device path terminals should open.
func (p *Port) SlaveName() string {
	return p.slave.Name()
}

// Slave returns the slave file, mostly for tests.
func (p *Port) Slave() *os.File {
	return p.slave
}

// Read implements io.Reader.
func (p *Port) Read(b []byte) (int, error) {
	return p.master.Read(b)
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	return p.master.Write(b)
}

// Close implements io.Closer.
func (p *Port) Close() error {
	err := p.master.Close()
	if e := p.slave.Close(); err == nil {
		err = e
	}
	return err
}
