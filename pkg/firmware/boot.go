// Package firmware brings up the transceiver.
package firmware

import (
	"context"
	"fmt"

	"github.com/golang/glog"

	"github.com/robotalks/upshift/pkg/irq"
	"github.com/robotalks/upshift/pkg/periph"
	"github.com/robotalks/upshift/pkg/xcvr"
)

// Config defines how the transceiver is brought up.
type Config struct {
	Line     periph.LineConfig
	Vector   irq.Vector
	Priority int

	Transform xcvr.Transform
	Observer  xcvr.Observer
}

// DefaultConfig is 9600 baud on USART1.
func DefaultConfig() Config {
	return Config{
		Line:     periph.DefaultLineConfig(),
		Vector:   irq.USART1,
		Priority: irq.DefaultPriority,
	}
}

// Device is what remains visible to the boot code after handoff:
// read-only counters and the idle wait.
type Device struct {
	vector irq.Vector
	stats  *xcvr.Stats
}

// Boot configures the peripheral, hands it over to a new service context
// and unmasks the interrupt. Once the service context is created the handle
// is consumed, even if a later step fails. The interrupt is unmasked only
// after the handler is registered.
func Boot(ctrl *irq.Controller, h *periph.Handle, conf Config) (*Device, error) {
	if err := h.Configure(conf.Line); err != nil {
		return nil, fmt.Errorf("configure peripheral: %v", err)
	}
	if err := h.EnableReceiveInterrupt(); err != nil {
		return nil, fmt.Errorf("enable receive interrupt: %v", err)
	}
	ctx, err := xcvr.New(h, xcvr.Options{
		Transform: conf.Transform,
		Observer:  conf.Observer,
	})
	if err != nil {
		return nil, err
	}
	if err = ctrl.SetPriority(conf.Vector, conf.Priority); err != nil {
		return nil, err
	}
	if err = ctrl.Register(conf.Vector, ctx); err != nil {
		return nil, err
	}
	if err = ctrl.Unmask(conf.Vector); err != nil {
		return nil, err
	}
	glog.Infof("transceiver up: irq=%d baud=%d divisor=%d",
		conf.Vector, conf.Line.BaudRate, conf.Line.Divisor())
	return &Device{vector: conf.Vector, stats: ctx.Stats()}, nil
}

// Vector returns the interrupt vector serviced by the device.
func (d *Device) Vector() irq.Vector {
	return d.vector
}

// Stats returns the service counters.
func (d *Device) Stats() *xcvr.Stats {
	return d.stats
}

// Run implements Runnable. It is the idle wait of the boot context and
// never touches the peripheral.
func (d *Device) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}
