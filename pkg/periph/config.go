package periph

import "fmt"

// Defaults for the line.
const (
	DefaultClockHz  uint32 = 4000000
	DefaultBaudRate uint32 = 9600

	// divisor limits of a 16x oversampling baud generator.
	minDivisor uint32 = 16
	maxDivisor uint32 = 0xffff
)

// LineConfig describes how the peripheral is set up before handoff.
type LineConfig struct {
	// ClockHz is the peripheral kernel clock.
	ClockHz uint32
	// BaudRate is the line speed in bits per second.
	BaudRate uint32
}

// DefaultLineConfig returns 9600 baud from a 4MHz clock.
func DefaultLineConfig() LineConfig {
	return LineConfig{ClockHz: DefaultClockHz, BaudRate: DefaultBaudRate}
}

// ConfigError reports an invalid LineConfig.
type ConfigError struct {
	Config LineConfig
	Reason string
}

// Error implements error.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid line config (clock=%dHz baud=%d): %s",
		e.Config.ClockHz, e.Config.BaudRate, e.Reason)
}

// Divisor calculates the baud rate divisor, rounded to nearest.
func (c LineConfig) Divisor() uint32 {
	if c.BaudRate == 0 {
		return 0
	}
	return (c.ClockHz + c.BaudRate/2) / c.BaudRate
}

// Validate checks the config can be programmed.
func (c LineConfig) Validate() error {
	if c.ClockHz == 0 {
		return &ConfigError{Config: c, Reason: "clock is zero"}
	}
	if c.BaudRate == 0 {
		return &ConfigError{Config: c, Reason: "baud rate is zero"}
	}
	if d := c.Divisor(); d < minDivisor || d > maxDivisor {
		return &ConfigError{Config: c, Reason: fmt.Sprintf("divisor %d out of range", d)}
	}
	return nil
}

// UnitsPerSecond is the line throughput with one start and one stop bit.
func (c LineConfig) UnitsPerSecond() uint32 {
	return c.BaudRate / 10
}
