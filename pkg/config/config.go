// Package config collects command line and environment settings of the
// hosted transceiver.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robotalks/upshift/pkg/firmware"
	"github.com/robotalks/upshift/pkg/periph"
	"github.com/robotalks/upshift/pkg/xcvr"
)

// Config provides common options of the daemon and tools.
type Config struct {
	ClockHz  uint
	BaudRate uint

	// LineURL selects the line backend, e.g. pty:, serial:/dev/ttyUSB0,
	// ws://:8080/line, mqtt://host:port/topic-prefix, stdio:.
	LineURL string

	// MQTTBrokerURL specifies the MQTT broker for telemetry, empty disables.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string

	DeviceID      string
	StatsInterval time.Duration
	PublishDrops  bool
	Transform     string
}

var defaultConfig = Config{
	ClockHz:       uint(periph.DefaultClockHz),
	BaudRate:      uint(periph.DefaultBaudRate),
	LineURL:       "pty:",
	StatsInterval: 5 * time.Second,
	PublishDrops:  true,
	Transform:     xcvr.DefaultTransform,
}

func init() {
	if val := os.Getenv("UPSHIFT_LINE"); val != "" {
		defaultConfig.LineURL = val
	}
	if val := os.Getenv("UPSHIFT_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
	if val := os.Getenv("UPSHIFT_ID"); val != "" {
		defaultConfig.DeviceID = val
	} else {
		defaultConfig.DeviceID = MachineID()
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.UintVar(&defaultConfig.ClockHz, "clock", defaultConfig.ClockHz, "Peripheral clock in Hz")
	flag.UintVar(&defaultConfig.BaudRate, "baud", defaultConfig.BaudRate, "Line baud rate")
	flag.StringVar(&defaultConfig.LineURL, "line", defaultConfig.LineURL, "Line URL (pty:, serial:DEV, ws://ADDR/PATH, mqtt://BROKER/PREFIX, stdio:)")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL for telemetry")
	flag.StringVar(&defaultConfig.DeviceID, "id", defaultConfig.DeviceID, "Device ID")
	flag.DurationVar(&defaultConfig.StatsInterval, "stats-interval", defaultConfig.StatsInterval, "Stats publish interval")
	flag.BoolVar(&defaultConfig.PublishDrops, "publish-drops", defaultConfig.PublishDrops, "Publish drop events")
	flag.StringVar(&defaultConfig.Transform, "transform", defaultConfig.Transform, "Transform policy (passthrough, wrap)")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LineConfig is the peripheral configuration.
func (c *Config) LineConfig() periph.LineConfig {
	return periph.LineConfig{ClockHz: uint32(c.ClockHz), BaudRate: uint32(c.BaudRate)}
}

// FirmwareConfig creates the boot configuration. Observer is left to the
// caller.
func (c *Config) FirmwareConfig() (firmware.Config, error) {
	conf := firmware.DefaultConfig()
	conf.Line = c.LineConfig()
	if err := conf.Line.Validate(); err != nil {
		return conf, err
	}
	transform, err := xcvr.TransformByName(c.Transform)
	if err != nil {
		return conf, err
	}
	conf.Transform = transform
	return conf, nil
}

// MustFirmwareConfig creates the boot configuration and fails on error.
func (c *Config) MustFirmwareConfig() firmware.Config {
	conf, err := c.FirmwareConfig()
	if err != nil {
		log.Fatalln(err)
	}
	return conf
}

// Validate checks settings needed by the daemon.
func (c *Config) Validate() error {
	if c.DeviceID == "" {
		return fmt.Errorf("device id must be specified")
	}
	if c.StatsInterval <= 0 {
		return fmt.Errorf("invalid stats interval %v", c.StatsInterval)
	}
	return nil
}
