package config

import (
	"fmt"
	"io"
	"log"
	"net/url"
	"strconv"

	"github.com/golang/glog"

	"github.com/robotalks/upshift/pkg/line"
	lmqtt "github.com/robotalks/upshift/pkg/line/mqtt"
	"github.com/robotalks/upshift/pkg/line/pty"
	"github.com/robotalks/upshift/pkg/line/serial"
	"github.com/robotalks/upshift/pkg/line/websocket"
	"github.com/robotalks/upshift/pkg/telemetry/mqtt"
)

// OpenLine opens the line backend of LineURL.
func (c *Config) OpenLine() (io.ReadWriteCloser, error) {
	return OpenLine(c.LineURL, c.DeviceID, int(c.BaudRate))
}

// MustOpenLine opens the line backend and fails on error.
func (c *Config) MustOpenLine() io.ReadWriteCloser {
	l, err := c.OpenLine()
	if err != nil {
		log.Fatalln(err)
	}
	return l
}

// OpenLine opens a line backend by URL. deviceID names the MQTT topics,
// baud is the default of serial devices.
func OpenLine(lineURL, deviceID string, baud int) (io.ReadWriteCloser, error) {
	u, err := url.Parse(lineURL)
	if err != nil {
		return nil, fmt.Errorf("invalid line URL: %v", err)
	}
	switch u.Scheme {
	case "", "stdio":
		return line.Stdio(), nil
	case "none":
		return line.Discard(), nil
	case "pty":
		p, err := pty.Open()
		if err != nil {
			return nil, err
		}
		glog.Infof("line attached to %s", p.SlaveName())
		return p, nil
	case "serial":
		device := u.Opaque
		if device == "" {
			device = u.Path
		}
		if val := u.Query().Get("baud"); val != "" {
			if baud, err = strconv.Atoi(val); err != nil {
				return nil, fmt.Errorf("invalid baud %q: %v", val, err)
			}
		}
		p, err := serial.Open(device, baud)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "ws":
		s, err := websocket.Listen(u.Host, u.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "mqtt", "mqtts":
		q, err := mqtt.NewQueueFromURL(lineURL)
		if err != nil {
			return nil, err
		}
		if err = q.Connect(); err != nil {
			return nil, fmt.Errorf("connect %s: %v", u.Host, err)
		}
		return &mqttLine{Line: lmqtt.Open(q, deviceID), queue: q}, nil
	default:
		return nil, fmt.Errorf("unknown line URL scheme: %q", u.Scheme)
	}
}

type mqttLine struct {
	*lmqtt.Line
	queue *mqtt.Queue
}

func (l *mqttLine) Close() error {
	err := l.Line.Close()
	l.queue.Close()
	return err
}
