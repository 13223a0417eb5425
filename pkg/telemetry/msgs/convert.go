package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/upshift/pkg/xcvr"
)

// NewStats converts a counter snapshot.
func NewStats(deviceID string, s xcvr.Snapshot, uptime time.Duration) *Stats {
	return &Stats{
		DeviceId:      deviceID,
		Received:      s.Received,
		Transmitted:   s.Transmitted,
		QueueFull:     s.QueueFull,
		Overruns:      s.Overruns,
		Spurious:      s.Spurious,
		Underflows:    s.Underflows,
		QueueDepth:    s.QueueDepth,
		HighWaterMark: s.HighWaterMark,
		UptimeMs:      int64(uptime / time.Millisecond),
	}
}

// NewEvent converts a service routine event.
func NewEvent(deviceID string, ev xcvr.Event) *Event {
	return &Event{
		DeviceId: deviceID,
		Kind:     EventKind(ev.Kind),
		Unit:     uint32(ev.Unit),
	}
}

// Encode marshals a message.
func Encode(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

// DecodeStats unmarshals Stats.
func DecodeStats(data []byte) (*Stats, error) {
	s := &Stats{}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

// DecodeEvent unmarshals Event.
func DecodeEvent(data []byte) (*Event, error) {
	ev := &Event{}
	if err := proto.Unmarshal(data, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
