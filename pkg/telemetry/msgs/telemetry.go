// Package msgs defines telemetry messages. The types are maintained by hand
// and must stay in sync with proto/upshift/v1/telemetry.proto: same field
// numbers, same wire types, registered under the same full names. They carry
// no file descriptor, so reflection based tooling sees them by name only.
package msgs

import (
	"github.com/golang/protobuf/proto"
)

// EventKind mirrors xcvr.EventKind on the wire.
type EventKind int32

// Event kinds
const (
	EventKind_QUEUE_FULL EventKind = 0
	EventKind_OVERRUN    EventKind = 1
	EventKind_SPURIOUS   EventKind = 2
	EventKind_UNDERFLOW  EventKind = 3
)

var EventKind_name = map[int32]string{
	0: "QUEUE_FULL",
	1: "OVERRUN",
	2: "SPURIOUS",
	3: "UNDERFLOW",
}

var EventKind_value = map[string]int32{
	"QUEUE_FULL": 0,
	"OVERRUN":    1,
	"SPURIOUS":   2,
	"UNDERFLOW":  3,
}

func (x EventKind) String() string {
	return proto.EnumName(EventKind_name, int32(x))
}

// Stats is published periodically.
type Stats struct {
	DeviceId             string   `protobuf:"bytes,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Received             uint64   `protobuf:"varint,2,opt,name=received,proto3" json:"received,omitempty"`
	Transmitted          uint64   `protobuf:"varint,3,opt,name=transmitted,proto3" json:"transmitted,omitempty"`
	QueueFull            uint64   `protobuf:"varint,4,opt,name=queue_full,json=queueFull,proto3" json:"queue_full,omitempty"`
	Overruns             uint64   `protobuf:"varint,5,opt,name=overruns,proto3" json:"overruns,omitempty"`
	Spurious             uint64   `protobuf:"varint,6,opt,name=spurious,proto3" json:"spurious,omitempty"`
	Underflows           uint64   `protobuf:"varint,7,opt,name=underflows,proto3" json:"underflows,omitempty"`
	QueueDepth           uint32   `protobuf:"varint,8,opt,name=queue_depth,json=queueDepth,proto3" json:"queue_depth,omitempty"`
	HighWaterMark        uint32   `protobuf:"varint,9,opt,name=high_water_mark,json=highWaterMark,proto3" json:"high_water_mark,omitempty"`
	UptimeMs             int64    `protobuf:"varint,10,opt,name=uptime_ms,json=uptimeMs,proto3" json:"uptime_ms,omitempty"`
	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

func (m *Stats) Reset()         { *m = Stats{} }
func (m *Stats) String() string { return proto.CompactTextString(m) }
func (*Stats) ProtoMessage()    {}

// Event reports one event from the service routine.
type Event struct {
	DeviceId             string    `protobuf:"bytes,1,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Kind                 EventKind `protobuf:"varint,2,opt,name=kind,proto3,enum=upshift.v1.EventKind" json:"kind,omitempty"`
	Unit                 uint32    `protobuf:"varint,3,opt,name=unit,proto3" json:"unit,omitempty"`
	XXX_NoUnkeyedLiteral struct{}  `json:"-"`
	XXX_unrecognized     []byte    `json:"-"`
	XXX_sizecache        int32     `json:"-"`
}

func (m *Event) Reset()         { *m = Event{} }
func (m *Event) String() string { return proto.CompactTextString(m) }
func (*Event) ProtoMessage()    {}

func init() {
	proto.RegisterEnum("upshift.v1.EventKind", EventKind_name, EventKind_value)
	proto.RegisterType((*Stats)(nil), "upshift.v1.Stats")
	proto.RegisterType((*Event)(nil), "upshift.v1.Event")
}
