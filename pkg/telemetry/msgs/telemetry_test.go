package msgs

import (
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/upshift/pkg/xcvr"
)

func TestStatsEncoding(t *testing.T) {
	snap := xcvr.Snapshot{
		Received:      12,
		Transmitted:   10,
		QueueFull:     1,
		Overruns:      1,
		Spurious:      3,
		QueueDepth:    2,
		HighWaterMark: 8,
	}
	data, err := Encode(NewStats("dev1", snap, 1500*time.Millisecond))
	require.NoError(t, err)
	s, err := DecodeStats(data)
	require.NoError(t, err)
	require.Equal(t, "dev1", s.DeviceId)
	require.EqualValues(t, 12, s.Received)
	require.EqualValues(t, 10, s.Transmitted)
	require.EqualValues(t, 1, s.QueueFull)
	require.EqualValues(t, 1, s.Overruns)
	require.EqualValues(t, 3, s.Spurious)
	require.Zero(t, s.Underflows)
	require.EqualValues(t, 2, s.QueueDepth)
	require.EqualValues(t, 8, s.HighWaterMark)
	require.EqualValues(t, 1500, s.UptimeMs)
}

func TestEventEncoding(t *testing.T) {
	data, err := Encode(NewEvent("dev1", xcvr.Event{Kind: xcvr.EventQueueFull, Unit: 'z'}))
	require.NoError(t, err)
	ev, err := DecodeEvent(data)
	require.NoError(t, err)
	require.Equal(t, EventKind_QUEUE_FULL, ev.Kind)
	require.EqualValues(t, 'z', ev.Unit)
	require.Equal(t, "QUEUE_FULL", ev.Kind.String())

	for kind := xcvr.EventQueueFull; kind <= xcvr.EventUnderflow; kind++ {
		require.Contains(t, EventKind_name, int32(NewEvent("", xcvr.Event{Kind: kind}).Kind))
	}
}

func TestDecodeGarbage(t *testing.T) {
	_, err := DecodeStats([]byte{0xff, 0xff, 0xff})
	require.Error(t, err)
}

func TestRegisteredNames(t *testing.T) {
	require.Equal(t, "upshift.v1.Stats", proto.MessageName(&Stats{}))
	require.Equal(t, "upshift.v1.Event", proto.MessageName(&Event{}))
	require.Equal(t, int32(EventKind_UNDERFLOW), proto.EnumValueMap("upshift.v1.EventKind")["UNDERFLOW"])
}
