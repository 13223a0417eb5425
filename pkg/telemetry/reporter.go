// Package telemetry publishes transceiver counters and drop events.
package telemetry

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/upshift/pkg/telemetry/mqtt"
	"github.com/robotalks/upshift/pkg/telemetry/msgs"
	"github.com/robotalks/upshift/pkg/xcvr"
)

// Topics relative to the device.
const (
	StatsTopic = "stats"
	DropTopic  = "drop"
)

// DefaultInterval is the default stats publish interval.
const DefaultInterval = 5 * time.Second

const dropBacklog = 64

// Publisher sends a payload to a topic.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// QueuePublisher publishes with an MQTT queue.
type QueuePublisher struct {
	Queue *mqtt.Queue
}

// Publish implements Publisher.
func (p *QueuePublisher) Publish(topic string, payload []byte) error {
	token := p.Queue.Pub(topic, payload)
	token.Wait()
	return token.Error()
}

// Reporter publishes Stats periodically to <id>/stats and drop events to
// <id>/drop. It is also an xcvr.Observer, so it can be passed to boot
// before Source is known.
type Reporter struct {
	DeviceID  string
	Interval  time.Duration
	Publisher Publisher
	// Source must be set before Run.
	Source *xcvr.Stats

	dropCh  chan xcvr.Event
	missed  uint64
	started time.Time
}

// NewReporter creates a Reporter.
func NewReporter(deviceID string, pub Publisher) *Reporter {
	return &Reporter{
		DeviceID:  deviceID,
		Interval:  DefaultInterval,
		Publisher: pub,
		dropCh:    make(chan xcvr.Event, dropBacklog),
	}
}

// Observe implements xcvr.Observer. Only drops are forwarded and it never
// blocks: when the backlog is full the event is counted as missed.
func (r *Reporter) Observe(ev xcvr.Event) {
	if !ev.Kind.IsDrop() {
		return
	}
	select {
	case r.dropCh <- ev:
	default:
		atomic.AddUint64(&r.missed, 1)
	}
}

// Missed is the number of drop events not published.
func (r *Reporter) Missed() uint64 {
	return atomic.LoadUint64(&r.missed)
}

// Run implements Runnable.
func (r *Reporter) Run(ctx context.Context) error {
	r.started = time.Now()
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	r.publishStats()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.publishStats()
		case ev := <-r.dropCh:
			r.publish(DropTopic, msgs.NewEvent(r.DeviceID, ev))
		}
	}
}

func (r *Reporter) publishStats() {
	if r.Source == nil {
		return
	}
	r.publish(StatsTopic, msgs.NewStats(r.DeviceID, r.Source.Snapshot(), time.Since(r.started)))
}

func (r *Reporter) publish(topic string, msg proto.Message) {
	data, err := msgs.Encode(msg)
	if err != nil {
		glog.Errorf("encode %s error: %v", topic, err)
		return
	}
	if err = r.Publisher.Publish(r.DeviceID+"/"+topic, data); err != nil {
		glog.Warningf("publish %s error: %v", topic, err)
		return
	}
	glog.V(3).Infof("PUB %s/%s: %s", r.DeviceID, topic, msg.String())
}
