// Package mqtt carries the simulated line over a pair of MQTT topics.
package mqtt

import (
	"io"
	"sync"

	"github.com/robotalks/upshift/pkg/telemetry/mqtt"
)

// Topic suffixes relative to the device ID.
const (
	RxTopic = "rx"
	TxTopic = "tx"
)

// Line implements io.ReadWriteCloser. Payloads published to <id>/rx are
// read as line input; writes are published to <id>/tx.
type Line struct {
	Queue   *mqtt.Queue
	RxTopic string
	TxTopic string

	sub       *mqtt.Subscription
	rxCh      chan []byte
	closeCh   chan struct{}
	pending   []byte
	closeOnce sync.Once
}

// Open subscribes to the rx topic of deviceID.
func Open(q *mqtt.Queue, deviceID string) *Line {
	l := &Line{
		Queue:   q,
		RxTopic: deviceID + "/" + RxTopic,
		TxTopic: deviceID + "/" + TxTopic,
		rxCh:    make(chan []byte, 16),
		closeCh: make(chan struct{}),
	}
	l.sub = q.Sub(l.RxTopic, mqtt.Handler(l.handleMsg))
	return l
}

// Read implements io.Reader.
func (l *Line) Read(b []byte) (int, error) {
	if len(l.pending) == 0 {
		select {
		case <-l.closeCh:
			return 0, io.EOF
		case l.pending = <-l.rxCh:
		}
	}
	n := copy(b, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}

// Write implements io.Writer.
func (l *Line) Write(b []byte) (int, error) {
	payload := make([]byte, len(b))
	copy(payload, b)
	token := l.Queue.Pub(l.TxTopic, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return 0, err
	}
	return len(b), nil
}

// Close implements io.Closer.
func (l *Line) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closeCh)
		err = l.sub.Close()
	})
	return err
}

func (l *Line) handleMsg(_ string, payload []byte) {
	select {
	case l.rxCh <- payload:
	case <-l.closeCh:
	}
}
