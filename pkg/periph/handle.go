package periph

import (
	"errors"
	"sync"
)

var (
	// ErrTaken indicates the Port has already been moved out of the Handle.
	ErrTaken = errors.New("peripheral already taken")
)

// Handle grants exclusive access to one Port until it is taken.
// Once Take succeeds, every operation on the Handle fails with ErrTaken,
// so the setup code cannot reach the peripheral after the handoff.
type Handle struct {
	port Port
	lock sync.Mutex
}

// NewHandle wraps a Port.
func NewHandle(port Port) *Handle {
	return &Handle{port: port}
}

// Configure delegates peripheral configuration to the Port.
func (h *Handle) Configure(conf LineConfig) error {
	port, err := h.borrow()
	if err != nil {
		return err
	}
	if err = conf.Validate(); err != nil {
		return err
	}
	return port.Configure(conf)
}

// EnableReceiveInterrupt enables receive interrupt on the Port.
func (h *Handle) EnableReceiveInterrupt() error {
	port, err := h.borrow()
	if err != nil {
		return err
	}
	port.EnableReceiveInterrupt()
	return nil
}

// Take moves the Port out of the Handle. It succeeds only once.
func (h *Handle) Take() (Port, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.port == nil {
		return nil, ErrTaken
	}
	port := h.port
	h.port = nil
	return port, nil
}

// Taken indicates the Port has been moved out.
func (h *Handle) Taken() bool {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.port == nil
}

func (h *Handle) borrow() (Port, error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.port == nil {
		return nil, ErrTaken
	}
	return h.port, nil
}
